// Package metric provides RED metrics middleware helpers for services.
package metric

import (
	"fmt"
	"time"

	"github.com/Edgame2/castiel/kit/platform/errors"
	"github.com/prometheus/client_golang/prometheus"
)

// REDClient collects RED (request, error, duration) metrics for the calls
// of a single service.
type REDClient struct {
	reqs *prometheus.CounterVec
	errs *prometheus.CounterVec
	durs *prometheus.HistogramVec
}

// New creates a new REDClient for the named service and registers its
// collectors with reg.
func New(reg prometheus.Registerer, service string) *REDClient {
	c := &REDClient{
		reqs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "service",
			Subsystem: service,
			Name:      "call_total",
			Help:      fmt.Sprintf("Number of calls to the %s service", service),
		}, []string{"method"}),
		errs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "service",
			Subsystem: service,
			Name:      "error_total",
			Help:      fmt.Sprintf("Number of errors encountered when calling the %s service", service),
		}, []string{"method", "code"}),
		durs: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "service",
			Subsystem: service,
			Name:      "duration",
			Help:      fmt.Sprintf("Duration of %s service calls", service),
		}, []string{"method"}),
	}
	reg.MustRegister(c.reqs, c.errs, c.durs)
	return c
}

// Record returns a func that is to be called on return of a service call.
// The error given to it is recorded and returned unaltered, so middleware
// methods can end with:
//
//	rec := c.Record("find_shard")
//	s, err := next.FindShardByID(ctx, tenantID, id)
//	return s, rec(err)
func (c *REDClient) Record(method string) func(error) error {
	start := time.Now()
	return func(err error) error {
		c.reqs.With(prometheus.Labels{"method": method}).Inc()
		if err != nil {
			c.errs.With(prometheus.Labels{
				"method": method,
				"code":   errors.ErrorCode(err),
			}).Inc()
		}
		c.durs.With(prometheus.Labels{"method": method}).Observe(time.Since(start).Seconds())
		return err
	}
}
