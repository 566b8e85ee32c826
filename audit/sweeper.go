package audit

import (
	"context"
	"time"

	"github.com/Edgame2/castiel"
	"github.com/benbjohnson/clock"
	"go.uber.org/zap"
)

const (
	// DefaultRetention is how long entries are kept when no retention was
	// configured.
	DefaultRetention = 90 * 24 * time.Hour

	// DefaultSweepInterval is how often the sweeper runs.
	DefaultSweepInterval = time.Hour
)

// Sweeper periodically purges audit entries older than the retention
// window.
type Sweeper struct {
	log       *zap.Logger
	service   castiel.AuditService
	clock     clock.Clock
	retention time.Duration
	interval  time.Duration

	cancel context.CancelFunc
	done   chan struct{}
}

// SweeperOption configures a sweeper.
type SweeperOption func(*Sweeper)

// WithRetention overrides the retention window.
func WithRetention(d time.Duration) SweeperOption {
	return func(s *Sweeper) {
		s.retention = d
	}
}

// WithSweepInterval overrides the sweep interval.
func WithSweepInterval(d time.Duration) SweeperOption {
	return func(s *Sweeper) {
		s.interval = d
	}
}

// WithClock overrides the wall clock, for tests.
func WithClock(c clock.Clock) SweeperOption {
	return func(s *Sweeper) {
		s.clock = c
	}
}

// NewSweeper constructs a sweeper over the given audit service.
func NewSweeper(log *zap.Logger, service castiel.AuditService, opts ...SweeperOption) *Sweeper {
	s := &Sweeper{
		log:       log,
		service:   service,
		clock:     clock.New(),
		retention: DefaultRetention,
		interval:  DefaultSweepInterval,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open starts the sweep loop.
func (s *Sweeper) Open(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})

	go func() {
		defer close(s.done)
		ticker := s.clock.Ticker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.sweep(ctx)
			}
		}
	}()
}

// Close stops the sweep loop and waits for it to exit.
func (s *Sweeper) Close() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	<-s.done
}

func (s *Sweeper) sweep(ctx context.Context) {
	cutoff := s.clock.Now().Add(-s.retention)
	n, err := s.service.PurgeAuditEvents(ctx, cutoff)
	if err != nil {
		s.log.Error("audit sweep failed", zap.Error(err))
		return
	}
	if n > 0 {
		s.log.Info("audit sweep purged entries", zap.Int64("purged", n), zap.Time("cutoff", cutoff))
	}
}
