package tenant

import (
	"context"
	"fmt"
	"time"

	"github.com/Edgame2/castiel"
	"github.com/Edgame2/castiel/kit/platform"
	"go.uber.org/zap"
)

// TenantLogger is a logging service middleware for the tenant service.
type TenantLogger struct {
	logger        *zap.Logger
	tenantService castiel.TenantService
}

// NewTenantLogger returns a logging service middleware for the tenant service.
func NewTenantLogger(log *zap.Logger, s castiel.TenantService) *TenantLogger {
	return &TenantLogger{
		logger:        log,
		tenantService: s,
	}
}

var _ castiel.TenantService = (*TenantLogger)(nil)

func (l *TenantLogger) CreateTenant(ctx context.Context, t *castiel.Tenant) (err error) {
	defer func(start time.Time) {
		dur := zap.Duration("took", time.Since(start))
		if err != nil {
			l.logger.Debug("failed to create tenant", zap.Error(err), dur)
			return
		}
		l.logger.Debug("tenant create", dur)
	}(time.Now())
	return l.tenantService.CreateTenant(ctx, t)
}

func (l *TenantLogger) FindTenantByID(ctx context.Context, id platform.ID) (t *castiel.Tenant, err error) {
	defer func(start time.Time) {
		dur := zap.Duration("took", time.Since(start))
		if err != nil {
			msg := fmt.Sprintf("failed to find tenant with ID %v", id)
			l.logger.Debug(msg, zap.Error(err), dur)
			return
		}
		l.logger.Debug("tenant find by ID", dur)
	}(time.Now())
	return l.tenantService.FindTenantByID(ctx, id)
}

func (l *TenantLogger) FindTenant(ctx context.Context, filter castiel.TenantFilter) (t *castiel.Tenant, err error) {
	defer func(start time.Time) {
		dur := zap.Duration("took", time.Since(start))
		if err != nil {
			l.logger.Debug("failed to find tenant matching the given filter", zap.Error(err), dur)
			return
		}
		l.logger.Debug("tenant find", dur)
	}(time.Now())
	return l.tenantService.FindTenant(ctx, filter)
}

func (l *TenantLogger) FindTenants(ctx context.Context, filter castiel.TenantFilter, opt ...castiel.FindOptions) (ts []*castiel.Tenant, n int, err error) {
	defer func(start time.Time) {
		dur := zap.Duration("took", time.Since(start))
		if err != nil {
			l.logger.Debug("failed to find tenants matching the given filter", zap.Error(err), dur)
			return
		}
		l.logger.Debug("tenants find", dur)
	}(time.Now())
	return l.tenantService.FindTenants(ctx, filter, opt...)
}

func (l *TenantLogger) UpdateTenant(ctx context.Context, id platform.ID, upd castiel.TenantUpdate) (t *castiel.Tenant, err error) {
	defer func(start time.Time) {
		dur := zap.Duration("took", time.Since(start))
		if err != nil {
			l.logger.Debug("failed to update tenant", zap.Error(err), dur)
			return
		}
		l.logger.Debug("tenant update", dur)
	}(time.Now())
	return l.tenantService.UpdateTenant(ctx, id, upd)
}

func (l *TenantLogger) DeleteTenant(ctx context.Context, id platform.ID) (err error) {
	defer func(start time.Time) {
		dur := zap.Duration("took", time.Since(start))
		if err != nil {
			msg := fmt.Sprintf("failed to delete tenant with ID %v", id)
			l.logger.Debug(msg, zap.Error(err), dur)
			return
		}
		l.logger.Debug("tenant delete", dur)
	}(time.Now())
	return l.tenantService.DeleteTenant(ctx, id)
}
