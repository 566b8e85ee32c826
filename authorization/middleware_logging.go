package authorization

import (
	"context"
	"time"

	"github.com/Edgame2/castiel"
	"github.com/Edgame2/castiel/kit/platform"
	"go.uber.org/zap"
)

var _ castiel.AuthorizationService = (*AuthLogger)(nil)

// AuthLogger logs authorization service calls and their durations.
type AuthLogger struct {
	log         *zap.Logger
	authService castiel.AuthorizationService
}

// NewAuthLogger returns a logging service middleware for the Authorization Service.
func NewAuthLogger(log *zap.Logger, s castiel.AuthorizationService) *AuthLogger {
	return &AuthLogger{
		log:         log,
		authService: s,
	}
}

func (l *AuthLogger) FindAuthorizationByID(ctx context.Context, id platform.ID) (a *castiel.Authorization, err error) {
	defer func(start time.Time) {
		dur := zap.Duration("took", time.Since(start))
		if err != nil {
			l.log.Debug("failed to find authorization by ID", zap.Error(err), dur)
			return
		}
		l.log.Debug("authorization find by ID", dur)
	}(time.Now())
	return l.authService.FindAuthorizationByID(ctx, id)
}

func (l *AuthLogger) FindAuthorizationByToken(ctx context.Context, t string) (a *castiel.Authorization, err error) {
	defer func(start time.Time) {
		dur := zap.Duration("took", time.Since(start))
		if err != nil {
			l.log.Debug("failed to find authorization by token", zap.Error(err), dur)
			return
		}
		l.log.Debug("authorization find by token", dur)
	}(time.Now())
	return l.authService.FindAuthorizationByToken(ctx, t)
}

func (l *AuthLogger) FindAuthorizations(ctx context.Context, filter castiel.AuthorizationFilter, opt ...castiel.FindOptions) (auths []*castiel.Authorization, n int, err error) {
	defer func(start time.Time) {
		dur := zap.Duration("took", time.Since(start))
		if err != nil {
			l.log.Debug("failed to find authorizations matching the given filter", zap.Error(err), dur)
			return
		}
		l.log.Debug("authorizations find", dur)
	}(time.Now())
	return l.authService.FindAuthorizations(ctx, filter, opt...)
}

func (l *AuthLogger) CreateAuthorization(ctx context.Context, a *castiel.Authorization) (err error) {
	defer func(start time.Time) {
		dur := zap.Duration("took", time.Since(start))
		if err != nil {
			l.log.Debug("failed to create authorization", zap.Error(err), dur)
			return
		}
		l.log.Debug("authorization create", dur)
	}(time.Now())
	return l.authService.CreateAuthorization(ctx, a)
}

func (l *AuthLogger) UpdateAuthorization(ctx context.Context, id platform.ID, upd castiel.AuthorizationUpdate) (a *castiel.Authorization, err error) {
	defer func(start time.Time) {
		dur := zap.Duration("took", time.Since(start))
		if err != nil {
			l.log.Debug("failed to update authorization", zap.Error(err), dur)
			return
		}
		l.log.Debug("authorization update", dur)
	}(time.Now())
	return l.authService.UpdateAuthorization(ctx, id, upd)
}

func (l *AuthLogger) DeleteAuthorization(ctx context.Context, id platform.ID) (err error) {
	defer func(start time.Time) {
		dur := zap.Duration("took", time.Since(start))
		if err != nil {
			l.log.Debug("failed to delete authorization", zap.Error(err), dur)
			return
		}
		l.log.Debug("authorization delete", dur)
	}(time.Now())
	return l.authService.DeleteAuthorization(ctx, id)
}
