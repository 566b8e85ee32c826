// Package context provides access to request-scoped platform values, the
// authorizer above all.
package context

import (
	"context"

	"github.com/Edgame2/castiel"
	"github.com/Edgame2/castiel/kit/platform"
	"github.com/Edgame2/castiel/kit/platform/errors"
)

type contextKey string

const (
	authorizerCtxKey    contextKey = "authorizer"
	correlationIDCtxKey contextKey = "correlation id"
)

// SetAuthorizer sets an authorizer on context.
func SetAuthorizer(ctx context.Context, a castiel.Authorizer) context.Context {
	return context.WithValue(ctx, authorizerCtxKey, a)
}

// GetAuthorizer retrieves an authorizer from context.
func GetAuthorizer(ctx context.Context) (castiel.Authorizer, error) {
	a, ok := ctx.Value(authorizerCtxKey).(castiel.Authorizer)
	if !ok {
		return nil, &errors.Error{
			Msg:  "authorizer not found on context",
			Code: errors.EInternal,
		}
	}

	if a == nil {
		return nil, &errors.Error{
			Code: errors.EInternal,
			Msg:  "unexpected invalid authorizer",
		}
	}

	return a, nil
}

// GetUserID retrieves the user ID from the authorizer on context.
func GetUserID(ctx context.Context) (platform.ID, error) {
	a, err := GetAuthorizer(ctx)
	if err != nil {
		return 0, err
	}
	return a.GetUserID(), nil
}

// SetCorrelationID sets a correlation id on context. Handlers assign one per
// request; the audit and cache layers propagate it.
func SetCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationIDCtxKey, id)
}

// GetCorrelationID retrieves the correlation id from context, or an empty
// string if none was set.
func GetCorrelationID(ctx context.Context) string {
	id, _ := ctx.Value(correlationIDCtxKey).(string)
	return id
}
