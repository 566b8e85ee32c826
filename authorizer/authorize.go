// Package authorizer checks permissions against the authorizer stored on
// the request context before handing off to the underlying service.
package authorizer

import (
	"context"
	"fmt"

	"github.com/Edgame2/castiel"
	icontext "github.com/Edgame2/castiel/context"
	"github.com/Edgame2/castiel/kit/platform"
	"github.com/Edgame2/castiel/kit/platform/errors"
)

func isAllowedAll(a castiel.Authorizer, permissions []castiel.Permission) error {
	pset, err := a.PermissionSet()
	if err != nil {
		return err
	}

	for _, p := range permissions {
		if !pset.Allowed(p) {
			return &errors.Error{
				Code: errors.EUnauthorized,
				Msg:  fmt.Sprintf("%s is unauthorized", p),
			}
		}
	}
	return nil
}

func isAllowed(a castiel.Authorizer, p castiel.Permission) error {
	return isAllowedAll(a, []castiel.Permission{p})
}

// IsAllowedAll checks to see if an action is authorized by ALL permissions.
// Also see IsAllowed.
func IsAllowedAll(ctx context.Context, permissions []castiel.Permission) error {
	a, err := icontext.GetAuthorizer(ctx)
	if err != nil {
		return err
	}
	return isAllowedAll(a, permissions)
}

// IsAllowed checks to see if an action is authorized by retrieving the
// authorizer off of context and authorizing the action appropriately.
func IsAllowed(ctx context.Context, p castiel.Permission) error {
	return IsAllowedAll(ctx, []castiel.Permission{p})
}

// IsAllowedAny checks to see if an action is authorized by AT LEAST one
// of the permissions. Also see IsAllowed.
func IsAllowedAny(ctx context.Context, permissions []castiel.Permission) error {
	a, err := icontext.GetAuthorizer(ctx)
	if err != nil {
		return err
	}
	pset, err := a.PermissionSet()
	if err != nil {
		return err
	}
	for _, p := range permissions {
		if pset.Allowed(p) {
			return nil
		}
	}
	return &errors.Error{
		Code: errors.EUnauthorized,
		Msg:  fmt.Sprintf("none of %v is authorized", permissions),
	}
}

func authorize(ctx context.Context, a castiel.Action, rt castiel.ResourceType, tenantID platform.ID) (castiel.Authorizer, castiel.Permission, error) {
	p, err := castiel.NewPermission(a, rt, tenantID)
	if err != nil {
		return nil, castiel.Permission{}, err
	}
	auth, err := icontext.GetAuthorizer(ctx)
	if err != nil {
		return nil, castiel.Permission{}, err
	}
	return auth, *p, isAllowed(auth, *p)
}

// AuthorizeRead authorizes the user in the context to read the resource
// type within the given tenant.
func AuthorizeRead(ctx context.Context, rt castiel.ResourceType, tenantID platform.ID) (castiel.Authorizer, castiel.Permission, error) {
	return authorize(ctx, castiel.ReadAction, rt, tenantID)
}

// AuthorizeWrite authorizes the user in the context to write the resource
// type within the given tenant.
func AuthorizeWrite(ctx context.Context, rt castiel.ResourceType, tenantID platform.ID) (castiel.Authorizer, castiel.Permission, error) {
	return authorize(ctx, castiel.WriteAction, rt, tenantID)
}
