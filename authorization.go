package castiel

import (
	"context"
	"fmt"

	"github.com/Edgame2/castiel/kit/platform"
)

// Ops for authorization errors and journal events.
const (
	OpFindAuthorizationByID    = "FindAuthorizationByID"
	OpFindAuthorizationByToken = "FindAuthorizationByToken"
	OpFindAuthorizations       = "FindAuthorizations"
	OpCreateAuthorization      = "CreateAuthorization"
	OpUpdateAuthorization      = "UpdateAuthorization"
	OpDeleteAuthorization      = "DeleteAuthorization"
)

// AuthorizationKind is the kind string API tokens report for auditing.
const AuthorizationKind = "authorization"

// TokenGenerator represents a generator for API tokens.
type TokenGenerator interface {
	// Token generates a new API token.
	Token() (string, error)
}

// Status defines if a resource is active or inactive.
type Status string

const (
	// Active status means that the resource can be used.
	Active Status = "active"
	// Inactive status means that the resource cannot be used.
	Inactive Status = "inactive"
)

// Valid checks the status is a member of the Status enum.
func (s Status) Valid() error {
	switch s {
	case Active, Inactive:
		return nil
	default:
		return &Error{
			Code: EInvalid,
			Msg:  fmt.Sprintf("invalid status %q", s),
		}
	}
}

// Authorization is an API token: an authorizer users hand to clients.
type Authorization struct {
	ID          platform.ID  `json:"id,omitempty"`
	Token       string       `json:"token,omitempty"`
	Status      Status       `json:"status"`
	Description string       `json:"description,omitempty"`
	UserID      platform.ID  `json:"userID,omitempty"`
	Permissions []Permission `json:"permissions"`
	CRUDLog
}

// AuthorizationUpdate is the authorization update request.
type AuthorizationUpdate struct {
	Status      *Status `json:"status,omitempty"`
	Description *string `json:"description,omitempty"`
}

// Valid ensures that the authorization is valid.
func (a *Authorization) Valid() error {
	for _, p := range a.Permissions {
		if err := p.Valid(); err != nil {
			return err
		}
	}
	if a.Status == "" {
		a.Status = Active
	}
	return a.Status.Valid()
}

// PermissionSet returns the set of permissions associated with the Authorization.
func (a *Authorization) PermissionSet() (PermissionSet, error) {
	if !a.IsActive() {
		return nil, &Error{
			Code: EUnauthorized,
			Msg:  "authorization is inactive",
		}
	}
	return a.Permissions, nil
}

// IsActive returns true if the authorization is active.
func (a *Authorization) IsActive() bool {
	return a.Status == Active
}

// GetUserID returns the user id.
func (a *Authorization) GetUserID() platform.ID {
	return a.UserID
}

// Kind returns session's kind.
func (a *Authorization) Kind() string {
	return AuthorizationKind
}

// Identifier returns the authorization's id.
func (a *Authorization) Identifier() platform.ID {
	return a.ID
}

// AuthorizationService represents a service for managing authorization data.
type AuthorizationService interface {
	// FindAuthorizationByID returns a single authorization by ID.
	FindAuthorizationByID(ctx context.Context, id platform.ID) (*Authorization, error)

	// FindAuthorizationByToken returns a single authorization by Token.
	FindAuthorizationByToken(ctx context.Context, t string) (*Authorization, error)

	// FindAuthorizations returns a list of authorizations that match filter and
	// the total count of matching authorizations.
	FindAuthorizations(ctx context.Context, filter AuthorizationFilter, opt ...FindOptions) ([]*Authorization, int, error)

	// CreateAuthorization creates a new authorization and sets a.ID and
	// a.Token with the generated values.
	CreateAuthorization(ctx context.Context, a *Authorization) error

	// UpdateAuthorization updates the status and description if available.
	UpdateAuthorization(ctx context.Context, id platform.ID, upd AuthorizationUpdate) (*Authorization, error)

	// DeleteAuthorization removes an authorization by ID.
	DeleteAuthorization(ctx context.Context, id platform.ID) error
}

// AuthorizationFilter represents a set of filter that restrict the returned results.
type AuthorizationFilter struct {
	ID     *platform.ID
	UserID *platform.ID
}

// QueryParams implements PagingFilter.
func (f AuthorizationFilter) QueryParams() map[string][]string {
	qp := map[string][]string{}
	if f.ID != nil {
		qp["id"] = []string{f.ID.String()}
	}
	if f.UserID != nil {
		qp["userID"] = []string{f.UserID.String()}
	}
	return qp
}
