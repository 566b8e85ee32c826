package castiel

import (
	"context"
	"time"

	"github.com/Edgame2/castiel/kit/platform"
)

// Ops for audit errors and audit journal events.
const (
	OpRecordAuditEvent = "RecordAuditEvent"
	OpFindAuditEvents  = "FindAuditEvents"
	OpPurgeAuditEvents = "PurgeAuditEvents"
)

// Audit actions recorded by the integration middlewares.
const (
	AuditActionCreate     = "create"
	AuditActionUpdate     = "update"
	AuditActionDelete     = "delete"
	AuditActionRestore    = "restore"
	AuditActionHardDelete = "hard-delete"
	AuditActionLink       = "link"
	AuditActionUnlink     = "unlink"
	AuditActionACLChange  = "acl-change"
)

// AuditLogEntry is one append-only record of a mutating service call.
type AuditLogEntry struct {
	ID            platform.ID            `json:"id,omitempty"`
	TenantID      platform.ID            `json:"tenantID"`
	Actor         platform.ID            `json:"actor,omitempty"`
	Action        string                 `json:"action"`
	ResourceType  ResourceType           `json:"resourceType"`
	ResourceID    platform.ID            `json:"resourceID,omitempty"`
	CorrelationID string                 `json:"correlationID,omitempty"`
	Detail        map[string]interface{} `json:"detail,omitempty"`
	Time          time.Time              `json:"time"`
}

// Valid validates the entry.
func (e AuditLogEntry) Valid() error {
	if !e.TenantID.Valid() {
		return &Error{
			Code: EInvalid,
			Msg:  "audit entry tenant id is invalid",
		}
	}
	if e.Action == "" {
		return &Error{
			Code: EEmptyValue,
			Msg:  "audit entry action cannot be empty",
		}
	}
	return e.ResourceType.Valid()
}

// AuditFilter represents a set of filters that restrict the returned results.
type AuditFilter struct {
	TenantID     platform.ID
	Actor        *platform.ID
	ResourceType *ResourceType
	ResourceID   *platform.ID
	Action       *string
	After        *time.Time
	Before       *time.Time
}

// QueryParams implements PagingFilter.
func (f AuditFilter) QueryParams() map[string][]string {
	qp := map[string][]string{}
	if f.Actor != nil {
		qp["actor"] = []string{f.Actor.String()}
	}
	if f.ResourceType != nil {
		qp["resourceType"] = []string{string(*f.ResourceType)}
	}
	if f.ResourceID != nil {
		qp["resourceID"] = []string{f.ResourceID.String()}
	}
	if f.Action != nil {
		qp["action"] = []string{*f.Action}
	}
	if f.After != nil {
		qp["after"] = []string{f.After.Format(time.RFC3339Nano)}
	}
	if f.Before != nil {
		qp["before"] = []string{f.Before.Format(time.RFC3339Nano)}
	}
	return qp
}

// AuditService records and queries the audit log. Recording failures must
// never fail the call being audited; decorators log and move on.
type AuditService interface {
	// RecordAuditEvent appends an entry to the log and sets e.ID.
	RecordAuditEvent(ctx context.Context, e *AuditLogEntry) error

	// FindAuditEvents returns the entries matching filter, newest first,
	// and the total count of matching entries.
	FindAuditEvents(ctx context.Context, filter AuditFilter, opt ...FindOptions) ([]*AuditLogEntry, int, error)

	// PurgeAuditEvents removes entries older than before and reports how
	// many were dropped. Operator only.
	PurgeAuditEvents(ctx context.Context, before time.Time) (int64, error)
}
