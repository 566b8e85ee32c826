package mock

import (
	"context"
	"time"

	"github.com/Edgame2/castiel"
)

var _ castiel.AuditService = (*AuditService)(nil)

// AuditService is a mock implementation of castiel.AuditService.
type AuditService struct {
	RecordAuditEventFn func(ctx context.Context, e *castiel.AuditLogEntry) error
	FindAuditEventsFn  func(ctx context.Context, filter castiel.AuditFilter, opt ...castiel.FindOptions) ([]*castiel.AuditLogEntry, int, error)
	PurgeAuditEventsFn func(ctx context.Context, before time.Time) (int64, error)
}

// RecordAuditEvent appends an entry to the log.
func (s *AuditService) RecordAuditEvent(ctx context.Context, e *castiel.AuditLogEntry) error {
	return s.RecordAuditEventFn(ctx, e)
}

// FindAuditEvents returns the entries matching filter, newest first.
func (s *AuditService) FindAuditEvents(ctx context.Context, filter castiel.AuditFilter, opt ...castiel.FindOptions) ([]*castiel.AuditLogEntry, int, error) {
	return s.FindAuditEventsFn(ctx, filter, opt...)
}

// PurgeAuditEvents removes entries older than before.
func (s *AuditService) PurgeAuditEvents(ctx context.Context, before time.Time) (int64, error) {
	return s.PurgeAuditEventsFn(ctx, before)
}
