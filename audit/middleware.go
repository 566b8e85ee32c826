package audit

import (
	"context"

	"github.com/Edgame2/castiel"
	icontext "github.com/Edgame2/castiel/context"
	"github.com/Edgame2/castiel/kit/platform"
	"go.uber.org/zap"
)

// recorder is the shared half of the audit decorators. Recording failures
// are logged and swallowed; the audited call's result is never affected.
type recorder struct {
	log          *zap.Logger
	auditService castiel.AuditService
}

func (r recorder) record(ctx context.Context, tenantID platform.ID, action string, resourceType castiel.ResourceType, resourceID platform.ID, detail map[string]interface{}) {
	e := &castiel.AuditLogEntry{
		TenantID:      tenantID,
		Action:        action,
		ResourceType:  resourceType,
		ResourceID:    resourceID,
		CorrelationID: icontext.GetCorrelationID(ctx),
		Detail:        detail,
	}
	if actor, err := icontext.GetUserID(ctx); err == nil {
		e.Actor = actor
	}

	if err := r.auditService.RecordAuditEvent(ctx, e); err != nil {
		r.log.Warn("failed to record audit event",
			zap.String("action", action),
			zap.String("resourceType", string(resourceType)),
			zap.Error(err))
	}
}
