package audit

import (
	"context"

	"github.com/Edgame2/castiel"
	"github.com/Edgame2/castiel/kit/platform"
	"go.uber.org/zap"
)

// DocumentService records an audit entry for every successful mutating call
// of the wrapped document service.
type DocumentService struct {
	recorder
	underlying castiel.DocumentService
}

var _ castiel.DocumentService = (*DocumentService)(nil)

// NewDocumentService decorates s with audit recording.
func NewDocumentService(log *zap.Logger, auditService castiel.AuditService, s castiel.DocumentService) *DocumentService {
	return &DocumentService{
		recorder:   recorder{log: log, auditService: auditService},
		underlying: s,
	}
}

func (s *DocumentService) FindDocumentByID(ctx context.Context, tenantID, id platform.ID) (*castiel.Document, error) {
	return s.underlying.FindDocumentByID(ctx, tenantID, id)
}

func (s *DocumentService) FindDocuments(ctx context.Context, filter castiel.DocumentFilter, opt ...castiel.FindOptions) ([]*castiel.Document, int, error) {
	return s.underlying.FindDocuments(ctx, filter, opt...)
}

func (s *DocumentService) CreateDocument(ctx context.Context, d *castiel.Document, content []byte) error {
	if err := s.underlying.CreateDocument(ctx, d, content); err != nil {
		return err
	}
	s.record(ctx, d.TenantID, castiel.AuditActionCreate, castiel.DocumentsResourceType, d.ID, map[string]interface{}{
		"name": d.Name,
		"size": d.Size,
	})
	return nil
}

func (s *DocumentService) ReadDocumentContent(ctx context.Context, tenantID, id platform.ID) ([]byte, error) {
	return s.underlying.ReadDocumentContent(ctx, tenantID, id)
}

func (s *DocumentService) UpdateDocument(ctx context.Context, tenantID, id platform.ID, upd castiel.DocumentUpdate) (*castiel.Document, error) {
	d, err := s.underlying.UpdateDocument(ctx, tenantID, id, upd)
	if err != nil {
		return nil, err
	}
	detail := map[string]interface{}{}
	if upd.Content != nil {
		detail["version"] = d.Version
	}
	s.record(ctx, tenantID, castiel.AuditActionUpdate, castiel.DocumentsResourceType, id, detail)
	return d, nil
}

func (s *DocumentService) DeleteDocument(ctx context.Context, tenantID, id platform.ID) error {
	if err := s.underlying.DeleteDocument(ctx, tenantID, id); err != nil {
		return err
	}
	s.record(ctx, tenantID, castiel.AuditActionDelete, castiel.DocumentsResourceType, id, nil)
	return nil
}

func (s *DocumentService) HardDeleteDocument(ctx context.Context, tenantID, id platform.ID) error {
	if err := s.underlying.HardDeleteDocument(ctx, tenantID, id); err != nil {
		return err
	}
	s.record(ctx, tenantID, castiel.AuditActionHardDelete, castiel.DocumentsResourceType, id, nil)
	return nil
}
