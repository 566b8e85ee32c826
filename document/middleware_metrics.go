package document

import (
	"context"

	"github.com/Edgame2/castiel"
	"github.com/Edgame2/castiel/kit/metric"
	"github.com/Edgame2/castiel/kit/platform"
	"github.com/prometheus/client_golang/prometheus"
)

// DocumentMetrics is a metrics service middleware for the document service.
type DocumentMetrics struct {
	rec             *metric.REDClient
	documentService castiel.DocumentService
}

var _ castiel.DocumentService = (*DocumentMetrics)(nil)

// NewDocumentMetrics returns a metrics service middleware for the document
// service.
func NewDocumentMetrics(reg prometheus.Registerer, s castiel.DocumentService) *DocumentMetrics {
	return &DocumentMetrics{
		rec:             metric.New(reg, "document"),
		documentService: s,
	}
}

func (m *DocumentMetrics) FindDocumentByID(ctx context.Context, tenantID, id platform.ID) (*castiel.Document, error) {
	rec := m.rec.Record("find_document_by_id")
	d, err := m.documentService.FindDocumentByID(ctx, tenantID, id)
	return d, rec(err)
}

func (m *DocumentMetrics) FindDocuments(ctx context.Context, filter castiel.DocumentFilter, opt ...castiel.FindOptions) ([]*castiel.Document, int, error) {
	rec := m.rec.Record("find_documents")
	ds, n, err := m.documentService.FindDocuments(ctx, filter, opt...)
	return ds, n, rec(err)
}

func (m *DocumentMetrics) CreateDocument(ctx context.Context, d *castiel.Document, content []byte) error {
	rec := m.rec.Record("create_document")
	err := m.documentService.CreateDocument(ctx, d, content)
	return rec(err)
}

func (m *DocumentMetrics) ReadDocumentContent(ctx context.Context, tenantID, id platform.ID) ([]byte, error) {
	rec := m.rec.Record("read_document_content")
	content, err := m.documentService.ReadDocumentContent(ctx, tenantID, id)
	return content, rec(err)
}

func (m *DocumentMetrics) UpdateDocument(ctx context.Context, tenantID, id platform.ID, upd castiel.DocumentUpdate) (*castiel.Document, error) {
	rec := m.rec.Record("update_document")
	d, err := m.documentService.UpdateDocument(ctx, tenantID, id, upd)
	return d, rec(err)
}

func (m *DocumentMetrics) DeleteDocument(ctx context.Context, tenantID, id platform.ID) error {
	rec := m.rec.Record("delete_document")
	err := m.documentService.DeleteDocument(ctx, tenantID, id)
	return rec(err)
}

func (m *DocumentMetrics) HardDeleteDocument(ctx context.Context, tenantID, id platform.ID) error {
	rec := m.rec.Record("hard_delete_document")
	err := m.documentService.HardDeleteDocument(ctx, tenantID, id)
	return rec(err)
}
