package mock

import (
	"context"

	"github.com/Edgame2/castiel"
	"github.com/Edgame2/castiel/kit/platform"
)

var _ castiel.DocumentService = (*DocumentService)(nil)

// DocumentService is a mock implementation of castiel.DocumentService.
type DocumentService struct {
	FindDocumentByIDFn   func(ctx context.Context, tenantID, id platform.ID) (*castiel.Document, error)
	FindDocumentsFn      func(ctx context.Context, filter castiel.DocumentFilter, opt ...castiel.FindOptions) ([]*castiel.Document, int, error)
	CreateDocumentFn     func(ctx context.Context, d *castiel.Document, content []byte) error
	ReadDocumentContentFn func(ctx context.Context, tenantID, id platform.ID) ([]byte, error)
	UpdateDocumentFn     func(ctx context.Context, tenantID, id platform.ID, upd castiel.DocumentUpdate) (*castiel.Document, error)
	DeleteDocumentFn     func(ctx context.Context, tenantID, id platform.ID) error
	HardDeleteDocumentFn func(ctx context.Context, tenantID, id platform.ID) error
}

// FindDocumentByID returns a single document by ID.
func (s *DocumentService) FindDocumentByID(ctx context.Context, tenantID, id platform.ID) (*castiel.Document, error) {
	return s.FindDocumentByIDFn(ctx, tenantID, id)
}

// FindDocuments returns the documents matching filter.
func (s *DocumentService) FindDocuments(ctx context.Context, filter castiel.DocumentFilter, opt ...castiel.FindOptions) ([]*castiel.Document, int, error) {
	return s.FindDocumentsFn(ctx, filter, opt...)
}

// CreateDocument stores content and creates the metadata record.
func (s *DocumentService) CreateDocument(ctx context.Context, d *castiel.Document, content []byte) error {
	return s.CreateDocumentFn(ctx, d, content)
}

// ReadDocumentContent returns the stored content of a document.
func (s *DocumentService) ReadDocumentContent(ctx context.Context, tenantID, id platform.ID) ([]byte, error) {
	return s.ReadDocumentContentFn(ctx, tenantID, id)
}

// UpdateDocument applies the changeset to a document.
func (s *DocumentService) UpdateDocument(ctx context.Context, tenantID, id platform.ID, upd castiel.DocumentUpdate) (*castiel.Document, error) {
	return s.UpdateDocumentFn(ctx, tenantID, id, upd)
}

// DeleteDocument soft deletes a document.
func (s *DocumentService) DeleteDocument(ctx context.Context, tenantID, id platform.ID) error {
	return s.DeleteDocumentFn(ctx, tenantID, id)
}

// HardDeleteDocument removes the document and its content.
func (s *DocumentService) HardDeleteDocument(ctx context.Context, tenantID, id platform.ID) error {
	return s.HardDeleteDocumentFn(ctx, tenantID, id)
}
