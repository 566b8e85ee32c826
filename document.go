package castiel

import (
	"context"
	"fmt"
	"time"

	"github.com/Edgame2/castiel/kit/platform"
)

// Ops for document errors and document journal events.
const (
	OpFindDocumentByID    = "FindDocumentByID"
	OpFindDocuments       = "FindDocuments"
	OpCreateDocument      = "CreateDocument"
	OpUpdateDocument      = "UpdateDocument"
	OpDeleteDocument      = "DeleteDocument"
	OpHardDeleteDocument  = "HardDeleteDocument"
	OpReadDocumentContent = "ReadDocumentContent"
)

// DocumentStatus defines the publication state of a document.
type DocumentStatus string

const (
	// DocumentDraft is a document still being authored.
	DocumentDraft DocumentStatus = "draft"
	// DocumentPublished is a document visible to context assembly.
	DocumentPublished DocumentStatus = "published"
	// DocumentArchived is a document kept for the record but hidden from
	// default finds.
	DocumentArchived DocumentStatus = "archived"
)

// Valid checks the status is a member of the DocumentStatus enum.
func (s DocumentStatus) Valid() error {
	switch s {
	case DocumentDraft, DocumentPublished, DocumentArchived:
		return nil
	default:
		return &Error{
			Code: EInvalid,
			Msg:  fmt.Sprintf("invalid document status %q", s),
		}
	}
}

// Document is the metadata record of a managed file. Content lives in a
// separate bucket, compressed at rest; Size and Checksum describe the
// uncompressed bytes.
type Document struct {
	ID          platform.ID    `json:"id,omitempty"`
	TenantID    platform.ID    `json:"tenantID"`
	Name        string         `json:"name"`
	ContentType string         `json:"contentType"`
	Size        int64          `json:"size"`
	Checksum    string         `json:"checksum"`
	Version     int            `json:"version"`
	Status      DocumentStatus `json:"status"`
	ShardID     *platform.ID   `json:"shardID,omitempty"`
	CreatedBy   platform.ID    `json:"createdBy,omitempty"`
	DeletedAt   *time.Time     `json:"deletedAt,omitempty"`
	CRUDLog
}

// Valid validates the document record.
func (d Document) Valid() error {
	if d.Name == "" {
		return &Error{
			Code: EEmptyValue,
			Msg:  "document name cannot be empty",
		}
	}
	if !d.TenantID.Valid() {
		return &Error{
			Code: EInvalid,
			Msg:  "document tenant id is invalid",
		}
	}
	if d.Status != "" {
		return d.Status.Valid()
	}
	return nil
}

// DocumentFilter represents a set of filters that restrict the returned results.
type DocumentFilter struct {
	TenantID platform.ID
	ShardID  *platform.ID
	Status   *DocumentStatus
}

// QueryParams implements PagingFilter.
func (f DocumentFilter) QueryParams() map[string][]string {
	qp := map[string][]string{}
	if f.ShardID != nil {
		qp["shardID"] = []string{f.ShardID.String()}
	}
	if f.Status != nil {
		qp["status"] = []string{string(*f.Status)}
	}
	return qp
}

// DocumentUpdate is the set of changes to apply to a document. Non-nil
// Content replaces the stored bytes and bumps Version.
type DocumentUpdate struct {
	Name        *string         `json:"name,omitempty"`
	ContentType *string         `json:"contentType,omitempty"`
	Status      *DocumentStatus `json:"status,omitempty"`
	ShardID     *platform.ID    `json:"shardID,omitempty"`
	Content     []byte          `json:"content,omitempty"`
}

// Valid reports whether the changeset holds applicable values.
func (upd DocumentUpdate) Valid() error {
	if upd.Name != nil && *upd.Name == "" {
		return &Error{
			Code: EEmptyValue,
			Msg:  "document name cannot be empty",
		}
	}
	if upd.Status != nil {
		return upd.Status.Valid()
	}
	return nil
}

// DocumentService represents a service for managing documents and their
// content.
type DocumentService interface {
	// FindDocumentByID returns a single document by ID.
	FindDocumentByID(ctx context.Context, tenantID, id platform.ID) (*Document, error)

	// FindDocuments returns the documents matching filter and the total
	// count of matching documents. Soft-deleted documents are excluded.
	FindDocuments(ctx context.Context, filter DocumentFilter, opt ...FindOptions) ([]*Document, int, error)

	// CreateDocument stores content and creates the metadata record,
	// computing size and checksum. Sets d.ID with the new identifier.
	CreateDocument(ctx context.Context, d *Document, content []byte) error

	// ReadDocumentContent returns the stored content of a document.
	ReadDocumentContent(ctx context.Context, tenantID, id platform.ID) ([]byte, error)

	// UpdateDocument applies the changeset and returns the new state. New
	// content bumps the document version.
	UpdateDocument(ctx context.Context, tenantID, id platform.ID, upd DocumentUpdate) (*Document, error)

	// DeleteDocument soft deletes a document. Content is retained.
	DeleteDocument(ctx context.Context, tenantID, id platform.ID) error

	// HardDeleteDocument removes the document and its content.
	HardDeleteDocument(ctx context.Context, tenantID, id platform.ID) error
}
