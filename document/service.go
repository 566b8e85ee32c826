package document

import (
	"context"
	"crypto/sha256"
	"encoding/hex"

	"github.com/Edgame2/castiel"
	icontext "github.com/Edgame2/castiel/context"
	"github.com/Edgame2/castiel/kit/platform"
	"github.com/Edgame2/castiel/kv"
)

// Service implements the document service over one kv store. The optional
// shard service validates shard references on writes.
type Service struct {
	store        *Store
	shardService castiel.ShardService
}

var _ castiel.DocumentService = (*Service)(nil)

// NewService creates a new document service. shardService may be nil, in
// which case shard references are stored unchecked.
func NewService(st *Store, shardService castiel.ShardService) *Service {
	return &Service{
		store:        st,
		shardService: shardService,
	}
}

func checksum(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

func (s *Service) validateShardRef(ctx context.Context, tenantID platform.ID, shardID *platform.ID) error {
	if shardID == nil || s.shardService == nil {
		return nil
	}
	_, err := s.shardService.FindShardByID(ctx, tenantID, *shardID)
	return err
}

// FindDocumentByID returns a single document by ID.
func (s *Service) FindDocumentByID(ctx context.Context, tenantID, id platform.ID) (*castiel.Document, error) {
	var d *castiel.Document
	err := s.store.View(ctx, func(tx kv.Tx) error {
		doc, err := s.store.GetDocument(ctx, tx, tenantID, id)
		if err != nil {
			return err
		}
		d = doc
		return nil
	})
	if err != nil {
		return nil, err
	}
	return d, nil
}

// FindDocuments returns the documents matching filter and the total count
// of matching documents. Soft-deleted documents are excluded.
func (s *Service) FindDocuments(ctx context.Context, filter castiel.DocumentFilter, opt ...castiel.FindOptions) ([]*castiel.Document, int, error) {
	var (
		docs  []*castiel.Document
		total int
	)
	err := s.store.View(ctx, func(tx kv.Tx) error {
		ds, n, err := s.store.ListDocuments(ctx, tx, filter, opt...)
		if err != nil {
			return err
		}
		docs, total = ds, n
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return docs, total, nil
}

// CreateDocument stores content and creates the metadata record, computing
// size and checksum over the uncompressed bytes. New documents start at
// version 1 and default to draft.
func (s *Service) CreateDocument(ctx context.Context, d *castiel.Document, content []byte) error {
	if d.Status == "" {
		d.Status = castiel.DocumentDraft
	}
	if err := d.Valid(); err != nil {
		return err
	}
	if err := s.validateShardRef(ctx, d.TenantID, d.ShardID); err != nil {
		return err
	}

	if creator, err := icontext.GetUserID(ctx); err == nil {
		d.CreatedBy = creator
	}

	return s.store.Update(ctx, func(tx kv.Tx) error {
		d.ID = s.store.IDGen.ID()
		d.Size = int64(len(content))
		d.Checksum = checksum(content)
		d.Version = 1
		now := s.store.TimeGen.Now()
		d.SetCreatedAt(now)
		d.SetUpdatedAt(now)

		if err := s.store.PutContent(ctx, tx, d.TenantID, d.ID, content); err != nil {
			return err
		}
		return s.store.PutDocument(ctx, tx, d)
	})
}

// ReadDocumentContent returns the stored content of a document.
func (s *Service) ReadDocumentContent(ctx context.Context, tenantID, id platform.ID) ([]byte, error) {
	var content []byte
	err := s.store.View(ctx, func(tx kv.Tx) error {
		if _, err := s.store.GetDocument(ctx, tx, tenantID, id); err != nil {
			return err
		}
		c, err := s.store.GetContent(ctx, tx, tenantID, id)
		if err != nil {
			return err
		}
		content = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return content, nil
}

// UpdateDocument applies the changeset and returns the new state. New
// content replaces the stored bytes, recomputes size and checksum, and
// bumps the version.
func (s *Service) UpdateDocument(ctx context.Context, tenantID, id platform.ID, upd castiel.DocumentUpdate) (*castiel.Document, error) {
	if err := upd.Valid(); err != nil {
		return nil, err
	}
	if err := s.validateShardRef(ctx, tenantID, upd.ShardID); err != nil {
		return nil, err
	}

	var d *castiel.Document
	err := s.store.Update(ctx, func(tx kv.Tx) error {
		doc, err := s.store.GetDocument(ctx, tx, tenantID, id)
		if err != nil {
			return err
		}

		if upd.Name != nil {
			doc.Name = *upd.Name
		}
		if upd.ContentType != nil {
			doc.ContentType = *upd.ContentType
		}
		if upd.Status != nil {
			doc.Status = *upd.Status
		}
		if upd.ShardID != nil {
			doc.ShardID = upd.ShardID
		}
		if upd.Content != nil {
			if err := s.store.PutContent(ctx, tx, tenantID, id, upd.Content); err != nil {
				return err
			}
			doc.Size = int64(len(upd.Content))
			doc.Checksum = checksum(upd.Content)
			doc.Version++
		}

		doc.SetUpdatedAt(s.store.TimeGen.Now())
		if err := s.store.PutDocument(ctx, tx, doc); err != nil {
			return err
		}
		d = doc
		return nil
	})
	if err != nil {
		return nil, err
	}
	return d, nil
}

// DeleteDocument soft deletes a document. Content is retained until hard
// delete.
func (s *Service) DeleteDocument(ctx context.Context, tenantID, id platform.ID) error {
	return s.store.Update(ctx, func(tx kv.Tx) error {
		d, err := s.store.GetDocument(ctx, tx, tenantID, id)
		if err != nil {
			return err
		}

		now := s.store.TimeGen.Now()
		d.DeletedAt = &now
		d.SetUpdatedAt(now)
		return s.store.PutDocument(ctx, tx, d)
	})
}

// HardDeleteDocument removes the document and its content.
func (s *Service) HardDeleteDocument(ctx context.Context, tenantID, id platform.ID) error {
	return s.store.Update(ctx, func(tx kv.Tx) error {
		if _, err := s.store.GetDocument(ctx, tx, tenantID, id); err != nil {
			return err
		}
		if err := s.store.DeleteContent(ctx, tx, tenantID, id); err != nil {
			return err
		}
		return s.store.DeleteDocument(ctx, tx, tenantID, id)
	})
}
