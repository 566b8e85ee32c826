// Package document implements the managed file services: metadata CRUD and
// compressed content storage.
package document

import (
	"context"
	"encoding/json"

	"github.com/Edgame2/castiel"
	"github.com/Edgame2/castiel/kit/platform"
	"github.com/Edgame2/castiel/kv"
	"github.com/Edgame2/castiel/snowflake"
	"github.com/golang/snappy"
)

var (
	documentBucket = []byte("documentsv1")
	contentBucket  = []byte("documentcontentv1")
)

// Store is the kv-backed persistence layer for documents. Metadata and
// content live in separate buckets under the same tenant-scoped key, and
// content is snappy-compressed at rest.
type Store struct {
	kvStore kv.Store
	IDGen   platform.IDGenerator
	TimeGen castiel.TimeGenerator
}

// NewStore creates a store over the provided kv store.
func NewStore(kvStore kv.Store) *Store {
	return &Store{
		kvStore: kvStore,
		IDGen:   snowflake.NewIDGenerator(),
		TimeGen: castiel.RealTimeGenerator{},
	}
}

// View opens up a transaction that will not write to any data.
func (s *Store) View(ctx context.Context, fn func(kv.Tx) error) error {
	return s.kvStore.View(ctx, fn)
}

// Update opens up a transaction that will mutate data.
func (s *Store) Update(ctx context.Context, fn func(kv.Tx) error) error {
	return s.kvStore.Update(ctx, fn)
}

func documentKey(tenantID, id platform.ID) ([]byte, error) {
	encodedTenantID, err := tenantID.Encode()
	if err != nil {
		return nil, ErrCorruptID(err)
	}
	encodedID, err := id.Encode()
	if err != nil {
		return nil, ErrCorruptID(err)
	}

	k := make([]byte, 0, 2*platform.IDLength)
	k = append(k, encodedTenantID...)
	k = append(k, encodedID...)
	return k, nil
}

func unmarshalDocument(v []byte) (*castiel.Document, error) {
	d := &castiel.Document{}
	if err := json.Unmarshal(v, d); err != nil {
		return nil, ErrCorruptID(err)
	}
	return d, nil
}

// GetDocument retrieves a document by tenant and id. Soft-deleted
// documents are returned; visibility is the service's concern.
func (s *Store) GetDocument(ctx context.Context, tx kv.Tx, tenantID, id platform.ID) (*castiel.Document, error) {
	key, err := documentKey(tenantID, id)
	if err != nil {
		return nil, err
	}

	b, err := tx.Bucket(documentBucket)
	if err != nil {
		if kv.IsNotFound(err) {
			return nil, ErrDocumentNotFound
		}
		return nil, ErrInternalServiceError(err)
	}

	v, err := b.Get(key)
	if kv.IsNotFound(err) {
		return nil, ErrDocumentNotFound
	}
	if err != nil {
		return nil, ErrInternalServiceError(err)
	}

	return unmarshalDocument(v)
}

// PutDocument persists a metadata record at its tenant-scoped key.
func (s *Store) PutDocument(ctx context.Context, tx kv.Tx, d *castiel.Document) error {
	key, err := documentKey(d.TenantID, d.ID)
	if err != nil {
		return err
	}

	v, err := json.Marshal(d)
	if err != nil {
		return ErrInternalServiceError(err)
	}

	b, err := tx.Bucket(documentBucket)
	if err != nil {
		return ErrInternalServiceError(err)
	}
	if err := b.Put(key, v); err != nil {
		return ErrInternalServiceError(err)
	}
	return nil
}

// DeleteDocument physically removes a metadata record.
func (s *Store) DeleteDocument(ctx context.Context, tx kv.Tx, tenantID, id platform.ID) error {
	key, err := documentKey(tenantID, id)
	if err != nil {
		return err
	}

	b, err := tx.Bucket(documentBucket)
	if err != nil {
		if kv.IsNotFound(err) {
			return ErrDocumentNotFound
		}
		return ErrInternalServiceError(err)
	}
	if err := b.Delete(key); err != nil {
		return ErrInternalServiceError(err)
	}
	return nil
}

// PutContent compresses and stores the document bytes.
func (s *Store) PutContent(ctx context.Context, tx kv.Tx, tenantID, id platform.ID, content []byte) error {
	key, err := documentKey(tenantID, id)
	if err != nil {
		return err
	}

	b, err := tx.Bucket(contentBucket)
	if err != nil {
		return ErrInternalServiceError(err)
	}
	if err := b.Put(key, snappy.Encode(nil, content)); err != nil {
		return ErrInternalServiceError(err)
	}
	return nil
}

// GetContent retrieves and decompresses the document bytes.
func (s *Store) GetContent(ctx context.Context, tx kv.Tx, tenantID, id platform.ID) ([]byte, error) {
	key, err := documentKey(tenantID, id)
	if err != nil {
		return nil, err
	}

	b, err := tx.Bucket(contentBucket)
	if err != nil {
		if kv.IsNotFound(err) {
			return nil, ErrContentNotFound
		}
		return nil, ErrInternalServiceError(err)
	}

	v, err := b.Get(key)
	if kv.IsNotFound(err) {
		return nil, ErrContentNotFound
	}
	if err != nil {
		return nil, ErrInternalServiceError(err)
	}

	content, err := snappy.Decode(nil, v)
	if err != nil {
		return nil, ErrContentCorrupt
	}
	return content, nil
}

// DeleteContent physically removes the document bytes.
func (s *Store) DeleteContent(ctx context.Context, tx kv.Tx, tenantID, id platform.ID) error {
	key, err := documentKey(tenantID, id)
	if err != nil {
		return err
	}

	b, err := tx.Bucket(contentBucket)
	if err != nil {
		if kv.IsNotFound(err) {
			return nil
		}
		return ErrInternalServiceError(err)
	}
	if err := b.Delete(key); err != nil {
		return ErrInternalServiceError(err)
	}
	return nil
}

func matchDocument(d *castiel.Document, filter castiel.DocumentFilter) bool {
	if d.DeletedAt != nil {
		return false
	}
	if filter.Status != nil && d.Status != *filter.Status {
		return false
	}
	if filter.ShardID != nil && (d.ShardID == nil || *d.ShardID != *filter.ShardID) {
		return false
	}
	return true
}

// ListDocuments prefix-scans the tenant's key range, filtering and
// paginating in one pass. Returns the page and the total match count.
func (s *Store) ListDocuments(ctx context.Context, tx kv.Tx, filter castiel.DocumentFilter, opt ...castiel.FindOptions) ([]*castiel.Document, int, error) {
	var o castiel.FindOptions
	if len(opt) > 0 {
		o = opt[0]
	}

	b, err := tx.Bucket(documentBucket)
	if err != nil {
		if kv.IsNotFound(err) {
			return nil, 0, nil
		}
		return nil, 0, ErrInternalServiceError(err)
	}

	prefix, err := filter.TenantID.Encode()
	if err != nil {
		return nil, 0, ErrCorruptID(err)
	}

	opts := []kv.CursorOption{kv.WithCursorPrefix(prefix)}
	if o.Descending {
		opts = append(opts, kv.WithCursorDirection(kv.CursorDescending))
	}

	cursor, err := b.ForwardCursor(prefix, opts...)
	if err != nil {
		return nil, 0, ErrInternalServiceError(err)
	}
	defer cursor.Close()

	matched := 0
	docs := []*castiel.Document{}
	for k, v := cursor.Next(); k != nil; k, v = cursor.Next() {
		d, err := unmarshalDocument(v)
		if err != nil {
			return nil, 0, err
		}
		if !matchDocument(d, filter) {
			continue
		}

		matched++
		if o.Offset != 0 && matched <= o.Offset {
			continue
		}
		if o.Limit != 0 && len(docs) >= o.Limit {
			continue
		}
		docs = append(docs, d)
	}

	return docs, matched, cursor.Err()
}
