package bolt

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Edgame2/castiel/kv"
	"github.com/dustin/go-humanize"
	"github.com/opentracing/opentracing-go"
	bolt "go.etcd.io/bbolt"
	"go.uber.org/zap"
)

// KVStore is a kv.Store backed by boltdb.
type KVStore struct {
	path   string
	db     *bolt.DB
	logger *zap.Logger
}

// NewKVStore returns an instance of KVStore with the file at
// the provided path.
func NewKVStore(path string) *KVStore {
	return &KVStore{
		path:   path,
		logger: zap.NewNop(),
	}
}

// Open creates the boltDB file if it doesn't exist and opens it otherwise.
func (s *KVStore) Open(ctx context.Context) error {
	span, _ := opentracing.StartSpanFromContext(ctx, "KVStore.Open")
	defer span.Finish()

	// Ensure the required directory structure exists.
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("unable to create directory %s: %v", s.path, err)
	}

	if _, err := os.Stat(s.path); err != nil && !os.IsNotExist(err) {
		return err
	}

	db, err := bolt.Open(s.path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return fmt.Errorf("unable to open boltdb file %v", err)
	}
	s.db = db

	fields := []zap.Field{zap.String("path", s.path)}
	if fi, err := os.Stat(s.path); err == nil {
		fields = append(fields, zap.String("size", humanize.Bytes(uint64(fi.Size()))))
	}
	s.logger.Info("Resources opened", fields...)
	return nil
}

// Close the connection to the bolt database.
func (s *KVStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Flush removes all bolt keys within each bucket.
func (s *KVStore) Flush(ctx context.Context) {
	_ = s.db.Update(
		func(tx *bolt.Tx) error {
			return tx.ForEach(func(name []byte, b *bolt.Bucket) error {
				s.cleanBucket(tx, b)
				return nil
			})
		},
	)
}

func (s *KVStore) cleanBucket(tx *bolt.Tx, b *bolt.Bucket) {
	// nested bucket recursion base case:
	if b == nil {
		return
	}
	c := b.Cursor()
	for k, v := c.First(); k != nil; k, v = c.Next() {
		_ = v
		if err := c.Delete(); err != nil {
			// clean out nested buckets
			s.cleanBucket(tx, b.Bucket(k))
		}
	}
}

// WithLogger sets the logger on the store.
func (s *KVStore) WithLogger(l *zap.Logger) {
	s.logger = l
}

// WithDB sets the boltdb on the store.
func (s *KVStore) WithDB(db *bolt.DB) {
	s.db = db
}

// DB returns a reference to the underlying boltdb. Tests use it to inspect
// raw bucket state.
func (s *KVStore) DB() *bolt.DB {
	return s.db
}

// View opens up a view transaction against the store.
func (s *KVStore) View(ctx context.Context, fn func(tx kv.Tx) error) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "KVStore.View")
	defer span.Finish()

	return s.db.View(func(tx *bolt.Tx) error {
		return fn(&Tx{
			tx:  tx,
			ctx: ctx,
		})
	})
}

// Update opens up an update transaction against the store.
func (s *KVStore) Update(ctx context.Context, fn func(tx kv.Tx) error) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "KVStore.Update")
	defer span.Finish()

	return s.db.Update(func(tx *bolt.Tx) error {
		return fn(&Tx{
			tx:  tx,
			ctx: ctx,
		})
	})
}

// CreateBucket creates the bucket if it does not exist.
func (s *KVStore) CreateBucket(ctx context.Context, name []byte) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(name)
		return err
	})
}

// DeleteBucket deletes the bucket if it exists.
func (s *KVStore) DeleteBucket(ctx context.Context, name []byte) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(name); err != nil && err != bolt.ErrBucketNotFound {
			return err
		}
		return nil
	})
}

// Tx is a light wrapper around a boltdb transaction. It implements kv.Tx.
type Tx struct {
	tx  *bolt.Tx
	ctx context.Context
}

// Context returns the context for the transaction.
func (tx *Tx) Context() context.Context {
	return tx.ctx
}

// WithContext sets the context for the transaction.
func (tx *Tx) WithContext(ctx context.Context) {
	tx.ctx = ctx
}

// createBucketIfNotExists creates a bucket with the provided byte slice.
func (tx *Tx) createBucketIfNotExists(b []byte) (*Bucket, error) {
	bkt, err := tx.tx.CreateBucketIfNotExists(b)
	if err != nil {
		return nil, err
	}
	return &Bucket{
		bucket: bkt,
	}, nil
}

// Bucket retrieves the bucket named b.
func (tx *Tx) Bucket(b []byte) (kv.Bucket, error) {
	bkt := tx.tx.Bucket(b)
	if bkt == nil {
		if tx.tx.Writable() {
			return tx.createBucketIfNotExists(b)
		}
		return nil, kv.ErrBucketNotFound
	}
	return &Bucket{
		bucket: bkt,
	}, nil
}

// Bucket implements kv.Bucket.
type Bucket struct {
	bucket *bolt.Bucket
}

// Get retrieves the value at the provided key.
func (b *Bucket) Get(key []byte) ([]byte, error) {
	val := b.bucket.Get(key)
	if len(val) == 0 {
		return nil, kv.ErrKeyNotFound
	}

	return val, nil
}

// Put sets the value at the provided key.
func (b *Bucket) Put(key []byte, value []byte) error {
	err := b.bucket.Put(key, value)
	if err == bolt.ErrTxNotWritable {
		return kv.ErrTxNotWritable
	}
	return err
}

// Delete removes the provided key.
func (b *Bucket) Delete(key []byte) error {
	err := b.bucket.Delete(key)
	if err == bolt.ErrTxNotWritable {
		return kv.ErrTxNotWritable
	}
	return err
}

// Cursor retrieves a cursor for iterating through the entries
// in the key value store.
func (b *Bucket) Cursor() (kv.Cursor, error) {
	return &Cursor{
		cursor: b.bucket.Cursor(),
	}, nil
}

// Cursor is a struct for iterating through the entries
// in the key value store.
type Cursor struct {
	cursor *bolt.Cursor
}

// Seek seeks for the first key that matches the prefix provided.
func (c *Cursor) Seek(prefix []byte) ([]byte, []byte) {
	k, v := c.cursor.Seek(prefix)
	if len(k) == 0 && len(v) == 0 {
		return nil, nil
	}
	return k, v
}

// First retrieves the first key value pair in the bucket.
func (c *Cursor) First() ([]byte, []byte) {
	k, v := c.cursor.First()
	if len(k) == 0 && len(v) == 0 {
		return nil, nil
	}
	return k, v
}

// Last retrieves the last key value pair in the bucket.
func (c *Cursor) Last() ([]byte, []byte) {
	k, v := c.cursor.Last()
	if len(k) == 0 && len(v) == 0 {
		return nil, nil
	}
	return k, v
}

// Next retrieves the next key in the bucket.
func (c *Cursor) Next() ([]byte, []byte) {
	k, v := c.cursor.Next()
	if len(k) == 0 && len(v) == 0 {
		return nil, nil
	}
	return k, v
}

// Prev retrieves the previous key in the bucket.
func (c *Cursor) Prev() ([]byte, []byte) {
	k, v := c.cursor.Prev()
	if len(k) == 0 && len(v) == 0 {
		return nil, nil
	}
	return k, v
}

// ForwardCursor retrieves a cursor for iterating through the entries
// in the key value store in a single direction.
func (b *Bucket) ForwardCursor(seek []byte, opts ...kv.CursorOption) (kv.ForwardCursor, error) {
	var (
		conf = kv.NewCursorConfig(opts...)
		c    = b.bucket.Cursor()
	)

	var k, v []byte
	if conf.Direction == kv.CursorDescending {
		k, v = seekDescending(c, seek, conf.Prefix)
	} else {
		k, v = c.Seek(seek)
	}
	if conf.SkipFirst {
		k, v = next(c, conf.Direction)
	}

	return &ForwardCursor{
		cursor: c,
		config: conf,
		k:      k,
		v:      v,
	}, nil
}

// ForwardCursor is a kv.ForwardCursor over a boltdb cursor.
type ForwardCursor struct {
	cursor *bolt.Cursor
	config kv.CursorConfig

	k, v []byte

	closed bool
}

// Next returns the next key/value pair in the configured direction.
// It returns nil key and value once iteration is done.
func (c *ForwardCursor) Next() ([]byte, []byte) {
	if c.closed || c.k == nil {
		return nil, nil
	}

	k, v := c.k, c.v
	if !c.config.HasPrefix(k) {
		c.closed = true
		return nil, nil
	}

	c.k, c.v = next(c.cursor, c.config.Direction)
	return k, v
}

// Err always returns nil; bolt cursor iteration does not error.
func (c *ForwardCursor) Err() error {
	return nil
}

// Close releases the cursor.
func (c *ForwardCursor) Close() error {
	c.closed = true
	return nil
}

func next(c *bolt.Cursor, direction kv.CursorDirection) ([]byte, []byte) {
	if direction == kv.CursorDescending {
		return c.Prev()
	}
	return c.Next()
}

// seekDescending positions c on the last key at or below seek. When seek is
// empty or equal to the configured prefix, it positions on the last key
// within the prefix range so that Prev iteration covers the whole range.
func seekDescending(c *bolt.Cursor, seek, prefix []byte) ([]byte, []byte) {
	if len(seek) == 0 || bytes.Equal(seek, prefix) {
		succ := prefixSuccessor(prefix)
		if succ == nil {
			return c.Last()
		}
		if k, _ := c.Seek(succ); k == nil {
			return c.Last()
		}
		return c.Prev()
	}

	k, v := c.Seek(seek)
	if k == nil {
		return c.Last()
	}
	if !bytes.Equal(k, seek) {
		return c.Prev()
	}
	return k, v
}

// prefixSuccessor returns the smallest key sorting after every key that
// begins with prefix, or nil when no such key exists.
func prefixSuccessor(prefix []byte) []byte {
	for i := len(prefix) - 1; i >= 0; i-- {
		if prefix[i] != 0xff {
			succ := make([]byte, i+1)
			copy(succ, prefix)
			succ[i]++
			return succ
		}
	}
	return nil
}
