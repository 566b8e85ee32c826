package inmem

import (
	"bytes"
	"context"
	"fmt"
	"sync"

	"github.com/Edgame2/castiel/kv"
	"github.com/google/btree"
)

// ensure *KVStore implements kv.SchemaStore
var _ kv.SchemaStore = (*KVStore)(nil)

// KVStore is an in memory btree backed kv.Store.
type KVStore struct {
	mu      sync.RWMutex
	buckets map[string]*Bucket
}

// NewKVStore creates an instance of a KVStore.
func NewKVStore() *KVStore {
	return &KVStore{
		buckets: map[string]*Bucket{},
	}
}

// View opens up a transaction with a read lock.
func (s *KVStore) View(ctx context.Context, fn func(kv.Tx) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(&Tx{
		kv:       s,
		writable: false,
		ctx:      ctx,
	})
}

// Update opens up a transaction with a write lock.
func (s *KVStore) Update(ctx context.Context, fn func(kv.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(&Tx{
		kv:       s,
		writable: true,
		ctx:      ctx,
	})
}

// CreateBucket creates a bucket with the provided name if one does not exist.
func (s *KVStore) CreateBucket(ctx context.Context, name []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.buckets[string(name)]; !ok {
		s.buckets[string(name)] = &Bucket{btree: btree.New(2)}
	}
	return nil
}

// DeleteBucket removes the bucket with the provided name.
func (s *KVStore) DeleteBucket(ctx context.Context, name []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.buckets, string(name))
	return nil
}

// Flush removes all data from the buckets, leaving the buckets in place.
func (s *KVStore) Flush(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range s.buckets {
		b.btree.Clear(false)
	}
}

// Tx is an in memory transaction.
type Tx struct {
	kv       *KVStore
	writable bool
	ctx      context.Context
}

// Context returns the context for the transaction.
func (t *Tx) Context() context.Context {
	return t.ctx
}

// WithContext sets the context for the transaction.
func (t *Tx) WithContext(ctx context.Context) {
	t.ctx = ctx
}

// Bucket retrieves the bucket at the provided key, creating it on first use
// in a writable transaction.
func (t *Tx) Bucket(b []byte) (kv.Bucket, error) {
	bkt, ok := t.kv.buckets[string(b)]
	if !ok {
		if !t.writable {
			return nil, kv.ErrBucketNotFound
		}
		bkt = &Bucket{btree: btree.New(2)}
		t.kv.buckets[string(b)] = bkt
	}

	return &bucket{
		Bucket:   bkt,
		writable: t.writable,
	}, nil
}

// Bucket is a btree that implements kv.Bucket.
type Bucket struct {
	btree *btree.BTree
}

// bucket enforces writability on top of Bucket.
type bucket struct {
	kv.Bucket
	writable bool
}

// Put wraps the put method of a kv bucket and ensures that the
// bucket is writable.
func (b *bucket) Put(key, value []byte) error {
	if b.writable {
		return b.Bucket.Put(key, value)
	}
	return kv.ErrTxNotWritable
}

// Delete wraps the delete method of a kv bucket and ensures that the
// bucket is writable.
func (b *bucket) Delete(key []byte) error {
	if b.writable {
		return b.Bucket.Delete(key)
	}
	return kv.ErrTxNotWritable
}

type item struct {
	key   []byte
	value []byte
}

// Less is used to implement btree.Item.
func (i *item) Less(b btree.Item) bool {
	j, ok := b.(*item)
	if !ok {
		return false
	}

	return bytes.Compare(i.key, j.key) < 0
}

// Get retrieves the value at the provided key.
func (b *Bucket) Get(key []byte) ([]byte, error) {
	i := b.btree.Get(&item{key: key})

	if i == nil {
		return nil, kv.ErrKeyNotFound
	}

	j, ok := i.(*item)
	if !ok {
		return nil, fmt.Errorf("error item is type %T not *item", i)
	}

	return j.value, nil
}

// Put sets the key value pair provided.
func (b *Bucket) Put(key []byte, value []byte) error {
	_ = b.btree.ReplaceOrInsert(&item{key: key, value: value})
	return nil
}

// Delete removes the key provided.
func (b *Bucket) Delete(key []byte) error {
	_ = b.btree.Delete(&item{key: key})
	return nil
}

// Cursor creates a static cursor from all entries in the bucket.
func (b *Bucket) Cursor() (kv.Cursor, error) {
	return &staticCursor{pairs: b.getAll()}, nil
}

// ForwardCursor returns a directional cursor over a static snapshot of the
// bucket taken at call time.
func (b *Bucket) ForwardCursor(seek []byte, opts ...kv.CursorOption) (kv.ForwardCursor, error) {
	conf := kv.NewCursorConfig(opts...)

	var pairs []pair
	add := func(i btree.Item) bool {
		j, ok := i.(*item)
		if !ok {
			return false
		}
		if !conf.HasPrefix(j.key) {
			return true
		}
		pairs = append(pairs, pair{k: j.key, v: j.value})
		return true
	}

	if conf.Direction == kv.CursorDescending {
		pivot := seek
		if len(seek) == 0 || bytes.Equal(seek, conf.Prefix) {
			// Descending over a prefix range starts at the last key in
			// the range, not at the prefix itself.
			pivot = prefixSuccessor(conf.Prefix)
		}
		if pivot == nil {
			b.btree.Descend(add)
		} else {
			b.btree.DescendLessOrEqual(&item{key: pivot}, add)
		}
	} else {
		if len(seek) == 0 {
			b.btree.Ascend(add)
		} else {
			b.btree.AscendGreaterOrEqual(&item{key: seek}, add)
		}
	}

	if conf.SkipFirst && len(pairs) > 0 {
		pairs = pairs[1:]
	}

	return &forwardCursor{pairs: pairs}, nil
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

func (b *Bucket) getAll() []pair {
	pairs := make([]pair, 0, b.btree.Len())
	b.btree.Ascend(func(i btree.Item) bool {
		j, ok := i.(*item)
		if !ok {
			return false
		}
		pairs = append(pairs, pair{k: j.key, v: j.value})
		return true
	})
	return pairs
}

type pair struct {
	k, v []byte
}

// staticCursor implements kv.Cursor over a fixed set of pairs.
type staticCursor struct {
	idx   int
	pairs []pair
}

func (c *staticCursor) Seek(prefix []byte) ([]byte, []byte) {
	for i, p := range c.pairs {
		if bytes.HasPrefix(p.k, prefix) {
			c.idx = i
			return p.k, p.v
		}
	}
	return nil, nil
}

func (c *staticCursor) First() ([]byte, []byte) {
	c.idx = 0
	return c.at()
}

func (c *staticCursor) Last() ([]byte, []byte) {
	c.idx = len(c.pairs) - 1
	return c.at()
}

func (c *staticCursor) Next() ([]byte, []byte) {
	c.idx++
	return c.at()
}

func (c *staticCursor) Prev() ([]byte, []byte) {
	c.idx--
	return c.at()
}

func (c *staticCursor) at() ([]byte, []byte) {
	if c.idx < 0 || c.idx >= len(c.pairs) {
		return nil, nil
	}
	p := c.pairs[c.idx]
	return p.k, p.v
}

// forwardCursor implements kv.ForwardCursor over a fixed set of pairs.
type forwardCursor struct {
	idx   int
	pairs []pair
}

func (c *forwardCursor) Next() ([]byte, []byte) {
	if c.idx >= len(c.pairs) {
		return nil, nil
	}
	p := c.pairs[c.idx]
	c.idx++
	return p.k, p.v
}

func (c *forwardCursor) Err() error {
	return nil
}

func (c *forwardCursor) Close() error {
	return nil
}
