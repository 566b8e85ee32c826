package inmem_test

import (
	"context"
	"testing"

	"github.com/Edgame2/castiel/inmem"
	"github.com/Edgame2/castiel/kv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testBucket = []byte("index")

func seedCursorBucket(t *testing.T, store kv.Store) {
	t.Helper()
	require.NoError(t, store.Update(context.Background(), func(tx kv.Tx) error {
		b, err := tx.Bucket(testBucket)
		if err != nil {
			return err
		}
		for _, k := range []string{"s0/x", "t1/a", "t1/b", "t1/c", "t2/x"} {
			if err := b.Put([]byte(k), []byte(k)); err != nil {
				return err
			}
		}
		return nil
	}))
}

func scanKeys(t *testing.T, store kv.Store, seek []byte, opts ...kv.CursorOption) []string {
	t.Helper()
	var keys []string
	require.NoError(t, store.View(context.Background(), func(tx kv.Tx) error {
		b, err := tx.Bucket(testBucket)
		if err != nil {
			return err
		}
		cursor, err := b.ForwardCursor(seek, opts...)
		if err != nil {
			return err
		}
		defer cursor.Close()
		for k, _ := cursor.Next(); k != nil; k, _ = cursor.Next() {
			keys = append(keys, string(k))
		}
		return cursor.Err()
	}))
	return keys
}

func TestBucket_ForwardCursor_Prefix(t *testing.T) {
	store := inmem.NewKVStore()
	seedCursorBucket(t, store)

	prefix := []byte("t1/")
	assert.Equal(t, []string{"t1/a", "t1/b", "t1/c"},
		scanKeys(t, store, prefix, kv.WithCursorPrefix(prefix)))
}

func TestBucket_ForwardCursor_DescendingPrefix(t *testing.T) {
	store := inmem.NewKVStore()
	seedCursorBucket(t, store)

	prefix := []byte("t1/")
	// seek at the prefix covers the whole range back to front
	assert.Equal(t, []string{"t1/c", "t1/b", "t1/a"},
		scanKeys(t, store, prefix,
			kv.WithCursorPrefix(prefix),
			kv.WithCursorDirection(kv.CursorDescending)))

	// seek inside the range starts at the seek key
	assert.Equal(t, []string{"t1/b", "t1/a"},
		scanKeys(t, store, []byte("t1/b"),
			kv.WithCursorPrefix(prefix),
			kv.WithCursorDirection(kv.CursorDescending)))
}
