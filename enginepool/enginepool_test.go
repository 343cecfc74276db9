package enginepool

import (
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"

	"github.com/worldofcode/wocread/wocerr"
)

func TestPool_Get_MissingPath(t *testing.T) {
	pool := NewPool()
	_, err := pool.Get(filepath.Join(t.TempDir(), "does-not-exist"))
	assert.ErrorIs(t, err, wocerr.ErrShardMissing)
}

func TestPool_Get_CachesHandle(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "shard0")

	db, err := leveldb.OpenFile(dir, &opt.Options{})
	if err != nil {
		t.Fatalf("seeding fixture shard: %v", err)
	}
	if err := db.Put([]byte("k"), []byte("v"), nil); err != nil {
		t.Fatalf("seeding fixture key: %v", err)
	}
	db.Close()

	pool := NewPool()
	h1, err := pool.Get(dir)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	h2, err := pool.Get(dir)
	if err != nil {
		t.Fatalf("Get (cached): %v", err)
	}
	assert.Same(t, h1, h2)
	assert.Equal(t, 1, pool.Len())

	val, found, err := h1.Get([]byte("k"))
	if err != nil {
		t.Fatalf("handle.Get: %v", err)
	}
	assert.True(t, found)
	assert.Equal(t, []byte("v"), val)

	_, found, err = h1.Get([]byte("missing"))
	if err != nil {
		t.Fatalf("handle.Get(missing): %v", err)
	}
	assert.False(t, found)
}

// TestPool_Get_ConcurrentOpensShareOneHandle exercises the double-checked
// locking path (spec §4.4): many goroutines racing Get for the same path
// must all observe the same handle, and the shard must be opened exactly
// once regardless of how many lose the race to the write lock.
func TestPool_Get_ConcurrentOpensShareOneHandle(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "shard0")
	db, err := leveldb.OpenFile(dir, &opt.Options{})
	if err != nil {
		t.Fatalf("seeding fixture shard: %v", err)
	}
	db.Close()

	pool := NewPool()
	const n = 32
	var wg sync.WaitGroup
	handles := make([]Handle, n)
	errs := make([]error, n)

	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			handles[i], errs[i] = pool.Get(dir)
		}(i)
	}
	wg.Wait()

	for i := 0; i < n; i++ {
		if errs[i] != nil {
			t.Fatalf("Get[%d]: %v", i, errs[i])
		}
		assert.Same(t, handles[0], handles[i])
	}
	assert.Equal(t, 1, pool.Len())
}
