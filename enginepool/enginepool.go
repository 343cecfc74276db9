// Package enginepool is the process-wide pool of opened hash-table shard
// handles (spec §4.4). It is the only shared-mutable state in the query
// engine: a double-checked read lock guards a path->handle map, following
// the shape of the teacher's MultiEpoch registry (multiepoch.go: a
// sync.RWMutex-guarded map[uint64]*Epoch populated lazily via
// AddEpoch/GetEpoch), generalized here from "one epoch" to "one shard
// path". Cache hits take only the read lock, so concurrent lookups of
// already-opened shards never serialize on each other (spec §5).
//
// The underlying engine is spec §6's black-box "Tokyo-Cabinet-style"
// key/value store. This module backs it with github.com/syndtr/goleveldb
// opened read-only, a real embedded store lifted from the dependency
// graph of the noms example repo (which used it as a chunk-store engine);
// its concrete on-disk format is, per §6, not part of the specification.
package enginepool

import (
	"fmt"
	"os"
	"sync"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/errors"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"k8s.io/klog/v2"

	"github.com/worldofcode/wocread/wocerr"
)

// Handle is a read-only handle on one shard's underlying key/value store.
type Handle interface {
	// Get returns the raw value for key, or (nil, false, nil) if absent.
	Get(key []byte) (value []byte, found bool, err error)
}

type levelDBHandle struct {
	db *leveldb.DB
}

func (h *levelDBHandle) Get(key []byte) ([]byte, bool, error) {
	v, err := h.db.Get(key, nil)
	if err != nil {
		if err == errors.ErrNotFound {
			return nil, false, nil
		}
		return nil, false, err
	}
	return v, true, nil
}

// Pool is a process-wide, never-evicted map from shard path to an opened
// Handle. Safe for concurrent use. The zero value is ready to use.
type Pool struct {
	mu      sync.RWMutex
	handles map[string]Handle
}

// NewPool returns an empty Pool.
func NewPool() *Pool {
	return &Pool{handles: make(map[string]Handle)}
}

// Get returns the handle for path, opening and caching it on first access.
// A cache hit only takes the read lock, so it never blocks on or
// serializes with other readers; only the first caller to see a miss pays
// the write lock plus the blocking leveldb.OpenFile call. Once inserted,
// a handle is never closed or evicted for the life of the process (spec
// §5).
func (p *Pool) Get(path string) (Handle, error) {
	p.mu.RLock()
	h, ok := p.handles[path]
	p.mu.RUnlock()
	if ok {
		return h, nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if h, ok := p.handles[path]; ok {
		return h, nil
	}
	if p.handles == nil {
		p.handles = make(map[string]Handle)
	}

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("shard %q: %w", path, wocerr.ErrShardMissing)
		}
		return nil, fmt.Errorf("shard %q: %w", path, err)
	}

	db, err := leveldb.OpenFile(path, &opt.Options{ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("opening shard %q: %w", path, err)
	}
	klog.V(2).Infof("enginepool: opened shard %s", path)

	h := &levelDBHandle{db: db}
	p.handles[path] = h
	return h, nil
}

// Len returns the number of distinct shards currently open. Test-only
// introspection hook.
func (p *Pool) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.handles)
}
