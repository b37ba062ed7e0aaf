// Package sync provides per-key locking for in-process stores.
package sync

import (
	"sync"

	"github.com/cespare/xxhash/v2"
)

const shardCount = 64

// KeyedMutex holds one mutex per live key, so work on one key never waits
// on another. The key registry is split into shards by hash; a shard lock is
// only held while an entry is looked up or released, never while the caller
// holds the key. Entries are dropped once no goroutine holds or waits on them.
// The zero value is ready to use.
type KeyedMutex struct {
	shards [shardCount]registry
}

type registry struct {
	mu    sync.Mutex
	locks map[string]*entry
}

type entry struct {
	mu   sync.Mutex
	refs int
}

func NewKeyedMutex() *KeyedMutex { return new(KeyedMutex) }

func (m *KeyedMutex) Lock(key string) {
	r := m.registry(key)
	r.mu.Lock()
	if r.locks == nil {
		r.locks = make(map[string]*entry)
	}
	e, ok := r.locks[key]
	if !ok {
		e = &entry{}
		r.locks[key] = e
	}
	e.refs++
	r.mu.Unlock()

	e.mu.Lock()
}

// Unlock panics when key is not locked, like sync.Mutex.
func (m *KeyedMutex) Unlock(key string) {
	r := m.registry(key)
	r.mu.Lock()
	e, ok := r.locks[key]
	if !ok {
		r.mu.Unlock()
		panic("sync: unlock of unlocked key " + key)
	}
	e.refs--
	if e.refs == 0 {
		delete(r.locks, key)
	}
	r.mu.Unlock()

	e.mu.Unlock()
}

// With runs fn holding key.
func (m *KeyedMutex) With(key string, fn func()) {
	m.Lock(key)
	defer m.Unlock(key)
	fn()
}

// held reports how many keys have a live entry.
func (m *KeyedMutex) held() int {
	n := 0
	for i := range m.shards {
		r := &m.shards[i]
		r.mu.Lock()
		n += len(r.locks)
		r.mu.Unlock()
	}
	return n
}

func (m *KeyedMutex) registry(key string) *registry {
	return &m.shards[shardIndex(key)]
}

func shardIndex(key string) int {
	return int(xxhash.Sum64String(key) % shardCount)
}
