package store

import (
	"fmt"
	"sort"

	dbm "github.com/cosmos/cosmos-db"
)

type batcher interface {
	NewBatch() dbm.Batch
}

// CacheStore buffers writes on top of a parent store. Reads see the buffered
// writes first. Nothing reaches the parent until Write is called, so
// dropping a CacheStore discards every staged write.
type CacheStore struct {
	parent KVStore
	dirty  map[string][]byte
}

func NewCacheStore(parent KVStore) *CacheStore {
	if parent == nil {
		panic("store: parent is nil")
	}
	return &CacheStore{parent: parent, dirty: map[string][]byte{}}
}

func (c *CacheStore) Get(key []byte) ([]byte, error) {
	if v, ok := c.dirty[string(key)]; ok {
		return append([]byte(nil), v...), nil
	}
	return c.parent.Get(key)
}

func (c *CacheStore) Set(key, value []byte) error {
	if len(key) == 0 {
		return fmt.Errorf("store: empty key")
	}
	if value == nil {
		return fmt.Errorf("store: nil value")
	}
	c.dirty[string(key)] = append([]byte(nil), value...)
	return nil
}

// Dirty reports how many keys are staged.
func (c *CacheStore) Dirty() int { return len(c.dirty) }

func (c *CacheStore) sortedKeys() []string {
	keys := make([]string, 0, len(c.dirty))
	for k := range c.dirty {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Range calls fn for every staged write in key order.
func (c *CacheStore) Range(fn func(key, value []byte)) {
	for _, k := range c.sortedKeys() {
		fn([]byte(k), c.dirty[k])
	}
}

// Write flushes staged writes to the parent in key order. When the parent is
// backed by a database the flush is a single synced batch.
func (c *CacheStore) Write() error {
	keys := c.sortedKeys()

	if b, ok := c.parent.(batcher); ok {
		batch := b.NewBatch()
		defer batch.Close()
		for _, k := range keys {
			if err := batch.Set([]byte(k), c.dirty[k]); err != nil {
				return fmt.Errorf("stage batch: %w", err)
			}
		}
		if err := batch.WriteSync(); err != nil {
			return fmt.Errorf("write batch: %w", err)
		}
	} else {
		for _, k := range keys {
			if err := c.parent.Set([]byte(k), c.dirty[k]); err != nil {
				return err
			}
		}
	}
	c.dirty = map[string][]byte{}
	return nil
}
