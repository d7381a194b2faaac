package output

import (
	"fmt"
	"sync"
)

// Cache は出力種別ごとに一つだけ Output を生成して共有する
type Cache struct {
	registry *Registry

	mu      sync.Mutex
	entries map[string]*cacheEntry
}

type cacheEntry struct {
	once sync.Once
	out  Output
	err  error
}

// NewCache は新しいキャッシュを作成する
func NewCache(registry *Registry) *Cache {
	return &Cache{
		registry: registry,
		entries:  make(map[string]*cacheEntry),
	}
}

// Get は種別に対応する Output を返す。初回のみ生成する
func (c *Cache) Get(kind string) (Output, error) {
	name, factory, err := c.registry.Resolve(kind)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	e, ok := c.entries[name]
	if !ok {
		e = &cacheEntry{}
		c.entries[name] = e
	}
	c.mu.Unlock()

	e.once.Do(func() {
		e.out, e.err = factory()
		if e.err == nil && e.out == nil {
			e.err = fmt.Errorf("factory returned no output")
		}
		if e.err != nil {
			e.err = fmt.Errorf("%w: %q: %w", ErrUnresolvableOutput, kind, e.err)
		}
	})
	return e.out, e.err
}

// Len は解決を試みた種別数を返す
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
