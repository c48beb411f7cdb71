package cache

import (
	"container/list"
	"context"
	"encoding/json"
	"sync"
	"time"
)

type memoryEntry struct {
	key       string
	value     []byte
	expiresAt time.Time
}

// MemoryCache is an in-process LRU cache with per-entry TTL.
// Values are stored as marshaled JSON so Get can decode into any dest.
type MemoryCache struct {
	mu      sync.Mutex
	items   map[string]*list.Element
	order   *list.List
	maxSize int
	done    chan struct{}
	once    sync.Once
}

var _ Service = (*MemoryCache)(nil)

// NewMemoryCache creates a memory cache with the given options.
func NewMemoryCache(opts ...MemoryOption) *MemoryCache {
	cfg := MemoryConfig{
		MaxSize:         1000,
		CleanupInterval: time.Minute,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	c := &MemoryCache{
		items:   make(map[string]*list.Element),
		order:   list.New(),
		maxSize: cfg.MaxSize,
		done:    make(chan struct{}),
	}

	go c.cleanupLoop(cfg.CleanupInterval)
	return c
}

func (c *MemoryCache) Set(_ context.Context, key string, value any, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	entry := &memoryEntry{key: key, value: data}
	if expiration > 0 {
		entry.expiresAt = time.Now().Add(expiration)
	}

	if elem, ok := c.items[key]; ok {
		elem.Value = entry
		c.order.MoveToFront(elem)
		return nil
	}

	c.items[key] = c.order.PushFront(entry)
	for c.order.Len() > c.maxSize {
		c.evictOldest()
	}
	return nil
}

func (c *MemoryCache) Get(_ context.Context, key string, dest any) error {
	c.mu.Lock()
	elem, ok := c.items[key]
	if !ok {
		c.mu.Unlock()
		return ErrCacheMiss
	}
	entry := elem.Value.(*memoryEntry)
	if !entry.expiresAt.IsZero() && time.Now().After(entry.expiresAt) {
		c.removeElement(elem)
		c.mu.Unlock()
		return ErrCacheMiss
	}
	c.order.MoveToFront(elem)
	data := entry.value
	c.mu.Unlock()

	return json.Unmarshal(data, dest)
}

func (c *MemoryCache) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, key := range keys {
		if elem, ok := c.items[key]; ok {
			c.removeElement(elem)
		}
	}
	return nil
}

func (c *MemoryCache) Exists(_ context.Context, keys ...string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := time.Now()
	var count int64
	for _, key := range keys {
		elem, ok := c.items[key]
		if !ok {
			continue
		}
		entry := elem.Value.(*memoryEntry)
		if !entry.expiresAt.IsZero() && now.After(entry.expiresAt) {
			continue
		}
		count++
	}
	return count, nil
}

func (c *MemoryCache) Close() error {
	c.once.Do(func() { close(c.done) })
	return nil
}

func (c *MemoryCache) evictOldest() {
	if elem := c.order.Back(); elem != nil {
		c.removeElement(elem)
	}
}

func (c *MemoryCache) removeElement(elem *list.Element) {
	entry := elem.Value.(*memoryEntry)
	delete(c.items, entry.key)
	c.order.Remove(elem)
}

func (c *MemoryCache) cleanupLoop(interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			c.removeExpired()
		}
	}
}

func (c *MemoryCache) removeExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := time.Now()
	for elem := c.order.Back(); elem != nil; {
		prev := elem.Prev()
		entry := elem.Value.(*memoryEntry)
		if !entry.expiresAt.IsZero() && now.After(entry.expiresAt) {
			c.removeElement(elem)
		}
		elem = prev
	}
}
