package cache

import (
	"errors"
	"io"
	"time"
)

// LayeredCache checks memory first and falls back to a persistent layer.
type LayeredCache struct {
	memory Cache
	disk   Cache
}

// NewLayeredCache puts a go-cache memory layer in front of disk.
func NewLayeredCache(memoryTTL time.Duration, disk Cache) *LayeredCache {
	return &LayeredCache{
		memory: NewMemoryCache(memoryTTL, 10*time.Minute),
		disk:   disk,
	}
}

func (c *LayeredCache) Get(key string) ([]byte, bool) {
	if val, found := c.memory.Get(key); found {
		return val, true
	}
	if c.disk == nil {
		return nil, false
	}
	if val, found := c.disk.Get(key); found {
		// Promote to memory with its default TTL.
		_ = c.memory.Set(key, val, 0)
		return val, true
	}
	return nil, false
}

func (c *LayeredCache) Set(key string, value []byte, ttl time.Duration) error {
	if err := c.memory.Set(key, value, ttl); err != nil {
		return err
	}
	if c.disk == nil {
		return nil
	}
	return c.disk.Set(key, value, ttl)
}

func (c *LayeredCache) Delete(key string) error {
	err := c.memory.Delete(key)
	if c.disk != nil {
		err = errors.Join(err, c.disk.Delete(key))
	}
	return err
}

func (c *LayeredCache) Clear() error {
	err := c.memory.Clear()
	if c.disk != nil {
		err = errors.Join(err, c.disk.Clear())
	}
	return err
}

// Close closes the persistent layer if it holds resources.
func (c *LayeredCache) Close() error {
	if closer, ok := c.disk.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
