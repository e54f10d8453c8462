package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache stores raw extraction payloads by key.
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key hashes the parts that determine an extraction result. Parts are
// separated by a NUL byte so ("ab","c") and ("a","bc") differ.
func Key(parts ...string) string {
	h := sha256.New()
	for i, p := range parts {
		if i > 0 {
			h.Write([]byte{0})
		}
		h.Write([]byte(p))
	}
	return "topic-agent:v1:" + hex.EncodeToString(h.Sum(nil))
}
