package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache is the storage interface shared by the memory, disk and
// layered implementations.
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// ResponseKey builds the cache key for an LLM call. Keys hash the
// document bytes rather than the file path, so the same datasheet
// uploaded twice under different names hits the cache, while any
// change to the content, the task or the model misses.
func ResponseKey(task, model string, content []byte) string {
	h := sha256.New()
	h.Write([]byte(task))
	h.Write([]byte{0})
	h.Write([]byte(model))
	h.Write([]byte{0})
	h.Write(content)
	return "gtip:v1:" + hex.EncodeToString(h.Sum(nil))
}
