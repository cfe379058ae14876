package llm

import (
	"context"
	"crypto/sha256"
	"fmt"
	"sync"
	"time"

	"github.com/sprintpoint/paperchase/internal/model"
)

// cacheEntry represents a cached classification result.
type cacheEntry struct {
	expiry time.Time
	doc    model.ClassifiedDocument
}

// cachingClient wraps a Client with a thread-safe TTL cache keyed by the
// hash of the document text, so re-processing an unchanged folder does not
// re-bill the provider within a process lifetime.
type cachingClient struct {
	inner   Client
	entries map[string]cacheEntry
	ttl     time.Duration
	mu      sync.RWMutex
}

// newCachingClient wraps inner with a result cache using the given TTL.
func newCachingClient(inner Client, ttl time.Duration) *cachingClient {
	if ttl == 0 {
		ttl = 15 * time.Minute
	}
	return &cachingClient{
		inner:   inner,
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
	}
}

// Classify returns a cached result when available, otherwise delegates to
// the wrapped client. Errors are never cached.
func (c *cachingClient) Classify(ctx context.Context, text string) (model.ClassifiedDocument, error) {
	key := cacheKey(text)

	if doc, ok := c.get(key); ok {
		return doc, nil
	}

	doc, err := c.inner.Classify(ctx, text)
	if err != nil {
		return model.ClassifiedDocument{}, err
	}

	c.set(key, doc)
	return doc, nil
}

func (c *cachingClient) get(key string) (model.ClassifiedDocument, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, exists := c.entries[key]
	if !exists {
		return model.ClassifiedDocument{}, false
	}

	if time.Now().After(entry.expiry) {
		return model.ClassifiedDocument{}, false
	}

	return entry.doc, true
}

func (c *cachingClient) set(key string, doc model.ClassifiedDocument) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = cacheEntry{
		doc:    doc,
		expiry: time.Now().Add(c.ttl),
	}
}

func cacheKey(text string) string {
	sum := sha256.Sum256([]byte(text))
	return fmt.Sprintf("%x", sum)
}
