// Package cache memoizes processed statements by the SHA-256 digest of
// their source bytes.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/redjonzaci/union-bank-statement-extractor/internal/logging"
	"github.com/redjonzaci/union-bank-statement-extractor/internal/models"
)

// Digest returns the hex SHA-256 of data. It is the only cache key: two
// uploads with the same bytes share a result whatever their file names.
func Digest(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Cache is a bounded LRU of processed documents. Concurrent loads of the
// same digest run once. A nil *Cache is valid and never stores anything.
type Cache struct {
	entries *lru.Cache[string, *models.Document]
	group   singleflight.Group
	log     logrus.FieldLogger
}

// New returns a cache holding up to size documents. A size of zero or less
// disables storage but still coalesces concurrent loads.
func New(size int, log logrus.FieldLogger) (*Cache, error) {
	c := &Cache{log: log}
	if size > 0 {
		entries, err := lru.New[string, *models.Document](size)
		if err != nil {
			return nil, fmt.Errorf("failed to create cache: %w", err)
		}
		c.entries = entries
	}
	return c, nil
}

// Get returns the cached document for digest.
func (c *Cache) Get(digest string) (*models.Document, bool) {
	if c == nil || c.entries == nil {
		return nil, false
	}
	return c.entries.Get(digest)
}

// Len is the number of cached documents.
func (c *Cache) Len() int {
	if c == nil || c.entries == nil {
		return 0
	}
	return c.entries.Len()
}

// GetOrLoad returns the cached document for digest, or runs load and caches
// its result. Failed loads are not cached. hit reports whether the result
// came from the cache or was shared with a concurrent caller.
func (c *Cache) GetOrLoad(digest string, load func() (*models.Document, error)) (doc *models.Document, hit bool, err error) {
	if c == nil {
		doc, err = load()
		return doc, false, err
	}
	if doc, ok := c.Get(digest); ok {
		c.debug(digest, "Cache hit")
		return doc, true, nil
	}

	v, err, shared := c.group.Do(digest, func() (interface{}, error) {
		// a load that finished after our Get may already have stored it
		if doc, ok := c.Get(digest); ok {
			return doc, nil
		}
		doc, err := load()
		if err != nil {
			return nil, err
		}
		if c.entries != nil {
			c.entries.Add(digest, doc)
		}
		return doc, nil
	})
	if err != nil {
		return nil, false, err
	}
	if shared {
		c.debug(digest, "Joined in-flight load")
	}
	return v.(*models.Document), shared, nil
}

func (c *Cache) debug(digest, msg string) {
	if c.log == nil {
		return
	}
	c.log.WithField(logging.FieldDigest, digest).Debug(msg)
}
