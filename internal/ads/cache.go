package ads

import (
	"sync"

	"github.com/google/uuid"

	"github.com/tegarerputra/Scheduling-System-JFU/internal/models"
)

// Cache is a read-through cache of ads keyed by id, kept fresh by the
// change feed. Feed events win over locally cached copies by updated_at
// (last-write-wins), so provisional local state is always overwritten once
// the authoritative event arrives.
type Cache struct {
	mu  sync.RWMutex
	ads map[uuid.UUID]models.Ad
}

// NewCache creates an empty ad cache.
func NewCache() *Cache {
	return &Cache{ads: make(map[uuid.UUID]models.Ad)}
}

// AttachTo subscribes the cache to a feed and returns the subscription id.
func (c *Cache) AttachTo(feed *Feed) int {
	return feed.Subscribe(c.Apply)
}

// Get returns a copy of the cached ad, if present.
func (c *Cache) Get(id uuid.UUID) (models.Ad, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ad, ok := c.ads[id]
	return ad, ok
}

// Put stores ad unless a newer version is already cached.
func (c *Cache) Put(ad models.Ad) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if cur, ok := c.ads[ad.ID]; ok && cur.UpdatedAt.After(ad.UpdatedAt) {
		return
	}
	c.ads[ad.ID] = ad
}

// Delete evicts an ad.
func (c *Cache) Delete(id uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.ads, id)
}

// Len returns the number of cached ads.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.ads)
}

// Apply folds a feed event into the cache.
func (c *Cache) Apply(ev FeedEvent) {
	switch ev.Type {
	case FeedInsert, FeedUpdate:
		if ev.Ad != nil {
			c.Put(*ev.Ad)
		}
	case FeedDelete:
		c.Delete(ev.AdID)
	}
}
