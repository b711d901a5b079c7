package ads

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/tegarerputra/Scheduling-System-JFU/internal/models"
)

func TestCachePutLastWriteWins(t *testing.T) {
	cache := NewCache()
	id := uuid.New()
	t0 := time.Now()

	cache.Put(models.Ad{ID: id, Title: "v2", UpdatedAt: t0.Add(time.Minute)})
	// stale write must not clobber the newer copy
	cache.Put(models.Ad{ID: id, Title: "v1", UpdatedAt: t0})

	got, ok := cache.Get(id)
	assert.True(t, ok)
	assert.Equal(t, "v2", got.Title)

	cache.Put(models.Ad{ID: id, Title: "v3", UpdatedAt: t0.Add(2 * time.Minute)})
	got, _ = cache.Get(id)
	assert.Equal(t, "v3", got.Title)
}

func TestCacheFollowsFeed(t *testing.T) {
	cache := NewCache()
	feed := NewFeed(nil, nil)
	cache.AttachTo(feed)

	ad := &models.Ad{ID: uuid.New(), Title: "campaign", UpdatedAt: time.Now()}
	feed.PublishInsert(ad)

	got, ok := cache.Get(ad.ID)
	assert.True(t, ok)
	assert.Equal(t, "campaign", got.Title)

	updated := *ad
	updated.Title = "campaign v2"
	updated.UpdatedAt = ad.UpdatedAt.Add(time.Second)
	feed.PublishUpdate(&updated)

	got, _ = cache.Get(ad.ID)
	assert.Equal(t, "campaign v2", got.Title)

	feed.PublishDelete(ad.ID)
	_, ok = cache.Get(ad.ID)
	assert.False(t, ok)
	assert.Equal(t, 0, cache.Len())
}
