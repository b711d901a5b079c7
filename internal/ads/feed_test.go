package ads

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/tegarerputra/Scheduling-System-JFU/internal/models"
)

type recordingBroadcaster struct {
	events []string
}

func (b *recordingBroadcaster) BroadcastAdEvent(event string, payload interface{}) {
	b.events = append(b.events, event)
}

func TestFeedSubscribeAndPublish(t *testing.T) {
	broadcaster := &recordingBroadcaster{}
	feed := NewFeed(broadcaster, nil)

	var got []FeedEvent
	id := feed.Subscribe(func(ev FeedEvent) { got = append(got, ev) })

	ad := &models.Ad{ID: uuid.New()}
	feed.PublishInsert(ad)
	feed.PublishUpdate(ad)
	feed.PublishDelete(ad.ID)

	assert.Len(t, got, 3)
	assert.Equal(t, FeedInsert, got[0].Type)
	assert.Equal(t, FeedUpdate, got[1].Type)
	assert.Equal(t, FeedDelete, got[2].Type)
	assert.Nil(t, got[2].Ad)
	assert.Equal(t, ad.ID, got[2].AdID)
	assert.False(t, got[0].At.IsZero())

	assert.Equal(t, []string{FeedInsert, FeedUpdate, FeedDelete}, broadcaster.events)

	feed.Unsubscribe(id)
	feed.PublishInsert(ad)
	assert.Len(t, got, 3)
}

func TestFeedNilBroadcaster(t *testing.T) {
	feed := NewFeed(nil, nil)
	assert.NotPanics(t, func() {
		feed.PublishInsert(&models.Ad{ID: uuid.New()})
	})
}
