package ads

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tegarerputra/Scheduling-System-JFU/internal/models"
)

// Feed event names, shared between in-process subscribers and the
// websocket change feed.
const (
	FeedInsert = "ad_insert"
	FeedUpdate = "ad_update"
	FeedDelete = "ad_delete"
)

// FeedEvent is one change notification. Ad is nil for deletes; AdID is
// always set.
type FeedEvent struct {
	Type string     `json:"type"`
	AdID uuid.UUID  `json:"ad_id"`
	Ad   *models.Ad `json:"ad,omitempty"`
	At   time.Time  `json:"at"`
}

// Broadcaster pushes a feed event to connected websocket clients (and via
// Redis to other instances). Implemented by realtime.Hub.
type Broadcaster interface {
	BroadcastAdEvent(event string, payload interface{})
}

// Feed fans ad change events out to in-process subscribers and the
// realtime broadcaster. Subscribers get events synchronously in
// subscription order; handlers must not block.
type Feed struct {
	mu          sync.RWMutex
	nextID      int
	handlers    map[int]func(FeedEvent)
	broadcaster Broadcaster
	logger      *zap.Logger
}

// NewFeed creates a change feed. broadcaster may be nil (e.g. in tests or
// the worker binary).
func NewFeed(broadcaster Broadcaster, logger *zap.Logger) *Feed {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Feed{
		handlers:    make(map[int]func(FeedEvent)),
		broadcaster: broadcaster,
		logger:      logger,
	}
}

// Subscribe registers a handler and returns its subscription id for
// Unsubscribe. Callers own the cleanup: pair every Subscribe with an
// Unsubscribe when the consumer goes away.
func (f *Feed) Subscribe(handler func(FeedEvent)) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	id := f.nextID
	f.handlers[id] = handler
	return id
}

// Unsubscribe removes a previously registered handler.
func (f *Feed) Unsubscribe(id int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.handlers, id)
}

// Publish delivers the event to all subscribers, then to the broadcaster.
func (f *Feed) Publish(ev FeedEvent) {
	if ev.At.IsZero() {
		ev.At = time.Now()
	}
	f.dispatch(ev)
	if f.broadcaster != nil {
		f.broadcaster.BroadcastAdEvent(ev.Type, ev)
	}
	f.logger.Debug("feed event", zap.String("type", ev.Type), zap.String("ad_id", ev.AdID.String()))
}

// DispatchRemote delivers an event that originated on another instance
// (arriving over the Redis channel) to local subscribers only. Remote
// events are never re-broadcast, so they cannot loop back onto the
// channel. This is how each replica's cache learns about writes made
// elsewhere.
func (f *Feed) DispatchRemote(payload []byte) {
	var ev FeedEvent
	if err := json.Unmarshal(payload, &ev); err != nil {
		f.logger.Warn("invalid remote feed event", zap.Error(err))
		return
	}
	f.dispatch(ev)
}

func (f *Feed) dispatch(ev FeedEvent) {
	f.mu.RLock()
	handlers := make([]func(FeedEvent), 0, len(f.handlers))
	for _, h := range f.handlers {
		handlers = append(handlers, h)
	}
	f.mu.RUnlock()

	for _, h := range handlers {
		h(ev)
	}
}

// PublishInsert is shorthand for an insert event.
func (f *Feed) PublishInsert(ad *models.Ad) {
	f.Publish(FeedEvent{Type: FeedInsert, AdID: ad.ID, Ad: ad})
}

// PublishUpdate is shorthand for an update event.
func (f *Feed) PublishUpdate(ad *models.Ad) {
	f.Publish(FeedEvent{Type: FeedUpdate, AdID: ad.ID, Ad: ad})
}

// PublishDelete is shorthand for a delete event.
func (f *Feed) PublishDelete(adID uuid.UUID) {
	f.Publish(FeedEvent{Type: FeedDelete, AdID: adID})
}
