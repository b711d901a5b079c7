package realtime

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"
)

const (
	// PingInterval and PongWait are used for heartbeat (seconds).
	PingInterval = 30
	PongWait     = 60
)

// Hub maintains the set of connected change-feed clients and fans ad events
// out to them. Cross-instance delivery goes through Redis pub/sub: events
// are published to the shared channel and the subscription callback performs
// the local broadcast exactly once, so clients never see duplicates. The
// subscription also hands every incoming event to the inbound handler, so
// consumers like the ad cache see writes made on other replicas even when no
// websocket client is connected.
type Hub struct {
	clients map[string]*Client
	mu      sync.RWMutex
	logger  *zap.Logger
	pub     Publisher
	sub     Subscriber
	inbound func(event string, payload []byte)
	cancel  func() // active Redis subscription
}

// Publisher publishes an ad event to the shared channel (for all instances).
type Publisher interface {
	PublishAdEvent(event string, payload []byte) error
}

// Subscriber subscribes to the shared ad channel and invokes handler for
// incoming events.
type Subscriber interface {
	SubscribeAds(handler func(event string, payload []byte)) (cancel func(), err error)
}

// NewHub creates a change-feed hub. pub/sub may be nil for single-instance
// deployments; events are then broadcast locally only.
func NewHub(logger *zap.Logger, pub Publisher, sub Subscriber) *Hub {
	return &Hub{
		clients: make(map[string]*Client),
		logger:  logger,
		pub:     pub,
		sub:     sub,
	}
}

// Start acquires the Redis subscription for the lifetime of the hub.
// inbound (may be nil) receives every event arriving on the shared channel,
// own events included, before the local websocket broadcast. Without a
// Subscriber configured Start is a no-op.
func (h *Hub) Start(inbound func(event string, payload []byte)) error {
	h.inbound = inbound
	if h.sub == nil {
		return nil
	}
	cancel, err := h.sub.SubscribeAds(func(event string, payload []byte) {
		if h.inbound != nil {
			h.inbound(event, payload)
		}
		h.broadcastLocal(event, json.RawMessage(payload))
	})
	if err != nil {
		return err
	}
	h.cancel = cancel
	return nil
}

// Stop releases the Redis subscription.
func (h *Hub) Stop() {
	if h.cancel != nil {
		h.cancel()
		h.cancel = nil
	}
}

// Register adds a client.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c.ID] = c
	h.mu.Unlock()
	h.logger.Debug("feed client connected", zap.String("client_id", c.ID))
}

// Unregister removes a client.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	delete(h.clients, c.ID)
	h.mu.Unlock()
	h.logger.Debug("feed client disconnected", zap.String("client_id", c.ID))
}

// ClientCount returns the number of connected feed clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// BroadcastAdEvent delivers a change-feed event to all connected clients on
// every instance. With Redis configured the event is published only; the
// subscription callback broadcasts it locally once.
func (h *Hub) BroadcastAdEvent(event string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	if h.pub != nil {
		if err := h.pub.PublishAdEvent(event, data); err == nil {
			return
		}
		h.logger.Warn("ads channel publish failed, falling back to local broadcast", zap.String("event", event))
	}
	h.broadcastLocal(event, json.RawMessage(data))
}

func (h *Hub) broadcastLocal(event string, data json.RawMessage) {
	msg := WSMessage{Event: event, Data: data}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.clients {
		select {
		case c.send <- msg:
		default:
			// buffer full, skip
		}
	}
}
