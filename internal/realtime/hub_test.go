package realtime

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeBridge simulates the Redis ads channel: published events are echoed
// straight back to the subscribed handler.
type fakeBridge struct {
	published []string
	handler   func(event string, payload []byte)
	cancelled bool
}

func (b *fakeBridge) PublishAdEvent(event string, payload []byte) error {
	b.published = append(b.published, event)
	if b.handler != nil {
		b.handler(event, payload)
	}
	return nil
}

func (b *fakeBridge) SubscribeAds(handler func(event string, payload []byte)) (func(), error) {
	b.handler = handler
	return func() { b.cancelled = true }, nil
}

func TestHubInboundSeesPublishedEvents(t *testing.T) {
	bridge := &fakeBridge{}
	hub := NewHub(zap.NewNop(), bridge, bridge)

	var gotEvents []string
	var gotPayloads []string
	require.NoError(t, hub.Start(func(event string, payload []byte) {
		gotEvents = append(gotEvents, event)
		gotPayloads = append(gotPayloads, string(payload))
	}))

	hub.BroadcastAdEvent("ad_update", map[string]string{"id": "x"})

	// publish-only: the event went out once and came back to the inbound
	// handler via the channel
	assert.Equal(t, []string{"ad_update"}, bridge.published)
	require.Equal(t, []string{"ad_update"}, gotEvents)

	var decoded map[string]string
	require.NoError(t, json.Unmarshal([]byte(gotPayloads[0]), &decoded))
	assert.Equal(t, "x", decoded["id"])

	hub.Stop()
	assert.True(t, bridge.cancelled)
}

func TestHubStartWithoutSubscriber(t *testing.T) {
	hub := NewHub(zap.NewNop(), nil, nil)
	assert.NoError(t, hub.Start(nil))
	assert.NotPanics(t, func() {
		hub.BroadcastAdEvent("ad_insert", map[string]string{"id": "x"})
		hub.Stop()
	})
}
