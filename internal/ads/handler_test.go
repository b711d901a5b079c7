package ads

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

// failingCountsStore simulates a database outage on the slot-count query.
type failingCountsStore struct {
	*memStore
}

func (s *failingCountsStore) SlotCounts(ctx context.Context, date string) (int, int, error) {
	return 0, 0, errors.New("connection refused")
}

func availabilityRouter(store Store) *gin.Engine {
	gin.SetMode(gin.TestMode)
	policy := SlotPolicy{MaxNewPerDay: 3, MaxExtendedPerDay: 1}
	svc := NewService(store, &fakeSyncer{}, &fakeCreds{}, NewFeed(nil, nil), nil, &fakeCleanup{}, policy, jakarta, nil)
	h := NewHandler(svc)

	r := gin.New()
	r.GET("/slots/availability", h.Availability)
	return r
}

func TestAvailabilityEndpoint(t *testing.T) {
	now := time.Date(2025, 1, 10, 10, 0, 0, 0, jakarta)
	store := newMemStore(SlotPolicy{MaxNewPerDay: 3, MaxExtendedPerDay: 1}, jakarta, &now)
	r := availabilityRouter(store)

	cases := []struct {
		name   string
		target string
		status int
	}{
		{"ok", "/slots/availability?date=2025-01-14", http.StatusOK},
		{"missing date", "/slots/availability", http.StatusBadRequest},
		{"malformed date", "/slots/availability?date=14-01-2025", http.StatusBadRequest},
		{"bad ad_type", "/slots/availability?date=2025-01-14&ad_type=weird", http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, tc.target, nil)
			r.ServeHTTP(w, req)
			assert.Equal(t, tc.status, w.Code)
		})
	}
}

func TestAvailabilityEndpointStoreFailure(t *testing.T) {
	now := time.Date(2025, 1, 10, 10, 0, 0, 0, jakarta)
	store := &failingCountsStore{newMemStore(SlotPolicy{MaxNewPerDay: 3, MaxExtendedPerDay: 1}, jakarta, &now)}
	r := availabilityRouter(store)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/slots/availability?date=2025-01-14", nil)
	r.ServeHTTP(w, req)

	// store failures are not the caller's fault
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
