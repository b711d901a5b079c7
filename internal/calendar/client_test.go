package calendar

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Config{
		BaseURL:    srv.URL,
		CalendarID: "team-cal@group.calendar.google.com",
		Timezone:   "Asia/Jakarta",
	}, nil)
}

func TestCreateRemindersCreatesBothEvents(t *testing.T) {
	var summaries []string
	var auths []string
	n := 0
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		auths = append(auths, r.Header.Get("Authorization"))

		var ev Event
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&ev))
		summaries = append(summaries, ev.Summary)

		n++
		_ = json.NewEncoder(w).Encode(map[string]string{"id": fmt.Sprintf("ev-%d", n)})
	})

	ids, err := client.CreateReminders(context.Background(), "tok", reminderInput())
	require.NoError(t, err)
	assert.Equal(t, EventIDs{PublishEventID: "ev-1", TakedownEventID: "ev-2"}, ids)
	assert.Equal(t, []string{"🔔 Publish: Promo Kopi", "🔻 Takedown: Promo Kopi"}, summaries)
	assert.Equal(t, []string{"Bearer tok", "Bearer tok"}, auths)
}

func TestCreateRemindersAPIFailure(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_ = json.NewEncoder(w).Encode(map[string]any{"error": map[string]string{"message": "insufficient permissions"}})
	})

	_, err := client.CreateReminders(context.Background(), "tok", reminderInput())
	var syncErr *SyncError
	require.ErrorAs(t, err, &syncErr)
	assert.Equal(t, "create", syncErr.Op)
	assert.Contains(t, err.Error(), "insufficient permissions")
}

func TestCreateRemindersRollsBackPublishEventOnTakedownFailure(t *testing.T) {
	posts := 0
	var deleted []string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			posts++
			if posts == 2 {
				w.WriteHeader(http.StatusInternalServerError)
				_ = json.NewEncoder(w).Encode(map[string]any{"error": map[string]string{"message": "backend error"}})
				return
			}
			_ = json.NewEncoder(w).Encode(map[string]string{"id": "pub-1"})
		case http.MethodDelete:
			deleted = append(deleted, r.URL.Path)
			w.WriteHeader(http.StatusNoContent)
		}
	})

	_, err := client.CreateReminders(context.Background(), "tok", reminderInput())
	var syncErr *SyncError
	require.ErrorAs(t, err, &syncErr)
	assert.Equal(t, "create", syncErr.Op)
	assert.Contains(t, err.Error(), "takedown event")

	// the publish event must not be left behind on the calendar
	require.Len(t, deleted, 1)
	assert.Contains(t, deleted[0], "pub-1")
}

func TestCreateRemindersEmptyToken(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})

	_, err := client.CreateReminders(context.Background(), "", reminderInput())
	assert.ErrorIs(t, err, ErrNotConnected)
}

func TestDeleteRemindersTreatsGoneAsDeleted(t *testing.T) {
	var deleted []string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		deleted = append(deleted, r.URL.Path)
		w.WriteHeader(http.StatusNotFound)
	})

	err := client.DeleteReminders(context.Background(), "tok", "pub-1", "take-1")
	assert.NoError(t, err)
	assert.Len(t, deleted, 2)
}

func TestDeleteRemindersSkipsEmptyIDs(t *testing.T) {
	calls := 0
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, client.DeleteReminders(context.Background(), "tok", "pub-1", ""))
	assert.Equal(t, 1, calls)
}

func TestDeleteRemindersFailure(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	err := client.DeleteReminders(context.Background(), "tok", "pub-1", "take-1")
	var syncErr *SyncError
	require.ErrorAs(t, err, &syncErr)
	assert.Equal(t, "delete", syncErr.Op)
}
