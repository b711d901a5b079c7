package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var jakarta = time.FixedZone("Asia/Jakarta", 7*3600)

func reminderInput() ReminderInput {
	publish := time.Date(2025, 1, 14, 15, 0, 0, 0, jakarta)
	return ReminderInput{
		Title:        "Promo Kopi",
		CustomerName: "Kopi Kenangan",
		PublishAt:    publish,
		TakedownAt:   publish.AddDate(0, 0, 2),
	}
}

func TestNewPublishEvent(t *testing.T) {
	ev := NewPublishEvent(reminderInput(), jakarta)

	assert.Equal(t, "🔔 Publish: Promo Kopi", ev.Summary)
	assert.Contains(t, ev.Description, "Kopi Kenangan")
	assert.Contains(t, ev.Description, "14 Jan 2025, 15:00")
	assert.Equal(t, colorBlue, ev.ColorID)

	// reminder block runs from one hour before publish until publish
	assert.Equal(t, "2025-01-14T14:00:00+07:00", ev.Start.DateTime)
	assert.Equal(t, "2025-01-14T15:00:00+07:00", ev.End.DateTime)
	assert.Equal(t, jakarta.String(), ev.Start.TimeZone)

	assert.False(t, ev.Reminders.UseDefault)
	assert.Equal(t, []ReminderOverride{{Method: "popup", Minutes: 5}}, ev.Reminders.Overrides)
}

func TestNewTakedownEvent(t *testing.T) {
	ev := NewTakedownEvent(reminderInput(), jakarta)

	assert.Equal(t, "🔻 Takedown: Promo Kopi", ev.Summary)
	assert.Contains(t, ev.Description, "16 Jan 2025, 15:00")
	assert.Equal(t, colorRed, ev.ColorID)

	// 30-minute block starting at the takedown instant
	assert.Equal(t, "2025-01-16T15:00:00+07:00", ev.Start.DateTime)
	assert.Equal(t, "2025-01-16T15:30:00+07:00", ev.End.DateTime)

	assert.False(t, ev.Reminders.UseDefault)
}

func TestSyncErrorUnwrap(t *testing.T) {
	err := &SyncError{Op: "create", Err: ErrNotConnected}
	assert.ErrorIs(t, err, ErrNotConnected)
	assert.Contains(t, err.Error(), "create")
}
