package ads

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var jakarta = time.FixedZone("Asia/Jakarta", 7*3600)

func TestTakedownAt(t *testing.T) {
	publish := time.Date(2025, 1, 14, 15, 0, 0, 0, jakarta)

	takedown := TakedownAt(publish, 2)
	assert.Equal(t, time.Date(2025, 1, 16, 15, 0, 0, 0, jakarta), takedown)

	// month boundary
	takedown = TakedownAt(time.Date(2025, 1, 31, 15, 0, 0, 0, jakarta), 1)
	assert.Equal(t, time.Date(2025, 2, 1, 15, 0, 0, 0, jakarta), takedown)
}

func TestOccupiedDates(t *testing.T) {
	publish := time.Date(2025, 1, 14, 15, 0, 0, 0, jakarta)
	takedown := TakedownAt(publish, 2)

	dates := OccupiedDates(publish, takedown, jakarta)
	assert.Equal(t, []string{"2025-01-14", "2025-01-15"}, dates)
}

func TestOccupiedDatesExcludesTakedownDay(t *testing.T) {
	publish := time.Date(2025, 3, 1, 15, 0, 0, 0, jakarta)
	takedown := TakedownAt(publish, 1)

	dates := OccupiedDates(publish, takedown, jakarta)
	assert.Equal(t, []string{"2025-03-01"}, dates)
}

func TestOccupiedDatesUsesLocalDay(t *testing.T) {
	// 20:00 UTC on Jan 14 is already Jan 15 in Jakarta.
	publish := time.Date(2025, 1, 14, 20, 0, 0, 0, time.UTC)
	takedown := TakedownAt(publish, 1)

	dates := OccupiedDates(publish, takedown, jakarta)
	assert.Equal(t, []string{"2025-01-15"}, dates)
}

func TestPublishReminderTime(t *testing.T) {
	publish := time.Date(2025, 1, 14, 15, 0, 0, 0, jakarta)
	assert.Equal(t, time.Date(2025, 1, 14, 14, 0, 0, 0, jakarta), PublishReminderTime(publish))
}

func TestDefaultPublishTime(t *testing.T) {
	now := time.Date(2025, 1, 14, 9, 30, 0, 0, time.UTC) // 16:30 in Jakarta
	got := DefaultPublishTime(now, jakarta)
	assert.Equal(t, time.Date(2025, 1, 14, 15, 0, 0, 0, jakarta), got)
}

func TestDateOnly(t *testing.T) {
	assert.Equal(t, "2025-01-15", DateOnly(time.Date(2025, 1, 14, 20, 0, 0, 0, time.UTC), jakarta))
}
