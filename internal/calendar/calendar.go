// Package calendar performs the Google Calendar side effects tied to ad
// scheduling: two timed reminder events per ad (publish and takedown),
// created on schedule and deleted on cancel.
package calendar

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrNotConnected means the acting user has no stored Google credential.
var ErrNotConnected = errors.New("google calendar not connected")

// SyncError wraps a failed calendar call. On the schedule path it aborts
// the transition; on the cancel path it is logged and the cancellation
// still commits.
type SyncError struct {
	Op  string // "create" or "delete"
	Err error
}

func (e *SyncError) Error() string {
	return fmt.Sprintf("calendar sync %s: %v", e.Op, e.Err)
}

func (e *SyncError) Unwrap() error { return e.Err }

// EventIDs holds the external identifiers of the two sync'd reminder events.
type EventIDs struct {
	PublishEventID  string
	TakedownEventID string
}

// ReminderInput is what the adapter needs to build both reminder events.
type ReminderInput struct {
	Title        string
	CustomerName string
	PublishAt    time.Time
	TakedownAt   time.Time
}

// Syncer is the external collaborator boundary the ad lifecycle service
// talks to. The adapter does not deduplicate: callers must never create
// twice for the same ad without an intervening delete.
type Syncer interface {
	CreateReminders(ctx context.Context, token string, in ReminderInput) (EventIDs, error)
	DeleteReminders(ctx context.Context, token, publishEventID, takedownEventID string) error
}
