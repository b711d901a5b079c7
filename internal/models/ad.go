package models

import (
	"time"

	"github.com/google/uuid"
)

// AdType distinguishes an independently scheduled campaign from a follow-on
// extension of one.
type AdType string

const (
	AdTypeNew      AdType = "new"
	AdTypeExtended AdType = "extended"
)

// AdStatus is the lifecycle state of an ad.
type AdStatus string

const (
	StatusDraft     AdStatus = "draft"
	StatusScheduled AdStatus = "scheduled"
	StatusLive      AdStatus = "live"
	StatusCompleted AdStatus = "completed"
	StatusCancelled AdStatus = "cancelled"
)

// IsTerminal reports whether no further mutations are allowed from s.
func (s AdStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Ad is an advertisement campaign occupying daily calendar slots for its
// active window [PublishAt, TakedownAt).
type Ad struct {
	ID              uuid.UUID `json:"id"`
	Title           string    `json:"title"`
	CustomerName    string    `json:"customer_name"`
	Description     string    `json:"description"`
	IncentiveType   string    `json:"incentive_type"`   // gopay | dana, flip-flopped per creation
	IncentiveDetail string    `json:"incentive_details"` // e.g. "Rp 25.000 x 10 Pemenang (Total: Rp 250.000)"
	SurveyLink      string    `json:"survey_link"`
	BackgroundColor string    `json:"background_color"`
	Note            string    `json:"note,omitempty"`

	PublishAt    time.Time `json:"publish_at"`
	TakedownAt   time.Time `json:"takedown_at"`
	DurationDays int       `json:"duration_days"`

	AdType       AdType     `json:"ad_type"`
	OriginalAdID *uuid.UUID `json:"original_ad_id,omitempty"` // weak reference; set only for extended ads

	Status AdStatus `json:"status"`

	PublishEventID  string `json:"publish_event_id,omitempty"`
	TakedownEventID string `json:"takedown_event_id,omitempty"`

	CreatedBy   uuid.UUID  `json:"created_by"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CancelledBy *uuid.UUID `json:"cancelled_by,omitempty"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`
}

// BriefComplete reports whether all fields required before scheduling are set.
func (a *Ad) BriefComplete() bool {
	return a.Title != "" && a.CustomerName != "" && a.IncentiveDetail != "" && a.SurveyLink != ""
}

// HasCalendarEvents reports whether reminder events were sync'd for this ad.
func (a *Ad) HasCalendarEvents() bool {
	return a.PublishEventID != "" || a.TakedownEventID != ""
}
