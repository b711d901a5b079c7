package calendar

import (
	"fmt"
	"time"
)

// Google Calendar color ids used for the two reminder kinds.
const (
	colorBlue = "9"
	colorRed  = "11"
)

// takedownEventDuration is how long the takedown reminder block lasts.
const takedownEventDuration = 30 * time.Minute

// Event is the Google Calendar event body (calendar v3 schema subset).
type Event struct {
	Summary     string        `json:"summary"`
	Description string        `json:"description"`
	Start       EventTime     `json:"start"`
	End         EventTime     `json:"end"`
	ColorID     string        `json:"colorId"`
	Reminders   EventReminder `json:"reminders"`
}

// EventTime is a timed event boundary with an explicit timezone.
type EventTime struct {
	DateTime string `json:"dateTime"`
	TimeZone string `json:"timeZone"`
}

// EventReminder overrides the calendar's default notifications.
type EventReminder struct {
	UseDefault bool               `json:"useDefault"`
	Overrides  []ReminderOverride `json:"overrides"`
}

// ReminderOverride is a single notification rule.
type ReminderOverride struct {
	Method  string `json:"method"`
	Minutes int    `json:"minutes"`
}

func popupFiveMinutes() EventReminder {
	return EventReminder{
		UseDefault: false,
		Overrides:  []ReminderOverride{{Method: "popup", Minutes: 5}},
	}
}

// NewPublishEvent builds the publish reminder: starts one hour before the
// publish instant and ends at publish time, blue.
func NewPublishEvent(in ReminderInput, loc *time.Location) Event {
	reminderStart := in.PublishAt.Add(-time.Hour)
	return Event{
		Summary: "🔔 Publish: " + in.Title,
		Description: fmt.Sprintf("Reminder to publish ad for %s\n\nAd will be published at %s",
			in.CustomerName, in.PublishAt.In(loc).Format("02 Jan 2006, 15:04")),
		Start:     eventTime(reminderStart, loc),
		End:       eventTime(in.PublishAt, loc),
		ColorID:   colorBlue,
		Reminders: popupFiveMinutes(),
	}
}

// NewTakedownEvent builds the takedown reminder: starts at the takedown
// instant with a 30-minute block, red.
func NewTakedownEvent(in ReminderInput, loc *time.Location) Event {
	return Event{
		Summary: "🔻 Takedown: " + in.Title,
		Description: fmt.Sprintf("Reminder to takedown ad for %s\n\nAd should be taken down at %s",
			in.CustomerName, in.TakedownAt.In(loc).Format("02 Jan 2006, 15:04")),
		Start:     eventTime(in.TakedownAt, loc),
		End:       eventTime(in.TakedownAt.Add(takedownEventDuration), loc),
		ColorID:   colorRed,
		Reminders: popupFiveMinutes(),
	}
}

func eventTime(t time.Time, loc *time.Location) EventTime {
	return EventTime{
		DateTime: t.In(loc).Format(time.RFC3339),
		TimeZone: loc.String(),
	}
}
