package calendar

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
)

// Config holds Google Calendar client settings.
type Config struct {
	BaseURL        string // e.g. https://www.googleapis.com/calendar/v3
	CalendarID     string // shared team calendar
	Timezone       string // IANA name, e.g. Asia/Jakarta
	RequestTimeout int    // seconds
}

// Client implements Syncer against the Google Calendar REST API using the
// acting user's OAuth bearer token.
type Client struct {
	baseURL    string
	calendarID string
	loc        *time.Location
	http       *http.Client
	logger     *zap.Logger
}

// NewClient creates a calendar client. Falls back to a fixed +07:00 zone if
// the configured timezone cannot be loaded (stripped tzdata in containers).
func NewClient(cfg Config, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		logger.Warn("load timezone failed, using fixed offset", zap.String("timezone", cfg.Timezone), zap.Error(err))
		loc = time.FixedZone(cfg.Timezone, 7*3600)
	}
	timeout := time.Duration(cfg.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL:    cfg.BaseURL,
		calendarID: cfg.CalendarID,
		loc:        loc,
		http:       &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// Location returns the calendar's display timezone.
func (c *Client) Location() *time.Location { return c.loc }

// CreateReminders creates the publish and takedown reminder events and
// returns their ids. Both must succeed. If the takedown insert fails the
// already-created publish event is deleted best-effort so no orphan lingers
// on the calendar, and a SyncError is returned with no ids persisted.
func (c *Client) CreateReminders(ctx context.Context, token string, in ReminderInput) (EventIDs, error) {
	if token == "" {
		return EventIDs{}, &SyncError{Op: "create", Err: ErrNotConnected}
	}

	publishID, err := c.insertEvent(ctx, token, NewPublishEvent(in, c.loc))
	if err != nil {
		return EventIDs{}, &SyncError{Op: "create", Err: fmt.Errorf("publish event: %w", err)}
	}
	takedownID, err := c.insertEvent(ctx, token, NewTakedownEvent(in, c.loc))
	if err != nil {
		if delErr := c.deleteEvent(ctx, token, publishID); delErr != nil {
			c.logger.Warn("rollback of publish event failed",
				zap.String("publish_event_id", publishID), zap.Error(delErr))
		}
		return EventIDs{}, &SyncError{Op: "create", Err: fmt.Errorf("takedown event: %w", err)}
	}

	c.logger.Info("calendar reminders created",
		zap.String("publish_event_id", publishID),
		zap.String("takedown_event_id", takedownID))
	return EventIDs{PublishEventID: publishID, TakedownEventID: takedownID}, nil
}

// DeleteReminders deletes whichever reminder events exist. Missing events
// (404/410) count as deleted so retried cleanups converge.
func (c *Client) DeleteReminders(ctx context.Context, token, publishEventID, takedownEventID string) error {
	if token == "" {
		return &SyncError{Op: "delete", Err: ErrNotConnected}
	}

	for _, id := range []string{publishEventID, takedownEventID} {
		if id == "" {
			continue
		}
		if err := c.deleteEvent(ctx, token, id); err != nil {
			return &SyncError{Op: "delete", Err: err}
		}
	}
	return nil
}

func (c *Client) insertEvent(ctx context.Context, token string, ev Event) (string, error) {
	body, err := json.Marshal(ev)
	if err != nil {
		return "", fmt.Errorf("marshal event: %w", err)
	}
	endpoint := fmt.Sprintf("%s/calendars/%s/events", c.baseURL, url.PathEscape(c.calendarID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("calendar API status %d: %s", resp.StatusCode, apiErrorMessage(resp))
	}
	var created struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return "", fmt.Errorf("decode event response: %w", err)
	}
	return created.ID, nil
}

func (c *Client) deleteEvent(ctx context.Context, token, eventID string) error {
	endpoint := fmt.Sprintf("%s/calendars/%s/events/%s", c.baseURL, url.PathEscape(c.calendarID), url.PathEscape(eventID))
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusNoContent, http.StatusNotFound, http.StatusGone:
		return nil
	default:
		return fmt.Errorf("calendar API status %d: %s", resp.StatusCode, apiErrorMessage(resp))
	}
}

func apiErrorMessage(resp *http.Response) string {
	var body struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil || body.Error.Message == "" {
		return "unknown error"
	}
	return body.Error.Message
}
