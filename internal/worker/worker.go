package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/tegarerputra/Scheduling-System-JFU/internal/ads"
	"github.com/tegarerputra/Scheduling-System-JFU/internal/calendar"
	"github.com/tegarerputra/Scheduling-System-JFU/pkg/queue"
)

// CleanupProcessor processes calendar cleanup jobs: reminder events left
// behind when a cancellation's delete call failed. It retries the deletion
// with the owner's stored credential and clears the event ids on success.
type CleanupProcessor struct {
	repo   *ads.Repository
	creds  ads.CredentialSource
	cal    calendar.Syncer
	queue  *queue.Queue
	feed   *ads.Feed
	logger *zap.Logger
}

// NewCleanupProcessor creates a calendar cleanup processor. feed may be nil;
// when set, clearing the event ids publishes an update so replica caches
// pick up the change.
func NewCleanupProcessor(repo *ads.Repository, creds ads.CredentialSource, cal calendar.Syncer, q *queue.Queue, feed *ads.Feed, logger *zap.Logger) *CleanupProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CleanupProcessor{repo: repo, creds: creds, cal: cal, queue: q, feed: feed, logger: logger}
}

// Process executes one calendar cleanup job.
func (p *CleanupProcessor) Process(ctx context.Context, job *queue.Job) error {
	if job.Type != queue.JobTypeCalendarCleanup {
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
	var payload queue.CalendarCleanupPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}
	if payload.PublishEventID == "" && payload.TakedownEventID == "" {
		return nil
	}

	token, err := p.creds.GoogleToken(ctx, payload.UserID)
	if err != nil {
		return fmt.Errorf("resolve credential: %w", err)
	}
	if token == "" {
		// Owner disconnected the calendar; the events are orphaned on the
		// Google side and nothing more can be done here.
		p.logger.Warn("cleanup skipped, calendar not connected",
			zap.String("ad_id", payload.AdID.String()), zap.String("user_id", payload.UserID.String()))
		return nil
	}

	if err := p.cal.DeleteReminders(ctx, token, payload.PublishEventID, payload.TakedownEventID); err != nil {
		return fmt.Errorf("delete reminders: %w", err)
	}
	if err := p.repo.ClearCalendarEvents(ctx, payload.AdID); err != nil {
		p.logger.Error("clear event ids failed", zap.Error(err), zap.String("ad_id", payload.AdID.String()))
		return fmt.Errorf("clear event ids: %w", err)
	}
	if p.feed != nil {
		if ad, err := p.repo.GetByID(ctx, payload.AdID); err == nil {
			p.feed.PublishUpdate(ad)
		}
	}

	p.logger.Info("calendar cleanup completed", zap.String("ad_id", payload.AdID.String()))
	return nil
}

// Run starts the worker loop: dequeue, process, retry on error.
func (p *CleanupProcessor) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("cleanup worker stopping")
			return
		default:
		}

		job, _, err := p.queue.Dequeue(ctx)
		if err != nil {
			p.logger.Warn("dequeue error", zap.Error(err))
			time.Sleep(queue.RetryBackoff)
			continue
		}
		if job == nil {
			continue
		}

		p.logger.Debug("processing job", zap.String("job_id", job.ID), zap.String("type", string(job.Type)))
		if err := p.Process(ctx, job); err != nil {
			p.logger.Error("job failed", zap.String("job_id", job.ID), zap.Error(err))
			if reErr := p.queue.Retry(ctx, job); reErr != nil {
				p.logger.Error("retry enqueue failed", zap.Error(reErr))
			}
			time.Sleep(queue.RetryBackoff)
			continue
		}
	}
}
