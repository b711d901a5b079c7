package ads

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tegarerputra/Scheduling-System-JFU/internal/calendar"
	"github.com/tegarerputra/Scheduling-System-JFU/internal/models"
	"github.com/tegarerputra/Scheduling-System-JFU/pkg/queue"
)

// Store is the persistence boundary of the lifecycle service. Create and
// Update enforce slot capacity transactionally; the service never relies on
// the advisory pre-check alone.
type Store interface {
	Create(ctx context.Context, ad *models.Ad) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Ad, error)
	List(ctx context.Context) ([]models.Ad, error)
	LastCreated(ctx context.Context) (*models.Ad, error)
	Update(ctx context.Context, ad *models.Ad, scheduleChanged bool) error
	MarkScheduled(ctx context.Context, id uuid.UUID, events calendar.EventIDs) (*models.Ad, error)
	MarkCancelled(ctx context.Context, id, by uuid.UUID) (*models.Ad, error)
	ClearCalendarEvents(ctx context.Context, id uuid.UUID) error
	SlotCounts(ctx context.Context, date string) (newUsed, extendedUsed int, err error)
}

// CredentialSource resolves a user's stored Google Calendar token.
type CredentialSource interface {
	GoogleToken(ctx context.Context, userID uuid.UUID) (string, error)
}

// CleanupEnqueuer hands failed calendar deletions to the out-of-band retry
// worker. Implemented by queue.Queue.
type CleanupEnqueuer interface {
	EnqueueCalendarCleanup(ctx context.Context, payload queue.CalendarCleanupPayload) error
}

// Service owns the ad lifecycle state machine: draft -> scheduled -> live ->
// completed, with cancelled as an early terminal override. Calendar sync
// calls run outside any store transaction.
type Service struct {
	store   Store
	cal     calendar.Syncer
	creds   CredentialSource
	feed    *Feed
	cache   *Cache
	cleanup CleanupEnqueuer
	policy  SlotPolicy
	loc     *time.Location
	now     func() time.Time
	rnd     *rand.Rand
	logger  *zap.Logger
}

// NewService creates the ad lifecycle service. cleanup may be nil (failed
// calendar deletions are then only logged).
func NewService(store Store, cal calendar.Syncer, creds CredentialSource, feed *Feed, cache *Cache,
	cleanup CleanupEnqueuer, policy SlotPolicy, loc *time.Location, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:   store,
		cal:     cal,
		creds:   creds,
		feed:    feed,
		cache:   cache,
		cleanup: cleanup,
		policy:  policy,
		loc:     loc,
		now:     time.Now,
		rnd:     rand.New(rand.NewSource(time.Now().UnixNano())),
		logger:  logger,
	}
}

// CreateAdInput is the caller-provided part of a new ad. Incentive type and
// background color are assigned by rotation, status is always forced to
// draft.
type CreateAdInput struct {
	Title           string
	CustomerName    string
	Description     string
	IncentiveDetail string
	SurveyLink      string
	PublishAt       time.Time
	DurationDays    int
}

// ExtendAdInput is the schedule for a follow-on campaign. Brief fields are
// derived from the parent and edited later.
type ExtendAdInput struct {
	PublishAt    time.Time
	DurationDays int
	Note         string
}

// UpdateAdInput carries partial edits; nil fields are left unchanged.
type UpdateAdInput struct {
	Title           *string
	CustomerName    *string
	Description     *string
	IncentiveDetail *string
	SurveyLink      *string
	Note            *string
	PublishAt       *time.Time
	DurationDays    *int
}

// CreateAd persists a new draft ad under the slot guard and publishes an
// insert event on the change feed.
func (s *Service) CreateAd(ctx context.Context, in CreateAdInput, createdBy uuid.UUID) (*models.Ad, error) {
	if in.DurationDays < 1 {
		return nil, fmt.Errorf("duration must be at least 1 day")
	}

	last, err := s.store.LastCreated(ctx)
	if err != nil {
		return nil, fmt.Errorf("load last ad: %w", err)
	}

	ad := &models.Ad{
		Title:           in.Title,
		CustomerName:    in.CustomerName,
		Description:     in.Description,
		IncentiveType:   NextIncentiveType(last),
		IncentiveDetail: in.IncentiveDetail,
		SurveyLink:      in.SurveyLink,
		BackgroundColor: NextBackgroundColor(last, s.rnd),
		PublishAt:       in.PublishAt,
		TakedownAt:      TakedownAt(in.PublishAt, in.DurationDays),
		DurationDays:    in.DurationDays,
		AdType:          models.AdTypeNew,
		Status:          models.StatusDraft,
		CreatedBy:       createdBy,
	}
	if err := s.store.Create(ctx, ad); err != nil {
		return nil, err
	}

	s.feed.PublishInsert(ad)
	s.logger.Info("ad created",
		zap.String("ad_id", ad.ID.String()),
		zap.String("customer", ad.CustomerName),
		zap.Int("duration_days", ad.DurationDays))
	return ad, nil
}

// ExtendAd creates a new extended ad referencing originalID. The parent must
// be a non-cancelled new ad; extensions cannot themselves be extended. The
// extension progresses through the same state machine independently and
// never alters the parent.
func (s *Service) ExtendAd(ctx context.Context, originalID uuid.UUID, in ExtendAdInput, createdBy uuid.UUID) (*models.Ad, error) {
	if in.DurationDays < 1 {
		return nil, fmt.Errorf("duration must be at least 1 day")
	}

	parent, err := s.store.GetByID(ctx, originalID)
	if err != nil {
		return nil, err
	}
	if parent.AdType != models.AdTypeNew {
		return nil, ErrNotExtendable
	}
	if EffectiveStatus(parent.Status, parent.PublishAt, parent.TakedownAt, s.now()) == models.StatusCancelled {
		return nil, ErrNotExtendable
	}

	description := "Extension of: " + parent.Title
	if in.Note != "" {
		description += "\n\nNote: " + in.Note
	}
	originalRef := parent.ID
	ad := &models.Ad{
		Title:        parent.Title + " (Extended)",
		CustomerName: parent.CustomerName,
		Description:  description,
		Note:         in.Note,
		PublishAt:    in.PublishAt,
		TakedownAt:   TakedownAt(in.PublishAt, in.DurationDays),
		DurationDays: in.DurationDays,
		AdType:       models.AdTypeExtended,
		OriginalAdID: &originalRef,
		Status:       models.StatusDraft,
		CreatedBy:    createdBy,
	}
	if err := s.store.Create(ctx, ad); err != nil {
		return nil, err
	}

	s.feed.PublishInsert(ad)
	s.logger.Info("ad extended",
		zap.String("ad_id", ad.ID.String()),
		zap.String("original_ad_id", originalID.String()))
	return ad, nil
}

// ScheduleAd approves a draft ad: creates the calendar reminder events and,
// only once that succeeded, transitions the ad to scheduled with the event
// ids stored. A sync failure leaves the ad in draft.
func (s *Service) ScheduleAd(ctx context.Context, adID, scheduledBy uuid.UUID) (*models.Ad, error) {
	ad, err := s.store.GetByID(ctx, adID)
	if err != nil {
		return nil, err
	}
	if EffectiveStatus(ad.Status, ad.PublishAt, ad.TakedownAt, s.now()) != models.StatusDraft {
		return nil, ErrInvalidTransition
	}
	if !ad.BriefComplete() {
		return nil, ErrIncompleteBrief
	}

	token, err := s.creds.GoogleToken(ctx, scheduledBy)
	if err != nil || token == "" {
		return nil, &calendar.SyncError{Op: "create", Err: calendar.ErrNotConnected}
	}

	events, err := s.cal.CreateReminders(ctx, token, calendar.ReminderInput{
		Title:        ad.Title,
		CustomerName: ad.CustomerName,
		PublishAt:    ad.PublishAt,
		TakedownAt:   ad.TakedownAt,
	})
	if err != nil {
		s.logger.Warn("calendar sync failed, ad stays draft", zap.String("ad_id", adID.String()), zap.Error(err))
		return nil, err
	}

	updated, err := s.store.MarkScheduled(ctx, adID, events)
	if err != nil {
		return nil, err
	}
	s.feed.PublishUpdate(updated)
	s.logger.Info("ad scheduled",
		zap.String("ad_id", adID.String()),
		zap.String("publish_event_id", events.PublishEventID),
		zap.String("takedown_event_id", events.TakedownEventID))
	return updated, nil
}

// CancelAd marks an ad cancelled and deletes its reminder events
// best-effort: the cancellation commits regardless of the calendar outcome,
// and a failed deletion is logged and handed to the cleanup worker.
func (s *Service) CancelAd(ctx context.Context, adID, cancelledBy uuid.UUID) (*models.Ad, error) {
	ad, err := s.store.GetByID(ctx, adID)
	if err != nil {
		return nil, err
	}
	if EffectiveStatus(ad.Status, ad.PublishAt, ad.TakedownAt, s.now()).IsTerminal() {
		return nil, ErrInvalidTransition
	}

	cancelled, err := s.store.MarkCancelled(ctx, adID, cancelledBy)
	if err != nil {
		return nil, err
	}
	s.feed.PublishUpdate(cancelled)

	if ad.HasCalendarEvents() {
		s.deleteRemindersBestEffort(ctx, ad, cancelledBy)
	}

	s.logger.Info("ad cancelled", zap.String("ad_id", adID.String()), zap.String("by", cancelledBy.String()))
	return cancelled, nil
}

func (s *Service) deleteRemindersBestEffort(ctx context.Context, ad *models.Ad, userID uuid.UUID) {
	token, err := s.creds.GoogleToken(ctx, userID)
	if err == nil && token != "" {
		err = s.cal.DeleteReminders(ctx, token, ad.PublishEventID, ad.TakedownEventID)
		if err == nil {
			if clearErr := s.store.ClearCalendarEvents(ctx, ad.ID); clearErr != nil {
				s.logger.Warn("clear calendar event ids failed", zap.String("ad_id", ad.ID.String()), zap.Error(clearErr))
			}
			return
		}
	}

	// Documented exception to "surface everything": cancel still commits.
	s.logger.Warn("calendar cleanup failed, deferring to worker",
		zap.String("ad_id", ad.ID.String()), zap.Error(err))
	if s.cleanup == nil {
		return
	}
	enqErr := s.cleanup.EnqueueCalendarCleanup(ctx, queue.CalendarCleanupPayload{
		AdID:            ad.ID,
		UserID:          userID,
		PublishEventID:  ad.PublishEventID,
		TakedownEventID: ad.TakedownEventID,
	})
	if enqErr != nil {
		s.logger.Error("enqueue calendar cleanup failed", zap.String("ad_id", ad.ID.String()), zap.Error(enqErr))
	}
}

// UpdateAd edits an ad. Brief fields are editable until the ad reaches a
// terminal status; publish_at and duration only while still draft, and a
// schedule edit recomputes takedown_at and re-runs the slot guard.
func (s *Service) UpdateAd(ctx context.Context, adID uuid.UUID, in UpdateAdInput) (*models.Ad, error) {
	ad, err := s.store.GetByID(ctx, adID)
	if err != nil {
		return nil, err
	}
	effective := EffectiveStatus(ad.Status, ad.PublishAt, ad.TakedownAt, s.now())
	if effective.IsTerminal() {
		return nil, ErrInvalidTransition
	}

	scheduleChanged := in.PublishAt != nil || in.DurationDays != nil
	if scheduleChanged && effective != models.StatusDraft {
		return nil, ErrImmutableSchedule
	}

	if in.Title != nil {
		ad.Title = *in.Title
	}
	if in.CustomerName != nil {
		ad.CustomerName = *in.CustomerName
	}
	if in.Description != nil {
		ad.Description = *in.Description
	}
	if in.IncentiveDetail != nil {
		ad.IncentiveDetail = *in.IncentiveDetail
	}
	if in.SurveyLink != nil {
		ad.SurveyLink = *in.SurveyLink
	}
	if in.Note != nil {
		ad.Note = *in.Note
	}
	if in.PublishAt != nil {
		ad.PublishAt = *in.PublishAt
	}
	if in.DurationDays != nil {
		if *in.DurationDays < 1 {
			return nil, fmt.Errorf("duration must be at least 1 day")
		}
		ad.DurationDays = *in.DurationDays
	}
	if scheduleChanged {
		ad.TakedownAt = TakedownAt(ad.PublishAt, ad.DurationDays)
	}

	if err := s.store.Update(ctx, ad, scheduleChanged); err != nil {
		return nil, err
	}
	s.feed.PublishUpdate(ad)
	return ad, nil
}

// GetAd returns one ad with its status reconciled against the clock,
// reading through the feed-fed cache.
func (s *Service) GetAd(ctx context.Context, adID uuid.UUID) (*models.Ad, error) {
	if cached, ok := s.cache.Get(adID); ok {
		Reconcile(&cached, s.now())
		return &cached, nil
	}
	ad, err := s.store.GetByID(ctx, adID)
	if err != nil {
		return nil, err
	}
	s.cache.Put(*ad)
	Reconcile(ad, s.now())
	return ad, nil
}

// ListAds returns all ads with reconciled statuses, optionally filtered by
// effective status.
func (s *Service) ListAds(ctx context.Context, statusFilter string) ([]models.Ad, error) {
	list, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	now := s.now()
	out := make([]models.Ad, 0, len(list))
	for i := range list {
		s.cache.Put(list[i])
		Reconcile(&list[i], now)
		if statusFilter != "" && string(list[i].Status) != statusFilter {
			continue
		}
		out = append(out, list[i])
	}
	return out, nil
}

// CheckAvailability is the advisory slot check for one date and ad type.
// Write paths re-validate transactionally; this exists for responsive
// operator feedback only.
func (s *Service) CheckAvailability(ctx context.Context, date string, adType models.AdType) (SlotInfo, error) {
	if _, err := time.ParseInLocation(DateLayout, date, s.loc); err != nil {
		return SlotInfo{}, fmt.Errorf("invalid date %q: use YYYY-MM-DD", date)
	}
	newUsed, extendedUsed, err := s.store.SlotCounts(ctx, date)
	if err != nil {
		return SlotInfo{}, err
	}
	return s.policy.Evaluate(adType, newUsed, extendedUsed), nil
}
