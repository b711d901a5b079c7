package ads

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tegarerputra/Scheduling-System-JFU/internal/calendar"
	"github.com/tegarerputra/Scheduling-System-JFU/internal/models"
)

const adColumns = `id, title, customer_name, COALESCE(description,''), COALESCE(incentive_type,''),
	COALESCE(incentive_details,''), COALESCE(survey_link,''), COALESCE(background_color,''), COALESCE(note,''),
	publish_at, takedown_at, duration_days, ad_type, original_ad_id, status,
	COALESCE(publish_event_id,''), COALESCE(takedown_event_id,''),
	created_by, created_at, updated_at, cancelled_by, cancelled_at`

// Repository handles ad persistence. Slot capacity is enforced inside the
// same transaction as the insert/update: an advisory lock per occupied date
// serializes competing writers for that date, then the pool counts are
// re-checked before committing. The advisory pre-check in the availability
// endpoint is never the sole guard.
type Repository struct {
	pool   *pgxpool.Pool
	policy SlotPolicy
	loc    *time.Location
	tz     string
}

// NewRepository creates an ad repository. loc is the fixed display zone used
// to bucket active windows into calendar days.
func NewRepository(pool *pgxpool.Pool, policy SlotPolicy, loc *time.Location) *Repository {
	return &Repository{pool: pool, policy: policy, loc: loc, tz: loc.String()}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAd(row rowScanner) (*models.Ad, error) {
	var a models.Ad
	err := row.Scan(&a.ID, &a.Title, &a.CustomerName, &a.Description, &a.IncentiveType,
		&a.IncentiveDetail, &a.SurveyLink, &a.BackgroundColor, &a.Note,
		&a.PublishAt, &a.TakedownAt, &a.DurationDays, &a.AdType, &a.OriginalAdID, &a.Status,
		&a.PublishEventID, &a.TakedownEventID,
		&a.CreatedBy, &a.CreatedAt, &a.UpdatedAt, &a.CancelledBy, &a.CancelledAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// Create inserts a new ad, enforcing slot capacity for every calendar day
// the ad occupies. Returns ErrSlotFull (wrapped with the date) when a pool
// is exhausted.
func (r *Repository) Create(ctx context.Context, ad *models.Ad) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	dates := OccupiedDates(ad.PublishAt, ad.TakedownAt, r.loc)
	if err := r.guardSlots(ctx, tx, dates, ad.AdType, uuid.Nil); err != nil {
		return err
	}

	const q = `INSERT INTO ads (id, title, customer_name, description, incentive_type, incentive_details,
			survey_link, background_color, note, publish_at, takedown_at, duration_days,
			ad_type, original_ad_id, status, created_by)
		VALUES (gen_random_uuid(), $1, $2, NULLIF($3,''), NULLIF($4,''), NULLIF($5,''),
			NULLIF($6,''), NULLIF($7,''), NULLIF($8,''), $9, $10, $11, $12, $13, 'draft', $14)
		RETURNING id, status, created_at, updated_at`
	err = tx.QueryRow(ctx, q,
		ad.Title, ad.CustomerName, ad.Description, ad.IncentiveType, ad.IncentiveDetail,
		ad.SurveyLink, ad.BackgroundColor, ad.Note, ad.PublishAt, ad.TakedownAt, ad.DurationDays,
		ad.AdType, ad.OriginalAdID, ad.CreatedBy).
		Scan(&ad.ID, &ad.Status, &ad.CreatedAt, &ad.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert ad: %w", err)
	}
	return tx.Commit(ctx)
}

// guardSlots takes an advisory transaction lock per occupied date (ordered,
// to avoid lock cycles between overlapping ads) and re-checks pool capacity
// under the lock. excludeID skips the ad being updated.
func (r *Repository) guardSlots(ctx context.Context, tx pgx.Tx, dates []string, adType models.AdType, excludeID uuid.UUID) error {
	for _, d := range dates {
		if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext('adslot:' || $1::text))`, d); err != nil {
			return fmt.Errorf("lock slot date %s: %w", d, err)
		}
	}
	for _, d := range dates {
		newUsed, extendedUsed, err := slotCounts(ctx, tx, d, r.tz, excludeID)
		if err != nil {
			return err
		}
		if info := r.policy.Evaluate(adType, newUsed, extendedUsed); !info.Available {
			return fmt.Errorf("%w (%s)", ErrSlotFull, d)
		}
	}
	return nil
}

type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func slotCounts(ctx context.Context, q querier, date, tz string, excludeID uuid.UUID) (newUsed, extendedUsed int, err error) {
	const query = `SELECT
			COUNT(*) FILTER (WHERE ad_type = 'new'),
			COUNT(*) FILTER (WHERE ad_type = 'extended')
		FROM ads
		WHERE status <> 'cancelled'
		  AND id <> $3
		  AND $1::date >= (publish_at AT TIME ZONE $2)::date
		  AND $1::date <  (takedown_at AT TIME ZONE $2)::date`
	if err = q.QueryRow(ctx, query, date, tz, excludeID).Scan(&newUsed, &extendedUsed); err != nil {
		return 0, 0, fmt.Errorf("count slots for %s: %w", date, err)
	}
	return newUsed, extendedUsed, nil
}

// SlotCounts returns the non-cancelled new/extended counts occupying a date.
func (r *Repository) SlotCounts(ctx context.Context, date string) (newUsed, extendedUsed int, err error) {
	return slotCounts(ctx, r.pool, date, r.tz, uuid.Nil)
}

// GetByID returns an ad by id, or ErrAdNotFound.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Ad, error) {
	ad, err := scanAd(r.pool.QueryRow(ctx, `SELECT `+adColumns+` FROM ads WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrAdNotFound
	}
	if err != nil {
		return nil, err
	}
	return ad, nil
}

// List returns all ads, most recent publish first.
func (r *Repository) List(ctx context.Context) ([]models.Ad, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+adColumns+` FROM ads ORDER BY publish_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.Ad
	for rows.Next() {
		ad, err := scanAd(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *ad)
	}
	return list, rows.Err()
}

// LastCreated returns the most recently created ad, or nil when the table
// is empty. Used for cosmetic rotation at creation time.
func (r *Repository) LastCreated(ctx context.Context) (*models.Ad, error) {
	ad, err := scanAd(r.pool.QueryRow(ctx, `SELECT `+adColumns+` FROM ads ORDER BY created_at DESC LIMIT 1`))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return ad, nil
}

// Update persists edited fields. When the schedule changed, the slot guard
// runs again for the new occupied dates, excluding the ad itself from the
// counts.
func (r *Repository) Update(ctx context.Context, ad *models.Ad, scheduleChanged bool) error {
	const q = `UPDATE ads SET title = $2, customer_name = $3, description = NULLIF($4,''),
			incentive_type = NULLIF($5,''), incentive_details = NULLIF($6,''), survey_link = NULLIF($7,''),
			note = NULLIF($8,''), publish_at = $9, takedown_at = $10, duration_days = $11, updated_at = NOW()
		WHERE id = $1
		RETURNING status, updated_at`

	if !scheduleChanged {
		return r.pool.QueryRow(ctx, q, ad.ID, ad.Title, ad.CustomerName, ad.Description,
			ad.IncentiveType, ad.IncentiveDetail, ad.SurveyLink, ad.Note,
			ad.PublishAt, ad.TakedownAt, ad.DurationDays).
			Scan(&ad.Status, &ad.UpdatedAt)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	dates := OccupiedDates(ad.PublishAt, ad.TakedownAt, r.loc)
	if err := r.guardSlots(ctx, tx, dates, ad.AdType, ad.ID); err != nil {
		return err
	}
	err = tx.QueryRow(ctx, q, ad.ID, ad.Title, ad.CustomerName, ad.Description,
		ad.IncentiveType, ad.IncentiveDetail, ad.SurveyLink, ad.Note,
		ad.PublishAt, ad.TakedownAt, ad.DurationDays).
		Scan(&ad.Status, &ad.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update ad: %w", err)
	}
	return tx.Commit(ctx)
}

// MarkScheduled transitions an ad to scheduled and stores its reminder
// event ids.
func (r *Repository) MarkScheduled(ctx context.Context, id uuid.UUID, events calendar.EventIDs) (*models.Ad, error) {
	const q = `UPDATE ads SET status = 'scheduled', publish_event_id = $2, takedown_event_id = $3, updated_at = NOW()
		WHERE id = $1 RETURNING ` + adColumns
	ad, err := scanAd(r.pool.QueryRow(ctx, q, id, events.PublishEventID, events.TakedownEventID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrAdNotFound
	}
	if err != nil {
		return nil, err
	}
	return ad, nil
}

// MarkCancelled transitions an ad to cancelled and stamps the audit fields.
func (r *Repository) MarkCancelled(ctx context.Context, id, by uuid.UUID) (*models.Ad, error) {
	const q = `UPDATE ads SET status = 'cancelled', cancelled_by = $2, cancelled_at = NOW(), updated_at = NOW()
		WHERE id = $1 RETURNING ` + adColumns
	ad, err := scanAd(r.pool.QueryRow(ctx, q, id, by))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrAdNotFound
	}
	if err != nil {
		return nil, err
	}
	return ad, nil
}

// ClearCalendarEvents removes the stored reminder event ids, called only
// after the external deletion succeeded.
func (r *Repository) ClearCalendarEvents(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `UPDATE ads SET publish_event_id = NULL, takedown_event_id = NULL, updated_at = NOW() WHERE id = $1`, id)
	return err
}
