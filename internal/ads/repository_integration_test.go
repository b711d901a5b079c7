//go:build integration

package ads

// Exercises the Postgres-side slot guard for real. Needs a database:
//
//	DATABASE_URL=postgres://... go test -tags integration ./internal/ads/
//
// The test truncates the users and ads tables, so point it at a throwaway
// database.

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tegarerputra/Scheduling-System-JFU/internal/models"
	"github.com/tegarerputra/Scheduling-System-JFU/pkg/database"
)

func newTestRepository(t *testing.T) (*Repository, uuid.UUID) {
	t.Helper()
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set")
	}
	ctx := context.Background()

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, database.Migrate(ctx, pool))
	_, err = pool.Exec(ctx, `TRUNCATE ads, users CASCADE`)
	require.NoError(t, err)

	var userID uuid.UUID
	err = pool.QueryRow(ctx,
		`INSERT INTO users (email, password_hash, full_name) VALUES ('ops@jfu.test', 'x', 'Ops') RETURNING id`).
		Scan(&userID)
	require.NoError(t, err)

	policy := SlotPolicy{MaxNewPerDay: 3, MaxExtendedPerDay: 1}
	return NewRepository(pool, policy, jakarta), userID
}

func testAd(userID uuid.UUID, title string, publish time.Time, days int) *models.Ad {
	return &models.Ad{
		Title:        title,
		CustomerName: "Kopi Kenangan",
		PublishAt:    publish,
		TakedownAt:   TakedownAt(publish, days),
		DurationDays: days,
		AdType:       models.AdTypeNew,
		CreatedBy:    userID,
	}
}

func TestRepositoryCreateEnforcesCapacityUnderContention(t *testing.T) {
	repo, userID := newTestRepository(t)
	publish := time.Date(2025, 3, 10, 15, 0, 0, 0, jakarta)

	const writers = 6
	errs := make([]error, writers)
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = repo.Create(context.Background(), testAd(userID, "Promo", publish, 1))
		}(i)
	}
	wg.Wait()

	ok, full := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		default:
			assert.ErrorIs(t, err, ErrSlotFull)
			full++
		}
	}
	assert.Equal(t, 3, ok)
	assert.Equal(t, 3, full)

	newUsed, extendedUsed, err := repo.SlotCounts(context.Background(), "2025-03-10")
	require.NoError(t, err)
	assert.Equal(t, 3, newUsed)
	assert.Equal(t, 0, extendedUsed)
}

func TestRepositoryCancelledAdsDoNotCount(t *testing.T) {
	repo, userID := newTestRepository(t)
	publish := time.Date(2025, 3, 10, 15, 0, 0, 0, jakarta)

	for i := 0; i < 3; i++ {
		require.NoError(t, repo.Create(context.Background(), testAd(userID, "Promo", publish, 1)))
	}
	victim := testAd(userID, "Victim", publish, 1)
	require.ErrorIs(t, repo.Create(context.Background(), victim), ErrSlotFull)

	ads, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, ads, 3)
	_, err = repo.MarkCancelled(context.Background(), ads[0].ID, userID)
	require.NoError(t, err)

	assert.NoError(t, repo.Create(context.Background(), victim))
}

func TestRepositoryUpdateGuardExcludesSelf(t *testing.T) {
	repo, userID := newTestRepository(t)
	publish := time.Date(2025, 3, 10, 15, 0, 0, 0, jakarta)

	var last *models.Ad
	for i := 0; i < 3; i++ {
		last = testAd(userID, "Promo", publish, 1)
		require.NoError(t, repo.Create(context.Background(), last))
	}

	// extending its own window must not trip on the filled date
	last.DurationDays = 2
	last.TakedownAt = TakedownAt(last.PublishAt, 2)
	assert.NoError(t, repo.Update(context.Background(), last, true))
}

func TestCheckSlotAvailabilityFunction(t *testing.T) {
	repo, userID := newTestRepository(t)
	publish := time.Date(2025, 3, 10, 15, 0, 0, 0, jakarta)

	for i := 0; i < 3; i++ {
		require.NoError(t, repo.Create(context.Background(), testAd(userID, "Promo", publish, 1)))
	}

	var available bool
	var message string
	var newUsed, extendedUsed int
	err := repo.pool.QueryRow(context.Background(),
		`SELECT available, message, new_slots_used, extended_slots_used FROM check_slot_availability($1, 'new')`,
		"2025-03-10").Scan(&available, &message, &newUsed, &extendedUsed)
	require.NoError(t, err)
	assert.False(t, available)
	assert.Equal(t, 3, newUsed)
	assert.Equal(t, 0, extendedUsed)
	assert.Contains(t, message, "All new ad slots taken")

	// takedown day is free again
	err = repo.pool.QueryRow(context.Background(),
		`SELECT available, message, new_slots_used, extended_slots_used FROM check_slot_availability($1, 'new')`,
		"2025-03-11").Scan(&available, &message, &newUsed, &extendedUsed)
	require.NoError(t, err)
	assert.True(t, available)
	assert.Equal(t, 0, newUsed)
}
