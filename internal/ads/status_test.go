package ads

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/tegarerputra/Scheduling-System-JFU/internal/models"
)

func TestEffectiveStatus(t *testing.T) {
	publish := time.Date(2025, 1, 14, 15, 0, 0, 0, jakarta)
	takedown := time.Date(2025, 1, 16, 15, 0, 0, 0, jakarta)

	tests := []struct {
		name   string
		stored models.AdStatus
		now    time.Time
		want   models.AdStatus
	}{
		{"scheduled before publish stays scheduled", models.StatusScheduled, publish.Add(-time.Hour), models.StatusScheduled},
		{"scheduled at publish becomes live", models.StatusScheduled, publish, models.StatusLive},
		{"scheduled after publish becomes live", models.StatusScheduled, publish.Add(time.Hour), models.StatusLive},
		{"scheduled at takedown becomes completed", models.StatusScheduled, takedown, models.StatusCompleted},
		{"scheduled after takedown becomes completed", models.StatusScheduled, takedown.Add(24 * time.Hour), models.StatusCompleted},
		{"draft before publish stays draft", models.StatusDraft, publish.Add(-time.Hour), models.StatusDraft},
		{"cancelled is sticky past publish", models.StatusCancelled, publish.Add(time.Hour), models.StatusCancelled},
		{"cancelled is sticky past takedown", models.StatusCancelled, takedown.Add(time.Hour), models.StatusCancelled},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EffectiveStatus(tt.stored, publish, takedown, tt.now)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReconcile(t *testing.T) {
	publish := time.Date(2025, 1, 14, 15, 0, 0, 0, jakarta)
	ad := &models.Ad{
		Status:     models.StatusScheduled,
		PublishAt:  publish,
		TakedownAt: publish.AddDate(0, 0, 2),
	}

	changed := Reconcile(ad, publish.Add(-time.Minute))
	assert.False(t, changed)
	assert.Equal(t, models.StatusScheduled, ad.Status)

	changed = Reconcile(ad, publish.Add(time.Minute))
	assert.True(t, changed)
	assert.Equal(t, models.StatusLive, ad.Status)

	changed = Reconcile(ad, publish.AddDate(0, 0, 3))
	assert.True(t, changed)
	assert.Equal(t, models.StatusCompleted, ad.Status)
}
