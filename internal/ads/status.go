package ads

import (
	"time"

	"github.com/tegarerputra/Scheduling-System-JFU/internal/models"
)

// EffectiveStatus derives the status an ad should have right now from its
// stored timestamps. Cancelled is sticky and never overridden by time.
// Otherwise: past takedown -> completed, past publish -> live, else the
// persisted pre-live status (draft or scheduled) stands.
//
// Every read path recomputes this before trusting the persisted value, so
// status stays consistent with wall-clock time without a background sweep.
func EffectiveStatus(stored models.AdStatus, publishAt, takedownAt, now time.Time) models.AdStatus {
	if stored == models.StatusCancelled {
		return models.StatusCancelled
	}
	if !now.Before(takedownAt) {
		return models.StatusCompleted
	}
	if !now.Before(publishAt) {
		return models.StatusLive
	}
	return stored
}

// Reconcile replaces ad.Status with its effective status and reports
// whether it changed.
func Reconcile(ad *models.Ad, now time.Time) bool {
	effective := EffectiveStatus(ad.Status, ad.PublishAt, ad.TakedownAt, now)
	if effective == ad.Status {
		return false
	}
	ad.Status = effective
	return true
}
