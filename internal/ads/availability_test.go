package ads

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tegarerputra/Scheduling-System-JFU/internal/models"
)

func TestSlotPolicyEvaluateNew(t *testing.T) {
	policy := SlotPolicy{MaxNewPerDay: 3, MaxExtendedPerDay: 1}

	info := policy.Evaluate(models.AdTypeNew, 0, 0)
	assert.True(t, info.Available)
	assert.Equal(t, 0, info.NewSlotsUsed)

	info = policy.Evaluate(models.AdTypeNew, 2, 1)
	assert.True(t, info.Available)
	assert.Equal(t, 2, info.NewSlotsUsed)
	assert.Equal(t, 1, info.ExtendedSlotsUsed)

	info = policy.Evaluate(models.AdTypeNew, 3, 0)
	assert.False(t, info.Available)
	assert.NotEmpty(t, info.Message)
}

func TestSlotPolicyEvaluateExtended(t *testing.T) {
	policy := SlotPolicy{MaxNewPerDay: 3, MaxExtendedPerDay: 1}

	// extended pool is independent of the new pool
	info := policy.Evaluate(models.AdTypeExtended, 3, 0)
	assert.True(t, info.Available)

	info = policy.Evaluate(models.AdTypeExtended, 0, 1)
	assert.False(t, info.Available)
	assert.Equal(t, 1, info.ExtendedSlotsUsed)
}
