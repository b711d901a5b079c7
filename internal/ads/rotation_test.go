package ads

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tegarerputra/Scheduling-System-JFU/internal/models"
)

func TestNextIncentiveType(t *testing.T) {
	assert.Equal(t, IncentiveGopay, NextIncentiveType(nil))
	assert.Equal(t, IncentiveDana, NextIncentiveType(&models.Ad{IncentiveType: IncentiveGopay}))
	assert.Equal(t, IncentiveGopay, NextIncentiveType(&models.Ad{IncentiveType: IncentiveDana}))
	// unknown last value resets to gopay
	assert.Equal(t, IncentiveGopay, NextIncentiveType(&models.Ad{IncentiveType: ""}))
}

func TestNextBackgroundColorFromPalette(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))
	palette := make(map[string]bool, len(colorPalette))
	for _, c := range colorPalette {
		palette[c] = true
	}
	for i := 0; i < 100; i++ {
		assert.True(t, palette[NextBackgroundColor(nil, rnd)])
	}
}

func TestNextBackgroundColorAvoidsRepeat(t *testing.T) {
	rnd := rand.New(rand.NewSource(42))
	last := &models.Ad{}
	for i := 0; i < 200; i++ {
		color := NextBackgroundColor(last, rnd)
		assert.NotEqual(t, last.BackgroundColor, color)
		last.BackgroundColor = color
	}
}
