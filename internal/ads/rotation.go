package ads

import (
	"math/rand"

	"github.com/tegarerputra/Scheduling-System-JFU/internal/models"
)

// Incentive types alternate between consecutive ads so customers see both
// payout options over time.
const (
	IncentiveGopay = "gopay"
	IncentiveDana  = "dana"
)

// colorPalette is the set of card background colors (Tailwind 400 shades).
var colorPalette = []string{
	"#F87171", // red
	"#FB923C", // orange
	"#FACC15", // yellow
	"#4ADE80", // green
	"#2DD4BF", // teal
	"#60A5FA", // blue
	"#818CF8", // indigo
	"#A78BFA", // violet
	"#F472B6", // pink
	"#FB7185", // rose
}

// NextIncentiveType flips the incentive type relative to the most recently
// created ad. First ad (or unknown last incentive) gets gopay.
func NextIncentiveType(last *models.Ad) string {
	if last != nil && last.IncentiveType == IncentiveGopay {
		return IncentiveDana
	}
	return IncentiveGopay
}

// NextBackgroundColor picks a random palette color, re-drawing once from
// the remaining colors if it matches the previous ad's color so consecutive
// cards never look the same.
func NextBackgroundColor(last *models.Ad, rnd *rand.Rand) string {
	color := colorPalette[rnd.Intn(len(colorPalette))]
	if last == nil || last.BackgroundColor != color {
		return color
	}
	rest := make([]string, 0, len(colorPalette)-1)
	for _, c := range colorPalette {
		if c != color {
			rest = append(rest, c)
		}
	}
	return rest[rnd.Intn(len(rest))]
}
