package ads

import (
	"fmt"

	"github.com/tegarerputra/Scheduling-System-JFU/internal/models"
)

// SlotInfo is the advisory availability result for one date and ad type.
// Counts cover both pools so the UI can render "2/3 new, 1/1 extended".
type SlotInfo struct {
	Available         bool   `json:"available"`
	Message           string `json:"message"`
	NewSlotsUsed      int    `json:"new_slots_used"`
	ExtendedSlotsUsed int    `json:"extended_slots_used"`
}

// SlotPolicy holds the per-day capacity limits for each pool.
type SlotPolicy struct {
	MaxNewPerDay      int
	MaxExtendedPerDay int
}

// Evaluate applies the policy to the observed counts for a date. newUsed and
// extendedUsed count non-cancelled ads of each type occupying the date.
//
// This is the advisory half of the capacity rule: the binding check runs
// inside the insert transaction (see Repository.Create).
func (p SlotPolicy) Evaluate(adType models.AdType, newUsed, extendedUsed int) SlotInfo {
	info := SlotInfo{
		NewSlotsUsed:      newUsed,
		ExtendedSlotsUsed: extendedUsed,
	}
	switch adType {
	case models.AdTypeExtended:
		if extendedUsed >= p.MaxExtendedPerDay {
			info.Message = fmt.Sprintf("Extended slot full (%d/%d used)", extendedUsed, p.MaxExtendedPerDay)
			return info
		}
		info.Available = true
		info.Message = fmt.Sprintf("Extended slot available (%d/%d used)", extendedUsed, p.MaxExtendedPerDay)
	default:
		if newUsed >= p.MaxNewPerDay {
			info.Message = fmt.Sprintf("All new ad slots taken (%d/%d used)", newUsed, p.MaxNewPerDay)
			return info
		}
		info.Available = true
		info.Message = fmt.Sprintf("%d of %d new ad slots remaining", p.MaxNewPerDay-newUsed, p.MaxNewPerDay)
	}
	return info
}
