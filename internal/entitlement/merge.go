// AngelaMos | 2026
// merge.go

package entitlement

import (
	"errors"
	"fmt"
	"time"

	"github.com/angelamos/gatekeeper/internal/core"
)

// ErrTierUnavailable marks a tier that exists but cannot open a new
// entitlement. Extensions accept weekly; new purchases do not.
var ErrTierUnavailable = errors.New("tier unavailable for new entitlements")

// MergeResult describes what a paid tier does to the store: either a brand
// new window or a forward move of the current window's end.
type MergeResult struct {
	StartsAt time.Time
	EndsAt   time.Time
	Extends  bool
}

// Merge computes the window change for one paid tier. current is the
// account's current entitlement, nil when none is active. An extension
// chains from current.EndsAt, never from now, so paying early never costs
// remaining time.
func Merge(current *Entitlement, tier string, now time.Time) (MergeResult, error) {
	if current != nil {
		end, err := addTier(current.EndsAt, tier)
		if err != nil {
			return MergeResult{}, err
		}
		return MergeResult{
			StartsAt: current.StartsAt,
			EndsAt:   end,
			Extends:  true,
		}, nil
	}

	if tier == TierWeekly {
		return MergeResult{}, ErrTierUnavailable
	}

	end, err := addTier(now, tier)
	if err != nil {
		return MergeResult{}, err
	}

	return MergeResult{StartsAt: now, EndsAt: end}, nil
}

// addTier advances t by one tier period in calendar terms. AddDate keeps
// the wall-clock component, so a monthly window bought Jan 31 ends on the
// normalized Mar 2/3 rather than a fixed number of hours later.
func addTier(t time.Time, tier string) (time.Time, error) {
	switch tier {
	case TierDaily:
		return t.AddDate(0, 0, 1), nil
	case TierWeekly:
		return t.AddDate(0, 0, 7), nil
	case TierMonthly:
		return t.AddDate(0, 1, 0), nil
	case TierYearly:
		return t.AddDate(1, 0, 0), nil
	}
	return time.Time{}, fmt.Errorf("tier %q: %w", tier, core.ErrInvalidInput)
}
