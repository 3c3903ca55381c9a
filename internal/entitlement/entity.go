// AngelaMos | 2026
// entity.go

package entitlement

import "time"

// Tiers name the purchasable access windows.
const (
	TierDaily   = "daily"
	TierWeekly  = "weekly"
	TierMonthly = "monthly"
	TierYearly  = "yearly"
)

// Entitlement is one time-boxed access window for an account over an item.
// Rows are never deleted; an extension moves EndsAt forward, a new purchase
// after a lapse appends a fresh row.
type Entitlement struct {
	ID        string    `db:"id" json:"id"`
	AccountID string    `db:"account_id" json:"account_id"`
	ItemID    string    `db:"item_id" json:"item_id"`
	StartsAt  time.Time `db:"starts_at" json:"starts_at"`
	EndsAt    time.Time `db:"ends_at" json:"ends_at"`
	Active    bool      `db:"active" json:"active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Current reports whether the window grants access at now. EndsAt is
// exclusive.
func (e *Entitlement) Current(now time.Time) bool {
	return e.Active && e.EndsAt.After(now)
}

func ValidTier(tier string) bool {
	switch tier {
	case TierDaily, TierWeekly, TierMonthly, TierYearly:
		return true
	}
	return false
}
