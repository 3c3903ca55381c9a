// AngelaMos | 2026
// entity.go

package catalog

import "time"

// PriceTable holds per-tier prices in cents. -1 disables the tier, 0 is
// free, positive is the charge. Money never touches floats.
type PriceTable struct {
	Daily   int64 `db:"price_daily" json:"daily"`
	Weekly  int64 `db:"price_weekly" json:"weekly"`
	Monthly int64 `db:"price_monthly" json:"monthly"`
	Yearly  int64 `db:"price_yearly" json:"yearly"`
}

// Discounted applies percent off to every purchasable tier. Disabled (-1)
// and free (0) tiers pass through untouched. Rounds to the nearest cent.
func (p PriceTable) Discounted(percent int) PriceTable {
	return PriceTable{
		Daily:   discounted(p.Daily, percent),
		Weekly:  discounted(p.Weekly, percent),
		Monthly: discounted(p.Monthly, percent),
		Yearly:  discounted(p.Yearly, percent),
	}
}

func discounted(cents int64, percent int) int64 {
	if cents <= 0 {
		return cents
	}
	return (cents*int64(100-percent) + 50) / 100
}

// Item is a purchasable catalog entry. Sale prices are derived from the
// base table and the discount, never stored. PriceTable is embedded so the
// price_* columns map flat.
type Item struct {
	ID          string `db:"id" json:"id"`
	Name        string `db:"name" json:"name"`
	WindowName  string `db:"window_name" json:"window_name"`
	Description string `db:"description" json:"description"`
	PriceTable
	SaleActive   bool       `db:"sale_active" json:"sale_active"`
	SaleDiscount int        `db:"sale_discount" json:"sale_discount"`
	SaleEndsAt   *time.Time `db:"sale_ends_at" json:"sale_ends_at,omitempty"`
	Active       bool       `db:"active" json:"active"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// SaleLive reports whether a discount applies at now.
func (i *Item) SaleLive(now time.Time) bool {
	return i.SaleActive && i.SaleEndsAt != nil && i.SaleEndsAt.After(now)
}

// EffectivePrices is the table a buyer sees at now.
func (i *Item) EffectivePrices(now time.Time) PriceTable {
	if i.SaleLive(now) {
		return i.PriceTable.Discounted(i.SaleDiscount)
	}
	return i.PriceTable
}

// Sale is one historical sale record. The overlay on the item stays the
// source of truth for effective prices; these rows only track what ran.
type Sale struct {
	ID              string    `db:"id" json:"id"`
	ItemID          string    `db:"item_id" json:"item_id"`
	DiscountPercent int       `db:"discount_percent" json:"discount_percent"`
	StartsAt        time.Time `db:"starts_at" json:"starts_at"`
	EndsAt          time.Time `db:"ends_at" json:"ends_at"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}
