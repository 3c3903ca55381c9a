// AngelaMos | 2026
// dto.go

package catalog

import "time"

type BeginDraftRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=64"`
	WindowName  string `json:"window_name" validate:"required,max=128"`
	Description string `json:"description" validate:"max=1024"`
}

type CompleteDraftRequest struct {
	Prices PricesRequest `json:"prices" validate:"required"`
}

// PricesRequest carries cents per tier. -1 disables a tier.
type PricesRequest struct {
	Daily   int64 `json:"daily" validate:"gte=-1"`
	Weekly  int64 `json:"weekly" validate:"gte=-1"`
	Monthly int64 `json:"monthly" validate:"gte=-1"`
	Yearly  int64 `json:"yearly" validate:"gte=-1"`
}

func (p PricesRequest) toTable() PriceTable {
	return PriceTable{
		Daily:   p.Daily,
		Weekly:  p.Weekly,
		Monthly: p.Monthly,
		Yearly:  p.Yearly,
	}
}

type UpdatePricesRequest struct {
	Prices PricesRequest `json:"prices" validate:"required"`
}

type SetActiveRequest struct {
	Active bool `json:"active"`
}

type StartSaleRequest struct {
	DiscountPercent int       `json:"discount_percent" validate:"required,gte=1,lte=99"`
	EndsAt          time.Time `json:"ends_at" validate:"required"`
}

type BeginDraftResponse struct {
	DraftID string `json:"draft_id"`
}

// ItemResponse is the public catalog view: base prices plus the table in
// effect right now.
type ItemResponse struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	WindowName      string     `json:"window_name"`
	Description     string     `json:"description"`
	Prices          PriceTable `json:"prices"`
	EffectivePrices PriceTable `json:"effective_prices"`
	SaleActive      bool       `json:"sale_active"`
	SaleDiscount    int        `json:"sale_discount,omitempty"`
	SaleEndsAt      *time.Time `json:"sale_ends_at,omitempty"`
	Active          bool       `json:"active"`
	CreatedAt       time.Time  `json:"created_at"`
}

func ToItemResponse(item *Item, now time.Time) ItemResponse {
	return ItemResponse{
		ID:              item.ID,
		Name:            item.Name,
		WindowName:      item.WindowName,
		Description:     item.Description,
		Prices:          item.PriceTable,
		EffectivePrices: item.EffectivePrices(now),
		SaleActive:      item.SaleLive(now),
		SaleDiscount:    item.SaleDiscount,
		SaleEndsAt:      item.SaleEndsAt,
		Active:          item.Active,
		CreatedAt:       item.CreatedAt,
	}
}

func ToItemResponseList(items []Item, now time.Time) []ItemResponse {
	responses := make([]ItemResponse, len(items))
	for i := range items {
		responses[i] = ToItemResponse(&items[i], now)
	}
	return responses
}
