// AngelaMos | 2026
// event.go

package webhook

// Event kinds the processor understands. Anything else is acknowledged and
// dropped.
const (
	KindCheckoutCompleted = "checkout.completed"
)

// PaymentEvent is the externally-reported payment notification. Validation
// rejects events missing the item, tier, or target before the idempotency
// guard is consulted, so malformed deliveries never consume their event id.
type PaymentEvent struct {
	EventID     string `json:"event_id" validate:"required"`
	Kind        string `json:"kind" validate:"required"`
	ItemID      string `json:"item_id" validate:"required"`
	Tier        string `json:"tier" validate:"required,oneof=daily weekly monthly yearly"`
	DiscordID   string `json:"discord_id" validate:"required"`
	AmountCents int64  `json:"amount_cents" validate:"gte=0"`
	Currency    string `json:"currency" validate:"omitempty,len=3"`
}

// AckResponse is the body returned to the payment provider. Duplicate is set
// when the event id had already been admitted.
type AckResponse struct {
	Received  bool `json:"received"`
	Duplicate bool `json:"duplicate,omitempty"`
}
