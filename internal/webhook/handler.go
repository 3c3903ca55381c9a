// AngelaMos | 2026
// handler.go

package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/angelamos/gatekeeper/internal/core"
	"github.com/angelamos/gatekeeper/internal/entitlement"
	"github.com/angelamos/gatekeeper/internal/metrics"
)

// Processor applies an admitted payment to the entitlement store.
// Satisfied by entitlement.Service.
type Processor interface {
	ProcessPayment(ctx context.Context, p entitlement.Payment) (*entitlement.Entitlement, error)
}

type Handler struct {
	processor Processor
	guard     Guard
	validator *validator.Validate
	dispatch  map[string]func(context.Context, PaymentEvent) error
}

func NewHandler(processor Processor, guard Guard) *Handler {
	h := &Handler{
		processor: processor,
		guard:     guard,
		validator: validator.New(validator.WithRequiredStructEnabled()),
	}

	// Event kinds are routed through an explicit table so adding a kind is
	// one entry, not another conditional in the receive path.
	h.dispatch = map[string]func(context.Context, PaymentEvent) error{
		KindCheckoutCompleted: h.handleCheckoutCompleted,
	}

	return h
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/webhooks/payment", h.Receive)
}

// Receive acknowledges payment deliveries. Validation happens before
// admission so a malformed delivery never burns its event id; duplicates are
// acknowledged with 200 so the provider stops retrying.
func (h *Handler) Receive(w http.ResponseWriter, r *http.Request) {
	var ev PaymentEvent
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		metrics.WebhookEvents.WithLabelValues("rejected").Inc()
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(ev); err != nil {
		metrics.WebhookEvents.WithLabelValues("rejected").Inc()
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	handle, ok := h.dispatch[ev.Kind]
	if !ok {
		metrics.WebhookEvents.WithLabelValues("ignored").Inc()
		slog.Debug("webhook kind ignored", "kind", ev.Kind, "event_id", ev.EventID)
		core.OK(w, AckResponse{Received: true})
		return
	}

	admitted, err := h.guard.Admit(r.Context(), ev.EventID)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}
	if !admitted {
		metrics.WebhookEvents.WithLabelValues("duplicate").Inc()
		slog.Info("duplicate webhook event", "event_id", ev.EventID, "kind", ev.Kind)
		core.OK(w, AckResponse{Received: true, Duplicate: true})
		return
	}

	if err := handle(r.Context(), ev); err != nil {
		// Processing changed no state, so the id goes back to the guard
		// and the provider's retry is admitted like a first delivery.
		if fErr := h.guard.Forget(r.Context(), ev.EventID); fErr != nil {
			slog.Error("failed to release event id",
				"event_id", ev.EventID, "error", fErr)
		}
		metrics.WebhookEvents.WithLabelValues("rejected").Inc()
		h.writeProcessingError(w, ev, err)
		return
	}

	metrics.WebhookEvents.WithLabelValues("processed").Inc()
	core.OK(w, AckResponse{Received: true})
}

func (h *Handler) handleCheckoutCompleted(ctx context.Context, ev PaymentEvent) error {
	_, err := h.processor.ProcessPayment(ctx, entitlement.Payment{
		DiscordID: ev.DiscordID,
		ItemID:    ev.ItemID,
		Tier:      ev.Tier,
	})
	return err
}

func (h *Handler) writeProcessingError(
	w http.ResponseWriter,
	ev PaymentEvent,
	err error,
) {
	switch {
	case errors.Is(err, entitlement.ErrTierUnavailable):
		core.JSONError(w, &core.AppError{
			Code:    "TIER_UNAVAILABLE",
			Message: "tier cannot open a new entitlement",
			Status:  http.StatusUnprocessableEntity,
		})
	case errors.Is(err, core.ErrNotFound):
		slog.Warn("webhook target not found",
			"event_id", ev.EventID,
			"discord_id", ev.DiscordID,
			"item_id", ev.ItemID,
		)
		core.NotFound(w, "payment target")
	case errors.Is(err, core.ErrInvalidInput):
		core.BadRequest(w, err.Error())
	default:
		core.InternalServerError(w, err)
	}
}
