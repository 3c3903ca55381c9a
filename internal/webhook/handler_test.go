// AngelaMos | 2026
// handler_test.go

package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelamos/gatekeeper/internal/entitlement"
)

type stubProcessor struct {
	calls    []entitlement.Payment
	err      error
	failures int
}

func (s *stubProcessor) ProcessPayment(
	ctx context.Context,
	p entitlement.Payment,
) (*entitlement.Entitlement, error) {
	s.calls = append(s.calls, p)
	if s.failures > 0 {
		s.failures--
		return nil, errors.New("entitlement store unavailable")
	}
	if s.err != nil {
		return nil, s.err
	}
	return &entitlement.Entitlement{ID: "ent-1"}, nil
}

func newTestRouter(proc *stubProcessor) http.Handler {
	r := chi.NewRouter()
	NewHandler(proc, NewMemoryGuard()).RegisterRoutes(r)
	return r
}

func postEvent(t *testing.T, router http.Handler, ev PaymentEvent) *httptest.ResponseRecorder {
	t.Helper()

	body, err := json.Marshal(ev)
	require.NoError(t, err)

	req := httptest.NewRequest(
		http.MethodPost, "/webhooks/payment", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func validEvent() PaymentEvent {
	return PaymentEvent{
		EventID:     "evt_100",
		Kind:        KindCheckoutCompleted,
		ItemID:      "item-1",
		Tier:        "monthly",
		DiscordID:   "111222333",
		AmountCents: 4000,
		Currency:    "USD",
	}
}

func TestReceiveProcessesEvent(t *testing.T) {
	proc := &stubProcessor{}
	router := newTestRouter(proc)

	rec := postEvent(t, router, validEvent())

	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, proc.calls, 1)
	assert.Equal(t, "item-1", proc.calls[0].ItemID)
	assert.Equal(t, "monthly", proc.calls[0].Tier)
	assert.Equal(t, "111222333", proc.calls[0].DiscordID)
}

func TestReceiveDuplicateAcknowledgedOnce(t *testing.T) {
	proc := &stubProcessor{}
	router := newTestRouter(proc)

	first := postEvent(t, router, validEvent())
	second := postEvent(t, router, validEvent())

	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, http.StatusOK, second.Code)
	assert.Contains(t, second.Body.String(), `"duplicate":true`)

	// The entitlement store saw the event exactly once.
	assert.Len(t, proc.calls, 1)
}

func TestReceiveRejectsMissingFields(t *testing.T) {
	proc := &stubProcessor{}
	router := newTestRouter(proc)

	ev := validEvent()
	ev.ItemID = ""

	rec := postEvent(t, router, ev)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, proc.calls)
}

func TestReceiveRejectsUnknownTier(t *testing.T) {
	proc := &stubProcessor{}
	router := newTestRouter(proc)

	ev := validEvent()
	ev.Tier = "lifetime"

	rec := postEvent(t, router, ev)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, proc.calls)
}

func TestReceiveValidationDoesNotConsumeEventID(t *testing.T) {
	proc := &stubProcessor{}
	router := newTestRouter(proc)

	bad := validEvent()
	bad.Tier = "lifetime"
	postEvent(t, router, bad)

	// The corrected redelivery with the same event id must still be
	// admitted.
	rec := postEvent(t, router, validEvent())

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, proc.calls, 1)
}

func TestReceiveIgnoresUnknownKind(t *testing.T) {
	proc := &stubProcessor{}
	router := newTestRouter(proc)

	ev := validEvent()
	ev.Kind = "invoice.voided"

	rec := postEvent(t, router, ev)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, proc.calls)
}

func TestReceiveFailureReleasesEventID(t *testing.T) {
	proc := &stubProcessor{failures: 1}
	router := newTestRouter(proc)

	first := postEvent(t, router, validEvent())
	assert.Equal(t, http.StatusInternalServerError, first.Code)

	// Nothing was applied, so the redelivery of the same event id must be
	// admitted and processed, not acknowledged as a duplicate.
	retry := postEvent(t, router, validEvent())

	assert.Equal(t, http.StatusOK, retry.Code)
	assert.NotContains(t, retry.Body.String(), `"duplicate":true`)
	assert.Len(t, proc.calls, 2)
}

func TestReceiveTierUnavailable(t *testing.T) {
	proc := &stubProcessor{err: entitlement.ErrTierUnavailable}
	router := newTestRouter(proc)

	ev := validEvent()
	ev.Tier = "weekly"

	rec := postEvent(t, router, ev)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "TIER_UNAVAILABLE")
}
