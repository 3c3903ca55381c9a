// AngelaMos | 2026
// handler.go

package catalog

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/angelamos/gatekeeper/internal/core"
)

type Handler struct {
	service   *Service
	validator *validator.Validate
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/items", h.ListItems)
	r.Get("/items/{itemID}", h.GetItem)
}

func (h *Handler) RegisterAdminRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.Route("/admin/items", func(r chi.Router) {
		r.Use(authenticator)

		r.Post("/draft", h.BeginDraft)
		r.Post("/draft/{draftID}", h.CompleteDraft)
		r.Get("/", h.ListAllItems)
		r.Put("/{itemID}/prices", h.UpdatePrices)
		r.Put("/{itemID}/active", h.SetActive)
		r.Post("/{itemID}/sale", h.StartSale)
		r.Delete("/{itemID}/sale", h.EndSale)
		r.Get("/{itemID}/sales", h.ListSales)
	})
}

func (h *Handler) ListItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.List(r.Context(), true)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ToItemResponseList(items, time.Now().UTC()))
}

func (h *Handler) GetItem(w http.ResponseWriter, r *http.Request) {
	item, err := h.service.Get(r.Context(), chi.URLParam(r, "itemID"))
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "item")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ToItemResponse(item, time.Now().UTC()))
}

func (h *Handler) ListAllItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.List(r.Context(), false)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ToItemResponseList(items, time.Now().UTC()))
}

func (h *Handler) BeginDraft(w http.ResponseWriter, r *http.Request) {
	var req BeginDraftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	draftID, err := h.service.BeginDraft(r.Context(), req)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.Created(w, BeginDraftResponse{DraftID: draftID})
}

func (h *Handler) CompleteDraft(w http.ResponseWriter, r *http.Request) {
	var req CompleteDraftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	item, err := h.service.CompleteDraft(r.Context(), chi.URLParam(r, "draftID"), req)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrNotFound):
			core.NotFound(w, "draft")
		case errors.Is(err, core.ErrDuplicateKey):
			core.Conflict(w, "item name already exists")
		default:
			core.InternalServerError(w, err)
		}
		return
	}

	core.Created(w, ToItemResponse(item, time.Now().UTC()))
}

func (h *Handler) UpdatePrices(w http.ResponseWriter, r *http.Request) {
	var req UpdatePricesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	item, err := h.service.UpdatePrices(r.Context(), chi.URLParam(r, "itemID"), req)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "item")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ToItemResponse(item, time.Now().UTC()))
}

func (h *Handler) SetActive(w http.ResponseWriter, r *http.Request) {
	var req SetActiveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	item, err := h.service.SetActive(r.Context(), chi.URLParam(r, "itemID"), req.Active)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "item")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ToItemResponse(item, time.Now().UTC()))
}

func (h *Handler) StartSale(w http.ResponseWriter, r *http.Request) {
	var req StartSaleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	item, err := h.service.StartSale(r.Context(), chi.URLParam(r, "itemID"), req)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrNotFound):
			core.NotFound(w, "item")
		case errors.Is(err, core.ErrInvalidInput):
			core.BadRequest(w, "sale end must be in the future")
		default:
			core.InternalServerError(w, err)
		}
		return
	}

	core.OK(w, ToItemResponse(item, time.Now().UTC()))
}

func (h *Handler) EndSale(w http.ResponseWriter, r *http.Request) {
	item, err := h.service.EndSale(r.Context(), chi.URLParam(r, "itemID"))
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "item")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ToItemResponse(item, time.Now().UTC()))
}

func (h *Handler) ListSales(w http.ResponseWriter, r *http.Request) {
	sales, err := h.service.ListSales(r.Context(), chi.URLParam(r, "itemID"))
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "item")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, sales)
}
