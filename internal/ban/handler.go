// AngelaMos | 2026
// handler.go

package ban

import (
	"encoding/json"
	"errors"
	"net/http"

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

func (h *Handler) RegisterAdminRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.Route("/admin/bans", func(r chi.Router) {
		r.Use(authenticator)

		r.Post("/", h.Ban)
		r.Post("/lift", h.Unban)
	})
}

func (h *Handler) Ban(w http.ResponseWriter, r *http.Request) {
	var req BanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	outcomes, err := h.service.Ban(r.Context(), req.Selector, req.Reason)
	if err != nil {
		if errors.Is(err, core.ErrInvalidInput) {
			core.BadRequest(w, "unknown selector kind")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, outcomes)
}

func (h *Handler) Unban(w http.ResponseWriter, r *http.Request) {
	var req UnbanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	outcomes, err := h.service.Unban(r.Context(), req.Selector)
	if err != nil {
		if errors.Is(err, core.ErrInvalidInput) {
			core.BadRequest(w, "unknown selector kind")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, outcomes)
}
