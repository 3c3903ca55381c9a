// AngelaMos | 2026
// handler.go

package entitlement

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelamos/gatekeeper/internal/core"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterAdminRoutes mounts the entitlement read surface. Lives here
// rather than under the account handler because this package already
// depends on account.
func (h *Handler) RegisterAdminRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.Route("/admin/accounts/{accountID}/entitlements", func(r chi.Router) {
		r.Use(authenticator)

		r.Get("/", h.ListByAccount)
	})
}

func (h *Handler) ListByAccount(w http.ResponseWriter, r *http.Request) {
	ents, err := h.service.ListByAccount(r.Context(), chi.URLParam(r, "accountID"))
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	if ents == nil {
		ents = []Entitlement{}
	}

	core.OK(w, ents)
}
