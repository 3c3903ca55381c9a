// AngelaMos | 2026
// handler.go

package account

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

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

// RegisterAdminRoutes mounts the account surface. Every caller here is a
// trusted service (bot, loader backend) holding the service token.
func (h *Handler) RegisterAdminRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.Route("/admin/accounts", func(r chi.Router) {
		r.Use(authenticator)

		r.Post("/", h.Register)
		r.Get("/", h.ListAccounts)
		r.Get("/{accountID}", h.GetAccount)
		r.Get("/by-discord/{discordID}", h.GetByDiscordID)
		r.Put("/{accountID}/role", h.AssignRole)
		r.Put("/{accountID}/hwid", h.LinkHWID)
		r.Post("/{accountID}/login", h.RecordLogin)
	})
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	acct, err := h.service.Register(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrDuplicateKey):
			core.Conflict(w, "discord id or username already registered")
		case errors.Is(err, core.ErrInvalidInput):
			core.BadRequest(w, "username has no usable characters")
		default:
			core.InternalServerError(w, err)
		}
		return
	}

	core.Created(w, ToAccountResponse(acct))
}

func (h *Handler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	params := ListParams{
		Page:     parseIntQuery(r, "page", 1),
		PageSize: parseIntQuery(r, "page_size", 20),
		Search:   r.URL.Query().Get("search"),
		Role:     r.URL.Query().Get("role"),
	}

	accts, total, err := h.service.List(r.Context(), params)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.Paginated(w, ToAccountResponseList(accts), params.Page, params.PageSize, total)
}

func (h *Handler) GetAccount(w http.ResponseWriter, r *http.Request) {
	acct, err := h.service.GetByID(r.Context(), chi.URLParam(r, "accountID"))
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "account")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ToAccountResponse(acct))
}

func (h *Handler) GetByDiscordID(w http.ResponseWriter, r *http.Request) {
	acct, err := h.service.GetByDiscordID(r.Context(), chi.URLParam(r, "discordID"))
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "account")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ToAccountResponse(acct))
}

func (h *Handler) AssignRole(w http.ResponseWriter, r *http.Request) {
	var req AssignRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	acct, err := h.service.AssignRole(r.Context(), chi.URLParam(r, "accountID"), req.Role)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrNotFound):
			core.NotFound(w, "account")
		case errors.Is(err, core.ErrConflict):
			core.Conflict(w, "account is banned")
		case errors.Is(err, core.ErrInvalidInput):
			core.BadRequest(w, "role must be ADMIN or OWNER")
		default:
			core.InternalServerError(w, err)
		}
		return
	}

	core.OK(w, ToAccountResponse(acct))
}

func (h *Handler) LinkHWID(w http.ResponseWriter, r *http.Request) {
	var req SetHWIDRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	if err := h.service.LinkHWID(r.Context(), chi.URLParam(r, "accountID"), req.HWID); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "account")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.NoContent(w)
}

func (h *Handler) RecordLogin(w http.ResponseWriter, r *http.Request) {
	acct, err := h.service.RecordLogin(r.Context(), chi.URLParam(r, "accountID"))
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "account")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ToAccountResponse(acct))
}

func parseIntQuery(r *http.Request, key string, defaultVal int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultVal
	}

	parsed, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}

	return parsed
}
