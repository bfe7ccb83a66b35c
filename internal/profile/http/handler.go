// Package profilehttp exposes the organisation profile endpoints.
package profilehttp

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/fondolibro/fondolibro/internal/platform/httpx"
	"github.com/fondolibro/fondolibro/internal/profile"
)

type profileService interface {
	Get(ctx context.Context) (profile.Profile, error)
	Update(ctx context.Context, in profile.UpdateInput) (profile.Profile, error)
}

type Handler struct {
	logger  *slog.Logger
	service profileService
	admin   func(http.Handler) http.Handler
}

func NewHandler(logger *slog.Logger, service profileService, admin func(http.Handler) http.Handler) *Handler {
	return &Handler{logger: logger, service: service, admin: admin}
}

// MountRoutes registers profile routes. Read is public, update admin only.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/profile", h.get)
	r.With(h.admin).Put("/profile", h.update)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	p, err := h.service.Get(r.Context())
	if err != nil {
		h.logger.Error("load profile", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	var in profile.UpdateInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
		return
	}
	p, err := h.service.Update(r.Context(), in)
	if err != nil {
		var verr validator.ValidationErrors
		if errors.As(err, &verr) {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
			return
		}
		h.logger.Error("update profile", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}
