// Package ledgerhttp exposes transaction CRUD and dashboard totals.
package ledgerhttp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/fondolibro/fondolibro/internal/ledger"
	"github.com/fondolibro/fondolibro/internal/money"
	"github.com/fondolibro/fondolibro/internal/platform/httpx"
	"github.com/fondolibro/fondolibro/internal/shared"
)

type ledgerService interface {
	List(ctx context.Context) ([]ledger.Transaction, error)
	Totals(ctx context.Context) (ledger.Totals, error)
	Create(ctx context.Context, in ledger.CreateInput) (ledger.Transaction, error)
	Update(ctx context.Context, id string, in ledger.UpdateInput) (ledger.Transaction, error)
	Delete(ctx context.Context, id string) error
	Events() *ledger.Events
}

// Handler wires HTTP endpoints for the transaction ledger.
type Handler struct {
	logger  *slog.Logger
	service ledgerService
	admin   func(http.Handler) http.Handler
}

// NewHandler constructs a ledger HTTP handler.
func NewHandler(logger *slog.Logger, service ledgerService, admin func(http.Handler) http.Handler) *Handler {
	return &Handler{logger: logger, service: service, admin: admin}
}

// MountRoutes registers ledger routes. Reads are public, writes admin only.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/transactions", func(r chi.Router) {
		r.Get("/", h.list)
		r.With(h.admin).Post("/", h.create)
		r.With(h.admin).Put("/{id}", h.update)
		r.With(h.admin).Delete("/{id}", h.delete)
		r.With(h.admin).Get("/events", h.events)
	})
	r.Get("/dashboard/totals", h.totals)
	r.Get("/categories", h.categories)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	txs, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("list transactions", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, txs)
}

func (h *Handler) totals(w http.ResponseWriter, r *http.Request) {
	totals, err := h.service.Totals(r.Context())
	if err != nil {
		h.logger.Error("dashboard totals", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, totals)
}

func (h *Handler) categories(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, ledger.Categories)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var in ledger.CreateInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
		return
	}
	t, err := h.service.Create(r.Context(), in)
	if err != nil {
		h.respondWriteError(w, "create", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, t)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var in ledger.UpdateInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
		return
	}
	t, err := h.service.Update(r.Context(), id, in)
	if err != nil {
		h.respondWriteError(w, "update", err)
		return
	}
	httpx.JSON(w, http.StatusOK, t)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.respondWriteError(w, "delete", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// events streams write failures as server-sent events for UI toasts.
func (h *Handler) events(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "streaming unsupported")
		return
	}
	ch, cancel := h.service.Events().Subscribe()
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev, open := <-ch:
			if !open {
				return
			}
			payload, err := json.Marshal(ev)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", payload)
			flusher.Flush()
		}
	}
}

func (h *Handler) respondWriteError(w http.ResponseWriter, op string, err error) {
	var verr validator.ValidationErrors
	switch {
	case errors.Is(err, ledger.ErrMonthClosed):
		httpx.Problem(w, http.StatusConflict, "Month Closed", err.Error())
	case errors.Is(err, ledger.ErrUnknownCategory), errors.Is(err, money.ErrInvalidAmount), errors.As(err, &verr):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, shared.ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "transaction not found")
	default:
		h.logger.Error("ledger write", slog.String("op", op), slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}
