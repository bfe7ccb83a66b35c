// Package closinghttp exposes the closure lifecycle over HTTP.
package closinghttp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/fondolibro/fondolibro/internal/closing"
	"github.com/fondolibro/fondolibro/internal/platform/httpx"
	"github.com/fondolibro/fondolibro/internal/shared"
)

type closingService interface {
	List(ctx context.Context) ([]closing.MonthlyClosure, error)
	Get(ctx context.Context, p shared.Period) (closing.MonthlyClosure, error)
	Aggregate(ctx context.Context, p shared.Period) (closing.Summary, error)
	CloseMonth(ctx context.Context, p shared.Period) (closing.MonthlyClosure, error)
	ReopenMonth(ctx context.Context, p shared.Period) error
}

// Handler wires HTTP endpoints for managing monthly closures.
type Handler struct {
	logger  *slog.Logger
	service closingService
	admin   func(http.Handler) http.Handler
}

// NewHandler constructs a closing HTTP handler. The admin middleware guards
// lifecycle mutations.
func NewHandler(logger *slog.Logger, service closingService, admin func(http.Handler) http.Handler) *Handler {
	return &Handler{logger: logger, service: service, admin: admin}
}

// MountRoutes registers closure routes. Reads are public, close/reopen are
// admin only.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/closures", func(r chi.Router) {
		r.Get("/", h.list)
		r.Get("/{year}/{month}", h.get)
		r.With(h.admin).Post("/{year}/{month}/close", h.close)
		r.With(h.admin).Post("/{year}/{month}/reopen", h.reopen)
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	recs, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("list closures", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, recs)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	p, ok := periodFromRequest(w, r)
	if !ok {
		return
	}
	rec, err := h.service.Get(r.Context(), p)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			// No record yet; report the live aggregation instead.
			summary, aggErr := h.service.Aggregate(r.Context(), p)
			if aggErr != nil {
				h.logger.Error("aggregate open month", slog.String("period", p.Key()), slog.Any("error", aggErr))
				httpx.RespondError(w, aggErr)
				return
			}
			httpx.JSON(w, http.StatusOK, closing.MonthlyClosure{
				ID:             p.Key(),
				Year:           p.Year,
				Month:          p.Month,
				Status:         closing.StatusOpen,
				InitialBalance: summary.InitialBalance,
				TotalIncome:    summary.TotalIncome,
				TotalExpenses:  summary.TotalExpenses,
				FinalBalance:   summary.FinalBalance,
				CategoryTotals: summary.CategoryTotals,
			})
			return
		}
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, rec)
}

func (h *Handler) close(w http.ResponseWriter, r *http.Request) {
	p, ok := periodFromRequest(w, r)
	if !ok {
		return
	}
	rec, err := h.service.CloseMonth(r.Context(), p)
	if err != nil {
		h.respondLifecycleError(w, "close", p, err)
		return
	}
	h.logger.Info("month closed", slog.String("period", p.Key()))
	httpx.JSON(w, http.StatusCreated, rec)
}

func (h *Handler) reopen(w http.ResponseWriter, r *http.Request) {
	p, ok := periodFromRequest(w, r)
	if !ok {
		return
	}
	if err := h.service.ReopenMonth(r.Context(), p); err != nil {
		h.respondLifecycleError(w, "reopen", p, err)
		return
	}
	h.logger.Info("month reopened", slog.String("period", p.Key()))
	httpx.JSON(w, http.StatusOK, map[string]string{"status": string(closing.StatusOpen), "period": p.Key()})
}

func (h *Handler) respondLifecycleError(w http.ResponseWriter, op string, p shared.Period, err error) {
	switch {
	case errors.Is(err, closing.ErrAlreadyClosed):
		httpx.Problem(w, http.StatusConflict, "Already Closed", fmt.Sprintf("%s is already closed", p.Key()))
	case errors.Is(err, closing.ErrNotClosed):
		httpx.Problem(w, http.StatusConflict, "Not Closed", fmt.Sprintf("%s is not closed", p.Key()))
	default:
		h.logger.Error("closure lifecycle", slog.String("op", op), slog.String("period", p.Key()), slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}

func periodFromRequest(w http.ResponseWriter, r *http.Request) (shared.Period, bool) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil || year < 1900 || year > 9999 {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid year")
		return shared.Period{}, false
	}
	month, err := strconv.Atoi(chi.URLParam(r, "month"))
	if err != nil || month < 1 || month > 12 {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "month must be 1-12")
		return shared.Period{}, false
	}
	return shared.Period{Year: year, Month: time.Month(month)}, true
}
