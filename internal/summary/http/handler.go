// Package summaryhttp exposes the AI monthly summary endpoint.
package summaryhttp

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/fondolibro/fondolibro/internal/closing"
	"github.com/fondolibro/fondolibro/internal/ledger"
	"github.com/fondolibro/fondolibro/internal/platform/httpx"
	"github.com/fondolibro/fondolibro/internal/shared"
	"github.com/fondolibro/fondolibro/internal/summary"
)

type generator interface {
	Generate(ctx context.Context, in summary.Input) (summary.Output, error)
}

type transactionSource interface {
	List(ctx context.Context) ([]ledger.Transaction, error)
}

type balanceSource interface {
	Aggregate(ctx context.Context, p shared.Period) (closing.Summary, error)
}

// Handler builds the model input from the ledger and serves the result.
type Handler struct {
	logger    *slog.Logger
	generator generator
	txs       transactionSource
	balances  balanceSource
	admin     func(http.Handler) http.Handler
}

func NewHandler(logger *slog.Logger, g generator, txs transactionSource, balances balanceSource, admin func(http.Handler) http.Handler) *Handler {
	return &Handler{
		logger:    logger,
		generator: g,
		txs:       txs,
		balances:  balances,
		admin:     admin,
	}
}

// MountRoutes registers the summary route, admin only.
func (h *Handler) MountRoutes(r chi.Router) {
	r.With(h.admin).Post("/summary/{year}/{month}", h.generate)
}

type generateRequest struct {
	Benchmarks string `json:"benchmarks"`
}

func (h *Handler) generate(w http.ResponseWriter, r *http.Request) {
	p, ok := periodFromRequest(w, r)
	if !ok {
		return
	}

	// The body is optional; an empty request generates a plain summary.
	var req generateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed request body")
		return
	}

	txs, err := h.txs.List(r.Context())
	if err != nil {
		h.logger.Error("summary load transactions", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}

	agg, err := h.balances.Aggregate(r.Context(), p)
	if err != nil {
		h.logger.Error("summary aggregate month", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}

	in := summary.Input{
		PeriodLabel: p.Key(),
		Capital:     agg.FinalBalance,
		Benchmarks:  req.Benchmarks,
	}
	for _, t := range txs {
		if !p.Contains(t.Date) {
			continue
		}
		in.Entries = append(in.Entries, summary.Entry{
			Date:        t.Date.Format("2006-01-02"),
			Kind:        string(t.Kind),
			Category:    t.Category,
			Description: t.Description,
			Amount:      t.Amount,
		})
	}

	out, err := h.generator.Generate(r.Context(), in)
	if err != nil {
		h.logger.Error("summary generate", slog.Any("error", err))
		httpx.Problem(w, http.StatusBadGateway, "Summary Unavailable", "could not generate summary")
		return
	}
	httpx.JSON(w, http.StatusOK, out)
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
