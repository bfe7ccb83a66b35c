// Package reporthttp serves the public report endpoints.
package reporthttp

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/fondolibro/fondolibro/internal/platform/httpx"
	"github.com/fondolibro/fondolibro/internal/report"
	"github.com/fondolibro/fondolibro/internal/shared"
)

type reportService interface {
	Annual(ctx context.Context, year int) (report.AnnualReport, error)
	Monthly(ctx context.Context, p shared.Period) (report.MonthlyReport, error)
}

// Handler wires HTTP endpoints for monthly and annual reports.
type Handler struct {
	logger  *slog.Logger
	service reportService
	cache   *report.Cache
}

// NewHandler constructs a report HTTP handler.
func NewHandler(logger *slog.Logger, service reportService, cache *report.Cache) *Handler {
	return &Handler{logger: logger, service: service, cache: cache}
}

// MountRoutes registers the report routes. All report reads are public.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/reports", func(r chi.Router) {
		r.Get("/annual/{year}", h.annual)
		r.Get("/annual/{year}/export", h.annualCSV)
		r.Get("/monthly/{year}/{month}", h.monthly)
	})
}

func (h *Handler) annual(w http.ResponseWriter, r *http.Request) {
	year, err := parseYear(chi.URLParam(r, "year"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	payload, err := h.buildAnnual(r.Context(), year)
	if err != nil {
		h.logger.Error("build annual report", slog.Int("year", year), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, payload)
}

func (h *Handler) annualCSV(w http.ResponseWriter, r *http.Request) {
	year, err := parseYear(chi.URLParam(r, "year"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	payload, err := h.buildAnnual(r.Context(), year)
	if err != nil {
		h.logger.Error("build annual export", slog.Int("year", year), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="reporte-consolidado-%d.csv"`, year))
	if err := report.WriteAnnualCSV(w, payload); err != nil {
		h.logger.Error("write annual csv", slog.Int("year", year), slog.Any("error", err))
	}
}

func (h *Handler) monthly(w http.ResponseWriter, r *http.Request) {
	year, err := parseYear(chi.URLParam(r, "year"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	month, err := strconv.Atoi(chi.URLParam(r, "month"))
	if err != nil || month < 1 || month > 12 {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "month must be 1-12")
		return
	}
	payload, err := h.service.Monthly(r.Context(), shared.Period{Year: year, Month: time.Month(month)})
	if err != nil {
		h.logger.Error("build monthly report", slog.Int("year", year), slog.Int("month", month), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, payload)
}

// buildAnnual serves from the versioned cache, collapsing concurrent builds
// of the same year onto one computation.
func (h *Handler) buildAnnual(ctx context.Context, year int) (report.AnnualReport, error) {
	key, err := h.cache.BuildKey(ctx, "report", "annual", strconv.Itoa(year))
	if err != nil {
		return report.AnnualReport{}, err
	}
	var out report.AnnualReport
	err = h.cache.FetchJSON(ctx, key, &out, func(ctx context.Context) (interface{}, error) {
		value, err, _ := singleflightBuild(ctx, key, func(ctx context.Context) (interface{}, error) {
			return h.service.Annual(ctx, year)
		})
		return value, err
	})
	return out, err
}

func parseYear(raw string) (int, error) {
	year, err := strconv.Atoi(raw)
	if err != nil || year < 1900 || year > 9999 {
		return 0, fmt.Errorf("invalid year %q", raw)
	}
	return year, nil
}
