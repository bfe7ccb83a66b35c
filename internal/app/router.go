package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/fondolibro/fondolibro/internal/auth"
	closinghttp "github.com/fondolibro/fondolibro/internal/closing/http"
	ledgerhttp "github.com/fondolibro/fondolibro/internal/ledger/http"
	profilehttp "github.com/fondolibro/fondolibro/internal/profile/http"
	reporthttp "github.com/fondolibro/fondolibro/internal/report/http"
	"github.com/fondolibro/fondolibro/internal/shared"
	summaryhttp "github.com/fondolibro/fondolibro/internal/summary/http"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	SessionManager *shared.SessionManager
	AuthHandler    *auth.Handler
	LedgerHandler  *ledgerhttp.Handler
	ClosingHandler *closinghttp.Handler
	ReportHandler  *reporthttp.Handler
	ProfileHandler *profilehttp.Handler
	SummaryHandler *summaryhttp.Handler
}

// NewRouter constructs the chi.Router with application defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	params.AuthHandler.MountRoutes(r)
	params.LedgerHandler.MountRoutes(r)
	params.ClosingHandler.MountRoutes(r)
	params.ReportHandler.MountRoutes(r)
	params.ProfileHandler.MountRoutes(r)
	if params.SummaryHandler != nil {
		params.SummaryHandler.MountRoutes(r)
	}

	return r
}
