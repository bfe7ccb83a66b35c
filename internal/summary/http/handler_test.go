package summaryhttp

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/fondolibro/fondolibro/internal/closing"
	"github.com/fondolibro/fondolibro/internal/ledger"
	"github.com/fondolibro/fondolibro/internal/shared"
	"github.com/fondolibro/fondolibro/internal/summary"
)

type stubGenerator struct {
	inputs []summary.Input
	err    error
}

func (s *stubGenerator) Generate(ctx context.Context, in summary.Input) (summary.Output, error) {
	s.inputs = append(s.inputs, in)
	if s.err != nil {
		return summary.Output{}, s.err
	}
	return summary.Output{Summary: "El fondo se mantiene estable.", Suggestions: []string{"Cobrar cuotas"}}, nil
}

type stubTxSource struct{ txs []ledger.Transaction }

func (s *stubTxSource) List(ctx context.Context) ([]ledger.Transaction, error) {
	return s.txs, nil
}

type stubBalanceSource struct{ final decimal.Decimal }

func (s *stubBalanceSource) Aggregate(ctx context.Context, p shared.Period) (closing.Summary, error) {
	return closing.Summary{FinalBalance: s.final}, nil
}

func allowAll(next http.Handler) http.Handler { return next }

func newTestRouter(g *stubGenerator) chi.Router {
	txs := &stubTxSource{txs: []ledger.Transaction{{
		ID:          "t1",
		Kind:        ledger.KindIncome,
		Amount:      decimal.RequireFromString("300.00"),
		Category:    "Intereses Ganados",
		Description: "intereses de marzo",
		Date:        time.Date(2024, 3, 12, 0, 0, 0, 0, time.UTC),
	}}}
	balances := &stubBalanceSource{final: decimal.RequireFromString("1800.00")}
	h := NewHandler(slog.Default(), g, txs, balances, allowAll)
	r := chi.NewRouter()
	h.MountRoutes(r)
	return r
}

func TestGenerateForwardsBenchmarks(t *testing.T) {
	g := &stubGenerator{}
	router := newTestRouter(g)

	body := strings.NewReader(`{"benchmarks": "Tasa de referencia del sector: 12% anual."}`)
	req := httptest.NewRequest(http.MethodPost, "/summary/2024/3", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if len(g.inputs) != 1 {
		t.Fatalf("generator calls = %d", len(g.inputs))
	}
	in := g.inputs[0]
	if in.Benchmarks != "Tasa de referencia del sector: 12% anual." {
		t.Errorf("benchmarks = %q", in.Benchmarks)
	}
	if in.PeriodLabel != "2024-03" || len(in.Entries) != 1 {
		t.Errorf("input = %+v", in)
	}
	if !in.Capital.Equal(decimal.RequireFromString("1800.00")) {
		t.Errorf("capital = %s", in.Capital)
	}
}

func TestGenerateWithoutBodySucceeds(t *testing.T) {
	g := &stubGenerator{}
	router := newTestRouter(g)

	req := httptest.NewRequest(http.MethodPost, "/summary/2024/3", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if len(g.inputs) != 1 || g.inputs[0].Benchmarks != "" {
		t.Errorf("inputs = %+v", g.inputs)
	}
}

func TestGenerateRejectsMalformedBody(t *testing.T) {
	g := &stubGenerator{}
	router := newTestRouter(g)

	req := httptest.NewRequest(http.MethodPost, "/summary/2024/3", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if len(g.inputs) != 0 {
		t.Errorf("generator called for malformed body")
	}
}

func TestGenerateModelFailureIs502(t *testing.T) {
	g := &stubGenerator{err: errors.New("model offline")}
	router := newTestRouter(g)

	req := httptest.NewRequest(http.MethodPost, "/summary/2024/3", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rec.Code)
	}
}
