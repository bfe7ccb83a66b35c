// Package report builds the monthly and annual consolidated views served to
// the public read path.
package report

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fondolibro/fondolibro/internal/closing"
	"github.com/fondolibro/fondolibro/internal/ledger"
	"github.com/fondolibro/fondolibro/internal/money"
	"github.com/fondolibro/fondolibro/internal/shared"
)

// CategoryRow is one category's net balance per calendar month of a year.
// Nets has twelve entries, January first.
type CategoryRow struct {
	Category string            `json:"category"`
	Nets     []decimal.Decimal `json:"nets"`
	Total    decimal.Decimal   `json:"total"`
}

// MonthBalance carries the resolved balances for one month of the annual
// view.
type MonthBalance struct {
	Month          time.Month      `json:"month"`
	InitialBalance decimal.Decimal `json:"initialBalance"`
	FinalBalance   decimal.Decimal `json:"finalBalance"`
	Closed         bool            `json:"closed"`
}

// AnnualReport is the year-over-year, category-over-month matrix.
type AnnualReport struct {
	Year          int               `json:"year"`
	Rows          []CategoryRow     `json:"rows"`
	MonthlyTotals []decimal.Decimal `json:"monthlyTotals"`
	GrandTotal    decimal.Decimal   `json:"grandTotal"`
	Balances      []MonthBalance    `json:"balances"`
	GeneratedAt   time.Time         `json:"generatedAt"`
}

// MonthlyReport is the single-month report: balances, category breakdown and
// the transaction detail behind them.
type MonthlyReport struct {
	Year         int                  `json:"year"`
	Month        time.Month           `json:"month"`
	Closed       bool                 `json:"closed"`
	Summary      closing.Summary      `json:"summary"`
	Transactions []ledger.Transaction `json:"transactions"`
}

// Service composes the resolver and aggregator across months.
type Service struct {
	txs      closing.TransactionSource
	closures closing.ClosureStore
	epoch    shared.Period
	now      func() time.Time
}

// NewService constructs a report service.
func NewService(txs closing.TransactionSource, closures closing.ClosureStore, epoch shared.Period) *Service {
	return &Service{txs: txs, closures: closures, epoch: epoch, now: time.Now}
}

// WithClock overrides the clock for deterministic tests.
func (s *Service) WithClock(clock func() time.Time) {
	if clock != nil {
		s.now = clock
	}
}

// Annual builds the consolidated matrix for a year. All twelve months run
// over one snapshot and share one memoized resolver; closed months
// contribute their frozen category totals, open months fold live
// transactions.
func (s *Service) Annual(ctx context.Context, year int) (AnnualReport, error) {
	snap, err := closing.LoadSnapshot(ctx, s.txs, s.closures)
	if err != nil {
		return AnnualReport{}, err
	}
	agg := closing.NewAggregator(snap, s.epoch)

	nets := make(map[string][]decimal.Decimal, len(ledger.Categories))
	for _, cat := range ledger.Categories {
		cells := make([]decimal.Decimal, 12)
		for i := range cells {
			cells[i] = decimal.Zero
		}
		nets[cat] = cells
	}

	balances := make([]MonthBalance, 0, 12)
	for m := time.January; m <= time.December; m++ {
		p := shared.Period{Year: year, Month: m}
		summary, err := agg.Month(p)
		if err != nil {
			return AnnualReport{}, err
		}
		_, closed := snap.ClosedClosure(p)
		balances = append(balances, MonthBalance{
			Month:          m,
			InitialBalance: summary.InitialBalance,
			FinalBalance:   summary.FinalBalance,
			Closed:         closed,
		})
		for cat, totals := range summary.CategoryTotals {
			cells, ok := nets[cat]
			if !ok {
				continue
			}
			cells[int(m)-1] = money.Sub(totals.Income, totals.Expense)
		}
	}

	report := AnnualReport{
		Year:          year,
		Rows:          make([]CategoryRow, 0, len(ledger.Categories)),
		MonthlyTotals: make([]decimal.Decimal, 12),
		GrandTotal:    decimal.Zero,
		Balances:      balances,
		GeneratedAt:   s.now().UTC(),
	}
	for i := range report.MonthlyTotals {
		report.MonthlyTotals[i] = decimal.Zero
	}
	for _, cat := range ledger.Categories {
		row := CategoryRow{Category: cat, Nets: nets[cat], Total: decimal.Zero}
		for i, net := range row.Nets {
			row.Total = money.Add(row.Total, net)
			report.MonthlyTotals[i] = money.Add(report.MonthlyTotals[i], net)
		}
		report.GrandTotal = money.Add(report.GrandTotal, row.Total)
		report.Rows = append(report.Rows, row)
	}
	return report, nil
}

// Monthly builds the single-month report with transaction detail.
func (s *Service) Monthly(ctx context.Context, p shared.Period) (MonthlyReport, error) {
	snap, err := closing.LoadSnapshot(ctx, s.txs, s.closures)
	if err != nil {
		return MonthlyReport{}, err
	}
	agg := closing.NewAggregator(snap, s.epoch)
	summary, err := agg.Month(p)
	if err != nil {
		return MonthlyReport{}, err
	}
	_, closed := snap.ClosedClosure(p)
	return MonthlyReport{
		Year:         p.Year,
		Month:        p.Month,
		Closed:       closed,
		Summary:      summary,
		Transactions: snap.Transactions(p),
	}, nil
}
