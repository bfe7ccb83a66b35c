package report

import (
	"encoding/csv"
	"fmt"
	"io"
)

var monthLabels = []string{"Ene", "Feb", "Mar", "Abr", "May", "Jun", "Jul", "Ago", "Sep", "Oct", "Nov", "Dic"}

// WriteAnnualCSV renders the consolidated matrix as CSV: one row per
// category, a closing monthly totals row, and a balances block.
func WriteAnnualCSV(w io.Writer, r AnnualReport) error {
	out := csv.NewWriter(w)
	out.UseCRLF = true

	header := append([]string{"Categoría"}, monthLabels...)
	header = append(header, "Total")
	if err := out.Write(header); err != nil {
		return err
	}

	for _, row := range r.Rows {
		record := make([]string, 0, 14)
		record = append(record, row.Category)
		for _, net := range row.Nets {
			record = append(record, net.StringFixed(2))
		}
		record = append(record, row.Total.StringFixed(2))
		if err := out.Write(record); err != nil {
			return err
		}
	}

	totals := make([]string, 0, 14)
	totals = append(totals, "Total Mensual")
	for _, t := range r.MonthlyTotals {
		totals = append(totals, t.StringFixed(2))
	}
	totals = append(totals, r.GrandTotal.StringFixed(2))
	if err := out.Write(totals); err != nil {
		return err
	}

	if err := out.Write([]string{}); err != nil {
		return err
	}
	if err := out.Write([]string{"Mes", "Capital Inicial", "Capital Final", "Estado"}); err != nil {
		return err
	}
	for _, b := range r.Balances {
		status := "abierto"
		if b.Closed {
			status = "cerrado"
		}
		if err := out.Write([]string{
			fmt.Sprintf("%s %d", monthLabels[int(b.Month)-1], r.Year),
			b.InitialBalance.StringFixed(2),
			b.FinalBalance.StringFixed(2),
			status,
		}); err != nil {
			return err
		}
	}

	out.Flush()
	return out.Error()
}
