package summary

import (
	"fmt"
	"strings"

	"github.com/fondolibro/fondolibro/internal/money"
)

// buildPrompt renders the Spanish analyst prompt. The model is asked for
// a strict JSON object so parseOutput can decode it.
func buildPrompt(in Input, currency string) string {
	var b strings.Builder

	b.WriteString("Eres un analista financiero de un fondo de ahorro y préstamo. ")
	b.WriteString("Analiza los movimientos del período y redacta un resumen en español.\n\n")
	fmt.Fprintf(&b, "Período: %s\n", in.PeriodLabel)
	fmt.Fprintf(&b, "Capital actual del fondo: %s\n\n", money.Display(in.Capital, currency))

	b.WriteString("Movimientos:\n")
	if len(in.Entries) == 0 {
		b.WriteString("(sin movimientos registrados)\n")
	}
	for _, e := range in.Entries {
		fmt.Fprintf(&b, "- %s | %s | %s | %s | %s\n",
			e.Date, e.Kind, e.Category, e.Description, e.Amount.StringFixed(2))
	}

	if in.Benchmarks != "" {
		fmt.Fprintf(&b, "\nReferencias aportadas por la administración, tenlas en cuenta al evaluar el desempeño:\n%s\n", in.Benchmarks)
	}

	b.WriteString("\nDevuelve únicamente un objeto JSON con esta forma exacta, sin texto adicional ni cercas de Markdown:\n")
	b.WriteString(`{"summary": "resumen en prosa de los ingresos, egresos y estado de los préstamos", "suggestions": ["sugerencia breve", "otra sugerencia"]}`)
	b.WriteString("\nEl resumen debe mencionar los totales de ingresos y egresos, las categorías con mayor movimiento y el estado del capital.")

	return b.String()
}
