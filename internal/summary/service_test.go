package summary

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/fondolibro/fondolibro/internal/money"
)

func TestParseOutputPlainJSON(t *testing.T) {
	raw := `{"summary": "El fondo creció.", "suggestions": ["Cobrar cuotas"]}`
	out, err := parseOutput(raw)
	if err != nil {
		t.Fatalf("parseOutput: %v", err)
	}
	if out.Summary != "El fondo creció." {
		t.Errorf("summary = %q", out.Summary)
	}
	if len(out.Suggestions) != 1 || out.Suggestions[0] != "Cobrar cuotas" {
		t.Errorf("suggestions = %v", out.Suggestions)
	}
}

func TestParseOutputStripsMarkdownFences(t *testing.T) {
	raw := "```json\n{\"summary\": \"Resumen.\", \"suggestions\": []}\n```"
	out, err := parseOutput(raw)
	if err != nil {
		t.Fatalf("parseOutput: %v", err)
	}
	if out.Summary != "Resumen." {
		t.Errorf("summary = %q", out.Summary)
	}
}

func TestParseOutputIgnoresSurroundingProse(t *testing.T) {
	raw := "Claro, aquí está el resultado:\n{\"summary\": \"Resumen.\", \"suggestions\": []}\nEspero que sirva."
	out, err := parseOutput(raw)
	if err != nil {
		t.Fatalf("parseOutput: %v", err)
	}
	if out.Summary != "Resumen." {
		t.Errorf("summary = %q", out.Summary)
	}
}

func TestParseOutputRejectsMissingSummary(t *testing.T) {
	if _, err := parseOutput(`{"suggestions": ["algo"]}`); err == nil {
		t.Fatal("expected error for missing summary field")
	}
	if _, err := parseOutput("no es json"); err == nil {
		t.Fatal("expected error for non-JSON reply")
	}
}

func TestBuildPromptIncludesEntriesAndCapital(t *testing.T) {
	in := Input{
		PeriodLabel: "2024-03",
		Capital:     decimal.RequireFromString("1500.00"),
		Entries: []Entry{{
			Date:        "2024-03-10",
			Kind:        "expense",
			Category:    "Préstamos Socios",
			Description: "Préstamo a socio",
			Amount:      decimal.RequireFromString("400.00"),
		}},
	}
	prompt := buildPrompt(in, "VES")

	capital := money.Display(in.Capital, "VES")
	for _, want := range []string{"2024-03", capital, "Préstamos Socios", "400.00", `"summary"`} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestBuildPromptEmptyMonth(t *testing.T) {
	prompt := buildPrompt(Input{PeriodLabel: "2024-04", Capital: decimal.Zero}, "VES")
	if !strings.Contains(prompt, "sin movimientos") {
		t.Error("prompt should note the empty month")
	}
}

func TestBuildPromptIncludesBenchmarks(t *testing.T) {
	in := Input{
		PeriodLabel: "2024-05",
		Capital:     decimal.Zero,
		Benchmarks:  "La tasa de interés de referencia del sector es 12% anual.",
	}
	prompt := buildPrompt(in, "VES")
	if !strings.Contains(prompt, "tasa de interés de referencia") {
		t.Error("prompt should carry the supplied benchmarks")
	}
	if strings.Contains(buildPrompt(Input{PeriodLabel: "2024-05"}, "VES"), "Referencias aportadas") {
		t.Error("prompt should omit the benchmarks section when none are supplied")
	}
}
