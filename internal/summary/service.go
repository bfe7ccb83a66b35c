// Package summary generates a Spanish-language narrative of the fund's
// monthly movements using a Gemini model.
package summary

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"
	"google.golang.org/genai"
)

// Entry is a single movement fed to the model.
type Entry struct {
	Date        string          `json:"date"`
	Kind        string          `json:"kind"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
}

// Input carries everything the prompt needs. Benchmarks is optional
// free text the administrator supplies as context for the analysis.
type Input struct {
	PeriodLabel string
	Capital     decimal.Decimal
	Entries     []Entry
	Benchmarks  string
}

// Output is the structured result parsed from the model response.
type Output struct {
	Summary     string   `json:"summary"`
	Suggestions []string `json:"suggestions"`
}

// Service talks to the generative model.
type Service struct {
	model    string
	currency string
	logger   *slog.Logger
}

// NewService constructs a summary service for the given model name. The
// currency code shapes how amounts are rendered in the prompt.
func NewService(model, currencyCode string, logger *slog.Logger) *Service {
	return &Service{model: model, currency: currencyCode, logger: logger}
}

// Generate builds the prompt, calls the model and parses the JSON reply.
func (s *Service) Generate(ctx context.Context, in Input) (Output, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return Output{}, fmt.Errorf("summary: create genai client: %w", err)
	}

	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: buildPrompt(in, s.currency)},
			},
		},
	}

	resp, err := client.Models.GenerateContent(ctx, s.model, contents, nil)
	if err != nil {
		return Output{}, fmt.Errorf("summary: generate content: %w", err)
	}

	raw := resp.Text()
	if raw == "" {
		return Output{}, fmt.Errorf("summary: empty response from model")
	}

	out, err := parseOutput(raw)
	if err != nil {
		s.logger.Warn("summary response not parseable", slog.String("raw", raw))
		return Output{}, err
	}
	return out, nil
}

func parseOutput(raw string) (Output, error) {
	var out Output
	if err := json.Unmarshal([]byte(cleanModelJSON(raw)), &out); err != nil {
		return Output{}, fmt.Errorf("summary: unmarshal model reply: %w", err)
	}
	if out.Summary == "" {
		return Output{}, fmt.Errorf("summary: model reply missing summary field")
	}
	return out, nil
}

// cleanModelJSON strips Markdown fences and surrounding prose when the
// model ignores the output-format instruction.
func cleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		} else {
			return s
		}
		s = strings.TrimSpace(s)
	}
	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}
	s = strings.TrimSpace(s)

	if start := strings.Index(s, "{"); start != -1 {
		if end := strings.LastIndex(s, "}"); end != -1 && end > start {
			s = strings.TrimSpace(s[start : end+1])
		}
	}
	return s
}
