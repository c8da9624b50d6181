package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"strings"

	"washfinder/internal/model"
)

// AnswerService explains a result list in terms of the user's constraints.
// Without a chat model it produces a compact deterministic narration built
// from the constraint evaluation.
type AnswerService struct {
	chat        ChatModel
	toleranceCm float64
}

// NewAnswerService creates an answer service. chat may be nil.
func NewAnswerService(chat ChatModel, toleranceCm float64) *AnswerService {
	return &AnswerService{chat: chat, toleranceCm: toleranceCm}
}

const answerPromptTemplate = `You are a washing machine shopping assistant.
The user asked: %q
Their filter as JSON: %s
Filter summary: %s

Results, best first, with how each relates to the constraints:
%s

Write a short explanation (max 4 sentences) of why these machines fit,
mentioning any trade-offs. Plain text only.`

// Explain produces the explanation text for results against userQuery and
// filter. Results are presented highest price first, matching the retrieval
// order shown to the user.
func (s *AnswerService) Explain(ctx context.Context, userQuery string, filter *model.QueryFilter, results []model.Product) string {
	if len(results) == 0 {
		return "No machines match all of these constraints. Try relaxing the budget or the dimensions."
	}

	sorted := make([]model.Product, len(results))
	copy(sorted, results)
	sort.SliceStable(sorted, func(i, j int) bool {
		pi, pj := sorted[i].Price, sorted[j].Price
		if pi == nil {
			return false
		}
		if pj == nil {
			return true
		}
		return *pi > *pj
	})

	lines := make([]string, 0, len(sorted))
	for _, p := range sorted {
		report := EvaluateProduct(filter, &p, s.toleranceCm)
		line := "- " + describeProduct(&p)
		if narration := report.Narration(); len(narration) > 0 {
			line += " (" + strings.Join(narration, "; ") + ")"
		}
		lines = append(lines, line)
	}

	if s.chat == nil || !s.chat.IsEnabled() {
		return fallbackExplanation(filter, lines)
	}

	filterJSON, err := json.Marshal(filter)
	if err != nil {
		filterJSON = []byte("{}")
	}
	prompt := fmt.Sprintf(answerPromptTemplate,
		userQuery, string(filterJSON), summarizeFilter(filter), strings.Join(lines, "\n"))

	text, err := s.chat.Complete(ctx, prompt)
	if err != nil || strings.TrimSpace(text) == "" {
		if err != nil {
			log.Printf("⚠️ Answer generation failed, using deterministic explanation: %v", err)
		}
		return fallbackExplanation(filter, lines)
	}
	return strings.TrimSpace(text)
}

func fallbackExplanation(filter *model.QueryFilter, lines []string) string {
	intro := "Here is how the matches line up"
	if summary := summarizeFilter(filter); summary != "nothing" {
		intro += " against " + summary
	}
	return intro + ":\n" + strings.Join(lines, "\n")
}

func describeProduct(p *model.Product) string {
	name := p.DisplayName()
	var extras []string
	if p.Price != nil {
		extras = append(extras, fmt.Sprintf("€%.0f", *p.Price))
	}
	if p.CapacityKg != nil {
		extras = append(extras, fmt.Sprintf("%dkg", *p.CapacityKg))
	}
	if p.Type != nil {
		extras = append(extras, *p.Type+" load")
	}
	if len(extras) == 0 {
		return name
	}
	return name + ", " + strings.Join(extras, ", ")
}
