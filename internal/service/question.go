package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"washfinder/internal/model"
)

// QuestionInput carries everything the question writer may use for one turn
type QuestionInput struct {
	Slot           SlotType
	Stage          SlotStage
	Filter         *model.QueryFilter
	Highlights     []string
	Locale         string
	LatestUserText string
	ContextHint    string
}

// QuestionService writes the next slot-filling question. With the chat model
// disabled or failing it falls back to fixed per-slot questions, so the
// conversation never stalls.
type QuestionService struct {
	chat ChatModel
}

// NewQuestionService creates a question service. chat may be nil.
func NewQuestionService(chat ChatModel) *QuestionService {
	return &QuestionService{chat: chat}
}

var slotQuestionFallbacks = map[SlotType]string{
	SlotBudget:     "What budget do you have in mind for the washing machine?",
	SlotLoadType:   "Would you prefer a front load or a top load machine?",
	SlotCapacity:   "How much laundry capacity do you need, in kg?",
	SlotBrand:      "Do you have a preferred brand, or is any brand fine?",
	SlotDimensions: "Do you have space constraints? Width × height × depth in cm helps.",
}

var slotHints = map[SlotType]string{
	SlotBudget:     "Tap a quick chip for common budgets.",
	SlotLoadType:   "Front loaders usually spin faster; top loaders are easier to load.",
	SlotCapacity:   "7-8kg suits most households of 3-4 people.",
	SlotBrand:      "Pick a brand or just say any brand is fine.",
	SlotDimensions: "Measure the niche where the machine will go.",
}

const questionPromptTemplate = `You are a friendly washing machine shopping assistant.
Write ONE short question (max 2 sentences) asking the user about their %s.
Known so far: %s
%sMatching products right now: %s
The user's last message was: %q
Reply in locale %q. Return only the question text, no quotes, no preamble.`

// Question returns the assistant text and hint for asking about input.Slot
func (s *QuestionService) Question(ctx context.Context, input QuestionInput) model.AssistantMessage {
	fallback := model.AssistantMessage{
		Text: slotQuestionFallbacks[input.Slot],
		Hint: slotHints[input.Slot],
	}
	if s.chat == nil || !s.chat.IsEnabled() {
		return fallback
	}

	contextLine := ""
	if input.ContextHint != "" {
		contextLine = fmt.Sprintf("Conversation context: %s\n", input.ContextHint)
	}
	highlights := strings.Join(input.Highlights, "; ")
	if highlights == "" {
		highlights = "none yet"
	}

	prompt := fmt.Sprintf(questionPromptTemplate,
		input.Slot.String(),
		summarizeFilter(input.Filter),
		contextLine,
		highlights,
		input.LatestUserText,
		input.Locale,
	)

	text, err := s.chat.Complete(ctx, prompt)
	if err != nil || strings.TrimSpace(text) == "" {
		if err != nil {
			log.Printf("⚠️ Question generation failed, using canned question: %v", err)
		}
		return fallback
	}
	return model.AssistantMessage{Text: strings.TrimSpace(text), Hint: slotHints[input.Slot]}
}

const completionPromptTemplate = `You are a friendly washing machine shopping assistant.
All needed preferences are collected. Write ONE short upbeat sentence telling
the user you found matches and inviting them to look at the results.
Top matches: %s
Reply in locale %q. Return only the sentence.`

// Completion returns the message shown when the slot filling finishes
func (s *QuestionService) Completion(ctx context.Context, highlights []string, locale string) model.AssistantMessage {
	fallback := model.AssistantMessage{
		Text: "Great, I have everything I need — here are the machines that fit best.",
	}
	if s.chat == nil || !s.chat.IsEnabled() {
		return fallback
	}

	joined := strings.Join(highlights, "; ")
	if joined == "" {
		joined = "see result list"
	}
	text, err := s.chat.Complete(ctx, fmt.Sprintf(completionPromptTemplate, joined, locale))
	if err != nil || strings.TrimSpace(text) == "" {
		if err != nil {
			log.Printf("⚠️ Completion message generation failed, using canned text: %v", err)
		}
		return fallback
	}
	return model.AssistantMessage{Text: strings.TrimSpace(text)}
}

// summarizeFilter renders the filter state for prompts
func summarizeFilter(filter *model.QueryFilter) string {
	if filter == nil {
		return "nothing"
	}
	var parts []string
	if filter.Brand != nil {
		parts = append(parts, "brand "+*filter.Brand)
	} else if filter.BrandFlexible {
		parts = append(parts, "any brand")
	}
	if filter.Type != nil {
		parts = append(parts, *filter.Type+" load")
	}
	if filter.MinPrice != nil || filter.MaxPrice != nil {
		parts = append(parts, "budget "+filter.DescribeBudget())
	}
	if filter.MinCapacityKg != nil || filter.MaxCapacityKg != nil {
		parts = append(parts, "capacity "+filter.DescribeCapacity())
	}
	if filter.HasDimensionConstraints() {
		parts = append(parts, "space "+filter.DescribeDimensions())
	}
	if len(parts) == 0 {
		return "nothing"
	}
	return strings.Join(parts, ", ")
}
