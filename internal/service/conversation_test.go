package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"washfinder/internal/config"
	"washfinder/internal/model"
)

type stubBrandLister struct {
	brands []string
}

func (s *stubBrandLister) Brands(context.Context) []string { return s.brands }

type stubFinder struct {
	previewProducts []model.Product
	finalProducts   []model.Product
	previewCalls    int
	finalCalls      int
	lastQuery       string
}

func (s *stubFinder) Preview(_ context.Context, _ *model.QueryFilter, _ int) ([]model.Product, error) {
	s.previewCalls++
	return s.previewProducts, nil
}

func (s *stubFinder) FinalResults(_ context.Context, query string, _ *model.QueryFilter, _ int) ([]model.Product, error) {
	s.finalCalls++
	s.lastQuery = query
	return s.finalProducts, nil
}

func testConversationService(finder *stubFinder) *ConversationService {
	brands := &stubBrandLister{brands: []string{"AEG", "Bosch", "LG", "Miele", "Samsung"}}
	searchCfg := config.SearchConfig{
		PreviewLimit:         3,
		FinalLimit:           5,
		DimensionToleranceCm: 1.0,
		CandidateFetchFactor: 4,
		CandidateFetchMin:    40,
	}
	convCfg := config.ConversationConfig{AskDimensionsExperiment: true}
	return NewConversationService(
		NewExtractor(nil, brands),
		finder,
		brands,
		NewQuestionService(nil),
		NewAnswerService(nil, searchCfg.DimensionToleranceCm),
		nil,
		searchCfg,
		convCfg,
	)
}

func TestStartConversation(t *testing.T) {
	svc := testConversationService(&stubFinder{})
	resp := svc.StartConversation(context.Background(), model.ConversationStartRequest{})

	if resp.SessionID == "" {
		t.Fatal("SessionID is empty")
	}
	if resp.Status != "collecting" {
		t.Errorf("Status = %q, want collecting", resp.Status)
	}
	if !strings.Contains(resp.Assistant.Text, "washing machine") {
		t.Errorf("Assistant.Text = %q, want a greeting mentioning washing machines", resp.Assistant.Text)
	}
	if len(resp.Chips) != 3 {
		t.Errorf("Chips = %v, want the three budget chips", resp.Chips)
	}
	if len(resp.Slots) != 5 {
		t.Errorf("got %d slot snapshots, want 5", len(resp.Slots))
	}
}

func TestApplyUserReplyUnknownSession(t *testing.T) {
	svc := testConversationService(&stubFinder{})
	_, err := svc.ApplyUserReply(context.Background(), "no-such-id", model.UserReplyRequest{Message: "hi"})
	if !errors.Is(err, ErrUnknownSession) {
		t.Errorf("err = %v, want ErrUnknownSession", err)
	}
}

func TestApplyUserReplyEmptyMessage(t *testing.T) {
	svc := testConversationService(&stubFinder{})
	start := svc.StartConversation(context.Background(), model.ConversationStartRequest{})

	resp, err := svc.ApplyUserReply(context.Background(), start.SessionID, model.UserReplyRequest{})
	if err != nil {
		t.Fatalf("ApplyUserReply() error = %v", err)
	}
	if !strings.Contains(resp.Assistant.Text, "rephrase") {
		t.Errorf("Assistant.Text = %q, want a rephrase prompt", resp.Assistant.Text)
	}
	if resp.Metrics["turnCount"] != 0 {
		t.Errorf("turnCount = %v, want 0 for an empty turn", resp.Metrics["turnCount"])
	}
}

func TestConversationTwoTurnFlow(t *testing.T) {
	finder := &stubFinder{
		previewProducts: []model.Product{*testProduct()},
		finalProducts:   []model.Product{*testProduct()},
	}
	svc := testConversationService(finder)
	start := svc.StartConversation(context.Background(), model.ConversationStartRequest{})

	// Turn 1: budget and type in one message
	resp, err := svc.ApplyUserReply(context.Background(), start.SessionID,
		model.UserReplyRequest{Message: "I want a front loader under 600"})
	if err != nil {
		t.Fatalf("turn 1 error = %v", err)
	}
	if resp.Status != "collecting" {
		t.Fatalf("turn 1 Status = %q, want collecting", resp.Status)
	}
	stages := map[string]string{}
	for _, slot := range resp.Slots {
		stages[slot.Slot] = slot.Stage
	}
	if stages["budget"] != "refined" {
		t.Errorf("budget stage = %q, want refined", stages["budget"])
	}
	if stages["type"] != "refined" {
		t.Errorf("type stage = %q, want refined", stages["type"])
	}
	if stages["capacity"] != "missing" {
		t.Errorf("capacity stage = %q, want missing", stages["capacity"])
	}
	// The next question must be about capacity
	if !strings.Contains(resp.Assistant.Text, "capacity") {
		t.Errorf("Assistant.Text = %q, want the capacity question", resp.Assistant.Text)
	}
	if len(resp.Chips) != 3 || resp.Chips[0] != "7kg" {
		t.Errorf("Chips = %v, want the capacity chips", resp.Chips)
	}
	if resp.Preview == nil || len(resp.Preview.Items) != 1 {
		t.Fatalf("Preview = %+v, want one item", resp.Preview)
	}
	if resp.Preview.Headline != "Preview with current filters" {
		t.Errorf("Preview.Headline = %q", resp.Preview.Headline)
	}

	// Turn 2: capacity completes the slot filling
	resp, err = svc.ApplyUserReply(context.Background(), start.SessionID,
		model.UserReplyRequest{Message: "8kg please"})
	if err != nil {
		t.Fatalf("turn 2 error = %v", err)
	}
	if resp.Status != "completed" {
		t.Fatalf("turn 2 Status = %q, want completed", resp.Status)
	}
	if resp.Result == nil || len(resp.Result.Items) != 1 {
		t.Fatalf("Result = %+v, want one final item", resp.Result)
	}
	if resp.Result.Explanation == "" {
		t.Error("Result.Explanation is empty")
	}
	if finder.finalCalls != 1 {
		t.Errorf("finalCalls = %d, want 1", finder.finalCalls)
	}
	if !strings.Contains(finder.lastQuery, "under 600") {
		t.Errorf("final query = %q, want the joined utterances", finder.lastQuery)
	}
	if resp.Metrics["turnCount"] != 2 {
		t.Errorf("turnCount = %v, want 2", resp.Metrics["turnCount"])
	}
}

func TestConversationChipReply(t *testing.T) {
	finder := &stubFinder{previewProducts: []model.Product{*testProduct()}}
	svc := testConversationService(finder)
	start := svc.StartConversation(context.Background(), model.ConversationStartRequest{})

	resp, err := svc.ApplyUserReply(context.Background(), start.SessionID,
		model.UserReplyRequest{Chip: "≤ 600€"})
	if err != nil {
		t.Fatalf("ApplyUserReply() error = %v", err)
	}
	for _, slot := range resp.Slots {
		if slot.Slot == "budget" {
			if slot.Stage != "refined" {
				t.Errorf("budget stage = %q, want refined from chip", slot.Stage)
			}
			if slot.Value != "≤ €600" {
				t.Errorf("budget value = %q, want ≤ €600", slot.Value)
			}
		}
	}
}

func TestConversationPurchaseIntent(t *testing.T) {
	finder := &stubFinder{
		previewProducts: []model.Product{*testProduct()},
		finalProducts:   []model.Product{*testProduct()},
	}
	svc := testConversationService(finder)
	start := svc.StartConversation(context.Background(), model.ConversationStartRequest{})

	resp, err := svc.ApplyUserReply(context.Background(), start.SessionID,
		model.UserReplyRequest{Message: `I'll take the "Bosch Serie 6" under 600`})
	if err != nil {
		t.Fatalf("ApplyUserReply() error = %v", err)
	}
	if resp.Status != "completed" {
		t.Fatalf("Status = %q, want completed on purchase intent", resp.Status)
	}
	if !strings.Contains(resp.Assistant.Text, "Bosch Serie 6") {
		t.Errorf("Assistant.Text = %q, want the selection named", resp.Assistant.Text)
	}
	if resp.Result == nil {
		t.Error("Result is nil, want the final shortlist")
	}
}

func TestConversationBrandRelaxation(t *testing.T) {
	finder := &stubFinder{previewProducts: []model.Product{*testProduct()}}
	svc := testConversationService(finder)
	start := svc.StartConversation(context.Background(), model.ConversationStartRequest{})

	if _, err := svc.ApplyUserReply(context.Background(), start.SessionID,
		model.UserReplyRequest{Message: "a Bosch would be nice"}); err != nil {
		t.Fatalf("turn 1 error = %v", err)
	}
	resp, err := svc.ApplyUserReply(context.Background(), start.SessionID,
		model.UserReplyRequest{Message: "actually any brand is fine"})
	if err != nil {
		t.Fatalf("turn 2 error = %v", err)
	}
	for _, slot := range resp.Slots {
		if slot.Slot == "brand" {
			if slot.Stage != "refined" {
				t.Errorf("brand stage = %q, want refined after relaxation", slot.Stage)
			}
			if slot.Value != "Any brand" {
				t.Errorf("brand value = %q, want Any brand", slot.Value)
			}
		}
	}
}

func TestRecordEvent(t *testing.T) {
	svc := testConversationService(&stubFinder{})
	start := svc.StartConversation(context.Background(), model.ConversationStartRequest{})

	resp, err := svc.RecordEvent(context.Background(), start.SessionID,
		model.ConversationEventRequest{Type: "add_to_cart"})
	if err != nil {
		t.Fatalf("RecordEvent() error = %v", err)
	}
	if resp.Metrics["addToCartClicks"] != 1 {
		t.Errorf("addToCartClicks = %v, want 1", resp.Metrics["addToCartClicks"])
	}
	if resp.Assistant.Text != "Noted ✅" {
		t.Errorf("Assistant.Text = %q, want acknowledgement", resp.Assistant.Text)
	}

	if _, err := svc.RecordEvent(context.Background(), "missing", model.ConversationEventRequest{Type: "add_to_cart"}); !errors.Is(err, ErrUnknownSession) {
		t.Errorf("err = %v, want ErrUnknownSession", err)
	}
}

func TestPurchaseIntentDetection(t *testing.T) {
	products := []model.Product{*testProduct()}
	tests := []struct {
		name string
		text string
		want bool
	}{
		{name: "Take phrase", text: "i'll take that one", want: true},
		{name: "Chinese purchase", text: "就这个吧", want: true},
		{name: "Affirmation with previewed model", text: "the bosch serie 6 is fine", want: true},
		{name: "Affirmation about a constraint", text: "a budget of 500 is fine", want: false},
		{name: "Bare affirmation", text: "sounds good", want: false},
		{name: "Plain constraint", text: "under 600 please", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lower := strings.ToLower(tt.text)
			selection := extractSelection(tt.text)
			if selection == "" {
				selection = matchKnownSelection(lower, nil, products)
			}
			if got := isPurchaseIntent(lower, selection); got != tt.want {
				t.Errorf("isPurchaseIntent(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestExtractSelection(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{name: "Quoted", text: `I'll take the "Bosch Serie 6"`, want: "Bosch Serie 6"},
		{name: "Unquoted name not guessed", text: "The LG F4V5 looks good", want: ""},
		{name: "No selection", text: "under 600", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractSelection(tt.text); got != tt.want {
				t.Errorf("extractSelection(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestMatchKnownSelection(t *testing.T) {
	lg := "LG"
	f4v5 := "F4V5"
	products := []model.Product{
		*testProduct(),
		{ID: 2, Brand: &lg, Model: &f4v5},
	}
	miele := "Miele"

	tests := []struct {
		name        string
		text        string
		filterBrand *string
		want        string
	}{
		{name: "Previewed model resolves to full name", text: "the f4v5 looks good", want: "LG F4V5"},
		{name: "Previewed brand", text: "the lg works for me", want: "LG"},
		{name: "Filter brand", text: "miele is fine", filterBrand: &miele, want: "Miele"},
		{name: "Nothing known mentioned", text: "under 600 is fine", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := matchKnownSelection(tt.text, tt.filterBrand, products); got != tt.want {
				t.Errorf("matchKnownSelection(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestConstraintAffirmationKeepsCollecting(t *testing.T) {
	finder := &stubFinder{
		previewProducts: []model.Product{*testProduct()},
		finalProducts:   []model.Product{*testProduct()},
	}
	svc := testConversationService(finder)
	start := svc.StartConversation(context.Background(), model.ConversationStartRequest{})

	resp, err := svc.ApplyUserReply(context.Background(), start.SessionID,
		model.UserReplyRequest{Message: "a budget of 500 is fine"})
	if err != nil {
		t.Fatalf("ApplyUserReply() error = %v", err)
	}
	if resp.Status != "collecting" {
		t.Errorf("Status = %q, want collecting after a constraint affirmation", resp.Status)
	}
	if resp.Result != nil {
		t.Error("Result set, want nil while slots are still open")
	}
	if finder.finalCalls != 0 {
		t.Errorf("finalCalls = %d, want 0", finder.finalCalls)
	}
}

func TestPurchaseWithEmptyShortlist(t *testing.T) {
	finder := &stubFinder{previewProducts: []model.Product{*testProduct()}}
	svc := testConversationService(finder)
	start := svc.StartConversation(context.Background(), model.ConversationStartRequest{})

	resp, err := svc.ApplyUserReply(context.Background(), start.SessionID,
		model.UserReplyRequest{Message: `I'll take the "Bosch Serie 6"`})
	if err != nil {
		t.Fatalf("ApplyUserReply() error = %v", err)
	}
	if resp.Status != "completed" {
		t.Fatalf("Status = %q, want completed", resp.Status)
	}
	if resp.Result != nil {
		t.Errorf("Result = %+v, want nil when nothing matched", resp.Result)
	}
}
