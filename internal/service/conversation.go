package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"washfinder/internal/config"
	"washfinder/internal/model"
)

// ErrUnknownSession is returned for session IDs that do not exist
var ErrUnknownSession = errors.New("unknown session")

// FilterExtractor turns user text into a structured filter
type FilterExtractor interface {
	Extract(ctx context.Context, text string) *model.QueryFilter
}

// ProductFinder retrieves products for previews and final results
type ProductFinder interface {
	Preview(ctx context.Context, filter *model.QueryFilter, limit int) ([]model.Product, error)
	FinalResults(ctx context.Context, query string, filter *model.QueryFilter, limit int) ([]model.Product, error)
}

// QuestionWriter produces the assistant's slot questions and closing message
type QuestionWriter interface {
	Question(ctx context.Context, input QuestionInput) model.AssistantMessage
	Completion(ctx context.Context, highlights []string, locale string) model.AssistantMessage
}

// AnswerWriter explains a final result list
type AnswerWriter interface {
	Explain(ctx context.Context, userQuery string, filter *model.QueryFilter, results []model.Product) string
}

// TurnLogger persists per-turn records for offline analysis. Optional;
// failures must never break a turn.
type TurnLogger interface {
	LogTurn(ctx context.Context, sessionID, userText string, filter *model.QueryFilter, status string, resultCount int, responseTimeMs int) error
}

// ConversationService drives the multi-turn slot-filling dialogue
type ConversationService struct {
	extractor FilterExtractor
	finder    ProductFinder
	brands    BrandLister
	questions QuestionWriter
	answers   AnswerWriter
	logger    TurnLogger

	searchCfg config.SearchConfig
	convCfg   config.ConversationConfig

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewConversationService wires the conversation orchestrator. logger may
// be nil.
func NewConversationService(
	extractor FilterExtractor,
	finder ProductFinder,
	brands BrandLister,
	questions QuestionWriter,
	answers AnswerWriter,
	logger TurnLogger,
	searchCfg config.SearchConfig,
	convCfg config.ConversationConfig,
) *ConversationService {
	return &ConversationService{
		extractor: extractor,
		finder:    finder,
		brands:    brands,
		questions: questions,
		answers:   answers,
		logger:    logger,
		searchCfg: searchCfg,
		convCfg:   convCfg,
		sessions:  make(map[string]*Session),
	}
}

// StartConversation creates a session and returns the opening question
func (s *ConversationService) StartConversation(ctx context.Context, req model.ConversationStartRequest) *model.ConversationTurnResponse {
	session := NewSession(req.Locale, s.convCfg)
	s.updateSlotStages(session)

	s.mu.Lock()
	s.sessions[session.ID] = session
	s.mu.Unlock()

	question := s.questions.Question(ctx, QuestionInput{
		Slot:   SlotBudget,
		Stage:  StageMissing,
		Filter: session.Filter,
		Locale: session.Locale,
	})
	question.Text = "Hi! I'll help you find the right washing machine. " + question.Text

	return &model.ConversationTurnResponse{
		SessionID: session.ID,
		Status:    "collecting",
		Assistant: question,
		Chips:     s.chipsFor(ctx, SlotBudget),
		Slots:     buildSlotSnapshots(session),
		Metrics:   session.Metrics.Snapshot(),
	}
}

// ApplyUserReply processes one user turn and advances the session
func (s *ConversationService) ApplyUserReply(ctx context.Context, sessionID string, req model.UserReplyRequest) (*model.ConversationTurnResponse, error) {
	session, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	session.mu.Lock()
	defer session.mu.Unlock()

	start := time.Now()

	text := strings.TrimSpace(req.Message)
	if text == "" {
		text = strings.TrimSpace(req.Chip)
	}
	if text == "" {
		return &model.ConversationTurnResponse{
			SessionID: session.ID,
			Status:    statusOf(session),
			Assistant: model.AssistantMessage{Text: "I did not catch that — could you rephrase?"},
			Slots:     buildSlotSnapshots(session),
			Metrics:   session.Metrics.Snapshot(),
		}, nil
	}

	session.Metrics.IncrementTurn()
	session.Utterances = append(session.Utterances, text)
	if session.Locale == "auto" {
		session.Locale = detectLocale(text)
	}

	previousBrand := session.Filter.Brand
	extracted := s.extractor.Extract(ctx, strings.Join(session.Utterances, "\n"))
	session.Filter = mergeFilters(session.Filter, extracted)
	s.updateSlotStages(session)

	contextHint := ""
	if previousBrand != nil && session.Filter.Brand == nil {
		contextHint = "brand_relaxed:" + *previousBrand
	}

	var preview *model.PreviewBlock
	var highlights []string
	var previewProducts []model.Product
	if session.Filter.HasAnyValue() {
		products, err := s.finder.Preview(ctx, session.Filter, s.searchCfg.PreviewLimit)
		if err != nil {
			log.Printf("⚠️ Preview retrieval failed: %v", err)
		} else {
			session.Metrics.PreviewShown(len(products))
			preview = s.buildPreview(session.Filter, products)
			previewProducts = products
			for i := range products {
				highlights = append(highlights, describeProduct(&products[i]))
			}
		}
	}

	resp := &model.ConversationTurnResponse{
		SessionID: session.ID,
		Preview:   preview,
	}

	lower := strings.ToLower(text)
	selection := extractSelection(text)
	if selection == "" {
		selection = matchKnownSelection(lower, session.Filter.Brand, previewProducts)
	}

	switch {
	case isPurchaseIntent(lower, selection):
		result := s.finalize(ctx, session)
		session.Completed = true
		resp.Assistant = model.AssistantMessage{Text: buildPurchaseClosing(selection)}
		// An empty shortlist carries no information worth a result block
		if len(result.Items) > 0 {
			resp.Result = result
		}

	case s.shouldFinalize(session):
		result := s.finalize(ctx, session)
		session.Completed = true
		resp.Assistant = s.questions.Completion(ctx, highlights, session.Locale)
		resp.Result = result

	default:
		nextSlot := s.determineNextSlot(ctx, session)
		resp.Assistant = s.questions.Question(ctx, QuestionInput{
			Slot:           nextSlot,
			Stage:          session.SlotStages[nextSlot],
			Filter:         session.Filter,
			Highlights:     highlights,
			Locale:         session.Locale,
			LatestUserText: text,
			ContextHint:    contextHint,
		})
		resp.Chips = s.chipsFor(ctx, nextSlot)
	}

	resp.Status = statusOf(session)
	resp.Slots = buildSlotSnapshots(session)
	resp.Metrics = session.Metrics.Snapshot()

	s.logTurn(ctx, session, text, resp, time.Since(start))

	return resp, nil
}

// RecordEvent registers a UI-side event such as an add-to-cart click
func (s *ConversationService) RecordEvent(ctx context.Context, sessionID string, req model.ConversationEventRequest) (*model.ConversationTurnResponse, error) {
	session, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	session.mu.Lock()
	defer session.mu.Unlock()

	text := "Okay"
	if req.Type == "add_to_cart" {
		session.Metrics.AddToCartClicked()
		text = "Noted ✅"
	}

	return &model.ConversationTurnResponse{
		SessionID: session.ID,
		Status:    statusOf(session),
		Assistant: model.AssistantMessage{Text: text},
		Slots:     buildSlotSnapshots(session),
		Metrics:   session.Metrics.Snapshot(),
	}, nil
}

func (s *ConversationService) session(id string) (*Session, error) {
	s.mu.RLock()
	session, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSession, id)
	}
	return session, nil
}

func statusOf(session *Session) string {
	if session.Completed {
		return "completed"
	}
	return "collecting"
}

func (s *ConversationService) finalize(ctx context.Context, session *Session) *model.ResultBlock {
	query := strings.Join(session.Utterances, ". ")
	products, err := s.finder.FinalResults(ctx, query, session.Filter, s.searchCfg.FinalLimit)
	if err != nil {
		log.Printf("⚠️ Final retrieval failed: %v", err)
		products = nil
	}
	session.Metrics.FinalRetrieval(len(products))

	explanation := s.answers.Explain(ctx, query, session.Filter, products)
	items := make([]model.PreviewItem, 0, len(products))
	for i := range products {
		items = append(items, s.buildPreviewItem(session.Filter, &products[i]))
	}
	return &model.ResultBlock{Explanation: explanation, Items: items}
}

func (s *ConversationService) buildPreview(filter *model.QueryFilter, products []model.Product) *model.PreviewBlock {
	items := make([]model.PreviewItem, 0, len(products))
	for i := range products {
		items = append(items, s.buildPreviewItem(filter, &products[i]))
	}
	return &model.PreviewBlock{Headline: "Preview with current filters", Items: items}
}

func (s *ConversationService) buildPreviewItem(filter *model.QueryFilter, p *model.Product) model.PreviewItem {
	report := EvaluateProduct(filter, p, s.searchCfg.DimensionToleranceCm)
	item := model.PreviewItem{
		ID:         p.ID,
		Price:      p.Price,
		CapacityKg: p.CapacityKg,
		Badges:     report.Badges(),
	}
	if p.Brand != nil {
		item.Brand = *p.Brand
	}
	if p.Model != nil {
		item.Model = *p.Model
	}
	if p.Type != nil {
		item.Type = *p.Type
	}
	return item
}

func (s *ConversationService) logTurn(ctx context.Context, session *Session, text string, resp *model.ConversationTurnResponse, took time.Duration) {
	if s.logger == nil {
		return
	}
	resultCount := 0
	if resp.Result != nil {
		resultCount = len(resp.Result.Items)
	} else if resp.Preview != nil {
		resultCount = len(resp.Preview.Items)
	}
	if err := s.logger.LogTurn(ctx, session.ID, text, session.Filter, resp.Status, resultCount, int(took.Milliseconds())); err != nil {
		log.Printf("⚠️ Turn logging failed: %v", err)
	}
}

// detectLocale is a placeholder: responses are English regardless of input
func detectLocale(string) string {
	return "en"
}
