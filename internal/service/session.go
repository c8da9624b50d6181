package service

import (
	"sync"
	"time"

	"washfinder/internal/config"
	"washfinder/internal/model"

	"github.com/google/uuid"
)

// SlotType identifies one preference the assistant collects
type SlotType int

const (
	SlotBudget SlotType = iota
	SlotLoadType
	SlotCapacity
	SlotBrand
	SlotDimensions
)

func (s SlotType) String() string {
	switch s {
	case SlotBudget:
		return "budget"
	case SlotLoadType:
		return "type"
	case SlotCapacity:
		return "capacity"
	case SlotBrand:
		return "brand"
	case SlotDimensions:
		return "dimensions"
	default:
		return "unknown"
	}
}

// SlotStage tracks how refined a slot's value is
type SlotStage int

const (
	StageMissing SlotStage = iota
	StageRough
	StageRefined
)

func (s SlotStage) String() string {
	switch s {
	case StageRough:
		return "rough"
	case StageRefined:
		return "refined"
	default:
		return "missing"
	}
}

// slotOrder is the fixed order slots are asked in
var slotOrder = []SlotType{SlotBudget, SlotLoadType, SlotCapacity, SlotBrand, SlotDimensions}

// Session holds the state of one shopping conversation. mu serializes turns
// on the same session; the registry map has its own lock.
type Session struct {
	mu sync.Mutex

	ID         string
	CreatedAt  time.Time
	Locale     string
	Utterances []string
	Filter     *model.QueryFilter
	SlotStages map[SlotType]SlotStage
	Completed  bool

	// Experiment flags are fixed at session creation so behavior does not
	// change mid-conversation.
	CapacityRefineExperiment bool
	AskDimensionsExperiment  bool

	Metrics Metrics
}

// NewSession creates a session with experiment flags frozen from cfg
func NewSession(locale string, cfg config.ConversationConfig) *Session {
	if locale == "" {
		locale = "auto"
	}
	return &Session{
		ID:                       uuid.NewString(),
		CreatedAt:                time.Now(),
		Locale:                   locale,
		Filter:                   &model.QueryFilter{},
		SlotStages:               make(map[SlotType]SlotStage),
		CapacityRefineExperiment: cfg.CapacityRefineExperiment,
		AskDimensionsExperiment:  cfg.AskDimensionsExperiment,
		Metrics:                  Metrics{startedAt: time.Now()},
	}
}

// Metrics accumulates per-session funnel counters
type Metrics struct {
	startedAt       time.Time
	turnCount       int
	slotsCompleted  int
	previewsShown   int
	previewHits     int
	finalRetrievals int
	finalHits       int
	addToCartClicks int
}

func (m *Metrics) IncrementTurn() { m.turnCount++ }

func (m *Metrics) SlotCompleted() { m.slotsCompleted++ }

func (m *Metrics) AddToCartClicked() { m.addToCartClicks++ }

func (m *Metrics) PreviewShown(resultCount int) {
	m.previewsShown++
	if resultCount > 0 {
		m.previewHits++
	}
}

func (m *Metrics) FinalRetrieval(resultCount int) {
	m.finalRetrievals++
	if resultCount > 0 {
		m.finalHits++
	}
}

// Snapshot renders the counters for the API response
func (m *Metrics) Snapshot() map[string]any {
	return map[string]any{
		"turnCount":              m.turnCount,
		"slotsCompleted":         m.slotsCompleted,
		"previewsTriggered":      m.previewsShown,
		"previewHitRate":         rate(m.previewHits, m.previewsShown),
		"finalRetrievals":        m.finalRetrievals,
		"finalRetrievalHitRate":  rate(m.finalHits, m.finalRetrievals),
		"addToCartClicks":        m.addToCartClicks,
		"conversationAgeSeconds": int(time.Since(m.startedAt).Seconds()),
	}
}

func rate(hits, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(hits) / float64(total)
}
