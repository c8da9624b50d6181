package model

// ConversationStartRequest optionally carries a locale hint for the session.
type ConversationStartRequest struct {
	Locale string `json:"locale,omitempty"`
}

// UserReplyRequest is one user turn: either free text or a tapped quick-reply
// chip. Free text wins when both are present.
type UserReplyRequest struct {
	Message string `json:"message,omitempty"`
	Chip    string `json:"chip,omitempty"`
}

// ConversationEventRequest reports a UI-side action (e.g. "add_to_cart").
type ConversationEventRequest struct {
	Type string `json:"type" binding:"required"`
}

// AssistantMessage is one assistant utterance with an optional UI hint.
type AssistantMessage struct {
	Text string `json:"text"`
	Hint string `json:"hint,omitempty"`
}

// PreviewItem is a candidate product summary with per-constraint badges.
type PreviewItem struct {
	ID         int64    `json:"id"`
	Brand      string   `json:"brand,omitempty"`
	Model      string   `json:"model,omitempty"`
	Price      *float64 `json:"price,omitempty"`
	Type       string   `json:"type,omitempty"`
	CapacityKg *int     `json:"capacity_kg,omitempty"`
	Badges     []string `json:"badges,omitempty"`
}

// PreviewBlock is a small mid-conversation candidate set.
type PreviewBlock struct {
	Headline string        `json:"headline"`
	Items    []PreviewItem `json:"items"`
}

// ResultBlock is the final ranked shortlist plus its narration.
type ResultBlock struct {
	Explanation string        `json:"explanation"`
	Items       []PreviewItem `json:"items"`
}

// SlotSnapshot reports one preference slot's resolution state.
type SlotSnapshot struct {
	Slot  string `json:"slot"`
	Stage string `json:"stage"`
	Value string `json:"value,omitempty"`
}

// ConversationTurnResponse is the full outcome of one conversation turn.
type ConversationTurnResponse struct {
	SessionID string           `json:"session_id"`
	Status    string           `json:"status"` // collecting | completed
	Assistant AssistantMessage `json:"assistant"`
	Chips     []string         `json:"chips,omitempty"`
	Preview   *PreviewBlock    `json:"preview,omitempty"`
	Result    *ResultBlock     `json:"result,omitempty"`
	Slots     []SlotSnapshot   `json:"slots"`
	Metrics   map[string]any   `json:"metrics"`
}

// SearchResponse is the outcome of the one-shot /search endpoint.
type SearchResponse struct {
	Query            string       `json:"query"`
	Filter           *QueryFilter `json:"filter"`
	SizeBeforeRerank int          `json:"size_before_rerank"`
	Results          []Product    `json:"results"`
	Explanation      string       `json:"explanation"`
	Took             int64        `json:"took_ms"`
}
