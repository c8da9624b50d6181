package handler

import (
	"errors"
	"net/http"

	"washfinder/internal/model"
	"washfinder/internal/service"

	"github.com/gin-gonic/gin"
)

// ConversationHandler exposes the multi-turn shopping dialogue
type ConversationHandler struct {
	conversations *service.ConversationService
}

// NewConversationHandler creates a conversation handler
func NewConversationHandler(conversations *service.ConversationService) *ConversationHandler {
	return &ConversationHandler{conversations: conversations}
}

// Start handles POST /api/v1/conversations
func (h *ConversationHandler) Start(c *gin.Context) {
	var req model.ConversationStartRequest
	// Body is optional; ignore binding errors for an empty body
	_ = c.ShouldBindJSON(&req)

	resp := h.conversations.StartConversation(c.Request.Context(), req)
	c.JSON(http.StatusOK, resp)
}

// Reply handles POST /api/v1/conversations/:id/messages
func (h *ConversationHandler) Reply(c *gin.Context) {
	var req model.UserReplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	resp, err := h.conversations.ApplyUserReply(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		if errors.Is(err, service.ErrUnknownSession) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Event handles POST /api/v1/conversations/:id/events
func (h *ConversationHandler) Event(c *gin.Context) {
	var req model.ConversationEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	resp, err := h.conversations.RecordEvent(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		if errors.Is(err, service.ErrUnknownSession) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, resp)
}
