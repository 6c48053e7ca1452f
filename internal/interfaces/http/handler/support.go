package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	supportapp "github.com/grocer/backend/internal/application/support"
)

// SupportHandler handles customer support conversations
type SupportHandler struct {
	BaseHandler
	conversationService *supportapp.ConversationService
}

// NewSupportHandler creates a new support handler
func NewSupportHandler(conversationService *supportapp.ConversationService) *SupportHandler {
	return &SupportHandler{conversationService: conversationService}
}

func (p caller) participant() supportapp.Participant {
	return supportapp.Participant{UserID: p.UserID, Role: string(p.Role), StoreID: p.StoreID}
}

// Open starts a conversation
func (h *SupportHandler) Open(c *gin.Context) {
	p, ok := h.currentCaller(c)
	if !ok {
		return
	}
	var req supportapp.OpenConversationRequest
	if !bindJSON(c, &req) {
		return
	}
	resp, err := h.conversationService.Open(c.Request.Context(), p.UserID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// List lists the conversations visible to the caller
func (h *SupportHandler) List(c *gin.Context) {
	p, ok := h.currentCaller(c)
	if !ok {
		return
	}
	var f supportapp.ConversationListFilter
	if !bindQuery(c, &f) {
		return
	}
	page, err := h.conversationService.List(c.Request.Context(), p.participant(), f)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Page(c, page)
}

// GetByID returns a conversation with its messages
func (h *SupportHandler) GetByID(c *gin.Context) {
	h.act(c, h.conversationService.GetByID)
}

// PostMessage replies in a conversation
func (h *SupportHandler) PostMessage(c *gin.Context) {
	p, ok := h.currentCaller(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req supportapp.PostMessageRequest
	if !bindJSON(c, &req) {
		return
	}
	resp, err := h.conversationService.PostMessage(c.Request.Context(), p.participant(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// Assign hands a conversation to an agent
func (h *SupportHandler) Assign(c *gin.Context) {
	p, ok := h.currentCaller(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req supportapp.AssignRequest
	if !bindJSON(c, &req) {
		return
	}
	resp, err := h.conversationService.Assign(c.Request.Context(), p.participant(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Resolve marks a conversation resolved
func (h *SupportHandler) Resolve(c *gin.Context) {
	h.act(c, h.conversationService.Resolve)
}

// Close closes a conversation
func (h *SupportHandler) Close(c *gin.Context) {
	h.act(c, h.conversationService.Close)
}

// Reopen reopens a resolved or closed conversation
func (h *SupportHandler) Reopen(c *gin.Context) {
	h.act(c, h.conversationService.Reopen)
}

func (h *SupportHandler) act(c *gin.Context, apply func(context.Context, supportapp.Participant, uuid.UUID) (*supportapp.ConversationResponse, error)) {
	p, ok := h.currentCaller(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	resp, err := apply(c.Request.Context(), p.participant(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
