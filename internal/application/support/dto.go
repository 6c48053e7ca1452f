package support

import (
	"time"

	"github.com/google/uuid"
	"github.com/grocer/backend/internal/domain/support"
)

// OpenConversationRequest starts a support thread
type OpenConversationRequest struct {
	Subject  string     `json:"subject" binding:"required,max=200"`
	Message  string     `json:"message" binding:"required,max=4000"`
	Priority string     `json:"priority" binding:"omitempty,oneof=LOW NORMAL HIGH URGENT"`
	StoreID  *uuid.UUID `json:"store_id"`
	OrderID  *uuid.UUID `json:"order_id"`
}

// PostMessageRequest adds a reply
type PostMessageRequest struct {
	Body string `json:"body" binding:"required,max=4000"`
}

// AssignRequest hands a conversation to an agent
type AssignRequest struct {
	AgentID uuid.UUID `json:"agent_id" binding:"required"`
}

// ConversationListFilter narrows conversation listings
type ConversationListFilter struct {
	Status     string     `form:"status" binding:"omitempty,oneof=OPEN PENDING RESOLVED CLOSED"`
	Priority   string     `form:"priority" binding:"omitempty,oneof=LOW NORMAL HIGH URGENT"`
	AssignedTo *uuid.UUID `form:"assigned_to"`
	StoreID    *uuid.UUID `form:"store_id"`
	Unassigned bool       `form:"unassigned"`
	Search     string     `form:"search"`
	Page       int        `form:"page" binding:"omitempty,min=1"`
	PageSize   int        `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// Participant is the user acting on a conversation
type Participant struct {
	UserID  uuid.UUID
	Role    string
	StoreID *uuid.UUID
}

// MessageResponse represents a conversation message
type MessageResponse struct {
	ID         uuid.UUID  `json:"id"`
	SenderID   *uuid.UUID `json:"sender_id,omitempty"`
	SenderRole string     `json:"sender_role"`
	Body       string     `json:"body"`
	SentAt     time.Time  `json:"sent_at"`
}

// ConversationResponse represents a conversation in API responses.
// Messages are omitted from listings.
type ConversationResponse struct {
	ID            uuid.UUID         `json:"id"`
	CustomerID    uuid.UUID         `json:"customer_id"`
	StoreID       *uuid.UUID        `json:"store_id,omitempty"`
	OrderID       *uuid.UUID        `json:"order_id,omitempty"`
	Subject       string            `json:"subject"`
	Priority      string            `json:"priority"`
	Status        string            `json:"status"`
	AssignedTo    *uuid.UUID        `json:"assigned_to,omitempty"`
	Messages      []MessageResponse `json:"messages,omitempty"`
	LastMessageAt time.Time         `json:"last_message_at"`
	ResolvedAt    *time.Time        `json:"resolved_at,omitempty"`
	ClosedAt      *time.Time        `json:"closed_at,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
}

// ToMessageResponse converts a domain message
func ToMessageResponse(m *support.Message) MessageResponse {
	return MessageResponse{
		ID:         m.ID,
		SenderID:   m.SenderID,
		SenderRole: string(m.SenderRole),
		Body:       m.Body,
		SentAt:     m.SentAt,
	}
}

// ToConversationResponse converts a domain conversation to a response DTO
func ToConversationResponse(c *support.Conversation) ConversationResponse {
	var msgs []MessageResponse
	if len(c.Messages) > 0 {
		msgs = make([]MessageResponse, len(c.Messages))
		for i := range c.Messages {
			msgs[i] = ToMessageResponse(&c.Messages[i])
		}
	}
	return ConversationResponse{
		ID:            c.ID,
		CustomerID:    c.CustomerID,
		StoreID:       c.StoreID,
		OrderID:       c.OrderID,
		Subject:       c.Subject,
		Priority:      string(c.Priority),
		Status:        string(c.Status),
		AssignedTo:    c.AssignedTo,
		Messages:      msgs,
		LastMessageAt: c.LastMessageAt,
		ResolvedAt:    c.ResolvedAt,
		ClosedAt:      c.ClosedAt,
		CreatedAt:     c.CreatedAt,
	}
}

// ToConversationResponses converts a slice of conversations
func ToConversationResponses(cs []support.Conversation) []ConversationResponse {
	out := make([]ConversationResponse, len(cs))
	for i := range cs {
		out[i] = ToConversationResponse(&cs[i])
	}
	return out
}
