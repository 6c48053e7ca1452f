package support

import (
	"github.com/google/uuid"
	"github.com/grocer/backend/internal/domain/shared"
)

// AggregateTypeConversation is the aggregate type for support conversations
const AggregateTypeConversation = "Conversation"

// Event type constants
const (
	EventTypeConversationOpened        = "ConversationOpened"
	EventTypeMessagePosted             = "MessagePosted"
	EventTypeConversationStatusChanged = "ConversationStatusChanged"
)

// ConversationOpenedEvent is published when a customer opens a conversation
type ConversationOpenedEvent struct {
	shared.BaseDomainEvent
	ConversationID uuid.UUID  `json:"conversation_id"`
	CustomerID     uuid.UUID  `json:"customer_id"`
	StoreID        *uuid.UUID `json:"store_id,omitempty"`
	Subject        string     `json:"subject"`
	Priority       Priority   `json:"priority"`
}

// NewConversationOpenedEvent creates a new ConversationOpenedEvent
func NewConversationOpenedEvent(c *Conversation) *ConversationOpenedEvent {
	return &ConversationOpenedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeConversationOpened, AggregateTypeConversation, c.ID),
		ConversationID:  c.ID,
		CustomerID:      c.CustomerID,
		StoreID:         c.StoreID,
		Subject:         c.Subject,
		Priority:        c.Priority,
	}
}

// MessagePostedEvent is published for every customer or agent reply
type MessagePostedEvent struct {
	shared.BaseDomainEvent
	ConversationID uuid.UUID  `json:"conversation_id"`
	MessageID      uuid.UUID  `json:"message_id"`
	SenderRole     SenderRole `json:"sender_role"`
}

// NewMessagePostedEvent creates a new MessagePostedEvent
func NewMessagePostedEvent(c *Conversation, m *Message) *MessagePostedEvent {
	return &MessagePostedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeMessagePosted, AggregateTypeConversation, c.ID),
		ConversationID:  c.ID,
		MessageID:       m.ID,
		SenderRole:      m.SenderRole,
	}
}

// ConversationStatusChangedEvent is published on status transitions
type ConversationStatusChangedEvent struct {
	shared.BaseDomainEvent
	ConversationID uuid.UUID          `json:"conversation_id"`
	OldStatus      ConversationStatus `json:"old_status"`
	NewStatus      ConversationStatus `json:"new_status"`
}

// NewConversationStatusChangedEvent creates a new ConversationStatusChangedEvent
func NewConversationStatusChangedEvent(c *Conversation, old ConversationStatus) *ConversationStatusChangedEvent {
	return &ConversationStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeConversationStatusChanged, AggregateTypeConversation, c.ID),
		ConversationID:  c.ID,
		OldStatus:       old,
		NewStatus:       c.Status,
	}
}
