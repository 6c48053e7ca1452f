package support

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/grocer/backend/internal/domain/shared"
)

// Priority ranks conversations for agents
type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityNormal Priority = "NORMAL"
	PriorityHigh   Priority = "HIGH"
	PriorityUrgent Priority = "URGENT"
)

// IsValid checks if the priority is known
func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityNormal, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// ConversationStatus is the lifecycle state of a conversation
type ConversationStatus string

const (
	StatusOpen     ConversationStatus = "OPEN"
	StatusPending  ConversationStatus = "PENDING"
	StatusResolved ConversationStatus = "RESOLVED"
	StatusClosed   ConversationStatus = "CLOSED"
)

// IsValid checks if the status is known
func (s ConversationStatus) IsValid() bool {
	switch s {
	case StatusOpen, StatusPending, StatusResolved, StatusClosed:
		return true
	}
	return false
}

// SenderRole identifies who wrote a message
type SenderRole string

const (
	SenderCustomer SenderRole = "CUSTOMER"
	SenderAgent    SenderRole = "AGENT"
	SenderSystem   SenderRole = "SYSTEM"
)

const maxMessageLength = 4000

// Message is a single entry in a conversation
type Message struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey"`
	ConversationID uuid.UUID  `gorm:"type:uuid;not null;index"`
	SenderID       *uuid.UUID `gorm:"type:uuid"`
	SenderRole     SenderRole `gorm:"type:varchar(20);not null"`
	Body           string     `gorm:"type:text;not null"`
	SentAt         time.Time  `gorm:"not null"`
}

// TableName returns the table name for GORM
func (Message) TableName() string {
	return "support_messages"
}

// Conversation is a support thread between a customer and agents
type Conversation struct {
	shared.BaseAggregateRoot
	CustomerID    uuid.UUID          `gorm:"type:uuid;not null;index"`
	StoreID       *uuid.UUID         `gorm:"type:uuid;index"`
	OrderID       *uuid.UUID         `gorm:"type:uuid"`
	Subject       string             `gorm:"type:varchar(200);not null"`
	Priority      Priority           `gorm:"type:varchar(20);not null;default:'NORMAL'"`
	Status        ConversationStatus `gorm:"type:varchar(20);not null;default:'OPEN';index"`
	AssignedTo    *uuid.UUID         `gorm:"type:uuid;index"`
	Messages      []Message          `gorm:"foreignKey:ConversationID;constraint:OnDelete:CASCADE"`
	LastMessageAt time.Time          `gorm:"not null;index"`
	ResolvedAt    *time.Time
	ClosedAt      *time.Time
}

// TableName returns the table name for GORM
func (Conversation) TableName() string {
	return "support_conversations"
}

// OpenConversation starts a thread with the customer's first message
func OpenConversation(customerID uuid.UUID, storeID, orderID *uuid.UUID, subject string, priority Priority, body string) (*Conversation, error) {
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return nil, shared.NewDomainError("INVALID_SUBJECT", "Subject cannot be empty")
	}
	if len(subject) > 200 {
		return nil, shared.NewDomainError("INVALID_SUBJECT", "Subject cannot exceed 200 characters")
	}
	if priority == "" {
		priority = PriorityNormal
	}
	if !priority.IsValid() {
		return nil, shared.NewDomainError("INVALID_PRIORITY", "Invalid priority")
	}

	c := &Conversation{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		CustomerID:        customerID,
		StoreID:           storeID,
		OrderID:           orderID,
		Subject:           subject,
		Priority:          priority,
		Status:            StatusOpen,
	}
	if _, err := c.appendMessage(&customerID, SenderCustomer, body); err != nil {
		return nil, err
	}
	c.AddDomainEvent(NewConversationOpenedEvent(c))
	return c, nil
}

// PostMessage adds a customer or agent reply and moves the status accordingly
func (c *Conversation) PostMessage(senderID uuid.UUID, role SenderRole, body string) (*Message, error) {
	if c.Status == StatusClosed {
		return nil, shared.NewDomainError("CONVERSATION_CLOSED", "Cannot post to a closed conversation")
	}
	switch role {
	case SenderCustomer:
		if senderID != c.CustomerID {
			return nil, shared.ErrForbidden
		}
	case SenderAgent:
	default:
		return nil, shared.NewDomainError("INVALID_SENDER", "Only customers and agents can post messages")
	}

	msg, err := c.appendMessage(&senderID, role, body)
	if err != nil {
		return nil, err
	}

	old := c.Status
	switch {
	case role == SenderAgent && c.Status == StatusOpen:
		c.Status = StatusPending
	case role == SenderCustomer && (c.Status == StatusPending || c.Status == StatusResolved):
		c.Status = StatusOpen
		c.ResolvedAt = nil
	}
	c.touch()
	c.AddDomainEvent(NewMessagePostedEvent(c, msg))
	if old != c.Status {
		c.AddDomainEvent(NewConversationStatusChangedEvent(c, old))
	}
	return msg, nil
}

// Assign hands the conversation to an agent
func (c *Conversation) Assign(agentID uuid.UUID, agentName string) error {
	if c.Status == StatusClosed {
		return shared.NewDomainError("CONVERSATION_CLOSED", "Cannot assign a closed conversation")
	}
	if agentID == uuid.Nil {
		return shared.NewDomainError("INVALID_AGENT", "Agent ID cannot be empty")
	}
	c.AssignedTo = &agentID
	name := strings.TrimSpace(agentName)
	if name == "" {
		name = "an agent"
	}
	if _, err := c.appendMessage(nil, SenderSystem, "Conversation assigned to "+name); err != nil {
		return err
	}
	c.touch()
	return nil
}

// Resolve marks the issue as handled
func (c *Conversation) Resolve() error {
	if c.Status != StatusOpen && c.Status != StatusPending {
		return shared.NewDomainError("INVALID_STATE", "Only open or pending conversations can be resolved")
	}
	now := time.Now()
	c.ResolvedAt = &now
	c.setStatus(StatusResolved)
	return nil
}

// Close ends the conversation. No further messages are accepted.
func (c *Conversation) Close() error {
	if c.Status == StatusClosed {
		return shared.NewDomainError("INVALID_STATE", "Conversation is already closed")
	}
	now := time.Now()
	c.ClosedAt = &now
	c.setStatus(StatusClosed)
	return nil
}

// Reopen brings a resolved or closed conversation back to OPEN
func (c *Conversation) Reopen() error {
	if c.Status != StatusResolved && c.Status != StatusClosed {
		return shared.NewDomainError("INVALID_STATE", "Only resolved or closed conversations can be reopened")
	}
	c.ResolvedAt = nil
	c.ClosedAt = nil
	c.setStatus(StatusOpen)
	return nil
}

// ChangePriority re-ranks the conversation
func (c *Conversation) ChangePriority(p Priority) error {
	if !p.IsValid() {
		return shared.NewDomainError("INVALID_PRIORITY", "Invalid priority")
	}
	c.Priority = p
	c.touch()
	return nil
}

// IsParticipant reports whether the user is the customer or the assigned agent
func (c *Conversation) IsParticipant(userID uuid.UUID) bool {
	return c.CustomerID == userID || (c.AssignedTo != nil && *c.AssignedTo == userID)
}

func (c *Conversation) setStatus(s ConversationStatus) {
	old := c.Status
	c.Status = s
	c.touch()
	c.AddDomainEvent(NewConversationStatusChangedEvent(c, old))
}

func (c *Conversation) appendMessage(senderID *uuid.UUID, role SenderRole, body string) (*Message, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, shared.NewDomainError("INVALID_MESSAGE", "Message cannot be empty")
	}
	if len(body) > maxMessageLength {
		return nil, shared.NewDomainError("INVALID_MESSAGE", "Message cannot exceed 4000 characters")
	}
	now := time.Now()
	c.Messages = append(c.Messages, Message{
		ID:             uuid.New(),
		ConversationID: c.ID,
		SenderID:       senderID,
		SenderRole:     role,
		Body:           body,
		SentAt:         now,
	})
	c.LastMessageAt = now
	return &c.Messages[len(c.Messages)-1], nil
}

func (c *Conversation) touch() {
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
}
