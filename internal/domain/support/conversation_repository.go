package support

import (
	"context"

	"github.com/google/uuid"
	"github.com/grocer/backend/internal/domain/shared"
)

// ConversationRepository defines the interface for conversation persistence
type ConversationRepository interface {
	// FindByID loads the conversation with its messages ordered by send time
	FindByID(ctx context.Context, id uuid.UUID) (*Conversation, error)
	// FindAll returns conversations without messages
	FindAll(ctx context.Context, filter shared.Filter) ([]Conversation, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	// Save persists the conversation and inserts messages not yet stored
	Save(ctx context.Context, conversation *Conversation) error
}
