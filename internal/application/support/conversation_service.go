package support

import (
	"context"

	"github.com/google/uuid"
	"github.com/grocer/backend/internal/domain/identity"
	"github.com/grocer/backend/internal/domain/order"
	"github.com/grocer/backend/internal/domain/shared"
	"github.com/grocer/backend/internal/domain/support"
	"go.uber.org/zap"
)

// ConversationService handles customer support threads. Admins and store
// managers act as agents; managers only see their store's conversations.
type ConversationService struct {
	conversationRepo support.ConversationRepository
	orderRepo        order.OrderRepository
	userRepo         identity.UserRepository
	events           shared.EventPublisher
	logger           *zap.Logger
}

// NewConversationService creates a new ConversationService
func NewConversationService(
	conversationRepo support.ConversationRepository,
	orderRepo order.OrderRepository,
	userRepo identity.UserRepository,
	events shared.EventPublisher,
	logger *zap.Logger,
) *ConversationService {
	return &ConversationService{
		conversationRepo: conversationRepo,
		orderRepo:        orderRepo,
		userRepo:         userRepo,
		events:           events,
		logger:           logger,
	}
}

// Open starts a conversation with the customer's first message. A linked
// order must belong to the customer and decides the store.
func (s *ConversationService) Open(ctx context.Context, customerID uuid.UUID, req OpenConversationRequest) (*ConversationResponse, error) {
	storeID := req.StoreID
	if req.OrderID != nil {
		o, err := s.orderRepo.FindByID(ctx, *req.OrderID)
		if err != nil {
			return nil, err
		}
		if o.CustomerID != customerID {
			return nil, shared.NewDomainError("INVALID_ORDER", "Order not found")
		}
		storeID = &o.StoreID
	}

	c, err := support.OpenConversation(customerID, storeID, req.OrderID, req.Subject, support.Priority(req.Priority), req.Message)
	if err != nil {
		return nil, err
	}
	if err := s.conversationRepo.Save(ctx, c); err != nil {
		return nil, err
	}
	publish(ctx, s.events, s.logger, c.PullDomainEvents())

	s.logger.Info("Support conversation opened",
		zap.String("conversation_id", c.ID.String()),
		zap.String("priority", string(c.Priority)),
	)
	resp := ToConversationResponse(c)
	return &resp, nil
}

// GetByID returns a conversation with its messages
func (s *ConversationService) GetByID(ctx context.Context, p Participant, id uuid.UUID) (*ConversationResponse, error) {
	c, err := s.load(ctx, p, id)
	if err != nil {
		return nil, err
	}
	resp := ToConversationResponse(c)
	return &resp, nil
}

// List lists conversations, newest activity first
func (s *ConversationService) List(ctx context.Context, p Participant, f ConversationListFilter) (shared.Paginated[ConversationResponse], error) {
	filter := shared.Filter{
		Page:     f.Page,
		PageSize: f.PageSize,
		Search:   f.Search,
		OrderBy:  "last_message_at",
		OrderDir: "desc",
	}.Normalize()

	switch identity.Role(p.Role) {
	case identity.RoleCustomer:
		filter = filter.With("customer_id", p.UserID)
	case identity.RoleStoreManager:
		if p.StoreID == nil {
			return shared.Paginated[ConversationResponse]{}, shared.ErrForbidden
		}
		filter = filter.With("store_id", *p.StoreID)
	case identity.RoleAdmin:
		if f.StoreID != nil {
			filter = filter.With("store_id", *f.StoreID)
		}
	default:
		return shared.Paginated[ConversationResponse]{}, shared.ErrForbidden
	}
	if f.Status != "" {
		filter = filter.With("status", f.Status)
	}
	if f.Priority != "" {
		filter = filter.With("priority", f.Priority)
	}
	if f.AssignedTo != nil {
		filter = filter.With("assigned_to", *f.AssignedTo)
	} else if f.Unassigned {
		filter = filter.With("unassigned", true)
	}

	cs, err := s.conversationRepo.FindAll(ctx, filter)
	if err != nil {
		return shared.Paginated[ConversationResponse]{}, err
	}
	total, err := s.conversationRepo.Count(ctx, filter)
	if err != nil {
		return shared.Paginated[ConversationResponse]{}, err
	}
	return shared.NewPaginated(ToConversationResponses(cs), total, filter.Page, filter.PageSize), nil
}

// PostMessage adds a reply from the customer or an agent
func (s *ConversationService) PostMessage(ctx context.Context, p Participant, id uuid.UUID, req PostMessageRequest) (*MessageResponse, error) {
	c, err := s.load(ctx, p, id)
	if err != nil {
		return nil, err
	}
	role := support.SenderAgent
	if identity.Role(p.Role) == identity.RoleCustomer {
		role = support.SenderCustomer
	}
	msg, err := c.PostMessage(p.UserID, role, req.Body)
	if err != nil {
		return nil, err
	}
	resp := ToMessageResponse(msg)
	if err := s.conversationRepo.Save(ctx, c); err != nil {
		return nil, err
	}
	publish(ctx, s.events, s.logger, c.PullDomainEvents())
	return &resp, nil
}

// Assign hands the conversation to an agent and notes it in the thread
func (s *ConversationService) Assign(ctx context.Context, p Participant, id uuid.UUID, req AssignRequest) (*ConversationResponse, error) {
	agent, err := s.userRepo.FindByID(ctx, req.AgentID)
	if err != nil {
		return nil, err
	}
	if agent.Role != identity.RoleAdmin && agent.Role != identity.RoleStoreManager {
		return nil, shared.NewDomainError("INVALID_AGENT", "Conversations can only be assigned to staff")
	}
	if !agent.CanLogin() {
		return nil, shared.NewDomainError("INVALID_AGENT", "Agent account is not active")
	}
	return s.transition(ctx, p, id, func(c *support.Conversation) error {
		return c.Assign(agent.ID, agent.Name)
	})
}

// Resolve marks the issue handled
func (s *ConversationService) Resolve(ctx context.Context, p Participant, id uuid.UUID) (*ConversationResponse, error) {
	return s.transition(ctx, p, id, (*support.Conversation).Resolve)
}

// Close ends the conversation
func (s *ConversationService) Close(ctx context.Context, p Participant, id uuid.UUID) (*ConversationResponse, error) {
	return s.transition(ctx, p, id, (*support.Conversation).Close)
}

// Reopen brings a resolved or closed conversation back
func (s *ConversationService) Reopen(ctx context.Context, p Participant, id uuid.UUID) (*ConversationResponse, error) {
	return s.transition(ctx, p, id, (*support.Conversation).Reopen)
}

func (s *ConversationService) transition(ctx context.Context, p Participant, id uuid.UUID, apply func(*support.Conversation) error) (*ConversationResponse, error) {
	c, err := s.load(ctx, p, id)
	if err != nil {
		return nil, err
	}
	if err := apply(c); err != nil {
		return nil, err
	}
	if err := s.conversationRepo.Save(ctx, c); err != nil {
		return nil, err
	}
	publish(ctx, s.events, s.logger, c.PullDomainEvents())

	s.logger.Info("Support conversation updated",
		zap.String("conversation_id", c.ID.String()),
		zap.String("status", string(c.Status)),
	)
	resp := ToConversationResponse(c)
	return &resp, nil
}

func (s *ConversationService) load(ctx context.Context, p Participant, id uuid.UUID) (*support.Conversation, error) {
	c, err := s.conversationRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canAccess(p, c) {
		return nil, shared.ErrNotFound
	}
	return c, nil
}

func canAccess(p Participant, c *support.Conversation) bool {
	switch identity.Role(p.Role) {
	case identity.RoleAdmin:
		return true
	case identity.RoleStoreManager:
		if c.IsParticipant(p.UserID) {
			return true
		}
		return p.StoreID != nil && c.StoreID != nil && *p.StoreID == *c.StoreID
	case identity.RoleCustomer:
		return c.CustomerID == p.UserID
	}
	return false
}

func publish(ctx context.Context, events shared.EventPublisher, logger *zap.Logger, pending []shared.DomainEvent) {
	if events == nil || len(pending) == 0 {
		return
	}
	if err := events.Publish(ctx, pending...); err != nil {
		logger.Error("Failed to publish domain events", zap.Error(err))
	}
}
