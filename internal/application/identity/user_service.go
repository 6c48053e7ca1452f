package identity

import (
	"context"

	"github.com/google/uuid"
	"github.com/grocer/backend/internal/domain/identity"
	"github.com/grocer/backend/internal/domain/shared"
	"github.com/grocer/backend/internal/domain/store"
	"github.com/grocer/backend/internal/infrastructure/auth"
	"go.uber.org/zap"
)

// UserService handles admin user management
type UserService struct {
	userRepo  identity.UserRepository
	storeRepo store.StoreRepository
	blacklist auth.TokenBlacklist
	jwt       *auth.JWTService
	events    shared.EventPublisher
	logger    *zap.Logger
}

// NewUserService creates a new user service
func NewUserService(
	userRepo identity.UserRepository,
	storeRepo store.StoreRepository,
	blacklist auth.TokenBlacklist,
	jwt *auth.JWTService,
	events shared.EventPublisher,
	logger *zap.Logger,
) *UserService {
	return &UserService{
		userRepo:  userRepo,
		storeRepo: storeRepo,
		blacklist: blacklist,
		jwt:       jwt,
		events:    events,
		logger:    logger,
	}
}

// Create creates an account with any role. Store managers may be bound to a store right away.
func (s *UserService) Create(ctx context.Context, req CreateUserRequest) (*UserResponse, error) {
	exists, err := s.userRepo.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "An account with this email already exists")
	}

	user, err := identity.NewUser(req.Name, req.Email, req.Phone, req.Password, identity.Role(req.Role))
	if err != nil {
		return nil, err
	}
	if req.StoreID != nil {
		if err := s.bindStore(ctx, user, *req.StoreID); err != nil {
			return nil, err
		}
	}

	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}
	publish(ctx, s.events, s.logger, user.PullDomainEvents())

	s.logger.Info("User created",
		zap.String("user_id", user.ID.String()),
		zap.String("role", string(user.Role)),
	)
	resp := ToUserResponse(user)
	return &resp, nil
}

// GetByID returns a user
func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (*UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToUserResponse(user)
	return &resp, nil
}

// List returns a page of users
func (s *UserService) List(ctx context.Context, f UserListFilter) (shared.Paginated[UserResponse], error) {
	filter := shared.Filter{Page: f.Page, PageSize: f.PageSize, Search: f.Search}.Normalize()
	if f.Role != "" {
		filter = filter.With("role", f.Role)
	}
	if f.Status != "" {
		filter = filter.With("status", f.Status)
	}

	users, err := s.userRepo.FindAll(ctx, filter)
	if err != nil {
		return shared.Paginated[UserResponse]{}, err
	}
	total, err := s.userRepo.Count(ctx, filter)
	if err != nil {
		return shared.Paginated[UserResponse]{}, err
	}
	return shared.NewPaginated(ToUserResponses(users), total, filter.Page, filter.PageSize), nil
}

// AssignStore binds a store manager to a store
func (s *UserService) AssignStore(ctx context.Context, id uuid.UUID, req AssignStoreRequest) (*UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.bindStore(ctx, user, req.StoreID); err != nil {
		return nil, err
	}
	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}
	// the store ID rides in the access token
	s.revokeSessions(ctx, user)

	resp := ToUserResponse(user)
	return &resp, nil
}

// Suspend blocks a user and signs out their sessions
func (s *UserService) Suspend(ctx context.Context, id uuid.UUID) (*UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := user.Suspend(); err != nil {
		return nil, err
	}
	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}
	publish(ctx, s.events, s.logger, user.PullDomainEvents())
	s.revokeSessions(ctx, user)

	s.logger.Info("User suspended", zap.String("user_id", user.ID.String()))
	resp := ToUserResponse(user)
	return &resp, nil
}

// Activate restores a suspended user
func (s *UserService) Activate(ctx context.Context, id uuid.UUID) (*UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := user.Activate(); err != nil {
		return nil, err
	}
	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}
	publish(ctx, s.events, s.logger, user.PullDomainEvents())

	s.logger.Info("User activated", zap.String("user_id", user.ID.String()))
	resp := ToUserResponse(user)
	return &resp, nil
}

func (s *UserService) bindStore(ctx context.Context, user *identity.User, storeID uuid.UUID) error {
	if _, err := s.storeRepo.FindByID(ctx, storeID); err != nil {
		return err
	}
	return user.AssignStore(storeID)
}

func (s *UserService) revokeSessions(ctx context.Context, user *identity.User) {
	if err := s.blacklist.AddUserTokensToBlacklist(ctx, user.ID.String(), s.jwt.GetRefreshTokenExpiration()); err != nil {
		s.logger.Error("Failed to revoke user sessions", zap.String("user_id", user.ID.String()), zap.Error(err))
	}
}
