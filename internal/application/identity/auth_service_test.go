package identity

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/grocer/backend/internal/domain/identity"
	"github.com/grocer/backend/internal/domain/shared"
	"github.com/grocer/backend/internal/domain/store"
	"github.com/grocer/backend/internal/infrastructure/auth"
	"github.com/grocer/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockUserRepository is a mock implementation of identity.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*identity.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindAll(ctx context.Context, filter shared.Filter) ([]identity.User, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]identity.User), args.Error(1)
}

func (m *MockUserRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) Save(ctx context.Context, user *identity.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

// MockStoreRepository is a mock implementation of store.StoreRepository
type MockStoreRepository struct {
	mock.Mock
}

func (m *MockStoreRepository) FindByID(ctx context.Context, id uuid.UUID) (*store.Store, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*store.Store), args.Error(1)
}

func (m *MockStoreRepository) FindByCode(ctx context.Context, code string) (*store.Store, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*store.Store), args.Error(1)
}

func (m *MockStoreRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]store.Store, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]store.Store), args.Error(1)
}

func (m *MockStoreRepository) FindAll(ctx context.Context, filter shared.Filter) ([]store.Store, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]store.Store), args.Error(1)
}

func (m *MockStoreRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStoreRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	args := m.Called(ctx, code)
	return args.Bool(0), args.Error(1)
}

func (m *MockStoreRepository) Save(ctx context.Context, s *store.Store) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockStoreRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// recordingPublisher collects published events
type recordingPublisher struct {
	events []shared.DomainEvent
}

func (p *recordingPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	p.events = append(p.events, events...)
	return nil
}

func (p *recordingPublisher) types() []string {
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.EventType()
	}
	return out
}

func newJWTService() *auth.JWTService {
	return auth.NewJWTService(config.JWTConfig{
		Secret:                 "test-secret-key-32-characters-long",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 7 * 24 * time.Hour,
		Issuer:                 "test-issuer",
	})
}

func newTestUser(t *testing.T, role identity.Role) *identity.User {
	t.Helper()
	u, err := identity.NewUser("Asha Rao", "asha@example.com", "9876543210", "Password123", role)
	require.NoError(t, err)
	u.PullDomainEvents()
	return u
}

type authFixture struct {
	repo      *MockUserRepository
	blacklist *auth.InMemoryTokenBlacklist
	events    *recordingPublisher
	jwt       *auth.JWTService
	svc       *AuthService
}

func newAuthFixture() *authFixture {
	f := &authFixture{
		repo:      new(MockUserRepository),
		blacklist: auth.NewInMemoryTokenBlacklist(),
		events:    &recordingPublisher{},
		jwt:       newJWTService(),
	}
	f.svc = NewAuthService(f.repo, f.jwt, f.blacklist, f.events, zap.NewNop())
	return f
}

func TestAuthService_Register(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture()

	f.repo.On("ExistsByEmail", ctx, "new@example.com").Return(false, nil)
	f.repo.On("Save", ctx, mock.AnythingOfType("*identity.User")).Return(nil)

	resp, err := f.svc.Register(ctx, RegisterRequest{
		Name:     "New Shopper",
		Email:    "new@example.com",
		Password: "Password123",
	})

	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.Equal(t, string(identity.RoleCustomer), resp.User.Role)
	assert.Equal(t, []string{identity.EventTypeUserRegistered}, f.events.types())

	claims, err := f.jwt.ValidateAccessToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID.String(), claims.UserID)
	f.repo.AssertExpectations(t)
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture()
	f.repo.On("ExistsByEmail", ctx, "taken@example.com").Return(true, nil)

	_, err := f.svc.Register(ctx, RegisterRequest{Name: "X", Email: "taken@example.com", Password: "Password123"})

	assert.ErrorIs(t, err, shared.ErrAlreadyExists)
	f.repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()
	user := newTestUser(t, identity.RoleCustomer)

	t.Run("success", func(t *testing.T) {
		f := newAuthFixture()
		f.repo.On("FindByEmail", ctx, "asha@example.com").Return(user, nil)
		f.repo.On("Save", ctx, user).Return(nil)

		resp, err := f.svc.Login(ctx, LoginRequest{Email: "asha@example.com", Password: "Password123"})

		require.NoError(t, err)
		assert.NotEmpty(t, resp.RefreshToken)
		assert.NotNil(t, user.LastLoginAt)
		f.repo.AssertExpectations(t)
	})

	t.Run("unknown email", func(t *testing.T) {
		f := newAuthFixture()
		f.repo.On("FindByEmail", ctx, "nobody@example.com").Return(nil, shared.ErrNotFound)

		_, err := f.svc.Login(ctx, LoginRequest{Email: "nobody@example.com", Password: "Password123"})
		assert.Equal(t, "INVALID_CREDENTIALS", shared.ErrorCode(err))
	})

	t.Run("wrong password", func(t *testing.T) {
		f := newAuthFixture()
		f.repo.On("FindByEmail", ctx, "asha@example.com").Return(user, nil)

		_, err := f.svc.Login(ctx, LoginRequest{Email: "asha@example.com", Password: "wrong-password"})
		assert.Equal(t, "INVALID_CREDENTIALS", shared.ErrorCode(err))
		f.repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("suspended", func(t *testing.T) {
		suspended := newTestUser(t, identity.RoleCustomer)
		require.NoError(t, suspended.Suspend())
		f := newAuthFixture()
		f.repo.On("FindByEmail", ctx, "asha@example.com").Return(suspended, nil)

		_, err := f.svc.Login(ctx, LoginRequest{Email: "asha@example.com", Password: "Password123"})
		assert.Equal(t, "ACCOUNT_SUSPENDED", shared.ErrorCode(err))
	})
}

func TestAuthService_Refresh_RotatesToken(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture()
	user := newTestUser(t, identity.RoleCustomer)

	pair, err := f.jwt.GenerateTokenPair(auth.GenerateTokenInput{UserID: user.ID, Email: user.Email, Role: string(user.Role)})
	require.NoError(t, err)
	f.repo.On("FindByID", ctx, user.ID).Return(user, nil)

	resp, err := f.svc.Refresh(ctx, RefreshRequest{RefreshToken: pair.RefreshToken})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)

	_, err = f.svc.Refresh(ctx, RefreshRequest{RefreshToken: pair.RefreshToken})
	assert.Equal(t, "TOKEN_REVOKED", shared.ErrorCode(err))
}

func TestAuthService_Refresh_RejectsAccessToken(t *testing.T) {
	f := newAuthFixture()
	pair, err := f.jwt.GenerateTokenPair(auth.GenerateTokenInput{UserID: uuid.New(), Role: "CUSTOMER"})
	require.NoError(t, err)

	_, err = f.svc.Refresh(context.Background(), RefreshRequest{RefreshToken: pair.AccessToken})
	assert.Equal(t, "TOKEN_INVALID", shared.ErrorCode(err))
}

func TestAuthService_Logout(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture()
	userID := uuid.New()

	pair, err := f.jwt.GenerateTokenPair(auth.GenerateTokenInput{UserID: userID, Role: "CUSTOMER"})
	require.NoError(t, err)
	access, err := f.jwt.ValidateAccessToken(pair.AccessToken)
	require.NoError(t, err)
	refresh, err := f.jwt.ValidateRefreshToken(pair.RefreshToken)
	require.NoError(t, err)

	require.NoError(t, f.svc.Logout(ctx, access, LogoutRequest{RefreshToken: pair.RefreshToken}))

	revoked, err := f.blacklist.IsBlacklisted(ctx, access.ID)
	require.NoError(t, err)
	assert.True(t, revoked)
	revoked, err = f.blacklist.IsBlacklisted(ctx, refresh.ID)
	require.NoError(t, err)
	assert.True(t, revoked)
}

func TestAuthService_ChangePassword(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture()
	user := newTestUser(t, identity.RoleCustomer)
	issuedBefore := time.Now().Add(-time.Second)

	f.repo.On("FindByID", ctx, user.ID).Return(user, nil)
	f.repo.On("Save", ctx, user).Return(nil)

	err := f.svc.ChangePassword(ctx, user.ID, ChangePasswordRequest{CurrentPassword: "Password123", NewPassword: "NewPassword456"})
	require.NoError(t, err)
	assert.True(t, user.VerifyPassword("NewPassword456"))
	assert.Equal(t, []string{identity.EventTypeUserPasswordChanged}, f.events.types())

	invalidated, err := f.blacklist.IsUserTokenInvalidated(ctx, user.ID.String(), issuedBefore)
	require.NoError(t, err)
	assert.True(t, invalidated)
}

func TestAuthService_ChangePassword_WrongCurrent(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture()
	user := newTestUser(t, identity.RoleCustomer)
	f.repo.On("FindByID", ctx, user.ID).Return(user, nil)

	err := f.svc.ChangePassword(ctx, user.ID, ChangePasswordRequest{CurrentPassword: "nope-nope", NewPassword: "NewPassword456"})
	assert.Equal(t, "INVALID_CREDENTIALS", shared.ErrorCode(err))
	f.repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}
