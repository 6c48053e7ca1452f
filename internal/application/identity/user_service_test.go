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
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newUserService() (*UserService, *MockUserRepository, *MockStoreRepository, *auth.InMemoryTokenBlacklist, *recordingPublisher) {
	users := new(MockUserRepository)
	stores := new(MockStoreRepository)
	blacklist := auth.NewInMemoryTokenBlacklist()
	events := &recordingPublisher{}
	svc := NewUserService(users, stores, blacklist, newJWTService(), events, zap.NewNop())
	return svc, users, stores, blacklist, events
}

func TestUserService_Create_StoreManager(t *testing.T) {
	ctx := context.Background()
	svc, users, stores, _, events := newUserService()

	st, err := store.NewStore("BLR01", "Indiranagar", store.StoreTypeBrand)
	require.NoError(t, err)

	users.On("ExistsByEmail", ctx, "manager@example.com").Return(false, nil)
	stores.On("FindByID", ctx, st.ID).Return(st, nil)
	users.On("Save", ctx, mock.AnythingOfType("*identity.User")).Return(nil)

	resp, err := svc.Create(ctx, CreateUserRequest{
		Name:     "Store Manager",
		Email:    "manager@example.com",
		Password: "Password123",
		Role:     string(identity.RoleStoreManager),
		StoreID:  &st.ID,
	})

	require.NoError(t, err)
	assert.Equal(t, string(identity.RoleStoreManager), resp.Role)
	require.NotNil(t, resp.StoreID)
	assert.Equal(t, st.ID, *resp.StoreID)
	assert.Equal(t, []string{identity.EventTypeUserRegistered}, events.types())
}

func TestUserService_Create_StoreOnlyForManagers(t *testing.T) {
	ctx := context.Background()
	svc, users, stores, _, _ := newUserService()

	st, err := store.NewStore("BLR01", "Indiranagar", store.StoreTypeBrand)
	require.NoError(t, err)
	users.On("ExistsByEmail", ctx, "c@example.com").Return(false, nil)
	stores.On("FindByID", ctx, st.ID).Return(st, nil)

	_, err = svc.Create(ctx, CreateUserRequest{
		Name: "C", Email: "c@example.com", Password: "Password123",
		Role: string(identity.RoleCustomer), StoreID: &st.ID,
	})
	assert.Equal(t, "INVALID_ROLE", shared.ErrorCode(err))
	users.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestUserService_List(t *testing.T) {
	ctx := context.Background()
	svc, users, _, _, _ := newUserService()

	u := newTestUser(t, identity.RoleAdmin)
	users.On("FindAll", ctx, mock.MatchedBy(func(f shared.Filter) bool {
		return f.Filters["role"] == "ADMIN" && f.PageSize == shared.DefaultPageSize
	})).Return([]identity.User{*u}, nil)
	users.On("Count", ctx, mock.Anything).Return(int64(1), nil)

	page, err := svc.List(ctx, UserListFilter{Role: "ADMIN"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)
	assert.Equal(t, 1, page.TotalPages)
	require.Len(t, page.Items, 1)
	assert.Equal(t, u.ID, page.Items[0].ID)
}

func TestUserService_SuspendRevokesSessions(t *testing.T) {
	ctx := context.Background()
	svc, users, _, blacklist, events := newUserService()
	u := newTestUser(t, identity.RoleCustomer)
	issued := time.Now().Add(-time.Second)

	users.On("FindByID", ctx, u.ID).Return(u, nil)
	users.On("Save", ctx, u).Return(nil)

	resp, err := svc.Suspend(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, string(identity.UserStatusSuspended), resp.Status)
	assert.Equal(t, []string{identity.EventTypeUserStatusChanged}, events.types())

	invalidated, err := blacklist.IsUserTokenInvalidated(ctx, u.ID.String(), issued)
	require.NoError(t, err)
	assert.True(t, invalidated)

	_, err = svc.Suspend(ctx, u.ID)
	assert.Equal(t, "ALREADY_SUSPENDED", shared.ErrorCode(err))

	resp, err = svc.Activate(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, string(identity.UserStatusActive), resp.Status)
}

func TestUserService_GetByID_NotFound(t *testing.T) {
	ctx := context.Background()
	svc, users, _, _, _ := newUserService()
	id := uuid.New()
	users.On("FindByID", ctx, id).Return(nil, shared.ErrNotFound)

	_, err := svc.GetByID(ctx, id)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
