package identity

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser(t *testing.T) {
	t.Run("creates active user with hashed password", func(t *testing.T) {
		user, err := NewUser("Asha Rao", " Asha@Example.com ", "9876543210", "s3cretpass", RoleCustomer)
		require.NoError(t, err)

		assert.NotEqual(t, uuid.Nil, user.ID)
		assert.Equal(t, "asha@example.com", user.Email)
		assert.Equal(t, UserStatusActive, user.Status)
		assert.NotEqual(t, "s3cretpass", user.PasswordHash)
		assert.True(t, user.VerifyPassword("s3cretpass"))
		assert.False(t, user.VerifyPassword("wrong-pass"))

		events := user.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventTypeUserRegistered, events[0].EventType())
	})

	t.Run("rejects bad input", func(t *testing.T) {
		_, err := NewUser("", "a@b.co", "", "s3cretpass", RoleCustomer)
		assert.Error(t, err)

		_, err = NewUser("A", "not-an-email", "", "s3cretpass", RoleCustomer)
		assert.Contains(t, err.Error(), "Invalid email")

		_, err = NewUser("A", "a@b.co", "", "short", RoleCustomer)
		assert.Contains(t, err.Error(), "at least 8")

		_, err = NewUser("A", "a@b.co", "", "s3cretpass", Role("ROOT"))
		assert.Contains(t, err.Error(), "Invalid role")
	})
}

func TestUser_ChangePassword(t *testing.T) {
	user, err := NewUser("Asha", "asha@example.com", "", "s3cretpass", RoleCustomer)
	require.NoError(t, err)
	user.ClearDomainEvents()

	err = user.ChangePassword("wrong-pass", "n3wsecret!")
	assert.Error(t, err)

	require.NoError(t, user.ChangePassword("s3cretpass", "n3wsecret!"))
	assert.True(t, user.VerifyPassword("n3wsecret!"))
	assert.Equal(t, 2, user.Version)
	require.Len(t, user.GetDomainEvents(), 1)
	assert.Equal(t, EventTypeUserPasswordChanged, user.GetDomainEvents()[0].EventType())
}

func TestUser_SuspendActivate(t *testing.T) {
	user, err := NewUser("Ravi", "ravi@example.com", "", "s3cretpass", RoleStoreManager)
	require.NoError(t, err)

	require.NoError(t, user.Suspend())
	assert.False(t, user.CanLogin())
	assert.Error(t, user.Suspend())

	require.NoError(t, user.Activate())
	assert.True(t, user.CanLogin())
	assert.Error(t, user.Activate())
}

func TestUser_AssignStore(t *testing.T) {
	manager, err := NewUser("Ravi", "ravi@example.com", "", "s3cretpass", RoleStoreManager)
	require.NoError(t, err)
	storeID := uuid.New()
	require.NoError(t, manager.AssignStore(storeID))
	assert.Equal(t, storeID, *manager.StoreID)

	customer, err := NewUser("Asha", "asha@example.com", "", "s3cretpass", RoleCustomer)
	require.NoError(t, err)
	assert.Error(t, customer.AssignStore(storeID))
}

func TestRole(t *testing.T) {
	assert.True(t, RoleAdmin.IsStaff())
	assert.True(t, RoleStoreManager.IsStaff())
	assert.False(t, RoleCustomer.IsStaff())
	assert.False(t, Role("X").IsValid())
}
