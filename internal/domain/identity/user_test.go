package identity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser(t *testing.T) {
	t.Run("creates customer by default", func(t *testing.T) {
		user, err := NewUser("Alice", "Alice@Example.com", "secret123", "")
		require.NoError(t, err)

		assert.Equal(t, "alice", user.Username)
		assert.Equal(t, "alice@example.com", user.Email)
		assert.Equal(t, RoleCustomer, user.Role)
		assert.NotEqual(t, "secret123", user.PasswordHash)
		assert.Len(t, user.DomainEvents(), 1)
		assert.Equal(t, EventTypeUserRegistered, user.DomainEvents()[0].EventType())
	})

	t.Run("rejects short username", func(t *testing.T) {
		_, err := NewUser("ab", "a@example.com", "secret123", "")
		assert.Error(t, err)
	})

	t.Run("rejects username with spaces", func(t *testing.T) {
		_, err := NewUser("bad name", "a@example.com", "secret123", "")
		assert.Error(t, err)
	})

	t.Run("rejects invalid email", func(t *testing.T) {
		_, err := NewUser("alice", "not-an-email", "secret123", "")
		assert.Error(t, err)
	})

	t.Run("rejects password without digit", func(t *testing.T) {
		_, err := NewUser("alice", "a@example.com", "onlyletters", "")
		assert.Error(t, err)
	})

	t.Run("rejects unknown role", func(t *testing.T) {
		_, err := NewUser("alice", "a@example.com", "secret123", "superuser")
		assert.Error(t, err)
	})

	t.Run("accepts vendor role", func(t *testing.T) {
		user, err := NewUser("bob", "bob@example.com", "secret123", RoleVendor)
		require.NoError(t, err)
		assert.Equal(t, RoleVendor, user.Role)
		assert.True(t, user.Role.CanManageCatalog())
	})
}

func TestUserVerifyPassword(t *testing.T) {
	user, err := NewUser("alice", "a@example.com", "secret123", "")
	require.NoError(t, err)

	assert.True(t, user.VerifyPassword("secret123"))
	assert.False(t, user.VerifyPassword("wrong-pass1"))
}

func TestUserChangePassword(t *testing.T) {
	user, err := NewUser("alice", "a@example.com", "secret123", "")
	require.NoError(t, err)
	oldHash := user.PasswordHash

	require.NoError(t, user.ChangePassword("newsecret1"))
	assert.NotEqual(t, oldHash, user.PasswordHash)
	assert.True(t, user.VerifyPassword("newsecret1"))
	assert.Equal(t, 2, user.Version)

	assert.Error(t, user.ChangePassword("short"))
}

func TestUserResetToken(t *testing.T) {
	user, err := NewUser("alice", "a@example.com", "secret123", "")
	require.NoError(t, err)

	t.Run("valid token", func(t *testing.T) {
		user.IssueResetToken("tok-123", time.Now().Add(time.Hour))
		assert.NoError(t, user.ValidateResetToken("tok-123"))
	})

	t.Run("wrong token", func(t *testing.T) {
		user.IssueResetToken("tok-123", time.Now().Add(time.Hour))
		assert.Error(t, user.ValidateResetToken("tok-456"))
	})

	t.Run("expired token", func(t *testing.T) {
		user.IssueResetToken("tok-123", time.Now().Add(-time.Minute))
		assert.Error(t, user.ValidateResetToken("tok-123"))
	})

	t.Run("token cleared after password change", func(t *testing.T) {
		user.IssueResetToken("tok-123", time.Now().Add(time.Hour))
		require.NoError(t, user.ChangePassword("another1pass"))
		assert.Error(t, user.ValidateResetToken("tok-123"))
	})
}

func TestUserSetRole(t *testing.T) {
	user, err := NewUser("alice", "a@example.com", "secret123", "")
	require.NoError(t, err)

	require.NoError(t, user.SetRole(RoleAdmin))
	assert.True(t, user.IsAdmin())

	assert.Error(t, user.SetRole("root"))
}
