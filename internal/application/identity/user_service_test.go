package identity

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/auth"
)

type fakeUserRepo struct {
	byID map[uuid.UUID]*identity.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byID: map[uuid.UUID]*identity.User{}}
}

func (r *fakeUserRepo) FindByID(_ context.Context, id uuid.UUID) (*identity.User, error) {
	if u, ok := r.byID[id]; ok {
		return u, nil
	}
	return nil, shared.ErrNotFound
}

func (r *fakeUserRepo) FindByUsername(_ context.Context, username string) (*identity.User, error) {
	for _, u := range r.byID {
		if u.Username == strings.ToLower(username) {
			return u, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (*identity.User, error) {
	for _, u := range r.byID {
		if u.Email == strings.ToLower(email) {
			return u, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeUserRepo) FindByResetToken(_ context.Context, token string) (*identity.User, error) {
	for _, u := range r.byID {
		if u.ResetToken != "" && u.ResetToken == token {
			return u, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeUserRepo) FindAll(_ context.Context, _ shared.Filter) ([]*identity.User, error) {
	out := make([]*identity.User, 0, len(r.byID))
	for _, u := range r.byID {
		out = append(out, u)
	}
	return out, nil
}

func (r *fakeUserRepo) Save(_ context.Context, u *identity.User) error {
	r.byID[u.ID] = u
	return nil
}

func (r *fakeUserRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.byID[id]; !ok {
		return shared.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *fakeUserRepo) Count(_ context.Context, _ shared.Filter) (int64, error) {
	return int64(len(r.byID)), nil
}

var _ identity.UserRepository = (*fakeUserRepo)(nil)

func newTestService(t *testing.T) (*UserService, *fakeUserRepo) {
	t.Helper()
	tokens, err := auth.NewJWTService(auth.JWTConfig{
		Secret:           "test-secret-that-is-long-enough-000",
		AccessExpiration: time.Minute,
		Issuer:           "storefront-test",
	})
	require.NoError(t, err)
	repo := newFakeUserRepo()
	return NewUserService(repo, tokens, auth.NewInMemoryTokenBlacklist(), nil), repo
}

func register(t *testing.T, svc *UserService, username string) *UserResponse {
	t.Helper()
	resp, err := svc.Register(context.Background(), RegisterRequest{
		Username: username,
		Email:    username + "@example.com",
		Password: "sup3rsecret",
	})
	require.NoError(t, err)
	return resp
}

func TestRegister(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	t.Run("defaults to customer role", func(t *testing.T) {
		resp := register(t, svc, "alice")
		assert.Equal(t, "customer", resp.Role)
		assert.Equal(t, "alice", resp.Username)
	})

	t.Run("duplicate username rejected", func(t *testing.T) {
		_, err := svc.Register(ctx, RegisterRequest{
			Username: "alice",
			Email:    "other@example.com",
			Password: "sup3rsecret",
		})
		var derr *shared.DomainError
		require.ErrorAs(t, err, &derr)
		assert.Equal(t, "ALREADY_EXISTS", derr.Code)
	})

	t.Run("duplicate email rejected", func(t *testing.T) {
		_, err := svc.Register(ctx, RegisterRequest{
			Username: "alice2",
			Email:    "alice@example.com",
			Password: "sup3rsecret",
		})
		var derr *shared.DomainError
		require.ErrorAs(t, err, &derr)
		assert.Equal(t, "ALREADY_EXISTS", derr.Code)
	})
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	register(t, svc, "bob")

	t.Run("valid credentials issue a token pair", func(t *testing.T) {
		resp, err := svc.Login(ctx, LoginRequest{Username: "bob", Password: "sup3rsecret"})
		require.NoError(t, err)
		assert.NotEmpty(t, resp.Tokens.AccessToken)
		assert.NotEmpty(t, resp.Tokens.RefreshToken)
		assert.Equal(t, "Bearer", resp.Tokens.TokenType)
		assert.Equal(t, "bob", resp.User.Username)
	})

	t.Run("wrong password is unauthorized", func(t *testing.T) {
		_, err := svc.Login(ctx, LoginRequest{Username: "bob", Password: "wrongpass1"})
		var derr *shared.DomainError
		require.ErrorAs(t, err, &derr)
		assert.Equal(t, "UNAUTHORIZED", derr.Code)
	})

	t.Run("unknown user gets the same error", func(t *testing.T) {
		_, err := svc.Login(ctx, LoginRequest{Username: "nobody", Password: "sup3rsecret"})
		var derr *shared.DomainError
		require.ErrorAs(t, err, &derr)
		assert.Equal(t, "UNAUTHORIZED", derr.Code)
	})
}

func TestRefreshAndLogout(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	register(t, svc, "carol")

	login, err := svc.Login(ctx, LoginRequest{Username: "carol", Password: "sup3rsecret"})
	require.NoError(t, err)

	t.Run("refresh issues a fresh pair", func(t *testing.T) {
		pair, err := svc.Refresh(ctx, RefreshRequest{RefreshToken: login.Tokens.RefreshToken})
		require.NoError(t, err)
		assert.NotEmpty(t, pair.AccessToken)
	})

	t.Run("logged out refresh token is rejected", func(t *testing.T) {
		require.NoError(t, svc.Logout(ctx, login.Tokens.AccessToken, login.Tokens.RefreshToken))

		_, err := svc.Refresh(ctx, RefreshRequest{RefreshToken: login.Tokens.RefreshToken})
		var derr *shared.DomainError
		require.ErrorAs(t, err, &derr)
		assert.Equal(t, "UNAUTHORIZED", derr.Code)
	})

	t.Run("garbage refresh token is rejected", func(t *testing.T) {
		_, err := svc.Refresh(ctx, RefreshRequest{RefreshToken: "not-a-token"})
		var derr *shared.DomainError
		require.ErrorAs(t, err, &derr)
		assert.Equal(t, "UNAUTHORIZED", derr.Code)
	})
}

func TestPasswordReset(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestService(t)
	created := register(t, svc, "dave")
	userID := uuid.MustParse(created.ID)

	t.Run("unknown email is silently accepted", func(t *testing.T) {
		assert.NoError(t, svc.ForgotPassword(ctx, ForgotPasswordRequest{Email: "ghost@example.com"}))
	})

	t.Run("reset flow changes the password", func(t *testing.T) {
		require.NoError(t, svc.ForgotPassword(ctx, ForgotPasswordRequest{Email: "dave@example.com"}))

		user := repo.byID[userID]
		require.NotEmpty(t, user.ResetToken)
		token := user.ResetToken

		require.NoError(t, svc.ResetPassword(ctx, ResetPasswordRequest{
			Token:       token,
			NewPassword: "newsecret99",
		}))

		_, err := svc.Login(ctx, LoginRequest{Username: "dave", Password: "sup3rsecret"})
		assert.Error(t, err)
		_, err = svc.Login(ctx, LoginRequest{Username: "dave", Password: "newsecret99"})
		assert.NoError(t, err)

		// token is single use
		err = svc.ResetPassword(ctx, ResetPasswordRequest{Token: token, NewPassword: "another99"})
		var derr *shared.DomainError
		require.ErrorAs(t, err, &derr)
		assert.Equal(t, "VALIDATION_ERROR", derr.Code)
	})
}

func TestUpdateRole(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	created := register(t, svc, "erin")
	userID := uuid.MustParse(created.ID)

	t.Run("non-admin is forbidden", func(t *testing.T) {
		_, err := svc.UpdateRole(ctx, userID, identity.RoleVendor, identity.RoleCustomer)
		var derr *shared.DomainError
		require.ErrorAs(t, err, &derr)
		assert.Equal(t, "FORBIDDEN", derr.Code)
	})

	t.Run("admin promotes to vendor", func(t *testing.T) {
		resp, err := svc.UpdateRole(ctx, userID, identity.RoleVendor, identity.RoleAdmin)
		require.NoError(t, err)
		assert.Equal(t, "vendor", resp.Role)
	})

	t.Run("invalid role rejected", func(t *testing.T) {
		_, err := svc.UpdateRole(ctx, userID, identity.Role("owner"), identity.RoleAdmin)
		var derr *shared.DomainError
		require.ErrorAs(t, err, &derr)
		assert.Equal(t, "VALIDATION_ERROR", derr.Code)
	})
}
