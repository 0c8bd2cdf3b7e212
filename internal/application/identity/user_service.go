package identity

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/auth"
)

const resetTokenTTL = 30 * time.Minute

// UserService handles registration, authentication and account management
type UserService struct {
	users          identity.UserRepository
	tokens         *auth.JWTService
	blacklist      auth.TokenBlacklist
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewUserService creates a user service
func NewUserService(
	users identity.UserRepository,
	tokens *auth.JWTService,
	blacklist auth.TokenBlacklist,
	logger *zap.Logger,
) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{
		users:     users,
		tokens:    tokens,
		blacklist: blacklist,
		logger:    logger.Named("user-service"),
	}
}

// SetEventPublisher wires the event bus
func (s *UserService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// RegisterRequest creates a new account
type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=100"`
	Email    string `json:"email" binding:"required,email,max=200"`
	Password string `json:"password" binding:"required,min=8,max=128"`
	Role     string `json:"role"`
}

// LoginRequest authenticates by username and password
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest exchanges a refresh token for a new pair
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// ForgotPasswordRequest starts a password reset
type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ResetPasswordRequest completes a password reset
type ResetPasswordRequest struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8,max=128"`
}

// UpdateProfileRequest carries a partial profile update
type UpdateProfileRequest struct {
	Email           *string `json:"email,omitempty"`
	ProfileImageURL *string `json:"profile_image_url,omitempty"`
}

// UserResponse is the API shape of a user. The password hash and
// reset token never leave the service.
type UserResponse struct {
	ID              string    `json:"id"`
	Username        string    `json:"username"`
	Email           string    `json:"email"`
	Role            string    `json:"role"`
	ProfileImageURL string    `json:"profile_image_url,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// LoginResponse bundles the authenticated user with a token pair
type LoginResponse struct {
	User   *UserResponse   `json:"user"`
	Tokens *auth.TokenPair `json:"tokens"`
}

// ToUserResponse maps a user aggregate to its API shape
func ToUserResponse(u *identity.User) *UserResponse {
	return &UserResponse{
		ID:              u.ID.String(),
		Username:        u.Username,
		Email:           u.Email,
		Role:            string(u.Role),
		ProfileImageURL: u.ProfileImageURL,
		CreatedAt:       u.CreatedAt,
		UpdatedAt:       u.UpdatedAt,
	}
}

// Register creates a new account. Username and email must be unique;
// the role defaults to customer.
func (s *UserService) Register(ctx context.Context, req RegisterRequest) (*UserResponse, error) {
	if _, err := s.users.FindByUsername(ctx, req.Username); err == nil {
		return nil, shared.NewDomainErrorf("ALREADY_EXISTS", "username %q is taken", req.Username)
	} else if !shared.IsNotFound(err) {
		return nil, err
	}
	if _, err := s.users.FindByEmail(ctx, req.Email); err == nil {
		return nil, shared.NewDomainErrorf("ALREADY_EXISTS", "email %q is already registered", req.Email)
	} else if !shared.IsNotFound(err) {
		return nil, err
	}

	user, err := identity.NewUser(req.Username, req.Email, req.Password, identity.Role(req.Role))
	if err != nil {
		return nil, err
	}
	if err := s.users.Save(ctx, user); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, user)
	s.logger.Info("User registered",
		zap.String("user_id", user.ID.String()),
		zap.String("username", user.Username),
	)
	return ToUserResponse(user), nil
}

// Login verifies credentials and issues a token pair. The same error
// is returned for unknown users and wrong passwords.
func (s *UserService) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	user, err := s.users.FindByUsername(ctx, req.Username)
	if err != nil {
		if shared.IsNotFound(err) {
			return nil, shared.NewDomainError("UNAUTHORIZED", "invalid username or password")
		}
		return nil, err
	}
	if !user.VerifyPassword(req.Password) {
		return nil, shared.NewDomainError("UNAUTHORIZED", "invalid username or password")
	}

	pair, err := s.tokens.GenerateTokenPair(user.ID.String(), user.Username, string(user.Role))
	if err != nil {
		return nil, shared.NewDomainErrorf("INTERNAL_ERROR", "failed to issue tokens: %v", err)
	}
	return &LoginResponse{User: ToUserResponse(user), Tokens: pair}, nil
}

// Refresh exchanges a valid refresh token for a new token pair
func (s *UserService) Refresh(ctx context.Context, req RefreshRequest) (*auth.TokenPair, error) {
	claims, err := s.tokens.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		return nil, shared.NewDomainError("UNAUTHORIZED", "invalid refresh token")
	}
	if s.blacklist != nil {
		revoked, err := s.blacklist.IsBlacklisted(ctx, claims.ID)
		if err != nil {
			s.logger.Warn("Blacklist check failed", zap.Error(err))
		} else if revoked {
			return nil, shared.NewDomainError("UNAUTHORIZED", "refresh token has been revoked")
		}
	}

	pair, err := s.tokens.RefreshTokenPair(req.RefreshToken)
	if err != nil {
		return nil, shared.NewDomainError("UNAUTHORIZED", "invalid refresh token")
	}
	return pair, nil
}

// Logout revokes the presented tokens for their remaining lifetime
func (s *UserService) Logout(ctx context.Context, accessToken, refreshToken string) error {
	if s.blacklist == nil {
		return nil
	}
	if claims, err := s.tokens.ValidateAccessToken(accessToken); err == nil {
		if err := s.blacklist.AddToBlacklist(ctx, claims.ID, claims.GetRemainingTTL()); err != nil {
			return err
		}
	}
	if refreshToken != "" {
		if claims, err := s.tokens.ValidateRefreshToken(refreshToken); err == nil {
			if err := s.blacklist.AddToBlacklist(ctx, claims.ID, claims.GetRemainingTTL()); err != nil {
				return err
			}
		}
	}
	return nil
}

// GetUser fetches a user by ID
func (s *UserService) GetUser(ctx context.Context, id uuid.UUID) (*UserResponse, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return ToUserResponse(user), nil
}

// GetUserByUsername fetches a user by username
func (s *UserService) GetUserByUsername(ctx context.Context, username string) (*UserResponse, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return ToUserResponse(user), nil
}

// ListUsers returns a page of users
func (s *UserService) ListUsers(ctx context.Context, filter shared.Filter) (*shared.Paginated[UserResponse], error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 20
	}

	users, err := s.users.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.users.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	items := make([]*UserResponse, 0, len(users))
	for _, u := range users {
		items = append(items, ToUserResponse(u))
	}
	return shared.NewPaginated(items, total, filter.Page, filter.PageSize), nil
}

// UpdateRole changes a user's role. Only admins may do this, and all
// of the target's tokens are invalidated so the old role cannot be
// used after the change.
func (s *UserService) UpdateRole(ctx context.Context, id uuid.UUID, role identity.Role, actorRole identity.Role) (*UserResponse, error) {
	if actorRole != identity.RoleAdmin {
		return nil, shared.NewDomainError("FORBIDDEN", "only admins can change roles")
	}

	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := user.SetRole(role); err != nil {
		return nil, err
	}
	if err := s.users.Save(ctx, user); err != nil {
		return nil, err
	}

	if s.blacklist != nil {
		if err := s.blacklist.AddUserTokensToBlacklist(ctx, user.ID.String(), 7*24*time.Hour); err != nil {
			s.logger.Warn("Failed to invalidate user tokens after role change",
				zap.String("user_id", user.ID.String()),
				zap.Error(err),
			)
		}
	}
	return ToUserResponse(user), nil
}

// UpdateProfile applies a partial profile update for the user
func (s *UserService) UpdateProfile(ctx context.Context, id uuid.UUID, req UpdateProfileRequest) (*UserResponse, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Email != nil && *req.Email != user.Email {
		if existing, err := s.users.FindByEmail(ctx, *req.Email); err == nil && existing.ID != id {
			return nil, shared.NewDomainErrorf("ALREADY_EXISTS", "email %q is already registered", *req.Email)
		} else if err != nil && !shared.IsNotFound(err) {
			return nil, err
		}
		if err := user.SetEmail(*req.Email); err != nil {
			return nil, err
		}
	}
	if req.ProfileImageURL != nil {
		user.SetProfileImageURL(*req.ProfileImageURL)
	}

	if err := s.users.Save(ctx, user); err != nil {
		return nil, err
	}
	return ToUserResponse(user), nil
}

// ForgotPassword issues a reset token for the account behind the
// email. Unknown emails are not reported to the caller.
func (s *UserService) ForgotPassword(ctx context.Context, req ForgotPasswordRequest) error {
	user, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		if shared.IsNotFound(err) {
			s.logger.Info("Password reset requested for unknown email")
			return nil
		}
		return err
	}

	token, err := generateResetToken()
	if err != nil {
		return err
	}
	user.IssueResetToken(token, time.Now().Add(resetTokenTTL))
	if err := s.users.Save(ctx, user); err != nil {
		return err
	}

	s.publishEvents(ctx, user)
	return nil
}

// ResetPassword completes a reset started by ForgotPassword
func (s *UserService) ResetPassword(ctx context.Context, req ResetPasswordRequest) error {
	user, err := s.users.FindByResetToken(ctx, req.Token)
	if err != nil {
		if shared.IsNotFound(err) {
			return shared.NewDomainError("VALIDATION_ERROR", "invalid reset token")
		}
		return err
	}
	if err := user.ValidateResetToken(req.Token); err != nil {
		return err
	}
	if err := user.ChangePassword(req.NewPassword); err != nil {
		return err
	}
	if err := s.users.Save(ctx, user); err != nil {
		return err
	}

	// existing sessions stay revoked once the password changes
	if s.blacklist != nil {
		if err := s.blacklist.AddUserTokensToBlacklist(ctx, user.ID.String(), 7*24*time.Hour); err != nil {
			s.logger.Warn("Failed to invalidate user tokens after password reset", zap.Error(err))
		}
	}
	return nil
}

func (s *UserService) publishEvents(ctx context.Context, user *identity.User) {
	if s.eventPublisher == nil {
		user.ClearDomainEvents()
		return
	}
	events := user.DomainEvents()
	if len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("Failed to publish user events", zap.Error(err))
	}
	user.ClearDomainEvents()
}

func generateResetToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", shared.NewDomainErrorf("INTERNAL_ERROR", "failed to generate reset token: %v", err)
	}
	return hex.EncodeToString(buf), nil
}
