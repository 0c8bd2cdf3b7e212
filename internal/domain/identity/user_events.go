package identity

import (
	"github.com/google/uuid"

	"github.com/storefront/backend/internal/domain/shared"
)

// AggregateTypeUser identifies the user aggregate in events
const AggregateTypeUser = "User"

// Event types raised by the user aggregate
const (
	EventTypeUserRegistered         = "identity.user.registered"
	EventTypePasswordResetRequested = "identity.user.password_reset_requested"
)

// UserRegisteredEvent is raised when a new user registers
type UserRegisteredEvent struct {
	shared.BaseDomainEvent
	Username string `json:"username"`
	Email    string `json:"email"`
}

// NewUserRegisteredEvent creates a UserRegisteredEvent
func NewUserRegisteredEvent(userID uuid.UUID, username, email string) *UserRegisteredEvent {
	return &UserRegisteredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeUserRegistered, AggregateTypeUser, userID),
		Username:        username,
		Email:           email,
	}
}

// PasswordResetRequestedEvent is raised when a user requests a password reset
type PasswordResetRequestedEvent struct {
	shared.BaseDomainEvent
	Email      string `json:"email"`
	ResetToken string `json:"reset_token"`
}

// NewPasswordResetRequestedEvent creates a PasswordResetRequestedEvent
func NewPasswordResetRequestedEvent(userID uuid.UUID, email, token string) *PasswordResetRequestedEvent {
	return &PasswordResetRequestedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePasswordResetRequested, AggregateTypeUser, userID),
		Email:           email,
		ResetToken:      token,
	}
}
