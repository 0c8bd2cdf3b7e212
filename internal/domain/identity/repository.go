package identity

import (
	"context"

	"github.com/storefront/backend/internal/domain/shared"
)

// UserRepository persists user aggregates
type UserRepository interface {
	shared.Repository[User]
	FindByUsername(ctx context.Context, username string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByResetToken(ctx context.Context, token string) (*User, error)
}
