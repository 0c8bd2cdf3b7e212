package notification

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/mail"
)

// OrderPlacedHandler mails an order confirmation to the buyer
type OrderPlacedHandler struct {
	users  identity.UserRepository
	mailer mail.Mailer
	logger *zap.Logger
}

// NewOrderPlacedHandler creates the order confirmation handler
func NewOrderPlacedHandler(users identity.UserRepository, mailer mail.Mailer, logger *zap.Logger) *OrderPlacedHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderPlacedHandler{users: users, mailer: mailer, logger: logger.Named("order-placed-handler")}
}

// EventTypes implements shared.EventHandler
func (h *OrderPlacedHandler) EventTypes() []string {
	return []string{order.EventTypeOrderPlaced}
}

// Handle implements shared.EventHandler
func (h *OrderPlacedHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	placed, ok := event.(*order.OrderPlacedEvent)
	if !ok {
		return fmt.Errorf("unexpected event type %T", event)
	}

	user, err := h.users.FindByID(ctx, placed.UserID)
	if err != nil {
		return fmt.Errorf("failed to resolve buyer for order %s: %w", placed.OrderID, err)
	}

	body := fmt.Sprintf(
		"Hi %s,\n\nThanks for your order!\n\nOrder ID: %s\nTotal: %s\n\nWe will let you know when it ships.\n",
		user.Username, placed.OrderID, placed.TotalAmount,
	)
	return h.mailer.Send(ctx, mail.Message{
		To:       user.Email,
		Subject:  fmt.Sprintf("Order confirmation %s", placed.OrderID),
		TextBody: body,
	})
}

// OrderCancelledHandler mails a cancellation notice to the buyer
type OrderCancelledHandler struct {
	users  identity.UserRepository
	mailer mail.Mailer
	logger *zap.Logger
}

// NewOrderCancelledHandler creates the cancellation notice handler
func NewOrderCancelledHandler(users identity.UserRepository, mailer mail.Mailer, logger *zap.Logger) *OrderCancelledHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderCancelledHandler{users: users, mailer: mailer, logger: logger.Named("order-cancelled-handler")}
}

// EventTypes implements shared.EventHandler
func (h *OrderCancelledHandler) EventTypes() []string {
	return []string{order.EventTypeOrderCancelled}
}

// Handle implements shared.EventHandler
func (h *OrderCancelledHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	cancelled, ok := event.(*order.OrderCancelledEvent)
	if !ok {
		return fmt.Errorf("unexpected event type %T", event)
	}

	user, err := h.users.FindByID(ctx, cancelled.UserID)
	if err != nil {
		return fmt.Errorf("failed to resolve buyer for order %s: %w", cancelled.OrderID, err)
	}

	who := "you"
	if cancelled.CancelledBy != "" && cancelled.CancelledBy != user.Username {
		who = "our staff"
	}
	body := fmt.Sprintf(
		"Hi %s,\n\nYour order %s was cancelled by %s.\n\nIf this was unexpected, please contact support.\n",
		user.Username, cancelled.OrderID, who,
	)
	return h.mailer.Send(ctx, mail.Message{
		To:       user.Email,
		Subject:  fmt.Sprintf("Order %s cancelled", cancelled.OrderID),
		TextBody: body,
	})
}

// UserRegisteredHandler mails a welcome message to new accounts
type UserRegisteredHandler struct {
	mailer mail.Mailer
	logger *zap.Logger
}

// NewUserRegisteredHandler creates the welcome mail handler
func NewUserRegisteredHandler(mailer mail.Mailer, logger *zap.Logger) *UserRegisteredHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserRegisteredHandler{mailer: mailer, logger: logger.Named("user-registered-handler")}
}

// EventTypes implements shared.EventHandler
func (h *UserRegisteredHandler) EventTypes() []string {
	return []string{identity.EventTypeUserRegistered}
}

// Handle implements shared.EventHandler
func (h *UserRegisteredHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	registered, ok := event.(*identity.UserRegisteredEvent)
	if !ok {
		return fmt.Errorf("unexpected event type %T", event)
	}

	body := fmt.Sprintf("Hi %s,\n\nWelcome aboard! Your account is ready.\n", registered.Username)
	return h.mailer.Send(ctx, mail.Message{
		To:       registered.Email,
		Subject:  "Welcome to the store",
		TextBody: body,
	})
}

// PasswordResetHandler mails the reset token to the account owner
type PasswordResetHandler struct {
	mailer mail.Mailer
	logger *zap.Logger
}

// NewPasswordResetHandler creates the password reset mail handler
func NewPasswordResetHandler(mailer mail.Mailer, logger *zap.Logger) *PasswordResetHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PasswordResetHandler{mailer: mailer, logger: logger.Named("password-reset-handler")}
}

// EventTypes implements shared.EventHandler
func (h *PasswordResetHandler) EventTypes() []string {
	return []string{identity.EventTypePasswordResetRequested}
}

// Handle implements shared.EventHandler
func (h *PasswordResetHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	requested, ok := event.(*identity.PasswordResetRequestedEvent)
	if !ok {
		return fmt.Errorf("unexpected event type %T", event)
	}

	body := fmt.Sprintf(
		"A password reset was requested for your account.\n\nReset token: %s\n\nThe token expires in 30 minutes. Ignore this mail if you did not request it.\n",
		requested.ResetToken,
	)
	return h.mailer.Send(ctx, mail.Message{
		To:       requested.Email,
		Subject:  "Password reset",
		TextBody: body,
	})
}

// Handlers returns every notification handler, ready to subscribe
func Handlers(users identity.UserRepository, mailer mail.Mailer, logger *zap.Logger) []shared.EventHandler {
	return []shared.EventHandler{
		NewOrderPlacedHandler(users, mailer, logger),
		NewOrderCancelledHandler(users, mailer, logger),
		NewUserRegisteredHandler(mailer, logger),
		NewPasswordResetHandler(mailer, logger),
	}
}

var (
	_ shared.EventHandler = (*OrderPlacedHandler)(nil)
	_ shared.EventHandler = (*OrderCancelledHandler)(nil)
	_ shared.EventHandler = (*UserRegisteredHandler)(nil)
	_ shared.EventHandler = (*PasswordResetHandler)(nil)
)
