package identity

import (
	"regexp"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/storefront/backend/internal/domain/shared"
)

const bcryptCost = 12

// Role is a user's access level
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleVendor   Role = "vendor"
	RoleCustomer Role = "customer"
	RoleManager  Role = "manager"
	RoleSupport  Role = "support"
)

// IsValid reports whether the role is one of the known roles
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleVendor, RoleCustomer, RoleManager, RoleSupport:
		return true
	}
	return false
}

// CanManageCatalog reports whether the role may create products
func (r Role) CanManageCatalog() bool {
	return r == RoleAdmin || r == RoleVendor
}

var (
	usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_\-.]+$`)
	emailRegex    = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
)

// User is the identity aggregate root
type User struct {
	shared.BaseAggregateRoot
	Username         string     `gorm:"type:varchar(100);uniqueIndex;not null" json:"username"`
	Email            string     `gorm:"type:varchar(200);uniqueIndex;not null" json:"email"`
	PasswordHash     string     `gorm:"type:varchar(255);not null" json:"-"`
	Role             Role       `gorm:"type:varchar(20);not null;default:'customer'" json:"role"`
	ProfileImageURL  string     `gorm:"type:varchar(500)" json:"profile_image_url"`
	ResetToken       string     `gorm:"type:varchar(100);index" json:"-"`
	ResetTokenExpiry *time.Time `json:"-"`
}

// TableName returns the database table name
func (User) TableName() string {
	return "users"
}

// NewUser creates a user with a hashed password. The role defaults
// to customer when empty.
func NewUser(username, email, password string, role Role) (*User, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	email = strings.ToLower(strings.TrimSpace(email))

	if err := validateUsername(username); err != nil {
		return nil, err
	}
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}

	if role == "" {
		role = RoleCustomer
	}
	if !role.IsValid() {
		return nil, shared.NewDomainErrorf("VALIDATION_ERROR", "invalid role: %s", role)
	}

	hash, err := hashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &User{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Username:          username,
		Email:             email,
		PasswordHash:      hash,
		Role:              role,
	}
	user.AddDomainEvent(NewUserRegisteredEvent(user.ID, user.Username, user.Email))
	return user, nil
}

// VerifyPassword checks a plaintext password against the stored hash
func (u *User) VerifyPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// ChangePassword replaces the password after validation
func (u *User) ChangePassword(newPassword string) error {
	if err := validatePassword(newPassword); err != nil {
		return err
	}
	hash, err := hashPassword(newPassword)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	u.ResetToken = ""
	u.ResetTokenExpiry = nil
	u.Touch()
	u.IncrementVersion()
	return nil
}

// SetEmail updates the email address
func (u *User) SetEmail(email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := validateEmail(email); err != nil {
		return err
	}
	u.Email = email
	u.Touch()
	u.IncrementVersion()
	return nil
}

// SetRole changes the user's role
func (u *User) SetRole(role Role) error {
	if !role.IsValid() {
		return shared.NewDomainErrorf("VALIDATION_ERROR", "invalid role: %s", role)
	}
	u.Role = role
	u.Touch()
	u.IncrementVersion()
	return nil
}

// SetProfileImageURL updates the profile image URL
func (u *User) SetProfileImageURL(url string) {
	u.ProfileImageURL = url
	u.Touch()
	u.IncrementVersion()
}

// IssueResetToken stores a password reset token valid until expiry
func (u *User) IssueResetToken(token string, expiry time.Time) {
	u.ResetToken = token
	u.ResetTokenExpiry = &expiry
	u.Touch()
	u.IncrementVersion()
	u.AddDomainEvent(NewPasswordResetRequestedEvent(u.ID, u.Email, token))
}

// ValidateResetToken checks that the token matches and has not expired
func (u *User) ValidateResetToken(token string) error {
	if u.ResetToken == "" || u.ResetToken != token {
		return shared.NewDomainError("VALIDATION_ERROR", "invalid reset token")
	}
	if u.ResetTokenExpiry == nil || time.Now().After(*u.ResetTokenExpiry) {
		return shared.NewDomainError("VALIDATION_ERROR", "reset token has expired")
	}
	return nil
}

// IsAdmin reports whether the user has the admin role
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", shared.NewDomainErrorf("INTERNAL_ERROR", "failed to hash password: %v", err)
	}
	return string(hash), nil
}

func validateUsername(username string) error {
	if len(username) < 3 || len(username) > 100 {
		return shared.NewDomainError("VALIDATION_ERROR", "username must be between 3 and 100 characters")
	}
	if !usernameRegex.MatchString(username) {
		return shared.NewDomainError("VALIDATION_ERROR", "username may only contain letters, digits, '_', '-' and '.'")
	}
	return nil
}

func validateEmail(email string) error {
	if email == "" || len(email) > 200 {
		return shared.NewDomainError("VALIDATION_ERROR", "email must be between 1 and 200 characters")
	}
	if !emailRegex.MatchString(email) {
		return shared.NewDomainError("VALIDATION_ERROR", "invalid email address")
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < 8 || len(password) > 128 {
		return shared.NewDomainError("VALIDATION_ERROR", "password must be between 8 and 128 characters")
	}
	var hasLetter, hasDigit bool
	for _, r := range password {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
			hasLetter = true
		case r >= '0' && r <= '9':
			hasDigit = true
		}
	}
	if !hasLetter || !hasDigit {
		return shared.NewDomainError("VALIDATION_ERROR", "password must contain at least one letter and one digit")
	}
	return nil
}
