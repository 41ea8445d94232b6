package auth

import (
	"fmt"
	"strings"
	"time"

	"github.com/shelflib/shelflib/internal/config"
	"github.com/shelflib/shelflib/internal/database/users"
	"github.com/shelflib/shelflib/internal/entities"
	"github.com/shelflib/shelflib/internal/faults"
)

// SanitizedUser is the account view returned from signup and signin.
// It carries neither the password hash nor the super-admin flag.
type SanitizedUser struct {
	ID        uint      `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

// Sanitize strips the fields that must not leave the identity store.
func Sanitize(user *entities.User) SanitizedUser {
	return SanitizedUser{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
	}
}

// Service handles registration and credential verification.
type Service struct {
	users  *users.Repository
	config config.Auth
}

// NewService creates a new authentication service.
func NewService(repo *users.Repository, cfg config.Auth) *Service {
	return &Service{
		users:  repo,
		config: cfg,
	}
}

// Register creates a new account. Every field must be non-blank and the
// email must not already be registered. The plaintext password is hashed
// immediately and never stored or returned.
func (s *Service) Register(username, email, password string) (SanitizedUser, error) {
	if strings.TrimSpace(username) == "" ||
		strings.TrimSpace(email) == "" ||
		strings.TrimSpace(password) == "" {
		return SanitizedUser{}, fmt.Errorf("%w: username, email and password are required", faults.ErrInvalidInput)
	}

	exists, err := s.users.EmailExists(email)
	if err != nil {
		return SanitizedUser{}, fmt.Errorf("failed to check existing user: %w", err)
	}
	if exists {
		return SanitizedUser{}, fmt.Errorf("%w: email already registered", faults.ErrConflict)
	}

	hash, err := HashPassword(password, s.config.BcryptCost)
	if err != nil {
		return SanitizedUser{}, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &entities.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.users.CreateUser(user); err != nil {
		return SanitizedUser{}, fmt.Errorf("failed to create user: %w", err)
	}

	return Sanitize(user), nil
}

// Authenticate verifies credentials and issues a signed session token.
// Unknown emails and wrong passwords are indistinguishable to the caller.
func (s *Service) Authenticate(email, password string) (SanitizedUser, string, error) {
	user, err := s.users.GetUserByEmail(email)
	if err != nil {
		return SanitizedUser{}, "", fmt.Errorf("%w: invalid credentials", faults.ErrUnauthorized)
	}

	if err := CheckPassword(password, user.PasswordHash); err != nil {
		return SanitizedUser{}, "", fmt.Errorf("%w: invalid credentials", faults.ErrUnauthorized)
	}

	token, err := SignToken(user.ID, user.IsSuperAdmin, s.config.TokenSecret, s.config.TokenTTL)
	if err != nil {
		return SanitizedUser{}, "", fmt.Errorf("failed to sign token: %w", err)
	}

	return Sanitize(user), token, nil
}

// GetUserByID loads the current account record for a resolved session.
func (s *Service) GetUserByID(id uint) (*entities.User, error) {
	return s.users.GetUserByID(id)
}
