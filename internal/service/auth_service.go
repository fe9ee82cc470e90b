package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/fjod/go_inventory/internal/auth"
	"github.com/fjod/go_inventory/internal/domain"
	"github.com/fjod/go_inventory/internal/repository"
)

const (
	DefaultAdminUsername = "ADMIN"
	defaultAdminPassword = "ADMIN"
	defaultAdminEmail    = "admin@example.com"

	maxUsernameLen = 20
	// bcrypt ignores everything past 72 bytes
	maxPasswordBytes = 72
	maskedValue      = "***"
)

type LoginResult struct {
	Token     string       `json:"access_token"`
	ExpiresIn int64        `json:"expires_in"`
	User      *domain.User `json:"user"`
}

type AuthService struct {
	users  repository.UserStore
	hasher *auth.PasswordHasher
	tokens *auth.JWTManager
}

func NewAuthService(users repository.UserStore, hasher *auth.PasswordHasher, tokens *auth.JWTManager) *AuthService {
	return &AuthService{users: users, hasher: hasher, tokens: tokens}
}

// EnsureDefaultAdmin creates the ADMIN account unless it already exists.
func (s *AuthService) EnsureDefaultAdmin(ctx context.Context) error {
	_, err := s.users.GetUser(ctx, DefaultAdminUsername)
	if err == nil {
		return nil
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		return err
	}

	hash, err := s.hasher.Hash(defaultAdminPassword)
	if err != nil {
		return fmt.Errorf("hash default admin password: %w", err)
	}
	return s.users.EnsureUser(ctx, &domain.User{
		Username:     DefaultAdminUsername,
		PasswordHash: hash,
		AccountType:  domain.AccountAdmin,
		Email:        defaultAdminEmail,
	})
}

func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	if err := s.EnsureDefaultAdmin(ctx); err != nil {
		return nil, err
	}

	user, err := s.users.GetUser(ctx, strings.TrimSpace(username))
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.GenerateToken(user)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}
	log.Printf("user %s logged in as %s", user.Username, user.AccountType)
	return &LoginResult{Token: token, ExpiresIn: s.tokens.TokenDuration(), User: user}, nil
}

func (s *AuthService) Register(ctx context.Context, username, password, email string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if err := validateCredentials(username, password); err != nil {
		return nil, err
	}
	if err := validateEmail(email); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		Username:     username,
		PasswordHash: hash,
		AccountType:  domain.AccountUser,
		Email:        email,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	log.Printf("user %s registered", username)
	return user, nil
}

// ResetPassword sets a new password for the account matching username and
// email.
func (s *AuthService) ResetPassword(ctx context.Context, username, email, password, confirm string) error {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" || email == "" {
		return domain.NewValidationError("", "username and email are required")
	}
	if err := validateCredentials(username, password); err != nil {
		return err
	}
	if password != confirm {
		return domain.NewValidationError("confirm_password", "passwords do not match")
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	err = s.users.UpdatePassword(ctx, username, email, hash)
	if errors.Is(err, repository.ErrUserNotFound) {
		return ErrInvalidCredentials
	}
	return err
}

// ListUsers returns every account without password hashes. Email addresses
// of regular users are masked.
func (s *AuthService) ListUsers(ctx context.Context) ([]*domain.User, error) {
	users, err := s.users.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		u.PasswordHash = ""
		if u.AccountType == domain.AccountUser {
			u.Email = maskedValue
		}
	}
	return users, nil
}

func validateCredentials(username, password string) error {
	switch {
	case username == "":
		return domain.NewValidationError("username", "is required")
	case utf8.RuneCountInString(username) > maxUsernameLen:
		return domain.NewValidationError("username", fmt.Sprintf("must be at most %d characters", maxUsernameLen))
	case password == "":
		return domain.NewValidationError("password", "is required")
	case len(password) > maxPasswordBytes:
		return domain.NewValidationError("password", fmt.Sprintf("must be at most %d bytes", maxPasswordBytes))
	}
	return nil
}

func validateEmail(email string) error {
	if email == "" {
		return domain.NewValidationError("email", "is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return domain.NewValidationError("email", "is not a valid address")
	}
	return nil
}
