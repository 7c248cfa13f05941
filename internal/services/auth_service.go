package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/isdelr/taskmaster-be/internal/auth"
	"github.com/isdelr/taskmaster-be/internal/models"
)

// AuthServiceProvider defines the interface for credential services.
type AuthServiceProvider interface {
	Login(ctx context.Context, username, password string) (auth.Token, error)
	Authenticate(ctx context.Context, token string) (models.User, error)
}

// AuthService issues and validates bearer credentials.
type AuthService struct {
	users  UserServiceProvider
	tokens *auth.TokenManager
}

// NewAuthService creates a new AuthService.
func NewAuthService(users UserServiceProvider, tokens *auth.TokenManager) *AuthService {
	return &AuthService{users: users, tokens: tokens}
}

// Login verifies the username and password and issues a token. An unknown
// username and a wrong password both yield auth.ErrAuthenticationFailed.
func (s *AuthService) Login(ctx context.Context, username, password string) (auth.Token, error) {
	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			return auth.Token{}, err
		}
		auth.EqualizeTiming(password)
		return auth.Token{}, auth.ErrAuthenticationFailed
	}
	if !auth.CheckPassword(password, user.PasswordHash) {
		return auth.Token{}, auth.ErrAuthenticationFailed
	}
	return s.tokens.Generate(user.ID)
}

// Authenticate resolves a token to its user.
func (s *AuthService) Authenticate(ctx context.Context, token string) (models.User, error) {
	userID, err := s.tokens.Parse(token)
	if err != nil {
		return models.User{}, err
	}
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return models.User{}, fmt.Errorf("user %d: %w", userID, auth.ErrUnknownUser)
		}
		return models.User{}, err
	}
	return user, nil
}
