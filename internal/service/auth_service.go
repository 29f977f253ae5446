package service

import (
	"context"
	"errors"
	"fmt"

	"account_service/internal/auth"
	"account_service/internal/repository"
)

// AuthService verifies credentials and issues tokens.
type AuthService struct {
	users  repository.Users
	hasher auth.Hasher
	tokens *auth.TokenIssuer
}

func NewAuthService(users repository.Users, hasher auth.Hasher, tokens *auth.TokenIssuer) *AuthService {
	return &AuthService{users: users, hasher: hasher, tokens: tokens}
}

// Login returns a signed token for valid credentials. An unknown username and a
// wrong password both yield ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, error) {
	u, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return "", fmt.Errorf("find user %q: %w", username, err)
	}
	if u == nil || !s.hasher.Verify(password, u.PasswordHash) {
		return "", ErrInvalidCredentials
	}
	return s.tokens.Issue(u.ID)
}

// ParseToken returns the user id carried by a valid, unexpired token.
func (s *AuthService) ParseToken(accessToken string) (string, error) {
	userID, err := s.tokens.Parse(accessToken)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidToken) {
			return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
		}
		return "", err
	}
	return userID, nil
}
