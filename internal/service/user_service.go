package service

import (
	"context"
	"errors"
	"fmt"

	"account_service/internal/auth"
	"account_service/internal/logger"
	"account_service/internal/models"
	"account_service/internal/repository"
	"account_service/internal/validation"
)

// UserService implements account CRUD and password changes.
type UserService struct {
	users  repository.Users
	lookup *UserLookup
	hasher auth.Hasher
	log    *logger.Logger
}

func NewUserService(users repository.Users, lookup *UserLookup, hasher auth.Hasher, log *logger.Logger) *UserService {
	return &UserService{users: users, lookup: lookup, hasher: hasher, log: log}
}

// CreateUser hashes the password and stores the account.
func (s *UserService) CreateUser(ctx context.Context, in validation.Registration) (*models.User, error) {
	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u, err := s.users.Create(ctx, models.NewUser{
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Email:        in.Email,
		Username:     in.Username,
		PasswordHash: hash,
	})
	if errors.Is(err, repository.ErrDuplicate) {
		return nil, ErrDuplicateUser
	}
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	s.log.Infow("user_created", "user_id", u.ID)
	return u, nil
}

func (s *UserService) ListUsers(ctx context.Context) ([]models.User, error) {
	list, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return list, nil
}

func (s *UserService) GetUser(ctx context.Context, id string) (*models.User, error) {
	return s.lookup.GetUser(ctx, id)
}

// UpdateUser applies the patch and evicts the cached copy before returning.
func (s *UserService) UpdateUser(ctx context.Context, id string, patch models.UserPatch) (*models.User, error) {
	u, err := s.users.Update(ctx, id, patch)
	if errors.Is(err, repository.ErrInvalidID) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	if err := s.lookup.Evict(ctx, id); err != nil {
		return nil, err
	}
	return u, nil
}

// DeleteUser removes the account. The cache entry is evicted even when the
// store had nothing to delete.
func (s *UserService) DeleteUser(ctx context.Context, id string) error {
	deleted, err := s.users.Delete(ctx, id)
	if errors.Is(err, repository.ErrInvalidID) {
		return ErrUserNotFound
	}
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if err := s.lookup.Evict(ctx, id); err != nil {
		return err
	}
	if !deleted {
		return ErrUserNotFound
	}
	s.log.Infow("user_deleted", "user_id", id)
	return nil
}

// ChangePassword checks new == confirm, verifies the old password and stores a fresh hash.
func (s *UserService) ChangePassword(ctx context.Context, userID string, in validation.PasswordChange) error {
	if in.New != in.Confirm {
		return ErrPasswordMismatch
	}

	u, err := s.users.GetByID(ctx, userID)
	if errors.Is(err, repository.ErrInvalidID) {
		return ErrUserNotFound
	}
	if err != nil {
		return fmt.Errorf("load user: %w", err)
	}
	if u == nil {
		return ErrUserNotFound
	}
	if !s.hasher.Verify(in.Old, u.PasswordHash) {
		return ErrOldPasswordMismatch
	}

	hash, err := s.hasher.Hash(in.New)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	updated, err := s.users.UpdatePassword(ctx, userID, hash)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if updated == nil {
		return ErrUserNotFound
	}
	return s.lookup.Evict(ctx, userID)
}
