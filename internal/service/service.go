package service

import (
	"context"
	"time"

	"account_service/internal/auth"
	"account_service/internal/cache"
	"account_service/internal/logger"
	"account_service/internal/metrics"
	"account_service/internal/models"
	"account_service/internal/repository"
	"account_service/internal/validation"
)

type Authorization interface {
	Login(ctx context.Context, username, password string) (string, error)
	ParseToken(accessToken string) (string, error)
}

// Users exposes account management. Mutations evict the cache before returning.
type Users interface {
	CreateUser(ctx context.Context, in validation.Registration) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	GetUser(ctx context.Context, id string) (*models.User, error)
	UpdateUser(ctx context.Context, id string, patch models.UserPatch) (*models.User, error)
	DeleteUser(ctx context.Context, id string) error
	ChangePassword(ctx context.Context, userID string, in validation.PasswordChange) error
}

// Service aggregates all sub-services.
type Service struct {
	Authorization
	Users
}

// Deps are the explicitly constructed handles services need. Their lifecycle
// belongs to the caller.
type Deps struct {
	Repos    *repository.Repository
	Cache    cache.Cache
	CacheTTL time.Duration
	Hasher   auth.Hasher
	Tokens   *auth.TokenIssuer
	Metrics  *metrics.Metrics
	Log      *logger.Logger
}

func NewService(d Deps) *Service {
	lookup := NewUserLookup(d.Repos.Users, d.Cache, d.CacheTTL, d.Metrics, d.Log)
	return &Service{
		Authorization: NewAuthService(d.Repos.Users, d.Hasher, d.Tokens),
		Users:         NewUserService(d.Repos.Users, lookup, d.Hasher, d.Log),
	}
}
