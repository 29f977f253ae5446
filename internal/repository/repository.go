package repository

import (
	"context"
	"database/sql"
	"errors"

	"account_service/internal/models"

	"cloud.google.com/go/firestore"
)

var (
	// ErrDuplicate means the username or email is already taken.
	ErrDuplicate = errors.New("user already exists")
	// ErrInvalidID means the id is not a well-formed store identifier.
	// It is distinct from absence, which is reported as a nil record.
	ErrInvalidID = errors.New("invalid user id")
)

// Users is the credential store. Lookups return (nil, nil) when nothing matches.
// All writes refresh UpdatedAt; Create sets CreatedAt exactly once.
type Users interface {
	Create(ctx context.Context, u models.NewUser) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	Update(ctx context.Context, id string, patch models.UserPatch) (*models.User, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) (*models.User, error)
	Delete(ctx context.Context, id string) (bool, error)
}

type Repository struct {
	Users Users
}

// NewSQLRepository wires the SQL store for the given dialect (sqlite or postgres).
func NewSQLRepository(db *sql.DB, dialect Dialect) *Repository {
	return &Repository{
		Users: NewUserSQL(db, dialect),
	}
}

// NewFirestoreRepository wires the document store backed by a Firestore collection.
func NewFirestoreRepository(client *firestore.Client, collection string) *Repository {
	return &Repository{
		Users: NewUserFirestore(client, collection),
	}
}
