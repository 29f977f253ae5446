package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"account_service/internal/models"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// DefaultCollection is the Firestore collection holding user documents.
const DefaultCollection = "users"

// maxDocIDBytes is Firestore's document id limit.
const maxDocIDBytes = 1500

// UserFirestore implements Users on a Firestore collection; the document id is the user id.
type UserFirestore struct {
	client     *firestore.Client
	collection string
	now        func() time.Time
}

func NewUserFirestore(client *firestore.Client, collection string) *UserFirestore {
	if collection == "" {
		collection = DefaultCollection
	}
	return &UserFirestore{client: client, collection: collection, now: time.Now}
}

var _ Users = (*UserFirestore)(nil)

// userDoc is the stored document shape.
type userDoc struct {
	FirstName    string    `firestore:"first_name"`
	LastName     string    `firestore:"last_name"`
	Email        string    `firestore:"email"`
	Username     string    `firestore:"username"`
	PasswordHash string    `firestore:"password"`
	CreatedAt    time.Time `firestore:"created_at"`
	UpdatedAt    time.Time `firestore:"updated_at"`
}

func (d userDoc) toModel(id string) *models.User {
	return &models.User{
		ID:           id,
		FirstName:    d.FirstName,
		LastName:     d.LastName,
		Email:        d.Email,
		Username:     d.Username,
		PasswordHash: d.PasswordHash,
		CreatedAt:    d.CreatedAt.UTC(),
		UpdatedAt:    d.UpdatedAt.UTC(),
	}
}

func fromModel(u *models.User) userDoc {
	return userDoc{
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Email:        u.Email,
		Username:     u.Username,
		PasswordHash: u.PasswordHash,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func (r *UserFirestore) users() *firestore.CollectionRef {
	return r.client.Collection(r.collection)
}

// Create checks username and email uniqueness and inserts inside one transaction.
func (r *UserFirestore) Create(ctx context.Context, nu models.NewUser) (*models.User, error) {
	now := r.timestamp()
	ref := r.users().NewDoc()
	doc := userDoc{
		FirstName:    nu.FirstName,
		LastName:     nu.LastName,
		Email:        nu.Email,
		Username:     nu.Username,
		PasswordHash: nu.PasswordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		for _, field := range []struct{ path, value string }{
			{"username", nu.Username},
			{"email", nu.Email},
		} {
			snaps, err := tx.Documents(r.users().Where(field.path, "==", field.value).Limit(1)).GetAll()
			if err != nil {
				return fmt.Errorf("query %s: %w", field.path, err)
			}
			if len(snaps) > 0 {
				return ErrDuplicate
			}
		}
		return tx.Create(ref, doc)
	})
	if err != nil {
		if errors.Is(err, ErrDuplicate) || status.Code(err) == codes.AlreadyExists {
			return nil, fmt.Errorf("insert user %q: %w", nu.Username, ErrDuplicate)
		}
		return nil, fmt.Errorf("insert user %q: %w", nu.Username, err)
	}
	return doc.toModel(ref.ID), nil
}

// GetByUsername fetches a user by username. Returns (nil, nil) if not found.
func (r *UserFirestore) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	snaps, err := r.users().Where("username", "==", username).Limit(1).Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("select user %q: %w", username, err)
	}
	if len(snaps) == 0 {
		return nil, nil
	}
	return decode(snaps[0])
}

// GetByID returns ErrInvalidID for ids Firestore cannot address and (nil, nil) if not found.
func (r *UserFirestore) GetByID(ctx context.Context, id string) (*models.User, error) {
	if err := checkDocID(id); err != nil {
		return nil, err
	}
	snap, err := r.users().Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("select user by id %q: %w", id, err)
	}
	return decode(snap)
}

// List returns all users, oldest first.
func (r *UserFirestore) List(ctx context.Context) ([]models.User, error) {
	snaps, err := r.users().OrderBy("created_at", firestore.Asc).Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	out := make([]models.User, 0, len(snaps))
	for _, s := range snaps {
		u, err := decode(s)
		if err != nil {
			return nil, err
		}
		out = append(out, *u)
	}
	return out, nil
}

func (r *UserFirestore) Update(ctx context.Context, id string, patch models.UserPatch) (*models.User, error) {
	return r.mutate(ctx, id, patch.Apply)
}

func (r *UserFirestore) UpdatePassword(ctx context.Context, id, passwordHash string) (*models.User, error) {
	return r.mutate(ctx, id, func(u *models.User) { u.PasswordHash = passwordHash })
}

// Delete removes the document and reports whether it existed.
func (r *UserFirestore) Delete(ctx context.Context, id string) (bool, error) {
	if err := checkDocID(id); err != nil {
		return false, err
	}
	ref := r.users().Doc(id)
	existed := false
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		existed = false
		if _, err := tx.Get(ref); err != nil {
			if status.Code(err) == codes.NotFound {
				return nil
			}
			return err
		}
		existed = true
		return tx.Delete(ref)
	})
	if err != nil {
		return false, fmt.Errorf("delete user %q: %w", id, err)
	}
	return existed, nil
}

func (r *UserFirestore) mutate(ctx context.Context, id string, fn func(*models.User)) (*models.User, error) {
	if err := checkDocID(id); err != nil {
		return nil, err
	}
	ref := r.users().Doc(id)

	var out *models.User
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		out = nil
		snap, err := tx.Get(ref)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return nil
			}
			return err
		}
		u, err := decode(snap)
		if err != nil {
			return err
		}
		fn(u)
		u.UpdatedAt = nextAfter(r.timestamp(), u.UpdatedAt)
		if err := tx.Set(ref, fromModel(u)); err != nil {
			return err
		}
		out = u
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("update user %q: %w", id, err)
	}
	return out, nil
}

func (r *UserFirestore) timestamp() time.Time {
	return r.now().UTC().Truncate(time.Microsecond)
}

func decode(snap *firestore.DocumentSnapshot) (*models.User, error) {
	var d userDoc
	if err := snap.DataTo(&d); err != nil {
		return nil, fmt.Errorf("decode user %q: %w", snap.Ref.ID, err)
	}
	return d.toModel(snap.Ref.ID), nil
}

// nextAfter returns now, or prev plus one microsecond when the clock has not moved past prev.
func nextAfter(now, prev time.Time) time.Time {
	if !now.After(prev) {
		return prev.Add(time.Microsecond)
	}
	return now
}

// checkDocID applies Firestore's document id rules.
func checkDocID(id string) error {
	switch {
	case id == "", id == ".", id == "..",
		len(id) > maxDocIDBytes,
		strings.Contains(id, "/"),
		strings.HasPrefix(id, "__") && strings.HasSuffix(id, "__"):
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return nil
}
