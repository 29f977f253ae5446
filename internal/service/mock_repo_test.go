package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"account_service/internal/models"
	"account_service/internal/repository"

	"github.com/google/uuid"
)

// fakeUsers is an in-memory repository.Users that counts GetByID calls.
type fakeUsers struct {
	mu       sync.Mutex
	byID     map[string]models.User
	getCalls int
	failWith error
	clock    time.Time
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byID: map[string]models.User{}, clock: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (f *fakeUsers) tick() time.Time {
	f.clock = f.clock.Add(time.Second)
	return f.clock
}

func (f *fakeUsers) Create(_ context.Context, nu models.NewUser) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return nil, f.failWith
	}
	for _, u := range f.byID {
		if u.Username == nu.Username || u.Email == nu.Email {
			return nil, repository.ErrDuplicate
		}
	}
	now := f.tick()
	u := models.User{
		ID: uuid.NewString(), FirstName: nu.FirstName, LastName: nu.LastName,
		Email: nu.Email, Username: nu.Username, PasswordHash: nu.PasswordHash,
		CreatedAt: now, UpdatedAt: now,
	}
	f.byID[u.ID] = u
	return &u, nil
}

func (f *fakeUsers) GetByUsername(_ context.Context, username string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return nil, f.failWith
	}
	for _, u := range f.byID {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, nil
}

func (f *fakeUsers) GetByID(_ context.Context, id string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getCalls++
	if f.failWith != nil {
		return nil, f.failWith
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil, repository.ErrInvalidID
	}
	u, ok := f.byID[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (f *fakeUsers) List(context.Context) ([]models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return nil, f.failWith
	}
	out := make([]models.User, 0, len(f.byID))
	for _, u := range f.byID {
		out = append(out, u)
	}
	return out, nil
}

func (f *fakeUsers) mutate(id string, fn func(*models.User)) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return nil, f.failWith
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil, repository.ErrInvalidID
	}
	u, ok := f.byID[id]
	if !ok {
		return nil, nil
	}
	fn(&u)
	u.UpdatedAt = f.tick()
	f.byID[id] = u
	return &u, nil
}

func (f *fakeUsers) Update(_ context.Context, id string, patch models.UserPatch) (*models.User, error) {
	return f.mutate(id, patch.Apply)
}

func (f *fakeUsers) UpdatePassword(_ context.Context, id, hash string) (*models.User, error) {
	return f.mutate(id, func(u *models.User) { u.PasswordHash = hash })
}

func (f *fakeUsers) Delete(_ context.Context, id string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return false, f.failWith
	}
	if _, err := uuid.Parse(id); err != nil {
		return false, repository.ErrInvalidID
	}
	_, ok := f.byID[id]
	delete(f.byID, id)
	return ok, nil
}

func (f *fakeUsers) gets() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.getCalls
}

// fakeHasher keeps tests fast; the real hashers are covered in package auth.
type fakeHasher struct{}

func (fakeHasher) Hash(p string) (string, error) {
	if p == "" {
		return "", errors.New("empty")
	}
	return "hashed:" + p, nil
}

func (fakeHasher) Verify(p, digest string) bool {
	return strings.TrimPrefix(digest, "hashed:") == p && strings.HasPrefix(digest, "hashed:")
}

// failingCache returns err from every operation.
type failingCache struct{ err error }

func (c failingCache) Get(context.Context, string) ([]byte, bool, error) { return nil, false, c.err }
func (c failingCache) Set(context.Context, string, []byte, time.Duration) error {
	return c.err
}
func (c failingCache) Delete(context.Context, string) error { return c.err }
func (c failingCache) Close() error                         { return nil }
