package repository_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"account_service/internal/models"
	"account_service/internal/repository"
	"account_service/internal/repository/db"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSQLiteUsers(t *testing.T) repository.Users {
	t.Helper()
	ctx := context.Background()

	conn, err := db.InitDB(ctx, filepath.Join(t.TempDir(), "users.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return repository.NewSQLRepository(conn, repository.SQLite).Users
}

func alice() models.NewUser {
	return models.NewUser{FirstName: "A", LastName: "L", Email: "a@x.com", Username: "alice", PasswordHash: "digest"}
}

func TestSQLiteUsers_CreateAndFind(t *testing.T) {
	ctx := context.Background()
	users := newSQLiteUsers(t)

	created, err := users.Create(ctx, alice())
	require.NoError(t, err)

	got, err := users.GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "alice", got.Username)
	assert.Equal(t, "digest", got.PasswordHash)
	assert.True(t, got.CreatedAt.Equal(got.UpdatedAt), "created_at %v != updated_at %v", got.CreatedAt, got.UpdatedAt)
	assert.True(t, got.CreatedAt.Equal(created.CreatedAt))

	byName, err := users.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	require.NotNil(t, byName)
	assert.Equal(t, created.ID, byName.ID)

	missing, err := users.GetByUsername(ctx, "nobody")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestSQLiteUsers_Duplicates(t *testing.T) {
	ctx := context.Background()
	users := newSQLiteUsers(t)

	_, err := users.Create(ctx, alice())
	require.NoError(t, err)

	sameUsername := alice()
	sameUsername.Email = "other@x.com"
	_, err = users.Create(ctx, sameUsername)
	assert.ErrorIs(t, err, repository.ErrDuplicate)

	sameEmail := alice()
	sameEmail.Username = "alice2"
	_, err = users.Create(ctx, sameEmail)
	assert.ErrorIs(t, err, repository.ErrDuplicate)
}

func TestSQLiteUsers_UpdateKeepsCreatedAt(t *testing.T) {
	ctx := context.Background()
	users := newSQLiteUsers(t)

	created, err := users.Create(ctx, alice())
	require.NoError(t, err)

	first := "Alicia"
	updated, err := users.Update(ctx, created.ID, models.UserPatch{FirstName: &first})
	require.NoError(t, err)
	require.NotNil(t, updated)

	reread, err := users.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alicia", reread.FirstName)
	assert.Equal(t, "L", reread.LastName)
	assert.True(t, reread.CreatedAt.Equal(created.CreatedAt), "created_at changed")
	assert.True(t, reread.UpdatedAt.After(created.UpdatedAt), "updated_at did not increase")

	again, err := users.UpdatePassword(ctx, created.ID, "digest2")
	require.NoError(t, err)
	assert.True(t, again.UpdatedAt.After(reread.UpdatedAt), "updated_at did not increase on second write")
	assert.Equal(t, "digest2", again.PasswordHash)
}

func TestSQLiteUsers_DeleteAndInvalidID(t *testing.T) {
	ctx := context.Background()
	users := newSQLiteUsers(t)

	created, err := users.Create(ctx, alice())
	require.NoError(t, err)

	deleted, err := users.Delete(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = users.Delete(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, deleted)

	got, err := users.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = users.GetByID(ctx, "bogus")
	assert.True(t, errors.Is(err, repository.ErrInvalidID))

	patched, err := users.Update(ctx, created.ID, models.UserPatch{})
	require.NoError(t, err)
	assert.Nil(t, patched)
}

func TestSQLiteUsers_ListOrdered(t *testing.T) {
	ctx := context.Background()
	users := newSQLiteUsers(t)

	_, err := users.Create(ctx, alice())
	require.NoError(t, err)
	// distinct created_at values
	time.Sleep(2 * time.Millisecond)
	_, err = users.Create(ctx, models.NewUser{FirstName: "B", LastName: "M", Email: "b@x.com", Username: "bob", PasswordHash: "d"})
	require.NoError(t, err)

	list, err := users.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "alice", list[0].Username)
	assert.Equal(t, "bob", list[1].Username)
}
