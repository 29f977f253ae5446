package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"account_service/internal/models"

	"github.com/google/uuid"
)

// UserSQL implements Users on database/sql (sqlite via modernc, postgres via pgx stdlib).
type UserSQL struct {
	db      *sql.DB
	dialect Dialect
	now     func() time.Time
}

func NewUserSQL(db *sql.DB, dialect Dialect) *UserSQL {
	return &UserSQL{db: db, dialect: dialect, now: time.Now}
}

// Ensure implementation of Users interface at compile time.
var _ Users = (*UserSQL)(nil)

const userColumns = `id, first_name, last_name, email, username, password_hash, created_at, updated_at`

const (
	insertUserSQL = `INSERT INTO users (` + userColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	selectUserByUsernameSQL = `SELECT ` + userColumns + ` FROM users WHERE username = ?`
	selectUserByIDSQL       = `SELECT ` + userColumns + ` FROM users WHERE id = ?`
	selectUsersSQL          = `SELECT ` + userColumns + ` FROM users ORDER BY created_at ASC, id ASC`

	updateUserSQL = `UPDATE users SET first_name = ?, last_name = ?, password_hash = ?, updated_at = ? WHERE id = ?`
	deleteUserSQL = `DELETE FROM users WHERE id = ?`
)

// Create inserts a new user with a fresh id; created_at and updated_at start out equal.
func (r *UserSQL) Create(ctx context.Context, nu models.NewUser) (*models.User, error) {
	now := r.timestamp()
	u := &models.User{
		ID:           uuid.NewString(),
		FirstName:    nu.FirstName,
		LastName:     nu.LastName,
		Email:        nu.Email,
		Username:     nu.Username,
		PasswordHash: nu.PasswordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	_, err := r.db.ExecContext(ctx, r.dialect.rebind(insertUserSQL),
		u.ID, u.FirstName, u.LastName, u.Email, u.Username, u.PasswordHash, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		if r.dialect.uniqueViolation(err) {
			return nil, fmt.Errorf("insert user %q: %w", nu.Username, ErrDuplicate)
		}
		return nil, fmt.Errorf("insert user %q: %w", nu.Username, err)
	}
	return u, nil
}

// GetByUsername fetches a user by username. Returns (nil, nil) if not found.
func (r *UserSQL) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, r.dialect.rebind(selectUserByUsernameSQL), username))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select user %q: %w", username, err)
	}
	return u, nil
}

// GetByID fetches a user by id. Returns ErrInvalidID for a malformed id and (nil, nil) if not found.
func (r *UserSQL) GetByID(ctx context.Context, id string) (*models.User, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	u, err := scanUser(r.db.QueryRowContext(ctx, r.dialect.rebind(selectUserByIDSQL), id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select user by id %q: %w", id, err)
	}
	return u, nil
}

// List returns all users, oldest first.
func (r *UserSQL) List(ctx context.Context) ([]models.User, error) {
	rows, err := r.db.QueryContext(ctx, selectUsersSQL)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	out := make([]models.User, 0, 16)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		out = append(out, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return out, nil
}

// Update applies the set fields of patch. Returns (nil, nil) if the user does not exist.
func (r *UserSQL) Update(ctx context.Context, id string, patch models.UserPatch) (*models.User, error) {
	return r.mutate(ctx, id, patch.Apply)
}

// UpdatePassword stores a new password digest. Returns (nil, nil) if the user does not exist.
func (r *UserSQL) UpdatePassword(ctx context.Context, id, passwordHash string) (*models.User, error) {
	return r.mutate(ctx, id, func(u *models.User) { u.PasswordHash = passwordHash })
}

// Delete removes a user and reports whether a row was deleted.
func (r *UserSQL) Delete(ctx context.Context, id string) (bool, error) {
	if err := checkID(id); err != nil {
		return false, err
	}
	res, err := r.db.ExecContext(ctx, r.dialect.rebind(deleteUserSQL), id)
	if err != nil {
		return false, fmt.Errorf("delete user %q: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected for user %q: %w", id, err)
	}
	return n > 0, nil
}

// mutate reads the row, applies fn, bumps updated_at and writes it back in one transaction.
func (r *UserSQL) mutate(ctx context.Context, id string, fn func(*models.User)) (*models.User, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin update of user %q: %w", id, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	u, err := scanUser(tx.QueryRowContext(ctx, r.dialect.rebind(selectUserByIDSQL+r.dialect.lockClause), id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select user by id %q: %w", id, err)
	}

	fn(u)
	u.UpdatedAt = nextAfter(r.timestamp(), u.UpdatedAt)

	if _, err := tx.ExecContext(ctx, r.dialect.rebind(updateUserSQL),
		u.FirstName, u.LastName, u.PasswordHash, u.UpdatedAt, u.ID); err != nil {
		return nil, fmt.Errorf("update user %q: %w", id, err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit update of user %q: %w", id, err)
	}
	return u, nil
}

// timestamp is the store clock, truncated to what both engines round-trip exactly.
func (r *UserSQL) timestamp() time.Time {
	return r.now().UTC().Truncate(time.Microsecond)
}

// checkID rejects anything that is not a UUID before it reaches the database.
func checkID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	var u models.User
	if err := row.Scan(
		&u.ID,
		&u.FirstName,
		&u.LastName,
		&u.Email,
		&u.Username,
		&u.PasswordHash,
		&u.CreatedAt,
		&u.UpdatedAt,
	); err != nil {
		return nil, err
	}
	u.CreatedAt = u.CreatedAt.UTC()
	u.UpdatedAt = u.UpdatedAt.UTC()
	return &u, nil
}
