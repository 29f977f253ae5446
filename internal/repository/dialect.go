package repository

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Dialect captures the differences between the SQL engines the store runs on.
type Dialect struct {
	Name string

	numbered   bool   // $1, $2 placeholders instead of ?
	lockClause string // appended to row reads inside a write transaction

	uniqueViolation func(error) bool
}

var (
	SQLite = Dialect{
		Name:            "sqlite",
		uniqueViolation: isSQLiteUniqueViolation,
	}
	Postgres = Dialect{
		Name:            "postgres",
		numbered:        true,
		lockClause:      " FOR UPDATE",
		uniqueViolation: isPgUniqueViolation,
	}
)

// DialectByName resolves a store.driver value.
func DialectByName(name string) (Dialect, error) {
	switch strings.ToLower(name) {
	case SQLite.Name, "sqlite3":
		return SQLite, nil
	case Postgres.Name, "pgx", "postgresql":
		return Postgres, nil
	default:
		return Dialect{}, fmt.Errorf("unsupported sql dialect %q", name)
	}
}

// rebind rewrites ? placeholders for engines that want numbered ones.
func (d Dialect) rebind(query string) string {
	if !d.numbered {
		return query
	}
	var (
		b strings.Builder
		n int
	)
	b.Grow(len(query) + 8)
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// isSQLiteUniqueViolation matches only UNIQUE and PRIMARY KEY failures; NOT NULL
// and CHECK failures stay internal errors.
func isSQLiteUniqueViolation(err error) bool {
	var serr *sqlite.Error
	if !errors.As(err, &serr) {
		return false
	}
	switch serr.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return true
	}
	return false
}

func isPgUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}
