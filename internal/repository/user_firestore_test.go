package repository

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestCheckDocID(t *testing.T) {
	valid := []string{"abc", "5f2b0c1e9d3a4b0012345678", testID, "with space"}
	for _, id := range valid {
		if err := checkDocID(id); err != nil {
			t.Errorf("checkDocID(%q) = %v, want nil", id, err)
		}
	}

	invalid := []string{"", ".", "..", "a/b", "__reserved__", strings.Repeat("x", maxDocIDBytes+1)}
	for _, id := range invalid {
		if err := checkDocID(id); !errors.Is(err, ErrInvalidID) {
			t.Errorf("checkDocID(%q) = %v, want ErrInvalidID", id, err)
		}
	}
}

func TestNextAfter(t *testing.T) {
	prev := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	if got := nextAfter(prev.Add(time.Second), prev); !got.Equal(prev.Add(time.Second)) {
		t.Errorf("clock ahead: got %v", got)
	}
	if got := nextAfter(prev, prev); !got.Equal(prev.Add(time.Microsecond)) {
		t.Errorf("clock equal: got %v", got)
	}
	if got := nextAfter(prev.Add(-time.Hour), prev); !got.After(prev) {
		t.Errorf("clock behind: got %v, want after %v", got, prev)
	}
}

func TestUserDoc_RoundTrip(t *testing.T) {
	ts := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	d := userDoc{FirstName: "A", LastName: "L", Email: "a@x.com", Username: "alice", PasswordHash: "h", CreatedAt: ts, UpdatedAt: ts}

	u := d.toModel("doc-1")
	if u.ID != "doc-1" || u.PasswordHash != "h" || !u.CreatedAt.Equal(ts) {
		t.Fatalf("unexpected model %+v", u)
	}
	if back := fromModel(u); back != d {
		t.Fatalf("fromModel(toModel(d)) = %+v, want %+v", back, d)
	}
}

func TestNewUserFirestore_DefaultCollection(t *testing.T) {
	r := NewUserFirestore(nil, "")
	if r.collection != DefaultCollection {
		t.Fatalf("collection = %q, want %q", r.collection, DefaultCollection)
	}
}
