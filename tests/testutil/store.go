package testutil

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/nhle/callsheet/internal/model"
	"github.com/nhle/callsheet/internal/store"
)

// NewTestStore creates a SQLiteStore in a temporary directory with all
// migrations applied. It automatically closes the store when the test completes.
func NewTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()

	s, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("creating test store: %v", err)
	}

	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("closing test store: %v", err)
		}
	})

	return s
}

// NewTestUser inserts an account with a placeholder password hash and
// returns its ID.
func NewTestUser(t *testing.T, s store.UserStore, username string) string {
	t.Helper()

	user := &model.User{Username: username, PasswordHash: "x"}
	if err := s.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("creating test user %q: %v", username, err)
	}
	return user.ID
}
