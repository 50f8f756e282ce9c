package services

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/avorn/posts-be/internal/cache"
	"github.com/avorn/posts-be/internal/database"
	"github.com/google/uuid"
)

// newTestDB opens an in-memory sqlite database with the full schema.
// A single connection keeps the in-memory database alive across the pool.
func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.New(":memory:")
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	db.SetMaxOpenConns(1)
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func newTestUserService(t *testing.T, db *sql.DB, ttl time.Duration) (*UserService, cache.Store) {
	t.Helper()
	store := cache.NewMemoryStore(ttl)
	return NewUserService(db, store, ttl, false), store
}

func newTestPostService(t *testing.T, db *sql.DB, ttl time.Duration) (*PostService, cache.Store) {
	t.Helper()
	store := cache.NewMemoryStore(ttl)
	return NewPostService(db, store, ttl, false), store
}

func uniqueLogin() string {
	return "user-" + uuid.NewString()
}

func mustCreateUser(t *testing.T, svc *UserService, in UserInput) int64 {
	t.Helper()
	user, err := svc.CreateUser(context.Background(), in)
	if err != nil {
		t.Fatalf("create user %q: %v", in.Login, err)
	}
	return user.ID
}

// failingStore wraps a Store and fails every write, for exercising the
// best-effort populate paths.
type failingStore struct {
	cache.Store
	setErr error
}

func (s failingStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return s.setErr
}
