package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/avorn/posts-be/internal/cache"
	"github.com/avorn/posts-be/internal/database"
	"github.com/avorn/posts-be/internal/models"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

const userAllKey = "user:all"

func userKey(id int64) string {
	return fmt.Sprintf("user:%d", id)
}

// UserInput carries the full field set for creating or updating a user.
// Password arrives in plaintext and is hashed before it touches the store.
type UserInput struct {
	Login     string
	Password  string
	FirstName string
	LastName  string
	IsAdmin   bool
}

// UserServiceProvider defines the interface for user services.
type UserServiceProvider interface {
	GetUser(ctx context.Context, id int64) (models.User, error)
	GetAllUsers(ctx context.Context) ([]models.User, error)
	CreateUser(ctx context.Context, in UserInput) (models.User, error)
	UpdateUser(ctx context.Context, id int64, in UserInput) (models.User, error)
	DeleteUser(ctx context.Context, id int64) (models.User, error)
}

// UserService provides cache-consistent CRUD for users. Reads go through
// the cache; every write commits to the store first and only then touches
// the cache entry for that id.
type UserService struct {
	db              *sql.DB
	cache           cache.Store
	ttl             time.Duration
	cacheAggregates bool
}

// NewUserService creates a new UserService.
func NewUserService(db *sql.DB, store cache.Store, ttl time.Duration, cacheAggregates bool) *UserService {
	return &UserService{db: db, cache: store, ttl: ttl, cacheAggregates: cacheAggregates}
}

// GetUser retrieves a single user, serving from the cache when the entry is
// present and unexpired. On a miss the store is queried and the entry is
// repopulated best-effort.
func (s *UserService) GetUser(ctx context.Context, id int64) (models.User, error) {
	key := userKey(id)
	raw, err := s.cache.Get(ctx, key)
	if err == nil {
		var user models.User
		if err := json.Unmarshal(raw, &user); err == nil {
			return user, nil
		}
		log.Warn().Str("key", key).Msg("Discarding undecodable cache entry")
	} else if !errors.Is(err, cache.ErrMiss) {
		return models.User{}, err
	}

	var user models.User
	row := s.db.QueryRowContext(ctx, "SELECT id, login, first_name, last_name, is_admin FROM users WHERE id = ?", id)
	if err := row.Scan(&user.ID, &user.Login, &user.FirstName, &user.LastName, &user.IsAdmin); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, ErrUserNotFound
		}
		return models.User{}, err
	}

	s.populate(ctx, key, user)
	return user, nil
}

// GetAllUsers returns the full collection ordered by insertion. By default
// it always reads the store; with aggregate caching enabled the snapshot is
// served from and repopulated under its own key, disjoint from per-id keys.
func (s *UserService) GetAllUsers(ctx context.Context) ([]models.User, error) {
	if s.cacheAggregates {
		if raw, err := s.cache.Get(ctx, userAllKey); err == nil {
			var users []models.User
			if err := json.Unmarshal(raw, &users); err == nil {
				return users, nil
			}
			log.Warn().Str("key", userAllKey).Msg("Discarding undecodable cache entry")
		} else if !errors.Is(err, cache.ErrMiss) {
			return nil, err
		}
	}

	rows, err := s.db.QueryContext(ctx, "SELECT id, login, first_name, last_name, is_admin FROM users ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var user models.User
		if err := rows.Scan(&user.ID, &user.Login, &user.FirstName, &user.LastName, &user.IsAdmin); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if s.cacheAggregates {
		s.populate(ctx, userAllKey, users)
	}
	return users, nil
}

// CreateUser inserts a new user in a single transaction and, after commit,
// writes a fresh cache entry for the assigned id.
func (s *UserService) CreateUser(ctx context.Context, in UserInput) (models.User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.User{}, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		"INSERT INTO users (login, password, first_name, last_name, is_admin) VALUES (?, ?, ?, ?, ?)",
		in.Login, string(hashed), in.FirstName, in.LastName, in.IsAdmin)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return models.User{}, ErrDuplicateLogin
		}
		return models.User{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.User{}, err
	}
	if err := tx.Commit(); err != nil {
		return models.User{}, err
	}

	user := models.User{
		ID:        id,
		Login:     in.Login,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		IsAdmin:   in.IsAdmin,
	}
	s.populate(ctx, userKey(id), user)
	s.evictAggregate(ctx)
	return user, nil
}

// UpdateUser replaces every field of an existing user inside one
// transaction, re-hashing the password. After commit the cache entry is
// overwritten with the fresh value rather than merely invalidated.
func (s *UserService) UpdateUser(ctx context.Context, id int64, in UserInput) (models.User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.User{}, err
	}
	defer tx.Rollback()

	var existing int64
	if err := tx.QueryRowContext(ctx, "SELECT id FROM users WHERE id = ?", id).Scan(&existing); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, ErrUserNotFound
		}
		return models.User{}, err
	}

	_, err = tx.ExecContext(ctx,
		"UPDATE users SET login = ?, password = ?, first_name = ?, last_name = ?, is_admin = ? WHERE id = ?",
		in.Login, string(hashed), in.FirstName, in.LastName, in.IsAdmin, id)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return models.User{}, ErrDuplicateLogin
		}
		return models.User{}, err
	}
	if err := tx.Commit(); err != nil {
		return models.User{}, err
	}

	user := models.User{
		ID:        id,
		Login:     in.Login,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		IsAdmin:   in.IsAdmin,
	}
	s.populate(ctx, userKey(id), user)
	s.evictAggregate(ctx)
	return user, nil
}

// DeleteUser removes a user inside one transaction and, after commit,
// drops the cache entry. Returns the user as it existed before deletion.
func (s *UserService) DeleteUser(ctx context.Context, id int64) (models.User, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.User{}, err
	}
	defer tx.Rollback()

	var user models.User
	row := tx.QueryRowContext(ctx, "SELECT id, login, first_name, last_name, is_admin FROM users WHERE id = ?", id)
	if err := row.Scan(&user.ID, &user.Login, &user.FirstName, &user.LastName, &user.IsAdmin); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, ErrUserNotFound
		}
		return models.User{}, err
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM users WHERE id = ?", id); err != nil {
		return models.User{}, err
	}
	if err := tx.Commit(); err != nil {
		return models.User{}, err
	}

	// Removal is unconditional and idempotent; a failure here only means
	// the entry lives out its TTL.
	if err := s.cache.Delete(ctx, userKey(id)); err != nil {
		log.Warn().Err(err).Int64("user_id", id).Msg("Failed to evict cache entry")
	}
	s.evictAggregate(ctx)
	return user, nil
}

// populate writes a cache entry best-effort: the store has already
// committed, so a cache failure is logged and swallowed.
func (s *UserService) populate(ctx context.Context, key string, value any) {
	raw, err := json.Marshal(value)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Failed to encode cache entry")
		return
	}
	if err := s.cache.Set(ctx, key, raw, s.ttl); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Failed to write cache entry")
	}
}

func (s *UserService) evictAggregate(ctx context.Context) {
	if !s.cacheAggregates {
		return
	}
	if err := s.cache.Delete(ctx, userAllKey); err != nil {
		log.Warn().Err(err).Str("key", userAllKey).Msg("Failed to evict aggregate cache entry")
	}
}
