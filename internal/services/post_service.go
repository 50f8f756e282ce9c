package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/avorn/posts-be/internal/cache"
	"github.com/avorn/posts-be/internal/models"
	"github.com/rs/zerolog/log"
)

const postAllKey = "post:all"

func postKey(id int64) string {
	return fmt.Sprintf("post:%d", id)
}

// PostInput carries the mutable fields of a post. The owner is never taken
// from the payload; it comes from the authenticated caller.
type PostInput struct {
	Title string
	Text  string
}

// PostServiceProvider defines the interface for post services.
type PostServiceProvider interface {
	GetPost(ctx context.Context, id int64) (models.Post, error)
	GetAllPosts(ctx context.Context) ([]models.Post, error)
	CreatePost(ctx context.Context, userID int64, in PostInput) (models.Post, error)
	UpdatePost(ctx context.Context, userID, id int64, in PostInput) (models.Post, error)
	DeletePost(ctx context.Context, userID, id int64) (models.Post, error)
}

// PostService provides cache-consistent CRUD for posts. Mutations are
// owner-scoped: a post that exists but belongs to another user is reported
// as missing, so ownership is never leaked.
type PostService struct {
	db              *sql.DB
	cache           cache.Store
	ttl             time.Duration
	cacheAggregates bool
}

// NewPostService creates a new PostService.
func NewPostService(db *sql.DB, store cache.Store, ttl time.Duration, cacheAggregates bool) *PostService {
	return &PostService{db: db, cache: store, ttl: ttl, cacheAggregates: cacheAggregates}
}

// GetPost retrieves a single post, serving from the cache on a hit and
// repopulating the entry best-effort on a miss.
func (s *PostService) GetPost(ctx context.Context, id int64) (models.Post, error) {
	key := postKey(id)
	raw, err := s.cache.Get(ctx, key)
	if err == nil {
		var post models.Post
		if err := json.Unmarshal(raw, &post); err == nil {
			return post, nil
		}
		log.Warn().Str("key", key).Msg("Discarding undecodable cache entry")
	} else if !errors.Is(err, cache.ErrMiss) {
		return models.Post{}, err
	}

	var post models.Post
	row := s.db.QueryRowContext(ctx, "SELECT id, title, text, user_id FROM posts WHERE id = ?", id)
	if err := row.Scan(&post.ID, &post.Title, &post.Text, &post.UserID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Post{}, ErrPostNotFound
		}
		return models.Post{}, err
	}

	s.populate(ctx, key, post)
	return post, nil
}

// GetAllPosts returns every post ordered by insertion, reading the store
// directly unless aggregate caching is enabled.
func (s *PostService) GetAllPosts(ctx context.Context) ([]models.Post, error) {
	if s.cacheAggregates {
		if raw, err := s.cache.Get(ctx, postAllKey); err == nil {
			var posts []models.Post
			if err := json.Unmarshal(raw, &posts); err == nil {
				return posts, nil
			}
			log.Warn().Str("key", postAllKey).Msg("Discarding undecodable cache entry")
		} else if !errors.Is(err, cache.ErrMiss) {
			return nil, err
		}
	}

	rows, err := s.db.QueryContext(ctx, "SELECT id, title, text, user_id FROM posts ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []models.Post
	for rows.Next() {
		var post models.Post
		if err := rows.Scan(&post.ID, &post.Title, &post.Text, &post.UserID); err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if s.cacheAggregates {
		s.populate(ctx, postAllKey, posts)
	}
	return posts, nil
}

// CreatePost inserts a post owned by userID in a single transaction and,
// after commit, writes a fresh cache entry for the assigned id.
func (s *PostService) CreatePost(ctx context.Context, userID int64, in PostInput) (models.Post, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Post{}, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		"INSERT INTO posts (title, text, user_id) VALUES (?, ?, ?)",
		in.Title, in.Text, userID)
	if err != nil {
		return models.Post{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.Post{}, err
	}
	if err := tx.Commit(); err != nil {
		return models.Post{}, err
	}

	post := models.Post{ID: id, Title: in.Title, Text: in.Text, UserID: userID}
	s.populate(ctx, postKey(id), post)
	s.evictAggregate(ctx)
	return post, nil
}

// UpdatePost replaces the mutable fields of a post owned by userID inside
// one transaction. A row owned by someone else scans as zero rows, which
// comes back as ErrPostNotFound. After commit the cache entry is
// overwritten with the fresh value.
func (s *PostService) UpdatePost(ctx context.Context, userID, id int64, in PostInput) (models.Post, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Post{}, err
	}
	defer tx.Rollback()

	var existing int64
	row := tx.QueryRowContext(ctx, "SELECT id FROM posts WHERE id = ? AND user_id = ?", id, userID)
	if err := row.Scan(&existing); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Post{}, ErrPostNotFound
		}
		return models.Post{}, err
	}

	_, err = tx.ExecContext(ctx,
		"UPDATE posts SET title = ?, text = ? WHERE id = ? AND user_id = ?",
		in.Title, in.Text, id, userID)
	if err != nil {
		return models.Post{}, err
	}
	if err := tx.Commit(); err != nil {
		return models.Post{}, err
	}

	post := models.Post{ID: id, Title: in.Title, Text: in.Text, UserID: userID}
	s.populate(ctx, postKey(id), post)
	s.evictAggregate(ctx)
	return post, nil
}

// DeletePost removes a post owned by userID inside one transaction and,
// after commit, drops the cache entry. Returns the post as it existed
// before deletion.
func (s *PostService) DeletePost(ctx context.Context, userID, id int64) (models.Post, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Post{}, err
	}
	defer tx.Rollback()

	var post models.Post
	row := tx.QueryRowContext(ctx, "SELECT id, title, text, user_id FROM posts WHERE id = ? AND user_id = ?", id, userID)
	if err := row.Scan(&post.ID, &post.Title, &post.Text, &post.UserID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Post{}, ErrPostNotFound
		}
		return models.Post{}, err
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM posts WHERE id = ?", id); err != nil {
		return models.Post{}, err
	}
	if err := tx.Commit(); err != nil {
		return models.Post{}, err
	}

	if err := s.cache.Delete(ctx, postKey(id)); err != nil {
		log.Warn().Err(err).Int64("post_id", id).Msg("Failed to evict cache entry")
	}
	s.evictAggregate(ctx)
	return post, nil
}

func (s *PostService) populate(ctx context.Context, key string, value any) {
	raw, err := json.Marshal(value)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Failed to encode cache entry")
		return
	}
	if err := s.cache.Set(ctx, key, raw, s.ttl); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Failed to write cache entry")
	}
}

func (s *PostService) evictAggregate(ctx context.Context) {
	if !s.cacheAggregates {
		return
	}
	if err := s.cache.Delete(ctx, postAllKey); err != nil {
		log.Warn().Err(err).Str("key", postAllKey).Msg("Failed to evict aggregate cache entry")
	}
}
