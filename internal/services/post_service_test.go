package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestPostCreateGetRoundTrip(t *testing.T) {
	db := newTestDB(t)
	users, _ := newTestUserService(t, db, time.Hour)
	posts, _ := newTestPostService(t, db, time.Hour)
	ctx := context.Background()

	ownerID := mustCreateUser(t, users, UserInput{
		Login: uniqueLogin(), Password: "p", FirstName: "F", LastName: "L",
	})

	created, err := posts.CreatePost(ctx, ownerID, PostInput{Title: "hello", Text: "world"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == 0 || created.UserID != ownerID {
		t.Fatalf("create = %+v, want assigned id owned by %d", created, ownerID)
	}

	got, err := posts.GetPost(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != created {
		t.Fatalf("get = %+v, want %+v", got, created)
	}
}

func TestPostGetNotFound(t *testing.T) {
	db := newTestDB(t)
	posts, _ := newTestPostService(t, db, time.Hour)

	if _, err := posts.GetPost(context.Background(), 999); !errors.Is(err, ErrPostNotFound) {
		t.Fatalf("get missing post: %v, want ErrPostNotFound", err)
	}
}

// A caller mutating someone else's post sees not-found, never a hint that
// the row exists.
func TestPostOwnershipMasking(t *testing.T) {
	db := newTestDB(t)
	users, _ := newTestUserService(t, db, time.Hour)
	posts, _ := newTestPostService(t, db, time.Hour)
	ctx := context.Background()

	ownerID := mustCreateUser(t, users, UserInput{
		Login: uniqueLogin(), Password: "p", FirstName: "Owner", LastName: "L",
	})
	otherID := mustCreateUser(t, users, UserInput{
		Login: uniqueLogin(), Password: "p", FirstName: "Other", LastName: "L",
	})

	post, err := posts.CreatePost(ctx, ownerID, PostInput{Title: "t", Text: "x"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := posts.UpdatePost(ctx, otherID, post.ID, PostInput{Title: "hijack", Text: "x"}); !errors.Is(err, ErrPostNotFound) {
		t.Fatalf("foreign update: %v, want ErrPostNotFound", err)
	}
	if _, err := posts.DeletePost(ctx, otherID, post.ID); !errors.Is(err, ErrPostNotFound) {
		t.Fatalf("foreign delete: %v, want ErrPostNotFound", err)
	}

	// Reads stay open to any authenticated caller.
	if _, err := posts.GetPost(ctx, post.ID); err != nil {
		t.Fatalf("read by non-owner failed: %v", err)
	}

	// The owner is unaffected.
	updated, err := posts.UpdatePost(ctx, ownerID, post.ID, PostInput{Title: "mine", Text: "still"})
	if err != nil {
		t.Fatalf("owner update: %v", err)
	}
	if updated.Title != "mine" {
		t.Fatalf("owner update not applied: %+v", updated)
	}
}

func TestPostUpdateReadAfterWrite(t *testing.T) {
	db := newTestDB(t)
	users, _ := newTestUserService(t, db, time.Hour)
	posts, _ := newTestPostService(t, db, time.Hour)
	ctx := context.Background()

	ownerID := mustCreateUser(t, users, UserInput{
		Login: uniqueLogin(), Password: "p", FirstName: "F", LastName: "L",
	})
	post, err := posts.CreatePost(ctx, ownerID, PostInput{Title: "v1", Text: "x"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	updated, err := posts.UpdatePost(ctx, ownerID, post.ID, PostInput{Title: "v2", Text: "y"})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	got, err := posts.GetPost(ctx, post.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != updated {
		t.Fatalf("get after update = %+v, want %+v", got, updated)
	}
}

func TestPostDeleteEvictsCache(t *testing.T) {
	db := newTestDB(t)
	users, _ := newTestUserService(t, db, time.Hour)
	posts, _ := newTestPostService(t, db, time.Hour)
	ctx := context.Background()

	ownerID := mustCreateUser(t, users, UserInput{
		Login: uniqueLogin(), Password: "p", FirstName: "F", LastName: "L",
	})
	post, err := posts.CreatePost(ctx, ownerID, PostInput{Title: "t", Text: "x"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// Warm the per-id entry, then delete.
	if _, err := posts.GetPost(ctx, post.ID); err != nil {
		t.Fatalf("get: %v", err)
	}
	deleted, err := posts.DeletePost(ctx, ownerID, post.ID)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if deleted != post {
		t.Fatalf("delete returned %+v, want the pre-delete entity %+v", deleted, post)
	}

	if _, err := posts.GetPost(ctx, post.ID); !errors.Is(err, ErrPostNotFound) {
		t.Fatalf("get after delete: %v, want ErrPostNotFound", err)
	}
}

func TestPostConcurrentCreatesDistinctIDs(t *testing.T) {
	db := newTestDB(t)
	users, _ := newTestUserService(t, db, time.Hour)
	posts, _ := newTestPostService(t, db, time.Hour)
	ctx := context.Background()

	ownerID := mustCreateUser(t, users, UserInput{
		Login: uniqueLogin(), Password: "p", FirstName: "F", LastName: "L",
	})

	const n = 8
	ids := make([]int64, n)
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			post, err := posts.CreatePost(ctx, ownerID, PostInput{Title: "t", Text: "x"})
			ids[i], errs[i] = post.ID, err
		}(i)
	}
	wg.Wait()

	seen := make(map[int64]bool, n)
	for i := 0; i < n; i++ {
		if errs[i] != nil {
			t.Fatalf("concurrent create %d: %v", i, errs[i])
		}
		if seen[ids[i]] {
			t.Fatalf("duplicate id %d", ids[i])
		}
		seen[ids[i]] = true

		// Every row must be fully readable, never half-constructed.
		got, err := posts.GetPost(ctx, ids[i])
		if err != nil {
			t.Fatalf("get created post %d: %v", ids[i], err)
		}
		if got.Title != "t" || got.Text != "x" || got.UserID != ownerID {
			t.Fatalf("partial row: %+v", got)
		}
	}
}

func TestPostGetAllOrderedByInsertion(t *testing.T) {
	db := newTestDB(t)
	users, _ := newTestUserService(t, db, time.Hour)
	posts, _ := newTestPostService(t, db, time.Hour)
	ctx := context.Background()

	ownerID := mustCreateUser(t, users, UserInput{
		Login: uniqueLogin(), Password: "p", FirstName: "F", LastName: "L",
	})
	first, err := posts.CreatePost(ctx, ownerID, PostInput{Title: "1", Text: "x"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	second, err := posts.CreatePost(ctx, ownerID, PostInput{Title: "2", Text: "y"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	all, err := posts.GetAllPosts(ctx)
	if err != nil {
		t.Fatalf("get all: %v", err)
	}
	if len(all) != 2 || all[0].ID != first.ID || all[1].ID != second.ID {
		t.Fatalf("get all = %+v, want [%d %d] in order", all, first.ID, second.ID)
	}
}
