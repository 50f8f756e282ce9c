package database

import (
	"errors"
	"testing"
)

func TestMigrateAndUniqueLogin(t *testing.T) {
	db, err := New(":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(1)

	if err := Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	// Migrate is idempotent.
	if err := Migrate(db); err != nil {
		t.Fatalf("second migrate: %v", err)
	}

	if _, err := db.Exec(
		"INSERT INTO users (login, password, first_name, last_name, is_admin) VALUES ('alice', 'h', 'A', 'L', 0)"); err != nil {
		t.Fatalf("insert: %v", err)
	}
	_, err = db.Exec(
		"INSERT INTO users (login, password, first_name, last_name, is_admin) VALUES ('alice', 'h2', 'B', 'M', 0)")
	if err == nil {
		t.Fatal("duplicate login accepted")
	}
	if !IsUniqueViolation(err) {
		t.Fatalf("IsUniqueViolation(%v) = false", err)
	}
}

func TestForeignKeysCascade(t *testing.T) {
	db, err := New(":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(1)

	if err := Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	// A post may never reference a nonexistent user.
	if _, err := db.Exec("INSERT INTO posts (title, text, user_id) VALUES ('t', 'x', 99)"); err == nil {
		t.Fatal("orphan post accepted")
	}

	res, err := db.Exec(
		"INSERT INTO users (login, password, first_name, last_name, is_admin) VALUES ('bob', 'h', 'B', 'L', 0)")
	if err != nil {
		t.Fatalf("insert user: %v", err)
	}
	userID, _ := res.LastInsertId()

	res, err = db.Exec("INSERT INTO posts (title, text, user_id) VALUES ('t', 'x', ?)", userID)
	if err != nil {
		t.Fatalf("insert post: %v", err)
	}
	postID, _ := res.LastInsertId()

	if _, err := db.Exec("INSERT INTO images (post_id, image) VALUES (?, x'00ff')", postID); err != nil {
		t.Fatalf("insert image: %v", err)
	}

	// Deleting the user takes its posts and their images with it.
	if _, err := db.Exec("DELETE FROM users WHERE id = ?", userID); err != nil {
		t.Fatalf("delete user: %v", err)
	}
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM posts").Scan(&count); err != nil || count != 0 {
		t.Fatalf("posts left after cascade: %d, %v", count, err)
	}
	if err := db.QueryRow("SELECT COUNT(*) FROM images").Scan(&count); err != nil || count != 0 {
		t.Fatalf("images left after cascade: %d, %v", count, err)
	}
}

func TestIsUniqueViolationNil(t *testing.T) {
	if IsUniqueViolation(nil) {
		t.Fatal("nil error classified as unique violation")
	}
	if IsUniqueViolation(errors.New("disk I/O error")) {
		t.Fatal("unrelated error classified as unique violation")
	}
}
