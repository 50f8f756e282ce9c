package models

// User represents a user account in the system.
type User struct {
	ID        int64  `json:"id"`
	Login     string `json:"login"`
	Password  string `json:"-"` // bcrypt hash, never exposed to the client
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	IsAdmin   bool   `json:"is_admin"`
}
