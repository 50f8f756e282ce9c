package models

// Image is a binary attachment tied to a post. Images live in the schema
// only; there is no direct HTTP surface for them.
type Image struct {
	ID     int64  `json:"id"`
	PostID int64  `json:"post_id"`
	Image  []byte `json:"image"`
}
