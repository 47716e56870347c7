package domain

import "time"

// Post is a board entry authored by an account. AttachmentKey points into the
// object store when the post carries an upload, empty otherwise.
type Post struct {
	ID            string
	AuthorID      string
	AuthorLoginID string
	Title         string
	Content       string
	AttachmentKey string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Comment is a reply attached to a post.
type Comment struct {
	ID            string
	PostID        string
	AuthorID      string
	AuthorLoginID string
	Content       string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
