package domain

import "context"

// AccountRepository defines persistence for accounts.
type AccountRepository interface {
	Create(ctx context.Context, account *Account) (*Account, error)
	GetByID(ctx context.Context, id string) (*Account, error)
	GetByLoginID(ctx context.Context, loginID string) (*Account, error)
	FindLoginID(ctx context.Context, name, email string) (string, error)
	Update(ctx context.Context, id string, update AccountUpdate) error
	Delete(ctx context.Context, id string) error
}

// PostRepository defines persistence for posts.
type PostRepository interface {
	List(ctx context.Context) ([]Post, error)
	GetByID(ctx context.Context, id string) (*Post, error)
	Create(ctx context.Context, post *Post) (*Post, error)
	Update(ctx context.Context, id, authorID, title, content string) error
	Delete(ctx context.Context, id, authorID string) error
	SearchByTitle(ctx context.Context, title string) ([]Post, error)
}

// CommentRepository defines persistence for comments.
type CommentRepository interface {
	ListByPostID(ctx context.Context, postID string) ([]Comment, error)
	Create(ctx context.Context, comment *Comment) (*Comment, error)
	Update(ctx context.Context, id, authorID, content string) error
	Delete(ctx context.Context, id, authorID string) error
}

// HistoryRepository is the narrow surface over the audit-log document store.
type HistoryRepository interface {
	Insert(ctx context.Context, entry *HistoryEntry) error
	Query(ctx context.Context, filter HistoryFilter) ([]HistoryEntry, error)
}

// LoginTotalStore is the durable side of login accounting: an append-only
// ledger whose latest row carries the cumulative total and the last day it
// covers. Append must be conditional on the day not having been rolled up
// yet; that condition is the exactly-once guard for the daily rollup.
type LoginTotalStore interface {
	// Current returns the cumulative total and the last rolled-up day
	// (formatted 2006-01-02, empty when the ledger is empty).
	Current(ctx context.Context) (total int64, lastDay string, err error)
	// Append records a completed rollup for day. It reports inserted=false
	// without error when the day was already rolled up.
	Append(ctx context.Context, day string, total, visitors int64) (inserted bool, err error)
}

// CredentialVerifier checks a login id / password pair and returns the
// matching account. Credential storage and verification live behind this
// interface; session accounting never sees a password.
type CredentialVerifier interface {
	Verify(ctx context.Context, loginID, password string) (*Account, error)
}
