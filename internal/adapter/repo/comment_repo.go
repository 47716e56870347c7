package repo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"boardserver/internal/domain"
)

// CommentRepositoryPG implements domain.CommentRepository backed by PostgreSQL.
type CommentRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewCommentRepository creates a new CommentRepositoryPG.
func NewCommentRepository(pool *pgxpool.Pool) *CommentRepositoryPG {
	return &CommentRepositoryPG{pool: pool}
}

// ListByPostID returns a post's comments, oldest first.
func (r *CommentRepositoryPG) ListByPostID(ctx context.Context, postID string) ([]domain.Comment, error) {
	rows, err := r.pool.Query(ctx, `
SELECT c.id, c.post_id, c.author_id, a.login_id, c.content, c.created_at, c.updated_at
FROM comments c
JOIN accounts a ON c.author_id = a.id
WHERE c.post_id = $1
ORDER BY c.created_at ASC;
`, postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comments []domain.Comment
	for rows.Next() {
		var c domain.Comment
		if err := rows.Scan(&c.ID, &c.PostID, &c.AuthorID, &c.AuthorLoginID, &c.Content, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

// Create inserts a comment. A missing post surfaces as domain.ErrNotFound.
func (r *CommentRepositoryPG) Create(ctx context.Context, comment *domain.Comment) (*domain.Comment, error) {
	row := r.pool.QueryRow(ctx, `
INSERT INTO comments (id, post_id, author_id, content)
VALUES (gen_random_uuid(), $1, $2, $3)
RETURNING id, created_at, updated_at;
`, comment.PostID, comment.AuthorID, comment.Content)
	created := *comment
	if err := row.Scan(&created.ID, &created.CreatedAt, &created.UpdatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &created, nil
}

// Update rewrites the comment body when owned by authorID.
func (r *CommentRepositoryPG) Update(ctx context.Context, id, authorID, content string) error {
	tag, err := r.pool.Exec(ctx, `
UPDATE comments SET content = $3, updated_at = NOW()
WHERE id = $1 AND author_id = $2;
`, id, authorID, content)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete removes the comment when owned by authorID.
func (r *CommentRepositoryPG) Delete(ctx context.Context, id, authorID string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM comments WHERE id = $1 AND author_id = $2`, id, authorID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

var _ domain.CommentRepository = (*CommentRepositoryPG)(nil)
