package repo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"boardserver/internal/domain"
)

// PostRepositoryPG implements domain.PostRepository backed by PostgreSQL.
type PostRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewPostRepository creates a new PostRepositoryPG.
func NewPostRepository(pool *pgxpool.Pool) *PostRepositoryPG {
	return &PostRepositoryPG{pool: pool}
}

const postSelect = `
SELECT p.id, p.author_id, a.login_id, p.title, p.content, p.attachment_key, p.created_at, p.updated_at
FROM posts p
JOIN accounts a ON p.author_id = a.id
`

// List returns all posts joined with their author, newest first.
func (r *PostRepositoryPG) List(ctx context.Context) ([]domain.Post, error) {
	rows, err := r.pool.Query(ctx, postSelect+`ORDER BY p.created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPosts(rows)
}

// GetByID fetches a single post.
func (r *PostRepositoryPG) GetByID(ctx context.Context, id string) (*domain.Post, error) {
	row := r.pool.QueryRow(ctx, postSelect+`WHERE p.id = $1`, id)
	post, err := scanPost(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return post, nil
}

// Create inserts a post.
func (r *PostRepositoryPG) Create(ctx context.Context, post *domain.Post) (*domain.Post, error) {
	row := r.pool.QueryRow(ctx, `
INSERT INTO posts (id, author_id, title, content, attachment_key)
VALUES (gen_random_uuid(), $1, $2, $3, $4)
RETURNING id, created_at, updated_at;
`, post.AuthorID, post.Title, post.Content, post.AttachmentKey)
	created := *post
	if err := row.Scan(&created.ID, &created.CreatedAt, &created.UpdatedAt); err != nil {
		return nil, err
	}
	return &created, nil
}

// Update rewrites title and content. Only the author may update; a mismatch
// reports domain.ErrNotFound to avoid leaking post existence.
func (r *PostRepositoryPG) Update(ctx context.Context, id, authorID, title, content string) error {
	tag, err := r.pool.Exec(ctx, `
UPDATE posts SET title = $3, content = $4, updated_at = NOW()
WHERE id = $1 AND author_id = $2;
`, id, authorID, title, content)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete removes the post when owned by authorID.
func (r *PostRepositoryPG) Delete(ctx context.Context, id, authorID string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM posts WHERE id = $1 AND author_id = $2`, id, authorID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// SearchByTitle returns posts whose title contains the given fragment,
// case-insensitively, newest first.
func (r *PostRepositoryPG) SearchByTitle(ctx context.Context, title string) ([]domain.Post, error) {
	rows, err := r.pool.Query(ctx, postSelect+`WHERE p.title ILIKE '%' || $1 || '%' ORDER BY p.created_at DESC`, title)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPosts(rows)
}

func scanPost(row pgx.Row) (*domain.Post, error) {
	var p domain.Post
	if err := row.Scan(&p.ID, &p.AuthorID, &p.AuthorLoginID, &p.Title, &p.Content, &p.AttachmentKey, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

func collectPosts(rows pgx.Rows) ([]domain.Post, error) {
	var posts []domain.Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, *post)
	}
	return posts, rows.Err()
}

var _ domain.PostRepository = (*PostRepositoryPG)(nil)
