package postgres

import (
	"context"
	"errors"
	"fmt"

	"producers-avenue/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// PostRepo implements ports.PostRepository.
type PostRepo struct {
	pool Pool
}

// NewPostRepo creates a new PostRepo.
func NewPostRepo(pool Pool) *PostRepo {
	return &PostRepo{pool: pool}
}

const postColumns = `id, author_id, content, media_url, created_at`

// Create inserts a post.
func (r *PostRepo) Create(ctx context.Context, p *domain.Post) error {
	query := `INSERT INTO posts (id, author_id, content, media_url, created_at)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := r.pool.Exec(ctx, query, p.ID, p.AuthorID, p.Content, p.MediaURL, p.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert post: %w", err)
	}
	return nil
}

// GetByID fetches a post by UUID.
func (r *PostRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Post, error) {
	query := fmt.Sprintf(`SELECT %s FROM posts WHERE id = $1`, postColumns)

	p := &domain.Post{}
	err := r.pool.QueryRow(ctx, query, id).Scan(&p.ID, &p.AuthorID, &p.Content, &p.MediaURL, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get post by id: %w", err)
	}
	return p, nil
}

// Delete removes a post.
func (r *PostRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("post not found: %s", id)
	}
	return nil
}

// List fetches the global feed, newest first.
func (r *PostRepo) List(ctx context.Context, page, pageSize int) ([]domain.Post, int64, error) {
	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM posts`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count posts: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM posts
		ORDER BY created_at DESC LIMIT $1 OFFSET $2`, postColumns)

	rows, err := r.pool.Query(ctx, query, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	var posts []domain.Post
	for rows.Next() {
		var p domain.Post
		if err := rows.Scan(&p.ID, &p.AuthorID, &p.Content, &p.MediaURL, &p.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan post row: %w", err)
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate post rows: %w", err)
	}
	return posts, total, nil
}
