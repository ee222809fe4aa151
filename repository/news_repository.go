package repository

import (
	"context"
	"time"

	"chatiip-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NewsRepository handles database operations for news articles
type NewsRepository struct {
	db *pgxpool.Pool
}

// NewNewsRepository creates a new news repository
func NewNewsRepository(db *pgxpool.Pool) *NewsRepository {
	return &NewsRepository{db: db}
}

const newsColumns = `
	id, title, subtitle, slug, img, content, page_title, page_description, page_keywords,
	page_heading, og_image, canonical, category, approved, scheduled_at, published_at,
	modified_at, created_at, updated_at`

func scanNews(row rowScanner) (*models.News, error) {
	n := &models.News{}
	err := row.Scan(
		&n.ID, &n.Title, &n.Subtitle, &n.Slug, &n.Image, &n.Content,
		&n.PageTitle, &n.PageDescription, &n.PageKeywords, &n.PageHeading,
		&n.OGImage, &n.Canonical, &n.Category, &n.Approved, &n.ScheduledAt,
		&n.PublishedAt, &n.ModifiedAt, &n.CreatedAt, &n.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return n, nil
}

// Create inserts an article
func (r *NewsRepository) Create(ctx context.Context, n *models.News) error {
	query := `
		INSERT INTO news (
			title, subtitle, slug, img, content, page_title, page_description, page_keywords,
			page_heading, og_image, canonical, category, approved, scheduled_at,
			published_at, modified_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
			COALESCE($15, NOW()), COALESCE($16, NOW()))
		RETURNING id, published_at, modified_at, created_at, updated_at`

	err := r.db.QueryRow(
		ctx, query,
		n.Title, n.Subtitle, n.Slug, n.Image, n.Content, n.PageTitle, n.PageDescription,
		n.PageKeywords, n.PageHeading, n.OGImage, n.Canonical, n.Category, n.Approved,
		n.ScheduledAt, nullTime(n.PublishedAt), nullTime(n.ModifiedAt),
	).Scan(&n.ID, &n.PublishedAt, &n.ModifiedAt, &n.CreatedAt, &n.UpdatedAt)

	if isUniqueViolation(err, "slug") {
		return ErrSlugTaken
	}
	return err
}

// GetByID retrieves an article by ID
func (r *NewsRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.News, error) {
	n, err := scanNews(r.db.QueryRow(ctx, `SELECT `+newsColumns+` FROM news WHERE id = $1`, id))
	if err != nil {
		return nil, mapNoRows(err)
	}
	return n, nil
}

// GetBySlug retrieves an article by slug
func (r *NewsRepository) GetBySlug(ctx context.Context, slug string) (*models.News, error) {
	n, err := scanNews(r.db.QueryRow(ctx, `SELECT `+newsColumns+` FROM news WHERE slug = $1`, slug))
	if err != nil {
		return nil, mapNoRows(err)
	}
	return n, nil
}

// SlugExists reports whether another article already uses slug
func (r *NewsRepository) SlugExists(ctx context.Context, slug string, exclude *uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM news WHERE slug = $1 AND ($2::uuid IS NULL OR id <> $2))`,
		slug, exclude,
	).Scan(&exists)
	return exists, err
}

// Update writes every mutable column of n
func (r *NewsRepository) Update(ctx context.Context, n *models.News) error {
	query := `
		UPDATE news SET
			title = $2, subtitle = $3, slug = $4, img = $5, content = $6, page_title = $7,
			page_description = $8, page_keywords = $9, page_heading = $10, og_image = $11,
			canonical = $12, category = $13, approved = $14, scheduled_at = $15,
			modified_at = $16, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := r.db.QueryRow(
		ctx, query,
		n.ID, n.Title, n.Subtitle, n.Slug, n.Image, n.Content, n.PageTitle, n.PageDescription,
		n.PageKeywords, n.PageHeading, n.OGImage, n.Canonical, n.Category, n.Approved,
		n.ScheduledAt, n.ModifiedAt,
	).Scan(&n.UpdatedAt)

	if isUniqueViolation(err, "slug") {
		return ErrSlugTaken
	}
	return mapNoRows(err)
}

// Delete removes an article
func (r *NewsRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM news WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns articles newest published first, optionally for one category
func (r *NewsRepository) List(ctx context.Context, category string) ([]*models.News, error) {
	query := `SELECT ` + newsColumns + ` FROM news`
	args := []any{}
	if category != "" {
		query += ` WHERE category = $1`
		args = append(args, category)
	}
	query += ` ORDER BY published_at DESC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*models.News{}
	for rows.Next() {
		n, err := scanNews(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func nullTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
