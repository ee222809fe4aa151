package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"chatiip-backend/models"
	"chatiip-backend/textutil"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// LegalDocumentRepository handles database operations for legal documents
type LegalDocumentRepository struct {
	db *pgxpool.Pool
}

// NewLegalDocumentRepository creates a new legal document repository
func NewLegalDocumentRepository(db *pgxpool.Pool) *LegalDocumentRepository {
	return &LegalDocumentRepository{db: db}
}

const documentColumns = `
	id, title, slug, statute_number, document_type, issuing_authority,
	category_major, category_minor, issued_at, effective_at, expires_at,
	status, abstract, tags, text_content, outline, file, created_at, updated_at`

func scanDocument(row rowScanner) (*models.LegalDocument, error) {
	doc := &models.LegalDocument{}
	var status string
	err := row.Scan(
		&doc.ID,
		&doc.Title,
		&doc.Slug,
		&doc.StatuteNumber,
		&doc.DocumentType,
		&doc.IssuingAuthority,
		&doc.CategoryMajor,
		&doc.CategoryMinor,
		&doc.IssuedAt,
		&doc.EffectiveAt,
		&doc.ExpiresAt,
		&status,
		&doc.Abstract,
		&doc.Tags,
		&doc.TextContent,
		&doc.Outline,
		&doc.File,
		&doc.CreatedAt,
		&doc.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	doc.Status = models.DocumentStatus(status)
	if doc.Tags == nil {
		doc.Tags = []string{}
	}
	return doc, nil
}

// Create inserts a document and fills its ID and timestamps
func (r *LegalDocumentRepository) Create(ctx context.Context, doc *models.LegalDocument) error {
	query := `
		INSERT INTO legal_documents (
			title, slug, statute_number, statute_number_norm, document_type, issuing_authority,
			category_major, category_minor, issued_at, effective_at, expires_at,
			status, abstract, tags, text_content, outline, file
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRow(
		ctx, query,
		doc.Title,
		doc.Slug,
		doc.StatuteNumber,
		textutil.FoldForMatch(doc.StatuteNumber),
		doc.DocumentType,
		doc.IssuingAuthority,
		doc.CategoryMajor,
		doc.CategoryMinor,
		doc.IssuedAt,
		doc.EffectiveAt,
		doc.ExpiresAt,
		string(doc.Status),
		doc.Abstract,
		nonNilTags(doc.Tags),
		doc.TextContent,
		doc.Outline,
		doc.File,
	).Scan(&doc.ID, &doc.CreatedAt, &doc.UpdatedAt)

	if isUniqueViolation(err, "slug") {
		return ErrSlugTaken
	}
	return err
}

// GetByID retrieves a document by ID
func (r *LegalDocumentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.LegalDocument, error) {
	query := `SELECT ` + documentColumns + ` FROM legal_documents WHERE id = $1`
	doc, err := scanDocument(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, mapNoRows(err)
	}
	return doc, nil
}

// GetBySlug retrieves a document by its unique slug
func (r *LegalDocumentRepository) GetBySlug(ctx context.Context, slug string) (*models.LegalDocument, error) {
	query := `SELECT ` + documentColumns + ` FROM legal_documents WHERE slug = $1`
	doc, err := scanDocument(r.db.QueryRow(ctx, query, slug))
	if err != nil {
		return nil, mapNoRows(err)
	}
	return doc, nil
}

// SlugExists reports whether any document uses slug
func (r *LegalDocumentRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM legal_documents WHERE slug = $1)`, slug).Scan(&exists)
	return exists, err
}

// Update writes every mutable column of doc and refreshes UpdatedAt
func (r *LegalDocumentRepository) Update(ctx context.Context, doc *models.LegalDocument) error {
	query := `
		UPDATE legal_documents SET
			title = $2, slug = $3, statute_number = $4, statute_number_norm = $5,
			document_type = $6, issuing_authority = $7, category_major = $8, category_minor = $9,
			issued_at = $10, effective_at = $11, expires_at = $12, status = $13, abstract = $14,
			tags = $15, text_content = $16, outline = $17, file = $18, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := r.db.QueryRow(
		ctx, query,
		doc.ID,
		doc.Title,
		doc.Slug,
		doc.StatuteNumber,
		textutil.FoldForMatch(doc.StatuteNumber),
		doc.DocumentType,
		doc.IssuingAuthority,
		doc.CategoryMajor,
		doc.CategoryMinor,
		doc.IssuedAt,
		doc.EffectiveAt,
		doc.ExpiresAt,
		string(doc.Status),
		doc.Abstract,
		nonNilTags(doc.Tags),
		doc.TextContent,
		doc.Outline,
		doc.File,
	).Scan(&doc.UpdatedAt)

	if isUniqueViolation(err, "slug") {
		return ErrSlugTaken
	}
	return mapNoRows(err)
}

// Delete removes a document
func (r *LegalDocumentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM legal_documents WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// FindByStatuteNumber returns documents whose folded statute number
// contains number, most recently updated first
func (r *LegalDocumentRepository) FindByStatuteNumber(ctx context.Context, number string, limit int) ([]*models.LegalDocument, error) {
	number = textutil.FoldForMatch(number)
	if number == "" {
		return []*models.LegalDocument{}, nil
	}
	query := `SELECT ` + documentColumns + `
		FROM legal_documents
		WHERE statute_number_norm LIKE '%' || $1 || '%'
		ORDER BY updated_at DESC
		LIMIT $2`
	return r.queryDocuments(ctx, query, escapeLike(number), limit)
}

// GetByIDs loads the given documents in no particular order
func (r *LegalDocumentRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*models.LegalDocument, error) {
	if len(ids) == 0 {
		return []*models.LegalDocument{}, nil
	}
	query := `SELECT ` + documentColumns + ` FROM legal_documents WHERE id = ANY($1)`
	return r.queryDocuments(ctx, query, ids)
}

// ListAll returns every document, used to rebuild the search index
func (r *LegalDocumentRepository) ListAll(ctx context.Context) ([]*models.LegalDocument, error) {
	query := `SELECT ` + documentColumns + ` FROM legal_documents ORDER BY created_at`
	return r.queryDocuments(ctx, query)
}

func (r *LegalDocumentRepository) queryDocuments(ctx context.Context, query string, args ...any) ([]*models.LegalDocument, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	docs := []*models.LegalDocument{}
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// DocumentFilter narrows List
type DocumentFilter struct {
	CategoryMajor string
	CategoryMinor string
	Status        models.DocumentStatus
	IssuedFrom    *time.Time
	IssuedTo      *time.Time
	// IDs restricts results to these documents when non-nil
	IDs []uuid.UUID
	// Limit 0 means no limit
	Limit  int
	Offset int
}

// List returns filtered documents newest first plus the total match count.
// TextContent of the returned documents is cut to the list preview length
// and Outline is not loaded
func (r *LegalDocumentRepository) List(ctx context.Context, f DocumentFilter) ([]*models.LegalDocument, int64, error) {
	var (
		where []string
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if f.CategoryMajor != "" {
		add("category_major = $%d", f.CategoryMajor)
	}
	if f.CategoryMinor != "" {
		add("category_minor = $%d", f.CategoryMinor)
	}
	if f.Status != "" {
		add("status = $%d", string(f.Status))
	}
	if f.IssuedFrom != nil {
		add("issued_at >= $%d", *f.IssuedFrom)
	}
	if f.IssuedTo != nil {
		add("issued_at <= $%d", *f.IssuedTo)
	}
	if f.IDs != nil {
		add("id = ANY($%d)", f.IDs)
	}

	whereSQL := ""
	if len(where) > 0 {
		whereSQL = " WHERE " + strings.Join(where, " AND ")
	}

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM legal_documents`+whereSQL, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`
		SELECT id, title, slug, statute_number, document_type, issuing_authority,
			category_major, category_minor, issued_at, effective_at, expires_at,
			status, abstract, tags, LEFT(text_content, %d), '[]'::jsonb, file, created_at, updated_at
		FROM legal_documents%s
		ORDER BY created_at DESC`, models.PreviewLength, whereSQL)
	if f.Limit > 0 {
		args = append(args, f.Limit, f.Offset)
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	}

	docs, err := r.queryDocuments(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return docs, total, nil
}

// CountByCategory groups documents by major category, largest first
func (r *LegalDocumentRepository) CountByCategory(ctx context.Context) ([]models.CategoryCount, error) {
	query := `
		SELECT COALESCE(NULLIF(category_major, ''), $1) AS category, COUNT(*) AS n
		FROM legal_documents
		GROUP BY category
		ORDER BY n DESC, category`

	rows, err := r.db.Query(ctx, query, models.DefaultCategoryMajor)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.CategoryCount{}
	for rows.Next() {
		var c models.CategoryCount
		if err := rows.Scan(&c.CategoryMajor, &c.Count); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func nonNilTags(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}
