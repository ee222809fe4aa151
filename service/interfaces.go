package service

import (
	"context"
	"io"

	"chatiip-backend/models"
	"chatiip-backend/repository"
	"chatiip-backend/search"

	"github.com/google/uuid"
)

// DocumentRepository is the document store used by DocumentService
type DocumentRepository interface {
	Create(ctx context.Context, doc *models.LegalDocument) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.LegalDocument, error)
	GetBySlug(ctx context.Context, slug string) (*models.LegalDocument, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	Update(ctx context.Context, doc *models.LegalDocument) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByStatuteNumber(ctx context.Context, number string, limit int) ([]*models.LegalDocument, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*models.LegalDocument, error)
	ListAll(ctx context.Context) ([]*models.LegalDocument, error)
	List(ctx context.Context, f repository.DocumentFilter) ([]*models.LegalDocument, int64, error)
	CountByCategory(ctx context.Context) ([]models.CategoryCount, error)
}

// SearchIndex ranks documents for free-text queries
type SearchIndex interface {
	IndexDocument(doc *models.LegalDocument) error
	Delete(id string) error
	Search(query string, limit int) ([]search.Hit, error)
	Reindex(docs []*models.LegalDocument) error
}

// BlobStore persists uploaded files
type BlobStore interface {
	StoreBase64(ctx context.Context, encoded, originalName, mimeType string) (*models.FileRef, error)
	Delete(ctx context.Context, key string)
	Exists(ctx context.Context, key string) (bool, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Materialize(ctx context.Context, key string) (string, func(), error)
}

// TextExtractor pulls plain text out of a stored file
type TextExtractor interface {
	Extract(ctx context.Context, path, mimeType, originalName string) string
}

// ChatLogRepository stores chat exchanges
type ChatLogRepository interface {
	Create(ctx context.Context, entry *models.ChatLog) error
	List(ctx context.Context, search string, limit, offset int) ([]*models.ChatLog, int64, error)
}

// NewsRepository stores news articles
type NewsRepository interface {
	Create(ctx context.Context, n *models.News) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.News, error)
	GetBySlug(ctx context.Context, slug string) (*models.News, error)
	SlugExists(ctx context.Context, slug string, exclude *uuid.UUID) (bool, error)
	Update(ctx context.Context, n *models.News) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, category string) ([]*models.News, error)
}

// UserRepository stores accounts
type UserRepository interface {
	Create(ctx context.Context, u *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	List(ctx context.Context, q string, limit, offset int) ([]*models.User, int64, error)
}
