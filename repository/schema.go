package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    email VARCHAR(255) NOT NULL,
    password_hash TEXT NOT NULL,
    name VARCHAR(255) NOT NULL DEFAULT '',
    role VARCHAR(20) NOT NULL DEFAULT 'user' CHECK (role IN ('admin', 'user')),
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS users_email_key ON users (LOWER(email))`,

	`CREATE TABLE IF NOT EXISTS legal_documents (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    title TEXT NOT NULL,
    slug VARCHAR(255) NOT NULL,
    statute_number VARCHAR(255) NOT NULL DEFAULT '',
    -- uppercase, diacritic-free form used for citation lookup
    statute_number_norm VARCHAR(255) NOT NULL DEFAULT '',
    document_type VARCHAR(255) NOT NULL DEFAULT '',
    issuing_authority VARCHAR(255) NOT NULL DEFAULT '',
    category_major VARCHAR(255) NOT NULL DEFAULT 'Khác',
    category_minor VARCHAR(255) NOT NULL DEFAULT '',
    issued_at DATE,
    effective_at DATE,
    expires_at DATE,
    status VARCHAR(50) NOT NULL DEFAULT 'Không xác định'
        CHECK (status IN ('Còn hiệu lực', 'Hết hiệu lực', 'Không xác định')),
    abstract TEXT NOT NULL DEFAULT '',
    tags TEXT[] NOT NULL DEFAULT '{}',
    text_content TEXT NOT NULL DEFAULT '',
    outline JSONB NOT NULL DEFAULT '[]'::jsonb,
    file JSONB,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS legal_documents_slug_key ON legal_documents (slug)`,
	`CREATE INDEX IF NOT EXISTS idx_legal_documents_statute_norm ON legal_documents (statute_number_norm)`,
	`CREATE INDEX IF NOT EXISTS idx_legal_documents_category ON legal_documents (category_major, category_minor)`,
	`CREATE INDEX IF NOT EXISTS idx_legal_documents_status ON legal_documents (status)`,
	`CREATE INDEX IF NOT EXISTS idx_legal_documents_issued_at ON legal_documents (issued_at)`,
	`CREATE INDEX IF NOT EXISTS idx_legal_documents_created_at ON legal_documents (created_at DESC)`,

	`CREATE TABLE IF NOT EXISTS chat_logs (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    question TEXT NOT NULL,
    answer TEXT NOT NULL DEFAULT '',
    source VARCHAR(100) NOT NULL DEFAULT 'chatbot',
    session_id VARCHAR(255) NOT NULL DEFAULT '',
    ip VARCHAR(100) NOT NULL DEFAULT '',
    user_agent TEXT NOT NULL DEFAULT '',
    meta JSONB NOT NULL DEFAULT '{}'::jsonb,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`,
	`CREATE INDEX IF NOT EXISTS idx_chat_logs_created_at ON chat_logs (created_at DESC)`,

	`CREATE TABLE IF NOT EXISTS news (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    title TEXT NOT NULL,
    subtitle TEXT NOT NULL DEFAULT '',
    slug VARCHAR(255) NOT NULL,
    img TEXT NOT NULL DEFAULT '',
    content TEXT NOT NULL DEFAULT '',
    page_title TEXT NOT NULL DEFAULT '',
    page_description TEXT NOT NULL DEFAULT '',
    page_keywords TEXT NOT NULL DEFAULT '',
    page_heading TEXT NOT NULL DEFAULT '',
    og_image TEXT NOT NULL DEFAULT '',
    canonical TEXT NOT NULL DEFAULT '',
    category VARCHAR(255) NOT NULL DEFAULT '',
    approved BOOLEAN NOT NULL DEFAULT true,
    scheduled_at TIMESTAMPTZ,
    published_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    modified_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS news_slug_key ON news (slug)`,
	`CREATE INDEX IF NOT EXISTS idx_news_category ON news (category, published_at DESC)`,
}

// Migrate creates every table and index that does not exist yet
func Migrate(ctx context.Context, db *pgxpool.Pool) error {
	for i, stmt := range schemaStatements {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement %d: %w", i+1, err)
		}
	}
	return nil
}
