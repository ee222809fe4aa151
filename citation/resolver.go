package citation

import (
	"context"
	"fmt"
	"strings"

	"chatiip-backend/models"
)

// DocumentFinder is the store surface the resolver queries
type DocumentFinder interface {
	// FindByStatuteNumber matches folded statute numbers containing
	// number, most recently updated first
	FindByStatuteNumber(ctx context.Context, number string, limit int) ([]*models.LegalDocument, error)
	// SearchFullText ranks documents by relevance to query
	SearchFullText(ctx context.Context, query string, limit int) ([]*models.LegalDocument, error)
}

// Resolver turns a question into citations
type Resolver struct {
	finder        DocumentFinder
	statuteLimit  int
	fullTextLimit int
	excerptLength int
}

// Option configures a Resolver
type Option func(*Resolver)

// WithStatuteLimit caps documents taken per statute number
func WithStatuteLimit(n int) Option {
	return func(r *Resolver) {
		if n > 0 {
			r.statuteLimit = n
		}
	}
}

// WithFullTextLimit caps documents taken from full-text search
func WithFullTextLimit(n int) Option {
	return func(r *Resolver) {
		if n > 0 {
			r.fullTextLimit = n
		}
	}
}

// WithExcerptLength sets the excerpt size in characters
func WithExcerptLength(n int) Option {
	return func(r *Resolver) {
		if n > 0 {
			r.excerptLength = n
		}
	}
}

// NewResolver creates a resolver backed by finder
func NewResolver(finder DocumentFinder, opts ...Option) *Resolver {
	r := &Resolver{
		finder:        finder,
		statuteLimit:  3,
		fullTextLimit: 2,
		excerptLength: DefaultExcerptLength,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve looks up documents for question. baseURL (scheme://host) prefixes
// relative download links.
//
// A statute number in the question is tried first. Full-text search runs
// only when that lookup returns nothing, and its excerpts are plain
// prefixes since there is no token to center on
func (r *Resolver) Resolve(ctx context.Context, question, baseURL string) ([]models.Citation, error) {
	candidates := ExtractCandidates(question)

	var (
		docs   []*models.LegalDocument
		needle string
		err    error
	)
	if len(candidates) > 0 {
		needle = candidates[0]
		docs, err = r.finder.FindByStatuteNumber(ctx, needle, r.statuteLimit)
		if err != nil {
			return nil, fmt.Errorf("find by statute number %q: %w", needle, err)
		}
	}
	if len(docs) == 0 {
		needle = ""
		if strings.TrimSpace(question) != "" {
			docs, err = r.finder.SearchFullText(ctx, question, r.fullTextLimit)
			if err != nil {
				return nil, fmt.Errorf("full-text search: %w", err)
			}
		}
	}

	citations := make([]models.Citation, 0, len(docs))
	for _, d := range docs {
		if d == nil || !d.HasCitableContent() {
			continue
		}
		status := d.Status
		if status == "" {
			status = models.StatusUnspecified
		}
		body := d.TextContent
		if body == "" {
			body = d.Abstract
		}
		citations = append(citations, models.Citation{
			ID:            d.ID,
			Title:         d.Title,
			StatuteNumber: d.StatuteNumber,
			Status:        status,
			URL:           PublicURL(d.File, baseURL),
			Excerpt:       Excerpt(body, needle, r.excerptLength),
		})
	}
	return citations, nil
}

// PublicURL returns the absolute download link of f. Absolute URLs pass
// through unchanged; relative ones are joined onto baseURL
func PublicURL(f *models.FileRef, baseURL string) string {
	if f == nil || f.PublicURL == "" {
		return ""
	}
	rel := f.PublicURL
	lower := strings.ToLower(rel)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return rel
	}
	if !strings.HasPrefix(rel, "/") {
		rel = "/" + rel
	}
	return strings.TrimSuffix(baseURL, "/") + rel
}
