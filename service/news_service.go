package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"chatiip-backend/logger"
	"chatiip-backend/models"
	"chatiip-backend/repository"

	"github.com/google/uuid"
)

// NewsService manages news articles
type NewsService struct {
	news NewsRepository
	log  *logger.Logger
	now  func() time.Time
}

// NewsServiceOption is a functional option for NewsService
type NewsServiceOption func(*NewsService)

// WithNewsRepository sets the news repository
func WithNewsRepository(repo NewsRepository) NewsServiceOption {
	return func(s *NewsService) {
		s.news = repo
	}
}

// WithNewsLogger sets the logger
func WithNewsLogger(log *logger.Logger) NewsServiceOption {
	return func(s *NewsService) {
		if log != nil {
			s.log = log
		}
	}
}

// WithNewsClock overrides time.Now
func WithNewsClock(now func() time.Time) NewsServiceOption {
	return func(s *NewsService) {
		if now != nil {
			s.now = now
		}
	}
}

// NewNewsService creates a new news service
func NewNewsService(opts ...NewsServiceOption) *NewsService {
	s := &NewsService{log: logger.NewNop(), now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewsInput carries article fields from the admin editor
type NewsInput struct {
	Title           string `json:"title"`
	Subtitle        string `json:"subtitle"`
	Slug            string `json:"slug"`
	Image           string `json:"img"`
	Content         string `json:"content"`
	PageTitle       string `json:"pageTitle"`
	PageDescription string `json:"pageDescription"`
	PageKeywords    string `json:"pageKeywords"`
	PageHeading     string `json:"pageHeading"`
	OGImage         string `json:"ogImage"`
	Canonical       string `json:"canonical"`
	Category        string `json:"category"`
}

// Create publishes a new article
func (s *NewsService) Create(ctx context.Context, in NewsInput) (*models.News, error) {
	title := strings.TrimSpace(in.Title)
	slug := strings.TrimSpace(in.Slug)
	if title == "" || slug == "" {
		return nil, fmt.Errorf("%w: title and slug are required", ErrValidation)
	}
	taken, err := s.news.SlugExists(ctx, slug, nil)
	if err != nil {
		return nil, fmt.Errorf("check slug: %w", err)
	}
	if taken {
		return nil, fmt.Errorf("%w: slug %q already exists", ErrConflict, slug)
	}

	now := s.now().UTC()
	n := &models.News{Title: title, Slug: slug, PublishedAt: now, ModifiedAt: now}
	applyNewsContent(n, in)
	if err := s.news.Create(ctx, n); err != nil {
		if errors.Is(err, repository.ErrSlugTaken) {
			return nil, fmt.Errorf("%w: slug %q already exists", ErrConflict, slug)
		}
		return nil, fmt.Errorf("create news: %w", err)
	}
	s.log.Info("news created", "id", n.ID, "slug", n.Slug)
	return n, nil
}

// Update overwrites content and SEO fields. An empty title keeps the
// current one and a changed slug is re-checked for uniqueness
func (s *NewsService) Update(ctx context.Context, id uuid.UUID, in NewsInput) (*models.News, error) {
	n, err := s.news.GetByID(ctx, id)
	if err != nil {
		return nil, mapNewsErr(err, id.String())
	}

	if slug := strings.TrimSpace(in.Slug); slug != "" && slug != n.Slug {
		taken, err := s.news.SlugExists(ctx, slug, &n.ID)
		if err != nil {
			return nil, fmt.Errorf("check slug: %w", err)
		}
		if taken {
			return nil, fmt.Errorf("%w: slug %q already exists", ErrConflict, slug)
		}
		n.Slug = slug
	}
	if title := strings.TrimSpace(in.Title); title != "" {
		n.Title = title
	}
	applyNewsContent(n, in)
	n.ModifiedAt = s.now().UTC()

	if err := s.news.Update(ctx, n); err != nil {
		if errors.Is(err, repository.ErrSlugTaken) {
			return nil, fmt.Errorf("%w: slug %q already exists", ErrConflict, n.Slug)
		}
		return nil, mapNewsErr(err, id.String())
	}
	return n, nil
}

// Delete removes an article
func (s *NewsService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.news.Delete(ctx, id); err != nil {
		return mapNewsErr(err, id.String())
	}
	s.log.Info("news deleted", "id", id)
	return nil
}

// GetBySlug fetches one article
func (s *NewsService) GetBySlug(ctx context.Context, slug string) (*models.News, error) {
	n, err := s.news.GetBySlug(ctx, slug)
	if err != nil {
		return nil, mapNewsErr(err, slug)
	}
	return n, nil
}

// List returns articles newest published first, optionally in one category
func (s *NewsService) List(ctx context.Context, category string) ([]*models.News, error) {
	list, err := s.news.List(ctx, strings.TrimSpace(category))
	if err != nil {
		return nil, fmt.Errorf("list news: %w", err)
	}
	if list == nil {
		list = []*models.News{}
	}
	return list, nil
}

func applyNewsContent(n *models.News, in NewsInput) {
	n.Subtitle = in.Subtitle
	n.Image = in.Image
	n.Content = in.Content
	n.PageTitle = in.PageTitle
	n.PageDescription = in.PageDescription
	n.PageKeywords = in.PageKeywords
	n.PageHeading = in.PageHeading
	n.OGImage = in.OGImage
	n.Canonical = in.Canonical
	n.Category = strings.TrimSpace(in.Category)
}

func mapNewsErr(err error, ref string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%w: news %s", ErrNotFound, ref)
	}
	return fmt.Errorf("news: %w", err)
}
