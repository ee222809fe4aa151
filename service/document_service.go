package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"chatiip-backend/logger"
	"chatiip-backend/models"
	"chatiip-backend/outline"
	"chatiip-backend/repository"
	"chatiip-backend/storage"
	"chatiip-backend/textutil"

	"github.com/google/uuid"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
	// searchWindow caps how many ranked hits a filtered search considers
	searchWindow = 1000
	// slugAttempts bounds retries when a concurrent insert takes the slug
	slugAttempts = 3
)

// DocumentService orchestrates storage, extraction, outlining and indexing
// of legal documents
type DocumentService struct {
	docs      DocumentRepository
	blobs     BlobStore
	extractor TextExtractor
	index     SearchIndex
	log       *logger.Logger
	now       func() time.Time
}

// DocumentServiceOption is a functional option for DocumentService
type DocumentServiceOption func(*DocumentService)

// WithDocumentRepository sets the document repository
func WithDocumentRepository(repo DocumentRepository) DocumentServiceOption {
	return func(s *DocumentService) {
		s.docs = repo
	}
}

// WithBlobStore sets the file store
func WithBlobStore(blobs BlobStore) DocumentServiceOption {
	return func(s *DocumentService) {
		s.blobs = blobs
	}
}

// WithTextExtractor sets the text extractor
func WithTextExtractor(e TextExtractor) DocumentServiceOption {
	return func(s *DocumentService) {
		s.extractor = e
	}
}

// WithSearchIndex sets the full-text index
func WithSearchIndex(idx SearchIndex) DocumentServiceOption {
	return func(s *DocumentService) {
		s.index = idx
	}
}

// WithDocumentLogger sets the logger
func WithDocumentLogger(log *logger.Logger) DocumentServiceOption {
	return func(s *DocumentService) {
		if log != nil {
			s.log = log
		}
	}
}

// WithDocumentClock overrides time.Now, used for fallback slugs
func WithDocumentClock(now func() time.Time) DocumentServiceOption {
	return func(s *DocumentService) {
		if now != nil {
			s.now = now
		}
	}
}

// NewDocumentService creates a new document service
func NewDocumentService(opts ...DocumentServiceOption) *DocumentService {
	s := &DocumentService{
		log: logger.NewNop(),
		now: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create validates input, stores the optional file, extracts its text and
// persists the document with a freshly built outline
func (s *DocumentService) Create(ctx context.Context, in DocumentInput) (*models.LegalDocument, error) {
	if s.docs == nil {
		return nil, errors.New("document repository not set")
	}

	title := trimmed(in.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrValidation)
	}
	status := models.StatusUnspecified
	if v := trimmed(in.Status); v != "" {
		status = models.DocumentStatus(v)
		if !status.Valid() {
			return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, v)
		}
	}

	doc := &models.LegalDocument{
		Title:            title,
		StatuteNumber:    trimmed(in.StatuteNumber),
		DocumentType:     trimmed(in.DocumentType),
		IssuingAuthority: trimmed(in.IssuingAuthority),
		CategoryMajor:    trimmed(in.CategoryMajor),
		CategoryMinor:    trimmed(in.CategoryMinor),
		IssuedAt:         parseDateField(in.IssuedAt),
		EffectiveAt:      parseDateField(in.EffectiveAt),
		ExpiresAt:        parseDateField(in.ExpiresAt),
		Status:           status,
		Abstract:         trimmed(in.Abstract),
		Tags:             []string{},
	}
	if doc.CategoryMajor == "" {
		doc.CategoryMajor = models.DefaultCategoryMajor
	}
	if in.Tags != nil {
		doc.Tags = []string(*in.Tags)
	}

	file, extracted, err := s.storeFile(ctx, in)
	if err != nil {
		return nil, err
	}
	doc.File = file

	text := extracted
	if in.TextContent != nil && strings.TrimSpace(*in.TextContent) != "" {
		text = *in.TextContent
	}
	doc.TextContent = strings.TrimSpace(text)
	doc.Outline = outline.Build(doc.TextContent)

	base := s.baseSlug(doc.StatuteNumber, doc.Title)
	if in.Slug != nil {
		if explicit := textutil.Slugify(*in.Slug); explicit != "" {
			base = explicit
		}
	}

	for attempt := 1; ; attempt++ {
		doc.Slug, err = s.EnsureUniqueSlug(ctx, base)
		if err == nil {
			err = s.docs.Create(ctx, doc)
		}
		if err == nil {
			break
		}
		if errors.Is(err, repository.ErrSlugTaken) && attempt < slugAttempts {
			s.log.Debug("slug taken concurrently, retrying", "slug", doc.Slug, "attempt", attempt)
			continue
		}
		if file != nil {
			s.blobs.Delete(ctx, file.StoragePath)
		}
		if errors.Is(err, repository.ErrSlugTaken) {
			return nil, fmt.Errorf("%w: slug %q already exists", ErrConflict, doc.Slug)
		}
		return nil, fmt.Errorf("create document: %w", err)
	}

	s.syncIndex(doc)
	s.log.Info("document created", "id", doc.ID, "slug", doc.Slug, "has_file", doc.File != nil, "text_chars", len(doc.TextContent))
	return doc, nil
}

// Update applies the fields present in input to the document with id
func (s *DocumentService) Update(ctx context.Context, id uuid.UUID, in DocumentInput) (*models.LegalDocument, error) {
	doc, err := s.getByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, fmt.Errorf("%w: title cannot be empty", ErrValidation)
		}
		doc.Title = title
	}
	if in.Status != nil {
		status := models.DocumentStatus(strings.TrimSpace(*in.Status))
		if status == "" {
			status = models.StatusUnspecified
		}
		if !status.Valid() {
			return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, *in.Status)
		}
		doc.Status = status
	}
	if in.Slug != nil {
		slug := textutil.Slugify(*in.Slug)
		if slug == "" {
			return nil, fmt.Errorf("%w: slug cannot be empty", ErrValidation)
		}
		if slug != doc.Slug {
			taken, err := s.docs.SlugExists(ctx, slug)
			if err != nil {
				return nil, fmt.Errorf("check slug: %w", err)
			}
			if taken {
				return nil, fmt.Errorf("%w: slug %q already exists", ErrConflict, slug)
			}
			doc.Slug = slug
		}
	}
	if in.StatuteNumber != nil {
		doc.StatuteNumber = strings.TrimSpace(*in.StatuteNumber)
	}
	if in.DocumentType != nil {
		doc.DocumentType = strings.TrimSpace(*in.DocumentType)
	}
	if in.IssuingAuthority != nil {
		doc.IssuingAuthority = strings.TrimSpace(*in.IssuingAuthority)
	}
	if in.CategoryMajor != nil {
		doc.CategoryMajor = strings.TrimSpace(*in.CategoryMajor)
		if doc.CategoryMajor == "" {
			doc.CategoryMajor = models.DefaultCategoryMajor
		}
	}
	if in.CategoryMinor != nil {
		doc.CategoryMinor = strings.TrimSpace(*in.CategoryMinor)
	}
	if in.IssuedAt != nil {
		doc.IssuedAt = textutil.ParseDate(*in.IssuedAt)
	}
	if in.EffectiveAt != nil {
		doc.EffectiveAt = textutil.ParseDate(*in.EffectiveAt)
	}
	if in.ExpiresAt != nil {
		doc.ExpiresAt = textutil.ParseDate(*in.ExpiresAt)
	}
	if in.Abstract != nil {
		doc.Abstract = strings.TrimSpace(*in.Abstract)
	}
	if in.Tags != nil {
		doc.Tags = []string(*in.Tags)
	}

	newFile, extracted, err := s.storeFile(ctx, in)
	if err != nil {
		return nil, err
	}
	var oldFile *models.FileRef
	if newFile != nil {
		oldFile = doc.File
		doc.File = newFile
		if in.TextContent == nil {
			doc.TextContent = extracted
		}
	}
	if in.TextContent != nil {
		doc.TextContent = strings.TrimSpace(*in.TextContent)
	}

	if bool(in.RegenerateOutline) || newFile != nil || in.TextContent != nil {
		doc.Outline = outline.Build(doc.TextContent)
	}

	if err := s.docs.Update(ctx, doc); err != nil {
		if newFile != nil {
			s.blobs.Delete(ctx, newFile.StoragePath)
		}
		switch {
		case errors.Is(err, repository.ErrSlugTaken):
			return nil, fmt.Errorf("%w: slug %q already exists", ErrConflict, doc.Slug)
		case errors.Is(err, repository.ErrNotFound):
			return nil, fmt.Errorf("%w: document %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("update document: %w", err)
	}
	if oldFile != nil {
		s.blobs.Delete(ctx, oldFile.StoragePath)
	}

	s.syncIndex(doc)
	s.log.Info("document updated", "id", doc.ID, "slug", doc.Slug, "file_replaced", newFile != nil)
	return doc, nil
}

// Delete removes the document and its file
func (s *DocumentService) Delete(ctx context.Context, id uuid.UUID) error {
	doc, err := s.getByID(ctx, id)
	if err != nil {
		return err
	}
	if doc.File != nil && s.blobs != nil {
		s.blobs.Delete(ctx, doc.File.StoragePath)
	}
	if err := s.docs.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%w: document %s", ErrNotFound, id)
		}
		return fmt.Errorf("delete document: %w", err)
	}
	if s.index != nil {
		if err := s.index.Delete(id.String()); err != nil {
			s.log.Warn("search index delete failed", "id", id, "error", err)
		}
	}
	s.log.Info("document deleted", "id", id, "slug", doc.Slug)
	return nil
}

// GetBySlug fetches one document with its full text and outline
func (s *DocumentService) GetBySlug(ctx context.Context, slug string) (*models.LegalDocument, error) {
	doc, err := s.docs.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: document %q", ErrNotFound, slug)
		}
		return nil, fmt.Errorf("get document: %w", err)
	}
	return doc, nil
}

// GetByID fetches one document
func (s *DocumentService) GetByID(ctx context.Context, id uuid.UUID) (*models.LegalDocument, error) {
	return s.getByID(ctx, id)
}

// ListDocumentsRequest represents a list query
type ListDocumentsRequest struct {
	Search        string
	CategoryMajor string
	CategoryMinor string
	Status        models.DocumentStatus
	IssuedFrom    *time.Time
	IssuedTo      *time.Time
	Page          int
	Limit         int
}

// ListDocumentsResult represents one page of documents
type ListDocumentsResult struct {
	Items []models.LegalDocumentListItem `json:"data"`
	Page  int                            `json:"page"`
	Limit int                            `json:"limit"`
	Total int64                          `json:"total"`
}

// List returns a page of documents. With a search term results are ranked
// by relevance then recency, otherwise newest first
func (s *DocumentService) List(ctx context.Context, req ListDocumentsRequest) (*ListDocumentsResult, error) {
	page := req.Page
	if page < 1 {
		page = 1
	}
	limit := req.Limit
	if limit < 1 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	filter := repository.DocumentFilter{
		CategoryMajor: strings.TrimSpace(req.CategoryMajor),
		CategoryMinor: strings.TrimSpace(req.CategoryMinor),
		Status:        req.Status,
		IssuedFrom:    req.IssuedFrom,
		IssuedTo:      req.IssuedTo,
	}
	result := &ListDocumentsResult{Page: page, Limit: limit, Items: []models.LegalDocumentListItem{}}

	search := strings.TrimSpace(req.Search)
	if search == "" {
		filter.Limit = limit
		filter.Offset = (page - 1) * limit
		docs, total, err := s.docs.List(ctx, filter)
		if err != nil {
			return nil, fmt.Errorf("list documents: %w", err)
		}
		for _, d := range docs {
			result.Items = append(result.Items, d.ToListItem())
		}
		result.Total = total
		return result, nil
	}

	if s.index == nil {
		return nil, errors.New("search index not set")
	}
	hits, err := s.index.Search(search, searchWindow)
	if err != nil {
		return nil, fmt.Errorf("search documents: %w", err)
	}
	if len(hits) == 0 {
		return result, nil
	}

	rank := make(map[uuid.UUID]int, len(hits))
	filter.IDs = make([]uuid.UUID, 0, len(hits))
	for i, h := range hits {
		id, err := uuid.Parse(h.ID)
		if err != nil {
			continue
		}
		rank[id] = i
		filter.IDs = append(filter.IDs, id)
	}
	docs, _, err := s.docs.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	sort.SliceStable(docs, func(i, j int) bool {
		return rank[docs[i].ID] < rank[docs[j].ID]
	})

	result.Total = int64(len(docs))
	start := (page - 1) * limit
	if start > len(docs) {
		start = len(docs)
	}
	end := start + limit
	if end > len(docs) {
		end = len(docs)
	}
	for _, d := range docs[start:end] {
		item := d.ToListItem()
		item.Score = hits[rank[d.ID]].Score
		result.Items = append(result.Items, item)
	}
	return result, nil
}

// CategoryStats counts documents per major category
func (s *DocumentService) CategoryStats(ctx context.Context) ([]models.CategoryCount, error) {
	stats, err := s.docs.CountByCategory(ctx)
	if err != nil {
		return nil, fmt.Errorf("category stats: %w", err)
	}
	return stats, nil
}

// OpenFile streams the file attached to document id. A document without a
// file, or whose file has gone missing from storage, is NotFound
func (s *DocumentService) OpenFile(ctx context.Context, id uuid.UUID) (io.ReadCloser, *models.FileRef, error) {
	doc, err := s.getByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if doc.File == nil || doc.File.StoragePath == "" {
		return nil, nil, fmt.Errorf("%w: document %s has no file", ErrNotFound, id)
	}
	ok, err := s.blobs.Exists(ctx, doc.File.StoragePath)
	if err != nil {
		return nil, nil, fmt.Errorf("check file: %w", err)
	}
	if !ok {
		s.log.Warn("document file missing from storage", "id", id, "storage_path", doc.File.StoragePath)
		return nil, nil, fmt.Errorf("%w: file of document %s", ErrNotFound, id)
	}
	rc, err := s.blobs.Open(ctx, doc.File.StoragePath)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil, fmt.Errorf("%w: file of document %s", ErrNotFound, id)
		}
		return nil, nil, fmt.Errorf("open file: %w", err)
	}
	return rc, doc.File, nil
}

// FindByStatuteNumber returns documents whose statute number contains number
func (s *DocumentService) FindByStatuteNumber(ctx context.Context, number string, limit int) ([]*models.LegalDocument, error) {
	return s.docs.FindByStatuteNumber(ctx, number, limit)
}

// SearchFullText returns up to limit documents ranked by relevance to query
func (s *DocumentService) SearchFullText(ctx context.Context, query string, limit int) ([]*models.LegalDocument, error) {
	if s.index == nil {
		return nil, nil
	}
	hits, err := s.index.Search(query, limit)
	if err != nil {
		return nil, err
	}
	if len(hits) == 0 {
		return nil, nil
	}
	ids := make([]uuid.UUID, 0, len(hits))
	for _, h := range hits {
		if id, err := uuid.Parse(h.ID); err == nil {
			ids = append(ids, id)
		}
	}
	docs, err := s.docs.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*models.LegalDocument, len(docs))
	for _, d := range docs {
		byID[d.ID] = d
	}
	out := make([]*models.LegalDocument, 0, len(docs))
	for _, id := range ids {
		if d, ok := byID[id]; ok {
			out = append(out, d)
		}
	}
	return out, nil
}

// Reindex rebuilds the search index from the store and returns the number
// of documents indexed
func (s *DocumentService) Reindex(ctx context.Context) (int, error) {
	if s.index == nil {
		return 0, errors.New("search index not set")
	}
	docs, err := s.docs.ListAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("load documents: %w", err)
	}
	if err := s.index.Reindex(docs); err != nil {
		return 0, fmt.Errorf("reindex: %w", err)
	}
	s.log.Info("search index rebuilt", "documents", len(docs))
	return len(docs), nil
}

// EnsureUniqueSlug returns base, or base-1, base-2, ... whichever is free
func (s *DocumentService) EnsureUniqueSlug(ctx context.Context, base string) (string, error) {
	slug := base
	for i := 1; ; i++ {
		taken, err := s.docs.SlugExists(ctx, slug)
		if err != nil {
			return "", fmt.Errorf("check slug: %w", err)
		}
		if !taken {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%d", base, i)
	}
}

func (s *DocumentService) baseSlug(statuteNumber, title string) string {
	source := title
	if statuteNumber != "" {
		source = statuteNumber + "-" + title
	}
	if slug := textutil.Slugify(source); slug != "" {
		return slug
	}
	return fmt.Sprintf("vb-%d", s.now().UnixMilli())
}

// storeFile persists the uploaded payload, if any, and extracts its text
func (s *DocumentService) storeFile(ctx context.Context, in DocumentInput) (*models.FileRef, string, error) {
	if strings.TrimSpace(in.FileBase64) == "" {
		return nil, "", nil
	}
	if s.blobs == nil {
		return nil, "", errors.New("file store not set")
	}
	ref, err := s.blobs.StoreBase64(ctx, in.FileBase64, strings.TrimSpace(in.FileName), strings.TrimSpace(in.FileMimeType))
	switch {
	case errors.Is(err, storage.ErrPayloadTooLarge):
		return nil, "", err
	case errors.Is(err, storage.ErrInvalidPayload):
		return nil, "", fmt.Errorf("%w: %v", ErrValidation, err)
	case err != nil:
		return nil, "", fmt.Errorf("store file: %w", err)
	case ref == nil:
		return nil, "", nil
	}
	return ref, s.extract(ctx, ref), nil
}

func (s *DocumentService) extract(ctx context.Context, ref *models.FileRef) string {
	if s.extractor == nil {
		return ""
	}
	path, cleanup, err := s.blobs.Materialize(ctx, ref.StoragePath)
	defer cleanup()
	if err != nil {
		s.log.Warn("materialize file for extraction failed", "storage_path", ref.StoragePath, "error", err)
		return ""
	}
	return s.extractor.Extract(ctx, path, ref.MimeType, ref.OriginalName)
}

func (s *DocumentService) getByID(ctx context.Context, id uuid.UUID) (*models.LegalDocument, error) {
	if s.docs == nil {
		return nil, errors.New("document repository not set")
	}
	doc, err := s.docs.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: document %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("get document: %w", err)
	}
	return doc, nil
}

func (s *DocumentService) syncIndex(doc *models.LegalDocument) {
	if s.index == nil {
		return
	}
	if err := s.index.IndexDocument(doc); err != nil {
		s.log.Warn("search index update failed", "id", doc.ID, "error", err)
	}
}

func parseDateField(p *string) *time.Time {
	if p == nil {
		return nil
	}
	return textutil.ParseDate(*p)
}
