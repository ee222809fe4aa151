package handlers

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"chatiip-backend/models"
	"chatiip-backend/repository"
	"chatiip-backend/textutil"

	"github.com/google/uuid"
)

type memDocs struct {
	mu   sync.Mutex
	docs []*models.LegalDocument
}

func (m *memDocs) find(pred func(*models.LegalDocument) bool) *models.LegalDocument {
	for _, d := range m.docs {
		if pred(d) {
			c := *d
			return &c
		}
	}
	return nil
}

func (m *memDocs) Create(_ context.Context, doc *models.LegalDocument) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.find(func(d *models.LegalDocument) bool { return d.Slug == doc.Slug }) != nil {
		return repository.ErrSlugTaken
	}
	doc.ID = uuid.New()
	doc.CreatedAt = time.Now().Add(time.Duration(len(m.docs)) * time.Millisecond)
	doc.UpdatedAt = doc.CreatedAt
	c := *doc
	m.docs = append(m.docs, &c)
	return nil
}

func (m *memDocs) GetByID(_ context.Context, id uuid.UUID) (*models.LegalDocument, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if d := m.find(func(d *models.LegalDocument) bool { return d.ID == id }); d != nil {
		return d, nil
	}
	return nil, repository.ErrNotFound
}

func (m *memDocs) GetBySlug(_ context.Context, slug string) (*models.LegalDocument, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if d := m.find(func(d *models.LegalDocument) bool { return d.Slug == slug }); d != nil {
		return d, nil
	}
	return nil, repository.ErrNotFound
}

func (m *memDocs) SlugExists(_ context.Context, slug string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.find(func(d *models.LegalDocument) bool { return d.Slug == slug }) != nil, nil
}

func (m *memDocs) Update(_ context.Context, doc *models.LegalDocument) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, d := range m.docs {
		if d.ID == doc.ID {
			doc.UpdatedAt = time.Now()
			c := *doc
			m.docs[i] = &c
			return nil
		}
	}
	return repository.ErrNotFound
}

func (m *memDocs) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, d := range m.docs {
		if d.ID == id {
			m.docs = append(m.docs[:i], m.docs[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (m *memDocs) FindByStatuteNumber(_ context.Context, number string, limit int) ([]*models.LegalDocument, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.LegalDocument
	for _, d := range m.docs {
		if len(out) < limit && strings.Contains(textutil.FoldForMatch(d.StatuteNumber), textutil.FoldForMatch(number)) {
			c := *d
			out = append(out, &c)
		}
	}
	return out, nil
}

func (m *memDocs) GetByIDs(_ context.Context, ids []uuid.UUID) ([]*models.LegalDocument, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.LegalDocument
	for _, id := range ids {
		if d := m.find(func(d *models.LegalDocument) bool { return d.ID == id }); d != nil {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *memDocs) ListAll(ctx context.Context) ([]*models.LegalDocument, error) {
	docs, _, err := m.List(ctx, repository.DocumentFilter{})
	return docs, err
}

func (m *memDocs) List(_ context.Context, f repository.DocumentFilter) ([]*models.LegalDocument, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.LegalDocument
	for i := len(m.docs) - 1; i >= 0; i-- {
		d := *m.docs[i]
		if f.CategoryMajor != "" && d.CategoryMajor != f.CategoryMajor {
			continue
		}
		out = append(out, &d)
	}
	total := int64(len(out))
	if f.Limit > 0 {
		end := f.Offset + f.Limit
		if end > len(out) {
			end = len(out)
		}
		if f.Offset < len(out) {
			out = out[f.Offset:end]
		} else {
			out = nil
		}
	}
	return out, total, nil
}

func (m *memDocs) CountByCategory(_ context.Context) ([]models.CategoryCount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	counts := map[string]int64{}
	for _, d := range m.docs {
		counts[d.CategoryMajor]++
	}
	out := []models.CategoryCount{}
	for k, v := range counts {
		out = append(out, models.CategoryCount{CategoryMajor: k, Count: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out, nil
}

type memLogs struct {
	entries []*models.ChatLog
}

func (m *memLogs) Create(_ context.Context, e *models.ChatLog) error {
	e.ID = uuid.New()
	e.CreatedAt = time.Now()
	m.entries = append(m.entries, e)
	return nil
}

func (m *memLogs) List(_ context.Context, _ string, limit, offset int) ([]*models.ChatLog, int64, error) {
	return m.entries, int64(len(m.entries)), nil
}

type memUsers struct {
	users []*models.User
}

func (m *memUsers) Create(_ context.Context, u *models.User) error {
	u.ID = uuid.New()
	c := *u
	m.users = append(m.users, &c)
	return nil
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			c := *u
			return &c, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memUsers) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	for _, u := range m.users {
		if u.ID == id {
			c := *u
			return &c, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memUsers) List(_ context.Context, _ string, _, _ int) ([]*models.User, int64, error) {
	return m.users, int64(len(m.users)), nil
}

type memNews struct {
	items []*models.News
}

func (m *memNews) Create(_ context.Context, n *models.News) error {
	n.ID = uuid.New()
	c := *n
	m.items = append(m.items, &c)
	return nil
}

func (m *memNews) GetByID(_ context.Context, id uuid.UUID) (*models.News, error) {
	for _, n := range m.items {
		if n.ID == id {
			c := *n
			return &c, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memNews) GetBySlug(_ context.Context, slug string) (*models.News, error) {
	for _, n := range m.items {
		if n.Slug == slug {
			c := *n
			return &c, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memNews) SlugExists(_ context.Context, slug string, exclude *uuid.UUID) (bool, error) {
	for _, n := range m.items {
		if n.Slug == slug && (exclude == nil || *exclude != n.ID) {
			return true, nil
		}
	}
	return false, nil
}

func (m *memNews) Update(_ context.Context, n *models.News) error {
	for i, cur := range m.items {
		if cur.ID == n.ID {
			c := *n
			m.items[i] = &c
			return nil
		}
	}
	return repository.ErrNotFound
}

func (m *memNews) Delete(_ context.Context, id uuid.UUID) error {
	for i, n := range m.items {
		if n.ID == id {
			m.items = append(m.items[:i], m.items[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (m *memNews) List(_ context.Context, category string) ([]*models.News, error) {
	var out []*models.News
	for _, n := range m.items {
		if category == "" || n.Category == category {
			out = append(out, n)
		}
	}
	return out, nil
}

type stubAnswerer struct {
	answer string
}

func (s stubAnswerer) Answer(context.Context, string) (string, error) {
	return s.answer, nil
}
