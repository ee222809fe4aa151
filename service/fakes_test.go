package service

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
	mu    sync.Mutex
	docs  map[uuid.UUID]*models.LegalDocument
	clock time.Time
	// slugRace makes the next Create fail as if another writer took the slug
	slugRace int
}

func newMemDocs() *memDocs {
	return &memDocs{docs: map[uuid.UUID]*models.LegalDocument{}, clock: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (m *memDocs) tick() time.Time {
	m.clock = m.clock.Add(time.Second)
	return m.clock
}

func clone(d *models.LegalDocument) *models.LegalDocument {
	c := *d
	c.Tags = append([]string{}, d.Tags...)
	c.Outline = append(models.Outline{}, d.Outline...)
	if d.File != nil {
		f := *d.File
		c.File = &f
	}
	return &c
}

func (m *memDocs) slugTaken(slug string, except uuid.UUID) bool {
	for _, d := range m.docs {
		if d.Slug == slug && d.ID != except {
			return true
		}
	}
	return false
}

func (m *memDocs) Create(_ context.Context, doc *models.LegalDocument) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.slugRace > 0 {
		m.slugRace--
		return repository.ErrSlugTaken
	}
	if m.slugTaken(doc.Slug, uuid.Nil) {
		return repository.ErrSlugTaken
	}
	doc.ID = uuid.New()
	doc.CreatedAt = m.tick()
	doc.UpdatedAt = doc.CreatedAt
	m.docs[doc.ID] = clone(doc)
	return nil
}

func (m *memDocs) GetByID(_ context.Context, id uuid.UUID) (*models.LegalDocument, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.docs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return clone(d), nil
}

func (m *memDocs) GetBySlug(_ context.Context, slug string) (*models.LegalDocument, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range m.docs {
		if d.Slug == slug {
			return clone(d), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memDocs) SlugExists(_ context.Context, slug string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.slugTaken(slug, uuid.Nil), nil
}

func (m *memDocs) Update(_ context.Context, doc *models.LegalDocument) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.docs[doc.ID]; !ok {
		return repository.ErrNotFound
	}
	if m.slugTaken(doc.Slug, doc.ID) {
		return repository.ErrSlugTaken
	}
	doc.UpdatedAt = m.tick()
	m.docs[doc.ID] = clone(doc)
	return nil
}

func (m *memDocs) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.docs[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.docs, id)
	return nil
}

func (m *memDocs) sorted(less func(a, b *models.LegalDocument) bool) []*models.LegalDocument {
	out := make([]*models.LegalDocument, 0, len(m.docs))
	for _, d := range m.docs {
		out = append(out, clone(d))
	}
	sort.Slice(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

func (m *memDocs) FindByStatuteNumber(_ context.Context, number string, limit int) ([]*models.LegalDocument, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	needle := textutil.FoldForMatch(number)
	var out []*models.LegalDocument
	for _, d := range m.sorted(func(a, b *models.LegalDocument) bool { return a.UpdatedAt.After(b.UpdatedAt) }) {
		if needle != "" && strings.Contains(textutil.FoldForMatch(d.StatuteNumber), needle) {
			out = append(out, d)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (m *memDocs) GetByIDs(_ context.Context, ids []uuid.UUID) ([]*models.LegalDocument, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.LegalDocument
	for _, id := range ids {
		if d, ok := m.docs[id]; ok {
			out = append(out, clone(d))
		}
	}
	return out, nil
}

func (m *memDocs) ListAll(_ context.Context) ([]*models.LegalDocument, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sorted(func(a, b *models.LegalDocument) bool { return a.CreatedAt.Before(b.CreatedAt) }), nil
}

func (m *memDocs) List(_ context.Context, f repository.DocumentFilter) ([]*models.LegalDocument, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var allowed map[uuid.UUID]bool
	if f.IDs != nil {
		allowed = map[uuid.UUID]bool{}
		for _, id := range f.IDs {
			allowed[id] = true
		}
	}
	var match []*models.LegalDocument
	for _, d := range m.sorted(func(a, b *models.LegalDocument) bool { return a.CreatedAt.After(b.CreatedAt) }) {
		switch {
		case allowed != nil && !allowed[d.ID],
			f.CategoryMajor != "" && d.CategoryMajor != f.CategoryMajor,
			f.CategoryMinor != "" && d.CategoryMinor != f.CategoryMinor,
			f.Status != "" && d.Status != f.Status,
			f.IssuedFrom != nil && (d.IssuedAt == nil || d.IssuedAt.Before(*f.IssuedFrom)),
			f.IssuedTo != nil && (d.IssuedAt == nil || d.IssuedAt.After(*f.IssuedTo)):
			continue
		}
		match = append(match, d)
	}
	total := int64(len(match))
	if f.Limit > 0 {
		start := f.Offset
		if start > len(match) {
			start = len(match)
		}
		end := start + f.Limit
		if end > len(match) {
			end = len(match)
		}
		match = match[start:end]
	}
	return match, total, nil
}

func (m *memDocs) CountByCategory(_ context.Context) ([]models.CategoryCount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	counts := map[string]int64{}
	for _, d := range m.docs {
		cat := d.CategoryMajor
		if cat == "" {
			cat = models.DefaultCategoryMajor
		}
		counts[cat]++
	}
	out := []models.CategoryCount{}
	for k, v := range counts {
		out = append(out, models.CategoryCount{CategoryMajor: k, Count: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].CategoryMajor < out[j].CategoryMajor
	})
	return out, nil
}

// fakeExtractor returns text keyed by original file name
type fakeExtractor struct {
	texts map[string]string
	calls []string
}

func (f *fakeExtractor) Extract(_ context.Context, path, _, originalName string) string {
	f.calls = append(f.calls, path)
	return f.texts[originalName]
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

func (m *memLogs) List(_ context.Context, search string, limit, offset int) ([]*models.ChatLog, int64, error) {
	var match []*models.ChatLog
	for i := len(m.entries) - 1; i >= 0; i-- {
		e := m.entries[i]
		q := strings.ToLower(search)
		if q == "" || strings.Contains(strings.ToLower(e.Question), q) || strings.Contains(strings.ToLower(e.Answer), q) {
			match = append(match, e)
		}
	}
	total := int64(len(match))
	if offset > len(match) {
		offset = len(match)
	}
	end := offset + limit
	if end > len(match) {
		end = len(match)
	}
	return match[offset:end], total, nil
}

type memUsers struct {
	users map[uuid.UUID]*models.User
}

func newMemUsers() *memUsers {
	return &memUsers{users: map[uuid.UUID]*models.User{}}
}

func (m *memUsers) Create(_ context.Context, u *models.User) error {
	for _, existing := range m.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return repository.ErrEmailTaken
		}
	}
	u.ID = uuid.New()
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	c := *u
	m.users[u.ID] = &c
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
	u, ok := m.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c := *u
	return &c, nil
}

func (m *memUsers) List(_ context.Context, q string, limit, offset int) ([]*models.User, int64, error) {
	var out []*models.User
	for _, u := range m.users {
		if q == "" || strings.Contains(strings.ToLower(u.Email+" "+u.Name), strings.ToLower(q)) {
			c := *u
			out = append(out, &c)
		}
	}
	return out, int64(len(out)), nil
}

type memNews struct {
	items map[uuid.UUID]*models.News
}

func newMemNews() *memNews {
	return &memNews{items: map[uuid.UUID]*models.News{}}
}

func (m *memNews) Create(_ context.Context, n *models.News) error {
	n.ID = uuid.New()
	n.CreatedAt = time.Now()
	n.UpdatedAt = n.CreatedAt
	c := *n
	m.items[n.ID] = &c
	return nil
}

func (m *memNews) GetByID(_ context.Context, id uuid.UUID) (*models.News, error) {
	n, ok := m.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c := *n
	return &c, nil
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
		if n.Slug == slug && (exclude == nil || n.ID != *exclude) {
			return true, nil
		}
	}
	return false, nil
}

func (m *memNews) Update(_ context.Context, n *models.News) error {
	if _, ok := m.items[n.ID]; !ok {
		return repository.ErrNotFound
	}
	c := *n
	m.items[n.ID] = &c
	return nil
}

func (m *memNews) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.items[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.items, id)
	return nil
}

func (m *memNews) List(_ context.Context, category string) ([]*models.News, error) {
	var out []*models.News
	for _, n := range m.items {
		if category == "" || n.Category == category {
			c := *n
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PublishedAt.After(out[j].PublishedAt) })
	return out, nil
}
