// Package search keeps a bleve full-text index over legal documents. Text is
// folded (lowercase, no diacritics) before indexing and querying so that
// "Nghị định" and "nghi dinh" match
package search

import (
	"errors"
	"fmt"
	"time"

	"chatiip-backend/models"
	"chatiip-backend/textutil"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search/query"
)

// Index wraps a Bleve search index
type Index struct {
	index bleve.Index
}

// IndexedDocument is the folded projection stored in the index
type IndexedDocument struct {
	ID            string
	Title         string
	StatuteNumber string
	Abstract      string
	Content       string
	Tags          string
	UpdatedAt     time.Time
}

// Hit is one ranked match
type Hit struct {
	ID    string
	Score float64
}

// Open opens or creates a Bleve index at path
func Open(path string) (*Index, error) {
	idx, err := bleve.Open(path)
	if errors.Is(err, bleve.ErrorIndexPathDoesNotExist) {
		idx, err = bleve.New(path, buildIndexMapping())
		if err != nil {
			return nil, fmt.Errorf("create index: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("open index: %w", err)
	}
	return &Index{index: idx}, nil
}

// NewMemory creates an index held only in memory
func NewMemory() (*Index, error) {
	idx, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("create memory index: %w", err)
	}
	return &Index{index: idx}, nil
}

func buildIndexMapping() mapping.IndexMapping {
	text := bleve.NewTextFieldMapping()
	text.Analyzer = "standard"
	text.Store = false

	title := bleve.NewTextFieldMapping()
	title.Analyzer = "standard"
	title.Store = false

	updated := bleve.NewDateTimeFieldMapping()

	docMapping := bleve.NewDocumentMapping()
	docMapping.AddFieldMappingsAt("Title", title)
	docMapping.AddFieldMappingsAt("StatuteNumber", text)
	docMapping.AddFieldMappingsAt("Abstract", text)
	docMapping.AddFieldMappingsAt("Content", text)
	docMapping.AddFieldMappingsAt("Tags", text)
	docMapping.AddFieldMappingsAt("UpdatedAt", updated)

	idField := bleve.NewKeywordFieldMapping()
	idField.Index = false
	docMapping.AddFieldMappingsAt("ID", idField)

	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultMapping = docMapping
	return indexMapping
}

// Close closes the index
func (i *Index) Close() error {
	return i.index.Close()
}

func toIndexed(doc *models.LegalDocument) *IndexedDocument {
	tags := ""
	for _, t := range doc.Tags {
		tags += " " + t
	}
	return &IndexedDocument{
		ID:            doc.ID.String(),
		Title:         textutil.FoldForIndex(doc.Title),
		StatuteNumber: textutil.FoldForIndex(doc.StatuteNumber),
		Abstract:      textutil.FoldForIndex(doc.Abstract),
		Content:       textutil.FoldForIndex(doc.TextContent),
		Tags:          textutil.FoldForIndex(tags),
		UpdatedAt:     doc.UpdatedAt,
	}
}

// IndexDocument adds or replaces doc
func (i *Index) IndexDocument(doc *models.LegalDocument) error {
	d := toIndexed(doc)
	return i.index.Index(d.ID, d)
}

// Delete removes a document from the index
func (i *Index) Delete(id string) error {
	return i.index.Delete(id)
}

// Search ranks documents matching text by relevance, newest first on ties.
// A blank query matches nothing
func (i *Index) Search(text string, limit int) ([]Hit, error) {
	folded := textutil.FoldForIndex(text)
	if folded == "" || limit <= 0 {
		return nil, nil
	}

	fields := map[string]float64{"Title": 3, "StatuteNumber": 3, "Abstract": 2, "Content": 1, "Tags": 1}
	var should []query.Query
	for field, boost := range fields {
		mq := bleve.NewMatchQuery(folded)
		mq.SetField(field)
		mq.SetBoost(boost)
		should = append(should, mq)
	}

	req := bleve.NewSearchRequestOptions(bleve.NewDisjunctionQuery(should...), limit, 0, false)
	req.SortBy([]string{"-_score", "-UpdatedAt"})

	res, err := i.index.Search(req)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	hits := make([]Hit, 0, len(res.Hits))
	for _, h := range res.Hits {
		hits = append(hits, Hit{ID: h.ID, Score: h.Score})
	}
	return hits, nil
}

// Reindex replaces the content of the index with docs in one batch
func (i *Index) Reindex(docs []*models.LegalDocument) error {
	batch := i.index.NewBatch()
	existing, err := i.allIDs()
	if err != nil {
		return err
	}
	keep := make(map[string]struct{}, len(docs))
	for _, doc := range docs {
		d := toIndexed(doc)
		keep[d.ID] = struct{}{}
		if err := batch.Index(d.ID, d); err != nil {
			return fmt.Errorf("batch index %s: %w", d.ID, err)
		}
	}
	for _, id := range existing {
		if _, ok := keep[id]; !ok {
			batch.Delete(id)
		}
	}
	if err := i.index.Batch(batch); err != nil {
		return fmt.Errorf("commit batch: %w", err)
	}
	return nil
}

func (i *Index) allIDs() ([]string, error) {
	n, err := i.index.DocCount()
	if err != nil || n == 0 {
		return nil, err
	}
	req := bleve.NewSearchRequestOptions(bleve.NewMatchAllQuery(), int(n), 0, false)
	res, err := i.index.Search(req)
	if err != nil {
		return nil, fmt.Errorf("list indexed ids: %w", err)
	}
	ids := make([]string, 0, len(res.Hits))
	for _, h := range res.Hits {
		ids = append(ids, h.ID)
	}
	return ids, nil
}

// Count returns the number of documents in the index
func (i *Index) Count() (uint64, error) {
	return i.index.DocCount()
}
