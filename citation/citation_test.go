package citation

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"chatiip-backend/models"

	"github.com/google/uuid"
)

func TestExtractCandidates(t *testing.T) {
	tests := []struct {
		name     string
		question string
		want     []string
	}{
		{"strict with diacritics", "Theo Nghị định 12/2023/NĐ-CP thì sao?", []string{"12/2023/ND-CP"}},
		{"strict lowercase", "nghi dinh 145/2020/nd-cp quy dinh gi", []string{"145/2020/ND-CP"}},
		{"strict wins over loose", "so sánh 12/2023/NĐ-CP và 5/2021", []string{"12/2023/ND-CP"}},
		{"strict dedupe", "12/2023/NĐ-CP hay 12/2023/ND-CP", []string{"12/2023/ND-CP"}},
		{"other issuer code", "Luật 45/2019/QH14 điều 3", []string{"45/2019/QH14"}},
		{"loose capped at three", "1/2020, 2/2021, 3/2022, 4/2023", []string{"1/2020", "2/2021", "3/2022"}},
		{"no pattern", "Lương tối thiểu vùng là bao nhiêu?", []string{}},
		{"year alone", "năm 2023 có gì mới", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractCandidates(tt.question)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("ExtractCandidates(%q) = %#v, want %#v", tt.question, got, tt.want)
			}
		})
	}
}

func TestExcerptCentersOnNeedle(t *testing.T) {
	text := strings.Repeat("mở đầu ", 60) + "điều khoản ABC quy định " + strings.Repeat("nội dung ", 60)
	got := Excerpt(text, "ABC", DefaultExcerptLength)
	if !strings.Contains(got, "ABC") {
		t.Fatalf("excerpt does not contain needle: %q", got)
	}
	if n := len([]rune(got)); n > DefaultExcerptLength {
		t.Fatalf("excerpt too long: %d", n)
	}
	if strings.HasPrefix(text, got) {
		t.Fatalf("expected a window away from the start, got prefix")
	}
}

func TestExcerptMatchesFoldedNeedle(t *testing.T) {
	text := "Căn cứ Nghị định số 12/2023/NĐ-CP ngày 14 tháng 4"
	got := Excerpt(text, "12/2023/ND-CP", 30)
	if !strings.Contains(got, "12/2023/NĐ-CP") {
		t.Fatalf("expected original spelling in excerpt, got %q", got)
	}
}

func TestExcerptEmptyNeedleIsPrefix(t *testing.T) {
	text := strings.Repeat("abcdefghij", 40)
	got := Excerpt(text, "", DefaultExcerptLength)
	if got != text[:DefaultExcerptLength] {
		t.Fatalf("expected prefix of %d chars, got %q", DefaultExcerptLength, got)
	}
	if got := Excerpt("ngắn", "", DefaultExcerptLength); got != "ngắn" {
		t.Fatalf("short text: got %q", got)
	}
	if got := Excerpt("", "ABC", DefaultExcerptLength); got != "" {
		t.Fatalf("empty text: got %q", got)
	}
}

func TestExcerptMissingNeedleIsPrefix(t *testing.T) {
	text := strings.Repeat("x", 300)
	if got := Excerpt(text, "ZZZ", 50); got != strings.Repeat("x", 50) {
		t.Fatalf("got %q", got)
	}
}

func TestPublicURL(t *testing.T) {
	tests := []struct {
		file *models.FileRef
		base string
		want string
	}{
		{nil, "http://h", ""},
		{&models.FileRef{PublicURL: "/uploads/docs/a.pdf"}, "https://chatiip.com", "https://chatiip.com/uploads/docs/a.pdf"},
		{&models.FileRef{PublicURL: "uploads/docs/a.pdf"}, "http://localhost:8080/", "http://localhost:8080/uploads/docs/a.pdf"},
		{&models.FileRef{PublicURL: "HTTPS://cdn.test/a.pdf"}, "http://h", "HTTPS://cdn.test/a.pdf"},
	}
	for _, tt := range tests {
		if got := PublicURL(tt.file, tt.base); got != tt.want {
			t.Errorf("PublicURL(%+v, %q) = %q, want %q", tt.file, tt.base, got, tt.want)
		}
	}
}

type fakeFinder struct {
	byNumber     map[string][]*models.LegalDocument
	fullText     []*models.LegalDocument
	numberCalls  []string
	fullTextHits int
	err          error
}

func (f *fakeFinder) FindByStatuteNumber(_ context.Context, number string, limit int) ([]*models.LegalDocument, error) {
	f.numberCalls = append(f.numberCalls, number)
	if f.err != nil {
		return nil, f.err
	}
	docs := f.byNumber[number]
	if len(docs) > limit {
		docs = docs[:limit]
	}
	return docs, nil
}

func (f *fakeFinder) SearchFullText(_ context.Context, _ string, limit int) ([]*models.LegalDocument, error) {
	f.fullTextHits++
	docs := f.fullText
	if len(docs) > limit {
		docs = docs[:limit]
	}
	return docs, nil
}

func TestResolvePrefersStatuteNumber(t *testing.T) {
	doc := &models.LegalDocument{
		ID:            uuid.New(),
		Title:         "Nghị định về lương",
		StatuteNumber: "12/2023/NĐ-CP",
		TextContent:   "Phần mở đầu. Nghị định 12/2023/NĐ-CP quy định mức lương.",
		File:          &models.FileRef{PublicURL: "/uploads/docs/1.pdf", Size: 1},
	}
	finder := &fakeFinder{
		byNumber: map[string][]*models.LegalDocument{"12/2023/ND-CP": {doc}},
		fullText: []*models.LegalDocument{{Title: "other", TextContent: "x"}},
	}
	r := NewResolver(finder)

	got, err := r.Resolve(context.Background(), "Nghị định 12/2023/NĐ-CP nói gì?", "http://api.test")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if finder.fullTextHits != 0 {
		t.Fatalf("full-text search should not run when statute lookup matched")
	}
	if len(got) != 1 {
		t.Fatalf("expected one citation, got %d", len(got))
	}
	c := got[0]
	if c.URL != "http://api.test/uploads/docs/1.pdf" {
		t.Fatalf("url: %q", c.URL)
	}
	if c.Status != models.StatusUnspecified {
		t.Fatalf("status default: %q", c.Status)
	}
	if !strings.Contains(c.Excerpt, "12/2023/NĐ-CP") {
		t.Fatalf("excerpt: %q", c.Excerpt)
	}
}

func TestResolveFallsBackToFullText(t *testing.T) {
	finder := &fakeFinder{
		fullText: []*models.LegalDocument{
			{Title: "A", Abstract: strings.Repeat("tóm tắt ", 50)},
			{Title: "empty"},
			{Title: "C", TextContent: "nội dung"},
		},
	}
	r := NewResolver(finder)

	got, err := r.Resolve(context.Background(), "Nghị định 99/2099/NĐ-CP", "http://h")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(finder.numberCalls) != 1 || finder.numberCalls[0] != "99/2099/ND-CP" {
		t.Fatalf("statute lookup calls: %v", finder.numberCalls)
	}
	if finder.fullTextHits != 1 {
		t.Fatalf("expected one full-text search, got %d", finder.fullTextHits)
	}
	// limit 2 keeps A and the empty doc; the empty one is filtered out.
	if len(got) != 1 || got[0].Title != "A" {
		t.Fatalf("unexpected citations: %+v", got)
	}
	if want := []rune(strings.Repeat("tóm tắt ", 50))[:DefaultExcerptLength]; got[0].Excerpt != string(want) {
		t.Fatalf("fallback excerpt should be a prefix, got %q", got[0].Excerpt)
	}
}

func TestResolveWithoutCandidatesSkipsStatuteLookup(t *testing.T) {
	finder := &fakeFinder{}
	r := NewResolver(finder)
	got, err := r.Resolve(context.Background(), "hợp đồng thử việc", "http://h")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(finder.numberCalls) != 0 {
		t.Fatalf("unexpected statute lookup: %v", finder.numberCalls)
	}
	if len(got) != 0 {
		t.Fatalf("expected no citations, got %+v", got)
	}
}

func TestResolvePropagatesStoreErrors(t *testing.T) {
	finder := &fakeFinder{err: errors.New("db down")}
	r := NewResolver(finder)
	if _, err := r.Resolve(context.Background(), "12/2023/NĐ-CP", "http://h"); err == nil {
		t.Fatalf("expected error")
	}
}
