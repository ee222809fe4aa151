package models

import (
	"time"

	"github.com/google/uuid"
)

// DocumentStatus represents the legal validity of a document
type DocumentStatus string

const (
	StatusInForce     DocumentStatus = "Còn hiệu lực"
	StatusExpired     DocumentStatus = "Hết hiệu lực"
	StatusUnspecified DocumentStatus = "Không xác định"
)

// Valid reports whether s is one of the stored states
func (s DocumentStatus) Valid() bool {
	switch s {
	case StatusInForce, StatusExpired, StatusUnspecified:
		return true
	}
	return false
}

// DefaultCategoryMajor is used when no major category is supplied
const DefaultCategoryMajor = "Khác"

// LegalDocument represents a legal document with its extracted content
type LegalDocument struct {
	ID               uuid.UUID      `json:"id"`
	Title            string         `json:"title"`
	Slug             string         `json:"slug"`
	StatuteNumber    string         `json:"soHieu"`
	DocumentType     string         `json:"loaiVanBan"`
	IssuingAuthority string         `json:"coQuanBanHanh"`
	CategoryMajor    string         `json:"categoryMajor"`
	CategoryMinor    string         `json:"categoryMinor"`
	IssuedAt         *time.Time     `json:"ngayBanHanh,omitempty"`
	EffectiveAt      *time.Time     `json:"ngayHieuLuc,omitempty"`
	ExpiresAt        *time.Time     `json:"ngayHetHieuLuc,omitempty"`
	Status           DocumentStatus `json:"tinhTrang"`
	Abstract         string         `json:"trichYeu"`
	Tags             []string       `json:"tags"`
	TextContent      string         `json:"textContent"`
	Outline          Outline        `json:"outline"`
	File             *FileRef       `json:"file,omitempty"`
	CreatedAt        time.Time      `json:"createdAt"`
	UpdatedAt        time.Time      `json:"updatedAt"`
}

// HasCitableContent reports whether the document can back a citation
func (d *LegalDocument) HasCitableContent() bool {
	return d.File != nil || d.TextContent != "" || d.Abstract != ""
}

// LegalDocumentListItem is the list projection: full text replaced by a preview
type LegalDocumentListItem struct {
	ID               uuid.UUID      `json:"id"`
	Title            string         `json:"title"`
	Slug             string         `json:"slug"`
	StatuteNumber    string         `json:"soHieu"`
	DocumentType     string         `json:"loaiVanBan"`
	IssuingAuthority string         `json:"coQuanBanHanh"`
	CategoryMajor    string         `json:"categoryMajor"`
	CategoryMinor    string         `json:"categoryMinor"`
	IssuedAt         *time.Time     `json:"ngayBanHanh,omitempty"`
	EffectiveAt      *time.Time     `json:"ngayHieuLuc,omitempty"`
	ExpiresAt        *time.Time     `json:"ngayHetHieuLuc,omitempty"`
	Status           DocumentStatus `json:"tinhTrang"`
	Abstract         string         `json:"trichYeu"`
	Tags             []string       `json:"tags"`
	File             *FileRef       `json:"file,omitempty"`
	TextPreview      string         `json:"textPreview"`
	Score            float64        `json:"score,omitempty"`
	CreatedAt        time.Time      `json:"createdAt"`
	UpdatedAt        time.Time      `json:"updatedAt"`
}

// PreviewLength bounds the text preview in list responses, in characters
const PreviewLength = 600

// ToListItem projects d for list responses
func (d *LegalDocument) ToListItem() LegalDocumentListItem {
	preview := []rune(d.TextContent)
	if len(preview) > PreviewLength {
		preview = preview[:PreviewLength]
	}
	return LegalDocumentListItem{
		ID:               d.ID,
		Title:            d.Title,
		Slug:             d.Slug,
		StatuteNumber:    d.StatuteNumber,
		DocumentType:     d.DocumentType,
		IssuingAuthority: d.IssuingAuthority,
		CategoryMajor:    d.CategoryMajor,
		CategoryMinor:    d.CategoryMinor,
		IssuedAt:         d.IssuedAt,
		EffectiveAt:      d.EffectiveAt,
		ExpiresAt:        d.ExpiresAt,
		Status:           d.Status,
		Abstract:         d.Abstract,
		Tags:             d.Tags,
		File:             d.File,
		TextPreview:      string(preview),
		CreatedAt:        d.CreatedAt,
		UpdatedAt:        d.UpdatedAt,
	}
}

// CategoryCount is one row of the category statistics
type CategoryCount struct {
	CategoryMajor string `json:"categoryMajor"`
	Count         int64  `json:"count"`
}
