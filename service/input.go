package service

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"chatiip-backend/textutil"
)

// TagList accepts tags as a JSON array or a comma-separated string
type TagList []string

func (t *TagList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*t = TagList{}
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = TagList(textutil.SplitTags(s))
		return nil
	}
	var items []interface{}
	if err := json.Unmarshal(data, &items); err != nil {
		return fmt.Errorf("tags must be a list or a comma-separated string")
	}
	raw := make([]string, 0, len(items))
	for _, it := range items {
		if it == nil {
			continue
		}
		raw = append(raw, fmt.Sprint(it))
	}
	*t = TagList(textutil.NormalizeTags(raw))
	return nil
}

// FlexBool is true for JSON true or the string "true"
type FlexBool bool

func (b *FlexBool) UnmarshalJSON(data []byte) error {
	switch strings.ToLower(strings.Trim(string(bytes.TrimSpace(data)), `"`)) {
	case "true":
		*b = true
	default:
		*b = false
	}
	return nil
}

// DocumentInput carries create and update fields. A nil pointer means the
// field was absent from the request and leaves the stored value untouched
// on update
type DocumentInput struct {
	Title             *string  `json:"title"`
	Slug              *string  `json:"slug"`
	StatuteNumber     *string  `json:"soHieu"`
	DocumentType      *string  `json:"loaiVanBan"`
	IssuingAuthority  *string  `json:"coQuanBanHanh"`
	CategoryMajor     *string  `json:"categoryMajor"`
	CategoryMinor     *string  `json:"categoryMinor"`
	IssuedAt          *string  `json:"ngayBanHanh"`
	EffectiveAt       *string  `json:"ngayHieuLuc"`
	ExpiresAt         *string  `json:"ngayHetHieuLuc"`
	Status            *string  `json:"tinhTrang"`
	Abstract          *string  `json:"trichYeu"`
	Tags              *TagList `json:"tags"`
	TextContent       *string  `json:"textContent"`
	FileBase64        string   `json:"fileBase64"`
	FileName          string   `json:"fileName"`
	FileMimeType      string   `json:"fileMimeType"`
	RegenerateOutline FlexBool `json:"regenerateOutline"`
}

func trimmed(p *string) string {
	if p == nil {
		return ""
	}
	return strings.TrimSpace(*p)
}
