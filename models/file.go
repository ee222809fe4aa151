package models

import (
	"database/sql/driver"
	"encoding/json"
)

// FileRef describes the blob attached to a document
type FileRef struct {
	OriginalName string `json:"originalName"`
	MimeType     string `json:"mimeType"`
	Size         int64  `json:"size"`
	StoragePath  string `json:"storagePath"`
	PublicURL    string `json:"publicUrl"`
}

// Value implements driver.Valuer for JSONB
func (f FileRef) Value() (driver.Value, error) {
	return json.Marshal(f)
}

// Scan implements sql.Scanner for JSONB
func (f *FileRef) Scan(value interface{}) error {
	if value == nil {
		return nil
	}
	return json.Unmarshal(jsonBytes(value), f)
}

func jsonBytes(value interface{}) []byte {
	switch v := value.(type) {
	case []byte:
		return v
	case string:
		return []byte(v)
	default:
		return []byte("null")
	}
}
