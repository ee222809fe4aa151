package models

import (
	"database/sql/driver"
	"encoding/json"
)

// OutlineNode is one heading of a document outline
type OutlineNode struct {
	Label    string        `json:"label"`
	Key      string        `json:"key"`
	Children []OutlineNode `json:"children"`
}

// Outline is an ordered forest of headings
type Outline []OutlineNode

// Value implements driver.Valuer for JSONB
func (o Outline) Value() (driver.Value, error) {
	if o == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(o)
}

// Scan implements sql.Scanner for JSONB
func (o *Outline) Scan(value interface{}) error {
	if value == nil {
		*o = Outline{}
		return nil
	}
	var out Outline
	if err := json.Unmarshal(jsonBytes(value), &out); err != nil {
		return err
	}
	if out == nil {
		out = Outline{}
	}
	*o = out
	return nil
}
