package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// DefaultChatSource tags logs posted without an explicit source
const DefaultChatSource = "chatbot"

// Metadata is a free-form bag stored as JSONB
type Metadata map[string]interface{}

// Value implements driver.Valuer for JSONB
func (m Metadata) Value() (driver.Value, error) {
	if m == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(m)
}

// Scan implements sql.Scanner for JSONB
func (m *Metadata) Scan(value interface{}) error {
	out := make(Metadata)
	if value != nil {
		if err := json.Unmarshal(jsonBytes(value), &out); err != nil {
			return err
		}
	}
	if out == nil {
		out = make(Metadata)
	}
	*m = out
	return nil
}

// ChatLog is one recorded question/answer exchange
type ChatLog struct {
	ID        uuid.UUID `json:"id"`
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	Source    string    `json:"source"`
	SessionID string    `json:"sessionId,omitempty"`
	IP        string    `json:"ip,omitempty"`
	UserAgent string    `json:"userAgent,omitempty"`
	Meta      Metadata  `json:"meta"`
	CreatedAt time.Time `json:"createdAt"`
}
