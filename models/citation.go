package models

import "github.com/google/uuid"

// Citation references a stored document supporting a chatbot answer.
// It is computed per request and never persisted
type Citation struct {
	ID            uuid.UUID      `json:"id"`
	Title         string         `json:"title"`
	StatuteNumber string         `json:"soHieu"`
	Status        DocumentStatus `json:"tinhTrang"`
	URL           string         `json:"url"`
	Excerpt       string         `json:"excerpt"`
}
