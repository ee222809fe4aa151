package models

import (
	"time"

	"github.com/google/uuid"
)

// News represents a published article
type News struct {
	ID              uuid.UUID  `json:"id"`
	Title           string     `json:"title"`
	Subtitle        string     `json:"subtitle"`
	Slug            string     `json:"slug"`
	Image           string     `json:"img"`
	Content         string     `json:"content"`
	PageTitle       string     `json:"pageTitle"`
	PageDescription string     `json:"pageDescription"`
	PageKeywords    string     `json:"pageKeywords"`
	PageHeading     string     `json:"pageHeading"`
	OGImage         string     `json:"ogImage"`
	Canonical       string     `json:"canonical"`
	Category        string     `json:"category"`
	Approved        bool       `json:"approved"`
	ScheduledAt     *time.Time `json:"scheduledAt,omitempty"`
	PublishedAt     time.Time  `json:"publishedAt"`
	ModifiedAt      time.Time  `json:"modifiedAt"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}
