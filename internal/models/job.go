package models

import "time"

// Job is a posting an assessment may be linked to. Posting CRUD is owned by
// the jobs module; assessments only reference it for display.
type Job struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Title     string    `gorm:"size:255;not null" json:"title"`
	Company   string    `gorm:"size:255;not null" json:"company"`
	Location  string    `gorm:"size:255" json:"location"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
