package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Assessment is a timed, multi-question test authored by a TPO. The question
// bank is embedded: questions are value objects owned by the assessment and a
// new question list always replaces the stored one atomically.
type Assessment struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	Title           string         `gorm:"size:255;not null" json:"title"`
	Description     string         `gorm:"type:text;not null" json:"description"`
	DurationMinutes int            `gorm:"not null" json:"duration"`
	PassingScore    *float64       `json:"passing_score"`
	StartDate       *time.Time     `json:"start_date"`
	EndDate         *time.Time     `json:"end_date"`
	Difficulty      string         `gorm:"size:32" json:"difficulty"`
	Category        string         `gorm:"size:128" json:"category"`
	Instructions    string         `gorm:"type:text" json:"instructions"`
	Status          string         `gorm:"size:32;not null;index" json:"status"`
	QuestionsRaw    datatypes.JSON `gorm:"column:questions;type:json" json:"-"`
	CreatedBy       uint           `gorm:"not null;index" json:"created_by"`
	JobID           *uint          `json:"job_id"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`

	Questions []Question `gorm:"-" json:"questions"`
	Creator   User       `gorm:"foreignKey:CreatedBy" json:"creator"`
	Job       *Job       `gorm:"foreignKey:JobID" json:"job,omitempty"`
}

// Question is embedded in the assessment's JSON question bank. CorrectAnswer
// indexes into Options and must never reach a student before submission.
// Points is a pointer so an unset value (defaults to 1) stays distinguishable
// from an explicit zero.
type Question struct {
	Text          string   `json:"question"`
	Type          string   `json:"type"`
	Options       []string `json:"options"`
	CorrectAnswer *int     `json:"correctAnswer,omitempty"`
	Points        *int     `json:"points,omitempty"`
}

const (
	// AssessmentStatusDraft keeps the assessment visible to its creator only.
	AssessmentStatusDraft = "draft"
	// AssessmentStatusPublished exposes the assessment to students within its window.
	AssessmentStatusPublished = "published"
	// AssessmentStatusArchived is terminal for student access.
	AssessmentStatusArchived = "archived"

	// QuestionTypeMultipleChoice marks a question with arbitrary options.
	QuestionTypeMultipleChoice = "multiple-choice"
	// QuestionTypeTrueFalse marks a two-option question.
	QuestionTypeTrueFalse = "true-false"
)

// ValidStatus reports whether the value belongs to the status enum.
func ValidStatus(status string) bool {
	switch status {
	case AssessmentStatusDraft, AssessmentStatusPublished, AssessmentStatusArchived:
		return true
	}
	return false
}

// BeforeSave serializes the question bank into the JSON storage column.
func (a *Assessment) BeforeSave(tx *gorm.DB) error {
	if a.Status == "" {
		a.Status = AssessmentStatusDraft
	}

	data, err := json.Marshal(a.Questions)
	if err != nil {
		return err
	}
	a.QuestionsRaw = datatypes.JSON(data)
	return nil
}

// AfterFind hydrates the question bank after loading from the store.
func (a *Assessment) AfterFind(tx *gorm.DB) error {
	if len(a.QuestionsRaw) == 0 {
		a.Questions = nil
		return nil
	}

	var questions []Question
	if err := json.Unmarshal(a.QuestionsRaw, &questions); err != nil {
		return err
	}
	a.Questions = questions
	return nil
}

// IsPublished reports whether students may see the assessment at all.
func (a Assessment) IsPublished() bool {
	return a.Status == AssessmentStatusPublished
}

// OpensAfter reports whether the assessment window has not started yet.
// An absent start date never blocks.
func (a Assessment) OpensAfter(reference time.Time) bool {
	return a.StartDate != nil && reference.Before(*a.StartDate)
}

// ClosedBefore reports whether the assessment window has already ended.
// An absent end date never blocks; the bound itself is inclusive.
func (a Assessment) ClosedBefore(reference time.Time) bool {
	return a.EndDate != nil && reference.After(*a.EndDate)
}

// OpenAt reports whether the window admits the reference instant.
func (a Assessment) OpenAt(reference time.Time) bool {
	return !a.OpensAfter(reference) && !a.ClosedBefore(reference)
}

// TotalPoints sums the question bank's point values, defaulting unset
// question points to 1.
func (a Assessment) TotalPoints() int {
	total := 0
	for _, q := range a.Questions {
		total += q.PointsOrDefault()
	}
	return total
}

// PointsOrDefault returns the question's point value, 1 when unset. An
// explicit zero is preserved so a zero-total bank stays degenerate instead of
// silently becoming scoreable.
func (q Question) PointsOrDefault() int {
	if q.Points == nil {
		return 1
	}
	if *q.Points < 0 {
		return 0
	}
	return *q.Points
}
