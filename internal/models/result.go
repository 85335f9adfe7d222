package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AssessmentResult records a student's single attempt at an assessment. The
// unique index on (assessment_id, student_id) is the storage-level guard
// against two racing first submissions; the race loser surfaces a duplicate
// key error instead of a second row.
type AssessmentResult struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	AssessmentID     uint           `gorm:"not null;uniqueIndex:idx_result_assessment_student" json:"assessment_id"`
	StudentID        uint           `gorm:"not null;uniqueIndex:idx_result_assessment_student" json:"student_id"`
	AnswersRaw       datatypes.JSON `gorm:"column:answers;type:json" json:"-"`
	Score            int            `json:"score"`
	TotalPoints      int            `json:"total_points"`
	Percentage       float64        `json:"percentage"`
	Passed           bool           `json:"passed"`
	StartedAt        *time.Time     `json:"started_at"`
	SubmittedAt      *time.Time     `gorm:"index" json:"submitted_at"`
	TimeTakenMinutes int            `json:"time_taken"`
	AutoSubmitted    bool           `json:"auto_submitted"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`

	Answers    []Answer   `gorm:"-" json:"answers"`
	Assessment Assessment `gorm:"foreignKey:AssessmentID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"assessment"`
	Student    User       `gorm:"foreignKey:StudentID" json:"student"`
}

// Answer is the per-question record embedded in a result. SelectedAnswer is
// nil when the student left the question blank.
type Answer struct {
	QuestionIndex  int  `json:"questionIndex"`
	SelectedAnswer *int `json:"selectedAnswer"`
	IsCorrect      bool `json:"isCorrect"`
	PointsEarned   int  `json:"pointsEarned"`
}

// BeforeSave serializes the answer records into the JSON storage column.
func (r *AssessmentResult) BeforeSave(tx *gorm.DB) error {
	data, err := json.Marshal(r.Answers)
	if err != nil {
		return err
	}
	r.AnswersRaw = datatypes.JSON(data)
	return nil
}

// AfterFind hydrates the answer records after loading from the store.
func (r *AssessmentResult) AfterFind(tx *gorm.DB) error {
	if len(r.AnswersRaw) == 0 {
		r.Answers = nil
		return nil
	}

	var answers []Answer
	if err := json.Unmarshal(r.AnswersRaw, &answers); err != nil {
		return err
	}
	r.Answers = answers
	return nil
}

// IsSubmitted reports whether the attempt is frozen. Unsubmitted results are
// the mutable "resume" drafts; once submitted they never change.
func (r AssessmentResult) IsSubmitted() bool {
	return r.SubmittedAt != nil
}
