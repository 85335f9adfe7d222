package service

import (
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/campushq/placement-go-api/internal/models"
)

const (
	subjectAssessmentPublished = "placement.assessment.published"
	subjectResultSubmitted     = "placement.assessment.result.submitted"
)

// AssessmentEvents publishes fire-and-forget domain events for downstream
// portal services (notifications, activity feeds). A nil receiver or nil
// connection disables publishing without affecting the request path.
type AssessmentEvents struct {
	conn   *nats.Conn
	logger zerolog.Logger
}

// NewAssessmentEvents constructs an event publisher over the given NATS connection.
func NewAssessmentEvents(conn *nats.Conn, logger zerolog.Logger) *AssessmentEvents {
	return &AssessmentEvents{
		conn:   conn,
		logger: logger.With().Str("component", "assessment_events").Logger(),
	}
}

type assessmentPublishedEvent struct {
	AssessmentID uint       `json:"assessment_id"`
	Title        string     `json:"title"`
	CreatedBy    uint       `json:"created_by"`
	StartDate    *time.Time `json:"start_date,omitempty"`
	EndDate      *time.Time `json:"end_date,omitempty"`
	PublishedAt  time.Time  `json:"published_at"`
}

type resultSubmittedEvent struct {
	AssessmentID  uint      `json:"assessment_id"`
	StudentID     uint      `json:"student_id"`
	Percentage    float64   `json:"percentage"`
	Passed        bool      `json:"passed"`
	AutoSubmitted bool      `json:"auto_submitted"`
	SubmittedAt   time.Time `json:"submitted_at"`
}

// AssessmentPublished announces that an assessment became visible to students.
func (e *AssessmentEvents) AssessmentPublished(assessment models.Assessment) {
	e.publish(subjectAssessmentPublished, assessmentPublishedEvent{
		AssessmentID: assessment.ID,
		Title:        assessment.Title,
		CreatedBy:    assessment.CreatedBy,
		StartDate:    assessment.StartDate,
		EndDate:      assessment.EndDate,
		PublishedAt:  time.Now().UTC(),
	})
}

// ResultSubmitted announces a scored submission.
func (e *AssessmentEvents) ResultSubmitted(result models.AssessmentResult) {
	submittedAt := time.Now().UTC()
	if result.SubmittedAt != nil {
		submittedAt = *result.SubmittedAt
	}

	e.publish(subjectResultSubmitted, resultSubmittedEvent{
		AssessmentID:  result.AssessmentID,
		StudentID:     result.StudentID,
		Percentage:    result.Percentage,
		Passed:        result.Passed,
		AutoSubmitted: result.AutoSubmitted,
		SubmittedAt:   submittedAt,
	})
}

func (e *AssessmentEvents) publish(subject string, payload any) {
	if e == nil || e.conn == nil {
		return
	}

	data, err := json.Marshal(payload)
	if err != nil {
		e.logger.Warn().Err(err).Str("subject", subject).Msg("failed to encode event payload")
		return
	}

	if err := e.conn.Publish(subject, data); err != nil {
		e.logger.Warn().Err(err).Str("subject", subject).Msg("failed to publish event")
	}
}
