package dto

import (
	"time"

	"github.com/campushq/placement-go-api/internal/models"
)

// QuestionPayload carries one question of the bank in create/update requests.
type QuestionPayload struct {
	Text          string   `json:"question"`
	Type          string   `json:"type" validate:"omitempty,oneof=multiple-choice true-false"`
	Options       []string `json:"options"`
	CorrectAnswer *int     `json:"correctAnswer"`
	Points        *int     `json:"points" validate:"omitempty,gt=0"`
}

// AssessmentCreateRequest is the payload for creating an assessment.
// Required-field and question-bank rules are enforced by the shared
// validation routine in the service layer; tags cover secondary constraints.
type AssessmentCreateRequest struct {
	Title        string            `json:"title"`
	Description  string            `json:"description"`
	Duration     int               `json:"duration"`
	PassingScore *float64          `json:"passingScore" validate:"omitempty,gte=0,lte=100"`
	StartDate    string            `json:"startDate"`
	EndDate      string            `json:"endDate"`
	Difficulty   string            `json:"difficulty" validate:"omitempty,oneof=easy medium hard"`
	Category     string            `json:"category"`
	Instructions string            `json:"instructions"`
	Status       string            `json:"status"`
	JobID        *uint             `json:"job"`
	Questions    []QuestionPayload `json:"questions"`
}

// AssessmentUpdateRequest is a partial update; nil fields are left untouched.
// A non-nil questions slice wholly replaces the stored bank.
type AssessmentUpdateRequest struct {
	Title        *string           `json:"title"`
	Description  *string           `json:"description"`
	Duration     *int              `json:"duration" validate:"omitempty,gt=0"`
	PassingScore *float64          `json:"passingScore" validate:"omitempty,gte=0,lte=100"`
	StartDate    *string           `json:"startDate"`
	EndDate      *string           `json:"endDate"`
	Difficulty   *string           `json:"difficulty" validate:"omitempty,oneof=easy medium hard"`
	Category     *string           `json:"category"`
	Instructions *string           `json:"instructions"`
	Status       *string           `json:"status"`
	JobID        *uint             `json:"job"`
	Questions    []QuestionPayload `json:"questions"`
}

// UserLite summarizes an account in enriched responses.
type UserLite struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// JobLite summarizes a linked job posting.
type JobLite struct {
	ID      uint   `json:"id"`
	Title   string `json:"title"`
	Company string `json:"company"`
}

// QuestionResponse is the owner-facing question view, correct answer included.
type QuestionResponse struct {
	Text          string   `json:"question"`
	Type          string   `json:"type"`
	Options       []string `json:"options"`
	CorrectAnswer *int     `json:"correctAnswer"`
	Points        int      `json:"points"`
}

// SanitizedQuestion is the student-facing question view. It deliberately has
// no correct-answer field at all, so the value can never leak by accident.
type SanitizedQuestion struct {
	Text    string   `json:"question"`
	Type    string   `json:"type"`
	Options []string `json:"options"`
	Points  int      `json:"points"`
}

// AssessmentResponse is the owner-facing assessment view.
type AssessmentResponse struct {
	ID           uint               `json:"id"`
	Title        string             `json:"title"`
	Description  string             `json:"description"`
	Duration     int                `json:"duration"`
	PassingScore *float64           `json:"passing_score"`
	StartDate    *time.Time         `json:"start_date"`
	EndDate      *time.Time         `json:"end_date"`
	Difficulty   string             `json:"difficulty"`
	Category     string             `json:"category"`
	Instructions string             `json:"instructions"`
	Status       string             `json:"status"`
	Questions    []QuestionResponse `json:"questions"`
	CreatedBy    uint               `json:"created_by"`
	Creator      UserLite           `json:"creator"`
	Job          *JobLite           `json:"job,omitempty"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
}

// AssessmentSummaryResponse is the student-facing listing entry. The question
// bank is reduced to a count so listings stay lean and leak nothing.
type AssessmentSummaryResponse struct {
	ID            uint       `json:"id"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	Duration      int        `json:"duration"`
	PassingScore  *float64   `json:"passing_score"`
	StartDate     *time.Time `json:"start_date"`
	EndDate       *time.Time `json:"end_date"`
	Difficulty    string     `json:"difficulty"`
	Category      string     `json:"category"`
	QuestionCount int        `json:"question_count"`
	Job           *JobLite   `json:"job,omitempty"`
}

// TakeAssessmentResponse is the sanitized projection handed to a student who
// is about to start. StartedAt is advisory session-start information: a
// pre-existing unsubmitted attempt's start, or the current time.
type TakeAssessmentResponse struct {
	ID           uint                `json:"id"`
	Title        string              `json:"title"`
	Description  string              `json:"description"`
	Duration     int                 `json:"duration"`
	PassingScore *float64            `json:"passing_score"`
	Instructions string              `json:"instructions"`
	Difficulty   string              `json:"difficulty"`
	Category     string              `json:"category"`
	EndDate      *time.Time          `json:"end_date"`
	Questions    []SanitizedQuestion `json:"questions"`
	StartedAt    time.Time           `json:"started_at"`
}

// NewAssessmentResponse converts an Assessment model into the owner view.
func NewAssessmentResponse(model models.Assessment) AssessmentResponse {
	response := AssessmentResponse{
		ID:           model.ID,
		Title:        model.Title,
		Description:  model.Description,
		Duration:     model.DurationMinutes,
		PassingScore: model.PassingScore,
		StartDate:    model.StartDate,
		EndDate:      model.EndDate,
		Difficulty:   model.Difficulty,
		Category:     model.Category,
		Instructions: model.Instructions,
		Status:       model.Status,
		Questions:    newQuestionResponses(model.Questions),
		CreatedBy:    model.CreatedBy,
		CreatedAt:    model.CreatedAt,
		UpdatedAt:    model.UpdatedAt,
	}

	if model.Creator.ID != 0 {
		response.Creator = UserLite{
			ID:    model.Creator.ID,
			Name:  model.Creator.Name,
			Email: model.Creator.Email,
			Role:  model.Creator.Role,
		}
	}

	response.Job = newJobLite(model.Job)

	return response
}

// NewAssessmentResponseSlice converts assessment models into owner views.
func NewAssessmentResponseSlice(items []models.Assessment) []AssessmentResponse {
	responses := make([]AssessmentResponse, 0, len(items))
	for _, item := range items {
		responses = append(responses, NewAssessmentResponse(item))
	}
	return responses
}

// NewAssessmentSummary converts an Assessment model into the student listing view.
func NewAssessmentSummary(model models.Assessment) AssessmentSummaryResponse {
	return AssessmentSummaryResponse{
		ID:            model.ID,
		Title:         model.Title,
		Description:   model.Description,
		Duration:      model.DurationMinutes,
		PassingScore:  model.PassingScore,
		StartDate:     model.StartDate,
		EndDate:       model.EndDate,
		Difficulty:    model.Difficulty,
		Category:      model.Category,
		QuestionCount: len(model.Questions),
		Job:           newJobLite(model.Job),
	}
}

// NewAssessmentSummarySlice converts assessment models into listing views.
func NewAssessmentSummarySlice(items []models.Assessment) []AssessmentSummaryResponse {
	responses := make([]AssessmentSummaryResponse, 0, len(items))
	for _, item := range items {
		responses = append(responses, NewAssessmentSummary(item))
	}
	return responses
}

// NewTakeAssessmentResponse projects an assessment for a student, stripping
// correct answers from every question.
func NewTakeAssessmentResponse(model models.Assessment, startedAt time.Time) TakeAssessmentResponse {
	questions := make([]SanitizedQuestion, 0, len(model.Questions))
	for _, q := range model.Questions {
		questions = append(questions, SanitizedQuestion{
			Text:    q.Text,
			Type:    q.Type,
			Options: q.Options,
			Points:  q.PointsOrDefault(),
		})
	}

	return TakeAssessmentResponse{
		ID:           model.ID,
		Title:        model.Title,
		Description:  model.Description,
		Duration:     model.DurationMinutes,
		PassingScore: model.PassingScore,
		Instructions: model.Instructions,
		Difficulty:   model.Difficulty,
		Category:     model.Category,
		EndDate:      model.EndDate,
		Questions:    questions,
		StartedAt:    startedAt,
	}
}

func newQuestionResponses(questions []models.Question) []QuestionResponse {
	responses := make([]QuestionResponse, 0, len(questions))
	for _, q := range questions {
		responses = append(responses, QuestionResponse{
			Text:          q.Text,
			Type:          q.Type,
			Options:       q.Options,
			CorrectAnswer: q.CorrectAnswer,
			Points:        q.PointsOrDefault(),
		})
	}
	return responses
}

func newJobLite(job *models.Job) *JobLite {
	if job == nil || job.ID == 0 {
		return nil
	}
	return &JobLite{
		ID:      job.ID,
		Title:   job.Title,
		Company: job.Company,
	}
}
