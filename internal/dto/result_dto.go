package dto

import (
	"time"

	"github.com/campushq/placement-go-api/internal/models"
)

// AnswerPayload is one answer in a submission. SelectedAnswer is nil when the
// student skipped the question.
type AnswerPayload struct {
	QuestionIndex  int  `json:"questionIndex" validate:"gte=0"`
	SelectedAnswer *int `json:"selectedAnswer"`
}

// SubmitRequest is the payload a student sends when finishing an attempt.
// StartedAt is the client-claimed session start (RFC3339); AutoSubmitted marks
// submissions triggered by timer expiry rather than explicit user action.
type SubmitRequest struct {
	Answers       []AnswerPayload `json:"answers"`
	StartedAt     string          `json:"startedAt"`
	AutoSubmitted bool            `json:"autoSubmitted"`
}

// AnswerResponse serializes one scored answer record.
type AnswerResponse struct {
	QuestionIndex  int  `json:"questionIndex"`
	SelectedAnswer *int `json:"selectedAnswer"`
	IsCorrect      bool `json:"isCorrect"`
	PointsEarned   int  `json:"pointsEarned"`
}

// ResultAssessmentLite carries the assessment context a reviewer needs to
// read a result's answers.
type ResultAssessmentLite struct {
	ID        uint               `json:"id"`
	Title     string             `json:"title"`
	Questions []QuestionResponse `json:"questions,omitempty"`
}

// ResultResponse is the scored attempt returned to students and reviewers.
type ResultResponse struct {
	ID            uint                  `json:"id"`
	AssessmentID  uint                  `json:"assessment_id"`
	StudentID     uint                  `json:"student_id"`
	Answers       []AnswerResponse      `json:"answers"`
	Score         int                   `json:"score"`
	TotalPoints   int                   `json:"total_points"`
	Percentage    float64               `json:"percentage"`
	Passed        bool                  `json:"passed"`
	StartedAt     *time.Time            `json:"started_at"`
	SubmittedAt   *time.Time            `json:"submitted_at"`
	TimeTaken     int                   `json:"time_taken"`
	AutoSubmitted bool                  `json:"auto_submitted"`
	Student       UserLite              `json:"student"`
	Assessment    *ResultAssessmentLite `json:"assessment,omitempty"`
}

// AssessmentStatistics summarizes all results of one assessment for its owner.
type AssessmentStatistics struct {
	TotalStudents int     `json:"total_students"`
	PassedCount   int     `json:"passed_count"`
	FailedCount   int     `json:"failed_count"`
	AverageScore  float64 `json:"average_score"`
	AverageTime   float64 `json:"average_time"`
}

// AssessmentResultsResponse bundles the owner's result review payload.
type AssessmentResultsResponse struct {
	Results    []ResultResponse     `json:"results"`
	Statistics AssessmentStatistics `json:"statistics"`
	CacheHit   bool                 `json:"cache_hit,omitempty"`
}

// NewResultResponse converts an AssessmentResult model into a DTO.
func NewResultResponse(model models.AssessmentResult) ResultResponse {
	answers := make([]AnswerResponse, 0, len(model.Answers))
	for _, a := range model.Answers {
		answers = append(answers, AnswerResponse{
			QuestionIndex:  a.QuestionIndex,
			SelectedAnswer: a.SelectedAnswer,
			IsCorrect:      a.IsCorrect,
			PointsEarned:   a.PointsEarned,
		})
	}

	response := ResultResponse{
		ID:            model.ID,
		AssessmentID:  model.AssessmentID,
		StudentID:     model.StudentID,
		Answers:       answers,
		Score:         model.Score,
		TotalPoints:   model.TotalPoints,
		Percentage:    model.Percentage,
		Passed:        model.Passed,
		StartedAt:     model.StartedAt,
		SubmittedAt:   model.SubmittedAt,
		TimeTaken:     model.TimeTakenMinutes,
		AutoSubmitted: model.AutoSubmitted,
	}

	if model.Student.ID != 0 {
		response.Student = UserLite{
			ID:    model.Student.ID,
			Name:  model.Student.Name,
			Email: model.Student.Email,
			Role:  model.Student.Role,
		}
	}

	if model.Assessment.ID != 0 {
		response.Assessment = &ResultAssessmentLite{
			ID:        model.Assessment.ID,
			Title:     model.Assessment.Title,
			Questions: newQuestionResponses(model.Assessment.Questions),
		}
	}

	return response
}

// NewResultResponseSlice converts result models into DTOs.
func NewResultResponseSlice(items []models.AssessmentResult) []ResultResponse {
	responses := make([]ResultResponse, 0, len(items))
	for _, item := range items {
		responses = append(responses, NewResultResponse(item))
	}
	return responses
}
