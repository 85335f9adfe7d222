package service

import (
	"strings"

	"github.com/campushq/placement-go-api/internal/models"
)

// ValidationError reports a malformed assessment payload with field-level
// detail. Handlers map it to a 400 response.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// validateAssessmentFields is the single validation routine shared by the
// create and update paths: the update path runs it over the merged record so
// both entry points enforce identical rules.
func validateAssessmentFields(title, description string, duration int, questions []models.Question) *ValidationError {
	if strings.TrimSpace(title) == "" || strings.TrimSpace(description) == "" || duration <= 0 {
		return &ValidationError{Field: "title", Message: "Title, description, and duration are required."}
	}

	if len(questions) == 0 {
		return &ValidationError{Field: "questions", Message: "At least one question is required."}
	}

	return validateQuestions(questions)
}

func validateQuestions(questions []models.Question) *ValidationError {
	for _, q := range questions {
		if strings.TrimSpace(q.Text) == "" || q.Options == nil {
			return &ValidationError{Field: "questions", Message: "Each question must have text and options."}
		}
		if len(q.Options) < 2 {
			return &ValidationError{Field: "questions", Message: "Each question must have at least 2 options."}
		}
		if q.CorrectAnswer != nil && (*q.CorrectAnswer < 0 || *q.CorrectAnswer >= len(q.Options)) {
			return &ValidationError{Field: "questions", Message: "Correct answer must reference one of the question options."}
		}
	}
	return nil
}
