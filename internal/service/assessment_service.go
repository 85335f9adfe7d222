package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/campushq/placement-go-api/internal/dto"
	"github.com/campushq/placement-go-api/internal/models"
	"github.com/campushq/placement-go-api/internal/repository"
)

// ErrAssessmentNotFound indicates the assessment does not exist.
var ErrAssessmentNotFound = errors.New("assessment not found")

// ErrNotOwner indicates the caller is not the assessment's creator.
var ErrNotOwner = errors.New("not the assessment owner")

// AssessmentService orchestrates the TPO-facing assessment lifecycle.
type AssessmentService interface {
	Create(ctx context.Context, creatorID uint, payload dto.AssessmentCreateRequest) (dto.AssessmentResponse, error)
	List(ctx context.Context) ([]dto.AssessmentResponse, error)
	ListMine(ctx context.Context, creatorID uint) ([]dto.AssessmentResponse, error)
	Get(ctx context.Context, id uint) (dto.AssessmentResponse, error)
	Update(ctx context.Context, id, updaterID uint, payload dto.AssessmentUpdateRequest) (dto.AssessmentResponse, error)
	Delete(ctx context.Context, id, requesterID uint) error
}

type assessmentService struct {
	assessments repository.AssessmentRepository
	results     repository.ResultRepository
	validator   *validator.Validate
	sanitizer   *bluemonday.Policy
	events      *AssessmentEvents
	logger      zerolog.Logger
	now         func() time.Time
}

// NewAssessmentService constructs an AssessmentService instance.
func NewAssessmentService(assessmentRepo repository.AssessmentRepository, resultRepo repository.ResultRepository, validate *validator.Validate, events *AssessmentEvents, logger zerolog.Logger) AssessmentService {
	return &assessmentService{
		assessments: assessmentRepo,
		results:     resultRepo,
		validator:   validate,
		sanitizer:   bluemonday.UGCPolicy(),
		events:      events,
		logger:      logger.With().Str("component", "assessment_service").Logger(),
		now:         time.Now,
	}
}

func (s *assessmentService) Create(ctx context.Context, creatorID uint, payload dto.AssessmentCreateRequest) (dto.AssessmentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AssessmentResponse{}, err
	}

	questions := questionsFromPayload(payload.Questions)
	if verr := validateAssessmentFields(payload.Title, payload.Description, payload.Duration, questions); verr != nil {
		return dto.AssessmentResponse{}, verr
	}

	startDate, err := parseOptionalDate(payload.StartDate)
	if err != nil {
		return dto.AssessmentResponse{}, &ValidationError{Field: "startDate", Message: "Invalid start date."}
	}
	endDate, err := parseOptionalDate(payload.EndDate)
	if err != nil {
		return dto.AssessmentResponse{}, &ValidationError{Field: "endDate", Message: "Invalid end date."}
	}

	// An unknown status silently falls back to draft on creation; the update
	// path rejects it instead.
	status := payload.Status
	if !models.ValidStatus(status) {
		status = models.AssessmentStatusDraft
	}

	assessment := models.Assessment{
		Title:           payload.Title,
		Description:     s.sanitizer.Sanitize(payload.Description),
		DurationMinutes: payload.Duration,
		PassingScore:    payload.PassingScore,
		StartDate:       startDate,
		EndDate:         endDate,
		Difficulty:      payload.Difficulty,
		Category:        payload.Category,
		Instructions:    s.sanitizer.Sanitize(payload.Instructions),
		Status:          status,
		Questions:       questions,
		CreatedBy:       creatorID,
		JobID:           payload.JobID,
	}

	if err := s.assessments.Create(ctx, &assessment); err != nil {
		return dto.AssessmentResponse{}, err
	}

	// Reload with creator/job associations
	created, err := s.assessments.GetByID(ctx, assessment.ID)
	if err != nil {
		return dto.AssessmentResponse{}, err
	}

	if created.IsPublished() {
		s.events.AssessmentPublished(created)
	}

	s.logger.Info().Uint("assessment_id", created.ID).Uint("creator_id", creatorID).Msg("assessment created")

	return dto.NewAssessmentResponse(created), nil
}

func (s *assessmentService) List(ctx context.Context) ([]dto.AssessmentResponse, error) {
	assessments, err := s.assessments.List(ctx)
	if err != nil {
		return nil, err
	}

	return dto.NewAssessmentResponseSlice(assessments), nil
}

func (s *assessmentService) ListMine(ctx context.Context, creatorID uint) ([]dto.AssessmentResponse, error) {
	assessments, err := s.assessments.ListByCreator(ctx, creatorID)
	if err != nil {
		return nil, err
	}

	return dto.NewAssessmentResponseSlice(assessments), nil
}

func (s *assessmentService) Get(ctx context.Context, id uint) (dto.AssessmentResponse, error) {
	assessment, err := s.assessments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AssessmentResponse{}, ErrAssessmentNotFound
		}
		return dto.AssessmentResponse{}, err
	}

	return dto.NewAssessmentResponse(assessment), nil
}

func (s *assessmentService) Update(ctx context.Context, id, updaterID uint, payload dto.AssessmentUpdateRequest) (dto.AssessmentResponse, error) {
	assessment, err := s.assessments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AssessmentResponse{}, ErrAssessmentNotFound
		}
		return dto.AssessmentResponse{}, err
	}

	if assessment.CreatedBy != updaterID {
		return dto.AssessmentResponse{}, ErrNotOwner
	}

	if err := s.validator.Struct(payload); err != nil {
		return dto.AssessmentResponse{}, err
	}

	wasPublished := assessment.IsPublished()

	if payload.Status != nil {
		if !models.ValidStatus(*payload.Status) {
			return dto.AssessmentResponse{}, &ValidationError{Field: "status", Message: "Invalid status value."}
		}
		assessment.Status = *payload.Status
	}

	if payload.Title != nil {
		assessment.Title = *payload.Title
	}
	if payload.Description != nil {
		assessment.Description = s.sanitizer.Sanitize(*payload.Description)
	}
	if payload.Duration != nil {
		assessment.DurationMinutes = *payload.Duration
	}
	if payload.PassingScore != nil {
		assessment.PassingScore = payload.PassingScore
	}
	if payload.Difficulty != nil {
		assessment.Difficulty = *payload.Difficulty
	}
	if payload.Category != nil {
		assessment.Category = *payload.Category
	}
	if payload.Instructions != nil {
		assessment.Instructions = s.sanitizer.Sanitize(*payload.Instructions)
	}
	if payload.JobID != nil {
		assessment.JobID = payload.JobID
	}

	if payload.StartDate != nil {
		startDate, err := parseOptionalDate(*payload.StartDate)
		if err != nil {
			return dto.AssessmentResponse{}, &ValidationError{Field: "startDate", Message: "Invalid start date."}
		}
		assessment.StartDate = startDate
	}
	if payload.EndDate != nil {
		endDate, err := parseOptionalDate(*payload.EndDate)
		if err != nil {
			return dto.AssessmentResponse{}, &ValidationError{Field: "endDate", Message: "Invalid end date."}
		}
		assessment.EndDate = endDate
	}

	// A supplied questions array wholly replaces the stored bank; merging by
	// index would corrupt correctAnswer and result questionIndex references.
	if payload.Questions != nil {
		assessment.Questions = questionsFromPayload(payload.Questions)
	}

	if verr := validateAssessmentFields(assessment.Title, assessment.Description, assessment.DurationMinutes, assessment.Questions); verr != nil {
		return dto.AssessmentResponse{}, verr
	}

	if err := s.assessments.Update(ctx, &assessment); err != nil {
		return dto.AssessmentResponse{}, err
	}

	updated, err := s.assessments.GetByID(ctx, assessment.ID)
	if err != nil {
		return dto.AssessmentResponse{}, err
	}

	if !wasPublished && updated.IsPublished() {
		s.events.AssessmentPublished(updated)
	}

	s.logger.Info().Uint("assessment_id", updated.ID).Msg("assessment updated")

	return dto.NewAssessmentResponse(updated), nil
}

func (s *assessmentService) Delete(ctx context.Context, id, requesterID uint) error {
	assessment, err := s.assessments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAssessmentNotFound
		}
		return err
	}

	if assessment.CreatedBy != requesterID {
		return ErrNotOwner
	}

	resultCount, err := s.results.CountByAssessment(ctx, id)
	if err != nil {
		return err
	}

	if err := s.assessments.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info().
		Uint("assessment_id", id).
		Uint("requester_id", requesterID).
		Int64("results_removed", resultCount).
		Msg("assessment deleted")

	return nil
}

func questionsFromPayload(payloads []dto.QuestionPayload) []models.Question {
	if payloads == nil {
		return nil
	}

	questions := make([]models.Question, 0, len(payloads))
	for _, p := range payloads {
		question := models.Question{
			Text:          p.Text,
			Type:          p.Type,
			Options:       p.Options,
			CorrectAnswer: p.CorrectAnswer,
			Points:        p.Points,
		}
		if question.Type == "" {
			question.Type = models.QuestionTypeMultipleChoice
		}
		questions = append(questions, question)
	}
	return questions
}

// parseOptionalDate coerces the external date representation into a timestamp.
// Empty input means the bound is absent.
func parseOptionalDate(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}

	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if parsed, err := time.Parse(layout, value); err == nil {
			return &parsed, nil
		}
	}

	return nil, fmt.Errorf("unsupported date format: %q", value)
}
