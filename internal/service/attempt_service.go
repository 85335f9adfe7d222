package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/campushq/placement-go-api/internal/dto"
	"github.com/campushq/placement-go-api/internal/models"
	"github.com/campushq/placement-go-api/internal/repository"
)

// ErrAssessmentNotPublished indicates the assessment is not visible to students.
var ErrAssessmentNotPublished = errors.New("assessment is not live")

// ErrAssessmentNotOpen indicates the assessment window has not started.
var ErrAssessmentNotOpen = errors.New("assessment has not started yet")

// ErrAssessmentEnded indicates the assessment window is over.
var ErrAssessmentEnded = errors.New("assessment has already ended")

// ErrDuplicateSubmission is returned to the loser of a concurrent
// first-submission race, detected through the storage-level unique constraint.
var ErrDuplicateSubmission = errors.New("duplicate submission")

// AlreadySubmittedError rejects a second attempt and carries the frozen
// result so the client can display it.
type AlreadySubmittedError struct {
	Result dto.ResultResponse
}

func (e *AlreadySubmittedError) Error() string {
	return "assessment already submitted"
}

// AttemptService is the student-facing side of the assessment engine:
// listing open assessments, handing out the sanitized taking view, and
// scoring submissions.
type AttemptService interface {
	ListOpen(ctx context.Context) ([]dto.AssessmentSummaryResponse, error)
	GetForTaking(ctx context.Context, assessmentID, studentID uint) (dto.TakeAssessmentResponse, error)
	Submit(ctx context.Context, assessmentID, studentID uint, payload dto.SubmitRequest) (dto.ResultResponse, error)
}

type attemptService struct {
	assessments repository.AssessmentRepository
	results     repository.ResultRepository
	validator   *validator.Validate
	cache       *redis.Client
	events      *AssessmentEvents
	logger      zerolog.Logger
	now         func() time.Time
}

// NewAttemptService constructs an AttemptService instance.
func NewAttemptService(assessmentRepo repository.AssessmentRepository, resultRepo repository.ResultRepository, validate *validator.Validate, cache *redis.Client, events *AssessmentEvents, logger zerolog.Logger) AttemptService {
	return &attemptService{
		assessments: assessmentRepo,
		results:     resultRepo,
		validator:   validate,
		cache:       cache,
		events:      events,
		logger:      logger.With().Str("component", "attempt_service").Logger(),
		now:         time.Now,
	}
}

func (s *attemptService) ListOpen(ctx context.Context) ([]dto.AssessmentSummaryResponse, error) {
	assessments, err := s.assessments.ListPublished(ctx, s.now())
	if err != nil {
		return nil, err
	}

	return dto.NewAssessmentSummarySlice(assessments), nil
}

// GetForTaking gates a student's entry into an assessment and returns the
// sanitized view. It never creates or mutates a result; the advisory
// started-at value is persisted only when the student eventually submits.
func (s *attemptService) GetForTaking(ctx context.Context, assessmentID, studentID uint) (dto.TakeAssessmentResponse, error) {
	assessment, err := s.assessments.GetByID(ctx, assessmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.TakeAssessmentResponse{}, ErrAssessmentNotFound
		}
		return dto.TakeAssessmentResponse{}, err
	}

	now := s.now()
	if !assessment.IsPublished() {
		return dto.TakeAssessmentResponse{}, ErrAssessmentNotPublished
	}
	if assessment.OpensAfter(now) {
		return dto.TakeAssessmentResponse{}, ErrAssessmentNotOpen
	}
	if assessment.ClosedBefore(now) {
		return dto.TakeAssessmentResponse{}, ErrAssessmentEnded
	}

	startedAt := now
	existing, err := s.results.GetByAssessmentAndStudent(ctx, assessmentID, studentID)
	switch {
	case err == nil && existing.IsSubmitted():
		return dto.TakeAssessmentResponse{}, &AlreadySubmittedError{Result: dto.NewResultResponse(existing)}
	case err == nil:
		// Resume an in-progress attempt with its original session start.
		if existing.StartedAt != nil {
			startedAt = *existing.StartedAt
		}
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return dto.TakeAssessmentResponse{}, err
	}

	return dto.NewTakeAssessmentResponse(assessment, startedAt), nil
}

// Submit scores the answer set against the stored question bank and freezes
// the result. At most one result per (assessment, student) pair can ever be
// submitted; a pre-existing unsubmitted draft is overwritten in place.
func (s *attemptService) Submit(ctx context.Context, assessmentID, studentID uint, payload dto.SubmitRequest) (dto.ResultResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ResultResponse{}, err
	}

	assessment, err := s.assessments.GetByID(ctx, assessmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ResultResponse{}, ErrAssessmentNotFound
		}
		return dto.ResultResponse{}, err
	}

	// Same gates as taking. The end bound is stretched by one assessment
	// duration so an attempt started near the close can still land.
	now := s.now()
	if !assessment.IsPublished() {
		return dto.ResultResponse{}, ErrAssessmentNotPublished
	}
	if assessment.OpensAfter(now) {
		return dto.ResultResponse{}, ErrAssessmentNotOpen
	}
	if assessment.EndDate != nil {
		grace := time.Duration(assessment.DurationMinutes) * time.Minute
		if now.After(assessment.EndDate.Add(grace)) {
			return dto.ResultResponse{}, ErrAssessmentEnded
		}
	}

	existing, err := s.results.GetByAssessmentAndStudent(ctx, assessmentID, studentID)
	haveExisting := err == nil
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.ResultResponse{}, err
	}
	if haveExisting && existing.IsSubmitted() {
		return dto.ResultResponse{}, &AlreadySubmittedError{Result: dto.NewResultResponse(existing)}
	}

	answers, score, totalPoints := scoreAnswers(assessment.Questions, payload.Answers)

	percentage := 0.0
	if totalPoints > 0 {
		percentage = roundTo(float64(score)/float64(totalPoints)*100, 2)
	}

	passed := assessment.PassingScore != nil && percentage >= *assessment.PassingScore

	submittedAt := now
	startedAt, _ := parseOptionalDate(payload.StartedAt)
	timeTaken := 0
	if startedAt != nil {
		timeTaken = int(math.Round(submittedAt.Sub(*startedAt).Minutes()))
		// A claimed start in the future is garbage, not credit.
		if timeTaken < 0 {
			timeTaken = 0
		}
	}

	result := existing
	if !haveExisting {
		result = models.AssessmentResult{
			AssessmentID: assessmentID,
			StudentID:    studentID,
		}
	}
	result.Answers = answers
	result.Score = score
	result.TotalPoints = totalPoints
	result.Percentage = percentage
	result.Passed = passed
	result.StartedAt = startedAt
	result.SubmittedAt = &submittedAt
	result.TimeTakenMinutes = timeTaken
	result.AutoSubmitted = payload.AutoSubmitted

	if haveExisting {
		err = s.results.Update(ctx, &result)
	} else {
		err = s.results.Create(ctx, &result)
	}
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Lost the first-submission race; the winner's row already exists.
			return dto.ResultResponse{}, ErrDuplicateSubmission
		}
		return dto.ResultResponse{}, err
	}

	s.invalidateResultsCache(ctx, assessmentID)
	s.events.ResultSubmitted(result)

	s.logger.Info().
		Uint("assessment_id", assessmentID).
		Uint("student_id", studentID).
		Float64("percentage", percentage).
		Bool("passed", passed).
		Bool("auto_submitted", payload.AutoSubmitted).
		Msg("assessment submitted")

	return dto.NewResultResponse(result), nil
}

// scoreAnswers walks the questions in stored order. Every question counts
// toward the total whether or not it was answered; a question is correct only
// when the selected index strictly equals its correct answer.
func scoreAnswers(questions []models.Question, answers []dto.AnswerPayload) ([]models.Answer, int, int) {
	selected := make(map[int]*int, len(answers))
	for _, a := range answers {
		if _, ok := selected[a.QuestionIndex]; !ok {
			selected[a.QuestionIndex] = a.SelectedAnswer
		}
	}

	records := make([]models.Answer, 0, len(questions))
	score := 0
	totalPoints := 0

	for i, q := range questions {
		points := q.PointsOrDefault()
		totalPoints += points

		choice := selected[i]
		correct := choice != nil && q.CorrectAnswer != nil && *choice == *q.CorrectAnswer

		earned := 0
		if correct {
			earned = points
			score += points
		}

		records = append(records, models.Answer{
			QuestionIndex:  i,
			SelectedAnswer: choice,
			IsCorrect:      correct,
			PointsEarned:   earned,
		})
	}

	return records, score, totalPoints
}

func (s *attemptService) invalidateResultsCache(ctx context.Context, assessmentID uint) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, resultsCacheKey(assessmentID)).Err(); err != nil {
		s.logger.Warn().Err(err).Uint("assessment_id", assessmentID).Msg("failed to invalidate results cache")
	}
}

func resultsCacheKey(assessmentID uint) string {
	return fmt.Sprintf("results:assessment:%d", assessmentID)
}

func roundTo(value float64, decimals int) float64 {
	factor := math.Pow(10, float64(decimals))
	return math.Round(value*factor) / factor
}
