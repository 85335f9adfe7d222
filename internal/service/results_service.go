package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"

	"github.com/campushq/placement-go-api/internal/dto"
	"github.com/campushq/placement-go-api/internal/repository"
)

// ResultsService aggregates an assessment's results for its owning TPO.
type ResultsService interface {
	ResultsFor(ctx context.Context, assessmentID, requesterID uint) (dto.AssessmentResultsResponse, error)
}

type resultsService struct {
	assessments repository.AssessmentRepository
	results     repository.ResultRepository
	cache       *redis.Client
	cacheTTL    time.Duration
	logger      zerolog.Logger
}

// NewResultsService constructs a ResultsService instance.
func NewResultsService(assessmentRepo repository.AssessmentRepository, resultRepo repository.ResultRepository, cache *redis.Client, ttl time.Duration, logger zerolog.Logger) ResultsService {
	return &resultsService{
		assessments: assessmentRepo,
		results:     resultRepo,
		cache:       cache,
		cacheTTL:    ttl,
		logger:      logger.With().Str("component", "results_service").Logger(),
	}
}

func (s *resultsService) ResultsFor(ctx context.Context, assessmentID, requesterID uint) (dto.AssessmentResultsResponse, error) {
	tracer := otel.Tracer("github.com/campushq/placement-go-api/internal/service/results")
	ctx, span := tracer.Start(ctx, "results.aggregate")
	span.SetAttributes(attribute.Int64("assessment.id", int64(assessmentID)))
	defer span.End()

	assessment, err := s.assessments.GetByID(ctx, assessmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AssessmentResultsResponse{}, ErrAssessmentNotFound
		}
		span.RecordError(err)
		return dto.AssessmentResultsResponse{}, err
	}

	// Ownership is checked after existence so callers learn "not found"
	// before "forbidden".
	if assessment.CreatedBy != requesterID {
		return dto.AssessmentResultsResponse{}, ErrNotOwner
	}

	cacheKey := resultsCacheKey(assessmentID)
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, cacheKey).Result()
		if err == nil {
			var response dto.AssessmentResultsResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &response); unmarshalErr == nil {
				response.CacheHit = true
				span.SetAttributes(attribute.Bool("results.cache_hit", true))
				return response, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read results cache")
			span.RecordError(err)
		}
	}

	results, err := s.results.ListByAssessment(ctx, assessmentID)
	if err != nil {
		span.RecordError(err)
		return dto.AssessmentResultsResponse{}, err
	}

	responses := dto.NewResultResponseSlice(results)

	// Attach the question bank once so reviewers can read each answer sheet.
	assessmentLite := dto.ResultAssessmentLite{
		ID:        assessment.ID,
		Title:     assessment.Title,
		Questions: dto.NewAssessmentResponse(assessment).Questions,
	}
	for i := range responses {
		lite := assessmentLite
		responses[i].Assessment = &lite
	}

	response := dto.AssessmentResultsResponse{
		Results:    responses,
		Statistics: buildStatistics(responses),
	}
	span.SetAttributes(attribute.Int("results.count", len(responses)))

	if s.cache != nil {
		payload, err := json.Marshal(response)
		if err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store results cache")
				span.RecordError(err)
			}
		}
	}

	return response, nil
}

func buildStatistics(results []dto.ResultResponse) dto.AssessmentStatistics {
	stats := dto.AssessmentStatistics{TotalStudents: len(results)}
	if len(results) == 0 {
		return stats
	}

	scoreSum := 0.0
	timeSum := 0.0
	for _, result := range results {
		if result.Passed {
			stats.PassedCount++
		}
		scoreSum += result.Percentage
		timeSum += float64(result.TimeTaken)
	}

	stats.FailedCount = stats.TotalStudents - stats.PassedCount
	stats.AverageScore = roundTo(scoreSum/float64(len(results)), 2)
	stats.AverageTime = roundTo(timeSum/float64(len(results)), 1)

	return stats
}
