package service

import (
	"context"
	"io"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/campushq/placement-go-api/internal/models"
)

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

func intPtr(v int) *int {
	return &v
}

type memoryAssessmentRepo struct {
	assessments map[uint]models.Assessment
	nextID      uint
}

func newMemoryAssessmentRepo() *memoryAssessmentRepo {
	return &memoryAssessmentRepo{
		assessments: make(map[uint]models.Assessment),
		nextID:      1,
	}
}

func (m *memoryAssessmentRepo) sorted(filter func(models.Assessment) bool) []models.Assessment {
	results := make([]models.Assessment, 0, len(m.assessments))
	for _, assessment := range m.assessments {
		if filter == nil || filter(assessment) {
			results = append(results, assessment)
		}
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].CreatedAt.After(results[j].CreatedAt)
	})
	return results
}

func (m *memoryAssessmentRepo) List(ctx context.Context) ([]models.Assessment, error) {
	return m.sorted(nil), nil
}

func (m *memoryAssessmentRepo) ListByCreator(ctx context.Context, creatorID uint) ([]models.Assessment, error) {
	return m.sorted(func(a models.Assessment) bool {
		return a.CreatedBy == creatorID
	}), nil
}

func (m *memoryAssessmentRepo) ListPublished(ctx context.Context, reference time.Time) ([]models.Assessment, error) {
	return m.sorted(func(a models.Assessment) bool {
		return a.IsPublished() && a.OpenAt(reference)
	}), nil
}

func (m *memoryAssessmentRepo) GetByID(ctx context.Context, id uint) (models.Assessment, error) {
	assessment, ok := m.assessments[id]
	if !ok {
		return models.Assessment{}, gorm.ErrRecordNotFound
	}
	return assessment, nil
}

func (m *memoryAssessmentRepo) Create(ctx context.Context, assessment *models.Assessment) error {
	assessment.ID = m.nextID
	assessment.CreatedAt = time.Now()
	assessment.UpdatedAt = time.Now()
	if assessment.Status == "" {
		assessment.Status = models.AssessmentStatusDraft
	}
	m.assessments[m.nextID] = *assessment
	m.nextID++
	return nil
}

func (m *memoryAssessmentRepo) Update(ctx context.Context, assessment *models.Assessment) error {
	if _, ok := m.assessments[assessment.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	assessment.UpdatedAt = time.Now()
	m.assessments[assessment.ID] = *assessment
	return nil
}

func (m *memoryAssessmentRepo) Delete(ctx context.Context, id uint) error {
	if _, ok := m.assessments[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.assessments, id)
	return nil
}

type memoryResultRepo struct {
	results map[uint]models.AssessmentResult
	nextID  uint

	// failNextCreate simulates losing the storage-level uniqueness race.
	failNextCreate bool
}

func newMemoryResultRepo() *memoryResultRepo {
	return &memoryResultRepo{
		results: make(map[uint]models.AssessmentResult),
		nextID:  1,
	}
}

func (m *memoryResultRepo) GetByAssessmentAndStudent(ctx context.Context, assessmentID, studentID uint) (models.AssessmentResult, error) {
	for _, result := range m.results {
		if result.AssessmentID == assessmentID && result.StudentID == studentID {
			return result, nil
		}
	}
	return models.AssessmentResult{}, gorm.ErrRecordNotFound
}

func (m *memoryResultRepo) ListByAssessment(ctx context.Context, assessmentID uint) ([]models.AssessmentResult, error) {
	results := make([]models.AssessmentResult, 0, len(m.results))
	for _, result := range m.results {
		if result.AssessmentID == assessmentID {
			results = append(results, result)
		}
	}
	sort.Slice(results, func(i, j int) bool {
		left, right := results[i].SubmittedAt, results[j].SubmittedAt
		if left == nil || right == nil {
			return right == nil
		}
		return left.After(*right)
	})
	return results, nil
}

func (m *memoryResultRepo) CountByAssessment(ctx context.Context, assessmentID uint) (int64, error) {
	count := int64(0)
	for _, result := range m.results {
		if result.AssessmentID == assessmentID {
			count++
		}
	}
	return count, nil
}

func (m *memoryResultRepo) Create(ctx context.Context, result *models.AssessmentResult) error {
	if m.failNextCreate {
		m.failNextCreate = false
		return gorm.ErrDuplicatedKey
	}
	for _, existing := range m.results {
		if existing.AssessmentID == result.AssessmentID && existing.StudentID == result.StudentID {
			return gorm.ErrDuplicatedKey
		}
	}
	result.ID = m.nextID
	result.CreatedAt = time.Now()
	result.UpdatedAt = time.Now()
	m.results[m.nextID] = *result
	m.nextID++
	return nil
}

func (m *memoryResultRepo) Update(ctx context.Context, result *models.AssessmentResult) error {
	if _, ok := m.results[result.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	result.UpdatedAt = time.Now()
	m.results[result.ID] = *result
	return nil
}
