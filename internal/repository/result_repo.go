package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/campushq/placement-go-api/internal/models"
)

// ResultRepository defines data operations for assessment results.
type ResultRepository interface {
	GetByAssessmentAndStudent(ctx context.Context, assessmentID, studentID uint) (models.AssessmentResult, error)
	ListByAssessment(ctx context.Context, assessmentID uint) ([]models.AssessmentResult, error)
	CountByAssessment(ctx context.Context, assessmentID uint) (int64, error)
	Create(ctx context.Context, result *models.AssessmentResult) error
	Update(ctx context.Context, result *models.AssessmentResult) error
}

type resultRepository struct {
	db *gorm.DB
}

// NewResultRepository instantiates the repository.
func NewResultRepository(db *gorm.DB) ResultRepository {
	return &resultRepository{db: db}
}

func (r *resultRepository) GetByAssessmentAndStudent(ctx context.Context, assessmentID, studentID uint) (models.AssessmentResult, error) {
	var result models.AssessmentResult
	if err := r.db.WithContext(ctx).Model(&models.AssessmentResult{}).
		Where("assessment_id = ?", assessmentID).
		Where("student_id = ?", studentID).
		First(&result).Error; err != nil {
		return models.AssessmentResult{}, err
	}

	return result, nil
}

func (r *resultRepository) ListByAssessment(ctx context.Context, assessmentID uint) ([]models.AssessmentResult, error) {
	var results []models.AssessmentResult
	if err := r.db.WithContext(ctx).Model(&models.AssessmentResult{}).
		Preload("Student").
		Where("assessment_id = ?", assessmentID).
		Order("submitted_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}

	return results, nil
}

func (r *resultRepository) CountByAssessment(ctx context.Context, assessmentID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.AssessmentResult{}).
		Where("assessment_id = ?", assessmentID).
		Count(&count).Error; err != nil {
		return 0, err
	}

	return count, nil
}

// Create inserts the first result for a (assessment, student) pair. The
// unique index on that pair makes the storage layer reject a concurrent
// duplicate with gorm.ErrDuplicatedKey.
func (r *resultRepository) Create(ctx context.Context, result *models.AssessmentResult) error {
	return r.db.WithContext(ctx).Create(result).Error
}

func (r *resultRepository) Update(ctx context.Context, result *models.AssessmentResult) error {
	return r.db.WithContext(ctx).Save(result).Error
}
