package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/campushq/placement-go-api/internal/models"
)

// AssessmentRepository defines data operations for assessments.
type AssessmentRepository interface {
	List(ctx context.Context) ([]models.Assessment, error)
	ListByCreator(ctx context.Context, creatorID uint) ([]models.Assessment, error)
	ListPublished(ctx context.Context, reference time.Time) ([]models.Assessment, error)
	GetByID(ctx context.Context, id uint) (models.Assessment, error)
	Create(ctx context.Context, assessment *models.Assessment) error
	Update(ctx context.Context, assessment *models.Assessment) error
	Delete(ctx context.Context, id uint) error
}

type assessmentRepository struct {
	db *gorm.DB
}

// NewAssessmentRepository instantiates the repository.
func NewAssessmentRepository(db *gorm.DB) AssessmentRepository {
	return &assessmentRepository{db: db}
}

func (r *assessmentRepository) baseQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.Assessment{}).
		Preload("Creator").
		Preload("Job")
}

func (r *assessmentRepository) List(ctx context.Context) ([]models.Assessment, error) {
	var assessments []models.Assessment
	if err := r.baseQuery(ctx).Order("created_at DESC").Find(&assessments).Error; err != nil {
		return nil, err
	}

	return assessments, nil
}

func (r *assessmentRepository) ListByCreator(ctx context.Context, creatorID uint) ([]models.Assessment, error) {
	var assessments []models.Assessment
	if err := r.baseQuery(ctx).
		Where("created_by = ?", creatorID).
		Order("created_at DESC").
		Find(&assessments).Error; err != nil {
		return nil, err
	}

	return assessments, nil
}

// ListPublished returns published assessments whose window admits the
// reference instant. Both bounds are inclusive; an absent bound does not
// constrain that side.
func (r *assessmentRepository) ListPublished(ctx context.Context, reference time.Time) ([]models.Assessment, error) {
	var assessments []models.Assessment
	if err := r.baseQuery(ctx).
		Where("status = ?", models.AssessmentStatusPublished).
		Where("start_date IS NULL OR start_date <= ?", reference).
		Where("end_date IS NULL OR end_date >= ?", reference).
		Order("created_at DESC").
		Find(&assessments).Error; err != nil {
		return nil, err
	}

	return assessments, nil
}

func (r *assessmentRepository) GetByID(ctx context.Context, id uint) (models.Assessment, error) {
	var assessment models.Assessment
	if err := r.baseQuery(ctx).First(&assessment, id).Error; err != nil {
		return models.Assessment{}, err
	}

	return assessment, nil
}

func (r *assessmentRepository) Create(ctx context.Context, assessment *models.Assessment) error {
	return r.db.WithContext(ctx).Create(assessment).Error
}

func (r *assessmentRepository) Update(ctx context.Context, assessment *models.Assessment) error {
	return r.db.WithContext(ctx).Save(assessment).Error
}

// Delete removes the assessment and all of its results in one transaction,
// so orphaned results never survive.
func (r *assessmentRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("assessment_id = ?", id).Delete(&models.AssessmentResult{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Assessment{}, id).Error
	})
}
