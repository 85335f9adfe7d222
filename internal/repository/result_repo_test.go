package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/campushq/placement-go-api/internal/models"
)

func TestResultRepositoryDuplicatePairIsTranslated(t *testing.T) {
	db := setupTestDB(t)
	repo := NewResultRepository(db)

	assessment := seedAssessment(t, db, nil)

	submittedAt := time.Now()
	first := models.AssessmentResult{AssessmentID: assessment.ID, StudentID: 7, SubmittedAt: &submittedAt}
	require.NoError(t, repo.Create(context.Background(), &first))

	second := models.AssessmentResult{AssessmentID: assessment.ID, StudentID: 7, SubmittedAt: &submittedAt}
	err := repo.Create(context.Background(), &second)
	require.ErrorIs(t, err, gorm.ErrDuplicatedKey)

	// Same student on another assessment is fine.
	other := seedAssessment(t, db, func(a *models.Assessment) { a.Title = "Other" })
	third := models.AssessmentResult{AssessmentID: other.ID, StudentID: 7, SubmittedAt: &submittedAt}
	require.NoError(t, repo.Create(context.Background(), &third))
}

func TestResultRepositoryAnswerSheetRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	repo := NewResultRepository(db)

	assessment := seedAssessment(t, db, nil)

	startedAt := time.Now().Add(-20 * time.Minute)
	submittedAt := time.Now()
	created := models.AssessmentResult{
		AssessmentID: assessment.ID,
		StudentID:    7,
		Answers: []models.Answer{
			{QuestionIndex: 0, SelectedAnswer: intRef(1), IsCorrect: true, PointsEarned: 1},
			{QuestionIndex: 1, SelectedAnswer: nil},
		},
		Score:            1,
		TotalPoints:      2,
		Percentage:       50,
		Passed:           true,
		StartedAt:        &startedAt,
		SubmittedAt:      &submittedAt,
		TimeTakenMinutes: 20,
	}
	require.NoError(t, repo.Create(context.Background(), &created))

	stored, err := repo.GetByAssessmentAndStudent(context.Background(), assessment.ID, 7)
	require.NoError(t, err)
	require.Len(t, stored.Answers, 2)
	require.Equal(t, 1, *stored.Answers[0].SelectedAnswer)
	require.True(t, stored.Answers[0].IsCorrect)
	require.Nil(t, stored.Answers[1].SelectedAnswer)
	require.Equal(t, 20, stored.TimeTakenMinutes)
	require.True(t, stored.IsSubmitted())
}

func TestResultRepositoryGetByAssessmentAndStudentMissing(t *testing.T) {
	db := setupTestDB(t)
	repo := NewResultRepository(db)

	_, err := repo.GetByAssessmentAndStudent(context.Background(), 1, 1)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestResultRepositoryListByAssessmentOrdersAndPreloads(t *testing.T) {
	db := setupTestDB(t)
	repo := NewResultRepository(db)

	assessment := seedAssessment(t, db, nil)

	alice := models.User{Name: "Alice", Email: "alice@campus.test", Role: models.RoleStudent}
	bob := models.User{Name: "Bob", Email: "bob@campus.test", Role: models.RoleStudent}
	require.NoError(t, db.Create(&alice).Error)
	require.NoError(t, db.Create(&bob).Error)

	earlier := time.Now().Add(-time.Hour)
	later := time.Now()
	require.NoError(t, repo.Create(context.Background(), &models.AssessmentResult{
		AssessmentID: assessment.ID, StudentID: alice.ID, SubmittedAt: &earlier,
	}))
	require.NoError(t, repo.Create(context.Background(), &models.AssessmentResult{
		AssessmentID: assessment.ID, StudentID: bob.ID, SubmittedAt: &later,
	}))

	listed, err := repo.ListByAssessment(context.Background(), assessment.ID)
	require.NoError(t, err)
	require.Len(t, listed, 2)
	require.Equal(t, "Bob", listed[0].Student.Name, "latest submission first")
	require.Equal(t, "Alice", listed[1].Student.Name)
}

func TestResultRepositoryUpdateFreezesDraft(t *testing.T) {
	db := setupTestDB(t)
	repo := NewResultRepository(db)

	assessment := seedAssessment(t, db, nil)

	startedAt := time.Now().Add(-10 * time.Minute)
	draft := models.AssessmentResult{AssessmentID: assessment.ID, StudentID: 7, StartedAt: &startedAt}
	require.NoError(t, repo.Create(context.Background(), &draft))

	stored, err := repo.GetByAssessmentAndStudent(context.Background(), assessment.ID, 7)
	require.NoError(t, err)
	require.False(t, stored.IsSubmitted())

	submittedAt := time.Now()
	stored.Score = 2
	stored.TotalPoints = 2
	stored.Percentage = 100
	stored.Passed = true
	stored.SubmittedAt = &submittedAt
	require.NoError(t, repo.Update(context.Background(), &stored))

	frozen, err := repo.GetByAssessmentAndStudent(context.Background(), assessment.ID, 7)
	require.NoError(t, err)
	require.True(t, frozen.IsSubmitted())
	require.Equal(t, 2, frozen.Score)
	require.Equal(t, draft.ID, frozen.ID)
}
