package handler_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/campushq/placement-go-api/internal/config"
	"github.com/campushq/placement-go-api/internal/dto"
	"github.com/campushq/placement-go-api/internal/handler"
	"github.com/campushq/placement-go-api/internal/models"
	"github.com/campushq/placement-go-api/internal/repository"
	"github.com/campushq/placement-go-api/internal/router"
	"github.com/campushq/placement-go-api/internal/service"
)

func setupAssessmentApp(t *testing.T) *fiber.App {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Job{}, &models.Assessment{}, &models.AssessmentResult{}))
	for _, table := range []interface{}{&models.AssessmentResult{}, &models.Assessment{}, &models.Job{}, &models.User{}} {
		require.NoError(t, db.Where("1 = 1").Delete(table).Error)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	logger := zerolog.New(io.Discard)
	events := service.NewAssessmentEvents(nil, logger)

	assessmentRepo := repository.NewAssessmentRepository(db)
	resultRepo := repository.NewResultRepository(db)

	assessmentService := service.NewAssessmentService(assessmentRepo, resultRepo, validate, events, logger)
	attemptService := service.NewAttemptService(assessmentRepo, resultRepo, validate, nil, events, logger)
	resultsService := service.NewResultsService(assessmentRepo, resultRepo, nil, time.Minute, logger)

	app := fiber.New()

	router.Register(app, config.Config{AppName: "Test", JWTSecret: "secret"}, router.Dependencies{
		AssessmentHandler: handler.NewAssessmentHandler(assessmentService, resultsService, logger),
		AttemptHandler:    handler.NewAttemptHandler(attemptService, logger),
		JWTMiddleware: func(c *fiber.Ctx) error {
			// Header-driven identity stand-in for the JWT middleware.
			if raw := c.Get("X-Test-User"); raw != "" {
				if id, err := strconv.ParseUint(raw, 10, 64); err == nil {
					c.Locals("user_id", uint(id))
				}
			}
			if role := c.Get("X-Test-Role"); role != "" {
				c.Locals("user_role", role)
			}
			return c.Next()
		},
	})

	return app
}

func authedRequest(method, target string, body interface{}, userID uint, role string) *http.Request {
	var reader io.Reader
	if body != nil {
		payload, _ := json.Marshal(body)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", fiber.MIMEApplicationJSON)
	}
	req.Header.Set("X-Test-User", fmt.Sprintf("%d", userID))
	req.Header.Set("X-Test-Role", role)
	return req
}

func decodeResponse(t *testing.T, resp *http.Response, target interface{}) {
	t.Helper()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	require.NoError(t, json.Unmarshal(data, target))
}

func sampleCreateRequest() dto.AssessmentCreateRequest {
	return dto.AssessmentCreateRequest{
		Title:       "Aptitude Round",
		Description: "General aptitude screening",
		Duration:    45,
		Status:      models.AssessmentStatusPublished,
		Questions: []dto.QuestionPayload{
			{Text: "2+2?", Options: []string{"3", "4"}, CorrectAnswer: intRef(1)},
			{Text: "Sky is blue.", Type: models.QuestionTypeTrueFalse, Options: []string{"True", "False"}, CorrectAnswer: intRef(0), Points: intRef(2)},
		},
	}
}

func intRef(v int) *int {
	return &v
}

func createAssessment(t *testing.T, app *fiber.App, userID uint, payload dto.AssessmentCreateRequest) dto.AssessmentResponse {
	t.Helper()
	resp, err := app.Test(authedRequest("POST", "/api/v1/assessments", payload, userID, models.RoleTPO))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var body struct {
		Success bool                   `json:"success"`
		Data    dto.AssessmentResponse `json:"data"`
		Message string                 `json:"message"`
	}
	decodeResponse(t, resp, &body)
	require.True(t, body.Success)
	require.Equal(t, "Assessment created successfully!", body.Message)
	require.NotZero(t, body.Data.ID)
	return body.Data
}

func TestAssessmentHandlerCreateAndGet(t *testing.T) {
	app := setupAssessmentApp(t)

	created := createAssessment(t, app, 1, sampleCreateRequest())
	require.Equal(t, models.AssessmentStatusPublished, created.Status)
	require.Len(t, created.Questions, 2)

	resp, err := app.Test(authedRequest("GET", fmt.Sprintf("/api/v1/assessments/%d", created.ID), nil, 1, models.RoleTPO))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		Success bool                   `json:"success"`
		Data    dto.AssessmentResponse `json:"data"`
	}
	decodeResponse(t, resp, &body)
	require.Equal(t, created.ID, body.Data.ID)
	require.Equal(t, 1, *body.Data.Questions[0].CorrectAnswer, "owner view keeps correct answers")
}

func TestAssessmentHandlerCreateValidationFailure(t *testing.T) {
	app := setupAssessmentApp(t)

	payload := sampleCreateRequest()
	payload.Questions[0].Options = []string{"only one"}

	resp, err := app.Test(authedRequest("POST", "/api/v1/assessments", payload, 1, models.RoleTPO))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	var body struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	decodeResponse(t, resp, &body)
	require.False(t, body.Success)
	require.Equal(t, "Each question must have at least 2 options.", body.Message)
}

func TestAssessmentHandlerStudentRoleIsRejected(t *testing.T) {
	app := setupAssessmentApp(t)

	resp, err := app.Test(authedRequest("POST", "/api/v1/assessments", sampleCreateRequest(), 1, models.RoleStudent))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestAssessmentHandlerUpdateOwnershipAndStatus(t *testing.T) {
	app := setupAssessmentApp(t)
	created := createAssessment(t, app, 1, sampleCreateRequest())

	title := "Aptitude Round v2"
	resp, err := app.Test(authedRequest("PUT", fmt.Sprintf("/api/v1/assessments/%d", created.ID),
		dto.AssessmentUpdateRequest{Title: &title}, 2, models.RoleTPO))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	var forbidden struct {
		Message string `json:"message"`
	}
	decodeResponse(t, resp, &forbidden)
	require.Equal(t, "Unauthorized to modify this assessment.", forbidden.Message)

	bogus := "live"
	resp, err = app.Test(authedRequest("PUT", fmt.Sprintf("/api/v1/assessments/%d", created.ID),
		dto.AssessmentUpdateRequest{Status: &bogus}, 1, models.RoleTPO))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, err = app.Test(authedRequest("PUT", fmt.Sprintf("/api/v1/assessments/%d", created.ID),
		dto.AssessmentUpdateRequest{Title: &title}, 1, models.RoleTPO))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var updated struct {
		Data    dto.AssessmentResponse `json:"data"`
		Message string                 `json:"message"`
	}
	decodeResponse(t, resp, &updated)
	require.Equal(t, "Assessment updated successfully!", updated.Message)
	require.Equal(t, title, updated.Data.Title)
}

func TestAssessmentHandlerDelete(t *testing.T) {
	app := setupAssessmentApp(t)
	created := createAssessment(t, app, 1, sampleCreateRequest())

	resp, err := app.Test(authedRequest("DELETE", fmt.Sprintf("/api/v1/assessments/%d", created.ID), nil, 1, models.RoleTPO))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(authedRequest("GET", fmt.Sprintf("/api/v1/assessments/%d", created.ID), nil, 1, models.RoleTPO))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestAssessmentHandlerResultsOwnerOnly(t *testing.T) {
	app := setupAssessmentApp(t)
	created := createAssessment(t, app, 1, sampleCreateRequest())

	resp, err := app.Test(authedRequest("GET", fmt.Sprintf("/api/v1/assessments/%d/results", created.ID), nil, 2, models.RoleTPO))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp, err = app.Test(authedRequest("GET", fmt.Sprintf("/api/v1/assessments/%d/results", created.ID), nil, 1, models.RoleTPO))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		Data dto.AssessmentResultsResponse `json:"data"`
	}
	decodeResponse(t, resp, &body)
	require.Zero(t, body.Data.Statistics.TotalStudents)
}
