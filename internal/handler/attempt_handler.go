package handler

import (
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/campushq/placement-go-api/internal/dto"
	"github.com/campushq/placement-go-api/internal/middleware"
	"github.com/campushq/placement-go-api/internal/service"
	"github.com/campushq/placement-go-api/internal/utils"
)

// AttemptHandler manages the student-facing assessment endpoints.
type AttemptHandler struct {
	service service.AttemptService
	logger  zerolog.Logger
}

// NewAttemptHandler builds an attempt handler instance.
func NewAttemptHandler(attemptService service.AttemptService, logger zerolog.Logger) *AttemptHandler {
	return &AttemptHandler{
		service: attemptService,
		logger:  logger.With().Str("component", "attempt_handler").Logger(),
	}
}

// Register attaches the student routes to the provided router group. Must be
// registered before any bare :id route so /live is not captured by it.
func (h *AttemptHandler) Register(router fiber.Router, guard fiber.Handler) {
	router.Get("/live", guard, h.listOpen)
	router.Get("/:id/take", guard, h.take)
	router.Post("/:id/submit", guard, middleware.RateLimit("assessment_submit", 10, time.Minute), h.submit)
}

func (h *AttemptHandler) listOpen(c *fiber.Ctx) error {
	assessments, err := h.service.ListOpen(c.Context())
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "live assessments retrieved", assessments)
}

func (h *AttemptHandler) take(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	studentID := userIDFromContext(c)
	if studentID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	view, err := h.service.GetForTaking(c.Context(), id, studentID)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "assessment ready", view)
}

func (h *AttemptHandler) submit(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	studentID := userIDFromContext(c)
	if studentID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	var payload dto.SubmitRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.service.Submit(c.Context(), id, studentID, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "Assessment submitted successfully!", result)
}

func (h *AttemptHandler) handleError(c *fiber.Ctx, err error) error {
	var submitted *service.AlreadySubmittedError
	var verr *service.ValidationError
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrAssessmentNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "Assessment not found")
	case errors.Is(err, service.ErrAssessmentNotPublished):
		return utils.SendError(c, fiber.StatusForbidden, "Assessment is not live.")
	case errors.Is(err, service.ErrAssessmentNotOpen):
		return utils.SendError(c, fiber.StatusForbidden, "Assessment has not started yet.")
	case errors.Is(err, service.ErrAssessmentEnded):
		return utils.SendError(c, fiber.StatusForbidden, "Assessment has already ended.")
	case errors.As(err, &submitted):
		return utils.SendErrorWithData(c, fiber.StatusForbidden, "Assessment already submitted.", submitted.Result)
	case errors.Is(err, service.ErrDuplicateSubmission):
		return utils.SendError(c, fiber.StatusConflict, "Assessment already submitted.")
	case errors.As(err, &verr):
		return utils.SendError(c, fiber.StatusBadRequest, verr.Message)
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
