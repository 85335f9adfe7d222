package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/campushq/placement-go-api/internal/dto"
	"github.com/campushq/placement-go-api/internal/service"
	"github.com/campushq/placement-go-api/internal/utils"
)

// AssessmentHandler manages the TPO-facing assessment endpoints.
type AssessmentHandler struct {
	service service.AssessmentService
	results service.ResultsService
	logger  zerolog.Logger
}

// NewAssessmentHandler builds an assessment handler instance.
func NewAssessmentHandler(assessmentService service.AssessmentService, resultsService service.ResultsService, logger zerolog.Logger) *AssessmentHandler {
	return &AssessmentHandler{
		service: assessmentService,
		results: resultsService,
		logger:  logger.With().Str("component", "assessment_handler").Logger(),
	}
}

// Register attaches the TPO routes to the provided router group. The guard is
// the role middleware; static segments must precede the :id routes.
func (h *AssessmentHandler) Register(router fiber.Router, guard fiber.Handler) {
	router.Post("", guard, h.create)
	router.Get("", guard, h.list)
	router.Get("/my", guard, h.listMine)
	router.Get("/:id/results", guard, h.resultsFor)
	router.Get("/:id", guard, h.get)
	router.Put("/:id", guard, h.update)
	router.Delete("/:id", guard, h.delete)
}

func (h *AssessmentHandler) create(c *fiber.Ctx) error {
	creatorID := userIDFromContext(c)
	if creatorID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	var payload dto.AssessmentCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	assessment, err := h.service.Create(c.Context(), creatorID, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "Assessment created successfully!", assessment)
}

func (h *AssessmentHandler) list(c *fiber.Ctx) error {
	assessments, err := h.service.List(c.Context())
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "assessments retrieved", assessments)
}

func (h *AssessmentHandler) listMine(c *fiber.Ctx) error {
	creatorID := userIDFromContext(c)
	if creatorID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	assessments, err := h.service.ListMine(c.Context(), creatorID)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "assessments retrieved", assessments)
}

func (h *AssessmentHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	assessment, err := h.service.Get(c.Context(), id)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "assessment retrieved", assessment)
}

func (h *AssessmentHandler) update(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	updaterID := userIDFromContext(c)
	if updaterID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	var payload dto.AssessmentUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	assessment, err := h.service.Update(c.Context(), id, updaterID, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "Assessment updated successfully!", assessment)
}

func (h *AssessmentHandler) delete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	requesterID := userIDFromContext(c)
	if requesterID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	if err := h.service.Delete(c.Context(), id, requesterID); err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "Assessment deleted successfully!", nil)
}

func (h *AssessmentHandler) resultsFor(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	requesterID := userIDFromContext(c)
	if requesterID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	results, err := h.results.ResultsFor(c.Context(), id, requesterID)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "results retrieved", results)
}

func (h *AssessmentHandler) handleError(c *fiber.Ctx, err error) error {
	var verr *service.ValidationError
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrAssessmentNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "Assessment not found")
	case errors.Is(err, service.ErrNotOwner):
		return utils.SendError(c, fiber.StatusForbidden, "Unauthorized to modify this assessment.")
	case errors.As(err, &verr):
		return utils.SendError(c, fiber.StatusBadRequest, verr.Message)
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
