package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"noctuai/internal/errors"
	"noctuai/internal/model"
	"noctuai/internal/service"
)

// CreationHandler handles creation listing, the community feed, like toggling
// and plan upgrades.
type CreationHandler struct {
	creationService service.CreationService
}

// NewCreationHandler creates a new creation handler.
func NewCreationHandler(creationService service.CreationService) *CreationHandler {
	return &CreationHandler{creationService: creationService}
}

// CreationsResponse wraps a list of creations in the success envelope.
type CreationsResponse struct {
	Success   bool             `json:"success"`
	Creations []model.Creation `json:"creations"`
}

// ToggleLikeRequest represents a like toggle request.
type ToggleLikeRequest struct {
	ID string `json:"id" validate:"required,uuid"`
}

// ToggleLikeResponse carries the updated creation after a like toggle.
type ToggleLikeResponse struct {
	Success  bool            `json:"success"`
	Message  string          `json:"message"`
	Creation *model.Creation `json:"creation"`
}

// GetUserCreations godoc
// @Summary List the caller's creations
// @Tags user
// @Produce json
// @Security BearerAuth
// @Success 200 {object} CreationsResponse
// @Failure 401 {object} errors.Envelope
// @Failure 500 {object} errors.Envelope
// @Router /user/get-user-creations [get]
func (h *CreationHandler) GetUserCreations(c echo.Context) error {
	userID, err := userIDFromContext(c)
	if err != nil {
		return err
	}

	creations, err := h.creationService.ListUserCreations(c.Request().Context(), userID)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return c.JSON(httpErr.StatusCode, errors.Fail(httpErr.Message))
	}

	return c.JSON(http.StatusOK, CreationsResponse{Success: true, Creations: creations})
}

// GetPublishedCreations godoc
// @Summary List the community feed of published creations
// @Tags user
// @Produce json
// @Security BearerAuth
// @Success 200 {object} CreationsResponse
// @Failure 401 {object} errors.Envelope
// @Failure 500 {object} errors.Envelope
// @Router /user/get-published-creations [get]
func (h *CreationHandler) GetPublishedCreations(c echo.Context) error {
	if _, err := userIDFromContext(c); err != nil {
		return err
	}

	creations, err := h.creationService.ListPublishedCreations(c.Request().Context())
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return c.JSON(httpErr.StatusCode, errors.Fail(httpErr.Message))
	}

	return c.JSON(http.StatusOK, CreationsResponse{Success: true, Creations: creations})
}

// ToggleLikeCreation godoc
// @Summary Toggle the caller's like on a creation
// @Tags user
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body ToggleLikeRequest true "Creation id"
// @Success 200 {object} ToggleLikeResponse
// @Failure 400 {object} errors.Envelope
// @Failure 404 {object} errors.Envelope
// @Failure 500 {object} errors.Envelope
// @Router /user/toggle-like-creations [post]
func (h *CreationHandler) ToggleLikeCreation(c echo.Context) error {
	userID, err := userIDFromContext(c)
	if err != nil {
		return err
	}

	var req ToggleLikeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errors.Fail("invalid request body"))
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errors.Fail(err.Error()))
	}

	creationID, err := uuid.Parse(req.ID)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errors.Fail("invalid creation id"))
	}

	creation, liked, err := h.creationService.ToggleLike(c.Request().Context(), creationID, userID)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return c.JSON(httpErr.StatusCode, errors.Fail(httpErr.Message))
	}

	message := "Creation unliked"
	if liked {
		message = "Creation liked"
	}

	return c.JSON(http.StatusOK, ToggleLikeResponse{Success: true, Message: message, Creation: creation})
}

// UpgradePlan godoc
// @Summary Upgrade the caller to the premium plan
// @Tags user
// @Produce json
// @Security BearerAuth
// @Success 200 {object} errors.Envelope
// @Failure 401 {object} errors.Envelope
// @Failure 500 {object} errors.Envelope
// @Router /user/upgrade [post]
func (h *CreationHandler) UpgradePlan(c echo.Context) error {
	userID, err := userIDFromContext(c)
	if err != nil {
		return err
	}

	if err := h.creationService.UpgradePlan(c.Request().Context(), userID); err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return c.JSON(httpErr.StatusCode, errors.Fail(httpErr.Message))
	}

	return c.JSON(http.StatusOK, errors.Envelope{Success: true, Message: "Plan upgraded to premium"})
}
