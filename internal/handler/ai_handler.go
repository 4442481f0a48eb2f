package handler

import (
	"io"
	"mime/multipart"
	"net/http"
	"os"

	"github.com/labstack/echo/v4"

	"noctuai/internal/errors"
	"noctuai/internal/service"
)

const defaultArticleLength = 800

// AIHandler handles the gated AI feature endpoints. Every response is the
// {success, content|message} envelope; uploaded files live in a per-request
// temp file that is removed on every exit path.
type AIHandler struct {
	creationService service.CreationService
}

// NewAIHandler creates a new AI feature handler.
func NewAIHandler(creationService service.CreationService) *AIHandler {
	return &AIHandler{creationService: creationService}
}

// GenerateArticleRequest represents an article generation request.
type GenerateArticleRequest struct {
	Prompt string `json:"prompt" validate:"required"`
	Length int    `json:"length"`
}

// GenerateBlogTitleRequest represents a blog title generation request.
type GenerateBlogTitleRequest struct {
	Prompt string `json:"prompt" validate:"required"`
}

// GenerateImageRequest represents an image generation request.
type GenerateImageRequest struct {
	Prompt  string `json:"prompt" validate:"required"`
	Publish bool   `json:"publish"`
}

// GenerateArticle godoc
// @Summary Generate an article from a prompt
// @Tags ai
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body GenerateArticleRequest true "Prompt and desired length"
// @Success 200 {object} errors.Envelope
// @Failure 400 {object} errors.Envelope
// @Failure 403 {object} errors.Envelope
// @Failure 500 {object} errors.Envelope
// @Router /ai/generate-article [post]
func (h *AIHandler) GenerateArticle(c echo.Context) error {
	userID, err := userIDFromContext(c)
	if err != nil {
		return err
	}

	var req GenerateArticleRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errors.Fail("invalid request body"))
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errors.Fail(err.Error()))
	}
	if req.Length <= 0 {
		req.Length = defaultArticleLength
	}

	content, err := h.creationService.GenerateArticle(c.Request().Context(), userID, req.Prompt, req.Length)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return c.JSON(httpErr.StatusCode, errors.Fail(httpErr.Message))
	}

	return c.JSON(http.StatusOK, errors.OK(content))
}

// GenerateBlogTitle godoc
// @Summary Generate blog title suggestions from a prompt
// @Tags ai
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body GenerateBlogTitleRequest true "Prompt"
// @Success 200 {object} errors.Envelope
// @Failure 400 {object} errors.Envelope
// @Failure 403 {object} errors.Envelope
// @Failure 500 {object} errors.Envelope
// @Router /ai/generate-blog-title [post]
func (h *AIHandler) GenerateBlogTitle(c echo.Context) error {
	userID, err := userIDFromContext(c)
	if err != nil {
		return err
	}

	var req GenerateBlogTitleRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errors.Fail("invalid request body"))
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errors.Fail(err.Error()))
	}

	content, err := h.creationService.GenerateBlogTitle(c.Request().Context(), userID, req.Prompt)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return c.JSON(httpErr.StatusCode, errors.Fail(httpErr.Message))
	}

	return c.JSON(http.StatusOK, errors.OK(content))
}

// GenerateImage godoc
// @Summary Generate an image from a prompt
// @Tags ai
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body GenerateImageRequest true "Prompt and publish flag"
// @Success 200 {object} errors.Envelope
// @Failure 400 {object} errors.Envelope
// @Failure 403 {object} errors.Envelope
// @Failure 500 {object} errors.Envelope
// @Router /ai/generate-image [post]
func (h *AIHandler) GenerateImage(c echo.Context) error {
	userID, err := userIDFromContext(c)
	if err != nil {
		return err
	}

	var req GenerateImageRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errors.Fail("invalid request body"))
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errors.Fail(err.Error()))
	}

	content, err := h.creationService.GenerateImage(c.Request().Context(), userID, req.Prompt, req.Publish)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return c.JSON(httpErr.StatusCode, errors.Fail(httpErr.Message))
	}

	return c.JSON(http.StatusOK, errors.OK(content))
}

// RemoveImageBackground godoc
// @Summary Remove the background from an uploaded image
// @Tags ai
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param image formData file true "Image to edit"
// @Success 200 {object} errors.Envelope
// @Failure 400 {object} errors.Envelope
// @Failure 403 {object} errors.Envelope
// @Failure 500 {object} errors.Envelope
// @Router /ai/remove-image-background [post]
func (h *AIHandler) RemoveImageBackground(c echo.Context) error {
	userID, err := userIDFromContext(c)
	if err != nil {
		return err
	}

	file, err := c.FormFile("image")
	if err != nil {
		return c.JSON(http.StatusBadRequest, errors.Fail("No image file uploaded"))
	}

	path, err := saveTempFile(file)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, errors.Fail("failed to store upload"))
	}
	defer os.Remove(path)

	content, err := h.creationService.RemoveBackground(c.Request().Context(), userID, path)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return c.JSON(httpErr.StatusCode, errors.Fail(httpErr.Message))
	}

	return c.JSON(http.StatusOK, errors.OK(content))
}

// RemoveImageObject godoc
// @Summary Erase a named object from an uploaded image
// @Tags ai
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param image formData file true "Image to edit"
// @Param object formData string true "Object to remove"
// @Success 200 {object} errors.Envelope
// @Failure 400 {object} errors.Envelope
// @Failure 403 {object} errors.Envelope
// @Failure 500 {object} errors.Envelope
// @Router /ai/remove-image-object [post]
func (h *AIHandler) RemoveImageObject(c echo.Context) error {
	userID, err := userIDFromContext(c)
	if err != nil {
		return err
	}

	object := c.FormValue("object")
	if object == "" {
		return c.JSON(http.StatusBadRequest, errors.Fail("No object specified"))
	}

	file, err := c.FormFile("image")
	if err != nil {
		return c.JSON(http.StatusBadRequest, errors.Fail("No image file uploaded"))
	}

	path, err := saveTempFile(file)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, errors.Fail("failed to store upload"))
	}
	defer os.Remove(path)

	content, err := h.creationService.RemoveObject(c.Request().Context(), userID, path, object)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return c.JSON(httpErr.StatusCode, errors.Fail(httpErr.Message))
	}

	return c.JSON(http.StatusOK, errors.OK(content))
}

// ResumeReview godoc
// @Summary Review an uploaded resume PDF
// @Tags ai
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param resume formData file true "Resume PDF, max 5MB"
// @Success 200 {object} errors.Envelope
// @Failure 400 {object} errors.Envelope
// @Failure 403 {object} errors.Envelope
// @Failure 500 {object} errors.Envelope
// @Router /ai/resume-review [post]
func (h *AIHandler) ResumeReview(c echo.Context) error {
	userID, err := userIDFromContext(c)
	if err != nil {
		return err
	}

	file, err := c.FormFile("resume")
	if err != nil {
		return c.JSON(http.StatusBadRequest, errors.Fail("No resume file uploaded"))
	}

	path, err := saveTempFile(file)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, errors.Fail("failed to store upload"))
	}
	defer os.Remove(path)

	content, err := h.creationService.ReviewResume(c.Request().Context(), userID, path, file.Size)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return c.JSON(httpErr.StatusCode, errors.Fail(httpErr.Message))
	}

	return c.JSON(http.StatusOK, errors.OK(content))
}

// saveTempFile copies a multipart upload into a per-request temp file. The
// caller owns the returned path and must remove it on every exit path.
func saveTempFile(file *multipart.FileHeader) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	tmp, err := os.CreateTemp("", "noctuai-upload-*")
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(tmp, src); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	return tmp.Name(), nil
}
