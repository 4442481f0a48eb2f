package errors

import (
	"errors"
	"net/http"
)

var (
	// ErrQuotaExceeded is returned when a free user has exhausted the metered quota.
	ErrQuotaExceeded = errors.New("Free usage limit reached. Please upgrade to premium.")
	// ErrPremiumRequired is returned when a free user requests a premium-only feature.
	ErrPremiumRequired = errors.New("This feature is only available to premium users. Please upgrade your plan.")
	// ErrFileRequired is returned when a file-accepting feature receives no upload.
	ErrFileRequired = errors.New("no file uploaded")
	// ErrFileTooLarge is returned when an uploaded resume exceeds the size limit.
	ErrFileTooLarge = errors.New("File size exceeds the 5MB limit.")
	// ErrInvalidPDF is returned when the uploaded resume cannot be parsed.
	ErrInvalidPDF = errors.New("Could not process the PDF file. Please make sure it's a valid PDF document.")
	// ErrCreationNotFound is returned when a creation id does not exist.
	ErrCreationNotFound = errors.New("creation not found")
	// ErrProviderFailure is returned when a downstream AI or CDN call fails.
	ErrProviderFailure = errors.New("provider request failed")
)

// Envelope is the JSON shape of every feature response: success with content,
// or failure with a human-readable message.
type Envelope struct {
	Success bool   `json:"success"`
	Content string `json:"content,omitempty"`
	Message string `json:"message,omitempty"`
}

// Fail builds a failure envelope.
func Fail(message string) Envelope {
	return Envelope{Success: false, Message: message}
}

// OK builds a success envelope.
func OK(content string) Envelope {
	return Envelope{Success: true, Content: content}
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// MapErrorToHTTP maps domain errors to HTTP errors. Denials keep the exact
// upstream wording; anything unrecognized becomes a 500.
func MapErrorToHTTP(err error) *HTTPError {
	switch {
	case errors.Is(err, ErrQuotaExceeded):
		return &HTTPError{StatusCode: http.StatusForbidden, Message: ErrQuotaExceeded.Error()}
	case errors.Is(err, ErrPremiumRequired):
		return &HTTPError{StatusCode: http.StatusForbidden, Message: ErrPremiumRequired.Error()}
	case errors.Is(err, ErrFileRequired):
		return &HTTPError{StatusCode: http.StatusBadRequest, Message: ErrFileRequired.Error()}
	case errors.Is(err, ErrFileTooLarge):
		return &HTTPError{StatusCode: http.StatusBadRequest, Message: ErrFileTooLarge.Error()}
	case errors.Is(err, ErrInvalidPDF):
		return &HTTPError{StatusCode: http.StatusBadRequest, Message: ErrInvalidPDF.Error()}
	case errors.Is(err, ErrCreationNotFound):
		return &HTTPError{StatusCode: http.StatusNotFound, Message: ErrCreationNotFound.Error()}
	case errors.Is(err, ErrProviderFailure):
		return &HTTPError{StatusCode: http.StatusInternalServerError, Message: err.Error()}
	default:
		return &HTTPError{StatusCode: http.StatusInternalServerError, Message: "internal server error"}
	}
}
