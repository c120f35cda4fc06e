package web

import (
	"errors"
	"net/http"

	"github.com/karolswdev/careplan/internal/llm"
	"github.com/karolswdev/careplan/internal/plan"
	"github.com/karolswdev/careplan/internal/syllabus"
)

// Error codes returned in API and websocket error bodies.
const (
	ErrorBadRequest       = "BAD_REQUEST"
	ErrorValidation       = "VALIDATION_FAILED"
	ErrorAPIKeyMissing    = "API_KEY_MISSING"
	ErrorAPIKeyInvalid    = "API_KEY_INVALID"
	ErrorGenerationFailed = "GENERATION_FAILED"
	ErrorBusy             = "TOO_MANY_REQUESTS"
)

// ErrServerBusy is returned when every generation slot is taken.
var ErrServerBusy = errors.New("too many plans are being generated right now, try again shortly")

func isInputError(err error) bool {
	return plan.IsValidationError(err) ||
		errors.Is(err, syllabus.ErrUnknownChapter) ||
		errors.Is(err, syllabus.ErrChapterSpec)
}

// statusFor maps a generation error to its HTTP status and error code.
func statusFor(err error) (int, string) {
	switch {
	case isInputError(err):
		return http.StatusUnprocessableEntity, ErrorValidation
	case errors.Is(err, ErrServerBusy):
		return http.StatusTooManyRequests, ErrorBusy
	}
	switch llm.Classify(err) {
	case llm.FailureCredentialMissing:
		return http.StatusServiceUnavailable, ErrorAPIKeyMissing
	case llm.FailureCredentialInvalid:
		return http.StatusBadGateway, ErrorAPIKeyInvalid
	default:
		return http.StatusBadGateway, ErrorGenerationFailed
	}
}
