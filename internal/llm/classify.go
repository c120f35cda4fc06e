package llm

import (
	"errors"
	"net/http"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	openai "github.com/sashabaranov/go-openai"
	"google.golang.org/api/googleapi"
)

// FailureKind is the user-facing category of a generation failure.
type FailureKind int

const (
	// FailureGeneric covers network errors, quotas, malformed responses and everything else.
	FailureGeneric FailureKind = iota
	// FailureCredentialMissing means no API key is configured.
	FailureCredentialMissing
	// FailureCredentialInvalid means the provider rejected the API key.
	FailureCredentialInvalid
)

func (k FailureKind) String() string {
	switch k {
	case FailureCredentialMissing:
		return "credential_missing"
	case FailureCredentialInvalid:
		return "credential_invalid"
	default:
		return "generic"
	}
}

// Classify maps err to a FailureKind. When an SDK error carries an HTTP status, 401 and 403
// mean an invalid key. Without a status the message is searched for those codes. Gemini's
// "API key not valid" text counts either way.
func Classify(err error) FailureKind {
	if err == nil {
		return FailureGeneric
	}
	if errors.Is(err, ErrAPIKeyMissing) {
		return FailureCredentialMissing
	}
	if errors.Is(err, ErrAPIKeyInvalid) {
		return FailureCredentialInvalid
	}
	msg := err.Error()
	if strings.Contains(msg, "API key not valid") {
		return FailureCredentialInvalid
	}
	if code := statusCode(err); code != 0 {
		if authStatus(code) {
			return FailureCredentialInvalid
		}
		return FailureGeneric
	}
	if strings.Contains(msg, "401") || strings.Contains(msg, "403") {
		return FailureCredentialInvalid
	}
	return FailureGeneric
}

func authStatus(code int) bool {
	return code == http.StatusUnauthorized || code == http.StatusForbidden
}

// statusCode digs the HTTP status out of any of the SDK error types, or returns 0.
func statusCode(err error) int {
	var oaiErr *openai.APIError
	if errors.As(err, &oaiErr) {
		return oaiErr.HTTPStatusCode
	}
	var oaiReqErr *openai.RequestError
	if errors.As(err, &oaiReqErr) {
		return oaiReqErr.HTTPStatusCode
	}
	var antErr *anthropic.Error
	if errors.As(err, &antErr) {
		return antErr.StatusCode
	}
	var gErr *googleapi.Error
	if errors.As(err, &gErr) {
		return gErr.Code
	}
	return 0
}
