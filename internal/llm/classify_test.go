package llm

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"google.golang.org/api/googleapi"
)

func TestClassify(t *testing.T) {
	testCases := []struct {
		name     string
		err      error
		expected FailureKind
	}{
		{"Nil", nil, FailureGeneric},
		{"Missing_Key", ErrAPIKeyMissing, FailureCredentialMissing},
		{"Wrapped_Missing_Key", fmt.Errorf("generating plan: %w", ErrAPIKeyMissing), FailureCredentialMissing},
		{"Invalid_Key_Sentinel", ErrAPIKeyInvalid, FailureCredentialInvalid},
		{"OpenAI_401", fmt.Errorf("%w: %w", ErrLLMCompletion, &openai.APIError{HTTPStatusCode: http.StatusUnauthorized, Message: "bad key"}), FailureCredentialInvalid},
		{"OpenAI_429", fmt.Errorf("%w: %w", ErrLLMCompletion, &openai.APIError{HTTPStatusCode: http.StatusTooManyRequests, Message: "slow down"}), FailureGeneric},
		{"Google_403", &googleapi.Error{Code: http.StatusForbidden, Message: "permission denied"}, FailureCredentialInvalid},
		{"Message_With_401", errors.New("request failed with status 401"), FailureCredentialInvalid},
		{"Message_With_403", errors.New("HTTP 403 Forbidden"), FailureCredentialInvalid},
		{"Gemini_Invalid_Key_Text", errors.New("API key not valid. Please pass a valid API key."), FailureCredentialInvalid},
		{"Network_Error", errors.New("dial tcp: connection refused"), FailureGeneric},
		{"Empty_Response", ErrLLMEmptyResponse, FailureGeneric},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Classify(tc.err))
		})
	}
}

func TestFailureKindString(t *testing.T) {
	assert.Equal(t, "credential_missing", FailureCredentialMissing.String())
	assert.Equal(t, "credential_invalid", FailureCredentialInvalid.String())
	assert.Equal(t, "generic", FailureGeneric.String())
}
