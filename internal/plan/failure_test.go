package plan

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/karolswdev/careplan/internal/llm"
)

func TestDescribeFailure(t *testing.T) {
	testCases := []struct {
		name        string
		err         error
		showDetails bool
		kind        llm.FailureKind
		title       string
		hasSteps    bool
		detail      string
	}{
		{name: "Missing", err: llm.ErrAPIKeyMissing, kind: llm.FailureCredentialMissing, title: "API Key Required", hasSteps: true},
		{name: "Invalid", err: fmt.Errorf("%w: status 403", llm.ErrLLMCompletion), kind: llm.FailureCredentialInvalid, title: "Invalid API Key"},
		{name: "Generic_Hidden", err: errors.New("dial tcp: timeout"), kind: llm.FailureGeneric, title: "Connection Failed"},
		{name: "Generic_Shown", err: errors.New("dial tcp: timeout"), showDetails: true, kind: llm.FailureGeneric, title: "Connection Failed", detail: "dial tcp: timeout"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f := DescribeFailure(tc.err, tc.showDetails)
			assert.Equal(t, tc.kind, f.Kind)
			assert.Equal(t, tc.title, f.Title)
			assert.NotEmpty(t, f.Message)
			assert.Equal(t, tc.hasSteps, len(f.Steps) > 0)
			assert.Equal(t, tc.detail, f.Detail)
		})
	}
}
