package plan

import (
	"github.com/karolswdev/careplan/internal/llm"
)

// Failure is the user-facing description of a generation error.
type Failure struct {
	Kind    llm.FailureKind
	Title   string
	Message string
	// Steps is the setup guide shown for a missing credential.
	Steps []string
	// Detail is the raw error text, set only when details were requested.
	Detail string
}

// DescribeFailure turns err into what the user should see. The raw error text is included
// only when showDetails is set.
func DescribeFailure(err error, showDetails bool) Failure {
	f := Failure{Kind: llm.Classify(err)}
	switch f.Kind {
	case llm.FailureCredentialMissing:
		f.Title = "API Key Required"
		f.Message = "CarePlan doesn't have an API key for your AI provider yet. Follow these steps:"
		f.Steps = []string{
			"Create a Gemini key in Google AI Studio (or use a key for the provider set in llm.provider).",
			"Store it with: careplan config set-key <your-key>",
			"Or set CAREPLAN_LLM_API_KEY (API_KEY also works) in the environment or in a .env file.",
			"Restart careplan so the key is picked up.",
		}
	case llm.FailureCredentialInvalid:
		f.Title = "Invalid API Key"
		f.Message = "The configured key is incorrect or restricted. Please check it with your provider (for Gemini, Google AI Studio)."
	default:
		f.Title = "Connection Failed"
		f.Message = "The AI assistant is temporarily unavailable. This usually means a network issue or an invalid API key."
	}
	if showDetails && err != nil {
		f.Detail = err.Error()
	}
	return f
}
