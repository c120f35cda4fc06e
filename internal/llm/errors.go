package llm

import "errors"

// Sentinel errors for LLM clients.

// ErrAPIKeyMissing indicates no usable credential was configured for the selected provider.
var ErrAPIKeyMissing = errors.New("API_KEY_MISSING")

// ErrAPIKeyInvalid indicates the provider rejected the configured credential.
var ErrAPIKeyInvalid = errors.New("API key was rejected by the provider")

// ErrLLMClientNil indicates the underlying SDK client was nil when used.
var ErrLLMClientNil = errors.New("LLM client cannot be nil")

// ErrLLMPromptEmpty indicates the prompt provided to the LLM was empty.
var ErrLLMPromptEmpty = errors.New("prompt cannot be empty")

// ErrLLMCompletion indicates an error occurred during the LLM API call (e.g., network error, API error).
// The underlying error from the LLM SDK should be wrapped.
var ErrLLMCompletion = errors.New("failed to create LLM completion")

// ErrLLMEmptyResponse indicates the LLM returned a response with no usable content (e.g., no choices).
var ErrLLMEmptyResponse = errors.New("received an empty response from LLM")

// ErrLLMClientInit indicates the provider's client could not be constructed. The cause is
// wrapped and generation reports it as a generic failure.
var ErrLLMClientInit = errors.New("failed to initialize LLM client")

// ErrUnknownProvider indicates llm.provider names a provider this build does not support.
var ErrUnknownProvider = errors.New("unsupported LLM provider")
