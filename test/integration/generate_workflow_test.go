//go:build integration

package integration

import (
	"encoding/json"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"

	"github.com/karolswdev/careplan/internal/config"
	"github.com/karolswdev/careplan/internal/llm"
)

const vectorsChapter = "Physics/1st Paper/ভেক্টর"

const stubPlan = `📅 Study Duration Overview:
- Total days left until the exam: 7

🗓️ Daily Study Plan:
**Day 1:**
- ভেক্টর (1st Paper) (3 hours)
`

func chatCompletionBody(content string) map[string]any {
	return map[string]any{
		"id":      "chatcmpl-test",
		"object":  "chat.completion",
		"created": 1760400000,
		"model":   "test-model",
		"choices": []map[string]any{{
			"index":         0,
			"message":       map[string]string{"role": "assistant", "content": content},
			"finish_reason": "stop",
		}},
	}
}

func TestGenerateWorkflow_MockProvider(t *testing.T) {
	setupTestEnvironment(t, llm.ProviderMock, "")

	stdout, stderr, err := executeCarePlanCommand(t, "generate", "-c", vectorsChapter, "--exam-date", examDate(7), "--format", "json")
	require.NoError(t, err, "stderr: %s", stderr)

	var doc struct {
		Provider string `json:"provider"`
		Plan     string `json:"plan"`
		Request  struct {
			DailyHours int    `json:"dailyHours"`
			Confidence string `json:"confidence"`
		} `json:"request"`
		Report struct {
			Sections []json.RawMessage `json:"sections"`
		} `json:"report"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &doc))
	assert.Equal(t, llm.ProviderMock, doc.Provider)
	assert.Equal(t, 3, doc.Request.DailyHours, "defaults come from config.yaml")
	assert.Equal(t, "low", doc.Request.Confidence)
	assert.NotEmpty(t, doc.Report.Sections)
}

func TestGenerateWorkflow_OpenAI(t *testing.T) {
	var gotAuth, gotPrompt string
	server := mockLLMServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")

		var body struct {
			Model    string `json:"model"`
			Messages []struct {
				Content string `json:"content"`
			} `json:"messages"`
		}
		data, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(data, &body))
		assert.Equal(t, "test-model", body.Model)
		if len(body.Messages) > 0 {
			gotPrompt = body.Messages[len(body.Messages)-1].Content
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(chatCompletionBody(stubPlan))
	})
	dir := setupTestEnvironment(t, llm.ProviderOpenAI, server.URL)
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.DefaultContextFileName), []byte("# comment\nI revise best at night.\n"), 0644))
	t.Setenv(config.EnvAPIKeyName, "test-key")

	out := filepath.Join(dir, "plan.html")
	_, stderr, err := executeCarePlanCommand(t, "generate", "-c", vectorsChapter, "--exam-date", examDate(7), "--hours", "6", "--format", "html", "-f", out)
	require.NoError(t, err, "stderr: %s", stderr)

	assert.Equal(t, "Bearer test-key", gotAuth)
	assert.Contains(t, gotPrompt, "[Physics - 1st Paper: ভেক্টর]")
	assert.Contains(t, gotPrompt, "- Daily Available Study Time: 6 hours")
	assert.Contains(t, gotPrompt, "I revise best at night.")
	assert.NotContains(t, gotPrompt, "# comment")

	html, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(html), "Day 1")
	assert.Contains(t, stderr, "Plan written to")
}

func TestGenerateWorkflow_KeyFromKeychain(t *testing.T) {
	server := mockLLMServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer stored-key", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(chatCompletionBody(stubPlan))
	})
	setupTestEnvironment(t, llm.ProviderOpenAI, server.URL)

	stdout, _, err := executeCarePlanCommand(t, "config", "set-key", "stored-key")
	require.NoError(t, err)
	assert.Contains(t, stdout, "API key stored successfully.")

	stored, err := keyring.Get(config.KeyringService, config.KeyringUser)
	require.NoError(t, err)
	assert.Equal(t, "stored-key", stored)

	stdout, _, err = executeCarePlanCommand(t, "generate", "-c", vectorsChapter, "--exam-date", examDate(5), "--format", "raw")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Daily Study Plan")
}

func TestGenerateWorkflow_InvalidKey(t *testing.T) {
	server := mockLLMServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"Incorrect API key provided","type":"invalid_request_error","code":"invalid_api_key"}}`))
	})
	setupTestEnvironment(t, llm.ProviderOpenAI, server.URL)
	t.Setenv(config.EnvAPIKeyName, "wrong-key")

	stdout, stderr, err := executeCarePlanCommand(t, "generate", "-c", vectorsChapter, "--exam-date", examDate(7))

	require.Error(t, err)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "Invalid API Key")
}

func TestGenerateWorkflow_MissingKey(t *testing.T) {
	calls := 0
	server := mockLLMServer(t, func(w http.ResponseWriter, r *http.Request) { calls++ })
	setupTestEnvironment(t, llm.ProviderOpenAI, server.URL)

	_, stderr, err := executeCarePlanCommand(t, "generate", "-c", vectorsChapter, "--exam-date", examDate(7))

	assert.ErrorIs(t, err, llm.ErrAPIKeyMissing)
	assert.Contains(t, stderr, "API Key Required")
	assert.Zero(t, calls, "no request is made without a key")
}

func TestGenerateWorkflow_ValidationMakesNoCall(t *testing.T) {
	calls := 0
	server := mockLLMServer(t, func(w http.ResponseWriter, r *http.Request) { calls++ })
	setupTestEnvironment(t, llm.ProviderOpenAI, server.URL)
	t.Setenv(config.EnvAPIKeyName, "test-key")

	_, _, err := executeCarePlanCommand(t, "generate", "-c", vectorsChapter, "--exam-date", "2000-01-01")
	assert.Error(t, err)

	_, _, err = executeCarePlanCommand(t, "generate", "--exam-date", examDate(7))
	assert.Error(t, err)

	assert.Zero(t, calls)
}

func TestConfigWorkflow(t *testing.T) {
	dir := setupTestEnvironment(t, llm.ProviderMock, "")

	stdout, _, err := executeCarePlanCommand(t, "config", "init")
	require.NoError(t, err)
	assert.Contains(t, stdout, dir)
	for _, name := range config.DefaultFiles() {
		assert.FileExists(t, filepath.Join(dir, name))
	}

	stdout, _, err = executeCarePlanCommand(t, "config", "show", "-o", "json")
	require.NoError(t, err)
	var shown map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &shown))
	assert.Equal(t, "Not Set (use 'careplan config set-key' to set)", shown["api_key"])

	_, _, err = executeCarePlanCommand(t, "context", "add", "Mornings are best for me.")
	require.NoError(t, err)
	stdout, _, err = executeCarePlanCommand(t, "context", "show")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Mornings are best for me.")

	stdout, _, err = executeCarePlanCommand(t, "syllabus", "--specs")
	require.NoError(t, err)
	assert.Contains(t, strings.Split(strings.TrimSpace(stdout), "\n"), vectorsChapter)
}
