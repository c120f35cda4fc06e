//go:build integration

package integration

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/zalando/go-keyring"

	"github.com/karolswdev/careplan/cmd"
	"github.com/karolswdev/careplan/internal/config"
	"github.com/karolswdev/careplan/internal/plan"
)

// mockLLMServer creates a mock HTTP server simulating the LLM API.
func mockLLMServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server
}

// setupTestEnvironment creates a temporary configuration directory with a config.yaml
// for the given provider, points CAREPLAN_CONFIG_DIR at it and replaces the OS keychain
// with an in-memory one. llmURL is used as the OpenAI base URL when set.
func setupTestEnvironment(t *testing.T, provider, llmURL string) string {
	t.Helper()
	tempDir := t.TempDir()

	configContent := fmt.Sprintf(`
llm:
  provider: "%s"
  openai:
    model_name: "test-model"
    base_url: "%s"
plan:
  daily_hours: 3
  confidence: "low"
`, provider, llmURL)

	configPath := filepath.Join(tempDir, config.DefaultConfigFileName)
	if err := os.WriteFile(configPath, []byte(configContent), 0600); err != nil {
		t.Fatalf("Failed to write temp config file: %v", err)
	}

	t.Setenv(config.ConfigDirEnvVar, tempDir)
	t.Setenv(config.EnvAPIKeyName, "")
	t.Setenv(config.EnvFallbackAPIKeyName, "")
	keyring.MockInit()

	return tempDir
}

// examDate returns a date days from now in the request layout.
func examDate(days int) string {
	return time.Now().AddDate(0, 0, days).Format(plan.DateLayout)
}

// executeCarePlanCommand runs the careplan root command with given arguments in-process.
// It captures stdout and stderr. CAREPLAN_CONFIG_DIR must be set before calling this
// function (e.g., by setupTestEnvironment).
func executeCarePlanCommand(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()

	originalLevel := zerolog.GlobalLevel()
	t.Cleanup(func() { zerolog.SetGlobalLevel(originalLevel) })

	var outBuf, errBuf bytes.Buffer
	rootCmd := cmd.NewRootCmd()
	rootCmd.SetOut(&outBuf)
	rootCmd.SetErr(&errBuf)
	rootCmd.SetArgs(append([]string{"--log-level", "debug"}, args...))

	execErr := rootCmd.ExecuteContext(context.Background())
	return outBuf.String(), errBuf.String(), execErr
}
