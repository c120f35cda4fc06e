package cmd

// This file contains mock implementations used across different test files
// within the cmd package, but which need to be accessible from outside
// _test.go files (e.g., for integration tests).

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// --- Mock LLMClient ---

// MockLLMClient is a mock implementation of the llm.Client interface.
// Exported for use in integration tests.
type MockLLMClient struct {
	mock.Mock
}

// GenerateStudyPlan mocks the GenerateStudyPlan method.
func (m *MockLLMClient) GenerateStudyPlan(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

// Name mocks the Name method.
func (m *MockLLMClient) Name() string {
	args := m.Called()
	return args.String(0)
}
