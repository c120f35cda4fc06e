package cmd

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestConfigInitCmd_Success(t *testing.T) {
	mockProvider := new(MockConfigProvider)
	var out bytes.Buffer

	mockProvider.On("EnsureConfigDir").Return("/home/student/.careplan", nil)
	mockProvider.On("CreateDefaultConfigFiles", "/home/student/.careplan").Return(nil)

	err := configInitRunE(mockProvider, &out)

	assert.NoError(t, err)
	assert.Contains(t, out.String(), "Configuration directory and default files ensured: /home/student/.careplan")
	assert.Contains(t, out.String(), "careplan config set-key")
	mockProvider.AssertExpectations(t)
}

func TestConfigInitCmd_ProviderError(t *testing.T) {
	mockProvider := new(MockConfigProvider)
	var out bytes.Buffer

	expectedErr := errors.New("failed to write default files")
	mockProvider.On("EnsureConfigDir").Return("/home/student/.careplan", nil)
	mockProvider.On("CreateDefaultConfigFiles", mock.AnythingOfType("string")).Return(expectedErr)

	err := configInitRunE(mockProvider, &out)

	assert.Error(t, err)
	assert.ErrorIs(t, err, expectedErr)
	assert.Contains(t, err.Error(), "failed to initialize configuration")
	assert.Empty(t, out.String())
	mockProvider.AssertExpectations(t)
}

func TestConfigInitCmd_DirError(t *testing.T) {
	mockProvider := new(MockConfigProvider)
	var out bytes.Buffer

	expectedErr := errors.New("permission denied")
	mockProvider.On("EnsureConfigDir").Return("", expectedErr)

	err := configInitRunE(mockProvider, &out)

	assert.ErrorIs(t, err, expectedErr)
	assert.Empty(t, out.String())
	mockProvider.AssertNotCalled(t, "CreateDefaultConfigFiles", mock.Anything)
}
