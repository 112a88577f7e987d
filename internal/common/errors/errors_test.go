// internal/common/errors/errors_test.go
package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStandardError_ErrorIncludesDetails(t *testing.T) {
	err := NewConfigurationInvalidError("server.port must be between 1 and 65535")
	assert.Contains(t, err.Error(), "CONFIGURATION_INVALID")
	assert.Contains(t, err.Error(), "server.port must be between 1 and 65535")
}

func TestIsCode_DirectError(t *testing.T) {
	err := NewUpstreamTimeoutError("/api/youtube/niche-scout", 0)
	assert.True(t, IsCode(err, ErrCodeUpstreamTimeout))
	assert.False(t, IsCode(err, ErrCodeUpstreamUnavailable))
}

func TestIsCode_UnwrapsWrappedError(t *testing.T) {
	inner := NewCacheBackendUnavailableError(stderrors.New("connection refused"))
	wrapped := fmt.Errorf("startup check: %w", inner)

	assert.True(t, IsCode(wrapped, ErrCodeCacheBackendUnavailable))
	assert.False(t, IsCode(stderrors.New("plain"), ErrCodeCacheBackendUnavailable))
	assert.False(t, IsCode(nil, ErrCodeCacheBackendUnavailable))
}

func TestAsStandard(t *testing.T) {
	inner := NewTransformationFailedError(stderrors.New("scoring failed"))
	wrapped := fmt.Errorf("request aborted: %w", inner)

	stdErr, ok := AsStandard(wrapped)
	require.True(t, ok)
	assert.Equal(t, ErrCodeTransformationFailed, stdErr.Code)

	_, ok = AsStandard(stderrors.New("plain"))
	assert.False(t, ok)
}

func TestGetErrorCategory(t *testing.T) {
	assert.Equal(t, "UPSTREAM", GetErrorCategory(ErrCodeUpstreamUnavailable))
	assert.Equal(t, "UPSTREAM", GetErrorCategory(ErrCodeUpstreamBadStatus))
	assert.Equal(t, "CACHE", GetErrorCategory(ErrCodeCacheBackendUnavailable))
	assert.Equal(t, "CONFIG", GetErrorCategory(ErrCodeConfigurationInvalid))
	assert.Equal(t, "TRANSFORM", GetErrorCategory(ErrCodeTransformationFailed))
	assert.Equal(t, "OTHER", GetErrorCategory(ErrCodeRequestInvalid))
}
