package errors

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTooManyRequestsSurfacesWaitTime(t *testing.T) {
	err := TooManyRequests("Rate limit exceeded", 42*time.Second)

	assert.Equal(t, http.StatusTooManyRequests, err.Status)
	assert.Equal(t, "Rate limit exceeded (retry in 42s)", err.Message)
	assert.True(t, Is(err, "TOO_MANY_REQUESTS"))
}

func TestTooManyRequestsWithoutWaitTime(t *testing.T) {
	err := TooManyRequests("Rate limit exceeded", 0)

	assert.Equal(t, "Rate limit exceeded", err.Message)
}

func TestIsMatchesWrappedAppError(t *testing.T) {
	inner := NotFound("Product", nil)
	wrapped := fmt.Errorf("loading thread: %w", inner)

	assert.True(t, Is(wrapped, "NOT_FOUND"))
	assert.False(t, Is(wrapped, "VALIDATION_FAILED"))
}
