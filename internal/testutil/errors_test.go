package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockErrorsAreDistinct(t *testing.T) {
	t.Parallel()

	mocks := []error{
		ErrMockNetwork,
		ErrMockAPIError,
		ErrMockNotFound,
		ErrMockGenFailed,
		ErrMockHostFailed,
		ErrMockStoreUnavailable,
	}

	seen := make(map[string]bool, len(mocks))
	for _, err := range mocks {
		require.Error(t, err)
		assert.False(t, seen[err.Error()], "duplicate mock error message %q", err.Error())
		seen[err.Error()] = true
	}
}
