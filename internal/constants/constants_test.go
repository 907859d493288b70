package constants

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStageParameters(t *testing.T) {
	t.Parallel()

	t.Run("analysis is the most deterministic stage", func(t *testing.T) {
		t.Parallel()

		assert.Less(t, AnalysisTemperature, TypeDetectTemperature)
		assert.Less(t, ClarityTemperature, TypeDetectTemperature)
		assert.Less(t, TypeDetectTemperature, PlanTemperature)
	})

	t.Run("analysis carries the largest token budget", func(t *testing.T) {
		t.Parallel()

		assert.Greater(t, AnalysisMaxTokens, PlanMaxTokens)
		assert.Greater(t, PlanMaxTokens, TypeDetectMaxTokens)
		assert.Equal(t, TypeDetectMaxTokens, ClarityMaxTokens)
	})
}

func TestPromptLimits(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 100, MaxPromptFilePaths)
	assert.Equal(t, 3000, MaxReadmeBytes)
	assert.Equal(t, 5, MaxManifestFiles)
	assert.Equal(t, 3, MaxSearchKeywords)
	assert.Equal(t, 5, MaxSearchResults)
	assert.Equal(t, 2, MaxClarifyingQuestions)
	assert.Equal(t, 3, MaxMatchCandidates)
}

func TestTimeouts(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 60*time.Second, DefaultGenTimeout)
	assert.Less(t, DefaultHostTimeout, DefaultSearchTimeout,
		"search is the slowest host endpoint")
	assert.Positive(t, FollowUpInterval)
}
