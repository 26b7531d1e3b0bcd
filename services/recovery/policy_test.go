package recovery

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultPolicyStages(t *testing.T) {
	policy := DefaultPolicy()
	require.Equal(t, 3, policy.LastStage())

	first, ok := policy.StageFor(1)
	require.True(t, ok)
	assert.Equal(t, 2*time.Minute, first.Interval)
	assert.Equal(t, 5, first.MaxAttempts)

	last, ok := policy.StageFor(3)
	require.True(t, ok)
	assert.Equal(t, 30*time.Minute, last.Interval)
	assert.Equal(t, 4, last.MaxAttempts)
}

func TestStageForOutOfRange(t *testing.T) {
	policy := DefaultPolicy()

	_, ok := policy.StageFor(0)
	assert.False(t, ok)
	_, ok = policy.StageFor(4)
	assert.False(t, ok)
}
