package constants

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOperationStatusTerminal(t *testing.T) {
	assert.True(t, OperationSucceeded.Terminal())
	assert.True(t, OperationFailed.Terminal())
	assert.False(t, OperationRunning.Terminal())
	assert.False(t, OperationNotStarted.Terminal())
}
