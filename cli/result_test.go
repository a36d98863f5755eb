package cli

import (
	"errors"
	"fmt"
	"testing"

	"github.com/alecthomas/assert/v2"
)

func TestCommandError(t *testing.T) {
	err := NewCommandError(2)
	assert.Equal(t, 2, err.ExitCode())
	assert.Equal(t, "command failed", err.Error())
}

func TestCommandError_UnwrapsThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("running check: %w", NewCommandError(1))

	var cmdErr *CommandError
	assert.True(t, errors.As(wrapped, &cmdErr))
	assert.Equal(t, 1, cmdErr.ExitCode())
}
