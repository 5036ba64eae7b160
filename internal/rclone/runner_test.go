package rclone

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sweeperrors "github.com/perigee-io/bucketsweep/errors"
)

// TestExecRunner_CapturesOutputAndExit runs a real subprocess and checks
// that output streams and the exit code are captured, with a non-zero exit
// carried in the result rather than returned as an error.
func TestExecRunner_CapturesOutputAndExit(t *testing.T) {
	runner := &ExecRunner{Binary: "sh"}

	result, err := runner.Run(context.Background(), "-c", "echo out; echo err 1>&2; exit 3")
	require.NoError(t, err)
	assert.Equal(t, 3, result.ExitCode)
	assert.Equal(t, "out\n", result.Stdout)
	assert.Equal(t, "err\n", result.Stderr)
}

// TestExecRunner_MissingBinary verifies an unresolvable binary surfaces the
// unavailability sentinel.
func TestExecRunner_MissingBinary(t *testing.T) {
	runner := &ExecRunner{Binary: "bucketsweep-test-no-such-binary"}

	_, err := runner.Run(context.Background(), "version")
	require.Error(t, err)
	assert.ErrorIs(t, err, sweeperrors.ErrSyncToolUnavailable)
}
