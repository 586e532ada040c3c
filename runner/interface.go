package runner

import (
	"context"
)

// Runner is a convenience layer for executing commands over an established
// session.
type Runner interface {
	// Run executes a command and returns stdout, stderr and the exit code.
	Run(ctx context.Context, command string) (stdout string, stderr string, exitCode int, err error)

	// SudoRun executes a command with superuser privileges. How sudo is
	// satisfied (passwordless sudo or otherwise) depends on the remote
	// system configuration.
	SudoRun(ctx context.Context, command string) (stdout string, stderr string, exitCode int, err error)

	// RunTemplate renders a command template with the given variables and
	// executes the result.
	RunTemplate(ctx context.Context, commandTmpl string, variables map[string]interface{}) (stdout string, stderr string, exitCode int, err error)
}
