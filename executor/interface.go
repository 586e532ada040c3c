package executor

import (
	"context"
)

// Facts describes the remote system, gathered once and cached.
type Facts struct {
	OS       string
	Arch     string
	Hostname string
}

// Executor is the high-level facade for driving one remote host: command
// execution plus file and directory management.
type Executor interface {
	// Execute runs a command on the remote host.
	Execute(ctx context.Context, command string) (stdout string, stderr string, exitCode int, err error)

	// SudoExecute runs a command with superuser privileges.
	SudoExecute(ctx context.Context, command string) (stdout string, stderr string, exitCode int, err error)

	// PutFile uploads a local file to the remote host, provisioning the
	// destination directory.
	PutFile(ctx context.Context, localPath, remotePath string) error

	// GetFile downloads a remote file to a local path.
	GetFile(ctx context.Context, remotePath, localPath string) error

	// EnsureDirectory idempotently creates a remote directory path.
	EnsureDirectory(ctx context.Context, remotePath string) error

	// Facts returns cached information about the remote system, gathering it
	// on first use.
	Facts(ctx context.Context) (*Facts, error)
}
