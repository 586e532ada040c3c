package sshclient

import (
	"context"
)

// CommandResult holds the captured outcome of one executed remote command.
// It is immutable once returned.
type CommandResult struct {
	ExitStatus int
	Stdout     string
	Stderr     string
}

// Session is the operational facade bound to one authenticated connection.
// Each operation opens a short-lived channel over the shared connection and
// closes it before returning, on every exit path.
//
// Operations are meant to be issued sequentially by a single caller. The
// underlying transport multiplexer is not guaranteed thread-safe here;
// concurrent callers must add their own serialization or use one Session per
// caller.
type Session interface {
	// RunCommand executes one command line and captures its standard output,
	// standard error and exit status.
	RunCommand(ctx context.Context, command string) (*CommandResult, error)

	// UploadFile streams a local file to remotePath, provisioning the remote
	// parent directory first.
	UploadFile(ctx context.Context, localPath, remotePath string) error

	// DownloadFile streams remotePath into a created or truncated local file.
	// A partially written local file is not cleaned up when the transfer
	// fails mid-stream.
	DownloadFile(ctx context.Context, remotePath, localPath string) error

	// UploadDir recursively uploads a local directory tree.
	UploadDir(ctx context.Context, localDir, remoteDir string) error

	// DownloadDir recursively downloads a remote directory tree.
	DownloadDir(ctx context.Context, remoteDir, localDir string) error

	// CreateRemoteDirectory idempotently ensures every directory level along
	// remotePath exists, creating missing levels parent-first.
	CreateRemoteDirectory(ctx context.Context, remotePath string) error

	// ID returns the unique identifier assigned to this session at connect
	// time, carried in log fields.
	ID() string

	// Connected reports whether the underlying connection is still held.
	Connected() bool

	// Disconnect tears down the connection. It is idempotent.
	Disconnect() error
}
