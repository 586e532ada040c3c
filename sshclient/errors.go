package sshclient

import (
	"errors"
	"fmt"
)

// ErrNotConnected is returned by every Session operation invoked after
// Disconnect (or before a successful Connect). No transport I/O is attempted
// in that case.
var ErrNotConnected = errors.New("sshclient: session is not connected")

// AuthenticationError indicates the remote host rejected the supplied
// credentials during the handshake. The connect attempt is fatal and is not
// retried.
type AuthenticationError struct {
	User string
	Addr string
	Err  error
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("sshclient: authentication failed for %s@%s: %v", e.User, e.Addr, e.Err)
}

func (e *AuthenticationError) Unwrap() error { return e.Err }

// TransportError indicates a network or handshake level failure. The
// connection is unusable afterwards and must be re-established.
type TransportError struct {
	Addr string
	Err  error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("sshclient: transport failure to %s: %v", e.Addr, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// CommandExecutionError indicates a failure while running a command or
// draining its output. The exit status is not meaningful when this error is
// returned.
type CommandExecutionError struct {
	Command string
	Err     error
}

func (e *CommandExecutionError) Error() string {
	return fmt.Sprintf("sshclient: command %q failed: %v", e.Command, e.Err)
}

func (e *CommandExecutionError) Unwrap() error { return e.Err }

// TransferError indicates a failure during upload, download or directory
// provisioning.
type TransferError struct {
	Op   string
	Path string
	Err  error
}

func (e *TransferError) Error() string {
	return fmt.Sprintf("sshclient: %s %s failed: %v", e.Op, e.Path, e.Err)
}

func (e *TransferError) Unwrap() error { return e.Err }

// IsAuthenticationError reports whether err is (or wraps) an AuthenticationError.
func IsAuthenticationError(err error) bool {
	var target *AuthenticationError
	return errors.As(err, &target)
}

// IsTransportError reports whether err is (or wraps) a TransportError.
func IsTransportError(err error) bool {
	var target *TransportError
	return errors.As(err, &target)
}

// IsNotConnected reports whether err is ErrNotConnected.
func IsNotConnected(err error) bool {
	return errors.Is(err, ErrNotConnected)
}

// IsCommandExecutionError reports whether err is (or wraps) a CommandExecutionError.
func IsCommandExecutionError(err error) bool {
	var target *CommandExecutionError
	return errors.As(err, &target)
}

// IsTransferError reports whether err is (or wraps) a TransferError.
func IsTransferError(err error) bool {
	var target *TransferError
	return errors.As(err, &target)
}
