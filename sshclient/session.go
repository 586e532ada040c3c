package sshclient

import (
	"bytes"
	"context"
	"io"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/crypto/ssh"

	"github.com/acntech/easycontainers-sub002/logger"
)

var _ Session = (*session)(nil)

// session is the production Session implementation over one *ssh.Client.
// The client pointer doubles as the connection state: nil means disconnected.
type session struct {
	mu     sync.Mutex
	id     string
	config Config
	client *ssh.Client
}

// Connect establishes and authenticates one transport connection to the host
// described by cfg and returns the Session bound to it.
//
// Rejected credentials surface as *AuthenticationError; network and handshake
// failures as *TransportError.
func Connect(cfg Config) (Session, error) {
	var err error
	cfg, err = validateConfig(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "failed to validate ssh connection parameters")
	}

	authMethods, err := cfg.authMethods()
	if err != nil {
		return nil, err
	}
	hostKeyCallback, err := cfg.hostKeyCallback()
	if err != nil {
		return nil, err
	}

	sshClientConfig := &ssh.ClientConfig{
		User:            cfg.User,
		Timeout:         cfg.Timeout,
		Auth:            authMethods,
		HostKeyCallback: hostKeyCallback,
	}

	endpoint := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	client, err := ssh.Dial("tcp", endpoint, sshClientConfig)
	if err != nil {
		if isAuthFailure(err) {
			return nil, &AuthenticationError{User: cfg.User, Addr: endpoint, Err: err}
		}
		return nil, &TransportError{Addr: endpoint, Err: err}
	}

	s := &session{
		id:     uuid.NewString(),
		config: cfg,
		client: client,
	}
	logger.Log.InfofSession(s.id, "connected to %s as %s", endpoint, cfg.User)
	return s, nil
}

// isAuthFailure distinguishes a credential rejection from other handshake
// failures. x/crypto/ssh reports both through the dial error, so the message
// is the only signal available.
func isAuthFailure(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "unable to authenticate") ||
		strings.Contains(msg, "no supported methods remain")
}

func (s *session) ID() string {
	return s.id
}

func (s *session) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.client != nil
}

// clientRef returns the live transport client, or ErrNotConnected without
// touching the network when the session has been disconnected.
func (s *session) clientRef() (*ssh.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.client == nil {
		return nil, ErrNotConnected
	}
	return s.client, nil
}

func (s *session) Disconnect() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.client == nil {
		return nil
	}

	err := s.client.Close()
	s.client = nil
	if err != nil {
		return errors.Wrap(err, "failed to close ssh connection")
	}
	logger.Log.InfofSession(s.id, "disconnected from %s", s.config.Host)
	return nil
}

func (s *session) RunCommand(ctx context.Context, command string) (*CommandResult, error) {
	client, err := s.clientRef()
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, &CommandExecutionError{Command: command, Err: err}
	}

	// One execution channel per command, closed on every exit path.
	sess, err := client.NewSession()
	if err != nil {
		return nil, &CommandExecutionError{Command: command, Err: errors.Wrap(err, "failed to open execution channel")}
	}
	defer sess.Close()

	stdoutPipe, err := sess.StdoutPipe()
	if err != nil {
		return nil, &CommandExecutionError{Command: command, Err: errors.Wrap(err, "failed to get stdout pipe")}
	}
	stderrPipe, err := sess.StderrPipe()
	if err != nil {
		return nil, &CommandExecutionError{Command: command, Err: errors.Wrap(err, "failed to get stderr pipe")}
	}

	if err := sess.Start(strings.TrimSpace(command)); err != nil {
		return nil, &CommandExecutionError{Command: command, Err: errors.Wrap(err, "failed to start command")}
	}

	// Both streams are drained concurrently. Draining one to exhaustion
	// before touching the other can deadlock against a remote process
	// blocked on a full buffer for the undrained stream.
	var stdoutBuf, stderrBuf bytes.Buffer
	var stdoutErr, stderrErr error
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, stdoutErr = io.Copy(&stdoutBuf, stdoutPipe)
	}()
	go func() {
		defer wg.Done()
		_, stderrErr = io.Copy(&stderrBuf, stderrPipe)
	}()

	waitDone := make(chan error, 1)
	go func() {
		wg.Wait()
		waitDone <- sess.Wait()
	}()

	var waitErr error
	select {
	case <-ctx.Done():
		_ = sess.Signal(ssh.SIGINT)
		select {
		case <-time.After(250 * time.Millisecond):
		case <-waitDone:
		}
		return nil, &CommandExecutionError{Command: command, Err: errors.Wrap(ctx.Err(), "command execution cancelled")}
	case waitErr = <-waitDone:
	}

	if stdoutErr != nil {
		return nil, &CommandExecutionError{Command: command, Err: errors.Wrap(stdoutErr, "failed to drain stdout")}
	}
	if stderrErr != nil {
		return nil, &CommandExecutionError{Command: command, Err: errors.Wrap(stderrErr, "failed to drain stderr")}
	}

	exitStatus := 0
	if waitErr != nil {
		exitErr, ok := waitErr.(*ssh.ExitError)
		if !ok {
			// Channel failed before delivering an exit status; the status is
			// meaningless here.
			return nil, &CommandExecutionError{Command: command, Err: waitErr}
		}
		exitStatus = exitErr.ExitStatus()
	}

	logger.Log.DebugfSession(s.id, "command %q exited %d", command, exitStatus)
	return &CommandResult{
		ExitStatus: exitStatus,
		Stdout:     stdoutBuf.String(),
		Stderr:     stderrBuf.String(),
	}, nil
}

// SudoPrefix wraps a command so it runs through sudo with the caller's
// environment preserved.
func SudoPrefix(cmd string) string {
	return "sudo -E /bin/bash -c " + EscapeShellArg(cmd)
}

// EscapeShellArg single-quotes arg for safe interpolation into a shell
// command line.
func EscapeShellArg(arg string) string {
	return "'" + strings.ReplaceAll(arg, "'", `'\''`) + "'"
}
