package sshclient

import (
	"context"
	"os"
	"strings"

	"github.com/pkg/errors"

	"github.com/acntech/easycontainers-sub002/logger"
)

// transferChannel is the primitive surface the provisioner needs from one
// short-lived transfer channel: an existence probe and a single-level create.
// *sftp.Client satisfies it.
type transferChannel interface {
	Stat(path string) (os.FileInfo, error)
	Mkdir(path string) error
	Close() error
}

// channelOpener opens a fresh transfer channel. The provisioner opens and
// closes one around every probe/create primitive rather than sharing a
// channel across directory levels.
type channelOpener func() (transferChannel, error)

func (s *session) CreateRemoteDirectory(ctx context.Context, remotePath string) error {
	if _, err := s.clientRef(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return &TransferError{Op: "mkdir", Path: remotePath, Err: err}
	}
	if err := provisionPath(s.openTransferChannel, remotePath); err != nil {
		return err
	}
	logger.Log.DebugfSession(s.id, "provisioned remote directory %s", remotePath)
	return nil
}

// provisionPath idempotently ensures every directory level along remotePath
// exists. Segments are processed strictly in order so each level is created
// only after its parent is confirmed to exist.
func provisionPath(open channelOpener, remotePath string) error {
	segments := splitPath(remotePath)
	rooted := strings.HasPrefix(remotePath, "/")
	if len(segments) == 0 {
		// "/" has no segments to provision; the root always exists.
		if rooted {
			return nil
		}
		return &TransferError{Op: "mkdir", Path: remotePath, Err: errors.New("empty remote path")}
	}

	prefix := ""
	for _, segment := range segments {
		if prefix == "" && !rooted {
			prefix = segment
		} else {
			prefix = prefix + "/" + segment
		}
		if err := ensureLevel(open, prefix); err != nil {
			return err
		}
	}
	return nil
}

// ensureLevel probes one directory level and creates it when missing. Only a
// "not found" probe result triggers a create; any other probe failure is
// surfaced rather than conflated with absence, so transport errors cannot
// masquerade as missing directories.
func ensureLevel(open channelOpener, levelPath string) error {
	ch, err := open()
	if err != nil {
		return &TransferError{Op: "mkdir", Path: levelPath, Err: err}
	}
	defer ch.Close()

	info, statErr := ch.Stat(levelPath)
	if statErr == nil {
		if !info.IsDir() {
			return &TransferError{Op: "mkdir", Path: levelPath, Err: errors.New("remote path exists but is not a directory")}
		}
		return nil
	}
	if !isNotExist(statErr) {
		return &TransferError{Op: "stat", Path: levelPath, Err: statErr}
	}

	if err := ch.Mkdir(levelPath); err != nil {
		return &TransferError{Op: "mkdir", Path: levelPath, Err: err}
	}
	return nil
}

func splitPath(remotePath string) []string {
	parts := strings.Split(remotePath, "/")
	segments := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			segments = append(segments, p)
		}
	}
	return segments
}

func isNotExist(err error) bool {
	return os.IsNotExist(err) ||
		strings.Contains(strings.ToLower(err.Error()), "no such file")
}
