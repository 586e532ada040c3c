package sshclient

import (
	"context"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/kr/fs"
	"github.com/pkg/errors"
	"github.com/pkg/sftp"

	"github.com/acntech/easycontainers-sub002/file"
	"github.com/acntech/easycontainers-sub002/logger"
)

// openTransferChannel opens one SFTP channel over the shared connection. The
// caller owns the channel for exactly one operation and must close it before
// returning.
func (s *session) openTransferChannel() (transferChannel, error) {
	return s.openSFTP()
}

func (s *session) openSFTP() (*sftp.Client, error) {
	client, err := s.clientRef()
	if err != nil {
		return nil, err
	}
	sftpClient, err := sftp.NewClient(client)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open sftp channel")
	}
	return sftpClient, nil
}

func (s *session) UploadFile(ctx context.Context, localPath, remotePath string) error {
	if _, err := s.clientRef(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return &TransferError{Op: "upload", Path: remotePath, Err: err}
	}

	// The destination directory must exist before the transfer proceeds.
	if err := s.CreateRemoteDirectory(ctx, path.Dir(remotePath)); err != nil {
		return err
	}

	srcFile, err := os.Open(localPath)
	if err != nil {
		return &TransferError{Op: "upload", Path: localPath, Err: err}
	}
	defer srcFile.Close()

	srcInfo, err := srcFile.Stat()
	if err != nil {
		return &TransferError{Op: "upload", Path: localPath, Err: err}
	}
	if srcInfo.IsDir() {
		return &TransferError{Op: "upload", Path: localPath, Err: errors.New("local path is a directory, use UploadDir")}
	}

	sftpClient, err := s.openSFTP()
	if err != nil {
		return &TransferError{Op: "upload", Path: remotePath, Err: err}
	}
	defer sftpClient.Close()

	dstFile, err := sftpClient.Create(remotePath)
	if err != nil {
		return &TransferError{Op: "upload", Path: remotePath, Err: err}
	}
	defer dstFile.Close()

	if err := dstFile.Chmod(srcInfo.Mode().Perm()); err != nil {
		logger.Log.WarnfSession(s.id, "failed to chmod remote file %s: %v", remotePath, err)
	}

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		return &TransferError{Op: "upload", Path: remotePath, Err: err}
	}

	logger.Log.DebugfSession(s.id, "uploaded %s to %s (%d bytes)", localPath, remotePath, srcInfo.Size())
	return nil
}

func (s *session) DownloadFile(ctx context.Context, remotePath, localPath string) error {
	if _, err := s.clientRef(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return &TransferError{Op: "download", Path: remotePath, Err: err}
	}

	sftpClient, err := s.openSFTP()
	if err != nil {
		return &TransferError{Op: "download", Path: remotePath, Err: err}
	}
	defer sftpClient.Close()

	srcFile, err := sftpClient.Open(remotePath)
	if err != nil {
		return &TransferError{Op: "download", Path: remotePath, Err: err}
	}
	defer srcFile.Close()

	if err := file.CreateDir(filepath.Dir(localPath)); err != nil {
		return &TransferError{Op: "download", Path: localPath, Err: err}
	}

	dstFile, err := os.Create(localPath)
	if err != nil {
		return &TransferError{Op: "download", Path: localPath, Err: err}
	}
	defer dstFile.Close()

	// A failure mid-copy leaves a partial local file behind; callers that
	// care should download to a scratch path and rename.
	if _, err := io.Copy(dstFile, srcFile); err != nil {
		return &TransferError{Op: "download", Path: remotePath, Err: err}
	}

	logger.Log.DebugfSession(s.id, "downloaded %s to %s", remotePath, localPath)
	return nil
}

func (s *session) UploadDir(ctx context.Context, localDir, remoteDir string) error {
	if _, err := s.clientRef(); err != nil {
		return err
	}

	srcInfo, err := os.Stat(localDir)
	if err != nil {
		return &TransferError{Op: "upload", Path: localDir, Err: err}
	}
	if !srcInfo.IsDir() {
		return &TransferError{Op: "upload", Path: localDir, Err: errors.New("local path is not a directory")}
	}

	if err := s.CreateRemoteDirectory(ctx, remoteDir); err != nil {
		return err
	}

	entries, err := os.ReadDir(localDir)
	if err != nil {
		return &TransferError{Op: "upload", Path: localDir, Err: err}
	}

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return &TransferError{Op: "upload", Path: localDir, Err: err}
		}
		localEntry := filepath.Join(localDir, entry.Name())
		remoteEntry := path.Join(remoteDir, entry.Name())
		if entry.IsDir() {
			if err := s.UploadDir(ctx, localEntry, remoteEntry); err != nil {
				return err
			}
		} else {
			if err := s.UploadFile(ctx, localEntry, remoteEntry); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *session) DownloadDir(ctx context.Context, remoteDir, localDir string) error {
	if _, err := s.clientRef(); err != nil {
		return err
	}

	sftpClient, err := s.openSFTP()
	if err != nil {
		return &TransferError{Op: "download", Path: remoteDir, Err: err}
	}
	defer sftpClient.Close()

	walker := sftpClient.Walk(remoteDir)
	if err := s.downloadWalk(ctx, walker, remoteDir, localDir); err != nil {
		return err
	}
	return nil
}

// downloadWalk mirrors the remote tree under localDir, one file transfer
// channel per file.
func (s *session) downloadWalk(ctx context.Context, walker *fs.Walker, remoteDir, localDir string) error {
	for walker.Step() {
		if err := ctx.Err(); err != nil {
			return &TransferError{Op: "download", Path: remoteDir, Err: err}
		}
		if err := walker.Err(); err != nil {
			return &TransferError{Op: "download", Path: walker.Path(), Err: err}
		}

		rel := strings.TrimPrefix(walker.Path(), remoteDir)
		rel = strings.TrimPrefix(rel, "/")
		localTarget := filepath.Join(localDir, filepath.FromSlash(rel))

		if walker.Stat().IsDir() {
			if err := file.CreateDir(localTarget); err != nil {
				return &TransferError{Op: "download", Path: localTarget, Err: err}
			}
			continue
		}
		if err := s.DownloadFile(ctx, walker.Path(), localTarget); err != nil {
			return err
		}
	}
	return nil
}
