package executor

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/acntech/easycontainers-sub002/cache"
	"github.com/acntech/easycontainers-sub002/runner"
	"github.com/acntech/easycontainers-sub002/sshclient"
)

const factsCacheTTL = 10 * time.Minute

// remoteExecutor implements Executor over one session.
type remoteExecutor struct {
	sess  sshclient.Session
	run   runner.Runner
	facts *cache.Cache[string, *Facts]
}

// NewRemoteExecutor creates an Executor for the given session.
func NewRemoteExecutor(sess sshclient.Session) (Executor, error) {
	if sess == nil {
		return nil, errors.New("session cannot be nil for remote executor")
	}
	return &remoteExecutor{
		sess:  sess,
		run:   runner.NewCmdRunner(sess),
		facts: cache.NewCache(cache.WithDefaultTTL[string, *Facts](factsCacheTTL)),
	}, nil
}

func (r *remoteExecutor) Execute(ctx context.Context, command string) (string, string, int, error) {
	return r.run.Run(ctx, command)
}

func (r *remoteExecutor) SudoExecute(ctx context.Context, command string) (string, string, int, error) {
	return r.run.SudoRun(ctx, command)
}

func (r *remoteExecutor) PutFile(ctx context.Context, localPath, remotePath string) error {
	return r.sess.UploadFile(ctx, localPath, remotePath)
}

func (r *remoteExecutor) GetFile(ctx context.Context, remotePath, localPath string) error {
	return r.sess.DownloadFile(ctx, remotePath, localPath)
}

func (r *remoteExecutor) EnsureDirectory(ctx context.Context, remotePath string) error {
	return r.sess.CreateRemoteDirectory(ctx, remotePath)
}

func (r *remoteExecutor) Facts(ctx context.Context) (*Facts, error) {
	if f, ok := r.facts.Get(r.sess.ID()); ok {
		return f, nil
	}

	stdout, _, exitCode, err := r.run.Run(ctx, "uname -s && uname -m && hostname")
	if err != nil {
		return nil, err
	}
	if exitCode != 0 {
		return nil, errors.Errorf("facts gathering exited %d", exitCode)
	}

	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	f := &Facts{}
	if len(lines) > 0 {
		f.OS = strings.TrimSpace(lines[0])
	}
	if len(lines) > 1 {
		f.Arch = strings.TrimSpace(lines[1])
	}
	if len(lines) > 2 {
		f.Hostname = strings.TrimSpace(lines[2])
	}

	r.facts.Set(r.sess.ID(), f)
	return f, nil
}
