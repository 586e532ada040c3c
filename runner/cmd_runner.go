package runner

import (
	"context"
	"time"

	"github.com/acntech/easycontainers-sub002/logger"
	"github.com/acntech/easycontainers-sub002/sshclient"
	"github.com/acntech/easycontainers-sub002/util"
)

// cmdRunner implements the Runner interface over an sshclient.Session.
type cmdRunner struct {
	sess sshclient.Session
}

// NewCmdRunner creates a Runner that executes commands on the given session.
func NewCmdRunner(sess sshclient.Session) Runner {
	return &cmdRunner{sess: sess}
}

func (r *cmdRunner) Run(ctx context.Context, command string) (string, string, int, error) {
	started := time.Now()
	result, err := r.sess.RunCommand(ctx, command)
	if err != nil {
		return "", "", -1, err
	}
	logger.Log.DebugfSession(r.sess.ID(), "command %q exited %d after %s",
		command, result.ExitStatus, util.ShortDuration(time.Since(started).Round(time.Millisecond)))
	return result.Stdout, result.Stderr, result.ExitStatus, nil
}

func (r *cmdRunner) SudoRun(ctx context.Context, command string) (string, string, int, error) {
	return r.Run(ctx, sshclient.SudoPrefix(command))
}

func (r *cmdRunner) RunTemplate(ctx context.Context, commandTmpl string, variables map[string]interface{}) (string, string, int, error) {
	command, err := util.RenderString(commandTmpl, util.Data(variables))
	if err != nil {
		return "", "", -1, err
	}
	return r.Run(ctx, command)
}
