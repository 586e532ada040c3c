package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/acntech/easycontainers-sub002/config"
	"github.com/acntech/easycontainers-sub002/executor"
	"github.com/acntech/easycontainers-sub002/logger"
	"github.com/acntech/easycontainers-sub002/sshclient"
)

var (
	flagHost       string
	flagPort       int
	flagUser       string
	flagPassword   string
	flagKeyFile    string
	flagKnownHosts string
	flagTimeout    time.Duration
	flagConfig     string
	flagHostName   string
	flagLogLevel   string
	flagLogDir     string
	flagVerbose    bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "easyssh",
		Short:         "Run commands and transfer files on a remote host over SSH",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := logrus.ParseLevel(flagLogLevel)
			if err != nil {
				return fmt.Errorf("invalid log level '%s': %w", flagLogLevel, err)
			}
			return logger.InitGlobalLogger(flagLogDir, flagVerbose, level)
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagHost, "host", "", "Target host address")
	pf.IntVar(&flagPort, "port", 22, "Target host SSH port")
	pf.StringVar(&flagUser, "user", "root", "Target host user")
	pf.StringVar(&flagPassword, "password", "", "Target host password")
	pf.StringVar(&flagKeyFile, "key", "", "Path to SSH private key")
	pf.StringVar(&flagKnownHosts, "known-hosts", "", "known_hosts file for strict host key verification (accepts any host identity when unset)")
	pf.DurationVar(&flagTimeout, "timeout", 30*time.Second, "Connection timeout")
	pf.StringVar(&flagConfig, "config", "", "Hosts configuration file (YAML)")
	pf.StringVar(&flagHostName, "name", "", "Host name to select from the configuration file")
	pf.StringVar(&flagLogLevel, "log-level", "info", "Log level (trace, debug, info, warn, error)")
	pf.StringVar(&flagLogDir, "log-dir", "", "Directory for log files (console only when unset)")
	pf.BoolVar(&flagVerbose, "verbose", false, "Enable verbose (debug) logging")

	rootCmd.AddCommand(newRunCmd(), newUploadCmd(), newDownloadCmd(), newMkdirCmd())

	if err := rootCmd.Execute(); err != nil {
		logger.Log.Errorf("%v", err)
		os.Exit(1)
	}
}

// resolveConfig builds the connection config from --config/--name when given,
// otherwise from the individual connection flags.
func resolveConfig() (sshclient.Config, error) {
	if flagConfig != "" {
		cfgFile, err := config.NewLoader(flagConfig).Load()
		if err != nil {
			return sshclient.Config{}, err
		}
		hosts, err := config.SetDefaultHostsSpec(cfgFile.Spec)
		if err != nil {
			return sshclient.Config{}, err
		}
		if flagHostName == "" {
			return sshclient.Config{}, fmt.Errorf("--name is required when --config is used")
		}
		cfg, ok := hosts[flagHostName]
		if !ok {
			return sshclient.Config{}, fmt.Errorf("host '%s' not found in %s", flagHostName, flagConfig)
		}
		return cfg, nil
	}

	if flagHost == "" {
		return sshclient.Config{}, fmt.Errorf("--host is required (or use --config/--name)")
	}
	return sshclient.Config{
		Host:           flagHost,
		Port:           flagPort,
		User:           flagUser,
		Password:       flagPassword,
		KeyFile:        flagKeyFile,
		KnownHostsFile: flagKnownHosts,
		Timeout:        flagTimeout,
	}, nil
}

func withSession(fn func(ctx context.Context, exec executor.Executor) error) error {
	cfg, err := resolveConfig()
	if err != nil {
		return err
	}

	sess, err := sshclient.Connect(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := sess.Disconnect(); closeErr != nil {
			logger.Log.Warnf("failed to disconnect: %v", closeErr)
		}
	}()

	exec, err := executor.NewRemoteExecutor(sess)
	if err != nil {
		return err
	}
	return fn(context.Background(), exec)
}

func newRunCmd() *cobra.Command {
	var sudo bool
	cmd := &cobra.Command{
		Use:   "run <command...>",
		Short: "Run a command on the remote host",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(func(ctx context.Context, exec executor.Executor) error {
				command := strings.Join(args, " ")
				run := exec.Execute
				if sudo {
					run = exec.SudoExecute
				}
				stdout, stderr, exitCode, err := run(ctx, command)
				if err != nil {
					return err
				}
				fmt.Fprint(os.Stdout, stdout)
				fmt.Fprint(os.Stderr, stderr)
				if exitCode != 0 {
					return fmt.Errorf("command exited %d", exitCode)
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&sudo, "sudo", false, "Run the command through sudo")
	return cmd
}

func newUploadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "upload <local> <remote>",
		Short: "Upload a local file to the remote host",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(func(ctx context.Context, exec executor.Executor) error {
				return exec.PutFile(ctx, args[0], args[1])
			})
		},
	}
}

func newDownloadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "download <remote> <local>",
		Short: "Download a remote file to a local path",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(func(ctx context.Context, exec executor.Executor) error {
				return exec.GetFile(ctx, args[0], args[1])
			})
		},
	}
}

func newMkdirCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mkdir <remote>",
		Short: "Create a remote directory path, parents included",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(func(ctx context.Context, exec executor.Executor) error {
				return exec.EnsureDirectory(ctx, args[0])
			})
		},
	}
}
