package sshclient

import (
	"os"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"
)

// Config describes one remote host and the credentials used to reach it.
type Config struct {
	Host       string
	Port       int
	User       string
	Password   string
	PrivateKey string
	KeyFile    string
	Timeout    time.Duration

	// KnownHostsFile enables strict host key verification against the given
	// OpenSSH known_hosts file.
	KnownHostsFile string

	// HostKeyCallback overrides host identity verification entirely when set.
	// When neither this nor KnownHostsFile is set, any remote identity is
	// accepted. That default suits controlled test environments; callers that
	// talk to hosts they do not own must opt in to verification.
	HostKeyCallback ssh.HostKeyCallback
}

func validateConfig(cfg Config) (Config, error) {
	if len(cfg.User) == 0 {
		return cfg, errors.New("no user specified for SSH connection")
	}
	if len(cfg.Host) == 0 {
		return cfg, errors.New("no host specified for SSH connection")
	}
	if len(cfg.Password) == 0 && len(cfg.PrivateKey) == 0 && len(cfg.KeyFile) == 0 {
		return cfg, errors.New("must specify at least one of password, private key or keyfile")
	}

	if len(cfg.PrivateKey) == 0 && len(cfg.KeyFile) > 0 {
		content, err := os.ReadFile(cfg.KeyFile)
		if err != nil {
			return cfg, errors.Wrapf(err, "failed to read keyfile %q", cfg.KeyFile)
		}
		cfg.PrivateKey = string(content)
	}

	if cfg.Port <= 0 {
		cfg.Port = 22
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return cfg, nil
}

func (cfg Config) authMethods() ([]ssh.AuthMethod, error) {
	authMethods := make([]ssh.AuthMethod, 0, 2)
	if len(cfg.Password) > 0 {
		authMethods = append(authMethods, ssh.Password(cfg.Password))
	}
	if len(cfg.PrivateKey) > 0 {
		signer, err := ssh.ParsePrivateKey([]byte(cfg.PrivateKey))
		if err != nil {
			return nil, errors.Wrap(err, "the given SSH key could not be parsed")
		}
		authMethods = append(authMethods, ssh.PublicKeys(signer))
	}
	return authMethods, nil
}

func (cfg Config) hostKeyCallback() (ssh.HostKeyCallback, error) {
	if cfg.HostKeyCallback != nil {
		return cfg.HostKeyCallback, nil
	}
	if cfg.KnownHostsFile != "" {
		cb, err := knownhosts.New(cfg.KnownHostsFile)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to load known_hosts file %q", cfg.KnownHostsFile)
		}
		return cb, nil
	}
	return ssh.InsecureIgnoreHostKey(), nil
}
