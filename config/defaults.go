package config

import (
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/acntech/easycontainers-sub002/common"
	"github.com/acntech/easycontainers-sub002/ip"
	"github.com/acntech/easycontainers-sub002/sshclient"
)

const (
	DefaultTimeoutSeconds = 30
)

// SetDefaultHostsSpec applies the spec-level defaults to every host entry and
// converts them to connection configs, keyed by host name. A host whose
// address is an IP range, CIDR block or comma-separated list expands into one
// entry per address, named <name>-1, <name>-2 and so on.
func SetDefaultHostsSpec(spec *HostsSpec) (map[string]sshclient.Config, error) {
	if spec == nil {
		return nil, fmt.Errorf("input HostsSpec cannot be nil")
	}

	defaultPort := spec.Defaults.Port
	if defaultPort <= 0 {
		defaultPort = common.DefaultSSHPort
	}
	defaultTimeout := spec.Defaults.TimeoutSeconds
	if defaultTimeout <= 0 {
		defaultTimeout = DefaultTimeoutSeconds
	}

	configs := make(map[string]sshclient.Config, len(spec.Hosts))
	for _, host := range spec.Hosts {
		if host.Name == "" {
			return nil, fmt.Errorf("host entry with address '%s' has no name", host.Address)
		}
		if host.Address == "" {
			return nil, fmt.Errorf("host '%s' has no address", host.Name)
		}

		addresses, err := expandAddress(host.Address)
		if err != nil {
			return nil, fmt.Errorf("host '%s': %w", host.Name, err)
		}

		port := host.Port
		if port <= 0 {
			port = defaultPort
		}
		user := host.User
		if user == "" {
			user = spec.Defaults.User
		}
		timeout := host.TimeoutSeconds
		if timeout <= 0 {
			timeout = defaultTimeout
		}

		for i, address := range addresses {
			name := host.Name
			if len(addresses) > 1 {
				name = fmt.Sprintf("%s-%d", host.Name, i+1)
			}
			if _, dup := configs[name]; dup {
				return nil, fmt.Errorf("duplicate host name '%s'", name)
			}

			configs[name] = sshclient.Config{
				Host:           address,
				Port:           port,
				User:           user,
				Password:       host.Password,
				KeyFile:        host.PrivateKeyPath,
				Timeout:        time.Duration(timeout) * time.Second,
				KnownHostsFile: spec.Defaults.KnownHostsFile,
			}
		}
	}
	return configs, nil
}

// expandAddress turns an address expression into concrete addresses. Plain
// hostnames and single IPs pass through unchanged; lists, ranges and CIDR
// blocks are expanded. A dash only marks a range when both bounds parse as
// IPs, so hostnames like "db-primary" stay intact.
func expandAddress(address string) ([]string, error) {
	isExpression := strings.Contains(address, ",") || strings.Contains(address, "/")
	if !isExpression && strings.Contains(address, "-") {
		bounds := strings.SplitN(address, "-", 2)
		isExpression = net.ParseIP(strings.TrimSpace(bounds[0])) != nil &&
			net.ParseIP(strings.TrimSpace(bounds[1])) != nil
	}
	if !isExpression {
		return []string{address}, nil
	}

	addresses, err := ip.ParseIPsFromString(address)
	if err != nil {
		return nil, err
	}
	if len(addresses) == 0 {
		return nil, fmt.Errorf("address expression '%s' expands to no hosts", address)
	}
	return addresses, nil
}
