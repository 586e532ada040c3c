package config

// HostsConfig is the top-level configuration structure.
type HostsConfig struct {
	APIVersion string       `yaml:"apiVersion"`
	Kind       string       `yaml:"kind"`
	Metadata   MetadataSpec `yaml:"metadata"`
	Spec       *HostsSpec   `yaml:"spec"`
}

// MetadataSpec defines metadata for the configuration.
type MetadataSpec struct {
	Name string `yaml:"name"`
}

// HostsSpec lists the reachable hosts and shared connection defaults.
type HostsSpec struct {
	Hosts    []HostSpec   `yaml:"hosts"`
	Defaults DefaultsSpec `yaml:"defaults,omitempty"`
}

// HostSpec defines the connection parameters for a single host.
type HostSpec struct {
	Name           string `yaml:"name"`
	Address        string `yaml:"address"`
	Port           int    `yaml:"port,omitempty"`
	User           string `yaml:"user,omitempty"`
	Password       string `yaml:"password,omitempty"`
	PrivateKeyPath string `yaml:"privateKeyPath,omitempty"`
	TimeoutSeconds int    `yaml:"timeoutSeconds,omitempty"`
}

// DefaultsSpec holds values applied to hosts that do not set their own.
type DefaultsSpec struct {
	Port           int    `yaml:"port,omitempty"`
	User           string `yaml:"user,omitempty"`
	TimeoutSeconds int    `yaml:"timeoutSeconds,omitempty"`
	// KnownHostsFile enables strict host key verification for all hosts.
	// When empty, any remote identity is accepted.
	KnownHostsFile string `yaml:"knownHostsFile,omitempty"`
}
