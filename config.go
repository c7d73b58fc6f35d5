package neutralipc

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/spf13/viper"
)

// Connection defaults, matching the IPC server's own conventions.
const (
	DefaultHost       = "127.0.0.1"
	DefaultPort       = 4273
	DefaultTimeout    = 10 * time.Second
	DefaultBufferSize = 8192

	// DefaultConfigFile is the IPC server's configuration file. When the
	// client runs on the same host it can pick up the server's settings
	// from there.
	DefaultConfigFile = "/etc/neutral-ipc-cfg.json"

	envPrefix = "NEUTRAL_IPC"
)

// Config holds the connection settings for one client. It is a plain value
// fixed at construction; there is no process-global configuration state.
type Config struct {
	Host       string
	Port       int
	Timeout    time.Duration
	BufferSize int
}

// ConfigOption mutates a Config during NewConfig.
type ConfigOption func(*Config)

func WithHost(host string) ConfigOption {
	return func(c *Config) { c.Host = host }
}

func WithPort(port int) ConfigOption {
	return func(c *Config) { c.Port = port }
}

func WithTimeout(d time.Duration) ConfigOption {
	return func(c *Config) { c.Timeout = d }
}

func WithBufferSize(n int) ConfigOption {
	return func(c *Config) { c.BufferSize = n }
}

// DefaultConfig returns the built-in connection settings.
func DefaultConfig() Config {
	return Config{
		Host:       DefaultHost,
		Port:       DefaultPort,
		Timeout:    DefaultTimeout,
		BufferSize: DefaultBufferSize,
	}
}

// NewConfig builds a Config from the defaults and the given options.
func NewConfig(opts ...ConfigOption) Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// LoadConfig loads connection settings from the server's configuration file
// at DefaultConfigFile, falling back to defaults when the file is absent.
// Environment variables with the NEUTRAL_IPC_ prefix (NEUTRAL_IPC_HOST,
// NEUTRAL_IPC_PORT, NEUTRAL_IPC_TIMEOUT, NEUTRAL_IPC_BUFFER_SIZE) override
// file values.
func LoadConfig() (Config, error) {
	return LoadConfigFile(DefaultConfigFile)
}

// LoadConfigFile is LoadConfig with an explicit file path. The file is JSON
// with keys "host", "port", "timeout" (seconds), and "buffer_size". A
// missing or unreadable file is not an error; the defaults apply.
func LoadConfigFile(path string) (Config, error) {
	defaults := DefaultConfig()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetDefault("host", defaults.Host)
	v.SetDefault("port", defaults.Port)
	v.SetDefault("timeout", int(defaults.Timeout/time.Second))
	v.SetDefault("buffer_size", defaults.BufferSize)

	if _, err := os.Stat(path); err == nil {
		if err := v.ReadInConfig(); err != nil {
			return Config{}, newConfigError("unreadable_file",
				fmt.Sprintf("cannot parse config file %s: %v", path, err))
		}
	}

	cfg := Config{
		Host:       v.GetString("host"),
		Port:       v.GetInt("port"),
		Timeout:    time.Duration(v.GetInt("timeout")) * time.Second,
		BufferSize: v.GetInt("buffer_size"),
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that the configuration can produce a usable connection.
func (c Config) Validate() error {
	if c.Host == "" {
		return newConfigError("empty_host", "host must not be empty")
	}
	if c.Port < 1 || c.Port > 65535 {
		return newConfigError("bad_port", fmt.Sprintf("port %d outside 1-65535", c.Port))
	}
	if c.Timeout <= 0 {
		return newConfigError("bad_timeout", "timeout must be positive")
	}
	if c.BufferSize <= 0 {
		return newConfigError("bad_buffer_size", "buffer size must be positive")
	}
	return nil
}

func (c Config) addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
