package appcfg

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultKeysFile         = "meshcore-keys.txt"
	DefaultPerfCache        = "performance.json"
	DefaultProgressInterval = 3 * time.Second
)

type Config struct {
	Language             string        `yaml:"language"`  // "en" | "ru"
	LogLevel             string        `yaml:"log_level"` // "debug"|"info"|"warn"|"error"
	HideSecretsInConsole bool          `yaml:"hide_secrets_in_console"`
	Cores                int           `yaml:"cores"`     // 0 = CPUs-1, at least 1
	KeysFile             string        `yaml:"keys_file"` // found keys, "PRIVATE; PUBLIC" per line
	PerfCache            string        `yaml:"perf_cache"`
	LogsDir              string        `yaml:"logs_dir"` // "" = console only
	ProgressInterval     time.Duration `yaml:"progress_interval"`
}

// Default is the configuration used when configs/app.yaml is missing.
func Default() *Config {
	c := &Config{HideSecretsInConsole: true}
	c.applyDefaults()
	return c
}

func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open app config %q: %w", path, err)
	}
	defer f.Close()

	c, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode app yaml %q: %w", path, err)
	}
	return c, nil
}

func Decode(r io.Reader) (*Config, error) {
	c := Config{HideSecretsInConsole: true}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	if c.Cores < 0 {
		return nil, fmt.Errorf("cores must be >= 0, got %d", c.Cores)
	}
	if c.ProgressInterval < 0 {
		return nil, fmt.Errorf("progress_interval must be >= 0, got %s", c.ProgressInterval)
	}
	c.applyDefaults()
	return &c, nil
}

func (c *Config) applyDefaults() {
	if c.Language == "" {
		c.Language = "en"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.KeysFile == "" {
		c.KeysFile = DefaultKeysFile
	}
	if c.PerfCache == "" {
		c.PerfCache = DefaultPerfCache
	}
	if c.ProgressInterval == 0 {
		c.ProgressInterval = DefaultProgressInterval
	}
}
