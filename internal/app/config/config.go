package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the immutable runtime configuration. It is built once at startup
// and handed to the runtime; nothing reads the environment after that.
type Config struct {
	AcquireURL string `yaml:"acquire_url"`
	PredictURL string `yaml:"predict_url"`
	ListenAddr string `yaml:"listen_addr"`

	AcquireTimeout time.Duration `yaml:"acquire_timeout"`
	PredictTimeout time.Duration `yaml:"predict_timeout"`
	ProbeTimeout   time.Duration `yaml:"probe_timeout"`
}

// Load reads an optional YAML file, layers environment overrides on top,
// fills defaults, and validates. An empty path means environment-only.
func Load(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) applyEnv() {
	if v := envString("ACQUIRE_URL"); v != "" {
		c.AcquireURL = v
	}
	if v := envString("PREDICT_URL"); v != "" {
		c.PredictURL = v
	}
	if v := envString("LISTEN_ADDR"); v != "" {
		c.ListenAddr = v
	} else if v := envString("PORT"); v != "" {
		c.ListenAddr = ":" + v
	}
	if d, ok := envMillis("ACQUIRE_TIMEOUT_MS"); ok {
		c.AcquireTimeout = d
	}
	if d, ok := envMillis("PREDICT_TIMEOUT_MS"); ok {
		c.PredictTimeout = d
	}
	if d, ok := envMillis("PROBE_TIMEOUT_MS"); ok {
		c.ProbeTimeout = d
	}
}

func (c *Config) applyDefaults() {
	if c.AcquireURL == "" {
		c.AcquireURL = "http://localhost:8081"
	}
	if c.PredictURL == "" {
		c.PredictURL = "http://localhost:8082"
	}
	if c.ListenAddr == "" {
		c.ListenAddr = ":8080"
	}
	if c.AcquireTimeout == 0 {
		c.AcquireTimeout = 20 * time.Second
	}
	if c.PredictTimeout == 0 {
		c.PredictTimeout = 15 * time.Second
	}
	if c.ProbeTimeout == 0 {
		c.ProbeTimeout = 3 * time.Second
	}
}

func (c *Config) validate() error {
	if err := validateURL("acquire_url", c.AcquireURL); err != nil {
		return err
	}
	if err := validateURL("predict_url", c.PredictURL); err != nil {
		return err
	}
	if c.ListenAddr == "" {
		return fmt.Errorf("listen_addr is required")
	}
	if c.AcquireTimeout <= 0 {
		return fmt.Errorf("acquire_timeout must be > 0")
	}
	if c.PredictTimeout <= 0 {
		return fmt.Errorf("predict_timeout must be > 0")
	}
	if c.ProbeTimeout <= 0 {
		return fmt.Errorf("probe_timeout must be > 0")
	}
	return nil
}

func validateURL(name, raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s: unsupported scheme %q", name, u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("%s: missing host", name)
	}
	return nil
}

func envString(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func envMillis(key string) (time.Duration, bool) {
	v := envString(key)
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, false
	}
	return time.Duration(n) * time.Millisecond, true
}
