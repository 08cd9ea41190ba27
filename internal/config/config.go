package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"tempkeeper/internal/namegen"
)

// SweepRule describes one directory to sweep for stale temporary objects.
type SweepRule struct {
	Path        string `yaml:"path" json:"path"`
	Prefix      string `yaml:"prefix" json:"prefix"`                 // Name prefix to match (default: atmp_)
	MaxAgeHours int    `yaml:"max_age_hours" json:"max_age_hours"`   // Minimum age before an object is stale
	Recursive   bool   `yaml:"recursive" json:"recursive"`           // Allow removing whole directory trees
}

type PrometheusCfg struct {
	Port int `yaml:"port" json:"port"`
}

type LoggingCfg struct {
	Dir          string `yaml:"dir" json:"dir"`                     // Log directory
	RotationDays int    `yaml:"rotation_days" json:"rotation_days"` // Days to keep logs before rotation
}

type Config struct {
	Sweeps          []SweepRule   `yaml:"sweeps" json:"sweeps"`
	IntervalMinutes int           `yaml:"interval_minutes" json:"interval_minutes"`
	Prometheus      PrometheusCfg `yaml:"prometheus" json:"prometheus"`
	Logging         LoggingCfg    `yaml:"logging" json:"logging"`
	DatabasePath    string        `yaml:"database_path" json:"database_path"` // SQLite journal of sweep events
}

var (
	errNoSweeps    = errors.New("configuration must specify at least one sweep rule")
	errInvalidPath = errors.New("path must be absolute")
	errNegativeAge = errors.New("max_age_hours cannot be negative")
	errEmptyPrefix = errors.New("prefix cannot be empty")
)

func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	cfg, err := decode(f)
	if err != nil {
		return nil, err
	}
	if err := cfg.validateAndDefault(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decode(r io.Reader) (*Config, error) {
	cfg := &Config{}
	decoder := yaml.NewDecoder(r)
	if err := decoder.Decode(cfg); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	return cfg, nil
}

func (c *Config) validateAndDefault() error {
	if len(c.Sweeps) == 0 {
		return errNoSweeps
	}

	if c.IntervalMinutes <= 0 {
		c.IntervalMinutes = 15
	}

	if c.Prometheus.Port == 0 {
		c.Prometheus.Port = 9090
	}

	if c.Logging.Dir == "" {
		c.Logging.Dir = "/var/log/tempkeeper"
	}
	if c.Logging.RotationDays <= 0 {
		c.Logging.RotationDays = 30
	}

	if c.DatabasePath == "" {
		c.DatabasePath = "/var/lib/tempkeeper/journal.db"
	}

	for i := range c.Sweeps {
		cp, err := cleanAbsolute(c.Sweeps[i].Path)
		if err != nil {
			return err
		}
		c.Sweeps[i].Path = cp

		// A missing prefix falls back to the library's generated-name
		// prefix. A deliberately blank one ("  ") would match every
		// entry under the root and is refused.
		if c.Sweeps[i].Prefix == "" {
			c.Sweeps[i].Prefix = namegen.Prefix
		} else if strings.TrimSpace(c.Sweeps[i].Prefix) == "" {
			return fmt.Errorf("sweep %s: %w", c.Sweeps[i].Path, errEmptyPrefix)
		}

		if c.Sweeps[i].MaxAgeHours < 0 {
			return fmt.Errorf("sweep %s: %w", c.Sweeps[i].Path, errNegativeAge)
		}
		if c.Sweeps[i].MaxAgeHours == 0 {
			c.Sweeps[i].MaxAgeHours = 24
		}
	}

	return nil
}

func cleanAbsolute(p string) (string, error) {
	if p == "" {
		return "", errInvalidPath
	}
	cp := filepath.Clean(p)
	if !filepath.IsAbs(cp) {
		return "", fmt.Errorf("%w: %s", errInvalidPath, p)
	}
	return cp, nil
}

func (c *Config) Interval() time.Duration {
	return time.Duration(c.IntervalMinutes) * time.Minute
}

func (c *Config) PrometheusAddress() string {
	return fmt.Sprintf(":%d", c.Prometheus.Port)
}

// Roots returns the sweep root paths, used as the allowed roots for the
// safety validator.
func (c *Config) Roots() []string {
	roots := make([]string, 0, len(c.Sweeps))
	for _, s := range c.Sweeps {
		roots = append(roots, s.Path)
	}
	return roots
}

// MaxAge returns the staleness threshold of a rule as a duration.
func (r SweepRule) MaxAge() time.Duration {
	return time.Duration(r.MaxAgeHours) * time.Hour
}
