package service

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/duong2179/slack-hodor/internal/civiltime"
	"github.com/duong2179/slack-hodor/internal/store"
)

// CalendarConfig holds configuration for the Google Calendar mirror
type CalendarConfig struct {
	Enabled            bool   `toml:"enabled"`
	CalendarID         string `toml:"calendar_id"`
	ServiceAccountPath string `toml:"service_account_path"`
}

// Duration decodes TOML strings such as "5m" or "168h".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}

// PolicyConfig overrides the reservation limits. Zero values keep the defaults.
type PolicyConfig struct {
	MinLead     Duration `toml:"min_lead"`
	MaxLead     Duration `toml:"max_lead"`
	MinDuration Duration `toml:"min_duration"`
	MaxDuration Duration `toml:"max_duration"`
}

// FeatureConfig holds user-facing feature configurations.
// These are non-sensitive settings that customize the room keeper and its
// integrations. Source: TOML configuration file
type FeatureConfig struct {
	Timezone string         `toml:"timezone"`
	Policy   PolicyConfig   `toml:"policy"`
	Calendar CalendarConfig `toml:"calendar"`
}

// DefaultFeatureConfig is used when no configuration file exists.
func DefaultFeatureConfig() *FeatureConfig {
	return &FeatureConfig{Timezone: civiltime.DefaultZone}
}

// LoadFeatureConfig loads feature configuration from a TOML file.
// A missing file yields the defaults.
func LoadFeatureConfig(path string) (*FeatureConfig, error) {
	cfg := DefaultFeatureConfig()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return DefaultFeatureConfig(), nil
		}
		return nil, fmt.Errorf("failed to load feature config: %w", err)
	}
	if cfg.Timezone == "" {
		cfg.Timezone = civiltime.DefaultZone
	}
	return cfg, nil
}

// StorePolicy merges the configured limits over store.DefaultPolicy.
func (c *FeatureConfig) StorePolicy() store.Policy {
	policy := store.DefaultPolicy()
	if d := c.Policy.MinLead.Duration; d > 0 {
		policy.MinLead = d
	}
	if d := c.Policy.MaxLead.Duration; d > 0 {
		policy.MaxLead = d
	}
	if d := c.Policy.MinDuration.Duration; d > 0 {
		policy.MinDuration = d
	}
	if d := c.Policy.MaxDuration.Duration; d > 0 {
		policy.MaxDuration = d
	}
	return policy
}

// LoadServiceAccountToken reads the service account JSON from the configured path.
// The SERVICE_ACCOUNT_PATH environment variable takes precedence.
func (c *CalendarConfig) LoadServiceAccountToken() ([]byte, error) {
	path := c.ServiceAccountPath
	if env := os.Getenv("SERVICE_ACCOUNT_PATH"); env != "" {
		path = env
	}
	if path == "" {
		return nil, fmt.Errorf("service_account_path is not configured")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read service account file: %w", err)
	}
	return data, nil
}
