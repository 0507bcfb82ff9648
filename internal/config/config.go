package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

const DefaultFeatureConfigPath = "./data/roomkeeper.toml"

// Config holds the bot identity and the paths of its optional resources.
type Config struct {
	BotID             string
	BotName           string
	BotToken          string
	HomeChannel       string
	FeatureConfigPath string
	JournalPath       string
}

// Load loads configuration from environment variables only.
func Load() (*Config, error) {
	return LoadWithFile("")
}

// LoadWithFile loads configuration from an optional .env file and environment variables.
func LoadWithFile(envFile string) (*Config, error) {
	// Attempt to load .env file if provided, but don't fail if it doesn't exist.
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("error loading .env file: %w", err)
		}
	}

	cfg := &Config{
		BotID:             os.Getenv("BOT_ID"),
		BotName:           os.Getenv("BOT_NAME"),
		BotToken:          os.Getenv("BOT_TOKEN"),
		HomeChannel:       os.Getenv("BOT_HOME"),
		FeatureConfigPath: os.Getenv("ROOMKEEPER_CONFIG_PATH"),
		JournalPath:       os.Getenv("ROOMKEEPER_JOURNAL_PATH"),
	}
	if cfg.FeatureConfigPath == "" {
		cfg.FeatureConfigPath = DefaultFeatureConfigPath
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if all required fields are set.
func (c *Config) Validate() error {
	if c.BotID == "" {
		return fmt.Errorf("BOT_ID is required")
	}
	if c.BotName == "" {
		return fmt.Errorf("BOT_NAME is required")
	}
	if c.BotToken == "" {
		return fmt.Errorf("BOT_TOKEN is required")
	}
	if c.HomeChannel == "" {
		return fmt.Errorf("BOT_HOME is required")
	}
	return nil
}
