// Package config loads the CRM server configuration from layered sources.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	DataDir        string `yaml:"data_dir"`
	UserID         string `yaml:"user_id"`
	UserName       string `yaml:"user_name"`
	LogLevel       string `yaml:"log_level"`
	DuplicateLimit int    `yaml:"duplicate_limit"`
	PageSize       int    `yaml:"page_size"`
}

// Load loads configuration from multiple sources with precedence:
// 1. Environment variables (CRM_*)
// 2. ./.env.local (dotenv) - walks up parent directories to find it
// 3. ~/.config/crm/config.yaml (YAML)
// 4. Built-in defaults
func Load() (*Config, error) {
	cfg := &Config{
		UserID:         "default",
		UserName:       "Me",
		LogLevel:       "info",
		DuplicateLimit: 20,
		PageSize:       25,
	}

	// Load .env.local if it exists (walking up parent directories).
	if envPath := findEnvLocal(); envPath != "" {
		_ = godotenv.Load(envPath)
	}

	// YAML config is optional.
	if err := loadYAMLConfig(cfg); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading config.yaml: %w", err)
	}

	// Override with environment variables.
	if dataDir := os.Getenv("CRM_DATA_DIR"); dataDir != "" {
		cfg.DataDir = dataDir
	}
	if userID := os.Getenv("CRM_USER_ID"); userID != "" {
		cfg.UserID = userID
	}
	if userName := os.Getenv("CRM_USER_NAME"); userName != "" {
		cfg.UserName = userName
	}
	if logLevel := os.Getenv("CRM_LOG_LEVEL"); logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if limit := os.Getenv("CRM_DUPLICATE_LIMIT"); limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil {
			return nil, fmt.Errorf("CRM_DUPLICATE_LIMIT: %w", err)
		}
		cfg.DuplicateLimit = n
	}
	if pageSize := os.Getenv("CRM_PAGE_SIZE"); pageSize != "" {
		n, err := strconv.Atoi(pageSize)
		if err != nil {
			return nil, fmt.Errorf("CRM_PAGE_SIZE: %w", err)
		}
		cfg.PageSize = n
	}

	if cfg.DataDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		cfg.DataDir = filepath.Join(homeDir, ".crm")
	}

	return cfg, nil
}

// loadYAMLConfig loads configuration from ~/.config/crm/config.yaml.
func loadYAMLConfig(cfg *Config) error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return err
	}

	configPath := filepath.Join(homeDir, ".config", "crm", "config.yaml")
	data, err := os.ReadFile(configPath)
	if err != nil {
		return err
	}

	return yaml.Unmarshal(data, cfg)
}

// findEnvLocal searches for .env.local starting from cwd and walking up
// parent directories. Stops at the user's home directory.
func findEnvLocal() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		if _, err := os.Stat(".env.local"); err == nil {
			return ".env.local"
		}
		return ""
	}

	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	homeDir = filepath.Clean(homeDir)
	dir := filepath.Clean(cwd)

	for {
		envPath := filepath.Join(dir, ".env.local")
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
		if dir == homeDir {
			break
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}
