package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultPath is used when GRADEBOOK_CONFIG is not set
const DefaultPath = "configs/config.yaml"

// DefaultSessionSecret is the shipped placeholder. Anyone who knows it can sign a session cookie for any user.
const DefaultSessionSecret = "change_this_to_random_secret"

// Config structure represents the application configuration
type Config struct {
	Server struct {
		Port         string `yaml:"port" env:"SERVER_PORT"`
		Mode         string `yaml:"mode" env:"SERVER_MODE"`
		ReadTimeout  string `yaml:"read_timeout" env:"SERVER_READ_TIMEOUT"`
		WriteTimeout string `yaml:"write_timeout" env:"SERVER_WRITE_TIMEOUT"`
	} `yaml:"server"`

	Database struct {
		Path          string `yaml:"path" env:"DB_PATH"`
		MaxOpenConns  int    `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS"`
		BusyTimeoutMS int    `yaml:"busy_timeout_ms" env:"DB_BUSY_TIMEOUT_MS"`
	} `yaml:"database"`

	Session struct {
		Secret     string `yaml:"secret" env:"SESSION_SECRET"`
		CookieName string `yaml:"cookie_name" env:"SESSION_COOKIE_NAME"`
		TTL        string `yaml:"ttl" env:"SESSION_TTL"`
		Secure     bool   `yaml:"secure" env:"SESSION_SECURE"`
	} `yaml:"session"`

	Export struct {
		Enabled      bool   `yaml:"enabled" env:"EXPORT_ENABLED"`
		Dir          string `yaml:"dir" env:"EXPORT_DIR"`
		StudentsFile string `yaml:"students_file" env:"EXPORT_STUDENTS_FILE"`
		UsersFile    string `yaml:"users_file" env:"EXPORT_USERS_FILE"`
		LoginLogFile string `yaml:"login_log_file" env:"EXPORT_LOGIN_LOG_FILE"`
	} `yaml:"export"`

	// Seed controls first-run data. The default admin credential is well known;
	// disable create_default_admin and use the admin CLI in real deployments.
	Seed struct {
		CreateDefaultAdmin   bool   `yaml:"create_default_admin" env:"SEED_CREATE_DEFAULT_ADMIN"`
		DefaultAdminUsername string `yaml:"default_admin_username" env:"SEED_DEFAULT_ADMIN_USERNAME"`
		DefaultAdminPassword string `yaml:"default_admin_password" env:"SEED_DEFAULT_ADMIN_PASSWORD"`
		ReconcileAdminRole   bool   `yaml:"reconcile_admin_role" env:"SEED_RECONCILE_ADMIN_ROLE"`
	} `yaml:"seed"`

	Logging struct {
		Level  string `yaml:"level" env:"LOG_LEVEL"`
		Format string `yaml:"format" env:"LOG_FORMAT"`
	} `yaml:"logging"`
}

// LoadConfig loads configuration from a file, an optional .env file and environment variables
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{}
	setDefaults(config)

	// Try to read config file if it exists
	if _, err := os.Stat(configPath); err == nil {
		file, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := yaml.Unmarshal(file, config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	// .env only fills variables that are not already set in the process environment
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	// Override with environment variables
	if err := loadFromEnv(config); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// setDefaults sets default values for the configuration
func setDefaults(config *Config) {
	config.Server.Port = "8080"
	config.Server.Mode = "development"
	config.Server.ReadTimeout = "10s"
	config.Server.WriteTimeout = "10s"

	config.Database.Path = "database.db"
	config.Database.MaxOpenConns = 4
	config.Database.BusyTimeoutMS = 5000

	config.Session.Secret = DefaultSessionSecret
	config.Session.CookieName = "gradebook_session"
	config.Session.TTL = "24h"

	config.Export.Enabled = true
	config.Export.Dir = "."
	config.Export.StudentsFile = "students_export.txt"
	config.Export.UsersFile = "users_export.txt"
	config.Export.LoginLogFile = "login_log.txt"

	config.Seed.CreateDefaultAdmin = true
	config.Seed.DefaultAdminUsername = "admin"
	config.Seed.DefaultAdminPassword = "admin123"
	config.Seed.ReconcileAdminRole = true

	config.Logging.Level = "info"
	config.Logging.Format = "json"
}

// loadFromEnv overrides configuration with environment variables
func loadFromEnv(config *Config) error {
	return processStructFields(config)
}

// validateConfig ensures that the configuration is valid
func validateConfig(config *Config) error {
	if strings.TrimSpace(config.Database.Path) == "" {
		return fmt.Errorf("database path is required")
	}

	if config.Database.MaxOpenConns < 1 {
		return fmt.Errorf("database max_open_conns must be at least 1")
	}

	if config.Session.Secret == "" {
		return fmt.Errorf("session secret is required")
	}

	if config.IsProduction() && config.UsesDefaultSessionSecret() {
		return fmt.Errorf("session secret must be changed from the default in production mode")
	}

	if config.Session.CookieName == "" {
		return fmt.Errorf("session cookie name is required")
	}

	if _, err := time.ParseDuration(config.Session.TTL); err != nil {
		return fmt.Errorf("invalid session ttl format: %w", err)
	}

	for name, value := range map[string]string{
		"server read_timeout":  config.Server.ReadTimeout,
		"server write_timeout": config.Server.WriteTimeout,
	} {
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid %s format: %w", name, err)
		}
	}

	if config.Seed.CreateDefaultAdmin {
		if config.Seed.DefaultAdminUsername == "" || config.Seed.DefaultAdminPassword == "" {
			return fmt.Errorf("default admin username and password are required when create_default_admin is enabled")
		}
	}

	return nil
}

// IsProduction reports whether server.mode is "production"
func (c *Config) IsProduction() bool {
	return strings.EqualFold(strings.TrimSpace(c.Server.Mode), "production")
}

// UsesDefaultSessionSecret reports whether cookies are signed with the shipped placeholder secret
func (c *Config) UsesDefaultSessionSecret() bool {
	return c.Session.Secret == DefaultSessionSecret
}

// Path returns the config file location, honouring GRADEBOOK_CONFIG
func Path() string {
	return GetEnv("GRADEBOOK_CONFIG", DefaultPath)
}

// GetEnv gets an environment variable or returns a default value
func GetEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
