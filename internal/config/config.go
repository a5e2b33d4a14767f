package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Registration modes
const (
	RegistrationModeSelf         = "self"
	RegistrationModePreprovision = "preprovision"
)

// Config structure represents the application configuration
type Config struct {
	Server struct {
		Port string `yaml:"port" env:"SERVER_PORT"`
		Mode string `yaml:"mode" env:"SERVER_MODE"`
	} `yaml:"server"`

	App struct {
		// Env controls whether error details are returned to clients ("development" or "production")
		Env string `yaml:"env" env:"APP_ENV"`
	} `yaml:"app"`

	Database struct {
		Host            string `yaml:"host" env:"DB_HOST"`
		Port            string `yaml:"port" env:"DB_PORT"`
		User            string `yaml:"user" env:"DB_USER"`
		Password        string `yaml:"password" env:"DB_PASSWORD"`
		DBName          string `yaml:"dbname" env:"DB_NAME"`
		SSL             bool   `yaml:"ssl" env:"DB_SSL"`
		SSLMode         string `yaml:"sslmode" env:"DB_SSLMODE"`
		MaxIdleConns    int    `yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS"`
		MaxOpenConns    int    `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS"`
		ConnMaxLifetime string `yaml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME"`
		MigrationsDir   string `yaml:"migrations_dir" env:"DB_MIGRATIONS_DIR"`
	} `yaml:"database"`

	JWT struct {
		Secret                string `yaml:"secret" env:"JWT_SECRET"`
		AccessTokenExpiration string `yaml:"access_token_expiration" env:"JWT_ACCESS_TOKEN_EXPIRATION"`
		Issuer                string `yaml:"issuer" env:"JWT_ISSUER"`
	} `yaml:"jwt"`

	Storage struct {
		Region          string `yaml:"region" env:"AWS_REGION"`
		AccessKeyID     string `yaml:"access_key_id" env:"AWS_ACCESS_KEY_ID"`
		SecretAccessKey string `yaml:"secret_access_key" env:"AWS_SECRET_ACCESS_KEY"`
		Bucket          string `yaml:"bucket" env:"AWS_S3_BUCKET_NAME"`
		// Endpoint is set for S3-compatible stores (MinIO, R2)
		Endpoint      string `yaml:"endpoint" env:"AWS_S3_ENDPOINT"`
		UploadURLTTL  string `yaml:"upload_url_ttl" env:"STORAGE_UPLOAD_URL_TTL"`
		ReadURLTTL    string `yaml:"read_url_ttl" env:"STORAGE_READ_URL_TTL"`
		ResumesFolder string `yaml:"resumes_folder" env:"STORAGE_RESUMES_FOLDER"`
	} `yaml:"storage"`

	Redis struct {
		Addr     string `yaml:"addr" env:"REDIS_ADDR"`
		Password string `yaml:"password" env:"REDIS_PASSWORD"`
		DB       int    `yaml:"db" env:"REDIS_DB"`
	} `yaml:"redis"`

	Webhook struct {
		N8NURL           string `yaml:"n8n_url" env:"N8N_WEBHOOK_URL"`
		Timeout          string `yaml:"timeout" env:"WEBHOOK_TIMEOUT"`
		NotifyOnRegister bool   `yaml:"notify_on_register" env:"WEBHOOK_NOTIFY_ON_REGISTER"`
	} `yaml:"webhook"`

	Registration struct {
		Mode           string `yaml:"mode" env:"REGISTRATION_MODE"`
		MaxResumeBytes int64  `yaml:"max_resume_bytes" env:"REGISTRATION_MAX_RESUME_BYTES"`
		VerifyDocument bool   `yaml:"verify_document" env:"REGISTRATION_VERIFY_DOCUMENT"`
	} `yaml:"registration"`

	CORS struct {
		AllowedOrigins string `yaml:"allowed_origins" env:"CORS_ALLOWED_ORIGINS"`
	} `yaml:"cors"`

	RateLimit struct {
		RequestsPerSecond int `yaml:"requests_per_second" env:"RATE_LIMIT_RPS"`
		Burst             int `yaml:"burst" env:"RATE_LIMIT_BURST"`
	} `yaml:"ratelimit"`

	Logging struct {
		Level  string `yaml:"level" env:"LOG_LEVEL"`
		Format string `yaml:"format" env:"LOG_FORMAT"`
	} `yaml:"logging"`
}

// LoadConfig loads configuration from .env, a YAML file and environment variables, in that order
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{}
	setDefaults(config)

	// A missing .env is normal outside local development
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	if _, err := os.Stat(configPath); err == nil {
		file, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := yaml.Unmarshal(file, config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

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

	config.App.Env = "development"

	config.Database.Host = "localhost"
	config.Database.Port = "5432"
	config.Database.User = "postgres"
	config.Database.Password = ""
	config.Database.DBName = "postgres"
	config.Database.MaxIdleConns = 2
	config.Database.MaxOpenConns = 20
	config.Database.ConnMaxLifetime = "1h"
	config.Database.MigrationsDir = "migrations"

	config.JWT.AccessTokenExpiration = "24h"
	config.JWT.Issuer = "cmis-student-portal"

	config.Storage.Region = "us-east-1"
	config.Storage.UploadURLTTL = "144h"
	config.Storage.ReadURLTTL = "1h"
	config.Storage.ResumesFolder = "resumes"

	config.Webhook.Timeout = "10s"
	config.Webhook.NotifyOnRegister = true

	config.Registration.Mode = RegistrationModeSelf
	config.Registration.MaxResumeBytes = 10 * 1024 * 1024
	config.Registration.VerifyDocument = true

	config.CORS.AllowedOrigins = "http://localhost:3000"

	config.RateLimit.RequestsPerSecond = 5
	config.RateLimit.Burst = 10

	config.Logging.Level = "info"
	config.Logging.Format = "json"
}

// loadFromEnv overrides configuration with environment variables
func loadFromEnv(config *Config) error {
	if err := overrideFromEnv(config); err != nil {
		return err
	}

	// The portal front-end historically exposed the webhook under this name
	if config.Webhook.N8NURL == "" {
		config.Webhook.N8NURL = GetEnv("NEXT_PUBLIC_N8N_WEBHOOK_URL", "")
	}

	return nil
}

// validateConfig ensures that the configuration is valid
func validateConfig(config *Config) error {
	if config.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}

	if config.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}

	switch config.Registration.Mode {
	case RegistrationModeSelf, RegistrationModePreprovision:
	default:
		return fmt.Errorf("unknown registration mode %q (expected %q or %q)",
			config.Registration.Mode, RegistrationModeSelf, RegistrationModePreprovision)
	}

	if config.Registration.MaxResumeBytes <= 0 {
		return fmt.Errorf("registration max resume bytes must be positive")
	}

	// cors.New panics on an empty or scheme-less origin list
	origins := config.AllowedOrigins()
	if len(origins) == 0 {
		return fmt.Errorf("at least one CORS allowed origin is required")
	}
	for _, origin := range origins {
		if !strings.Contains(origin, "*") && !strings.HasPrefix(origin, "http://") && !strings.HasPrefix(origin, "https://") {
			return fmt.Errorf("CORS origin %q must start with http:// or https://", origin)
		}
	}

	durations := map[string]string{
		"JWT access token expiration": config.JWT.AccessTokenExpiration,
		"database connection lifetime": config.Database.ConnMaxLifetime,
		"storage upload URL TTL":       config.Storage.UploadURLTTL,
		"storage read URL TTL":         config.Storage.ReadURLTTL,
		"webhook timeout":              config.Webhook.Timeout,
	}
	for name, value := range durations {
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid %s format: %w", name, err)
		}
	}

	return nil
}

// IsDevelopment reports whether error details may be exposed to clients
func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.App.Env, "development")
}

// AllowedOrigins returns the CORS origins as a list
func (c *Config) AllowedOrigins() []string {
	var origins []string
	for _, origin := range strings.Split(c.CORS.AllowedOrigins, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}

// GetPostgresConnectionString returns postgres connection string
func (c *Config) GetPostgresConnectionString() string {
	sslMode := c.Database.SSLMode
	if sslMode == "" {
		sslMode = "disable"
		if c.Database.SSL {
			sslMode = "require"
		}
	}

	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.DBName,
		sslMode,
	)
}

// GetEnv gets an environment variable or returns a default value
func GetEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
