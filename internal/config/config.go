package config

import (
	"encoding/json"
	"os"
	"strconv"
)

// Config holds all application configuration
type Config struct {
	ServerAddress string       `json:"serverAddress"`
	DatabasePath  string       `json:"databasePath"`
	DatabaseURL   string       `json:"databaseUrl"`
	Security      Security     `json:"security"`
	Destination   Destination  `json:"destination"`
	Scheduler     Scheduler    `json:"scheduler"`
	RemoteSource  RemoteSource `json:"remoteSource"`
	MaxUploadMB   int64        `json:"maxUploadMB"`
}

// UsePostgres returns true if PostgreSQL should be used
func (c *Config) UsePostgres() bool {
	return c.DatabaseURL != ""
}

// Security configuration
type Security struct {
	APIKey       string `json:"apiKey"`
	APIKeyHeader string `json:"apiKeyHeader"`
}

// Destination configures the hosted document index client
type Destination struct {
	BaseURL              string `json:"baseUrl"`
	APIKey               string `json:"apiKey"`
	PollIntervalSeconds  int    `json:"pollIntervalSeconds"`
	UploadTimeoutSeconds int    `json:"uploadTimeoutSeconds"`
}

// Scheduler configures the periodic auto-sync triggers
type Scheduler struct {
	Enabled               bool `json:"enabled"`
	RemoteIntervalMinutes int  `json:"remoteIntervalMinutes"`
	LocalIntervalMinutes  int  `json:"localIntervalMinutes"`
}

// RemoteSource configures the S3 content source
type RemoteSource struct {
	Region          string `json:"region"`
	Bucket          string `json:"bucket"`
	Endpoint        string `json:"endpoint"`
	AccessKeyID     string `json:"accessKeyId"`
	SecretAccessKey string `json:"secretAccessKey"`
}

// Default configuration
func defaultConfig() *Config {
	return &Config{
		ServerAddress: ":5000",
		DatabasePath:  "docsync.db",
		Security: Security{
			APIKey:       "CHANGE_THIS_TO_A_SECURE_API_KEY_AT_LEAST_32_CHARS",
			APIKeyHeader: "X-API-Key",
		},
		Destination: Destination{
			BaseURL:              "http://localhost:8080",
			PollIntervalSeconds:  3,
			UploadTimeoutSeconds: 120,
		},
		Scheduler: Scheduler{
			Enabled:               true,
			RemoteIntervalMinutes: 5,
			LocalIntervalMinutes:  3,
		},
		MaxUploadMB: 50,
	}
}

// Load loads configuration from file or environment
func Load() (*Config, error) {
	cfg := defaultConfig()

	// Try to load from config file
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.json"
	}

	if data, err := os.ReadFile(configPath); err == nil {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	}

	// Override from environment variables
	if addr := os.Getenv("SERVER_ADDRESS"); addr != "" {
		cfg.ServerAddress = addr
	}
	if dbPath := os.Getenv("DATABASE_PATH"); dbPath != "" {
		cfg.DatabasePath = dbPath
	}
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		cfg.DatabaseURL = dbURL
	}
	if apiKey := os.Getenv("API_KEY"); apiKey != "" {
		cfg.Security.APIKey = apiKey
	}
	if baseURL := os.Getenv("DESTINATION_BASE_URL"); baseURL != "" {
		cfg.Destination.BaseURL = baseURL
	}
	if destKey := os.Getenv("DESTINATION_API_KEY"); destKey != "" {
		cfg.Destination.APIKey = destKey
	}
	if timeout := os.Getenv("DESTINATION_UPLOAD_TIMEOUT_SECONDS"); timeout != "" {
		if secs, err := strconv.Atoi(timeout); err == nil && secs > 0 {
			cfg.Destination.UploadTimeoutSeconds = secs
		}
	}

	// Scheduler configuration
	if enabled := os.Getenv("SCHEDULER_ENABLED"); enabled != "" {
		cfg.Scheduler.Enabled = enabled == "true" || enabled == "1"
	}
	if interval := os.Getenv("SCHEDULER_REMOTE_INTERVAL_MINUTES"); interval != "" {
		if mins, err := strconv.Atoi(interval); err == nil && mins > 0 {
			cfg.Scheduler.RemoteIntervalMinutes = mins
		}
	}
	if interval := os.Getenv("SCHEDULER_LOCAL_INTERVAL_MINUTES"); interval != "" {
		if mins, err := strconv.Atoi(interval); err == nil && mins > 0 {
			cfg.Scheduler.LocalIntervalMinutes = mins
		}
	}

	// Remote source configuration
	if region := os.Getenv("REMOTE_SOURCE_REGION"); region != "" {
		cfg.RemoteSource.Region = region
	}
	if bucket := os.Getenv("REMOTE_SOURCE_BUCKET"); bucket != "" {
		cfg.RemoteSource.Bucket = bucket
	}
	if endpoint := os.Getenv("REMOTE_SOURCE_ENDPOINT"); endpoint != "" {
		cfg.RemoteSource.Endpoint = endpoint
	}

	return cfg, nil
}
