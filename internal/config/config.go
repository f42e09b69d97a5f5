package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config is the backend service configuration. Values come from an optional
// YAML file, with environment variables taking precedence and defaults
// filling the rest.
type Config struct {
	Port     string `yaml:"port"`
	LogLevel string `yaml:"logLevel"`

	DatabaseType string `yaml:"databaseType"`
	DatabasePath string `yaml:"databasePath"`
	DatabaseHost string `yaml:"databaseHost"`
	DatabasePort int    `yaml:"databasePort"`
	DatabaseUser string `yaml:"databaseUser"`
	DatabasePass string `yaml:"databasePassword"`
	DatabaseName string `yaml:"databaseName"`

	RedisAddr     string `yaml:"redisAddr"`
	RedisPassword string `yaml:"redisPassword"`

	ProviderBaseURL string `yaml:"providerBaseURL"`
	ProviderAPIKey  string `yaml:"providerAPIKey"`
	ProviderModel   string `yaml:"providerModel"`

	UploadDir     string `yaml:"uploadDir"`
	MaxUploadSize int64  `yaml:"maxUploadSize"`
	MaxFrames     int    `yaml:"maxFrames"`
	FrameSize     int    `yaml:"frameSize"`
	HistoryLimit  int    `yaml:"historyLimit"`
}

// Load reads path (skipped when empty or missing), applies env overrides and
// defaults, then validates.
func Load(path string) (Config, error) {
	cfg := Config{}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err == nil {
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	applyEnv(&cfg)
	applyDefaults(&cfg)

	if err := validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	setString(&cfg.Port, "PORT")
	setString(&cfg.LogLevel, "LOG_LEVEL")
	setString(&cfg.DatabaseType, "DB_TYPE")
	setString(&cfg.DatabasePath, "DB_PATH")
	setString(&cfg.DatabaseHost, "DB_HOST")
	setInt(&cfg.DatabasePort, "DB_PORT")
	setString(&cfg.DatabaseUser, "DB_USER")
	setString(&cfg.DatabasePass, "DB_PASSWORD")
	setString(&cfg.DatabaseName, "DB_NAME")
	setString(&cfg.RedisAddr, "REDIS_ADDR")
	setString(&cfg.RedisPassword, "REDIS_PASSWORD")
	setString(&cfg.ProviderBaseURL, "PROVIDER_BASE_URL")
	setString(&cfg.ProviderAPIKey, "PROVIDER_API_KEY")
	setString(&cfg.ProviderModel, "PROVIDER_MODEL")
	setString(&cfg.UploadDir, "UPLOAD_DIR")
	setInt64(&cfg.MaxUploadSize, "MAX_UPLOAD_SIZE")
	setInt(&cfg.MaxFrames, "MAX_FRAMES_PER_VIDEO")
	setInt(&cfg.FrameSize, "FRAME_SIZE")
	setInt(&cfg.HistoryLimit, "HISTORY_LIMIT")
}

func applyDefaults(cfg *Config) {
	if cfg.Port == "" {
		cfg.Port = "5000"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.DatabaseType == "" {
		cfg.DatabaseType = "sqlite"
	}
	if cfg.DatabasePath == "" {
		cfg.DatabasePath = "./footagelens.db"
	}
	if cfg.DatabaseHost == "" {
		cfg.DatabaseHost = "localhost"
	}
	if cfg.DatabasePort == 0 {
		cfg.DatabasePort = 5432
	}
	if cfg.RedisAddr == "" {
		cfg.RedisAddr = "localhost:6379"
	}
	if cfg.ProviderBaseURL == "" {
		cfg.ProviderBaseURL = "https://api.groq.com/openai/v1"
	}
	if cfg.ProviderModel == "" {
		cfg.ProviderModel = "llama-3.3-70b-versatile"
	}
	if cfg.UploadDir == "" {
		cfg.UploadDir = "./uploads"
	}
	if cfg.MaxUploadSize == 0 {
		cfg.MaxUploadSize = 100 * 1024 * 1024
	}
	if cfg.MaxFrames == 0 {
		cfg.MaxFrames = 5
	}
	if cfg.FrameSize == 0 {
		cfg.FrameSize = 512
	}
	if cfg.HistoryLimit == 0 {
		cfg.HistoryLimit = 20
	}
}

func validate(cfg Config) error {
	switch cfg.DatabaseType {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("config: unsupported database type %q", cfg.DatabaseType)
	}
	if cfg.DatabaseType == "postgres" {
		if cfg.DatabaseUser == "" || cfg.DatabaseName == "" {
			return errors.New("config: databaseUser and databaseName are required for postgres")
		}
	}
	if cfg.MaxUploadSize < 0 {
		return errors.New("config: maxUploadSize must be positive")
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setInt64(dst *int64, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = n
		}
	}
}
