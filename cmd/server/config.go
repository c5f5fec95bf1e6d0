package main

import (
	"fmt"
	"os"
	"time"

	"examarchive/internal/common/cache"
	"examarchive/internal/common/db"
	"examarchive/internal/common/imagecdn"
	"examarchive/internal/common/storage"
	"examarchive/pkg/utils/logger"

	"gopkg.in/yaml.v3"
)

const (
	defaultHTTPAddr        = "0.0.0.0:8080"
	defaultReadTimeout     = 10 * time.Second
	defaultWriteTimeout    = 30 * time.Second
	defaultIdleTimeout     = 60 * time.Second
	defaultShutdownTimeout = 10 * time.Second

	defaultMaxFileSizeMB = 20
	defaultLocalDir      = "data/uploads"

	backendLocal = "local"
	backendS3    = "s3"
)

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr         string        `yaml:"addr"`
	ReadTimeout  time.Duration `yaml:"readTimeout"`
	WriteTimeout time.Duration `yaml:"writeTimeout"`
	IdleTimeout  time.Duration `yaml:"idleTimeout"`
}

// StorageConfig selects and configures the blob backend.
type StorageConfig struct {
	// Backend is "local" or "s3".
	Backend string              `yaml:"backend"`
	Local   storage.LocalConfig `yaml:"local"`
	S3      storage.MinIOConfig `yaml:"s3"`
}

// AdminConfig holds the admin credential settings.
type AdminConfig struct {
	// Password is the plaintext admin secret. Ignored when PasswordHash
	// is set.
	Password string `yaml:"password"`
	// PasswordHash is a bcrypt hash of the admin secret.
	PasswordHash string `yaml:"passwordHash"`
	// APIKey guards the event admin endpoints.
	APIKey string `yaml:"apiKey"`
	// SessionTTL overrides the 24h default when positive.
	SessionTTL time.Duration `yaml:"sessionTTL"`
}

// UploadConfig holds past-question upload limits.
type UploadConfig struct {
	MaxFileSizeMB int64 `yaml:"maxFileSizeMb"`
}

// AppConfig holds the server configuration.
type AppConfig struct {
	Server ServerConfig  `yaml:"server"`
	Logger logger.Config `yaml:"logger"`

	Database db.MySQLConfig    `yaml:"database"`
	Redis    cache.RedisConfig `yaml:"redis"`
	Storage  StorageConfig     `yaml:"storage"`
	ImageCDN imagecdn.Config   `yaml:"imageCdn"`
	Admin    AdminConfig       `yaml:"admin"`
	Upload   UploadConfig      `yaml:"upload"`
}

// AdminSecret resolves the credential handed to the session registry. The
// hash wins when both are set.
func (c AdminConfig) AdminSecret() string {
	if c.PasswordHash != "" {
		return c.PasswordHash
	}
	return c.Password
}

func loadYAML(path string, out interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file failed: %w", err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parse config file failed: %w", err)
	}
	return nil
}

func loadAppConfig(path string) (*AppConfig, error) {
	var cfg AppConfig
	if err := loadYAML(path, &cfg); err != nil {
		return nil, err
	}

	if cfg.Database.DSN == "" && !cfg.Database.AllowFallback {
		return nil, fmt.Errorf("database dsn is required unless allowFallback is set")
	}
	if cfg.Admin.AdminSecret() == "" {
		return nil, fmt.Errorf("admin password or passwordHash is required")
	}

	if cfg.Server.Addr == "" {
		cfg.Server.Addr = defaultHTTPAddr
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = defaultReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = defaultWriteTimeout
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = defaultIdleTimeout
	}

	switch cfg.Storage.Backend {
	case "":
		cfg.Storage.Backend = backendLocal
	case backendLocal, backendS3:
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
	if cfg.Storage.Backend == backendLocal && cfg.Storage.Local.Dir == "" {
		cfg.Storage.Local.Dir = defaultLocalDir
	}

	if cfg.Upload.MaxFileSizeMB <= 0 {
		cfg.Upload.MaxFileSizeMB = defaultMaxFileSizeMB
	}

	return &cfg, nil
}
