package core

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/jo-hoe/inventory/internal/backend/blobstore"
	"github.com/jo-hoe/inventory/internal/backend/cache"
	"github.com/jo-hoe/inventory/internal/backend/database"
	"gopkg.in/yaml.v3"
)

const (
	defaultPort           = 8080
	defaultMaxUploadKB    = 2048
	defaultDateFormat     = "02/01/2006"
	defaultTitle          = "GPU"
	defaultCacheTTL       = 5 * time.Minute
	defaultStorageRoot    = "storage/app/public"
	defaultCacheNamespace = "inventory"
)

type Database struct {
	Type             string `yaml:"type"`
	ConnectionString string `yaml:"connectionString"`
}

type S3Config struct {
	Endpoint        string `yaml:"endpoint"`
	Region          string `yaml:"region"`
	Bucket          string `yaml:"bucket"`
	AccessKeyID     string `yaml:"accessKeyId"`
	SecretAccessKey string `yaml:"secretAccessKey"`
	UsePathStyle    bool   `yaml:"usePathStyle"`
}

type StorageConfig struct {
	Type string `yaml:"type"`
	Root string `yaml:"root"`
	// PruneOnDelete removes a resource's image blob when the resource is deleted.
	// Defaults to true when omitted.
	PruneOnDelete *bool    `yaml:"pruneOnDelete"`
	S3            S3Config `yaml:"s3"`
}

func (s StorageConfig) ShouldPruneOnDelete() bool {
	return s.PruneOnDelete == nil || *s.PruneOnDelete
}

type CacheConfig struct {
	Type      string        `yaml:"type"`
	Namespace string        `yaml:"namespace"`
	Address   string        `yaml:"address"`
	Password  string        `yaml:"password"`
	DB        int           `yaml:"db"`
	TTL       time.Duration `yaml:"ttl"`
}

type UploadConfig struct {
	MaxSizeKB int `yaml:"maxSizeKB"`
}

func (u UploadConfig) MaxBytes() int64 {
	return int64(u.MaxSizeKB) * 1024
}

type ViewConfig struct {
	Title      string `yaml:"title"`
	DateFormat string `yaml:"dateFormat"`
}

type ServiceConfig struct {
	Port     int           `yaml:"port"`
	LogLevel string        `yaml:"logLevel"`
	Seed     bool          `yaml:"seed"`
	Database Database      `yaml:"database"`
	Storage  StorageConfig `yaml:"storage"`
	Cache    CacheConfig   `yaml:"cache"`
	Upload   UploadConfig  `yaml:"upload"`
	View     ViewConfig    `yaml:"view"`
}

// LoadConfig loads configuration from the specified YAML file.
// ${VAR} references are expanded from the environment before parsing.
func LoadConfig(configPath string) (*ServiceConfig, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}

	config, err := ParseConfig([]byte(os.ExpandEnv(string(data))))
	if err != nil {
		return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
	}
	return config, nil
}

// ParseConfig parses YAML configuration, applies defaults and validates the result.
func ParseConfig(data []byte) (*ServiceConfig, error) {
	var config ServiceConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	config.applyDefaults()

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &config, nil
}

func (c *ServiceConfig) applyDefaults() {
	if c.Port == 0 {
		c.Port = defaultPort
	}
	if c.Database.Type == "" {
		c.Database.Type = database.TypeSQLite
	}
	if c.Storage.Type == "" {
		c.Storage.Type = blobstore.TypeFileSystem
	}
	if c.Storage.Type == blobstore.TypeFileSystem && c.Storage.Root == "" {
		c.Storage.Root = defaultStorageRoot
	}
	if c.Storage.S3.Region == "" {
		c.Storage.S3.Region = "auto"
	}
	if c.Cache.Type == "" {
		c.Cache.Type = cache.TypeNone
	}
	if c.Cache.Namespace == "" {
		c.Cache.Namespace = defaultCacheNamespace
	}
	if c.Cache.TTL == 0 {
		c.Cache.TTL = defaultCacheTTL
	}
	if c.Upload.MaxSizeKB == 0 {
		c.Upload.MaxSizeKB = defaultMaxUploadKB
	}
	if c.View.Title == "" {
		c.View.Title = defaultTitle
	}
	if c.View.DateFormat == "" {
		c.View.DateFormat = defaultDateFormat
	}
}

func (c *ServiceConfig) validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}

	switch c.Database.Type {
	case database.TypeSQLite, database.TypePostgres:
	default:
		return fmt.Errorf("unsupported database type: %s", c.Database.Type)
	}
	if c.Database.ConnectionString == "" {
		return fmt.Errorf("database connectionString is required")
	}

	switch c.Storage.Type {
	case blobstore.TypeFileSystem:
	case blobstore.TypeS3:
		if c.Storage.S3.Bucket == "" {
			return fmt.Errorf("storage.s3.bucket is required for s3 storage")
		}
	default:
		return fmt.Errorf("unsupported storage type: %s", c.Storage.Type)
	}

	switch c.Cache.Type {
	case cache.TypeNone:
	case cache.TypeRedis:
		if c.Cache.Address == "" {
			return fmt.Errorf("cache.address is required for redis cache")
		}
	default:
		return fmt.Errorf("unsupported cache type: %s", c.Cache.Type)
	}

	if c.Upload.MaxSizeKB < 0 {
		return fmt.Errorf("upload.maxSizeKB must not be negative")
	}

	if _, ok := parseLogLevel(c.LogLevel); !ok {
		return fmt.Errorf("unsupported log level: %s", c.LogLevel)
	}
	return nil
}

// SlogLevel returns the configured log level, info by default.
func (c *ServiceConfig) SlogLevel() slog.Level {
	level, _ := parseLogLevel(c.LogLevel)
	return level
}

func parseLogLevel(level string) (slog.Level, bool) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, true
	case "", "info":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}
