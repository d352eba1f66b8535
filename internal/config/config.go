package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Avatar storage backends
const (
	AvatarStorageDisk  = "disk"
	AvatarStorageMinio = "minio"
)

// Config holds all configuration for the API server
type Config struct {
	// HTTP Configuration
	HTTP HTTPConfig `envPrefix:"HTTP_"`

	// Database Configuration
	Database DatabaseConfig `envPrefix:"DATABASE_"`

	// JWT Configuration
	JWT JWTConfig `envPrefix:"JWT_"`

	// Avatar Configuration
	Avatars AvatarConfig `envPrefix:"AVATAR_"`

	// Exercise catalog Configuration
	Exercises ExerciseConfig `envPrefix:"EXERCISE_"`

	// Object storage, used when Avatars.Storage is "minio"
	Minio MinioConfig `envPrefix:"MINIO_"`

	// Logging Configuration
	Logging LoggingConfig `envPrefix:"LOG_"`
}

// HTTPConfig holds listener and CORS settings
type HTTPConfig struct {
	Address        string   `env:"ADDRESS" envDefault:":3333"`
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	URL string `env:"URL" envDefault:"ignitegym.sqlite"`
}

// JWTConfig holds token signing settings
type JWTConfig struct {
	Secret string        `env:"SECRET" envDefault:"ignitegym-dev-secret"`
	TTL    time.Duration `env:"TTL" envDefault:"168h"`
}

// AvatarConfig selects where profile photos are kept
type AvatarConfig struct {
	Storage       string `env:"STORAGE" envDefault:"disk"`
	Dir           string `env:"DIR" envDefault:"uploads/avatars"`
	SweepSchedule string `env:"SWEEP_SCHEDULE" envDefault:"@every 1h"`
	MaxSize       int64  `env:"MAX_SIZE" envDefault:"5242880"`
}

// ExerciseConfig locates the exercise catalog and its demo/thumb files.
// An empty CatalogFile seeds from the built-in catalog.
type ExerciseConfig struct {
	CatalogFile string `env:"CATALOG_FILE"`
	MediaDir    string `env:"MEDIA_DIR" envDefault:"exercises"`
}

// MinioConfig holds object storage parameters
type MinioConfig struct {
	Endpoint  string `env:"ENDPOINT" envDefault:"localhost:9000"`
	AccessKey string `env:"ACCESS_KEY" envDefault:"ignitegym-access-key"`
	SecretKey string `env:"SECRET_KEY" envDefault:"ignitegym-secret-key"`
	Bucket    string `env:"BUCKET_NAME" envDefault:"ignitegym-avatars"`
	UseSSL    bool   `env:"USE_SSL" envDefault:"false"`
}

// LoggingConfig holds logging-related configuration
type LoggingConfig struct {
	Level  string `env:"LEVEL" envDefault:"info"`
	Format string `env:"FORMAT" envDefault:"json"` // json, console
}

// EnvPrefix namespaces every server variable, e.g. GYM_HTTP_ADDRESS
const EnvPrefix = "GYM_"

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env files (fails silently if files don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	return Parse()
}

// Parse reads the configuration from the process environment only
func Parse() (*Config, error) {
	cfg := Config{}
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values the struct tags cannot express
func (c *Config) Validate() error {
	switch c.Avatars.Storage {
	case AvatarStorageDisk, AvatarStorageMinio:
	default:
		return fmt.Errorf("invalid avatar storage %q: expected %q or %q", c.Avatars.Storage, AvatarStorageDisk, AvatarStorageMinio)
	}

	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT secret must not be empty")
	}
	if c.JWT.TTL <= 0 {
		return fmt.Errorf("JWT TTL must be positive")
	}
	if c.Avatars.MaxSize <= 0 {
		return fmt.Errorf("avatar max size must be positive")
	}
	return nil
}
