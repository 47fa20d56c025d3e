package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Config is the server configuration. Every field can be set from a YAML file
// and overridden by the environment.
type Config struct {
	Env      string         `yaml:"env" env:"ENV" env-default:"development"`
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Log      LogConfig      `yaml:"log"`
	Auth     AuthConfig     `yaml:"auth"`
	Timer    TimerConfig    `yaml:"timer"`
	Receipts ReceiptsConfig `yaml:"receipts"`
}

type HTTPConfig struct {
	Port               string `yaml:"port" env:"PORT" env-default:"8080"`
	SecureCookie       bool   `yaml:"secure_cookie" env:"SECURE_COOKIE" env-default:"false"`
	TemplateDir        string `yaml:"template_dir" env:"TEMPLATE_DIR" env-default:"web/templates"`
	StaticDir          string `yaml:"static_dir" env:"STATIC_DIR" env-default:"web/static"`
	LoginRatePerMinute int    `yaml:"login_rate_per_minute" env:"LOGIN_RATE_PER_MINUTE" env-default:"10"`
}

// DatabaseConfig selects the store. Path is a sqlite file or a postgres DSN.
type DatabaseConfig struct {
	Driver string `yaml:"driver" env:"DB_DRIVER" env-default:"sqlite"`
	Path   string `yaml:"path" env:"DB_PATH" env-default:"crm.db"`
}

type LogConfig struct {
	Level  string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}

type AuthConfig struct {
	AdminUser     string        `yaml:"admin_user" env:"ADMIN_USER"`
	AdminPassword string        `yaml:"admin_password" env:"ADMIN_PASSWORD"`
	JWTSecret     string        `yaml:"jwt_secret" env:"JWT_SECRET"`
	JWTTTL        time.Duration `yaml:"jwt_ttl" env:"JWT_TTL" env-default:"24h"`
}

// TimerConfig controls what happens to a running timer when another one starts.
type TimerConfig struct {
	Preempt string `yaml:"preempt" env:"TIMER_PREEMPT" env-default:"record"`
}

type ReceiptsConfig struct {
	Backend      string `yaml:"backend" env:"RECEIPTS_BACKEND" env-default:"local"`
	Dir          string `yaml:"dir" env:"RECEIPTS_DIR" env-default:"receipts"`
	MaxBytes     int64  `yaml:"max_bytes" env:"RECEIPTS_MAX_BYTES" env-default:"10485760"`
	S3Bucket     string `yaml:"s3_bucket" env:"S3_BUCKET"`
	S3Region     string `yaml:"s3_region" env:"S3_REGION" env-default:"us-east-1"`
	AWSAccessKey string `yaml:"aws_access_key_id" env:"AWS_ACCESS_KEY_ID"`
	AWSSecretKey string `yaml:"aws_secret_access_key" env:"AWS_SECRET_ACCESS_KEY"`
}

// LoadConfig reads .env when present, then the YAML file at path (if any),
// then the environment.
func LoadConfig(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	var cfg Config
	var err error
	if path != "" {
		err = cleanenv.ReadConfig(path, &cfg)
	} else {
		err = cleanenv.ReadEnv(&cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings no component can run with.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("DB_DRIVER must be sqlite or postgres, got %q", c.Database.Driver)
	}
	switch c.Timer.Preempt {
	case "record", "discard":
	default:
		return fmt.Errorf("TIMER_PREEMPT must be record or discard, got %q", c.Timer.Preempt)
	}
	switch c.Receipts.Backend {
	case "local":
	case "s3":
		if c.Receipts.S3Bucket == "" {
			return errors.New("S3_BUCKET is required for the s3 receipts backend")
		}
	default:
		return fmt.Errorf("RECEIPTS_BACKEND must be local or s3, got %q", c.Receipts.Backend)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.Log.Format)
	}
	if c.Receipts.MaxBytes <= 0 {
		return errors.New("RECEIPTS_MAX_BYTES must be positive")
	}
	if c.HTTP.LoginRatePerMinute <= 0 {
		return errors.New("LOGIN_RATE_PER_MINUTE must be positive")
	}
	if c.Auth.JWTTTL <= 0 {
		return errors.New("JWT_TTL must be positive")
	}
	if c.IsProduction() && c.Auth.JWTSecret == "" {
		return errors.New("JWT_SECRET is required in production")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
