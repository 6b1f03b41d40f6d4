package app

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/kiwiz-app/kiwiz-backend/internal/data/db"
	"github.com/kiwiz-app/kiwiz-backend/internal/domain/user"
	"github.com/kiwiz-app/kiwiz-backend/internal/platform/gcp"
)

type Config struct {
	Log           LogConfig           `yaml:"log"`
	Server        ServerConfig        `yaml:"server"`
	Database      DatabaseConfig      `yaml:"database"`
	Redis         RedisConfig         `yaml:"redis"`
	Auth          AuthConfig          `yaml:"auth"`
	Images        ImagesConfig        `yaml:"images"`
	Storage       StorageConfig       `yaml:"storage"`
	Mail          MailConfig          `yaml:"mail"`
	Usage         UsageConfig         `yaml:"usage"`
	Observability ObservabilityConfig `yaml:"observability"`
	CORS          CORSConfig          `yaml:"cors"`
}

type LogConfig struct {
	Mode string `yaml:"mode" env:"LOG_MODE" env-default:"development"`
}

type ServerConfig struct {
	Addr              string        `yaml:"addr"                env:"SERVER_ADDR"                env-default:":8080"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout" env:"SERVER_READ_HEADER_TIMEOUT" env-default:"5s"`
	ReadTimeout       time.Duration `yaml:"read_timeout"        env:"SERVER_READ_TIMEOUT"        env-default:"15s"`
	WriteTimeout      time.Duration `yaml:"write_timeout"       env:"SERVER_WRITE_TIMEOUT"       env-default:"120s"`
	IdleTimeout       time.Duration `yaml:"idle_timeout"        env:"SERVER_IDLE_TIMEOUT"        env-default:"60s"`
	ShutdownTimeout   time.Duration `yaml:"shutdown_timeout"    env:"SERVER_SHUTDOWN_TIMEOUT"    env-default:"15s"`
	AutoMigrate       bool          `yaml:"auto_migrate"        env:"AUTO_MIGRATE"               env-default:"true"`
}

type DatabaseConfig struct {
	Driver   string `yaml:"driver"   env:"DB_DRIVER"   env-default:"postgres"`
	DSN      string `yaml:"dsn"      env:"DATABASE_URL"`
	Host     string `yaml:"host"     env:"POSTGRES_HOST" env-default:"localhost"`
	Port     string `yaml:"port"     env:"POSTGRES_PORT" env-default:"5432"`
	User     string `yaml:"user"     env:"POSTGRES_USER" env-default:"postgres"`
	Password string `yaml:"password" env:"POSTGRES_PASSWORD"`
	Name     string `yaml:"name"     env:"POSTGRES_NAME" env-default:"kiwiz"`
	SSLMode  string `yaml:"ssl_mode" env:"POSTGRES_SSLMODE" env-default:"disable"`
}

func (d DatabaseConfig) DB() db.Config {
	return db.Config{
		Driver:   d.Driver,
		DSN:      d.DSN,
		Host:     d.Host,
		Port:     d.Port,
		User:     d.User,
		Password: d.Password,
		Name:     d.Name,
		SSLMode:  d.SSLMode,
	}
}

// RedisConfig enables the daily free-tier limiter. Without an address usage
// is not limited.
type RedisConfig struct {
	Addr     string `yaml:"addr"     env:"REDIS_ADDR"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db"       env:"REDIS_DB" env-default:"0"`
	Prefix   string `yaml:"prefix"   env:"REDIS_PREFIX" env-default:"kiwiz:"`
}

// AuthConfig points at the identity provider. Signed-in routes answer 401
// when Issuer is empty.
type AuthConfig struct {
	Issuer      string        `yaml:"issuer"       env:"AUTH_ISSUER"`
	Audience    string        `yaml:"audience"     env:"AUTH_AUDIENCE"`
	Leeway      time.Duration `yaml:"leeway"       env:"AUTH_LEEWAY" env-default:"30s"`
	AdminEmails []string      `yaml:"admin_emails" env:"ADMIN_EMAILS" env-separator:","`
}

type ImagesConfig struct {
	BaseURL        string        `yaml:"base_url"        env:"OPENAI_BASE_URL" env-default:"https://api.openai.com"`
	APIKey         string        `yaml:"api_key"         env:"OPENAI_API_KEY"`
	Model          string        `yaml:"model"           env:"OPENAI_IMAGE_MODEL" env-default:"dall-e-3"`
	Size           string        `yaml:"size"            env:"OPENAI_IMAGE_SIZE" env-default:"1024x1024"`
	MaxRetries     int           `yaml:"max_retries"     env:"OPENAI_MAX_RETRIES" env-default:"3"`
	Timeout        time.Duration `yaml:"timeout"         env:"OPENAI_TIMEOUT" env-default:"90s"`
	InitialBackoff time.Duration `yaml:"initial_backoff" env:"OPENAI_INITIAL_BACKOFF" env-default:"1s"`
}

// StorageConfig selects where coloring pages go. An empty bucket makes the
// API answer with data: URLs.
type StorageConfig struct {
	Bucket        string `yaml:"bucket"          env:"GCS_BUCKET"`
	Mode          string `yaml:"mode"            env:"OBJECT_STORAGE_MODE" env-default:"gcs"`
	EmulatorHost  string `yaml:"emulator_host"   env:"STORAGE_EMULATOR_HOST"`
	PublicBaseURL string `yaml:"public_base_url" env:"GCS_PUBLIC_BASE_URL"`
	Credentials   string `yaml:"credentials"     env:"GOOGLE_APPLICATION_CREDENTIALS"`
}

func (s StorageConfig) BucketConfig() gcp.BucketConfig {
	return gcp.BucketConfig{
		Name:          strings.TrimSpace(s.Bucket),
		Mode:          gcp.StorageMode(strings.TrimSpace(s.Mode)),
		EmulatorHost:  strings.TrimSpace(s.EmulatorHost),
		PublicBaseURL: strings.TrimSpace(s.PublicBaseURL),
		Credentials:   s.Credentials,
	}
}

// MailConfig enables the newsletter welcome mail.
type MailConfig struct {
	SendGridAPIKey string `yaml:"sendgrid_api_key" env:"SENDGRID_API_KEY"`
	BaseURL        string `yaml:"base_url"         env:"SENDGRID_BASE_URL"`
	FromEmail      string `yaml:"from_email"       env:"SENDGRID_FROM_EMAIL" env-default:"hello@kiwiz.app"`
	FromName       string `yaml:"from_name"        env:"SENDGRID_FROM_NAME" env-default:"Kiwiz"`
	MaxRetries     int    `yaml:"max_retries"      env:"SENDGRID_MAX_RETRIES" env-default:"3"`
}

type UsageConfig struct {
	FreeDailyLimit int `yaml:"free_daily_limit" env:"FREE_DAILY_GENERATIONS" env-default:"5"`
}

type ObservabilityConfig struct {
	MetricsEnabled  bool    `yaml:"metrics_enabled"   env:"METRICS_ENABLED" env-default:"true"`
	OtelEnabled     bool    `yaml:"otel_enabled"      env:"OTEL_ENABLED" env-default:"false"`
	ServiceName     string  `yaml:"service_name"      env:"OTEL_SERVICE_NAME" env-default:"kiwiz-backend"`
	Environment     string  `yaml:"environment"       env:"APP_ENV" env-default:"development"`
	Version         string  `yaml:"version"           env:"APP_VERSION"`
	OtelEndpoint    string  `yaml:"otel_endpoint"     env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OtelHeaders     string  `yaml:"otel_headers"      env:"OTEL_EXPORTER_OTLP_HEADERS"`
	OtelInsecure    bool    `yaml:"otel_insecure"     env:"OTEL_EXPORTER_OTLP_INSECURE" env-default:"false"`
	OtelSampleRatio float64 `yaml:"otel_sample_ratio" env:"OTEL_SAMPLE_RATIO" env-default:"1"`
}

type CORSConfig struct {
	Origins []string `yaml:"origins" env:"CORS_ORIGINS" env-separator:","`
}

// LoadConfig reads CONFIG_PATH (YAML) when set, then the environment.
// Environment values win over the file.
func LoadConfig() (Config, error) {
	var cfg Config
	if path := strings.TrimSpace(os.Getenv("CONFIG_PATH")); path != "" {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: read env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config: validate: %w", err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error
	switch strings.ToLower(strings.TrimSpace(c.Database.Driver)) {
	case db.DriverPostgres, db.DriverSQLite:
	default:
		errs = append(errs, fmt.Errorf("database driver must be %q or %q, got %q", db.DriverPostgres, db.DriverSQLite, c.Database.Driver))
	}
	if strings.TrimSpace(c.Server.Addr) == "" {
		errs = append(errs, errors.New("server addr is required"))
	}
	if c.Usage.FreeDailyLimit < 1 {
		errs = append(errs, fmt.Errorf("free daily limit must be positive, got %d", c.Usage.FreeDailyLimit))
	}
	if c.Images.MaxRetries < 0 {
		errs = append(errs, errors.New("image max retries must not be negative"))
	}
	if c.Storage.Bucket != "" {
		if err := c.Storage.BucketConfig().Validate(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}
	if c.Observability.OtelSampleRatio < 0 || c.Observability.OtelSampleRatio > 1 {
		errs = append(errs, fmt.Errorf("otel sample ratio must be in [0,1], got %v", c.Observability.OtelSampleRatio))
	}
	return errors.Join(errs...)
}

// DefaultConfig is the zero-environment configuration.
func DefaultConfig() Config {
	return Config{
		Log:      LogConfig{Mode: "development"},
		Server:   ServerConfig{Addr: ":8080", ShutdownTimeout: 15 * time.Second, AutoMigrate: true},
		Database: DatabaseConfig{Driver: db.DriverPostgres},
		Redis:    RedisConfig{Prefix: "kiwiz:"},
		Usage:    UsageConfig{FreeDailyLimit: user.FreeDailyGenerations},
		Observability: ObservabilityConfig{
			MetricsEnabled:  true,
			ServiceName:     "kiwiz-backend",
			OtelSampleRatio: 1,
		},
	}
}
