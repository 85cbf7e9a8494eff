// Package config loads server configuration from an optional YAML file,
// a .env file and RENTALS_* environment variables, in increasing priority.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/surekeys/rentals/internal/email"
)

// Storage drivers.
const (
	DriverSQLite = "sqlite"
	DriverMongo  = "mongo"
)

// Config holds everything the server needs to start.
type Config struct {
	Port     int    `yaml:"port"`
	DevMode  bool   `yaml:"dev_mode"`
	BaseURL  string `yaml:"base_url"`
	LogLevel string `yaml:"log_level"`

	Storage StorageConfig `yaml:"storage"`
	Auth    AuthConfig    `yaml:"auth"`
	Email   EmailConfig   `yaml:"email"`
	Media   MediaConfig   `yaml:"media"`
	Kafka   KafkaConfig   `yaml:"kafka"`
	Redis   RedisConfig   `yaml:"redis"`

	CORSOrigins []string `yaml:"cors_origins"`
}

// StorageConfig selects the listing store.
type StorageConfig struct {
	Driver     string `yaml:"driver"`
	SQLitePath string `yaml:"sqlite_path"`
	MongoURI   string `yaml:"mongo_uri"`
	MongoDB    string `yaml:"mongo_db"`
}

// AuthConfig configures bearer tokens.
type AuthConfig struct {
	JWTSecret string        `yaml:"jwt_secret"`
	TokenTTL  time.Duration `yaml:"token_ttl"`
}

// EmailConfig configures outbound mail.
type EmailConfig struct {
	From           string           `yaml:"from"`
	FromName       string           `yaml:"from_name"`
	SendGridAPIKey string           `yaml:"sendgrid_api_key"`
	SMTP           email.SMTPConfig `yaml:"smtp"`
}

// MediaConfig selects where uploaded images go. A bucket wins over the
// local directory.
type MediaConfig struct {
	GCSBucket string `yaml:"gcs_bucket"`
	UploadDir string `yaml:"upload_dir"`
}

// KafkaConfig configures domain event publishing. No brokers disables it.
type KafkaConfig struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
	GroupID string   `yaml:"group_id"`
}

// RedisConfig configures the search cache and shared rate limiter. No
// address disables both.
type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	CacheTTL time.Duration `yaml:"cache_ttl"`
}

// Default returns the configuration used when nothing overrides it.
func Default() Config {
	return Config{
		Port:     8080,
		BaseURL:  "http://localhost:8080",
		LogLevel: "info",
		Storage: StorageConfig{
			Driver:  DriverSQLite,
			MongoDB: "rentals",
		},
		Auth: AuthConfig{TokenTTL: 7 * 24 * time.Hour},
		Email: EmailConfig{
			FromName: "SureKeys",
			SMTP:     email.SMTPConfig{Port: "587"},
		},
		Media: MediaConfig{UploadDir: "uploads"},
		Kafka: KafkaConfig{Topic: "listing-events", GroupID: "rentals-notifier"},
		Redis: RedisConfig{CacheTTL: time.Minute},
		CORSOrigins: []string{"*"},
	}
}

// Load reads path (if non-empty), then .env, then the environment.
// A missing .env is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("reading config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing config: %w", err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("loading .env: %w", err)
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

// Validate checks settings that have no usable default.
func (c Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	switch c.Storage.Driver {
	case DriverSQLite:
	case DriverMongo:
		if c.Storage.MongoURI == "" {
			return errors.New("mongo storage requires a mongo URI")
		}
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	return nil
}

// EmailSender returns the email package settings.
func (c Config) EmailSender() email.Config {
	from := c.Email.From
	if from == "" {
		from = c.Email.SMTP.From
	}
	return email.Config{
		DevMode:        c.DevMode,
		From:           from,
		FromName:       c.Email.FromName,
		SendGridAPIKey: c.Email.SendGridAPIKey,
		SMTP:           c.Email.SMTP,
	}
}

type envVar struct {
	key string
	set func(string) error
}

func applyEnv(cfg *Config) error {
	str := func(dst *string) func(string) error {
		return func(v string) error { *dst = v; return nil }
	}
	list := func(dst *[]string) func(string) error {
		return func(v string) error { *dst = splitList(v); return nil }
	}
	integer := func(dst *int) func(string) error {
		return func(v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return err
			}
			*dst = n
			return nil
		}
	}
	duration := func(dst *time.Duration) func(string) error {
		return func(v string) error {
			d, err := time.ParseDuration(v)
			if err != nil {
				return err
			}
			*dst = d
			return nil
		}
	}
	boolean := func(dst *bool) func(string) error {
		return func(v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return err
			}
			*dst = b
			return nil
		}
	}

	vars := []envVar{
		{"RENTALS_PORT", integer(&cfg.Port)},
		{"RENTALS_DEV_MODE", boolean(&cfg.DevMode)},
		{"RENTALS_BASE_URL", str(&cfg.BaseURL)},
		{"RENTALS_LOG_LEVEL", str(&cfg.LogLevel)},
		{"RENTALS_STORAGE_DRIVER", str(&cfg.Storage.Driver)},
		{"RENTALS_SQLITE_PATH", str(&cfg.Storage.SQLitePath)},
		{"RENTALS_MONGO_URI", str(&cfg.Storage.MongoURI)},
		{"RENTALS_MONGO_DB", str(&cfg.Storage.MongoDB)},
		{"RENTALS_JWT_SECRET", str(&cfg.Auth.JWTSecret)},
		{"RENTALS_TOKEN_TTL", duration(&cfg.Auth.TokenTTL)},
		{"RENTALS_EMAIL_FROM", str(&cfg.Email.From)},
		{"RENTALS_SENDGRID_API_KEY", str(&cfg.Email.SendGridAPIKey)},
		{"RENTALS_SMTP_HOST", str(&cfg.Email.SMTP.Host)},
		{"RENTALS_SMTP_PORT", str(&cfg.Email.SMTP.Port)},
		{"RENTALS_SMTP_USER", str(&cfg.Email.SMTP.User)},
		{"RENTALS_SMTP_PASS", str(&cfg.Email.SMTP.Pass)},
		{"RENTALS_SMTP_FROM", str(&cfg.Email.SMTP.From)},
		{"RENTALS_GCS_BUCKET", str(&cfg.Media.GCSBucket)},
		{"RENTALS_UPLOAD_DIR", str(&cfg.Media.UploadDir)},
		{"RENTALS_KAFKA_BROKERS", list(&cfg.Kafka.Brokers)},
		{"RENTALS_KAFKA_TOPIC", str(&cfg.Kafka.Topic)},
		{"RENTALS_KAFKA_GROUP_ID", str(&cfg.Kafka.GroupID)},
		{"RENTALS_REDIS_ADDR", str(&cfg.Redis.Addr)},
		{"RENTALS_REDIS_PASSWORD", str(&cfg.Redis.Password)},
		{"RENTALS_REDIS_DB", integer(&cfg.Redis.DB)},
		{"RENTALS_CACHE_TTL", duration(&cfg.Redis.CacheTTL)},
		{"RENTALS_CORS_ORIGINS", list(&cfg.CORSOrigins)},
	}

	for _, v := range vars {
		raw, ok := os.LookupEnv(v.key)
		if !ok || raw == "" {
			continue
		}
		if err := v.set(raw); err != nil {
			return fmt.Errorf("parsing %s: %w", v.key, err)
		}
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
