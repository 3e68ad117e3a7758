package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var (
	ErrMissingEnvironmentVariables = errors.New("missing required environment variables")
	ErrInvalidConfig               = errors.New("invalid configuration")
)

// Config holds application configuration loaded from files and environment variables.
type Config struct {
	Env               string    `mapstructure:"env"`                 // current application environment (local, dev, production etc)
	LogLevel          string    `mapstructure:"log_level"`           // optional zap level override
	TelegramAPIToken  string    `mapstructure:"-"`                   // Telegram API token loaded from environment
	QuestionsJSONPath string    `mapstructure:"questions_json_path"` // path to the Prakriti questionnaire
	DB                DB        `mapstructure:"database"`            // database configuration section
	Storage           Storage   `mapstructure:"storage"`             // in-progress session storage
	Redis             Redis     `mapstructure:"redis"`               // redis connection, used by the redis storage driver
	Quiz              Quiz      `mapstructure:"quiz"`                // scoring and quiz flow
	Reminders         Reminders `mapstructure:"reminders"`           // unfinished quiz nudges
	Metrics           Metrics   `mapstructure:"metrics"`             // prometheus endpoint
}

// DB contains database-related configuration parameters.
type DB struct {
	URL             string        `mapstructure:"-"`                 // database connection string loaded from environment
	MaxConnections  int           `mapstructure:"max_connections"`   // maximum number of open connections in the pool
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"` // maximum lifetime of a single connection
}

// DSN returns the database connection string if it is configured.
func (db DB) DSN() (string, error) {
	if db.URL == "" {
		return "", ErrMissingEnvironmentVariables
	}
	return db.URL, nil
}

// Storage selects where in-progress sessions live.
type Storage struct {
	Driver     string        `mapstructure:"driver"`      // "memory" or "redis"
	SessionTTL time.Duration `mapstructure:"session_ttl"` // idle time after which an unfinished session is dropped
}

// Redis contains redis connection parameters.
type Redis struct {
	Addr      string `mapstructure:"addr"`
	Password  string `mapstructure:"-"` // loaded from environment
	DB        int    `mapstructure:"db"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

// Quiz tunes the quiz flow and the scoring thresholds.
type Quiz struct {
	AutoAdvanceDelay   time.Duration `mapstructure:"auto_advance_delay"`  // default countdown before auto-advance
	DualThreshold      int           `mapstructure:"dual_threshold"`      // points between the top two doshas
	TridoshicThreshold int           `mapstructure:"tridoshic_threshold"` // points between max and min dosha
	Rounding           string        `mapstructure:"rounding"`            // "independent" or "largest_remainder"
}

// Reminders configures the unfinished quiz reminder job.
type Reminders struct {
	Enabled   bool          `mapstructure:"enabled"`
	Schedule  string        `mapstructure:"schedule"`   // cron expression
	IdleAfter time.Duration `mapstructure:"idle_after"` // inactivity before a nudge is sent
}

// Metrics configures the prometheus endpoint.
type Metrics struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr"`
}

// Load reads configuration from config files and environment variables.
func Load() (*Config, error) {
	// A missing .env file is fine, the variables may come from the environment.
	_ = godotenv.Load()

	return load(viper.New())
}

func load(v *viper.Viper) (*Config, error) {
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")

	setDefaults(v)

	// Configure environment variable handling and key mapping.
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_")) // map nested keys to ENV style names
	v.AutomaticEnv()

	// Bind explicit environment variables to configuration keys.
	_ = v.BindEnv("telegram_api_token", "TELEGRAM_API_TOKEN")
	_ = v.BindEnv("database_url", "DATABASE_URL")
	_ = v.BindEnv("redis_password", "REDIS_PASSWORD")
	_ = v.BindEnv("env", "APP_ENV")

	// Try to read configuration file if present.
	if err := v.ReadInConfig(); err != nil {
		var fileLookupErr viper.ConfigFileNotFoundError
		if !errors.As(err, &fileLookupErr) {
			return nil, fmt.Errorf("error loading config file: %w", err)
		}
	}

	// Unmarshal configuration into strongly typed struct.
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	// Load sensitive values from environment variables.
	cfg.TelegramAPIToken = v.GetString("telegram_api_token")
	if cfg.TelegramAPIToken == "" {
		return nil, ErrMissingEnvironmentVariables
	}

	cfg.DB.URL = v.GetString("database_url")
	if cfg.DB.URL == "" {
		return nil, ErrMissingEnvironmentVariables
	}

	cfg.Redis.Password = v.GetString("redis_password")

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "local")
	v.SetDefault("log_level", "")
	v.SetDefault("questions_json_path", "assets/data/questions.json")

	v.SetDefault("database.max_connections", 20)
	v.SetDefault("database.max_conn_lifetime", "30s")

	v.SetDefault("storage.driver", "memory")
	v.SetDefault("storage.session_ttl", "72h")

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.key_prefix", "prakriti")

	v.SetDefault("quiz.auto_advance_delay", "5s")
	v.SetDefault("quiz.dual_threshold", 10)
	v.SetDefault("quiz.tridoshic_threshold", 15)
	v.SetDefault("quiz.rounding", "independent")

	v.SetDefault("reminders.enabled", true)
	v.SetDefault("reminders.schedule", "0 * * * *")
	v.SetDefault("reminders.idle_after", "24h")

	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.addr", ":9090")
}

func (c *Config) validate() error {
	switch c.Storage.Driver {
	case "memory", "redis":
	default:
		return fmt.Errorf("%w: unknown storage driver %q", ErrInvalidConfig, c.Storage.Driver)
	}

	switch c.Quiz.Rounding {
	case "independent", "largest_remainder":
	default:
		return fmt.Errorf("%w: unknown rounding %q", ErrInvalidConfig, c.Quiz.Rounding)
	}

	if c.Quiz.DualThreshold < 0 || c.Quiz.TridoshicThreshold < 0 {
		return fmt.Errorf("%w: thresholds must not be negative", ErrInvalidConfig)
	}

	if c.Storage.SessionTTL <= 0 {
		return fmt.Errorf("%w: storage.session_ttl must be positive", ErrInvalidConfig)
	}

	return nil
}
