package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	pkgRetry "github.com/futig/issue-assistant/internal/pkg/retry"
	"github.com/joho/godotenv"
)

// Config holds the application configuration
type Config struct {
	// Server configuration
	ServerAddr     string        `env:"SERVER_ADDR" envDefault:":8080"`
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" envDefault:"180s"`
	SwaggerPath    string        `env:"SWAGGER_PATH" envDefault:"docs/swagger.yaml"`

	// Logging configuration
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	LogFile  string `env:"LOG_FILE"`

	// Snowflake account and hosted services
	SnowflakeCfg SnowflakeConfig `envPrefix:"SNOWFLAKE_"`
	SearchCfg    SearchConfig    `envPrefix:"SEARCH_"`

	// Conversational pipeline
	AssistantCfg AssistantConfig `envPrefix:"ASSISTANT_"`
	FeedbackCfg  FeedbackConfig  `envPrefix:"FEEDBACK_"`

	// Optional Postgres database for the feedback store
	DatabaseURL         string        `env:"DATABASE_URL"`
	DBMaxConns          int           `env:"DB_MAX_CONNS" envDefault:"10"`
	DBMinConns          int           `env:"DB_MIN_CONNS" envDefault:"1"`
	DBMaxConnLifetime   time.Duration `env:"DB_MAX_CONN_LIFETIME" envDefault:"1h"`
	DBMaxConnIdleTime   time.Duration `env:"DB_MAX_CONN_IDLE_TIME" envDefault:"30m"`
	DBHealthCheckPeriod time.Duration `env:"DB_HEALTH_CHECK_PERIOD" envDefault:"1m"`

	// Conversation cache
	ConversationTTL time.Duration `env:"CONVERSATION_TTL" envDefault:"2h"`

	// File upload configuration
	FileUploadCfg FileUploadConfig `envPrefix:"FILE_UPLOAD_"`

	// Mock configuration
	EnableMocks bool `env:"ENABLE_MOCKS" envDefault:"false"`

	// Telegram bot configuration (optional)
	TelegramCfg TelegramConfig `envPrefix:"TELEGRAM_"`

	// Assistant profile (loaded from YAML file)
	Profile *Profile

	// Environment (set from flag, not from env var)
	Environment string
}

// SnowflakeConfig holds the account, session context and HTTP settings shared by
// the SQL API and the Cortex Search REST API
type SnowflakeConfig struct {
	HTTPClientConfig
	Account        string        `env:"ACCOUNT"`
	User           string        `env:"USER"`
	Role           string        `env:"ROLE"`
	Warehouse      string        `env:"WAREHOUSE"`
	Database       string        `env:"DATABASE"`
	Schema         string        `env:"SCHEMA"`
	PrivateKeyPath string        `env:"PRIVATE_KEY_PATH"`
	JWTLifetime    time.Duration `env:"JWT_LIFETIME" envDefault:"59m"`
	StatementPath  string        `env:"STATEMENT_ENDPOINT" envDefault:"/api/v2/statements"`
	StatementTTL   int           `env:"STATEMENT_TIMEOUT" envDefault:"60"`
	DocsStage      string        `env:"DOCS_STAGE" envDefault:"@docs"`
}

type SearchConfig struct {
	Service string `env:"SERVICE" envDefault:"question_search"`
	Limit   int    `env:"LIMIT" envDefault:"1"`
}

type AssistantConfig struct {
	SlideWindow  int    `env:"SLIDE_WINDOW" envDefault:"7"`
	DefaultModel string `env:"DEFAULT_MODEL"`
	UseHistory   bool   `env:"USE_HISTORY" envDefault:"true"`
	ProfilePath  string `env:"PROFILE_PATH" envDefault:"configs/assistant.yaml"`
}

type FeedbackConfig struct {
	AnswerRelevance bool                 `env:"ANSWER_RELEVANCE" envDefault:"false"`
	JudgeModel      string               `env:"JUDGE_MODEL" envDefault:"mistral-large"`
	Store           string               `env:"STORE" envDefault:"none"`
	Table           string               `env:"TABLE" envDefault:"FEEDBACK_HISTORY"`
	Retry           pkgRetry.RetryConfig `envPrefix:"RETRY_"`
}

// TelegramConfig holds Telegram bot configuration
type TelegramConfig struct {
	BotToken           string `env:"BOT_TOKEN"`
	UpdateTimeout      int    `env:"UPDATE_TIMEOUT" envDefault:"60"`
	RateLimitPerMinute int    `env:"RATE_LIMIT_PER_MINUTE" envDefault:"20"`
	RateLimitBurst     int    `env:"RATE_LIMIT_BURST" envDefault:"5"`
	ShutdownTimeout    int    `env:"SHUTDOWN_TIMEOUT" envDefault:"30"` // seconds
}

type HTTPClientConfig struct {
	RequestTimeout        time.Duration `env:"TIMEOUT" envDefault:"120s"`
	ConnTimeout           time.Duration `env:"CONN_TIMEOUT" envDefault:"10s"`
	KeepAlive             time.Duration `env:"KEEP_ALIVE" envDefault:"90s"`
	IdleConnTimeout       time.Duration `env:"IDLE_CONN_TIMEOUT" envDefault:"90s"`
	ResponseHeaderTimeout time.Duration `env:"RESPONSE_HEADER_TIMEOUT" envDefault:"120s"`
	Token                 string        `env:"TOKEN"`
	TokenType             string        `env:"TOKEN_TYPE" envDefault:"PROGRAMMATIC_ACCESS_TOKEN"`
	Url                   string        `env:"SERVICE_URL"`
}

// FileUploadConfig holds file upload limits
type FileUploadConfig struct {
	MaxFileSize   int64 `env:"MAX_FILE_SIZE" envDefault:"10485760"` // 10 MiB
	MaxUploadSize int64 `env:"MAX_UPLOAD_SIZE" envDefault:"16777216"`
}

const (
	FeedbackStoreNone      = "none"
	FeedbackStorePostgres  = "postgres"
	FeedbackStoreWarehouse = "warehouse"
)

func LoadConfig() (*Config, error) {
	envFlag := flag.String("env", "local", "Environment to run (local, prod, or custom)")
	flag.Parse()

	envFile := getEnvFile(*envFlag)
	// Try to load env file, but don't fail if it's missing.
	// In containerized/prod environments variables are usually set externally.
	if err := godotenv.Load(envFile); err != nil {
		fmt.Printf("Warning: could not load %s file (this is ok if env vars are set externally): %v\n", envFile, err)
	}

	cfg, err := Parse()
	if err != nil {
		return nil, err
	}
	cfg.Environment = *envFlag

	return cfg, nil
}

// Parse reads the configuration from the process environment, loads the assistant
// profile and validates the result
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	profile, err := LoadProfile(cfg.AssistantCfg.ProfilePath)
	if err != nil {
		return nil, fmt.Errorf("load assistant profile: %w", err)
	}
	cfg.Profile = profile
	applyProfile(cfg)

	// Validate configuration
	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// applyProfile fills pipeline settings left unset in the environment from the profile
func applyProfile(cfg *Config) {
	if cfg.AssistantCfg.DefaultModel == "" {
		cfg.AssistantCfg.DefaultModel = cfg.Profile.Models[0]
	}
	if cfg.Profile.SlideWindow > 0 && os.Getenv("ASSISTANT_SLIDE_WINDOW") == "" {
		cfg.AssistantCfg.SlideWindow = cfg.Profile.SlideWindow
	}
	if cfg.Profile.SearchLimit > 0 && os.Getenv("SEARCH_LIMIT") == "" {
		cfg.SearchCfg.Limit = cfg.Profile.SearchLimit
	}
}

func validateConfig(cfg *Config) error {
	var errs []string

	if cfg.AssistantCfg.SlideWindow < 1 || cfg.AssistantCfg.SlideWindow > 100 {
		errs = append(errs, fmt.Sprintf("ASSISTANT_SLIDE_WINDOW must be between 1 and 100, got %d", cfg.AssistantCfg.SlideWindow))
	}

	if cfg.SearchCfg.Limit < 1 || cfg.SearchCfg.Limit > 50 {
		errs = append(errs, fmt.Sprintf("SEARCH_LIMIT must be between 1 and 50, got %d", cfg.SearchCfg.Limit))
	}

	if !contains(cfg.Profile.Models, cfg.AssistantCfg.DefaultModel) {
		errs = append(errs, fmt.Sprintf("ASSISTANT_DEFAULT_MODEL %q is not in the model allow-list %v", cfg.AssistantCfg.DefaultModel, cfg.Profile.Models))
	}

	if !contains(cfg.Profile.Models, cfg.FeedbackCfg.JudgeModel) {
		errs = append(errs, fmt.Sprintf("FEEDBACK_JUDGE_MODEL %q is not in the model allow-list %v", cfg.FeedbackCfg.JudgeModel, cfg.Profile.Models))
	}

	switch cfg.FeedbackCfg.Store {
	case FeedbackStoreNone, FeedbackStoreWarehouse:
	case FeedbackStorePostgres:
		if cfg.DatabaseURL == "" {
			errs = append(errs, "DATABASE_URL is required when FEEDBACK_STORE=postgres")
		}
		if cfg.DBMaxConns < 1 || cfg.DBMaxConns > 200 {
			errs = append(errs, fmt.Sprintf("DB_MAX_CONNS must be between 1 and 200, got %d", cfg.DBMaxConns))
		}
		if cfg.DBMinConns < 0 || cfg.DBMinConns > cfg.DBMaxConns {
			errs = append(errs, fmt.Sprintf("DB_MIN_CONNS must be between 0 and DB_MAX_CONNS(%d), got %d", cfg.DBMaxConns, cfg.DBMinConns))
		}
	default:
		errs = append(errs, fmt.Sprintf("FEEDBACK_STORE must be one of none, postgres, warehouse, got %q", cfg.FeedbackCfg.Store))
	}

	if !cfg.EnableMocks {
		if cfg.SnowflakeCfg.Url == "" {
			errs = append(errs, "SNOWFLAKE_SERVICE_URL is required unless ENABLE_MOCKS=true")
		}
		if cfg.SnowflakeCfg.Token == "" && cfg.SnowflakeCfg.PrivateKeyPath == "" {
			errs = append(errs, "one of SNOWFLAKE_TOKEN or SNOWFLAKE_PRIVATE_KEY_PATH is required unless ENABLE_MOCKS=true")
		}
		if cfg.SnowflakeCfg.Database == "" || cfg.SnowflakeCfg.Schema == "" {
			errs = append(errs, "SNOWFLAKE_DATABASE and SNOWFLAKE_SCHEMA are required unless ENABLE_MOCKS=true")
		}
	}

	if cfg.TelegramCfg.RateLimitPerMinute < 1 || cfg.TelegramCfg.RateLimitPerMinute > 60 {
		errs = append(errs, fmt.Sprintf("TELEGRAM_RATE_LIMIT_PER_MINUTE must be between 1 and 60, got %d", cfg.TelegramCfg.RateLimitPerMinute))
	}

	if cfg.TelegramCfg.RateLimitBurst < 1 || cfg.TelegramCfg.RateLimitBurst > 20 {
		errs = append(errs, fmt.Sprintf("TELEGRAM_RATE_LIMIT_BURST must be between 1 and 20, got %d", cfg.TelegramCfg.RateLimitBurst))
	}

	if len(errs) > 0 {
		return errors.New("configuration validation errors:\n  - " + strings.Join(errs, "\n  - "))
	}

	return nil
}

func contains(values []string, v string) bool {
	for _, value := range values {
		if value == v {
			return true
		}
	}
	return false
}

func getEnvFile(environment string) string {
	switch environment {
	case "prod", "production":
		return ".env.prod"
	case "local", "dev", "development":
		return ".env.local"
	default:
		return fmt.Sprintf(".env.%s", environment)
	}
}
