package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig   `yaml:"server" envconfig:"SERVER"`
	Logging  LoggingConfig  `yaml:"logging" envconfig:"LOGGING"`
	Analysis AnalysisConfig `yaml:"analysis" envconfig:"ANALYSIS"`
	LLM      LLMConfig      `yaml:"llm" envconfig:"LLM"`
	Cache    CacheConfig    `yaml:"cache" envconfig:"CACHE"`
	Upload   UploadConfig   `yaml:"upload" envconfig:"UPLOAD"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT" default:"8080" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" default:"60s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`
	RateLimitRPS    float64       `yaml:"rate_limit_rps" envconfig:"RATE_LIMIT_RPS" default:"5"`
	RateLimitBurst  int           `yaml:"rate_limit_burst" envconfig:"RATE_LIMIT_BURST" default:"10"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" default:"info" validate:"oneof=debug info warn error"`
	Output   string `yaml:"output" envconfig:"OUTPUT" default:"console" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/marketcli.log"`
}

// AnalysisConfig carries the column names and tuning knobs consumed by the
// analytical agents. Column names are matched case-sensitively against the
// CSV header.
type AnalysisConfig struct {
	BrandColumn      string   `yaml:"brand_column" envconfig:"BRAND_COLUMN" default:"brand" validate:"required"`
	PriceColumn      string   `yaml:"price_column" envconfig:"PRICE_COLUMN" default:"price" validate:"required"`
	FeatureColumn    string   `yaml:"feature_column" envconfig:"FEATURE_COLUMN" default:"feature" validate:"required"`
	TopBrands        int      `yaml:"top_brands" envconfig:"TOP_BRANDS" default:"10" validate:"min=1"`
	TopFeatures      int      `yaml:"top_features" envconfig:"TOP_FEATURES" default:"15" validate:"min=1"`
	TopGaps          int      `yaml:"top_gaps" envconfig:"TOP_GAPS" default:"10" validate:"min=1"`
	GapThreshold     float64  `yaml:"gap_threshold" envconfig:"GAP_THRESHOLD" default:"-0.5" validate:"max=0"`
	FeatureDelimiter string   `yaml:"feature_delimiter" envconfig:"FEATURE_DELIMITER" default:","`
	CleaningStrategy string   `yaml:"cleaning_strategy" envconfig:"CLEANING_STRATEGY" default:"drop_rows" validate:"oneof=drop_rows drop_columns impute"`
	RequiredColumns  []string `yaml:"required_columns" envconfig:"REQUIRED_COLUMNS"`

	// Quality score weights; completeness + uniqueness should sum to 1.
	CompletenessWeight float64 `yaml:"completeness_weight" envconfig:"COMPLETENESS_WEIGHT" default:"0.6" validate:"min=0,max=1"`
	UniquenessWeight   float64 `yaml:"uniqueness_weight" envconfig:"UNIQUENESS_WEIGHT" default:"0.4" validate:"min=0,max=1"`
}

// LLMConfig configures the single-call summarizer boundary. A missing API
// key disables the narrative; it is not a hard failure.
type LLMConfig struct {
	Enabled     bool          `yaml:"enabled" envconfig:"ENABLED" default:"true"`
	APIKey      string        `yaml:"api_key" envconfig:"API_KEY"`
	APIKeyFile  string        `yaml:"api_key_file" envconfig:"API_KEY_FILE"`
	Model       string        `yaml:"model" envconfig:"MODEL" default:"gemini-1.5-flash"`
	Temperature float64       `yaml:"temperature" envconfig:"TEMPERATURE" default:"0.3" validate:"min=0"`
	MaxTokens   int64         `yaml:"max_tokens" envconfig:"MAX_TOKENS" default:"1024" validate:"min=1"`
	Timeout     time.Duration `yaml:"timeout" envconfig:"TIMEOUT" default:"30s"`
}

// CacheConfig configures the read-through result cache
type CacheConfig struct {
	Enabled bool          `yaml:"enabled" envconfig:"ENABLED" default:"true"`
	TTL     time.Duration `yaml:"ttl" envconfig:"TTL" default:"1h"`
	MaxSize int           `yaml:"max_size" envconfig:"MAX_SIZE" default:"64" validate:"min=0"`
}

// UploadConfig constrains uploaded CSV files
type UploadConfig struct {
	MaxFileSize   int64    `yaml:"max_file_size" envconfig:"MAX_FILE_SIZE" default:"10485760" validate:"min=1"`
	AllowedSuffix []string `yaml:"allowed_suffixes" envconfig:"ALLOWED_SUFFIXES" default:".csv"`
}

// Load loads configuration from environment variables and an optional YAML
// config file. Environment variables take precedence over file values.
func Load() (*Config, error) {
	// Pick up a local .env when present; the summarizer credential normally
	// arrives this way during development.
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	configFile := configFilePath()
	if _, err := os.Stat(configFile); err == nil {
		if err := applyFile(configFile, &cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	if cfg.LLM.APIKey == "" {
		cfg.LLM.APIKey = os.Getenv(GeminiAPIKeyEnv)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// applyFile overlays values from a YAML file onto cfg without overriding
// values already set from the environment.
func applyFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}

	var fileCfg Config
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return err
	}

	if cfg.LLM.APIKey == "" {
		cfg.LLM.APIKey = fileCfg.LLM.APIKey
	}
	if cfg.LLM.APIKeyFile == "" {
		cfg.LLM.APIKeyFile = fileCfg.LLM.APIKeyFile
	}
	if len(cfg.Analysis.RequiredColumns) == 0 {
		cfg.Analysis.RequiredColumns = fileCfg.Analysis.RequiredColumns
	}
	return nil
}

// Validate checks the configuration for consistency
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	if sum := c.Analysis.CompletenessWeight + c.Analysis.UniquenessWeight; sum < 0.999 || sum > 1.001 {
		return fmt.Errorf("quality score weights must sum to 1, got %.3f", sum)
	}

	if c.Analysis.FeatureDelimiter == "" {
		return fmt.Errorf("feature delimiter must not be empty")
	}

	return nil
}

// ResolveAPIKey returns the summarizer credential, preferring the inline key
// over the secret file. An empty result means the narrative step is skipped.
func (c *LLMConfig) ResolveAPIKey() (string, error) {
	if c.APIKey != "" {
		return c.APIKey, nil
	}
	if c.APIKeyFile == "" {
		return "", nil
	}
	data, err := os.ReadFile(c.APIKeyFile)
	if err != nil {
		return "", fmt.Errorf("failed to read API key file: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// configFilePath returns the config file location, honoring the
// MARKETCLI_CONFIG override.
func configFilePath() string {
	if path := os.Getenv("MARKETCLI_CONFIG"); path != "" {
		return path
	}
	return DefaultConfigFile
}
