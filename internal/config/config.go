package config

import (
	"fmt"
	"sync"

	"github.com/spf13/viper"
)

var (
	instance *Config
	once     sync.Once
	mu       sync.RWMutex
)

// Config represents the application configuration
type Config struct {
	Server ServerConfig `mapstructure:"server"`
	Upload UploadConfig `mapstructure:"upload"`
	LLM    LLMConfig    `mapstructure:"llm"`
	Search SearchConfig `mapstructure:"search"`
	Engine EngineConfig `mapstructure:"engine"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host string `mapstructure:"host" validate:"required"`
	Port int    `mapstructure:"port" validate:"required,min=1,max=65535"`
}

// UploadConfig contains spreadsheet upload limits
type UploadConfig struct {
	MaxFileSizeMB int `mapstructure:"max_file_size_mb" validate:"min=1"`
}

// LLMConfig contains the chat-completion client configuration
type LLMConfig struct {
	BaseURL     string  `mapstructure:"base_url" validate:"required"`
	APIKey      string  `mapstructure:"api_key"`
	Model       string  `mapstructure:"model" validate:"required"`
	Timeout     int     `mapstructure:"timeout" validate:"min=1"` // seconds
	MaxTokens   int     `mapstructure:"max_tokens" validate:"min=1"`
	Temperature float64 `mapstructure:"temperature"`
	MaxRetries  int     `mapstructure:"max_retries" validate:"min=0"`
}

// SearchConfig contains the web evidence retriever configuration.
// The strength thresholds are empirically chosen defaults, kept tunable.
type SearchConfig struct {
	BaseURL           string `mapstructure:"base_url"`
	APIKey            string `mapstructure:"api_key"`
	Timeout           int    `mapstructure:"timeout" validate:"min=1"` // seconds
	MaxConcurrent     int    `mapstructure:"max_concurrent" validate:"min=1"`
	RateLimitDelayMS  int    `mapstructure:"rate_limit_delay_ms" validate:"min=0"`
	CacheCapacity     int    `mapstructure:"cache_capacity" validate:"min=1"`
	CacheShards       int    `mapstructure:"cache_shards" validate:"min=1"`
	MaxResults        int    `mapstructure:"max_results" validate:"min=1"`
	SnippetLimit      int    `mapstructure:"snippet_limit" validate:"min=1"` // chars per result snippet
	ContentLimit      int    `mapstructure:"content_limit" validate:"min=1"` // chars of concatenated evidence
	HighAuthorityMin  int    `mapstructure:"high_authority_min" validate:"min=1"`
	ModerateAuthority int    `mapstructure:"moderate_authority_min" validate:"min=1"`
	ModerateCommunity int    `mapstructure:"moderate_community_min" validate:"min=1"`
}

// EngineConfig contains batch processing configuration
type EngineConfig struct {
	BatchSize     int    `mapstructure:"batch_size" validate:"min=1"`
	MinWordCount  int    `mapstructure:"min_word_count" validate:"min=1"`
	QueryAnchor   string `mapstructure:"query_anchor"`
	MaxQueryTerms int    `mapstructure:"max_query_terms" validate:"min=1"`
	MinTermLength int    `mapstructure:"min_term_length" validate:"min=1"`
	InputFieldCap int    `mapstructure:"input_field_cap" validate:"min=1"` // chars of each input field in the prompt
}

// Get returns the singleton configuration instance
func Get() *Config {
	once.Do(func() {
		if instance == nil {
			instance = &Config{}
		}
	})
	mu.RLock()
	defer mu.RUnlock()
	return instance
}

// Load initializes and loads configuration from file and environment variables
func Load(configPath string) error {
	mu.Lock()
	defer mu.Unlock()

	viper.SetConfigType("yaml")
	viper.SetEnvPrefix("APP")
	viper.AutomaticEnv()

	// Set default values
	setDefaults()

	// Load from file if provided
	if configPath != "" {
		viper.SetConfigFile(configPath)
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Bind environment variables
	bindEnvVars()

	// Unmarshal configuration
	cfg := &Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate configuration
	if err := validate(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	instance = cfg
	return nil
}

// setDefaults sets default configuration values
func setDefaults() {
	// Server defaults
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)

	// Upload defaults
	viper.SetDefault("upload.max_file_size_mb", 100)

	// LLM defaults
	viper.SetDefault("llm.base_url", "https://api.openai.com/v1")
	viper.SetDefault("llm.model", "gpt-4o-mini")
	viper.SetDefault("llm.timeout", 30)
	viper.SetDefault("llm.max_tokens", 1200)
	viper.SetDefault("llm.temperature", 0.1)
	viper.SetDefault("llm.max_retries", 3)

	// Search defaults
	viper.SetDefault("search.timeout", 30)
	viper.SetDefault("search.max_concurrent", 10)
	viper.SetDefault("search.rate_limit_delay_ms", 100)
	viper.SetDefault("search.cache_capacity", 1000)
	viper.SetDefault("search.cache_shards", 16)
	viper.SetDefault("search.max_results", 5)
	viper.SetDefault("search.snippet_limit", 300)
	viper.SetDefault("search.content_limit", 4000)
	viper.SetDefault("search.high_authority_min", 2)
	viper.SetDefault("search.moderate_authority_min", 1)
	viper.SetDefault("search.moderate_community_min", 3)

	// Engine defaults
	viper.SetDefault("engine.batch_size", 5)
	viper.SetDefault("engine.min_word_count", 5)
	viper.SetDefault("engine.query_anchor", "oracle flexcube")
	viper.SetDefault("engine.max_query_terms", 100)
	viper.SetDefault("engine.min_term_length", 4)
	viper.SetDefault("engine.input_field_cap", 300)
}

// bindEnvVars binds environment variables to viper keys
func bindEnvVars() {
	// Server
	viper.BindEnv("server.host", "APP_SERVER_HOST")
	viper.BindEnv("server.port", "APP_SERVER_PORT")

	// Upload
	viper.BindEnv("upload.max_file_size_mb", "APP_UPLOAD_MAX_FILE_SIZE_MB")

	// LLM
	viper.BindEnv("llm.base_url", "APP_LLM_BASE_URL")
	viper.BindEnv("llm.api_key", "APP_LLM_API_KEY", "OPENAI_API_KEY")
	viper.BindEnv("llm.model", "APP_LLM_MODEL")
	viper.BindEnv("llm.timeout", "APP_LLM_TIMEOUT")
	viper.BindEnv("llm.max_tokens", "APP_LLM_MAX_TOKENS")
	viper.BindEnv("llm.temperature", "APP_LLM_TEMPERATURE")
	viper.BindEnv("llm.max_retries", "APP_LLM_MAX_RETRIES")

	// Search
	viper.BindEnv("search.base_url", "APP_SEARCH_BASE_URL")
	viper.BindEnv("search.api_key", "APP_SEARCH_API_KEY")
	viper.BindEnv("search.timeout", "APP_SEARCH_TIMEOUT")
	viper.BindEnv("search.max_concurrent", "APP_SEARCH_MAX_CONCURRENT")
	viper.BindEnv("search.rate_limit_delay_ms", "APP_SEARCH_RATE_LIMIT_DELAY_MS")
	viper.BindEnv("search.cache_capacity", "APP_SEARCH_CACHE_CAPACITY")
	viper.BindEnv("search.cache_shards", "APP_SEARCH_CACHE_SHARDS")

	// Engine
	viper.BindEnv("engine.batch_size", "APP_ENGINE_BATCH_SIZE")
	viper.BindEnv("engine.min_word_count", "APP_ENGINE_MIN_WORD_COUNT")
	viper.BindEnv("engine.query_anchor", "APP_ENGINE_QUERY_ANCHOR")
}

// validate performs validation on the configuration
func validate(cfg *Config) error {
	// Validate Server
	if cfg.Server.Host == "" {
		return fmt.Errorf("server.host is required")
	}
	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535")
	}

	// Validate Upload
	if cfg.Upload.MaxFileSizeMB < 1 {
		return fmt.Errorf("upload.max_file_size_mb must be at least 1")
	}

	// Validate LLM
	if cfg.LLM.BaseURL == "" {
		return fmt.Errorf("llm.base_url is required")
	}
	if cfg.LLM.Model == "" {
		return fmt.Errorf("llm.model is required")
	}
	if cfg.LLM.MaxTokens < 1 {
		return fmt.Errorf("llm.max_tokens must be at least 1")
	}
	if cfg.LLM.MaxRetries < 0 {
		return fmt.Errorf("llm.max_retries must be non-negative")
	}

	// Validate Search
	if cfg.Search.MaxConcurrent < 1 {
		return fmt.Errorf("search.max_concurrent must be at least 1")
	}
	if cfg.Search.CacheCapacity < 1 {
		return fmt.Errorf("search.cache_capacity must be at least 1")
	}
	if cfg.Search.CacheShards < 1 {
		return fmt.Errorf("search.cache_shards must be at least 1")
	}
	if cfg.Search.HighAuthorityMin < 1 {
		return fmt.Errorf("search.high_authority_min must be at least 1")
	}

	// Validate Engine
	if cfg.Engine.BatchSize < 1 {
		return fmt.Errorf("engine.batch_size must be at least 1")
	}
	if cfg.Engine.MinWordCount < 1 {
		return fmt.Errorf("engine.min_word_count must be at least 1")
	}

	return nil
}

// MaxFileSizeBytes returns the upload cap in bytes.
func (c *Config) MaxFileSizeBytes() int64 {
	return int64(c.Upload.MaxFileSizeMB) * 1024 * 1024
}

// Reload reloads the configuration (thread-safe)
func Reload(configPath string) error {
	mu.Lock()
	defer mu.Unlock()

	// Reset instance to allow reload
	instance = nil
	once = sync.Once{}

	return Load(configPath)
}
