package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config stores all configuration of the application. Values are read by
// viper from a config file or FINBRIEF_* environment variables.
type Config struct {
	Generation GenerationConfig `mapstructure:"generation"`
	FMP        FMPConfig        `mapstructure:"fmp"`
	Search     SearchConfig     `mapstructure:"search"`
	Archive    ArchiveConfig    `mapstructure:"archive"`
	Research   ResearchConfig   `mapstructure:"research"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// GenerationConfig stores text-generation backend settings.
type GenerationConfig struct {
	APIKey              string        `mapstructure:"api_key"`
	BaseURL             string        `mapstructure:"base_url"`
	Model               string        `mapstructure:"model"`
	Timeout             time.Duration `mapstructure:"timeout"`
	RateLimitCapacity   int           `mapstructure:"rate_limit_capacity"`
	RateLimitRefillRate time.Duration `mapstructure:"rate_limit_refill_rate"`
}

// FMPConfig stores Financial Modeling Prep API settings.
type FMPConfig struct {
	APIKey  string        `mapstructure:"api_key"`
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// SearchConfig stores web search API settings.
type SearchConfig struct {
	APIKey     string        `mapstructure:"api_key"`
	BaseURL    string        `mapstructure:"base_url"`
	MaxResults int           `mapstructure:"max_results"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

// ArchiveConfig stores run archive settings.
type ArchiveConfig struct {
	Dir           string `mapstructure:"dir"`
	FlushInterval int    `mapstructure:"flush_interval"`
}

// ResearchConfig stores pipeline settings.
type ResearchConfig struct {
	InvocationTimeout time.Duration `mapstructure:"invocation_timeout"`
	EnableTracing     bool          `mapstructure:"enable_tracing"`
}

// LoggingConfig stores process log settings.
type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("finbrief")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("FINBRIEF")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Generation defaults. API keys default empty so the env bindings
	// (FINBRIEF_GENERATION_API_KEY etc.) are always registered.
	v.SetDefault("generation.api_key", "")
	v.SetDefault("generation.base_url", "https://api.openai.com/v1")
	v.SetDefault("generation.model", "gpt-5-mini")
	v.SetDefault("generation.timeout", "120s")
	v.SetDefault("generation.rate_limit_capacity", 10)
	v.SetDefault("generation.rate_limit_refill_rate", "1s")

	// Data source defaults
	v.SetDefault("fmp.api_key", "")
	v.SetDefault("fmp.base_url", "https://financialmodelingprep.com/stable")
	v.SetDefault("fmp.timeout", "10s")
	v.SetDefault("search.api_key", "")
	v.SetDefault("search.base_url", "https://api.tavily.com")
	v.SetDefault("search.max_results", 3)
	v.SetDefault("search.timeout", "15s")

	// Archive defaults (flush every turn)
	v.SetDefault("archive.dir", "logs")
	v.SetDefault("archive.flush_interval", 1)

	// Research defaults
	v.SetDefault("research.invocation_timeout", "30s")
	v.SetDefault("research.enable_tracing", true)

	v.SetDefault("logging.level", "info")

	if err := v.ReadInConfig(); err != nil {
		// a discoverable config file is optional; an unreadable one is not
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}
