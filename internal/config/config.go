package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Store drivers understood by STORE_DRIVER.
const (
	DriverNone     = "none"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverNeo4j    = "neo4j"
)

type Config struct {
	Port    string
	GinMode string

	StoreDriver    string
	DatabaseURL    string
	SQLitePath     string
	Neo4jURI       string
	Neo4jUser      string
	Neo4jPassword  string
	SeedSampleData bool

	LLM LLMConfig

	RedisURL          string
	DiagnosisCacheTTL time.Duration
	SymptomCacheTTL   time.Duration

	RateLimitRPS   float64
	RateLimitBurst int

	LogLevel  string
	LogFormat string
}

type LLMConfig struct {
	Provider string
	Model    string
	APIKey   string
	BaseURL  string
	Timeout  time.Duration
}

// Enabled reports whether a text-generation backend is configured.
func (c LLMConfig) Enabled() bool {
	return c.APIKey != ""
}

// Load reads an optional .env file, an optional symptomcheck.yaml and the
// process environment, in increasing order of precedence.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("symptomcheck")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg := &Config{
		Port:    v.GetString("port"),
		GinMode: v.GetString("gin_mode"),

		StoreDriver:    strings.ToLower(strings.TrimSpace(v.GetString("store_driver"))),
		DatabaseURL:    v.GetString("database_url"),
		SQLitePath:     v.GetString("sqlite_path"),
		Neo4jURI:       v.GetString("neo4j_uri"),
		Neo4jUser:      v.GetString("neo4j_user"),
		Neo4jPassword:  v.GetString("neo4j_password"),
		SeedSampleData: v.GetBool("seed_sample_data"),

		LLM: LLMConfig{
			Provider: strings.ToLower(strings.TrimSpace(v.GetString("llm_provider"))),
			Model:    v.GetString("llm_model"),
			APIKey:   v.GetString("llm_api_key"),
			BaseURL:  v.GetString("llm_base_url"),
			Timeout:  v.GetDuration("llm_timeout"),
		},

		RedisURL:          v.GetString("redis_url"),
		DiagnosisCacheTTL: v.GetDuration("diagnosis_cache_ttl"),
		SymptomCacheTTL:   v.GetDuration("symptom_cache_ttl"),

		RateLimitRPS:   v.GetFloat64("rate_limit_rps"),
		RateLimitBurst: v.GetInt("rate_limit_burst"),

		LogLevel:  v.GetString("log_level"),
		LogFormat: v.GetString("log_format"),
	}

	if cfg.LLM.APIKey == "" {
		cfg.LLM.APIKey = providerKey(v, cfg.LLM.Provider)
	}
	if cfg.LLM.Model == "" {
		cfg.LLM.Model = defaultModel(cfg.LLM.Provider)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("gin_mode", "release")

	v.SetDefault("store_driver", DriverNone)
	v.SetDefault("database_url", "")
	v.SetDefault("sqlite_path", "data/symptomcheck.db")
	v.SetDefault("neo4j_uri", "")
	v.SetDefault("neo4j_user", "")
	v.SetDefault("neo4j_password", "")
	v.SetDefault("seed_sample_data", true)

	v.SetDefault("llm_provider", "gemini")
	v.SetDefault("llm_model", "")
	v.SetDefault("llm_api_key", "")
	v.SetDefault("llm_base_url", "")
	v.SetDefault("llm_timeout", "20s")
	v.SetDefault("gemini_api_key", "")
	v.SetDefault("openai_api_key", "")
	v.SetDefault("anthropic_api_key", "")

	v.SetDefault("redis_url", "")
	v.SetDefault("diagnosis_cache_ttl", "10m")
	v.SetDefault("symptom_cache_ttl", "5m")

	v.SetDefault("rate_limit_rps", 10)
	v.SetDefault("rate_limit_burst", 20)

	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")
}

// Validate checks that the selected store driver has what it needs.
func (c *Config) Validate() error {
	switch c.StoreDriver {
	case DriverNone, DriverSQLite:
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when STORE_DRIVER=postgres")
		}
	case DriverNeo4j:
		if c.Neo4jURI == "" {
			return fmt.Errorf("NEO4J_URI is required when STORE_DRIVER=neo4j")
		}
	default:
		return fmt.Errorf("unsupported STORE_DRIVER %q", c.StoreDriver)
	}

	switch c.LLM.Provider {
	case "gemini", "openai", "claude":
	default:
		return fmt.Errorf("unsupported LLM_PROVIDER %q", c.LLM.Provider)
	}

	if c.RateLimitRPS <= 0 {
		return fmt.Errorf("RATE_LIMIT_RPS must be positive")
	}
	return nil
}

func providerKey(v *viper.Viper, provider string) string {
	switch provider {
	case "openai":
		return v.GetString("openai_api_key")
	case "claude":
		return v.GetString("anthropic_api_key")
	default:
		return v.GetString("gemini_api_key")
	}
}

func defaultModel(provider string) string {
	switch provider {
	case "openai":
		return "gpt-4o-mini"
	case "claude":
		return "claude-3-5-haiku-latest"
	default:
		return "gemini-1.5-flash"
	}
}
