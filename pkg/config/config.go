package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds application configuration.
// Environment keys are SECTION_FIELD_NAME, e.g. DB_SSL_MODE, LLM_API_KEY, ANALYSIS_BATCH_SIZE.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Storage  StorageConfig
	LLM      LLMConfig
	Graph    GraphConfig
	Analysis AnalysisConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port            string   `split_words:"true" default:"8080"`
	Host            string   `split_words:"true" default:"0.0.0.0"`
	Environment     string   `split_words:"true" default:"development"`
	AllowedOrigins  []string `split_words:"true" default:"http://localhost:3000"`
	ShutdownTimeout int      `split_words:"true" default:"10"`
	// IngestSecret enables HMAC verification of transcript ingestion when set.
	IngestSecret string `split_words:"true"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host           string        `split_words:"true" default:"localhost"`
	Port           string        `split_words:"true" default:"5432"`
	User           string        `split_words:"true" default:"postgres"`
	Password       string        `split_words:"true" default:"postgres"`
	Name           string        `split_words:"true" default:"meeting_insights"`
	SSLMode        string        `split_words:"true" default:"disable"`
	MaxConns       int           `split_words:"true" default:"25"`
	MinConns       int           `split_words:"true" default:"5"`
	MigrationsDir  string        `split_words:"true" default:"migrations"`
	ConnectTimeout time.Duration `split_words:"true" default:"30s"`
	MigrateOnStart bool          `split_words:"true" default:"false"`
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Enabled  bool   `split_words:"true" default:"false"`
	Host     string `split_words:"true" default:"localhost"`
	Port     string `split_words:"true" default:"6379"`
	Password string `split_words:"true"`
	DB       int    `split_words:"true" default:"0"`
	Channel  string `split_words:"true" default:"meeting-insights:events"`
}

// StorageConfig holds storage configuration
type StorageConfig struct {
	Enabled         bool   `split_words:"true" default:"false"`
	Endpoint        string `split_words:"true" default:"localhost:9000"`
	AccessKeyID     string `split_words:"true" default:"minioadmin"`
	SecretAccessKey string `split_words:"true" default:"minioadmin"`
	BucketName      string `split_words:"true" default:"meeting-insights"`
	UseSSL          bool   `split_words:"true" default:"false"`
}

// LLMConfig selects and configures the generative text model
type LLMConfig struct {
	Provider    string  `split_words:"true" default:"groq"`
	APIKey      string  `split_words:"true"`
	Model       string  `split_words:"true" default:"llama-3.3-70b-versatile"`
	BaseURL     string  `split_words:"true"`
	Temperature float32 `split_words:"true" default:"0.3"`
	MaxTokens   int     `split_words:"true" default:"2000"`
}

// GraphConfig holds the Neo4j/Memgraph connection used for topic graph projection
type GraphConfig struct {
	Enabled  bool   `split_words:"true" default:"false"`
	URI      string `split_words:"true" default:"bolt://localhost:7687"`
	Username string `split_words:"true"`
	Password string `split_words:"true"`
}

// AnalysisConfig tunes the queue processor
type AnalysisConfig struct {
	BatchSize         int           `split_words:"true" default:"10"`
	SummaryWindow     int           `split_words:"true" default:"9"`
	ContextChunks     int           `split_words:"true" default:"5"`
	ContextChunkChars int           `split_words:"true" default:"500"`
	GroupTimeout      time.Duration `split_words:"true" default:"5m"`
	Interval          time.Duration `split_words:"true" default:"0s"`
	MaxRetries        int           `split_words:"true" default:"3"`
	RequeueBaseDelay  time.Duration `split_words:"true" default:"30s"`
	StaleClaimAfter   time.Duration `split_words:"true" default:"1h"`
	PromptSeedFile    string        `split_words:"true"`
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if exists (ignore error if file doesn't exist)
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables or defaults")
	}
	return LoadFromEnv()
}

// LoadFromEnv binds every section from the process environment
func LoadFromEnv() (*Config, error) {
	config := &Config{}
	sections := []struct {
		prefix string
		spec   interface{}
	}{
		{"server", &config.Server},
		{"db", &config.Database},
		{"redis", &config.Redis},
		{"storage", &config.Storage},
		{"llm", &config.LLM},
		{"graph", &config.Graph},
		{"analysis", &config.Analysis},
	}
	for _, s := range sections {
		if err := envconfig.Process(s.prefix, s.spec); err != nil {
			return nil, fmt.Errorf("load %s config: %w", s.prefix, err)
		}
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch strings.ToLower(c.LLM.Provider) {
	case "groq", "openai", "claude", "gemini":
		if c.LLM.APIKey == "" {
			return fmt.Errorf("LLM_API_KEY is required for provider %q", c.LLM.Provider)
		}
	case "ollama":
	default:
		return fmt.Errorf("unsupported LLM_PROVIDER %q", c.LLM.Provider)
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 1 {
		return fmt.Errorf("LLM_TEMPERATURE must be between 0 and 1")
	}
	if c.Analysis.BatchSize <= 0 {
		return fmt.Errorf("ANALYSIS_BATCH_SIZE must be positive")
	}
	if c.Analysis.SummaryWindow <= 0 {
		return fmt.Errorf("ANALYSIS_SUMMARY_WINDOW must be positive")
	}
	if c.Analysis.MaxRetries < 0 {
		return fmt.Errorf("ANALYSIS_MAX_RETRIES cannot be negative")
	}
	if c.Analysis.StaleClaimAfter > 0 && c.Analysis.StaleClaimAfter <= c.Analysis.GroupTimeout {
		return fmt.Errorf("ANALYSIS_STALE_CLAIM_AFTER must exceed ANALYSIS_GROUP_TIMEOUT")
	}
	return nil
}

// IsProduction reports whether the server runs in production mode
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// GetDatabaseDSN returns the database connection string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// GetRedisAddr returns the Redis address
func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", c.Redis.Host, c.Redis.Port)
}
