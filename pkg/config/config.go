// Package config loads the vocabscope configuration from file, environment
// variables and flags via viper.
package config

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	// Log configuration
	Log LogConfig `mapstructure:"log"`

	// Models is the list of model identifiers to analyze
	Models []string `mapstructure:"models"`

	// Output configuration
	Output OutputConfig `mapstructure:"output"`

	// Render configuration
	Render RenderConfig `mapstructure:"render"`

	// Reduce configuration
	Reduce ReduceConfig `mapstructure:"reduce"`

	// Charsets configuration
	Charsets CharsetsConfig `mapstructure:"charsets"`

	// Embedding provider configuration
	Embedding EmbeddingConfig `mapstructure:"embedding"`

	// CircuitBreaker configuration
	CircuitBreaker CircuitBreakerConfig `mapstructure:"circuit_breaker"`

	// Telemetry configuration
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// OutputConfig controls where and how result images are written
type OutputConfig struct {
	// Dir is the destination directory for images
	Dir string `mapstructure:"dir"`

	// Flat writes images directly into Dir instead of Dir/assets/embeddings
	Flat bool `mapstructure:"flat"`

	// Overwrite replaces existing images instead of skipping them
	Overwrite bool `mapstructure:"overwrite"`

	// Postfix is an optional filename suffix before the extension
	Postfix string `mapstructure:"postfix"`

	// Quality is the JPEG quality (1-100)
	Quality int `mapstructure:"quality"`
}

// RenderConfig holds canvas rendering configuration
type RenderConfig struct {
	Width      int      `mapstructure:"width"`
	Height     int      `mapstructure:"height"`
	Margin     int      `mapstructure:"margin"`
	Detailed   bool     `mapstructure:"detailed"`
	Background string   `mapstructure:"background"`
	Fonts      []string `mapstructure:"fonts"`
}

// ReduceConfig holds dimensionality reduction configuration
type ReduceConfig struct {
	// Method selects the reducer: "linear" (PCA) or "tsne"
	Method string `mapstructure:"method"`

	// Seed makes reductions reproducible
	Seed int64 `mapstructure:"seed"`

	// Perplexity is the t-SNE neighborhood size
	Perplexity float64 `mapstructure:"perplexity"`

	// Iterations is the number of t-SNE gradient steps
	Iterations int `mapstructure:"iterations"`

	// ExactThreshold is the largest point count handled by the dense t-SNE;
	// above it the Barnes-Hut approximation with HNSW neighbors is used
	ExactThreshold int `mapstructure:"exact_threshold"`
}

// CharsetsConfig points at an optional character-class definition file
type CharsetsConfig struct {
	Path string `mapstructure:"path"`
}

// EmbeddingConfig holds embedding provider configuration
type EmbeddingConfig struct {
	Provider  string   `mapstructure:"provider"` // openai, embedeverything, static
	Model     string   `mapstructure:"model"`
	APIKey    string   `mapstructure:"api_key"`
	BaseURL   string   `mapstructure:"base_url"`
	BatchSize int      `mapstructure:"batch_size"`
	Types     []string `mapstructure:"types"` // embedding types to analyze

	// VocabDir holds per-model vocabulary files, named after the model with
	// "/" replaced by "_" plus ".vocab.json" (or .txt, one token per line)
	VocabDir string `mapstructure:"vocab_dir"`
}

// CircuitBreakerConfig holds configuration for circuit breaking
type CircuitBreakerConfig struct {
	Enabled          bool    `mapstructure:"enabled"`
	MaxRequests      uint32  `mapstructure:"max_requests"`
	Interval         int     `mapstructure:"interval"` // in seconds
	Timeout          int     `mapstructure:"timeout"`  // in seconds
	ReadyToTripRatio float64 `mapstructure:"ready_to_trip_ratio"`
}

// TelemetryConfig holds telemetry configuration
type TelemetryConfig struct {
	ParquetPath string `mapstructure:"parquet_path"`
}

// Load loads configuration from file and environment variables
func Load() (*Config, error) {
	// Set defaults
	setDefaults()

	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Override with environment variables if present
	overrideWithEnv(config)

	return config, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	// Log defaults
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "text")

	// Output defaults
	viper.SetDefault("output.dir", "images")
	viper.SetDefault("output.flat", false)
	viper.SetDefault("output.overwrite", false)
	viper.SetDefault("output.quality", 80)

	// Render defaults
	viper.SetDefault("render.width", 8000)
	viper.SetDefault("render.height", 8000)
	viper.SetDefault("render.margin", 200)
	viper.SetDefault("render.detailed", false)
	viper.SetDefault("render.background", "#FFFFFF")

	// Reduce defaults
	viper.SetDefault("reduce.method", "tsne")
	viper.SetDefault("reduce.seed", 6)
	viper.SetDefault("reduce.perplexity", 30)
	viper.SetDefault("reduce.iterations", 1000)
	viper.SetDefault("reduce.exact_threshold", 2000)

	// Embedding defaults
	viper.SetDefault("embedding.provider", "embedeverything")
	viper.SetDefault("embedding.model", "all-MiniLM-L6-v2")
	viper.SetDefault("embedding.batch_size", 2000)
	viper.SetDefault("embedding.types", []string{"input", "output"})
	viper.SetDefault("embedding.vocab_dir", "vocab")

	// Circuit breaker defaults
	viper.SetDefault("circuit_breaker.enabled", false)
	viper.SetDefault("circuit_breaker.max_requests", 3)
	viper.SetDefault("circuit_breaker.interval", 60)
	viper.SetDefault("circuit_breaker.timeout", 60)
	viper.SetDefault("circuit_breaker.ready_to_trip_ratio", 0.6)

	// Telemetry defaults
	home, err := os.UserHomeDir()
	if err == nil {
		viper.SetDefault("telemetry.parquet_path", fmt.Sprintf("%s/.vocabscope/telemetry", home))
	}
}

// overrideWithEnv overrides config with environment variables
func overrideWithEnv(config *Config) {
	if apiKey := os.Getenv("OPENAI_API_KEY"); apiKey != "" {
		config.Embedding.APIKey = apiKey
	}
	if baseURL := os.Getenv("OPENAI_BASE_URL"); baseURL != "" && config.Embedding.BaseURL == "" {
		config.Embedding.BaseURL = baseURL
	}
	if dir := os.Getenv("VOCABSCOPE_OUTPUT_DIR"); dir != "" {
		config.Output.Dir = dir
	}
	if path := os.Getenv("TELEMETRY_PARQUET_PATH"); path != "" {
		config.Telemetry.ParquetPath = path
	}
}
