package common

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/DanielDi/agent-tech-mining/constants"
)

// EnvPrefix is the prefix for environment overrides, e.g. TOPIC_AGENT_PIPELINE_WORKERS.
const EnvPrefix = "TOPIC_AGENT"

// Config holds all application configuration
type Config struct {
	Paths    PathsConfig    `yaml:"paths"`
	Ingest   IngestConfig   `yaml:"ingest"`
	Text     TextConfig     `yaml:"text"`
	LLM      LLMConfig      `yaml:"llm"`
	Pipeline PipelineConfig `yaml:"pipeline"`
	Cache    CacheConfig    `yaml:"cache"`
}

// PathsConfig locates the two persisted stores.
type PathsConfig struct {
	Vocabulary string `yaml:"vocabulary"`
	Dataset    string `yaml:"dataset"`
	Sheet      string `yaml:"sheet"`
}

// IngestConfig controls how an input directory is scanned.
type IngestConfig struct {
	Extensions []string      `yaml:"extensions"`
	Recursive  bool          `yaml:"recursive"`
	SkipHidden bool          `yaml:"skip_hidden"`
	Debounce   time.Duration `yaml:"debounce"`
}

// TextConfig holds text-extraction configuration
type TextConfig struct {
	Pdftotext      string `yaml:"pdftotext"`
	PreferExternal bool   `yaml:"prefer_external"`
	MaxPages       int    `yaml:"max_pages"`
	MinChars       int    `yaml:"min_chars"`
}

// LLMConfig holds LLM-related configuration
type LLMConfig struct {
	Model             string        `yaml:"model"`
	APIKey            string        `yaml:"api_key"`
	BaseURL           string        `yaml:"base_url"`
	Temperature       float64       `yaml:"temperature"`
	MaxTokens         int           `yaml:"max_tokens"`
	Timeout           time.Duration `yaml:"timeout"`
	RequestsPerSecond float64       `yaml:"requests_per_second"`
	Burst             int           `yaml:"burst"`
	MaxRetries        int           `yaml:"max_retries"`
	MaxInputChars     int           `yaml:"max_input_chars"`
}

// PipelineConfig controls batch execution.
type PipelineConfig struct {
	Workers         int           `yaml:"workers"`
	DocumentTimeout time.Duration `yaml:"document_timeout"`
	Strict          bool          `yaml:"strict"`
}

// CacheConfig configures the optional extraction cache. An empty Path disables it.
type CacheConfig struct {
	Path      string        `yaml:"path"`
	TTL       time.Duration `yaml:"ttl"`
	MemoryTTL time.Duration `yaml:"memory_ttl"`
}

// LoadDotEnv loads .env style files into the process environment. Missing files are ignored.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return WrapError(err, "load "+f)
		}
	}
	return nil
}

// NewViper returns a viper instance with defaults and environment bindings applied.
// Flags and config files are layered on top by the caller.
func NewViper() *viper.Viper {
	v := viper.New()

	v.SetDefault("paths.vocabulary", constants.DefaultVocabularyFile)
	v.SetDefault("paths.dataset", constants.DefaultDatasetFile)
	v.SetDefault("paths.sheet", constants.DefaultSheetName)

	v.SetDefault("ingest.extensions", []string{"pdf"})
	v.SetDefault("ingest.recursive", false)
	v.SetDefault("ingest.skip_hidden", true)
	v.SetDefault("ingest.debounce", 2*time.Second)

	v.SetDefault("text.pdftotext", "pdftotext")
	v.SetDefault("text.prefer_external", false)
	v.SetDefault("text.max_pages", 0)
	v.SetDefault("text.min_chars", 200)

	v.SetDefault("llm.model", constants.DefaultModel)
	v.SetDefault("llm.base_url", "")
	v.SetDefault("llm.temperature", 0.0)
	v.SetDefault("llm.max_tokens", constants.DefaultMaxTokens)
	v.SetDefault("llm.timeout", 90*time.Second)
	v.SetDefault("llm.requests_per_second", 1.0)
	v.SetDefault("llm.burst", 1)
	v.SetDefault("llm.max_retries", 2)
	v.SetDefault("llm.max_input_chars", 100000)

	v.SetDefault("pipeline.workers", 1)
	v.SetDefault("pipeline.document_timeout", 3*time.Minute)
	v.SetDefault("pipeline.strict", false)

	v.SetDefault("cache.path", "")
	v.SetDefault("cache.ttl", time.Duration(0))
	v.SetDefault("cache.memory_ttl", 30*time.Minute)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Conventional OpenAI variables are accepted as fallbacks.
	_ = v.BindEnv("llm.api_key", EnvPrefix+"_LLM_API_KEY", "OPENAI_API_KEY")
	_ = v.BindEnv("llm.model", EnvPrefix+"_LLM_MODEL", "OPENAI_MODEL")
	_ = v.BindEnv("llm.base_url", EnvPrefix+"_LLM_BASE_URL", "OPENAI_BASE_URL")
	_ = v.BindEnv("llm.temperature", EnvPrefix+"_LLM_TEMPERATURE", "OPENAI_TEMPERATURE")
	_ = v.BindEnv("llm.timeout", EnvPrefix+"_LLM_TIMEOUT", "OPENAI_TIMEOUT")

	return v
}

// LoadConfig builds the Config from a viper instance (see NewViper).
func LoadConfig(v *viper.Viper) *Config {
	if v == nil {
		v = NewViper()
	}
	return &Config{
		Paths: PathsConfig{
			Vocabulary: v.GetString("paths.vocabulary"),
			Dataset:    v.GetString("paths.dataset"),
			Sheet:      v.GetString("paths.sheet"),
		},
		Ingest: IngestConfig{
			Extensions: v.GetStringSlice("ingest.extensions"),
			Recursive:  v.GetBool("ingest.recursive"),
			SkipHidden: v.GetBool("ingest.skip_hidden"),
			Debounce:   v.GetDuration("ingest.debounce"),
		},
		Text: TextConfig{
			Pdftotext:      v.GetString("text.pdftotext"),
			PreferExternal: v.GetBool("text.prefer_external"),
			MaxPages:       v.GetInt("text.max_pages"),
			MinChars:       v.GetInt("text.min_chars"),
		},
		LLM: LLMConfig{
			Model:             v.GetString("llm.model"),
			APIKey:            v.GetString("llm.api_key"),
			BaseURL:           v.GetString("llm.base_url"),
			Temperature:       v.GetFloat64("llm.temperature"),
			MaxTokens:         v.GetInt("llm.max_tokens"),
			Timeout:           v.GetDuration("llm.timeout"),
			RequestsPerSecond: v.GetFloat64("llm.requests_per_second"),
			Burst:             v.GetInt("llm.burst"),
			MaxRetries:        v.GetInt("llm.max_retries"),
			MaxInputChars:     v.GetInt("llm.max_input_chars"),
		},
		Pipeline: PipelineConfig{
			Workers:         v.GetInt("pipeline.workers"),
			DocumentTimeout: v.GetDuration("pipeline.document_timeout"),
			Strict:          v.GetBool("pipeline.strict"),
		},
		Cache: CacheConfig{
			Path:      v.GetString("cache.path"),
			TTL:       v.GetDuration("cache.ttl"),
			MemoryTTL: v.GetDuration("cache.memory_ttl"),
		},
	}
}

// Validate checks the settings every command needs. The API key is checked
// separately by commands that call the model (see RequireLLM).
func (c *Config) Validate() error {
	v := NewValidator()
	v.Field("paths.vocabulary", c.Paths.Vocabulary, Required, Extension(".json"))
	v.Field("paths.dataset", c.Paths.Dataset, Required, Extension(".xlsx"))
	v.Field("paths.sheet", c.Paths.Sheet, Required)
	v.Field("llm.model", c.LLM.Model, Required)
	v.Field("llm.temperature", c.LLM.Temperature, FloatRange(0, 2))
	v.Field("llm.max_tokens", c.LLM.MaxTokens, IntRange(1, 128000))
	v.Field("llm.max_retries", c.LLM.MaxRetries, IntRange(0, 10))
	v.Field("pipeline.workers", c.Pipeline.Workers, IntRange(1, 64))
	return ValidateAndReturnError(v)
}

// RequireLLM fails when the model cannot be called.
func (c *Config) RequireLLM() error {
	if strings.TrimSpace(c.LLM.APIKey) == "" {
		return NewAppError("CONFIG_ERROR", "OPENAI_API_KEY is required", ErrInvalidInput)
	}
	return nil
}

// Redacted returns a copy safe to print.
func (c Config) Redacted() Config {
	if c.LLM.APIKey != "" {
		k := c.LLM.APIKey
		if len(k) > 8 {
			c.LLM.APIKey = k[:3] + "..." + k[len(k)-4:]
		} else {
			c.LLM.APIKey = "***"
		}
	}
	return c
}
