// Package config loads and validates the agent's configuration from YAML and
// the environment. Guidance text is configuration, not code: deployments can
// replace the weak variants and the strong base without touching the core.
package config

import (
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/finsight/finsight-go/pkg/errors"
	"github.com/finsight/finsight-go/pkg/guidance"
)

// Config is the complete configuration for the agent.
type Config struct {
	// LLM configuration for the planner and the LLM-backed tools
	LLM LLMConfig `yaml:"llm" validate:"required"`

	// Search configuration for the information-gathering tools
	Search SearchConfig `yaml:"search" validate:"required"`

	// Memory store configuration
	Memory MemoryConfig `yaml:"memory" validate:"required"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging,omitempty" validate:"omitempty"`

	// Guidance content overrides
	Guidance GuidanceConfig `yaml:"guidance,omitempty" validate:"omitempty"`
}

// LLMConfig holds the language model provider settings.
type LLMConfig struct {
	// Provider name; only anthropic is supported
	Provider string `yaml:"provider" validate:"required,oneof=anthropic"`

	// Model ID (e.g. claude-sonnet-4-5)
	ModelID string `yaml:"model_id" validate:"required"`

	// API key; falls back to ANTHROPIC_API_KEY
	APIKey string `yaml:"api_key,omitempty"`
}

// SearchConfig holds the web-search provider settings.
type SearchConfig struct {
	// Provider name; only tavily is supported
	Provider string `yaml:"provider" validate:"required,oneof=tavily"`

	// API key; falls back to TAVILY_API_KEY
	APIKey string `yaml:"api_key,omitempty"`

	// Base URL override, mainly for testing
	BaseURL string `yaml:"base_url,omitempty" validate:"omitempty,url"`
}

// MemoryConfig selects and locates the memory store backend.
type MemoryConfig struct {
	// Backend is "file" or "sqlite"
	Backend string `yaml:"backend" validate:"required,oneof=file sqlite"`

	// Path to the JSON document or SQLite database
	Path string `yaml:"path" validate:"required"`
}

// LoggingConfig controls the logger.
type LoggingConfig struct {
	Level string `yaml:"level,omitempty" validate:"omitempty,oneof=DEBUG INFO WARN ERROR FATAL"`

	// File receives a JSON-lines copy of the log when set
	File string `yaml:"file,omitempty"`
}

// GuidanceConfig optionally replaces the built-in guidance content. When
// WeakVariants is set it must contain exactly four variants.
type GuidanceConfig struct {
	WeakVariants []guidance.Variant `yaml:"weak_variants,omitempty" validate:"omitempty,len=4,dive"`
	StrongBase   string             `yaml:"strong_base,omitempty"`
}

// Default returns the configuration used when no file is supplied.
func Default() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider: "anthropic",
			ModelID:  "claude-sonnet-4-5",
		},
		Search: SearchConfig{
			Provider: "tavily",
		},
		Memory: MemoryConfig{
			Backend: "file",
			Path:    "agent_memory.json",
		},
		Logging: LoggingConfig{
			Level: "INFO",
		},
	}
}

// Load reads the YAML file at path over the defaults, applies environment
// fallbacks, and validates the result. An empty path loads defaults only.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.WithFields(
				errors.Wrap(err, errors.InvalidInput, "failed to read config file"),
				errors.Fields{"path": path})
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.WithFields(
				errors.Wrap(err, errors.InvalidInput, "failed to parse config file"),
				errors.Fields{"path": path})
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if c.LLM.APIKey == "" {
		c.LLM.APIKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if c.Search.APIKey == "" {
		c.Search.APIKey = os.Getenv("TAVILY_API_KEY")
	}
	if path := os.Getenv("FINSIGHT_MEMORY_PATH"); path != "" {
		c.Memory.Path = path
	}
}

// Validate checks the configuration against its struct tags.
func (c *Config) Validate() error {
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(err, errors.ValidationFailed, "invalid configuration")
	}
	return nil
}

// Selector builds the guidance selector from the configured content,
// defaulting any part that was not overridden.
func (c *Config) Selector() (*guidance.Selector, error) {
	variants := c.Guidance.WeakVariants
	if len(variants) == 0 {
		variants = guidance.DefaultVariants()
	}
	strongBase := c.Guidance.StrongBase
	if strongBase == "" {
		strongBase = guidance.DefaultStrongBase
	}
	return guidance.NewSelector(variants, strongBase)
}
