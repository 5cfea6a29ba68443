package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/iancoleman/strcase"
	"gopkg.in/yaml.v3"
)

// DefaultNameHints are property names whose string values are treated as
// human-readable text regardless of their shape.
var DefaultNameHints = []string{
	"title", "displaytext", "subtitle", "description", "summary", "markdown", "body", "content", "text",
}

// Output formats
const (
	FormatJSON   = "json"
	FormatPretty = "pretty"
	FormatText   = "text"
)

// Config represents the complete configuration for jsonlens
type Config struct {
	Classifier ClassifierConfig `yaml:"classifier"`
	Serve      ServeConfig      `yaml:"serve"`
	Output     OutputConfig     `yaml:"output"`
	Log        LogConfig        `yaml:"log"`
}

// ClassifierConfig controls the human-text heuristics
type ClassifierConfig struct {
	NameHints      []string `yaml:"name_hints"`
	MinTokenLength int      `yaml:"min_token_length"`
	LongTextLength int      `yaml:"long_text_length"`
}

// ServeConfig controls the stdio tool host
type ServeConfig struct {
	Concurrency int `yaml:"concurrency"`
}

// OutputConfig controls how CLI results are rendered
type OutputConfig struct {
	Format string `yaml:"format"`
	Color  bool   `yaml:"color"`
}

// LogConfig controls the zap logger
type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// NewConfig creates a new Config with default values
func NewConfig() *Config {
	return &Config{
		Classifier: ClassifierConfig{
			NameHints:      append([]string(nil), DefaultNameHints...),
			MinTokenLength: 4,
			LongTextLength: 20,
		},
		Serve: ServeConfig{
			Concurrency: 4,
		},
		Output: OutputConfig{
			Format: FormatJSON,
			Color:  true,
		},
		Log: LogConfig{
			Level:       "info",
			Development: false,
		},
	}
}

// LoadConfig loads configuration from a YAML file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Start with defaults
	cfg := NewConfig()

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file: %w", err)
	}

	return cfg, nil
}

// FindConfigFile searches for a config file in current directory and parents
func FindConfigFile() string {
	configNames := []string{".jsonlens.yml", ".jsonlens.yaml", "jsonlens.yml", "jsonlens.yaml"}

	currentDir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		for _, name := range configNames {
			configPath := filepath.Join(currentDir, name)
			if _, err := os.Stat(configPath); err == nil {
				return configPath
			}
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			break
		}
		currentDir = parentDir
	}

	return ""
}

// Validate checks that every setting is usable
func (c *Config) Validate() error {
	if c.Classifier.MinTokenLength < 1 {
		return fmt.Errorf("classifier.min_token_length must be positive, got %d", c.Classifier.MinTokenLength)
	}
	if c.Classifier.LongTextLength < 1 {
		return fmt.Errorf("classifier.long_text_length must be positive, got %d", c.Classifier.LongTextLength)
	}
	if c.Serve.Concurrency < 1 {
		return fmt.Errorf("serve.concurrency must be positive, got %d", c.Serve.Concurrency)
	}
	switch c.Output.Format {
	case FormatJSON, FormatPretty, FormatText:
	default:
		return fmt.Errorf("output.format must be one of json, pretty, text, got %q", c.Output.Format)
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be one of debug, info, warn, error, got %q", c.Log.Level)
	}
	return nil
}

// NormalizedHints returns the set of lower-cased hint forms path segments
// are matched against. Each hint is kept as written and also folded with
// its word separators dropped, so the hint "display_text" matches the keys
// "display_text", "displayText" and "DisplayText".
func (c ClassifierConfig) NormalizedHints() map[string]struct{} {
	hints := make(map[string]struct{}, len(c.NameHints))
	for _, hint := range c.NameHints {
		lowered := strings.ToLower(strings.TrimSpace(hint))
		if lowered == "" {
			continue
		}
		hints[lowered] = struct{}{}
		if folded := NormalizeHint(hint); folded != "" {
			hints[folded] = struct{}{}
		}
	}
	return hints
}

// NormalizeHint folds a single hint to lower case without word separators.
func NormalizeHint(hint string) string {
	return strings.ToLower(strcase.ToCamel(strings.TrimSpace(hint)))
}

// LoadConfigWithCLI loads config with CLI argument precedence
func LoadConfigWithCLI(configPath, cliFormat string, cliNoColor, cliDebug bool) (*Config, error) {
	cfg := NewConfig()

	if configPath != "" {
		fileConfig, err := LoadConfig(configPath)
		if err != nil {
			return nil, err
		}
		cfg = fileConfig
	}

	if cliFormat != "" {
		cfg.Output.Format = cliFormat
	}
	if cliNoColor {
		cfg.Output.Color = false
	}
	if cliDebug {
		cfg.Log.Level = "debug"
		cfg.Log.Development = true
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
