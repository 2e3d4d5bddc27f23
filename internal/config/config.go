// Package config loads and validates the kbforge configuration.
// Configuration comes from a YAML file (.kbforge.yaml) layered over
// defaults, with a small set of environment variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the project-local configuration file name.
const DefaultConfigFile = ".kbforge.yaml"

// Config represents the complete kbforge configuration.
type Config struct {
	Version      int              `yaml:"version" json:"version"`
	Paths        PathsConfig      `yaml:"paths" json:"paths"`
	Repositories []string         `yaml:"repositories" json:"repositories"`
	Extraction   ExtractionConfig `yaml:"extraction" json:"extraction"`
	Embeddings   EmbeddingsConfig `yaml:"embeddings" json:"embeddings"`
}

// PathsConfig locates the upstream repositories and the knowledge-base
// output directory.
type PathsConfig struct {
	// UpstreamDir holds the cloned source repositories, one per subdirectory.
	UpstreamDir string `yaml:"upstream_dir" json:"upstream_dir"`
	// KBDir is the root of the persisted knowledge base.
	KBDir string `yaml:"kb_dir" json:"kb_dir"`
}

// ExtractionConfig bounds the extraction stage.
type ExtractionConfig struct {
	// SupportedExtensions limits which files are scanned.
	SupportedExtensions []string `yaml:"supported_extensions" json:"supported_extensions"`
	// MaxFileSize is the largest file read, in bytes.
	MaxFileSize int64 `yaml:"max_file_size" json:"max_file_size"`
	// Workers is the number of concurrent extraction workers (0 = NumCPU).
	Workers int `yaml:"workers" json:"workers"`
}

// EmbeddingsConfig configures the embedding provider.
type EmbeddingsConfig struct {
	// Provider selects the embedding backend: "ollama" or "termfreq".
	Provider string `yaml:"provider" json:"provider"`
	// Model is the Ollama embedding model name.
	Model string `yaml:"model" json:"model"`
	// OllamaHost is the Ollama API endpoint.
	OllamaHost string `yaml:"ollama_host" json:"ollama_host"`
	// BatchSize is the number of texts embedded per request.
	BatchSize int `yaml:"batch_size" json:"batch_size"`
	// MaxFeatures bounds the term-frequency fallback vocabulary.
	MaxFeatures int `yaml:"max_features" json:"max_features"`
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		Version: 1,
		Paths: PathsConfig{
			UpstreamDir: "upstream",
			KBDir:       ".kbforge",
		},
		Extraction: ExtractionConfig{
			SupportedExtensions: []string{
				".py", ".ts", ".js", ".go", ".rs", ".ex",
				".md", ".rst", ".json", ".yaml", ".yml",
			},
			MaxFileSize: 10 * 1024 * 1024,
			Workers:     0,
		},
		Embeddings: EmbeddingsConfig{
			Provider:    "ollama",
			Model:       "nomic-embed-text",
			OllamaHost:  "http://localhost:11434",
			BatchSize:   32,
			MaxFeatures: 1000,
		},
	}
}

// Load reads the configuration file at path, layering it over defaults and
// applying environment overrides. A missing file yields pure defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		path = DefaultConfigFile
	}
	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// Defaults only.
	case err != nil:
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides applies environment variables, which take precedence
// over file values.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("KBFORGE_EMBEDDER"); v != "" {
		c.Embeddings.Provider = strings.ToLower(v)
	}
	if v := os.Getenv("KBFORGE_OLLAMA_HOST"); v != "" {
		c.Embeddings.OllamaHost = v
	}
	if v := os.Getenv("KBFORGE_KB_DIR"); v != "" {
		c.Paths.KBDir = v
	}
}

// Validate checks configuration invariants.
func (c *Config) Validate() error {
	if c.Paths.KBDir == "" {
		return fmt.Errorf("paths.kb_dir must not be empty")
	}
	if c.Paths.UpstreamDir == "" {
		return fmt.Errorf("paths.upstream_dir must not be empty")
	}
	if c.Extraction.MaxFileSize <= 0 {
		return fmt.Errorf("extraction.max_file_size must be positive, got %d", c.Extraction.MaxFileSize)
	}
	if c.Extraction.Workers < 0 {
		return fmt.Errorf("extraction.workers must not be negative, got %d", c.Extraction.Workers)
	}
	switch c.Embeddings.Provider {
	case "ollama", "termfreq":
	default:
		return fmt.Errorf("embeddings.provider must be ollama or termfreq, got %q", c.Embeddings.Provider)
	}
	if c.Embeddings.BatchSize <= 0 {
		return fmt.Errorf("embeddings.batch_size must be positive, got %d", c.Embeddings.BatchSize)
	}
	if c.Embeddings.MaxFeatures <= 0 {
		return fmt.Errorf("embeddings.max_features must be positive, got %d", c.Embeddings.MaxFeatures)
	}
	return nil
}

// Save writes the configuration as YAML to path.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}
