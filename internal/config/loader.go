package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

// ValidProviderNames lists the generation backends the service can
// construct.
var ValidProviderNames = []string{
	"ollama", "openai", "anthropic", "gemini", "deepseek", "mistral",
	"groq", "llamacpp", "llamafile",
}

// Defaults mirror the standalone service's out-of-the-box behaviour: a
// local Ollama backend and the production quality thresholds.
const (
	DefaultListenAddr     = ":8000"
	DefaultProvider       = "ollama"
	DefaultModel          = "qwen2.5:7b"
	DefaultMaxChunkLength = 1500
	DefaultChunkWorkers   = 2
	DefaultMinRatio       = 0.15
	DefaultMaxRatio       = 8.0
	DefaultForeignRatio   = 0.3
)

// Load reads the YAML configuration file at path and returns a validated
// [Config] with defaults applied. It is a convenience wrapper around
// [LoadFromReader].
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r, applies defaults, and
// validates the result. Useful in tests where configs are constructed from
// string literals.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	ApplyDefaults(cfg)
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyDefaults fills zero fields with production defaults.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.ListenAddr == "" {
		cfg.Server.ListenAddr = DefaultListenAddr
	}
	if cfg.Server.LogLevel == "" {
		cfg.Server.LogLevel = LogInfo
	}
	if cfg.LLM.Provider == "" {
		cfg.LLM.Provider = DefaultProvider
	}
	if cfg.LLM.Model == "" {
		cfg.LLM.Model = DefaultModel
	}
	if cfg.Generation.Baseline == (SamplingConfig{}) {
		cfg.Generation.Baseline = SamplingConfig{
			Temperature:   0.1,
			TopP:          0.8,
			MaxTokens:     2000,
			RepeatPenalty: 1.1,
		}
	}
	if cfg.Generation.Retry == (SamplingConfig{}) {
		cfg.Generation.Retry = SamplingConfig{
			Temperature:   0.05,
			TopP:          0.7,
			MaxTokens:     cfg.Generation.Baseline.MaxTokens,
			RepeatPenalty: 1.2,
		}
	}
	if cfg.Processing.MaxChunkLength == 0 {
		cfg.Processing.MaxChunkLength = DefaultMaxChunkLength
	}
	if cfg.Processing.ChunkWorkers == 0 {
		cfg.Processing.ChunkWorkers = DefaultChunkWorkers
	}
	if cfg.Processing.MinRatio == 0 {
		cfg.Processing.MinRatio = DefaultMinRatio
	}
	if cfg.Processing.MaxRatio == 0 {
		cfg.Processing.MaxRatio = DefaultMaxRatio
	}
	if cfg.Processing.MaxForeignRatio == 0 {
		cfg.Processing.MaxForeignRatio = DefaultForeignRatio
	}
	if cfg.Output.Dir == "" {
		cfg.Output.Dir = "."
	}
}

// Validate checks that cfg contains a coherent set of values. It returns a
// joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	if !cfg.Server.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("server.log_level %q is invalid; valid values: debug, info, warn, error", cfg.Server.LogLevel))
	}
	if !slices.Contains(ValidProviderNames, cfg.LLM.Provider) {
		errs = append(errs, fmt.Errorf("llm.provider %q is unknown; valid values: %v", cfg.LLM.Provider, ValidProviderNames))
	}
	if cfg.LLM.Model == "" {
		errs = append(errs, errors.New("llm.model is required"))
	}

	for name, s := range map[string]SamplingConfig{
		"generation.baseline": cfg.Generation.Baseline,
		"generation.retry":    cfg.Generation.Retry,
	} {
		if s.Temperature < 0 || s.Temperature > 2 {
			errs = append(errs, fmt.Errorf("%s.temperature %.2f is out of range [0, 2]", name, s.Temperature))
		}
		if s.TopP < 0 || s.TopP > 1 {
			errs = append(errs, fmt.Errorf("%s.top_p %.2f is out of range [0, 1]", name, s.TopP))
		}
		if s.MaxTokens < 0 {
			errs = append(errs, fmt.Errorf("%s.max_tokens %d must not be negative", name, s.MaxTokens))
		}
	}

	if cfg.Processing.MaxChunkLength < 100 {
		errs = append(errs, fmt.Errorf("processing.max_chunk_length %d is too small; minimum 100", cfg.Processing.MaxChunkLength))
	}
	if cfg.Processing.ChunkWorkers < 1 {
		errs = append(errs, fmt.Errorf("processing.chunk_workers %d must be at least 1", cfg.Processing.ChunkWorkers))
	}
	if cfg.Processing.MinRatio <= 0 || cfg.Processing.MaxRatio <= cfg.Processing.MinRatio {
		errs = append(errs, fmt.Errorf("processing ratio bounds [%.2f, %.2f] are not an increasing positive range",
			cfg.Processing.MinRatio, cfg.Processing.MaxRatio))
	}
	if cfg.Processing.MaxForeignRatio < 0 {
		errs = append(errs, fmt.Errorf("processing.max_foreign_ratio %.2f must not be negative", cfg.Processing.MaxForeignRatio))
	}

	return errors.Join(errs...)
}
