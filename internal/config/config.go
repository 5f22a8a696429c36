// Package config provides the configuration schema and loader for the
// Protokol service.
package config

// LogLevel controls log verbosity for the Protokol server.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a recognised log level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

// Config is the root configuration structure for Protokol. It is typically
// loaded from a YAML file using [Load] or [LoadFromReader].
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	LLM        LLMConfig        `yaml:"llm"`
	Generation GenerationConfig `yaml:"generation"`
	Processing ProcessingConfig `yaml:"processing"`
	Archive    ArchiveConfig    `yaml:"archive"`
	Output     OutputConfig     `yaml:"output"`
}

// ServerConfig holds network and logging settings.
type ServerConfig struct {
	// ListenAddr is the TCP address the server listens on (e.g., ":8000").
	ListenAddr string `yaml:"listen_addr"`

	// LogLevel controls verbosity.
	LogLevel LogLevel `yaml:"log_level"`
}

// LLMConfig selects and configures the generation backend.
type LLMConfig struct {
	// Provider selects the backend: "ollama" (native, default), "openai",
	// or any name supported by the universal adapter ("anthropic",
	// "gemini", "deepseek", "mistral", "groq", "llamacpp", "llamafile").
	Provider string `yaml:"provider"`

	// Model is the model identifier (e.g., "qwen2.5:7b").
	Model string `yaml:"model"`

	// APIKey authenticates against hosted backends. Local backends ignore
	// it.
	APIKey string `yaml:"api_key"`

	// BaseURL overrides the backend's default endpoint.
	BaseURL string `yaml:"base_url"`
}

// SamplingConfig is one set of generation sampling parameters.
type SamplingConfig struct {
	Temperature   float64 `yaml:"temperature"`
	TopP          float64 `yaml:"top_p"`
	MaxTokens     int     `yaml:"max_tokens"`
	RepeatPenalty float64 `yaml:"repeat_penalty"`
}

// GenerationConfig holds the baseline and retry sampling parameters.
type GenerationConfig struct {
	// Baseline is the first-attempt sampling configuration.
	Baseline SamplingConfig `yaml:"baseline"`

	// Retry is the tightened sampling configuration for the single quality
	// retry.
	Retry SamplingConfig `yaml:"retry"`
}

// ProcessingConfig holds chunking and quality-gate tunables.
type ProcessingConfig struct {
	// MaxChunkLength is the chunk-splitting threshold in runes.
	MaxChunkLength int `yaml:"max_chunk_length"`

	// ChunkWorkers bounds concurrent chunk generations.
	ChunkWorkers int `yaml:"chunk_workers"`

	// MinRatio and MaxRatio bound candidate length relative to the source.
	MinRatio float64 `yaml:"min_ratio"`
	MaxRatio float64 `yaml:"max_ratio"`

	// MaxForeignRatio bounds Latin letters relative to Cyrillic letters.
	MaxForeignRatio float64 `yaml:"max_foreign_ratio"`

	// StrictPreservation escalates name/date preservation findings from
	// advisory to rejecting.
	StrictPreservation bool `yaml:"strict_preservation"`
}

// ArchiveConfig configures the optional Postgres protocol archive.
type ArchiveConfig struct {
	// PostgresDSN is the connection string. Empty disables archiving.
	PostgresDSN string `yaml:"postgres_dsn"`
}

// OutputConfig configures document export.
type OutputConfig struct {
	// Dir is the directory DOCX exports are written to. Default: ".".
	Dir string `yaml:"dir"`
}
