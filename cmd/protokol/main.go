// Command protokol serves the Mongolian meeting-protocol generation API, or
// runs the pipeline once over a transcript file with -input.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	anyllmlib "github.com/mozilla-ai/any-llm-go"

	"github.com/munkhbat-dev/protokol/internal/actions"
	"github.com/munkhbat-dev/protokol/internal/api"
	"github.com/munkhbat-dev/protokol/internal/archive"
	"github.com/munkhbat-dev/protokol/internal/config"
	"github.com/munkhbat-dev/protokol/internal/entity"
	"github.com/munkhbat-dev/protokol/internal/formalize"
	"github.com/munkhbat-dev/protokol/internal/health"
	"github.com/munkhbat-dev/protokol/internal/observe"
	"github.com/munkhbat-dev/protokol/internal/protocol"
	"github.com/munkhbat-dev/protokol/pkg/provider/llm"
	"github.com/munkhbat-dev/protokol/pkg/provider/llm/anyllm"
	"github.com/munkhbat-dev/protokol/pkg/provider/llm/ollamallm"
	"github.com/munkhbat-dev/protokol/pkg/provider/llm/openai"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	inputPath := flag.String("input", "", "transcript file for one-shot mode; when empty the HTTP server starts")
	listenAddr := flag.String("listen", "", "override server.listen_addr from the config")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "protokol: config file %q not found — copy configs/example.yaml to get started\n", *configPath)
		} else {
			fmt.Fprintf(os.Stderr, "protokol: %v\n", err)
		}
		return 1
	}
	if *listenAddr != "" {
		cfg.Server.ListenAddr = *listenAddr
	}

	slog.SetDefault(newLogger(cfg.Server.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := observe.InitProvider(ctx, observe.ProviderConfig{ServiceName: "protokol"})
	if err != nil {
		slog.Error("failed to initialise telemetry", "err", err)
		return 1
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTelemetry(sctx); err != nil {
			slog.Warn("telemetry shutdown error", "err", err)
		}
	}()

	provider, err := buildProvider(cfg.LLM)
	if err != nil {
		slog.Error("failed to build LLM provider", "provider", cfg.LLM.Provider, "err", err)
		return 1
	}

	slog.Info("verifying LLM backend", "provider", cfg.LLM.Provider, "model", cfg.LLM.Model)
	if err := provider.Verify(ctx); err != nil {
		// Setup errors carry their own remediation text ("run: ollama pull …").
		slog.Error("LLM backend is not usable", "err", err)
		return 1
	}

	metrics := observe.DefaultMetrics()
	formalizer := formalize.New(provider,
		formalize.Gate{
			MinRatio:           cfg.Processing.MinRatio,
			MaxRatio:           cfg.Processing.MaxRatio,
			MaxForeignRatio:    cfg.Processing.MaxForeignRatio,
			StrictPreservation: cfg.Processing.StrictPreservation,
		},
		formalize.Config{
			MaxChunkLength: cfg.Processing.MaxChunkLength,
			ChunkWorkers:   cfg.Processing.ChunkWorkers,
			Baseline:       samplingFromConfig(cfg.Generation.Baseline),
			Retry:          samplingFromConfig(cfg.Generation.Retry),
		},
		metrics)
	extractor := actions.NewExtractor(provider, metrics)

	if *inputPath != "" {
		return runOnce(ctx, formalizer, extractor, cfg, *inputPath)
	}
	return serve(ctx, formalizer, extractor, provider, cfg, metrics)
}

// runOnce formalizes a single transcript file, writes the DOCX into the
// configured output directory, and prints the protocol text to stdout. The
// file is either a JSON document with a "text" field or the raw transcript.
func runOnce(ctx context.Context, f *formalize.Formalizer, e *actions.Extractor, cfg *config.Config, path string) int {
	raw, err := os.ReadFile(path)
	if err != nil {
		slog.Error("failed to read transcript", "path", path, "err", err)
		return 1
	}
	transcript := string(raw)
	var wrapped struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(raw, &wrapped); err == nil && wrapped.Text != "" {
		transcript = wrapped.Text
	}

	cleaned := formalize.Normalize(transcript)

	body, err := f.Formalize(ctx, cleaned)
	if err != nil {
		slog.Error("formalization failed", "err", err)
		return 1
	}

	// Extraction reads the cleaned transcript so names and dates are still
	// present verbatim for the provenance checks.
	items, err := e.Extract(ctx, cleaned)
	if err != nil {
		slog.Error("action extraction failed", "err", err)
		return 1
	}

	doc := protocol.Build("", "", nil, body, items, entity.Extract(transcript))
	out, err := protocol.SaveDOCX(cfg.Output.Dir, doc)
	if err != nil {
		slog.Error("docx export failed", "err", err)
		return 1
	}

	fmt.Println(body)
	slog.Info("protocol generated",
		"file", out,
		"action_items", len(items),
		"with_deadline", doc.Summary.WithDeadline)
	return 0
}

// serve runs the HTTP API until the signal context is cancelled.
func serve(ctx context.Context, f *formalize.Formalizer, e *actions.Extractor, provider llm.Provider, cfg *config.Config, metrics *observe.Metrics) int {
	checkers := []health.Checker{{Name: "llm", Check: provider.Verify}}

	var arch api.Archiver
	if cfg.Archive.PostgresDSN != "" {
		store, err := archive.NewStore(ctx, cfg.Archive.PostgresDSN)
		if err != nil {
			slog.Error("failed to open protocol archive", "err", err)
			return 1
		}
		defer store.Close()
		arch = store
		checkers = append(checkers, health.Checker{Name: "archive", Check: store.Ping})
		slog.Info("protocol archive enabled")
	}

	srv := api.NewServer(f, e, arch, health.New(checkers...), cfg.Output.Dir, metrics)
	httpSrv := &http.Server{
		Addr:              cfg.Server.ListenAddr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", cfg.Server.ListenAddr)
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		slog.Error("server error", "err", err)
		return 1
	case <-ctx.Done():
	}

	slog.Info("shutdown signal received, stopping")
	sctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(sctx); err != nil {
		slog.Error("shutdown error", "err", err)
		return 1
	}
	slog.Info("goodbye")
	return 0
}

// buildProvider constructs the configured generation backend: the native
// Ollama adapter (full sampling surface), the OpenAI adapter, or the
// universal adapter for everything else.
func buildProvider(cfg config.LLMConfig) (llm.Provider, error) {
	switch cfg.Provider {
	case "ollama":
		var opts []ollamallm.Option
		if cfg.BaseURL != "" {
			opts = append(opts, ollamallm.WithHost(cfg.BaseURL))
		}
		return ollamallm.New(cfg.Model, opts...)
	case "openai":
		var opts []openai.Option
		if cfg.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
		}
		return openai.New(cfg.APIKey, cfg.Model, opts...)
	default:
		var opts []anyllmlib.Option
		if cfg.APIKey != "" {
			opts = append(opts, anyllmlib.WithAPIKey(cfg.APIKey))
		}
		if cfg.BaseURL != "" {
			opts = append(opts, anyllmlib.WithBaseURL(cfg.BaseURL))
		}
		return anyllm.New(cfg.Provider, cfg.Model, opts...)
	}
}

func samplingFromConfig(s config.SamplingConfig) llm.SamplingConfig {
	return llm.SamplingConfig{
		Temperature:   s.Temperature,
		TopP:          s.TopP,
		MaxTokens:     s.MaxTokens,
		RepeatPenalty: s.RepeatPenalty,
	}
}

func newLogger(level config.LogLevel) *slog.Logger {
	var lvl slog.Level
	switch level {
	case config.LogDebug:
		lvl = slog.LevelDebug
	case config.LogWarn:
		lvl = slog.LevelWarn
	case config.LogError:
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
