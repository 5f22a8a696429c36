package formalize

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/sync/errgroup"

	"github.com/munkhbat-dev/protokol/internal/observe"
	"github.com/munkhbat-dev/protokol/pkg/provider/llm"
)

// taskFormalize tags formalization attempts in metrics and logs.
const taskFormalize = "formalize"

// Config carries the pipeline tunables. Zero fields are filled by
// [DefaultConfig] values in [New].
type Config struct {
	// MaxChunkLength is the chunk-splitting threshold in runes.
	MaxChunkLength int

	// ChunkWorkers bounds concurrent chunk generations.
	ChunkWorkers int

	// Baseline is the first-attempt sampling configuration.
	Baseline llm.SamplingConfig

	// Retry is the tightened second-attempt sampling configuration.
	Retry llm.SamplingConfig
}

// DefaultConfig returns the production pipeline tunables: conservative
// baseline sampling, tightened further on retry.
func DefaultConfig() Config {
	return Config{
		MaxChunkLength: 1500,
		ChunkWorkers:   2,
		Baseline: llm.SamplingConfig{
			Temperature:   0.1,
			TopP:          0.8,
			MaxTokens:     2000,
			RepeatPenalty: 1.1,
		},
		Retry: llm.SamplingConfig{
			Temperature:   0.05,
			TopP:          0.7,
			MaxTokens:     2000,
			RepeatPenalty: 1.2,
		},
	}
}

// Formalizer turns normalized spoken-transcript text into formal protocol
// text: chunk splitting, gated generation with exactly one quality retry per
// chunk, and final post-processing. Safe for concurrent use.
type Formalizer struct {
	provider llm.Provider
	gate     Gate
	cfg      Config
	metrics  *observe.Metrics
}

// New creates a Formalizer. metrics may be nil, in which case the
// package-level default instruments are used. Zero Config fields fall back
// to [DefaultConfig].
func New(provider llm.Provider, gate Gate, cfg Config, metrics *observe.Metrics) *Formalizer {
	def := DefaultConfig()
	if cfg.MaxChunkLength <= 0 {
		cfg.MaxChunkLength = def.MaxChunkLength
	}
	if cfg.ChunkWorkers <= 0 {
		cfg.ChunkWorkers = def.ChunkWorkers
	}
	if cfg.Baseline == (llm.SamplingConfig{}) {
		cfg.Baseline = def.Baseline
	}
	if cfg.Retry == (llm.SamplingConfig{}) {
		cfg.Retry = def.Retry
	}
	if metrics == nil {
		metrics = observe.DefaultMetrics()
	}
	return &Formalizer{provider: provider, gate: gate, cfg: cfg, metrics: metrics}
}

// Formalize runs the full pipeline on raw transcript text: normalization,
// chunk splitting, gated generation per chunk, and post-processing of the
// joined result. Chunk results keep source order regardless of completion
// order. The first failing chunk fails the whole call.
func (f *Formalizer) Formalize(ctx context.Context, text string) (string, error) {
	ctx, span := observe.StartSpan(ctx, "formalize")
	defer span.End()

	norm := Normalize(text)
	if norm == "" {
		return "", fmt.Errorf("formalize: transcript is empty after normalization")
	}

	chunks := SplitChunks(norm, f.cfg.MaxChunkLength)
	results := make([]string, len(chunks))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.cfg.ChunkWorkers)
	for i, chunk := range chunks {
		g.Go(func() error {
			out, err := f.formalizeChunk(gctx, i, chunk)
			if err != nil {
				return err
			}
			results[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return "", err
	}

	f.metrics.ChunksProcessed.Add(ctx, int64(len(chunks)))
	return PostProcess(strings.Join(results, "\n\n")), nil
}

// formalizeChunk runs the two-attempt generation state machine for one
// chunk. Transport errors propagate immediately and never consume the
// quality retry; a gate rejection triggers exactly one retry with tightened
// sampling and a corrective addendum built from the first attempt's
// violations.
func (f *Formalizer) formalizeChunk(ctx context.Context, idx int, chunk string) (string, error) {
	ctx, span := observe.StartSpan(ctx, "formalize.chunk")
	defer span.End()
	span.SetAttributes(
		attribute.Int("chunk.index", idx),
		attribute.Int("chunk.runes", utf8.RuneCountInString(chunk)),
	)

	log := observe.Logger(ctx).With(slog.Int("chunk", idx))

	candidate, violations, err := f.attempt(ctx, chunk, f.cfg.Baseline, "", 1)
	if err != nil {
		return "", err
	}
	if candidate != "" {
		return candidate, nil
	}

	log.Warn("quality gate rejected candidate, retrying with tightened sampling",
		slog.Int("violations", len(violations)),
		slog.String("first", violations[0].String()),
	)

	candidate, violations, err = f.attempt(ctx, chunk, f.cfg.Retry, correctiveInstruction(violations), 2)
	if err != nil {
		return "", err
	}
	if candidate != "" {
		log.Info("retry accepted")
		return candidate, nil
	}

	return "", &QualityError{Chunk: idx, Violations: violations}
}

// attempt performs one generation and gate evaluation. On acceptance it
// returns the trimmed candidate; on rejection it returns "" with the
// violations; a provider error is returned as-is.
func (f *Formalizer) attempt(ctx context.Context, chunk string, sampling llm.SamplingConfig, addendum string, n int) (string, []Violation, error) {
	userPrompt := buildUserPrompt(chunk)
	if addendum != "" {
		userPrompt += "\n\n" + addendum
	}

	start := time.Now()
	resp, err := f.provider.Complete(ctx, llm.CompletionRequest{
		SystemPrompt: formalizeSystemPrompt,
		Messages:     []llm.Message{{Role: "user", Content: userPrompt}},
		Sampling:     sampling,
	})
	elapsed := time.Since(start)

	if err != nil {
		f.metrics.RecordAttempt(ctx, taskFormalize, n, "error")
		f.metrics.RecordProviderError(ctx, taskFormalize, llm.ErrorKind(err))
		f.metrics.GenerationDuration.Record(ctx, elapsed.Seconds(), metric.WithAttributes(
			observe.Attr("task", taskFormalize), observe.Attr("status", "error")))
		return "", nil, err
	}

	candidate := strings.TrimSpace(resp.Content)
	accepted, violations := f.gate.Evaluate(chunk, candidate)

	for _, v := range violations {
		severity := "advisory"
		if f.gate.Rejects(v.Kind) {
			severity = "rejecting"
		}
		f.metrics.RecordViolation(ctx, string(v.Kind), severity)
	}

	status := "accepted"
	if !accepted {
		status = "rejected"
	}
	f.metrics.RecordAttempt(ctx, taskFormalize, n, status)
	f.metrics.GenerationDuration.Record(ctx, elapsed.Seconds(), metric.WithAttributes(
		observe.Attr("task", taskFormalize), observe.Attr("status", status)))

	if !accepted {
		return "", violations, nil
	}
	return candidate, violations, nil
}
