// Package llm defines the generation-service boundary for the protokol
// pipeline.
//
// A Provider wraps a text-generation backend (a local Ollama instance, the
// OpenAI API, or any backend reachable through the universal adapter) and
// exposes a single blocking round trip: one role-structured request in, one
// text response out. Providers perform no retries and no output validation —
// both belong to the formalization pipeline, which owns the retry budget and
// the quality gate.
//
// Implementors must be safe for concurrent use and must propagate context
// cancellation promptly.
package llm

import "context"

// Message is a single role-tagged message in a generation request.
type Message struct {
	// Role is one of "system", "user", or "assistant".
	Role string

	// Content is the text content of the message.
	Content string
}

// SamplingConfig carries the sampling parameters for one generation request.
// A fresh config is built for every attempt; the retry attempt uses strictly
// tighter values than the first.
type SamplingConfig struct {
	// Temperature controls output randomness. The pipeline uses low values
	// (0.1 baseline, 0.05 on retry) because protocol text must be stable.
	Temperature float64

	// TopP is the nucleus-sampling threshold.
	TopP float64

	// MaxTokens caps the number of completion tokens. Zero means the
	// backend default.
	MaxTokens int

	// RepeatPenalty discourages token repetition. Values above 1.0 penalise
	// repeats; not every backend supports it natively — adapters document
	// their mapping.
	RepeatPenalty float64
}

// CompletionRequest carries everything a Provider needs for one round trip.
type CompletionRequest struct {
	// SystemPrompt is the high-priority instruction block (formalization
	// rules or the extraction schema). Adapters that lack a dedicated
	// system field prepend it as a "system"-role message.
	SystemPrompt string

	// Messages is the ordered message list; for this pipeline it is a
	// single "user" message carrying the text to transform.
	Messages []Message

	// Sampling holds the sampling parameters for this attempt.
	Sampling SamplingConfig
}

// Usage holds token accounting returned by the backend, when available.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// CompletionResponse is the result of one generation round trip.
type CompletionResponse struct {
	// Content is the full text of the model's reply.
	Content string

	// Usage contains token accounting; zero when the backend does not
	// report it.
	Usage Usage
}

// Provider is the abstraction over any text-generation backend.
type Provider interface {
	// Complete sends req to the model and waits for the full response.
	//
	// Errors are classified: [ErrModelNotFound] and [ErrUnavailable]
	// (matched via errors.Is) indicate a setup problem — the model is not
	// installed or the service cannot be reached — and are never worth
	// retrying from the pipeline. Any other error is a transport-level
	// generation failure.
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)

	// Verify probes the backend once at startup: it confirms the service
	// is reachable and the configured model exists. Returns
	// [ErrModelNotFound] or [ErrUnavailable] accordingly.
	Verify(ctx context.Context) error
}
