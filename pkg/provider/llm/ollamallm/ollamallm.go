// Package ollamallm provides the default llm.Provider backed by a local
// Ollama instance via the native API client.
//
// Unlike the universal adapter, the native client carries every sampling
// option the pipeline tunes between attempts — temperature, top_p,
// num_predict, and repeat_penalty — which is why this is the primary
// backend for protocol generation.
package ollamallm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	ollama "github.com/ollama/ollama/api"

	"github.com/munkhbat-dev/protokol/pkg/provider/llm"
)

// defaultHost is the standard Ollama listen address.
const defaultHost = "http://localhost:11434"

// Provider implements llm.Provider using the Ollama chat API.
type Provider struct {
	client *ollama.Client
	model  string
}

// Option is a functional option for configuring a [Provider].
type Option func(*config)

type config struct {
	host    string
	timeout time.Duration
}

// WithHost overrides the Ollama base URL. Default: http://localhost:11434.
func WithHost(host string) Option {
	return func(c *config) {
		c.host = host
	}
}

// WithTimeout sets a per-request HTTP timeout. Default: 120s — local models
// on modest hardware can legitimately take that long for a full chunk.
func WithTimeout(d time.Duration) Option {
	return func(c *config) {
		c.timeout = d
	}
}

// New constructs an Ollama-backed Provider for the given model
// (e.g. "qwen2.5:7b").
func New(model string, opts ...Option) (*Provider, error) {
	if model == "" {
		return nil, fmt.Errorf("ollamallm: model must not be empty")
	}

	cfg := &config{
		host:    defaultHost,
		timeout: 120 * time.Second,
	}
	for _, o := range opts {
		o(cfg)
	}

	u, err := url.Parse(cfg.host)
	if err != nil {
		return nil, fmt.Errorf("ollamallm: invalid host %q: %w", cfg.host, err)
	}

	client := ollama.NewClient(u, &http.Client{Timeout: cfg.timeout})
	return &Provider{client: client, model: model}, nil
}

// Complete implements llm.Provider. The response is accumulated from the
// streaming callback into a single string.
func (p *Provider) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	chatReq := &ollama.ChatRequest{
		Model:    p.model,
		Messages: buildMessages(req),
		Options:  buildOptions(req.Sampling),
	}

	var sb strings.Builder
	var last ollama.ChatResponse
	err := p.client.Chat(ctx, chatReq, func(r ollama.ChatResponse) error {
		sb.WriteString(r.Message.Content)
		last = r
		return nil
	})
	if err != nil {
		return nil, p.classify(err)
	}

	resp := &llm.CompletionResponse{Content: sb.String()}
	if last.Done {
		resp.Usage = llm.Usage{
			PromptTokens:     last.Metrics.PromptEvalCount,
			CompletionTokens: last.Metrics.EvalCount,
			TotalTokens:      last.Metrics.PromptEvalCount + last.Metrics.EvalCount,
		}
	}
	return resp, nil
}

// Verify implements llm.Provider. It asks the server to describe the
// configured model: a 404 means the model is not pulled, a connection error
// means the server is not running.
func (p *Provider) Verify(ctx context.Context) error {
	_, err := p.client.Show(ctx, &ollama.ShowRequest{Model: p.model})
	if err != nil {
		return p.classify(err)
	}
	return nil
}

// buildMessages converts the request into Ollama chat messages, prepending
// the system prompt as a "system"-role message.
func buildMessages(req llm.CompletionRequest) []ollama.Message {
	msgs := make([]ollama.Message, 0, len(req.Messages)+1)
	if req.SystemPrompt != "" {
		msgs = append(msgs, ollama.Message{Role: "system", Content: req.SystemPrompt})
	}
	for _, m := range req.Messages {
		msgs = append(msgs, ollama.Message{Role: m.Role, Content: m.Content})
	}
	return msgs
}

// buildOptions maps the sampling config onto Ollama runtime options.
// Zero values are omitted so the server defaults apply.
func buildOptions(s llm.SamplingConfig) map[string]any {
	opts := map[string]any{}
	if s.Temperature != 0 {
		opts["temperature"] = s.Temperature
	}
	if s.TopP != 0 {
		opts["top_p"] = s.TopP
	}
	if s.MaxTokens > 0 {
		opts["num_predict"] = s.MaxTokens
	}
	if s.RepeatPenalty != 0 {
		opts["repeat_penalty"] = s.RepeatPenalty
	}
	return opts
}

// classify maps client errors onto the provider error taxonomy. Context
// cancellation passes through untouched.
func (p *Provider) classify(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var statusErr ollama.StatusError
	if errors.As(err, &statusErr) {
		if statusErr.StatusCode == http.StatusNotFound {
			return fmt.Errorf("%w: model %q is not installed (run: ollama pull %s)",
				llm.ErrModelNotFound, p.model, p.model)
		}
		return fmt.Errorf("ollamallm: server returned status %d: %w", statusErr.StatusCode, err)
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return fmt.Errorf("%w: cannot reach ollama (run: ollama serve): %v", llm.ErrUnavailable, err)
	}

	// Older server builds report a missing model as a plain error string.
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "not found") || strings.Contains(msg, "404") {
		return fmt.Errorf("%w: model %q is not installed (run: ollama pull %s)",
			llm.ErrModelNotFound, p.model, p.model)
	}

	return fmt.Errorf("ollamallm: chat: %w", err)
}
