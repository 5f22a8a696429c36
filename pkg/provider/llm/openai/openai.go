// Package openai provides an llm.Provider backed by the OpenAI API.
package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
	"github.com/openai/openai-go/shared"

	"github.com/munkhbat-dev/protokol/pkg/provider/llm"
)

// Provider implements llm.Provider using the OpenAI chat completions API.
type Provider struct {
	client oai.Client
	model  string
}

// config holds optional configuration for the provider.
type config struct {
	baseURL string
	timeout time.Duration
}

// Option is a functional option for Provider.
type Option func(*config)

// WithBaseURL overrides the default OpenAI API base URL. Useful for
// OpenAI-compatible gateways.
func WithBaseURL(url string) Option {
	return func(c *config) {
		c.baseURL = url
	}
}

// WithTimeout sets a per-request HTTP timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *config) {
		c.timeout = d
	}
}

// New constructs a new OpenAI-backed Provider.
func New(apiKey string, model string, opts ...Option) (*Provider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai: apiKey must not be empty")
	}
	if model == "" {
		return nil, fmt.Errorf("openai: model must not be empty")
	}

	cfg := &config{}
	for _, o := range opts {
		o(cfg)
	}

	reqOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
	}
	if cfg.baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(cfg.baseURL))
	}
	if cfg.timeout > 0 {
		reqOpts = append(reqOpts, option.WithHTTPClient(&http.Client{
			Timeout: cfg.timeout,
		}))
	}

	client := oai.NewClient(reqOpts...)
	return &Provider{client: client, model: model}, nil
}

// Complete implements llm.Provider.
func (p *Provider) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	resp, err := p.client.Chat.Completions.New(ctx, p.buildParams(req))
	if err != nil {
		return nil, p.classify(err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("openai: empty choices in response")
	}

	choice := resp.Choices[0]
	return &llm.CompletionResponse{
		Content: choice.Message.Content,
		Usage: llm.Usage{
			PromptTokens:     int(resp.Usage.PromptTokens),
			CompletionTokens: int(resp.Usage.CompletionTokens),
			TotalTokens:      int(resp.Usage.TotalTokens),
		},
	}, nil
}

// Verify implements llm.Provider by fetching the model's metadata.
func (p *Provider) Verify(ctx context.Context) error {
	_, err := p.client.Models.Get(ctx, p.model)
	if err != nil {
		return p.classify(err)
	}
	return nil
}

// buildParams converts a CompletionRequest into OpenAI SDK params.
//
// The API has no repeat_penalty; the Ollama-style multiplicative penalty is
// approximated as an additive frequency penalty of (RepeatPenalty - 1.0),
// which preserves the retry controller's "penalise repeats harder on the
// second attempt" intent.
func (p *Provider) buildParams(req llm.CompletionRequest) oai.ChatCompletionNewParams {
	var messages []oai.ChatCompletionMessageParamUnion

	if req.SystemPrompt != "" {
		messages = append(messages, oai.SystemMessage(req.SystemPrompt))
	}
	for _, m := range req.Messages {
		switch m.Role {
		case "system":
			messages = append(messages, oai.SystemMessage(m.Content))
		case "assistant":
			messages = append(messages, oai.AssistantMessage(m.Content))
		default:
			messages = append(messages, oai.UserMessage(m.Content))
		}
	}

	params := oai.ChatCompletionNewParams{
		Model:    shared.ChatModel(p.model),
		Messages: messages,
	}

	s := req.Sampling
	if s.Temperature != 0 {
		params.Temperature = param.NewOpt(s.Temperature)
	}
	if s.TopP != 0 {
		params.TopP = param.NewOpt(s.TopP)
	}
	if s.MaxTokens > 0 {
		params.MaxCompletionTokens = param.NewOpt(int64(s.MaxTokens))
	}
	if s.RepeatPenalty != 0 {
		fp := s.RepeatPenalty - 1.0
		if fp > 2.0 {
			fp = 2.0
		}
		if fp < -2.0 {
			fp = -2.0
		}
		params.FrequencyPenalty = param.NewOpt(fp)
	}

	return params
}

// classify maps SDK errors onto the provider error taxonomy.
func (p *Provider) classify(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var apiErr *oai.Error
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case http.StatusNotFound:
			return fmt.Errorf("%w: model %q is unknown to the API", llm.ErrModelNotFound, p.model)
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("%w: authentication failed (check api_key)", llm.ErrUnavailable)
		}
		return fmt.Errorf("openai: status %d: %w", apiErr.StatusCode, err)
	}

	// Non-API errors are transport failures (DNS, refused connection, ...).
	return fmt.Errorf("%w: %v", llm.ErrUnavailable, err)
}
