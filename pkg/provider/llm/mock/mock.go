// Package mock provides a test double for the llm.Provider interface.
//
// Use Provider in unit tests to feed controlled responses without a live
// backend and to verify the requests the pipeline sends. Results are
// consumed in call order so a retry test can script a rejected first
// attempt followed by an accepted second one.
//
// Example:
//
//	p := &mock.Provider{Results: []mock.Result{
//	    {Response: &llm.CompletionResponse{Content: "бохир хариу шүү дээ"}},
//	    {Response: &llm.CompletionResponse{Content: "Цэвэр албан хариу."}},
//	}}
package mock

import (
	"context"
	"sync"

	"github.com/munkhbat-dev/protokol/pkg/provider/llm"
)

// Result is the scripted outcome of one Complete call.
type Result struct {
	// Response is returned when Err is nil. May be nil (returns nil, nil).
	Response *llm.CompletionResponse

	// Err, if non-nil, is returned instead of Response.
	Err error
}

// Call records a single invocation of Complete.
type Call struct {
	// Ctx is the context passed to Complete.
	Ctx context.Context

	// Req is the CompletionRequest passed to Complete.
	Req llm.CompletionRequest
}

// Provider is a mock implementation of llm.Provider. The zero value returns
// empty responses and nil errors. Safe for concurrent use.
type Provider struct {
	mu sync.Mutex

	// Results is the scripted sequence of outcomes, consumed in call
	// order. When exhausted, the last entry repeats; an empty slice yields
	// an empty response.
	Results []Result

	// VerifyErr is returned by Verify.
	VerifyErr error

	// Calls records every invocation of Complete in order. Read after the
	// code under test has finished.
	Calls []Call

	// VerifyCallCount is the number of times Verify was called.
	VerifyCallCount int
}

// Complete records the call and returns the next scripted Result.
func (p *Provider) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	idx := len(p.Calls)
	p.Calls = append(p.Calls, Call{Ctx: ctx, Req: req})

	if len(p.Results) == 0 {
		return &llm.CompletionResponse{}, nil
	}
	if idx >= len(p.Results) {
		idx = len(p.Results) - 1
	}
	r := p.Results[idx]
	if r.Err != nil {
		return nil, r.Err
	}
	return r.Response, nil
}

// Verify records the call and returns VerifyErr.
func (p *Provider) Verify(context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.VerifyCallCount++
	return p.VerifyErr
}

// CallCount returns the number of Complete invocations so far.
func (p *Provider) CallCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.Calls)
}
