// Package llmtest provides an in-memory llm.LLMProvider for tests.
package llmtest

import (
	"context"
	"sync"

	"smart-search-be/pkg/llm"
)

// Call records a single prompt sent to the fake.
type Call struct {
	Prompt  string
	Options llm.Options
}

// Fake answers every prompt through Respond and records the calls it saw.
type Fake struct {
	Respond func(ctx context.Context, prompt string, opts llm.Options) (string, error)

	mu    sync.Mutex
	calls []Call
}

var _ llm.LLMProvider = &Fake{}

// Static returns a Fake that always replies with text and err.
func Static(text string, err error) *Fake {
	return &Fake{Respond: func(context.Context, string, llm.Options) (string, error) {
		return text, err
	}}
}

func (f *Fake) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	var prompt string
	for _, m := range history {
		if m.Role == "user" {
			prompt = m.Content
		}
	}
	return f.Generate(ctx, prompt, opts...)
}

func (f *Fake) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	o := llm.Apply(llm.Options{}, opts...)
	f.mu.Lock()
	f.calls = append(f.calls, Call{Prompt: prompt, Options: o})
	f.mu.Unlock()
	if f.Respond == nil {
		return "", nil
	}
	return f.Respond(ctx, prompt, o)
}

func (f *Fake) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Call, len(f.calls))
	copy(out, f.calls)
	return out
}
