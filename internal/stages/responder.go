package stages

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lokutor-ai/voicepipe/internal/sentence"
	"github.com/lokutor-ai/voicepipe/internal/types"
	"github.com/lokutor-ai/voicepipe/pkg/providers"
)

// Responder wraps an LLMProvider as a Processor[Transcript, Sentence].
// The underlying LLMProvider call is single-shot (not token-streamed),
// so the sentence splitter runs once over the full completion per
// turn; it still enforces the same contract downstream stages rely
// on — a Sentence per completed boundary, the trailing partial flushed
// last — so a future token-streaming LLMProvider can be dropped in
// without changing Synthesizer's input shape.
type Responder struct {
	LLM     providers.LLMProvider
	History *History
}

func (r *Responder) Setup(ctx context.Context) error { return nil }

func (r *Responder) Process(ctx context.Context, in types.Transcript) ([]types.Sentence, error) {
	r.History.Add("user", in.Text)

	reply, err := r.LLM.Complete(ctx, r.History.Snapshot())
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %v", r.LLM.Name(), ErrLLMFailed, err)
	}

	r.History.Add("assistant", reply)

	splitter := sentence.NewSplitter()
	parts := splitter.Push(reply)
	if rest := splitter.Flush(); rest != "" {
		parts = append(parts, rest)
	}

	out := make([]types.Sentence, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, types.Sentence{ID: uuid.New(), Text: p})
	}
	return out, nil
}

func (r *Responder) Teardown() {}
