// Package providers defines the interfaces every external collaborator
// (speech-to-text, language model, text-to-speech) must satisfy. These are
// the out-of-scope pieces per spec.md §1 — the pipeline only depends on
// the shape, never on a specific model or vendor. Kept from the teacher's
// pkg/orchestrator/types.go provider interfaces, generalized to the
// Segment/Sentence types this module's stages pass around.
package providers

import (
	"context"

	"github.com/lokutor-ai/voicepipe/internal/types"
)

// STTProvider transcribes one utterance into text.
type STTProvider interface {
	Transcribe(ctx context.Context, segment types.Segment, lang types.Language) (string, error)
	Name() string
}

// LLMProvider completes a running conversation with the next assistant
// turn.
type LLMProvider interface {
	Complete(ctx context.Context, messages []types.Message) (string, error)
	Name() string
}

// TTSProvider synthesizes text to PCM, either all at once or streamed as
// it becomes available. StreamSynthesize's onChunk contract mirrors the
// pipeline stage contract: producing a value is equivalent to enqueuing
// it, in order, as soon as it is available.
type TTSProvider interface {
	Synthesize(ctx context.Context, text string, voice types.Voice, lang types.Language) ([]byte, error)
	StreamSynthesize(ctx context.Context, text string, voice types.Voice, lang types.Language, onChunk func([]byte) error) error
	Name() string
	// Abort asks an in-flight StreamSynthesize call to stop as soon as
	// possible. Providers without a cheaper abort path may simply rely
	// on context cancellation and implement this as a no-op.
	Abort() error
}
