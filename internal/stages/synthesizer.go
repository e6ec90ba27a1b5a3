package stages

import (
	"context"
	"fmt"

	"github.com/lokutor-ai/voicepipe/internal/types"
	"github.com/lokutor-ai/voicepipe/pkg/providers"
)

// Synthesizer wraps a TTSProvider as a Processor[Sentence, Frame],
// re-chunking the provider's streamed byte chunks into fixed-size
// Frames so every downstream consumer sees the same Frame length
// regardless of provider chunking.
type Synthesizer struct {
	TTS       providers.TTSProvider
	Voice     types.Voice
	Language  types.Language
	ChunkSize int
}

func (s *Synthesizer) Setup(ctx context.Context) error { return nil }

func (s *Synthesizer) Process(ctx context.Context, in types.Sentence) ([]types.Frame, error) {
	var frames []types.Frame
	var pending []byte

	err := s.TTS.StreamSynthesize(ctx, in.Text, s.Voice, s.Language, func(chunk []byte) error {
		pending = append(pending, chunk...)
		for len(pending) >= s.ChunkSize {
			frame := make(types.Frame, s.ChunkSize)
			copy(frame, pending[:s.ChunkSize])
			frames = append(frames, frame)
			pending = pending[s.ChunkSize:]
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %v", s.TTS.Name(), ErrTTSFailed, err)
	}

	if len(pending) > 0 {
		frame := make(types.Frame, s.ChunkSize)
		copy(frame, pending)
		frames = append(frames, frame)
	}

	return frames, nil
}

func (s *Synthesizer) Teardown() {}
