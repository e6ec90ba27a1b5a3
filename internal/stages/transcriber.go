package stages

import (
	"context"
	"fmt"
	"strings"

	"github.com/lokutor-ai/voicepipe/internal/types"
	"github.com/lokutor-ai/voicepipe/pkg/providers"
	"github.com/sirupsen/logrus"
)

// Transcriber wraps an STTProvider as a Processor[Segment, Transcript].
type Transcriber struct {
	STT      providers.STTProvider
	Language types.Language
	Log      *logrus.Logger
}

func (t *Transcriber) Setup(ctx context.Context) error { return nil }

func (t *Transcriber) Process(ctx context.Context, in types.Segment) ([]types.Transcript, error) {
	text, err := t.STT.Transcribe(ctx, in, t.Language)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", t.STT.Name(), err)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		if t.Log != nil {
			t.Log.WithField("segment", in.ID).Warn("transcription returned empty text")
		}
		return nil, ErrEmptyTranscription
	}

	return []types.Transcript{{ID: in.ID, Text: text}}, nil
}

func (t *Transcriber) Teardown() {}
