package vad

import (
	"context"

	"github.com/google/uuid"
	"github.com/lokutor-ai/voicepipe/internal/pcm"
	"github.com/lokutor-ai/voicepipe/internal/types"
)

// SegmenterConfig adds the segmenter's own post-emit filter bounds
// (MinSpeechMS/MaxSpeechMS) to the iterator's Config, per spec.md §4.6:
// the duration filter is applied by the segmenter, not the iterator.
type SegmenterConfig struct {
	Iterator    Config
	MinSpeechMS float64
	MaxSpeechMS float64 // may be +Inf
}

// Segmenter is the VAD stage: it converts incoming Frames to float32,
// feeds them to an Iterator, and applies the min/max duration filter to
// whatever utterance the iterator emits.
type Segmenter struct {
	cfg  SegmenterConfig
	iter *Iterator
}

// NewSegmenter constructs a VAD stage over model with cfg.
func NewSegmenter(model ActivityModel, cfg SegmenterConfig) *Segmenter {
	return &Segmenter{
		cfg:  cfg,
		iter: NewIterator(model, cfg.Iterator),
	}
}

// Setup is a no-op: the activity model is constructed by the caller, so
// there is no expensive resource to acquire here.
func (s *Segmenter) Setup(ctx context.Context) error { return nil }

// Process implements stage.Processor[types.Frame, types.Segment].
func (s *Segmenter) Process(ctx context.Context, frame types.Frame) ([]types.Segment, error) {
	samples := pcm.BytesToFloat32(frame)
	utterance, emitted := s.iter.Process(samples)
	if !emitted {
		return nil, nil
	}

	seg := types.Segment{
		ID:         uuid.New(),
		Samples:    utterance,
		SampleRate: s.cfg.Iterator.SampleRate,
	}
	dur := seg.DurationMS()
	if dur < s.cfg.MinSpeechMS || dur > s.cfg.MaxSpeechMS {
		return nil, nil
	}
	return []types.Segment{seg}, nil
}

// Teardown discards any in-progress utterance without emitting it, per
// spec.md §4.6's "no flush on stop" tie-break policy.
func (s *Segmenter) Teardown() {
	s.iter.Discard()
}
