package vad

import (
	"context"
	"math"
	"testing"

	"github.com/lokutor-ai/voicepipe/internal/pcm"
)

func frameBytes(n int, v int16) []byte {
	samples := make([]float32, n)
	scaled := float32(v) / 32768.0
	for i := range samples {
		samples[i] = scaled
	}
	return pcm.Float32ToBytes(samples)
}

func newTestSegmenter(minMS, maxMS float64) *Segmenter {
	return NewSegmenter(&constantModel{p: 0.9}, SegmenterConfig{
		Iterator: Config{
			Threshold:    0.5,
			SampleRate:   16000,
			MinSilenceMS: 50,
			SpeechPadMS:  0,
		},
		MinSpeechMS: minMS,
		MaxSpeechMS: maxMS,
	})
}

func TestSegmenterFiltersUtteranceShorterThanMinSpeech(t *testing.T) {
	model := &constantModel{p: 0.9}
	seg := NewSegmenter(model, SegmenterConfig{
		Iterator:    Config{Threshold: 0.5, SampleRate: 16000, MinSilenceMS: 50, SpeechPadMS: 0},
		MinSpeechMS: 1000,
		MaxSpeechMS: math.Inf(1),
	})

	ctx := context.Background()
	// One short speech frame (10ms @ 16kHz = 160 samples).
	seg.Process(ctx, frameBytes(160, 1000))

	model.p = 0.1
	var emittedSegments int
	for i := 0; i < 20; i++ {
		segs, err := seg.Process(ctx, frameBytes(160, 0))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		emittedSegments += len(segs)
	}
	if emittedSegments != 0 {
		t.Fatalf("expected the short utterance to be filtered by MinSpeechMS, got %d segments", emittedSegments)
	}
}

func TestSegmenterPassesUtteranceWithinDurationBounds(t *testing.T) {
	model := &constantModel{p: 0.9}
	seg := NewSegmenter(model, SegmenterConfig{
		Iterator:    Config{Threshold: 0.5, SampleRate: 16000, MinSilenceMS: 50, SpeechPadMS: 0},
		MinSpeechMS: 1,
		MaxSpeechMS: math.Inf(1),
	})

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		seg.Process(ctx, frameBytes(160, 1000))
	}

	model.p = 0.1
	var segments int
	for i := 0; i < 20 && segments == 0; i++ {
		segs, err := seg.Process(ctx, frameBytes(160, 0))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		segments += len(segs)
	}
	if segments != 1 {
		t.Fatalf("expected exactly one emitted segment, got %d", segments)
	}
}

func TestSegmenterTeardownDiscardsInProgressUtterance(t *testing.T) {
	seg := newTestSegmenter(1, math.Inf(1))
	ctx := context.Background()
	seg.Process(ctx, frameBytes(160, 1000))
	if !seg.iter.IsTriggered() {
		t.Fatal("expected segmenter's iterator to be triggered mid-utterance")
	}
	seg.Teardown()
	if seg.iter.IsTriggered() {
		t.Fatal("expected Teardown to discard the in-progress utterance")
	}
}
