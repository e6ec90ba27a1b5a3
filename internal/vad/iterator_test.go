package vad

import "testing"

// constantModel reports a fixed probability regardless of frame content,
// letting tests drive the iterator's state machine deterministically
// without depending on RMSModel's energy calculation.
type constantModel struct {
	p      float64
	resets int
}

func (m *constantModel) Probability(frame []float32) float64 { return m.p }
func (m *constantModel) Reset()                              { m.resets++ }

func frame(n int, v float32) []float32 {
	f := make([]float32, n)
	for i := range f {
		f[i] = v
	}
	return f
}

func TestIteratorNeverTriggersBelowThreshold(t *testing.T) {
	model := &constantModel{p: 0.1}
	it := NewIterator(model, Config{Threshold: 0.5, SampleRate: 16000, MinSilenceMS: 100, SpeechPadMS: 0})

	for i := 0; i < 20; i++ {
		_, emitted := it.Process(frame(160, 0))
		if emitted {
			t.Fatalf("expected no emission while probability stays below threshold")
		}
	}
	if it.IsTriggered() {
		t.Fatal("expected iterator to remain untriggered")
	}
}

func TestIteratorEmitsAfterMinSilence(t *testing.T) {
	model := &constantModel{p: 0.9}
	it := NewIterator(model, Config{Threshold: 0.5, SampleRate: 16000, MinSilenceMS: 100, SpeechPadMS: 0})

	// Trigger speech.
	it.Process(frame(160, 0))
	if !it.IsTriggered() {
		t.Fatal("expected iterator to be triggered once probability crosses threshold")
	}

	// Feed a couple more speech frames.
	it.Process(frame(160, 0))
	it.Process(frame(160, 0))

	// Drop below the exit floor (threshold - 0.15 = 0.35) and hold long
	// enough to exceed min_silence_ms (100ms @ 16kHz = 1600 samples).
	model.p = 0.1
	var emitted bool
	var utterance []float32
	for i := 0; i < 20 && !emitted; i++ {
		utterance, emitted = it.Process(frame(160, 0))
	}

	if !emitted {
		t.Fatal("expected the iterator to emit once min_silence_ms elapses")
	}
	if it.IsTriggered() {
		t.Fatal("expected the iterator to reset to untriggered after emitting")
	}
	// 3 triggering-speech frames; the silence frames accumulated before
	// crossing min_silence_count are trimmed off again, since SpeechPadMS=0
	// keeps no right pad.
	if len(utterance) < 3*160 {
		t.Fatalf("expected emitted utterance to include the speech frames, got %d samples", len(utterance))
	}
}

func TestIteratorStaysTriggeredAboveNegThreshold(t *testing.T) {
	model := &constantModel{p: 0.9}
	it := NewIterator(model, Config{Threshold: 0.5, SampleRate: 16000, MinSilenceMS: 100, SpeechPadMS: 0})
	it.Process(frame(160, 0))

	// Probability dips but stays above threshold-0.15=0.35: should not
	// start counting silence.
	model.p = 0.4
	for i := 0; i < 50; i++ {
		_, emitted := it.Process(frame(160, 0))
		if emitted {
			t.Fatal("expected no emission while probability stays above the exit floor")
		}
	}
	if !it.IsTriggered() {
		t.Fatal("expected iterator to remain triggered")
	}
}

func TestIteratorDiscardResetsWithoutEmitting(t *testing.T) {
	model := &constantModel{p: 0.9}
	it := NewIterator(model, Config{Threshold: 0.5, SampleRate: 16000, MinSilenceMS: 100, SpeechPadMS: 0})
	it.Process(frame(160, 0))
	if !it.IsTriggered() {
		t.Fatal("expected triggered state before discard")
	}

	it.Discard()
	if it.IsTriggered() {
		t.Fatal("expected Discard to reset triggered state")
	}
	if model.resets == 0 {
		t.Fatal("expected Discard to reset the underlying activity model")
	}
}

func TestIteratorZeroThresholdTriggersImmediately(t *testing.T) {
	model := &constantModel{p: 0.0}
	it := NewIterator(model, Config{Threshold: 0.0, SampleRate: 16000, MinSilenceMS: 50, SpeechPadMS: 0})
	it.Process(frame(160, 0))
	if !it.IsTriggered() {
		t.Fatal("expected a zero threshold to trigger on the very first frame")
	}
}
