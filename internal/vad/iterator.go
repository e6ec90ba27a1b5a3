// Package vad implements the voice-activity segmenter: the only stage
// with a nontrivial own state machine (spec.md §4.6). Iterator wraps a
// pluggable activity-probability model (out of scope per spec.md §1) and
// turns a stream of fixed-size frames into variable-length utterances.
package vad

// ActivityModel is the external collaborator the iterator depends on: it
// scores one frame of float32 samples with a speech probability in
// [0, 1]. Concrete models (e.g. a Silero-style network) are out of scope
// for this module and are supplied by the caller.
type ActivityModel interface {
	// Probability returns the speech probability for one frame of
	// float32 samples.
	Probability(frame []float32) float64
	// Reset clears any internal recurrent state the model keeps between
	// frames, called whenever the iterator itself is reset.
	Reset()
}

// Config holds the iterator's tunables, named exactly as spec.md §4.6.
type Config struct {
	Threshold    float64 // probability threshold to trigger speech start
	SampleRate   int
	MinSilenceMS int // silence duration (ms) required to emit
	SpeechPadMS  int // left/right pad applied to the emitted utterance
}

// negThresholdFloor is the hysteresis gap subtracted from Threshold to
// obtain the exit threshold, per spec.md §4.6.
const negThresholdFloor = 0.15

// Iterator is the ring-style accumulator from spec.md §3: triggered state,
// growing utterance buffer, consecutive-silence counter, and a reference
// to the activity model. Mutated only by the VAD stage's own goroutine.
type Iterator struct {
	model ActivityModel
	cfg   Config

	triggered       bool
	buf             []float32 // samples accumulated for the in-progress utterance
	leadPad         []float32 // rolling pre-trigger tail, capped at SpeechPadMS
	silenceSamples  int
	minSilenceCount int
	padSamples      int
}

// NewIterator constructs an iterator over model with the given config. The
// very first frame of a session starts not-triggered, per spec.md §4.6.
func NewIterator(model ActivityModel, cfg Config) *Iterator {
	it := &Iterator{model: model, cfg: cfg}
	it.minSilenceCount = msToSamples(cfg.MinSilenceMS, cfg.SampleRate)
	it.padSamples = msToSamples(cfg.SpeechPadMS, cfg.SampleRate)
	return it
}

func msToSamples(ms, sampleRate int) int {
	return ms * sampleRate / 1000
}

// negThreshold returns the exit-hysteresis floor for the configured
// threshold, per spec.md §4.6.
func (it *Iterator) negThreshold() float64 {
	nt := it.cfg.Threshold - negThresholdFloor
	if nt < 0 {
		nt = 0
	}
	return nt
}

// Process runs one frame through the state machine. It returns the
// accumulated utterance (with left/right pad applied) and true exactly
// when a speech-to-silence transition completes an utterance; otherwise
// it returns (nil, false).
func (it *Iterator) Process(frame []float32) (utterance []float32, emitted bool) {
	p := it.model.Probability(frame)

	switch {
	case !it.triggered && p >= it.cfg.Threshold:
		// Transition to triggered: begin accumulating, including a
		// left-pad of the most recently seen pre-trigger audio.
		it.triggered = true
		it.silenceSamples = 0
		it.buf = it.buf[:0]
		it.buf = append(it.buf, it.leadPad...)
		it.buf = append(it.buf, frame...)
		return nil, false

	case it.triggered && p < it.negThreshold():
		it.buf = append(it.buf, frame...)
		it.silenceSamples += len(frame)
		if it.silenceSamples >= it.minSilenceCount {
			out := it.applyRightPad(it.buf)
			it.reset()
			return out, true
		}
		return nil, false

	case it.triggered:
		// Still above the exit floor: reset the silence counter and
		// keep accumulating.
		it.silenceSamples = 0
		it.buf = append(it.buf, frame...)
		return nil, false

	default:
		// Not triggered: drop the frame, but keep a rolling pre-trigger
		// tail so a future trigger can left-pad correctly.
		it.pushLeadPad(frame)
		return nil, false
	}
}

// applyRightPad trims the trailing silence back down to the configured
// pad length instead of keeping the whole min-silence tail, so the
// emitted utterance ends padSamples after the last speech sample.
func (it *Iterator) applyRightPad(buf []float32) []float32 {
	trim := it.silenceSamples - it.padSamples
	if trim <= 0 {
		return append([]float32(nil), buf...)
	}
	if trim > len(buf) {
		trim = len(buf)
	}
	out := make([]float32, len(buf)-trim)
	copy(out, buf[:len(buf)-trim])
	return out
}

func (it *Iterator) pushLeadPad(frame []float32) {
	it.leadPad = append(it.leadPad, frame...)
	if len(it.leadPad) > it.padSamples {
		it.leadPad = it.leadPad[len(it.leadPad)-it.padSamples:]
	}
}

// reset clears the accumulator, ready for the next utterance. Called on
// a successful emit and by Discard.
func (it *Iterator) reset() {
	it.triggered = false
	it.buf = it.buf[:0]
	it.leadPad = it.leadPad[:0]
	it.silenceSamples = 0
	it.model.Reset()
}

// Discard abandons the in-progress utterance without emitting it — used
// when the stop flag is observed mid-utterance (spec.md §4.6 tie-break
// policy: "no flush").
func (it *Iterator) Discard() {
	it.reset()
}

// IsTriggered reports whether the iterator is currently accumulating an
// utterance.
func (it *Iterator) IsTriggered() bool {
	return it.triggered
}
