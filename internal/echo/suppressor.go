// Package echo detects microphone input that is actually the client's
// own synthesized speech being picked up again through room acoustics,
// so the VAD segmenter does not treat playback echo as a new user
// utterance during full-duplex operation.
package echo

import (
	"math"
	"sync"
	"time"
)

// Suppressor records recently-played-out samples and correlates
// incoming microphone samples against them, adapted from the teacher's
// byte-oriented EchoSuppressor to operate directly on the float32 PCM
// the pipeline already carries internally.
type Suppressor struct {
	mu sync.Mutex

	played     []float32
	maxSamples int

	threshold     float64
	silenceWindow time.Duration
	lastPlayed    time.Time

	enabled bool
}

// NewSuppressor returns a Suppressor tuned for sampleRate, keeping up
// to bufferSeconds of played-back audio for correlation.
func NewSuppressor(sampleRate int, bufferSeconds float64) *Suppressor {
	return &Suppressor{
		maxSamples:    int(float64(sampleRate) * bufferSeconds),
		threshold:     0.55,
		silenceWindow: 1200 * time.Millisecond,
		enabled:       true,
	}
}

// RecordPlayed appends samples that were just sent to the speaker.
func (s *Suppressor) RecordPlayed(samples []float32) {
	if !s.enabled || len(samples) == 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.played = append(s.played, samples...)
	s.lastPlayed = time.Now()

	if len(s.played) > s.maxSamples {
		s.played = s.played[len(s.played)-s.maxSamples:]
	}
}

// IsEcho reports whether input is likely the tail of recently played
// audio rather than new user speech.
func (s *Suppressor) IsEcho(input []float32) bool {
	if !s.enabled || len(input) == 0 {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if time.Since(s.lastPlayed) > s.silenceWindow {
		return false
	}
	if len(s.played) == 0 {
		return false
	}

	return correlate(input, s.played) > s.threshold
}

// Clear drops the played-back buffer, e.g. when synthesis is aborted.
func (s *Suppressor) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.played = nil
}

// SetEnabled toggles suppression entirely.
func (s *Suppressor) SetEnabled(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.enabled = enabled
}

// correlate returns the best normalized cross-correlation of input
// against a sliding window over reference, bounded to a coarse stride
// so it stays cheap enough to run per VAD frame.
func correlate(input, reference []float32) float64 {
	compareLen := len(input)
	if compareLen > len(reference) {
		compareLen = len(reference)
	}
	if compareLen == 0 {
		return 0
	}

	inEnergy := energy(input[:compareLen])
	if inEnergy == 0 {
		return 0
	}

	stride := compareLen / 4
	if stride < 8 {
		stride = 8
	}

	best := 0.0
	searchRange := len(reference) - compareLen + 1
	for pos := 0; pos < searchRange; pos += stride {
		seg := reference[pos : pos+compareLen]
		segEnergy := energy(seg)
		if segEnergy == 0 {
			continue
		}

		dot := 0.0
		for i := 0; i < compareLen; i++ {
			dot += float64(input[i]) * float64(seg[i])
		}
		corr := dot / math.Sqrt(inEnergy*segEnergy)
		if corr > best {
			best = corr
		}
	}

	if best < 0 {
		return 0
	}
	if best > 1 {
		return 1
	}
	return best
}

func energy(samples []float32) float64 {
	sum := 0.0
	for _, v := range samples {
		sum += float64(v) * float64(v)
	}
	return sum
}
