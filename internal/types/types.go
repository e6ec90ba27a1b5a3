// Package types holds the payload types that travel across pipeline stage
// edges: Frame (raw PCM), Segment (one detected utterance), Transcript and
// Sentence (text).
package types

import "github.com/google/uuid"

// Frame is an immutable buffer of signed 16-bit little-endian PCM samples at
// 16kHz mono, of a fixed configured byte length. Frames are produced by the
// transport ingress or the synthesizer stage and consumed by exactly one
// downstream stage.
type Frame []byte

// Segment is one detected utterance: float32 samples in [-1, 1] at the
// configured sample rate. Segments are produced by the VAD stage and owned
// by the transcriber for the duration of one transcription call.
type Segment struct {
	ID         uuid.UUID
	Samples    []float32
	SampleRate int
}

// DurationMS returns the segment's duration in milliseconds.
func (s Segment) DurationMS() float64 {
	if s.SampleRate <= 0 {
		return 0
	}
	return float64(len(s.Samples)) / float64(s.SampleRate) * 1000
}

// Transcript is a non-empty, trimmed text string produced by the
// transcriber stage.
type Transcript struct {
	ID   uuid.UUID
	Text string
}

// Sentence is one sentence of the responder's streaming output.
type Sentence struct {
	ID   uuid.UUID
	Text string
}

// Voice selects a synthesizer voice, kept as a free-form string so that
// providers can define their own catalog (e.g. "F1"-"F5", "M1"-"M5").
type Voice string

// Language is a BCP-47-ish language tag used by STT/LLM/TTS providers.
type Language string

// Recognized language tags, kept from the teacher's orchestrator.Language
// constant set.
const (
	LanguageEn Language = "en"
	LanguageEs Language = "es"
	LanguageFr Language = "fr"
	LanguageDe Language = "de"
	LanguageIt Language = "it"
	LanguagePt Language = "pt"
	LanguageJa Language = "ja"
	LanguageZh Language = "zh"
)

// Recognized voice identifiers, kept from the teacher's orchestrator.Voice
// constant set.
const (
	VoiceF1 Voice = "F1"
	VoiceF2 Voice = "F2"
	VoiceF3 Voice = "F3"
	VoiceF4 Voice = "F4"
	VoiceF5 Voice = "F5"
	VoiceM1 Voice = "M1"
	VoiceM2 Voice = "M2"
	VoiceM3 Voice = "M3"
	VoiceM4 Voice = "M4"
	VoiceM5 Voice = "M5"
)

// Message is a single turn in the conversation context handed to the
// LLM provider.
type Message struct {
	Role    string
	Content string
}
