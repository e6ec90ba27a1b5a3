// Package stages holds the thin Processor adapters that wrap the
// external STT/LLM/TTS collaborators as pipeline stages.
package stages

import "errors"

var (
	// ErrEmptyTranscription is returned (and the item dropped) when a
	// transcription call succeeds but returns only whitespace.
	ErrEmptyTranscription = errors.New("transcription returned empty text")

	// ErrLLMFailed wraps any error returned by the configured LLMProvider.
	ErrLLMFailed = errors.New("language model generation failed")

	// ErrTTSFailed wraps any error returned by the configured TTSProvider.
	ErrTTSFailed = errors.New("text-to-speech synthesis failed")
)
