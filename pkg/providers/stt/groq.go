package stt

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/lokutor-ai/voicepipe/internal/types"
)

// GroqSTT transcribes via Groq's Whisper-compatible endpoint.
type GroqSTT struct {
	apiKey string
	url    string
	model  string
}

// NewGroqSTT constructs a Groq STT provider for the given model (defaults
// to "whisper-large-v3-turbo").
func NewGroqSTT(apiKey, model string) *GroqSTT {
	if model == "" {
		model = "whisper-large-v3-turbo"
	}
	return &GroqSTT{
		apiKey: apiKey,
		url:    "https://api.groq.com/openai/v1/audio/transcriptions",
		model:  model,
	}
}

// Transcribe implements providers.STTProvider.
func (s *GroqSTT) Transcribe(ctx context.Context, segment types.Segment, lang types.Language) (string, error) {
	body, contentType, err := wavUploadBody(segment, s.model, lang)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var errResp interface{}
		json.NewDecoder(resp.Body).Decode(&errResp)
		return "", fmt.Errorf("groq stt error (status %d): %v", resp.StatusCode, errResp)
	}

	var result struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", err
	}
	return result.Text, nil
}

// Name implements providers.STTProvider.
func (s *GroqSTT) Name() string { return "groq-stt" }
