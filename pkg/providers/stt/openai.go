// Package stt holds concrete STTProvider implementations: thin REST
// clients, kept and adapted from the teacher's pkg/providers/stt, wired
// to the Transcriber stage's Segment payload instead of raw bytes.
package stt

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/lokutor-ai/voicepipe/internal/types"
)

// OpenAISTT transcribes via OpenAI's Whisper-compatible endpoint.
type OpenAISTT struct {
	apiKey string
	url    string
	model  string
}

// NewOpenAISTT constructs an OpenAI STT provider for the given model
// (defaults to "whisper-1").
func NewOpenAISTT(apiKey, model string) *OpenAISTT {
	if model == "" {
		model = "whisper-1"
	}
	return &OpenAISTT{
		apiKey: apiKey,
		url:    "https://api.openai.com/v1/audio/transcriptions",
		model:  model,
	}
}

// Name implements providers.STTProvider.
func (s *OpenAISTT) Name() string { return "openai_stt" }

// Transcribe implements providers.STTProvider.
func (s *OpenAISTT) Transcribe(ctx context.Context, segment types.Segment, lang types.Language) (string, error) {
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
		respBody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("openai stt error: %s (status %d)", string(respBody), resp.StatusCode)
	}

	var result struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", err
	}
	return result.Text, nil
}
