package stt

import (
	"bytes"
	"io"
	"mime/multipart"

	"github.com/lokutor-ai/voicepipe/internal/pcm"
	"github.com/lokutor-ai/voicepipe/internal/types"
	"github.com/lokutor-ai/voicepipe/pkg/audio"
)

// wavUploadBody builds a multipart/form-data body carrying a WAV-wrapped
// rendition of segment, plus the optional fields every Whisper-compatible
// transcription endpoint (OpenAI, Groq) expects.
func wavUploadBody(segment types.Segment, model string, lang types.Language) (*bytes.Buffer, string, error) {
	wavData := audio.NewWavBuffer(pcm.Float32ToBytes(segment.Samples), segment.SampleRate)

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	if err := writer.WriteField("model", model); err != nil {
		return nil, "", err
	}
	if lang != "" {
		if err := writer.WriteField("language", string(lang)); err != nil {
			return nil, "", err
		}
	}

	part, err := writer.CreateFormFile("file", "audio.wav")
	if err != nil {
		return nil, "", err
	}
	if _, err := io.Copy(part, bytes.NewReader(wavData)); err != nil {
		return nil, "", err
	}
	if err := writer.Close(); err != nil {
		return nil, "", err
	}

	return body, writer.FormDataContentType(), nil
}
