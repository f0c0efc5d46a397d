// Package speech turns voice notes into text via AssemblyAI.
package speech

import (
	"context"
	"fmt"
	"io"
	"strings"

	assemblyai "github.com/AssemblyAI/assemblyai-go-sdk"
)

// Transcriber converts an audio stream into text. Empty text means the
// audio could not be understood; callers reply with a retry prompt.
type Transcriber interface {
	Transcribe(ctx context.Context, audio io.Reader) (string, error)
}

// AssemblyAITranscriber uploads the audio and waits for the transcript.
type AssemblyAITranscriber struct {
	client *assemblyai.Client
}

func NewAssemblyAITranscriber(apiKey string) *AssemblyAITranscriber {
	return &AssemblyAITranscriber{client: assemblyai.NewClient(apiKey)}
}

func (t *AssemblyAITranscriber) Transcribe(ctx context.Context, audio io.Reader) (string, error) {
	transcript, err := t.client.Transcripts.TranscribeFromReader(ctx, audio, nil)
	if err != nil {
		return "", fmt.Errorf("transcribe audio: %w", err)
	}
	if transcript.Status == "error" {
		detail := ""
		if transcript.Error != nil {
			detail = *transcript.Error
		}
		return "", fmt.Errorf("transcription failed: %s", detail)
	}
	if transcript.Text == nil {
		return "", nil
	}
	return strings.TrimSpace(*transcript.Text), nil
}
