package session

import (
	"context"
	"errors"
)

// ErrTranscriptionUnavailable is returned when no voice backend is
// configured.
var ErrTranscriptionUnavailable = errors.New("session: voice transcription unavailable")

// Transcriber captures one voice transcript. Implementations wrap a
// platform speech-to-text backend.
type Transcriber interface {
	Transcribe(ctx context.Context) (string, error)
}

// Unavailable is the no-op Transcriber used when voice input is not
// supported.
type Unavailable struct{}

func (Unavailable) Transcribe(context.Context) (string, error) {
	return "", ErrTranscriptionUnavailable
}
