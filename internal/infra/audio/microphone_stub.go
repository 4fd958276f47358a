//go:build !portaudio
// +build !portaudio

package audio

import (
	"context"
	"fmt"
	"log/slog"

	"voice-survey/internal/application"
)

// Microphone stub when portaudio is not compiled in. Every capture reports
// the capability as unavailable so the flow falls back to manual entry.
type Microphone struct {
	logger *slog.Logger
}

func NewMicrophone(_ int, logger *slog.Logger) *Microphone {
	return &Microphone{logger: logger}
}

func (m *Microphone) Start(_ context.Context) error {
	return fmt.Errorf("%w: rebuild with -tags portaudio", application.ErrSpeechUnavailable)
}

func (m *Microphone) Stop() error { return nil }

func (m *Microphone) CaptureUtterance(_ context.Context) ([]byte, error) {
	return nil, fmt.Errorf("%w: rebuild with -tags portaudio", application.ErrSpeechUnavailable)
}
