//go:build !portaudio
// +build !portaudio

package audio

import (
	"context"
	"fmt"
	"log/slog"

	"voice-survey/internal/application"
)

// Player stub when portaudio is not compiled in.
type Player struct {
	logger *slog.Logger
}

func NewPlayer(logger *slog.Logger) *Player {
	return &Player{logger: logger}
}

func (p *Player) Start(_ context.Context) error {
	return fmt.Errorf("%w: rebuild with -tags portaudio", application.ErrSpeechUnavailable)
}

func (p *Player) Stop() error { return nil }

func (p *Player) Play(_ context.Context, _ []byte, _ int) error {
	return fmt.Errorf("%w: rebuild with -tags portaudio", application.ErrSpeechUnavailable)
}

func (p *Player) Active() bool { return false }

func (p *Player) Nudge() {}
