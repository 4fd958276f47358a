package speech

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Synthesizer turns text into PCM audio.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// Playback writes PCM to the output device and exposes the hooks the
// heartbeat needs to detect and revive a stalled engine.
type Playback interface {
	Play(ctx context.Context, pcm []byte, sampleRate int) error
	Active() bool
	Nudge()
}

const defaultHeartbeatInterval = 10 * time.Second

// Speaker implements the speech output contract: one utterance per call,
// last call wins on the shared output channel, completion reported exactly
// once as the return value.
type Speaker struct {
	synth      Synthesizer
	player     Playback
	sampleRate int
	interval   time.Duration
	logger     *slog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
}

func NewSpeaker(synth Synthesizer, player Playback, sampleRate int, logger *slog.Logger) *Speaker {
	return &Speaker{
		synth:      synth,
		player:     player,
		sampleRate: sampleRate,
		interval:   defaultHeartbeatInterval,
		logger:     logger,
	}
}

func (s *Speaker) Speak(ctx context.Context, text string) error {
	if text == "" {
		return fmt.Errorf("empty utterance")
	}

	s.mu.Lock()
	if s.cancel != nil {
		// Cancel the in-flight utterance before starting a new one.
		s.cancel()
	}
	uctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.mu.Unlock()
	defer cancel()

	pcm, err := s.synth.Synthesize(uctx, text)
	if err != nil {
		if s.replaced(uctx, ctx) {
			return nil
		}
		return fmt.Errorf("synthesizing speech: %w", err)
	}

	// Some engines silently stop draining long utterances; the heartbeat
	// nudges them back for as long as this utterance lives.
	go Heartbeat(uctx, s.interval, s.player.Active, s.player.Nudge)

	if err := s.player.Play(uctx, pcm, s.sampleRate); err != nil {
		if s.replaced(uctx, ctx) {
			return nil
		}
		return fmt.Errorf("playing utterance: %w", err)
	}
	return nil
}

// replaced reports whether the utterance was cancelled by a newer Speak
// rather than by the caller. Cancellation by replacement still counts as
// completion.
func (s *Speaker) replaced(uctx, ctx context.Context) bool {
	return uctx.Err() != nil && ctx.Err() == nil
}
