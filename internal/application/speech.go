package application

import (
	"context"
	"errors"
)

// Speaker produces one audible utterance per call. Speak returns once the
// utterance has finished naturally or was cancelled; starting a new call
// cancels any utterance still in flight on the same output channel.
type Speaker interface {
	Speak(ctx context.Context, text string) error
}

// Listener captures a single utterance and returns its best-effort
// transcript, which may be empty. At most one listen operation may be
// active at a time; callers guard this before invoking.
type Listener interface {
	Listen(ctx context.Context) (string, error)
}

var (
	// ErrSpeechUnavailable means the platform lacks the speech facility
	// (input or output). The flow continues through the manual path.
	ErrSpeechUnavailable = errors.New("speech capability unavailable")
	// ErrPermissionDenied means microphone access was refused.
	ErrPermissionDenied = errors.New("microphone permission denied")
	// ErrRecognition covers transient engine failures: no speech
	// detected, network error, aborted capture. Retryable.
	ErrRecognition = errors.New("speech recognition failed")
)

// NoopSpeaker reports every utterance as instantly finished. Used for the
// silent mode where prompts are shown, not spoken.
type NoopSpeaker struct{}

func (NoopSpeaker) Speak(_ context.Context, _ string) error { return nil }
