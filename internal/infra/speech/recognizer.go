package speech

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"voice-survey/internal/application"
)

// Capturer records one utterance from the microphone as WAV.
type Capturer interface {
	CaptureUtterance(ctx context.Context) ([]byte, error)
}

// Transcriber converts captured audio to text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte) (string, error)
}

// Recognizer implements the speech input contract: capture a single
// utterance, transcribe it, return the raw text. At most one listen cycle
// is active at a time.
type Recognizer struct {
	mic    Capturer
	stt    Transcriber
	logger *slog.Logger

	mu        sync.Mutex
	listening bool
}

func NewRecognizer(mic Capturer, stt Transcriber, logger *slog.Logger) *Recognizer {
	return &Recognizer{mic: mic, stt: stt, logger: logger}
}

func (r *Recognizer) Listen(ctx context.Context) (string, error) {
	r.mu.Lock()
	if r.listening {
		r.mu.Unlock()
		return "", fmt.Errorf("listen already in progress")
	}
	r.listening = true
	r.mu.Unlock()
	defer func() {
		r.mu.Lock()
		r.listening = false
		r.mu.Unlock()
	}()

	audio, err := r.mic.CaptureUtterance(ctx)
	if err != nil {
		// Capture errors already carry their reason sentinel.
		return "", err
	}
	if len(audio) == 0 {
		return "", nil
	}

	text, err := r.stt.Transcribe(ctx, audio)
	if err != nil {
		return "", fmt.Errorf("%w: %v", application.ErrRecognition, err)
	}

	r.logger.Debug("utterance transcribed", "bytes", len(audio), "text", text)
	return text, nil
}
