//go:build portaudio
// +build portaudio

package audio

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gordonklaus/portaudio"

	"voice-survey/internal/application"
)

// Player writes PCM to the default output device. One utterance at a time;
// Play blocks until the audio has been fully written or the context ends.
type Player struct {
	logger *slog.Logger

	mu       sync.Mutex
	stream   *portaudio.Stream
	playing  bool
	progress time.Time
}

func NewPlayer(logger *slog.Logger) *Player {
	return &Player{logger: logger}
}

func (p *Player) Start(_ context.Context) error {
	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("%w: initializing portaudio: %v", application.ErrSpeechUnavailable, err)
	}
	return nil
}

func (p *Player) Stop() error {
	portaudio.Terminate()
	return nil
}

func (p *Player) Play(ctx context.Context, pcm []byte, sampleRate int) error {
	samples := pcmToSamples(pcm)
	if len(samples) == 0 {
		return nil
	}

	out := make([]int16, framesPerBuffer)
	stream, err := portaudio.OpenDefaultStream(0, 1, float64(sampleRate), framesPerBuffer, out)
	if err != nil {
		return fmt.Errorf("%w: opening output stream: %v", application.ErrSpeechUnavailable, err)
	}

	p.mu.Lock()
	p.stream = stream
	p.playing = true
	p.progress = time.Now()
	p.mu.Unlock()

	defer func() {
		p.mu.Lock()
		p.playing = false
		p.stream = nil
		p.mu.Unlock()
		stream.Stop()
		stream.Close()
	}()

	if err := stream.Start(); err != nil {
		return fmt.Errorf("starting output stream: %w", err)
	}

	for offset := 0; offset < len(samples); offset += framesPerBuffer {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		n := copy(out, samples[offset:])
		for i := n; i < len(out); i++ {
			out[i] = 0
		}
		if err := stream.Write(); err != nil {
			return fmt.Errorf("writing to output stream: %w", err)
		}

		p.mu.Lock()
		p.progress = time.Now()
		p.mu.Unlock()
	}

	return nil
}

// Active reports whether an utterance is currently being written.
func (p *Player) Active() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playing
}

// Nudge restarts a stalled output stream. Some backends stop draining
// long utterances; a stop/start cycle resumes them in place.
func (p *Player) Nudge() {
	p.mu.Lock()
	stream := p.stream
	stalled := p.playing && time.Since(p.progress) > time.Second
	p.mu.Unlock()

	if stream == nil || !stalled {
		return
	}
	p.logger.Warn("output stream stalled, restarting")
	if err := stream.Stop(); err != nil {
		return
	}
	stream.Start()
}
