//go:build portaudio
// +build portaudio

package audio

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/gordonklaus/portaudio"

	"voice-survey/internal/application"
)

const framesPerBuffer = 1024

// Microphone captures single utterances from the default input device.
// One capture at a time; re-entrant capture is a caller error.
type Microphone struct {
	sampleRate int
	logger     *slog.Logger

	mu        sync.Mutex
	stream    *portaudio.Stream
	buffer    []int16
	capturing bool
}

func NewMicrophone(sampleRate int, logger *slog.Logger) *Microphone {
	return &Microphone{
		sampleRate: sampleRate,
		logger:     logger,
		buffer:     make([]int16, framesPerBuffer),
	}
}

func (m *Microphone) Start(_ context.Context) error {
	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("%w: initializing portaudio: %v", application.ErrSpeechUnavailable, err)
	}

	stream, err := portaudio.OpenDefaultStream(1, 0, float64(m.sampleRate), framesPerBuffer, m.buffer)
	if err != nil {
		// The usual cause is the OS denying access to the input device.
		return fmt.Errorf("%w: opening input stream: %v", application.ErrPermissionDenied, err)
	}
	m.stream = stream

	if err := m.stream.Start(); err != nil {
		return fmt.Errorf("%w: starting input stream: %v", application.ErrPermissionDenied, err)
	}

	m.logger.Info("microphone ready", "sample_rate", m.sampleRate)
	return nil
}

func (m *Microphone) Stop() error {
	if m.stream != nil {
		m.stream.Stop()
		m.stream.Close()
	}
	portaudio.Terminate()
	return nil
}

// CaptureUtterance records until roughly a second of silence follows the
// speech, or the hard cap is hit, and returns the utterance as WAV.
func (m *Microphone) CaptureUtterance(ctx context.Context) ([]byte, error) {
	m.mu.Lock()
	if m.capturing {
		m.mu.Unlock()
		return nil, fmt.Errorf("capture already in progress")
	}
	m.capturing = true
	m.mu.Unlock()
	defer func() {
		m.mu.Lock()
		m.capturing = false
		m.mu.Unlock()
	}()

	if m.stream == nil {
		return nil, fmt.Errorf("%w: microphone not started", application.ErrSpeechUnavailable)
	}

	samples := make([]int16, 0, m.sampleRate*5)
	silenceThreshold := int16(500)
	silentSamples := 0
	maxSilence := m.sampleRate // ~1s of trailing silence ends the utterance

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		if err := m.stream.Read(); err != nil {
			return nil, fmt.Errorf("%w: reading from stream: %v", application.ErrRecognition, err)
		}

		chunk := make([]int16, len(m.buffer))
		copy(chunk, m.buffer)
		samples = append(samples, chunk...)

		silent := true
		for _, sample := range chunk {
			if sample > silenceThreshold || sample < -silenceThreshold {
				silent = false
				break
			}
		}
		if silent {
			silentSamples += len(chunk)
		} else {
			silentSamples = 0
		}

		if silentSamples > maxSilence && len(samples) > m.sampleRate {
			break
		}
		if len(samples) > m.sampleRate*10 {
			break
		}
	}

	return samplesToWAV(samples, m.sampleRate), nil
}
