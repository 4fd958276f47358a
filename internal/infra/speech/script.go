package speech

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sync"

	"voice-survey/internal/application"
)

// ScriptListener replays transcripts from a reader, one line per listen
// cycle. Useful for rehearsing a survey without a microphone. When the
// script runs out the capability is reported unavailable, which sends the
// flow to the manual path.
type ScriptListener struct {
	mu      sync.Mutex
	scanner *bufio.Scanner
}

func NewScriptListener(r io.Reader) *ScriptListener {
	return &ScriptListener{scanner: bufio.NewScanner(r)}
}

func (l *ScriptListener) Listen(_ context.Context) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.scanner.Scan() {
		return l.scanner.Text(), nil
	}
	return "", fmt.Errorf("%w: transcript script exhausted", application.ErrSpeechUnavailable)
}
