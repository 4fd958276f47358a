package speech

import (
	"context"
	"time"
)

// Heartbeat periodically checks that the speech engine is still active and
// nudges it if so. It exits when the utterance's context ends or the
// engine reports inactive (natural end of speech). The nudges themselves
// are not observable as completion events.
func Heartbeat(ctx context.Context, interval time.Duration, active func() bool, nudge func()) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !active() {
				return
			}
			nudge()
		}
	}
}
