package audio

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// FileCapturer answers listen cycles with pre-recorded utterances dropped
// into a directory. Each call waits for the next unprocessed audio file,
// returns its contents and renames it so it is consumed once. Lets a
// survey be taken without a live microphone.
type FileCapturer struct {
	dir       string
	processed map[string]bool
	mu        sync.Mutex
}

func NewFileCapturer(dir string) *FileCapturer {
	return &FileCapturer{
		dir:       dir,
		processed: make(map[string]bool),
	}
}

func (f *FileCapturer) Start(_ context.Context) error {
	if err := os.MkdirAll(f.dir, 0755); err != nil {
		return fmt.Errorf("creating audio dir: %w", err)
	}
	return nil
}

func (f *FileCapturer) Stop() error {
	return nil
}

// CaptureUtterance polls the directory until an unprocessed audio file
// shows up or the context ends.
func (f *FileCapturer) CaptureUtterance(ctx context.Context) ([]byte, error) {
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		audio, err := f.nextFile()
		if err != nil {
			return nil, err
		}
		if audio != nil {
			return audio, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

func (f *FileCapturer) nextFile() ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	entries, err := os.ReadDir(f.dir)
	if err != nil {
		return nil, fmt.Errorf("reading audio dir: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		ext := filepath.Ext(entry.Name())
		if ext != ".wav" && ext != ".mp3" && ext != ".m4a" && ext != ".webm" {
			continue
		}

		path := filepath.Join(f.dir, entry.Name())
		if f.processed[path] {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading file %s: %w", path, err)
		}

		f.processed[path] = true
		os.Rename(path, path+".processed")

		return data, nil
	}

	return nil, nil
}
