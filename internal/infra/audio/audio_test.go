package audio

import (
	"bytes"
	"context"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestSamplesToWAV(t *testing.T) {
	samples := []int16{0, 1000, -1000, 32767}
	wav := samplesToWAV(samples, 16000)

	if !bytes.HasPrefix(wav, []byte("RIFF")) {
		t.Fatal("missing RIFF header")
	}
	if !bytes.Equal(wav[8:12], []byte("WAVE")) {
		t.Fatal("missing WAVE marker")
	}

	rate := binary.LittleEndian.Uint32(wav[24:28])
	if rate != 16000 {
		t.Errorf("sample rate: got %d", rate)
	}

	dataSize := binary.LittleEndian.Uint32(wav[40:44])
	if int(dataSize) != len(samples)*2 {
		t.Errorf("data size: got %d, want %d", dataSize, len(samples)*2)
	}
	if len(wav) != 44+len(samples)*2 {
		t.Errorf("total size: got %d", len(wav))
	}
}

func TestPCMToSamplesRoundTrip(t *testing.T) {
	samples := []int16{0, 1, -1, 12345, -12345}
	pcm := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(pcm[i*2:], uint16(s))
	}

	got := pcmToSamples(pcm)
	if len(got) != len(samples) {
		t.Fatalf("length: got %d", len(got))
	}
	for i := range samples {
		if got[i] != samples[i] {
			t.Errorf("sample %d: got %d, want %d", i, got[i], samples[i])
		}
	}

	// Trailing odd byte is dropped.
	if got := pcmToSamples(append(pcm, 0xff)); len(got) != len(samples) {
		t.Errorf("odd input length: got %d samples", len(got))
	}
}

func TestFileCapturer(t *testing.T) {
	dir := t.TempDir()
	capt := NewFileCapturer(dir)
	if err := capt.Start(context.Background()); err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(dir, "answer1.wav")
	if err := os.WriteFile(path, []byte("fake-wav"), 0644); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	audio, err := capt.CaptureUtterance(ctx)
	if err != nil {
		t.Fatalf("capture: %v", err)
	}
	if string(audio) != "fake-wav" {
		t.Errorf("unexpected audio %q", audio)
	}

	// The file is consumed once.
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("consumed file was not renamed")
	}
	if _, err := os.Stat(path + ".processed"); err != nil {
		t.Errorf("processed file missing: %v", err)
	}

	// Nothing new: the capture waits until the context ends.
	shortCtx, shortCancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer shortCancel()
	if _, err := capt.CaptureUtterance(shortCtx); err == nil {
		t.Error("expected a context error with no pending files")
	}

	// Non-audio files are ignored.
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "answer2.mp3"), []byte("mp3-data"), 0644); err != nil {
		t.Fatal(err)
	}
	audio, err = capt.CaptureUtterance(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if string(audio) != "mp3-data" {
		t.Errorf("unexpected audio %q", audio)
	}
}
