package testutil

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/kbukum/scribe/transcription"
)

// MediaFile writes data to a temp file named name and returns it as an
// upload.
func MediaFile(t *testing.T, name string, data []byte) transcription.MediaFile {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("testutil: write media: %v", err)
	}
	return transcription.MediaFile{
		Path: path,
		Name: name,
		Ext:  extOf(name),
		Size: int64(len(data)),
	}
}

func extOf(name string) string {
	ext := filepath.Ext(name)
	if ext == "" {
		return ""
	}
	return ext[1:]
}

// NoSleep is a Poller sleep that returns at once unless ctx is done.
func NoSleep(ctx context.Context, _ time.Duration) error {
	return ctx.Err()
}

// FixedClock returns a clock stuck at t.
func FixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
