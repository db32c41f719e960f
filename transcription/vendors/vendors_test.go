package vendors

import (
	"testing"

	"github.com/kbukum/scribe/errors"
	"github.com/kbukum/scribe/transcription"
)

func TestNewCoversCatalogue(t *testing.T) {
	for _, info := range transcription.Vendors() {
		t.Run(string(info.ID), func(t *testing.T) {
			a, err := New(info.ID, transcription.Options{})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if a.Vendor() != info.ID {
				t.Errorf("expected vendor %s, got %s", info.ID, a.Vendor())
			}
		})
	}
}

func TestNewUnknownVendor(t *testing.T) {
	_, err := New(transcription.Vendor("whisperx"), transcription.Options{})
	if !errors.IsCode(err, errors.ErrCodeUnsupportedVendor) {
		t.Errorf("expected UNSUPPORTED_VENDOR, got %v", err)
	}
}

func TestNewRejectsBadProxy(t *testing.T) {
	_, err := New(transcription.VendorDeepgram, transcription.Options{ProxyURL: "://bad"})
	if err == nil {
		t.Error("expected an invalid proxy URL to fail")
	}
}
