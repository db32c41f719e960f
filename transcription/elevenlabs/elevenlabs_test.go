package elevenlabs

import (
	"context"
	"net/http"
	"testing"

	"github.com/kbukum/scribe/errors"
	"github.com/kbukum/scribe/testutil"
	"github.com/kbukum/scribe/transcription"
)

func TestTranscribe(t *testing.T) {
	srv := testutil.NewVendorServer(t)
	srv.Handle("POST /v1/speech-to-text", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("xi-api-key") != "xi-key" {
			t.Errorf("expected xi-api-key header, got %q", r.Header.Get("xi-api-key"))
		}
		if r.FormValue("model_id") != "scribe_v1" || r.FormValue("diarize") != "true" {
			t.Errorf("unexpected form fields model_id=%q diarize=%q", r.FormValue("model_id"), r.FormValue("diarize"))
		}
		testutil.WriteJSON(w, http.StatusOK, map[string]any{
			"language_code": "eng",
			"text":          "Hi there. Hello.",
			"words": []any{
				map[string]any{"text": "Hi", "start": 0.0, "end": 0.4, "type": "word", "speaker_id": "speaker_0"},
				map[string]any{"text": " ", "start": 0.4, "end": 0.5, "type": "spacing", "speaker_id": "speaker_0"},
				map[string]any{"text": "there.", "start": 0.5, "end": 1.0, "type": "word", "speaker_id": "speaker_0"},
				map[string]any{"text": "(laughs)", "start": 1.0, "end": 1.5, "type": "audio_event", "speaker_id": "speaker_1"},
				map[string]any{"text": "Hello.", "start": 2.0, "end": 3.2, "type": "word", "speaker_id": "speaker_1"},
			},
		})
	})

	a, err := New(transcription.Options{BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	tr, err := a.Transcribe(context.Background(), testutil.MediaFile(t, "a.m4a", []byte("x")),
		transcription.Credentials{"api_key": "xi-key"})
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if len(tr.Segments) != 2 {
		t.Fatalf("expected 2 segments, got %+v", tr.Segments)
	}
	if tr.Segments[0].Text != "Hi there." || tr.Segments[1].Text != "Hello." {
		t.Errorf("unexpected segment texts %q / %q", tr.Segments[0].Text, tr.Segments[1].Text)
	}
	if tr.Metadata.Language != "eng" || tr.Metadata.SpeakerCount != 2 {
		t.Errorf("unexpected metadata %+v", tr.Metadata)
	}
}

func TestTranscribeUnrecognized(t *testing.T) {
	srv := testutil.NewVendorServer(t)
	srv.HandleJSON("POST /v1/speech-to-text", http.StatusOK, map[string]any{"detail": "ok"})
	a, _ := New(transcription.Options{BaseURL: srv.URL})
	_, err := a.Transcribe(context.Background(), testutil.MediaFile(t, "a.m4a", []byte("x")),
		transcription.Credentials{"api_key": "k"})
	if !errors.IsCode(err, errors.ErrCodeVendorProtocol) {
		t.Errorf("expected VENDOR_PROTOCOL_ERROR, got %v", err)
	}
}
