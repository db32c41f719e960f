package tencent

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/kbukum/scribe/errors"
	"github.com/kbukum/scribe/testutil"
	"github.com/kbukum/scribe/transcription"
)

var creds = transcription.Credentials{"appid": "1400000000", "secret_id": "AKIDtest", "secret_key": "sk"}

func newAdapter(t *testing.T, srv *testutil.VendorServer, attempts int) *Adapter {
	t.Helper()
	a, err := New(transcription.Options{
		BaseURL:         srv.URL,
		Sleep:           testutil.NoSleep,
		MaxPollAttempts: attempts,
		Now:             testutil.FixedClock(time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return a
}

// actionRouter dispatches on X-TC-Action since every call posts to "/".
func actionRouter(t *testing.T, statuses ...map[string]any) http.HandlerFunc {
	i := 0
	return func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.Header.Get("Authorization"), "TC3-HMAC-SHA256 Credential=AKIDtest/2024-03-05/asr/tc3_request") {
			t.Errorf("unsigned request %q", r.Header.Get("Authorization"))
		}
		if r.Header.Get("X-TC-Timestamp") == "" || r.Header.Get("X-TC-Version") != "2019-06-14" {
			t.Error("missing TC3 headers")
		}
		switch r.Header.Get("X-TC-Action") {
		case "CreateRecTask":
			var body createRecTask
			_ = json.NewDecoder(r.Body).Decode(&body)
			if body.SpeakerDiarization != 1 || body.ResTextFormat != 2 || body.EngineModelType != "16k_zh" || body.Data == "" {
				t.Errorf("unexpected create body %+v", body)
			}
			testutil.WriteJSON(w, http.StatusOK, map[string]any{"Response": map[string]any{"Data": map[string]any{"TaskId": 1234}}})
		case "DescribeTaskStatus":
			st := statuses[i]
			if i < len(statuses)-1 {
				i++
			}
			testutil.WriteJSON(w, http.StatusOK, map[string]any{"Response": map[string]any{"Data": st}})
		default:
			t.Errorf("unexpected action %q", r.Header.Get("X-TC-Action"))
		}
	}
}

func TestTranscribe(t *testing.T) {
	srv := testutil.NewVendorServer(t)
	srv.Handle("POST /", actionRouter(t,
		map[string]any{"TaskId": 1234, "Status": 0},
		map[string]any{"TaskId": 1234, "Status": 1},
		map[string]any{"TaskId": 1234, "Status": 2, "Result": "x", "ResultDetail": []any{
			map[string]any{"FinalSentence": "喂你好。", "StartMs": 0, "EndMs": 1500, "SpeakerId": 0},
			map[string]any{"FinalSentence": "你好。", "StartMs": 1600, "EndMs": 2500, "SpeakerId": 1},
		}},
	))

	tr, err := newAdapter(t, srv, 5).Transcribe(context.Background(), testutil.MediaFile(t, "call.wav", []byte("RIFF")), creds)
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if len(tr.Segments) != 2 || tr.Segments[0].Text != "喂你好。" {
		t.Errorf("unexpected segments %+v", tr.Segments)
	}
	if got := len(srv.Requests()); got != 4 {
		t.Errorf("expected 1 create + 3 status calls, got %d", got)
	}
}

func TestTranscribeFailedStatus(t *testing.T) {
	srv := testutil.NewVendorServer(t)
	srv.Handle("POST /", actionRouter(t, map[string]any{"TaskId": 1234, "Status": 3, "ErrorMsg": "audio too short"}))
	_, err := newAdapter(t, srv, 5).Transcribe(context.Background(), testutil.MediaFile(t, "call.wav", []byte("RIFF")), creds)
	if !errors.IsCode(err, errors.ErrCodeVendorBusiness) {
		t.Fatalf("expected VENDOR_BUSINESS_ERROR, got %v", err)
	}
}

func TestTranscribeAuthFailure(t *testing.T) {
	srv := testutil.NewVendorServer(t)
	srv.HandleJSON("POST /", http.StatusOK, map[string]any{"Response": map[string]any{
		"Error": map[string]any{"Code": "AuthFailure.SignatureExpire", "Message": "signature expired"},
	}})
	_, err := newAdapter(t, srv, 5).Transcribe(context.Background(), testutil.MediaFile(t, "call.wav", []byte("RIFF")), creds)
	if !errors.IsCode(err, errors.ErrCodeVendorAuth) {
		t.Fatalf("expected VENDOR_AUTH_ERROR, got %v", err)
	}
}

func TestTranscribeMissingSecret(t *testing.T) {
	srv := testutil.NewVendorServer(t)
	_, err := newAdapter(t, srv, 5).Transcribe(context.Background(), testutil.MediaFile(t, "call.wav", []byte("RIFF")),
		transcription.Credentials{"appid": "1", "secret_id": "x"})
	if !errors.IsCode(err, errors.ErrCodeMissingField) {
		t.Fatalf("expected MISSING_FIELD, got %v", err)
	}
	if len(srv.Requests()) != 0 {
		t.Error("no request may be sent without credentials")
	}
}
