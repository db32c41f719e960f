package volcengine

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/kbukum/scribe/errors"
	"github.com/kbukum/scribe/testutil"
	"github.com/kbukum/scribe/transcription"
)

var creds = transcription.Credentials{"app_id": "app", "access_token": "tok"}

func status(code, message string, body any) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("X-Api-Status-Code", code)
		w.Header().Set("X-Api-Message", message)
		testutil.WriteJSON(w, http.StatusOK, body)
	}
}

func newAdapter(t *testing.T, srv *testutil.VendorServer) *Adapter {
	t.Helper()
	a, err := New(transcription.Options{BaseURL: srv.URL, Sleep: testutil.NoSleep, MaxPollAttempts: 4})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	a.newID = func() string { return "req-1" }
	return a
}

func TestTranscribe(t *testing.T) {
	srv := testutil.NewVendorServer(t)
	srv.Handle("POST /api/v3/auc/bigmodel/submit", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Api-App-Key") != "app" || r.Header.Get("X-Api-Access-Key") != "tok" ||
			r.Header.Get("X-Api-Resource-Id") != "volc.bigasr.auc" || r.Header.Get("X-Api-Request-Id") != "req-1" {
			t.Errorf("unexpected headers %v", r.Header)
		}
		var body submitRequest
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body.Audio.Format != "mp3" || body.Audio.Data == "" || body.Request["enable_speaker_info"] != true {
			t.Errorf("unexpected submit body %+v", body)
		}
		status("20000000", "OK", map[string]any{})(w, r)
	})
	srv.HandleSequence("POST /api/v3/auc/bigmodel/query",
		status("20000002", "queued", map[string]any{}),
		status("20000001", "processing", map[string]any{}),
		status("20000000", "OK", map[string]any{"result": map[string]any{
			"text": "你好我好",
			"utterances": []any{
				map[string]any{"start_time": 0, "end_time": 800, "text": "你好", "additions": map[string]any{"speaker": "1"}},
				map[string]any{"start_time": 900, "end_time": 1700, "text": "我好", "additions": map[string]any{"speaker": "2"}},
			},
		}}),
	)

	tr, err := newAdapter(t, srv).Transcribe(context.Background(), testutil.MediaFile(t, "call.mp3", []byte("audio")), creds)
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if len(tr.Segments) != 2 || tr.Segments[1].Speaker != "Speaker 2" {
		t.Errorf("unexpected segments %+v", tr.Segments)
	}
	if n := srv.Count(http.MethodPost, "/api/v3/auc/bigmodel/query"); n != 3 {
		t.Errorf("expected 3 queries, got %d", n)
	}
}

func TestQueryStatusCodes(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		wantErr  errors.ErrorCode
		wantText string
		queries  int
	}{
		{"silent audio is empty", "20000003", "", "", 1},
		{"client error fails", "45000001", errors.ErrCodeVendorBusiness, "", 1},
		{"server error fails", "55000031", errors.ErrCodeVendorBusiness, "", 1},
		{"unknown code keeps polling", "20000099", errors.ErrCodePollTimeout, "", 4},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := testutil.NewVendorServer(t)
			srv.Handle("POST /api/v3/auc/bigmodel/submit", status("20000000", "OK", map[string]any{}))
			srv.Handle("POST /api/v3/auc/bigmodel/query", status(tc.code, "msg", map[string]any{}))

			tr, err := newAdapter(t, srv).Transcribe(context.Background(), testutil.MediaFile(t, "a.wav", []byte("x")), creds)
			if tc.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if tr.Text != tc.wantText {
					t.Errorf("expected %q, got %q", tc.wantText, tr.Text)
				}
			} else if !errors.IsCode(err, tc.wantErr) {
				t.Errorf("expected %s, got %v", tc.wantErr, err)
			}
			if n := srv.Count(http.MethodPost, "/api/v3/auc/bigmodel/query"); n != tc.queries {
				t.Errorf("expected %d queries, got %d", tc.queries, n)
			}
		})
	}
}

func TestSubmitRejected(t *testing.T) {
	srv := testutil.NewVendorServer(t)
	srv.Handle("POST /api/v3/auc/bigmodel/submit", status("45000002", "empty audio", map[string]any{}))
	_, err := newAdapter(t, srv).Transcribe(context.Background(), testutil.MediaFile(t, "a.wav", []byte("x")), creds)
	if !errors.IsCode(err, errors.ErrCodeVendorBusiness) {
		t.Errorf("expected VENDOR_BUSINESS_ERROR, got %v", err)
	}
	if srv.Count(http.MethodPost, "/api/v3/auc/bigmodel/query") != 0 {
		t.Error("query must not run after a rejected submit")
	}
}
