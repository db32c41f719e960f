package aliyun

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/kbukum/scribe/errors"
	"github.com/kbukum/scribe/testutil"
	"github.com/kbukum/scribe/transcription"
)

func setupServer(t *testing.T, finalStatus string) *testutil.VendorServer {
	t.Helper()
	srv := testutil.NewVendorServer(t)
	srv.HandleJSON("GET /api/v1/uploads", http.StatusOK, map[string]any{
		"data": map[string]any{
			"policy":                 "cG9saWN5",
			"signature":              "sig",
			"upload_dir":             "dashscope-instant/abc/",
			"upload_host":            srv.URL + "/oss",
			"oss_access_key_id":      "LTAI",
			"x_oss_object_acl":       "private",
			"x_oss_forbid_overwrite": "true",
		},
	})
	srv.Handle("POST /oss", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "" {
			t.Error("OSS form upload must not carry the DashScope key")
		}
		if got := r.FormValue("key"); got != "dashscope-instant/abc/call.mp3" {
			t.Errorf("unexpected object key %q", got)
		}
		w.WriteHeader(http.StatusOK)
	})
	srv.Handle("POST /api/v1/services/audio/asr/transcription", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-DashScope-Async") != "enable" || r.Header.Get("X-DashScope-OssResourceResolve") != "enable" {
			t.Error("expected async and oss resolve headers")
		}
		var body submitRequest
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body.Model != "paraformer-v2" || len(body.Input.FileURLs) != 1 || body.Input.FileURLs[0] != "oss://dashscope-instant/abc/call.mp3" {
			t.Errorf("unexpected submit body %+v", body)
		}
		testutil.WriteJSON(w, http.StatusOK, map[string]any{"output": map[string]any{"task_id": "task-9", "task_status": "PENDING"}})
	})
	srv.HandleSequence("GET /api/v1/tasks/task-9",
		testutil.JSON(http.StatusOK, map[string]any{"output": map[string]any{"task_id": "task-9", "task_status": "RUNNING"}}),
		testutil.JSON(http.StatusOK, map[string]any{"output": map[string]any{
			"task_id":     "task-9",
			"task_status": finalStatus,
			"code":        "InvalidFile.DecodeFailed",
			"message":     "decode failed",
			"results": []any{map[string]any{
				"transcription_url": srv.URL + "/result.json",
				"subtask_status":    "SUCCEEDED",
			}},
		}}),
	)
	srv.HandleJSON("GET /result.json", http.StatusOK, map[string]any{
		"transcripts": []any{map[string]any{
			"text": "你好。我很好。",
			"sentences": []any{
				map[string]any{"begin_time": 100, "end_time": 900, "text": "你好。", "speaker_id": 0},
				map[string]any{"begin_time": 1000, "end_time": 2000, "text": "我很好。", "speaker_id": 1},
			},
		}},
	})
	return srv
}

func TestTranscribe(t *testing.T) {
	srv := setupServer(t, "SUCCEEDED")
	a, err := New(transcription.Options{BaseURL: srv.URL, Sleep: testutil.NoSleep, MaxPollAttempts: 4})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	tr, err := a.Transcribe(context.Background(), testutil.MediaFile(t, "call.mp3", []byte("audio")),
		transcription.Credentials{"api_key": "sk-ali"})
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if len(tr.Segments) != 2 || tr.Segments[1].Text != "我很好。" {
		t.Errorf("unexpected segments %+v", tr.Segments)
	}
	if srv.Count(http.MethodGet, "/api/v1/tasks/task-9") != 2 {
		t.Errorf("expected 2 status checks, got %d", srv.Count(http.MethodGet, "/api/v1/tasks/task-9"))
	}
	for _, r := range srv.Requests() {
		if r.Path == "/api/v1/tasks/task-9" && r.Header.Get("Authorization") != "Bearer sk-ali" {
			t.Error("expected bearer auth on status checks")
		}
	}
}

func TestTranscribeTaskFailed(t *testing.T) {
	srv := setupServer(t, "FAILED")
	a, _ := New(transcription.Options{BaseURL: srv.URL, Sleep: testutil.NoSleep, MaxPollAttempts: 4})
	_, err := a.Transcribe(context.Background(), testutil.MediaFile(t, "call.mp3", []byte("audio")),
		transcription.Credentials{"api_key": "sk-ali"})
	if !errors.IsCode(err, errors.ErrCodeVendorBusiness) {
		t.Fatalf("expected VENDOR_BUSINESS_ERROR, got %v", err)
	}
	if srv.Count(http.MethodGet, "/result.json") != 0 {
		t.Error("result must not be fetched for a failed task")
	}
}

func TestTranscribeUnknownStatusKeepsPolling(t *testing.T) {
	srv := setupServer(t, "SUSPENDED")
	a, _ := New(transcription.Options{BaseURL: srv.URL, Sleep: testutil.NoSleep, MaxPollAttempts: 4})
	_, err := a.Transcribe(context.Background(), testutil.MediaFile(t, "call.mp3", []byte("audio")),
		transcription.Credentials{"api_key": "sk-ali"})
	if !errors.IsCode(err, errors.ErrCodePollTimeout) {
		t.Fatalf("expected POLL_TIMEOUT, got %v", err)
	}
	if n := srv.Count(http.MethodGet, "/api/v1/tasks/task-9"); n != 4 {
		t.Errorf("expected 4 status checks, got %d", n)
	}
}
