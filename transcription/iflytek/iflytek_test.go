package iflytek

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/kbukum/scribe/errors"
	"github.com/kbukum/scribe/testutil"
	"github.com/kbukum/scribe/transcription"
)

var creds = transcription.Credentials{"appid": "5f2a1b3c", "access_key": "ak", "access_secret": "secret"}

func ok(data any) map[string]any {
	raw, _ := json.Marshal(data)
	return map[string]any{"ok": 0, "err_no": 0, "failed": nil, "data": string(raw)}
}

// task is the prepare response; its data is the bare task id.
func task(id string) map[string]any {
	return map[string]any{"ok": 0, "err_no": 0, "data": id}
}

func fail(errNo int, msg string) map[string]any {
	return map[string]any{"ok": -1, "err_no": errNo, "failed": msg, "data": nil}
}

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
	a.chunkSize = 4
	return a
}

func TestSignature(t *testing.T) {
	got := Signature("5f2a1b3c", "secret", "1709632800")
	if got != "z2173DC3umkwCa0c8dstBdDhzDg=" {
		t.Errorf("unexpected signa %q", got)
	}
}

func TestSliceID(t *testing.T) {
	tests := map[int]string{0: "aaaaaaaaaa", 1: "aaaaaaaaab", 25: "aaaaaaaaaz", 26: "aaaaaaaaba"}
	for index, want := range tests {
		if got := SliceID(index); got != want {
			t.Errorf("SliceID(%d): expected %q, got %q", index, want, got)
		}
	}
}

func TestTranscribe(t *testing.T) {
	srv := testutil.NewVendorServer(t)
	srv.Handle("POST /prepare", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		if r.PostForm.Get("slice_num") != "3" || r.PostForm.Get("file_len") != "10" || r.PostForm.Get("has_seperate") != "true" {
			t.Errorf("unexpected prepare form %v", r.PostForm)
		}
		if r.PostForm.Get("signa") != "z2173DC3umkwCa0c8dstBdDhzDg=" || r.PostForm.Get("ts") != "1709632800" {
			t.Errorf("unexpected signature params %v", r.PostForm)
		}
		testutil.WriteJSON(w, http.StatusOK, task("task-9"))
	})

	var mu sync.Mutex
	var slices []string
	srv.Handle("POST /upload", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
			return
		}
		if r.FormValue("task_id") != "task-9" || r.FormValue("signa") == "" {
			t.Errorf("unexpected upload fields %v", r.MultipartForm.Value)
		}
		mu.Lock()
		slices = append(slices, r.FormValue("slice_id"))
		mu.Unlock()
		testutil.WriteJSON(w, http.StatusOK, map[string]any{"ok": 0, "err_no": 0, "data": nil})
	})
	srv.HandleJSON("POST /merge", http.StatusOK, map[string]any{"ok": 0, "err_no": 0, "data": nil})
	srv.HandleSequence("POST /getProgress",
		testutil.JSON(http.StatusOK, fail(26605, "task processing")),
		testutil.JSON(http.StatusOK, ok(map[string]any{"status": 3, "desc": "transcribing"})),
		testutil.JSON(http.StatusOK, ok(map[string]any{"status": 9, "desc": "done"})),
	)
	srv.HandleJSON("POST /getResult", http.StatusOK, ok([]map[string]string{
		{"bg": "0", "ed": "1200", "onebest": "大家好", "speaker": "1"},
		{"bg": "1300", "ed": "2000", "onebest": "开始吧", "speaker": "2"},
	}))

	tr, err := newAdapter(t, srv, 5).Transcribe(context.Background(), testutil.MediaFile(t, "talk.mp3", []byte("0123456789")), creds)
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	want := []string{"aaaaaaaaaa", "aaaaaaaaab", "aaaaaaaaac"}
	if len(slices) != len(want) {
		t.Fatalf("expected slices %v, got %v", want, slices)
	}
	for i := range want {
		if slices[i] != want[i] {
			t.Errorf("slice %d: expected %q, got %q", i, want[i], slices[i])
		}
	}
	if len(tr.Segments) != 2 || tr.Segments[0].Speaker != "Speaker 1" || tr.Segments[1].End != 2*time.Second {
		t.Errorf("unexpected segments %+v", tr.Segments)
	}
	if n := srv.Count(http.MethodPost, "/getProgress"); n != 3 {
		t.Errorf("expected 3 progress checks, got %d", n)
	}
}

func TestTranscribeErrors(t *testing.T) {
	tests := []struct {
		name    string
		prepare map[string]any
		result  map[string]any
		want    errors.ErrorCode
	}{
		{"bad signature", fail(10110, "invalid signa"), nil, errors.ErrCodeVendorAuth},
		{"business failure", fail(26625, "audio too long"), nil, errors.ErrCodeVendorBusiness},
		{"result failure", task("task-1"), fail(26620, "engine error"), errors.ErrCodeVendorBusiness},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := testutil.NewVendorServer(t)
			srv.HandleJSON("POST /prepare", http.StatusOK, tc.prepare)
			srv.HandleJSON("POST /upload", http.StatusOK, map[string]any{"ok": 0, "err_no": 0})
			srv.HandleJSON("POST /merge", http.StatusOK, map[string]any{"ok": 0, "err_no": 0})
			srv.HandleJSON("POST /getProgress", http.StatusOK, ok(map[string]any{"status": 9}))
			srv.HandleJSON("POST /getResult", http.StatusOK, tc.result)

			_, err := newAdapter(t, srv, 3).Transcribe(context.Background(), testutil.MediaFile(t, "a.wav", []byte("abc")), creds)
			if !errors.IsCode(err, tc.want) {
				t.Errorf("expected %s, got %v", tc.want, err)
			}
		})
	}
}

func TestEmptyTranscript(t *testing.T) {
	srv := testutil.NewVendorServer(t)
	srv.HandleJSON("POST /prepare", http.StatusOK, task("task-1"))
	srv.HandleJSON("POST /upload", http.StatusOK, map[string]any{"ok": 0, "err_no": 0})
	srv.HandleJSON("POST /merge", http.StatusOK, map[string]any{"ok": 0, "err_no": 0})
	srv.HandleJSON("POST /getProgress", http.StatusOK, ok(map[string]any{"status": 9}))
	srv.HandleJSON("POST /getResult", http.StatusOK, fail(26606, "no speech"))

	tr, err := newAdapter(t, srv, 3).Transcribe(context.Background(), testutil.MediaFile(t, "a.wav", []byte("abc")), creds)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tr.Text != "" || len(tr.Segments) != 0 {
		t.Errorf("expected empty transcript, got %+v", tr)
	}
}

func TestEmptyFileRejected(t *testing.T) {
	srv := testutil.NewVendorServer(t)
	_, err := newAdapter(t, srv, 3).Transcribe(context.Background(), testutil.MediaFile(t, "a.wav", nil), creds)
	if !errors.IsCode(err, errors.ErrCodeInvalidInput) {
		t.Errorf("expected INVALID_INPUT, got %v", err)
	}
	if len(srv.Requests()) != 0 {
		t.Error("no request should be sent for an empty file")
	}
}
