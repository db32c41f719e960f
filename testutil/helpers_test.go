package testutil

import (
	"bytes"
	"context"
	"net/http"
	"os"
	"strings"
	"testing"
)

func TestMediaFile(t *testing.T) {
	m := MediaFile(t, "call.mp3", []byte("abc"))
	if m.Ext != "mp3" || m.Size != 3 || m.Name != "call.mp3" {
		t.Errorf("unexpected media file %+v", m)
	}
	data, err := os.ReadFile(m.Path)
	if err != nil || string(data) != "abc" {
		t.Errorf("expected file content 'abc', got %q %v", data, err)
	}
}

func TestNoSleep(t *testing.T) {
	if err := NoSleep(context.Background(), 0); err != nil {
		t.Errorf("expected nil, got %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := NoSleep(ctx, 0); err == nil {
		t.Error("expected error for cancelled context")
	}
}

func TestVendorServerRecordsAndReplaysBody(t *testing.T) {
	srv := NewVendorServer(t)
	var seen string
	srv.Handle("POST /submit", func(w http.ResponseWriter, r *http.Request) {
		buf := new(bytes.Buffer)
		_, _ = buf.ReadFrom(r.Body)
		seen = buf.String()
		WriteJSON(w, http.StatusOK, map[string]string{"id": "1"})
	})

	resp, err := http.Post(srv.URL+"/submit?x=1", "text/plain", strings.NewReader("payload"))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	_ = resp.Body.Close()

	if seen != "payload" {
		t.Errorf("expected handler to see body, got %q", seen)
	}
	reqs := srv.Requests()
	if len(reqs) != 1 || string(reqs[0].Body) != "payload" || reqs[0].Query != "x=1" {
		t.Errorf("unexpected recorded requests %+v", reqs)
	}
	if srv.Count(http.MethodPost, "/submit") != 1 {
		t.Errorf("expected count 1")
	}
}

func TestHandleSequence(t *testing.T) {
	srv := NewVendorServer(t)
	srv.HandleSequence("GET /status",
		JSON(http.StatusOK, map[string]string{"s": "a"}),
		JSON(http.StatusOK, map[string]string{"s": "b"}),
	)
	var got []string
	for i := 0; i < 3; i++ {
		resp, err := http.Get(srv.URL + "/status")
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		buf := new(bytes.Buffer)
		_, _ = buf.ReadFrom(resp.Body)
		_ = resp.Body.Close()
		got = append(got, strings.TrimSpace(buf.String()))
	}
	want := []string{`{"s":"a"}`, `{"s":"b"}`, `{"s":"b"}`}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("call %d: expected %s, got %s", i, want[i], got[i])
		}
	}
}
