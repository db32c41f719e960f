package protocol

import (
	"bytes"
	"context"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/kbukum/scribe/errors"
	"github.com/kbukum/scribe/httpclient"
	"github.com/kbukum/scribe/logger"
	"github.com/kbukum/scribe/transcription"
)

func noSleep(context.Context, time.Duration) error { return nil }

func testPoller(n int) Poller {
	return Poller{Interval: time.Second, MaxAttempts: n, Sleep: noSleep}
}

func TestSubmitPollFailedOnFirstCheck(t *testing.T) {
	checks := 0
	_, err := SubmitPoll(context.Background(), testPoller(10), "soniox",
		func(context.Context) (string, error) { return "job-1", nil },
		func(_ context.Context, h string) (Result[string], error) {
			checks++
			if h != "job-1" {
				t.Errorf("expected handle job-1, got %s", h)
			}
			return Failed[string]("audio decode failed"), nil
		},
	)
	if !errors.IsCode(err, errors.ErrCodeVendorBusiness) {
		t.Fatalf("expected VENDOR_BUSINESS_ERROR, got %v", err)
	}
	if checks != 1 {
		t.Errorf("expected exactly 1 check, got %d", checks)
	}
	if !strings.Contains(err.Error(), "audio decode failed") {
		t.Errorf("expected vendor message in error, got %v", err)
	}
}

func TestSubmitPollTimeoutAfterExactlyMaxAttempts(t *testing.T) {
	checks := 0
	sleeps := 0
	p := Poller{Interval: time.Second, MaxAttempts: 7, Sleep: func(context.Context, time.Duration) error {
		sleeps++
		return nil
	}}
	_, err := SubmitPoll(context.Background(), p, "tencent",
		func(context.Context) (int, error) { return 1, nil },
		func(context.Context, int) (Result[string], error) {
			checks++
			return Pending[string](), nil
		},
	)
	if !errors.IsCode(err, errors.ErrCodePollTimeout) {
		t.Fatalf("expected POLL_TIMEOUT, got %v", err)
	}
	if checks != 7 {
		t.Errorf("expected 7 checks, got %d", checks)
	}
	if sleeps != 7 {
		t.Errorf("expected a wait before each check, got %d waits", sleeps)
	}
	appErr, _ := errors.AsAppError(err)
	if appErr.Details["attempts"] != 7 {
		t.Errorf("expected attempts=7 in details, got %v", appErr.Details["attempts"])
	}
}

func TestSubmitPollSucceedsAndReportsProgress(t *testing.T) {
	var reported [][2]int
	ctx := transcription.WithProgress(context.Background(), func(attempt, total int) {
		reported = append(reported, [2]int{attempt, total})
	})
	checks := 0
	got, err := SubmitPoll(ctx, testPoller(5), "aliyun",
		func(context.Context) (string, error) { return "t", nil },
		func(context.Context, string) (Result[string], error) {
			checks++
			if checks < 3 {
				return Pending[string](), nil
			}
			return Succeeded("done"), nil
		},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "done" {
		t.Errorf("expected 'done', got %q", got)
	}
	if len(reported) != 3 || reported[2] != [2]int{3, 5} {
		t.Errorf("unexpected progress reports %v", reported)
	}
}

func TestSubmitPollSubmitErrorSkipsPolling(t *testing.T) {
	submitErr := errors.VendorAuth("x", "bad key")
	_, err := SubmitPoll(context.Background(), testPoller(3), "x",
		func(context.Context) (string, error) { return "", submitErr },
		func(context.Context, string) (Result[string], error) {
			t.Error("check must not run after a failed submit")
			return Pending[string](), nil
		},
	)
	if err != submitErr {
		t.Errorf("expected submit error, got %v", err)
	}
}

func TestPollCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := Poller{Interval: time.Hour, MaxAttempts: 3}
	_, err := Poll(ctx, p, "x", func(context.Context) (Result[int], error) {
		t.Error("check must not run on a cancelled context")
		return Pending[int](), nil
	})
	if !errors.IsCode(err, errors.ErrCodeTimeout) {
		t.Errorf("expected TIMEOUT, got %v", err)
	}
}

func writeMedia(t *testing.T, size int) transcription.MediaFile {
	t.Helper()
	path := filepath.Join(t.TempDir(), "call.mp3")
	data := bytes.Repeat([]byte{'x'}, size)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write media: %v", err)
	}
	return transcription.MediaFile{Path: path, Name: "call.mp3", Ext: "mp3", Size: int64(size)}
}

func TestChunkedUploadMergePoll(t *testing.T) {
	file := writeMedia(t, 25)
	var calls []string
	var sizes []int
	got, err := ChunkedUploadMergePoll(context.Background(), testPoller(3), "iflytek", file, 10,
		ChunkedSteps[string, string]{
			Prepare: func(_ context.Context, chunks int) (string, error) {
				calls = append(calls, "prepare")
				if chunks != 3 {
					t.Errorf("expected 3 chunks, got %d", chunks)
				}
				return "task", nil
			},
			Upload: func(_ context.Context, h string, c Chunk) error {
				calls = append(calls, "upload")
				if c.Index != len(sizes) {
					t.Errorf("expected sequential index %d, got %d", len(sizes), c.Index)
				}
				sizes = append(sizes, len(c.Data))
				return nil
			},
			Merge: func(context.Context, string) error {
				calls = append(calls, "merge")
				return nil
			},
			Check: func(context.Context, string) (Result[string], error) {
				calls = append(calls, "check")
				return Succeeded("text"), nil
			},
		})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "text" {
		t.Errorf("expected 'text', got %q", got)
	}
	want := "prepare,upload,upload,upload,merge,check"
	if strings.Join(calls, ",") != want {
		t.Errorf("expected %s, got %s", want, strings.Join(calls, ","))
	}
	if len(sizes) != 3 || sizes[0] != 10 || sizes[1] != 10 || sizes[2] != 5 {
		t.Errorf("unexpected chunk sizes %v", sizes)
	}
}

func TestChunkedAuthErrorStopsUpload(t *testing.T) {
	file := writeMedia(t, 30)
	uploads := 0
	_, err := ChunkedUploadMergePoll(context.Background(), testPoller(3), "iflytek", file, 10,
		ChunkedSteps[string, string]{
			Prepare: func(context.Context, int) (string, error) { return "task", nil },
			Upload: func(context.Context, string, Chunk) error {
				uploads++
				return errors.VendorAuth("iflytek", "signature expired")
			},
			Merge: func(context.Context, string) error {
				t.Error("merge must not run")
				return nil
			},
			Check: func(context.Context, string) (Result[string], error) { return Pending[string](), nil },
		})
	if !errors.IsCode(err, errors.ErrCodeVendorAuth) {
		t.Errorf("expected VENDOR_AUTH_ERROR, got %v", err)
	}
	if uploads != 1 {
		t.Errorf("expected upload to stop after first failure, got %d", uploads)
	}
}

func TestChunkCount(t *testing.T) {
	tests := []struct {
		size int64
		want int
	}{{0, 0}, {1, 1}, {ChunkSize, 1}, {ChunkSize + 1, 2}, {3 * ChunkSize, 3}}
	for _, tc := range tests {
		if got := ChunkCount(tc.size, ChunkSize); got != tc.want {
			t.Errorf("ChunkCount(%d): expected %d, got %d", tc.size, tc.want, got)
		}
	}
}

func TestDoJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok":
			_, _ = w.Write([]byte(`{"text":"hello"}`))
		case "/bad-json":
			_, _ = w.Write([]byte(`{"text":`))
		case "/denied":
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":{"message":"invalid api key"}}`))
		case "/boom":
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(strings.Repeat("e", 800)))
		}
	}))
	defer srv.Close()
	client, err := httpclient.New(httpclient.Config{Name: "openai", BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	type body struct {
		Text string `json:"text"`
	}
	ctx := context.Background()

	got, err := DoJSON[body](ctx, client, "openai", httpclient.Request{Method: http.MethodGet, Path: "/ok"})
	if err != nil || got.Text != "hello" {
		t.Errorf("expected hello, got %v %v", got, err)
	}

	_, err = DoJSON[body](ctx, client, "openai", httpclient.Request{Method: http.MethodGet, Path: "/bad-json"})
	if !errors.IsCode(err, errors.ErrCodeVendorProtocol) {
		t.Errorf("expected VENDOR_PROTOCOL_ERROR for malformed JSON, got %v", err)
	}

	_, err = DoJSON[body](ctx, client, "openai", httpclient.Request{Method: http.MethodGet, Path: "/denied"})
	if !errors.IsCode(err, errors.ErrCodeVendorAuth) {
		t.Errorf("expected VENDOR_AUTH_ERROR for 401, got %v", err)
	}
	if err != nil && !strings.Contains(err.Error(), "invalid api key") {
		t.Errorf("expected JSON message detail, got %v", err)
	}

	_, err = DoJSON[body](ctx, client, "openai", httpclient.Request{Method: http.MethodGet, Path: "/boom"})
	if !errors.IsCode(err, errors.ErrCodeVendorProtocol) {
		t.Errorf("expected VENDOR_PROTOCOL_ERROR for 500, got %v", err)
	}
}

func TestDetail(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"message field", `{"message":"quota exceeded"}`, "quota exceeded"},
		{"nested error", `{"error":{"message":"bad model"}}`, "bad model"},
		{"tencent", `{"Response":{"Error":{"Code":"AuthFailure","Message":"sig expired"}}}`, "sig expired"},
		{"plain text", `upstream down`, "upstream down"},
		{"empty", ``, "HTTP 502"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Detail([]byte(tc.body), "HTTP 502"); got != tc.want {
				t.Errorf("expected %q, got %q", tc.want, got)
			}
		})
	}
	long := Detail([]byte(strings.Repeat("a", 900)), "")
	if len(long) > 503 {
		t.Errorf("expected detail truncated near 500 bytes, got %d", len(long))
	}
}

func TestFromHTTPPassesAppErrors(t *testing.T) {
	orig := errors.VendorBusiness("x", "y")
	if FromHTTP("x", orig) != orig {
		t.Error("expected AppError to pass through")
	}
	if FromHTTP("x", nil) != nil {
		t.Error("expected nil for nil")
	}
	err := FromHTTP("x", stderrors.New("dial failed"))
	if !errors.IsCode(err, errors.ErrCodeVendorProtocol) {
		t.Errorf("expected VENDOR_PROTOCOL_ERROR, got %v", err)
	}
}

func TestCleanupSwallowsFailures(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWriter(&buf, "warn")
	ran := 0
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	Cleanup(ctx, log, "soniox",
		func(ctx context.Context) error {
			ran++
			if ctx.Err() != nil {
				t.Error("cleanup context must not inherit cancellation")
			}
			return stderrors.New("404")
		},
		func(context.Context) error { ran++; return nil },
	)
	if ran != 2 {
		t.Errorf("expected both cleanups to run, got %d", ran)
	}
	if !strings.Contains(buf.String(), "vendor cleanup failed") {
		t.Errorf("expected a warning, got %q", buf.String())
	}
}
