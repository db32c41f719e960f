package signer

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/kbukum/scribe/httpclient"
)

var fixedTime = time.Date(2024, 3, 5, 23, 30, 0, 0, time.UTC)

func baseRequest() Request {
	return Request{
		Method:    "POST",
		Path:      "/",
		Headers:   map[string]string{"Content-Type": "application/json; charset=utf-8", "Host": "asr.tencentcloudapi.com"},
		Payload:   []byte(`{"TaskId":42}`),
		Timestamp: fixedTime,
	}
}

func TestSignDeterministic(t *testing.T) {
	s := TC3("asr", "AKIDexample", "secret")
	a := s.Sign(baseRequest())
	b := s.Sign(baseRequest())
	if a != b {
		t.Errorf("expected identical signatures, got %+v and %+v", a, b)
	}
}

func TestSignFormat(t *testing.T) {
	sig := TC3("asr", "AKIDexample", "secret").Sign(baseRequest())

	prefix := "TC3-HMAC-SHA256 Credential=AKIDexample/2024-03-05/asr/tc3_request, SignedHeaders=content-type;host, Signature="
	if !strings.HasPrefix(sig.Authorization, prefix) {
		t.Errorf("unexpected authorization %q", sig.Authorization)
	}
	if hexSig := strings.TrimPrefix(sig.Authorization, prefix); len(hexSig) != 64 {
		t.Errorf("expected 64 hex chars, got %d", len(hexSig))
	}
	if sig.Timestamp != "1709681400" {
		t.Errorf("expected unix timestamp 1709681400, got %s", sig.Timestamp)
	}

	wantCanonical := "POST\n/\n\ncontent-type:application/json; charset=utf-8\nhost:asr.tencentcloudapi.com\n\ncontent-type;host\n"
	if !strings.HasPrefix(sig.CanonicalRequest, wantCanonical) {
		t.Errorf("unexpected canonical request %q", sig.CanonicalRequest)
	}
	if !strings.HasPrefix(sig.StringToSign, "TC3-HMAC-SHA256\n1709681400\n2024-03-05/asr/tc3_request\n") {
		t.Errorf("unexpected string to sign %q", sig.StringToSign)
	}
	if got := sig.Headers()["X-TC-Timestamp"]; got != "1709681400" {
		t.Errorf("expected timestamp header, got %q", got)
	}
}

func TestSignSingleByteSensitivity(t *testing.T) {
	base := TC3("asr", "AKIDexample", "secret").Sign(baseRequest()).Authorization

	mutations := map[string]func() string{
		"secret key": func() string { return TC3("asr", "AKIDexample", "secreT").Sign(baseRequest()).Authorization },
		"service":    func() string { return TC3("asa", "AKIDexample", "secret").Sign(baseRequest()).Authorization },
		"payload": func() string {
			r := baseRequest()
			r.Payload = []byte(`{"TaskId":43}`)
			return TC3("asr", "AKIDexample", "secret").Sign(r).Authorization
		},
		"method": func() string {
			r := baseRequest()
			r.Method = "GET"
			return TC3("asr", "AKIDexample", "secret").Sign(r).Authorization
		},
		"host": func() string {
			r := baseRequest()
			r.Headers["Host"] = "asr.tencentcloudapi.co"
			return TC3("asr", "AKIDexample", "secret").Sign(r).Authorization
		},
		"timestamp": func() string {
			r := baseRequest()
			r.Timestamp = fixedTime.Add(time.Second)
			return TC3("asr", "AKIDexample", "secret").Sign(r).Authorization
		},
		"query": func() string {
			r := baseRequest()
			r.Query = "a=1"
			return TC3("asr", "AKIDexample", "secret").Sign(r).Authorization
		},
	}
	for name, mutate := range mutations {
		t.Run(name, func(t *testing.T) {
			if mutate() == base {
				t.Errorf("expected signature to change when %s changes", name)
			}
		})
	}
}

func TestAuthSignsAtSendTime(t *testing.T) {
	var gotAuth, gotTS, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotTS = r.Header.Get("X-TC-Timestamp")
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client, err := httpclient.New(httpclient.Config{BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	s := TC3At("asr", "AKIDexample", "secret", func() time.Time { return fixedTime })
	_, err = client.Do(context.Background(), httpclient.Request{
		Method:  http.MethodPost,
		Path:    "/",
		Headers: map[string]string{"Content-Type": "application/json; charset=utf-8"},
		Body:    []byte(`{"TaskId":42}`),
		Auth:    s.Auth(),
	})
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if gotBody != `{"TaskId":42}` {
		t.Errorf("expected body to survive signing, got %q", gotBody)
	}
	if gotTS != "1709681400" {
		t.Errorf("expected timestamp header, got %q", gotTS)
	}
	if !strings.HasPrefix(gotAuth, "TC3-HMAC-SHA256 Credential=AKIDexample/2024-03-05/asr/tc3_request") {
		t.Errorf("unexpected authorization %q", gotAuth)
	}
}

type brokenBody struct{}

func (brokenBody) Read([]byte) (int, error) { return 0, io.ErrUnexpectedEOF }

func TestAuthUnreadableBodyFailsRequest(t *testing.T) {
	req, err := http.NewRequest(http.MethodPost, "https://asr.tencentcloudapi.com/", io.NopCloser(brokenBody{}))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	err = TC3At("asr", "AKIDexample", "secret", func() time.Time { return fixedTime }).Auth().Apply(req)
	if err == nil || !strings.Contains(err.Error(), "read payload") {
		t.Fatalf("expected payload error, got %v", err)
	}
	if req.Header.Get("Authorization") != "" {
		t.Errorf("expected no authorization header, got %q", req.Header.Get("Authorization"))
	}
}
