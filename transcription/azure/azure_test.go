package azure

import (
	"context"
	"net/http"
	"testing"

	"github.com/kbukum/scribe/errors"
	"github.com/kbukum/scribe/testutil"
	"github.com/kbukum/scribe/transcription"
)

func azureCreds() transcription.Credentials {
	return transcription.Credentials{"key1": "k1", "region": "eastus"}
}

func TestTranscribe(t *testing.T) {
	srv := testutil.NewVendorServer(t)
	srv.Handle("POST /speechtotext/transcriptions:transcribe", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("api-version") != "2024-11-15" {
			t.Errorf("unexpected api-version %q", r.URL.Query().Get("api-version"))
		}
		if r.Header.Get("Ocp-Apim-Subscription-Key") != "k1" {
			t.Errorf("expected subscription key header")
		}
		if r.FormValue("definition") == "" {
			t.Errorf("expected definition part")
		}
		if _, _, err := r.FormFile("audio"); err != nil {
			t.Errorf("expected audio part: %v", err)
		}
		testutil.WriteJSON(w, http.StatusOK, map[string]any{
			"durationMilliseconds": 4000,
			"combinedPhrases":      []any{map[string]any{"text": "你好再见"}},
			"phrases": []any{
				map[string]any{"offsetMilliseconds": 0, "durationMilliseconds": 1200, "speaker": 1, "text": "你好", "locale": "zh-CN"},
				map[string]any{"offsetMilliseconds": 1300, "durationMilliseconds": 800, "speaker": 1, "text": "呀", "locale": "zh-CN"},
				map[string]any{"offsetMilliseconds": 2500, "durationMilliseconds": 1500, "speaker": 2, "text": "再见", "locale": "zh-CN"},
			},
		})
	})

	a, err := New(transcription.VendorAzureGlobal, transcription.Options{BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	tr, err := a.Transcribe(context.Background(), testutil.MediaFile(t, "a.wav", []byte("RIFF")), azureCreds())
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if len(tr.Segments) != 2 || tr.Segments[0].Text != "你好呀" {
		t.Fatalf("unexpected segments %+v", tr.Segments)
	}
	if tr.Segments[0].End.Milliseconds() != 2100 {
		t.Errorf("expected first segment to end at 2100ms, got %v", tr.Segments[0].End)
	}
	if tr.Metadata.Language != "zh-CN" {
		t.Errorf("expected zh-CN, got %q", tr.Metadata.Language)
	}
}

func TestEndpoint(t *testing.T) {
	tests := []struct {
		name   string
		vendor transcription.Vendor
		creds  transcription.Credentials
		want   string
	}{
		{"global region", transcription.VendorAzureGlobal, azureCreds(), "https://eastus.api.cognitive.microsoft.com"},
		{"china region", transcription.VendorAzureCN, transcription.Credentials{"region": "ChinaEast2"}, "https://chinaeast2.api.cognitive.azure.cn"},
		{"endpoint host wins", transcription.VendorAzureCN, transcription.Credentials{
			"region":   "chinaeast2",
			"endpoint": "https://chinaeast2.api.cognitive.azure.cn/sts/v1.0/issuetoken",
		}, "https://chinaeast2.api.cognitive.azure.cn"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			a, _ := New(tc.vendor, transcription.Options{})
			got, err := a.endpoint(tc.creds)
			if err != nil {
				t.Fatalf("endpoint: %v", err)
			}
			if got != tc.want {
				t.Errorf("expected %s, got %s", tc.want, got)
			}
		})
	}
}

func TestTranscribeMissingRegion(t *testing.T) {
	a, _ := New(transcription.VendorAzureCN, transcription.Options{})
	_, err := a.Transcribe(context.Background(), testutil.MediaFile(t, "a.wav", []byte("x")), transcription.Credentials{"key1": "k"})
	if !errors.IsCode(err, errors.ErrCodeMissingField) {
		t.Errorf("expected MISSING_FIELD, got %v", err)
	}
}
