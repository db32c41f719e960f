// Package openai transcribes through OpenAI-compatible whisper endpoints.
// It serves both OpenAI and Groq.
package openai

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/kbukum/scribe/errors"
	"github.com/kbukum/scribe/httpclient"
	"github.com/kbukum/scribe/transcription"
	"github.com/kbukum/scribe/transcription/normalize"
	"github.com/kbukum/scribe/transcription/protocol"
)

const (
	openAIBaseURL = "https://api.openai.com/v1"
	groqBaseURL   = "https://api.groq.com/openai/v1"
)

// Adapter is a synchronous whisper transcription adapter.
type Adapter struct {
	vendor transcription.Vendor
	model  string
	client *httpclient.Client
}

// New creates an adapter for VendorOpenAI or VendorGroq.
func New(vendor transcription.Vendor, opts transcription.Options) (*Adapter, error) {
	opts.ApplyDefaults()
	var base, model string
	switch vendor {
	case transcription.VendorOpenAI:
		base, model = openAIBaseURL, "whisper-1"
	case transcription.VendorGroq:
		base, model = groqBaseURL, "whisper-large-v3"
	default:
		return nil, errors.UnsupportedVendor("asr", string(vendor))
	}
	client, err := opts.UploadClient(vendor, opts.URL(base))
	if err != nil {
		return nil, err
	}
	return &Adapter{vendor: vendor, model: model, client: client}, nil
}

func (a *Adapter) Vendor() transcription.Vendor { return a.vendor }

type response struct {
	Text     *string `json:"text"`
	Language string  `json:"language"`
}

// Transcribe posts the file and returns a plain-text transcript.
func (a *Adapter) Transcribe(ctx context.Context, file transcription.MediaFile, creds transcription.Credentials) (*transcription.Transcript, error) {
	if err := a.vendor.CheckCredentials(creds); err != nil {
		return nil, err
	}
	f, err := os.Open(file.Path)
	if err != nil {
		return nil, errors.Internal(fmt.Errorf("open media: %w", err))
	}
	defer func() { _ = f.Close() }()

	resp, err := protocol.DoJSON[response](ctx, a.client, string(a.vendor), httpclient.Request{
		Method: http.MethodPost,
		Path:   "/audio/transcriptions",
		Auth:   httpclient.BearerAuth(creds.Get("api_key")),
		Body: &httpclient.MultipartBody{
			Fields: map[string]string{"model": a.model},
			Files: []httpclient.FileField{{
				FieldName:   "file",
				FileName:    file.Name,
				ContentType: file.ContentType(),
				Reader:      f,
				Size:        file.Size,
			}},
		},
	})
	if err != nil {
		return nil, err
	}
	return toTranscript(a.vendor, resp)
}

func toTranscript(vendor transcription.Vendor, r *response) (*transcription.Transcript, error) {
	if r.Text == nil {
		return nil, normalize.Unrecognized(vendor)
	}
	tr := normalize.Build(nil, *r.Text)
	tr.Metadata.Language = r.Language
	return tr, nil
}
