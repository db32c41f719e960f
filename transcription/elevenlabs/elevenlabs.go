// Package elevenlabs transcribes through the ElevenLabs speech-to-text API.
package elevenlabs

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
	baseURL = "https://api.elevenlabs.io"
	modelID = "scribe_v1"
)

type Adapter struct {
	client *httpclient.Client
}

// New creates an ElevenLabs adapter.
func New(opts transcription.Options) (*Adapter, error) {
	opts.ApplyDefaults()
	client, err := opts.UploadClient(transcription.VendorElevenLabs, opts.URL(baseURL))
	if err != nil {
		return nil, err
	}
	return &Adapter{client: client}, nil
}

func (a *Adapter) Vendor() transcription.Vendor { return transcription.VendorElevenLabs }

type response struct {
	LanguageCode string  `json:"language_code"`
	Text         *string `json:"text"`
	Words        []word  `json:"words"`
}

type word struct {
	Text      string  `json:"text"`
	Start     float64 `json:"start"`
	End       float64 `json:"end"`
	Type      string  `json:"type"`
	SpeakerID string  `json:"speaker_id"`
}

func (a *Adapter) Transcribe(ctx context.Context, file transcription.MediaFile, creds transcription.Credentials) (*transcription.Transcript, error) {
	if err := a.Vendor().CheckCredentials(creds); err != nil {
		return nil, err
	}
	f, err := os.Open(file.Path)
	if err != nil {
		return nil, errors.Internal(fmt.Errorf("open media: %w", err))
	}
	defer func() { _ = f.Close() }()

	resp, err := protocol.DoJSON[response](ctx, a.client, string(a.Vendor()), httpclient.Request{
		Method: http.MethodPost,
		Path:   "/v1/speech-to-text",
		Auth:   httpclient.APIKeyAuthHeader(creds.Get("api_key"), "xi-api-key"),
		Body: &httpclient.MultipartBody{
			Fields: map[string]string{"model_id": modelID, "diarize": "true"},
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
	return toTranscript(resp)
}

func toTranscript(r *response) (*transcription.Transcript, error) {
	if r.Text == nil && r.Words == nil {
		return nil, normalize.Unrecognized(transcription.VendorElevenLabs)
	}
	fallback := ""
	if r.Text != nil {
		fallback = *r.Text
	}
	tr := normalize.Build(toUnits(r.Words), fallback)
	tr.Metadata.Language = r.LanguageCode
	return tr, nil
}

// toUnits keeps words and the spacing between them; audio events such as
// "(laughter)" are dropped.
func toUnits(words []word) []normalize.Unit {
	units := make([]normalize.Unit, 0, len(words))
	for _, w := range words {
		if w.Type == "audio_event" {
			continue
		}
		units = append(units, normalize.Unit{
			Speaker: w.SpeakerID,
			Start:   normalize.Seconds(w.Start),
			End:     normalize.Seconds(w.End),
			Text:    w.Text,
		})
	}
	return units
}
