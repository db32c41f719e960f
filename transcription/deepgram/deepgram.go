// Package deepgram transcribes through the Deepgram pre-recorded listen API.
package deepgram

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strconv"

	"github.com/kbukum/scribe/errors"
	"github.com/kbukum/scribe/httpclient"
	"github.com/kbukum/scribe/transcription"
	"github.com/kbukum/scribe/transcription/normalize"
	"github.com/kbukum/scribe/transcription/protocol"
)

const baseURL = "https://api.deepgram.com"

var listenQuery = map[string]string{
	"model":      "nova-2",
	"language":   "zh",
	"diarize":    "true",
	"utterances": "true",
	"punctuate":  "true",
}

// Adapter sends the raw media in one request.
type Adapter struct {
	client *httpclient.Client
}

// New creates a Deepgram adapter.
func New(opts transcription.Options) (*Adapter, error) {
	opts.ApplyDefaults()
	client, err := opts.UploadClient(transcription.VendorDeepgram, opts.URL(baseURL))
	if err != nil {
		return nil, err
	}
	return &Adapter{client: client}, nil
}

func (a *Adapter) Vendor() transcription.Vendor { return transcription.VendorDeepgram }

type response struct {
	Results *struct {
		Channels []struct {
			DetectedLanguage string `json:"detected_language"`
			Alternatives     []struct {
				Transcript string `json:"transcript"`
			} `json:"alternatives"`
		} `json:"channels"`
		Utterances []utterance `json:"utterances"`
	} `json:"results"`
}

type utterance struct {
	Start      float64 `json:"start"`
	End        float64 `json:"end"`
	Speaker    *int    `json:"speaker"`
	Transcript string  `json:"transcript"`
}

// Transcribe posts the media body and maps utterances to segments.
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
		Method:  http.MethodPost,
		Path:    "/v1/listen",
		Query:   listenQuery,
		Headers: map[string]string{"Content-Type": file.ContentType()},
		Auth:    httpclient.SchemeAuth("Token", creds.Get("api_key")),
		Body:    f,
	})
	if err != nil {
		return nil, err
	}
	return toTranscript(resp)
}

func toTranscript(r *response) (*transcription.Transcript, error) {
	if r.Results == nil || (len(r.Results.Channels) == 0 && len(r.Results.Utterances) == 0) {
		return nil, normalize.Unrecognized(transcription.VendorDeepgram)
	}
	var fallback, language string
	if len(r.Results.Channels) > 0 {
		ch := r.Results.Channels[0]
		language = ch.DetectedLanguage
		if len(ch.Alternatives) > 0 {
			fallback = ch.Alternatives[0].Transcript
		}
	}
	tr := normalize.Build(toUnits(r.Results.Utterances), fallback)
	tr.Metadata.Language = language
	return tr, nil
}

func toUnits(utterances []utterance) []normalize.Unit {
	units := make([]normalize.Unit, 0, len(utterances))
	for _, u := range utterances {
		unit := normalize.Unit{
			Start: normalize.Seconds(u.Start),
			End:   normalize.Seconds(u.End),
			Text:  u.Transcript,
		}
		if u.Speaker != nil {
			unit.Speaker = strconv.Itoa(*u.Speaker)
		}
		units = append(units, unit)
	}
	return units
}
