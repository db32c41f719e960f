// Package azure transcribes through the Azure AI Speech fast transcription
// API, in the global cloud or the China cloud.
package azure

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/kbukum/scribe/errors"
	"github.com/kbukum/scribe/httpclient"
	"github.com/kbukum/scribe/transcription"
	"github.com/kbukum/scribe/transcription/normalize"
	"github.com/kbukum/scribe/transcription/protocol"
)

const (
	transcribePath = "/speechtotext/transcriptions:transcribe"
	apiVersion     = "2024-11-15"
	definition     = `{"locales":["zh-CN","en-US"],"diarization":{"enabled":true,"maxSpeakers":10}}`
)

var hostSuffix = map[transcription.Vendor]string{
	transcription.VendorAzureGlobal: ".api.cognitive.microsoft.com",
	transcription.VendorAzureCN:     ".api.cognitive.azure.cn",
}

// Adapter builds its client per call because the host depends on the
// region credential.
type Adapter struct {
	vendor transcription.Vendor
	opts   transcription.Options
}

// New creates an adapter for VendorAzureGlobal or VendorAzureCN.
func New(vendor transcription.Vendor, opts transcription.Options) (*Adapter, error) {
	if _, ok := hostSuffix[vendor]; !ok {
		return nil, errors.UnsupportedVendor("asr", string(vendor))
	}
	opts.ApplyDefaults()
	return &Adapter{vendor: vendor, opts: opts}, nil
}

func (a *Adapter) Vendor() transcription.Vendor { return a.vendor }

// endpoint resolves the API host: the BaseURL override, then the host of
// the endpoint credential, then the region.
func (a *Adapter) endpoint(creds transcription.Credentials) (string, error) {
	if a.opts.BaseURL != "" {
		return a.opts.BaseURL, nil
	}
	if ep := strings.TrimSpace(creds.Get("endpoint")); ep != "" {
		u, err := url.Parse(ep)
		if err != nil || u.Host == "" {
			return "", errors.InvalidInput("credentials.endpoint", "not a URL")
		}
		return "https://" + u.Host, nil
	}
	region := strings.ToLower(strings.TrimSpace(creds.Get("region")))
	return "https://" + region + hostSuffix[a.vendor], nil
}

type response struct {
	DurationMilliseconds int64 `json:"durationMilliseconds"`
	CombinedPhrases      []struct {
		Text string `json:"text"`
	} `json:"combinedPhrases"`
	Phrases []phrase `json:"phrases"`
}

type phrase struct {
	OffsetMilliseconds   int64  `json:"offsetMilliseconds"`
	DurationMilliseconds int64  `json:"durationMilliseconds"`
	Speaker              *int   `json:"speaker"`
	Text                 string `json:"text"`
	Locale               string `json:"locale"`
}

func (a *Adapter) Transcribe(ctx context.Context, file transcription.MediaFile, creds transcription.Credentials) (*transcription.Transcript, error) {
	if err := a.vendor.CheckCredentials(creds); err != nil {
		return nil, err
	}
	base, err := a.endpoint(creds)
	if err != nil {
		return nil, err
	}
	client, err := a.opts.UploadClient(a.vendor, base)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(file.Path)
	if err != nil {
		return nil, errors.Internal(fmt.Errorf("open media: %w", err))
	}
	defer func() { _ = f.Close() }()

	resp, err := protocol.DoJSON[response](ctx, client, string(a.vendor), httpclient.Request{
		Method: http.MethodPost,
		Path:   transcribePath,
		Query:  map[string]string{"api-version": apiVersion},
		Auth:   httpclient.APIKeyAuthHeader(creds.Get("key1"), "Ocp-Apim-Subscription-Key"),
		Body: &httpclient.MultipartBody{
			Fields: map[string]string{"definition": definition},
			Files: []httpclient.FileField{{
				FieldName:   "audio",
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
	if r.Phrases == nil && r.CombinedPhrases == nil {
		return nil, normalize.Unrecognized(vendor)
	}
	var combined strings.Builder
	for _, c := range r.CombinedPhrases {
		combined.WriteString(c.Text)
	}
	tr := normalize.Build(toUnits(r.Phrases), combined.String())
	if len(r.Phrases) > 0 {
		tr.Metadata.Language = r.Phrases[0].Locale
	}
	return tr, nil
}

func toUnits(phrases []phrase) []normalize.Unit {
	units := make([]normalize.Unit, 0, len(phrases))
	for _, p := range phrases {
		u := normalize.Unit{
			Start: normalize.Millis(p.OffsetMilliseconds),
			End:   normalize.Millis(p.OffsetMilliseconds + p.DurationMilliseconds),
			Text:  p.Text,
		}
		if p.Speaker != nil {
			u.Speaker = strconv.Itoa(*p.Speaker)
		}
		units = append(units, u)
	}
	return units
}
