// Package volcengine transcribes through the Volcengine big-model file
// recognition API (v3 submit/query).
package volcengine

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kbukum/scribe/errors"
	"github.com/kbukum/scribe/httpclient"
	"github.com/kbukum/scribe/transcription"
	"github.com/kbukum/scribe/transcription/normalize"
	"github.com/kbukum/scribe/transcription/protocol"
)

const (
	baseURL         = "https://openspeech.bytedance.com"
	resourceID      = "volc.bigasr.auc"
	defaultInterval = 2 * time.Second
)

// X-Api-Status-Code values.
const (
	codeSuccess    = "20000000"
	codeProcessing = "20000001"
	codeQueued     = "20000002"
	codeSilence    = "20000003"
)

type Adapter struct {
	upload  *httpclient.Client
	control *httpclient.Client
	poller  protocol.Poller
	newID   func() string
}

// New creates a Volcengine adapter.
func New(opts transcription.Options) (*Adapter, error) {
	opts.ApplyDefaults()
	base := opts.URL(baseURL)
	upload, err := opts.UploadClient(transcription.VendorVolcengine, base)
	if err != nil {
		return nil, err
	}
	control, err := opts.ControlClient(transcription.VendorVolcengine, base)
	if err != nil {
		return nil, err
	}
	return &Adapter{
		upload:  upload,
		control: control,
		poller:  protocol.NewPoller(opts, defaultInterval),
		newID:   uuid.NewString,
	}, nil
}

func (a *Adapter) Vendor() transcription.Vendor { return transcription.VendorVolcengine }

type submitRequest struct {
	User    map[string]string `json:"user"`
	Audio   audio             `json:"audio"`
	Request map[string]any    `json:"request"`
}

type audio struct {
	Format string `json:"format"`
	Data   string `json:"data"`
}

type queryResponse struct {
	Result *result `json:"result"`
}

type result struct {
	Text       string      `json:"text"`
	Utterances []utterance `json:"utterances"`
}

type utterance struct {
	StartTime int64  `json:"start_time"`
	EndTime   int64  `json:"end_time"`
	Text      string `json:"text"`
	Additions struct {
		Speaker string `json:"speaker"`
	} `json:"additions"`
}

func (a *Adapter) headers(creds transcription.Credentials, requestID string) map[string]string {
	return map[string]string{
		"X-Api-App-Key":     creds.Get("app_id"),
		"X-Api-Access-Key":  creds.Get("access_token"),
		"X-Api-Resource-Id": resourceID,
		"X-Api-Request-Id":  requestID,
		"X-Api-Sequence":    "-1",
	}
}

func (a *Adapter) Transcribe(ctx context.Context, file transcription.MediaFile, creds transcription.Credentials) (*transcription.Transcript, error) {
	if err := a.Vendor().CheckCredentials(creds); err != nil {
		return nil, err
	}
	vendor := string(a.Vendor())

	resp, err := protocol.SubmitPoll(ctx, a.poller, vendor,
		func(ctx context.Context) (string, error) {
			return a.submit(ctx, creds, file)
		},
		func(ctx context.Context, requestID string) (protocol.Result[*queryResponse], error) {
			return a.query(ctx, creds, requestID)
		},
	)
	if err != nil {
		return nil, err
	}
	return toTranscript(resp)
}

// submit sends the job; the request id doubles as the task handle.
func (a *Adapter) submit(ctx context.Context, creds transcription.Credentials, file transcription.MediaFile) (string, error) {
	raw, err := os.ReadFile(file.Path)
	if err != nil {
		return "", errors.Internal(fmt.Errorf("read media: %w", err))
	}
	requestID := a.newID()
	resp, err := protocol.Do(ctx, a.upload, string(a.Vendor()), httpclient.Request{
		Method:  http.MethodPost,
		Path:    "/api/v3/auc/bigmodel/submit",
		Headers: a.headers(creds, requestID),
		Body: submitRequest{
			User:  map[string]string{"uid": creds.Get("app_id")},
			Audio: audio{Format: file.Ext, Data: base64.StdEncoding.EncodeToString(raw)},
			Request: map[string]any{
				"model_name":          "bigmodel",
				"enable_itn":          true,
				"enable_punc":         true,
				"enable_speaker_info": true,
				"show_utterances":     true,
			},
		},
	})
	if err != nil {
		return "", err
	}
	code := resp.Header("X-Api-Status-Code")
	if code != codeSuccess {
		return "", a.statusError(code, resp.Header("X-Api-Message"))
	}
	return requestID, nil
}

func (a *Adapter) query(ctx context.Context, creds transcription.Credentials, requestID string) (protocol.Result[*queryResponse], error) {
	vendor := string(a.Vendor())
	resp, err := protocol.Do(ctx, a.control, vendor, httpclient.Request{
		Method:  http.MethodPost,
		Path:    "/api/v3/auc/bigmodel/query",
		Headers: a.headers(creds, requestID),
		Body:    map[string]any{},
	})
	if err != nil {
		return protocol.Result[*queryResponse]{}, err
	}

	code := resp.Header("X-Api-Status-Code")
	switch {
	case code == codeSuccess:
		body, err := protocol.Decode[queryResponse](vendor, resp.Body)
		if err != nil {
			return protocol.Result[*queryResponse]{}, err
		}
		return protocol.Succeeded(body), nil
	case code == codeSilence:
		// Silent audio: an empty result, not a failure.
		return protocol.Succeeded(&queryResponse{Result: &result{}}), nil
	case code == codeProcessing, code == codeQueued:
		return protocol.Pending[*queryResponse](), nil
	case isFailure(code):
		return protocol.Failed[*queryResponse](code + ": " + resp.Header("X-Api-Message")), nil
	default:
		return protocol.Pending[*queryResponse](), nil
	}
}

// isFailure matches client (45xxxxxx) and server (55xxxxxx) error codes.
func isFailure(code string) bool {
	return len(code) == 8 && (strings.HasPrefix(code, "45") || strings.HasPrefix(code, "55"))
}

func (a *Adapter) statusError(code, message string) error {
	detail := code + ": " + message
	if isFailure(code) {
		return errors.VendorBusiness(string(a.Vendor()), detail)
	}
	return errors.VendorProtocol(string(a.Vendor()), detail)
}

func toTranscript(r *queryResponse) (*transcription.Transcript, error) {
	if r == nil || r.Result == nil {
		return nil, normalize.Unrecognized(transcription.VendorVolcengine)
	}
	return normalize.Build(toUnits(r.Result.Utterances), r.Result.Text), nil
}

func toUnits(utterances []utterance) []normalize.Unit {
	units := make([]normalize.Unit, 0, len(utterances))
	for _, u := range utterances {
		units = append(units, normalize.Unit{
			Speaker: u.Additions.Speaker,
			Start:   normalize.Millis(u.StartTime),
			End:     normalize.Millis(u.EndTime),
			Text:    u.Text,
		})
	}
	return units
}
