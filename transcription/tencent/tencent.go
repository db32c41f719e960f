// Package tencent transcribes through Tencent Cloud recording file
// recognition. Every request is TC3-signed at send time.
package tencent

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/kbukum/scribe/errors"
	"github.com/kbukum/scribe/httpclient"
	"github.com/kbukum/scribe/transcription"
	"github.com/kbukum/scribe/transcription/normalize"
	"github.com/kbukum/scribe/transcription/protocol"
	"github.com/kbukum/scribe/transcription/signer"
)

const (
	baseURL         = "https://asr.tencentcloudapi.com"
	service         = "asr"
	apiVersion      = "2019-06-14"
	contentType     = "application/json; charset=utf-8"
	defaultInterval = 3 * time.Second
)

// Task status codes reported by DescribeTaskStatus.
const (
	statusWaiting = 0
	statusDoing   = 1
	statusSuccess = 2
	statusFailed  = 3
)

type Adapter struct {
	upload  *httpclient.Client
	control *httpclient.Client
	poller  protocol.Poller
	now     func() time.Time
}

// New creates a Tencent Cloud ASR adapter.
func New(opts transcription.Options) (*Adapter, error) {
	opts.ApplyDefaults()
	base := opts.URL(baseURL)
	upload, err := opts.UploadClient(transcription.VendorTencent, base)
	if err != nil {
		return nil, err
	}
	control, err := opts.ControlClient(transcription.VendorTencent, base)
	if err != nil {
		return nil, err
	}
	return &Adapter{upload: upload, control: control, poller: protocol.NewPoller(opts, defaultInterval), now: opts.Now}, nil
}

func (a *Adapter) Vendor() transcription.Vendor { return transcription.VendorTencent }

type apiError struct {
	Code    string `json:"Code"`
	Message string `json:"Message"`
}

type createRecTask struct {
	EngineModelType    string `json:"EngineModelType"`
	ChannelNum         int    `json:"ChannelNum"`
	ResTextFormat      int    `json:"ResTextFormat"`
	SourceType         int    `json:"SourceType"`
	Data               string `json:"Data"`
	DataLen            int64  `json:"DataLen"`
	SpeakerDiarization int    `json:"SpeakerDiarization"`
	SpeakerNumber      int    `json:"SpeakerNumber"`
}

type createResponse struct {
	Response struct {
		Data *struct {
			TaskID uint64 `json:"TaskId"`
		} `json:"Data"`
		Error     *apiError `json:"Error"`
		RequestID string    `json:"RequestId"`
	} `json:"Response"`
}

type statusResponse struct {
	Response struct {
		Data  *taskData `json:"Data"`
		Error *apiError `json:"Error"`
	} `json:"Response"`
}

type taskData struct {
	TaskID       uint64   `json:"TaskId"`
	Status       int      `json:"Status"`
	StatusStr    string   `json:"StatusStr"`
	Result       string   `json:"Result"`
	ErrorMsg     string   `json:"ErrorMsg"`
	ResultDetail []detail `json:"ResultDetail"`
}

type detail struct {
	FinalSentence string `json:"FinalSentence"`
	StartMs       int64  `json:"StartMs"`
	EndMs         int64  `json:"EndMs"`
	SpeakerID     *int   `json:"SpeakerId"`
}

func (a *Adapter) Transcribe(ctx context.Context, file transcription.MediaFile, creds transcription.Credentials) (*transcription.Transcript, error) {
	if err := a.Vendor().CheckCredentials(creds); err != nil {
		return nil, err
	}
	s := signer.TC3At(service, creds.Get("secret_id"), creds.Get("secret_key"), a.now)

	data, err := a.signedPoll(ctx, s, file)
	if err != nil {
		return nil, err
	}
	return toTranscript(data)
}

func (a *Adapter) signedPoll(ctx context.Context, s *signer.Signer, file transcription.MediaFile) (*taskData, error) {
	return protocol.SignedRequestPoll(ctx, a.poller, string(a.Vendor()), s,
		func(ctx context.Context, auth *httpclient.AuthConfig) (uint64, error) {
			return a.create(ctx, auth, file)
		},
		func(ctx context.Context, auth *httpclient.AuthConfig, taskID uint64) (protocol.Result[*taskData], error) {
			return a.check(ctx, auth, taskID)
		},
	)
}

func (a *Adapter) create(ctx context.Context, auth *httpclient.AuthConfig, file transcription.MediaFile) (uint64, error) {
	raw, err := os.ReadFile(file.Path)
	if err != nil {
		return 0, errors.Internal(fmt.Errorf("read media: %w", err))
	}
	body := createRecTask{
		EngineModelType:    "16k_zh",
		ChannelNum:         1,
		ResTextFormat:      2,
		SourceType:         1,
		Data:               base64.StdEncoding.EncodeToString(raw),
		DataLen:            int64(len(raw)),
		SpeakerDiarization: 1,
	}
	resp, err := call[createResponse](ctx, a.upload, string(a.Vendor()), auth, "CreateRecTask", body)
	if err != nil {
		return 0, err
	}
	if err := apiFailure(a.Vendor(), resp.Response.Error); err != nil {
		return 0, err
	}
	if resp.Response.Data == nil || resp.Response.Data.TaskID == 0 {
		return 0, normalize.Unrecognized(a.Vendor())
	}
	return resp.Response.Data.TaskID, nil
}

func (a *Adapter) check(ctx context.Context, auth *httpclient.AuthConfig, taskID uint64) (protocol.Result[*taskData], error) {
	resp, err := call[statusResponse](ctx, a.control, string(a.Vendor()), auth, "DescribeTaskStatus",
		map[string]uint64{"TaskId": taskID})
	if err != nil {
		return protocol.Result[*taskData]{}, err
	}
	if err := apiFailure(a.Vendor(), resp.Response.Error); err != nil {
		return protocol.Result[*taskData]{}, err
	}
	data := resp.Response.Data
	if data == nil {
		return protocol.Result[*taskData]{}, normalize.Unrecognized(a.Vendor())
	}
	switch data.Status {
	case statusSuccess:
		return protocol.Succeeded(data), nil
	case statusFailed:
		return protocol.Failed[*taskData](data.ErrorMsg), nil
	case statusWaiting, statusDoing:
		return protocol.Pending[*taskData](), nil
	default:
		return protocol.Pending[*taskData](), nil
	}
}

// call posts a signed Tencent Cloud API action. The body is encoded up
// front so the signature covers the exact bytes sent.
func call[T any](ctx context.Context, client *httpclient.Client, vendor string, auth *httpclient.AuthConfig, action string, body any) (*T, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, errors.Internal(fmt.Errorf("encode %s: %w", action, err))
	}
	return protocol.DoJSON[T](ctx, client, vendor, httpclient.Request{
		Method: http.MethodPost,
		Path:   "/",
		Headers: map[string]string{
			"Content-Type": contentType,
			"X-TC-Action":  action,
			"X-TC-Version": apiVersion,
		},
		Body: payload,
		Auth: auth,
	})
}

// apiFailure maps a Response.Error. Tencent reports these with HTTP 200.
func apiFailure(vendor transcription.Vendor, e *apiError) error {
	if e == nil || e.Code == "" {
		return nil
	}
	detail := e.Code + ": " + e.Message
	if strings.HasPrefix(e.Code, "AuthFailure") {
		return errors.VendorAuth(string(vendor), detail)
	}
	return errors.VendorProtocol(string(vendor), detail)
}

func toTranscript(d *taskData) (*transcription.Transcript, error) {
	if d == nil {
		return nil, normalize.Unrecognized(transcription.VendorTencent)
	}
	return normalize.Build(toUnits(d.ResultDetail), d.Result), nil
}

func toUnits(details []detail) []normalize.Unit {
	units := make([]normalize.Unit, 0, len(details))
	for _, d := range details {
		u := normalize.Unit{
			Start: normalize.Millis(d.StartMs),
			End:   normalize.Millis(d.EndMs),
			Text:  d.FinalSentence,
		}
		if d.SpeakerID != nil {
			u.Speaker = strconv.Itoa(*d.SpeakerID)
		}
		units = append(units, u)
	}
	return units
}
