// Package aliyun transcribes through DashScope paraformer file recognition:
// the media goes to DashScope's temporary OSS space, an async task is
// submitted against the oss:// URL, and the result document is fetched
// from the URL the finished task reports.
package aliyun

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/kbukum/scribe/errors"
	"github.com/kbukum/scribe/httpclient"
	"github.com/kbukum/scribe/transcription"
	"github.com/kbukum/scribe/transcription/normalize"
	"github.com/kbukum/scribe/transcription/protocol"
)

const (
	baseURL         = "https://dashscope.aliyuncs.com"
	model           = "paraformer-v2"
	defaultInterval = 3 * time.Second
)

type Adapter struct {
	upload  *httpclient.Client
	control *httpclient.Client
	poller  protocol.Poller
}

// New creates a DashScope adapter.
func New(opts transcription.Options) (*Adapter, error) {
	opts.ApplyDefaults()
	base := opts.URL(baseURL)
	upload, err := opts.UploadClient(transcription.VendorAliyun, base)
	if err != nil {
		return nil, err
	}
	control, err := opts.ControlClient(transcription.VendorAliyun, base)
	if err != nil {
		return nil, err
	}
	return &Adapter{upload: upload, control: control, poller: protocol.NewPoller(opts, defaultInterval)}, nil
}

func (a *Adapter) Vendor() transcription.Vendor { return transcription.VendorAliyun }

type policyResponse struct {
	Data *struct {
		Policy              string `json:"policy"`
		Signature           string `json:"signature"`
		UploadDir           string `json:"upload_dir"`
		UploadHost          string `json:"upload_host"`
		OSSAccessKeyID      string `json:"oss_access_key_id"`
		XOSSObjectACL       string `json:"x_oss_object_acl"`
		XOSSForbidOverwrite string `json:"x_oss_forbid_overwrite"`
	} `json:"data"`
}

type submitRequest struct {
	Model      string         `json:"model"`
	Input      submitInput    `json:"input"`
	Parameters map[string]any `json:"parameters"`
}

type submitInput struct {
	FileURLs []string `json:"file_urls"`
}

type taskResponse struct {
	Output *struct {
		TaskID     string `json:"task_id"`
		TaskStatus string `json:"task_status"`
		Code       string `json:"code"`
		Message    string `json:"message"`
		Results    []struct {
			TranscriptionURL string `json:"transcription_url"`
			SubtaskStatus    string `json:"subtask_status"`
			Code             string `json:"code"`
			Message          string `json:"message"`
		} `json:"results"`
	} `json:"output"`
}

type resultDocument struct {
	Transcripts []struct {
		Text      string     `json:"text"`
		Sentences []sentence `json:"sentences"`
	} `json:"transcripts"`
}

type sentence struct {
	BeginTime int64  `json:"begin_time"`
	EndTime   int64  `json:"end_time"`
	Text      string `json:"text"`
	SpeakerID *int   `json:"speaker_id"`
}

func (a *Adapter) Transcribe(ctx context.Context, file transcription.MediaFile, creds transcription.Credentials) (*transcription.Transcript, error) {
	if err := a.Vendor().CheckCredentials(creds); err != nil {
		return nil, err
	}
	auth := httpclient.BearerAuth(creds.Get("api_key"))
	vendor := string(a.Vendor())

	doc, err := protocol.SubmitPoll(ctx, a.poller, vendor,
		func(ctx context.Context) (string, error) {
			ossURL, err := a.uploadFile(ctx, auth, file)
			if err != nil {
				return "", err
			}
			return a.submit(ctx, auth, ossURL)
		},
		func(ctx context.Context, taskID string) (protocol.Result[*resultDocument], error) {
			return a.check(ctx, auth, taskID)
		},
	)
	if err != nil {
		return nil, err
	}
	return toTranscript(doc)
}

// uploadFile puts the media into DashScope's temporary storage and returns
// its oss:// URL.
func (a *Adapter) uploadFile(ctx context.Context, auth *httpclient.AuthConfig, file transcription.MediaFile) (string, error) {
	vendor := string(a.Vendor())
	policy, err := protocol.DoJSON[policyResponse](ctx, a.control, vendor, httpclient.Request{
		Method: http.MethodGet,
		Path:   "/api/v1/uploads",
		Query:  map[string]string{"action": "getPolicy", "model": model},
		Auth:   auth,
	})
	if err != nil {
		return "", err
	}
	p := policy.Data
	if p == nil || p.UploadHost == "" || p.Policy == "" {
		return "", normalize.Unrecognized(a.Vendor())
	}

	f, err := os.Open(file.Path)
	if err != nil {
		return "", errors.Internal(fmt.Errorf("open media: %w", err))
	}
	defer func() { _ = f.Close() }()

	key := strings.TrimSuffix(p.UploadDir, "/") + "/" + file.Name
	_, err = protocol.Do(ctx, a.upload, vendor, httpclient.Request{
		Method: http.MethodPost,
		Path:   p.UploadHost,
		Body: &httpclient.MultipartBody{
			Fields: map[string]string{
				"OSSAccessKeyId":         p.OSSAccessKeyID,
				"Signature":              p.Signature,
				"policy":                 p.Policy,
				"x-oss-object-acl":       p.XOSSObjectACL,
				"x-oss-forbid-overwrite": p.XOSSForbidOverwrite,
				"key":                    key,
				"success_action_status":  "200",
			},
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
		return "", err
	}
	return "oss://" + key, nil
}

func (a *Adapter) submit(ctx context.Context, auth *httpclient.AuthConfig, ossURL string) (string, error) {
	resp, err := protocol.DoJSON[taskResponse](ctx, a.control, string(a.Vendor()), httpclient.Request{
		Method: http.MethodPost,
		Path:   "/api/v1/services/audio/asr/transcription",
		Auth:   auth,
		Headers: map[string]string{
			"X-DashScope-Async":              "enable",
			"X-DashScope-OssResourceResolve": "enable",
		},
		Body: submitRequest{
			Model: model,
			Input: submitInput{FileURLs: []string{ossURL}},
			Parameters: map[string]any{
				"diarization_enabled": true,
				"language_hints":      []string{"zh", "en"},
			},
		},
	})
	if err != nil {
		return "", err
	}
	if resp.Output == nil || resp.Output.TaskID == "" {
		return "", normalize.Unrecognized(a.Vendor())
	}
	return resp.Output.TaskID, nil
}

func (a *Adapter) check(ctx context.Context, auth *httpclient.AuthConfig, taskID string) (protocol.Result[*resultDocument], error) {
	vendor := string(a.Vendor())
	resp, err := protocol.DoJSON[taskResponse](ctx, a.control, vendor, httpclient.Request{
		Method: http.MethodGet,
		Path:   "/api/v1/tasks/" + taskID,
		Auth:   auth,
	})
	if err != nil {
		return protocol.Result[*resultDocument]{}, err
	}
	out := resp.Output
	if out == nil {
		return protocol.Result[*resultDocument]{}, normalize.Unrecognized(a.Vendor())
	}

	switch out.TaskStatus {
	case "SUCCEEDED":
		if len(out.Results) == 0 {
			return protocol.Result[*resultDocument]{}, normalize.Unrecognized(a.Vendor())
		}
		r := out.Results[0]
		if r.SubtaskStatus == "FAILED" {
			return protocol.Failed[*resultDocument](r.Code + ": " + r.Message), nil
		}
		doc, err := protocol.DoJSON[resultDocument](ctx, a.control, vendor, httpclient.Request{
			Method: http.MethodGet,
			Path:   r.TranscriptionURL,
		})
		if err != nil {
			return protocol.Result[*resultDocument]{}, err
		}
		return protocol.Succeeded(doc), nil
	case "FAILED", "CANCELED", "UNKNOWN":
		return protocol.Failed[*resultDocument](out.Code + ": " + out.Message), nil
	default:
		return protocol.Pending[*resultDocument](), nil
	}
}

func toTranscript(doc *resultDocument) (*transcription.Transcript, error) {
	if doc == nil || doc.Transcripts == nil {
		return nil, normalize.Unrecognized(transcription.VendorAliyun)
	}
	var (
		units []normalize.Unit
		text  strings.Builder
	)
	for _, t := range doc.Transcripts {
		text.WriteString(t.Text)
		units = append(units, toUnits(t.Sentences)...)
	}
	return normalize.Build(units, text.String()), nil
}

func toUnits(sentences []sentence) []normalize.Unit {
	units := make([]normalize.Unit, 0, len(sentences))
	for _, s := range sentences {
		u := normalize.Unit{
			Start: normalize.Millis(s.BeginTime),
			End:   normalize.Millis(s.EndTime),
			Text:  s.Text,
		}
		if s.SpeakerID != nil {
			u.Speaker = fmt.Sprint(*s.SpeakerID)
		}
		units = append(units, u)
	}
	return units
}
