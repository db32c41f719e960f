// Package iflytek transcribes through the iFlytek long-form file
// transcription API: prepare, sliced upload, merge, then progress polling.
package iflytek

import (
	"context"
	"crypto/hmac"
	"crypto/md5"
	"crypto/sha1"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/kbukum/scribe/errors"
	"github.com/kbukum/scribe/httpclient"
	"github.com/kbukum/scribe/transcription"
	"github.com/kbukum/scribe/transcription/normalize"
	"github.com/kbukum/scribe/transcription/protocol"
)

const (
	baseURL         = "https://raasr.xfyun.cn/api"
	defaultInterval = 5 * time.Second
	statusDone      = 9
	sliceIDLength   = 10
)

// err_no values.
const (
	errInvalidAppID    = 10105
	errSignature       = 10110
	errAuthDenied      = 26601
	errTaskProcessing  = 26605
	errEmptyTranscript = 26606
)

type Adapter struct {
	upload    *httpclient.Client
	control   *httpclient.Client
	poller    protocol.Poller
	now       func() time.Time
	chunkSize int
}

// New creates an iFlytek adapter.
func New(opts transcription.Options) (*Adapter, error) {
	opts.ApplyDefaults()
	base := opts.URL(baseURL)
	upload, err := opts.UploadClient(transcription.VendorIFlytek, base)
	if err != nil {
		return nil, err
	}
	control, err := opts.ControlClient(transcription.VendorIFlytek, base)
	if err != nil {
		return nil, err
	}
	return &Adapter{
		upload:    upload,
		control:   control,
		poller:    protocol.NewPoller(opts, defaultInterval),
		now:       opts.Now,
		chunkSize: protocol.ChunkSize,
	}, nil
}

func (a *Adapter) Vendor() transcription.Vendor { return transcription.VendorIFlytek }

type envelope struct {
	OK     int             `json:"ok"`
	ErrNo  int             `json:"err_no"`
	Failed *string         `json:"failed"`
	Data   json.RawMessage `json:"data"`
}

type progress struct {
	Status int    `json:"status"`
	Desc   string `json:"desc"`
}

type sentence struct {
	Begin   string `json:"bg"`
	End     string `json:"ed"`
	Text    string `json:"onebest"`
	Speaker string `json:"speaker"`
}

// outcome is what a successful poll yields: either the sentences or an
// explicit empty result.
type outcome struct {
	sentences []sentence
}

func (a *Adapter) Transcribe(ctx context.Context, file transcription.MediaFile, creds transcription.Credentials) (*transcription.Transcript, error) {
	if err := a.Vendor().CheckCredentials(creds); err != nil {
		return nil, err
	}
	out, err := protocol.ChunkedUploadMergePoll(ctx, a.poller, string(a.Vendor()), file, a.chunkSize,
		protocol.ChunkedSteps[string, *outcome]{
			Prepare: func(ctx context.Context, chunks int) (string, error) {
				return a.prepare(ctx, creds, file, chunks)
			},
			Upload: func(ctx context.Context, taskID string, chunk protocol.Chunk) error {
				return a.uploadSlice(ctx, creds, taskID, chunk)
			},
			Merge: func(ctx context.Context, taskID string) error {
				_, err := a.call(ctx, a.control, "/merge", creds, url.Values{
					"task_id":   {taskID},
					"file_name": {file.Name},
				})
				return err
			},
			Check: func(ctx context.Context, taskID string) (protocol.Result[*outcome], error) {
				return a.check(ctx, creds, taskID)
			},
		})
	if err != nil {
		return nil, err
	}
	return toTranscript(out.sentences)
}

// Signature returns signa for appid and ts:
// Base64(HmacSHA1(secret, hex(MD5(appid+ts)))).
func Signature(appID, secret, ts string) string {
	sum := md5.Sum([]byte(appID + ts))
	mac := hmac.New(sha1.New, []byte(secret))
	mac.Write([]byte(hex.EncodeToString(sum[:])))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// SliceID returns the slice id for a 0-based index: aaaaaaaaaa, aaaaaaaaab, ...
func SliceID(index int) string {
	id := make([]byte, sliceIDLength)
	for i := sliceIDLength - 1; i >= 0; i-- {
		id[i] = byte('a' + index%26)
		index /= 26
	}
	return string(id)
}

// authParams are recomputed for every call so long uploads never reuse a
// stale timestamp.
func (a *Adapter) authParams(creds transcription.Credentials) url.Values {
	appID := creds.Get("appid")
	ts := strconv.FormatInt(a.now().Unix(), 10)
	return url.Values{
		"app_id": {appID},
		"ts":     {ts},
		"signa":  {Signature(appID, creds.Get("access_secret"), ts)},
	}
}

func (a *Adapter) prepare(ctx context.Context, creds transcription.Credentials, file transcription.MediaFile, chunks int) (string, error) {
	env, err := a.call(ctx, a.control, "/prepare", creds, url.Values{
		"file_len":     {strconv.FormatInt(file.Size, 10)},
		"file_name":    {file.Name},
		"slice_num":    {strconv.Itoa(chunks)},
		"has_seperate": {"true"},
	})
	if err != nil {
		return "", err
	}
	var taskID string
	if err := json.Unmarshal(env.Data, &taskID); err != nil || taskID == "" {
		return "", normalize.Unrecognized(a.Vendor())
	}
	return taskID, nil
}

func (a *Adapter) uploadSlice(ctx context.Context, creds transcription.Credentials, taskID string, chunk protocol.Chunk) error {
	fields := map[string]string{"task_id": taskID, "slice_id": SliceID(chunk.Index)}
	for k, v := range a.authParams(creds) {
		fields[k] = v[0]
	}
	resp, err := protocol.Do(ctx, a.upload, string(a.Vendor()), httpclient.Request{
		Method: http.MethodPost,
		Path:   "/upload",
		Body: &httpclient.MultipartBody{
			Fields: fields,
			Files: []httpclient.FileField{{
				FieldName:   "content",
				FileName:    SliceID(chunk.Index),
				ContentType: "application/octet-stream",
				Data:        chunk.Data,
			}},
		},
	})
	if err != nil {
		return err
	}
	_, err = a.envelope(resp.Body)
	return err
}

func (a *Adapter) check(ctx context.Context, creds transcription.Credentials, taskID string) (protocol.Result[*outcome], error) {
	env, err := a.call(ctx, a.control, "/getProgress", creds, url.Values{"task_id": {taskID}})
	if err != nil {
		if isErrNo(err, errTaskProcessing) {
			return protocol.Pending[*outcome](), nil
		}
		return protocol.Result[*outcome]{}, err
	}
	var p progress
	if err := decodeData(env.Data, &p); err != nil {
		return protocol.Result[*outcome]{}, protocol.Malformed(string(a.Vendor()), err)
	}
	if p.Status != statusDone {
		return protocol.Pending[*outcome](), nil
	}

	env, err = a.call(ctx, a.control, "/getResult", creds, url.Values{"task_id": {taskID}})
	if err != nil {
		if isErrNo(err, errEmptyTranscript) {
			return protocol.Succeeded(&outcome{}), nil
		}
		return protocol.Result[*outcome]{}, err
	}
	var sentences []sentence
	if err := decodeData(env.Data, &sentences); err != nil {
		return protocol.Result[*outcome]{}, protocol.Malformed(string(a.Vendor()), err)
	}
	return protocol.Succeeded(&outcome{sentences: sentences}), nil
}

// call posts a signed form to path and unwraps the response envelope.
func (a *Adapter) call(ctx context.Context, client *httpclient.Client, path string, creds transcription.Credentials, params url.Values) (*envelope, error) {
	form := a.authParams(creds)
	for k, v := range params {
		form[k] = v
	}
	resp, err := protocol.Do(ctx, client, string(a.Vendor()), httpclient.Request{
		Method: http.MethodPost,
		Path:   path,
		Body:   form,
	})
	if err != nil {
		return nil, err
	}
	return a.envelope(resp.Body)
}

func (a *Adapter) envelope(body []byte) (*envelope, error) {
	vendor := string(a.Vendor())
	env, err := protocol.Decode[envelope](vendor, body)
	if err != nil {
		return nil, err
	}
	if env.OK == 0 && env.ErrNo == 0 {
		return env, nil
	}
	detail := "err_no " + strconv.Itoa(env.ErrNo)
	if env.Failed != nil && *env.Failed != "" {
		detail += ": " + *env.Failed
	}
	switch env.ErrNo {
	case errInvalidAppID, errSignature, errAuthDenied:
		return nil, errors.VendorAuth(vendor, detail).WithDetail("err_no", env.ErrNo)
	default:
		return nil, errors.VendorBusiness(vendor, detail).WithDetail("err_no", env.ErrNo)
	}
}

func isErrNo(err error, errNo int) bool {
	appErr, ok := errors.AsAppError(err)
	if !ok {
		return false
	}
	v, ok := appErr.Details["err_no"].(int)
	return ok && v == errNo
}

// decodeData unwraps data, which the API sends as a JSON-encoded string.
func decodeData(raw json.RawMessage, v any) error {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return err
	}
	return json.Unmarshal([]byte(s), v)
}

func toTranscript(sentences []sentence) (*transcription.Transcript, error) {
	units := make([]normalize.Unit, 0, len(sentences))
	for _, s := range sentences {
		bg, err1 := strconv.ParseInt(s.Begin, 10, 64)
		ed, err2 := strconv.ParseInt(s.End, 10, 64)
		if err1 != nil || err2 != nil {
			return nil, normalize.Unrecognized(transcription.VendorIFlytek)
		}
		speaker := s.Speaker
		if speaker == "0" {
			speaker = ""
		}
		units = append(units, normalize.Unit{
			Speaker: speaker,
			Start:   normalize.Millis(bg),
			End:     normalize.Millis(ed),
			Text:    s.Text,
		})
	}
	return normalize.Build(units, ""), nil
}
