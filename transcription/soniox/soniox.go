// Package soniox transcribes through the Soniox async file API: upload,
// create a transcription, poll it, fetch the transcript, then delete both
// the transcription and the file.
package soniox

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/kbukum/scribe/errors"
	"github.com/kbukum/scribe/httpclient"
	"github.com/kbukum/scribe/logger"
	"github.com/kbukum/scribe/transcription"
	"github.com/kbukum/scribe/transcription/normalize"
	"github.com/kbukum/scribe/transcription/protocol"
)

const (
	baseURL         = "https://api.soniox.com"
	model           = "stt-async-preview"
	defaultInterval = 3 * time.Second
)

type Adapter struct {
	upload  *httpclient.Client
	control *httpclient.Client
	poller  protocol.Poller
	log     *logger.Logger
}

// New creates a Soniox adapter.
func New(opts transcription.Options) (*Adapter, error) {
	opts.ApplyDefaults()
	base := opts.URL(baseURL)
	upload, err := opts.UploadClient(transcription.VendorSoniox, base)
	if err != nil {
		return nil, err
	}
	control, err := opts.ControlClient(transcription.VendorSoniox, base)
	if err != nil {
		return nil, err
	}
	return &Adapter{
		upload:  upload,
		control: control,
		poller:  protocol.NewPoller(opts, defaultInterval),
		log:     opts.Logger.WithComponent("soniox"),
	}, nil
}

func (a *Adapter) Vendor() transcription.Vendor { return transcription.VendorSoniox }

type fileResponse struct {
	ID string `json:"id"`
}

type createRequest struct {
	Model                    string   `json:"model"`
	FileID                   string   `json:"file_id"`
	LanguageHints            []string `json:"language_hints,omitempty"`
	EnableSpeakerDiarization bool     `json:"enable_speaker_diarization"`
}

type transcriptionStatus struct {
	ID           string `json:"id"`
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
}

type transcriptResponse struct {
	ID     string  `json:"id"`
	Text   *string `json:"text"`
	Tokens []token `json:"tokens"`
}

type token struct {
	Text     string `json:"text"`
	StartMs  int64  `json:"start_ms"`
	EndMs    int64  `json:"end_ms"`
	Speaker  string `json:"speaker"`
	Language string `json:"language"`
}

type job struct {
	fileID          string
	transcriptionID string
}

func (a *Adapter) Transcribe(ctx context.Context, file transcription.MediaFile, creds transcription.Credentials) (*transcription.Transcript, error) {
	if err := a.Vendor().CheckCredentials(creds); err != nil {
		return nil, err
	}
	auth := httpclient.BearerAuth(creds.Get("api_key"))
	vendor := string(a.Vendor())

	var j job
	result, err := protocol.SubmitPoll(ctx, a.poller, vendor,
		func(ctx context.Context) (job, error) {
			fileID, err := a.uploadFile(ctx, auth, file)
			if err != nil {
				return job{}, err
			}
			j.fileID = fileID
			created, err := protocol.DoJSON[transcriptionStatus](ctx, a.control, vendor, httpclient.Request{
				Method: http.MethodPost,
				Path:   "/v1/transcriptions",
				Auth:   auth,
				Body: createRequest{
					Model:                    model,
					FileID:                   fileID,
					LanguageHints:            []string{"zh", "en"},
					EnableSpeakerDiarization: true,
				},
			})
			if err != nil {
				return job{}, err
			}
			if created.ID == "" {
				return job{}, normalize.Unrecognized(a.Vendor())
			}
			j.transcriptionID = created.ID
			return j, nil
		},
		func(ctx context.Context, j job) (protocol.Result[*transcriptResponse], error) {
			return a.check(ctx, auth, j)
		},
	)
	if err != nil {
		return nil, err
	}

	protocol.Cleanup(ctx, a.log, vendor,
		func(ctx context.Context) error { return a.delete(ctx, auth, "/v1/transcriptions/"+j.transcriptionID) },
		func(ctx context.Context) error { return a.delete(ctx, auth, "/v1/files/"+j.fileID) },
	)
	return toTranscript(result)
}

func (a *Adapter) uploadFile(ctx context.Context, auth *httpclient.AuthConfig, file transcription.MediaFile) (string, error) {
	f, err := os.Open(file.Path)
	if err != nil {
		return "", errors.Internal(fmt.Errorf("open media: %w", err))
	}
	defer func() { _ = f.Close() }()

	uploaded, err := protocol.DoJSON[fileResponse](ctx, a.upload, string(a.Vendor()), httpclient.Request{
		Method: http.MethodPost,
		Path:   "/v1/files",
		Auth:   auth,
		Body: &httpclient.MultipartBody{Files: []httpclient.FileField{{
			FieldName:   "file",
			FileName:    file.Name,
			ContentType: file.ContentType(),
			Reader:      f,
			Size:        file.Size,
		}}},
	})
	if err != nil {
		return "", err
	}
	if uploaded.ID == "" {
		return "", normalize.Unrecognized(a.Vendor())
	}
	return uploaded.ID, nil
}

func (a *Adapter) check(ctx context.Context, auth *httpclient.AuthConfig, j job) (protocol.Result[*transcriptResponse], error) {
	vendor := string(a.Vendor())
	status, err := protocol.DoJSON[transcriptionStatus](ctx, a.control, vendor, httpclient.Request{
		Method: http.MethodGet,
		Path:   "/v1/transcriptions/" + j.transcriptionID,
		Auth:   auth,
	})
	if err != nil {
		return protocol.Result[*transcriptResponse]{}, err
	}
	switch status.Status {
	case "completed":
		tr, err := protocol.DoJSON[transcriptResponse](ctx, a.control, vendor, httpclient.Request{
			Method: http.MethodGet,
			Path:   "/v1/transcriptions/" + j.transcriptionID + "/transcript",
			Auth:   auth,
		})
		if err != nil {
			return protocol.Result[*transcriptResponse]{}, err
		}
		return protocol.Succeeded(tr), nil
	case "error":
		return protocol.Failed[*transcriptResponse](status.ErrorMessage), nil
	default:
		// queued, processing and anything new keep polling.
		return protocol.Pending[*transcriptResponse](), nil
	}
}

func (a *Adapter) delete(ctx context.Context, auth *httpclient.AuthConfig, path string) error {
	_, err := protocol.Do(ctx, a.control, string(a.Vendor()), httpclient.Request{
		Method: http.MethodDelete,
		Path:   path,
		Auth:   auth,
	})
	return err
}

func toTranscript(r *transcriptResponse) (*transcription.Transcript, error) {
	if r == nil || (r.Text == nil && r.Tokens == nil) {
		return nil, normalize.Unrecognized(transcription.VendorSoniox)
	}
	fallback := ""
	if r.Text != nil {
		fallback = *r.Text
	}
	tr := normalize.Build(toUnits(r.Tokens), fallback)
	for _, t := range r.Tokens {
		if t.Language != "" {
			tr.Metadata.Language = t.Language
			break
		}
	}
	return tr, nil
}

func toUnits(tokens []token) []normalize.Unit {
	units := make([]normalize.Unit, 0, len(tokens))
	for _, t := range tokens {
		units = append(units, normalize.Unit{
			Speaker: t.Speaker,
			Start:   normalize.Millis(t.StartMs),
			End:     normalize.Millis(t.EndMs),
			Text:    t.Text,
		})
	}
	return units
}
