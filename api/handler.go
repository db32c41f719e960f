package api

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/scribe/errors"
	"github.com/kbukum/scribe/logger"
	"github.com/kbukum/scribe/server"
	"github.com/kbukum/scribe/sse"
	"github.com/kbukum/scribe/summarize"
	"github.com/kbukum/scribe/task"
	"github.com/kbukum/scribe/transcription"
	"github.com/kbukum/scribe/util"
	"github.com/kbukum/scribe/validation"
)

const (
	defaultKeepAlive = 15 * time.Second
	formMemory       = 32 << 20
)

// Runner executes one validated task, reporting to e.
type Runner interface {
	Run(ctx context.Context, req task.Request, e task.Emitter) (*task.Metadata, error)
}

// Config configures the handlers.
type Config struct {
	// UploadDir receives uploads until their task finishes.
	UploadDir string
	// KeepAlive is the comment interval on progress streams.
	KeepAlive time.Duration
}

// Handler serves the /api routes.
type Handler struct {
	runner    Runner
	cfg       Config
	catalogue []VendorEntry
	log       *logger.Logger
}

// NewHandler creates a Handler running tasks on r.
func NewHandler(r Runner, cfg Config, log *logger.Logger) *Handler {
	if cfg.UploadDir == "" {
		cfg.UploadDir = os.TempDir()
	}
	if cfg.KeepAlive <= 0 {
		cfg.KeepAlive = defaultKeepAlive
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Handler{runner: r, cfg: cfg, catalogue: Catalogue(), log: log.WithComponent("api")}
}

// Register mounts the routes on rg.
func (h *Handler) Register(rg gin.IRoutes) {
	rg.POST("/api/process", h.process)
	rg.GET("/api/vendors", h.vendors)
}

// processForm is the multipart upload. FileName is the sanitized client
// file name and stands in for File during validation.
type processForm struct {
	File      *multipart.FileHeader `form:"file" validate:"-"`
	FileName  string                `form:"file" validate:"required,mediaext"`
	ASRVendor string                `form:"asr_vendor" validate:"required"`
	LLMVendor string                `form:"llm_vendor" validate:"required"`
	ASRCreds  string                `form:"asr_creds" validate:"required,json"`
	LLMCreds  string                `form:"llm_creds" validate:"required,json"`
}

// process validates the upload, answering 400 on any problem, then streams
// the task as server-sent events.
func (h *Handler) process(c *gin.Context) {
	req, err := h.parse(c)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}

	file, err := h.save(c.Request.Context(), req.header)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	req.task.File = file

	stream, err := sse.Open(c.Request.Context(), c.Writer)
	if err != nil {
		_ = os.Remove(file.Path)
		server.RespondWithError(c, errors.Internal(err))
		return
	}

	ctx, cancel := context.WithCancel(c.Request.Context())
	done := make(chan struct{})
	go func() {
		defer close(done)
		stream.KeepAlive(ctx, h.cfg.KeepAlive)
	}()
	defer func() {
		cancel()
		<-done
		stream.Close()
	}()

	// The outcome is already on the stream.
	_, _ = h.runner.Run(ctx, req.task, stream)
}

type parsedRequest struct {
	header *multipart.FileHeader
	task   task.Request
}

func (h *Handler) parse(c *gin.Context) (*parsedRequest, error) {
	if err := c.Request.ParseMultipartForm(formMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			return nil, errors.InvalidInput("file", "exceeds the upload size limit")
		}
		if !stderrors.Is(err, http.ErrNotMultipart) {
			return nil, errors.InvalidInput("file", "malformed multipart body")
		}
	}

	form := processForm{
		ASRVendor: c.PostForm("asr_vendor"),
		LLMVendor: c.PostForm("llm_vendor"),
		ASRCreds:  c.PostForm("asr_creds"),
		LLMCreds:  c.PostForm("llm_creds"),
	}
	if fh, err := c.FormFile("file"); err == nil {
		form.File = fh
		form.FileName = util.SanitizeFilename(fh.Filename)
	}
	if err := validation.Struct(form); err != nil {
		return nil, err
	}

	asr, err := transcription.ParseVendor(form.ASRVendor)
	if err != nil {
		return nil, err
	}
	llm, err := summarize.ParseVendor(form.LLMVendor)
	if err != nil {
		return nil, err
	}

	asrCreds, err := decodeCreds("asr_creds", form.ASRCreds)
	if err != nil {
		return nil, err
	}
	llmCreds, err := decodeCreds("llm_creds", form.LLMCreds)
	if err != nil {
		return nil, err
	}
	if err := asr.CheckCredentials(asrCreds); err != nil {
		return nil, err
	}
	if err := llm.CheckCredentials(llmCreds); err != nil {
		return nil, err
	}

	form.File.Filename = form.FileName
	return &parsedRequest{
		header: form.File,
		task: task.Request{
			ASRVendor: asr,
			LLMVendor: llm,
			ASRCreds:  asrCreds,
			LLMCreds:  llmCreds,
		},
	}, nil
}

func decodeCreds(field, raw string) (transcription.Credentials, error) {
	var creds transcription.Credentials
	if err := json.Unmarshal([]byte(raw), &creds); err != nil || creds == nil {
		return nil, errors.InvalidInput(field, "must be a JSON object of strings")
	}
	return creds, nil
}

// save copies the upload into the upload directory under a unique name.
// The media file keeps the sanitized client name as its identity.
func (h *Handler) save(ctx context.Context, fh *multipart.FileHeader) (transcription.MediaFile, error) {
	if err := os.MkdirAll(h.cfg.UploadDir, 0o750); err != nil {
		return transcription.MediaFile{}, errors.Storage("save upload", err)
	}
	src, err := fh.Open()
	if err != nil {
		return transcription.MediaFile{}, errors.Storage("save upload", err)
	}
	defer func() { _ = src.Close() }()

	dst, err := os.CreateTemp(h.cfg.UploadDir, "upload-*-"+fh.Filename)
	if err != nil {
		return transcription.MediaFile{}, errors.Storage("save upload", err)
	}
	n, err := io.Copy(dst, src)
	if closeErr := dst.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(dst.Name())
		return transcription.MediaFile{}, errors.Storage("save upload", err)
	}

	h.log.WithContext(ctx).Debug("upload saved", logger.Fields("file", fh.Filename, "bytes", n))
	return transcription.MediaFile{
		Path: dst.Name(),
		Name: fh.Filename,
		Ext:  util.Ext(fh.Filename),
		Size: n,
	}, nil
}

