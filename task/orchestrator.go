package task

import (
	"context"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/kbukum/scribe/errors"
	"github.com/kbukum/scribe/logger"
	"github.com/kbukum/scribe/observability"
	"github.com/kbukum/scribe/summarize"
	"github.com/kbukum/scribe/transcription"
	"github.com/kbukum/scribe/transcription/vendors"
	"github.com/kbukum/scribe/util"
)

// Progress milestones. Poll progress fills pollStart..pollEnd.
const (
	percentArchived    = 5
	percentASRStart    = 10
	pollStart          = 15
	pollEnd            = 55
	percentTranscribed = 60
	percentLLMStart    = 65
	percentSummarized  = 95
	percentDone        = 100

	previewRunes = 200
)

// Request is one validated upload with its vendor choices.
type Request struct {
	File      transcription.MediaFile
	ASRVendor transcription.Vendor
	LLMVendor summarize.Vendor
	ASRCreds  transcription.Credentials
	LLMCreds  transcription.Credentials
}

// Orchestrator runs tasks. It holds only immutable configuration, so one
// instance serves concurrent requests.
type Orchestrator struct {
	store       *Store
	cache       *Cache
	adapters    vendors.Factory
	summarizers summarize.Factory
	adapterOpts transcription.Options
	summaryOpts summarize.Options
	metrics     *observability.Metrics
	log         *logger.Logger
	now         func() time.Time
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithAdapterFactory replaces the transcription adapter factory.
func WithAdapterFactory(f vendors.Factory) Option {
	return func(o *Orchestrator) { o.adapters = f }
}

// WithSummarizerFactory replaces the summarizer factory.
func WithSummarizerFactory(f summarize.Factory) Option {
	return func(o *Orchestrator) { o.summarizers = f }
}

// WithAdapterOptions sets the transport options every adapter receives.
func WithAdapterOptions(opts transcription.Options) Option {
	return func(o *Orchestrator) { o.adapterOpts = opts }
}

// WithSummaryOptions sets the summarizer transport options.
func WithSummaryOptions(opts summarize.Options) Option {
	return func(o *Orchestrator) { o.summaryOpts = opts }
}

func WithMetrics(m *observability.Metrics) Option {
	return func(o *Orchestrator) { o.metrics = m }
}

func WithLogger(l *logger.Logger) Option {
	return func(o *Orchestrator) { o.log = l }
}

// WithClock sets the clock used for task ids and timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

// NewOrchestrator creates an Orchestrator persisting to store.
func NewOrchestrator(store *Store, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		store:       store,
		adapters:    vendors.New,
		summarizers: summarize.New,
		log:         logger.Nop(),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	o.log = o.log.WithComponent("task")
	o.cache = NewCache(store, o.log)
	if o.adapterOpts.Logger == nil {
		o.adapterOpts.Logger = o.log
	}
	return o
}

// run is the state of one task while it executes.
type run struct {
	req      Request
	meta     *Metadata
	reporter *Reporter
	log      *logger.Logger
}

// Run executes req, reporting to e, and returns the final metadata. The
// temp upload is removed whatever the outcome. The returned error is the
// one reported in the error event.
func (o *Orchestrator) Run(ctx context.Context, req Request, e Emitter) (*Metadata, error) {
	defer o.removeUpload(req.File.Path)

	now := o.now()
	id := NewID(now)
	ctx = logger.ContextWithTaskID(ctx, id)
	log := o.log.WithContext(ctx)

	r := &run{
		req: req,
		meta: &Metadata{
			TaskID:    id,
			CreatedAt: now.UTC(),
			UpdatedAt: now.UTC(),
			Source:    Source{Name: req.File.Name, Ext: req.File.Ext, Size: req.File.Size},
			ASRVendor: string(req.ASRVendor),
			LLMVendor: string(req.LLMVendor),
			Status:    StateUploaded,
		},
		reporter: NewReporter(e, id, log),
		log:      log,
	}
	o.metrics.TaskStarted(ctx)
	log.Info("task started", logger.Fields(
		"source", req.File.Name, "asr_vendor", string(req.ASRVendor), "llm_vendor", string(req.LLMVendor)))
	log.Debug("vendor credentials", logger.Fields(
		"asr_creds", maskCredentials(req.ASRCreds), "llm_creds", maskCredentials(req.LLMCreds)))

	if err := o.store.ArchiveSource(ctx, id, req.File); err != nil {
		return o.fail(ctx, r, "archive", err)
	}
	if err := o.save(ctx, r); err != nil {
		return o.fail(ctx, r, "archive", err)
	}
	r.reporter.Progress(percentArchived, "source archived")

	transcript, err := o.transcribe(ctx, r)
	if err != nil {
		return o.fail(ctx, r, StageASR, err)
	}

	if _, err := o.summarize(ctx, r, transcript); err != nil {
		return o.fail(ctx, r, StageLLM, err)
	}

	r.meta.Status = StatePersisted
	if err := o.save(ctx, r); err != nil {
		return o.fail(ctx, r, "persist", err)
	}
	r.reporter.Progress(percentDone, "done")
	r.reporter.Done()
	o.metrics.TaskFinished(ctx, string(StatePersisted))
	log.Info("task finished", logger.Fields(
		"asr_cached", r.meta.ASR.Cached, "llm_cached", r.meta.LLM.Cached))
	return r.meta, nil
}

func (o *Orchestrator) transcribe(ctx context.Context, r *run) (*transcription.Transcript, error) {
	vendor := string(r.req.ASRVendor)
	r.reporter.Progress(percentASRStart, "transcribing with "+r.req.ASRVendor.DisplayName())

	hit, ok, err := o.cache.Transcript(ctx, r.req.File.Name, vendor, r.meta.TaskID)
	if err != nil {
		return nil, err
	}
	if ok {
		r.log.Info("transcript cache hit", logger.Fields(logger.FieldStage, StageASR, "cached_from", hit.TaskID))
		_, stage := observability.StartStage(ctx, o.metrics, StageASR, vendor)
		stage.End(ctx, nil, true)
		r.meta.ASR = StageRecord{Status: StageSuccess, Cached: true, CachedFrom: hit.TaskID}
		return hit.Transcript, o.finishTranscript(ctx, r, hit.Transcript, 0)
	}

	r.meta.Status = StateASRPending
	r.meta.ASR.Status = StagePending
	if err := o.save(ctx, r); err != nil {
		return nil, err
	}

	adapter, err := o.adapters(r.req.ASRVendor, o.adapterOpts)
	if err != nil {
		return nil, err
	}

	attempts := 0
	pollCtx := transcription.WithProgress(ctx, func(attempt, total int) {
		attempts = attempt
		r.reporter.Progress(pollStart+(pollEnd-pollStart)*attempt/total, "waiting for "+r.req.ASRVendor.DisplayName())
	})
	stageCtx, stage := observability.StartStage(pollCtx, o.metrics, StageASR, vendor)
	t, err := adapter.Transcribe(stageCtx, r.req.File, r.req.ASRCreds)
	if err == nil && t.Blank() {
		err = errors.EmptyResult("transcription")
	}
	stage.End(ctx, err, false)
	if attempts > 0 {
		o.metrics.RecordPoll(ctx, vendor, attempts)
	}
	if err != nil {
		_ = o.saveStageLog(ctx, r, StageLog{
			Stage: StageASR, Vendor: vendor, InputBytes: r.req.File.Size,
			DurationMS: stage.Elapsed().Milliseconds(), Error: string(errors.CodeOf(err)),
		})
		return nil, err
	}

	r.meta.ASR = StageRecord{Status: StageSuccess, DurationMS: stage.Elapsed().Milliseconds()}
	return t, o.finishTranscript(ctx, r, t, stage.Elapsed())
}

// finishTranscript persists a live or cached transcript and reports it.
func (o *Orchestrator) finishTranscript(ctx context.Context, r *run, t *transcription.Transcript, took time.Duration) error {
	if err := o.store.SaveTranscript(ctx, r.meta.TaskID, t); err != nil {
		return err
	}
	if err := o.saveStageLog(ctx, r, StageLog{
		Stage:        StageASR,
		Vendor:       string(r.req.ASRVendor),
		InputBytes:   r.req.File.Size,
		OutputLength: utf8.RuneCountInString(t.Text),
		Preview:      util.Truncate(t.Text, previewRunes),
		DurationMS:   took.Milliseconds(),
		Cached:       r.meta.ASR.Cached,
		CachedFrom:   r.meta.ASR.CachedFrom,
	}); err != nil {
		return err
	}
	r.meta.Status = StateASRDone
	if err := o.save(ctx, r); err != nil {
		return err
	}
	r.reporter.Progress(percentTranscribed, "transcript ready")
	r.reporter.Transcript(t)
	return nil
}

func (o *Orchestrator) summarize(ctx context.Context, r *run, t *transcription.Transcript) (string, error) {
	vendor := string(r.req.LLMVendor)
	r.reporter.Progress(percentLLMStart, "summarizing with "+r.req.LLMVendor.DisplayName())

	hit, ok, err := o.cache.Summary(ctx, r.req.File.Name, string(r.req.ASRVendor), vendor, r.meta.TaskID)
	if err != nil {
		return "", err
	}
	if ok {
		r.log.Info("summary cache hit", logger.Fields(logger.FieldStage, StageLLM, "cached_from", hit.TaskID))
		_, stage := observability.StartStage(ctx, o.metrics, StageLLM, vendor)
		stage.End(ctx, nil, true)
		r.meta.LLM = StageRecord{Status: StageSuccess, Cached: true, CachedFrom: hit.TaskID}
		return hit.Text, o.finishSummary(ctx, r, t, hit.Text, 0)
	}

	r.meta.Status = StateLLMPending
	r.meta.LLM.Status = StagePending
	if err := o.save(ctx, r); err != nil {
		return "", err
	}

	s, err := o.summarizers(r.req.LLMVendor, o.summaryOpts)
	if err != nil {
		return "", err
	}
	stageCtx, stage := observability.StartStage(ctx, o.metrics, StageLLM, vendor)
	text, err := s.Summarize(stageCtx, t.Text, r.req.LLMCreds)
	if err == nil && strings.TrimSpace(text) == "" {
		err = errors.EmptyResult("summary")
	}
	stage.End(ctx, err, false)
	if err != nil {
		_ = o.saveStageLog(ctx, r, StageLog{
			Stage: StageLLM, Vendor: vendor, InputBytes: int64(len(t.Text)),
			DurationMS: stage.Elapsed().Milliseconds(), Error: string(errors.CodeOf(err)),
		})
		return "", err
	}

	r.meta.LLM = StageRecord{Status: StageSuccess, DurationMS: stage.Elapsed().Milliseconds()}
	return text, o.finishSummary(ctx, r, t, text, stage.Elapsed())
}

func (o *Orchestrator) finishSummary(ctx context.Context, r *run, t *transcription.Transcript, text string, took time.Duration) error {
	if err := o.store.SaveSummary(ctx, r.meta.TaskID, text); err != nil {
		return err
	}
	if err := o.saveStageLog(ctx, r, StageLog{
		Stage:        StageLLM,
		Vendor:       string(r.req.LLMVendor),
		InputBytes:   int64(len(t.Text)),
		OutputLength: utf8.RuneCountInString(text),
		Preview:      util.Truncate(text, previewRunes),
		DurationMS:   took.Milliseconds(),
		Cached:       r.meta.LLM.Cached,
		CachedFrom:   r.meta.LLM.CachedFrom,
	}); err != nil {
		return err
	}
	r.meta.Status = StateLLMDone
	if err := o.save(ctx, r); err != nil {
		return err
	}
	r.reporter.Progress(percentSummarized, "summary ready")
	r.reporter.Summary(text)
	return nil
}

// fail records err in metadata, persists it and emits the error event.
func (o *Orchestrator) fail(ctx context.Context, r *run, stage string, err error) (*Metadata, error) {
	appErr := errors.From(err)
	r.meta.fail(appErr)
	// Persist even when the request context is gone.
	if saveErr := o.save(context.WithoutCancel(ctx), r); saveErr != nil {
		r.log.WithError(saveErr).Error("failed to persist task error")
	}
	r.log.WithError(appErr).Warn("task failed", logger.Fields(logger.FieldStage, stage, "code", string(appErr.Code)))
	o.metrics.RecordError(ctx, string(appErr.Code), stage)
	o.metrics.TaskFinished(ctx, string(StateError))
	r.reporter.Error(appErr)
	return r.meta, appErr
}

// maskCredentials keeps the keys and the first characters of each value.
func maskCredentials(c transcription.Credentials) map[string]string {
	masked := make(map[string]string, len(c))
	for k, v := range c {
		masked[k] = util.MaskSecret(v, 4)
	}
	return masked
}

func (o *Orchestrator) save(ctx context.Context, r *run) error {
	r.meta.UpdatedAt = o.now().UTC()
	return o.store.SaveMetadata(ctx, r.meta)
}

func (o *Orchestrator) saveStageLog(ctx context.Context, r *run, l StageLog) error {
	l.At = o.now().UTC()
	if err := o.store.SaveStageLog(ctx, r.meta.TaskID, l); err != nil {
		r.log.WithError(err).Warn("failed to write stage log", logger.Fields(logger.FieldStage, l.Stage))
		return err
	}
	return nil
}

func (o *Orchestrator) removeUpload(path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		o.log.WithError(err).Warn("failed to remove upload")
	}
}
