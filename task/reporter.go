package task

import (
	"github.com/kbukum/scribe/errors"
	"github.com/kbukum/scribe/logger"
	"github.com/kbukum/scribe/transcription"
)

// Event names on the progress stream.
const (
	EventProgress   = "progress"
	EventTranscript = "transcript"
	EventSummary    = "summary"
	EventError      = "error"
	EventDone       = "done"
)

// Emitter writes one named event. sse.Stream implements it.
type Emitter interface {
	Send(event string, data any) error
}

type ProgressEvent struct {
	Percent int    `json:"percent"`
	Message string `json:"message"`
}

type TranscriptEvent struct {
	TaskID     string                    `json:"task_id"`
	Text       string                    `json:"text"`
	Transcript *transcription.Transcript `json:"transcript"`
}

type SummaryEvent struct {
	TaskID string `json:"task_id"`
	Text   string `json:"text"`
}

type ErrorEvent struct {
	TaskID  string `json:"task_id"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type DoneEvent struct {
	TaskID string `json:"task_id"`
}

// Reporter is the single producer of a task's events. Percent never goes
// down, transcript and summary go out at most once, and nothing follows
// error or done. Once a send fails the client is gone and the rest is
// dropped.
type Reporter struct {
	emitter        Emitter
	taskID         string
	log            *logger.Logger
	percent        int
	sentTranscript bool
	sentSummary    bool
	finished       bool
	broken         bool
}

// NewReporter creates a Reporter for task taskID.
func NewReporter(e Emitter, taskID string, log *logger.Logger) *Reporter {
	if log == nil {
		log = logger.Nop()
	}
	return &Reporter{emitter: e, taskID: taskID, log: log}
}

// Progress reports percent, clamped to [last, 100].
func (r *Reporter) Progress(percent int, message string) {
	if percent < r.percent {
		percent = r.percent
	}
	if percent > 100 {
		percent = 100
	}
	r.percent = percent
	r.send(EventProgress, ProgressEvent{Percent: percent, Message: message})
}

func (r *Reporter) Transcript(t *transcription.Transcript) {
	if r.sentTranscript {
		return
	}
	r.sentTranscript = true
	r.send(EventTranscript, TranscriptEvent{TaskID: r.taskID, Text: t.Text, Transcript: t})
}

func (r *Reporter) Summary(text string) {
	if r.sentSummary {
		return
	}
	r.sentSummary = true
	r.send(EventSummary, SummaryEvent{TaskID: r.taskID, Text: text})
}

// Error emits the terminal error event.
func (r *Reporter) Error(err error) {
	appErr := errors.From(err)
	r.send(EventError, ErrorEvent{TaskID: r.taskID, Code: string(appErr.Code), Message: appErr.Message})
	r.finished = true
}

// Done emits the terminal success event.
func (r *Reporter) Done() {
	r.send(EventDone, DoneEvent{TaskID: r.taskID})
	r.finished = true
}

func (r *Reporter) send(event string, data any) {
	if r.finished || r.broken || r.emitter == nil {
		return
	}
	if err := r.emitter.Send(event, data); err != nil {
		r.broken = true
		r.log.Debug("progress stream closed", logger.Fields("event", event, logger.FieldError, err.Error()))
	}
}
