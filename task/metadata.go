package task

import (
	"time"

	"github.com/kbukum/scribe/errors"
)

// Source describes the archived upload. Name is the cache identity.
type Source struct {
	Name string `json:"name"`
	Ext  string `json:"ext"`
	Size int64  `json:"size"`
}

// StageRecord is the persisted state of one stage.
type StageRecord struct {
	Status     StageStatus `json:"status"`
	Cached     bool        `json:"cached"`
	CachedFrom string      `json:"cached_from,omitempty"`
	DurationMS int64       `json:"duration_ms"`
}

// ErrorInfo is the failure recorded on a task.
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Metadata is metadata.json, rewritten after every transition. Cache
// records are derived from it.
type Metadata struct {
	TaskID    string      `json:"task_id"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
	Source    Source      `json:"source"`
	ASRVendor string      `json:"asr_vendor"`
	LLMVendor string      `json:"llm_vendor"`
	Status    State       `json:"status"`
	ASR       StageRecord `json:"asr"`
	LLM       StageRecord `json:"llm"`
	Error     *ErrorInfo  `json:"error,omitempty"`
}

// fail records err and moves the task to StateError.
func (m *Metadata) fail(err error) {
	appErr := errors.From(err)
	m.Status = StateError
	m.Error = &ErrorInfo{Code: string(appErr.Code), Message: appErr.Message}
	if m.ASR.Status == StagePending {
		m.ASR.Status = StageFailed
	}
	if m.LLM.Status == StagePending {
		m.LLM.Status = StageFailed
	}
}

// StageLog is the redacted per-stage log (asr_log.json, llm_log.json).
// It never carries credentials or full payloads.
type StageLog struct {
	Stage        string    `json:"stage"`
	Vendor       string    `json:"vendor"`
	InputBytes   int64     `json:"input_bytes"`
	OutputLength int       `json:"output_length"`
	Preview      string    `json:"preview"`
	DurationMS   int64     `json:"duration_ms"`
	Cached       bool      `json:"cached"`
	CachedFrom   string    `json:"cached_from,omitempty"`
	Error        string    `json:"error,omitempty"`
	At           time.Time `json:"at"`
}
