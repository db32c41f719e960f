package task

import (
	"context"
	"sort"

	"github.com/kbukum/scribe/logger"
	"github.com/kbukum/scribe/transcription"
)

// Cache finds earlier successful stage outputs by scanning persisted
// metadata, newest task first. A miss is (nil, false, nil).
type Cache struct {
	store *Store
	log   *logger.Logger
}

// NewCache creates a Cache over store.
func NewCache(store *Store, log *logger.Logger) *Cache {
	if log == nil {
		log = logger.Nop()
	}
	return &Cache{store: store, log: log.WithComponent("cache")}
}

// TranscriptHit is a reusable transcript and the task that produced it.
type TranscriptHit struct {
	TaskID     string
	Transcript *transcription.Transcript
}

// SummaryHit is a reusable summary and the task that produced it.
type SummaryHit struct {
	TaskID string
	Text   string
}

// Transcript looks up (source, asrVendor), ignoring task exclude.
func (c *Cache) Transcript(ctx context.Context, source, asrVendor, exclude string) (*TranscriptHit, bool, error) {
	var hit *TranscriptHit
	err := c.scan(ctx, exclude, func(m *Metadata) bool {
		if m.Source.Name != source || m.ASRVendor != asrVendor || m.ASR.Status != StageSuccess {
			return false
		}
		t, err := c.store.LoadTranscript(ctx, m.TaskID)
		if err != nil || t.Text == "" {
			c.log.Warn("cached transcript unreadable", logger.Fields(logger.FieldTaskID, m.TaskID))
			return false
		}
		hit = &TranscriptHit{TaskID: m.TaskID, Transcript: t}
		return true
	})
	if err != nil || hit == nil {
		return nil, false, err
	}
	return hit, true, nil
}

// Summary looks up (source, asrVendor, llmVendor). The ASR vendor is part
// of the key since a different transcript invalidates the summary.
func (c *Cache) Summary(ctx context.Context, source, asrVendor, llmVendor, exclude string) (*SummaryHit, bool, error) {
	var hit *SummaryHit
	err := c.scan(ctx, exclude, func(m *Metadata) bool {
		if m.Source.Name != source || m.ASRVendor != asrVendor || m.LLMVendor != llmVendor || m.LLM.Status != StageSuccess {
			return false
		}
		text, err := c.store.LoadSummary(ctx, m.TaskID)
		if err != nil || text == "" {
			c.log.Warn("cached summary unreadable", logger.Fields(logger.FieldTaskID, m.TaskID))
			return false
		}
		hit = &SummaryHit{TaskID: m.TaskID, Text: text}
		return true
	})
	if err != nil || hit == nil {
		return nil, false, err
	}
	return hit, true, nil
}

// scan visits metadata newest first until match returns true. Task ids
// start with their timestamp, so descending order is newest first.
func (c *Cache) scan(ctx context.Context, exclude string, match func(*Metadata) bool) error {
	ids, err := c.store.TaskIDs(ctx)
	if err != nil {
		return err
	}
	sort.Sort(sort.Reverse(sort.StringSlice(ids)))
	for _, id := range ids {
		if id == exclude {
			continue
		}
		m, err := c.store.LoadMetadata(ctx, id)
		if err != nil {
			c.log.Debug("skipping unreadable metadata", logger.Fields(logger.FieldTaskID, id))
			continue
		}
		if match(m) {
			return nil
		}
	}
	return nil
}
