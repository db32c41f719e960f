package task

import (
	"context"
	stderrors "errors"
	"os"
	"path"
	"strings"

	"github.com/kbukum/scribe/errors"
	"github.com/kbukum/scribe/storage"
	"github.com/kbukum/scribe/transcription"
)

// Artifact names under tasks/<id>/.
const (
	Prefix             = "tasks/"
	FileTranscriptText = "transcript.txt"
	FileTranscriptJSON = "transcript.json"
	FileSummary        = "summary.txt"
	FileMetadata       = "metadata.json"
	FileASRLog         = "asr_log.json"
	FileLLMLog         = "llm_log.json"
	dirSource          = "source"
)

// Store reads and writes task artifacts. Every write replaces the object
// atomically, so a cancelled task never leaves a partial artifact.
type Store struct {
	storage storage.Storage
}

// NewStore creates a Store on top of s.
func NewStore(s storage.Storage) *Store {
	return &Store{storage: s}
}

// Path returns the object path of name inside task id.
func Path(id string, name ...string) string {
	return path.Join(append([]string{Prefix, id}, name...)...)
}

// ArchiveSource copies the upload into tasks/<id>/source/<name>.
func (s *Store) ArchiveSource(ctx context.Context, id string, file transcription.MediaFile) error {
	f, err := os.Open(file.Path)
	if err != nil {
		return errors.Storage("archive", err)
	}
	defer func() { _ = f.Close() }()
	if err := s.storage.Upload(ctx, Path(id, dirSource, file.Name), f); err != nil {
		return errors.Storage("archive", err)
	}
	return nil
}

// SaveTranscript writes the rendered and the structured transcript.
func (s *Store) SaveTranscript(ctx context.Context, id string, t *transcription.Transcript) error {
	if err := storage.WriteBytes(ctx, s.storage, Path(id, FileTranscriptText), []byte(t.Text)); err != nil {
		return errors.Storage("write transcript", err)
	}
	if err := storage.WriteJSON(ctx, s.storage, Path(id, FileTranscriptJSON), t); err != nil {
		return errors.Storage("write transcript", err)
	}
	return nil
}

// LoadTranscript reads transcript.json, falling back to transcript.txt as
// a plain-text transcript.
func (s *Store) LoadTranscript(ctx context.Context, id string) (*transcription.Transcript, error) {
	var t transcription.Transcript
	err := storage.ReadJSON(ctx, s.storage, Path(id, FileTranscriptJSON), &t)
	if err == nil {
		return &t, nil
	}
	if !stderrors.Is(err, storage.ErrNotFound) {
		return nil, errors.Storage("read transcript", err)
	}
	text, err := storage.ReadBytes(ctx, s.storage, Path(id, FileTranscriptText))
	if err != nil {
		return nil, errors.Storage("read transcript", err)
	}
	return &transcription.Transcript{Text: string(text)}, nil
}

func (s *Store) SaveSummary(ctx context.Context, id, summary string) error {
	if err := storage.WriteBytes(ctx, s.storage, Path(id, FileSummary), []byte(summary)); err != nil {
		return errors.Storage("write summary", err)
	}
	return nil
}

func (s *Store) LoadSummary(ctx context.Context, id string) (string, error) {
	data, err := storage.ReadBytes(ctx, s.storage, Path(id, FileSummary))
	if err != nil {
		return "", errors.Storage("read summary", err)
	}
	return string(data), nil
}

func (s *Store) SaveMetadata(ctx context.Context, m *Metadata) error {
	if err := storage.WriteJSON(ctx, s.storage, Path(m.TaskID, FileMetadata), m); err != nil {
		return errors.Storage("write metadata", err)
	}
	return nil
}

func (s *Store) LoadMetadata(ctx context.Context, id string) (*Metadata, error) {
	var m Metadata
	if err := storage.ReadJSON(ctx, s.storage, Path(id, FileMetadata), &m); err != nil {
		return nil, errors.Storage("read metadata", err)
	}
	return &m, nil
}

// SaveStageLog writes asr_log.json or llm_log.json.
func (s *Store) SaveStageLog(ctx context.Context, id string, l StageLog) error {
	name := FileASRLog
	if l.Stage == StageLLM {
		name = FileLLMLog
	}
	if err := storage.WriteJSON(ctx, s.storage, Path(id, name), l); err != nil {
		return errors.Storage("write "+l.Stage+" log", err)
	}
	return nil
}

// TaskIDs returns the id of every task that has a metadata document.
func (s *Store) TaskIDs(ctx context.Context) ([]string, error) {
	files, err := s.storage.List(ctx, Prefix)
	if err != nil {
		return nil, errors.Storage("list tasks", err)
	}
	var ids []string
	for _, f := range files {
		rest := strings.TrimPrefix(f.Path, Prefix)
		id, name, ok := strings.Cut(rest, "/")
		if ok && name == FileMetadata && id != "" {
			ids = append(ids, id)
		}
	}
	return ids, nil
}
