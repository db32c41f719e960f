package transcription

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/kbukum/scribe/validation"
)

// MediaFile is an uploaded source file waiting on disk.
type MediaFile struct {
	// Path is the temporary upload location.
	Path string `json:"-"`
	// Name is the sanitized original filename and the source identity.
	Name string `json:"name"`
	// Ext is the lowercase extension without the dot.
	Ext string `json:"ext"`
	// Size is the file length in bytes.
	Size int64 `json:"size"`
}

// ContentType returns the MIME type for the file extension.
func (m MediaFile) ContentType() string {
	if ct, ok := contentTypes[m.Ext]; ok {
		return ct
	}
	return "application/octet-stream"
}

var contentTypes = map[string]string{
	"mp3":  "audio/mpeg",
	"mpeg": "audio/mpeg",
	"mpga": "audio/mpeg",
	"mp4":  "video/mp4",
	"m4a":  "audio/mp4",
	"wav":  "audio/wav",
	"webm": "audio/webm",
	"ogg":  "audio/ogg",
	"flac": "audio/flac",
}

// Credentials holds per-request vendor secrets keyed by credential field.
// They are never logged or persisted.
type Credentials map[string]string

// Get returns the value for key or "".
func (c Credentials) Get(key string) string {
	return c[key]
}

// Require fails with MISSING_FIELD when any key is blank.
func (c Credentials) Require(keys ...string) error {
	if appErr := validation.New().RequiredKeys("credentials", c, keys...).Validate(); appErr != nil {
		return appErr
	}
	return nil
}

// Metadata describes a transcript as a whole.
type Metadata struct {
	Language     string `json:"language,omitempty"`
	SpeakerCount int    `json:"speaker_count"`
}

// Segment is one contiguous run of speech by a single speaker.
type Segment struct {
	Start   time.Duration
	End     time.Duration
	Speaker string
	Text    string
}

type segmentJSON struct {
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Speaker string  `json:"speaker"`
	Text    string  `json:"text"`
}

// MarshalJSON encodes Start and End as seconds.
func (s Segment) MarshalJSON() ([]byte, error) {
	return json.Marshal(segmentJSON{
		Start:   s.Start.Seconds(),
		End:     s.End.Seconds(),
		Speaker: s.Speaker,
		Text:    s.Text,
	})
}

// UnmarshalJSON decodes Start and End from seconds.
func (s *Segment) UnmarshalJSON(data []byte) error {
	var raw segmentJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	s.Start = secondsToDuration(raw.Start)
	s.End = secondsToDuration(raw.End)
	s.Speaker = raw.Speaker
	s.Text = raw.Text
	return nil
}

func secondsToDuration(sec float64) time.Duration {
	return time.Duration(sec*1000+0.5) * time.Millisecond
}

// Transcript is the canonical, vendor-independent recognition result.
// Segments is nil when the vendor returned no diarization; Text always
// holds the rendered plain text.
type Transcript struct {
	Metadata Metadata  `json:"metadata"`
	Segments []Segment `json:"segments"`
	Text     string    `json:"text"`
}

// Diarized reports whether the transcript carries speaker segments.
func (t *Transcript) Diarized() bool {
	return len(t.Segments) > 0
}

// Blank reports whether the transcript holds no recognized speech. For a
// diarized transcript only the segment texts count, not the rendered
// timestamps and labels.
func (t *Transcript) Blank() bool {
	if t == nil {
		return true
	}
	if !t.Diarized() {
		return strings.TrimSpace(t.Text) == ""
	}
	for _, s := range t.Segments {
		if strings.TrimSpace(s.Text) != "" {
			return false
		}
	}
	return true
}
