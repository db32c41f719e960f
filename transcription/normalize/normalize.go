// Package normalize maps vendor recognition units onto the canonical
// diarized transcript.
package normalize

import (
	"fmt"
	"strings"
	"time"

	"github.com/kbukum/scribe/errors"
	"github.com/kbukum/scribe/transcription"
)

// Unit is the smallest piece of a vendor result: a word, token, phrase or
// sentence. Speaker is the vendor's own id; empty means none.
type Unit struct {
	Speaker string
	Start   time.Duration
	End     time.Duration
	Text    string
}

// Build folds units into a Transcript. When no unit carries a speaker the
// result is plain text: the concatenated unit texts, or fallback when the
// units carry no text at all. A diarized result with no speech in any
// segment comes back with empty Text.
func Build(units []Unit, fallback string) *transcription.Transcript {
	if !hasSpeaker(units) {
		var b strings.Builder
		for _, u := range units {
			b.WriteString(u.Text)
		}
		text := b.String()
		if strings.TrimSpace(text) == "" {
			text = fallback
		}
		return &transcription.Transcript{Text: strings.TrimSpace(text)}
	}

	labels := newLabeler()
	var (
		segments []transcription.Segment
		current  *transcription.Segment
		vendorID string
		text     strings.Builder
		lead     []Unit
	)
	closeCurrent := func() {
		if current == nil {
			return
		}
		// Segments without speech are dropped and never take a label.
		if body := strings.TrimSpace(text.String()); body != "" {
			current.Text = body
			current.Speaker = labels.label(vendorID)
			segments = append(segments, *current)
		}
		current = nil
		text.Reset()
	}

	for _, u := range units {
		if u.Speaker == "" {
			// Unattributed units join the open segment, or the first one
			// to open.
			if current == nil {
				lead = append(lead, u)
				continue
			}
			text.WriteString(u.Text)
			extend(current, u)
			continue
		}
		if current != nil && u.Speaker != vendorID {
			closeCurrent()
		}
		if current == nil {
			vendorID = u.Speaker
			current = &transcription.Segment{Start: u.Start, End: u.End}
			for _, l := range lead {
				text.WriteString(l.Text)
				extend(current, l)
			}
			lead = nil
		}
		text.WriteString(u.Text)
		extend(current, u)
	}
	closeCurrent()

	if len(segments) == 0 {
		return &transcription.Transcript{}
	}
	return &transcription.Transcript{
		Metadata: transcription.Metadata{SpeakerCount: labels.count()},
		Segments: segments,
		Text:     Render(segments),
	}
}

func extend(s *transcription.Segment, u Unit) {
	if u.Start < s.Start {
		s.Start = u.Start
	}
	if u.End > s.End {
		s.End = u.End
	}
	if s.End < s.Start {
		s.End = s.Start
	}
}

func hasSpeaker(units []Unit) bool {
	for _, u := range units {
		if u.Speaker != "" {
			return true
		}
	}
	return false
}

type labeler struct {
	byID map[string]string
}

func newLabeler() *labeler {
	return &labeler{byID: make(map[string]string)}
}

func (l *labeler) label(id string) string {
	if name, ok := l.byID[id]; ok {
		return name
	}
	name := fmt.Sprintf("Speaker %d", len(l.byID)+1)
	l.byID[id] = name
	return name
}

func (l *labeler) count() int { return len(l.byID) }

// FormatTimestamp renders d as HH:MM:SS, truncating fractional seconds.
func FormatTimestamp(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int64(d / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, (total/60)%60, total%60)
}

// Render produces one "[start - end] Speaker N: text" line per segment.
func Render(segments []transcription.Segment) string {
	lines := make([]string, 0, len(segments))
	for _, s := range segments {
		lines = append(lines, fmt.Sprintf("[%s - %s] %s: %s",
			FormatTimestamp(s.Start), FormatTimestamp(s.End), s.Speaker, s.Text))
	}
	return strings.Join(lines, "\n")
}

// Millis converts a vendor millisecond offset.
func Millis(ms int64) time.Duration {
	return time.Duration(ms) * time.Millisecond
}

// Seconds converts a vendor fractional-second offset, rounded to the
// millisecond.
func Seconds(sec float64) time.Duration {
	return time.Duration(sec*1000+0.5) * time.Millisecond
}

// Unrecognized is returned by schema mappers when the response carries no
// field they know.
func Unrecognized(vendor transcription.Vendor) error {
	return errors.VendorProtocol(string(vendor), "unrecognized response shape")
}
