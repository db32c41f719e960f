package task

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

const idLayout = "20060102-150405"

// NewID returns YYYYMMDD-HHMMSS-<8 hex> for now (UTC). Concurrent tasks
// within one second differ in the random suffix.
func NewID(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return now.UTC().Format(idLayout) + "-" + suffix
}
