package protocol

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/kbukum/scribe/errors"
	"github.com/kbukum/scribe/transcription"
)

// ChunkSize is the default slice size for chunked uploads.
const ChunkSize = 10 << 20

// Chunk is one slice of the media file.
type Chunk struct {
	Index int
	Data  []byte
}

// ChunkedSteps are the vendor calls of a chunked upload. Each step builds
// its own request signature when it runs.
type ChunkedSteps[H, T any] struct {
	Prepare func(ctx context.Context, chunks int) (H, error)
	Upload  func(ctx context.Context, handle H, chunk Chunk) error
	Merge   func(ctx context.Context, handle H) error
	Check   func(ctx context.Context, handle H) (Result[T], error)
}

// ChunkCount returns the number of slices a file of size bytes needs.
func ChunkCount(size int64, chunkSize int) int {
	if size <= 0 {
		return 0
	}
	return int((size + int64(chunkSize) - 1) / int64(chunkSize))
}

// ChunkedUploadMergePoll streams file in chunkSize slices with 0-based
// indexes between Prepare and Merge, then polls Check.
func ChunkedUploadMergePoll[H, T any](
	ctx context.Context,
	p Poller,
	vendor string,
	file transcription.MediaFile,
	chunkSize int,
	steps ChunkedSteps[H, T],
) (T, error) {
	var zero T
	if chunkSize <= 0 {
		chunkSize = ChunkSize
	}
	count := ChunkCount(file.Size, chunkSize)
	if count == 0 {
		return zero, errors.InvalidInput("file", "media file is empty")
	}

	f, err := os.Open(file.Path)
	if err != nil {
		return zero, errors.Internal(fmt.Errorf("open media: %w", err))
	}
	defer func() { _ = f.Close() }()

	handle, err := steps.Prepare(ctx, count)
	if err != nil {
		return zero, err
	}

	buf := make([]byte, chunkSize)
	for index := 0; ; index++ {
		n, readErr := io.ReadFull(f, buf)
		if n > 0 {
			chunk := Chunk{Index: index, Data: buf[:n]}
			if err := steps.Upload(ctx, handle, chunk); err != nil {
				return zero, err
			}
		}
		if readErr == io.EOF || readErr == io.ErrUnexpectedEOF {
			break
		}
		if readErr != nil {
			return zero, errors.Internal(fmt.Errorf("read media: %w", readErr))
		}
	}

	if err := steps.Merge(ctx, handle); err != nil {
		return zero, err
	}
	return Poll(ctx, p, vendor, func(ctx context.Context) (Result[T], error) {
		return steps.Check(ctx, handle)
	})
}
