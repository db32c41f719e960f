package transcription

import "context"

// ProgressFunc receives status check progress from polling protocols.
type ProgressFunc func(attempt, total int)

type progressKey struct{}

// WithProgress attaches fn to ctx for poll loops to report through.
func WithProgress(ctx context.Context, fn ProgressFunc) context.Context {
	return context.WithValue(ctx, progressKey{}, fn)
}

// ReportProgress calls the hook attached to ctx, if any.
func ReportProgress(ctx context.Context, attempt, total int) {
	if fn, ok := ctx.Value(progressKey{}).(ProgressFunc); ok && fn != nil {
		fn(attempt, total)
	}
}
