package protocol

import (
	"context"
	"time"

	"github.com/kbukum/scribe/errors"
	"github.com/kbukum/scribe/transcription"
)

// Status is the outcome of one status check.
type Status int

const (
	StatusPending Status = iota
	StatusSucceeded
	StatusFailed
)

// Result is returned by a status check.
type Result[T any] struct {
	Status  Status
	Value   T
	Message string
}

// Pending keeps the poll loop going.
func Pending[T any]() Result[T] { return Result[T]{Status: StatusPending} }

// Succeeded ends the loop with v.
func Succeeded[T any](v T) Result[T] { return Result[T]{Status: StatusSucceeded, Value: v} }

// Failed ends the loop with a VENDOR_BUSINESS_ERROR carrying msg.
func Failed[T any](msg string) Result[T] { return Result[T]{Status: StatusFailed, Message: msg} }

// Poller configures a status check loop. It waits Interval before every
// check and gives up after MaxAttempts pending checks.
type Poller struct {
	Interval    time.Duration
	MaxAttempts int
	Sleep       func(ctx context.Context, d time.Duration) error
}

// NewPoller creates a Poller from adapter options and the vendor's
// default interval.
func NewPoller(opts transcription.Options, defaultInterval time.Duration) Poller {
	return Poller{
		Interval:    opts.Interval(defaultInterval),
		MaxAttempts: opts.MaxPollAttempts,
		Sleep:       opts.Sleep,
	}
}

func (p Poller) sleep(ctx context.Context) error {
	if p.Sleep != nil {
		return p.Sleep(ctx, p.Interval)
	}
	return Sleep(ctx, p.Interval)
}

// Sleep waits for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Poll runs check until it succeeds, fails, errors, or MaxAttempts pending
// checks have been made. Progress is reported through the context hook.
func Poll[T any](ctx context.Context, p Poller, vendor string, check func(ctx context.Context) (Result[T], error)) (T, error) {
	var zero T
	limit := p.MaxAttempts
	if limit <= 0 {
		limit = transcription.DefaultMaxPollAttempts
	}
	for attempt := 1; attempt <= limit; attempt++ {
		if err := p.sleep(ctx); err != nil {
			return zero, errors.Timeout(vendor + " poll").WithCause(err)
		}
		transcription.ReportProgress(ctx, attempt, limit)

		res, err := check(ctx)
		if err != nil {
			return zero, err
		}
		switch res.Status {
		case StatusSucceeded:
			return res.Value, nil
		case StatusFailed:
			return zero, errors.VendorBusiness(vendor, res.Message).WithDetail("attempts", attempt)
		}
	}
	return zero, errors.PollTimeout(vendor, limit)
}

// SubmitPoll submits a job and polls its handle to completion.
func SubmitPoll[H, T any](
	ctx context.Context,
	p Poller,
	vendor string,
	submit func(ctx context.Context) (H, error),
	check func(ctx context.Context, handle H) (Result[T], error),
) (T, error) {
	var zero T
	handle, err := submit(ctx)
	if err != nil {
		return zero, err
	}
	return Poll(ctx, p, vendor, func(ctx context.Context) (Result[T], error) {
		return check(ctx, handle)
	})
}
