package protocol

import (
	"context"

	"github.com/kbukum/scribe/httpclient"
)

// Signer produces per-request auth that signs at send time.
type Signer interface {
	Auth() *httpclient.AuthConfig
}

// SignedRequestPoll is SubmitPoll where the submit and every status check
// carry auth from s. The auth computes a fresh signature for each request.
func SignedRequestPoll[H, T any](
	ctx context.Context,
	p Poller,
	vendor string,
	s Signer,
	submit func(ctx context.Context, auth *httpclient.AuthConfig) (H, error),
	check func(ctx context.Context, auth *httpclient.AuthConfig, handle H) (Result[T], error),
) (T, error) {
	auth := s.Auth()
	return SubmitPoll(ctx, p, vendor,
		func(ctx context.Context) (H, error) { return submit(ctx, auth) },
		func(ctx context.Context, h H) (Result[T], error) { return check(ctx, auth, h) },
	)
}
