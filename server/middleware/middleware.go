package middleware

import "net/http"

// Middleware wraps an http.Handler. It is the single middleware type of the
// server and applies to Gin routes and any other mounted handler alike.
type Middleware func(http.Handler) http.Handler

// Chain composes middlewares. The first is the outermost.
func Chain(middlewares ...Middleware) Middleware {
	return func(final http.Handler) http.Handler {
		for i := len(middlewares) - 1; i >= 0; i-- {
			final = middlewares[i](final)
		}
		return final
	}
}
