package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/kbukum/scribe/errors"
	"github.com/kbukum/scribe/logger"
)

// Recovery recovers from panics, logs the stack and answers with an
// INTERNAL_ERROR body. A panic after a stream has started only gets logged.
func Recovery(log *logger.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sw := newStatusWriter(w)
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				log.Error("Panic recovered", logger.Fields(
					logger.FieldError, fmt.Sprintf("%v", rec),
					"stack", string(debug.Stack()),
					"path", r.URL.Path,
					"method", r.Method,
				))
				if sw.wroteHeader {
					return
				}
				appErr := errors.Internal(fmt.Errorf("panic: %v", rec))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(appErr.HTTPStatus)
				_ = json.NewEncoder(w).Encode(appErr.ToResponse())
			}()
			next.ServeHTTP(sw, r)
		})
	}
}
