package middleware

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/openchat-labs/chatsearch/pkg/logger"
)

// Timeout bounds each request to the given duration. The handler runs with a
// deadline-carrying context; if it has not produced a response by the
// deadline, the client gets a 504 and whatever the handler writes afterwards
// is discarded.
func Timeout(timeout time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()

			dw := &deadlineWriter{rw: w}
			done := make(chan struct{})
			go func() {
				defer close(done)
				next.ServeHTTP(dw, r.WithContext(ctx))
			}()

			select {
			case <-done:
			case <-ctx.Done():
				if dw.abandon() {
					logger.FromContext(r.Context()).Warn("request deadline exceeded",
						"method", r.Method,
						"path", r.URL.Path,
						"timeout", timeout,
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusGatewayTimeout)
					w.Write([]byte(`{"error":"request timeout"}`))
				}
			}
		})
	}
}

// deadlineWriter serialises the race between a slow handler and the timeout
// path: whichever side claims the response first wins, and the loser's writes
// are dropped.
type deadlineWriter struct {
	rw      http.ResponseWriter
	claimed atomic.Int32 // 0 unclaimed, 1 handler, 2 timed out
}

// abandon is called by the timeout path. It reports true when the handler has
// not written yet, in which case the timeout response may be sent.
func (d *deadlineWriter) abandon() bool {
	return d.claimed.CompareAndSwap(0, 2)
}

func (d *deadlineWriter) claim() bool {
	return d.claimed.CompareAndSwap(0, 1) || d.claimed.Load() == 1
}

func (d *deadlineWriter) Header() http.Header {
	return d.rw.Header()
}

func (d *deadlineWriter) WriteHeader(code int) {
	if d.claim() {
		d.rw.WriteHeader(code)
	}
}

func (d *deadlineWriter) Write(b []byte) (int, error) {
	if d.claim() {
		return d.rw.Write(b)
	}
	return len(b), nil
}
