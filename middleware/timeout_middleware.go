package middleware

import (
	"context"
	"errors"
	"time"

	"mini-echo/message"
)

// ErrTimeout reports that a handler exceeded its deadline.
var ErrTimeout = errors.New("middleware: handler timed out")

// Timeout bounds how long a handler may run. The handler goroutine keeps
// running after the deadline fires, but its result is discarded and the
// exchange fails with ErrTimeout.
func Timeout(timeout time.Duration) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req *message.Request) (*message.Response, error) {
			ctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			type result struct {
				resp *message.Response
				err  error
			}
			done := make(chan result, 1) // Buffered so the late handler never blocks
			go func() {
				resp, err := next(ctx, req)
				done <- result{resp, err}
			}()

			select {
			case r := <-done:
				return r.resp, r.err
			case <-ctx.Done():
				return nil, ErrTimeout
			}
		}
	}
}
