package middleware

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"mini-echo/message"
)

// Logging logs one line per handled request: variant, message length and the
// time the handler took. Failures log at error level with the cause.
func Logging(log zerolog.Logger) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req *message.Request) (*message.Response, error) {
			start := time.Now()
			resp, err := next(ctx, req)
			evt := log.Info()
			if err != nil {
				evt = log.Error().Err(err)
			}
			evt.Stringer("type", req.Type).
				Int("msg_len", len(req.Message)).
				Dur("duration", time.Since(start)).
				Msg("request handled")
			return resp, err
		}
	}
}
