package middleware

import (
	"context"
	"errors"

	"golang.org/x/time/rate"

	"mini-echo/message"
)

// ErrRateLimited reports that a request was shed by the limiter.
var ErrRateLimited = errors.New("middleware: rate limit exceeded")

// RateLimit 基于令牌桶算法的限流中间件。Rejected requests fail the exchange;
// the client sees the connection close without a response.
func RateLimit(r float64, burst int) Middleware {
	limiter := rate.NewLimiter(rate.Limit(r), burst)
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req *message.Request) (*message.Response, error) {
			if !limiter.Allow() {
				return nil, ErrRateLimited
			}
			return next(ctx, req)
		}
	}
}
