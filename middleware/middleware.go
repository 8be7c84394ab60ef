package middleware

import (
	"context"

	"mini-echo/message"
)

// HandlerFunc turns one request into one response. A non-nil error means the
// exchange failed; the wire format has no error field, so the server reports
// failure by closing the connection without a response.
type HandlerFunc func(ctx context.Context, req *message.Request) (*message.Response, error)

type Middleware func(next HandlerFunc) HandlerFunc

// Chain 将多个中间件组合成一个中间件
func Chain(middlewares ...Middleware) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		for i := len(middlewares) - 1; i >= 0; i-- {
			next = middlewares[i](next)
		}
		return next
	}
}
