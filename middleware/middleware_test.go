package middleware

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"mini-echo/message"
)

// 模拟一个简单的 handler：直接返回成功响应
func okHandler(ctx context.Context, req *message.Request) (*message.Response, error) {
	return message.NewResponse("ok"), nil
}

// 模拟一个慢 handler：睡 200ms
func slowHandler(ctx context.Context, req *message.Request) (*message.Response, error) {
	time.Sleep(200 * time.Millisecond)
	return message.NewResponse("ok"), nil
}

func TestLogging(t *testing.T) {
	log := zerolog.New(io.Discard)
	handler := Logging(log)(okHandler)

	resp, err := handler(context.Background(), message.NewEcho("Hello"))
	if err != nil {
		t.Fatalf("expect no error, got %v", err)
	}
	if resp.Message != "ok" {
		t.Fatalf("expect message 'ok', got %q", resp.Message)
	}
}

func TestTimeoutPass(t *testing.T) {
	// 超时 500ms，handler 很快，应该正常返回
	handler := Timeout(500 * time.Millisecond)(okHandler)

	resp, err := handler(context.Background(), message.NewEcho("Hello"))
	if err != nil {
		t.Fatalf("expect no error, got %v", err)
	}
	if resp == nil {
		t.Fatal("expect non-nil response")
	}
}

func TestTimeoutExceeded(t *testing.T) {
	// 超时 50ms，handler 需要 200ms，应该超时
	handler := Timeout(50 * time.Millisecond)(slowHandler)

	resp, err := handler(context.Background(), message.NewEcho("Hello"))
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("expect ErrTimeout, got %v", err)
	}
	if resp != nil {
		t.Fatalf("expect nil response on timeout, got %+v", resp)
	}
}

func TestRateLimit(t *testing.T) {
	// rate=1 per second, burst=2 → 前 2 个立刻放行，第 3 个被拒
	handler := RateLimit(1, 2)(okHandler)
	req := message.NewEcho("Hello")

	for i := 0; i < 2; i++ {
		if _, err := handler(context.Background(), req); err != nil {
			t.Fatalf("request %d should pass, got error: %v", i, err)
		}
	}

	if _, err := handler(context.Background(), req); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("request 3 should be rate limited, got: %v", err)
	}
}

func TestChain(t *testing.T) {
	// 用 Chain 组合 Logging + Timeout，验证请求能正常穿过
	chained := Chain(Logging(zerolog.New(io.Discard)), Timeout(500*time.Millisecond))
	handler := chained(okHandler)

	resp, err := handler(context.Background(), message.NewEcho("Hello"))
	if err != nil {
		t.Fatalf("expect no error, got %v", err)
	}
	if resp == nil {
		t.Fatal("expect non-nil response")
	}
}

func TestChainOrder(t *testing.T) {
	var order []string
	named := func(name string) Middleware {
		return func(next HandlerFunc) HandlerFunc {
			return func(ctx context.Context, req *message.Request) (*message.Response, error) {
				order = append(order, name)
				return next(ctx, req)
			}
		}
	}

	handler := Chain(named("outer"), named("inner"))(okHandler)
	if _, err := handler(context.Background(), message.NewEcho("x")); err != nil {
		t.Fatal(err)
	}

	if len(order) != 2 || order[0] != "outer" || order[1] != "inner" {
		t.Fatalf("expect [outer inner], got %v", order)
	}
}
