// Package server implements the echo server: accept loop, middleware chain,
// one exchange per connection, and graceful shutdown.
//
// Connection lifecycle:
//
//	Accept conn → handleConn (one goroutine per connection)
//	  → DecodeRequest → Middleware Chain → Handle → EncodeResponse → close
//
// Every connection carries exactly one request and at most one response.
// A connection whose request does not decode, or whose handler fails, is
// closed without a response; the server itself keeps serving.
package server

import (
	"context"
	"errors"
	"io"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"mini-echo/lines"
	"mini-echo/middleware"
	"mini-echo/registry"
	"mini-echo/transport"
)

const (
	serverVersion = "1.0"

	// Lease TTL for registry entries. KeepAlive renews it automatically;
	// a crashed server disappears within this many seconds.
	registrationTTL = 10
)

// Server accepts connections and runs one exchange on each.
type Server struct {
	log         zerolog.Logger
	base        middleware.HandlerFunc  // Business handler, defaults to Handle
	middlewares []middleware.Middleware // Applied in the order they were added
	handler     middleware.HandlerFunc  // middleware(middleware(...(base))), built in Serve

	listener net.Listener
	wg       sync.WaitGroup // Tracks live connections for graceful shutdown
	shutdown atomic.Bool    // Set during shutdown to suppress the Accept error

	reg           registry.Registry // nil when discovery is not in use
	advertiseAddr string            // Address registered in etcd (e.g. "127.0.0.1:4000")
	// Different from the listen address (":4000") because clients need a routable IP
	weight int

	metrics *Metrics // nil when metrics are not in use

	lines       bool // Serve the newline-delimited variant instead
	lineHandler func(string) string
}

// Option configures a Server at construction.
type Option func(*Server)

// WithLogger routes server logs through log instead of discarding them.
func WithLogger(log zerolog.Logger) Option {
	return func(svr *Server) { svr.log = log }
}

// WithHandler replaces the default business handler. The server core never
// inspects requests itself, so any HandlerFunc slots in.
func WithHandler(h middleware.HandlerFunc) Option {
	return func(svr *Server) { svr.base = h }
}

// WithRegistry makes Serve announce the server under advertiseAddr and
// Shutdown withdraw it.
func WithRegistry(reg registry.Registry, advertiseAddr string, weight int) Option {
	return func(svr *Server) {
		svr.reg = reg
		svr.advertiseAddr = advertiseAddr
		svr.weight = weight
	}
}

// WithMetrics attaches Prometheus instruments.
func WithMetrics(m *Metrics) Option {
	return func(svr *Server) { svr.metrics = m }
}

// WithLines switches the server to the newline-delimited variant: a
// conversational loop that answers each line with its reverse.
func WithLines() Option {
	return func(svr *Server) { svr.lines = true }
}

// NewServer builds a server with the default echo/jumble handler.
func NewServer(opts ...Option) *Server {
	svr := &Server{
		log:         zerolog.Nop(),
		base:        Handle,
		weight:      1,
		lineHandler: lines.Reverse,
	}
	for _, opt := range opts {
		opt(svr)
	}
	return svr
}

// Use appends a middleware. Must be called before Serve; the chain is built
// once at startup, not per exchange.
func (svr *Server) Use(mw middleware.Middleware) {
	svr.middlewares = append(svr.middlewares, mw)
}

// Serve listens on the given address, optionally registers with the
// registry, and accepts connections until Shutdown. It returns nil after a
// clean shutdown.
func (svr *Server) Serve(network, address string) error {
	listener, err := net.Listen(network, address)
	if err != nil {
		return err
	}
	svr.listener = listener

	// Chain(A, B)(handler) → A(B(handler)); execution order A → B → handler
	svr.handler = middleware.Chain(svr.middlewares...)(svr.base)

	if svr.reg != nil {
		inst := registry.ServiceInstance{
			Addr:    svr.advertiseAddr,
			Weight:  svr.weight,
			Version: serverVersion,
		}
		if err := svr.reg.Register(registry.ServiceName, inst, registrationTTL); err != nil {
			listener.Close()
			return err
		}
		svr.log.Info().Str("advertise", svr.advertiseAddr).Msg("registered with registry")
	}

	svr.log.Info().
		Str("addr", listener.Addr().String()).
		Bool("lines", svr.lines).
		Msg("server listening")

	for {
		conn, err := listener.Accept()
		if err != nil {
			// During shutdown, listener.Close() surfaces here as an error.
			// The flag tells an intentional close from a real one.
			if svr.shutdown.Load() {
				return nil
			}
			return err
		}
		if svr.lines {
			go svr.handleLinesConn(conn)
		} else {
			go svr.handleConn(conn)
		}
	}
}

// handleConn runs one complete exchange and closes the connection.
func (svr *Server) handleConn(conn net.Conn) {
	svr.wg.Add(1)
	defer svr.wg.Done()
	svr.metrics.connOpened()
	defer svr.metrics.connClosed()

	tr := transport.New(conn)
	defer tr.Close()
	remote := tr.RemoteAddr().String()

	req, err := tr.ReceiveRequest()
	if err != nil {
		if errors.Is(err, io.EOF) {
			// Peer connected and left without sending a frame
			svr.log.Debug().Str("remote", remote).Msg("closed before request")
			return
		}
		svr.metrics.badFrame()
		svr.log.Warn().Err(err).Str("remote", remote).Msg("bad request frame")
		return
	}

	start := time.Now()
	resp, err := svr.handler(context.Background(), req)
	if err != nil {
		svr.metrics.exchange(req.Type, "error", time.Since(start))
		svr.log.Error().Err(err).Stringer("type", req.Type).Str("remote", remote).Msg("exchange failed")
		return
	}

	n, err := tr.SendResponse(resp)
	if err != nil {
		svr.metrics.exchange(req.Type, "error", time.Since(start))
		svr.log.Warn().Err(err).Str("remote", remote).Msg("failed to send response")
		return
	}

	svr.metrics.exchange(req.Type, "ok", time.Since(start))
	svr.log.Debug().
		Stringer("type", req.Type).
		Int("bytes", n).
		Dur("duration", time.Since(start)).
		Str("remote", remote).
		Msg("sent response")
}

// handleLinesConn answers newline-delimited messages until the peer leaves.
// Unlike the binary protocol, a lines connection is conversational.
func (svr *Server) handleLinesConn(conn net.Conn) {
	svr.wg.Add(1)
	defer svr.wg.Done()
	svr.metrics.connOpened()
	defer svr.metrics.connClosed()
	defer conn.Close()

	c := lines.NewCodec(conn)
	remote := conn.RemoteAddr().String()
	for {
		msg, err := c.ReadMessage()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				svr.log.Warn().Err(err).Str("remote", remote).Msg("bad line")
			}
			return
		}
		if err := c.SendMessage(svr.lineHandler(msg)); err != nil {
			svr.log.Warn().Err(err).Str("remote", remote).Msg("failed to send line")
			return
		}
	}
}

// Shutdown stops the server:
//  1. Deregister so clients stop routing new exchanges here
//  2. Set the shutdown flag, then close the listener
//  3. Wait for live connections to drain, bounded by timeout
//
// Lines connections are conversational and drain only when their peers
// leave; the timeout caps how long they can hold shutdown up.
func (svr *Server) Shutdown(timeout time.Duration) error {
	if svr.reg != nil {
		if err := svr.reg.Deregister(registry.ServiceName, svr.advertiseAddr); err != nil {
			svr.log.Warn().Err(err).Msg("failed to deregister")
		}
	}

	// Flag first: closing the listener fires the Accept error immediately,
	// and Serve must already see the flag by then.
	svr.shutdown.Store(true)
	if svr.listener != nil {
		svr.listener.Close()
	}

	done := make(chan struct{})
	go func() {
		svr.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		svr.log.Info().Msg("server stopped")
		return nil
	case <-time.After(timeout):
		return errors.New("server: timeout waiting for in-flight exchanges")
	}
}
