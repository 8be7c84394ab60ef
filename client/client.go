// Package client implements the calling side of the protocol: resolve a
// server address, dial, send one request, read one response.
//
// Address resolution has two modes. Direct mode sends every exchange to a
// fixed address. Discovery mode asks the registry for live instances and
// lets a load balancing strategy pick one per exchange, keyed by the
// request message so consistent hashing has something to hash.
package client

import (
	"errors"
	"io"
	"net"
	"time"

	"github.com/rs/zerolog"

	"mini-echo/lines"
	"mini-echo/loadbalance"
	"mini-echo/message"
	"mini-echo/protocol"
	"mini-echo/registry"
	"mini-echo/transport"
)

// ErrNoResponse means the server closed the connection without answering:
// it rejected the request or failed while handling it.
var ErrNoResponse = errors.New("client: connection closed before response")

// Client issues one-shot exchanges. Safe for concurrent use; every exchange
// runs on its own connection.
type Client struct {
	log      zerolog.Logger
	addr     string // Direct mode target
	timeout  time.Duration
	poolSize int

	cache    *registry.Cache // Discovery mode, nil otherwise
	balancer loadbalance.Balancer

	pool *transport.DialPool // Warm connections for direct mode, nil otherwise
}

// Option configures a Client at construction.
type Option func(*Client) error

// WithAddr sets the fixed target for direct mode.
func WithAddr(addr string) Option {
	return func(c *Client) error {
		c.addr = addr
		return nil
	}
}

// WithLogger routes client logs through log instead of discarding them.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) error {
		c.log = log
		return nil
	}
}

// WithDialTimeout bounds how long a single dial may take.
func WithDialTimeout(d time.Duration) Option {
	return func(c *Client) error {
		c.timeout = d
		return nil
	}
}

// WithDiscovery switches the client to discovery mode: instances come from
// reg and bal picks one per exchange. A nil bal means round-robin.
func WithDiscovery(reg registry.Registry, bal loadbalance.Balancer) Option {
	return func(c *Client) error {
		cache, err := registry.NewCache(reg, registry.ServiceName)
		if err != nil {
			return err
		}
		c.cache = cache
		if bal == nil {
			bal = &loadbalance.RoundRobinBalancer{}
		}
		c.balancer = bal
		return nil
	}
}

// WithPool keeps up to size pre-dialed connections to the direct-mode
// address. Ignored in discovery mode, where targets vary per exchange.
func WithPool(size int) Option {
	return func(c *Client) error {
		c.poolSize = size
		return nil
	}
}

// NewClient builds a client. Without options it targets the default server
// address in direct mode.
func NewClient(opts ...Option) (*Client, error) {
	c := &Client{
		log:     zerolog.Nop(),
		addr:    protocol.DefaultServerAddr,
		timeout: 3 * time.Second,
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	if c.poolSize > 0 && c.cache == nil {
		c.pool = transport.NewDialPool(c.addr, c.poolSize)
		if err := c.pool.Warm(); err != nil {
			c.log.Warn().Err(err).Msg("pool warm-up failed")
		}
	}
	return c, nil
}

// Send runs one full exchange: pick a target, dial, write the request,
// read the response. The connection is closed either way.
func (c *Client) Send(req *message.Request) (*message.Response, error) {
	addr, err := c.pick(req.Message)
	if err != nil {
		return nil, err
	}

	tr, err := c.dial(addr)
	if err != nil {
		return nil, err
	}
	defer tr.Close()

	n, err := tr.SendRequest(req)
	if err != nil {
		return nil, err
	}
	c.log.Debug().Int("bytes", n).Str("addr", addr).Stringer("type", req.Type).Msg("request sent")

	resp, err := tr.ReceiveResponse()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrNoResponse
		}
		return nil, err
	}
	return resp, nil
}

// Echo asks the server to echo msg and returns the reply.
func (c *Client) Echo(msg string) (string, error) {
	resp, err := c.Send(message.NewEcho(msg))
	if err != nil {
		return "", err
	}
	return resp.Message, nil
}

// Jumble asks the server to permute msg amount times and returns the reply.
func (c *Client) Jumble(msg string, amount uint16) (string, error) {
	resp, err := c.Send(message.NewJumble(msg, amount))
	if err != nil {
		return "", err
	}
	return resp.Message, nil
}

// SendLine runs one round of the newline-delimited variant against a lines
// server: send msg as a line, return the reply line.
func (c *Client) SendLine(msg string) (string, error) {
	addr, err := c.pick(msg)
	if err != nil {
		return "", err
	}

	conn, err := net.DialTimeout("tcp", addr, c.timeout)
	if err != nil {
		return "", err
	}
	defer conn.Close()

	codec := lines.NewCodec(conn)
	if err := codec.SendMessage(msg); err != nil {
		return "", err
	}
	reply, err := codec.ReadMessage()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return "", ErrNoResponse
		}
		return "", err
	}
	return reply, nil
}

// Close releases the warm pool, if any.
func (c *Client) Close() error {
	if c.pool != nil {
		return c.pool.Close()
	}
	return nil
}

func (c *Client) pick(key string) (string, error) {
	if c.cache == nil {
		return c.addr, nil
	}
	inst, err := c.balancer.Pick(key, c.cache.Instances())
	if err != nil {
		return "", err
	}
	c.log.Debug().Str("addr", inst.Addr).Str("balance", c.balancer.Name()).Msg("picked instance")
	return inst.Addr, nil
}

func (c *Client) dial(addr string) (*transport.Transport, error) {
	if c.pool != nil && addr == c.pool.Addr() {
		return c.pool.Get()
	}
	return transport.DialTimeout(addr, c.timeout)
}
