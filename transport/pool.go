// Package transport also provides DialPool, a pool of pre-dialed connections.
//
// Connections here are one-shot: the server closes after a single exchange,
// so there is nothing to return after use. What the pool buys is latency:
// the TCP handshake happens ahead of time, and Get hands out a connection
// that is already established. Every Get triggers a background dial to
// replace the connection it took.
//
// Pool design: a buffered channel as the idle set. Buffered channels are
// concurrency-safe, and FIFO order comes for free.
package transport

import (
	"errors"
	"sync"
)

// ErrPoolClosed is returned by Get after Close.
var ErrPoolClosed = errors.New("transport: dial pool is closed")

// DialPool keeps up to size established connections to a single address.
type DialPool struct {
	addr    string
	factory func() (*Transport, error) // Dial function, swappable in tests
	idle    chan *Transport

	mu     sync.Mutex // Guards closed and sends into idle
	closed bool
}

// NewDialPool creates a pool of at most size idle connections to addr.
// The pool starts empty; call Warm to pre-dial, or let Get fill it as a
// side effect of use.
func NewDialPool(addr string, size int) *DialPool {
	p := &DialPool{
		addr: addr,
		idle: make(chan *Transport, size),
	}
	p.factory = func() (*Transport, error) { return Dial(addr) }
	return p
}

// Warm dials until the pool holds its full size of idle connections.
// The first dial error aborts and is returned; connections established
// before the failure stay in the pool.
func (p *DialPool) Warm() error {
	for len(p.idle) < cap(p.idle) {
		t, err := p.factory()
		if err != nil {
			return err
		}
		if !p.put(t) {
			t.Close()
			return nil
		}
	}
	return nil
}

// Get returns an established connection, dialing fresh if the pool is empty.
// Taking an idle connection kicks off a background dial to replace it.
//
// An idle connection can go stale if the server restarts while it waits.
// That surfaces as an error on first use of the returned Transport.
func (p *DialPool) Get() (*Transport, error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, ErrPoolClosed
	}
	p.mu.Unlock()

	select {
	case t := <-p.idle:
		go p.refill()
		return t, nil
	default:
		return p.factory()
	}
}

// Addr returns the address the pool dials.
func (p *DialPool) Addr() string {
	return p.addr
}

// Close closes every idle connection. Outstanding connections handed out by
// Get are unaffected; their owners close them after the exchange.
func (p *DialPool) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	for {
		select {
		case t := <-p.idle:
			t.Close()
		default:
			return nil
		}
	}
}

func (p *DialPool) refill() {
	t, err := p.factory()
	if err != nil {
		return
	}
	if !p.put(t) {
		t.Close()
	}
}

// put offers a connection to the idle set. It reports false when the pool is
// closed or already full. Sending under the mutex keeps Close from racing a
// refill and orphaning a connection in the channel.
func (p *DialPool) put(t *Transport) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return false
	}
	select {
	case p.idle <- t:
		return true
	default:
		return false
	}
}
