// Package transport provides the blocking connection layer shared by the
// client and the server.
//
// A Transport wraps one TCP connection for exactly one exchange:
//
//	client ──EncodeRequest──→ conn ──DecodeRequest──→ server
//	client ←─DecodeResponse── conn ←─EncodeResponse── server
//
// There is no sequencing and no response routing. The peer that sent the
// request is the only reader of the connection, so the next frame on the wire
// is always the answer to the request just sent.
package transport

import (
	"bufio"
	"net"
	"time"

	"mini-echo/message"
	"mini-echo/protocol"
)

// Transport buffers both directions of a single connection.
//
// A Transport is not safe for concurrent use. The protocol carries one
// request and one response per connection, so only one goroutine ever
// touches each side of the stream.
type Transport struct {
	conn net.Conn
	r    *bufio.Reader
	w    *bufio.Writer
}

// New wraps an established connection. Both ends use the same wrapper: the
// client sends requests and receives responses, the server does the reverse.
func New(conn net.Conn) *Transport {
	return &Transport{
		conn: conn,
		r:    bufio.NewReader(conn),
		w:    bufio.NewWriter(conn),
	}
}

// Dial connects to addr over TCP and wraps the connection.
func Dial(addr string) (*Transport, error) {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, err
	}
	return New(conn), nil
}

// DialTimeout is Dial with a connect timeout.
func DialTimeout(addr string, timeout time.Duration) (*Transport, error) {
	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return nil, err
	}
	return New(conn), nil
}

// SendRequest writes one request frame and flushes it to the wire.
// It returns the number of frame bytes written.
func (t *Transport) SendRequest(req *message.Request) (int, error) {
	n, err := protocol.EncodeRequest(t.w, req)
	if err != nil {
		return n, err
	}
	return n, t.w.Flush()
}

// ReceiveRequest blocks until a full request frame arrives.
func (t *Transport) ReceiveRequest() (*message.Request, error) {
	return protocol.DecodeRequest(t.r)
}

// SendResponse writes one response frame and flushes it to the wire.
// It returns the number of frame bytes written.
func (t *Transport) SendResponse(resp *message.Response) (int, error) {
	n, err := protocol.EncodeResponse(t.w, resp)
	if err != nil {
		return n, err
	}
	return n, t.w.Flush()
}

// ReceiveResponse blocks until a full response frame arrives.
func (t *Transport) ReceiveResponse() (*message.Response, error) {
	return protocol.DecodeResponse(t.r)
}

// RemoteAddr returns the address of the peer.
func (t *Transport) RemoteAddr() net.Addr {
	return t.conn.RemoteAddr()
}

// Close closes the underlying connection. Buffered but unflushed data is
// discarded.
func (t *Transport) Close() error {
	return t.conn.Close()
}
