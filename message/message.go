// Package message defines the typed messages exchanged between client and server.
//
// A Request is a closed set of variants picked by a one-byte discriminant on
// the wire; a Response carries a single string. Both are plain values: built in
// memory, serialized once per send by the protocol package, decoded once per
// receive, with no identity or state beyond a single exchange.
package message

// RequestType is the one-byte discriminant identifying the Request variant.
// The set is closed; the protocol layer rejects any other value on decode.
type RequestType byte

const (
	// TypeEcho asks the server to echo the message back inside its reply template.
	TypeEcho RequestType = 1
	// TypeJumble asks the server to permute the message characters Amount times.
	TypeJumble RequestType = 2
)

// String returns the lowercase variant name for logs.
func (t RequestType) String() string {
	switch t {
	case TypeEcho:
		return "echo"
	case TypeJumble:
		return "jumble"
	default:
		return "unknown"
	}
}

// Request is the client → server message.
//
//   - TypeEcho:   Message is set; Amount is unused.
//   - TypeJumble: Message is set; Amount is the number of swap iterations.
type Request struct {
	Type    RequestType
	Message string
	Amount  uint16
}

// NewEcho builds an Echo request carrying the given message.
func NewEcho(message string) *Request {
	return &Request{Type: TypeEcho, Message: message}
}

// NewJumble builds a Jumble request carrying the message and swap amount.
func NewJumble(message string, amount uint16) *Request {
	return &Request{Type: TypeJumble, Message: message, Amount: amount}
}

// Response is the server → client message. The wire format gives it no
// discriminant byte; a response is always exactly one string.
type Response struct {
	Message string
}

// NewResponse builds a response carrying the given message.
func NewResponse(message string) *Response {
	return &Response{Message: message}
}
