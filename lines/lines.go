// Package lines implements the newline-delimited variant of the protocol.
//
// Instead of length-prefixed binary frames, each message is a single UTF-8
// line terminated by '\n'. The trade-off is the obvious one: the framing is
// human-readable and telnet-friendly, but messages cannot contain newlines.
//
// A lines connection is conversational: the client may send any number of
// lines and receives one reply per line, until either side closes.
package lines

import (
	"bufio"
	"io"
	"strings"
)

// Codec reads and writes newline-delimited messages over a stream.
// Like the binary transport, a Codec is not safe for concurrent use.
type Codec struct {
	r *bufio.Reader
	w *bufio.Writer
}

// NewCodec wraps a duplex stream.
func NewCodec(rw io.ReadWriter) *Codec {
	return &Codec{
		r: bufio.NewReader(rw),
		w: bufio.NewWriter(rw),
	}
}

// SendMessage writes msg followed by '\n' and flushes. msg must not contain
// a newline; what the peer would read back is two messages.
func (c *Codec) SendMessage(msg string) error {
	if _, err := c.w.WriteString(msg); err != nil {
		return err
	}
	if err := c.w.WriteByte('\n'); err != nil {
		return err
	}
	return c.w.Flush()
}

// ReadMessage blocks for the next line and returns it without the trailing
// newline (CRLF from telnet-style peers is trimmed too). A stream that ends
// cleanly between lines yields io.EOF; one that ends mid-line yields
// io.ErrUnexpectedEOF.
func (c *Codec) ReadMessage() (string, error) {
	line, err := c.r.ReadString('\n')
	if err != nil {
		if err == io.EOF && len(line) > 0 {
			return "", io.ErrUnexpectedEOF
		}
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// Reverse returns s with its runes in reverse order.
func Reverse(s string) string {
	runes := []rune(s)
	for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
		runes[i], runes[j] = runes[j], runes[i]
	}
	return string(runes)
}
