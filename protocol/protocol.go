// Package protocol implements the binary wire format for mini-echo messages.
//
// Every field is length-prefixed so the receiver always knows exactly how many
// bytes to pull next: no delimiter scanning, no guessing when a message
// arrives fragmented across TCP segments. All integers are big-endian
// (network byte order).
//
// Request frame:
//
//	0        1         3           3+L     (Jumble only)
//	┌────────┬─────────┬───────────┬──────────────┬────────┐
//	│  type  │ length L│  message  │ amt len (=2) │ amount │
//	│  u8    │ u16     │  L bytes  │ u16          │ u16    │
//	└────────┴─────────┴───────────┴──────────────┴────────┘
//
// Response frame:
//
//	┌─────────┬───────────┐
//	│ length L│  message  │
//	│ u16     │  L bytes  │
//	└─────────┴───────────┘
//
// type 1 = Echo (message only), type 2 = Jumble (message then amount). A
// response carries no type byte; it is always exactly one string.
package protocol

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"unicode/utf8"

	"mini-echo/message"
)

// DefaultServerAddr is where the server listens and the client dials when no
// address is configured.
const DefaultServerAddr = "127.0.0.1:4000"

const (
	// MaxMessageLen is the largest string payload the u16 length prefix can
	// describe. Longer messages are a caller error, caught before encoding.
	MaxMessageLen = math.MaxUint16

	// amountFieldLen is the on-wire size of the Jumble amount. The amount is
	// fixed-size, but it still carries a length prefix so every field on the
	// wire reads as the same (length, value) shape as the string fields.
	amountFieldLen = 2
)

// EncodeRequest writes req as one complete frame to w and returns the exact
// number of bytes written.
//
// The frame is assembled in memory and written with a single Write call, so an
// oversized message or unknown variant is rejected before any byte reaches w,
// and an I/O failure never leaves a silently half-sent frame behind.
func EncodeRequest(w io.Writer, req *message.Request) (int, error) {
	switch req.Type {
	case message.TypeEcho, message.TypeJumble:
	default:
		return 0, fmt.Errorf("%w: %d", ErrInvalidType, byte(req.Type))
	}
	if len(req.Message) > MaxMessageLen {
		return 0, fmt.Errorf("%w: message is %d bytes", ErrMessageTooLarge, len(req.Message))
	}

	// type byte + (u16 length + message bytes)
	size := 1 + 2 + len(req.Message)
	if req.Type == message.TypeJumble {
		// + (u16 amount-field length + u16 amount)
		size += 2 + amountFieldLen
	}
	buf := make([]byte, size)

	buf[0] = byte(req.Type)
	binary.BigEndian.PutUint16(buf[1:3], uint16(len(req.Message)))
	copy(buf[3:], req.Message)

	if req.Type == message.TypeJumble {
		off := 3 + len(req.Message)
		binary.BigEndian.PutUint16(buf[off:off+2], amountFieldLen)
		binary.BigEndian.PutUint16(buf[off+2:off+4], req.Amount)
	}

	return w.Write(buf)
}

// EncodeResponse writes resp as one complete frame to w and returns the exact
// number of bytes written. Same atomicity as EncodeRequest: one buffer, one
// Write.
func EncodeResponse(w io.Writer, resp *message.Response) (int, error) {
	if len(resp.Message) > MaxMessageLen {
		return 0, fmt.Errorf("%w: message is %d bytes", ErrMessageTooLarge, len(resp.Message))
	}

	buf := make([]byte, 2+len(resp.Message))
	binary.BigEndian.PutUint16(buf[0:2], uint16(len(resp.Message)))
	copy(buf[2:], resp.Message)

	return w.Write(buf)
}

// DecodeRequest reads one complete request frame from r.
//
// It blocks until every byte the frame declares has arrived; a short read
// inside a frame is never treated as end-of-message. A clean EOF before the
// discriminant byte surfaces as io.EOF (the peer closed between frames); the
// stream ending anywhere after that is ErrShortFrame.
func DecodeRequest(r io.Reader) (*message.Request, error) {
	var d [1]byte
	if _, err := io.ReadFull(r, d[:]); err != nil {
		// EOF on byte zero is a clean close, not a broken frame.
		return nil, err
	}

	switch message.RequestType(d[0]) {
	case message.TypeEcho:
		msg, err := readString(r)
		if err != nil {
			return nil, err
		}
		return message.NewEcho(msg), nil

	case message.TypeJumble:
		msg, err := readString(r)
		if err != nil {
			return nil, err
		}
		// The original protocol discarded this prefix without looking at it.
		// Validate instead: a value other than 2 means the peer and we
		// disagree about the frame layout, and nothing after this point can
		// be trusted.
		fieldLen, err := readUint16(r)
		if err != nil {
			return nil, err
		}
		if fieldLen != amountFieldLen {
			return nil, fmt.Errorf("%w: got %d, want %d", ErrAmountLength, fieldLen, amountFieldLen)
		}
		amount, err := readUint16(r)
		if err != nil {
			return nil, err
		}
		return message.NewJumble(msg, amount), nil

	default:
		return nil, fmt.Errorf("%w: %d", ErrInvalidType, d[0])
	}
}

// DecodeResponse reads one complete response frame from r. A clean EOF before
// the first length byte surfaces as io.EOF; anything later is ErrShortFrame.
func DecodeResponse(r io.Reader) (*message.Response, error) {
	var b [2]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, classify(err)
	}
	length := binary.BigEndian.Uint16(b[:])

	value, err := readBytes(r, int(length))
	if err != nil {
		return nil, err
	}
	return message.NewResponse(value), nil
}

// readUint16 reads one big-endian u16 mid-frame.
func readUint16(r io.Reader) (uint16, error) {
	var b [2]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, classify(err)
	}
	return binary.BigEndian.Uint16(b[:]), nil
}

// readString reads one (u16 length, bytes) field mid-frame and validates the
// bytes as UTF-8.
func readString(r io.Reader) (string, error) {
	length, err := readUint16(r)
	if err != nil {
		return "", err
	}
	return readBytes(r, int(length))
}

// readBytes reads exactly n bytes and validates them as UTF-8. Allocation is
// bounded by the u16 length prefix.
func readBytes(r io.Reader, n int) (string, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", classify(err)
	}
	if !utf8.Valid(buf) {
		return "", ErrInvalidUTF8
	}
	return string(buf), nil
}

// classify separates "the stream ended inside a frame" from genuine transport
// failures. io.ReadFull reports EOF (nothing read) or ErrUnexpectedEOF (some
// bytes read); mid-frame both mean the peer stopped before finishing the
// frame it had declared.
func classify(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: %v", ErrShortFrame, err)
	}
	return err
}
