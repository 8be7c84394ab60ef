package protocol

import "errors"

// Decode failures are classified so a caller can tell a peer that vanished
// mid-frame (ErrShortFrame) from a peer that sent bytes the protocol cannot
// accept (everything else). All are matchable with errors.Is. There is no
// resynchronization after any of them; the connection is done.
var (
	// ErrShortFrame reports a stream that ended before all the bytes a
	// length field had declared were available.
	ErrShortFrame = errors.New("protocol: short frame")

	// ErrInvalidType reports an unrecognized request discriminant byte.
	ErrInvalidType = errors.New("protocol: invalid request type")

	// ErrInvalidUTF8 reports a string field whose bytes decoded fine at the
	// framing level but are not valid UTF-8.
	ErrInvalidUTF8 = errors.New("protocol: invalid utf-8 in string field")

	// ErrAmountLength reports a Jumble frame whose amount-field length prefix
	// is not 2.
	ErrAmountLength = errors.New("protocol: bad amount field length")

	// ErrMessageTooLarge reports a message too long for a u16 length prefix.
	ErrMessageTooLarge = errors.New("protocol: message exceeds 65535 bytes")
)
