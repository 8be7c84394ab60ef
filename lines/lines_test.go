package lines

import (
	"bytes"
	"io"
	"strings"
	"testing"
)

func TestRoundtrip(t *testing.T) {
	var buf bytes.Buffer
	c := NewCodec(&buf)

	if err := c.SendMessage("Hello"); err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}
	if got := buf.String(); got != "Hello\n" {
		t.Fatalf("wire bytes mismatch: %q", got)
	}

	msg, err := c.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage failed: %v", err)
	}
	if msg != "Hello" {
		t.Fatalf("got %q, want %q", msg, "Hello")
	}
}

func TestReadTrimsCRLF(t *testing.T) {
	c := NewCodec(readWriter{strings.NewReader("Hello\r\n")})

	msg, err := c.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage failed: %v", err)
	}
	if msg != "Hello" {
		t.Fatalf("got %q, want %q", msg, "Hello")
	}
}

func TestReadCleanEOF(t *testing.T) {
	c := NewCodec(readWriter{strings.NewReader("")})

	if _, err := c.ReadMessage(); err != io.EOF {
		t.Fatalf("want io.EOF, got %v", err)
	}
}

func TestReadTruncatedLine(t *testing.T) {
	// Stream ends before the newline
	c := NewCodec(readWriter{strings.NewReader("Hel")})

	if _, err := c.ReadMessage(); err != io.ErrUnexpectedEOF {
		t.Fatalf("want io.ErrUnexpectedEOF, got %v", err)
	}
}

func TestReverse(t *testing.T) {
	cases := []struct{ in, want string }{
		{"", ""},
		{"a", "a"},
		{"Hello", "olleH"},
		{"héllo", "olléh"},
		{"日本語", "語本日"},
	}
	for _, tc := range cases {
		if got := Reverse(tc.in); got != tc.want {
			t.Errorf("Reverse(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

// readWriter adapts a Reader into the ReadWriter NewCodec wants; writes are
// never exercised in the tests that use it.
type readWriter struct{ io.Reader }

func (readWriter) Write(p []byte) (int, error) { return len(p), nil }
