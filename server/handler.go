package server

import (
	"context"
	"fmt"

	"mini-echo/message"
)

// echoFormat is the reply template for echo requests.
const echoFormat = "'%s' from the other side!"

// Handle is the default business handler. Echo wraps the message in the
// reply template; jumble returns the permuted message. The server core never
// reaches the default branch (the decoder rejects unknown request types),
// but custom callers of Handle might.
func Handle(ctx context.Context, req *message.Request) (*message.Response, error) {
	switch req.Type {
	case message.TypeEcho:
		return message.NewResponse(Echo(req.Message)), nil
	case message.TypeJumble:
		return message.NewResponse(Jumble(req.Message, req.Amount)), nil
	default:
		return nil, fmt.Errorf("server: no handler for request type %d", byte(req.Type))
	}
}

// Echo wraps msg in the reply template.
func Echo(msg string) string {
	return fmt.Sprintf(echoFormat, msg)
}

// Jumble shuffles msg by swapping the first rune with the rune at position
// i % len(msg) for every i from 1 through amount:
//
//	Jumble("Hello", 3) → "lHelo"
//
// Runes swap as whole units, so multi-byte characters never tear. An empty
// message or a zero amount comes back unchanged.
func Jumble(msg string, amount uint16) string {
	runes := []rune(msg)
	if len(runes) == 0 || amount == 0 {
		return msg
	}
	for i := 1; i <= int(amount); i++ {
		j := i % len(runes)
		runes[0], runes[j] = runes[j], runes[0]
	}
	return string(runes)
}
