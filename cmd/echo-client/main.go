// echo-client sends one message to an echo server and prints the reply.
package main

import (
	"fmt"
	"math"
	"os"
	"time"

	"github.com/rs/zerolog"
	cli "github.com/urfave/cli/v2"

	"mini-echo/client"
	"mini-echo/loadbalance"
	"mini-echo/protocol"
	"mini-echo/registry"
)

var app = &cli.App{
	Name:      "echo-client",
	Usage:     "send one message to an echo server and print the reply",
	ArgsUsage: "MESSAGE",

	Flags: []cli.Flag{
		&cli.StringFlag{Name: "addr", Value: protocol.DefaultServerAddr, Usage: "tcp address of the server"},
		&cli.UintFlag{Name: "jumble", Usage: "ask for the message jumbled this many times instead of echoed"},
		&cli.StringSliceFlag{Name: "registry", Usage: "etcd endpoints; discover servers instead of using --addr"},
		&cli.StringFlag{Name: "balance", Value: "roundrobin", Usage: "balancing strategy with --registry (roundrobin, random, hash)"},
		&cli.BoolFlag{Name: "lines", Usage: "speak the newline-delimited variant instead of framed messages"},
		&cli.StringFlag{Name: "log-level", Value: "warn", Usage: "log level (trace, debug, info, warn, error)"},
	},

	Action: run,
}

func main() {
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "echo-client: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return fmt.Errorf("expected exactly one MESSAGE argument, got %d", ctx.NArg())
	}
	msg := ctx.Args().First()

	amount := ctx.Uint("jumble")
	if amount > math.MaxUint16 {
		return fmt.Errorf("jumble amount %d out of range (max %d)", amount, math.MaxUint16)
	}

	log, err := newLogger(ctx.String("log-level"))
	if err != nil {
		return err
	}

	opts := []client.Option{
		client.WithAddr(ctx.String("addr")),
		client.WithLogger(log),
	}

	if endpoints := ctx.StringSlice("registry"); len(endpoints) > 0 {
		reg, err := registry.NewEtcdRegistry(endpoints)
		if err != nil {
			return fmt.Errorf("connect registry: %w", err)
		}
		defer reg.Close()

		bal, err := loadbalance.New(ctx.String("balance"))
		if err != nil {
			return err
		}
		opts = append(opts, client.WithDiscovery(reg, bal))
	}

	c, err := client.NewClient(opts...)
	if err != nil {
		return err
	}
	defer c.Close()

	var reply string
	switch {
	case ctx.Bool("lines"):
		reply, err = c.SendLine(msg)
	case ctx.IsSet("jumble"):
		reply, err = c.Jumble(msg, uint16(amount))
	default:
		reply, err = c.Echo(msg)
	}
	if err != nil {
		return err
	}

	fmt.Fprintln(os.Stdout, reply)
	return nil
}

// Logs go to stderr so the reply on stdout stays pipeable.
func newLogger(level string) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Logger{}, fmt.Errorf("parse log level %q: %w", level, err)
	}
	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	}
	return zerolog.New(output).With().Timestamp().Str("app", "echo-client").Logger().Level(lvl), nil
}
