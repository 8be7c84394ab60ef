// echo-server serves echo and jumble exchanges over TCP.
package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	cli "github.com/urfave/cli/v2"

	"mini-echo/middleware"
	"mini-echo/protocol"
	"mini-echo/registry"
	"mini-echo/server"
)

var app = &cli.App{
	Name:  "echo-server",
	Usage: "serve echo and jumble exchanges over TCP",

	Flags: []cli.Flag{
		&cli.StringFlag{Name: "addr", Value: protocol.DefaultServerAddr, Usage: "tcp address to listen on"},
		&cli.StringFlag{Name: "config", Usage: "path to a TOML config file"},
		&cli.StringFlag{Name: "log-level", Value: "info", Usage: "log level (trace, debug, info, warn, error)"},
		&cli.Float64Flag{Name: "rate-limit", Usage: "max exchanges per second, 0 disables limiting"},
		&cli.IntFlag{Name: "rate-burst", Value: 1, Usage: "rate limiter burst size"},
		&cli.DurationFlag{Name: "handler-timeout", Usage: "per-exchange handler deadline, 0 disables"},
		&cli.StringSliceFlag{Name: "registry", Usage: "etcd endpoints to register with"},
		&cli.StringFlag{Name: "advertise", Usage: "address to advertise in the registry (defaults to --addr)"},
		&cli.IntFlag{Name: "weight", Value: 1, Usage: "load balancing weight advertised in the registry"},
		&cli.StringFlag{Name: "metrics-addr", Usage: "if set, serve Prometheus metrics on this address"},
		&cli.BoolFlag{Name: "lines", Usage: "speak the newline-delimited variant instead of framed messages"},
	},

	Action: run,
}

func main() {
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "echo-server: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx *cli.Context) error {
	cfg := defaultConfig()
	if path := ctx.String("config"); path != "" {
		if err := applyFile(&cfg, path); err != nil {
			return err
		}
	}
	applyFlags(&cfg, ctx)
	if cfg.Advertise == "" {
		cfg.Advertise = cfg.Addr
	}

	log, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}

	opts := []server.Option{server.WithLogger(log)}

	if len(cfg.Registry) > 0 {
		reg, err := registry.NewEtcdRegistry(cfg.Registry)
		if err != nil {
			return fmt.Errorf("connect registry: %w", err)
		}
		defer reg.Close()
		opts = append(opts, server.WithRegistry(reg, cfg.Advertise, cfg.Weight))
	}

	if cfg.MetricsAddr != "" {
		metrics := server.NewMetrics()
		opts = append(opts, server.WithMetrics(metrics))

		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler())
		go func() {
			log.Info().Str("addr", cfg.MetricsAddr).Msg("serving metrics")
			if err := http.ListenAndServe(cfg.MetricsAddr, mux); err != nil {
				log.Error().Err(err).Msg("metrics endpoint failed")
			}
		}()
	}

	if cfg.Lines {
		opts = append(opts, server.WithLines())
	}

	svr := server.NewServer(opts...)
	svr.Use(middleware.Logging(log))
	if cfg.RateLimit > 0 {
		svr.Use(middleware.RateLimit(cfg.RateLimit, cfg.RateBurst))
	}
	if cfg.HandlerTimeout > 0 {
		svr.Use(middleware.Timeout(cfg.HandlerTimeout))
	}

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, os.Interrupt, syscall.SIGTERM)
	go func() {
		s := <-sigc
		log.Info().Str("signal", s.String()).Msg("shutting down")
		if err := svr.Shutdown(10 * time.Second); err != nil {
			log.Error().Err(err).Msg("shutdown")
			os.Exit(1)
		}
	}()

	return svr.Serve("tcp", cfg.Addr)
}

// applyFlags overlays flags the user actually set onto cfg, so flags beat
// the config file and the file beats defaults.
func applyFlags(cfg *Config, ctx *cli.Context) {
	if ctx.IsSet("addr") {
		cfg.Addr = ctx.String("addr")
	}
	if ctx.IsSet("log-level") {
		cfg.LogLevel = ctx.String("log-level")
	}
	if ctx.IsSet("rate-limit") {
		cfg.RateLimit = ctx.Float64("rate-limit")
	}
	if ctx.IsSet("rate-burst") {
		cfg.RateBurst = ctx.Int("rate-burst")
	}
	if ctx.IsSet("handler-timeout") {
		cfg.HandlerTimeout = ctx.Duration("handler-timeout")
	}
	if ctx.IsSet("registry") {
		cfg.Registry = ctx.StringSlice("registry")
	}
	if ctx.IsSet("advertise") {
		cfg.Advertise = ctx.String("advertise")
	}
	if ctx.IsSet("weight") {
		cfg.Weight = ctx.Int("weight")
	}
	if ctx.IsSet("metrics-addr") {
		cfg.MetricsAddr = ctx.String("metrics-addr")
	}
	if ctx.IsSet("lines") {
		cfg.Lines = ctx.Bool("lines")
	}
}

func newLogger(level string) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Logger{}, fmt.Errorf("parse log level %q: %w", level, err)
	}
	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	}
	return zerolog.New(output).With().Timestamp().Str("app", "echo-server").Logger().Level(lvl), nil
}
