package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	httpd "github.com/xumenger/FSM-HTTPD"
	"github.com/xumenger/FSM-HTTPD/config"
	"github.com/xumenger/FSM-HTTPD/internal/address"
)

func main() {
	if err := run(os.Args[0], os.Args[1:], os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(program string, args []string, stderr io.Writer) error {
	flags := flag.NewFlagSet(program, flag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.Usage = func() {
		fmt.Fprintf(stderr, "usage: %s [flags] [ip port | ip:port]\n", filepath.Base(program))
		flags.PrintDefaults()
	}

	configPath := flags.String("config", "", "path to a JSON config file")
	logLevel := flags.String("log-level", "", "overrides Log.Level of the config")
	logFormat := flags.String("log-format", "", "overrides Log.Format of the config")
	once := flags.Bool("once", true, "serve a single connection and exit")

	if err := flags.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}

	if len(*logLevel) > 0 {
		cfg.Log.Level = *logLevel
	}
	if len(*logFormat) > 0 {
		cfg.Log.Format = *logFormat
	}
	cfg.NET.Once = *once

	if err = cfg.Validate(); err != nil {
		return err
	}

	addr, err := parseAddr(flags.Args())
	if err != nil {
		flags.Usage()
		return err
	}

	log, err := newLogger(cfg.Log, stderr)
	if err != nil {
		return err
	}

	log.Info("starting", "program", filepath.Base(program), "ip", addr.Host, "port", addr.Port)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return httpd.New(addr).
		Tune(cfg).
		Logger(log).
		Serve(ctx)
}

func loadConfig(path string) (*config.Config, error) {
	if len(path) == 0 {
		return config.Default(), nil
	}

	return config.Load(path)
}

func parseAddr(args []string) (address.Address, error) {
	switch len(args) {
	case 0:
		return address.Default(), nil
	case 1:
		return address.Parse(args[0])
	case 2:
		return address.FromParts(args[0], args[1])
	default:
		return address.Address{}, fmt.Errorf("expected both ip and port, got %d arguments", len(args))
	}
}

func newLogger(cfg config.Log, w io.Writer) (*slog.Logger, error) {
	level, err := cfg.SlogLevel()
	if err != nil {
		return nil, err
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}

	return slog.New(slog.NewTextHandler(w, opts)), nil
}
