package config

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/xumenger/FSM-HTTPD/http/method"
	"github.com/xumenger/FSM-HTTPD/http/proto"
)

type (
	NET struct {
		// ReadBufferSize is the capacity of the per-connection buffer. It's never grown: the whole
		// request head must fit into it, otherwise the connection is failed with an overflow.
		ReadBufferSize int
		// ReadTimeout is applied to every single read from the socket.
		ReadTimeout time.Duration
		// SessionTimeout is the time budget for the whole request head. Once exceeded, the
		// session is aborted with status.ErrBudgetExceeded.
		SessionTimeout time.Duration
		// AcceptLoopInterruptPeriod controls how often will the Accept() call be interrupted
		// in order to check whether it's time to stop. Defaults to 5 seconds.
		AcceptLoopInterruptPeriod time.Duration
		// ReusePort sets SO_REUSEADDR and SO_REUSEPORT on the listening socket, where supported.
		ReusePort bool
		// Once makes the server accept exactly a single connection, serve it and stop.
		Once bool
	}

	Request struct {
		// Method is the only request method accepted. Compared case-insensitively.
		Method string
		// Proto is the only protocol version accepted. Compared case-insensitively.
		Proto string
		// Schemes are prefixes stripped from targets in absolute-form, e.g. "http://".
		// Compared case-insensitively.
		Schemes []string
	}

	Log struct {
		// Level is one of debug, info, warn or error.
		Level string
		// Format is either text or json.
		Format string
	}
)

// Config holds settings used across the server, mainly limitations and the accepted grammar.
//
// You must ALWAYS modify defaults (returned via Default()) and NEVER try to initialize the
// config manually, because most likely this will result in ambiguous errors.
type Config struct {
	NET     NET
	Request Request
	Log     Log
}

// Default returns default config.
func Default() *Config {
	return &Config{
		NET: NET{
			ReadBufferSize:            4096,
			ReadTimeout:               90 * time.Second,
			SessionTimeout:            30 * time.Second,
			AcceptLoopInterruptPeriod: 5 * time.Second,
			ReusePort:                 true,
			Once:                      true,
		},
		Request: Request{
			Method:  "GET",
			Proto:   "HTTP/1.1",
			Schemes: []string{"http://", "https://"},
		},
		Log: Log{
			Level:  "info",
			Format: "text",
		},
	}
}

// Validate reports the first setting that can't be used.
func (c *Config) Validate() error {
	switch {
	case c.NET.ReadBufferSize <= 0:
		return errors.New("config: NET.ReadBufferSize must be positive")
	case c.NET.ReadTimeout <= 0 || c.NET.SessionTimeout <= 0 || c.NET.AcceptLoopInterruptPeriod <= 0:
		return errors.New("config: NET timeouts must be positive")
	case method.Parse(c.Request.Method) == method.Unknown:
		return fmt.Errorf("config: unknown request method: %q", c.Request.Method)
	case proto.FromString(c.Request.Proto) == proto.Unknown:
		return fmt.Errorf("config: unknown protocol version: %q", c.Request.Proto)
	}

	for _, scheme := range c.Request.Schemes {
		if len(scheme) < len("x://") || scheme[len(scheme)-3:] != "://" {
			return fmt.Errorf("config: bad scheme prefix: %q", scheme)
		}
	}

	if _, err := c.Log.SlogLevel(); err != nil {
		return err
	}

	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("config: unknown log format: %q", c.Log.Format)
	}

	return nil
}

// SlogLevel converts the textual level into the slog one.
func (l Log) SlogLevel() (level slog.Level, err error) {
	if err = level.UnmarshalText([]byte(l.Level)); err != nil {
		return level, fmt.Errorf("config: bad log level: %w", err)
	}

	return level, nil
}
