package httpd

import (
	"context"
	"log/slog"
	"net"
	"sync"

	"github.com/google/uuid"
	"github.com/xumenger/FSM-HTTPD/config"
	"github.com/xumenger/FSM-HTTPD/http"
	"github.com/xumenger/FSM-HTTPD/internal/address"
	"github.com/xumenger/FSM-HTTPD/internal/parser"
	"github.com/xumenger/FSM-HTTPD/internal/parser/http1"
	httpserver "github.com/xumenger/FSM-HTTPD/internal/server/http"
	"github.com/xumenger/FSM-HTTPD/internal/server/tcp"
	"github.com/xumenger/FSM-HTTPD/internal/timer"
	"github.com/xumenger/FSM-HTTPD/kv"
)

// App binds the listener and serves connections, each of them carrying exactly one request.
type App struct {
	addr     address.Address
	cfg      *config.Config
	log      *slog.Logger
	hooks    hooks
	sessions sync.Pool
	mu       sync.Mutex
	server   *tcp.Server
}

// New returns a new App instance.
func New(addr address.Address) *App {
	return &App{
		addr: addr,
		cfg:  config.Default(),
		log:  slog.Default(),
	}
}

// Tune replaces default config.
func (a *App) Tune(cfg *config.Config) *App {
	a.cfg = cfg
	return a
}

// Logger replaces the default logger.
func (a *App) Logger(log *slog.Logger) *App {
	a.log = log
	return a
}

// NotifyOnStart calls the callback at the moment the listener is bound, passing the actual
// address it listens at.
func (a *App) NotifyOnStart(cb func(addr net.Addr)) *App {
	a.hooks.OnStart = cb
	return a
}

// NotifyOnStop calls the callback at the moment the listener is closed and all the
// connections are served.
func (a *App) NotifyOnStop(cb func()) *App {
	a.hooks.OnStop = cb
	return a
}

// Serve binds the listener and serves connections until the context is done, Stop is called
// or, in the NET.Once mode, the first connection is served.
func (a *App) Serve(ctx context.Context) error {
	if err := a.cfg.Validate(); err != nil {
		return err
	}

	server, err := tcp.Listen(ctx, a.cfg.NET, a.addr.String())
	if err != nil {
		return err
	}

	a.mu.Lock()
	a.server = server
	a.mu.Unlock()

	a.log.Info("listening", "addr", server.Addr().String(), "once", a.cfg.NET.Once)
	if a.hooks.OnStart != nil {
		a.hooks.OnStart(server.Addr())
	}

	err = server.Serve(ctx, a.cfg.NET, a.onConn)
	server.Wait()
	_ = server.Close()

	if a.hooks.OnStop != nil {
		a.hooks.OnStop()
	}

	return err
}

// Stop makes the server stop accepting new connections. The call isn't blocking, the ones
// already accepted are served till the end.
func (a *App) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.server != nil {
		a.server.Stop()
	}
}

func (a *App) onConn(conn net.Conn) {
	log := a.log.With("session", uuid.NewString(), "remote", conn.RemoteAddr().String())
	log.Info("accepted connection")

	session := a.session(log)
	session.Request().Remote = conn.RemoteAddr()
	defer a.release(session)

	deadline := timer.Deadline(a.cfg.NET.SessionTimeout)
	client := tcp.NewClient(conn, a.cfg.NET.ReadTimeout, deadline)
	_, _ = httpserver.NewServer(log).Run(client, session)
}

func (a *App) session(log *slog.Logger) parser.RequestsParser {
	if session, ok := a.sessions.Get().(*http1.Session); ok {
		session.SetLogger(log)
		return session
	}

	return http1.NewSession(a.cfg, http.NewRequest(kv.NewPrealloc(8), nil), log)
}

func (a *App) release(session parser.RequestsParser) {
	session.Reset()
	a.sessions.Put(session)
}

type hooks struct {
	OnStart func(addr net.Addr)
	OnStop  func()
}
