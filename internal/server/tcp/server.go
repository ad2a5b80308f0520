package tcp

import (
	"context"
	"errors"
	"net"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/xumenger/FSM-HTTPD/config"
	"github.com/xumenger/FSM-HTTPD/internal/timer"
)

type OnConn func(conn net.Conn)

type listener interface {
	net.Listener
	SetDeadline(t time.Time) error
}

type Server struct {
	l    listener
	wg   *sync.WaitGroup
	stop *atomic.Bool
}

func NewServer(l listener) *Server {
	return &Server{
		l:    l,
		wg:   new(sync.WaitGroup),
		stop: new(atomic.Bool),
	}
}

// Listen binds a TCP socket to the address.
func Listen(ctx context.Context, cfg config.NET, addr string) (*Server, error) {
	lc := net.ListenConfig{
		Control: control(cfg.ReusePort),
	}

	l, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}

	return NewServer(l.(*net.TCPListener)), nil
}

func (s *Server) Addr() net.Addr {
	return s.l.Addr()
}

// Serve accepts connections until either the server is stopped, the context is done or an
// error occurs. Every connection is closed after the callback returns. In the cfg.Once mode
// exactly one connection is accepted and served in place, after that Serve returns.
func (s *Server) Serve(ctx context.Context, cfg config.NET, cb OnConn) error {
	for !s.stop.Load() && ctx.Err() == nil {
		err := s.l.SetDeadline(timer.Deadline(cfg.AcceptLoopInterruptPeriod))
		if err != nil {
			return err
		}

		conn, err := s.l.Accept()
		if err != nil {
			if errors.Is(err, os.ErrDeadlineExceeded) {
				continue
			}

			if s.stop.Load() {
				return nil
			}

			return err
		}

		if cfg.Once {
			handle(conn, cb)
			return nil
		}

		s.wg.Add(1)
		go func(conn net.Conn) {
			handle(conn, cb)
			s.wg.Done()
		}(conn)
	}

	return nil
}

// Stop makes the accept loop quit at the next interruption.
func (s *Server) Stop() {
	s.stop.Store(true)
}

func (s *Server) Close() error {
	return s.l.Close()
}

// Wait blocks until all the spawned connection handlers are done.
func (s *Server) Wait() {
	s.wg.Wait()
}

func handle(conn net.Conn, cb OnConn) {
	cb(conn)
	_ = conn.Close()
}
