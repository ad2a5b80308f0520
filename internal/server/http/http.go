package http

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/xumenger/FSM-HTTPD/http/status"
	"github.com/xumenger/FSM-HTTPD/internal/parser"
	"github.com/xumenger/FSM-HTTPD/internal/server/tcp"
)

// Replies are fixed and selected by the outcome class only.
const (
	SuccessReply = "HTTP/1.1 200 OK\r\nContent-Type: text/html;\r\nContent-Length: 22\r\n\r\nI get a correct result"
	FailureReply = "HTTP/1.1 200 OK\r\nContent-Type: text/html;\r\nContent-Length: 15\r\n\r\nSomething wrong"
)

// Server drives a single connection: it reads the data right into the parser, advances it
// after every read and, as soon as the outcome is terminal, replies and closes the connection.
type Server struct {
	log *slog.Logger
}

func NewServer(log *slog.Logger) *Server {
	return &Server{log: log}
}

// Run serves the connection until the request head is parsed, the connection is closed or
// failed. The returned outcome is NeedMoreData when the head was never completed. Reply is
// written for terminal outcomes only.
func (s *Server) Run(client tcp.Client, p parser.RequestsParser) (parser.Outcome, error) {
	outcome, err := s.HandleRequest(client, p)
	s.report(p, outcome, err)

	switch {
	case outcome == parser.Accepted:
		err = s.reply(client, SuccessReply)
	case outcome.Terminal():
		if werr := s.reply(client, FailureReply); werr != nil {
			err = errors.Join(err, werr)
		}
	}

	_ = client.Close()

	return outcome, err
}

// HandleRequest reads and advances the parser until a terminal outcome is reached or the
// connection gives no more data. Buffer overflow and exceeding the time budget are reported
// as rejected requests.
func (s *Server) HandleRequest(client tcp.Client, p parser.RequestsParser) (parser.Outcome, error) {
	for {
		free := p.Free()
		if len(free) == 0 {
			return parser.Rejected, status.ErrBufferOverflow
		}

		n, err := client.Read(free)
		if n > 0 {
			if cerr := p.Commit(n); cerr != nil {
				return parser.Rejected, cerr
			}

			outcome, perr := p.Advance()
			if outcome.Terminal() {
				return outcome, perr
			}
		}

		switch {
		case err == nil:
		case errors.Is(err, status.ErrBudgetExceeded):
			return parser.Rejected, err
		case errors.Is(err, io.EOF):
			return parser.NeedMoreData, status.ErrConnectionClosed
		default:
			return parser.NeedMoreData, fmt.Errorf("reading failed: %w", err)
		}
	}
}

func (s *Server) reply(client tcp.Client, reply string) error {
	if err := client.Write([]byte(reply)); err != nil {
		s.log.Error("failed to send reply", "error", err)
		return fmt.Errorf("writing failed: %w", err)
	}

	return nil
}

func (s *Server) report(p parser.RequestsParser, outcome parser.Outcome, err error) {
	request := p.Request()

	switch outcome {
	case parser.Accepted:
		s.log.Info("request accepted",
			"method", request.Method,
			"target", request.Target,
			"host", request.Host,
			"headers", request.Headers.Len(),
		)

		for key, value := range request.Headers.Pairs() {
			s.log.Debug("request header", "key", key, "value", value)
		}
	case parser.Rejected:
		code := status.CodeOf(err)
		s.log.Warn("request rejected", "reason", err, "code", code, "status", status.Text(code))
	case parser.InternalFault:
		s.log.Error("internal fault while parsing the request", "error", err)
	default:
		if errors.Is(err, status.ErrConnectionClosed) {
			s.log.Info("remote client has closed the connection")
		} else {
			s.log.Error("connection failed", "error", err)
		}
	}
}
