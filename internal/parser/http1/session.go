package http1

import (
	"fmt"
	"log/slog"

	"github.com/xumenger/FSM-HTTPD/config"
	"github.com/xumenger/FSM-HTTPD/http"
	"github.com/xumenger/FSM-HTTPD/http/method"
	"github.com/xumenger/FSM-HTTPD/http/proto"
	"github.com/xumenger/FSM-HTTPD/http/status"
	"github.com/xumenger/FSM-HTTPD/internal/parser"
)

var _ parser.RequestsParser = new(Session)

// Session is a resumable parser of a single request head. It owns a fixed-capacity buffer
// holding everything received so far and a pair of cursors into it: checked is the first
// byte not examined yet, received is one past the last filled byte. Lines are never copied
// out of the buffer: they're served as views into it, so the buffer is never modified
// below received.
//
// The session is driven by two levels of state machines. The lower one (extractLine) cuts
// lines out of the buffer, the upper one (Advance) dispatches them to the request line or
// header interpreter, depending on the current phase.
type Session struct {
	request *http.Request
	log     *slog.Logger
	buff    []byte
	// checked <= received <= len(buff) is always held
	checked, received int
	lineStart         int
	phase             parser.Phase
	outcome           parser.Outcome
	err               error

	method  method.Method
	proto   proto.Proto
	schemes []string

	scanned, lines int
}

// NewSession returns a session in its initial state: cursors at zero, expecting the request
// line. The config must be valid.
func NewSession(cfg *config.Config, request *http.Request, log *slog.Logger) *Session {
	if log == nil {
		log = slog.Default()
	}

	return &Session{
		request: request,
		log:     log,
		buff:    make([]byte, cfg.NET.ReadBufferSize),
		phase:   parser.RequestLine,
		outcome: parser.NeedMoreData,
		method:  method.Parse(cfg.Request.Method),
		proto:   proto.FromString(cfg.Request.Proto),
		schemes: cfg.Request.Schemes,
	}
}

// Feed appends the data to the buffer. In case it doesn't fit, nothing is written and
// status.ErrBufferOverflow is returned.
func (s *Session) Feed(b []byte) error {
	if s.outcome.Terminal() {
		return parser.ErrTerminated
	}

	if len(b) > len(s.buff)-s.received {
		return status.ErrBufferOverflow
	}

	s.received += copy(s.buff[s.received:], b)
	return nil
}

// Free returns the writable tail of the buffer. It's meant to be read into directly, with
// the number of bytes read passed to Commit afterward. Empty slice means the buffer is full.
func (s *Session) Free() []byte {
	return s.buff[s.received:]
}

// Commit marks n bytes of the tail returned by Free as received.
func (s *Session) Commit(n int) error {
	if s.outcome.Terminal() {
		return parser.ErrTerminated
	}

	if n < 0 || n > len(s.buff)-s.received {
		return status.ErrBufferOverflow
	}

	s.received += n
	return nil
}

// Advance consumes all the complete lines available. NeedMoreData is returned when the data
// is exhausted in the middle of the head, any other outcome is terminal: subsequent calls
// return the same outcome and error without doing anything. Rejected outcomes come along
// with an error describing the reason.
func (s *Session) Advance() (parser.Outcome, error) {
	if s.outcome.Terminal() {
		return s.outcome, s.err
	}

	for {
		lineStatus, line := s.extractLine()
		switch lineStatus {
		case parser.LineComplete:
		case parser.LineIncomplete:
			return parser.NeedMoreData, nil
		default:
			return s.finish(parser.Rejected, status.ErrMalformedLine)
		}

		s.lines++
		s.log.Debug("line", "phase", s.phase, "length", len(line))

		switch s.phase {
		case parser.RequestLine:
			if err := s.parseRequestLine(line); err != nil {
				return s.finish(parser.Rejected, err)
			}

			s.phase = parser.Headers
		case parser.Headers:
			if s.parseHeader(line) {
				return s.finish(parser.Accepted, nil)
			}
		default:
			if debug {
				panic(fmt.Sprintf("BUG: unexpected phase: %v", s.phase))
			}

			s.log.Error("unexpected parser phase", "phase", s.phase)
			return s.finish(parser.InternalFault, status.ErrInternalFault)
		}
	}
}

// Reset brings the session back to its initial state, so it can be reused for another
// connection. The request is reset too.
func (s *Session) Reset() {
	s.checked, s.received, s.lineStart = 0, 0, 0
	s.phase = parser.RequestLine
	s.outcome, s.err = parser.NeedMoreData, nil
	s.scanned, s.lines = 0, 0
	s.request.Reset()
}

// SetLogger replaces the logger, primarily to attach connection-specific attributes to it
// when the session is reused.
func (s *Session) SetLogger(log *slog.Logger) {
	s.log = log
}

// Request returns the request being filled by the session.
func (s *Session) Request() *http.Request {
	return s.request
}

// Phase returns the grammar element currently expected.
func (s *Session) Phase() parser.Phase {
	return s.phase
}

// Scanned returns how many bytes were examined while looking for line terminators in total.
func (s *Session) Scanned() int {
	return s.scanned
}

// Lines returns the number of complete lines extracted.
func (s *Session) Lines() int {
	return s.lines
}

// Buffered returns the number of bytes received, but not yet consumed by complete lines.
func (s *Session) Buffered() int {
	return s.received - s.lineStart
}

func (s *Session) finish(outcome parser.Outcome, err error) (parser.Outcome, error) {
	s.outcome, s.err = outcome, err
	return outcome, err
}
