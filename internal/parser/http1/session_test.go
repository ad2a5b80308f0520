package http1

import (
	"context"
	"io"
	"log/slog"
	"slices"
	"strings"
	"testing"

	"github.com/dchest/uniuri"
	"github.com/stretchr/testify/require"
	"github.com/xumenger/FSM-HTTPD/config"
	"github.com/xumenger/FSM-HTTPD/http"
	"github.com/xumenger/FSM-HTTPD/http/method"
	"github.com/xumenger/FSM-HTTPD/http/proto"
	"github.com/xumenger/FSM-HTTPD/http/status"
	"github.com/xumenger/FSM-HTTPD/internal/parser"
	"github.com/xumenger/FSM-HTTPD/kv"
)

func getSession(cfg *config.Config) *Session {
	request := http.NewRequest(kv.New(), nil)
	return NewSession(cfg, request, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func splitIntoParts(req []byte, n int) (parts [][]byte) {
	for i := 0; i < len(req); i += n {
		end := i + n
		if end > len(req) {
			end = len(req)
		}

		parts = append(parts, req[i:end])
	}

	return parts
}

func feedPartially(s *Session, raw []byte, n int) (outcome parser.Outcome, err error) {
	for _, chunk := range splitIntoParts(raw, n) {
		if err = s.Feed(chunk); err != nil {
			return parser.NeedMoreData, err
		}

		outcome, err = s.Advance()
		if outcome.Terminal() {
			break
		}
	}

	return outcome, err
}

type result struct {
	Outcome parser.Outcome
	Err     error
	Method  method.Method
	Target  string
	Host    string
	Headers []kv.Pair
}

func parse(cfg *config.Config, raw string, n int) result {
	s := getSession(cfg)
	outcome, err := feedPartially(s, []byte(raw), n)
	request := s.Request()

	var headers []kv.Pair
	for key, value := range request.Headers.Pairs() {
		headers = append(headers, kv.Pair{Key: key, Value: value})
	}

	return result{
		Outcome: outcome,
		Err:     err,
		Method:  request.Method,
		Target:  strings.Clone(request.Target),
		Host:    strings.Clone(request.Host),
		Headers: slices.Clone(headers),
	}
}

func BenchmarkSession(b *testing.B) {
	cfg := config.Default()
	s := getSession(cfg)
	headers := strings.Repeat("Header: "+strings.Repeat("a", 50)+"\r\n", 10)
	data := []byte("GET /" + strings.Repeat("a", 500) + " HTTP/1.1\r\nHost: example.com\r\n" + headers + "\r\n")
	b.SetBytes(int64(len(data)))
	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		_ = s.Feed(data)
		_, _ = s.Advance()
		s.Reset()
	}
}

// recorder keeps all the records of every level.
type recorder struct {
	records *[]slog.Record
}

func (r *recorder) Enabled(context.Context, slog.Level) bool { return true }

func (r *recorder) Handle(_ context.Context, record slog.Record) error {
	*r.records = append(*r.records, record.Clone())
	return nil
}

func (r *recorder) WithAttrs([]slog.Attr) slog.Handler { return r }

func (r *recorder) WithGroup(string) slog.Handler { return r }

func TestSession(t *testing.T) {
	cfg := config.Default()

	t.Run("minimal request", func(t *testing.T) {
		s := getSession(cfg)
		require.NoError(t, s.Feed([]byte("GET / HTTP/1.1\r\nHost: example.com\r\n\r\n")))
		outcome, err := s.Advance()
		require.NoError(t, err)
		require.Equal(t, parser.Accepted, outcome)
		require.Equal(t, 3, s.Lines())

		request := s.Request()
		require.Equal(t, method.GET, request.Method)
		require.Equal(t, "/", request.Target)
		require.Equal(t, proto.HTTP11, request.Proto)
		require.Equal(t, "example.com", request.Host)
		require.True(t, request.Headers.Has("host"))
	})

	t.Run("every line is logged", func(t *testing.T) {
		var records []slog.Record
		log := slog.New(&recorder{records: &records})
		s := NewSession(cfg, http.NewRequest(kv.New(), nil), log)
		require.NoError(t, s.Feed([]byte("GET / HTTP/1.1\r\nHost: example.com\r\n\r\n")))
		outcome, err := s.Advance()
		require.NoError(t, err)
		require.Equal(t, parser.Accepted, outcome)

		var phases []string
		for _, record := range records {
			if record.Message != "line" {
				continue
			}

			record.Attrs(func(attr slog.Attr) bool {
				if attr.Key == "phase" {
					phases = append(phases, attr.Value.String())
				}
				return true
			})
		}

		require.Equal(t, []string{
			parser.RequestLine.String(), parser.Headers.String(), parser.Headers.String(),
		}, phases)
	})

	t.Run("first host wins even if empty", func(t *testing.T) {
		res := parse(cfg, "GET / HTTP/1.1\r\nHost:\r\nHost: b.example\r\n\r\n", 1024)
		require.NoError(t, res.Err)
		require.Equal(t, parser.Accepted, res.Outcome)
		require.Empty(t, res.Host)
		require.Equal(t, []kv.Pair{
			{"Host", ""},
			{"Host", "b.example"},
		}, res.Headers)
	})

	t.Run("request line alone is not enough", func(t *testing.T) {
		s := getSession(cfg)
		require.NoError(t, s.Feed([]byte("GET / HTTP/1.1\r\n")))
		outcome, err := s.Advance()
		require.NoError(t, err)
		require.Equal(t, parser.NeedMoreData, outcome)
		require.Equal(t, parser.Headers, s.Phase())
	})

	t.Run("no headers", func(t *testing.T) {
		res := parse(cfg, "GET / HTTP/1.1\r\n\r\n", 1024)
		require.NoError(t, res.Err)
		require.Equal(t, parser.Accepted, res.Outcome)
		require.Empty(t, res.Host)
	})

	t.Run("CR split from LF", func(t *testing.T) {
		s := getSession(cfg)
		line := "GET /index.html HTTP/1.1"
		require.NoError(t, s.Feed([]byte(line+"\r")))
		outcome, err := s.Advance()
		require.NoError(t, err)
		require.Equal(t, parser.NeedMoreData, outcome)
		require.Equal(t, len(line), s.checked, "CR must be re-examined")
		require.Equal(t, 0, s.Lines())
		require.Equal(t, parser.RequestLine, s.Phase())

		require.NoError(t, s.Feed([]byte("\n")))
		outcome, err = s.Advance()
		require.NoError(t, err)
		require.Equal(t, parser.NeedMoreData, outcome)
		require.Equal(t, 1, s.Lines())
		require.Equal(t, parser.Headers, s.Phase())
		require.Equal(t, "/index.html", s.Request().Target)
		require.Equal(t, line+"\r\n", string(s.buff[:s.received]), "checked bytes must stay intact")

		require.NoError(t, s.Feed([]byte("Host: localhost\r\n\r\n")))
		outcome, err = s.Advance()
		require.NoError(t, err)
		require.Equal(t, parser.Accepted, outcome)
		require.Equal(t, "/index.html", s.Request().Target)
		require.Equal(t, "localhost", s.Request().Host)
	})

	t.Run("wrong version", func(t *testing.T) {
		res := parse(cfg, "GET /index.html HTTP/1.0\r\n\r\n", 1024)
		require.Equal(t, parser.Rejected, res.Outcome)
		require.ErrorIs(t, res.Err, status.ErrHTTPVersionNotSupported)
	})

	t.Run("unknown version", func(t *testing.T) {
		for _, version := range []string{"HTTP/1.1 ", "HTTP/1.15", "HTTPS/1.1", "1.1"} {
			res := parse(cfg, "GET / "+version+"\r\n\r\n", 1024)
			require.Equal(t, parser.Rejected, res.Outcome, version)
			require.ErrorIs(t, res.Err, status.ErrHTTPVersionNotSupported, version)
		}
	})

	t.Run("unsupported method", func(t *testing.T) {
		for _, m := range []string{"POST", "HEAD", "BREW", "GETT"} {
			res := parse(cfg, m+" / HTTP/1.1\r\n\r\n", 1024)
			require.Equal(t, parser.Rejected, res.Outcome, m)
			require.ErrorIs(t, res.Err, status.ErrMethodNotImplemented, m)
		}
	})

	t.Run("case insensitive tokens", func(t *testing.T) {
		res := parse(cfg, "get / http/1.1\r\nhOsT: example.com\r\n\r\n", 1024)
		require.NoError(t, res.Err)
		require.Equal(t, parser.Accepted, res.Outcome)
		require.Equal(t, method.GET, res.Method)
		require.Equal(t, "example.com", res.Host)
	})

	t.Run("whitespace runs", func(t *testing.T) {
		res := parse(cfg, "GET \t /path\t\t  HTTP/1.1\r\n\r\n", 1024)
		require.NoError(t, res.Err)
		require.Equal(t, parser.Accepted, res.Outcome)
		require.Equal(t, "/path", res.Target)
	})

	t.Run("malformed request line", func(t *testing.T) {
		for _, line := range []string{"GET", "GET /", "GET / ", "GET    "} {
			res := parse(cfg, line+"\r\n\r\n", 1024)
			require.Equal(t, parser.Rejected, res.Outcome, line)
			require.ErrorIs(t, res.Err, status.ErrMalformedRequestLine, line)
		}
	})

	t.Run("absolute form", func(t *testing.T) {
		s := getSession(cfg)
		require.NoError(t, s.Feed([]byte("GET http://host.example/path HTTP/1.1\r\n")))
		outcome, err := s.Advance()
		require.NoError(t, err)
		require.Equal(t, parser.NeedMoreData, outcome)
		require.Equal(t, "/path", s.Request().Target)
		require.Equal(t, "http://host.example/path", s.Request().RawTarget)

		res := parse(cfg, "GET HTTPS://Host.Example:8080/a/b?c=d HTTP/1.1\r\n\r\n", 1024)
		require.NoError(t, res.Err)
		require.Equal(t, "/a/b?c=d", res.Target)
	})

	t.Run("invalid target", func(t *testing.T) {
		for _, target := range []string{"http://host.example", "index.html", "*", "ftp://host/x", "http:/"} {
			res := parse(cfg, "GET "+target+" HTTP/1.1\r\n\r\n", 1024)
			require.Equal(t, parser.Rejected, res.Outcome, target)
			require.ErrorIs(t, res.Err, status.ErrInvalidTarget, target)
		}
	})

	t.Run("bare LF", func(t *testing.T) {
		for _, raw := range []string{
			"GET / HTTP/1.1\n\r\n",
			"\n",
			"GET / HTTP/1.1\r\nHost: example.com\n\r\n",
			"GET / HTTP/1.1\r\n\n",
		} {
			res := parse(cfg, raw, 1024)
			require.Equal(t, parser.Rejected, res.Outcome, raw)
			require.ErrorIs(t, res.Err, status.ErrMalformedLine, raw)
		}
	})

	t.Run("bare CR", func(t *testing.T) {
		for _, raw := range []string{
			"GET / HTTP/1.1\rX\n",
			"GET / HTTP/1.1\r\nHost: a\r\r\n",
			"\r\r",
		} {
			res := parse(cfg, raw, 1024)
			require.Equal(t, parser.Rejected, res.Outcome, raw)
			require.ErrorIs(t, res.Err, status.ErrMalformedLine, raw)
		}
	})

	t.Run("tolerated headers", func(t *testing.T) {
		res := parse(cfg, "GET / HTTP/1.1\r\n"+
			"no colon at all\r\n"+
			"Bad Name: value\r\n"+
			": empty name\r\n"+
			"Host: \t first.example \t\r\n"+
			"Host: second.example\r\n"+
			"X-Empty:\r\n"+
			"Accept:*/*\r\n"+
			"\r\n", 1024)
		require.NoError(t, res.Err)
		require.Equal(t, parser.Accepted, res.Outcome)
		require.Equal(t, "first.example", res.Host)
		require.Equal(t, []kv.Pair{
			{"Host", "first.example"},
			{"Host", "second.example"},
			{"X-Empty", ""},
			{"Accept", "*/*"},
		}, res.Headers)
	})

	t.Run("rejection is short-circuited", func(t *testing.T) {
		s := getSession(cfg)
		raw := "POST / HTTP/1.1\r\nHost: example.com\r\n\r\n"
		require.NoError(t, s.Feed([]byte(raw)))
		outcome, err := s.Advance()
		require.Equal(t, parser.Rejected, outcome)
		require.Error(t, err)
		require.Equal(t, 1, s.Lines())
	})

	t.Run("terminal outcome is sticky", func(t *testing.T) {
		s := getSession(cfg)
		require.NoError(t, s.Feed([]byte("GET / HTTP/1.1\r\n\r\nGET /next HTTP/1.1\r\n")))
		outcome, err := s.Advance()
		require.NoError(t, err)
		require.Equal(t, parser.Accepted, outcome)
		scanned := s.Scanned()

		outcome, err = s.Advance()
		require.NoError(t, err)
		require.Equal(t, parser.Accepted, outcome)
		require.Equal(t, scanned, s.Scanned())
		require.Equal(t, "/", s.Request().Target)
		require.Equal(t, len("GET /next HTTP/1.1\r\n"), s.Buffered())

		require.ErrorIs(t, s.Feed([]byte("x")), parser.ErrTerminated)
		require.ErrorIs(t, s.Commit(0), parser.ErrTerminated)

		rejected := getSession(cfg)
		require.NoError(t, rejected.Feed([]byte("GET / HTTP/1.0\r\n")))
		_, err = rejected.Advance()
		require.ErrorIs(t, err, status.ErrHTTPVersionNotSupported)
		outcome, err = rejected.Advance()
		require.Equal(t, parser.Rejected, outcome)
		require.ErrorIs(t, err, status.ErrHTTPVersionNotSupported)
	})

	t.Run("unreachable phase", func(t *testing.T) {
		s := getSession(cfg)
		s.phase = parser.Phase(42)
		require.NoError(t, s.Feed([]byte("GET / HTTP/1.1\r\n")))

		if debug {
			require.Panics(t, func() { _, _ = s.Advance() })
			return
		}

		outcome, err := s.Advance()
		require.Equal(t, parser.InternalFault, outcome)
		require.ErrorIs(t, err, status.ErrInternalFault)
	})

	t.Run("reset", func(t *testing.T) {
		s := getSession(cfg)
		require.NoError(t, s.Feed([]byte("GET /first HTTP/1.1\r\nHost: a\r\n\r\n")))
		outcome, _ := s.Advance()
		require.Equal(t, parser.Accepted, outcome)

		s.Reset()
		require.Equal(t, parser.RequestLine, s.Phase())
		require.Zero(t, s.Scanned())
		require.True(t, s.Request().Headers.Empty())

		require.NoError(t, s.Feed([]byte("GET /second HTTP/1.1\r\n\r\n")))
		outcome, err := s.Advance()
		require.NoError(t, err)
		require.Equal(t, parser.Accepted, outcome)
		require.Equal(t, "/second", s.Request().Target)
		require.Empty(t, s.Request().Host)
	})

	t.Run("free and commit", func(t *testing.T) {
		s := getSession(cfg)
		raw := "GET /direct HTTP/1.1\r\n\r\n"
		n := copy(s.Free(), raw)
		require.NoError(t, s.Commit(n))
		outcome, err := s.Advance()
		require.NoError(t, err)
		require.Equal(t, parser.Accepted, outcome)
		require.Equal(t, "/direct", s.Request().Target)
		require.Len(t, s.Free(), cfg.NET.ReadBufferSize-len(raw))
		require.ErrorIs(t, getSession(cfg).Commit(cfg.NET.ReadBufferSize+1), status.ErrBufferOverflow)
		require.ErrorIs(t, getSession(cfg).Commit(-1), status.ErrBufferOverflow)
	})
}

func TestChunkSizeIndependence(t *testing.T) {
	cfg := config.Default()
	requests := []string{
		"GET / HTTP/1.1\r\nHost: example.com\r\n\r\n",
		"GET http://host.example/path HTTP/1.1\r\nHost: host.example\r\nAccept: */*\r\n\r\n",
		"get /a/b/c http/1.1\r\nX-Forwarded-For: 127.0.0.1\r\nHost:   spaced   \r\n\r\n",
		"GET /" + uniuri.NewLen(64) + " HTTP/1.1\r\nX-Random: " + uniuri.NewLen(128) + "\r\n\r\n",
		"GET /index.html HTTP/1.0\r\n\r\n",
		"POST / HTTP/1.1\r\n\r\n",
		"GET / HTTP/1.1\nHost: a\r\n\r\n",
		"GET / HTTP/1.1\r\nHost: a\rb\r\n\r\n",
		"GET nothing HTTP/1.1\r\n\r\n",
		"GET / HTTP/1.1\r\nHost: incomplete",
	}

	for _, raw := range requests {
		want := parse(cfg, raw, len(raw))

		for n := 1; n < len(raw); n++ {
			got := parse(cfg, raw, n)
			require.Equal(t, want, got, "chunk size %d of %q", n, raw)
		}
	}
}

func TestLinearScan(t *testing.T) {
	cfg := config.Default()
	raw := []byte("GET /" + strings.Repeat("a", 300) + " HTTP/1.1\r\n" +
		strings.Repeat("Header: value\r\n", 20) + "\r\n")

	t.Run("byte by byte", func(t *testing.T) {
		s := getSession(cfg)
		outcome, err := feedPartially(s, raw, 1)
		require.NoError(t, err)
		require.Equal(t, parser.Accepted, outcome)
		// every CR is examined twice: once alone and once with its LF, while LFs are
		// skipped over. So the total amount is exactly the size of the data.
		require.Equal(t, len(raw), s.Scanned())
	})

	t.Run("all at once", func(t *testing.T) {
		s := getSession(cfg)
		outcome, err := feedPartially(s, raw, len(raw))
		require.NoError(t, err)
		require.Equal(t, parser.Accepted, outcome)
		require.Equal(t, len(raw)-s.Lines(), s.Scanned())
	})

	t.Run("repeated advance", func(t *testing.T) {
		s := getSession(cfg)
		require.NoError(t, s.Feed([]byte("GET /long-path-without-end")))
		for i := 0; i < 10; i++ {
			outcome, err := s.Advance()
			require.NoError(t, err)
			require.Equal(t, parser.NeedMoreData, outcome)
		}

		require.Equal(t, len("GET /long-path-without-end"), s.Scanned())
	})
}

func TestBufferOverflow(t *testing.T) {
	cfg := config.Default()
	cfg.NET.ReadBufferSize = 32

	t.Run("single feed", func(t *testing.T) {
		s := getSession(cfg)
		require.NoError(t, s.Feed([]byte("GET / HTTP/1.1\r\n")))
		outcome, err := s.Advance()
		require.NoError(t, err)
		require.Equal(t, parser.NeedMoreData, outcome)

		before := s.received
		err = s.Feed([]byte("Host: " + strings.Repeat("a", 32) + "\r\n\r\n"))
		require.ErrorIs(t, err, status.ErrBufferOverflow)
		require.Equal(t, before, s.received, "buffer must stay intact")
	})

	t.Run("byte by byte", func(t *testing.T) {
		s := getSession(cfg)
		raw := []byte("GET /" + strings.Repeat("a", 64) + " HTTP/1.1\r\n\r\n")
		_, err := feedPartially(s, raw, 1)
		require.ErrorIs(t, err, status.ErrBufferOverflow)
		require.Equal(t, cfg.NET.ReadBufferSize, s.received)
		require.Empty(t, s.Free())
	})

	t.Run("exactly fits", func(t *testing.T) {
		s := getSession(cfg)
		raw := "GET /" + strings.Repeat("a", 14) + " HTTP/1.1\r\n\r\n"
		require.Len(t, raw, cfg.NET.ReadBufferSize)
		outcome, err := feedPartially(s, []byte(raw), 3)
		require.NoError(t, err)
		require.Equal(t, parser.Accepted, outcome)
	})
}

func TestConfiguredGrammar(t *testing.T) {
	cfg := config.Default()
	cfg.Request.Method = "HEAD"
	cfg.Request.Proto = "HTTP/1.0"
	cfg.Request.Schemes = []string{"ws://"}

	res := parse(cfg, "HEAD ws://chat.example/room HTTP/1.0\r\n\r\n", 1024)
	require.NoError(t, res.Err)
	require.Equal(t, parser.Accepted, res.Outcome)
	require.Equal(t, method.HEAD, res.Method)
	require.Equal(t, "/room", res.Target)

	res = parse(cfg, "GET / HTTP/1.0\r\n\r\n", 1024)
	require.ErrorIs(t, res.Err, status.ErrMethodNotImplemented)

	res = parse(cfg, "HEAD http://chat.example/room HTTP/1.0\r\n\r\n", 1024)
	require.ErrorIs(t, res.Err, status.ErrInvalidTarget)
}
