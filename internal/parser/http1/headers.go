package http1

import (
	"bytes"

	"github.com/indigo-web/utils/strcomp"
	"github.com/indigo-web/utils/uf"
	"golang.org/x/net/http/httpguts"
)

// parseHeader interprets a single header line and reports whether the head is over, which
// is signalled by an empty line. Unrecognized lines are tolerated and skipped.
func (s *Session) parseHeader(line []byte) (done bool) {
	if len(line) == 0 {
		return true
	}

	colon := bytes.IndexByte(line, ':')
	if colon == -1 {
		s.log.Debug("can not handle this header", "line", uf.B2S(line))
		return false
	}

	key := uf.B2S(line[:colon])
	if !httpguts.ValidHeaderFieldName(key) {
		s.log.Debug("can not handle this header", "line", uf.B2S(line))
		return false
	}

	value := uf.B2S(trimRightWS(trimLeftWS(line[colon+1:])))
	if strcomp.EqualFold(key, "host") && !s.request.Headers.Has("host") {
		s.request.Host = value
		s.log.Debug("request host", "host", value)
	}

	s.request.Headers.Add(key, value)

	return false
}
