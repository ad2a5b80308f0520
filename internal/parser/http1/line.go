package http1

import "github.com/xumenger/FSM-HTTPD/internal/parser"

// extractLine scans the buffer starting at checked for the CRLF sequence. The returned line
// is a view of the buffer from the line start up to (excluding) the terminator and is valid
// only if the status is parser.LineComplete.
//
// A CR being the last received byte leaves checked pointing at it, so it's re-examined when
// more data arrives. Any LF met by the loop is bare, as an LF following a CR is always consumed
// together with it.
func (s *Session) extractLine() (parser.LineStatus, []byte) {
	for ; s.checked < s.received; s.checked++ {
		s.scanned++

		switch s.buff[s.checked] {
		case '\r':
			if s.checked+1 == s.received {
				return parser.LineIncomplete, nil
			}

			if s.buff[s.checked+1] != '\n' {
				return parser.LineMalformed, nil
			}

			line := s.buff[s.lineStart:s.checked:s.checked]
			s.checked += len("\r\n")
			s.lineStart = s.checked

			return parser.LineComplete, line
		case '\n':
			return parser.LineMalformed, nil
		}
	}

	return parser.LineIncomplete, nil
}
