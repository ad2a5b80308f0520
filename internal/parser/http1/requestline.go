package http1

import (
	"bytes"
	"strings"

	"github.com/indigo-web/utils/strcomp"
	"github.com/indigo-web/utils/uf"
	"github.com/xumenger/FSM-HTTPD/http/method"
	"github.com/xumenger/FSM-HTTPD/http/proto"
	"github.com/xumenger/FSM-HTTPD/http/status"
)

// parseRequestLine splits the line into method, target and version, separated by runs of
// spaces or tabs. Only the configured method and version are accepted.
func (s *Session) parseRequestLine(line []byte) error {
	sp := indexWS(line)
	if sp == -1 {
		return status.ErrMalformedRequestLine
	}

	m := method.Parse(uf.B2S(line[:sp]))
	if m != s.method {
		return status.ErrMethodNotImplemented
	}

	rest := trimLeftWS(line[sp+1:])
	sp = indexWS(rest)
	if sp == -1 {
		return status.ErrMalformedRequestLine
	}

	rawTarget, version := rest[:sp], trimLeftWS(rest[sp+1:])
	if len(version) == 0 {
		return status.ErrMalformedRequestLine
	}

	p := proto.FromBytes(version)
	if p == proto.Unknown || p != s.proto {
		return status.ErrHTTPVersionNotSupported
	}

	target, ok := s.normalizeTarget(uf.B2S(rawTarget))
	if !ok {
		return status.ErrInvalidTarget
	}

	s.request.Method = m
	s.request.Proto = p
	s.request.RawTarget = uf.B2S(rawTarget)
	s.request.Target = target
	s.log.Debug("request line", "method", m, "target", target, "proto", p)

	return nil
}

// normalizeTarget strips the scheme and authority of targets in absolute-form, leaving only
// the path. The result must start with a slash.
func (s *Session) normalizeTarget(target string) (string, bool) {
	for _, scheme := range s.schemes {
		if len(target) < len(scheme) || !strcomp.EqualFold(target[:len(scheme)], scheme) {
			continue
		}

		slash := strings.IndexByte(target[len(scheme):], '/')
		if slash == -1 {
			return "", false
		}

		target = target[len(scheme)+slash:]
		break
	}

	if len(target) == 0 || target[0] != '/' {
		return "", false
	}

	return target, true
}

func indexWS(b []byte) int {
	return bytes.IndexAny(b, " \t")
}

func trimLeftWS(b []byte) []byte {
	for i, char := range b {
		if char != ' ' && char != '\t' {
			return b[i:]
		}
	}

	return b[:0]
}

func trimRightWS(b []byte) []byte {
	for i := len(b); i > 0; i-- {
		if char := b[i-1]; char != ' ' && char != '\t' {
			return b[:i]
		}
	}

	return b[:0]
}
