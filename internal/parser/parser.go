package parser

import (
	"errors"

	"github.com/xumenger/FSM-HTTPD/http"
)

var ErrTerminated = errors.New("parser: session has already reached a terminal outcome")

// RequestsParser is a general interface for an incremental request head parser. Data is
// either copied in via Feed or read directly into the writable tail returned by Free and
// then committed. Advance parses everything available and must be called again after new
// data arrives as long as the outcome is NeedMoreData. Request is filled as the head is
// being parsed.
type RequestsParser interface {
	Feed(b []byte) error
	Free() []byte
	Commit(n int) error
	Advance() (Outcome, error)
	Request() *http.Request
	Reset()
}
