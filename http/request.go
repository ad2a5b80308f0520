package http

import (
	"net"

	"github.com/xumenger/FSM-HTTPD/http/method"
	"github.com/xumenger/FSM-HTTPD/http/proto"
	"github.com/xumenger/FSM-HTTPD/kv"
)

type Headers = *kv.Storage

// Request holds everything the parser managed to extract out of the request head. Strings
// are referencing the session buffer directly, so they stay valid only until the session
// is reset.
type Request struct {
	// Method is an enum representing the request method.
	Method method.Method
	// Target is the effective request target: always starts with a slash. For requests in
	// absolute-form the scheme and authority are stripped.
	Target string
	// RawTarget is the target exactly as it was presented in the request line.
	RawTarget string
	// Proto is the enum of a protocol version used for the request.
	Proto proto.Proto
	// Host is the value of the Host header, if any.
	Host string
	// Headers holds non-normalized header pairs, even though lookup is case-insensitive.
	// Only headers with a valid field name are stored.
	Headers Headers
	// Remote holds the remote address.
	Remote net.Addr
}

func NewRequest(headers Headers, remote net.Addr) *Request {
	return &Request{
		Method:  method.Unknown,
		Proto:   proto.Unknown,
		Headers: headers,
		Remote:  remote,
	}
}

// Reset brings the request to its initial state, keeping allocated memory.
func (r *Request) Reset() {
	r.Method = method.Unknown
	r.Target = ""
	r.RawTarget = ""
	r.Proto = proto.Unknown
	r.Host = ""
	r.Headers.Clear()
}

