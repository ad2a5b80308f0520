package status

type (
	Code   uint16
	Status string
)

// Codes the server classifies its outcomes with. The wire never carries them, as replies
// are fixed, but they're kept in logs to tell the failure reasons apart.
const (
	OK Code = 200 // RFC 9110, 15.3.1

	BadRequest                  Code = 400 // RFC 9110, 15.5.1
	RequestTimeout              Code = 408 // RFC 9110, 15.5.9
	RequestHeaderFieldsTooLarge Code = 431 // RFC 6585, 5

	InternalServerError     Code = 500 // RFC 9110, 15.6.1
	NotImplemented          Code = 501 // RFC 9110, 15.6.2
	HTTPVersionNotSupported Code = 505 // RFC 9110, 15.6.6

	// CloseConnection isn't a real status code. It marks a connection which was closed
	// by the peer, therefore nothing must be written back.
	CloseConnection Code = 0
)

// Text returns a text for the HTTP status code. It returns the empty
// string if the code is unknown.
func Text(code Code) Status {
	switch code {
	case OK:
		return "OK"
	case BadRequest:
		return "Bad Request"
	case RequestTimeout:
		return "Request Timeout"
	case RequestHeaderFieldsTooLarge:
		return "Request Header Fields Too Large"
	case InternalServerError:
		return "Internal Server Error"
	case NotImplemented:
		return "Not Implemented"
	case HTTPVersionNotSupported:
		return "HTTP Version Not Supported"
	default:
		return ""
	}
}
