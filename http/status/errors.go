package status

import "errors"

type HTTPError struct {
	Message string
	Code    Code
}

func NewError(code Code, message string) error {
	return HTTPError{
		Code:    code,
		Message: message,
	}
}

func (h HTTPError) Error() string {
	return h.Message
}

// CodeOf extracts the code out of the error, if it's an HTTPError. Otherwise,
// InternalServerError is returned.
func CodeOf(err error) Code {
	var httpErr HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Code
	}

	return InternalServerError
}

var (
	ErrConnectionClosed = NewError(CloseConnection, "remote client has closed the connection")

	ErrMalformedLine           = NewError(BadRequest, "malformed line terminator")
	ErrMalformedRequestLine    = NewError(BadRequest, "malformed request line")
	ErrInvalidTarget           = NewError(BadRequest, "invalid target")
	ErrBudgetExceeded          = NewError(RequestTimeout, "session budget exceeded")
	ErrBufferOverflow          = NewError(RequestHeaderFieldsTooLarge, "request does not fit into the buffer")
	ErrInternalFault           = NewError(InternalServerError, "internal fault")
	ErrMethodNotImplemented    = NewError(NotImplemented, "unsupported method")
	ErrHTTPVersionNotSupported = NewError(HTTPVersionNotSupported, "unsupported version")
)
