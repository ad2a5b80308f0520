package parser

// Outcome is what the parser tells a caller after consuming all the data available. It may
// be incomplete (NeedMoreData), or terminal: Accepted, Rejected or InternalFault. After a
// terminal outcome nothing is parsed anymore.
type Outcome uint8

const (
	NeedMoreData Outcome = iota + 1
	Accepted
	Rejected
	InternalFault
)

func (o Outcome) String() string {
	switch o {
	case NeedMoreData:
		return "need more data"
	case Accepted:
		return "accepted"
	case Rejected:
		return "rejected"
	case InternalFault:
		return "internal fault"
	default:
		return "unknown"
	}
}

// Terminal reports whether no more parsing happens after the outcome.
func (o Outcome) Terminal() bool {
	return o == Accepted || o == Rejected || o == InternalFault
}

// Phase is the grammar element currently expected. It moves from RequestLine to Headers
// exactly once and never goes back.
type Phase uint8

const (
	RequestLine Phase = iota
	Headers
)

func (p Phase) String() string {
	switch p {
	case RequestLine:
		return "request line"
	case Headers:
		return "headers"
	default:
		return "unknown"
	}
}

// LineStatus is the result of a single attempt to extract a line.
type LineStatus uint8

const (
	LineComplete LineStatus = iota
	LineMalformed
	LineIncomplete
)
