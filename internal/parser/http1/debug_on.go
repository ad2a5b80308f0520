//go:build debug

package http1

// debug turns unreachable states into panics instead of InternalFault outcomes.
const debug = true
