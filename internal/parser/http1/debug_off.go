//go:build !debug

package http1

const debug = false
