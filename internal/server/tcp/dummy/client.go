package dummy

import (
	"io"
	"net"

	"github.com/xumenger/FSM-HTTPD/internal/server/tcp"
)

var _ tcp.Client = new(Client)

// Client serves the pieces it was initialised with, one per read. As they're over,
// Err is returned (io.EOF by default). Everything written is collected in Written.
type Client struct {
	data    [][]byte
	pointer int
	Err     error
	Written []byte
	Closed  bool
}

func NewClient(data ...[]byte) *Client {
	return &Client{
		data: data,
		Err:  io.EOF,
	}
}

// Chunked splits the data into pieces of n bytes.
func Chunked(data []byte, n int) *Client {
	var pieces [][]byte
	for i := 0; i < len(data); i += n {
		pieces = append(pieces, data[i:min(i+n, len(data))])
	}

	return NewClient(pieces...)
}

// WithError sets the error returned as pieces are over.
func (c *Client) WithError(err error) *Client {
	c.Err = err
	return c
}

func (c *Client) Read(p []byte) (int, error) {
	if c.Closed {
		return 0, net.ErrClosed
	}

	if c.pointer >= len(c.data) {
		return 0, c.Err
	}

	piece := c.data[c.pointer]
	n := copy(p, piece)
	if n < len(piece) {
		c.data[c.pointer] = piece[n:]
	} else {
		c.pointer++
	}

	return n, nil
}

func (c *Client) Write(b []byte) error {
	c.Written = append(c.Written, b...)
	return nil
}

func (*Client) Remote() net.Addr {
	return &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 10000}
}

func (c *Client) Close() error {
	c.Closed = true
	return nil
}
