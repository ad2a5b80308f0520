package tcp

import (
	"errors"
	"net"
	"os"
	"time"

	"github.com/xumenger/FSM-HTTPD/http/status"
	"github.com/xumenger/FSM-HTTPD/internal/timer"
)

type Client interface {
	Read(p []byte) (int, error)
	Write([]byte) error
	Remote() net.Addr
	Close() error
}

type client struct {
	conn     net.Conn
	timeout  time.Duration
	deadline time.Time
}

// NewClient wraps the connection. Every read is limited by the timeout, but never lasts
// past the deadline. Reads failing because of the deadline return status.ErrBudgetExceeded.
// Zero deadline means no limit.
func NewClient(conn net.Conn, timeout time.Duration, deadline time.Time) Client {
	return &client{
		conn:     conn,
		timeout:  timeout,
		deadline: deadline,
	}
}

func (c *client) Read(p []byte) (int, error) {
	deadline := timer.Deadline(c.timeout)
	budgeted := !c.deadline.IsZero() && c.deadline.Before(deadline)
	if budgeted {
		deadline = c.deadline
	}

	if err := c.conn.SetReadDeadline(deadline); err != nil {
		return 0, err
	}

	n, err := c.conn.Read(p)
	if budgeted && errors.Is(err, os.ErrDeadlineExceeded) {
		return n, status.ErrBudgetExceeded
	}

	return n, err
}

func (c *client) Write(b []byte) error {
	_, err := c.conn.Write(b)

	return err
}

func (c *client) Remote() net.Addr {
	return c.conn.RemoteAddr()
}

func (c *client) Close() error {
	return c.conn.Close()
}
