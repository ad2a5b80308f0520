package address

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
)

const (
	DefaultHost = "0.0.0.0"
	DefaultPort = 10000
)

type Address struct {
	Host string
	Port uint16
}

// Parse parses the address in host:port form. Omitted host results in DefaultHost.
func Parse(addr string) (Address, error) {
	colon := strings.LastIndexByte(addr, ':')
	if colon == -1 {
		return Address{}, errors.New("no port given")
	}

	host := addr[:colon]
	if len(host) == 0 {
		host = DefaultHost
	}

	return FromParts(strings.Trim(host, "[]"), addr[colon+1:])
}

// FromParts builds the address out of separately given host and port, as they're passed in
// the command line.
func FromParts(host, port string) (Address, error) {
	p, err := strconv.ParseUint(port, 10, 16)
	if err != nil {
		return Address{}, fmt.Errorf("invalid port: %s", port)
	}

	if len(host) == 0 {
		host = DefaultHost
	}

	return Address{
		Host: host,
		Port: uint16(p),
	}, nil
}

// Default returns the address the server binds to unless explicitly told otherwise.
func Default() Address {
	return Address{Host: DefaultHost, Port: DefaultPort}
}

func (a Address) String() string {
	return net.JoinHostPort(a.Host, strconv.Itoa(int(a.Port)))
}
