// Package client implements the one-shot query protocol from the client
// side: dial, send the raw query bytes, read a single response line.
package client

import (
	"bufio"
	"crypto/tls"
	"fmt"
	"net"
	"strings"
	"time"
)

// DefaultTimeout bounds dial, write, and read for one exchange.
const DefaultTimeout = 5 * time.Second

// Options configures a Client.
type Options struct {
	// TLS dials with TLS when true.
	TLS bool
	// InsecureSkipVerify skips certificate verification. Needed for the
	// self-signed certificates typical in test deployments.
	InsecureSkipVerify bool
	// Timeout bounds the whole exchange. Zero means DefaultTimeout.
	Timeout time.Duration
}

// Client issues one-shot queries against a server address.
type Client struct {
	addr string
	opts Options
}

// New creates a client for addr ("host:port").
func New(addr string, opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	return &Client{addr: addr, opts: opts}
}

// Query sends q and returns the server's response line without the
// trailing newline. Each call opens a fresh connection; the protocol has
// no keep-alive.
func (c *Client) Query(q string) (string, error) {
	conn, err := c.dial()
	if err != nil {
		return "", fmt.Errorf("dial %s: %w", c.addr, err)
	}
	defer conn.Close()

	deadline := time.Now().Add(c.opts.Timeout)
	_ = conn.SetDeadline(deadline)

	if _, err := conn.Write([]byte(q)); err != nil {
		return "", fmt.Errorf("send query: %w", err)
	}

	line, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	return strings.TrimRight(line, "\n"), nil
}

func (c *Client) dial() (net.Conn, error) {
	dialer := &net.Dialer{Timeout: c.opts.Timeout}
	if !c.opts.TLS {
		return dialer.Dial("tcp", c.addr)
	}
	return tls.DialWithDialer(dialer, "tcp", c.addr, &tls.Config{
		InsecureSkipVerify: c.opts.InsecureSkipVerify,
	})
}
