package wire

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/andy-wagner/gecco/types"
)

// Client is a persistent, lazily-connected connection to one module
// server endpoint.
//
// The first Communicate dials the endpoint; subsequent calls reuse the
// connection. Any transport failure marks the client disconnected, so the
// next Communicate reconnects implicitly; callers retry a failed round
// trip simply by calling Communicate again.
//
// A Client is NOT safe for concurrent use: the protocol allows one
// in-flight request per connection, so every worker owns a private client
// per endpoint.
type Client struct {
	ep      types.Endpoint
	logger  types.Logger
	metrics types.WireMetrics

	dialTimeout    time.Duration
	requestTimeout time.Duration

	conn   net.Conn
	reader *bufio.Reader
	closed bool
}

// Compile-time assertion that Client implements RoundTripper.
var _ types.RoundTripper = (*Client)(nil)

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithClientLogger sets the client logger.
func WithClientLogger(logger types.Logger) ClientOption {
	return func(c *Client) { c.logger = logger }
}

// WithClientMetrics sets the client metrics collector.
func WithClientMetrics(metrics types.WireMetrics) ClientOption {
	return func(c *Client) { c.metrics = metrics }
}

// WithDialTimeout overrides the connect timeout.
func WithDialTimeout(d time.Duration) ClientOption {
	return func(c *Client) { c.dialTimeout = d }
}

// WithRequestTimeout overrides the per-round-trip deadline. A context with
// an earlier deadline wins.
func WithRequestTimeout(d time.Duration) ClientOption {
	return func(c *Client) { c.requestTimeout = d }
}

// NewClient creates a client for one endpoint. No connection is made until
// the first Communicate.
func NewClient(ep types.Endpoint, opts ...ClientOption) *Client {
	c := &Client{
		ep:             ep,
		logger:         nopLogger{},
		metrics:        nopWireMetrics{},
		dialTimeout:    5 * time.Second,
		requestTimeout: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Endpoint returns the endpoint this client talks to.
func (c *Client) Endpoint() types.Endpoint {
	return c.ep
}

// Connected reports whether the client currently holds a live connection.
func (c *Client) Connected() bool {
	return c.conn != nil
}

// Communicate performs one request/response round trip: lazy-connect if
// needed, send msg as one line, block until the response line arrives, and
// return it with the terminating newline stripped.
//
// Parameters:
//   - ctx: Deadline/cancellation for the whole round trip
//   - msg: Single-line UTF-8 payload without embedded newlines
//
// Returns:
//   - string: Response payload without the trailing newline
//   - error: ErrEmbeddedNewline for unframeable payloads, ErrClientClosed
//     after Close, or a wrapped transport error (the client is then
//     disconnected and will reconnect on the next call)
func (c *Client) Communicate(ctx context.Context, msg string) (string, error) {
	if c.closed {
		return "", ErrClientClosed
	}
	if strings.ContainsRune(msg, '\n') {
		return "", ErrEmbeddedNewline
	}

	start := time.Now()
	resp, err := c.roundTrip(ctx, msg)
	c.metrics.RecordRoundTrip(c.ep.Addr(), time.Since(start).Seconds(), err == nil)

	return resp, err
}

func (c *Client) roundTrip(ctx context.Context, msg string) (string, error) {
	if c.conn == nil {
		if err := c.connect(ctx); err != nil {
			return "", fmt.Errorf("connect %s: %w", c.ep.Addr(), err)
		}
	}

	deadline := time.Now().Add(c.requestTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := c.conn.SetDeadline(deadline); err != nil {
		c.disconnect()

		return "", fmt.Errorf("set deadline %s: %w", c.ep.Addr(), err)
	}

	if _, err := c.conn.Write(append([]byte(msg), '\n')); err != nil {
		c.disconnect()

		return "", fmt.Errorf("send to %s: %w", c.ep.Addr(), err)
	}

	line, err := c.reader.ReadString('\n')
	if err != nil {
		c.disconnect()

		return "", fmt.Errorf("receive from %s: %w", c.ep.Addr(), err)
	}

	return strings.TrimRight(line, "\r\n"), nil
}

func (c *Client) connect(ctx context.Context) error {
	dialer := net.Dialer{Timeout: c.dialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", c.ep.Addr())
	if err != nil {
		return err
	}

	c.conn = conn
	c.reader = bufio.NewReader(conn)
	c.logger.Debug("connected", "endpoint", c.ep.Addr())

	return nil
}

// disconnect drops the connection so the next Communicate reconnects.
func (c *Client) disconnect() {
	if c.conn != nil {
		_ = c.conn.Close()
		c.conn = nil
		c.reader = nil
		c.metrics.RecordReconnect(c.ep.Addr())
		c.logger.Debug("disconnected", "endpoint", c.ep.Addr())
	}
}

// Close releases the connection. Subsequent Communicate calls fail with
// ErrClientClosed.
func (c *Client) Close() error {
	c.closed = true
	if c.conn != nil {
		err := c.conn.Close()
		c.conn = nil
		c.reader = nil

		return err
	}

	return nil
}

// nopLogger and nopWireMetrics keep the wire package free of a dependency
// on the internal default implementations.

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}
func (nopLogger) Fatal(string, ...any) {}

type nopWireMetrics struct{}

func (nopWireMetrics) RecordRoundTrip(string, float64, bool) {}
func (nopWireMetrics) RecordReconnect(string)                {}
