package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"time"
)

const (
	dialTimeout = 1 * time.Second
	// Transactions can run for a long time; callers bound them with ctx.
	defaultRequestTimeout = 30 * time.Minute
)

// ErrNotConnected is returned when the engine is not reachable.
var ErrNotConnected = errors.New("engine not connected")

// Caller performs engine calls.
type Caller interface {
	Call(ctx context.Context, method string, args ...any) (Values, error)
}

// Client dials the engine socket once per call.
type Client struct {
	socketPath     string
	requestTimeout time.Duration
	mu             sync.Mutex
}

// NewClient creates a client for the engine listening on socketPath.
func NewClient(socketPath string) *Client {
	return &Client{
		socketPath:     socketPath,
		requestTimeout: defaultRequestTimeout,
	}
}

// SocketPath returns the socket the client dials.
func (c *Client) SocketPath() string {
	return c.socketPath
}

// SendRequest sends a request to the engine and returns the response.
func (c *Client) SendRequest(ctx context.Context, req *Request) (*Response, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	dialCtx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()

	dialer := net.Dialer{}

	conn, err := dialer.DialContext(dialCtx, "unix", c.socketPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotConnected, err)
	}

	defer func() { _ = conn.Close() }()

	deadline := time.Now().Add(c.requestTimeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}

	if err := conn.SetDeadline(deadline); err != nil {
		return nil, fmt.Errorf("failed to set deadline: %w", err)
	}

	// Unblock reads when ctx is cancelled before the deadline.
	stop := context.AfterFunc(ctx, func() {
		_ = conn.SetDeadline(time.Now())
	})
	defer stop()

	if err := json.NewEncoder(conn).Encode(req); err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	var resp Response
	if err := json.NewDecoder(conn).Decode(&resp); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("engine closed connection unexpectedly")
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	return &resp, nil
}

// Call encodes args, sends the request and returns the results.
func (c *Client) Call(ctx context.Context, method string, args ...any) (Values, error) {
	req, err := NewRequest(method, args...)
	if err != nil {
		return nil, err
	}

	resp, err := c.SendRequest(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := resp.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", method, err)
	}

	return resp.Results, nil
}

// Ping checks if the engine is reachable.
func (c *Client) Ping(ctx context.Context) error {
	resp, err := c.SendRequest(ctx, &Request{Method: MethodPing})
	if err != nil {
		return err
	}

	return resp.Err()
}
