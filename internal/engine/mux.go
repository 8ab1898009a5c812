package engine

import (
	"context"
	"fmt"
	"sync"
)

// HandlerFunc serves one method. The returned results are encoded positionally.
type HandlerFunc func(ctx context.Context, args Values) ([]any, error)

// Mux dispatches requests by method name.
type Mux struct {
	mu       sync.RWMutex
	handlers map[string]HandlerFunc
}

// NewMux creates a Mux that already answers MethodPing.
func NewMux() *Mux {
	m := &Mux{handlers: map[string]HandlerFunc{}}
	m.Handle(MethodPing, func(context.Context, Values) ([]any, error) {
		return nil, nil
	})

	return m
}

// Handle registers fn for method, replacing an earlier registration.
func (m *Mux) Handle(method string, fn HandlerFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.handlers[method] = fn
}

// ServeRequest runs the handler for req and builds the response.
func (m *Mux) ServeRequest(ctx context.Context, req *Request) *Response {
	m.mu.RLock()
	fn, ok := m.handlers[req.Method]
	m.mu.RUnlock()

	if !ok {
		return &Response{Error: ErrUnknownMethod.Error()}
	}

	results, err := fn(ctx, req.Args)
	if err != nil {
		return &Response{Error: err.Error()}
	}

	values, err := Encode(results...)
	if err != nil {
		return &Response{Error: fmt.Sprintf("failed to encode results: %v", err)}
	}

	return &Response{Success: true, Results: values}
}
