// Package testutil provides test helpers shared by the updater tools.
package testutil

import (
	"bytes"
	"context"
	"fmt"
	"sync"

	"github.com/mpyw/updater/internal/engine"
	"github.com/mpyw/updater/internal/logging"
)

// Call is one recorded engine call.
type Call struct {
	Method string
	Args   []any
}

// FakeEngine records calls and answers them from Results and Errors.
type FakeEngine struct {
	mu      sync.Mutex
	Calls   []Call
	Results map[string][]any
	Errors  map[string]error
}

// Call implements engine.Caller.
func (f *FakeEngine) Call(_ context.Context, method string, args ...any) (engine.Values, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.Calls = append(f.Calls, Call{Method: method, Args: args})

	if err := f.Errors[method]; err != nil {
		return nil, fmt.Errorf("%s: %w", method, err)
	}

	return engine.Encode(f.Results[method]...)
}

// Methods returns the called method names in order.
func (f *FakeEngine) Methods() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	methods := make([]string, len(f.Calls))
	for i, c := range f.Calls {
		methods[i] = c.Method
	}

	return methods
}

// NewLogger returns a logger writing to a buffer, without syslog.
func NewLogger() (*logging.Logger, *bytes.Buffer) {
	var buf bytes.Buffer

	return logging.New(logging.WithStderr(&buf), logging.WithSyslogDialer(nil)), &buf
}
