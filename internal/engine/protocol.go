// Package engine talks to the transaction engine, the external process that
// owns package metadata, queues and journals.
//
// Every call is one JSON request and one JSON response over a unix socket.
// Requests name a method and carry positional arguments; responses carry
// positional results.
package engine

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Method names understood by the engine.
const (
	MethodPing           = "ping"
	MethodRootDirSet     = "backend.root_dir_set"
	MethodQueueInstall   = "transaction.queue_install"
	MethodQueueRemove    = "transaction.queue_remove"
	MethodPerformQueue   = "transaction.perform_queue"
	MethodRecover        = "transaction.recover"
	MethodAbort          = "transaction.abort"
	MethodUpdaterPrepare = "updater.prepare"
	MethodUpdaterCleanup = "updater.cleanup"
)

// ErrUnknownMethod is reported by the engine for methods it does not serve.
var ErrUnknownMethod = errors.New("unknown method")

// Request is a single engine call.
type Request struct {
	Method string `json:"method"`
	Args   Values `json:"args,omitempty"`
}

// NewRequest encodes args into a request for method.
func NewRequest(method string, args ...any) (*Request, error) {
	values, err := Encode(args...)
	if err != nil {
		return nil, fmt.Errorf("failed to encode arguments of %s: %w", method, err)
	}

	return &Request{Method: method, Args: values}, nil
}

// Response is the engine's answer to a Request.
type Response struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	Results Values `json:"results,omitempty"`
}

// Err returns the error carried by the response, if any.
func (r *Response) Err() error {
	if r.Success {
		return nil
	}
	if r.Error == "" {
		return errors.New("engine call failed")
	}
	if r.Error == ErrUnknownMethod.Error() {
		return ErrUnknownMethod
	}

	return errors.New(r.Error)
}

// Values are positional arguments or results.
type Values []json.RawMessage

// ErrMissingValue is returned when a positional value is absent or null.
var ErrMissingValue = errors.New("missing value")

// Encode marshals each argument into a positional value.
func Encode(args ...any) (Values, error) {
	values := make(Values, 0, len(args))
	for _, arg := range args {
		raw, err := json.Marshal(arg)
		if err != nil {
			return nil, err
		}
		values = append(values, raw)
	}

	return values, nil
}

// Len returns the number of values.
func (v Values) Len() int {
	return len(v)
}

// Present reports whether position i holds a non-null value.
func (v Values) Present(i int) bool {
	return i >= 0 && i < len(v) && string(v[i]) != "null"
}

// Decode unmarshals position i into dst.
func (v Values) Decode(i int, dst any) error {
	if !v.Present(i) {
		return fmt.Errorf("%w at position %d", ErrMissingValue, i)
	}
	if err := json.Unmarshal(v[i], dst); err != nil {
		return fmt.Errorf("invalid value at position %d: %w", i, err)
	}

	return nil
}

// Bool decodes position i as a boolean.
func (v Values) Bool(i int) (bool, error) {
	var b bool
	err := v.Decode(i, &b)

	return b, err
}

// String decodes position i as a string.
func (v Values) String(i int) (string, error) {
	var s string
	err := v.Decode(i, &s)

	return s, err
}
