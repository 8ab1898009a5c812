package terminal

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// mockFdWriter implements Fder for testing.
type mockFdWriter struct {
	buf bytes.Buffer
	fd  uintptr
}

func (m *mockFdWriter) Write(p []byte) (n int, err error) {
	return m.buf.Write(p)
}

func (m *mockFdWriter) Read(p []byte) (n int, err error) {
	return m.buf.Read(p)
}

func (m *mockFdWriter) Fd() uintptr {
	return m.fd
}

//nolint:paralleltest // Test modifies package globals (IsTTY, GetSize)
func TestGetWidthFromWriter_TTY(t *testing.T) {
	origIsTTY := IsTTY
	origGetSize := GetSize

	defer func() {
		IsTTY = origIsTTY
		GetSize = origGetSize
	}()

	IsTTY = func(_ uintptr) bool { return true }
	GetSize = func(_ int) (width, height int, err error) {
		return 120, 40, nil
	}

	assert.Equal(t, 120, GetWidthFromWriter(&mockFdWriter{fd: 1}))
}

//nolint:paralleltest // Test modifies package globals (IsTTY)
func TestGetWidthFromWriter_NonTTY(t *testing.T) {
	origIsTTY := IsTTY

	defer func() { IsTTY = origIsTTY }()

	IsTTY = func(_ uintptr) bool { return false }

	assert.Equal(t, DefaultWidth, GetWidthFromWriter(&mockFdWriter{fd: 1}))
}

//nolint:paralleltest // Test modifies package globals (IsTTY, GetSize)
func TestGetWidthFromWriter_GetSizeError(t *testing.T) {
	origIsTTY := IsTTY
	origGetSize := GetSize

	defer func() {
		IsTTY = origIsTTY
		GetSize = origGetSize
	}()

	IsTTY = func(_ uintptr) bool { return true }
	GetSize = func(_ int) (width, height int, err error) {
		return 0, 0, errors.New("not a terminal")
	}

	assert.Equal(t, DefaultWidth, GetWidthFromWriter(&mockFdWriter{fd: 1}))
}

//nolint:paralleltest // Test modifies package globals (IsTTY)
func TestIsTerminal(t *testing.T) {
	origIsTTY := IsTTY

	defer func() { IsTTY = origIsTTY }()

	IsTTY = func(fd uintptr) bool { return fd == 0 }

	assert.True(t, IsTerminalReader(&mockFdWriter{fd: 0}))
	assert.False(t, IsTerminalReader(&mockFdWriter{fd: 3}))
	assert.False(t, IsTerminalReader(strings.NewReader("")))
}
