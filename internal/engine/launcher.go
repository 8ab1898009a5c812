package engine

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"sync"
	"time"
)

const (
	connectTimeout = 5 * time.Second
	retryDelay     = 100 * time.Millisecond
)

// processSpawner starts the engine process.
type processSpawner interface {
	Spawn(command []string) error
}

// execSpawner starts the engine detached from the caller.
type execSpawner struct{}

func (execSpawner) Spawn(command []string) error {
	cmd := exec.Command(command[0], command[1:]...) //nolint:gosec // Command comes from the configuration file
	cmd.Stdout = nil
	cmd.Stderr = nil
	cmd.Stdin = nil

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start engine process: %w", err)
	}

	if err := cmd.Process.Release(); err != nil {
		return fmt.Errorf("failed to release engine process: %w", err)
	}

	return nil
}

// LauncherOption configures a Launcher.
type LauncherOption func(*Launcher)

// WithAutoStartDisabled disables automatic engine startup.
func WithAutoStartDisabled() LauncherOption {
	return func(l *Launcher) {
		l.autoStartDisabled = true
	}
}

// WithCommand sets the command line that starts the engine.
func WithCommand(command string) LauncherOption {
	return func(l *Launcher) {
		l.command = strings.Fields(command)
	}
}

func withSpawner(s processSpawner) LauncherOption {
	return func(l *Launcher) {
		l.spawner = s
	}
}

func withConnectTimeout(d time.Duration) LauncherOption {
	return func(l *Launcher) {
		l.connectTimeout = d
	}
}

// Launcher makes sure the engine runs before calls reach it.
type Launcher struct {
	client            *Client
	command           []string
	spawner           processSpawner
	autoStartDisabled bool
	connectTimeout    time.Duration

	mu      sync.Mutex
	running bool
}

// NewLauncher creates a launcher for the engine on socketPath.
func NewLauncher(socketPath string, opts ...LauncherOption) *Launcher {
	l := &Launcher{
		client:         NewClient(socketPath),
		spawner:        execSpawner{},
		connectTimeout: connectTimeout,
	}
	for _, opt := range opts {
		opt(l)
	}

	return l
}

// Client returns the underlying client.
func (l *Launcher) Client() *Client {
	return l.client
}

// EnsureRunning pings the engine and starts it if necessary.
func (l *Launcher) EnsureRunning(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.running {
		return nil
	}

	if err := l.client.Ping(ctx); err == nil {
		l.running = true

		return nil
	}

	if err := l.startProcess(); err != nil {
		return fmt.Errorf("failed to start engine: %w", err)
	}

	ticker := time.NewTicker(retryDelay)
	defer ticker.Stop()

	deadline := time.Now().Add(l.connectTimeout)
	for time.Now().Before(deadline) {
		if err := l.client.Ping(ctx); err == nil {
			l.running = true

			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}

	return errors.New("engine did not start within timeout")
}

// Call makes sure the engine runs and forwards the call.
func (l *Launcher) Call(ctx context.Context, method string, args ...any) (Values, error) {
	if err := l.EnsureRunning(ctx); err != nil {
		return nil, err
	}

	return l.client.Call(ctx, method, args...)
}

func (l *Launcher) startProcess() error {
	if l.autoStartDisabled || len(l.command) == 0 {
		return fmt.Errorf("%w at %s and auto-start is disabled", ErrNotConnected, l.client.SocketPath())
	}

	return l.spawner.Spawn(l.command)
}
