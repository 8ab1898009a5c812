// Package statelog publishes the current phase of an update run to a file
// that other processes can poll.
package statelog

import (
	"fmt"
	"os"
	"path/filepath"
)

// State names a phase of an update run.
type State string

// Phases in the order a run passes through them.
const (
	Startup State = "startup"
	GetList State = "get list"
	Examine State = "examine"
	Install State = "install"
	Done    State = "done"
	Error   State = "error"
)

// FileName is the state file inside the dump directory.
const FileName = "state"

// Dumper writes states into Dir when Enabled.
type Dumper struct {
	Dir     string
	Enabled bool
}

// Path returns the file Dump writes.
func (d *Dumper) Path() string {
	return filepath.Join(d.Dir, FileName)
}

// Dump replaces the state file content with s. It does nothing when disabled.
func (d *Dumper) Dump(s State) error {
	if d == nil || !d.Enabled {
		return nil
	}

	if err := os.MkdirAll(d.Dir, 0o755); err != nil { //nolint:mnd
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	tmp := d.Path() + ".tmp"
	if err := os.WriteFile(tmp, []byte(string(s)+"\n"), 0o644); err != nil { //nolint:gosec,mnd // Readable by pollers
		return fmt.Errorf("failed to write state: %w", err)
	}

	if err := os.Rename(tmp, d.Path()); err != nil {
		_ = os.Remove(tmp)

		return fmt.Errorf("failed to write state: %w", err)
	}

	return nil
}
