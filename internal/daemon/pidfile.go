// Package daemon keeps track of a running server through a PID file.
package daemon

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

var (
	// ErrAlreadyRunning indicates a live process already holds the PID file
	ErrAlreadyRunning = errors.New("server is already running")

	// ErrNotRunning indicates there is no PID file or its process has exited
	ErrNotRunning = errors.New("server is not running")
)

// PIDFile records the serving process so that a later "stop" can find it
type PIDFile struct {
	path string
}

// NewPIDFile creates a PID file manager for path
func NewPIDFile(path string) *PIDFile {
	return &PIDFile{path: path}
}

// Path returns the file location
func (p *PIDFile) Path() string {
	return p.path
}

// Acquire writes the current process ID.
// A file left behind by a process that has exited is replaced.
// Returns ErrAlreadyRunning if another live process holds it.
func (p *PIDFile) Acquire() error {
	if err := os.MkdirAll(filepath.Dir(p.path), 0755); err != nil {
		return fmt.Errorf("failed to create PID directory: %w", err)
	}

	for attempt := 0; attempt < 2; attempt++ {
		f, err := os.OpenFile(p.path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
		if err == nil {
			_, werr := fmt.Fprintf(f, "%d\n", os.Getpid())
			cerr := f.Close()
			if werr != nil || cerr != nil {
				os.Remove(p.path)
				return fmt.Errorf("failed to write PID file: %w", errors.Join(werr, cerr))
			}
			return nil
		}
		if !errors.Is(err, os.ErrExist) {
			return fmt.Errorf("failed to create PID file: %w", err)
		}

		pid, rerr := p.Read()
		if rerr == nil && pid != os.Getpid() && processExists(pid) {
			return fmt.Errorf("%w (pid %d, %s)", ErrAlreadyRunning, pid, p.path)
		}

		// stale or unreadable
		if err := os.Remove(p.path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove stale PID file: %w", err)
		}
	}

	return fmt.Errorf("%w: PID file %s keeps reappearing", ErrAlreadyRunning, p.path)
}

// Read returns the PID stored in the file
func (p *PIDFile) Read() (int, error) {
	content, err := os.ReadFile(p.path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, fmt.Errorf("%w: no PID file at %s", ErrNotRunning, p.path)
		}
		return 0, fmt.Errorf("failed to read PID file: %w", err)
	}

	pidStr := strings.TrimSpace(string(content))
	pid, err := strconv.Atoi(pidStr)
	if err != nil || pid <= 0 {
		return 0, fmt.Errorf("invalid PID in file: %q", pidStr)
	}

	return pid, nil
}

// Release removes the file if it still belongs to this process
func (p *PIDFile) Release() error {
	pid, err := p.Read()
	if err != nil {
		if errors.Is(err, ErrNotRunning) {
			return nil
		}
		return err
	}
	if pid != os.Getpid() {
		return nil
	}

	if err := os.Remove(p.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove PID file: %w", err)
	}
	return nil
}

// IsRunning reports whether the recorded process is alive
func (p *PIDFile) IsRunning() (bool, error) {
	pid, err := p.Read()
	if err != nil {
		if errors.Is(err, ErrNotRunning) {
			return false, nil
		}
		return false, err
	}

	return processExists(pid), nil
}

// Stop asks the recorded process to shut down and returns its PID
func (p *PIDFile) Stop() (int, error) {
	pid, err := p.Read()
	if err != nil {
		return 0, err
	}
	if !processExists(pid) {
		return pid, fmt.Errorf("%w: pid %d has exited", ErrNotRunning, pid)
	}

	return pid, terminateProcess(pid)
}
