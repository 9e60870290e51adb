// Package lock guards the preference store with a pid lockfile so that only
// one nightshift daemon owns it.
package lock

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/mitchellh/go-ps"

	"github.com/julianstephens/nightshift/internal/constants"
	"github.com/julianstephens/nightshift/internal/logger"
)

var (
	findProcessFunc = ps.FindProcess
	getpidFunc      = os.Getpid
)

// ErrHeld is returned when a live nightshift process owns the lockfile
var ErrHeld = errors.New("store is locked by another nightshift process")

// Lock is a held lockfile
type Lock struct {
	path string
	pid  int
}

// Owner describes the process recorded in a lockfile
type Owner struct {
	PID       int
	StartedAt time.Time
	Alive     bool
}

// Acquire creates the lockfile at path. A lockfile left behind by a process
// that is gone, or that is not nightshift, is replaced.
func Acquire(path string) (*Lock, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create lock directory: %w", err)
	}

	pid := getpidFunc()
	for attempt := 0; attempt < 2; attempt++ {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0600)
		if err == nil {
			_, werr := fmt.Fprintf(f, "%d|%d", pid, time.Now().Unix())
			cerr := f.Close()
			if werr != nil || cerr != nil {
				os.Remove(path)
				return nil, fmt.Errorf("failed to write lockfile: %w", errors.Join(werr, cerr))
			}
			return &Lock{path: path, pid: pid}, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return nil, fmt.Errorf("failed to create lockfile: %w", err)
		}

		owner, err := Inspect(path)
		if err == nil && owner.Alive {
			return nil, fmt.Errorf("%w (pid %d)", ErrHeld, owner.PID)
		}
		logger.Warn("Removing stale lockfile", "path", path)
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to remove stale lockfile: %w", err)
		}
	}
	return nil, fmt.Errorf("failed to acquire lockfile %s", path)
}

// Inspect parses the lockfile at path and checks whether its owner is still
// a running nightshift process
func Inspect(path string) (Owner, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Owner{}, err
	}

	parts := strings.Split(strings.TrimSpace(string(content)), "|")
	if len(parts) != 2 {
		return Owner{}, errors.New("lockfile is malformed")
	}
	pid, err := strconv.Atoi(parts[0])
	if err != nil || pid <= 0 {
		return Owner{}, errors.New("invalid process ID in lockfile")
	}
	started, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return Owner{}, errors.New("invalid start time in lockfile")
	}

	owner := Owner{PID: pid, StartedAt: time.Unix(started, 0)}
	process, err := findProcessFunc(pid)
	if err == nil && process != nil && strings.HasPrefix(process.Executable(), constants.AppName) {
		owner.Alive = true
	}
	return owner, nil
}

// Release removes the lockfile if it still belongs to this lock
func (l *Lock) Release() error {
	if l == nil {
		return nil
	}
	owner, err := Inspect(l.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err == nil && owner.PID != l.pid {
		return nil
	}
	if err := os.Remove(l.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove lockfile: %w", err)
	}
	return nil
}

func (l *Lock) Path() string {
	return l.path
}
