package pidfile

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"syscall"
	"time"
)

// ErrAlreadyRunning is returned by Acquire while another live bot holds the file
var ErrAlreadyRunning = errors.New("bot is already running")

const pollInterval = 100 * time.Millisecond

// Holder describes the bot recorded in a PID file
type Holder struct {
	PID   int
	RunID string
}

// PIDFile is a lock file keeping a second bot from trading the same Steam account.
// The file holds the owner's PID on the first line and its run id on the second.
type PIDFile struct {
	path string
}

// New returns a PIDFile at path. Nothing is touched until Acquire.
func New(path string) *PIDFile {
	return &PIDFile{path: path}
}

// Acquire claims the file for this process. A file left behind by a dead process,
// or one that cannot be parsed, is taken over.
func (p *PIDFile) Acquire(runID string) error {
	for attempt := 0; attempt < 2; attempt++ {
		f, err := os.OpenFile(p.path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			_, werr := fmt.Fprintf(f, "%d\n%s\n", os.Getpid(), runID)
			if cerr := f.Close(); werr == nil {
				werr = cerr
			}
			if werr != nil {
				_ = os.Remove(p.path)
				return fmt.Errorf("failed to write PID file: %w", werr)
			}
			return nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("failed to create PID file: %w", err)
		}

		holder, err := p.Holder()
		if err == nil && alive(holder.PID) {
			return fmt.Errorf("%w (PID %d, run %s)", ErrAlreadyRunning, holder.PID, holder.RunID)
		}
		_ = os.Remove(p.path)
	}
	return fmt.Errorf("failed to acquire PID file %s", p.path)
}

// Release removes the file. A file that is already gone is not an error.
func (p *PIDFile) Release() error {
	if err := os.Remove(p.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove PID file: %w", err)
	}
	return nil
}

// Holder reads the file
func (p *PIDFile) Holder() (Holder, error) {
	f, err := os.Open(p.path)
	if err != nil {
		return Holder{}, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	if !scanner.Scan() {
		return Holder{}, fmt.Errorf("empty PID file")
	}
	pid, err := strconv.Atoi(strings.TrimSpace(scanner.Text()))
	if err != nil || pid <= 0 {
		return Holder{}, fmt.Errorf("malformed PID file: %q", scanner.Text())
	}

	holder := Holder{PID: pid}
	if scanner.Scan() {
		holder.RunID = strings.TrimSpace(scanner.Text())
	}
	return holder, nil
}

// KillExisting asks the recorded bot to stop with SIGTERM. That bot cancels its
// own buy orders while exiting, so it gets up to timeout before SIGKILL.
func (p *PIDFile) KillExisting(timeout time.Duration) error {
	holder, err := p.Holder()
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil || holder.PID == os.Getpid() || !alive(holder.PID) {
		return p.Release()
	}

	process, err := os.FindProcess(holder.PID)
	if err != nil {
		return fmt.Errorf("failed to find process %d: %w", holder.PID, err)
	}
	if err := process.Signal(syscall.SIGTERM); err != nil {
		return fmt.Errorf("failed to signal process %d: %w", holder.PID, err)
	}

	if !waitForExit(holder.PID, timeout) {
		if err := process.Signal(syscall.SIGKILL); err != nil && alive(holder.PID) {
			return fmt.Errorf("failed to kill process %d: %w", holder.PID, err)
		}
	}
	return p.Release()
}

func waitForExit(pid int, timeout time.Duration) bool {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	deadline := time.After(timeout)

	for alive(pid) {
		select {
		case <-deadline:
			return false
		case <-ticker.C:
		}
	}
	return true
}

// alive probes pid with signal 0. EPERM means the process exists under another user.
func alive(pid int) bool {
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	err = process.Signal(syscall.Signal(0))
	return err == nil || errors.Is(err, syscall.EPERM)
}
