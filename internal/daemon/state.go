package daemon

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"golang.org/x/sys/unix"
)

// State is the on-disk record of a running daemon, written next to the
// config so `daemon status` and `daemon stop` can find the process.
type State struct {
	PID       int       `toml:"pid"`
	UserID    string    `toml:"user_id"`
	StartedAt time.Time `toml:"started_at"`
	LogFile   string    `toml:"log_file"`
}

// WriteState records the current process as the running daemon.
func WriteState(path, userID, logFile string) error {
	state := State{
		PID:       os.Getpid(),
		UserID:    userID,
		StartedAt: time.Now().UTC(),
		LogFile:   logFile,
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create state file: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(state); err != nil {
		return fmt.Errorf("failed to encode state file: %w", err)
	}
	return nil
}

// ReadState loads the daemon state file. Returns (nil, nil) when no state
// file exists.
func ReadState(path string) (*State, error) {
	var state State
	if _, err := toml.DecodeFile(path, &state); err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read state file: %w", err)
	}
	return &state, nil
}

// RemoveState deletes the state file. Missing files are not an error.
func RemoveState(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove state file: %w", err)
	}
	return nil
}

// Alive reports whether the recorded process is still running, via the
// zero-signal probe.
func (s *State) Alive() bool {
	if s == nil || s.PID <= 0 {
		return false
	}
	return unix.Kill(s.PID, 0) == nil
}

// Signal sends sig to the recorded process.
func (s *State) Signal(sig unix.Signal) error {
	if s == nil || s.PID <= 0 {
		return fmt.Errorf("no daemon process recorded")
	}
	if err := unix.Kill(s.PID, sig); err != nil {
		return fmt.Errorf("failed to signal pid %d: %w", s.PID, err)
	}
	return nil
}
