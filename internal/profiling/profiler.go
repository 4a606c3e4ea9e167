// Package profiling writes pprof CPU and heap profiles for the webhelpers
// command.
package profiling

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"runtime/pprof"
	"sync"
)

// Config names the profile outputs. An empty path disables that profile.
type Config struct {
	CPUProfilePath string
	MemProfilePath string
}

// Enabled reports whether any profile is requested.
func (c Config) Enabled() bool {
	return c.CPUProfilePath != "" || c.MemProfilePath != ""
}

// Session is an active profiling run. The CPU profile is recorded between
// Start and Stop; the heap profile is taken at Stop.
type Session struct {
	cfg     Config
	cpuFile *os.File
	once    sync.Once
	err     error
}

// Start begins a session. Only one CPU profile can run per process, so a
// second concurrent session with a CPU path fails.
func Start(cfg Config) (*Session, error) {
	s := &Session{cfg: cfg}
	if cfg.CPUProfilePath == "" {
		return s, nil
	}

	f, err := os.Create(cfg.CPUProfilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to create CPU profile file: %w", err)
	}
	if err := pprof.StartCPUProfile(f); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to start CPU profile: %w", err)
	}
	s.cpuFile = f
	return s, nil
}

// Stop ends the CPU profile and writes the heap profile. Later calls return
// the first call's result.
func (s *Session) Stop() error {
	s.once.Do(func() {
		var errs []error
		if s.cpuFile != nil {
			pprof.StopCPUProfile()
			if err := s.cpuFile.Close(); err != nil {
				errs = append(errs, fmt.Errorf("failed to close CPU profile file: %w", err))
			}
		}
		if s.cfg.MemProfilePath != "" {
			if err := WriteHeapProfile(s.cfg.MemProfilePath); err != nil {
				errs = append(errs, err)
			}
		}
		s.err = errors.Join(errs...)
	})
	return s.err
}

// WriteHeapProfile forces a GC and writes the heap profile to path.
func WriteHeapProfile(path string) error {
	runtime.GC()

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create memory profile file: %w", err)
	}
	defer f.Close()

	if err := pprof.WriteHeapProfile(f); err != nil {
		return fmt.Errorf("failed to write memory profile: %w", err)
	}
	return nil
}
