package counters

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"time"

	"github.com/clrdiag/clrdiag/internal/dotnet"
)

// State tracks one collection session against one target process.
type State int

const (
	StateIdle State = iota
	StateCollecting
	StateStopped
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateCollecting:
		return "collecting"
	case StateStopped:
		return "stopped"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Session owns one dotnet-counters collection: the spawned tool, its output
// file, and the accumulated samples. All state is per session; nothing is
// shared across targets.
type Session struct {
	mu      sync.RWMutex
	state   State
	err     error
	samples []Sample

	pid        int
	tools      *dotnet.Toolset
	outputPath string
	cmd        *exec.Cmd
	reader     *Reader
	stopChan   chan struct{}
}

func NewSession(tools *dotnet.Toolset, pid int) *Session {
	return &Session{
		pid:   pid,
		tools: tools,
		outputPath: filepath.Join(os.TempDir(),
			fmt.Sprintf("clrdiag_counters_%d_%d.json", pid, time.Now().UnixNano())),
		stopChan: make(chan struct{}),
	}
}

// Start spawns dotnet-counters and begins polling its output file once per
// second.
func (s *Session) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateIdle {
		return fmt.Errorf("collection already started for pid %d", s.pid)
	}

	cmd, err := s.tools.StartCounterCollection(s.pid, s.outputPath)
	if err != nil {
		s.state = StateFailed
		s.err = err
		return err
	}

	s.cmd = cmd
	s.reader = NewReader(s.outputPath)
	s.state = StateCollecting

	go s.watchProcess()
	go s.pollLoop()

	return nil
}

// Stop ends collection. The poll loop halts and the tool is interrupted;
// the output file is released once the tool exits.
func (s *Session) Stop() {
	s.mu.Lock()
	if s.state != StateCollecting {
		s.mu.Unlock()
		return
	}
	s.state = StateStopped
	close(s.stopChan)
	cmd := s.cmd
	s.mu.Unlock()

	if cmd != nil && cmd.Process != nil {
		cmd.Process.Signal(os.Interrupt)
	}
}

func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Session) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

// Samples returns a copy of every sample collected so far.
func (s *Session) Samples() []Sample {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Sample, len(s.samples))
	copy(out, s.samples)
	return out
}

// Latest returns the most recent sample, if any.
func (s *Session) Latest() (Sample, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.samples) == 0 {
		return Sample{}, false
	}
	return s.samples[len(s.samples)-1], true
}

func (s *Session) watchProcess() {
	err := s.cmd.Wait()

	s.mu.Lock()
	if s.state == StateCollecting {
		s.state = StateFailed
		if err != nil {
			s.err = fmt.Errorf("counter collection exited: %w", err)
		} else {
			s.err = fmt.Errorf("counter collection exited before stop")
		}
	}
	s.mu.Unlock()

	os.Remove(s.outputPath)
}

func (s *Session) pollLoop() {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.poll()
		}
	}
}

func (s *Session) poll() {
	s.mu.RLock()
	reader := s.reader
	collecting := s.state == StateCollecting
	s.mu.RUnlock()

	if !collecting {
		return
	}

	// Read errors are expected while the tool is still creating the file.
	samples, err := reader.Poll()
	if err != nil || len(samples) == 0 {
		return
	}

	s.mu.Lock()
	s.samples = append(s.samples, samples...)
	s.mu.Unlock()
}
