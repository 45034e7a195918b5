package dotnet

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Analyzer runs SOS commands against some core dump and reports which dump
// path the commands execute against.
type Analyzer interface {
	Analyze(ctx context.Context, commands ...string) ([]string, error)
	Path() string
}

// DumpFile is an Analyzer over an existing dump file on disk.
type DumpFile struct {
	Tools    *Toolset
	DumpPath string
}

func (d *DumpFile) Analyze(ctx context.Context, commands ...string) ([]string, error) {
	return d.Tools.Analyze(ctx, d.DumpPath, commands...)
}

func (d *DumpFile) Path() string { return d.DumpPath }

// DumpSession is an Analyzer over a live process: it captures a core dump on
// first use and reuses it across queries for as long as the file survives on
// disk. Readers share the dump concurrently; recapture is exclusive, so a
// regeneration can never race an in-flight analyzer query against the same
// path.
type DumpSession struct {
	mu       sync.RWMutex
	pid      int
	tools    *Toolset
	dumpPath string
}

func NewDumpSession(tools *Toolset, pid int) *DumpSession {
	return &DumpSession{pid: pid, tools: tools}
}

func (s *DumpSession) Analyze(ctx context.Context, commands ...string) ([]string, error) {
	if err := s.ensure(ctx); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tools.Analyze(ctx, s.dumpPath, commands...)
}

func (s *DumpSession) Path() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dumpPath
}

// ensure captures a dump if none exists or the previous one was removed.
func (s *DumpSession) ensure(ctx context.Context) error {
	s.mu.RLock()
	ok := s.dumpPath != "" && fileExists(s.dumpPath)
	s.mu.RUnlock()
	if ok {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Another caller may have captured while we waited for the lock.
	if s.dumpPath != "" && fileExists(s.dumpPath) {
		return nil
	}

	path := filepath.Join(os.TempDir(),
		fmt.Sprintf("clrdiag_dump_%d_%s", s.pid, time.Now().Format("20060102_150405")))
	if err := s.tools.CollectDump(ctx, s.pid, path); err != nil {
		return err
	}

	s.dumpPath = path
	return nil
}

// Release deletes the captured dump. The next query recaptures on demand.
func (s *DumpSession) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.dumpPath != "" {
		os.Remove(s.dumpPath)
		s.dumpPath = ""
	}
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
