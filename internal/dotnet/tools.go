package dotnet

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/clrdiag/clrdiag/internal/config"
	"github.com/clrdiag/clrdiag/internal/sos"
)

// Toolset invokes the dotnet diagnostic CLI tools. Each invocation is a
// one-shot external process; all long-lived state lives with the caller.
type Toolset struct {
	Counters string
	GCDump   string
	Dump     string
	Trace    string
}

func NewToolset(cfg *config.Config) *Toolset {
	return &Toolset{
		Counters: cfg.CountersTool,
		GCDump:   cfg.GCDumpTool,
		Dump:     cfg.DumpTool,
		Trace:    cfg.TraceTool,
	}
}

// run executes one tool to completion and returns its stdout. Tools are
// resolved per call so a tool installed mid-session is picked up without a
// restart.
func (t *Toolset) run(ctx context.Context, tool string, args ...string) (string, error) {
	path, err := exec.LookPath(tool)
	if err != nil {
		return "", fmt.Errorf("%s not found: %w (install with: dotnet tool install --global %s)",
			tool, err, tool)
	}

	cmd := exec.CommandContext(ctx, path, args...)
	output, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return "", fmt.Errorf("%s failed: %s", tool, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return "", fmt.Errorf("failed to execute %s: %w", tool, err)
	}

	return string(output), nil
}

// Analyze runs SOS commands against a core dump via dotnet-dump analyze and
// returns the banner-stripped output lines.
func (t *Toolset) Analyze(ctx context.Context, dumpPath string, commands ...string) ([]string, error) {
	args := []string{"analyze", dumpPath}
	for _, c := range commands {
		args = append(args, "-c", c)
	}
	args = append(args, "-c", "exit")

	output, err := t.run(ctx, t.Dump, args...)
	if err != nil {
		return nil, err
	}
	return sos.Clean(output), nil
}

// CollectDump captures a full core dump of the target process. The dump is
// what dumpobj/gcroot drill-down queries run against.
func (t *Toolset) CollectDump(ctx context.Context, pid int, outPath string) error {
	_, err := t.run(ctx, t.Dump, "collect", "-p", strconv.Itoa(pid), "-o", outPath)
	if err != nil {
		return fmt.Errorf("dump collection for pid %d: %w", pid, err)
	}
	return nil
}

// CollectGCDump captures a GC heap snapshot of the target process.
func (t *Toolset) CollectGCDump(ctx context.Context, pid int, outPath string) error {
	_, err := t.run(ctx, t.GCDump, "collect", "-p", strconv.Itoa(pid), "-o", outPath)
	if err != nil {
		return fmt.Errorf("gcdump collection for pid %d: %w", pid, err)
	}
	return nil
}

// ReportGCDump renders a previously captured gcdump as the textual per-type
// report consumed by heap.ParseHeapReport.
func (t *Toolset) ReportGCDump(ctx context.Context, gcdumpPath string) (string, error) {
	output, err := t.run(ctx, t.GCDump, "report", gcdumpPath)
	if err != nil {
		return "", fmt.Errorf("gcdump report for %s: %w", gcdumpPath, err)
	}
	return output, nil
}

// CollectTrace records CPU samples from the target process for the given
// number of seconds.
func (t *Toolset) CollectTrace(ctx context.Context, pid, seconds int, outPath string) error {
	duration := fmt.Sprintf("00:%02d:%02d", seconds/60, seconds%60)
	_, err := t.run(ctx, t.Trace, "collect",
		"-p", strconv.Itoa(pid), "--duration", duration, "-o", outPath)
	if err != nil {
		return fmt.Errorf("trace collection for pid %d: %w", pid, err)
	}
	return nil
}

// ReportTraceTop renders the ranked top-N function report consumed by
// trace.ParseTopReport.
func (t *Toolset) ReportTraceTop(ctx context.Context, tracePath string, n int) (string, error) {
	output, err := t.run(ctx, t.Trace, "report", tracePath, "topN", "-n", strconv.Itoa(n))
	if err != nil {
		return "", fmt.Errorf("trace report for %s: %w", tracePath, err)
	}
	return output, nil
}

// StartCounterCollection launches dotnet-counters in the background, writing
// its JSON event log to outPath. The caller owns the returned process and
// the output file.
func (t *Toolset) StartCounterCollection(pid int, outPath string) (*exec.Cmd, error) {
	path, err := exec.LookPath(t.Counters)
	if err != nil {
		return nil, fmt.Errorf("%s not found: %w (install with: dotnet tool install --global %s)",
			t.Counters, err, t.Counters)
	}

	cmd := exec.Command(path, "collect",
		"-p", strconv.Itoa(pid),
		"--format", "json",
		"-o", outPath,
		"--refresh-interval", "1")
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start %s: %w", t.Counters, err)
	}
	return cmd, nil
}

// ListProcesses returns the raw dotnet-trace ps output.
func (t *Toolset) ListProcesses(ctx context.Context) (string, error) {
	output, err := t.run(ctx, t.Trace, "ps")
	if err != nil {
		return "", fmt.Errorf("process discovery: %w", err)
	}
	return output, nil
}
