package dotnet

import (
	"bufio"
	"context"
	"strconv"
	"strings"
)

// DotnetProcess is one candidate target found by process discovery.
type DotnetProcess struct {
	PID         int
	Name        string
	Path        string
	CommandLine string
}

// DiscoverProcesses lists running .NET processes via dotnet-trace ps.
func DiscoverProcesses(ctx context.Context, tools *Toolset) ([]*DotnetProcess, error) {
	output, err := tools.ListProcesses(ctx)
	if err != nil {
		return nil, err
	}
	return parseProcessList(output), nil
}

// parseProcessList parses dotnet-trace ps output:
//
//	12345  myapp  /usr/share/dotnet/dotnet  /usr/share/dotnet/dotnet /app/myapp.dll
func parseProcessList(output string) []*DotnetProcess {
	var processes []*DotnetProcess

	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		parts := strings.Fields(line)
		if len(parts) < 2 {
			continue
		}

		pid, err := strconv.Atoi(parts[0])
		if err != nil {
			continue
		}

		name := parts[1]
		if shouldSkipProcess(name) {
			continue
		}

		proc := &DotnetProcess{
			PID:  pid,
			Name: name,
		}
		if len(parts) > 2 {
			proc.Path = parts[2]
		}
		if len(parts) > 3 {
			proc.CommandLine = strings.Join(parts[3:], " ")
		}

		processes = append(processes, proc)
	}

	return processes
}

func shouldSkipProcess(name string) bool {
	name = strings.TrimSpace(name)
	if name == "" {
		return true
	}

	// The diagnostic tooling itself is never a useful target.
	skipPatterns := []string{
		"dotnet-trace",
		"dotnet-counters",
		"dotnet-gcdump",
		"dotnet-dump",
		"clrdiag",
	}
	for _, pattern := range skipPatterns {
		if strings.Contains(name, pattern) {
			return true
		}
	}

	return false
}
