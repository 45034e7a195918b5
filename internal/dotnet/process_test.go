package dotnet

import "testing"

func TestParseProcessList(t *testing.T) {
	output := `
  12345  myservice       /usr/share/dotnet/dotnet   /usr/share/dotnet/dotnet /app/myservice.dll
  23456  dotnet-trace    /root/.dotnet/tools/dotnet-trace   dotnet-trace ps
  34567  worker          /usr/share/dotnet/dotnet   /usr/share/dotnet/dotnet /app/worker.dll --queue jobs
  garbage line without a pid
`

	processes := parseProcessList(output)

	if len(processes) != 2 {
		t.Fatalf("processes = %d, want 2: %+v", len(processes), processes)
	}

	if processes[0].PID != 12345 || processes[0].Name != "myservice" {
		t.Errorf("processes[0] = %+v", processes[0])
	}
	if processes[0].Path != "/usr/share/dotnet/dotnet" {
		t.Errorf("processes[0].Path = %q", processes[0].Path)
	}

	if processes[1].PID != 34567 {
		t.Errorf("processes[1] = %+v", processes[1])
	}
	if processes[1].CommandLine != "/usr/share/dotnet/dotnet /app/worker.dll --queue jobs" {
		t.Errorf("processes[1].CommandLine = %q", processes[1].CommandLine)
	}
}

func TestShouldSkipProcess(t *testing.T) {
	for _, name := range []string{"dotnet-counters", "dotnet-gcdump", "clrdiag", ""} {
		if !shouldSkipProcess(name) {
			t.Errorf("shouldSkipProcess(%q) = false, want true", name)
		}
	}
	if shouldSkipProcess("myservice") {
		t.Error("shouldSkipProcess(myservice) = true, want false")
	}
}
