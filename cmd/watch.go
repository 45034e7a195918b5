package cmd

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/clrdiag/clrdiag/internal/config"
	"github.com/clrdiag/clrdiag/internal/dotnet"
	"github.com/clrdiag/clrdiag/internal/monitor"
)

var watchCmd = &cobra.Command{
	Use: "watch [PID]",
	Short: `Watch provides real-time monitoring of .NET application performance including:
- CPU usage, working set, and GC heap size charts
- Heap snapshots with per-type growth deltas
- CPU hot paths from short traces

The tool discovers running .NET processes via dotnet-trace and monitors the
selected one through a dotnet-counters collection session.

Examples:
  clrdiag watch           				# Interactive process selection
  clrdiag watch <TAB>                   # Tab completion with PID and process name
  clrdiag watch 1234                    # Monitor process ID 1234`,
	Args: cobra.MaximumNArgs(1),
	ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		// Already provided (single) argument, don't offer completions
		if len(args) != 0 {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}

		cfg, err := config.Load(nil)
		if err != nil {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		processes, err := dotnet.DiscoverProcesses(ctx, dotnet.NewToolset(cfg))
		if err != nil {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}

		var completions []string
		for _, proc := range processes {
			option := fmt.Sprintf("%d\t%s", proc.PID, proc.Name)
			completions = append(completions, option)
		}

		return completions, cobra.ShellCompDirectiveNoFileComp
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cmd.Flags())
		if err != nil {
			return err
		}

		pid := 0
		if len(args) > 0 {
			pid, err = strconv.Atoi(args[0])
			if err != nil || pid <= 0 {
				return fmt.Errorf("invalid argument '%s': must be a PID", args[0])
			}
		}

		if err := monitor.StartTUI(cfg, pid); err != nil {
			return fmt.Errorf("unable to start TUI: %w", err)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().IntP("interval", "i", 1000, "Update interval in ms")
	watchCmd.Flags().Int("trace-seconds", 10, "CPU trace duration in seconds")
	watchCmd.Flags().IntP("top-n", "n", 10, "Number of hot functions to show")
}
