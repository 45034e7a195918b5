package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/clrdiag/clrdiag/internal/config"
	"github.com/clrdiag/clrdiag/internal/dotnet"
	"github.com/clrdiag/clrdiag/internal/trace"
	"github.com/clrdiag/clrdiag/utils"
)

var traceCmd = &cobra.Command{
	Use:   "trace",
	Short: "Analyze CPU traces",
}

var traceTopCmd = &cobra.Command{
	Use:               "top <pid|nettrace-file>",
	Short:             "Show the hottest functions from a CPU trace",
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: utils.CompleteFilesByExtension([]string{".nettrace"}, false),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cmd.Flags())
		if err != nil {
			return err
		}
		tools := dotnet.NewToolset(cfg)

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()

		tracePath := args[0]
		if pid, err := strconv.Atoi(args[0]); err == nil && pid > 0 {
			outPath := filepath.Join(os.TempDir(),
				fmt.Sprintf("clrdiag_trace_%d_%d.nettrace", pid, time.Now().UnixNano()))
			defer os.Remove(outPath)

			seconds := int(cfg.GetTraceDuration().Seconds())
			fmt.Printf("Recording CPU trace of PID %d for %ds...\n", pid, seconds)
			if err := tools.CollectTrace(ctx, pid, seconds, outPath); err != nil {
				return fmt.Errorf("failed to collect trace: %w", err)
			}
			tracePath = outPath
		}

		report, err := tools.ReportTraceTop(ctx, tracePath, cfg.TopN)
		if err != nil {
			return fmt.Errorf("failed to read trace report: %w", err)
		}

		entries := trace.ParseTopReport(report)
		if len(entries) == 0 {
			fmt.Println("No application functions in trace")
			return nil
		}

		fmt.Printf("%8s %8s  %s\n", "Incl %", "Excl %", "Function")
		for _, e := range entries {
			fmt.Printf("%8.2f %8.2f  %s\n", e.InclusivePercent, e.ExclusivePercent, e.Function)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(traceCmd)

	traceCmd.AddCommand(traceTopCmd)

	traceTopCmd.Flags().Int("trace-seconds", 10, "CPU trace duration in seconds")
	traceTopCmd.Flags().IntP("top-n", "n", 10, "Number of hot functions to show")
}
