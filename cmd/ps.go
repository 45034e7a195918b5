package cmd

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/clrdiag/clrdiag/internal/config"
	"github.com/clrdiag/clrdiag/internal/dotnet"
)

var psCmd = &cobra.Command{
	Use:   "ps",
	Short: "List running .NET processes",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cmd.Flags())
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		processes, err := dotnet.DiscoverProcesses(ctx, dotnet.NewToolset(cfg))
		if err != nil {
			return fmt.Errorf("failed to discover processes: %w", err)
		}

		if len(processes) == 0 {
			fmt.Println("No .NET processes found")
			return nil
		}

		sort.Slice(processes, func(i, j int) bool {
			return processes[i].PID < processes[j].PID
		})

		fmt.Printf("%8s  %-28s %s\n", "PID", "Name", "Path")
		for _, proc := range processes {
			fmt.Printf("%8d  %-28s %s\n", proc.PID, proc.Name, proc.Path)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(psCmd)
}
