package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/clrdiag/clrdiag/internal/config"
	"github.com/clrdiag/clrdiag/internal/dotnet"
	"github.com/clrdiag/clrdiag/internal/heap"
	"github.com/clrdiag/clrdiag/internal/sos"
	"github.com/clrdiag/clrdiag/utils"
)

var (
	baselineFile string
	showRoots    bool
)

var heapCmd = &cobra.Command{
	Use:   "heap",
	Short: "Analyze managed heap contents",
}

var heapReportCmd = &cobra.Command{
	Use:               "report <pid|gcdump-file>",
	Short:             "Aggregate heap contents by type",
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: utils.CompleteFilesByExtension([]string{".gcdump"}, false),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cmd.Flags())
		if err != nil {
			return err
		}
		tools := dotnet.NewToolset(cfg)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		current, err := loadHeapAggregates(ctx, tools, args[0])
		if err != nil {
			return err
		}

		if baselineFile == "" {
			printHeapReport(current)
			return nil
		}

		baseline, err := loadHeapAggregates(ctx, tools, baselineFile)
		if err != nil {
			return fmt.Errorf("failed to load baseline: %w", err)
		}

		printHeapDeltas(heap.ComputeDeltas(current, baseline))
		return nil
	},
}

var heapScanCmd = &cobra.Command{
	Use:   "scan <dump-file> <type-name>",
	Short: "List heap objects of a type with their addresses and sizes",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cmd.Flags())
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		inspector := heap.NewInspector(&dotnet.DumpFile{
			Tools:    dotnet.NewToolset(cfg),
			DumpPath: args[0],
		})

		refs, err := inspector.ScanType(ctx, args[1])
		if err != nil {
			return fmt.Errorf("heap scan failed: %w", err)
		}

		if len(refs) == 0 {
			fmt.Printf("No objects of type %s found\n", args[1])
			return nil
		}

		fmt.Printf("%-18s %12s\n", "Address", "Size")
		var total int64
		for _, ref := range refs {
			fmt.Printf("%-18s %12d\n", ref.Address, ref.Size)
			total += ref.Size
		}
		fmt.Printf("\n%d objects, %s total\n", len(refs), utils.MemorySize(total))
		return nil
	},
}

var heapInspectCmd = &cobra.Command{
	Use:   "inspect <dump-file> <address>",
	Short: "Dump one object with resolved field types and decoded values",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cmd.Flags())
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		inspector := heap.NewInspector(&dotnet.DumpFile{
			Tools:    dotnet.NewToolset(cfg),
			DumpPath: args[0],
		})

		if showRoots {
			report, roots, err := inspector.ObjectWithRoots(ctx, args[1])
			if err != nil {
				return fmt.Errorf("object inspection failed: %w", err)
			}
			printObjectReport(report)
			fmt.Println("\nGC roots:")
			if len(roots) == 0 {
				fmt.Println("  (none found)")
			}
			for _, line := range roots {
				fmt.Printf("  %s\n", line)
			}
			return nil
		}

		printObjectReport(inspector.Object(ctx, args[1]))
		return nil
	},
}

// loadHeapAggregates produces per-type aggregates from a PID (capturing a
// fresh gcdump), a .gcdump file, or a previously saved report file.
func loadHeapAggregates(ctx context.Context, tools *dotnet.Toolset, target string) ([]heap.TypeAggregate, error) {
	if pid, err := strconv.Atoi(target); err == nil && pid > 0 {
		outPath := filepath.Join(os.TempDir(),
			fmt.Sprintf("clrdiag_gcdump_%d_%d.gcdump", pid, time.Now().UnixNano()))
		defer os.Remove(outPath)

		if err := tools.CollectGCDump(ctx, pid, outPath); err != nil {
			return nil, fmt.Errorf("failed to capture gcdump: %w", err)
		}
		report, err := tools.ReportGCDump(ctx, outPath)
		if err != nil {
			return nil, err
		}
		return heap.ParseHeapReport(report), nil
	}

	if strings.HasSuffix(target, ".gcdump") {
		report, err := tools.ReportGCDump(ctx, target)
		if err != nil {
			return nil, err
		}
		return heap.ParseHeapReport(report), nil
	}

	// Saved text report
	content, err := os.ReadFile(target)
	if err != nil {
		return nil, err
	}
	return heap.ParseHeapReport(string(content)), nil
}

func printHeapReport(aggregates []heap.TypeAggregate) {
	fmt.Printf("%12s %14s  %s\n", "Count", "Bytes", "Type")
	for _, a := range aggregates {
		fmt.Printf("%12d %14d  %s\n", a.Count, a.Bytes, a.Type)
	}
	fmt.Printf("\n%d types\n", len(aggregates))
}

func printHeapDeltas(deltas []heap.TypeAggregateDelta) {
	fmt.Printf("%12s %10s %14s %12s  %s\n", "Count", "ΔCount", "Bytes", "ΔBytes", "Type")
	for _, d := range deltas {
		fmt.Printf("%12d %+10d %14d %+12d  %s\n", d.Count, d.CountDelta, d.Bytes, d.BytesDelta, d.Type)
	}
	fmt.Printf("\n%d types\n", len(deltas))
}

func printObjectReport(report *sos.ObjectReport) {
	for _, line := range report.Header {
		fmt.Println(line)
	}

	if len(report.Fields) == 0 {
		return
	}

	fmt.Printf("\n%-16s %-8s %-40s %-9s %-18s %s\n", "MT", "Offset", "Type", "Attr", "Value", "Name")
	for _, f := range report.Fields {
		value := f.Value
		if f.IsPrimitive && f.Decoded != "" {
			value = f.Decoded
		}
		name := f.Name
		if f.IsReference {
			name += " →"
		}
		fmt.Printf("%-16s %-8s %-40s %-9s %-18s %s\n",
			f.MethodTable, f.Offset, f.Type, attrString(f), value, name)
	}
}

func attrString(f sos.ObjectField) string {
	if f.IsStatic {
		return "static"
	}
	return "instance"
}

func init() {
	rootCmd.AddCommand(heapCmd)

	heapCmd.AddCommand(heapReportCmd)
	heapCmd.AddCommand(heapScanCmd)
	heapCmd.AddCommand(heapInspectCmd)

	heapReportCmd.Flags().StringVarP(&baselineFile, "baseline", "b", "", "Baseline gcdump or saved report to diff against")
	heapInspectCmd.Flags().BoolVarP(&showRoots, "roots", "r", false, "Also resolve GC roots for the object")
}
