package heap

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/clrdiag/clrdiag/internal/dotnet"
	"github.com/clrdiag/clrdiag/internal/sos"
)

// Inspector drives object drill-down against a core dump: dumpobj for the
// field table, dumpmt per distinct method table to resolve type names, and
// gcroot for retention chains. Results are cached per (dump path, address)
// and duplicate concurrent requests for the same object collapse into one
// tool invocation.
type Inspector struct {
	analyzer dotnet.Analyzer

	mu       sync.Mutex
	reports  map[string]*sos.ObjectReport
	names    map[string]string
	inflight map[string]chan struct{}
}

func NewInspector(analyzer dotnet.Analyzer) *Inspector {
	return &Inspector{
		analyzer: analyzer,
		reports:  make(map[string]*sos.ObjectReport),
		names:    make(map[string]string),
		inflight: make(map[string]chan struct{}),
	}
}

// Object returns the parsed field table for one heap object. A failed tool
// invocation yields the error-marker report instead of an error so the view
// for this one object degrades without tearing down anything else.
func (ins *Inspector) Object(ctx context.Context, address string) *sos.ObjectReport {
	key := ins.cacheKey(address)

	for {
		ins.mu.Lock()
		if report, ok := ins.reports[key]; ok {
			ins.mu.Unlock()
			return report
		}
		if ch, ok := ins.inflight[key]; ok {
			// Someone else is already expanding this node; wait for their
			// result instead of issuing a redundant tool invocation.
			ins.mu.Unlock()
			select {
			case <-ch:
				continue
			case <-ctx.Done():
				return sos.ErrorReport()
			}
		}
		ch := make(chan struct{})
		ins.inflight[key] = ch
		ins.mu.Unlock()

		report := ins.fetchObject(ctx, address)

		ins.mu.Lock()
		ins.reports[key] = report
		delete(ins.inflight, key)
		ins.mu.Unlock()
		close(ch)

		return report
	}
}

// ObjectWithRoots runs the object dump and the GC-root query concurrently;
// neither depends on the other. The roots error is scoped: the field table
// is still returned when only gcroot failed.
func (ins *Inspector) ObjectWithRoots(ctx context.Context, address string) (*sos.ObjectReport, []string, error) {
	var (
		report   *sos.ObjectReport
		roots    []string
		rootsErr error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		report = ins.Object(gctx, address)
		return nil
	})
	g.Go(func() error {
		lines, err := ins.analyzer.Analyze(gctx, "gcroot "+address)
		if err != nil {
			rootsErr = fmt.Errorf("gcroot %s: %w", address, err)
			return nil
		}
		roots = lines
		return nil
	})
	g.Wait()

	return report, roots, rootsErr
}

// ScanType lists live objects of one type via a filtered heap scan.
func (ins *Inspector) ScanType(ctx context.Context, typeName string) ([]sos.HeapObjectRef, error) {
	lines, err := ins.analyzer.Analyze(ctx, "dumpheap -type "+typeName)
	if err != nil {
		return nil, fmt.Errorf("heap scan for %s: %w", typeName, err)
	}
	return sos.ParseHeapScan(strings.Join(lines, "\n")), nil
}

func (ins *Inspector) fetchObject(ctx context.Context, address string) *sos.ObjectReport {
	lines, err := ins.analyzer.Analyze(ctx, "dumpobj "+address)
	if err != nil {
		return sos.ErrorReport()
	}

	names := ins.resolveAll(ctx, sos.MethodTables(lines))
	return sos.ParseObjectDump(lines, names)
}

// resolveAll resolves every distinct method-table address concurrently. A
// failed resolution just leaves that address out of the map, so the parser
// keeps the raw type text for it; resolution order never matters because the
// results merge into a lookup.
func (ins *Inspector) resolveAll(ctx context.Context, addrs []string) map[string]string {
	resolved := make(map[string]string, len(addrs))
	var pending []string

	ins.mu.Lock()
	for _, addr := range addrs {
		if name, ok := ins.names[ins.cacheKey(addr)]; ok {
			resolved[addr] = name
		} else {
			pending = append(pending, addr)
		}
	}
	ins.mu.Unlock()

	if len(pending) == 0 {
		return resolved
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	for _, addr := range pending {
		g.Go(func() error {
			lines, err := ins.analyzer.Analyze(gctx, "dumpmt "+addr)
			if err != nil {
				return nil
			}
			name, ok := sos.ScanTypeName(lines)
			if !ok {
				return nil
			}
			mu.Lock()
			resolved[addr] = name
			mu.Unlock()
			return nil
		})
	}
	g.Wait()

	ins.mu.Lock()
	for _, addr := range pending {
		if name, ok := resolved[addr]; ok {
			ins.names[ins.cacheKey(addr)] = name
		}
	}
	ins.mu.Unlock()

	return resolved
}

func (ins *Inspector) cacheKey(address string) string {
	return ins.analyzer.Path() + "|" + strings.ToLower(address)
}
