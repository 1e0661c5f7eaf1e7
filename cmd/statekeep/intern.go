package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/comalice/statekeep/internal/core"
	"github.com/comalice/statekeep/internal/primitives"
	"github.com/comalice/statekeep/internal/production"
)

func newInternCmd(a *app) *cobra.Command {
	var (
		sets   []string
		format string
	)
	cmd := &cobra.Command{
		Use:     "intern --set a,b,c [--set ...]",
		Short:   "Intern field sets concurrently and report which were reused",
		Example: `  statekeep intern --set "BMW,X6,black" --set "BMW,X6,black" --set "BMW,M5,red"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(sets) == 0 {
				return fmt.Errorf("at least one --set is required")
			}
			return a.runIntern(cmd.Context(), sets, format)
		},
	}
	cmd.Flags().StringArrayVar(&sets, "set", nil, "comma-separated fields to intern (repeatable)")
	cmd.Flags().StringVar(&format, "format", "text", "listing format: text, json or yaml")
	return cmd
}

func (a *app) runIntern(ctx context.Context, sets []string, format string) error {
	in := core.NewInterner(a.opts...)

	results := make([]*primitives.SharedState, len(sets))
	g, _ := errgroup.WithContext(ctx)
	for i, raw := range sets {
		fields := parseFields(raw)
		g.Go(func() error {
			results[i], _ = in.Intern(fields...)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	// Concurrent first uses race for the interner's Created outcome, so
	// the label marks the first argument with each key instead.
	seen := make(map[primitives.CanonicalKey]bool)
	for _, s := range results {
		label := "repeat"
		if !seen[s.Key()] {
			label = "first"
			seen[s.Key()] = true
		}
		fmt.Fprintf(a.out, "%-6s %s  %s\n", label, s.Key().Short(), s)
	}

	stats := in.Stats()
	fmt.Fprintf(a.out, "%s calls, %s distinct states\n",
		humanize.Comma(stats.Created+stats.Reused), humanize.Comma(int64(stats.Size)))

	if format == "text" {
		return nil
	}
	f, err := production.ParseFormat(format)
	if err != nil {
		return err
	}
	return production.NewExporter(f).ExportInterner(ctx, a.out, in)
}

// parseFields splits "a,b,c" into text scalars. A field written in the
// canonical tagged form ("i:42", "b:true") keeps its kind.
func parseFields(raw string) []primitives.Scalar {
	parts := strings.Split(raw, ",")
	out := make([]primitives.Scalar, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if s, err := primitives.ParseScalar(p); err == nil {
			out = append(out, s)
			continue
		}
		out = append(out, primitives.Text(p))
	}
	return out
}
