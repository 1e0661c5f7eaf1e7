package main

import (
	"context"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/comalice/statekeep/internal/core"
)

func newCloneCmd(a *app) *cobra.Command {
	var (
		shape string
		n     int
		deep  bool
	)
	cmd := &cobra.Command{
		Use:   "clone",
		Short: "Clone a demo graph shallowly or deeply and compare the copies",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runClone(cmd.Context(), shape, n, deep)
		},
	}
	cmd.Flags().StringVar(&shape, "shape", "prototype", fmt.Sprintf("graph shape: %v", shapeNames))
	cmd.Flags().IntVar(&n, "n", 8, "entity count for chain and ring")
	cmd.Flags().BoolVar(&deep, "deep", true, "deep clone (false clones the root only)")
	return cmd
}

func (a *app) runClone(ctx context.Context, shape string, n int, deep bool) error {
	in := core.NewInterner(a.opts...)
	g, err := buildShape(in, shape, n)
	if err != nil {
		return err
	}
	arena := g.Arena()
	c := core.NewCloner(append(a.opts, core.WithInterner(in))...)

	before := arena.Len()
	start := time.Now()
	clone := g.Root()
	if deep {
		clone, err = c.Deep(ctx, arena, g.Root())
	} else {
		clone, err = c.Shallow(arena, g.Root())
	}
	if err != nil {
		return err
	}
	took := time.Since(start)

	mode := "shallow"
	if deep {
		mode = "deep"
	}
	fmt.Fprintf(a.out, "%s clone of %s: %s -> %s in %s\n", mode, shape, g.Root(), clone, took)
	fmt.Fprintf(a.out, "entities: %s before, %s after\n",
		humanize.Comma(int64(before)), humanize.Comma(int64(arena.Len())))
	fmt.Fprintf(a.out, "original: %s\n", core.NewGraph(arena, g.Root()))
	fmt.Fprintf(a.out, "clone:    %s\n", core.NewGraph(arena, clone))

	shared := 0
	cloneSet := make(map[string]bool)
	for _, h := range arena.Reachable(clone) {
		cloneSet[h.String()] = true
	}
	for _, h := range arena.Reachable(g.Root()) {
		if cloneSet[h.String()] {
			shared++
		}
	}
	fmt.Fprintf(a.out, "entities reachable from both: %d\n", shared)
	return nil
}
