package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/comalice/statekeep"
	"github.com/comalice/statekeep/internal/core"
	"github.com/comalice/statekeep/internal/production"
)

var errRejectedStep = errors.New("step marked as rejected")

func newHistoryCmd(a *app) *cobra.Command {
	var (
		steps  int
		undos  int
		reject []int
		seed   uint64
		format string
	)
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Capture a run of random states, then undo through them",
		Long: `history edits a record through --steps random states, capturing a
snapshot after each one, then undoes --undo times. Steps listed in
--reject are refused on restore, so undo falls back past them.`,
		Example: `  statekeep history --steps 5 --undo 2 --reject 4`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runHistory(cmd.Context(), steps, undos, reject, seed, format)
		},
	}
	cmd.Flags().IntVar(&steps, "steps", 3, "number of states to capture")
	cmd.Flags().IntVar(&undos, "undo", 1, "number of undo calls")
	cmd.Flags().IntSliceVar(&reject, "reject", nil, "1-based steps whose snapshots are refused on restore")
	cmd.Flags().Uint64Var(&seed, "seed", 1, "random seed for generated states")
	cmd.Flags().StringVar(&format, "format", "text", "remaining-history format: text, json or yaml")
	return cmd
}

func (a *app) runHistory(ctx context.Context, steps, undos int, reject []int, seed uint64, format string) error {
	rng := rand.New(rand.NewPCG(seed, seed))
	rec := statekeep.NewRecord()
	rec.Accept(func(f statekeep.Fields) error {
		step, _ := f["step"].AsInt()
		if slices.Contains(reject, int(step)) {
			return fmt.Errorf("step %d: %w", step, errRejectedStep)
		}
		return nil
	})
	h := core.NewHistory[statekeep.Fields](rec, append(a.opts,
		core.WithDescriber(func(f statekeep.Fields) string { return f["state"].String() }))...)

	for i := 1; i <= steps; i++ {
		rec.Set("step", statekeep.Int(int64(i)))
		rec.Set("state", statekeep.Text(randomState(rng, 30)))
		sum, err := h.Capture(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "captured %s\n", sum)
	}

	for i := 0; i < undos; i++ {
		res, err := h.Undo(ctx)
		for _, rej := range res.Rejected {
			fmt.Fprintf(a.out, "rejected %s: %v\n", rej.SnapshotID, rej.Err)
		}
		switch {
		case errors.Is(err, core.ErrEmptyHistory):
			fmt.Fprintln(a.out, "nothing to undo")
			continue
		case err != nil:
			fmt.Fprintf(a.out, "undo failed: %v\n", err)
			continue
		}
		state, _ := rec.Get("state")
		fmt.Fprintf(a.out, "restored %s (taken %s, %d attempt(s)); state is now %s\n",
			res.Restored.ID, humanize.Time(res.Restored.Timestamp), res.Attempts, state)
	}

	if format != "text" {
		f, err := production.ParseFormat(format)
		if err != nil {
			return err
		}
		return production.NewExporter(f).ExportHistory(ctx, a.out, h.Summaries())
	}
	fmt.Fprintf(a.out, "%d snapshot(s) remain:\n", h.Len())
	for s := range h.Summaries() {
		fmt.Fprintf(a.out, "  %s\n", s)
	}
	return nil
}

const stateLetters = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

func randomState(rng *rand.Rand, n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = stateLetters[rng.IntN(len(stateLetters))]
	}
	return string(b)
}
