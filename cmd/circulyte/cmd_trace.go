package main

import (
	"errors"
	"fmt"
	"strings"

	"circulyte-backend/internal/store"
	"circulyte-backend/internal/trace"

	"github.com/spf13/cobra"
)

var traceCmd = &cobra.Command{
	Use:   "trace <fiber-pack-id>",
	Short: "Print the sorted packs and batches a fiber pack came from",
	Args:  cobra.ExactArgs(1),
	RunE:  runTrace,
}

func runTrace(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	e, closeEnv, err := openEnv(ctx)
	if err != nil {
		return err
	}
	defer closeEnv()

	fp, err := e.store.GetFiberPack(ctx, args[0])
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("fiber pack %q not found", args[0])
	}
	if err != nil {
		return err
	}

	tr, err := trace.NewResolver(e.store, e.store).Resolve(ctx, *fp)
	if errors.Is(err, trace.ErrNoLinkedSortedPacks) {
		return errors.New("this fiber pack has no linked sorted packs")
	}
	if err != nil {
		return fmt.Errorf("failed to fetch traceability data: %w", err)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Fiber pack %s  %.2f kg  %s\n", fp.ID, fp.Weight, strings.Join(fp.Materials, ", "))
	fmt.Fprintf(w, "\nSorted packs (%d)\n", len(tr.SortedPacks))
	for _, p := range tr.SortedPacks {
		batch := p.OriginalBatchID
		if batch == "" {
			batch = "-"
		}
		fmt.Fprintf(w, "  %s  %-10s %7.2f kg  batch %s\n", p.ID, p.Material, p.Weight, batch)
	}
	fmt.Fprintf(w, "\nBatches (%d)\n", len(tr.Batches))
	for _, b := range tr.Batches {
		fmt.Fprintf(w, "  %s  %s  %d boxes  %s\n", b.ID, b.Source, b.BoxCount,
			b.DateReceived.In(e.cfg.Location()).Format("2006-01-02"))
	}
	return nil
}
