package main

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"circulyte-backend/internal/batches"

	"github.com/spf13/cobra"
)

var (
	batchDate  string
	batchPages int
)

var batchesCmd = &cobra.Command{
	Use:   "batches",
	Short: "Batch records",
}

var batchesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List batches newest first, or every batch of one day",
	RunE:  runBatchesList,
}

func init() {
	batchesListCmd.Flags().StringVar(&batchDate, "date", "", "Only batches received on this day (YYYY-MM-DD)")
	batchesListCmd.Flags().IntVar(&batchPages, "pages", 1, "Pages of 20 to load in paged mode")
	batchesCmd.AddCommand(batchesListCmd)
}

func runBatchesList(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	e, closeEnv, err := openEnv(ctx)
	if err != nil {
		return err
	}
	defer closeEnv()

	b := batches.NewBrowser(e.store)
	if batchDate != "" {
		day, err := time.ParseInLocation("2006-01-02", batchDate, e.cfg.Location())
		if err != nil {
			return fmt.Errorf("--date must be YYYY-MM-DD: %w", err)
		}
		if err := b.FilterByDate(ctx, day); err != nil {
			return err
		}
	} else {
		for i := 0; i < batchPages; i++ {
			if err := b.LoadMore(ctx); err != nil {
				return err
			}
			if !b.HasMore() {
				break
			}
		}
	}

	list := b.Batches()
	if len(list) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No batches found.")
		return nil
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSOURCE\tBOXES\tRECEIVED\tCREATED BY")
	for _, bt := range list {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n", bt.ID, bt.Source, bt.BoxCount,
			bt.DateReceived.In(e.cfg.Location()).Format("2006-01-02 15:04"), bt.CreatedBy)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), strings.Repeat("-", 50))
	fmt.Fprintf(cmd.OutOrStdout(), "Total: %d batches", len(list))
	if b.HasMore() {
		fmt.Fprint(cmd.OutOrStdout(), " (more available, raise --pages)")
	}
	fmt.Fprintln(cmd.OutOrStdout())
	return nil
}
