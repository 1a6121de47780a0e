package main

import (
	"fmt"
	"time"

	"circulyte-backend/internal/seed"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the demo dataset into the configured store",
	RunE:  runSeed,
}

func runSeed(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	e, closeEnv, err := openEnv(ctx)
	if err != nil {
		return err
	}
	defer closeEnv()

	if e.cfg.StoreDriver == "memory" {
		e.logger.Warn("seeding the in-memory store, the data disappears when this command exits")
	}

	c, err := seed.Demo(ctx, e.store, time.Now())
	if err != nil {
		return err
	}
	e.logger.Info("seed complete",
		zap.Int("sources", c.Sources),
		zap.Int("vendors", c.Vendors),
		zap.Int("batches", c.Batches),
		zap.Int("sorted_packs", c.SortedPacks),
		zap.Int("fiber_packs", c.FiberPacks),
		zap.Int("shipments", c.Shipments))

	fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d sources, %d vendors, %d batches, %d sorted packs, %d fiber packs, %d shipments\n",
		c.Sources, c.Vendors, c.Batches, c.SortedPacks, c.FiberPacks, c.Shipments)
	return nil
}
