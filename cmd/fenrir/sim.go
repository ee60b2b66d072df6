package main

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"fenrir/internal/csvio"
	"fenrir/internal/sim"
)

func newSimCmd() *cobra.Command {
	cfg := sim.DefaultConfig()
	var outDir string
	var timestamp string

	cmd := &cobra.Command{
		Use:   "sim",
		Short: "Drive synthetic order flow against a fresh book and save artifacts",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := sim.New(cfg)
			if err != nil {
				return err
			}
			log.Info().Int("events", cfg.NEvents).Uint64("seed", cfg.Seed).Msg("sim: starting run")
			art := s.Run()
			log.Info().
				Int("trades", len(art.Trades)).
				Uint64("orders", art.OrderCount).
				Uint64("cancels", art.CancelCount).
				Uint64("replaces", art.ReplaceCount).
				Msg("sim: run complete")

			if outDir == "" {
				return nil
			}
			files, err := csvio.SaveArtifacts(art, outDir, timestamp)
			if err != nil {
				return err
			}
			fmt.Println(files.TradesCSV)
			fmt.Println(files.SnapshotsCSV)
			fmt.Println(files.LatenciesCSV)
			return nil
		},
	}

	cmd.Flags().Uint64Var(&cfg.Seed, "seed", cfg.Seed, "PRNG seed")
	cmd.Flags().IntVar(&cfg.NEvents, "events", cfg.NEvents, "number of events to simulate")
	cmd.Flags().Float64Var(&cfg.TickSize, "tick-size", cfg.TickSize, "minimum price increment")
	cmd.Flags().Float64Var(&cfg.Mid0, "mid", cfg.Mid0, "initial mid price")
	cmd.Flags().Float64Var(&cfg.DriftPer1k, "drift-per-1k", cfg.DriftPer1k, "mid-price drift per 1000 events, in ticks")
	cmd.Flags().StringVar(&outDir, "out", "", "directory to write trades/snapshots/latencies CSVs (skipped if empty)")
	cmd.Flags().StringVar(&timestamp, "timestamp", "run", "suffix used in output filenames")
	return cmd
}
