package main

import (
	"context"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"fenrir/internal/matching"
	"fenrir/internal/metrics"
	"fenrir/internal/models"
	fenrirNet "fenrir/internal/net"
)

func newServeCmd() *cobra.Command {
	var (
		address         string
		port            int
		metricsPort     int
		tickSize        float64
		checkInvariants bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the matching engine TCP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			tick, err := models.NewTickSize(decimal.NewFromFloat(tickSize))
			if err != nil {
				return err
			}
			book := matching.New(checkInvariants)
			srv := fenrirNet.New(address, port, book, tick)

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if metricsPort > 0 {
				go func() {
					mux := http.NewServeMux()
					mux.Handle("/metrics", metrics.Handler())
					log.Info().Int("port", metricsPort).Msg("serve: metrics endpoint listening")
					if err := http.ListenAndServe(formatAddr(address, metricsPort), mux); err != nil {
						log.Error().Err(err).Msg("serve: metrics endpoint failed")
					}
				}()
			}

			srv.Run(ctx)
			return nil
		},
	}

	cmd.Flags().StringVar(&address, "address", "0.0.0.0", "bind address")
	cmd.Flags().IntVar(&port, "port", 9001, "TCP port")
	cmd.Flags().IntVar(&metricsPort, "metrics-port", 9090, "Prometheus /metrics port (0 disables)")
	cmd.Flags().Float64Var(&tickSize, "tick-size", 0.01, "minimum price increment")
	cmd.Flags().BoolVar(&checkInvariants, "check-invariants", false, "assert book invariants after every event (debug)")
	return cmd
}

func formatAddr(address string, port int) string {
	if address == "0.0.0.0" {
		address = ""
	}
	return address + ":" + strconv.Itoa(port)
}
