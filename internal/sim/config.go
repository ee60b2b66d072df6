// Package sim drives a synthetic order flow against a matching.OrderBook
// and collects trades, periodic top-of-book snapshots, and per-event
// latencies. Ported from the original Python simulator
// (orderbook/sim.py), which drove an identical engine with
// numpy.random.RandomState; here the same event mix and price-walk
// model runs on math/rand/v2 so the Go engine gets the same load
// testing and benchmarking harness.
package sim

// Config controls one simulation run. Field names and defaults mirror
// the Python SimConfig dataclass.
type Config struct {
	Seed         uint64
	NEvents      int
	TickSize     float64
	PLimit       float64
	PMarket      float64
	PCancel      float64
	PReplace     float64
	Mid0         float64
	SigmaTicks   float64
	DriftPer1k   float64
	SizeMean     float64
	SizeMin      uint64
	PIOC         float64
	PFOK         float64
	SnapshotEvery int
}

// DefaultConfig returns the same parameters as the Python SimConfig
// dataclass defaults.
func DefaultConfig() Config {
	return Config{
		Seed:          30,
		NEvents:       50_000,
		TickSize:      0.01,
		PLimit:        0.65,
		PMarket:       0.20,
		PCancel:       0.10,
		PReplace:      0.05,
		Mid0:          100.0,
		SigmaTicks:    1.5,
		DriftPer1k:    0.0,
		SizeMean:      100.0,
		SizeMin:       10,
		PIOC:          0.05,
		PFOK:          0.02,
		SnapshotEvery: 250,
	}
}
