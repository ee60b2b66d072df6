package sim

import (
	"math"
	"math/rand/v2"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"fenrir/internal/matching"
	"fenrir/internal/metrics"
	"fenrir/internal/models"
)

// Trade is one execution observed during a run, denominated in decimal
// price rather than raw ticks so artifacts are human-readable.
type Trade struct {
	MakerID uint64
	TakerID uint64
	Price   float64
	Qty     uint64
	Ts      uint64
}

// Snapshot is a periodic top-of-book reading, taken every
// Config.SnapshotEvery events.
type Snapshot struct {
	Event    int
	BestBid  float64
	HasBid   bool
	BestAsk  float64
	HasAsk   bool
	BidDepth uint64
	AskDepth uint64
}

// Artifacts is everything a run produced, mirroring the Python
// SimArtifacts dataclass field for field.
type Artifacts struct {
	Trades       []Trade
	Snapshots    []Snapshot
	LatenciesNs  []int64
	OrderCount   uint64
	CancelCount  uint64
	ReplaceCount uint64
}

// Simulator drives synthetic order flow against one OrderBook.
type Simulator struct {
	cfg  Config
	tick models.TickSize
	rng  *rand.Rand

	book   *matching.OrderBook
	nextID uint64
}

// New constructs a Simulator against a fresh, invariant-checking-off
// OrderBook (the Python original runs with check_invariants=False for
// throughput; the engine is still exercised identically).
func New(cfg Config) (*Simulator, error) {
	tick, err := models.NewTickSize(decimal.NewFromFloat(cfg.TickSize))
	if err != nil {
		return nil, err
	}
	return &Simulator{
		cfg:  cfg,
		tick: tick,
		rng:  rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15)),
		book: matching.New(false),
	}, nil
}

func (s *Simulator) genSize() uint64 {
	// lognormal(mean=log(SizeMean), sigma=0.5), floored at SizeMin, then
	// rounded to the nearest 10 — same shape as the Python generator.
	z := s.rng.NormFloat64()
	size := math.Exp(math.Log(s.cfg.SizeMean) + 0.5*z)
	n := uint64(size)
	if n < s.cfg.SizeMin {
		n = s.cfg.SizeMin
	}
	return uint64(math.Round(float64(n)/10.0) * 10.0)
}

func (s *Simulator) side() models.Side {
	if s.rng.Float64() < 0.5 {
		return models.Buy
	}
	return models.Sell
}

func (s *Simulator) limitPriceNearMid(mid float64, side models.Side) float64 {
	loc := 1.0
	if side == models.Sell {
		loc = -1.0
	}
	ticks := math.Round(loc + s.cfg.SigmaTicks*s.rng.NormFloat64())
	px := mid + ticks*s.cfg.TickSize
	rounded := math.Round(px/s.cfg.TickSize) * s.cfg.TickSize
	return math.Max(s.cfg.TickSize, rounded)
}

func (s *Simulator) pickTIF() models.TimeInForce {
	r := s.rng.Float64()
	if r < s.cfg.PFOK {
		return models.FOK
	}
	if r < s.cfg.PFOK+s.cfg.PIOC {
		return models.IOC
	}
	return models.GTC
}

func (s *Simulator) allocID() uint64 {
	s.nextID++
	return s.nextID
}

func (s *Simulator) toTicks(price float64) models.Ticks {
	return s.tick.ToTicks(decimal.NewFromFloat(price))
}

func (s *Simulator) toFloat(t models.Ticks) float64 {
	f, _ := s.tick.ToDecimal(t).Float64()
	return f
}

// Run executes cfg.NEvents synthetic events and returns the collected
// artifacts. Deterministic for a fixed Config.Seed.
func (s *Simulator) Run() Artifacts {
	cfg := s.cfg
	var art Artifacts

	mid := cfg.Mid0
	for k := 0; k < 10; k++ {
		s.seedInitialLevels(mid, 200)
	}

	for i := 0; i < cfg.NEvents; i++ {
		r := s.rng.Float64()
		mid += (cfg.DriftPer1k / 1000.0) * cfg.TickSize

		switch {
		case r < cfg.PLimit:
			s.stepLimit(mid, &art)
		case r < cfg.PLimit+cfg.PMarket:
			s.stepMarket(&art)
		case r < cfg.PLimit+cfg.PMarket+cfg.PCancel:
			s.stepCancel(&art)
		default:
			s.stepReplace(&art)
		}

		if (i+1)%cfg.SnapshotEvery == 0 {
			art.Snapshots = append(art.Snapshots, s.snapshot(i+1))
		}
	}

	art.OrderCount = s.nextID
	return art
}

func (s *Simulator) stepLimit(mid float64, art *Artifacts) {
	side := s.side()
	price := s.limitPriceNearMid(mid, side)
	tif := s.pickTIF()
	qty := s.genSize()
	id := s.allocID()

	order, err := models.New(id, side, qty, s.toTicks(price), models.Limit, tif)
	if err != nil {
		return
	}
	start := time.Now()
	trades := s.book.Add(order)
	art.LatenciesNs = append(art.LatenciesNs, time.Since(start).Nanoseconds())
	s.recordTrades(art, trades)
}

func (s *Simulator) stepMarket(art *Artifacts) {
	side := s.side()
	qty := s.genSize()
	id := s.allocID()

	order, err := models.New(id, side, qty, 0, models.Market, models.IOC)
	if err != nil {
		return
	}
	start := time.Now()
	trades := s.book.Add(order)
	art.LatenciesNs = append(art.LatenciesNs, time.Since(start).Nanoseconds())
	s.recordTrades(art, trades)
}

func (s *Simulator) stepCancel(art *Artifacts) {
	victim, ok := s.randomRestingID()
	if !ok {
		return
	}
	start := time.Now()
	s.book.Cancel(victim)
	art.LatenciesNs = append(art.LatenciesNs, time.Since(start).Nanoseconds())
	art.CancelCount++
}

func (s *Simulator) stepReplace(art *Artifacts) {
	victim, ok := s.randomRestingID()
	if !ok {
		return
	}
	_, price, ok := s.book.Locate(victim)
	if !ok {
		return
	}
	deltaTicks := models.Ticks(1)
	if s.rng.Float64() < 0.5 {
		deltaTicks = -1
	}
	newPrice := price + deltaTicks

	start := time.Now()
	_, trades := s.book.Replace(victim, &newPrice, nil, nil)
	art.LatenciesNs = append(art.LatenciesNs, time.Since(start).Nanoseconds())
	art.ReplaceCount++
	s.recordTrades(art, trades)
}

func (s *Simulator) recordTrades(art *Artifacts, trades []models.Trade) {
	for _, t := range trades {
		art.Trades = append(art.Trades, Trade{
			MakerID: t.MakerID,
			TakerID: t.TakerID,
			Price:   s.toFloat(t.Price),
			Qty:     t.Qty,
			Ts:      t.Ts,
		})
	}
}

func (s *Simulator) randomRestingID() (uint64, bool) {
	ids := s.book.RestingOrderIDs()
	if len(ids) == 0 {
		return 0, false
	}
	// RestingOrderIDs comes back in map order; sorting makes the pick
	// depend on the seed alone.
	slices.Sort(ids)
	return ids[s.rng.IntN(len(ids))], true
}

func (s *Simulator) snapshot(event int) Snapshot {
	top := s.book.SnapshotTop()
	snap := Snapshot{Event: event}
	if top.HasBid {
		snap.HasBid = true
		snap.BestBid = s.toFloat(top.BestBid)
		snap.BidDepth = top.BidDepth
	}
	if top.HasAsk {
		snap.HasAsk = true
		snap.BestAsk = s.toFloat(top.BestAsk)
		snap.AskDepth = top.AskDepth
	}
	metrics.Collect().ObserveTop(float64(top.BestBid), float64(top.BestAsk), top.BidDepth, top.AskDepth)
	return snap
}

// seedInitialLevels rests 3 bid and 3 ask levels on each side of mid,
// giving the book initial resting liquidity before the event loop
// starts. Called 10 times by Run, same as the Python original.
func (s *Simulator) seedInitialLevels(mid float64, baseQty uint64) {
	for d := 1; d <= 3; d++ {
		bidPx := mid - float64(d)*s.cfg.TickSize
		askPx := mid + float64(d)*s.cfg.TickSize

		bid, err := models.New(s.allocID(), models.Buy, baseQty, s.toTicks(bidPx), models.Limit, models.GTC)
		if err == nil {
			s.book.Add(bid)
		}
		ask, err := models.New(s.allocID(), models.Sell, baseQty, s.toTicks(askPx), models.Limit, models.GTC)
		if err == nil {
			s.book.Add(ask)
		}
	}
}
