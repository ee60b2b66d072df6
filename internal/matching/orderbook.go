// Package matching implements the price-time priority matching engine:
// the façade that consumes order events, walks the opposite side book,
// emits trades, and keeps the two side books and the order index
// mutually consistent.
//
// The engine is single-threaded and synchronous (spec §5): every
// operation below runs to completion before another can begin. Callers
// needing parallelism shard by symbol, one OrderBook per symbol, and
// serialize events into each from a single goroutine.
package matching

import (
	"fmt"

	"fenrir/internal/book"
	"fenrir/internal/models"
)

// OrderBook is the matching engine for a single symbol.
type OrderBook struct {
	checkInvariants bool

	bids *book.SideBook
	asks *book.SideBook
	ix   *book.Index

	seq uint64
}

// New constructs an empty OrderBook. When checkInvariants is true,
// AssertInvariants runs after every Add/Cancel/Replace; intended for
// tests and debug builds, per spec §4.6 — production paths should leave
// this off.
func New(checkInvariants bool) *OrderBook {
	return &OrderBook{
		checkInvariants: checkInvariants,
		bids:            book.NewSideBook(models.Buy),
		asks:            book.NewSideBook(models.Sell),
		ix:              book.NewIndex(),
	}
}

func (ob *OrderBook) nextSeq() uint64 {
	ob.seq++
	return ob.seq
}

func (ob *OrderBook) sideBook(side models.Side) *book.SideBook {
	if side == models.Buy {
		return ob.bids
	}
	return ob.asks
}

// opposite returns the side book the given side would take liquidity
// from.
func (ob *OrderBook) opposite(side models.Side) *book.SideBook {
	return ob.sideBook(side.Opposite())
}

// Add submits a new order event. The order is assigned a fresh
// sequence number and, depending on type and time-in-force, is matched
// against the opposite side, rested, or discarded. Trades produced
// during this event are returned in generation order.
//
// The caller is expected to have constructed order via models.New (or,
// for a replace's synthesized successor, to have set Remaining
// explicitly), so it never needs to be rejected here (spec §7):
// construction invariants are a boundary concern, not an Add-time one.
func (ob *OrderBook) Add(order models.Order) []models.Trade {
	order.Ts = ob.nextSeq()

	var trades []models.Trade
	switch order.OrderType {
	case models.Market:
		trades = ob.takeFrom(&order, nil)
		order.Remaining = 0
	case models.Limit:
		if order.TIF == models.FOK {
			if ob.executableAvailable(&order) < order.Remaining {
				order.Remaining = 0
				if ob.checkInvariants {
					ob.AssertInvariants()
				}
				return nil
			}
		}
		limit := order.Price
		trades = ob.takeFrom(&order, &limit)
		if order.IsActive() {
			switch order.TIF {
			case models.GTC:
				ob.rest(&order)
			case models.IOC, models.FOK:
				order.Remaining = 0
			}
		}
	}

	if ob.checkInvariants {
		ob.AssertInvariants()
	}
	return trades
}

// takeFrom walks the opposite side of order.Side, matching while order
// remains active and the best opposite price respects limit (nil means
// no limit, i.e. a market sweep). See spec §4.5.1.
func (ob *OrderBook) takeFrom(order *models.Order, limit *models.Ticks) []models.Trade {
	opp := ob.opposite(order.Side)
	var trades []models.Trade

	for order.IsActive() {
		best, ok := opp.Best()
		if !ok {
			break
		}
		if limit != nil && crosses(order.Side, best, *limit) {
			break
		}
		lvl := opp.Level(best)
		if lvl == nil {
			// Stale entry with no backing level left; Best() already
			// skips these, but guard defensively against races within
			// a single synchronous call.
			continue
		}
		for order.IsActive() && !lvl.Empty() {
			maker := lvl.Front()
			take := min(order.Remaining, maker.Remaining)
			if take == 0 {
				break
			}
			maker.Remaining -= take
			order.Remaining -= take

			trades = append(trades, models.Trade{
				MakerID: maker.ID,
				TakerID: order.ID,
				Price:   best,
				Qty:     take,
				Ts:      ob.nextSeq(),
			})

			if maker.Remaining == 0 {
				lvl.PopFront()
				ob.ix.Delete(maker.ID)
			}
		}
		opp.DropIfEmpty(best)
	}
	return trades
}

// crosses reports whether best, the opposite side's best price, is still
// outside the taker's limit — i.e. the walk must stop. BUY stops once
// the ask is above the taker's limit; SELL stops once the bid is below
// it.
func crosses(takerSide models.Side, best, limit models.Ticks) bool {
	if takerSide == models.Buy {
		return best > limit
	}
	return best < limit
}

// rest inserts order at the back of its price level, per spec §4.5.2.
func (ob *OrderBook) rest(order *models.Order) {
	sb := ob.sideBook(order.Side)
	lvl := sb.RestOrCreate(order.Price)
	stored := order.Clone()
	lvl.PushBack(&stored)
	ob.ix.Set(order.ID, book.Location{Side: order.Side, Price: order.Price})
}

// executableAvailable walks the opposite side in price order, summing
// Remaining at levels that respect order's limit, stopping early once
// the sum covers order.Remaining. Used only to decide FOK. See spec
// §4.5.3.
func (ob *OrderBook) executableAvailable(order *models.Order) uint64 {
	need := order.Remaining
	opp := ob.opposite(order.Side)
	var total uint64
	for _, snap := range opp.Levels() {
		if order.OrderType == models.Limit && crosses(order.Side, snap.Price, order.Price) {
			break
		}
		total += snap.Depth
		if total >= need {
			return total
		}
	}
	return total
}

// Cancel removes the resting order with the given id, returning the
// quantity it was canceled with (0 if the id is unknown).
func (ob *OrderBook) Cancel(orderID uint64) uint64 {
	loc, ok := ob.ix.Get(orderID)
	if !ok {
		return 0
	}
	sb := ob.sideBook(loc.Side)
	lvl := sb.Level(loc.Price)
	if lvl == nil {
		ob.ix.Delete(orderID)
		return 0
	}
	removed := lvl.RemoveID(orderID)
	sb.DropIfEmpty(loc.Price)
	ob.ix.Delete(orderID)
	if removed == nil {
		return 0
	}

	if ob.checkInvariants {
		ob.AssertInvariants()
	}
	return removed.Remaining
}

// Replace extracts the resting order with the given id and re-submits it
// with the supplied overrides, as a brand-new Add call. The successor
// receives a fresh sequence number and therefore loses time priority at
// its (possibly unchanged) price — this is the documented, intentional
// semantic (spec §4.5, §9): replace never edits a resting order in
// place.
func (ob *OrderBook) Replace(orderID uint64, newPrice *models.Ticks, newQty *uint64, newTIF *models.TimeInForce) (bool, []models.Trade) {
	loc, ok := ob.ix.Get(orderID)
	if !ok {
		return false, nil
	}
	sb := ob.sideBook(loc.Side)
	lvl := sb.Level(loc.Price)
	if lvl == nil {
		ob.ix.Delete(orderID)
		return false, nil
	}
	old := lvl.RemoveID(orderID)
	sb.DropIfEmpty(loc.Price)
	ob.ix.Delete(orderID)
	if old == nil {
		return false, nil
	}

	if newQty != nil && *newQty == 0 {
		return false, nil
	}

	price := old.Price
	if newPrice != nil {
		price = *newPrice
	}
	tif := old.TIF
	if newTIF != nil {
		tif = *newTIF
	}
	qty := old.Qty
	alreadyFilled := old.Qty - old.Remaining
	remaining := old.Remaining
	if newQty != nil {
		qty = *newQty
		if qty < alreadyFilled {
			remaining = 0
		} else {
			remaining = qty - alreadyFilled
		}
	}

	successor := models.Order{
		ID:        orderID,
		Side:      loc.Side,
		Qty:       qty,
		Price:     price,
		OrderType: models.Limit,
		TIF:       tif,
		Remaining: remaining,
	}
	// Still routed through Add even when remaining == 0 (a replace that
	// only shrinks quantity below what was already filled): Add assigns
	// the successor a sequence number and, finding it inactive, neither
	// matches nor rests it. Matters for determinism — the sequence
	// counter must advance identically regardless of the outcome.
	trades := ob.Add(successor)
	return true, trades
}

// Locate reports the side and price of a currently-resting order, used
// by monitoring and the simulator driver to inspect a live order without
// walking every level.
func (ob *OrderBook) Locate(orderID uint64) (side models.Side, price models.Ticks, ok bool) {
	loc, found := ob.ix.Get(orderID)
	if !found {
		return 0, 0, false
	}
	return loc.Side, loc.Price, true
}

// RestingOrderIDs returns every currently-resting order id, in no
// particular order. Used by the simulator to pick a random cancel/
// replace victim, and by tests.
func (ob *OrderBook) RestingOrderIDs() []uint64 {
	return ob.ix.IDs()
}

// BestBid returns the current best (highest) live bid price.
func (ob *OrderBook) BestBid() (models.Ticks, bool) { return ob.bids.Best() }

// BestAsk returns the current best (lowest) live ask price.
func (ob *OrderBook) BestAsk() (models.Ticks, bool) { return ob.asks.Best() }

// DepthAtPrice sums Remaining at the given price on side.
func (ob *OrderBook) DepthAtPrice(side models.Side, price models.Ticks) uint64 {
	return ob.sideBook(side).DepthAt(price)
}

// TotalDepth sums Remaining across every level on side.
func (ob *OrderBook) TotalDepth(side models.Side) uint64 {
	return ob.sideBook(side).TotalDepth()
}

// Levels lists every live price on side, best-to-worst, with total depth.
func (ob *OrderBook) Levels(side models.Side) []book.LevelSnapshot {
	return ob.sideBook(side).Levels()
}

// Snapshot is the read-only top-of-book view returned by SnapshotTop.
type Snapshot struct {
	BestBid  models.Ticks
	HasBid   bool
	BestAsk  models.Ticks
	HasAsk   bool
	BidDepth uint64
	AskDepth uint64
}

// SnapshotTop returns best bid/ask and the depth at each, per spec §4.7.
// Depth totals include only the level at the best price.
func (ob *OrderBook) SnapshotTop() Snapshot {
	var s Snapshot
	if bb, ok := ob.BestBid(); ok {
		s.BestBid, s.HasBid = bb, true
		s.BidDepth = ob.DepthAtPrice(models.Buy, bb)
	}
	if ba, ok := ob.BestAsk(); ok {
		s.BestAsk, s.HasAsk = ba, true
		s.AskDepth = ob.DepthAtPrice(models.Sell, ba)
	}
	return s
}

// AssertInvariants validates the book-level invariants from spec §3:
// non-crossed, FIFO, positive remaining, and index bijection. Level
// non-emptiness is not checked: AllLevels skips empty levels, so an
// empty level left in a side book's map goes undetected. It panics on
// the first violation: an invariant failure is a bug, not a
// recoverable runtime condition (spec §7).
func (ob *OrderBook) AssertInvariants() {
	if bb, ok := ob.BestBid(); ok {
		if ba, ok := ob.BestAsk(); ok {
			if !(bb < ba) {
				panic(fmt.Sprintf("matching: crossed book: best_bid=%d best_ask=%d", bb, ba))
			}
		}
	}

	indexIDs := make(map[uint64]struct{}, ob.ix.Len())
	for _, id := range ob.ix.IDs() {
		indexIDs[id] = struct{}{}
	}
	restingIDs := make(map[uint64]struct{})

	checkSide := func(sb *book.SideBook, side models.Side) {
		for _, lvl := range sb.AllLevels() {
			var lastTs uint64
			for i, o := range lvl.Orders {
				if o.Remaining == 0 {
					panic(fmt.Sprintf("matching: non-positive remaining resting at %s %d", side, lvl.Price))
				}
				if i > 0 && o.Ts <= lastTs {
					panic(fmt.Sprintf("matching: FIFO violated at %s %d", side, lvl.Price))
				}
				lastTs = o.Ts
				if _, ok := indexIDs[o.ID]; !ok {
					panic(fmt.Sprintf("matching: order %d resting without index entry", o.ID))
				}
				restingIDs[o.ID] = struct{}{}
			}
		}
	}
	checkSide(ob.bids, models.Buy)
	checkSide(ob.asks, models.Sell)

	if len(restingIDs) != len(indexIDs) {
		panic(fmt.Sprintf("matching: index bijection violated: index=%d resting=%d", len(indexIDs), len(restingIDs)))
	}
	for id := range indexIDs {
		if _, ok := restingIDs[id]; !ok {
			panic(fmt.Sprintf("matching: index entry %d has no resting order", id))
		}
	}
}
