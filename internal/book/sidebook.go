package book

import (
	"container/heap"

	"github.com/tidwall/btree"

	"fenrir/internal/models"
)

// SideBook holds every resting price level for one side, plus the
// structures needed to answer "what's the best price" and "list levels
// best-to-worst" efficiently.
//
// Best-price discovery uses a heap with lazy stale-entry cleanup
// (spec ​§4.3): cheap push/pop, amortized O(log K) best-price query.
// Levels() additionally wants a fully sorted, live view of every price,
// which the heap alone doesn't give (it may carry stale entries and
// doesn't support in-order traversal); a tidwall/btree ordered set of
// live prices is kept alongside for that purpose, updated in lockstep
// with the map whenever a level transitions between empty and
// non-empty.
type SideBook struct {
	side   models.Side
	levels map[models.Ticks]*Level
	heap   priceHeap
	order  *btree.BTreeG[models.Ticks]
}

// NewSideBook constructs an empty side book. side sets the sort
// direction of the ordered btree: descending for BUY (best = highest
// price first), ascending for SELL (best = lowest price first). The
// heap's direction follows side through heapKey.
func NewSideBook(side models.Side) *SideBook {
	ascending := side == models.Sell
	var less func(a, b models.Ticks) bool
	if ascending {
		less = func(a, b models.Ticks) bool { return a < b }
	} else {
		less = func(a, b models.Ticks) bool { return a > b }
	}
	return &SideBook{
		side:   side,
		levels: make(map[models.Ticks]*Level),
		order:  btree.NewBTreeG(less),
	}
}

// heapKey maps a price to its heap storage key: BUY negates so the
// standard library's min-heap doubles as a max-heap on price.
func (sb *SideBook) heapKey(price models.Ticks) models.Ticks {
	if sb.side == models.Buy {
		return -price
	}
	return price
}

// Level returns the live level at price, or nil if absent/empty.
func (sb *SideBook) Level(price models.Ticks) *Level {
	lvl := sb.levels[price]
	if lvl == nil || lvl.Empty() {
		return nil
	}
	return lvl
}

// RestOrCreate returns the level at price, creating it (and pushing it
// onto the heap and ordered index) if it did not already exist live.
func (sb *SideBook) RestOrCreate(price models.Ticks) *Level {
	lvl, ok := sb.levels[price]
	if ok && !lvl.Empty() {
		return lvl
	}
	if !ok {
		lvl = newLevel(sb.side, price)
		sb.levels[price] = lvl
	}
	heap.Push(&sb.heap, sb.heapKey(price))
	sb.order.Set(price)
	return lvl
}

// DropIfEmpty removes price from the map and ordered index once its
// level has emptied. The heap entry is left as stale; it is cleaned up
// lazily by Best().
func (sb *SideBook) DropIfEmpty(price models.Ticks) {
	lvl, ok := sb.levels[price]
	if !ok || !lvl.Empty() {
		return
	}
	delete(sb.levels, price)
	sb.order.Delete(price)
}

// Best returns the best live price on this side, discarding any stale
// heap entries it encounters along the way.
func (sb *SideBook) Best() (models.Ticks, bool) {
	for sb.heap.Len() > 0 {
		candidate := sb.heapFront()
		lvl, ok := sb.levels[candidate]
		if ok && !lvl.Empty() {
			return candidate, true
		}
		heap.Pop(&sb.heap)
	}
	return 0, false
}

func (sb *SideBook) heapFront() models.Ticks {
	key := sb.heap[0]
	if sb.side == models.Buy {
		return -key
	}
	return key
}

// DepthAt sums Remaining at price, 0 if the level is absent/empty.
func (sb *SideBook) DepthAt(price models.Ticks) uint64 {
	lvl := sb.Level(price)
	if lvl == nil {
		return 0
	}
	return lvl.Depth()
}

// TotalDepth sums Remaining across every live level on this side.
func (sb *SideBook) TotalDepth() uint64 {
	var total uint64
	for _, lvl := range sb.levels {
		total += lvl.Depth()
	}
	return total
}

// LevelSnapshot is one entry of a Levels() listing.
type LevelSnapshot struct {
	Price models.Ticks
	Depth uint64
}

// Levels returns every live price on this side, best-to-worst, with its
// total depth.
func (sb *SideBook) Levels() []LevelSnapshot {
	out := make([]LevelSnapshot, 0, sb.order.Len())
	sb.order.Scan(func(price models.Ticks) bool {
		if lvl := sb.Level(price); lvl != nil {
			out = append(out, LevelSnapshot{Price: price, Depth: lvl.Depth()})
		}
		return true
	})
	return out
}

// AllLevels exposes the live, non-empty Level values in price-priority
// order, used by invariant checks and tests.
func (sb *SideBook) AllLevels() []*Level {
	out := make([]*Level, 0, sb.order.Len())
	sb.order.Scan(func(price models.Ticks) bool {
		if lvl := sb.Level(price); lvl != nil {
			out = append(out, lvl)
		}
		return true
	})
	return out
}
