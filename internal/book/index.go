package book

import "fenrir/internal/models"

// Location records where a resting order lives: which side, and which
// price level on that side.
type Location struct {
	Side  models.Side
	Price models.Ticks
}

// Index maps a resting order's id to its Location, so cancel and
// replace can find it without scanning every level.
type Index struct {
	byID map[uint64]Location
}

func NewIndex() *Index {
	return &Index{byID: make(map[uint64]Location)}
}

func (ix *Index) Set(id uint64, loc Location) {
	ix.byID[id] = loc
}

func (ix *Index) Get(id uint64) (Location, bool) {
	loc, ok := ix.byID[id]
	return loc, ok
}

func (ix *Index) Delete(id uint64) {
	delete(ix.byID, id)
}

func (ix *Index) Len() int {
	return len(ix.byID)
}

// IDs returns every id currently tracked, used by invariant checks,
// OrderBook.RestingOrderIDs, and tests (no ordering guarantee).
func (ix *Index) IDs() []uint64 {
	out := make([]uint64, 0, len(ix.byID))
	for id := range ix.byID {
		out = append(out, id)
	}
	return out
}
