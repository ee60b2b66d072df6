package book

import (
	"container/heap"

	"fenrir/internal/models"
)

// priceHeap is a min-heap of prices used for best-price discovery. The
// side book negates bid prices before pushing so that the same min-heap
// machinery serves both sides (highest bid == smallest negated price).
//
// Entries can go stale: a price may be popped from the backing map
// (level emptied by a trade, cancel, or replace) while its entry still
// sits in the heap. Stale entries are never removed eagerly; they are
// skipped lazily the next time the best price is queried, per the
// amortized O(log K) design in the spec.
type priceHeap []models.Ticks

func (h priceHeap) Len() int            { return len(h) }
func (h priceHeap) Less(i, j int) bool  { return h[i] < h[j] }
func (h priceHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *priceHeap) Push(x interface{}) { *h = append(*h, x.(models.Ticks)) }
func (h *priceHeap) Pop() interface{} {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

var _ = heap.Interface(&priceHeap{})
