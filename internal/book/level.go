// Package book implements the per-side, per-price data structures the
// matching engine is built on: FIFO price levels, a best-price heap with
// lazy stale-entry cleanup, and the order-id index.
package book

import "fenrir/internal/models"

// Level is a FIFO queue of resting orders at a single price on a single
// side. All members share Side and Price; Remaining > 0 for every member
// (a fully filled order is removed, never left at zero).
type Level struct {
	Side  models.Side
	Price models.Ticks
	// Orders is oldest-first. Pointers are used so a partial fill can
	// mutate Remaining in place without re-indexing the slice.
	Orders []*models.Order
}

func newLevel(side models.Side, price models.Ticks) *Level {
	return &Level{Side: side, Price: price}
}

// PushBack appends a newly-resting order. Callers must have already
// assigned it a Ts greater than every order currently in the level.
func (l *Level) PushBack(o *models.Order) {
	l.Orders = append(l.Orders, o)
}

// Front returns the maker at the head of the queue, or nil if empty.
func (l *Level) Front() *models.Order {
	if len(l.Orders) == 0 {
		return nil
	}
	return l.Orders[0]
}

// PopFront removes the head of the queue, once its Remaining has reached 0.
func (l *Level) PopFront() {
	if len(l.Orders) == 0 {
		return
	}
	l.Orders[0] = nil
	l.Orders = l.Orders[1:]
}

// Empty reports whether the level has no resting orders.
func (l *Level) Empty() bool {
	return len(l.Orders) == 0
}

// Depth sums Remaining across every order in the level.
func (l *Level) Depth() uint64 {
	var total uint64
	for _, o := range l.Orders {
		total += o.Remaining
	}
	return total
}

// RemoveID removes the first occurrence of id from the level, preserving
// the relative order of the remaining orders. It is O(n) in the level's
// length, which is expected to stay short (tens of orders) in normal
// workloads. Returns the removed order, or nil if id was not present.
func (l *Level) RemoveID(id uint64) *models.Order {
	for i, o := range l.Orders {
		if o.ID == id {
			removed := o
			l.Orders = append(l.Orders[:i], l.Orders[i+1:]...)
			return removed
		}
	}
	return nil
}
