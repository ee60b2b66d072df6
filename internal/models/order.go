package models

import "errors"

var (
	ErrNonPositiveQty  = errors.New("models: qty must be positive")
	ErrLimitNeedsPrice = errors.New("models: limit order requires a positive price")
	ErrMarketHasPrice  = errors.New("models: market order must not carry a price")
)

// Order is a client intent: a new order as submitted, or (once it has been
// assigned a Ts by the engine) a resting order sitting in a price level.
//
// Ts is engine-assigned. Remaining is set to Qty by New and reduced by
// the engine as the order fills.
type Order struct {
	ID        uint64
	Side      Side
	Qty       uint64
	Price     Ticks // meaningful only when OrderType == Limit
	OrderType OrderType
	TIF       TimeInForce
	Ts        uint64
	Remaining uint64
}

// New validates and constructs an Order. Remaining defaults to Qty.
// Market orders behave as IOC regardless of the TIF requested.
func New(id uint64, side Side, qty uint64, price Ticks, orderType OrderType, tif TimeInForce) (Order, error) {
	if qty == 0 {
		return Order{}, ErrNonPositiveQty
	}
	switch orderType {
	case Limit:
		if price <= 0 {
			return Order{}, ErrLimitNeedsPrice
		}
	case Market:
		if price != 0 {
			return Order{}, ErrMarketHasPrice
		}
		tif = IOC
	}
	return Order{
		ID:        id,
		Side:      side,
		Qty:       qty,
		Price:     price,
		OrderType: orderType,
		TIF:       tif,
		Remaining: qty,
	}, nil
}

// IsActive reports whether the order still has outstanding quantity.
func (o *Order) IsActive() bool {
	return o.Remaining > 0
}

// Clone returns a value copy, used when resting an order so that the
// original caller's Order value is never mutated by the engine.
func (o Order) Clone() Order {
	return o
}
