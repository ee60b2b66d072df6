package models

// Trade records one execution between a resting maker and an incoming
// taker. Price is always the maker's resting price: the taker gets price
// improvement whenever it crosses beyond the best.
type Trade struct {
	MakerID uint64
	TakerID uint64
	Price   Ticks
	Qty     uint64
	Ts      uint64
}
