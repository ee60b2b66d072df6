package models

import (
	"errors"

	"github.com/shopspring/decimal"
)

var ErrNonPositiveTick = errors.New("models: tick size must be positive")

// TickSize converts between a decimal price, as entered by an operator or
// produced by the simulator, and the integer Ticks the book keys on.
// Conversion happens only at this boundary; the matching core never sees
// a float.
type TickSize struct {
	size decimal.Decimal
}

// NewTickSize builds a TickSize from a decimal price increment, such as
// decimal.NewFromFloat(0.01).
func NewTickSize(size decimal.Decimal) (TickSize, error) {
	if size.Sign() <= 0 {
		return TickSize{}, ErrNonPositiveTick
	}
	return TickSize{size: size}, nil
}

// ParseTickSize builds a TickSize from a decimal string such as "0.01",
// used when parsing operator-supplied configuration.
func ParseTickSize(s string) (TickSize, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return TickSize{}, err
	}
	return NewTickSize(d)
}

// ToTicks rounds a decimal price to the nearest tick and returns it as an
// integer count of ticks.
func (t TickSize) ToTicks(price decimal.Decimal) Ticks {
	ratio := price.DivRound(t.size, 12).Round(0)
	return Ticks(ratio.IntPart())
}

// ToDecimal converts ticks back to a decimal price for display or wire
// encoding.
func (t TickSize) ToDecimal(ticks Ticks) decimal.Decimal {
	return t.size.Mul(decimal.NewFromInt(int64(ticks)))
}
