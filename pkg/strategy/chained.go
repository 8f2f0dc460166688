package strategy

import (
	"math"

	"github.com/raykavin/backsim/pkg/core"
)

// Pair is the combined indicator state of a chained strategy
type Pair[T1, T2 State] struct {
	First  T1
	Second T2
}

// Values implements State by concatenating both snapshots
func (p Pair[T1, T2]) Values() []float64 {
	return append(append([]float64{}, p.First.Values()...), p.Second.Values()...)
}

// Chained combines two strategies with AND semantics. It enters only when
// both want to buy, at the higher of the two prices, and exits only when
// both want to sell, at the lower of the two prices.
type Chained[T1, T2 State] struct {
	first  Strategy[T1]
	second Strategy[T2]
}

// NewChained composes two strategies; both are advanced on every bar
func NewChained[T1, T2 State](first Strategy[T1], second Strategy[T2]) *Chained[T1, T2] {
	return &Chained[T1, T2]{first: first, second: second}
}

// Calculation implements Strategy
func (c *Chained[T1, T2]) Calculation(today core.PriceBar, yesterday *core.PriceBar) Pair[T1, T2] {
	return Pair[T1, T2]{
		First:  c.first.Calculation(today, yesterday),
		Second: c.second.Calculation(today, yesterday),
	}
}

// BuySignal implements Strategy
func (c *Chained[T1, T2]) BuySignal(today core.PriceBar, state Pair[T1, T2]) (float64, bool) {
	price1, ok1 := c.first.BuySignal(today, state.First)
	price2, ok2 := c.second.BuySignal(today, state.Second)
	if !ok1 || !ok2 {
		return 0, false
	}
	return math.Max(price1, price2), true
}

// SellSignal implements Strategy
func (c *Chained[T1, T2]) SellSignal(today core.PriceBar, state Pair[T1, T2]) (float64, bool) {
	price1, ok1 := c.first.SellSignal(today, state.First)
	price2, ok2 := c.second.SellSignal(today, state.Second)
	if !ok1 || !ok2 {
		return 0, false
	}
	return math.Min(price1, price2), true
}
