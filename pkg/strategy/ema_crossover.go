package strategy

import (
	"github.com/raykavin/backsim/pkg/core"
	"github.com/raykavin/backsim/pkg/indicator"
)

// EMACrossoverState holds the short and long averages
type EMACrossoverState struct {
	Short float64
	Long  float64
}

// Values implements State
func (s EMACrossoverState) Values() []float64 {
	return []float64{s.Short, s.Long}
}

// EMACrossover is long while the short EMA is above the long EMA
type EMACrossover struct {
	short *indicator.EMA
	long  *indicator.EMA
}

// NewEMACrossover creates the strategy
func NewEMACrossover(shortLength, longLength int) *EMACrossover {
	return &EMACrossover{
		short: indicator.NewEMA(shortLength),
		long:  indicator.NewEMA(longLength),
	}
}

// Calculation implements Strategy
func (e *EMACrossover) Calculation(today core.PriceBar, _ *core.PriceBar) EMACrossoverState {
	return EMACrossoverState{
		Short: e.short.Next(today.Close),
		Long:  e.long.Next(today.Close),
	}
}

// BuySignal implements Strategy
func (e *EMACrossover) BuySignal(today core.PriceBar, state EMACrossoverState) (float64, bool) {
	if state.Short > state.Long {
		return today.Close, true
	}
	return 0, false
}

// SellSignal implements Strategy
func (e *EMACrossover) SellSignal(today core.PriceBar, state EMACrossoverState) (float64, bool) {
	if state.Short < state.Long {
		return today.Close, true
	}
	return 0, false
}
