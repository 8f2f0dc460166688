package strategy

import (
	"github.com/raykavin/backsim/pkg/core"
	"github.com/raykavin/backsim/pkg/indicator"
)

// EMATrendState holds the long-term EMA
type EMATrendState struct {
	EMA float64
}

// Values implements State
func (s EMATrendState) Values() []float64 {
	return []float64{s.EMA}
}

// EMATrend follows a long-term trend: it buys when the close runs far enough
// above the EMA and sells when the EMA sits far enough above the close.
type EMATrend struct {
	ema     *indicator.EMA
	buyPct  float64
	sellPct float64
}

// NewEMATrend creates the strategy; percentages are fractions (0.05 = 5%)
func NewEMATrend(length int, buyPct, sellPct float64) *EMATrend {
	return &EMATrend{
		ema:     indicator.NewEMA(length),
		buyPct:  buyPct,
		sellPct: sellPct,
	}
}

// Calculation implements Strategy
func (e *EMATrend) Calculation(today core.PriceBar, _ *core.PriceBar) EMATrendState {
	return EMATrendState{EMA: e.ema.Next(today.Close)}
}

// BuySignal implements Strategy
func (e *EMATrend) BuySignal(today core.PriceBar, state EMATrendState) (float64, bool) {
	if (today.Close-state.EMA)/state.EMA > e.buyPct {
		return today.Close, true
	}
	return 0, false
}

// SellSignal implements Strategy
func (e *EMATrend) SellSignal(today core.PriceBar, state EMATrendState) (float64, bool) {
	if (state.EMA-today.Close)/today.Close > e.sellPct {
		return today.Close, true
	}
	return 0, false
}
