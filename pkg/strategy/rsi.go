package strategy

import (
	"github.com/raykavin/backsim/pkg/core"
	"github.com/raykavin/backsim/pkg/indicator"
)

// RSIThreshold buys oversold and sells overbought readings
type RSIThreshold struct {
	rsi   *indicator.RSI
	lower float64
	upper float64
}

// NewRSIThreshold creates the strategy. The RSI reading leaves [0, 100]
// (see indicator.RSI), so lower catches windows dominated by losses and upper
// windows dominated by gains.
func NewRSIThreshold(length int, lower, upper float64) *RSIThreshold {
	return &RSIThreshold{
		rsi:   indicator.NewRSI(length),
		lower: lower,
		upper: upper,
	}
}

// Calculation implements Strategy
func (r *RSIThreshold) Calculation(today core.PriceBar, _ *core.PriceBar) indicator.RSIResult {
	return r.rsi.Next(today.Close)
}

// BuySignal implements Strategy. A NaN reading never fires.
func (r *RSIThreshold) BuySignal(today core.PriceBar, state indicator.RSIResult) (float64, bool) {
	if state.RSI < r.lower {
		return today.Close, true
	}
	return 0, false
}

// SellSignal implements Strategy. A NaN reading never fires.
func (r *RSIThreshold) SellSignal(today core.PriceBar, state indicator.RSIResult) (float64, bool) {
	if state.RSI > r.upper {
		return today.Close, true
	}
	return 0, false
}
