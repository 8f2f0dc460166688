package order

import "github.com/raykavin/backsim/pkg/core"

// StopLoss decides whether today's bar breaches the stop below the last buy
type StopLoss interface {
	ShouldTrigger(today core.PriceBar, lastBuyPrice float64) (float64, bool)
}

// TakeProfit decides whether today's bar reaches the profit target above the last buy
type TakeProfit interface {
	ShouldTrigger(today core.PriceBar, lastBuyPrice float64) (float64, bool)
}

// NoStopLoss never fires
type NoStopLoss struct{}

// ShouldTrigger implements StopLoss
func (NoStopLoss) ShouldTrigger(core.PriceBar, float64) (float64, bool) { return 0, false }

// PercentageStopLoss exits at the bar's low once it drops Percent below the buy price
type PercentageStopLoss struct {
	Percent float64 // fraction, 0.1 = 10%
}

// NewPercentageStopLoss creates a stop at lastBuy*(1-percent)
func NewPercentageStopLoss(percent float64) PercentageStopLoss {
	return PercentageStopLoss{Percent: percent}
}

// ShouldTrigger implements StopLoss
func (p PercentageStopLoss) ShouldTrigger(today core.PriceBar, lastBuyPrice float64) (float64, bool) {
	if today.Low <= lastBuyPrice*(1-p.Percent) {
		return today.Low, true
	}
	return 0, false
}

// NoTakeProfit never fires
type NoTakeProfit struct{}

// ShouldTrigger implements TakeProfit
func (NoTakeProfit) ShouldTrigger(core.PriceBar, float64) (float64, bool) { return 0, false }

// PercentageTakeProfit exits at the bar's high once it reaches lastBuy*Multiplier.
// The multiplier is a ratio of the buy price, 1.1 targets a 10% gain.
type PercentageTakeProfit struct {
	Multiplier float64
}

// NewPercentageTakeProfit creates a target at lastBuy*multiplier
func NewPercentageTakeProfit(multiplier float64) PercentageTakeProfit {
	return PercentageTakeProfit{Multiplier: multiplier}
}

// ShouldTrigger implements TakeProfit
func (p PercentageTakeProfit) ShouldTrigger(today core.PriceBar, lastBuyPrice float64) (float64, bool) {
	if today.High >= lastBuyPrice*p.Multiplier {
		return today.High, true
	}
	return 0, false
}
