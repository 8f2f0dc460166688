package strategy

import (
	"github.com/raykavin/backsim/pkg/core"
	"github.com/raykavin/backsim/pkg/indicator"
)

// Keltner is a mean-reversion strategy on a Keltner Channel: it buys when
// the bar closes at or under the lower band and sells at the upper band
// once the bar's high reaches it.
type Keltner struct {
	channel *indicator.KeltnerChannel
}

// NewKeltner creates the strategy over a channel of the given length and width
func NewKeltner(length int, multiplier float64) *Keltner {
	return &Keltner{channel: indicator.NewKeltnerChannel(length, multiplier)}
}

// Calculation implements Strategy
func (k *Keltner) Calculation(today core.PriceBar, yesterday *core.PriceBar) indicator.KeltnerResult {
	return k.channel.Next(today.Close, today.High, today.Low, previousClose(yesterday))
}

// BuySignal implements Strategy
func (k *Keltner) BuySignal(today core.PriceBar, state indicator.KeltnerResult) (float64, bool) {
	if state.Lower >= today.Low && state.Lower >= today.Close {
		return today.Close, true
	}
	return 0, false
}

// SellSignal implements Strategy
func (k *Keltner) SellSignal(today core.PriceBar, state indicator.KeltnerResult) (float64, bool) {
	if state.Upper <= today.High {
		return state.Upper, true
	}
	return 0, false
}
