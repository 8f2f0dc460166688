package strategy

import "github.com/raykavin/backsim/pkg/core"

// State is the indicator snapshot a strategy produces for one day.
// Values flattens it for export (one column per value).
type State interface {
	Values() []float64
}

// Strategy turns a daily bar stream into buy and sell decisions.
//
// Calculation is called once per bar in date order and advances the
// strategy's indicators; yesterday is nil for the first bar. The signal
// methods must not mutate the strategy and report the execution price when
// they fire.
type Strategy[T State] interface {
	Calculation(today core.PriceBar, yesterday *core.PriceBar) T
	BuySignal(today core.PriceBar, state T) (float64, bool)
	SellSignal(today core.PriceBar, state T) (float64, bool)
}

// previousClose returns yesterday's close or zero when there is no yesterday
func previousClose(yesterday *core.PriceBar) float64 {
	if yesterday == nil {
		return 0
	}
	return yesterday.Close
}
