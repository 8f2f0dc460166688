package strategy

import (
	"math"

	"github.com/raykavin/backsim/pkg/core"
	"github.com/raykavin/backsim/pkg/indicator"
)

// DefaultDivergenceDrop is the minimum price drop between two local minima
const DefaultDivergenceDrop = 2.0

// MACDDivergenceState records the local price minima seen so far and the
// MACD reading taken when each of them was confirmed.
type MACDDivergenceState struct {
	Minima     core.Series[float64]
	MinimaMACD []indicator.MACDResult
	// Last is the MACD reading at the most recent local minimum
	Last indicator.MACDResult
}

// Values implements State
func (s MACDDivergenceState) Values() []float64 {
	lastMinimum := math.NaN()
	if s.Minima.Length() > 0 {
		lastMinimum = s.Minima.Last(0)
	}
	return []float64{lastMinimum, s.Last.MACDLine, s.Last.SignalLine}
}

// MACDDivergence buys on a bullish divergence: price makes a lower low while
// MACD makes a higher low.
type MACDDivergence struct {
	macd    *indicator.MACD
	window  *core.RollingWindow[float64]
	minDrop float64
	state   MACDDivergenceState
}

// NewMACDDivergence creates the strategy with explicit MACD periods
func NewMACDDivergence(fast, slow, signal int, minDrop float64) *MACDDivergence {
	return &MACDDivergence{
		macd:    indicator.NewMACD(fast, slow, signal),
		window:  core.NewRollingWindow[float64](3),
		minDrop: minDrop,
	}
}

// NewDefaultMACDDivergence creates the strategy on a 12/26/9 MACD
func NewDefaultMACDDivergence() *MACDDivergence {
	return NewMACDDivergence(indicator.DefaultMACDFast, indicator.DefaultMACDSlow,
		indicator.DefaultMACDSignal, DefaultDivergenceDrop)
}

// Calculation implements Strategy
func (m *MACDDivergence) Calculation(today core.PriceBar, _ *core.PriceBar) MACDDivergenceState {
	result := m.macd.Next(today.Close)
	m.window.Add(today.Close)

	if middle, ok := m.localMinimum(); ok {
		m.state.Minima = append(m.state.Minima, middle)
		m.state.MinimaMACD = append(m.state.MinimaMACD, result)
		m.state.Last = result
	}
	return m.state
}

// localMinimum reports whether the middle of the last three closes is a trough
func (m *MACDDivergence) localMinimum() (float64, bool) {
	if m.window.Len() < 3 {
		return 0, false
	}
	first, _ := m.window.Get(0)
	middle, _ := m.window.Get(1)
	last, _ := m.window.Get(2)
	return middle, first > middle && middle < last
}

// BuySignal implements Strategy
func (m *MACDDivergence) BuySignal(today core.PriceBar, state MACDDivergenceState) (float64, bool) {
	n := state.Minima.Length()
	if n <= 2 {
		return 0, false
	}

	lastMinimum, previousMinimum := state.Minima.Last(0), state.Minima.Last(1)
	lastMACD, previousMACD := state.MinimaMACD[n-1], state.MinimaMACD[n-2]
	if previousMinimum-lastMinimum > m.minDrop && lastMACD.MACDLine > previousMACD.MACDLine {
		return today.Close, true
	}
	return 0, false
}

// SellSignal implements Strategy
func (m *MACDDivergence) SellSignal(today core.PriceBar, state MACDDivergenceState) (float64, bool) {
	if state.Last.MACDLine > state.Last.SignalLine {
		return today.Close, true
	}
	return 0, false
}
