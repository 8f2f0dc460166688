package strategy

import (
	"github.com/raykavin/backsim/pkg/core"
	"github.com/raykavin/backsim/pkg/indicator"
)

// MACDCross holds a position while the MACD line is above its signal line
type MACDCross struct {
	macd *indicator.MACD
}

// NewMACDCross creates the strategy with explicit periods
func NewMACDCross(fast, slow, signal int) *MACDCross {
	return &MACDCross{macd: indicator.NewMACD(fast, slow, signal)}
}

// NewDefaultMACDCross creates the strategy on a 12/26/9 MACD
func NewDefaultMACDCross() *MACDCross {
	return &MACDCross{macd: indicator.NewDefaultMACD()}
}

// Calculation implements Strategy
func (m *MACDCross) Calculation(today core.PriceBar, _ *core.PriceBar) indicator.MACDResult {
	return m.macd.Next(today.Close)
}

// BuySignal implements Strategy
func (m *MACDCross) BuySignal(today core.PriceBar, state indicator.MACDResult) (float64, bool) {
	if state.MACDLine > state.SignalLine {
		return today.Close, true
	}
	return 0, false
}

// SellSignal implements Strategy
func (m *MACDCross) SellSignal(today core.PriceBar, state indicator.MACDResult) (float64, bool) {
	if state.MACDLine < state.SignalLine {
		return today.Close, true
	}
	return 0, false
}
