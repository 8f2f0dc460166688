package strategy

import (
	"math"

	"github.com/raykavin/backsim/pkg/core"
	"github.com/raykavin/backsim/pkg/indicator"
)

// EMASlopeState holds the EMA before and after today's close
type EMASlopeState struct {
	Yesterday float64
	Today     float64
}

// Values implements State
func (s EMASlopeState) Values() []float64 {
	return []float64{s.Yesterday, s.Today}
}

// Angle returns the inclination of the EMA between the two days in degrees
func (s EMASlopeState) Angle() float64 {
	return math.Atan(s.Today-s.Yesterday) * 180 / math.Pi
}

// EMASlope buys when the EMA turns steeply upward and sells once it points down
type EMASlope struct {
	ema       *indicator.EMA
	buyAngle  float64
	sellAngle float64
}

// Default slope thresholds in degrees
const (
	DefaultBuyAngle  = 10.0
	DefaultSellAngle = 0.0
)

// NewEMASlope creates the strategy; it buys above buyAngle and sells below -sellAngle
func NewEMASlope(length int, buyAngle, sellAngle float64) *EMASlope {
	return &EMASlope{
		ema:       indicator.NewEMA(length),
		buyAngle:  buyAngle,
		sellAngle: sellAngle,
	}
}

// Calculation implements Strategy
func (s *EMASlope) Calculation(today core.PriceBar, _ *core.PriceBar) EMASlopeState {
	yesterday := s.ema.Current()
	return EMASlopeState{
		Yesterday: yesterday,
		Today:     s.ema.Next(today.Close),
	}
}

// BuySignal implements Strategy
func (s *EMASlope) BuySignal(today core.PriceBar, state EMASlopeState) (float64, bool) {
	if state.Angle() > s.buyAngle {
		return today.Close, true
	}
	return 0, false
}

// SellSignal implements Strategy
func (s *EMASlope) SellSignal(today core.PriceBar, state EMASlopeState) (float64, bool) {
	if state.Angle() < -s.sellAngle {
		return today.Close, true
	}
	return 0, false
}
