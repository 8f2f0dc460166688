package order

import "math"

// BrokerFee computes the commission charged for a trade
type BrokerFee interface {
	BuyFee(shares int, price float64) float64
	SellFee(shares int, price float64) float64
}

// NoFee charges nothing
type NoFee struct{}

// BuyFee implements BrokerFee
func (NoFee) BuyFee(int, float64) float64 { return 0 }

// SellFee implements BrokerFee
func (NoFee) SellFee(int, float64) float64 { return 0 }

// PercentageFee charges a fixed fraction of the notional value on both sides
type PercentageFee struct {
	Percent float64 // fraction, 0.001 = 0.1%
}

// NewPercentageFee creates a linear fee
func NewPercentageFee(percent float64) PercentageFee {
	return PercentageFee{Percent: percent}
}

// BuyFee implements BrokerFee
func (f PercentageFee) BuyFee(shares int, price float64) float64 {
	return float64(shares) * price * f.Percent
}

// SellFee implements BrokerFee
func (f PercentageFee) SellFee(shares int, price float64) float64 {
	return float64(shares) * price * f.Percent
}

// MinimumFee is a percentage fee with a floor per non-empty trade, the usual
// schedule of retail stock brokers.
type MinimumFee struct {
	Percent float64
	Minimum float64
}

// NewMinimumFee creates a percentage fee that never goes below minimum
func NewMinimumFee(percent, minimum float64) MinimumFee {
	return MinimumFee{Percent: percent, Minimum: minimum}
}

// BuyFee implements BrokerFee
func (f MinimumFee) BuyFee(shares int, price float64) float64 {
	return f.fee(shares, price)
}

// SellFee implements BrokerFee
func (f MinimumFee) SellFee(shares int, price float64) float64 {
	return f.fee(shares, price)
}

func (f MinimumFee) fee(shares int, price float64) float64 {
	if shares == 0 {
		return 0
	}
	return math.Max(float64(shares)*price*f.Percent, f.Minimum)
}
