package indicator

// KeltnerResult holds one Keltner Channel output
type KeltnerResult struct {
	EMA   float64
	Upper float64
	Lower float64
}

// Values returns lower, middle and upper band in that order
func (r KeltnerResult) Values() []float64 {
	return []float64{r.Lower, r.EMA, r.Upper}
}

// KeltnerChannel is a volatility band around an EMA sized by a multiple of ATR
type KeltnerChannel struct {
	multiplier float64
	ema        *EMA
	atr        *ATR
}

// NewKeltnerChannel creates a channel where EMA and ATR share the same length
func NewKeltnerChannel(length int, multiplier float64) *KeltnerChannel {
	return &KeltnerChannel{
		multiplier: multiplier,
		ema:        NewEMA(length),
		atr:        NewATR(length),
	}
}

// Next advances both the EMA and the ATR and returns the new bands
func (k *KeltnerChannel) Next(price, high, low, prevClose float64) KeltnerResult {
	ema := k.ema.Next(price)
	atr := k.atr.Next(high, low, prevClose)
	return k.bands(ema, atr)
}

// Current recomputes the bands from the stored EMA and ATR
func (k *KeltnerChannel) Current() KeltnerResult {
	return k.bands(k.ema.Current(), k.atr.Current())
}

func (k *KeltnerChannel) bands(ema, atr float64) KeltnerResult {
	return KeltnerResult{
		EMA:   ema,
		Upper: ema + k.multiplier*atr,
		Lower: ema - k.multiplier*atr,
	}
}
