package metric

import (
	"math"
	"sort"

	"github.com/samber/lo"
	"gonum.org/v1/gonum/stat"
)

// ReturnResamples is the number of resamples drawn by ReturnInterval
const ReturnResamples = 1000

// BootstrapInterval is the confidence interval of a measure estimated by resampling
type BootstrapInterval struct {
	Lower  float64
	Upper  float64
	StdDev float64
	Mean   float64
}

// Bootstrap estimates the confidence interval of measure over values.
// It draws sampleSize resamples with replacement, each as long as values,
// and reads the interval from the distribution of the measure.
func Bootstrap(values []float64, measure func([]float64) float64, sampleSize int,
	confidence float64) BootstrapInterval {

	if len(values) == 0 || sampleSize <= 0 {
		return BootstrapInterval{}
	}

	data := resample(values, measure, sampleSize)

	tail := 1 - confidence
	sort.Float64s(data)

	mean, stdDev := stat.MeanStdDev(data, nil)
	return BootstrapInterval{
		Lower:  stat.Quantile(tail/2, stat.LinInterp, data, nil),
		Upper:  stat.Quantile(1-tail/2, stat.LinInterp, data, nil),
		StdDev: stdDev,
		Mean:   mean,
	}
}

// ReturnInterval bootstraps the mean of per-trade returns. Returns are
// fractions of the buy price. NaN and infinite returns, left by a buy at
// a zero price, are dropped.
func ReturnInterval(returns []float64, confidence float64) BootstrapInterval {
	finite := lo.Filter(returns, func(r float64, _ int) bool {
		return !math.IsNaN(r) && !math.IsInf(r, 0)
	})
	return Bootstrap(finite, Mean, ReturnResamples, confidence)
}

func resample(values []float64, measure func([]float64) float64, sampleSize int) []float64 {
	data := make([]float64, 0, sampleSize)
	for i := 0; i < sampleSize; i++ {
		samples := make([]float64, len(values))
		for j := range samples {
			samples[j] = lo.Sample(values)
		}
		data = append(data, measure(samples))
	}
	return data
}
