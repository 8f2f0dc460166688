package metric

import (
	"encoding/csv"
	"io"
	"math"
	"sort"
	"strconv"

	"github.com/samber/lo"
	"gonum.org/v1/gonum/stat"
)

// Distribution describes a sample of simulated outcomes
type Distribution struct {
	Count  int
	Mean   float64
	StdDev float64
	Min    float64
	P5     float64
	Median float64
	P95    float64
	Max    float64
}

// AverageROI returns the arithmetic mean of the values, NaN for an empty slice
func AverageROI(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	return lo.Sum(values) / float64(len(values))
}

// ProfitableCount counts the values strictly above threshold, usually the
// initial investment of a draw.
func ProfitableCount(values []float64, threshold float64) int {
	return lo.CountBy(values, func(v float64) bool {
		return v > threshold
	})
}

// Summarize computes the distribution of values
func Summarize(values []float64) Distribution {
	if len(values) == 0 {
		return Distribution{}
	}

	sorted := append([]float64{}, values...)
	sort.Float64s(sorted)

	mean, stdDev := stat.MeanStdDev(sorted, nil)
	if len(sorted) == 1 {
		stdDev = 0
	}

	return Distribution{
		Count:  len(sorted),
		Mean:   mean,
		StdDev: stdDev,
		Min:    sorted[0],
		P5:     stat.Quantile(0.05, stat.LinInterp, sorted, nil),
		Median: stat.Quantile(0.5, stat.LinInterp, sorted, nil),
		P95:    stat.Quantile(0.95, stat.LinInterp, sorted, nil),
		Max:    sorted[len(sorted)-1],
	}
}

// WriteColumn writes values as a single column CSV without header
func WriteColumn(w io.Writer, values []float64) error {
	writer := csv.NewWriter(w)
	for _, value := range values {
		if err := writer.Write([]string{strconv.FormatFloat(value, 'f', -1, 64)}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
