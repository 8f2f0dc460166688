package metric

import (
	"bytes"
	"math"
	"math/rand"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat"
)

func TestMonteCarlo(t *testing.T) {
	values := []float64{1, 2, 3}

	t.Run("picking everything sums everything", func(t *testing.T) {
		draws, err := MonteCarlo(rand.New(rand.NewSource(1)), values, 5, 3)
		require.NoError(t, err)
		assert.Equal(t, []float64{6, 6, 6, 6, 6}, draws)
	})

	t.Run("without replacement", func(t *testing.T) {
		draws, err := MonteCarlo(rand.New(rand.NewSource(7)), values, 200, 2)
		require.NoError(t, err)
		require.Len(t, draws, 200)
		for _, draw := range draws {
			assert.Contains(t, []float64{3, 4, 5}, draw)
		}
	})

	t.Run("global source", func(t *testing.T) {
		draws, err := MonteCarlo(nil, values, 50, 2)
		require.NoError(t, err)
		for _, draw := range draws {
			assert.Contains(t, []float64{3, 4, 5}, draw)
		}
	})

	t.Run("seeded runs are reproducible", func(t *testing.T) {
		first, err := MonteCarlo(rand.New(rand.NewSource(42)), []float64{1, 10, 100, 1000}, 20, 2)
		require.NoError(t, err)
		second, err := MonteCarlo(rand.New(rand.NewSource(42)), []float64{1, 10, 100, 1000}, 20, 2)
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})

	t.Run("zero pick", func(t *testing.T) {
		draws, err := MonteCarlo(rand.New(rand.NewSource(1)), values, 3, 0)
		require.NoError(t, err)
		assert.Equal(t, []float64{0, 0, 0}, draws)
	})

	t.Run("invalid sample size", func(t *testing.T) {
		_, err := MonteCarlo(nil, values, 1, 4)
		assert.ErrorIs(t, err, ErrInvalidSampleSize)

		_, err = MonteCarlo(nil, values, 1, -1)
		assert.ErrorIs(t, err, ErrInvalidSampleSize)
	})
}

func TestAverageROI(t *testing.T) {
	assert.Equal(t, 2.0, AverageROI([]float64{1, 2, 3}))
	assert.True(t, math.IsNaN(AverageROI(nil)))
}

func TestProfitableCount(t *testing.T) {
	assert.Equal(t, 2, ProfitableCount([]float64{900, 1000, 1100, 1200}, 1000))
	assert.Zero(t, ProfitableCount(nil, 0))
}

func TestSummarize(t *testing.T) {
	values := []float64{5, 1, 4, 2, 3}
	dist := Summarize(values)

	assert.Equal(t, 5, dist.Count)
	assert.Equal(t, 3.0, dist.Mean)
	assert.InDelta(t, stat.StdDev(values, nil), dist.StdDev, 1e-12)
	assert.Equal(t, 1.0, dist.Min)
	assert.Equal(t, 5.0, dist.Max)
	assert.InDelta(t, 3.0, dist.Median, 0.5)
	assert.LessOrEqual(t, dist.P5, dist.Median)
	assert.GreaterOrEqual(t, dist.P95, dist.Median)

	// input is left untouched
	assert.Equal(t, []float64{5, 1, 4, 2, 3}, values)

	assert.Equal(t, Distribution{}, Summarize(nil))
	assert.Equal(t, 0.0, Summarize([]float64{7}).StdDev)
}

func TestWriteColumn(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteColumn(&buf, []float64{1.5, 10, -2}))
	assert.Equal(t, "1.5\n10\n-2\n", buf.String())
}

func TestBootstrap(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	interval := Bootstrap(values, func(sample []float64) float64 {
		return lo.Sum(sample) / float64(len(sample))
	}, 500, 0.95)

	assert.LessOrEqual(t, interval.Lower, interval.Mean)
	assert.GreaterOrEqual(t, interval.Upper, interval.Mean)
	assert.GreaterOrEqual(t, interval.Lower, 1.0)
	assert.LessOrEqual(t, interval.Upper, 10.0)
	assert.InDelta(t, 5.5, interval.Mean, 1.0)

	assert.Equal(t, BootstrapInterval{}, Bootstrap(nil, func(sample []float64) float64 {
		return stat.Variance(sample, nil)
	}, 10, 0.95))
}

func TestReturnInterval(t *testing.T) {
	returns := []float64{0.05, 0.1, math.NaN(), 0.15, math.Inf(1)}
	interval := ReturnInterval(returns, 0.9)

	assert.False(t, math.IsNaN(interval.Mean))
	assert.GreaterOrEqual(t, interval.Lower, 0.05)
	assert.LessOrEqual(t, interval.Upper, 0.15)
	assert.LessOrEqual(t, interval.Lower, interval.Upper)

	assert.Equal(t, BootstrapInterval{}, ReturnInterval([]float64{math.NaN()}, 0.95))
}

func TestReturnRatios(t *testing.T) {
	returns := []float64{0.1, 0.3, -0.1}

	assert.InDelta(t, 0.1, Mean(returns), 1e-12)
	assert.InDelta(t, 2.0, Payoff(returns), 1e-12)
	assert.InDelta(t, 4.0, ProfitFactor(returns), 1e-12)

	assert.Equal(t, 0.0, Mean(nil))
	assert.Equal(t, 10.0, Payoff([]float64{0.1}))
	assert.Equal(t, 0.0, Payoff([]float64{-0.1}))
	assert.Equal(t, 10.0, ProfitFactor([]float64{0.2}))
}
