package metric

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// noLossRatio is reported by Payoff and ProfitFactor when nothing was lost
const noLossRatio = 10

// Mean calculates the arithmetic mean of per-trade returns
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return stat.Mean(values, nil)
}

// Payoff calculates the ratio of the average win to the average loss
func Payoff(values []float64) float64 {
	wins, losses := partition(values)
	if len(losses) == 0 {
		return noLossRatio
	}
	if len(wins) == 0 {
		return 0
	}

	avgLoss := stat.Mean(losses, nil)
	if avgLoss == 0 {
		return noLossRatio
	}
	return stat.Mean(wins, nil) / avgLoss
}

// ProfitFactor calculates the ratio of gross wins to gross losses
func ProfitFactor(values []float64) float64 {
	var totalWins, totalLosses float64
	for _, value := range values {
		if value >= 0 {
			totalWins += value
		} else {
			totalLosses -= value
		}
	}

	if totalLosses == 0 {
		return noLossRatio
	}
	return totalWins / totalLosses
}

// partition splits returns into wins and loss magnitudes
func partition(values []float64) (wins, losses []float64) {
	for _, value := range values {
		if value >= 0 {
			wins = append(wins, value)
		} else {
			losses = append(losses, math.Abs(value))
		}
	}
	return wins, losses
}
