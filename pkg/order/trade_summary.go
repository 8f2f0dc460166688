package order

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"
)

// TradeSummary collects statistics about the closed round trips of one ticker
type TradeSummary struct {
	Ticker      string
	Wins        []float64 // profit of winning round trips, after fees
	WinPercent  []float64
	Losses      []float64 // profit of losing round trips, after fees (negative)
	LosePercent []float64
	Volume      float64 // traded notional, both sides
}

// AddRoundTrip records a closed position from the cash it consumed and returned
func (s *TradeSummary) AddRoundTrip(cost, proceeds float64) {
	profit := proceeds - cost
	percent := 0.0
	if cost > 0 {
		percent = profit / cost
	}

	if profit > 0 {
		s.Wins = append(s.Wins, profit)
		s.WinPercent = append(s.WinPercent, percent)
	} else {
		s.Losses = append(s.Losses, profit)
		s.LosePercent = append(s.LosePercent, percent)
	}
	s.Volume += cost + proceeds
}

// Trades returns the number of closed round trips
func (s TradeSummary) Trades() int {
	return len(s.Wins) + len(s.Losses)
}

// Profit calculates the total profit across all round trips
func (s TradeSummary) Profit() float64 {
	return lo.Sum(s.Wins) + lo.Sum(s.Losses)
}

// Returns lists the percentage result of every round trip, wins first
func (s TradeSummary) Returns() []float64 {
	return append(append([]float64{}, s.WinPercent...), s.LosePercent...)
}

// SQN (System Quality Number) = sqrt(n) * (average profit / standard deviation)
func (s TradeSummary) SQN() float64 {
	allTrades := append(append([]float64{}, s.Wins...), s.Losses...)
	n := float64(len(allTrades))
	if n == 0 {
		return 0
	}

	avgProfit := s.Profit() / n
	variance := 0.0
	for _, profit := range allTrades {
		variance += math.Pow(profit-avgProfit, 2)
	}

	stdDev := math.Sqrt(variance / n)
	if stdDev == 0 {
		return 0
	}
	return math.Sqrt(n) * (avgProfit / stdDev)
}

// Payoff calculates the ratio of average win to average loss
func (s TradeSummary) Payoff() float64 {
	if len(s.WinPercent) == 0 || len(s.LosePercent) == 0 {
		return 0
	}

	avgLoss := average(s.LosePercent)
	if avgLoss == 0 {
		return 0
	}
	return average(s.WinPercent) / math.Abs(avgLoss)
}

// ProfitFactor calculates the ratio of gross profits to gross losses
func (s TradeSummary) ProfitFactor() float64 {
	grossLoss := lo.Sum(s.LosePercent)
	if grossLoss == 0 {
		return 0
	}
	return lo.Sum(s.WinPercent) / math.Abs(grossLoss)
}

// WinPercentage calculates the percentage of winning round trips
func (s TradeSummary) WinPercentage() float64 {
	if s.Trades() == 0 {
		return 0
	}
	return float64(len(s.Wins)) / float64(s.Trades()) * 100
}

// String formats the trade summary as a text table
func (s TradeSummary) String() string {
	tableString := &strings.Builder{}
	table := tablewriter.NewWriter(tableString)

	data := [][]string{
		{"Ticker", s.Ticker},
		{"Trades", strconv.Itoa(s.Trades())},
		{"Win", strconv.Itoa(len(s.Wins))},
		{"Loss", strconv.Itoa(len(s.Losses))},
		{"% Win", fmt.Sprintf("%.1f", s.WinPercentage())},
		{"Payoff", fmt.Sprintf("%.1f", s.Payoff()*100)},
		{"Pr.Fact", fmt.Sprintf("%.1f", s.ProfitFactor()*100)},
		{"Profit", fmt.Sprintf("%.2f", s.Profit())},
		{"Volume", fmt.Sprintf("%.2f", s.Volume)},
	}

	table.AppendBulk(data)
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_RIGHT})
	table.Render()

	return tableString.String()
}

// SaveReturns writes one round-trip return per line
func (s TradeSummary) SaveReturns(w io.Writer) error {
	for _, value := range s.Returns() {
		if _, err := fmt.Fprintf(w, "%.4f\n", value); err != nil {
			return err
		}
	}
	return nil
}

// average calculates the mean of a slice of float64 values
func average(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return lo.Sum(values) / float64(len(values))
}
