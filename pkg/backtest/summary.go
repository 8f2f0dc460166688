package backtest

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/aybabtme/uniplot/histogram"
	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"

	"github.com/raykavin/backsim/pkg/metric"
)

// Tickers returns the tickers of results in alphabetical order
func Tickers(results map[string]*Result) []string {
	tickers := lo.Keys(results)
	sort.Strings(tickers)
	return tickers
}

// PrintSummary renders the per-ticker trade statistics, the ROI distribution
// and the confidence interval of per-trade returns.
func PrintSummary(w io.Writer, results map[string]*Result) {
	if len(results) == 0 {
		fmt.Fprintln(w, "No results to display")
		return
	}

	var (
		wins, losses int
		profit       float64
		volume       float64
		returns      []float64
	)

	buffer := bytes.NewBuffer(nil)
	table := tablewriter.NewWriter(buffer)
	table.SetHeader([]string{"Ticker", "Days", "Trades", "Win", "Loss", "% Win", "Payoff", "Pr Fact.", "SQN", "Profit", "ROI"})
	table.SetFooterAlignment(tablewriter.ALIGN_RIGHT)

	rois := make([]float64, 0, len(results))
	for _, ticker := range Tickers(results) {
		result := results[ticker]
		summary := result.Summary

		table.Append([]string{
			ticker,
			strconv.Itoa(len(result.Days)),
			strconv.Itoa(summary.Trades()),
			strconv.Itoa(len(summary.Wins)),
			strconv.Itoa(len(summary.Losses)),
			fmt.Sprintf("%.1f %%", summary.WinPercentage()),
			fmt.Sprintf("%.3f", summary.Payoff()),
			fmt.Sprintf("%.3f", summary.ProfitFactor()),
			fmt.Sprintf("%.1f", summary.SQN()),
			fmt.Sprintf("%.2f", summary.Profit()),
			fmt.Sprintf("%.3f", result.ROI()),
		})

		wins += len(summary.Wins)
		losses += len(summary.Losses)
		profit += summary.Profit()
		volume += summary.Volume
		returns = append(returns, summary.Returns()...)
		rois = append(rois, result.ROI())
	}

	winPercent := 0.0
	if wins+losses > 0 {
		winPercent = float64(wins) / float64(wins+losses) * 100
	}
	table.SetFooter([]string{
		"TOTAL",
		"",
		strconv.Itoa(wins + losses),
		strconv.Itoa(wins),
		strconv.Itoa(losses),
		fmt.Sprintf("%.1f %%", winPercent),
		fmt.Sprintf("%.3f", metric.Payoff(returns)),
		fmt.Sprintf("%.3f", metric.ProfitFactor(returns)),
		"",
		fmt.Sprintf("%.2f", profit),
		fmt.Sprintf("%.3f", metric.AverageROI(rois)),
	})
	table.Render()
	fmt.Fprintln(w, buffer.String())

	fmt.Fprintln(w, "------ ROI -------")
	hist := histogram.Hist(15, rois)
	_ = histogram.Fprint(w, hist, histogram.Linear(10))
	fmt.Fprintln(w)

	dist := metric.Summarize(rois)
	fmt.Fprintf(w, "MEAN: %.3f  STDDEV: %.3f  P5: %.3f  MEDIAN: %.3f  P95: %.3f\n",
		dist.Mean, dist.StdDev, dist.P5, dist.Median, dist.P95)
	fmt.Fprintf(w, "VOLUME: %.2f\n", volume)

	if len(returns) > 0 {
		fmt.Fprintln(w, "------ CONFIDENCE INTERVAL (95%) -------")
		interval := metric.ReturnInterval(returns, 0.95)
		fmt.Fprintf(w, "RETURN: %.2f%% (%.2f%% ~ %.2f%%)\n",
			interval.Mean*100, interval.Lower*100, interval.Upper*100)
	}
}
