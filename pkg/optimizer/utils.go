package optimizer

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"
)

// SaveResultsToCSV writes one row per result: the parameter values in axis
// order followed by the score. Rows keep the order of results.
func SaveResultsToCSV(w io.Writer, params []Parameter, results []*Result) error {
	writer := csv.NewWriter(w)

	header := lo.Map(params, func(param Parameter, _ int) string {
		return param.Name
	})
	header = append(header, "score")
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, result := range results {
		if result == nil {
			continue
		}
		row := make([]string, 0, len(result.Values)+1)
		for _, value := range result.Values {
			row = append(row, strconv.FormatFloat(value, 'f', -1, 64))
		}
		row = append(row, strconv.FormatFloat(result.Score, 'f', -1, 64))

		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// PrintResults renders the topN best results as a table, failed points last
func PrintResults(w io.Writer, params []Parameter, results []*Result, maximize bool, topN int) {
	if len(results) == 0 {
		fmt.Fprintln(w, "No results to display")
		return
	}

	sorted := lo.Filter(results, func(result *Result, _ int) bool {
		return result != nil
	})
	sort.Stable(ResultSorter{Results: sorted, Maximize: maximize})
	if topN > 0 && topN < len(sorted) {
		sorted = sorted[:topN]
	}

	header := []string{"Rank"}
	for _, param := range params {
		header = append(header, param.Name)
	}
	header = append(header, "Score", "Duration")

	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	for i, result := range sorted {
		row := []string{strconv.Itoa(i + 1)}
		for _, value := range result.Values {
			row = append(row, strconv.FormatFloat(value, 'f', 4, 64))
		}
		score := strconv.FormatFloat(result.Score, 'f', 4, 64)
		if result.Err != nil {
			score = "error: " + result.Err.Error()
		}
		row = append(row, score, result.Duration.String())
		table.Append(row)
	}
	table.Render()
}

// FormatValues formats a point as name=value pairs
func FormatValues(params []Parameter, values []float64) string {
	pairs := make([]string, 0, len(values))
	for i, value := range values {
		name := strconv.Itoa(i)
		if i < len(params) {
			name = params[i].Name
		}
		pairs = append(pairs, fmt.Sprintf("%s=%v", name, value))
	}
	return fmt.Sprint(pairs)
}
