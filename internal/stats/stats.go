// Package stats contains statistics calculations and reporting.
package stats

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/verte-zerg/adaptype/internal/model"
)

const sparkChars = " .:-=+*#%@"

// Summary aggregates a set of results.
type Summary struct {
	Sessions    int
	AvgWPM      float64
	BestWPM     int
	AvgAccuracy float64
	TotalErrors int
}

// Summarize computes averages over records.
func Summarize(records []model.ResultRecord) Summary {
	if len(records) == 0 {
		return Summary{}
	}
	var sum Summary
	var totalWPM, totalAcc float64
	for _, r := range records {
		totalWPM += float64(r.WPM)
		totalAcc += float64(r.Accuracy)
		sum.TotalErrors += r.Errors
		if r.WPM > sum.BestWPM {
			sum.BestWPM = r.WPM
		}
	}
	sum.Sessions = len(records)
	sum.AvgWPM = totalWPM / float64(len(records))
	sum.AvgAccuracy = totalAcc / float64(len(records))
	return sum
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	if window <= 1 || len(values) == 0 {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, len(values))
	var sum float64
	for i := 0; i < len(values); i++ {
		sum += values[i]
		if i >= window {
			sum -= values[i-window]
		}
		den := float64(i + 1)
		if i >= window {
			den = float64(window)
		}
		out[i] = sum / den
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal, maxVal := values[0], values[0]
	for _, v := range values[1:] {
		minVal = math.Min(minVal, v)
		maxVal = math.Max(maxVal, v)
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		idx = max(0, min(idx, len(sparkChars)-1))
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// RenderSummary prints a summary block for results.
func RenderSummary(w io.Writer, records []model.ResultRecord) error {
	if len(records) == 0 {
		_, err := fmt.Fprintln(w, "No results found.")
		return err
	}
	s := Summarize(records)
	lines := []string{
		"Summary",
		fmt.Sprintf("Tests: %d", s.Sessions),
		fmt.Sprintf("Avg WPM: %.1f", s.AvgWPM),
		fmt.Sprintf("Best WPM: %d", s.BestWPM),
		fmt.Sprintf("Avg Accuracy: %.1f%%", s.AvgAccuracy),
		fmt.Sprintf("Total Errors: %d", s.TotalErrors),
		"",
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderTrend prints WPM and accuracy sparklines smoothed over window results.
func RenderTrend(w io.Writer, records []model.ResultRecord, window int) error {
	if len(records) < 2 {
		return nil
	}
	wpms := make([]float64, len(records))
	accs := make([]float64, len(records))
	for i, r := range records {
		wpms[i] = float64(r.WPM)
		accs[i] = float64(r.Accuracy)
	}
	rows := [][]string{
		{"WPM", Sparkline(MovingAverage(wpms, window))},
		{"Accuracy", Sparkline(MovingAverage(accs, window))},
	}
	if _, err := fmt.Fprintln(w, "Trend"); err != nil {
		return err
	}
	for _, line := range formatTable(nil, rows, nil) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// RenderResultsTable prints one row per result.
func RenderResultsTable(w io.Writer, records []model.ResultRecord) error {
	if len(records) == 0 {
		return nil
	}
	headers := []string{"Date", "Name", "WPM", "Accuracy", "Errors", "Words"}
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{
			r.EndedAt.Local().Format("2006-01-02 15:04"),
			r.Name,
			fmt.Sprintf("%d", r.WPM),
			fmt.Sprintf("%d%%", r.Accuracy),
			fmt.Sprintf("%d", r.Errors),
			fmt.Sprintf("%d", r.Words),
		})
	}
	rightAlign := map[int]bool{2: true, 3: true, 4: true, 5: true}
	if _, err := fmt.Fprintln(w, "Results"); err != nil {
		return err
	}
	for _, line := range formatTable(headers, rows, rightAlign) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}
