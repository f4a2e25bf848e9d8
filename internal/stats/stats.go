// Package stats contains reading statistics calculations and reporting.
package stats

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/verte-zerg/dmt/internal/model"
)

const terminalWidthBackup = 80

var sparkChars = []rune("▁▂▃▄▅▆▇█")

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	wpmStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#36C5F0"))
	accStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#2EB67D"))
)

// Summary aggregates finished sessions.
type Summary struct {
	Sessions    int
	AvgWPM      float64
	BestWPM     float64
	AvgAccuracy float64
	Words       int
	Errors      int
}

// Summarize computes the summary of records.
func Summarize(records []model.SessionRecord) Summary {
	var sum Summary
	if len(records) == 0 {
		return sum
	}
	var totalWPM, totalAcc float64
	for _, rec := range records {
		totalWPM += rec.WPM
		totalAcc += rec.Accuracy
		if rec.WPM > sum.BestWPM {
			sum.BestWPM = rec.WPM
		}
		sum.Words += len(rec.WordsPresented)
		sum.Errors += rec.Errors
	}
	sum.Sessions = len(records)
	sum.AvgWPM = totalWPM / float64(len(records))
	sum.AvgAccuracy = totalAcc / float64(len(records))
	return sum
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	if window <= 1 {
		copy(out, values)
		return out
	}
	var sum float64
	for i, v := range values {
		sum += v
		if i >= window {
			sum -= values[i-window]
		}
		den := float64(min(i+1, window))
		out[i] = sum / den
	}
	return out
}

// Sparkline renders values as a single line of block characters scaled
// between the series minimum and maximum.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal, maxVal := values[0], values[0]
	for _, v := range values[1:] {
		minVal = math.Min(minVal, v)
		maxVal = math.Max(maxVal, v)
	}
	if maxVal-minVal < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		idx := int(math.Round((v - minVal) / (maxVal - minVal) * float64(len(sparkChars)-1)))
		b.WriteRune(sparkChars[idx])
	}
	return b.String()
}

// Resample averages values into at most width buckets.
func Resample(values []float64, width int) []float64 {
	if width <= 0 || len(values) <= width {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, width)
	for i := range out {
		start := i * len(values) / width
		end := (i + 1) * len(values) / width
		if end <= start {
			end = start + 1
		}
		var sum float64
		for _, v := range values[start:end] {
			sum += v
		}
		out[i] = sum / float64(end-start)
	}
	return out
}

// RenderSummary prints the summary block.
func RenderSummary(w io.Writer, records []model.SessionRecord) error {
	if len(records) == 0 {
		_, err := fmt.Fprintln(w, "No sessions found.")
		return err
	}
	sum := Summarize(records)
	lines := []string{
		"Summary",
		fmt.Sprintf("Sessions: %d", sum.Sessions),
		fmt.Sprintf("Words presented: %d", sum.Words),
		fmt.Sprintf("Avg WPM: %.1f", sum.AvgWPM),
		fmt.Sprintf("Best WPM: %.1f", sum.BestWPM),
		fmt.Sprintf("Avg Accuracy: %.1f%%", sum.AvgAccuracy*100),
		"",
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderCurves prints WPM and accuracy sparklines smoothed over window
// sessions. A zero width uses the terminal width.
func RenderCurves(w io.Writer, records []model.SessionRecord, window, width int, useColor bool) error {
	if len(records) == 0 {
		return nil
	}
	wpms := make([]float64, len(records))
	accs := make([]float64, len(records))
	for i, rec := range records {
		wpms[i] = rec.WPM
		accs[i] = rec.Accuracy * 100
	}
	wpms = MovingAverage(wpms, window)
	accs = MovingAverage(accs, window)

	if width <= 0 {
		width = terminalWidth()
	}
	const labelWidth = 10
	plotWidth := max(width-labelWidth-24, 10)

	last := len(records) - 1
	rows := []struct {
		label  string
		values []float64
		style  lipgloss.Style
		latest string
	}{
		{"WPM", wpms, wpmStyle, fmt.Sprintf("%.1f", wpms[last])},
		{"Accuracy", accs, accStyle, fmt.Sprintf("%.1f%%", accs[last])},
	}

	title := fmt.Sprintf("Progress (moving average over %d)", max(window, 1))
	if useColor {
		title = titleStyle.Render(title)
	}
	if _, err := fmt.Fprintln(w, title); err != nil {
		return err
	}
	for _, row := range rows {
		line := Sparkline(Resample(row.values, plotWidth))
		if useColor {
			line = row.style.Render(line)
		}
		if _, err := fmt.Fprintf(w, "%-*s%s  latest %s\n", labelWidth, row.label, line, row.latest); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}

// ShouldUseColor reports whether w is a terminal and NO_COLOR is unset.
func ShouldUseColor(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}
