package stats

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/dmt/internal/model"
)

// RenderMisreadTable prints the top most-misread words.
func RenderMisreadTable(w io.Writer, aggs []model.WordAggregate, top int) error {
	misread := make([]model.WordAggregate, 0, len(aggs))
	for _, agg := range aggs {
		if agg.Misread > 0 {
			misread = append(misread, agg)
		}
	}
	if len(misread) == 0 {
		_, err := fmt.Fprintln(w, "No misread words.")
		return err
	}
	sortByMisread(misread)
	if top > 0 && len(misread) > top {
		misread = misread[:top]
	}

	if _, err := fmt.Fprintln(w, "Most Misread Words"); err != nil {
		return err
	}
	headers := []string{"Word", "Misread", "Presented", "Rate"}
	rows := make([][]string, 0, len(misread))
	for _, agg := range misread {
		rows = append(rows, []string{
			agg.Word,
			fmt.Sprintf("%d", agg.Misread),
			fmt.Sprintf("%d", agg.Presented),
			fmt.Sprintf("%.1f%%", MisreadRate(agg)*100),
		})
	}
	for _, line := range formatTable(headers, rows, map[int]bool{1: true, 2: true, 3: true}) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

func formatTable(headers []string, rows [][]string, rightAlignCols map[int]bool) []string {
	colCount := len(headers)
	for _, row := range rows {
		if len(row) > colCount {
			colCount = len(row)
		}
	}
	if colCount == 0 {
		return nil
	}

	widths := make([]int, colCount)
	for i, header := range headers {
		widths[i] = displayWidth(header)
	}
	for _, row := range rows {
		for i := 0; i < colCount; i++ {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			if w := displayWidth(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}

	lines := make([]string, 0, len(rows)+1)
	if len(headers) > 0 {
		lines = append(lines, formatRow(headers, widths, rightAlignCols))
	}
	for _, row := range rows {
		lines = append(lines, formatRow(row, widths, rightAlignCols))
	}
	return lines
}

func formatRow(row []string, widths []int, rightAlignCols map[int]bool) string {
	var b strings.Builder
	for i := 0; i < len(widths); i++ {
		cell := ""
		if i < len(row) {
			cell = row[i]
		}
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(padCell(cell, widths[i], rightAlignCols[i]))
	}
	return b.String()
}

func padCell(value string, width int, rightAlign bool) string {
	valueWidth := displayWidth(value)
	if valueWidth >= width {
		return value
	}
	padding := width - valueWidth
	if rightAlign {
		return strings.Repeat(" ", padding) + value
	}
	return value + strings.Repeat(" ", padding)
}

func displayWidth(value string) int {
	return runewidth.StringWidth(value)
}
