package chart

import (
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/nomes/internal/model"
)

// FormatTable lays ds out as text columns: the label column headed by
// labelHeader, then one right-aligned column per series.
func FormatTable(labelHeader string, ds model.ChartDataset) []string {
	headers := []string{labelHeader}
	rightAlign := map[int]bool{}
	for i, s := range ds.Series {
		headers = append(headers, s.Label)
		rightAlign[i+1] = true
	}
	rows := make([][]string, 0, ds.Len())
	for i, label := range ds.Labels {
		row := []string{label}
		for _, s := range ds.Series {
			row = append(row, FormatNumber(valueAt(s, i)))
		}
		rows = append(rows, row)
	}
	return formatTable(headers, rows, rightAlign)
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
			b.WriteString("  ")
		}
		b.WriteString(padCell(cell, widths[i], rightAlignCols[i]))
	}
	return strings.TrimRight(b.String(), " ")
}

func padCell(value string, width int, rightAlign bool) string {
	if rightAlign {
		return runewidth.FillLeft(value, width)
	}
	return runewidth.FillRight(value, width)
}

func displayWidth(value string) int {
	return runewidth.StringWidth(value)
}
