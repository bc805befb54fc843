// Package chart renders chart datasets as terminal bar charts and tables.
package chart

import (
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"
	"golang.org/x/term"

	"github.com/verte-zerg/nomes/internal/model"
)

type ansiColor struct {
	name string
	code string
}

const (
	minBarWidth         = 10
	axisSeparator       = " │ "
	axisCorner          = " └"
	axisLine            = "─"
	colorReset          = "\x1b[0m"
	terminalWidthBackup = 80
)

// Partial blocks from one eighth to seven eighths of a cell.
var partialBlocks = []rune("▏▎▍▌▋▊▉")

const fullBlock = '█'

var colorPalette = []ansiColor{
	{name: "blue", code: "\x1b[34m"},
	{name: "magenta", code: "\x1b[35m"},
	{name: "yellow", code: "\x1b[33m"},
	{name: "green", code: "\x1b[32m"},
	{name: "cyan", code: "\x1b[36m"},
}

// PlotBars renders ds as a horizontal bar chart, one row per label and
// series. Color is used only when w is a terminal.
func PlotBars(w io.Writer, title string, ds model.ChartDataset, width int) error {
	return plotBars(w, title, ds, width, false)
}

// PlotBarsWithColor renders a bar chart with optional forced color output.
func PlotBarsWithColor(w io.Writer, title string, ds model.ChartDataset, width int, forceColor bool) error {
	return plotBars(w, title, ds, width, forceColor)
}

// RenderBars returns the bar chart as a string.
func RenderBars(ds model.ChartDataset, width int, color bool) string {
	var b strings.Builder
	if err := plotBars(&b, "", ds, width, color); err != nil {
		return fmt.Sprintf("Failed to render chart: %v", err)
	}
	return strings.TrimRight(b.String(), "\n")
}

func plotBars(w io.Writer, title string, ds model.ChartDataset, width int, forceColor bool) error {
	if width <= 0 {
		width = terminalWidth()
	}
	if title != "" {
		if _, err := fmt.Fprintln(w, title); err != nil {
			return err
		}
	}
	if ds.Len() == 0 || len(ds.Series) == 0 {
		_, err := fmt.Fprintln(w, "Sem dados.")
		return err
	}

	maxVal := datasetMax(ds)
	valueTexts := make([][]string, len(ds.Series))
	valueWidth := 0
	for si, s := range ds.Series {
		valueTexts[si] = make([]string, ds.Len())
		for i := range ds.Labels {
			text := FormatNumber(valueAt(s, i))
			valueTexts[si][i] = text
			if tw := runewidth.StringWidth(text); tw > valueWidth {
				valueWidth = tw
			}
		}
	}

	labelWidth := labelColumnWidth(ds.Labels, width)
	barWidth := width - labelWidth - runewidth.StringWidth(axisSeparator) - 1 - valueWidth
	if barWidth < minBarWidth {
		barWidth = minBarWidth
	}

	useColor := shouldUseColor(w, forceColor)
	colors := make([]string, len(ds.Series))
	for si, s := range ds.Series {
		colors[si] = seriesColor(s.Style, si)
	}

	for i, label := range ds.Labels {
		for si, s := range ds.Series {
			cell := ""
			if si == 0 {
				cell = runewidth.Truncate(label, labelWidth, "…")
			}
			var row strings.Builder
			row.WriteString(runewidth.FillRight(cell, labelWidth))
			row.WriteString(axisSeparator)
			bar := barRunes(valueAt(s, i), maxVal, barWidth)
			if useColor && bar != "" {
				row.WriteString(colors[si])
				row.WriteString(bar)
				row.WriteString(colorReset)
			} else {
				row.WriteString(bar)
			}
			row.WriteString(" ")
			row.WriteString(valueTexts[si][i])
			if _, err := fmt.Fprintln(w, strings.TrimRight(row.String(), " ")); err != nil {
				return err
			}
		}
	}

	indent := strings.Repeat(" ", labelWidth)
	if _, err := fmt.Fprintln(w, indent+axisCorner+strings.Repeat(axisLine, barWidth+1)); err != nil {
		return err
	}
	ticks := strings.TrimRight(scaleTicks(maxVal, barWidth, valueWidth), " ")
	if _, err := fmt.Fprintln(w, indent+strings.Repeat(" ", runewidth.StringWidth(axisSeparator))+ticks); err != nil {
		return err
	}
	if len(ds.Series) > 1 {
		if _, err := fmt.Fprintln(w, renderLegend(ds.Series, colors, useColor)); err != nil {
			return err
		}
	}
	return nil
}

func valueAt(s model.Series, i int) float64 {
	if i < 0 || i >= len(s.Values) {
		return 0
	}
	return s.Values[i]
}

func datasetMax(ds model.ChartDataset) float64 {
	maxVal := 0.0
	for _, s := range ds.Series {
		for _, v := range s.Values {
			if v > maxVal {
				maxVal = v
			}
		}
	}
	return maxVal
}

func labelColumnWidth(labels []string, width int) int {
	labelWidth := 1
	for _, label := range labels {
		if lw := runewidth.StringWidth(label); lw > labelWidth {
			labelWidth = lw
		}
	}
	limit := width / 3
	if limit < 1 {
		limit = 1
	}
	if labelWidth > limit {
		labelWidth = limit
	}
	return labelWidth
}

// barRunes draws v scaled against maxVal into at most width cells, using
// eighth blocks for the remainder. Bars start at zero.
func barRunes(v, maxVal float64, width int) string {
	if width <= 0 || maxVal <= 0 || v <= 0 || math.IsNaN(v) {
		return ""
	}
	if v > maxVal {
		v = maxVal
	}
	eighths := int(math.Round(v / maxVal * float64(width*8)))
	if eighths == 0 {
		eighths = 1
	}
	full := eighths / 8
	rem := eighths % 8
	var b strings.Builder
	b.WriteString(strings.Repeat(string(fullBlock), full))
	if rem > 0 {
		b.WriteRune(partialBlocks[rem-1])
	}
	return b.String()
}

func scaleTicks(maxVal float64, barWidth, valueWidth int) string {
	total := barWidth + 1 + valueWidth
	cells := []rune(strings.Repeat(" ", total))
	place := func(text string, start int) bool {
		runes := []rune(text)
		if start < 0 || start+len(runes) > len(cells) {
			return false
		}
		for i := start; i < start+len(runes); i++ {
			if cells[i] != ' ' {
				return false
			}
		}
		if start > 0 && cells[start-1] != ' ' {
			return false
		}
		copy(cells[start:], runes)
		return true
	}
	place(FormatNumber(0), 0)
	if maxVal > 0 {
		maxText := FormatNumber(maxVal)
		maxStart := barWidth - len([]rune(maxText))/2
		if maxStart+len([]rune(maxText)) > total {
			maxStart = total - len([]rune(maxText))
		}
		place(maxText, maxStart)
		midText := FormatNumber(maxVal / 2)
		place(midText, barWidth/2-len([]rune(midText))/2)
	}
	return string(cells)
}

func renderLegend(series []model.Series, colors []string, useColor bool) string {
	parts := make([]string, 0, len(series))
	for i, s := range series {
		label := fmt.Sprintf("%c %s", fullBlock, s.Label)
		if useColor {
			label = colors[i] + label + colorReset
		}
		parts = append(parts, label)
	}
	return "Legenda: " + strings.Join(parts, "  ")
}

// seriesColor maps the series border color to an ANSI truecolor sequence,
// falling back to the palette when the color cannot be parsed.
func seriesColor(style model.SeriesStyle, idx int) string {
	if r, g, b, ok := parseRGB(style.BorderColor); ok {
		return fmt.Sprintf("\x1b[38;2;%d;%d;%dm", r, g, b)
	}
	return colorPalette[idx%len(colorPalette)].code
}

// parseRGB accepts "rgb(r, g, b)", "rgba(r, g, b, a)" and "#rrggbb".
func parseRGB(s string) (r, g, b int, ok bool) {
	s = strings.TrimSpace(strings.ToLower(s))
	if strings.HasPrefix(s, "#") && len(s) == 7 {
		v, err := strconv.ParseUint(s[1:], 16, 32)
		if err != nil {
			return 0, 0, 0, false
		}
		return int(v >> 16 & 0xff), int(v >> 8 & 0xff), int(v & 0xff), true
	}
	open := strings.IndexByte(s, '(')
	if open < 0 || !strings.HasSuffix(s, ")") {
		return 0, 0, 0, false
	}
	fn := s[:open]
	if fn != "rgb" && fn != "rgba" {
		return 0, 0, 0, false
	}
	parts := strings.Split(s[open+1:len(s)-1], ",")
	if len(parts) < 3 {
		return 0, 0, 0, false
	}
	var rgb [3]int
	for i := 0; i < 3; i++ {
		v, err := strconv.Atoi(strings.TrimSpace(parts[i]))
		if err != nil || v < 0 || v > 255 {
			return 0, 0, 0, false
		}
		rgb[i] = v
	}
	return rgb[0], rgb[1], rgb[2], true
}

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}

func shouldUseColor(w io.Writer, force bool) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if force {
		return true
	}
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}
