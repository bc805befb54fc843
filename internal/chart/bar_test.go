package chart

import (
	"bytes"
	"strings"
	"testing"

	"github.com/verte-zerg/nomes/internal/model"
)

func rankingDataset() model.ChartDataset {
	return model.ChartDataset{
		Labels: []string{"Maria", "Jose"},
		Series: []model.Series{{
			Label:  "Quantidade de pessoas",
			Values: []float64{500, 480},
			Style:  model.SeriesStyle{BorderColor: "rgba(54, 162, 235, 1)"},
		}},
	}
}

func TestPlotBars(t *testing.T) {
	var buf bytes.Buffer
	if err := PlotBars(&buf, "Ranking", rankingDataset(), 60); err != nil {
		t.Fatalf("PlotBars failed: %v", err)
	}
	out := buf.String()
	if strings.Contains(out, "\x1b[") {
		t.Fatalf("expected no color codes when writing to a buffer")
	}
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 5 {
		t.Fatalf("expected title, 2 bars, axis and ticks; got %d lines:\n%s", len(lines), out)
	}
	if lines[0] != "Ranking" {
		t.Fatalf("unexpected title line: %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "Maria │ █") || !strings.HasSuffix(lines[1], " 500") {
		t.Fatalf("unexpected first bar: %q", lines[1])
	}
	if !strings.HasPrefix(lines[2], "Jose  │ █") || !strings.HasSuffix(lines[2], " 480") {
		t.Fatalf("unexpected second bar: %q", lines[2])
	}
	if !strings.Contains(lines[3], "└") {
		t.Fatalf("expected axis line, got %q", lines[3])
	}
	if !strings.Contains(lines[4], "0") || !strings.Contains(lines[4], "500") {
		t.Fatalf("expected scale ticks, got %q", lines[4])
	}
	if strings.Contains(out, "Legenda") {
		t.Fatalf("legend should be hidden for a single series")
	}
}

func TestPlotBarsLongestBarFillsWidth(t *testing.T) {
	out := RenderBars(rankingDataset(), 40, false)
	first := strings.Split(out, "\n")[0]
	bar := strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(first, "Maria │ "), "500"))
	// 40 - label(5) - separator(3) - space(1) - value(3)
	if got := len([]rune(bar)); got != 28 {
		t.Fatalf("expected 28 cells for the max bar, got %d in %q", got, first)
	}
}

func TestPlotBarsWithColor(t *testing.T) {
	t.Setenv("NO_COLOR", "")
	var buf bytes.Buffer
	if err := PlotBarsWithColor(&buf, "", rankingDataset(), 60, true); err != nil {
		t.Fatalf("PlotBarsWithColor failed: %v", err)
	}
	if !strings.Contains(buf.String(), "\x1b[38;2;54;162;235m") {
		t.Fatalf("expected series border color in output")
	}
}

func TestPlotBarsEmpty(t *testing.T) {
	out := RenderBars(model.ChartDataset{}, 60, false)
	if out != "Sem dados." {
		t.Fatalf("unexpected output for empty dataset: %q", out)
	}
}

func TestPlotBarsMultipleSeriesShowsLegend(t *testing.T) {
	ds := rankingDataset()
	ds.Series = append(ds.Series, model.Series{Label: "Outra", Values: []float64{1, 2}})
	out := RenderBars(ds, 60, false)
	if !strings.Contains(out, "Legenda: █ Quantidade de pessoas  █ Outra") {
		t.Fatalf("expected legend, got:\n%s", out)
	}
}

func TestBarRunes(t *testing.T) {
	cases := []struct {
		v, max float64
		width  int
		want   string
	}{
		{v: 10, max: 10, width: 4, want: "████"},
		{v: 5, max: 10, width: 4, want: "██"},
		{v: 1, max: 16, width: 2, want: "▏"},
		{v: 3, max: 8, width: 1, want: "▍"},
		{v: 0, max: 10, width: 4, want: ""},
		{v: -1, max: 10, width: 4, want: ""},
		{v: 5, max: 0, width: 4, want: ""},
	}
	for _, tc := range cases {
		if got := barRunes(tc.v, tc.max, tc.width); got != tc.want {
			t.Fatalf("barRunes(%v, %v, %d) = %q, want %q", tc.v, tc.max, tc.width, got, tc.want)
		}
	}
}

func TestParseRGB(t *testing.T) {
	r, g, b, ok := parseRGB("rgba(54, 162, 235, 0.2)")
	if !ok || r != 54 || g != 162 || b != 235 {
		t.Fatalf("unexpected rgba parse: %d %d %d %v", r, g, b, ok)
	}
	r, g, b, ok = parseRGB("#C89A3A")
	if !ok || r != 0xC8 || g != 0x9A || b != 0x3A {
		t.Fatalf("unexpected hex parse: %d %d %d %v", r, g, b, ok)
	}
	if _, _, _, ok := parseRGB("blue"); ok {
		t.Fatalf("expected named color to be rejected")
	}
}
