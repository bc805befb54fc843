// Package rankui provides the Bubble Tea ranking view.
package rankui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/verte-zerg/nomes/internal/api"
	"github.com/verte-zerg/nomes/internal/chart"
	"github.com/verte-zerg/nomes/internal/model"
)

const (
	headerTitle       = "IBGE - Situação dos nomes no Brasil"
	searchPlaceholder = "Procure por algum nome"
	rankingTitle      = "Ranking geral"
	loadingText       = "Carregando..."

	defaultToastDuration = 5 * time.Second
	toastTickInterval    = 100 * time.Millisecond
	defaultWidth         = 80
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#36A2EB"))
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	chartTitle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	searchStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	toastStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Padding(0, 2).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#FF4D4F"))
)

// Model implements the Bubble Tea ranking view. It owns the ViewState and
// mutates it only from Update.
type Model struct {
	source api.Source
	cfg    model.Config
	logger *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc

	state      model.ViewState
	prior      *model.ChartDataset
	chartLabel string
	seq        int

	input    textinput.Model
	spinner  spinner.Model
	viewport viewport.Model
	progress progress.Model

	toast     *toast
	toastSeq  int
	tickEvery time.Duration
	now       func() time.Time

	width  int
	height int
}

// NewModel constructs a ranking view reading from src.
func NewModel(src api.Source, cfg model.Config, logger *zap.Logger) *Model {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ToastDuration <= 0 {
		cfg.ToastDuration = defaultToastDuration
	}
	ctx, cancel := context.WithCancel(context.Background())
	m := &Model{
		source:    src,
		cfg:       cfg,
		logger:    logger,
		ctx:       ctx,
		cancel:    cancel,
		tickEvery: toastTickInterval,
		now:       time.Now,
		viewport:  viewport.New(0, 0),
		spinner:   spinner.New(spinner.WithSpinner(spinner.MiniDot)),
		progress: progress.New(
			progress.WithSolidFill("#FF4D4F"),
			progress.WithoutPercentage(),
			progress.WithWidth(30),
		),
	}
	m.initInput()
	return m
}

// State returns a copy of the current view state.
func (m *Model) State() model.ViewState {
	return m.state
}

// Close cancels requests still in flight.
func (m *Model) Close() {
	m.cancel()
}

// Init implements tea.Model. The overall ranking is requested on mount.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, textinput.Blink, m.loadOverallRanking())
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		return m, nil
	case rankingLoadedMsg:
		return m, m.applyRanking(msg)
	case searchDoneMsg:
		return m, m.applySearch(msg)
	case toastTickMsg:
		return m, m.tickToast(msg)
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.MouseMsg:
		m.handleToastMouse(msg)
		return m, nil
	case tea.KeyMsg:
		return m.updateKeys(msg)
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		m.cancel()
		return m, tea.Quit
	case tea.KeyEsc:
		m.dismissToast()
		return m, nil
	case tea.KeyCtrlR:
		return m, m.loadOverallRanking()
	case tea.KeyEnter:
		return m, m.searchName()
	case tea.KeyUp, tea.KeyDown, tea.KeyPgUp, tea.KeyPgDown:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.state.SearchText = m.input.Value()
	return m, cmd
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	header := m.renderHeader()
	toastView := m.renderToast()
	search := m.renderSearch()
	footer := m.renderFooter()
	bodyHeight := m.bodyHeight(header, toastView, search, footer)

	parts := []string{fitLines(header, m.width, lipgloss.Height(header))}
	if toastView != "" {
		parts = append(parts, fitLines(toastView, m.width, lipgloss.Height(toastView)))
	}
	parts = append(parts,
		fitLines(m.renderBody(bodyHeight), m.width, bodyHeight),
		fitLines(search, m.width, lipgloss.Height(search)),
		fitLines(footer, m.width, 1),
	)
	return strings.Join(parts, "\n")
}

func (m *Model) initInput() {
	input := textinput.New()
	input.Prompt = "🔍 "
	input.Placeholder = searchPlaceholder
	input.CharLimit = 64
	input.Cursor.SetMode(cursor.CursorBlink)
	input.Focus()
	m.input = input
}

func (m *Model) bodyHeight(header, toastView, search, footer string) int {
	used := lipgloss.Height(header) + lipgloss.Height(search) + lipgloss.Height(footer)
	if toastView != "" {
		used += lipgloss.Height(toastView)
	}
	h := m.height - used
	if h < 1 {
		h = 1
	}
	return h
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	promptWidth := lipgloss.Width(m.input.Prompt)
	m.input.Width = maxInt(10, m.width-promptWidth-8)
	m.progress.Width = maxInt(10, minInt(m.width-8, 40))
	m.resizeViewport()
	m.renderChart()
}

func (m *Model) resizeViewport() {
	height := m.bodyHeight(m.renderHeader(), m.renderToast(), m.renderSearch(), m.renderFooter())
	m.viewport.Width = m.width
	m.viewport.Height = maxInt(1, height-1)
}

func (m *Model) renderHeader() string {
	return lipgloss.PlaceHorizontal(maxInt(m.width, 1), lipgloss.Center, titleStyle.Render(headerTitle))
}

func (m *Model) renderSearch() string {
	width := maxInt(m.width-2, 10)
	return searchStyle.Width(width).Render(m.input.View())
}

func (m *Model) renderFooter() string {
	help := "Buscar: enter  Rolar: ↑/↓  Recarregar: ctrl+r  Fechar aviso: esc  Sair: ctrl+c"
	return headerStyle.Render(truncateLine(help, m.width))
}

func (m *Model) renderBody(height int) string {
	if m.state.Loading() {
		loading := m.spinner.View() + " " + loadingText
		return lipgloss.Place(m.width, height, lipgloss.Center, lipgloss.Center, loading)
	}
	title := chartTitle.Render(truncateLine(m.chartLabel, m.width))
	return title + "\n" + m.viewport.View()
}

func (m *Model) renderChart() {
	if m.state.ChartData == nil {
		return
	}
	width := m.width
	if width <= 0 {
		width = defaultWidth
	}
	m.viewport.SetContent(chart.RenderBars(*m.state.ChartData, width, m.cfg.ForceColor))
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func padLine(line string, width int) string {
	lineWidth := lipgloss.Width(line)
	if lineWidth < width {
		return line + strings.Repeat(" ", width-lineWidth)
	}
	return line
}

func fitLines(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines, "\n")
}

func truncateLine(s string, width int) string {
	if width <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width <= 3 {
		return string(runes[:width])
	}
	return string(runes[:width-3]) + "..."
}
