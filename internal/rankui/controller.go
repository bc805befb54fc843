package rankui

import (
	"strings"

	"github.com/cockroachdb/errors"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/verte-zerg/nomes/internal/api"
	"github.com/verte-zerg/nomes/internal/dataset"
	"github.com/verte-zerg/nomes/internal/model"
)

const (
	notFoundText      = "😢 Não há registros com esse nome"
	requestFailedText = "Falha na requisição, tente novamente"
)

// rankingLoadedMsg carries the result of a /ranking fetch. fallback marks the
// fetch issued after a failed search.
type rankingLoadedMsg struct {
	seq      int
	records  []model.NameRecord
	err      error
	fallback bool
}

type searchDoneMsg struct {
	seq     int
	query   string
	records []model.NameRecord
	err     error
}

// loadOverallRanking starts a new action that fetches the overall ranking.
// The chart stays on screen until the response arrives.
func (m *Model) loadOverallRanking() tea.Cmd {
	m.seq++
	if m.state.ChartData != nil {
		m.prior = m.state.ChartData
	}
	return m.fetchRanking(m.seq, false)
}

func (m *Model) fetchRanking(seq int, fallback bool) tea.Cmd {
	ctx, src := m.ctx, m.source
	return func() tea.Msg {
		records, err := src.Ranking(ctx)
		return rankingLoadedMsg{seq: seq, records: records, err: err, fallback: fallback}
	}
}

// searchName fetches the history of the name typed in the search box.
// Blank input is ignored.
func (m *Model) searchName() tea.Cmd {
	text := strings.TrimSpace(m.input.Value())
	if text == "" {
		return nil
	}
	m.state.SearchText = m.input.Value()
	m.seq++
	if m.state.ChartData != nil {
		m.prior = m.state.ChartData
	}
	m.state.ChartData = nil

	seq, query := m.seq, strings.ToLower(text)
	ctx, src := m.ctx, m.source
	m.logger.Debug("search", zap.String("name", query), zap.Int("seq", seq))
	return func() tea.Msg {
		records, err := src.NameHistory(ctx, query)
		return searchDoneMsg{seq: seq, query: query, records: records, err: err}
	}
}

func (m *Model) applyRanking(msg rankingLoadedMsg) tea.Cmd {
	if msg.seq != m.seq {
		m.logger.Debug("stale ranking dropped", zap.Int("seq", msg.seq), zap.Int("current", m.seq))
		return nil
	}
	if msg.err != nil {
		if errors.Is(msg.err, api.ErrRequestFailed) {
			m.logger.Warn("ranking request failed", zap.Bool("fallback", msg.fallback), zap.Error(msg.err))
			if m.state.ChartData == nil && m.prior != nil {
				m.state.ChartData = m.prior
				m.renderChart()
			}
			return m.showToast(requestFailedText)
		}
		m.logger.Info("ranking unavailable", zap.Bool("fallback", msg.fallback), zap.Error(msg.err))
		return nil
	}
	m.logger.Debug("ranking loaded", zap.Bool("fallback", msg.fallback), zap.Int("records", len(msg.records)))
	ds := dataset.Build(msg.records, dataset.ByName)
	m.setChart(&ds, rankingTitle)
	return nil
}

func (m *Model) applySearch(msg searchDoneMsg) tea.Cmd {
	if msg.seq != m.seq {
		m.logger.Debug("stale search dropped", zap.String("name", msg.query), zap.Int("seq", msg.seq))
		return nil
	}
	if msg.err == nil && len(msg.records) > 0 {
		ds := dataset.Build(msg.records, dataset.ByPeriod)
		m.setChart(&ds, "Frequência de "+dataset.Capitalize(msg.query)+" por período")
		return nil
	}

	text := notFoundText
	if errors.Is(msg.err, api.ErrRequestFailed) {
		text = requestFailedText
		m.logger.Warn("search request failed", zap.String("name", msg.query), zap.Error(msg.err))
	} else {
		m.logger.Info("name not found", zap.String("name", msg.query), zap.Error(msg.err))
	}
	return tea.Batch(m.showToast(text), m.fetchRanking(msg.seq, true))
}

func (m *Model) setChart(ds *model.ChartDataset, label string) {
	m.state.ChartData = ds
	m.prior = nil
	m.chartLabel = label
	m.viewport.GotoTop()
	m.renderChart()
}
