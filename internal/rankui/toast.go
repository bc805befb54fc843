package rankui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type toast struct {
	id       int
	text     string
	shownAt  time.Time
	duration time.Duration
	paused   bool
	pausedAt time.Time
}

type toastTickMsg struct {
	id int
}

// remaining reports the fraction of the display time left, in [0, 1].
// The countdown is frozen while the toast is paused.
func (t *toast) remaining(now time.Time) float64 {
	if t.duration <= 0 {
		return 0
	}
	if t.paused {
		now = t.pausedAt
	}
	left := 1 - float64(now.Sub(t.shownAt))/float64(t.duration)
	if left < 0 {
		return 0
	}
	if left > 1 {
		return 1
	}
	return left
}

func (t *toast) pause(now time.Time) {
	if t.paused {
		return
	}
	t.paused = true
	t.pausedAt = now
}

// resume shifts shownAt by the time spent paused.
func (t *toast) resume(now time.Time) {
	if !t.paused {
		return
	}
	t.shownAt = t.shownAt.Add(now.Sub(t.pausedAt))
	t.paused = false
}

// showToast replaces any visible toast with text and starts its countdown.
func (m *Model) showToast(text string) tea.Cmd {
	m.toastSeq++
	m.toast = &toast{
		id:       m.toastSeq,
		text:     text,
		shownAt:  m.now(),
		duration: m.cfg.ToastDuration,
	}
	m.resizeViewport()
	return m.scheduleToastTick(m.toastSeq)
}

func (m *Model) scheduleToastTick(id int) tea.Cmd {
	return tea.Tick(m.tickEvery, func(time.Time) tea.Msg {
		return toastTickMsg{id: id}
	})
}

func (m *Model) tickToast(msg toastTickMsg) tea.Cmd {
	if m.toast == nil || m.toast.id != msg.id {
		return nil
	}
	if !m.toast.paused && m.toast.remaining(m.now()) <= 0 {
		m.dismissToast()
		return nil
	}
	return m.scheduleToastTick(msg.id)
}

func (m *Model) dismissToast() {
	if m.toast == nil {
		return
	}
	m.toast = nil
	m.resizeViewport()
}

func (m *Model) renderToast() string {
	if m.toast == nil {
		return ""
	}
	bar := m.progress.ViewAs(m.toast.remaining(m.now()))
	box := toastStyle.Render(lipgloss.JoinVertical(lipgloss.Center, m.toast.text, bar))
	return lipgloss.PlaceHorizontal(maxInt(m.width, 1), lipgloss.Center, box)
}

// handleToastMouse pauses the countdown while the pointer is over the
// toast and dismisses it on a left click.
func (m *Model) handleToastMouse(msg tea.MouseMsg) {
	if m.toast == nil {
		return
	}
	over := m.overToast(msg.X, msg.Y)
	if over && msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft {
		m.dismissToast()
		return
	}
	if over {
		m.toast.pause(m.now())
	} else {
		m.toast.resume(m.now())
	}
}

func (m *Model) overToast(x, y int) bool {
	if m.toast == nil {
		return false
	}
	top := lipgloss.Height(m.renderHeader())
	view := m.renderToast()
	if y < top || y >= top+lipgloss.Height(view) {
		return false
	}
	boxWidth := lipgloss.Width(toastStyle.Render(lipgloss.JoinVertical(lipgloss.Center,
		m.toast.text, m.progress.ViewAs(0))))
	left := (maxInt(m.width, 1) - boxWidth) / 2
	if left < 0 {
		left = 0
	}
	return x >= left && x < left+boxWidth
}
