package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"sglint/internal/driver"
)

type fileState uint8

const (
	stateQueued fileState = iota
	stateLexing
	stateChecking
	stateAuditing
	stateDone
	stateFailed
	numStates
)

var (
	stateNames  = [numStates]string{"queued", "lexing", "checking", "auditing", "done", "failed"}
	stateWeight = [numStates]float64{0, 0.2, 0.5, 0.8, 1, 1}
	stateColor  = [numStates]lipgloss.Color{"7", "6", "6", "6", "2", "1"}
)

const (
	recentLines = 6
	failLines   = 5
)

type progressModel struct {
	title   string
	events  <-chan driver.Event
	cancel  func()
	spinner spinner.Model
	bar     progress.Model

	states map[string]fileState
	counts [numStates]int
	recent []string // paths in the order they last changed, newest last
	fails  []string

	width       int
	done        bool
	interrupted bool
}

type eventMsg driver.Event
type doneMsg struct{}

// NewProgressModel returns a Bubble Tea model that renders lint progress for
// files. The model quits when events is closed. Ctrl+C calls cancel, which
// may be nil.
func NewProgressModel(title string, files []string, events <-chan driver.Event, cancel func()) tea.Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))

	bar := progress.New(progress.WithDefaultGradient())
	bar.Width = 76

	m := &progressModel{
		title:   title,
		events:  events,
		cancel:  cancel,
		spinner: sp,
		bar:     bar,
		states:  make(map[string]fileState, len(files)),
		width:   80,
	}
	for _, f := range files {
		m.states[f] = stateQueued
	}
	m.counts[stateQueued] = len(m.states)
	return m
}

func (m *progressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.listenForEvent())
}

func (m *progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		cmd := m.applyEvent(driver.Event(msg))
		return m, tea.Batch(cmd, m.listenForEvent())
	case doneMsg:
		m.done = true
		return m, tea.Quit
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.interrupted = true
			if m.cancel != nil {
				m.cancel()
			}
			return m, tea.Quit
		}
	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
			m.bar.Width = msg.Width - 4
		}
	case progress.FrameMsg:
		bar, cmd := m.bar.Update(msg)
		m.bar = bar.(progress.Model)
		return m, cmd
	}
	return m, nil
}

func (m *progressModel) listenForEvent() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return doneMsg{}
		}
		return eventMsg(ev)
	}
}

// stateOf maps a driver event to the state it puts its file in.
func stateOf(ev driver.Event) (fileState, bool) {
	switch ev.Status {
	case driver.StatusQueued:
		return stateQueued, true
	case driver.StatusDone:
		return stateDone, true
	case driver.StatusError:
		return stateFailed, true
	case driver.StatusWorking:
		switch ev.Stage {
		case driver.StageLex:
			return stateLexing, true
		case driver.StageRules:
			return stateChecking, true
		case driver.StageAudit:
			return stateAuditing, true
		}
	}
	return 0, false
}

func (m *progressModel) applyEvent(ev driver.Event) tea.Cmd {
	next, ok := stateOf(ev)
	if !ok {
		return nil
	}
	prev, known := m.states[ev.File]
	if !known || prev == next || prev == stateFailed {
		return nil
	}
	m.states[ev.File] = next
	m.counts[prev]--
	m.counts[next]++

	if i := indexOf(m.recent, ev.File); i >= 0 {
		m.recent = append(m.recent[:i], m.recent[i+1:]...)
	}
	m.recent = append(m.recent, ev.File)
	if len(m.recent) > recentLines {
		m.recent = m.recent[len(m.recent)-recentLines:]
	}
	if next == stateFailed {
		line := ev.File
		if ev.Err != nil {
			line += ": " + ev.Err.Error()
		}
		m.fails = append(m.fails, line)
	}
	return m.bar.SetPercent(m.percent())
}

func (m *progressModel) percent() float64 {
	if len(m.states) == 0 {
		return 0
	}
	total := 0.0
	for s, n := range m.counts {
		total += stateWeight[s] * float64(n)
	}
	return total / float64(len(m.states))
}

func (m *progressModel) View() string {
	if len(m.states) == 0 {
		return ""
	}
	var b strings.Builder

	header := m.title
	switch {
	case m.interrupted:
		header = "interrupted: " + header
	case m.done:
		header = "done: " + header
	default:
		header = m.spinner.View() + " " + header
	}
	b.WriteString(lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7")).Render(header))
	b.WriteString("\n")

	var counts []string
	for s := numStates - 1; ; s-- {
		if m.counts[s] > 0 {
			counts = append(counts, paint(s, fmt.Sprintf("%d %s", m.counts[s], stateNames[s])))
		}
		if s == 0 {
			break
		}
	}
	b.WriteString("  " + strings.Join(counts, " · ") + "\n\n")

	nameWidth := max(m.width-14, 20)
	for _, path := range m.recent {
		s := m.states[path]
		fmt.Fprintf(&b, "  %s %s\n", paint(s, fmt.Sprintf("%9s", stateNames[s])), truncate(path, nameWidth))
	}
	if len(m.fails) > 0 {
		b.WriteString("\n")
		shown := m.fails[max(len(m.fails)-failLines, 0):]
		for _, line := range shown {
			b.WriteString("  " + paint(stateFailed, truncate(line, m.width-2)) + "\n")
		}
	}

	b.WriteString("\n")
	if m.done {
		b.WriteString(m.bar.ViewAs(1.0))
	} else {
		b.WriteString(m.bar.View())
	}
	b.WriteString("\n")
	return b.String()
}

func paint(s fileState, text string) string {
	return lipgloss.NewStyle().Foreground(stateColor[s]).Render(text)
}

func indexOf(list []string, v string) int {
	for i, s := range list {
		if s == v {
			return i
		}
	}
	return -1
}

func truncate(value string, width int) string {
	if width <= 0 || runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width, "...")
}
