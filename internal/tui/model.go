// Package tui provides the Bubble Tea proctor interface for reading sessions.
package tui

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/timer"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/dmt/internal/model"
	"github.com/verte-zerg/dmt/internal/session"
)

// Proctor records events on an open session and finishes it.
type Proctor interface {
	RecordEvent(ctx context.Context, actor model.User, id, word string, correct, selfCorrected bool) (session.Snapshot, error)
	FinishSession(ctx context.Context, actor model.User, id string) (model.SessionRecord, error)
}

type mark int

const (
	markPending mark = iota
	markCorrect
	markError
)

// Model implements the Bubble Tea proctor UI. The proctor marks every word
// the reader says; the timer counts down the session budget.
type Model struct {
	proctor   Proctor
	actor     model.User
	reader    string
	sessionID string
	card      []string

	marks     []mark
	selfMarks []bool
	pos       int
	selfFlag  bool

	timer   timer.Model
	started bool

	width  int
	height int

	result *model.SessionRecord
	err    error

	lastWPM float64
	bestWPM float64
	hasLast bool
}

var (
	correctStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	incorrectStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	selfCorrectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#E6B450"))
	pendingStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	currentWordStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Underline(true)
	footerStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	flagStyle          = lipgloss.NewStyle().Foreground(lipgloss.Color("#E6B450")).Bold(true)
	resultStyle        = lipgloss.NewStyle().Padding(1, 2).Border(lipgloss.RoundedBorder())
)

// Options describe the session being proctored.
type Options struct {
	Actor     model.User
	Reader    model.User
	SessionID string
	Card      []string
	Budget    time.Duration
	// History is the reader's finished sessions, oldest first.
	History []model.SessionRecord
}

// NewModel constructs a proctor model for an already opened session.
func NewModel(p Proctor, opts Options) *Model {
	m := &Model{
		proctor:   p,
		actor:     opts.Actor,
		reader:    opts.Reader.Name,
		sessionID: opts.SessionID,
		card:      opts.Card,
		marks:     make([]mark, len(opts.Card)),
		selfMarks: make([]bool, len(opts.Card)),
		timer:     timer.NewWithInterval(opts.Budget, time.Second),
	}
	if n := len(opts.History); n > 0 {
		m.lastWPM = opts.History[n-1].WPM
		m.hasLast = true
		for _, rec := range opts.History {
			if rec.WPM > m.bestWPM {
				m.bestWPM = rec.WPM
			}
		}
	}
	return m
}

// Init implements tea.Model. The countdown starts with the first mark.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Result returns the finished session, if any.
func (m *Model) Result() (model.SessionRecord, bool) {
	if m.result == nil {
		return model.SessionRecord{}, false
	}
	return *m.result, true
}

// Err returns the error that ended the session, if any.
func (m *Model) Err() error {
	return m.err
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case timer.TickMsg, timer.StartStopMsg:
		var cmd tea.Cmd
		m.timer, cmd = m.timer.Update(msg)
		return m, cmd
	case timer.TimeoutMsg:
		if msg.ID != m.timer.ID() {
			return m, nil
		}
		m.finish()
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	default:
		return m, nil
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.done() {
		switch msg.String() {
		case "ctrl+c", "q", "enter", "esc":
			return m, tea.Quit
		}
		return m, nil
	}
	switch msg.String() {
	case "ctrl+c", "esc":
		if m.pos > 0 {
			m.finish()
		}
		return m, tea.Quit
	case " ", "enter":
		return m, m.markWord(true)
	case "x":
		return m, m.markWord(false)
	case "s":
		m.selfFlag = !m.selfFlag
		return m, nil
	}
	return m, nil
}

// markWord records the current word and advances. The first mark starts the
// countdown; the last word on the card finishes the session.
func (m *Model) markWord(correct bool) tea.Cmd {
	if m.pos >= len(m.card) {
		return nil
	}
	word := m.card[m.pos]
	if _, err := m.proctor.RecordEvent(context.Background(), m.actor, m.sessionID, word, correct, m.selfFlag); err != nil {
		m.err = fmt.Errorf("failed to record word: %w", err)
		return tea.Quit
	}
	if correct {
		m.marks[m.pos] = markCorrect
	} else {
		m.marks[m.pos] = markError
	}
	m.selfMarks[m.pos] = m.selfFlag
	m.selfFlag = false
	m.pos++

	if m.pos == len(m.card) {
		m.finish()
		return nil
	}
	if !m.started {
		m.started = true
		return m.timer.Init()
	}
	return nil
}

func (m *Model) finish() {
	if m.done() {
		return
	}
	rec, err := m.proctor.FinishSession(context.Background(), m.actor, m.sessionID)
	if err != nil {
		m.err = fmt.Errorf("failed to finish session: %w", err)
		logErrf("%v\n", m.err)
		return
	}
	m.result = &rec
}

func (m *Model) done() bool {
	return m.result != nil || m.err != nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.done() {
		return m.place(m.renderResult(), "")
	}
	if len(m.card) == 0 {
		return ""
	}
	words := buildStyledWords(m.card, m.marks, m.selfMarks, m.pos)
	if m.width == 0 || m.height == 0 {
		return renderStyledWords(words) + "\n" + m.renderFooter()
	}
	contentWidth := int(float64(m.width) * 0.70)
	if contentWidth < 1 {
		contentWidth = 1
	}
	content := lipgloss.NewStyle().Width(contentWidth).Render(wrapStyledWords(words, contentWidth))
	return m.place(content, m.renderFooter())
}

func (m *Model) place(content, footer string) string {
	if m.width == 0 || m.height == 0 {
		return content
	}
	if footer == "" || m.height < 3 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
	}
	body := lipgloss.Place(m.width, m.height-1, lipgloss.Center, lipgloss.Center, content)
	footerLine := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, footer)
	return body + "\n" + footerLine
}

func (m *Model) renderFooter() string {
	remaining := m.timer.Timeout
	if remaining < 0 {
		remaining = 0
	}
	segments := []string{
		fmt.Sprintf("%s %s", m.reader, formatClock(remaining)),
		fmt.Sprintf("Word %d/%d", m.pos, len(m.card)),
	}
	if m.hasLast {
		segments = append(segments, fmt.Sprintf("Last %.1f WPM · Best %.1f WPM", m.lastWPM, m.bestWPM))
	}
	footer := footerStyle.Render(strings.Join(segments, "  "))
	if m.selfFlag {
		footer += "  " + flagStyle.Render("[self-correction]")
	}
	return footer
}

func (m *Model) renderResult() string {
	if m.err != nil {
		return incorrectStyle.Render(m.err.Error())
	}
	rec := m.result
	lines := []string{
		fmt.Sprintf("%s finished the card", m.reader),
		"",
		fmt.Sprintf("Words presented  %d", len(rec.WordsPresented)),
		fmt.Sprintf("Correct words    %d", rec.CorrectWords),
		fmt.Sprintf("Errors           %d (%d self-corrected)", rec.Errors, rec.SelfCorrections),
		fmt.Sprintf("Speed            %.1f WPM", rec.WPM),
		fmt.Sprintf("Accuracy         %.1f%%", rec.Accuracy*100),
	}
	if m.hasLast {
		lines = append(lines, fmt.Sprintf("Previous         %.1f WPM", m.lastWPM))
	}
	lines = append(lines, "", footerStyle.Render("press q to quit"))
	return resultStyle.Render(strings.Join(lines, "\n"))
}

func formatClock(d time.Duration) string {
	secs := int(d.Round(time.Second).Seconds())
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
