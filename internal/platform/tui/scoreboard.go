package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/tri-runner/internal/registry"
	"github.com/vovakirdan/tri-runner/internal/runner"
	"github.com/vovakirdan/tri-runner/internal/storage"
)

const (
	minWidthForSidebar = 90
	sidebarWidth       = 26
	maxRuns            = 100
)

// boardView selects which runs the leaderboard lists.
type boardView int

const (
	viewBest boardView = iota
	viewRecent
)

func (v boardView) String() string {
	if v == viewRecent {
		return "recent"
	}
	return "best"
}

// ScoreboardKeyMap defines the key bindings for the leaderboard.
type ScoreboardKeyMap struct {
	Up         key.Binding
	Down       key.Binding
	NextCourse key.Binding
	PrevCourse key.Binding
	ToggleView key.Binding
	Back       key.Binding
	Quit       key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k ScoreboardKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.NextCourse, k.ToggleView, k.Back}
}

// FullHelp returns key bindings for the full help view.
func (k ScoreboardKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.NextCourse, k.PrevCourse},
		{k.ToggleView, k.Back, k.Quit},
	}
}

// DefaultScoreboardKeyMap returns default key bindings.
func DefaultScoreboardKeyMap() ScoreboardKeyMap {
	return ScoreboardKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("up/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("down/j", "scroll down"),
		),
		NextCourse: key.NewBinding(
			key.WithKeys("tab", "right", "l"),
			key.WithHelp("tab/→", "next course"),
		),
		PrevCourse: key.NewBinding(
			key.WithKeys("shift+tab", "left", "h"),
			key.WithHelp("S-tab/←", "prev course"),
		),
		ToggleView: key.NewBinding(
			key.WithKeys("v"),
			key.WithHelp("v", "best/recent"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc", "b"),
			key.WithHelp("esc/b", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ScoreboardModel is the Bubble Tea model for the leaderboard screen.
type ScoreboardModel struct {
	courses []registry.GameInfo
	cursor  int
	view    boardView
	store   *storage.Store
	runs    []storage.RunResult
	stats   *storage.CourseStats

	table table.Model
	help  help.Model
	keys  ScoreboardKeyMap

	width, height int
	showSidebar   bool
	quitting      bool
	goingBack     bool
}

// NewScoreboardModel creates a leaderboard showing the first registered course.
func NewScoreboardModel(store *storage.Store, width, height int) ScoreboardModel {
	h := help.New()
	h.ShowAll = false

	m := ScoreboardModel{
		courses:     registry.List(),
		store:       store,
		keys:        DefaultScoreboardKeyMap(),
		help:        h,
		width:       width,
		height:      height,
		showSidebar: width >= minWidthForSidebar,
	}
	m.table = m.createTable()
	m.reload()
	return m
}

func (m *ScoreboardModel) createTable() table.Model {
	columns := []table.Column{
		{Title: "#", Width: 4},
		{Title: "Result", Width: 9},
		{Title: "Clock", Width: 6},
		{Title: "Distance", Width: 9},
		{Title: "Leg", Width: 4},
		{Title: "Date", Width: 12},
	}

	tableWidth := m.width - 4
	if m.showSidebar {
		tableWidth -= sidebarWidth + 3
	}
	if spare := tableWidth - 56; spare > 0 {
		columns[5].Width += min(spare, 8)
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(max(3, m.height-10)),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)
	return t
}

func (m *ScoreboardModel) courseID() string {
	if len(m.courses) == 0 {
		return ""
	}
	return m.courses[m.cursor].ID
}

// reload fetches runs and stats for the selected course and view.
func (m *ScoreboardModel) reload() {
	m.runs, m.stats = nil, nil
	id := m.courseID()
	if m.store != nil && id != "" {
		m.runs = m.fetchRuns(id)
		if st, err := m.store.GetCourseStats(id); err == nil {
			m.stats = st
		}
	}
	m.updateTableRows()
}

func (m *ScoreboardModel) fetchRuns(courseID string) []storage.RunResult {
	if m.view == viewBest {
		runs, err := m.store.TopRuns(courseID, maxRuns)
		if err != nil {
			return nil
		}
		return runs
	}

	recent, err := m.store.RecentRuns(maxRuns)
	if err != nil {
		return nil
	}
	var runs []storage.RunResult
	for _, r := range recent {
		if r.CourseID == courseID {
			runs = append(runs, r)
		}
	}
	return runs
}

func (m *ScoreboardModel) updateTableRows() {
	rows := make([]table.Row, len(m.runs))
	for i, r := range m.runs {
		result, clock := r.Status, "-"
		if r.Won() {
			result = "finished"
			clock = runner.FormatTime(r.RaceSeconds)
		}
		rows[i] = table.Row{
			fmt.Sprintf("%d", i+1),
			result,
			clock,
			fmt.Sprintf("%.2f km", r.Distance/1000),
			fmt.Sprintf("%d", r.Phase+1),
			r.CreatedAt.Format("Jan 02 15:04"),
		}
	}
	m.table.SetRows(rows)
	m.table.GotoTop()
}

// Init initializes the leaderboard model.
func (m ScoreboardModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the leaderboard.
func (m ScoreboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.Back):
			m.goingBack = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.NextCourse):
			if len(m.courses) > 0 {
				m.cursor = (m.cursor + 1) % len(m.courses)
				m.reload()
			}
			return m, nil

		case key.Matches(msg, m.keys.PrevCourse):
			if len(m.courses) > 0 {
				m.cursor = (m.cursor + len(m.courses) - 1) % len(m.courses)
				m.reload()
			}
			return m, nil

		case key.Matches(msg, m.keys.ToggleView):
			m.view = 1 - m.view
			m.reload()
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.showSidebar = m.width >= minWidthForSidebar
		m.table = m.createTable()
		m.updateTableRows()
		m.help.Width = msg.Width
		return m, nil
	}

	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View renders the leaderboard.
func (m ScoreboardModel) View() string {
	if m.quitting || m.goingBack {
		return ""
	}

	var b strings.Builder

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("229"))

	title := "LEADERBOARD"
	if len(m.courses) > 0 {
		title = fmt.Sprintf("LEADERBOARD - %s (%s)", m.courses[m.cursor].Title, m.view)
	}
	b.WriteString(titleStyle.Render(centerText(title, m.width)))
	b.WriteString("\n")
	b.WriteString(centerText(m.statsLine(), m.width))
	b.WriteString("\n\n")

	tableStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)
	content := tableStyle.Render(m.renderTableContent())

	if m.showSidebar {
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, m.renderSidebar(), "  ", content))
	} else {
		b.WriteString(centerText(m.renderTabs(), m.width))
		b.WriteString("\n\n")
		b.WriteString(content)
	}

	b.WriteString("\n")
	helpStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	b.WriteString(helpStyle.Render(m.help.View(m.keys)))
	return b.String()
}

// statsLine summarises the selected course's history.
func (m ScoreboardModel) statsLine() string {
	st := m.stats
	if st == nil || st.Runs == 0 {
		return ""
	}
	parts := []string{
		fmt.Sprintf("%d runs", st.Runs),
		fmt.Sprintf("%d finished", st.Finishes),
		fmt.Sprintf("avg %.2f km", st.AvgDistance/1000),
	}
	if st.BestTime > 0 {
		parts = append(parts, fmt.Sprintf("best %.0fs", st.BestTime))
	} else {
		parts = append(parts, fmt.Sprintf("furthest %.2f km", st.BestDistance/1000))
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Render(strings.Join(parts, " · "))
}

func (m ScoreboardModel) renderSidebar() string {
	style := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Width(sidebarWidth).
		Padding(0, 1)

	var sb strings.Builder
	sb.WriteString("Courses\n")
	sb.WriteString(strings.Repeat("-", sidebarWidth-4))
	sb.WriteString("\n")
	for i, c := range m.courses {
		prefix, st := "  ", lipgloss.NewStyle()
		if i == m.cursor {
			prefix = "> "
			st = st.Bold(true).Foreground(lipgloss.Color("229"))
		}
		name := c.Title
		if limit := sidebarWidth - 6; len(name) > limit {
			name = name[:limit-1] + "."
		}
		sb.WriteString(st.Render(prefix + name))
		sb.WriteString("\n")
	}
	return style.Render(sb.String())
}

// renderTabs shows the courses on one line, or just the current one when
// the line would not fit.
func (m ScoreboardModel) renderTabs() string {
	if len(m.courses) == 0 {
		return ""
	}
	inactive := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	active := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Padding(0, 1)

	tabs := make([]string, len(m.courses))
	for i, c := range m.courses {
		if i == m.cursor {
			tabs[i] = active.Render(c.Title)
		} else {
			tabs[i] = inactive.Render(" " + c.Title + " ")
		}
	}
	line := strings.Join(tabs, " ")
	if lipgloss.Width(line) > m.width-4 {
		line = fmt.Sprintf("< %s >", m.courses[m.cursor].Title)
	}
	return line
}

func (m ScoreboardModel) renderTableContent() string {
	if len(m.runs) == 0 {
		return lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Italic(true).
			Padding(2, 4).
			Render("No runs recorded yet.\nFinish a course to set a time!")
	}
	return m.table.View()
}

// IsGoingBack returns true if user wants to go back to menu.
func (m ScoreboardModel) IsGoingBack() bool {
	return m.goingBack
}

// IsQuitting returns true if user wants to quit entirely.
func (m ScoreboardModel) IsQuitting() bool {
	return m.quitting
}

// RunScoreboard runs the leaderboard screen.
// Returns true if user wants to go back to menu, false if quitting.
func RunScoreboard(store *storage.Store, width, height int) (goBack bool, err error) {
	p := tea.NewProgram(
		NewScoreboardModel(store, width, height),
		tea.WithAltScreen(),
	)

	finalModel, err := p.Run()
	if err != nil {
		return false, err
	}
	m, ok := finalModel.(ScoreboardModel)
	if !ok {
		return false, nil
	}
	return m.IsGoingBack(), nil
}
