package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/tri-runner/internal/config"
	"github.com/vovakirdan/tri-runner/internal/core"
	"github.com/vovakirdan/tri-runner/internal/registry"
	"github.com/vovakirdan/tri-runner/internal/runner"
	"github.com/vovakirdan/tri-runner/internal/storage"
)

// MenuItem is one course in the picker.
type MenuItem struct {
	CourseID string
	Title    string
	Legs     string  // "swim 1.3 km / bike 7.7 km / run 7.0 km"; empty if unknown
	BestTime float64 // fastest finish in seconds, 0 if none
	Runs     int
	Finishes int
}

var (
	menuTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	menuPickStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229"))
	menuDimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

// MenuModel is the Bubble Tea model for the course picker.
type MenuModel struct {
	items     []MenuItem
	cursor    int
	config    core.RuntimeConfig
	keyMapper *KeyMapper

	quitting       bool
	selected       *MenuItem
	openScoreboard bool
}

// NewMenuModel lists the registered courses with their legs and, when a
// store is given, each course's history.
func NewMenuModel(store *storage.Store, cfg core.RuntimeConfig) MenuModel {
	courses := registry.List()
	items := make([]MenuItem, 0, len(courses))
	for _, c := range courses {
		items = append(items, menuItem(store, c))
	}
	return MenuModel{
		items:     items,
		config:    cfg,
		keyMapper: NewKeyMapper(),
	}
}

func menuItem(store *storage.Store, c registry.GameInfo) MenuItem {
	item := MenuItem{CourseID: c.ID, Title: c.Title}
	if course, err := config.Load(c.ID, ""); err == nil {
		item.Legs = legSummary(course)
	}
	if store == nil {
		return item
	}
	// History is decoration; a failing query leaves it blank.
	if st, err := store.GetCourseStats(c.ID); err == nil {
		item.BestTime = st.BestTime
		item.Runs = st.Runs
		item.Finishes = st.Finishes
	}
	return item
}

// legSummary lists each phase's discipline and length.
func legSummary(c config.Course) string {
	legs := make([]string, 0, len(c.Phases))
	prev := 0.0
	for _, p := range c.Phases {
		legs = append(legs, fmt.Sprintf("%s %.1f km", p.Discipline, (p.Threshold-prev)/1000))
		prev = p.Threshold
	}
	return strings.Join(legs, " / ")
}

// Init initializes the menu model.
func (m MenuModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the menu.
func (m MenuModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.config.ScreenW = msg.Width
		m.config.ScreenH = msg.Height
	}
	return m, nil
}

func (m MenuModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.keyMapper.MapKeyToMenuAction(msg) {
	case MenuActionQuit:
		m.quitting = true
		return m, tea.Quit

	case MenuActionUp:
		m.cursor = max(0, m.cursor-1)

	case MenuActionDown:
		m.cursor = min(len(m.items)-1, m.cursor+1)

	case MenuActionSelect:
		if len(m.items) > 0 {
			picked := m.items[m.cursor]
			m.selected = &picked
			return m, tea.Quit
		}

	case MenuActionScoreboard:
		m.openScoreboard = true
		return m, tea.Quit
	}
	return m, nil
}

// View renders the course list with details of the highlighted course.
func (m MenuModel) View() string {
	if m.quitting {
		return ""
	}
	w := m.config.ScreenW

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(centerText(menuTitleStyle.Render("T R I - R U N N E R"), w))
	b.WriteString("\n")
	b.WriteString(centerText(menuDimStyle.Render("swim · bike · run"), w))
	b.WriteString("\n\n")

	for i, item := range m.items {
		line := "  " + item.Title
		if i == m.cursor {
			line = menuPickStyle.Render("> " + item.Title)
		}
		if item.BestTime > 0 {
			line += menuDimStyle.Render(fmt.Sprintf("  best %s", runner.FormatTime(int(item.BestTime))))
		}
		b.WriteString(centerText(line, w))
		b.WriteString("\n")
	}

	if len(m.items) > 0 {
		b.WriteString("\n")
		for _, line := range m.details(m.items[m.cursor]) {
			b.WriteString(centerText(menuDimStyle.Render(line), w))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(centerText("Up/Down: Navigate  |  Enter: Race  |  Tab: Leaderboard  |  Q: Quit", w))
	b.WriteString("\n")
	return b.String()
}

func (m MenuModel) details(item MenuItem) []string {
	var lines []string
	if item.Legs != "" {
		lines = append(lines, item.Legs)
	}
	if item.Runs > 0 {
		lines = append(lines, fmt.Sprintf("%d runs, %d finished", item.Runs, item.Finishes))
	} else {
		lines = append(lines, "no runs yet")
	}
	return lines
}

// Selected returns the picked course, or nil if none was picked.
func (m MenuModel) Selected() *MenuItem {
	return m.selected
}

// IsQuitting returns true if user requested to quit.
func (m MenuModel) IsQuitting() bool {
	return m.quitting
}

// WantsScoreboard returns true if user requested the leaderboard.
func (m MenuModel) WantsScoreboard() bool {
	return m.openScoreboard
}

// Config returns the runtime config, resized if the terminal changed.
func (m MenuModel) Config() core.RuntimeConfig {
	return m.config
}

// centerText pads styled text to the middle of width cells.
func centerText(text string, width int) string {
	tw := lipgloss.Width(text)
	if tw >= width {
		return text
	}
	return strings.Repeat(" ", (width-tw)/2) + text
}

// MenuResult is what the player chose in the picker.
type MenuResult struct {
	CourseID        string
	Config          core.RuntimeConfig
	WantsScoreboard bool
	Quit            bool
}

// RunMenu shows the picker until the player chooses something.
func RunMenu(store *storage.Store, cfg core.RuntimeConfig) (MenuResult, error) {
	p := tea.NewProgram(NewMenuModel(store, cfg), tea.WithAltScreen())

	final, err := p.Run()
	if err != nil {
		return MenuResult{Config: cfg}, err
	}
	m, ok := final.(MenuModel)
	if !ok {
		return MenuResult{Config: cfg, Quit: true}, nil
	}

	res := MenuResult{Config: m.Config()}
	switch {
	case m.WantsScoreboard():
		res.WantsScoreboard = true
	case m.Selected() != nil:
		res.CourseID = m.Selected().CourseID
	default:
		res.Quit = true
	}
	return res, nil
}
