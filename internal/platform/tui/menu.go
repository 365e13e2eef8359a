package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/tui-rhythm/internal/core"
	"github.com/vovakirdan/tui-rhythm/internal/library"
	"github.com/vovakirdan/tui-rhythm/internal/mods"
	"github.com/vovakirdan/tui-rhythm/internal/storage"
)

// MenuModel is the Bubble Tea model for the chart picker.
type MenuModel struct {
	entries []library.Entry
	cursor  int
	width   int
	height  int
	store   *storage.Store
	modSet  mods.Set
	config  core.RuntimeConfig

	quitting       bool
	selected       *library.Entry
	openScoreboard bool
}

// NewMenuModel creates a chart picker over the scanned library.
func NewMenuModel(entries []library.Entry, modSet mods.Set,
	store *storage.Store, cfg core.RuntimeConfig) MenuModel {
	return MenuModel{
		entries: entries,
		cursor:  0,
		width:   cfg.ScreenW,
		height:  cfg.ScreenH,
		store:   store,
		modSet:  modSet,
		config:  cfg,
	}
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
		m.width = msg.Width
		m.height = msg.Height
		m.config.ScreenW = msg.Width
		m.config.ScreenH = msg.Height
		return m, nil
	}

	return m, nil
}

// handleKey processes keyboard input for menu navigation.
func (m MenuModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	mapper := KeyMapper{}
	action := mapper.MapKeyToMenuAction(msg)

	switch action {
	case MenuActionQuit, MenuActionBack:
		m.quitting = true
		return m, tea.Quit

	case MenuActionUp:
		if m.cursor > 0 {
			m.cursor--
		}

	case MenuActionDown:
		if m.cursor < len(m.entries)-1 {
			m.cursor++
		}

	case MenuActionSelect:
		if len(m.entries) > 0 {
			selected := m.entries[m.cursor]
			m.selected = &selected
			return m, tea.Quit // Exit menu to start the chart
		}

	case MenuActionScores:
		m.openScoreboard = true
		return m, tea.Quit
	}

	return m, nil
}

// View renders the menu.
func (m MenuModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	title := "  R H Y T H M  "
	b.WriteString("\n")
	b.WriteString(centerText(title, m.width))
	b.WriteString("\n\n")

	subtitle := "Select a chart"
	if m.modSet != 0 {
		subtitle = fmt.Sprintf("Select a chart  [%s]", m.modSet)
	}
	b.WriteString(centerText(subtitle, m.width))
	b.WriteString("\n\n")

	if len(m.entries) == 0 {
		b.WriteString(centerText("No charts found in the songs directory.", m.width))
		b.WriteString("\n")
	}

	for i, entry := range m.entries {
		cursor := "  "
		if i == m.cursor {
			cursor = "> "
		}

		line := fmt.Sprintf("%s%s  (%d objects, %s)",
			cursor, entry.DisplayName(), entry.Objects, formatLength(entry.LengthMs))
		b.WriteString(centerText(line, m.width))
		b.WriteString("\n")
	}

	// Personal best for the hovered chart.
	if best := m.bestLine(); best != "" {
		b.WriteString("\n")
		b.WriteString(centerText(best, m.width))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	controls := "Up/Down: Navigate  |  Enter: Play  |  Tab: Scores  |  Q: Quit"
	b.WriteString(centerText(controls, m.width))
	b.WriteString("\n")

	return b.String()
}

// bestLine formats the stored best score for the hovered chart with the
// current mod set, or "" when none exists.
func (m MenuModel) bestLine() string {
	if m.store == nil || len(m.entries) == 0 {
		return ""
	}
	best, err := m.store.BestResult(m.entries[m.cursor].Hash, m.modSet.String())
	if err != nil || best == nil {
		return ""
	}
	return fmt.Sprintf("best: %d (%s, %.2f%%)", best.Score, best.Grade, best.Accuracy)
}

// formatLength renders a chart length in m:ss form.
func formatLength(ms float64) string {
	total := int(ms / 1000)
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

// Selected returns the selected chart, or nil if none selected.
func (m MenuModel) Selected() *library.Entry {
	return m.selected
}

// IsQuitting returns true if user requested to quit.
func (m MenuModel) IsQuitting() bool {
	return m.quitting
}

// WantsScoreboard returns true if user requested the scoreboard.
func (m MenuModel) WantsScoreboard() bool {
	return m.openScoreboard
}

// Config returns the current runtime config (may have been updated by resize).
func (m MenuModel) Config() core.RuntimeConfig {
	return m.config
}

// centerText centers text within given width.
func centerText(text string, width int) string {
	if len(text) >= width {
		return text
	}
	padding := (width - len(text)) / 2
	return strings.Repeat(" ", padding) + text
}

// MenuResult holds the result of running the chart picker.
type MenuResult struct {
	Entry           *library.Entry
	Config          core.RuntimeConfig
	WantsScoreboard bool
	Quit            bool
}

// RunMenu runs the chart picker and returns the selection result.
func RunMenu(entries []library.Entry, modSet mods.Set,
	store *storage.Store, cfg core.RuntimeConfig) (MenuResult, error) {
	model := NewMenuModel(entries, modSet, store, cfg)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
	)

	finalModel, err := p.Run()
	if err != nil {
		return MenuResult{Config: cfg}, err
	}

	m, ok := finalModel.(MenuModel)
	if !ok {
		return MenuResult{Config: cfg, Quit: true}, nil
	}

	result := MenuResult{
		Entry:  m.Selected(),
		Config: m.Config(),
	}
	if m.WantsScoreboard() {
		result.WantsScoreboard = true
		return result, nil
	}
	if result.Entry == nil {
		result.Quit = true
	}
	return result, nil
}
