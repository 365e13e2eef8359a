package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-rhythm/internal/audio"
	"github.com/vovakirdan/tui-rhythm/internal/beatmap"
	"github.com/vovakirdan/tui-rhythm/internal/config"
	"github.com/vovakirdan/tui-rhythm/internal/core"
	"github.com/vovakirdan/tui-rhythm/internal/gameplay"
	"github.com/vovakirdan/tui-rhythm/internal/library"
	"github.com/vovakirdan/tui-rhythm/internal/mods"
	"github.com/vovakirdan/tui-rhythm/internal/storage"
)

// audioLoadedMsg delivers the result of the async audio load. The epoch
// ties it to the load attempt that requested it.
type audioLoadedMsg struct {
	epoch int
	src   gameplay.AudioSource
	err   error
}

// Model is the Bubble Tea model driving one play session.
type Model struct {
	session *gameplay.Session
	entry   library.Entry
	chart   *beatmap.Beatmap

	screen    *core.Screen
	store     *storage.Store
	settings  config.Settings
	cfg       core.RuntimeConfig
	keyMapper *KeyMapper

	inputFrame core.InputFrame
	aim        core.Vec
	view       playfieldView

	resultSaved bool
	quitting    bool
	backToMenu  bool
}

// NewModel creates a session model for the given chart entry.
func NewModel(entry library.Entry, chart *beatmap.Beatmap, modSet mods.Set,
	store *storage.Store, settings config.Settings, cfg core.RuntimeConfig) Model {
	session := gameplay.NewSession(chart, modSet, cfg)
	session.SetAudioOffset(settings.Audio.OffsetMs)

	return Model{
		session:    session,
		entry:      entry,
		chart:      chart,
		screen:     core.NewScreen(cfg.ScreenW, cfg.ScreenH),
		store:      store,
		settings:   settings,
		cfg:        cfg,
		keyMapper:  NewKeyMapper(settings.Keys),
		inputFrame: core.NewInputFrame(),
		aim:        core.PlayfieldCenter(),
		view:       newPlayfieldView(cfg.ScreenW, cfg.ScreenH),
	}
}

// Init starts the audio load and the tick loop.
func (m Model) Init() tea.Cmd {
	epoch := m.session.BeginLoading()
	return tea.Batch(
		loadAudioCmd(epoch, m.entry.AudioPath(), m.settings.Audio, m.chart),
		tickCmd(m.cfg.TickRate),
	)
}

// loadAudioCmd decodes the chart's music file off the UI goroutine. A
// missing or unloadable file degrades to the silent simulated source
// rather than blocking play.
func loadAudioCmd(epoch int, path string, settings config.AudioSettings, chart *beatmap.Beatmap) tea.Cmd {
	return func() tea.Msg {
		fallbackMs := chart.LastEndTime() + 3000

		if settings.Silent || path == "" {
			return audioLoadedMsg{epoch: epoch, src: audio.NewSilence(fallbackMs)}
		}

		player, err := audio.NewPlayer(path, settings.Volume)
		if err != nil {
			log.Warn("music unavailable, playing silent", "path", path, "err", err)
			return audioLoadedMsg{epoch: epoch, src: audio.NewSilence(fallbackMs)}
		}
		return audioLoadedMsg{epoch: epoch, src: player}
	}
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case audioLoadedMsg:
		m.session.AudioReady(msg.epoch, msg.src, msg.err)
		return m, nil

	case TickMsg:
		return m.handleTick()
	}

	return m, nil
}

// cursorStepPx is how far one arrow press moves the aim, in playfield units.
const cursorStepPx = 16

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Arrow keys nudge the aim for keyboard-only play.
	if aim, moved := nudgeAim(m.aim, msg.String()); moved {
		m.aim = aim
		m.inputFrame.SetCursor(m.aim)
		return m, nil
	}

	action, isQuit := m.keyMapper.MapKey(msg)
	if isQuit {
		m.session.Stop()
		m.quitting = true
		return m, tea.Quit
	}

	switch action {
	case core.ActionPause:
		// Pause toggles outside the tick loop so a paused session still
		// responds.
		switch m.session.State() {
		case gameplay.StatePlaying:
			m.session.Pause()
		case gameplay.StatePaused:
			m.session.Resume()
		}
	case core.ActionRetry:
		m.session.Retry()
		m.resultSaved = false
	case core.ActionBack:
		// Back to the chart picker, but only once the run is over or paused.
		switch m.session.State() {
		case gameplay.StateCompleted, gameplay.StateFailed, gameplay.StatePaused:
			m.session.Stop()
			m.backToMenu = true
			return m, tea.Quit
		}
	case core.ActionNone:
	default:
		m.inputFrame.Set(action)
	}

	return m, nil
}

// nudgeAim moves an aim position one step for an arrow key, reporting
// whether the key was an arrow at all.
func nudgeAim(aim core.Vec, key string) (core.Vec, bool) {
	switch key {
	case "up":
		aim.Y -= cursorStepPx
	case "down":
		aim.Y += cursorStepPx
	case "left":
		aim.X -= cursorStepPx
	case "right":
		aim.X += cursorStepPx
	default:
		return aim, false
	}
	return aim, true
}

// handleMouse maps pointer motion onto the playfield and clicks onto the
// primary hit input.
func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if m.view.scaleX > 0 && m.view.scaleY > 0 {
		m.aim = core.Vec{
			X: float64(msg.X-m.view.offsetX) / m.view.scaleX,
			Y: float64(msg.Y-m.view.offsetY) / m.view.scaleY,
		}
		m.inputFrame.SetCursor(m.aim)
	}
	if msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft {
		m.inputFrame.Set(core.ActionHitA)
	}
	return m, nil
}

// handleResize processes window resize events.
func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.cfg.ScreenW = msg.Width
	m.cfg.ScreenH = msg.Height
	m.screen.Resize(msg.Width, msg.Height)
	m.view = newPlayfieldView(msg.Width, msg.Height)
	return m, nil
}

// handleTick runs one simulation step and persists the result when the
// run completes.
func (m Model) handleTick() (tea.Model, tea.Cmd) {
	m.session.Tick(&m.inputFrame)
	m.inputFrame.Clear()

	if m.session.State() == gameplay.StateCompleted && !m.resultSaved {
		m.saveResult()
		m.resultSaved = true
	}

	return m, tickCmd(m.cfg.TickRate)
}

// saveResult stores a completed run. Failed runs are not persisted.
func (m *Model) saveResult() {
	if m.store == nil {
		return
	}
	tracker := m.session.Tracker()
	result := storage.NewResult(
		m.entry.Hash,
		m.entry.DisplayName(),
		m.session.Mods().String(),
		tracker.Score(),
		tracker.MaxCombo(),
		tracker.Accuracy(),
		tracker.Grade(),
		tracker.Counts(),
	)
	if _, err := m.store.SaveResult(result); err != nil {
		log.Error("cannot save result", "err", err)
	}
}

// IsQuitting returns true if user requested to quit entirely.
func (m Model) IsQuitting() bool {
	return m.quitting
}

// BackToMenu returns true if user requested to go back to the chart picker.
func (m Model) BackToMenu() bool {
	return m.backToMenu
}

// View renders the current state to a string for display.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	drawFrame(m.screen, m.session.Frame(), m.entry.DisplayName())
	return RenderScreen(m.screen)
}

// Run starts the Bubble Tea program for one session.
func Run(entry library.Entry, chart *beatmap.Beatmap, modSet mods.Set,
	store *storage.Store, settings config.Settings, cfg core.RuntimeConfig) error {
	model := NewModel(entry, chart, modSet, store, settings, cfg)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),       // Use alternate screen buffer
		tea.WithMouseCellMotion(), // Cursor aim follows the mouse
	)

	_, err := p.Run()
	return err
}
