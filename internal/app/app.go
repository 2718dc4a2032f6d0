package app

import (
	"fmt"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/callsheet/internal/checkbook"
	"github.com/nhle/callsheet/internal/keys"
	appsync "github.com/nhle/callsheet/internal/sync"
	"github.com/nhle/callsheet/internal/ui"
	"github.com/nhle/callsheet/internal/ui/checklists"
	"github.com/nhle/callsheet/internal/ui/command"
	helpview "github.com/nhle/callsheet/internal/ui/help"
)

// ViewState represents the current active view in the application.
type ViewState int

const (
	ViewChecklists ViewState = iota
	ViewHelp
	ViewCommand
)

// Model is the root Bubble Tea model that manages view routing, layout,
// and reloads of the checklist file.
type Model struct {
	currentView ViewState
	layout      ui.Layout
	book        *checkbook.Book
	watcher     *appsync.Watcher
	logger      *slog.Logger
	keys        *keys.KeyMap
	checklists  checklists.Model
	helpView    helpview.Model
	commandView command.Model
	ready       bool
}

// New creates the root model over book. The watcher may be nil, in which
// case outside edits are only picked up by the reload command.
func New(book *checkbook.Book, watcher *appsync.Watcher, logger *slog.Logger) Model {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	k := keys.DefaultKeyMap()

	return Model{
		currentView: ViewChecklists,
		book:        book,
		watcher:     watcher,
		logger:      logger,
		keys:        k,
		checklists:  checklists.New(book, k, 80, 24),
		helpView:    helpview.New(k, 80, 24),
		commandView: command.New(80, 24),
	}
}

// Init starts watching the checklist file.
func (m Model) Init() tea.Cmd {
	if m.watcher == nil {
		return nil
	}
	return m.watcher.Start()
}

// Update handles messages and dispatches to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		w, h := m.layout.ContentWidth(), m.layout.ContentHeight()
		m.checklists.SetSize(w, h)
		m.helpView.SetSize(w, h)
		m.commandView.SetSize(w, h)
		// Forward so open forms can recalculate their layout.
		var cmd tea.Cmd
		m.checklists, cmd = m.checklists.Update(tea.WindowSizeMsg{Width: w, Height: h})
		return m, cmd

	case appsync.FileChangedMsg:
		m.reload()
		return m, m.waitForChange()

	case appsync.WatchErrorMsg:
		m.logger.Warn("watching checklist file", "error", msg.Err)
		m.checklists = m.checklists.SetStatus(fmt.Sprintf("Watch error: %v", msg.Err), true)
		return m, m.waitForChange()

	case command.CommandMsg:
		m.commandView.Blur()
		m.currentView = ViewChecklists
		return m.executeCommand(msg)

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, m.quit()

		case "q":
			if m.currentView == ViewChecklists && !m.checklists.Typing() {
				return m, m.quit()
			}

		case "?":
			if m.currentView == ViewHelp {
				m.currentView = ViewChecklists
				return m, nil
			}
			if m.currentView == ViewChecklists && !m.checklists.Typing() {
				m.currentView = ViewHelp
				return m, nil
			}

		case ":":
			if m.currentView == ViewChecklists && !m.checklists.Typing() {
				m.currentView = ViewCommand
				return m, m.commandView.Focus()
			}

		case "esc":
			switch m.currentView {
			case ViewHelp:
				m.currentView = ViewChecklists
				return m, nil
			case ViewCommand:
				m.commandView.Blur()
				m.currentView = ViewChecklists
				return m, nil
			}
		}
	}

	return m.updateActiveView(msg)
}

// updateActiveView dispatches the message to the currently active view.
func (m Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.currentView {
	case ViewChecklists:
		m.checklists, cmd = m.checklists.Update(msg)
	case ViewHelp:
		m.helpView, cmd = m.helpView.Update(msg)
	case ViewCommand:
		m.commandView, cmd = m.commandView.Update(msg)
	}

	return m, cmd
}

// executeCommand runs a command palette entry.
func (m Model) executeCommand(cmd command.CommandMsg) (tea.Model, tea.Cmd) {
	var out tea.Cmd

	switch cmd.Name {
	case "q", "quit":
		return m, m.quit()
	case "reload":
		m.reload()
	case "new":
		m.checklists, out = m.checklists.CreateChecklist(cmd.Arg)
	case "rename":
		m.checklists, out = m.checklists.RenameChecklist(cmd.Arg)
	case "delete":
		m.checklists, out = m.checklists.DeleteChecklist()
	case "daily":
		switch cmd.Arg {
		case "on", "off":
			on := cmd.Arg == "on"
			m.checklists, out = m.checklists.SetDailyRefresh(&on)
		case "":
			m.checklists, out = m.checklists.SetDailyRefresh(nil)
		default:
			m.checklists = m.checklists.SetStatus("Usage: daily on|off", true)
		}
	case "refresh":
		m.checklists, out = m.checklists.Refresh()
	case "complete":
		m.checklists, out = m.checklists.CompleteAll()
	default:
		m.checklists = m.checklists.SetStatus(fmt.Sprintf("Unknown command: %s", cmd.Name), true)
	}
	return m, out
}

// reload re-reads the checklist file after an outside change.
func (m *Model) reload() {
	changed, err := m.book.Reload()
	if err != nil {
		m.logger.Warn("reloading checklist file", "path", m.book.Path(), "error", err)
		m.checklists = m.checklists.SetStatus(fmt.Sprintf("Reload failed: %v", err), true)
		return
	}
	if changed {
		m.logger.Debug("checklist file reloaded", "path", m.book.Path())
		m.checklists = m.checklists.Reload().SetStatus("Reloaded from disk", false)
	}
}

func (m Model) waitForChange() tea.Cmd {
	if m.watcher == nil {
		return nil
	}
	return m.watcher.WaitForChange()
}

func (m Model) quit() tea.Cmd {
	if m.watcher != nil {
		if err := m.watcher.Stop(); err != nil {
			m.logger.Warn("stopping file watcher", "error", err)
		}
	}
	return tea.Quit
}

// View renders the full terminal UI using the layout manager.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	header := m.layout.RenderHeader("Checklists", m.book.Path())
	statusBar := m.layout.RenderStatusBar(m.keyHints())

	return m.layout.RenderWithFrame(header, m.renderContent(), statusBar)
}

func (m Model) renderContent() string {
	switch m.currentView {
	case ViewHelp:
		return m.helpView.View()
	case ViewCommand:
		return m.commandView.View()
	default:
		return m.checklists.View()
	}
}

// keyHints returns keyboard shortcut hints for the status bar.
func (m Model) keyHints() string {
	switch m.currentView {
	case ViewHelp:
		return "? close help | esc back"
	case ViewCommand:
		return "enter execute | esc back"
	}
	if m.checklists.Typing() {
		return "enter submit | esc cancel"
	}
	return "j/k move | space toggle | a add | e edit | d delete | h/l switch | : command | ? help | q quit"
}
