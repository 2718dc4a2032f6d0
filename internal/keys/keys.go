package keys

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the keybindings of the checklist tool.
type KeyMap struct {
	// Navigation
	Down     key.Binding
	Up       key.Binding
	NextList key.Binding
	PrevList key.Binding

	// Task actions
	Toggle     key.Binding
	AddTask    key.Binding
	EditTask   key.Binding
	DeleteTask key.Binding

	// Checklist actions
	NewList      key.Binding
	RenameList   key.Binding
	DeleteList   key.Binding
	DailyRefresh key.Binding
	Refresh      key.Binding
	CompleteAll  key.Binding

	// Back / Quit
	Back key.Binding
	Quit key.Binding

	// Command palette
	Command key.Binding

	// Help toggle
	Help key.Binding
}

// DefaultKeyMap returns the default set of keybindings.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "down"),
		),
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "up"),
		),
		NextList: key.NewBinding(
			key.WithKeys("l", "right", "tab"),
			key.WithHelp("l/→", "next checklist"),
		),
		PrevList: key.NewBinding(
			key.WithKeys("h", "left", "shift+tab"),
			key.WithHelp("h/←", "previous checklist"),
		),
		Toggle: key.NewBinding(
			key.WithKeys(" ", "enter", "x"),
			key.WithHelp("space", "toggle task"),
		),
		AddTask: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add task"),
		),
		EditTask: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "edit task"),
		),
		DeleteTask: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete task"),
		),
		NewList: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "new checklist"),
		),
		RenameList: key.NewBinding(
			key.WithKeys("R"),
			key.WithHelp("R", "rename checklist"),
		),
		DeleteList: key.NewBinding(
			key.WithKeys("D"),
			key.WithHelp("D", "delete checklist"),
		),
		DailyRefresh: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "toggle daily refresh"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "uncheck all"),
		),
		CompleteAll: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "complete all"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
		Command: key.NewBinding(
			key.WithKeys(":"),
			key.WithHelp(":", "command palette"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
	}
}

// ShortHelp returns the most essential keybindings for the compact help view.
func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{
		k.Up, k.Down, k.Toggle, k.AddTask,
		k.NextList, k.Quit, k.Help,
	}
}

// FullHelp returns all keybindings grouped by category for the expanded
// help view.
func (k *KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.NextList, k.PrevList},
		{k.Toggle, k.AddTask, k.EditTask, k.DeleteTask},
		{k.NewList, k.RenameList, k.DeleteList, k.DailyRefresh},
		{k.Refresh, k.CompleteAll, k.Command, k.Help, k.Back, k.Quit},
	}
}
