package checklists

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/callsheet/internal/checkbook"
	"github.com/nhle/callsheet/internal/keys"
	"github.com/nhle/callsheet/internal/model"
	"github.com/nhle/callsheet/internal/theme"
)

type viewMode int

const (
	modeList viewMode = iota
	modeForm
	modeConfirmDelete
)

type formKind int

const (
	formNewList formKind = iota
	formRenameList
	formAddTask
	formEditTask
)

type formBindings struct {
	text    string
	confirm bool
}

// row is one rendered task. Its actions are bound to the task's index
// when the row is built.
type row struct {
	list   string
	index  int
	task   model.ChecklistTask
	toggle func() error
	edit   func(text string) error
	remove func() error
}

// Model is the Bubble Tea model for browsing and editing checklists.
// The Book is not safe for concurrent use, so every Book call happens
// inside Update.
type Model struct {
	mode        viewMode
	book        *checkbook.Book
	keys        *keys.KeyMap
	names       []string
	listIdx     int
	rows        []row
	taskIdx     int
	kind        formKind
	editing     row
	form        *huh.Form
	confirmForm *huh.Form
	fb          *formBindings
	statusMsg   string
	statusErr   bool
	width       int
	height      int
}

// New creates the checklist view over b.
func New(b *checkbook.Book, k *keys.KeyMap, width, height int) Model {
	m := Model{
		mode:   modeList,
		book:   b,
		keys:   k,
		fb:     &formBindings{},
		width:  width,
		height: height,
	}
	m.reload("")
	return m
}

// Init returns no command; the book is already loaded.
func (m Model) Init() tea.Cmd {
	return nil
}

// Typing reports whether a form has keyboard focus.
func (m Model) Typing() bool {
	return m.mode != modeList
}

// Selected returns the name of the checklist on screen, if any.
func (m Model) Selected() (string, bool) {
	if len(m.names) == 0 {
		return "", false
	}
	return m.names[m.listIdx], true
}

// Reload rebuilds the view from the book, keeping the selection when the
// checklist still exists.
func (m Model) Reload() Model {
	name, _ := m.Selected()
	m.reload(name)
	return m
}

func (m *Model) reload(selected string) {
	m.names = m.book.Names()

	m.listIdx = 0
	for i, n := range m.names {
		if n == selected {
			m.listIdx = i
			break
		}
	}

	m.rows = nil
	name, ok := m.Selected()
	if ok {
		cl, err := m.book.Get(name)
		if err == nil {
			m.rows = buildRows(m.book, name, cl.Tasks)
		}
	}

	if m.taskIdx >= len(m.rows) {
		m.taskIdx = len(m.rows) - 1
	}
	if m.taskIdx < 0 {
		m.taskIdx = 0
	}
}

func buildRows(b *checkbook.Book, name string, tasks []model.ChecklistTask) []row {
	rows := make([]row, len(tasks))
	for i, t := range tasks {
		rows[i] = row{
			list:   name,
			index:  i,
			task:   t,
			toggle: func() error { return b.ToggleTask(name, i) },
			edit:   func(text string) error { return b.EditTask(name, i, text) },
			remove: func() error { return b.DeleteTask(name, i) },
		}
	}
	return rows
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m.updateActiveForm(msg)

	case tea.KeyMsg:
		switch m.mode {
		case modeList:
			return m.handleListKey(msg)
		case modeForm:
			return m.updateForm(msg)
		case modeConfirmDelete:
			return m.updateConfirm(msg)
		}
		return m, nil
	}

	return m.updateActiveForm(msg)
}

func (m Model) handleListKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	name, hasList := m.Selected()

	switch {
	case key.Matches(msg, m.keys.Down):
		if len(m.rows) > 0 {
			m.taskIdx = (m.taskIdx + 1) % len(m.rows)
		}

	case key.Matches(msg, m.keys.Up):
		if len(m.rows) > 0 {
			m.taskIdx--
			if m.taskIdx < 0 {
				m.taskIdx = len(m.rows) - 1
			}
		}

	case key.Matches(msg, m.keys.NextList):
		if len(m.names) > 0 {
			m.taskIdx = 0
			m.reload(m.names[(m.listIdx+1)%len(m.names)])
		}

	case key.Matches(msg, m.keys.PrevList):
		if len(m.names) > 0 {
			m.taskIdx = 0
			m.reload(m.names[(m.listIdx-1+len(m.names))%len(m.names)])
		}

	case key.Matches(msg, m.keys.Toggle):
		if r, ok := m.currentRow(); ok {
			m.apply(r.toggle(), "")
		}

	case key.Matches(msg, m.keys.DeleteTask):
		if r, ok := m.currentRow(); ok {
			m.apply(r.remove(), "Task deleted")
		}

	case key.Matches(msg, m.keys.EditTask):
		if r, ok := m.currentRow(); ok {
			m.editing = r
			return m.openForm(formEditTask, r.task.Text)
		}

	case key.Matches(msg, m.keys.AddTask):
		if !hasList {
			m.setStatus("No checklist selected", true)
			return m, nil
		}
		return m.openForm(formAddTask, "")

	case key.Matches(msg, m.keys.NewList):
		return m.openForm(formNewList, "")

	case key.Matches(msg, m.keys.RenameList):
		if hasList {
			return m.openForm(formRenameList, name)
		}

	case key.Matches(msg, m.keys.DeleteList):
		if hasList {
			return m.openConfirm(name)
		}

	case key.Matches(msg, m.keys.DailyRefresh):
		return m.SetDailyRefresh(nil)

	case key.Matches(msg, m.keys.Refresh):
		return m.Refresh()

	case key.Matches(msg, m.keys.CompleteAll):
		return m.CompleteAll()
	}
	return m, nil
}

func (m Model) currentRow() (row, bool) {
	if m.taskIdx < 0 || m.taskIdx >= len(m.rows) {
		return row{}, false
	}
	return m.rows[m.taskIdx], true
}

// apply records the outcome of a Book call and rebuilds the rows.
func (m *Model) apply(err error, success string) {
	name, _ := m.Selected()
	m.applyTo(name, err, success)
}

func (m *Model) applyTo(selected string, err error, success string) {
	if err != nil {
		m.setStatus(describe(err), true)
	} else {
		m.setStatus(success, false)
	}
	m.reload(selected)
}

func (m *Model) setStatus(msg string, isErr bool) {
	m.statusMsg = msg
	m.statusErr = isErr
}

// describe turns Book errors into short user-facing messages.
func describe(err error) string {
	switch {
	case errors.Is(err, model.ErrInvalidInput):
		return strings.TrimSuffix(err.Error(), ": "+model.ErrInvalidInput.Error())
	case errors.Is(err, model.ErrNotFound):
		return "Checklist no longer exists"
	default:
		return fmt.Sprintf("Error: %v", err)
	}
}

// CreateChecklist adds a checklist and selects it.
func (m Model) CreateChecklist(name string) (Model, tea.Cmd) {
	name = strings.TrimSpace(name)
	if err := m.book.CreateChecklist(name); err != nil {
		m.apply(err, "")
		return m, nil
	}
	m.taskIdx = 0
	m.applyTo(name, nil, fmt.Sprintf("Created %q", name))
	return m, nil
}

// RenameChecklist renames the selected checklist.
func (m Model) RenameChecklist(newName string) (Model, tea.Cmd) {
	old, ok := m.Selected()
	if !ok {
		m.setStatus("No checklist selected", true)
		return m, nil
	}
	newName = strings.TrimSpace(newName)
	if err := m.book.RenameChecklist(old, newName); err != nil {
		m.applyTo(old, err, "")
		return m, nil
	}
	m.applyTo(newName, nil, fmt.Sprintf("Renamed to %q", newName))
	return m, nil
}

// DeleteChecklist removes the selected checklist.
func (m Model) DeleteChecklist() (Model, tea.Cmd) {
	name, ok := m.Selected()
	if !ok {
		m.setStatus("No checklist selected", true)
		return m, nil
	}
	m.taskIdx = 0
	m.applyTo("", m.book.DeleteChecklist(name), fmt.Sprintf("Deleted %q", name))
	return m, nil
}

// SetDailyRefresh sets the daily refresh flag of the selected checklist;
// a nil on flips it.
func (m Model) SetDailyRefresh(on *bool) (Model, tea.Cmd) {
	name, ok := m.Selected()
	if !ok {
		m.setStatus("No checklist selected", true)
		return m, nil
	}
	cl, err := m.book.Get(name)
	if err != nil {
		m.apply(err, "")
		return m, nil
	}

	next := !cl.DailyRefresh
	if on != nil {
		next = *on
	}
	msg := "Daily refresh off"
	if next {
		msg = "Daily refresh on"
	}
	m.apply(m.book.SetDailyRefresh(name, next), msg)
	return m, nil
}

// Refresh unchecks every task of the selected checklist.
func (m Model) Refresh() (Model, tea.Cmd) {
	name, ok := m.Selected()
	if !ok {
		m.setStatus("No checklist selected", true)
		return m, nil
	}
	m.apply(m.book.Refresh(name), "Checklist refreshed")
	return m, nil
}

// CompleteAll checks every task of the selected checklist.
func (m Model) CompleteAll() (Model, tea.Cmd) {
	name, ok := m.Selected()
	if !ok {
		m.setStatus("No checklist selected", true)
		return m, nil
	}
	m.apply(m.book.CompleteAll(name), "All tasks completed")
	return m, nil
}

// SetStatus shows a message in the view's status line.
func (m Model) SetStatus(msg string, isErr bool) Model {
	m.setStatus(msg, isErr)
	return m
}

func (m Model) openForm(kind formKind, initial string) (Model, tea.Cmd) {
	m.kind = kind
	m.fb.text = initial
	m.form = m.buildForm()
	m.mode = modeForm
	return m, m.form.Init()
}

func (m Model) openConfirm(name string) (Model, tea.Cmd) {
	m.fb.confirm = false
	m.confirmForm = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Delete checklist %q?", name)).
				Description("All of its tasks are deleted too.").
				Affirmative("Yes, delete").
				Negative("Cancel").
				Value(&m.fb.confirm),
		),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight())
	m.mode = modeConfirmDelete
	return m, m.confirmForm.Init()
}

func (m Model) buildForm() *huh.Form {
	var title, placeholder string
	switch m.kind {
	case formNewList:
		title, placeholder = "New checklist", "Checklist name"
	case formRenameList:
		title, placeholder = "Rename checklist", "New name"
	case formAddTask:
		title, placeholder = "Add task", "What needs doing?"
	case formEditTask:
		title, placeholder = "Edit task", "Task text"
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title(title).
				Placeholder(placeholder).
				Value(&m.fb.text).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("cannot be empty")
					}
					return nil
				}),
		),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight())
}

func (m Model) updateForm(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}
	if km, ok := msg.(tea.KeyMsg); ok && key.Matches(km, m.keys.Back) {
		m.mode = modeList
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}
	switch m.form.State {
	case huh.StateCompleted:
		return m.submitForm()
	case huh.StateAborted:
		m.mode = modeList
		return m, nil
	}
	return m, cmd
}

// submitForm applies the completed form to the book.
func (m Model) submitForm() (Model, tea.Cmd) {
	m.mode = modeList
	text := m.fb.text

	switch m.kind {
	case formNewList:
		return m.CreateChecklist(text)
	case formRenameList:
		return m.RenameChecklist(text)
	case formAddTask:
		name, _ := m.Selected()
		if err := m.book.AddTask(name, text); err != nil {
			m.apply(err, "")
			return m, nil
		}
		m.apply(nil, "Task added")
		m.taskIdx = len(m.rows) - 1
	case formEditTask:
		if !m.stillAt(m.editing) {
			m.setStatus("Task changed on disk; edit discarded", true)
			m.reload(m.editing.list)
			return m, nil
		}
		m.apply(m.editing.edit(text), "Task updated")
	}
	return m, nil
}

// stillAt reports whether r's task is still in the book at the position
// the row was built for. Reloads can shift tasks under an open form.
func (m Model) stillAt(r row) bool {
	if r.edit == nil {
		return false
	}
	cl, err := m.book.Get(r.list)
	if err != nil || r.index >= len(cl.Tasks) {
		return false
	}
	return cl.Tasks[r.index].Text == r.task.Text
}

func (m Model) updateConfirm(msg tea.Msg) (Model, tea.Cmd) {
	if m.confirmForm == nil {
		return m, nil
	}
	mdl, cmd := m.confirmForm.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.confirmForm = f
	}
	switch m.confirmForm.State {
	case huh.StateCompleted:
		m.mode = modeList
		if m.fb.confirm {
			return m.DeleteChecklist()
		}
		return m, nil
	case huh.StateAborted:
		m.mode = modeList
		return m, nil
	}
	return m, cmd
}

func (m Model) updateActiveForm(msg tea.Msg) (Model, tea.Cmd) {
	switch m.mode {
	case modeForm:
		return m.updateForm(msg)
	case modeConfirmDelete:
		return m.updateConfirm(msg)
	}
	return m, nil
}

// View renders the checklist view.
func (m Model) View() string {
	switch m.mode {
	case modeForm:
		return m.viewForm(m.form)
	case modeConfirmDelete:
		return m.viewForm(m.confirmForm)
	default:
		return m.viewList()
	}
}

func (m Model) viewList() string {
	var b strings.Builder

	if len(m.names) == 0 {
		b.WriteString(theme.HelpStyle.Render("No checklists yet. Press 'n' to create one."))
	} else {
		b.WriteString(m.viewTabs())
		b.WriteString("\n\n")
		b.WriteString(m.viewTasks())
	}

	if m.statusMsg != "" {
		b.WriteString("\n\n")
		b.WriteString(theme.StatusMsgStyle(m.statusErr).Render(m.statusMsg))
	}

	return lipgloss.NewStyle().Padding(1, 2).Width(m.width).Render(b.String())
}

func (m Model) viewTabs() string {
	tabs := make([]string, len(m.names))
	for i, name := range m.names {
		if i == m.listIdx {
			tabs[i] = theme.ActiveTabStyle.Render(name)
		} else {
			tabs[i] = theme.TabStyle.Render(name)
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) viewTasks() string {
	var b strings.Builder

	name, _ := m.Selected()
	if cl, err := m.book.Get(name); err == nil && cl.DailyRefresh {
		b.WriteString(theme.HelpStyle.Render("resets daily"))
		b.WriteString("\n")
	}

	if len(m.rows) == 0 {
		b.WriteString(theme.HelpStyle.Render("No tasks. Press 'a' to add one."))
		return b.String()
	}

	for i, r := range m.rows {
		check, text := "[ ]", r.task.Text
		if r.task.Done {
			check, text = "[x]", theme.DoneStyle.Render(text)
		}
		line := check + " " + text

		if i == m.taskIdx {
			b.WriteString(theme.SelectedItemStyle.Render(line))
		} else {
			b.WriteString(theme.ListItemStyle.Render(line))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) viewForm(f *huh.Form) string {
	if f == nil {
		return ""
	}
	return lipgloss.NewStyle().Padding(1, 2).Render(f.View())
}

// SetSize updates dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m Model) formWidth() int {
	return min(max(m.width-4, 40), 100)
}

func (m Model) formHeight() int {
	return max(m.height-4, 10)
}
