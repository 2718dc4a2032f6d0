package checklists

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/callsheet/internal/checkbook"
	"github.com/nhle/callsheet/internal/keys"
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func newModel(t *testing.T, lists map[string][]string) (Model, *checkbook.Book) {
	t.Helper()

	b, err := checkbook.Open(filepath.Join(t.TempDir(), "checklists.json"), time.Now())
	require.NoError(t, err)
	for name, tasks := range lists {
		require.NoError(t, b.CreateChecklist(name))
		for _, text := range tasks {
			require.NoError(t, b.AddTask(name, text))
		}
	}
	return New(b, keys.DefaultKeyMap(), 80, 24), b
}

func press(m Model, msgs ...tea.KeyMsg) Model {
	for _, msg := range msgs {
		m, _ = m.Update(msg)
	}
	return m
}

func TestEmptyBook(t *testing.T) {
	m, _ := newModel(t, nil)

	_, ok := m.Selected()
	assert.False(t, ok)
	assert.Contains(t, m.View(), "No checklists yet")

	m = press(m, runes("a"))
	assert.False(t, m.Typing())
	assert.Equal(t, "No checklist selected", m.statusMsg)
}

func TestToggleAndNavigate(t *testing.T) {
	m, b := newModel(t, map[string][]string{"morning": {"coffee", "email"}})

	m = press(m, runes(" "))
	cl, err := b.Get("morning")
	require.NoError(t, err)
	assert.True(t, cl.Tasks[0].Done)

	m = press(m, runes("j"), runes("x"))
	cl, _ = b.Get("morning")
	assert.True(t, cl.Tasks[1].Done)

	// Down wraps back to the first task.
	m = press(m, runes("j"), runes("x"))
	cl, _ = b.Get("morning")
	assert.False(t, cl.Tasks[0].Done)
	assert.Contains(t, m.View(), "[x] ")
}

func TestSwitchChecklists(t *testing.T) {
	m, _ := newModel(t, map[string][]string{"a": {"one"}, "b": {"two"}})

	name, _ := m.Selected()
	assert.Equal(t, "a", name)

	m = press(m, runes("l"))
	name, _ = m.Selected()
	assert.Equal(t, "b", name)

	m = press(m, runes("l"))
	name, _ = m.Selected()
	assert.Equal(t, "a", name)

	m = press(m, runes("h"))
	name, _ = m.Selected()
	assert.Equal(t, "b", name)
}

func TestDeleteTaskKey(t *testing.T) {
	m, b := newModel(t, map[string][]string{"a": {"one", "two"}})

	m = press(m, runes("j"), runes("d"))
	cl, _ := b.Get("a")
	require.Len(t, cl.Tasks, 1)
	assert.Equal(t, "one", cl.Tasks[0].Text)
	assert.Equal(t, 0, m.taskIdx)
	assert.Equal(t, "Task deleted", m.statusMsg)
}

func TestAddTaskForm(t *testing.T) {
	m, b := newModel(t, map[string][]string{"a": {"one"}})

	m = press(m, runes("a"))
	require.True(t, m.Typing())
	assert.Equal(t, formAddTask, m.kind)

	m.fb.text = "two"
	m, _ = m.submitForm()
	assert.False(t, m.Typing())

	cl, _ := b.Get("a")
	require.Len(t, cl.Tasks, 2)
	assert.Equal(t, "two", cl.Tasks[1].Text)
	assert.Equal(t, 1, m.taskIdx)
}

func TestEditTaskForm(t *testing.T) {
	m, b := newModel(t, map[string][]string{"a": {"one"}})

	m = press(m, runes("e"))
	require.True(t, m.Typing())
	assert.Equal(t, "one", m.fb.text)

	m.fb.text = "uno"
	m, _ = m.submitForm()
	cl, _ := b.Get("a")
	assert.Equal(t, "uno", cl.Tasks[0].Text)

	m = press(m, runes("e"))
	m.fb.text = "  "
	m, _ = m.submitForm()
	cl, _ = b.Get("a")
	assert.Equal(t, "uno", cl.Tasks[0].Text)
	assert.True(t, m.statusErr)
}

func TestFormEscCancels(t *testing.T) {
	m, b := newModel(t, map[string][]string{"a": nil})

	m = press(m, runes("n"))
	require.True(t, m.Typing())
	m = press(m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, m.Typing())
	assert.Equal(t, []string{"a"}, b.Names())
}

func TestCreateAndRenameChecklist(t *testing.T) {
	m, b := newModel(t, map[string][]string{"a": nil})

	m, _ = m.CreateChecklist("  zeta ")
	name, _ := m.Selected()
	assert.Equal(t, "zeta", name)

	m, _ = m.CreateChecklist("a")
	assert.True(t, m.statusErr)
	assert.Equal(t, `a checklist named "a" already exists`, m.statusMsg)

	m, _ = m.RenameChecklist("omega")
	name, _ = m.Selected()
	assert.Equal(t, "omega", name)
	assert.Equal(t, []string{"a", "omega"}, b.Names())

	m, _ = m.RenameChecklist("a")
	assert.True(t, m.statusErr)
	name, _ = m.Selected()
	assert.Equal(t, "omega", name)
}

func TestDeleteChecklistConfirm(t *testing.T) {
	m, b := newModel(t, map[string][]string{"a": {"one"}, "b": nil})

	m = press(m, runes("D"))
	require.Equal(t, modeConfirmDelete, m.mode)

	m.mode = modeList
	m, _ = m.DeleteChecklist()
	assert.Equal(t, []string{"b"}, b.Names())
	name, _ := m.Selected()
	assert.Equal(t, "b", name)
}

func TestBulkActionsAndDailyRefresh(t *testing.T) {
	m, b := newModel(t, map[string][]string{"a": {"one", "two"}})

	m = press(m, runes("c"))
	cl, _ := b.Get("a")
	assert.True(t, cl.Tasks[0].Done)
	assert.True(t, cl.Tasks[1].Done)

	m = press(m, runes("r"))
	cl, _ = b.Get("a")
	assert.False(t, cl.Tasks[0].Done)
	assert.False(t, cl.Tasks[1].Done)

	m = press(m, runes("t"))
	cl, _ = b.Get("a")
	assert.True(t, cl.DailyRefresh)
	assert.Contains(t, m.View(), "resets daily")

	off := false
	m, _ = m.SetDailyRefresh(&off)
	cl, _ = b.Get("a")
	assert.False(t, cl.DailyRefresh)
	assert.Equal(t, "Daily refresh off", m.statusMsg)
}

func TestReloadKeepsSelection(t *testing.T) {
	m, b := newModel(t, map[string][]string{"a": nil, "b": {"one", "two"}})
	m = press(m, runes("l"), runes("j"))

	require.NoError(t, b.DeleteTask("b", 1))
	m = m.Reload()

	name, _ := m.Selected()
	assert.Equal(t, "b", name)
	assert.Len(t, m.rows, 1)
	assert.Equal(t, 0, m.taskIdx)
}

func writeDoc(t *testing.T, b *checkbook.Book, doc string) {
	t.Helper()
	require.NoError(t, os.WriteFile(b.Path(), []byte(doc), 0o644))
	changed, err := b.Reload()
	require.NoError(t, err)
	require.True(t, changed)
}

func TestEditDiscardedWhenTaskMovedOnDisk(t *testing.T) {
	m, b := newModel(t, map[string][]string{"a": {"one", "two", "three"}})

	m = press(m, runes("j"), runes("e"))
	require.True(t, m.Typing())
	require.Equal(t, "two", m.fb.text)

	today := time.Now().Format("2006-01-02")
	writeDoc(t, b, `{"a": {"daily_refresh": false, "last_refresh": "`+today+`",
		"tasks": [{"text": "two", "done": false}, {"text": "three", "done": false}]}}`)
	m = m.Reload()

	m.fb.text = "TWO edited"
	m, _ = m.submitForm()

	cl, err := b.Get("a")
	require.NoError(t, err)
	require.Len(t, cl.Tasks, 2)
	assert.Equal(t, "two", cl.Tasks[0].Text)
	assert.Equal(t, "three", cl.Tasks[1].Text)
	assert.True(t, m.statusErr)
	assert.Equal(t, "Task changed on disk; edit discarded", m.statusMsg)
}

func TestEditSurvivesUnrelatedReload(t *testing.T) {
	m, b := newModel(t, map[string][]string{"a": {"one", "two"}})

	m = press(m, runes("j"), runes("e"))

	today := time.Now().Format("2006-01-02")
	writeDoc(t, b, `{"a": {"daily_refresh": false, "last_refresh": "`+today+`",
		"tasks": [{"text": "one", "done": true}, {"text": "two", "done": false}, {"text": "new", "done": false}]}}`)
	m = m.Reload()

	m.fb.text = "TWO edited"
	m, _ = m.submitForm()

	cl, _ := b.Get("a")
	require.Len(t, cl.Tasks, 3)
	assert.Equal(t, "TWO edited", cl.Tasks[1].Text)
	assert.False(t, m.statusErr)
}
