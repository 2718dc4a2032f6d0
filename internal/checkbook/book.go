// Package checkbook stores the terminal tool's named checklists in a
// single JSON document.
package checkbook

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/tidwall/jsonc"

	"github.com/nhle/callsheet/internal/model"
)

// Book is the in-memory copy of the checklist document. Every mutation
// rewrites the whole file before returning. A Book is not safe for
// concurrent use.
type Book struct {
	path  string
	today string
	lists model.Checklists

	// saved is the last content written to or read from path.
	saved []byte
}

// Open loads the document at path. A missing file yields an empty book.
// Checklists with daily refresh that were last refreshed before today get
// every task reset, and the file is saved if that changed anything.
func Open(path string, today time.Time) (*Book, error) {
	b := &Book{
		path:  path,
		today: today.Format(model.DateLayout),
		lists: model.Checklists{},
	}

	if err := b.load(); err != nil {
		return nil, err
	}

	if b.applyDailyRefresh() {
		if err := b.save(); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// Path returns the document location.
func (b *Book) Path() string {
	return b.path
}

func (b *Book) load() error {
	data, err := os.ReadFile(b.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading %s: %w", b.path, err)
	}

	lists, err := parse(data)
	if err != nil {
		return fmt.Errorf("%s: %w", b.path, err)
	}
	b.lists = lists
	b.saved = data
	return nil
}

// parse accepts plain JSON as well as JSON with comments and trailing
// commas.
func parse(data []byte) (model.Checklists, error) {
	lists := model.Checklists{}
	if len(bytes.TrimSpace(data)) == 0 {
		return lists, nil
	}
	if err := json.Unmarshal(jsonc.ToJSON(data), &lists); err != nil {
		return nil, fmt.Errorf("parsing checklists: %w", err)
	}
	for name, cl := range lists {
		if cl == nil {
			cl = &model.Checklist{}
			lists[name] = cl
		}
		if cl.Tasks == nil {
			cl.Tasks = []model.ChecklistTask{}
		}
	}
	return lists, nil
}

func (b *Book) applyDailyRefresh() bool {
	changed := false
	for _, cl := range b.lists {
		if !cl.DailyRefresh || cl.LastRefresh == b.today {
			continue
		}
		for i := range cl.Tasks {
			cl.Tasks[i].Done = false
		}
		cl.LastRefresh = b.today
		changed = true
	}
	return changed
}

// Reload re-reads the file when it was changed by someone else. It
// reports whether the in-memory state was replaced.
func (b *Book) Reload() (bool, error) {
	data, err := os.ReadFile(b.path)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("reading %s: %w", b.path, err)
	}
	if bytes.Equal(data, b.saved) {
		return false, nil
	}

	lists, err := parse(data)
	if err != nil {
		return false, fmt.Errorf("%s: %w", b.path, err)
	}
	b.lists = lists
	b.saved = data
	return true, nil
}

// save writes the document to a temporary file next to path and renames
// it into place.
func (b *Book) save() error {
	data, err := json.MarshalIndent(b.lists, "", "    ")
	if err != nil {
		return fmt.Errorf("encoding checklists: %w", err)
	}

	dir := filepath.Dir(b.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(b.path)+".*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), b.path); err != nil {
		return fmt.Errorf("saving %s: %w", b.path, err)
	}

	b.saved = data
	return nil
}

// mutate applies fn and saves. If fn or the save fails, the in-memory
// document is restored.
func (b *Book) mutate(fn func() error) error {
	before := clone(b.lists)
	if err := fn(); err != nil {
		b.lists = before
		return err
	}
	if err := b.save(); err != nil {
		b.lists = before
		return err
	}
	return nil
}

func clone(lists model.Checklists) model.Checklists {
	out := make(model.Checklists, len(lists))
	for name, cl := range lists {
		out[name] = copyChecklist(cl)
	}
	return out
}

func copyChecklist(cl *model.Checklist) *model.Checklist {
	c := *cl
	c.Tasks = make([]model.ChecklistTask, len(cl.Tasks))
	copy(c.Tasks, cl.Tasks)
	return &c
}

// Names returns the checklist names in sorted order.
func (b *Book) Names() []string {
	names := make([]string, 0, len(b.lists))
	for name := range b.lists {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Get returns a copy of the named checklist.
func (b *Book) Get(name string) (model.Checklist, error) {
	cl, err := b.checklist(name)
	if err != nil {
		return model.Checklist{}, err
	}
	return *copyChecklist(cl), nil
}

func (b *Book) checklist(name string) (*model.Checklist, error) {
	cl, ok := b.lists[name]
	if !ok {
		return nil, fmt.Errorf("checklist %q: %w", name, model.ErrNotFound)
	}
	return cl, nil
}

func (b *Book) task(name string, idx int) (*model.ChecklistTask, error) {
	cl, err := b.checklist(name)
	if err != nil {
		return nil, err
	}
	if idx < 0 || idx >= len(cl.Tasks) {
		return nil, fmt.Errorf("task %d of %q out of range: %w", idx, name, model.ErrInvalidInput)
	}
	return &cl.Tasks[idx], nil
}

// CreateChecklist adds an empty checklist without daily refresh.
func (b *Book) CreateChecklist(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("checklist name cannot be empty: %w", model.ErrInvalidInput)
	}
	if _, ok := b.lists[name]; ok {
		return fmt.Errorf("a checklist named %q already exists: %w", name, model.ErrInvalidInput)
	}

	return b.mutate(func() error {
		b.lists[name] = &model.Checklist{
			LastRefresh: b.today,
			Tasks:       []model.ChecklistTask{},
		}
		return nil
	})
}

// RenameChecklist moves a checklist to a new name. Renaming onto an
// existing checklist is rejected and leaves both untouched.
func (b *Book) RenameChecklist(oldName, newName string) error {
	newName = strings.TrimSpace(newName)
	cl, err := b.checklist(oldName)
	if err != nil {
		return err
	}
	if newName == "" {
		return fmt.Errorf("checklist name cannot be empty: %w", model.ErrInvalidInput)
	}
	if newName == oldName {
		return nil
	}
	if _, ok := b.lists[newName]; ok {
		return fmt.Errorf("a checklist named %q already exists: %w", newName, model.ErrInvalidInput)
	}

	return b.mutate(func() error {
		delete(b.lists, oldName)
		b.lists[newName] = cl
		return nil
	})
}

// DeleteChecklist removes a checklist and its tasks.
func (b *Book) DeleteChecklist(name string) error {
	if _, err := b.checklist(name); err != nil {
		return err
	}
	return b.mutate(func() error {
		delete(b.lists, name)
		return nil
	})
}

// SetDailyRefresh turns the once-a-day reset on or off.
func (b *Book) SetDailyRefresh(name string, on bool) error {
	return b.mutate(func() error {
		cl, err := b.checklist(name)
		if err != nil {
			return err
		}
		cl.DailyRefresh = on
		if on {
			cl.LastRefresh = b.today
		}
		return nil
	})
}

// AddTask appends a task that is not done.
func (b *Book) AddTask(name, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return fmt.Errorf("task cannot be empty: %w", model.ErrInvalidInput)
	}
	return b.mutate(func() error {
		cl, err := b.checklist(name)
		if err != nil {
			return err
		}
		cl.Tasks = append(cl.Tasks, model.ChecklistTask{Text: text})
		return nil
	})
}

// EditTask replaces the text of the task at idx.
func (b *Book) EditTask(name string, idx int, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return fmt.Errorf("task cannot be empty: %w", model.ErrInvalidInput)
	}
	return b.mutate(func() error {
		t, err := b.task(name, idx)
		if err != nil {
			return err
		}
		t.Text = text
		return nil
	})
}

// DeleteTask removes the task at idx.
func (b *Book) DeleteTask(name string, idx int) error {
	return b.mutate(func() error {
		if _, err := b.task(name, idx); err != nil {
			return err
		}
		cl := b.lists[name]
		cl.Tasks = append(cl.Tasks[:idx:idx], cl.Tasks[idx+1:]...)
		return nil
	})
}

// ToggleTask flips the done flag of the task at idx.
func (b *Book) ToggleTask(name string, idx int) error {
	return b.mutate(func() error {
		t, err := b.task(name, idx)
		if err != nil {
			return err
		}
		t.Done = !t.Done
		return nil
	})
}

// Refresh marks every task of the checklist as not done.
func (b *Book) Refresh(name string) error {
	return b.setAll(name, false)
}

// CompleteAll marks every task of the checklist as done.
func (b *Book) CompleteAll(name string) error {
	return b.setAll(name, true)
}

func (b *Book) setAll(name string, done bool) error {
	return b.mutate(func() error {
		cl, err := b.checklist(name)
		if err != nil {
			return err
		}
		for i := range cl.Tasks {
			cl.Tasks[i].Done = done
		}
		return nil
	})
}
