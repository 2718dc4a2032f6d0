// Package checklist implements the per-user call checklist lifecycle:
// default seeding, toggling, editing and deleting tasks, and the lazy
// expansion of the objection sub-checklist.
package checklist

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/nhle/callsheet/internal/catalog"
	"github.com/nhle/callsheet/internal/model"
	"github.com/nhle/callsheet/internal/store"
)

// Service applies checklist operations on behalf of an authenticated user.
// Every mutation runs in one store transaction.
type Service struct {
	store  store.Store
	logger *slog.Logger
}

// ToggleResult reports what a Toggle call did.
type ToggleResult struct {
	Task model.Task

	// Expanded is true when the call created the objection sub-checklist
	// instead of flipping the task's done flag.
	Expanded bool
}

// New creates a Service. A nil logger discards log output.
func New(s store.Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{store: s, logger: logger}
}

// SeedDefaults inserts the default tasks for the checklist when it has no
// top-level task yet. For checklists with the objection flow it also adds
// an Objection task with its four subtasks. Returns whether anything was
// inserted; calling it again on a seeded checklist is a no-op.
func (s *Service) SeedDefaults(ctx context.Context, userID, callType, checklistType string) (bool, error) {
	var seeded bool
	err := s.store.WithTx(ctx, func(tx store.TaskStore) error {
		var err error
		seeded, err = seed(ctx, tx, userID, callType, checklistType)
		return err
	})
	if err != nil {
		return false, err
	}
	if seeded {
		s.logger.Debug("seeded checklist",
			"user_id", userID, "call_type", callType, "checklist_type", checklistType)
	}
	return seeded, nil
}

func seed(ctx context.Context, tx store.TaskStore, userID, callType, checklistType string) (bool, error) {
	exists, err := tx.HasTopLevelTasks(ctx, userID, callType, checklistType)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	labels := catalog.Defaults(callType, checklistType)
	for _, label := range labels {
		task := &model.Task{
			UserID:        userID,
			CallType:      callType,
			ChecklistType: checklistType,
			Text:          label,
		}
		if err := tx.CreateTask(ctx, task); err != nil {
			return false, err
		}
	}

	if !catalog.HasObjectionFlow(callType, checklistType) {
		return len(labels) > 0, nil
	}

	objection := &model.Task{
		UserID:        userID,
		CallType:      callType,
		ChecklistType: checklistType,
		Text:          catalog.ObjectionLabel,
	}
	if err := tx.CreateTask(ctx, objection); err != nil {
		return false, err
	}
	if err := addObjectionSubtasks(ctx, tx, objection); err != nil {
		return false, err
	}
	return true, nil
}

func addObjectionSubtasks(ctx context.Context, tx store.TaskStore, parent *model.Task) error {
	for _, label := range catalog.ObjectionSubtasks() {
		sub := &model.Task{
			UserID:        parent.UserID,
			CallType:      parent.CallType,
			ChecklistType: parent.ChecklistType,
			Text:          label,
			ParentTaskID:  &parent.ID,
		}
		if err := tx.CreateTask(ctx, sub); err != nil {
			return err
		}
	}
	return nil
}

// ListTopLevel returns the checklist's tasks without a parent, in creation order.
func (s *Service) ListTopLevel(ctx context.Context, userID, callType, checklistType string) ([]model.Task, error) {
	return s.store.GetTopLevelTasks(ctx, userID, callType, checklistType)
}

// ListSubtasks returns the subtasks of one of the user's tasks, in creation order.
func (s *Service) ListSubtasks(ctx context.Context, userID string, parentID int64) ([]model.Task, error) {
	if _, err := owned(ctx, s.store, userID, parentID); err != nil {
		return nil, err
	}
	return s.store.GetSubtasks(ctx, parentID)
}

// Checklist seeds the checklist if needed and returns its top-level tasks
// with their subtasks nested.
func (s *Service) Checklist(ctx context.Context, userID, callType, checklistType string) ([]model.TaskView, error) {
	if _, err := s.SeedDefaults(ctx, userID, callType, checklistType); err != nil {
		return nil, err
	}

	tasks, err := s.store.GetTopLevelTasks(ctx, userID, callType, checklistType)
	if err != nil {
		return nil, err
	}

	views := make([]model.TaskView, 0, len(tasks))
	for _, task := range tasks {
		subs, err := s.store.GetSubtasks(ctx, task.ID)
		if err != nil {
			return nil, err
		}
		if subs == nil {
			subs = []model.Task{}
		}
		views = append(views, model.TaskView{Task: task, Subtasks: subs})
	}
	return views, nil
}

// GetTask returns one of the user's tasks.
func (s *Service) GetTask(ctx context.Context, userID string, taskID int64) (*model.Task, error) {
	return owned(ctx, s.store, userID, taskID)
}

// Toggle flips a task's done flag. An Objection task of a checklist with
// the objection flow that has no subtasks yet instead gets its four
// subtasks, and its done flag is left as it was.
func (s *Service) Toggle(ctx context.Context, userID string, taskID int64) (ToggleResult, error) {
	var res ToggleResult
	err := s.store.WithTx(ctx, func(tx store.TaskStore) error {
		task, err := owned(ctx, tx, userID, taskID)
		if err != nil {
			return err
		}

		if task.Text == catalog.ObjectionLabel && catalog.HasObjectionFlow(task.CallType, task.ChecklistType) {
			n, err := tx.CountSubtasks(ctx, task.ID)
			if err != nil {
				return err
			}
			if n == 0 {
				if err := addObjectionSubtasks(ctx, tx, task); err != nil {
					return err
				}
				res = ToggleResult{Task: *task, Expanded: true}
				return nil
			}
		}

		task.Done = !task.Done
		if err := tx.SetTaskDone(ctx, task.ID, task.Done); err != nil {
			return err
		}
		res = ToggleResult{Task: *task}
		return nil
	})
	if err != nil {
		return ToggleResult{}, err
	}
	if res.Expanded {
		s.logger.Debug("objection sub-checklist initialized", "user_id", userID, "task_id", taskID)
	}
	return res, nil
}

// ToggleSubtask flips a subtask's done flag. The parent is not touched.
func (s *Service) ToggleSubtask(ctx context.Context, userID string, subtaskID int64) (model.Task, error) {
	var out model.Task
	err := s.store.WithTx(ctx, func(tx store.TaskStore) error {
		task, err := owned(ctx, tx, userID, subtaskID)
		if err != nil {
			return err
		}
		task.Done = !task.Done
		if err := tx.SetTaskDone(ctx, task.ID, task.Done); err != nil {
			return err
		}
		out = *task
		return nil
	})
	return out, err
}

// AddTask appends a top-level task to the checklist.
func (s *Service) AddTask(ctx context.Context, userID, callType, checklistType, text string) (model.Task, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return model.Task{}, fmt.Errorf("task cannot be empty: %w", model.ErrInvalidInput)
	}

	task := model.Task{
		UserID:        userID,
		CallType:      callType,
		ChecklistType: checklistType,
		Text:          text,
	}
	err := s.store.WithTx(ctx, func(tx store.TaskStore) error {
		return tx.CreateTask(ctx, &task)
	})
	if err != nil {
		return model.Task{}, err
	}
	return task, nil
}

// EditTask replaces a task's text. Empty text is rejected and the old
// text kept.
func (s *Service) EditTask(ctx context.Context, userID string, taskID int64, newText string) (model.Task, error) {
	newText = strings.TrimSpace(newText)

	var out model.Task
	err := s.store.WithTx(ctx, func(tx store.TaskStore) error {
		task, err := owned(ctx, tx, userID, taskID)
		if err != nil {
			return err
		}
		if newText == "" {
			return fmt.Errorf("task cannot be empty: %w", model.ErrInvalidInput)
		}
		if err := tx.SetTaskText(ctx, task.ID, newText); err != nil {
			return err
		}
		task.Text = newText
		out = *task
		return nil
	})
	return out, err
}

// DeleteTask removes a task and its subtasks. It returns the deleted task
// and the number of rows removed.
func (s *Service) DeleteTask(ctx context.Context, userID string, taskID int64) (model.Task, int64, error) {
	var (
		out     model.Task
		removed int64
	)
	err := s.store.WithTx(ctx, func(tx store.TaskStore) error {
		task, err := owned(ctx, tx, userID, taskID)
		if err != nil {
			return err
		}
		removed, err = tx.DeleteTask(ctx, task.ID)
		if err != nil {
			return err
		}
		out = *task
		return nil
	})
	if err != nil {
		return model.Task{}, 0, err
	}
	return out, removed, nil
}

// ResetForNewCall deletes every task of the checklist and seeds it again,
// returning it to its template state.
func (s *Service) ResetForNewCall(ctx context.Context, userID, callType, checklistType string) error {
	err := s.store.WithTx(ctx, func(tx store.TaskStore) error {
		if _, err := tx.DeleteChecklistTasks(ctx, userID, callType, checklistType); err != nil {
			return err
		}
		_, err := seed(ctx, tx, userID, callType, checklistType)
		return err
	})
	if err != nil {
		return err
	}
	s.logger.Debug("checklist reset for new call",
		"user_id", userID, "call_type", callType, "checklist_type", checklistType)
	return nil
}

// owned loads a task and checks it belongs to userID.
func owned(ctx context.Context, ts store.TaskStore, userID string, taskID int64) (*model.Task, error) {
	task, err := ts.GetTaskByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task.UserID != userID {
		return nil, fmt.Errorf("task %d: %w", taskID, model.ErrForbidden)
	}
	return task, nil
}
