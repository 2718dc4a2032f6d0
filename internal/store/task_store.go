package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/nhle/callsheet/internal/model"
)

const taskColumns = "id, user_id, call_type, checklist_type, text, done, parent_task_id, created_at"

// taskQueries implements TaskStore on either the database handle or an
// open transaction.
type taskQueries struct {
	q sqlx.ExtContext
}

// CreateTask inserts a task and fills in its ID and CreatedAt.
func (t taskQueries) CreateTask(ctx context.Context, task *model.Task) error {
	task.CreatedAt = time.Now().UTC()

	result, err := t.q.ExecContext(ctx, `
		INSERT INTO tasks (
			user_id, call_type, checklist_type, text, done, parent_task_id, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		task.UserID, task.CallType, task.ChecklistType, task.Text,
		boolToInt(task.Done), task.ParentTaskID, task.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("creating task %q: %w", task.Text, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading id of task %q: %w", task.Text, err)
	}
	task.ID = id
	return nil
}

// GetTaskByID retrieves a single task by ID.
func (t taskQueries) GetTaskByID(ctx context.Context, id int64) (*model.Task, error) {
	var task model.Task
	err := sqlx.GetContext(ctx, t.q, &task,
		"SELECT "+taskColumns+" FROM tasks WHERE id = ?", id)
	if err != nil {
		return nil, fmt.Errorf("getting task %d: %w", id, notFound(err))
	}
	return &task, nil
}

// SetTaskDone updates the done flag of a task.
func (t taskQueries) SetTaskDone(ctx context.Context, id int64, done bool) error {
	result, err := t.q.ExecContext(ctx,
		"UPDATE tasks SET done = ? WHERE id = ?", boolToInt(done), id)
	if err != nil {
		return fmt.Errorf("updating task %d: %w", id, err)
	}
	return expectRows(result, id)
}

// SetTaskText replaces the text of a task.
func (t taskQueries) SetTaskText(ctx context.Context, id int64, text string) error {
	result, err := t.q.ExecContext(ctx,
		"UPDATE tasks SET text = ? WHERE id = ?", text, id)
	if err != nil {
		return fmt.Errorf("updating task %d: %w", id, err)
	}
	return expectRows(result, id)
}

// DeleteTask removes a task. Subtasks are deleted first so none is ever
// left without its parent.
func (t taskQueries) DeleteTask(ctx context.Context, id int64) (int64, error) {
	subResult, err := t.q.ExecContext(ctx, "DELETE FROM tasks WHERE parent_task_id = ?", id)
	if err != nil {
		return 0, fmt.Errorf("deleting subtasks of task %d: %w", id, err)
	}
	subRows, _ := subResult.RowsAffected()

	result, err := t.q.ExecContext(ctx, "DELETE FROM tasks WHERE id = ?", id)
	if err != nil {
		return 0, fmt.Errorf("deleting task %d: %w", id, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return 0, fmt.Errorf("task %d: %w", id, model.ErrNotFound)
	}
	return subRows + rows, nil
}

// HasTopLevelTasks reports whether the checklist has any task without a parent.
func (t taskQueries) HasTopLevelTasks(
	ctx context.Context,
	userID, callType, checklistType string,
) (bool, error) {
	var exists int
	err := sqlx.GetContext(ctx, t.q, &exists, `
		SELECT EXISTS (
			SELECT 1 FROM tasks
			WHERE user_id = ? AND call_type = ? AND checklist_type = ?
				AND parent_task_id IS NULL
		)`,
		userID, callType, checklistType,
	)
	if err != nil {
		return false, fmt.Errorf("checking tasks of %s/%s: %w", callType, checklistType, err)
	}
	return exists != 0, nil
}

// GetTopLevelTasks retrieves the checklist's top-level tasks in creation order.
func (t taskQueries) GetTopLevelTasks(
	ctx context.Context,
	userID, callType, checklistType string,
) ([]model.Task, error) {
	var tasks []model.Task
	err := sqlx.SelectContext(ctx, t.q, &tasks, `
		SELECT `+taskColumns+` FROM tasks
		WHERE user_id = ? AND call_type = ? AND checklist_type = ?
			AND parent_task_id IS NULL
		ORDER BY id`,
		userID, callType, checklistType,
	)
	if err != nil {
		return nil, fmt.Errorf("querying tasks of %s/%s: %w", callType, checklistType, err)
	}
	return tasks, nil
}

// GetSubtasks retrieves the children of a task in creation order.
func (t taskQueries) GetSubtasks(ctx context.Context, parentID int64) ([]model.Task, error) {
	var tasks []model.Task
	err := sqlx.SelectContext(ctx, t.q, &tasks,
		"SELECT "+taskColumns+" FROM tasks WHERE parent_task_id = ? ORDER BY id", parentID)
	if err != nil {
		return nil, fmt.Errorf("querying subtasks of task %d: %w", parentID, err)
	}
	return tasks, nil
}

// CountSubtasks returns the number of children of a task.
func (t taskQueries) CountSubtasks(ctx context.Context, parentID int64) (int, error) {
	var count int
	err := sqlx.GetContext(ctx, t.q, &count,
		"SELECT COUNT(*) FROM tasks WHERE parent_task_id = ?", parentID)
	if err != nil {
		return 0, fmt.Errorf("counting subtasks of task %d: %w", parentID, err)
	}
	return count, nil
}

// CountChecklistTasks returns the number of rows, subtasks included, in a checklist.
func (t taskQueries) CountChecklistTasks(
	ctx context.Context,
	userID, callType, checklistType string,
) (int, error) {
	var count int
	err := sqlx.GetContext(ctx, t.q, &count, `
		SELECT COUNT(*) FROM tasks
		WHERE user_id = ? AND call_type = ? AND checklist_type = ?`,
		userID, callType, checklistType,
	)
	if err != nil {
		return 0, fmt.Errorf("counting tasks of %s/%s: %w", callType, checklistType, err)
	}
	return count, nil
}

// DeleteChecklistTasks removes every task of the checklist, subtasks first.
func (t taskQueries) DeleteChecklistTasks(
	ctx context.Context,
	userID, callType, checklistType string,
) (int64, error) {
	var total int64
	for _, query := range []string{
		`DELETE FROM tasks
		WHERE user_id = ? AND call_type = ? AND checklist_type = ?
			AND parent_task_id IS NOT NULL`,
		`DELETE FROM tasks
		WHERE user_id = ? AND call_type = ? AND checklist_type = ?`,
	} {
		result, err := t.q.ExecContext(ctx, query, userID, callType, checklistType)
		if err != nil {
			return 0, fmt.Errorf("deleting tasks of %s/%s: %w", callType, checklistType, err)
		}
		rows, _ := result.RowsAffected()
		total += rows
	}
	return total, nil
}

// expectRows turns an update that touched nothing into model.ErrNotFound.
func expectRows(result sql.Result, id int64) error {
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("task %d: %w", id, model.ErrNotFound)
	}
	return nil
}
