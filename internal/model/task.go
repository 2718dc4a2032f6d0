package model

import "time"

// Task is one line of a user's call checklist. A nil ParentTaskID marks a
// top-level task; subtasks are only ever one level deep.
type Task struct {
	ID            int64     `json:"id" db:"id"`
	UserID        string    `json:"user_id" db:"user_id"`
	CallType      string    `json:"call_type" db:"call_type"`
	ChecklistType string    `json:"checklist_type" db:"checklist_type"`
	Text          string    `json:"text" db:"text"`
	Done          bool      `json:"done" db:"done"`
	ParentTaskID  *int64    `json:"parent_task_id,omitempty" db:"parent_task_id"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

// IsSubtask reports whether the task hangs under a parent task.
func (t Task) IsSubtask() bool {
	return t.ParentTaskID != nil
}

// TaskView is a top-level task with its subtasks, in creation order.
type TaskView struct {
	Task
	Subtasks []Task `json:"subtasks"`
}
