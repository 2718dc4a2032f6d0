package store

import (
	"context"

	"github.com/nhle/callsheet/internal/model"
)

// TaskStore is the persistence interface for call checklist tasks. It is
// implemented both on the database and inside a transaction (see WithTx).
type TaskStore interface {
	CreateTask(ctx context.Context, task *model.Task) error
	GetTaskByID(ctx context.Context, id int64) (*model.Task, error)
	SetTaskDone(ctx context.Context, id int64, done bool) error
	SetTaskText(ctx context.Context, id int64, text string) error

	// DeleteTask removes the task and its subtasks, returning the number
	// of rows removed.
	DeleteTask(ctx context.Context, id int64) (int64, error)

	HasTopLevelTasks(ctx context.Context, userID, callType, checklistType string) (bool, error)
	GetTopLevelTasks(ctx context.Context, userID, callType, checklistType string) ([]model.Task, error)
	GetSubtasks(ctx context.Context, parentID int64) ([]model.Task, error)
	CountSubtasks(ctx context.Context, parentID int64) (int, error)

	// CountChecklistTasks counts top-level tasks and subtasks together.
	CountChecklistTasks(ctx context.Context, userID, callType, checklistType string) (int, error)

	// DeleteChecklistTasks removes every task of the checklist, subtasks
	// included, returning the number of rows removed.
	DeleteChecklistTasks(ctx context.Context, userID, callType, checklistType string) (int64, error)
}

// UserStore is the persistence interface for accounts.
type UserStore interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
}

// Store defines the persistence interface for users and tasks.
type Store interface {
	TaskStore
	UserStore

	// WithTx runs fn inside a single transaction. The transaction commits
	// when fn returns nil and rolls back otherwise.
	WithTx(ctx context.Context, fn func(tx TaskStore) error) error

	Close() error
}
