package store_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/callsheet/internal/model"
	"github.com/nhle/callsheet/internal/store"
	"github.com/nhle/callsheet/tests/testutil"
)

func newTask(userID, text string, parent *int64) *model.Task {
	return &model.Task{
		UserID:        userID,
		CallType:      "sales",
		ChecklistType: "start call",
		Text:          text,
		ParentTaskID:  parent,
	}
}

func TestCreateAndGetTask(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewTestStore(t)
	uid := testutil.NewTestUser(t, s, "alice")

	task := newTask(uid, "Purpose", nil)
	require.NoError(t, s.CreateTask(ctx, task))
	require.NotZero(t, task.ID)

	got, err := s.GetTaskByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "Purpose", got.Text)
	assert.Equal(t, uid, got.UserID)
	assert.False(t, got.Done)
	assert.Nil(t, got.ParentTaskID)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestGetTaskByIDNotFound(t *testing.T) {
	s := testutil.NewTestStore(t)

	_, err := s.GetTaskByID(context.Background(), 999)
	assert.True(t, errors.Is(err, model.ErrNotFound))
}

func TestTopLevelAndSubtasksOrdering(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewTestStore(t)
	uid := testutil.NewTestUser(t, s, "alice")

	has, err := s.HasTopLevelTasks(ctx, uid, "sales", "start call")
	require.NoError(t, err)
	assert.False(t, has)

	first := newTask(uid, "first", nil)
	require.NoError(t, s.CreateTask(ctx, first))
	second := newTask(uid, "second", nil)
	require.NoError(t, s.CreateTask(ctx, second))
	for _, text := range []string{"a", "b"} {
		require.NoError(t, s.CreateTask(ctx, newTask(uid, text, &second.ID)))
	}

	has, err = s.HasTopLevelTasks(ctx, uid, "sales", "start call")
	require.NoError(t, err)
	assert.True(t, has)

	top, err := s.GetTopLevelTasks(ctx, uid, "sales", "start call")
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "first", top[0].Text)
	assert.Equal(t, "second", top[1].Text)

	subs, err := s.GetSubtasks(ctx, second.ID)
	require.NoError(t, err)
	require.Len(t, subs, 2)
	assert.Equal(t, "a", subs[0].Text)
	assert.Equal(t, "b", subs[1].Text)
	require.NotNil(t, subs[0].ParentTaskID)
	assert.Equal(t, second.ID, *subs[0].ParentTaskID)

	count, err := s.CountSubtasks(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	total, err := s.CountChecklistTasks(ctx, uid, "sales", "start call")
	require.NoError(t, err)
	assert.Equal(t, 4, total)
}

func TestSetTaskDoneAndText(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewTestStore(t)
	uid := testutil.NewTestUser(t, s, "alice")

	task := newTask(uid, "Purpose", nil)
	require.NoError(t, s.CreateTask(ctx, task))

	require.NoError(t, s.SetTaskDone(ctx, task.ID, true))
	require.NoError(t, s.SetTaskText(ctx, task.ID, "Goal"))

	got, err := s.GetTaskByID(ctx, task.ID)
	require.NoError(t, err)
	assert.True(t, got.Done)
	assert.Equal(t, "Goal", got.Text)

	assert.ErrorIs(t, s.SetTaskDone(ctx, 12345, true), model.ErrNotFound)
	assert.ErrorIs(t, s.SetTaskText(ctx, 12345, "x"), model.ErrNotFound)
}

func TestDeleteTaskRemovesSubtasks(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewTestStore(t)
	uid := testutil.NewTestUser(t, s, "alice")

	parent := newTask(uid, "Objection", nil)
	require.NoError(t, s.CreateTask(ctx, parent))
	for i := 0; i < 3; i++ {
		require.NoError(t, s.CreateTask(ctx, newTask(uid, "sub", &parent.ID)))
	}

	removed, err := s.DeleteTask(ctx, parent.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 4, removed)

	total, err := s.CountChecklistTasks(ctx, uid, "sales", "start call")
	require.NoError(t, err)
	assert.Zero(t, total)

	_, err = s.DeleteTask(ctx, parent.ID)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestDeleteChecklistTasksScopedToUserAndPair(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewTestStore(t)
	alice := testutil.NewTestUser(t, s, "alice")
	bob := testutil.NewTestUser(t, s, "bob")

	parent := newTask(alice, "Objection", nil)
	require.NoError(t, s.CreateTask(ctx, parent))
	require.NoError(t, s.CreateTask(ctx, newTask(alice, "sub", &parent.ID)))
	require.NoError(t, s.CreateTask(ctx, newTask(bob, "bob's", nil)))
	other := newTask(alice, "Purpose", nil)
	other.ChecklistType = "voicemail"
	require.NoError(t, s.CreateTask(ctx, other))

	removed, err := s.DeleteChecklistTasks(ctx, alice, "sales", "start call")
	require.NoError(t, err)
	assert.EqualValues(t, 2, removed)

	n, err := s.CountChecklistTasks(ctx, bob, "sales", "start call")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = s.CountChecklistTasks(ctx, alice, "sales", "voicemail")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestWithTxRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewTestStore(t)
	uid := testutil.NewTestUser(t, s, "alice")

	boom := errors.New("boom")
	err := s.WithTx(ctx, func(tx store.TaskStore) error {
		if err := tx.CreateTask(ctx, newTask(uid, "Purpose", nil)); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	n, err := s.CountChecklistTasks(ctx, uid, "sales", "start call")
	require.NoError(t, err)
	assert.Zero(t, n)

	err = s.WithTx(ctx, func(tx store.TaskStore) error {
		return tx.CreateTask(ctx, newTask(uid, "Purpose", nil))
	})
	require.NoError(t, err)

	n, err = s.CountChecklistTasks(ctx, uid, "sales", "start call")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestUsers(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewTestStore(t)

	user := &model.User{Username: "alice", PasswordHash: "hash"}
	require.NoError(t, s.CreateUser(ctx, user))
	require.NotEmpty(t, user.ID)

	byName, err := s.GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byName.ID)
	assert.Equal(t, "hash", byName.PasswordHash)

	byID, err := s.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", byID.Username)

	_, err = s.GetUserByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, model.ErrNotFound)

	err = s.CreateUser(ctx, &model.User{Username: "alice", PasswordHash: "other"})
	assert.ErrorIs(t, err, model.ErrInvalidInput)
}

func TestReopenKeepsSchema(t *testing.T) {
	path := t.TempDir() + "/reopen.db"

	s, err := store.NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, s.CreateUser(context.Background(), &model.User{Username: "alice", PasswordHash: "x"}))
	require.NoError(t, s.Close())

	s, err = store.NewSQLiteStore(path)
	require.NoError(t, err)
	defer s.Close()

	_, err = s.GetUserByUsername(context.Background(), "alice")
	assert.NoError(t, err)
}
