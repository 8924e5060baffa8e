package service

import (
	"context"
	"errors"
	"testing"

	"github.com/bengamraiheb/backloft/internal/domain"
	"github.com/bengamraiheb/backloft/internal/store"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingDispatcher captures mutations instead of dispatching them.
type recordingDispatcher struct {
	mutations []Mutation
}

func (r *recordingDispatcher) Dispatch(_ context.Context, m Mutation) {
	r.mutations = append(r.mutations, m)
}

type taskServiceFixture struct {
	svc        TaskService
	tasks      *fakeTaskStore
	history    *fakeHistoryStore
	comments   *fakeCommentStore
	users      *fakeUserStore
	dispatcher *recordingDispatcher
}

func newTaskServiceFixture(t *testing.T, users ...*domain.User) *taskServiceFixture {
	t.Helper()
	f := &taskServiceFixture{
		tasks:      newFakeTaskStore(),
		history:    &fakeHistoryStore{},
		comments:   &fakeCommentStore{},
		users:      newFakeUserStore(users...),
		dispatcher: &recordingDispatcher{},
	}
	svc, err := NewTaskService(newTestDB(t), f.tasks, f.history, f.comments, f.users, f.dispatcher, nil)
	require.NoError(t, err)
	f.svc = svc
	return f
}

func storedUser(name, email string) *domain.User {
	return &domain.User{
		ID:             uuid.New(),
		Name:           name,
		Email:          email,
		HashedPassword: "hashed:password1",
		Role:           domain.RoleUser,
	}
}

func TestNewTaskService(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	tasks := newFakeTaskStore()
	history := &fakeHistoryStore{}
	comments := &fakeCommentStore{}
	users := newFakeUserStore()
	dispatcher := &recordingDispatcher{}

	_, err := NewTaskService(nil, tasks, history, comments, users, dispatcher, nil)
	assert.Error(t, err)

	_, err = NewTaskService(db, nil, history, comments, users, dispatcher, nil)
	assert.Error(t, err)

	_, err = NewTaskService(db, tasks, history, comments, users, nil, nil)
	assert.Error(t, err)

	svc, err := NewTaskService(db, tasks, history, comments, users, dispatcher, nil)
	require.NoError(t, err)
	assert.NotNil(t, svc)
}

func TestCreateTask(t *testing.T) {
	t.Parallel()

	t.Run("creates task with history and dispatch", func(t *testing.T) {
		t.Parallel()
		assignee := storedUser("Bob Reviewer", "bob@example.com")
		f := newTaskServiceFixture(t, assignee)
		principal := domain.Principal{ID: uuid.New(), Email: "alice@example.com", Role: domain.RoleUser}

		task, err := f.svc.CreateTask(context.Background(), principal, CreateTaskInput{
			Title:      "Ship the release",
			Status:     domain.StatusInProgress,
			Priority:   domain.PriorityHigh,
			AssigneeID: &assignee.ID,
		})
		require.NoError(t, err)

		assert.Equal(t, "Ship the release", task.Title)
		assert.Equal(t, principal.ID, task.CreatorID)

		// Persisted
		stored, err := f.tasks.GetByID(context.Background(), task.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusInProgress, stored.Status)

		// History records the creation
		entries := f.history.byTask(task.ID)
		require.Len(t, entries, 1)
		assert.Equal(t, domain.ChangeCreated, entries[0].ChangeType)
		assert.Equal(t, "Task created", entries[0].NewValue)

		// Dispatched after commit
		require.Len(t, f.dispatcher.mutations, 1)
		assert.Equal(t, MutationCreated, f.dispatcher.mutations[0].Kind)
		assert.Equal(t, principal, f.dispatcher.mutations[0].Actor)
		assert.Nil(t, f.dispatcher.mutations[0].Before)
	})

	t.Run("defaults status and priority", func(t *testing.T) {
		t.Parallel()
		f := newTaskServiceFixture(t)
		principal := domain.Principal{ID: uuid.New(), Role: domain.RoleUser}

		task, err := f.svc.CreateTask(context.Background(), principal, CreateTaskInput{Title: "Minimal"})
		require.NoError(t, err)
		assert.Equal(t, domain.StatusTodo, task.Status)
		assert.Equal(t, domain.PriorityMedium, task.Priority)
	})

	t.Run("rejects unknown assignee", func(t *testing.T) {
		t.Parallel()
		f := newTaskServiceFixture(t)
		principal := domain.Principal{ID: uuid.New(), Role: domain.RoleUser}
		ghost := uuid.New()

		_, err := f.svc.CreateTask(context.Background(), principal, CreateTaskInput{
			Title:      "Task",
			AssigneeID: &ghost,
		})
		assert.True(t, domain.IsValidationError(err))
		assert.Empty(t, f.tasks.tasks)
		assert.Empty(t, f.dispatcher.mutations)
	})

	t.Run("rejects invalid input without side effects", func(t *testing.T) {
		t.Parallel()
		f := newTaskServiceFixture(t)
		principal := domain.Principal{ID: uuid.New(), Role: domain.RoleUser}

		_, err := f.svc.CreateTask(context.Background(), principal, CreateTaskInput{Title: ""})
		assert.ErrorIs(t, err, domain.ErrTaskTitleEmpty)
		assert.Empty(t, f.tasks.tasks)
		assert.Empty(t, f.history.entries)
		assert.Empty(t, f.dispatcher.mutations)
	})

	t.Run("store failure rolls back without dispatch", func(t *testing.T) {
		t.Parallel()
		f := newTaskServiceFixture(t)
		f.tasks.createErr = errors.New("connection refused")
		principal := domain.Principal{ID: uuid.New(), Role: domain.RoleUser}

		_, err := f.svc.CreateTask(context.Background(), principal, CreateTaskInput{Title: "Task"})
		require.Error(t, err)

		var svcErr *TaskServiceError
		assert.ErrorAs(t, err, &svcErr)
		assert.Empty(t, f.dispatcher.mutations)
	})
}

func TestUpdateTask(t *testing.T) {
	t.Parallel()

	seedTask := func(t *testing.T, f *taskServiceFixture, creatorID uuid.UUID, assigneeID *uuid.UUID) *domain.Task {
		t.Helper()
		task, err := domain.NewTask("Ship the release", "", domain.StatusTodo, domain.PriorityMedium, assigneeID, creatorID)
		require.NoError(t, err)
		require.NoError(t, f.tasks.Create(context.Background(), task))
		return task
	}

	t.Run("empty patch is rejected", func(t *testing.T) {
		t.Parallel()
		f := newTaskServiceFixture(t)
		principal := domain.Principal{ID: uuid.New(), Role: domain.RoleUser}

		_, err := f.svc.UpdateTask(context.Background(), principal, uuid.New(), domain.TaskPatch{})
		assert.ErrorIs(t, err, ErrEmptyPatch)
	})

	t.Run("unknown task", func(t *testing.T) {
		t.Parallel()
		f := newTaskServiceFixture(t)
		principal := domain.Principal{ID: uuid.New(), Role: domain.RoleUser}

		_, err := f.svc.UpdateTask(context.Background(), principal, uuid.New(), domain.TaskPatch{
			Status: domain.Set(domain.StatusDone),
		})
		assert.ErrorIs(t, err, store.ErrTaskNotFound)
	})

	t.Run("status change records history", func(t *testing.T) {
		t.Parallel()
		f := newTaskServiceFixture(t)
		principal := domain.Principal{ID: uuid.New(), Role: domain.RoleUser}
		task := seedTask(t, f, principal.ID, nil)

		updated, err := f.svc.UpdateTask(context.Background(), principal, task.ID, domain.TaskPatch{
			Status: domain.Set(domain.StatusDone),
		})
		require.NoError(t, err)
		assert.Equal(t, domain.StatusDone, updated.Status)

		entries := f.history.byTask(task.ID)
		require.Len(t, entries, 1)
		assert.Equal(t, domain.ChangeStatus, entries[0].ChangeType)
		assert.Equal(t, string(domain.StatusTodo), entries[0].OldValue)
		assert.Equal(t, string(domain.StatusDone), entries[0].NewValue)

		require.Len(t, f.dispatcher.mutations, 1)
		m := f.dispatcher.mutations[0]
		assert.Equal(t, MutationUpdated, m.Kind)
		require.NotNil(t, m.Before)
		assert.Equal(t, domain.StatusTodo, m.Before.Status)
	})

	t.Run("assignment records history by display name", func(t *testing.T) {
		t.Parallel()
		assignee := storedUser("Bob Reviewer", "bob@example.com")
		f := newTaskServiceFixture(t, assignee)
		principal := domain.Principal{ID: uuid.New(), Role: domain.RoleUser}
		task := seedTask(t, f, principal.ID, nil)

		_, err := f.svc.UpdateTask(context.Background(), principal, task.ID, domain.TaskPatch{
			AssigneeID: domain.Set(assignee.ID),
		})
		require.NoError(t, err)

		entries := f.history.byTask(task.ID)
		require.Len(t, entries, 1)
		assert.Equal(t, domain.ChangeAssignee, entries[0].ChangeType)
		assert.Equal(t, domain.UnassignedValue, entries[0].OldValue)
		assert.Equal(t, "Bob Reviewer", entries[0].NewValue)
	})

	t.Run("status and assignee change in one patch orders history", func(t *testing.T) {
		t.Parallel()
		assignee := storedUser("Bob Reviewer", "bob@example.com")
		f := newTaskServiceFixture(t, assignee)
		principal := domain.Principal{ID: uuid.New(), Role: domain.RoleUser}
		task := seedTask(t, f, principal.ID, nil)

		_, err := f.svc.UpdateTask(context.Background(), principal, task.ID, domain.TaskPatch{
			Status:     domain.Set(domain.StatusInProgress),
			AssigneeID: domain.Set(assignee.ID),
		})
		require.NoError(t, err)

		// The status entry is appended strictly before the assignee entry.
		entries := f.history.byTask(task.ID)
		require.Len(t, entries, 2)
		assert.Equal(t, domain.ChangeStatus, entries[0].ChangeType)
		assert.Equal(t, string(domain.StatusInProgress), entries[0].NewValue)
		assert.Equal(t, domain.ChangeAssignee, entries[1].ChangeType)
		assert.Equal(t, "Bob Reviewer", entries[1].NewValue)
	})

	t.Run("description-only change writes no history", func(t *testing.T) {
		t.Parallel()
		f := newTaskServiceFixture(t)
		principal := domain.Principal{ID: uuid.New(), Role: domain.RoleUser}
		task := seedTask(t, f, principal.ID, nil)

		updated, err := f.svc.UpdateTask(context.Background(), principal, task.ID, domain.TaskPatch{
			Description: domain.Set("Now with acceptance criteria"),
		})
		require.NoError(t, err)
		assert.Equal(t, "Now with acceptance criteria", updated.Description)

		assert.Empty(t, f.history.byTask(task.ID))
		// The mutation itself is still dispatched.
		require.Len(t, f.dispatcher.mutations, 1)
		assert.Equal(t, MutationUpdated, f.dispatcher.mutations[0].Kind)
	})

	t.Run("explicit null clears the assignee", func(t *testing.T) {
		t.Parallel()
		assignee := storedUser("Bob Reviewer", "bob@example.com")
		f := newTaskServiceFixture(t, assignee)
		principal := domain.Principal{ID: uuid.New(), Role: domain.RoleUser}
		task := seedTask(t, f, principal.ID, &assignee.ID)

		updated, err := f.svc.UpdateTask(context.Background(), principal, task.ID, domain.TaskPatch{
			AssigneeID: domain.Null[uuid.UUID](),
		})
		require.NoError(t, err)
		assert.Nil(t, updated.AssigneeID)

		entries := f.history.byTask(task.ID)
		require.Len(t, entries, 1)
		assert.Equal(t, domain.ChangeAssignee, entries[0].ChangeType)
		assert.Equal(t, domain.UnassignedValue, entries[0].NewValue)
	})

	t.Run("unknown assignee fails before any write", func(t *testing.T) {
		t.Parallel()
		f := newTaskServiceFixture(t)
		principal := domain.Principal{ID: uuid.New(), Role: domain.RoleUser}
		task := seedTask(t, f, principal.ID, nil)

		_, err := f.svc.UpdateTask(context.Background(), principal, task.ID, domain.TaskPatch{
			Title:      domain.Set("Renamed"),
			AssigneeID: domain.Set(uuid.New()),
		})
		assert.True(t, domain.IsValidationError(err))

		stored, err := f.tasks.GetByID(context.Background(), task.ID)
		require.NoError(t, err)
		assert.Equal(t, "Ship the release", stored.Title)
		assert.Empty(t, f.history.entries)
		assert.Empty(t, f.dispatcher.mutations)
	})

	t.Run("no-op patch skips history and dispatch", func(t *testing.T) {
		t.Parallel()
		f := newTaskServiceFixture(t)
		principal := domain.Principal{ID: uuid.New(), Role: domain.RoleUser}
		task := seedTask(t, f, principal.ID, nil)

		updated, err := f.svc.UpdateTask(context.Background(), principal, task.ID, domain.TaskPatch{
			Status: domain.Set(domain.StatusTodo),
		})
		require.NoError(t, err)
		assert.Equal(t, domain.StatusTodo, updated.Status)
		assert.Empty(t, f.history.entries)
		assert.Empty(t, f.dispatcher.mutations)
	})

	t.Run("store failure skips dispatch", func(t *testing.T) {
		t.Parallel()
		f := newTaskServiceFixture(t)
		principal := domain.Principal{ID: uuid.New(), Role: domain.RoleUser}
		task := seedTask(t, f, principal.ID, nil)
		f.tasks.updateErr = errors.New("connection refused")

		_, err := f.svc.UpdateTask(context.Background(), principal, task.ID, domain.TaskPatch{
			Status: domain.Set(domain.StatusDone),
		})
		require.Error(t, err)
		assert.Empty(t, f.dispatcher.mutations)
	})
}

func TestDeleteTask(t *testing.T) {
	t.Parallel()

	seedTask := func(t *testing.T, f *taskServiceFixture, creatorID uuid.UUID) *domain.Task {
		t.Helper()
		task, err := domain.NewTask("Doomed", "", domain.StatusTodo, domain.PriorityLow, nil, creatorID)
		require.NoError(t, err)
		require.NoError(t, f.tasks.Create(context.Background(), task))
		return task
	}

	t.Run("creator deletes own task", func(t *testing.T) {
		t.Parallel()
		f := newTaskServiceFixture(t)
		principal := domain.Principal{ID: uuid.New(), Role: domain.RoleUser}
		task := seedTask(t, f, principal.ID)

		err := f.svc.DeleteTask(context.Background(), principal, task.ID)
		require.NoError(t, err)

		_, err = f.tasks.GetByID(context.Background(), task.ID)
		assert.ErrorIs(t, err, store.ErrTaskNotFound)

		require.Len(t, f.dispatcher.mutations, 1)
		m := f.dispatcher.mutations[0]
		assert.Equal(t, MutationDeleted, m.Kind)
		// The dispatched task is the pre-deletion state
		assert.Equal(t, task.ID, m.Task.ID)
	})

	t.Run("admin deletes any task", func(t *testing.T) {
		t.Parallel()
		f := newTaskServiceFixture(t)
		admin := domain.Principal{ID: uuid.New(), Role: domain.RoleAdmin}
		task := seedTask(t, f, uuid.New())

		assert.NoError(t, f.svc.DeleteTask(context.Background(), admin, task.ID))
	})

	t.Run("non-creator is denied", func(t *testing.T) {
		t.Parallel()
		f := newTaskServiceFixture(t)
		stranger := domain.Principal{ID: uuid.New(), Role: domain.RoleTeamMember}
		task := seedTask(t, f, uuid.New())

		err := f.svc.DeleteTask(context.Background(), stranger, task.ID)
		assert.ErrorIs(t, err, ErrForbidden)

		_, err = f.tasks.GetByID(context.Background(), task.ID)
		assert.NoError(t, err)
		assert.Empty(t, f.dispatcher.mutations)
	})

	t.Run("unknown task", func(t *testing.T) {
		t.Parallel()
		f := newTaskServiceFixture(t)
		admin := domain.Principal{ID: uuid.New(), Role: domain.RoleAdmin}

		err := f.svc.DeleteTask(context.Background(), admin, uuid.New())
		assert.ErrorIs(t, err, store.ErrTaskNotFound)
	})
}

func TestAddComment(t *testing.T) {
	t.Parallel()

	t.Run("persists comment with history and dispatch", func(t *testing.T) {
		t.Parallel()
		author := storedUser("Alice Example", "alice@example.com")
		f := newTaskServiceFixture(t, author)
		principal := domain.Principal{ID: author.ID, Email: author.Email, Role: domain.RoleUser}

		task, err := domain.NewTask("Ship it", "", domain.StatusTodo, domain.PriorityMedium, nil, uuid.New())
		require.NoError(t, err)
		require.NoError(t, f.tasks.Create(context.Background(), task))

		comment, err := f.svc.AddComment(context.Background(), principal, task.ID, "On it")
		require.NoError(t, err)

		assert.Equal(t, "On it", comment.Content)
		assert.Equal(t, author.ID, comment.AuthorID)
		require.NotNil(t, comment.Author)
		assert.Equal(t, "Alice Example", comment.Author.Name)

		entries := f.history.byTask(task.ID)
		require.Len(t, entries, 1)
		assert.Equal(t, domain.ChangeCommentAdded, entries[0].ChangeType)
		assert.Equal(t, "Comment added by alice@example.com", entries[0].NewValue)

		require.Len(t, f.dispatcher.mutations, 1)
		m := f.dispatcher.mutations[0]
		assert.Equal(t, MutationCommented, m.Kind)
		assert.Equal(t, comment, m.Comment)
	})

	t.Run("unknown task", func(t *testing.T) {
		t.Parallel()
		f := newTaskServiceFixture(t)
		principal := domain.Principal{ID: uuid.New(), Role: domain.RoleUser}

		_, err := f.svc.AddComment(context.Background(), principal, uuid.New(), "Hello?")
		assert.ErrorIs(t, err, store.ErrTaskNotFound)
	})

	t.Run("empty content is rejected", func(t *testing.T) {
		t.Parallel()
		f := newTaskServiceFixture(t)
		principal := domain.Principal{ID: uuid.New(), Role: domain.RoleUser}

		task, err := domain.NewTask("Task", "", domain.StatusTodo, domain.PriorityMedium, nil, principal.ID)
		require.NoError(t, err)
		require.NoError(t, f.tasks.Create(context.Background(), task))

		_, err = f.svc.AddComment(context.Background(), principal, task.ID, "")
		assert.ErrorIs(t, err, domain.ErrCommentContentEmpty)
		assert.Empty(t, f.comments.comments)
		assert.Empty(t, f.dispatcher.mutations)
	})
}

func TestListCommentsAndHistory(t *testing.T) {
	t.Parallel()

	f := newTaskServiceFixture(t)
	principal := domain.Principal{ID: uuid.New(), Email: "alice@example.com", Role: domain.RoleUser}

	task, err := f.svc.CreateTask(context.Background(), principal, CreateTaskInput{Title: "Task"})
	require.NoError(t, err)

	_, err = f.svc.AddComment(context.Background(), principal, task.ID, "First")
	require.NoError(t, err)
	_, err = f.svc.AddComment(context.Background(), principal, task.ID, "Second")
	require.NoError(t, err)

	comments, err := f.svc.ListComments(context.Background(), principal, task.ID)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "First", comments[0].Content)

	history, err := f.svc.ListHistory(context.Background(), principal, task.ID)
	require.NoError(t, err)
	// Creation plus two comment entries
	require.Len(t, history, 3)
	assert.Equal(t, domain.ChangeCreated, history[0].ChangeType)

	// Both listings 404 on unknown tasks
	_, err = f.svc.ListComments(context.Background(), principal, uuid.New())
	assert.ErrorIs(t, err, store.ErrTaskNotFound)
	_, err = f.svc.ListHistory(context.Background(), principal, uuid.New())
	assert.ErrorIs(t, err, store.ErrTaskNotFound)
}
