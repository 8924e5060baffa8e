package domain

import (
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestNewTask(t *testing.T) {
	t.Parallel() // Enable parallel execution
	// Test valid task creation
	creatorID := uuid.New()
	assigneeID := uuid.New()

	task, err := NewTask("Fix login bug", "Session expires too early", StatusInProgress, PriorityHigh, &assigneeID, creatorID)

	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if task.ID == uuid.Nil {
		t.Error("Expected non-nil UUID, got nil UUID")
	}

	if task.Title != "Fix login bug" {
		t.Errorf("Expected title %q, got %q", "Fix login bug", task.Title)
	}

	if task.Status != StatusInProgress {
		t.Errorf("Expected status %s, got %s", StatusInProgress, task.Status)
	}

	if task.Priority != PriorityHigh {
		t.Errorf("Expected priority %s, got %s", PriorityHigh, task.Priority)
	}

	if task.AssigneeID == nil || *task.AssigneeID != assigneeID {
		t.Errorf("Expected assignee ID %s, got %v", assigneeID, task.AssigneeID)
	}

	if task.CreatorID != creatorID {
		t.Errorf("Expected creator ID %s, got %s", creatorID, task.CreatorID)
	}

	if task.CreatedAt.IsZero() {
		t.Error("Expected non-zero CreatedAt time")
	}

	if task.UpdatedAt.IsZero() {
		t.Error("Expected non-zero UpdatedAt time")
	}
}

func TestNewTaskDefaults(t *testing.T) {
	t.Parallel()
	// Zero-valued status and priority fall back to TODO / MEDIUM
	task, err := NewTask("Write release notes", "", "", "", nil, uuid.New())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if task.Status != StatusTodo {
		t.Errorf("Expected default status %s, got %s", StatusTodo, task.Status)
	}

	if task.Priority != PriorityMedium {
		t.Errorf("Expected default priority %s, got %s", PriorityMedium, task.Priority)
	}

	if task.AssigneeID != nil {
		t.Errorf("Expected nil assignee, got %v", task.AssigneeID)
	}
}

func TestNewTaskValidation(t *testing.T) {
	t.Parallel()
	creatorID := uuid.New()

	// Empty title
	_, err := NewTask("", "", StatusTodo, PriorityLow, nil, creatorID)
	if err != ErrTaskTitleEmpty {
		t.Errorf("Expected error %v, got %v", ErrTaskTitleEmpty, err)
	}

	// Title over 100 characters
	_, err = NewTask(strings.Repeat("a", 101), "", StatusTodo, PriorityLow, nil, creatorID)
	if err != ErrTaskTitleTooLong {
		t.Errorf("Expected error %v, got %v", ErrTaskTitleTooLong, err)
	}

	// The limit counts characters, not bytes: 100 multibyte runes fit
	if _, err = NewTask(strings.Repeat("é", 100), "", StatusTodo, PriorityLow, nil, creatorID); err != nil {
		t.Errorf("Expected no error for 100-rune title, got %v", err)
	}
	if _, err = NewTask(strings.Repeat("é", 101), "", StatusTodo, PriorityLow, nil, creatorID); err != ErrTaskTitleTooLong {
		t.Errorf("Expected error %v, got %v", ErrTaskTitleTooLong, err)
	}

	// Unknown status
	_, err = NewTask("Task", "", TaskStatus("PARKED"), PriorityLow, nil, creatorID)
	if err != ErrInvalidTaskStatus {
		t.Errorf("Expected error %v, got %v", ErrInvalidTaskStatus, err)
	}

	// Unknown priority
	_, err = NewTask("Task", "", StatusTodo, TaskPriority("CRITICAL"), nil, creatorID)
	if err != ErrInvalidTaskPriority {
		t.Errorf("Expected error %v, got %v", ErrInvalidTaskPriority, err)
	}

	// Missing creator
	_, err = NewTask("Task", "", StatusTodo, PriorityLow, nil, uuid.Nil)
	if err != ErrTaskCreatorEmpty {
		t.Errorf("Expected error %v, got %v", ErrTaskCreatorEmpty, err)
	}
}

func TestTaskValidate(t *testing.T) {
	t.Parallel()
	validTask := Task{
		ID:        uuid.New(),
		Title:     "Valid task",
		Status:    StatusTodo,
		Priority:  PriorityMedium,
		CreatorID: uuid.New(),
	}

	// Test valid task
	if err := validTask.Validate(); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}

	// Test invalid ID
	invalidTask := validTask
	invalidTask.ID = uuid.Nil
	if err := invalidTask.Validate(); err != ErrTaskIDEmpty {
		t.Errorf("Expected error %v, got %v", ErrTaskIDEmpty, err)
	}

	// Test empty title
	invalidTask = validTask
	invalidTask.Title = ""
	if err := invalidTask.Validate(); err != ErrTaskTitleEmpty {
		t.Errorf("Expected error %v, got %v", ErrTaskTitleEmpty, err)
	}

	// Test invalid status
	invalidTask = validTask
	invalidTask.Status = TaskStatus("SHIPPED")
	if err := invalidTask.Validate(); err != ErrInvalidTaskStatus {
		t.Errorf("Expected error %v, got %v", ErrInvalidTaskStatus, err)
	}

	// Test invalid priority
	invalidTask = validTask
	invalidTask.Priority = TaskPriority("")
	if err := invalidTask.Validate(); err != ErrInvalidTaskPriority {
		t.Errorf("Expected error %v, got %v", ErrInvalidTaskPriority, err)
	}

	// Test missing creator
	invalidTask = validTask
	invalidTask.CreatorID = uuid.Nil
	if err := invalidTask.Validate(); err != ErrTaskCreatorEmpty {
		t.Errorf("Expected error %v, got %v", ErrTaskCreatorEmpty, err)
	}
}

func TestTaskClone(t *testing.T) {
	t.Parallel()
	assigneeID := uuid.New()
	original := &Task{
		ID:         uuid.New(),
		Title:      "Original",
		Status:     StatusTodo,
		Priority:   PriorityLow,
		AssigneeID: &assigneeID,
		CreatorID:  uuid.New(),
		Assignee:   &UserRef{ID: assigneeID, Name: "Alice"},
		Creator:    &UserRef{ID: uuid.New(), Name: "Bob"},
	}

	clone := original.Clone()

	if clone == original {
		t.Fatal("Expected clone to be a distinct value")
	}
	if clone.AssigneeID == original.AssigneeID {
		t.Error("Expected clone to own its assignee ID pointer")
	}
	if *clone.AssigneeID != assigneeID {
		t.Errorf("Expected assignee ID %s, got %s", assigneeID, *clone.AssigneeID)
	}

	// Mutating the clone must not leak into the original
	clone.Title = "Changed"
	clone.Assignee.Name = "Mallory"
	*clone.AssigneeID = uuid.New()

	if original.Title != "Original" {
		t.Errorf("Expected original title unchanged, got %q", original.Title)
	}
	if original.Assignee.Name != "Alice" {
		t.Errorf("Expected original assignee name unchanged, got %q", original.Assignee.Name)
	}
	if *original.AssigneeID != assigneeID {
		t.Error("Expected original assignee ID unchanged")
	}
}

func TestTaskAssignedTo(t *testing.T) {
	t.Parallel()
	assigneeID := uuid.New()
	task := &Task{AssigneeID: &assigneeID}

	if !task.AssignedTo(assigneeID) {
		t.Error("Expected AssignedTo to be true for the assignee")
	}
	if task.AssignedTo(uuid.New()) {
		t.Error("Expected AssignedTo to be false for another user")
	}

	task.AssigneeID = nil
	if task.AssignedTo(assigneeID) {
		t.Error("Expected AssignedTo to be false for an unassigned task")
	}
}

func TestTaskStatusIsValid(t *testing.T) {
	t.Parallel()
	for _, s := range []TaskStatus{StatusBacklog, StatusTodo, StatusInProgress, StatusDone} {
		if !s.IsValid() {
			t.Errorf("Expected status %s to be valid", s)
		}
	}
	if TaskStatus("todo").IsValid() {
		t.Error("Expected lowercase status to be invalid")
	}
	if TaskStatus("").IsValid() {
		t.Error("Expected empty status to be invalid")
	}
}

func TestTaskPriorityIsValid(t *testing.T) {
	t.Parallel()
	for _, p := range []TaskPriority{PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent} {
		if !p.IsValid() {
			t.Errorf("Expected priority %s to be valid", p)
		}
	}
	if TaskPriority("BLOCKER").IsValid() {
		t.Error("Expected unknown priority to be invalid")
	}
}
