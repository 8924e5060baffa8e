package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// History-specific validation errors
var (
	// ErrHistoryIDEmpty is returned when a history entry ID is empty or nil.
	ErrHistoryIDEmpty = errors.New("history entry ID cannot be empty")

	// ErrHistoryTaskEmpty is returned when a history entry's task ID is empty or nil.
	ErrHistoryTaskEmpty = errors.New("history entry task ID cannot be empty")

	// ErrInvalidChangeType is returned when a change type is not one of the enumerated values.
	ErrInvalidChangeType = errors.New("invalid history change type")
)

// ChangeType classifies what a history entry records.
type ChangeType string

const (
	ChangeCreated      ChangeType = "created"
	ChangeStatus       ChangeType = "status_change"
	ChangeAssignee     ChangeType = "assignee_change"
	ChangeCommentAdded ChangeType = "comment_added"
)

// IsValid reports whether the change type is one of the enumerated values.
func (c ChangeType) IsValid() bool {
	switch c {
	case ChangeCreated, ChangeStatus, ChangeAssignee, ChangeCommentAdded:
		return true
	}
	return false
}

// UnassignedValue is the textual placeholder recorded in history entries
// for a null assignee.
const UnassignedValue = "Unassigned"

// HistoryEntry is an immutable audit record of one change to a task.
// Entries are append-only and ordered by OccurredAt; they are removed
// only by the cascading delete of their task.
type HistoryEntry struct {
	ID         uuid.UUID  `json:"id"`
	TaskID     uuid.UUID  `json:"task_id"`
	ChangeType ChangeType `json:"change_type"`
	OldValue   string     `json:"old_value,omitempty"`
	NewValue   string     `json:"new_value,omitempty"`
	OccurredAt time.Time  `json:"timestamp"`
}

// NewHistoryEntry creates a new audit record for the given task.
// The semantics of oldValue/newValue depend on the change type.
func NewHistoryEntry(taskID uuid.UUID, changeType ChangeType, oldValue, newValue string) (*HistoryEntry, error) {
	entry := &HistoryEntry{
		ID:         uuid.New(),
		TaskID:     taskID,
		ChangeType: changeType,
		OldValue:   oldValue,
		NewValue:   newValue,
		OccurredAt: time.Now().UTC(),
	}

	if err := entry.Validate(); err != nil {
		return nil, err
	}

	return entry, nil
}

// Validate checks if the HistoryEntry has valid data.
func (e *HistoryEntry) Validate() error {
	if e.ID == uuid.Nil {
		return ErrHistoryIDEmpty
	}

	if e.TaskID == uuid.Nil {
		return ErrHistoryTaskEmpty
	}

	if !e.ChangeType.IsValid() {
		return ErrInvalidChangeType
	}

	return nil
}
