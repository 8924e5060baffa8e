package domain

import (
	"errors"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Comment-specific validation errors
var (
	// ErrCommentIDEmpty is returned when a comment ID is empty or nil.
	ErrCommentIDEmpty = errors.New("comment ID cannot be empty")

	// ErrCommentTaskEmpty is returned when a comment's task ID is empty or nil.
	ErrCommentTaskEmpty = errors.New("comment task ID cannot be empty")

	// ErrCommentAuthorEmpty is returned when a comment's author ID is empty or nil.
	ErrCommentAuthorEmpty = errors.New("comment author ID cannot be empty")

	// ErrCommentContentEmpty is returned when a comment's content is empty.
	ErrCommentContentEmpty = errors.New("comment content cannot be empty")

	// ErrCommentContentTooLong is returned when content exceeds 1000 characters.
	ErrCommentContentTooLong = errors.New("comment content must be at most 1000 characters long")
)

// Comment is a remark attached to a task. Comments live and die with
// their task: deleting the task cascades to them.
type Comment struct {
	ID        uuid.UUID `json:"id"`
	TaskID    uuid.UUID `json:"task_id"`
	AuthorID  uuid.UUID `json:"author_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`

	// Expanded author identity, populated on reads. Nil when not loaded.
	Author *UserRef `json:"author,omitempty"`
}

// NewComment creates a new Comment on the given task.
// Returns an error if validation fails.
func NewComment(taskID, authorID uuid.UUID, content string) (*Comment, error) {
	comment := &Comment{
		ID:        uuid.New(),
		TaskID:    taskID,
		AuthorID:  authorID,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}

	if err := comment.Validate(); err != nil {
		return nil, err
	}

	return comment, nil
}

// Validate checks if the Comment has valid data.
// Returns an error if any field fails validation.
func (c *Comment) Validate() error {
	if c.ID == uuid.Nil {
		return ErrCommentIDEmpty
	}

	if c.TaskID == uuid.Nil {
		return ErrCommentTaskEmpty
	}

	if c.AuthorID == uuid.Nil {
		return ErrCommentAuthorEmpty
	}

	if c.Content == "" {
		return ErrCommentContentEmpty
	}
	if utf8.RuneCountInString(c.Content) > 1000 {
		return ErrCommentContentTooLong
	}

	return nil
}
