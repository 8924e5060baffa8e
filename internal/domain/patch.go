package domain

import (
	"encoding/json"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Optional is a tri-state field for partial updates: absent, set to a
// value, or explicitly set to null. The distinction matters for fields
// like the assignee, where "omitted" leaves the value alone but an
// explicit null clears it.
type Optional[T any] struct {
	set  bool
	null bool
	val  T
}

// Set returns an Optional holding the given value.
func Set[T any](v T) Optional[T] {
	return Optional[T]{set: true, val: v}
}

// Null returns an Optional explicitly set to null.
func Null[T any]() Optional[T] {
	return Optional[T]{set: true, null: true}
}

// Present reports whether the field appeared in the payload at all.
func (o Optional[T]) Present() bool { return o.set }

// IsNull reports whether the field was explicitly set to null.
func (o Optional[T]) IsNull() bool { return o.set && o.null }

// Value returns the held value and whether a non-null value is present.
func (o Optional[T]) Value() (T, bool) {
	if !o.set || o.null {
		var zero T
		return zero, false
	}
	return o.val, true
}

// UnmarshalJSON records that the field was present, distinguishing an
// explicit null from a concrete value. Absence is the zero Optional:
// encoding/json never calls this for omitted fields.
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.set = true
	if string(data) == "null" {
		o.null = true
		return nil
	}
	return json.Unmarshal(data, &o.val)
}

// TaskPatch is a structured partial update for a task. Each field is
// tri-state; only present fields are applied.
type TaskPatch struct {
	Title       Optional[string]       `json:"title"`
	Description Optional[string]       `json:"description"`
	Status      Optional[TaskStatus]   `json:"status"`
	Priority    Optional[TaskPriority] `json:"priority"`
	AssigneeID  Optional[uuid.UUID]    `json:"assignee_id"`
}

// IsEmpty reports whether the patch carries no fields at all.
func (p TaskPatch) IsEmpty() bool {
	return !p.Title.Present() && !p.Description.Present() && !p.Status.Present() &&
		!p.Priority.Present() && !p.AssigneeID.Present()
}

// Validate checks every present field against the task invariants.
// An explicit null is only meaningful for the assignee.
func (p TaskPatch) Validate() error {
	if v, ok := p.Title.Value(); ok {
		if v == "" {
			return ErrTaskTitleEmpty
		}
		if utf8.RuneCountInString(v) > 100 {
			return ErrTaskTitleTooLong
		}
	} else if p.Title.IsNull() {
		return ErrTaskTitleEmpty
	}

	if v, ok := p.Status.Value(); ok && !v.IsValid() {
		return ErrInvalidTaskStatus
	}
	if p.Status.IsNull() {
		return ErrInvalidTaskStatus
	}

	if v, ok := p.Priority.Value(); ok && !v.IsValid() {
		return ErrInvalidTaskPriority
	}
	if p.Priority.IsNull() {
		return ErrInvalidTaskPriority
	}

	return nil
}

// Apply copies the present fields of the patch onto the task and reports
// whether anything actually changed. The caller owns timestamps.
func (p TaskPatch) Apply(t *Task) bool {
	changed := false

	if v, ok := p.Title.Value(); ok && v != t.Title {
		t.Title = v
		changed = true
	}
	if p.Description.Present() {
		v, _ := p.Description.Value() // explicit null clears the description
		if v != t.Description {
			t.Description = v
			changed = true
		}
	}
	if v, ok := p.Status.Value(); ok && v != t.Status {
		t.Status = v
		changed = true
	}
	if v, ok := p.Priority.Value(); ok && v != t.Priority {
		t.Priority = v
		changed = true
	}
	if p.AssigneeID.Present() {
		if p.AssigneeID.IsNull() {
			if t.AssigneeID != nil {
				t.AssigneeID = nil
				t.Assignee = nil
				changed = true
			}
		} else if v, _ := p.AssigneeID.Value(); t.AssigneeID == nil || *t.AssigneeID != v {
			id := v
			t.AssigneeID = &id
			t.Assignee = nil
			changed = true
		}
	}

	return changed
}
