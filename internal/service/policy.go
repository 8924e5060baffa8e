package service

import (
	"github.com/bengamraiheb/backloft/internal/domain"
)

// Action identifies an operation subject to authorization.
type Action string

const (
	ActionCreateTask  Action = "task.create"
	ActionViewTask    Action = "task.view"
	ActionUpdateTask  Action = "task.update"
	ActionDeleteTask  Action = "task.delete"
	ActionCommentTask Action = "task.comment"
	ActionManageUsers Action = "users.manage"
)

// policyRule decides whether a principal may perform an action on a task.
// The task is nil for actions that have no task in scope yet (creation,
// user management).
type policyRule func(p domain.Principal, task *domain.Task) bool

func anyAuthenticated(domain.Principal, *domain.Task) bool {
	return true
}

func creatorOrAdmin(p domain.Principal, task *domain.Task) bool {
	if p.IsAdmin() {
		return true
	}
	return task != nil && task.CreatorID == p.ID
}

func adminOnly(p domain.Principal, _ *domain.Task) bool {
	return p.IsAdmin()
}

// policy is the declarative authorization table. Every task mutation
// consults it before touching storage; a missing action denies by default.
var policy = map[Action]policyRule{
	ActionCreateTask:  anyAuthenticated,
	ActionViewTask:    anyAuthenticated,
	ActionUpdateTask:  anyAuthenticated,
	ActionCommentTask: anyAuthenticated,
	ActionDeleteTask:  creatorOrAdmin,
	ActionManageUsers: adminOnly,
}

// Authorize checks the policy table and returns ErrForbidden when the
// principal may not perform the action.
func Authorize(p domain.Principal, action Action, task *domain.Task) error {
	rule, ok := policy[action]
	if !ok || !rule(p, task) {
		return ErrForbidden
	}
	return nil
}
