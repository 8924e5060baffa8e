// Package service provides application-level services for tasks, users,
// notifications and authentication.
//
// Task mutations follow a fixed sequence: authorize against the policy
// table, apply the change and its audit history atomically in one
// transaction, then hand the outcome to the notification dispatcher.
// Notification persistence and live delivery happen strictly after the
// transaction commits and are best-effort; their failures are logged,
// never surfaced to the caller and never rolled back.
package service
