// Package realtime delivers live events to connected clients over WebSocket.
//
// The package separates three concerns:
//   - Event: a named payload serialized to clients as JSON
//   - Registry: tracks which delivery sinks belong to which user
//   - Hub: publishes events to everyone or to a single user's sinks
//
// Services publish through the Broadcaster interface so they never touch
// connection handling, and delivery failures never propagate back into
// business logic.
package realtime
