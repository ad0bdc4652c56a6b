// Package session provides session management for the word grid game.
//
// The session package implements:
//   - Thread-safe session storage and retrieval
//   - Unique session ID generation
//   - The waiting, running and finished lifecycle
//   - One countdown per running session
//   - Removal of finished and stale sessions
//
// Core Types:
//
// Manager owns every live session. Session is the mutable state of one game
// and View is the copy handed to callers and serialized to clients.
// Countdown is the per-session recurring tick.
//
// Session Identifiers:
//
// Sessions use 6-character hex IDs generated from cryptographic randomness.
// Lookups are case-insensitive.
//
// Concurrency:
//
// The manager map and each session carry their own lock. Operations on
// different sessions never block each other, and a countdown tick only
// contends with operations on its own session.
//
// Usage:
//
//	manager := session.NewManager(session.WithLogger(log))
//
//	view, err := manager.Create(adminID, "alice", time.Minute, 4)
//	if err != nil {
//		return err
//	}
//
//	view, err = manager.Join(view.ID, bobID, "bob")
//	view, err = manager.Start(view.ID, adminID, onTick)
//
// Cleanup:
//
// Finished sessions are removed after a retention period. Reclaim sweeps
// sessions finished too long ago and sessions older than the maximum age.
package session
