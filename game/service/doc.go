// Package service provides the event router for the word grid game.
//
// The service package implements:
//   - Display name binding per connected participant
//   - Action handlers for creating, joining, starting and replaying games
//   - Word submission through the engine validator
//   - Countdown tick handling and end of game notices
//   - Disconnect handling with admin reassignment
//
// Core Types:
//
// Router consumes participant actions and countdown ticks. Delivery is the
// outbound capability it writes notifications to, addressed either to one
// participant or to every participant subscribed to a session.
// PresetSource resolves the grid size and duration of new games.
//
// Architecture:
//
// The router sits between the transports (websocket hub, HTTP API, MCP) and
// the session manager. It never touches connections directly. Every handler
// validates before mutating, and rejections are sent to the acting
// participant only: word rejections as wordValidatingError, everything else
// as an error notification carrying a stable code.
//
// Usage:
//
//	sessions := session.NewManager(session.WithLogger(log))
//	router := service.NewRouter(sessions, dict, hub, presets, service.WithRouterLogger(log))
//
//	// from a transport read loop
//	err := router.Dispatch(participantID, action)
//
//	// when the connection drops
//	router.Disconnect(participantID)
package service
