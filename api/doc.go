// Package api provides the HTTP surface of the word grid server.
//
// Gameplay happens over the WebSocket mounted at /ws. The REST endpoints
// are for operators and tooling:
//
//   - GET /api/health - liveness, session and connection counts
//   - GET /api/sessions - list sessions (status, sort, order, limit)
//   - GET /api/sessions/{id} - full snapshot of one session
//   - POST /api/sessions/{id}/end - finish a session and notify its players
//   - GET /api/configs - list game presets and the default
//   - POST /api/configs - save a preset ({"config_id": ..., preset fields})
//   - POST /api/configs/refresh - drop cached presets and reload the default
//   - GET /api/configs/{name} - one preset
//
// The POST routes are operator routes (see Server.Operator). With
// WithOperatorToken they require "Authorization: Bearer <token>"; without a
// token they only answer loopback clients and return 401 otherwise.
//
// Query parameters for GET /api/sessions:
//
//	status=waiting|running|finished
//	sort=created|players   (default created)
//	order=asc|desc         (default desc)
//	limit=N
//
// Errors are returned as JSON with an HTTP status code:
//
//	{"error": "session not found"}
//
// Usage:
//
//	server := api.NewServer(sessions, router, presets, hub, logger)
//	server.ServeStatic("./static/")
//	http.ListenAndServe(":8080", server)
package api
