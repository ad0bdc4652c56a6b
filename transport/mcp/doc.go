// Package mcp exposes the word grid server to AI agents through the Model
// Context Protocol.
//
// The Client is a thin proxy: every tool call becomes a request against the
// REST API in package api, so the MCP server can run in-process (POST /mcp)
// or as a separate stdio process pointed at a running server.
//
// Tools:
//   - list_sessions: sessions with status, player count and grid size
//   - get_session: grid, players, scores and submitted words
//   - end_session: finish a session and notify its players
//   - list_configs: available game presets
//   - game_rules: tracing and scoring rules
//   - trace_word: check whether a word can be traced through a session's grid
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	server.ServeStdio(client.GetMCPServer())
package mcp
