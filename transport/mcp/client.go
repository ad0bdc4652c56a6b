package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/samber/lo"
	"github.com/wricardo/mcp-training/wordgrid/api"
	"github.com/wricardo/mcp-training/wordgrid/game/config"
	"github.com/wricardo/mcp-training/wordgrid/game/engine"
	"github.com/wricardo/mcp-training/wordgrid/game/session"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// ClientOption configures a Client
type ClientOption func(*Client)

// WithToken sends token as the operator bearer token on every API call
func WithToken(token string) ClientOption {
	return func(c *Client) { c.token = token }
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Word Grid",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Word Grid - MCP Interface

This is a thin client that proxies requests to the REST API server. Players
play over the WebSocket at /ws; these tools observe and moderate sessions.

AVAILABLE TOOLS:
- list_sessions: List sessions, optionally filtered by status
- get_session: Grid, players, scores and words of one session
- end_session: Finish a session and notify its players
- list_configs: List game presets
- game_rules: How words are traced and scored
- trace_word: Check whether a word can be traced through a grid`),
	)

	c.registerTools()
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List game sessions, newest first",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"status": map[string]interface{}{
					"type":        "string",
					"description": "Only sessions with this status",
					"enum":        []string{"waiting", "running", "finished"},
				},
				"limit": map[string]interface{}{
					"type":        "number",
					"description": "Maximum number of sessions to return",
				},
			},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_session",
		Description: "Get the grid, players, scores and submitted words of a session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID to retrieve",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleGetSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "end_session",
		Description: "Finish a session immediately; players receive the final scores",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID to end",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleEndSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_configs",
		Description: "List available game presets (grid size and duration)",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListConfigs)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_rules",
		Description: "Get the rules for tracing and scoring words",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleGameRules)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "trace_word",
		Description: "Check whether a word can be traced through a session's grid without reusing a cell",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session whose grid to search",
				},
				"word": map[string]interface{}{
					"type":        "string",
					"description": "Word to trace",
				},
			},
			Required: []string{"session_id", "word"},
		},
	}, c.handleTraceWord)
}

// GetMCPServer returns the underlying MCP server
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// apiCall makes an HTTP request to the REST API
func (c *Client) apiCall(method, path string, body interface{}, result interface{}) error {
	endpoint := c.baseURL + path

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequest(method, endpoint, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

// Tool handlers

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := request.Params.Arguments.(map[string]interface{})

	query := url.Values{}
	if status, ok := args["status"].(string); ok && status != "" {
		query.Set("status", status)
	}
	if limit, ok := args["limit"].(float64); ok && limit > 0 {
		query.Set("limit", fmt.Sprintf("%d", int(limit)))
	}

	path := "/api/sessions"
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	var resp struct {
		Sessions []api.SessionSummary `json:"sessions"`
	}
	if err := c.apiCall("GET", path, nil, &resp); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSessionList(resp.Sessions)), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)
	if sessionID == "" {
		return mcp.NewToolResultError("session_id is required"), nil
	}

	var view session.View
	if err := c.apiCall("GET", "/api/sessions/"+url.PathEscape(sessionID), nil, &view); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSession(view)), nil
}

func (c *Client) handleEndSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)
	if sessionID == "" {
		return mcp.NewToolResultError("session_id is required"), nil
	}

	var view session.View
	if err := c.apiCall("POST", "/api/sessions/"+url.PathEscape(sessionID)+"/end", nil, &view); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText("Session ended.\n\n" + formatSession(view)), nil
}

func (c *Client) handleListConfigs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var resp struct {
		Configs []config.PresetInfo `json:"configs"`
		Default config.Preset       `json:"default"`
	}
	if err := c.apiCall("GET", "/api/configs", nil, &resp); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var sb strings.Builder
	sb.WriteString("Available presets:\n")
	for _, p := range resp.Configs {
		fmt.Fprintf(&sb, "- %s: %s (%dx%d, %ds)", p.ConfigID, p.Name, p.GridSize, p.GridSize, p.DurationSeconds)
		if p.Description != "" {
			fmt.Fprintf(&sb, " - %s", p.Description)
		}
		sb.WriteString("\n")
	}
	fmt.Fprintf(&sb, "\nDefault: %s (%dx%d, %ds)\n", resp.Default.Name, resp.Default.GridSize, resp.Default.GridSize, resp.Default.DurationSeconds)

	return mcp.NewToolResultText(sb.String()), nil
}

func (c *Client) handleGameRules(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rules := fmt.Sprintf(`Word Grid - Rules

OBJECTIVE:
Find as many words as possible in the letter grid before the countdown reaches zero.

TRACING A WORD:
- Start on any cell holding the first letter.
- Each next letter must be in one of the 8 neighbouring cells (horizontal, vertical or diagonal).
- A cell can be used at most once per word.

A WORD IS ACCEPTED WHEN:
1. It is in the dictionary.
2. It has at least %d letters.
3. It is not longer than the number of cells in the grid.
4. It can be traced through the grid.
5. You have not already submitted it in this game.

SCORING:
Each accepted word scores one point per letter. Scores only go up.

GAME FLOW:
- The admin creates a game (grid size %d to %d) and shares its six-character ID.
- Players join while the game is waiting.
- The admin starts once at least two players have joined; the grid appears and the timer runs.
- When the timer reaches zero the game ends and final scores are announced.
- If the admin leaves, the first remaining player becomes admin.
`, engine.MinWordLength, engine.MinGridSize, engine.MaxGridSize)

	return mcp.NewToolResultText(rules), nil
}

func (c *Client) handleTraceWord(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)
	word, _ := args["word"].(string)
	if sessionID == "" || strings.TrimSpace(word) == "" {
		return mcp.NewToolResultError("session_id and word are required"), nil
	}

	var view session.View
	if err := c.apiCall("GET", "/api/sessions/"+url.PathEscape(sessionID), nil, &view); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if view.Grid == nil || view.Grid.IsZero() {
		return mcp.NewToolResultError("the grid is generated when the game starts"), nil
	}

	word = strings.TrimSpace(word)
	if engine.FindsPath(word, *view.Grid) {
		return mcp.NewToolResultText(fmt.Sprintf("%q can be traced (worth %d points if it is in the dictionary)", word, engine.Score(word))), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("%q cannot be traced through this grid", word)), nil
}

// Formatting helpers

func formatSessionList(sessions []api.SessionSummary) string {
	if len(sessions) == 0 {
		return "No sessions."
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%d session(s):\n", len(sessions))
	for _, s := range sessions {
		fmt.Fprintf(&sb, "- %s [%s] %d player(s), %dx%d grid", s.ID, s.Status, s.Players, s.GridSize, s.GridSize)
		if s.Status == session.StatusRunning {
			fmt.Fprintf(&sb, ", %ds left", s.RemainingTime)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func formatSession(v session.View) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Session %s\n", v.ID)
	fmt.Fprintf(&sb, "Status: %s\n", v.Status)
	fmt.Fprintf(&sb, "Grid size: %dx%d\n", v.GridSize, v.GridSize)
	fmt.Fprintf(&sb, "Remaining time: %ds\n", v.RemainingTime)

	admin, _ := v.Player(v.Admin)
	fmt.Fprintf(&sb, "Admin: %s\n", lo.Ternary(admin.Name != "", admin.Name, v.Admin))

	names := lo.Map(v.Players, func(p session.Player, _ int) string { return p.Name })
	fmt.Fprintf(&sb, "Players: %s\n", strings.Join(names, ", "))

	if v.Grid != nil && !v.Grid.IsZero() {
		sb.WriteString("\nGrid:\n")
		sb.WriteString(v.Grid.String())
		sb.WriteString("\n")
	}

	if len(v.PlayerScores) > 0 {
		sb.WriteString("\nScores:\n")
		for _, s := range v.PlayerScores {
			fmt.Fprintf(&sb, "  %s: %d\n", s.PlayerName, s.Score)
		}
	}

	if len(v.Words) > 0 {
		sb.WriteString("\nWords:\n")
		for _, w := range v.Words {
			name := w.PlayerID
			if p, ok := lo.Find(v.PlayerScores, func(s session.PlayerScore) bool { return s.PlayerID == w.PlayerID }); ok {
				name = p.PlayerName
			}
			fmt.Fprintf(&sb, "  %s (%d) by %s\n", w.Word, w.Points, name)
		}
	}

	return sb.String()
}
