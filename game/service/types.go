package service

import (
	"encoding/json"

	"github.com/wricardo/mcp-training/wordgrid/game/engine"
	"github.com/wricardo/mcp-training/wordgrid/game/session"
)

// Inbound action names
const (
	ActionCreateUser = "createUser"
	ActionCreateGame = "createGame"
	ActionJoinGame   = "joinGame"
	ActionStartGame  = "startGame"
	ActionWordSelect = "wordSelect"
	ActionRevenge    = "revenge"
	ActionGameEnded  = "gameEnded"
)

// Outbound notification names
const (
	EventUserCreated         = "userCreated"
	EventError               = "error"
	EventGameCreated         = "gameCreated"
	EventPlayerJoined        = "playerJoined"
	EventGameStatusChanged   = "gameStatusChanged"
	EventWordSelected        = "wordSelected"
	EventWordValidatingError = "wordValidatingError"
	EventTimer               = "timer"
	EventPlayerLeft          = "playerLeft"
	EventAdminChanged        = "adminChanged"
	EventGameEnded           = "gameEnded"
)

// Action is a named message received from a participant
type Action struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Notification is a named message sent to participants
type Notification struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// CreateUserRequest binds a display name to the connection
type CreateUserRequest struct {
	Name string `json:"name"`
}

// CreateGameRequest optionally names the preset to create the game from
type CreateGameRequest struct {
	ConfigID string `json:"configId,omitempty"`
}

// GameRequest addresses an existing game
type GameRequest struct {
	GameID string `json:"gameId"`
}

// WordSelectRequest submits a word for a running game
type WordSelectRequest struct {
	GameID string `json:"gameId"`
	Word   string `json:"word"`
}

type UserCreated struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ErrorPayload reports a rejected action to its sender
type ErrorPayload struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type GameCreated struct {
	Game session.View `json:"game"`
}

type PlayerJoined struct {
	Player session.Player `json:"player"`
	Game   session.View   `json:"game"`
}

type GameStatusChanged struct {
	GameID       string                `json:"gameId"`
	Status       session.Status        `json:"status"`
	Grid         *engine.Grid          `json:"grid,omitempty"`
	PlayerScores []session.PlayerScore `json:"playerScores"`
	Words        []session.PlayerWord  `json:"words"`
}

// WordSelected is sent to each participant separately and carries only
// the recipient's own words
type WordSelected struct {
	GameID             string                `json:"gameId"`
	Status             session.Status        `json:"status"`
	Grid               *engine.Grid          `json:"grid,omitempty"`
	PlayerScores       []session.PlayerScore `json:"playerScores"`
	CurrentPlayerWords []session.PlayerWord  `json:"currentPlayerWords"`
}

type WordValidatingError struct {
	GameID string `json:"gameId"`
	Code   string `json:"code"`
	Word   string `json:"word"`
}

type TimerUpdate struct {
	GameID        string `json:"gameId"`
	RemainingTime int    `json:"remainingTime"`
}

type PlayerLeft struct {
	PlayerID string       `json:"playerId"`
	Game     session.View `json:"game"`
}

type AdminChanged struct {
	GameID   string `json:"gameId"`
	NewAdmin string `json:"newAdmin"`
}

type GameEnded struct {
	GameID string `json:"gameId"`
}

func statusChanged(v session.View) Notification {
	return Notification{Event: EventGameStatusChanged, Data: GameStatusChanged{
		GameID:       v.ID,
		Status:       v.Status,
		Grid:         v.Grid,
		PlayerScores: v.PlayerScores,
		Words:        v.Words,
	}}
}

func wordSelected(v session.View, recipient string) Notification {
	return Notification{Event: EventWordSelected, Data: WordSelected{
		GameID:             v.ID,
		Status:             v.Status,
		Grid:               v.Grid,
		PlayerScores:       v.PlayerScores,
		CurrentPlayerWords: v.WordsOf(recipient),
	}}
}
