package service

import (
	"errors"
	"fmt"

	"github.com/wricardo/mcp-training/wordgrid/game/config"
	"github.com/wricardo/mcp-training/wordgrid/game/engine"
	"github.com/wricardo/mcp-training/wordgrid/game/session"
)

var (
	ErrMissingIdentity = errors.New("missing identity")
	ErrInvalidName     = errors.New("invalid name")
	ErrNotFinished     = errors.New("game is not finished")
	ErrUnknownAction   = errors.New("unknown action")
	ErrBadRequest      = errors.New("malformed request")
)

// Codes carried by the error notification
const (
	CodeMissingIdentity  = "MISSING_IDENTITY"
	CodeInvalidName      = "INVALID_NAME"
	CodeNotFound         = "NOT_FOUND"
	CodeNotJoinable      = "NOT_JOINABLE"
	CodeNotAdmin         = "NOT_ADMIN"
	CodeNotEnoughPlayers = "NOT_ENOUGH_PLAYERS"
	CodeAlreadyStarted   = "ALREADY_STARTED"
	CodeNotRunning       = "NOT_RUNNING"
	CodeNotParticipant   = "NOT_PARTICIPANT"
	CodeGridNotReady     = "GRID_NOT_READY"
	CodeNotFinished      = "NOT_FINISHED"
	CodeConfigNotFound   = "CONFIG_NOT_FOUND"
	CodeInvalidConfig    = "INVALID_CONFIGURATION"
	CodeUnknownAction    = "UNKNOWN_ACTION"
	CodeBadRequest       = "BAD_REQUEST"
	CodeInternal         = "INTERNAL"
)

var errorTable = []struct {
	err     error
	message string
	code    string
}{
	{ErrMissingIdentity, "missing identity", CodeMissingIdentity},
	{ErrInvalidName, "invalid name", CodeInvalidName},
	{session.ErrNotJoinable, "game not found or already started", CodeNotJoinable},
	{session.ErrSessionNotFound, "game not found", CodeNotFound},
	{session.ErrNotAdmin, "only the admin can start the game", CodeNotAdmin},
	{session.ErrNotEnoughPlayers, "not enough players to start", CodeNotEnoughPlayers},
	{session.ErrNotWaiting, "game already started", CodeAlreadyStarted},
	{session.ErrNotRunning, "game is not running", CodeNotRunning},
	{session.ErrNotParticipant, "you are not a player of this game", CodeNotParticipant},
	{session.ErrGridNotReady, "grid not generated yet", CodeGridNotReady},
	{ErrNotFinished, "game is not finished", CodeNotFinished},
	{config.ErrConfigNotFound, "config not found", CodeConfigNotFound},
	{engine.ErrInvalidConfiguration, "invalid game configuration", CodeInvalidConfig},
	{ErrUnknownAction, "unknown action", CodeUnknownAction},
	{ErrBadRequest, "malformed request", CodeBadRequest},
}

// errorPayload maps a rejection to the message and code sent to the client
func errorPayload(err error) ErrorPayload {
	var countErr *session.PlayerCountError
	if errors.As(err, &countErr) {
		return ErrorPayload{
			Message: fmt.Sprintf("the game needs at least %d players to start", countErr.Need),
			Code:    CodeNotEnoughPlayers,
		}
	}
	for _, e := range errorTable {
		if errors.Is(err, e.err) {
			return ErrorPayload{Message: e.message, Code: e.code}
		}
	}
	return ErrorPayload{Message: err.Error(), Code: CodeInternal}
}
