package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/wricardo/mcp-training/wordgrid/game/config"
	"github.com/wricardo/mcp-training/wordgrid/game/dictionary"
	"github.com/wricardo/mcp-training/wordgrid/game/engine"
	"github.com/wricardo/mcp-training/wordgrid/game/session"
)

// Delivery carries notifications to participants, one at a time or to
// every participant subscribed to a session
type Delivery interface {
	SendTo(participantID string, n Notification)
	Broadcast(sessionID string, n Notification)
	Subscribe(sessionID, participantID string)
	Unsubscribe(sessionID, participantID string)
}

// PresetSource resolves the preset a game is created from
type PresetSource interface {
	LoadPreset(name string) (config.Preset, error)
	Default() config.Preset
}

// Router turns participant actions and countdown ticks into session
// mutations and notifications. Rejections are sent to the acting
// participant only.
type Router struct {
	sessions  *session.Manager
	validator *engine.Validator
	delivery  Delivery
	presets   PresetSource
	logger    zerolog.Logger

	mu         sync.RWMutex
	identities map[string]string
}

// RouterOption configures a Router
type RouterOption func(*Router)

// WithRouterLogger sets the logger
func WithRouterLogger(logger zerolog.Logger) RouterOption {
	return func(r *Router) { r.logger = logger }
}

// WithScoring replaces the baseline scoring policy
func WithScoring(policy engine.ScoringPolicy) RouterOption {
	return func(r *Router) { r.validator.Scoring = policy }
}

// NewRouter creates a router over the given collaborators
func NewRouter(sessions *session.Manager, dict dictionary.Dictionary, delivery Delivery, presets PresetSource, opts ...RouterOption) *Router {
	r := &Router{
		sessions:   sessions,
		validator:  engine.NewValidator(dict),
		delivery:   delivery,
		presets:    presets,
		logger:     zerolog.Nop(),
		identities: make(map[string]string),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Identity returns the display name bound to a participant
func (r *Router) Identity(participantID string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	name, ok := r.identities[participantID]
	return name, ok
}

// Dispatch decodes a named action and runs its handler
func (r *Router) Dispatch(participantID string, action Action) error {
	switch action.Event {
	case ActionCreateUser:
		var req CreateUserRequest
		if err := r.decode(participantID, action, &req); err != nil {
			return err
		}
		return r.CreateUser(participantID, req)
	case ActionCreateGame:
		var req CreateGameRequest
		if err := r.decode(participantID, action, &req); err != nil {
			return err
		}
		return r.CreateGame(participantID, req)
	case ActionJoinGame:
		var req GameRequest
		if err := r.decode(participantID, action, &req); err != nil {
			return err
		}
		return r.JoinGame(participantID, req)
	case ActionStartGame:
		var req GameRequest
		if err := r.decode(participantID, action, &req); err != nil {
			return err
		}
		return r.StartGame(participantID, req)
	case ActionWordSelect:
		var req WordSelectRequest
		if err := r.decode(participantID, action, &req); err != nil {
			return err
		}
		return r.WordSelect(participantID, req)
	case ActionRevenge:
		var req GameRequest
		if err := r.decode(participantID, action, &req); err != nil {
			return err
		}
		return r.Revenge(participantID, req)
	case ActionGameEnded:
		var req GameRequest
		if err := r.decode(participantID, action, &req); err != nil {
			return err
		}
		return r.EndGame(participantID, req)
	default:
		return r.reject(participantID, fmt.Errorf("%w: %q", ErrUnknownAction, action.Event))
	}
}

func (r *Router) decode(participantID string, action Action, v any) error {
	if len(action.Data) == 0 || string(action.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(action.Data, v); err != nil {
		return r.reject(participantID, fmt.Errorf("%w: %s: %v", ErrBadRequest, action.Event, err))
	}
	return nil
}

// CreateUser binds a display name to the participant
func (r *Router) CreateUser(participantID string, req CreateUserRequest) error {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return r.reject(participantID, ErrInvalidName)
	}

	r.mu.Lock()
	r.identities[participantID] = name
	r.mu.Unlock()

	r.delivery.SendTo(participantID, Notification{Event: EventUserCreated, Data: UserCreated{ID: participantID, Name: name}})
	return nil
}

// CreateGame creates a waiting game with the caller as admin
func (r *Router) CreateGame(participantID string, req CreateGameRequest) error {
	name, ok := r.Identity(participantID)
	if !ok {
		return r.reject(participantID, ErrMissingIdentity)
	}

	preset := r.presets.Default()
	if req.ConfigID != "" {
		p, err := r.presets.LoadPreset(req.ConfigID)
		if err != nil {
			return r.reject(participantID, err)
		}
		preset = p
	}

	view, err := r.sessions.Create(participantID, name, preset.Duration(), preset.GridSize)
	if err != nil {
		return r.reject(participantID, err)
	}

	r.delivery.Subscribe(view.ID, participantID)
	r.delivery.SendTo(participantID, Notification{Event: EventGameCreated, Data: GameCreated{Game: view}})
	r.delivery.Broadcast(view.ID, statusChanged(view))
	return nil
}

// JoinGame adds the caller to a waiting game
func (r *Router) JoinGame(participantID string, req GameRequest) error {
	name, ok := r.Identity(participantID)
	if !ok {
		return r.reject(participantID, ErrMissingIdentity)
	}

	view, err := r.sessions.Join(req.GameID, participantID, name)
	if err != nil {
		return r.reject(participantID, err)
	}

	r.delivery.Subscribe(view.ID, participantID)
	r.delivery.Broadcast(view.ID, Notification{Event: EventPlayerJoined, Data: PlayerJoined{
		Player: session.Player{ID: participantID, Name: name},
		Game:   view,
	}})
	return nil
}

// StartGame moves a waiting game to running and starts its countdown
func (r *Router) StartGame(participantID string, req GameRequest) error {
	if _, ok := r.Identity(participantID); !ok {
		return r.reject(participantID, ErrMissingIdentity)
	}

	view, err := r.sessions.Start(req.GameID, participantID, r.tick)
	if err != nil {
		return r.reject(participantID, err)
	}

	r.delivery.Broadcast(view.ID, statusChanged(view))
	return nil
}

// tick runs on the countdown goroutine of a running game
func (r *Router) tick(sessionID string, c *session.Countdown) {
	view, ended, err := r.sessions.Tick(sessionID, c)
	if err != nil {
		r.logger.Debug().Err(err).Str("session", sessionID).Msg("tick ignored")
		return
	}

	r.delivery.Broadcast(view.ID, Notification{Event: EventTimer, Data: TimerUpdate{
		GameID:        view.ID,
		RemainingTime: view.RemainingTime,
	}})

	if ended {
		r.announceEnd(view)
	}
}

func (r *Router) announceEnd(view session.View) {
	r.delivery.Broadcast(view.ID, Notification{Event: EventGameEnded, Data: GameEnded{GameID: view.ID}})
	r.delivery.Broadcast(view.ID, statusChanged(view))
}

// WordSelect validates and records a word. Word rejections go out as
// wordValidatingError, other rejections on the error channel.
func (r *Router) WordSelect(participantID string, req WordSelectRequest) error {
	if _, ok := r.Identity(participantID); !ok {
		return r.reject(participantID, ErrMissingIdentity)
	}

	view, accepted, err := r.sessions.SubmitWord(req.GameID, participantID, req.Word, r.validator.Check)
	if err != nil {
		var wordErr *engine.WordError
		if errors.As(err, &wordErr) {
			r.delivery.SendTo(participantID, Notification{Event: EventWordValidatingError, Data: WordValidatingError{
				GameID: strings.ToLower(req.GameID),
				Code:   wordErr.Code,
				Word:   req.Word,
			}})
			return err
		}
		return r.reject(participantID, err)
	}

	r.logger.Debug().
		Str("session", view.ID).
		Str("player", participantID).
		Str("word", accepted.Word).
		Int("points", accepted.Points).
		Msg("word accepted")

	for _, p := range view.Players {
		r.delivery.SendTo(p.ID, wordSelected(view, p.ID))
	}
	return nil
}

// EndGame re-broadcasts the final status of a finished game
func (r *Router) EndGame(participantID string, req GameRequest) error {
	view, err := r.sessions.Get(req.GameID)
	if err != nil {
		return r.reject(participantID, err)
	}
	if view.Status != session.StatusFinished {
		return r.reject(participantID, ErrNotFinished)
	}

	r.delivery.Broadcast(view.ID, statusChanged(view))
	return nil
}

// ForceEnd finishes a game on behalf of an operator
func (r *Router) ForceEnd(gameID string) (session.View, error) {
	view, ended, err := r.sessions.End(gameID)
	if err != nil {
		return session.View{}, err
	}

	if ended {
		r.logger.Info().Str("session", view.ID).Msg("game ended by operator")
		r.announceEnd(view)
	}
	return view, nil
}

// Revenge starts a new game with the caller as admin and every other
// participant of the old game who is still connected
func (r *Router) Revenge(participantID string, req GameRequest) error {
	r.mu.RLock()
	view, old, err := r.rematch(participantID, req.GameID)
	r.mu.RUnlock()
	if err != nil {
		return r.reject(participantID, err)
	}

	r.logger.Info().Str("session", view.ID).Str("from", old.ID).Int("players", len(view.Players)).Msg("revenge created")

	r.delivery.Broadcast(view.ID, Notification{Event: EventGameCreated, Data: GameCreated{Game: view}})
	r.delivery.Broadcast(view.ID, statusChanged(view))
	return nil
}

// rematch creates the new game and joins the connected participants. It
// runs with r.mu read-locked so no identity is dropped between its check
// and the join; identities are read from the map directly.
func (r *Router) rematch(participantID, gameID string) (view, old session.View, err error) {
	name, ok := r.identities[participantID]
	if !ok {
		return view, old, ErrMissingIdentity
	}

	old, err = r.sessions.Get(gameID)
	if err != nil {
		return view, old, err
	}
	gridSize, duration, err := r.sessions.Settings(old.ID)
	if err != nil {
		return view, old, err
	}

	view, err = r.sessions.Create(participantID, name, duration, gridSize)
	if err != nil {
		return view, old, err
	}
	r.delivery.Subscribe(view.ID, participantID)

	for _, p := range old.Players {
		if p.ID == participantID {
			continue
		}
		current, connected := r.identities[p.ID]
		if !connected {
			continue
		}
		joined, err := r.sessions.Join(view.ID, p.ID, current)
		if err != nil {
			r.logger.Warn().Err(err).Str("session", view.ID).Str("player", p.ID).Msg("revenge join failed")
			continue
		}
		view = joined
		r.delivery.Subscribe(view.ID, p.ID)
	}
	return view, old, nil
}

// Disconnect forgets the participant's display name, then removes it from
// every game. Dropping the name first keeps a concurrent revenge from
// joining it to a game this walk has already missed.
func (r *Router) Disconnect(participantID string) {
	r.mu.Lock()
	delete(r.identities, participantID)
	r.mu.Unlock()

	for _, id := range r.sessions.SessionsOf(participantID) {
		view, adminChanged, err := r.sessions.RemoveParticipant(id, participantID)
		if err != nil {
			continue
		}

		r.delivery.Unsubscribe(view.ID, participantID)
		r.delivery.Broadcast(view.ID, Notification{Event: EventPlayerLeft, Data: PlayerLeft{
			PlayerID: participantID,
			Game:     view,
		}})
		if adminChanged {
			r.delivery.Broadcast(view.ID, Notification{Event: EventAdminChanged, Data: AdminChanged{
				GameID:   view.ID,
				NewAdmin: view.Admin,
			}})
		}
	}
}

// Sweep reclaims expired sessions
func (r *Router) Sweep() int {
	removed := r.sessions.Reclaim()
	if removed > 0 {
		r.logger.Info().Int("removed", removed).Int("remaining", r.sessions.Count()).Msg("sessions reclaimed")
	}
	return removed
}

// reject reports err to the participant and returns it
func (r *Router) reject(participantID string, err error) error {
	payload := errorPayload(err)
	if payload.Code == CodeInternal {
		r.logger.Error().Err(err).Str("player", participantID).Msg("action failed")
	} else {
		r.logger.Debug().Err(err).Str("player", participantID).Msg("action rejected")
	}
	r.delivery.SendTo(participantID, Notification{Event: EventError, Data: payload})
	return err
}
