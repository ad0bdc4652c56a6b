package session

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/wricardo/mcp-training/wordgrid/game/engine"
)

var (
	ErrSessionNotFound  = errors.New("session not found")
	ErrNotJoinable      = errors.New("session not found or already started")
	ErrNotAdmin         = errors.New("only the admin can start the game")
	ErrNotWaiting       = errors.New("game already started")
	ErrNotEnoughPlayers = errors.New("not enough players")
	ErrNotRunning       = errors.New("game is not running")
	ErrNotParticipant   = errors.New("not a participant")
	ErrGridNotReady     = errors.New("grid not generated yet")
	ErrStaleTick        = errors.New("stale countdown tick")
	ErrManagerClosed    = errors.New("session manager closed")
)

const (
	DefaultDuration    = 60 * time.Second
	DefaultMinPlayers  = 2
	DefaultFinishedTTL = 20 * time.Minute
	DefaultMaxAge      = 60 * time.Minute

	idBytes = 3
)

// PlayerCountError reports a start attempt with too few participants
type PlayerCountError struct {
	Have int
	Need int
}

func (e *PlayerCountError) Error() string {
	return fmt.Sprintf("%v: %d of %d", ErrNotEnoughPlayers, e.Have, e.Need)
}

func (e *PlayerCountError) Unwrap() error {
	return ErrNotEnoughPlayers
}

// WordCheck validates a word against a grid and returns its points
type WordCheck func(word string, grid engine.Grid) (int, error)

// TickFunc receives every tick of a session countdown
type TickFunc func(sessionID string, c *Countdown)

// Manager owns every live session. The map is guarded by mu and each
// session by its own lock; the lock order is always map then session.
type Manager struct {
	sessions map[string]*Session
	mu       sync.RWMutex
	closed   bool

	tickInterval time.Duration
	minPlayers   int
	finishedTTL  time.Duration
	maxAge       time.Duration
	now          func() time.Time
	logger       zerolog.Logger
}

// Option configures a Manager
type Option func(*Manager)

// WithTickInterval sets the countdown period (one second by default)
func WithTickInterval(d time.Duration) Option {
	return func(m *Manager) { m.tickInterval = d }
}

// WithMinPlayers sets the number of participants needed to start
func WithMinPlayers(n int) Option {
	return func(m *Manager) { m.minPlayers = n }
}

// WithRetention sets how long finished sessions are kept and the maximum
// age of any session
func WithRetention(finishedTTL, maxAge time.Duration) Option {
	return func(m *Manager) {
		m.finishedTTL = finishedTTL
		m.maxAge = maxAge
	}
}

// WithClock overrides time.Now
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithLogger sets the logger
func WithLogger(logger zerolog.Logger) Option {
	return func(m *Manager) { m.logger = logger }
}

// NewManager creates a new session manager
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		sessions:     make(map[string]*Session),
		tickInterval: DefaultTickInterval,
		minPlayers:   DefaultMinPlayers,
		finishedTTL:  DefaultFinishedTTL,
		maxAge:       DefaultMaxAge,
		now:          time.Now,
		logger:       zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Create starts a waiting session with the admin as sole participant
func (m *Manager) Create(adminID, adminName string, duration time.Duration, gridSize int) (View, error) {
	if gridSize < engine.MinGridSize {
		return View{}, fmt.Errorf("%w: grid size %d", engine.ErrInvalidConfiguration, gridSize)
	}
	if duration <= 0 {
		duration = DefaultDuration
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return View{}, ErrManagerClosed
	}

	id := m.generateSessionID()
	s := &Session{
		ID:            id,
		Admin:         adminID,
		Players:       []Player{{ID: adminID, Name: adminName}},
		Status:        StatusWaiting,
		GridSize:      gridSize,
		Duration:      duration,
		RemainingTime: int(duration / time.Second),
		CreatedAt:     m.now(),
		PlayerScores:  []PlayerScore{{PlayerID: adminID, PlayerName: adminName}},
		Words:         []PlayerWord{},
	}
	m.sessions[id] = s

	m.logger.Info().Str("session", id).Str("admin", adminID).Int("grid_size", gridSize).Msg("session created")

	return s.view(), nil
}

// Get retrieves a session snapshot by ID (case-insensitive)
func (m *Manager) Get(id string) (View, error) {
	s, ok := m.lookup(id)
	if !ok {
		return View{}, ErrSessionNotFound
	}
	return s.Snapshot(), nil
}

// Settings returns the grid size and duration a session was created with
func (m *Manager) Settings(id string) (gridSize int, duration time.Duration, err error) {
	s, ok := m.lookup(id)
	if !ok {
		return 0, 0, ErrSessionNotFound
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.GridSize, s.Duration, nil
}

// Join adds a participant to a waiting session. Joining twice returns the
// session unchanged.
func (m *Manager) Join(id, playerID, playerName string) (View, error) {
	s, ok := m.lookup(id)
	if !ok {
		return View{}, ErrNotJoinable
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Status != StatusWaiting {
		return View{}, ErrNotJoinable
	}
	if s.hasPlayer(playerID) {
		return s.view(), nil
	}

	s.Players = append(s.Players, Player{ID: playerID, Name: playerName})
	if idx := s.scoreIndex(playerID); idx >= 0 {
		s.PlayerScores[idx].PlayerName = playerName
	} else {
		s.PlayerScores = append(s.PlayerScores, PlayerScore{PlayerID: playerID, PlayerName: playerName})
	}

	return s.view(), nil
}

// Start moves a waiting session to running on behalf of requester: it
// generates the grid and installs a countdown feeding onTick.
func (m *Manager) Start(id, requester string, onTick TickFunc) (View, error) {
	s, ok := m.lookup(id)
	if !ok {
		return View{}, ErrSessionNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Admin != requester {
		return View{}, ErrNotAdmin
	}
	if s.Status != StatusWaiting {
		return View{}, ErrNotWaiting
	}
	if len(s.Players) < m.minPlayers {
		return View{}, &PlayerCountError{Have: len(s.Players), Need: m.minPlayers}
	}

	grid, err := engine.CreateGrid(s.GridSize)
	if err != nil {
		return View{}, err
	}

	s.Grid = grid
	s.Status = StatusRunning

	var c *Countdown
	c = NewCountdown(m.tickInterval, func() {
		if onTick != nil {
			onTick(s.ID, c)
		}
	})
	s.setCountdown(c)

	m.logger.Info().Str("session", s.ID).Int("players", len(s.Players)).Msg("session started")

	return s.view(), nil
}

// Tick applies one countdown tick. ended is true when this tick finished
// the session. Ticks from a countdown that is no longer the session's
// active one stop that countdown and return ErrStaleTick.
func (m *Manager) Tick(id string, c *Countdown) (View, bool, error) {
	s, ok := m.lookup(id)
	if !ok {
		c.Stop()
		return View{}, false, ErrSessionNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.countdown != c || s.Status != StatusRunning {
		c.Stop()
		return s.view(), false, ErrStaleTick
	}

	s.RemainingTime--
	if s.RemainingTime < 0 {
		s.RemainingTime = 0
	}

	if s.RemainingTime <= 0 {
		m.finish(s)
		return s.view(), true, nil
	}

	return s.view(), false, nil
}

// End finishes a session whatever its status. ended is false when the
// session was already finished.
func (m *Manager) End(id string) (View, bool, error) {
	s, ok := m.lookup(id)
	if !ok {
		return View{}, false, ErrSessionNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ended := m.finish(s)
	return s.view(), ended, nil
}

// finish marks s finished, cancels its countdown and schedules its
// removal. It reports whether the status changed. Caller must hold s.mu.
func (m *Manager) finish(s *Session) bool {
	s.setCountdown(nil)
	if s.Status == StatusFinished {
		return false
	}

	s.Status = StatusFinished
	s.FinishedAt = m.now()

	id := s.ID
	s.removal = time.AfterFunc(m.finishedTTL, func() {
		if m.remove(id) {
			m.logger.Info().Str("session", id).Msg("finished session removed")
		}
	})

	m.logger.Info().Str("session", id).Msg("session finished")
	return true
}

// SubmitWord records word for playerID when the session accepts it.
// Precondition failures return the session errors; word rejections are
// *engine.WordError.
func (m *Manager) SubmitWord(id, playerID, word string, check WordCheck) (View, PlayerWord, error) {
	s, ok := m.lookup(id)
	if !ok {
		return View{}, PlayerWord{}, ErrSessionNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Status != StatusRunning {
		return View{}, PlayerWord{}, ErrNotRunning
	}
	if !s.hasPlayer(playerID) {
		return View{}, PlayerWord{}, ErrNotParticipant
	}
	if s.Grid.IsZero() {
		return View{}, PlayerWord{}, ErrGridNotReady
	}

	points, err := check(word, s.Grid)
	if err != nil {
		return View{}, PlayerWord{}, err
	}
	if s.hasWord(playerID, word) {
		return View{}, PlayerWord{}, engine.RejectWord(engine.CodeAlreadySubmitted, word)
	}

	accepted := PlayerWord{PlayerID: playerID, Word: strings.ToLower(word), Points: points}
	s.Words = append(s.Words, accepted)
	if idx := s.scoreIndex(playerID); idx >= 0 {
		s.PlayerScores[idx].Score += points
	}

	return s.view(), accepted, nil
}

// RemoveParticipant drops playerID from the session. When the admin
// leaves, the first remaining participant is promoted and the countdown,
// if any, is cancelled; the session keeps its status.
func (m *Manager) RemoveParticipant(id, playerID string) (View, bool, error) {
	s, ok := m.lookup(id)
	if !ok {
		return View{}, false, ErrSessionNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.hasPlayer(playerID) {
		return View{}, false, ErrNotParticipant
	}

	wasAdmin := s.Admin == playerID
	if wasAdmin && s.countdown != nil {
		s.setCountdown(nil)
		m.logger.Warn().Str("session", s.ID).Msg("admin left, countdown cancelled")
	}

	kept := s.Players[:0]
	for _, p := range s.Players {
		if p.ID != playerID {
			kept = append(kept, p)
		}
	}
	s.Players = kept

	adminChanged := false
	if wasAdmin && len(s.Players) > 0 {
		s.Admin = s.Players[0].ID
		adminChanged = true
	}

	return s.view(), adminChanged, nil
}

// SessionsOf returns the IDs of the sessions playerID currently belongs to
func (m *Manager) SessionsOf(playerID string) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var ids []string
	for id, s := range m.sessions {
		s.mu.Lock()
		if s.hasPlayer(playerID) {
			ids = append(ids, id)
		}
		s.mu.Unlock()
	}
	sort.Strings(ids)
	return ids
}

// List returns snapshots of all sessions, oldest first
func (m *Manager) List() []View {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]View, 0, len(m.sessions))
	for _, s := range m.sessions {
		result = append(result, s.Snapshot())
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})

	return result
}

// Count returns the number of sessions
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Reclaim removes sessions finished for longer than the finished TTL and
// sessions older than the maximum age
func (m *Manager) Reclaim() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	removed := 0

	for id, s := range m.sessions {
		s.mu.Lock()
		expired := now.Sub(s.CreatedAt) > m.maxAge ||
			(s.Status == StatusFinished && !s.FinishedAt.IsZero() && now.Sub(s.FinishedAt) > m.finishedTTL)
		if expired {
			s.release()
			delete(m.sessions, id)
			removed++
		}
		s.mu.Unlock()
	}

	return removed
}

// Close stops every countdown and pending removal. Later Create calls fail.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	for _, s := range m.sessions {
		s.mu.Lock()
		s.release()
		s.mu.Unlock()
	}
}

func (m *Manager) lookup(id string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[strings.ToLower(id)]
	return s, ok
}

func (m *Manager) remove(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return false
	}
	s.mu.Lock()
	s.release()
	s.mu.Unlock()
	delete(m.sessions, id)
	return true
}

// generateSessionID returns an unused 6-character hex ID. Caller must hold
// m.mu for writing.
func (m *Manager) generateSessionID() string {
	bytes := make([]byte, idBytes)
	for {
		rand.Read(bytes)
		id := hex.EncodeToString(bytes)
		if _, exists := m.sessions[id]; !exists {
			return id
		}
	}
}
