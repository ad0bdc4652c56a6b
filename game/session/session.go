package session

import (
	"strings"
	"sync"
	"time"

	"github.com/samber/lo"
	"github.com/wricardo/mcp-training/wordgrid/game/engine"
)

// Status is a session's position in its lifecycle
type Status string

const (
	StatusWaiting  Status = "waiting"
	StatusRunning  Status = "running"
	StatusFinished Status = "finished"
)

// Player is a participant bound to a display name
type Player struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// PlayerScore is a participant's running total. Entries outlive the player.
type PlayerScore struct {
	PlayerID   string `json:"playerId"`
	PlayerName string `json:"playerName"`
	Score      int    `json:"score"`
}

// PlayerWord records one accepted word
type PlayerWord struct {
	PlayerID string `json:"playerId"`
	Word     string `json:"word"`
	Points   int    `json:"points"`
}

// Session is the live, mutable state of one game. All fields are guarded
// by mu; readers outside the package get a View.
type Session struct {
	ID            string
	Admin         string
	Players       []Player
	Status        Status
	Grid          engine.Grid
	GridSize      int
	Duration      time.Duration
	RemainingTime int
	CreatedAt     time.Time
	FinishedAt    time.Time
	PlayerScores  []PlayerScore
	Words         []PlayerWord

	mu        sync.Mutex
	countdown *Countdown
	removal   *time.Timer
}

// View is a point-in-time copy of a session, safe to share and marshal
type View struct {
	ID            string        `json:"id"`
	Admin         string        `json:"admin"`
	Players       []Player      `json:"players"`
	Status        Status        `json:"status"`
	Grid          *engine.Grid  `json:"grid,omitempty"`
	GridSize      int           `json:"gridSize"`
	RemainingTime int           `json:"remainingTime"`
	CreatedAt     time.Time     `json:"createdAt"`
	PlayerScores  []PlayerScore `json:"playerScores"`
	Words         []PlayerWord  `json:"words"`
	TimerActive   bool          `json:"timerActive"`
}

// HasPlayer reports whether id is a current participant
func (v View) HasPlayer(id string) bool {
	return lo.ContainsBy(v.Players, func(p Player) bool { return p.ID == id })
}

// Player returns the current participant with the given id
func (v View) Player(id string) (Player, bool) {
	return lo.Find(v.Players, func(p Player) bool { return p.ID == id })
}

// WordsOf returns the accepted words of one participant
func (v View) WordsOf(id string) []PlayerWord {
	return lo.Filter(v.Words, func(w PlayerWord, _ int) bool { return w.PlayerID == id })
}

// ScoreOf returns the participant's total, zero when unknown
func (v View) ScoreOf(id string) int {
	ps, _ := lo.Find(v.PlayerScores, func(ps PlayerScore) bool { return ps.PlayerID == id })
	return ps.Score
}

// view copies the session. Caller must hold s.mu.
func (s *Session) view() View {
	v := View{
		ID:            s.ID,
		Admin:         s.Admin,
		Players:       append([]Player{}, s.Players...),
		Status:        s.Status,
		GridSize:      s.GridSize,
		RemainingTime: s.RemainingTime,
		CreatedAt:     s.CreatedAt,
		PlayerScores:  append([]PlayerScore{}, s.PlayerScores...),
		Words:         append([]PlayerWord{}, s.Words...),
		TimerActive:   s.countdown != nil,
	}
	if !s.Grid.IsZero() {
		grid := s.Grid.Clone()
		v.Grid = &grid
	}
	return v
}

// Snapshot returns a View taken under the session lock
func (s *Session) Snapshot() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view()
}

func (s *Session) hasPlayer(id string) bool {
	return lo.ContainsBy(s.Players, func(p Player) bool { return p.ID == id })
}

func (s *Session) scoreIndex(id string) int {
	_, idx, ok := lo.FindIndexOf(s.PlayerScores, func(ps PlayerScore) bool { return ps.PlayerID == id })
	if !ok {
		return -1
	}
	return idx
}

func (s *Session) hasWord(playerID, word string) bool {
	return lo.ContainsBy(s.Words, func(w PlayerWord) bool {
		return w.PlayerID == playerID && strings.EqualFold(w.Word, word)
	})
}

// setCountdown replaces the active countdown, stopping the old one first.
// A nil c leaves the session un-timed.
func (s *Session) setCountdown(c *Countdown) {
	if s.countdown != nil {
		s.countdown.Stop()
	}
	s.countdown = c
	if c != nil {
		c.Start()
	}
}

// release stops every background task attached to the session
func (s *Session) release() {
	s.setCountdown(nil)
	if s.removal != nil {
		s.removal.Stop()
		s.removal = nil
	}
}
