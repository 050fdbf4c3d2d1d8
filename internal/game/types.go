// internal/game/types.go
//
// Core type definitions for the game engine.
// Defines:
//   - State: lifecycle of a game session (active/ended).
//   - Game: one multi-team session and its scoring settings.
//   - TeamResult: a team's fixed slot in the turn rotation.
//   - WordResult: one guessed word outcome, append-only.

package game

import (
	"fmt"
	"time"
)

// State is the game lifecycle. The only legal transition is
// StateActive -> StateEnded; an ended game never reopens.
type State int

const (
	StateActive State = iota
	StateEnded
)

// String returns the persisted representation. Domain code compares
// State values; the string form exists only for storage and JSON.
func (s State) String() string {
	if s == StateEnded {
		return "ended"
	}
	return "active"
}

// ParseState maps a persisted string back to a State.
func ParseState(s string) (State, error) {
	switch s {
	case "active":
		return StateActive, nil
	case "ended":
		return StateEnded, nil
	}
	return StateActive, fmt.Errorf("unknown game state %q", s)
}

// Game holds one session. Token is the opaque credential issued at
// creation; every mutation must present it. WinnerID references a
// TeamResult and is set exactly when State is StateEnded.
type Game struct {
	ID        int64
	State     State
	WordCount int  // target total of word outcomes for the whole game
	Penalty   bool // wrong guesses subtract a point when set
	RoundTime int  // seconds per round, informational for clients
	WinnerID  *int64
	Turn      int // acting team = Turn mod len(team results)
	Token     string
	CreatedAt time.Time
	ExpiredAt time.Time
}

// Team is a participating team as stored in the catalog.
type Team struct {
	ID   int64
	Name string
}

// TeamResult ties a team to a game. Order is the team's position in
// the rotation, assigned from the creation request and never changed.
type TeamResult struct {
	ID     int64
	TeamID int64
	GameID int64
	Order  int
}

// WordResult is a single guess outcome. Order is the position within
// the batch that produced it. Rows are never updated or deleted.
type WordResult struct {
	ID           int64
	Result       bool
	Order        int
	WordID       int64
	TeamResultID int64
}

// TeamWords pairs a team result with its recorded outcomes, the shape
// the engine consumes for a round. Slice order must follow TeamResult
// Order ascending; the winner tie-break depends on it.
type TeamWords struct {
	TeamResult  TeamResult
	WordResults []WordResult
}

// Outcome is one submitted (word, correctness) pair for the acting team.
type Outcome struct {
	WordID int64
	Result bool
}
