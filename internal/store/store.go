// internal/store/store.go
//
// Persistence interfaces for the Verba backend.
// GameStore is what the game service needs; implementations may be
// backed by SQLite (this package) or memory (tests, ephemeral runs).
// The catalog and user surfaces are SQLite-only and live on the
// concrete type.

package store

import (
	"context"
	"time"

	"github.com/verba-game/go-server/internal/game"
)

// GameStore is the storage contract of the game engine's caller.
type GameStore interface {
	// Game loads a game by id, NotFound when absent.
	Game(ctx context.Context, id int64) (game.Game, error)

	// TeamWordsByGame returns every team result of the game with its
	// word results, ordered by team result "order" ascending, word
	// results by their "order" ascending.
	TeamWordsByGame(ctx context.Context, gameID int64) ([]game.TeamWords, error)

	// CreateGame inserts the game and its team results in one
	// transaction and returns the new game id.
	CreateGame(ctx context.Context, g game.Game, teamResults []game.TeamResult) (int64, error)

	// CompleteRound persists a round: the game row update plus the new
	// word results, atomically. The update is guarded by the turn and
	// state the caller read (prevTurn); a concurrent completion that
	// already moved the game causes the whole transaction to fail.
	CompleteRound(ctx context.Context, g game.Game, prevTurn int, wordResults []game.WordResult) error

	// TeamsByIDsOrdered resolves teams in the order of the given ids.
	TeamsByIDsOrdered(ctx context.Context, ids []int64) ([]game.Team, error)

	// ViewRows runs the two-chain view join for BuildView.
	ViewRows(ctx context.Context, gameID int64) ([]game.ViewRow, error)
}

// User is an administrative account.
type User struct {
	ID           int64
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// timeFormat is how timestamps are persisted.
const timeFormat = time.RFC3339Nano
