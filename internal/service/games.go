// internal/service/games.go
//
// Game use cases on top of the pure engine: resolve teams, inject the
// clock and token, run the engine and persist its output in one store
// transaction, then return the rebuilt view.

package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/verba-game/go-server/internal/game"
	"github.com/verba-game/go-server/internal/store"
)

// CreateGameRequest starts a game for the given teams, in rotation
// order.
type CreateGameRequest struct {
	Penalty   bool    `json:"penalty"`
	RoundTime int     `json:"round_time"`
	TeamIDs   []int64 `json:"team_ids"`
	WordCount int     `json:"word_count"`
}

// WordOutcome is one word's result inside a round submission.
type WordOutcome struct {
	Result bool  `json:"result"`
	WordID int64 `json:"word_id"`
}

// CompleteRoundRequest submits the acting team's batch for one round.
type CompleteRoundRequest struct {
	ID          int64         `json:"id"`
	Token       string        `json:"token"`
	WordResults []WordOutcome `json:"word_results"`
}

// Games wires the game engine to storage. Now and NewToken are
// swappable for tests.
type Games struct {
	Store    store.GameStore
	Now      func() time.Time
	NewToken func() string
}

// NewGames builds the service with the real clock and uuid tokens.
func NewGames(st store.GameStore) *Games {
	return &Games{
		Store:    st,
		Now:      time.Now,
		NewToken: uuid.NewString,
	}
}

// Create starts a game and returns its initial view.
func (s *Games) Create(ctx context.Context, req CreateGameRequest) (game.GameView, error) {
	teams, err := s.Store.TeamsByIDsOrdered(ctx, req.TeamIDs)
	if err != nil {
		return game.GameView{}, err
	}

	g, teamResults, err := game.New(req.WordCount, req.Penalty, req.RoundTime, teams, s.NewToken(), s.Now())
	if err != nil {
		return game.GameView{}, err
	}

	id, err := s.Store.CreateGame(ctx, g, teamResults)
	if err != nil {
		return game.GameView{}, err
	}
	return s.View(ctx, id)
}

// CompleteRound records a round. The submitted batch deduplicates by
// word id before it reaches the engine, first occurrence wins.
func (s *Games) CompleteRound(ctx context.Context, req CompleteRoundRequest) (game.GameView, error) {
	g, err := s.Store.Game(ctx, req.ID)
	if err != nil {
		return game.GameView{}, err
	}
	teamWords, err := s.Store.TeamWordsByGame(ctx, g.ID)
	if err != nil {
		return game.GameView{}, err
	}

	next, wordResults, err := game.CompleteRound(g, teamWords, dedupOutcomes(req.WordResults), req.Token, s.Now())
	if err != nil {
		return game.GameView{}, err
	}
	if err := s.Store.CompleteRound(ctx, next, g.Turn, wordResults); err != nil {
		return game.GameView{}, err
	}
	return s.View(ctx, g.ID)
}

// View rebuilds the nested game view from the store's join rows.
func (s *Games) View(ctx context.Context, id int64) (game.GameView, error) {
	rows, err := s.Store.ViewRows(ctx, id)
	if err != nil {
		return game.GameView{}, err
	}
	return game.BuildView(rows)
}

func dedupOutcomes(in []WordOutcome) []game.Outcome {
	seen := make(map[int64]bool, len(in))
	out := make([]game.Outcome, 0, len(in))
	for _, wo := range in {
		if seen[wo.WordID] {
			continue
		}
		seen[wo.WordID] = true
		out = append(out, game.Outcome{WordID: wo.WordID, Result: wo.Result})
	}
	return out
}
