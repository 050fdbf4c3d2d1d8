// internal/store/memory.go
//
// In-memory implementation of the GameStore interface.
// A lightweight stand-in for SQLite used in service tests and anywhere
// durability is not required.
//
// Characteristics:
//   - Keyed maps guarded by an RWMutex.
//   - Mimics the SQLite contract: ordered team results, guarded
//     round-completion update, synthesized view join rows.
//   - State is lost when the process exits.

package store

import (
	"context"
	"sync"

	"github.com/verba-game/go-server/internal/game"
	"github.com/verba-game/go-server/internal/verr"
)

// Memory is a map-backed GameStore.
type Memory struct {
	mu          sync.RWMutex
	nextID      int64
	games       map[int64]game.Game
	teamResults map[int64][]game.TeamResult // by game id, order ascending
	wordResults map[int64][]game.WordResult // by team result id, insertion order
	teams       map[int64]game.Team
	words       map[int64]string // word id -> body
}

// NewMemory constructs an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		games:       make(map[int64]game.Game),
		teamResults: make(map[int64][]game.TeamResult),
		wordResults: make(map[int64][]game.WordResult),
		teams:       make(map[int64]game.Team),
		words:       make(map[int64]string),
	}
}

func (m *Memory) id() int64 {
	m.nextID++
	return m.nextID
}

// AddTeam registers a team and returns it.
func (m *Memory) AddTeam(name string) game.Team {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := game.Team{ID: m.id(), Name: name}
	m.teams[t.ID] = t
	return t
}

// AddWord registers a catalog word body and returns its id.
func (m *Memory) AddWord(body string) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.id()
	m.words[id] = body
	return id
}

// Game looks up a game by id.
func (m *Memory) Game(ctx context.Context, id int64) (game.Game, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if g, ok := m.games[id]; ok {
		return g, nil
	}
	return game.Game{}, verr.New(verr.CodeNotFound, "Game not found")
}

// TeamWordsByGame pairs team results with their word results.
func (m *Memory) TeamWordsByGame(ctx context.Context, gameID int64) ([]game.TeamWords, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	trs := m.teamResults[gameID]
	out := make([]game.TeamWords, len(trs))
	for i, tr := range trs {
		out[i] = game.TeamWords{
			TeamResult:  tr,
			WordResults: append([]game.WordResult(nil), m.wordResults[tr.ID]...),
		}
	}
	return out, nil
}

// CreateGame stores the game and its team results, assigning ids.
func (m *Memory) CreateGame(ctx context.Context, g game.Game, teamResults []game.TeamResult) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	g.ID = m.id()
	m.games[g.ID] = g
	stored := make([]game.TeamResult, len(teamResults))
	for i, tr := range teamResults {
		tr.ID = m.id()
		tr.GameID = g.ID
		stored[i] = tr
	}
	m.teamResults[g.ID] = stored
	return g.ID, nil
}

// CompleteRound applies the guarded game update and appends the new
// word results, all-or-nothing under the lock.
func (m *Memory) CompleteRound(ctx context.Context, g game.Game, prevTurn int, wordResults []game.WordResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.games[g.ID]
	if !ok {
		return verr.New(verr.CodeNotFound, "Game not found")
	}
	if current.State != game.StateActive || current.Turn != prevTurn {
		return verr.New(verr.CodeInfrastructure, "Game was modified concurrently")
	}
	m.games[g.ID] = g
	for _, wr := range wordResults {
		wr.ID = m.id()
		m.wordResults[wr.TeamResultID] = append(m.wordResults[wr.TeamResultID], wr)
	}
	return nil
}

// TeamsByIDsOrdered resolves teams following the input id order.
func (m *Memory) TeamsByIDsOrdered(ctx context.Context, ids []int64) ([]game.Team, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]game.Team, 0, len(ids))
	for _, id := range ids {
		if t, ok := m.teams[id]; ok {
			out = append(out, t)
		}
	}
	return out, nil
}

// ViewRows synthesizes the two-chain join: one row per (team result,
// word result) pair, at least one row per team result, each carrying
// the winner chain when the game has a winner.
func (m *Memory) ViewRows(ctx context.Context, gameID int64) ([]game.ViewRow, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	g, ok := m.games[gameID]
	if !ok {
		return nil, nil
	}

	var (
		winnerTR   *game.TeamResult
		winnerTeam *game.Team
	)
	if g.WinnerID != nil {
		for _, tr := range m.teamResults[gameID] {
			if tr.ID == *g.WinnerID {
				trCopy := tr
				teamCopy := m.teams[tr.TeamID]
				winnerTR, winnerTeam = &trCopy, &teamCopy
			}
		}
	}

	cell := func(wr game.WordResult) *game.WordCell {
		return &game.WordCell{
			ID:       wr.ID,
			Result:   wr.Result,
			Order:    wr.Order,
			WordID:   wr.WordID,
			WordBody: m.words[wr.WordID],
		}
	}

	var winnerCells []*game.WordCell
	if winnerTR != nil {
		for _, wr := range m.wordResults[winnerTR.ID] {
			winnerCells = append(winnerCells, cell(wr))
		}
	}

	var out []game.ViewRow
	for _, tr := range m.teamResults[gameID] {
		base := game.ViewRow{
			Game:         g,
			TeamResultID: tr.ID,
			Team:         m.teams[tr.TeamID],
		}
		if winnerTR != nil {
			base.WinnerTeamResultID = &winnerTR.ID
			base.WinnerTeam = winnerTeam
		}

		wrs := m.wordResults[tr.ID]
		if len(wrs) == 0 {
			row := base
			if len(winnerCells) > 0 {
				row.WinnerWord = winnerCells[0]
			}
			out = append(out, row)
			continue
		}
		for i, wr := range wrs {
			row := base
			row.Word = cell(wr)
			if len(winnerCells) > 0 {
				row.WinnerWord = winnerCells[i%len(winnerCells)]
			}
			out = append(out, row)
		}
	}
	return out, nil
}
