// internal/game/view.go
//
// Result aggregation: flat storage join rows -> nested, scored GameView.
// The storage layer runs one join across games, team_results, teams,
// word_results and words, carrying a parallel winner-side chain sourced
// via games.winner_id. BuildView folds those rows back into the nested
// response shape without touching storage, so it is testable on plain
// slices.

package game

import (
	"sort"
	"time"

	"github.com/verba-game/go-server/internal/verr"
)

// WordCell is the word-result slice of a join row. Nil cells appear for
// teams with no recorded outcomes (left-join null side).
type WordCell struct {
	ID       int64
	Result   bool
	Order    int
	WordID   int64
	WordBody string
}

// ViewRow is one row of the two-chain game view join. Game scalars are
// repeated on every row. The winner-side fields are nil until the game
// has ended.
type ViewRow struct {
	Game Game

	TeamResultID int64
	Team         Team
	Word         *WordCell

	WinnerTeamResultID *int64
	WinnerTeam         *Team
	WinnerWord         *WordCell
}

// TeamView is the public team shape.
type TeamView struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// WordView is the word as rendered inside a game view.
type WordView struct {
	ID   int64  `json:"id"`
	Body string `json:"body"`
}

// WordResultView is one scored guess in a team's log.
type WordResultView struct {
	Result bool     `json:"result"`
	Order  int      `json:"order"`
	Word   WordView `json:"word"`
}

// TeamResultView is a team's scored slice of the game.
type TeamResultView struct {
	ID          int64            `json:"id"`
	Score       int              `json:"score"`
	Team        TeamView         `json:"team"`
	WordResults []WordResultView `json:"word_results"`
}

// GameView is the full nested response for a game.
type GameView struct {
	ID          int64            `json:"id"`
	Penalty     bool             `json:"penalty"`
	State       string           `json:"state"`
	Token       string           `json:"token"`
	Turn        int              `json:"turn"`
	WordCount   int              `json:"word_count"`
	RoundTime   int              `json:"round_time"`
	TeamResults []TeamResultView `json:"team_results"`
	Winner      *TeamResultView  `json:"winner"`
	CreatedAt   time.Time        `json:"created_at"`
	ExpiredAt   time.Time        `json:"expired_at"`
}

// accum gathers one team result's rows before scoring.
type accum struct {
	view    TeamResultView
	words   map[int64]WordResultView // dedup by word_result id
	wordIDs []int64                  // insertion order of words map
}

// BuildView folds join rows into a GameView.
//
// Empty input means the game does not exist. Team results accumulate in
// row order keyed by id; word results deduplicate by id under their
// owning team result. The winner chain folds independently of the team
// list, triggered by the first row with a non-null winner id. A final
// pass computes scores, orders each team's words by Order ascending and
// ranks teams by score descending (stable, so equal scores keep row
// order).
func BuildView(rows []ViewRow) (GameView, error) {
	if len(rows) == 0 {
		return GameView{}, verr.New(verr.CodeNotFound, "Game not found")
	}

	var (
		teams     = make(map[int64]*accum)
		teamOrder []int64
		winner    *accum
	)

	for _, row := range rows {
		if winner == nil && row.WinnerTeamResultID != nil {
			winner = &accum{
				view: TeamResultView{
					ID:   *row.WinnerTeamResultID,
					Team: TeamView{ID: row.WinnerTeam.ID, Name: row.WinnerTeam.Name},
				},
				words: make(map[int64]WordResultView),
			}
		}
		if winner != nil && row.WinnerWord != nil {
			addWord(winner, *row.WinnerWord)
		}

		acc, ok := teams[row.TeamResultID]
		if !ok {
			acc = &accum{
				view: TeamResultView{
					ID:   row.TeamResultID,
					Team: TeamView(row.Team),
				},
				words: make(map[int64]WordResultView),
			}
			teams[row.TeamResultID] = acc
			teamOrder = append(teamOrder, row.TeamResultID)
		}
		if row.Word != nil {
			addWord(acc, *row.Word)
		}
	}

	first := rows[0].Game

	teamViews := make([]TeamResultView, 0, len(teamOrder))
	for _, id := range teamOrder {
		teamViews = append(teamViews, finish(teams[id], first.Penalty))
	}
	sort.SliceStable(teamViews, func(i, j int) bool {
		return teamViews[i].Score > teamViews[j].Score
	})

	var winnerView *TeamResultView
	if winner != nil {
		w := finish(winner, first.Penalty)
		winnerView = &w
	}

	return GameView{
		ID:          first.ID,
		Penalty:     first.Penalty,
		State:       first.State.String(),
		Token:       first.Token,
		Turn:        first.Turn,
		WordCount:   first.WordCount,
		RoundTime:   first.RoundTime,
		TeamResults: teamViews,
		Winner:      winnerView,
		CreatedAt:   first.CreatedAt,
		ExpiredAt:   first.ExpiredAt,
	}, nil
}

// addWord stores cell under the accumulator, keeping the first
// occurrence of each word result id.
func addWord(acc *accum, cell WordCell) {
	if _, seen := acc.words[cell.ID]; seen {
		return
	}
	acc.words[cell.ID] = WordResultView{
		Result: cell.Result,
		Order:  cell.Order,
		Word:   WordView{ID: cell.WordID, Body: cell.WordBody},
	}
	acc.wordIDs = append(acc.wordIDs, cell.ID)
}

// finish computes the score and emits word results sorted by Order.
func finish(acc *accum, penalty bool) TeamResultView {
	words := make([]WordResultView, 0, len(acc.wordIDs))
	outcomes := make([]bool, 0, len(acc.wordIDs))
	for _, id := range acc.wordIDs {
		wr := acc.words[id]
		words = append(words, wr)
		outcomes = append(outcomes, wr.Result)
	}
	sort.Slice(words, func(i, j int) bool { return words[i].Order < words[j].Order })

	v := acc.view
	v.Score = Score(penalty, outcomes)
	v.WordResults = words
	return v
}
