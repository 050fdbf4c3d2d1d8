// internal/game/engine.go
//
// Game state machine: creation and round completion.
// Responsibilities:
//   - Create games with a fixed team rotation and a 10 hour lifetime.
//   - Gate round completion on token, active state and expiry.
//   - Advance the turn, or end the game and pick the winner when the
//     final word batch lands.
//
// Notes:
//   - Everything here is pure: no storage, no clock reads, no token
//     generation. Callers inject `now` and the token and persist the
//     returned values in a single transaction.
//   - The acting team always resolves as Turn mod team count, so games
//     may run any number of full rotations.
package game

import "time"

// ExpireAfter is the fixed lifetime of a game from its creation.
const ExpireAfter = 10 * time.Hour

// New validates the creation parameters and produces an active game
// plus one TeamResult per team.
//
// Validation order: team count, round time, word count; first failure
// wins. The input team order becomes the turn rotation: teams[i] gets
// TeamResult Order i, and the team at index Turn mod len(teams) acts
// next. IDs are zero: the storage layer assigns them on insert.
func New(wordCount int, penalty bool, roundTime int, teams []Team, token string, now time.Time) (Game, []TeamResult, error) {
	if err := validateTeamCount(teams); err != nil {
		return Game{}, nil, err
	}
	if err := validateRoundTime(roundTime); err != nil {
		return Game{}, nil, err
	}
	if err := validateWordCount(wordCount); err != nil {
		return Game{}, nil, err
	}

	g := Game{
		State:     StateActive,
		WordCount: wordCount,
		Penalty:   penalty,
		RoundTime: roundTime,
		Turn:      0,
		Token:     token,
		CreatedAt: now.UTC(),
		ExpiredAt: now.UTC().Add(ExpireAfter),
	}

	teamResults := make([]TeamResult, len(teams))
	for i, team := range teams {
		teamResults[i] = TeamResult{TeamID: team.ID, Order: i}
	}
	return g, teamResults, nil
}

// CompleteRound applies one submitted batch of outcomes for the acting
// team and returns the next game state plus the word results to insert.
//
// The validation gate runs in order: token, active state, expiry, then
// word budget. Outcomes are credited to teamWords[Turn mod n].
//
// The game ends exactly when recorded outcomes plus the new batch equal
// WordCount; a smaller batch just advances the turn. On game over the
// winner is the team result with the highest score (the new batch
// counts toward the acting team only); ties go to the team encountered
// first in teamWords, and Turn is left as-is.
//
// Outcome batches must already be deduplicated by word id; this engine
// records whatever it is given.
func CompleteRound(g Game, teamWords []TeamWords, outcomes []Outcome, token string, now time.Time) (Game, []WordResult, error) {
	if err := validateToken(g, token); err != nil {
		return Game{}, nil, err
	}
	if err := validateActive(g); err != nil {
		return Game{}, nil, err
	}
	if err := validateExpired(g, now); err != nil {
		return Game{}, nil, err
	}

	acting := teamWords[g.Turn%len(teamWords)].TeamResult

	progress := recordedWords(teamWords)
	if err := validateBatchFits(g, progress, len(outcomes)); err != nil {
		return Game{}, nil, err
	}

	next := g
	if progress+len(outcomes) == g.WordCount {
		winner := highestScoring(g.Penalty, teamWords, outcomes, acting.ID)
		next.State = StateEnded
		next.WinnerID = &winner.ID
	} else {
		next.Turn = g.Turn + 1
	}

	newResults := make([]WordResult, len(outcomes))
	for i, o := range outcomes {
		newResults[i] = WordResult{
			Result:       o.Result,
			Order:        i,
			WordID:       o.WordID,
			TeamResultID: acting.ID,
		}
	}
	return next, newResults, nil
}

// recordedWords counts outcomes already stored across all teams.
func recordedWords(teamWords []TeamWords) int {
	n := 0
	for _, tw := range teamWords {
		n += len(tw.WordResults)
	}
	return n
}

// highestScoring picks the team result with the best total score. The
// pending batch counts only toward the acting team. Strict comparison
// keeps the first-encountered team on ties.
func highestScoring(penalty bool, teamWords []TeamWords, outcomes []Outcome, actingID int64) TeamResult {
	var (
		best      TeamResult
		bestScore int
		first     = true
	)
	for _, tw := range teamWords {
		score := Score(penalty, results(tw.WordResults))
		if tw.TeamResult.ID == actingID {
			score += Score(penalty, outcomeResults(outcomes))
		}
		if first || score > bestScore {
			best, bestScore, first = tw.TeamResult, score, false
		}
	}
	return best
}

func results(wrs []WordResult) []bool {
	out := make([]bool, len(wrs))
	for i, wr := range wrs {
		out[i] = wr.Result
	}
	return out
}

func outcomeResults(outcomes []Outcome) []bool {
	out := make([]bool, len(outcomes))
	for i, o := range outcomes {
		out[i] = o.Result
	}
	return out
}
