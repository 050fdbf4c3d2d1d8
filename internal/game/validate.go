// internal/game/validate.go
//
// Pure validation predicates for game creation and round completion.
// Each returns nil or a tagged verr error; callers short-circuit on
// the first failure.

package game

import (
	"time"

	"github.com/verba-game/go-server/internal/verr"
)

const (
	minTeams     = 2
	minRoundTime = 1
	maxRoundTime = 1000
	minWordCount = 1
	maxWordCount = 500
)

func validateTeamCount(teams []Team) error {
	if len(teams) < minTeams {
		return verr.New(verr.CodeTeamSize, "Should be at least 2 teams")
	}
	return nil
}

func validateRoundTime(roundTime int) error {
	if roundTime < minRoundTime || roundTime > maxRoundTime {
		return verr.New(verr.CodeValidation, "Round time valid range 1-1000")
	}
	return nil
}

func validateWordCount(wordCount int) error {
	if wordCount < minWordCount || wordCount > maxWordCount {
		return verr.New(verr.CodeValidation, "Word count valid range 1-500")
	}
	return nil
}

func validateToken(g Game, token string) error {
	if g.Token != token {
		return verr.New(verr.CodeInvalidGameToken, "Invalid game token")
	}
	return nil
}

func validateActive(g Game) error {
	if g.State != StateActive {
		return verr.New(verr.CodeActiveGame, "Game must be active")
	}
	return nil
}

func validateExpired(g Game, now time.Time) error {
	if !now.Before(g.ExpiredAt) {
		return verr.Newf(verr.CodeExpiredGame, "Game expired at %s", g.ExpiredAt.UTC().Format(time.RFC3339))
	}
	return nil
}

// validateBatchFits rejects a batch that would push the game past its
// word budget.
func validateBatchFits(g Game, progress, batch int) error {
	if progress+batch > g.WordCount {
		return verr.New(verr.CodeTooManyWords, "Too many words")
	}
	return nil
}
