// internal/game/score.go
//
// Score calculation. Both round completion and view aggregation call
// Score; they must never diverge, so this is the only place scoring
// rules live.

package game

// Score maps a sequence of guess outcomes to a total.
// A correct guess is +1. An incorrect guess is -1 when penalty is
// enabled and 0 otherwise.
func Score(penalty bool, results []bool) int {
	total := 0
	for _, r := range results {
		total += scoreOne(penalty, r)
	}
	return total
}

func scoreOne(penalty, result bool) int {
	switch {
	case result:
		return 1
	case penalty:
		return -1
	default:
		return 0
	}
}
