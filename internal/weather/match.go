package weather

import (
	"errors"
	"time"
)

// ErrEmptyInput is returned by ClosestIndex when there are no candidates.
var ErrEmptyInput = errors.New("no candidate timestamps")

// ClosestIndex returns the index of the candidate nearest to target.
// On ties the earliest index wins. Candidates need not be sorted.
func ClosestIndex(target time.Time, candidates []time.Time) (int, error) {
	if len(candidates) == 0 {
		return 0, ErrEmptyInput
	}

	best := 0
	bestDiff := absDuration(candidates[0].Sub(target))
	for i := 1; i < len(candidates); i++ {
		d := absDuration(candidates[i].Sub(target))
		if d < bestDiff {
			best, bestDiff = i, d
		}
	}
	return best, nil
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
