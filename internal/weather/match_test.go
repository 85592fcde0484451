package weather

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hour(h int) time.Time {
	return time.Date(2025, 6, 27, h, 0, 0, 0, time.UTC)
}

func TestClosestIndex(t *testing.T) {
	tests := []struct {
		name       string
		target     time.Time
		candidates []time.Time
		want       int
	}{
		{"exact match", hour(10), []time.Time{hour(9), hour(10), hour(11)}, 1},
		{"before all", hour(1), []time.Time{hour(9), hour(10), hour(11)}, 0},
		{"after all", hour(23), []time.Time{hour(9), hour(10), hour(11)}, 2},
		{"single", hour(5), []time.Time{hour(20)}, 0},
		{"between rounds to nearer", hour(10).Add(40 * time.Minute), []time.Time{hour(10), hour(11)}, 1},
		{"tie picks earliest", hour(10).Add(30 * time.Minute), []time.Time{hour(10), hour(11)}, 0},
		{"tie picks earliest index when unsorted", hour(10).Add(30 * time.Minute), []time.Time{hour(11), hour(10)}, 0},
		{"unsorted input", hour(7), []time.Time{hour(12), hour(3), hour(8), hour(6)}, 3},
		{"duplicates keep first", hour(8), []time.Time{hour(1), hour(8), hour(8)}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ClosestIndex(tt.target, tt.candidates)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClosestIndexEmpty(t *testing.T) {
	_, err := ClosestIndex(hour(10), nil)
	assert.ErrorIs(t, err, ErrEmptyInput)

	_, err = ClosestIndex(hour(10), []time.Time{})
	assert.ErrorIs(t, err, ErrEmptyInput)
}

// The returned index is never farther from target than any other candidate.
func TestClosestIndexIsMinimal(t *testing.T) {
	base := hour(0)
	candidates := make([]time.Time, 0, 50)
	for i := 0; i < 50; i++ {
		// Deterministic scatter, including repeated offsets.
		candidates = append(candidates, base.Add(time.Duration((i*37)%23)*17*time.Minute))
	}

	for step := 0; step < 48; step++ {
		target := base.Add(time.Duration(step) * 13 * time.Minute)
		idx, err := ClosestIndex(target, candidates)
		require.NoError(t, err)

		best := absDuration(candidates[idx].Sub(target))
		for j, c := range candidates {
			d := absDuration(c.Sub(target))
			assert.LessOrEqual(t, best, d)
			if d == best {
				assert.LessOrEqual(t, idx, j, "earliest minimum must win")
				break
			}
		}
	}
}
