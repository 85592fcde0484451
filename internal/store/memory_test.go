package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_LatestAndList(t *testing.T) {
	s := NewMemoryStore(0, 0)

	_, err := s.Latest()
	assert.ErrorIs(t, err, ErrNotFound)

	now := time.Now()
	s.SaveRun(Run{ID: "a", StartedAt: now.Add(-2 * time.Minute)})
	s.SaveRun(Run{ID: "b", StartedAt: now.Add(-time.Minute)})

	latest, err := s.Latest()
	require.NoError(t, err)
	assert.Equal(t, "b", latest.ID)

	list := s.List()
	require.Len(t, list, 2)
	assert.Equal(t, "b", list[0].ID)
	assert.Equal(t, "a", list[1].ID)
}

func TestMemoryStore_RetentionByCount(t *testing.T) {
	s := NewMemoryStore(2, 0)
	now := time.Now()
	for _, id := range []string{"a", "b", "c"} {
		s.SaveRun(Run{ID: id, StartedAt: now})
	}

	list := s.List()
	require.Len(t, list, 2)
	assert.Equal(t, "c", list[0].ID)
	assert.Equal(t, "b", list[1].ID)
}

func TestMemoryStore_RetentionByAge(t *testing.T) {
	now := time.Date(2025, 6, 27, 12, 0, 0, 0, time.UTC)
	s := NewMemoryStore(0, time.Hour)
	s.now = func() time.Time { return now }

	s.SaveRun(Run{ID: "old", StartedAt: now.Add(-3 * time.Hour)})
	s.SaveRun(Run{ID: "older", StartedAt: now.Add(-2 * time.Hour)})
	assert.Len(t, s.List(), 1, "newest run is kept even when expired")

	s.SaveRun(Run{ID: "fresh", StartedAt: now.Add(-time.Minute)})
	list := s.List()
	require.Len(t, list, 1)
	assert.Equal(t, "fresh", list[0].ID)
}
