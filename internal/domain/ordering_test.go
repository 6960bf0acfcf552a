package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSortByLastPlayedDesc(t *testing.T) {
	t.Parallel()

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	sessions := []Session{
		{ID: "old", LastPlayedAt: base},
		{ID: "new", LastPlayedAt: base.Add(2 * time.Hour)},
		{ID: "mid", LastPlayedAt: base.Add(time.Hour)},
	}

	SortByLastPlayedDesc(sessions)

	assert.Equal(t, []SessionID{"new", "mid", "old"}, ids(sessions))
}

func TestSortByCreatedDesc(t *testing.T) {
	t.Parallel()

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	sessions := []Session{
		{ID: "first", CreatedAt: base, LastPlayedAt: base.Add(5 * time.Hour)},
		{ID: "second", CreatedAt: base.Add(time.Hour), LastPlayedAt: base.Add(time.Hour)},
	}

	SortByCreatedDesc(sessions)

	assert.Equal(t, []SessionID{"second", "first"}, ids(sessions))
}

func ids(sessions []Session) []SessionID {
	out := make([]SessionID, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, s.ID)
	}
	return out
}
