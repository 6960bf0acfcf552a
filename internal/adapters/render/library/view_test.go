package library

import (
	"strings"
	"testing"
	"time"

	"github.com/bnema/taleweaver/internal/domain"
	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderLibraryListsStories(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	output, err := RenderLibrary([]domain.Session{
		{
			ID:           "a1",
			Title:        "The Lighthouse",
			Description:  "A keeper vanishes",
			ModelName:    "mistral",
			LastPlayedAt: now.Add(-3 * time.Hour),
			Dialogue:     []domain.Turn{{Speaker: domain.SpeakerNarrator, Message: "Waves."}},
		},
		{
			ID:           "b2",
			Title:        "  ",
			LastPlayedAt: now.Add(-30 * time.Second),
		},
	}, RenderOptions{Now: now, FadeAfter: 7 * 24 * time.Hour})

	require.NoError(t, err)
	assert.Contains(t, output, "stories: 2")
	assert.Contains(t, output, "The Lighthouse")
	assert.Contains(t, output, "A keeper vanishes")
	assert.Contains(t, output, "model: mistral")
	assert.Contains(t, output, "turns: 1")
	assert.Contains(t, output, "played 3 hours ago")
	assert.Contains(t, output, domain.DefaultTitle)
	assert.Contains(t, output, "model: default")
	assert.Contains(t, output, "played just now")
}

func TestRenderLibraryEmpty(t *testing.T) {
	output, err := RenderLibrary(nil, RenderOptions{})

	require.NoError(t, err)
	assert.Contains(t, output, "stories: 0")
	assert.Contains(t, output, "No stories yet")
}

func TestRenderTranscriptShowsTurnsInOrder(t *testing.T) {
	at := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	output, err := RenderTranscript(domain.Session{
		ID:        "a1",
		Title:     "The Lighthouse",
		ModelName: "llama3",
		CreatedAt: at,
		Dialogue: []domain.Turn{
			{Speaker: domain.SpeakerNarrator, Message: "The lamp is dark.", Timestamp: at},
			{Speaker: domain.SpeakerPlayer, Message: "Light it.", Timestamp: at.Add(time.Minute)},
		},
	}, RenderOptions{Now: at})

	require.NoError(t, err)
	assert.Contains(t, output, "The Lighthouse")
	assert.Contains(t, output, "model: llama3")
	assert.Contains(t, output, "Narrator")
	assert.Contains(t, output, "You")
	assert.Less(t, strings.Index(output, "The lamp is dark."), strings.Index(output, "Light it."))
}

func TestRenderTranscriptWithoutTurns(t *testing.T) {
	output, err := RenderTranscript(domain.Session{ID: "a1", Title: "Fresh"}, RenderOptions{})

	require.NoError(t, err)
	assert.Contains(t, output, "No turns played yet.")
}

func TestFormatPlayedRelative(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, "never played", formatPlayedRelative(time.Time{}, now))
	assert.Equal(t, "played 1 minute ago", formatPlayedRelative(now.Add(-time.Minute), now))
	assert.Equal(t, "played 2 days ago", formatPlayedRelative(now.Add(-49*time.Hour), now))
}

func TestRecencyColorFades(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	opts := RenderOptions{Now: now, FadeAfter: 4 * time.Hour}

	assert.Equal(t, lipgloss.Color("39"), recencyColor(now, opts))
	assert.Equal(t, lipgloss.Color("74"), recencyColor(now.Add(-90*time.Minute), opts))
	assert.Equal(t, lipgloss.Color("245"), recencyColor(now.Add(-5*time.Hour), opts))
}
