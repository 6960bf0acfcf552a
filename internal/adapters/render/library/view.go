package library

import (
	"fmt"
	"strings"
	"time"

	"github.com/bnema/taleweaver/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

type RenderOptions struct {
	Now time.Time
	// FadeAfter is how long after the last play a story title is fully dimmed.
	FadeAfter time.Duration
}

func renderLibrary(sessions []domain.Session, opts RenderOptions, s styles) string {
	lines := []string{
		s.title.Render("Story Library"),
		s.header.Render(fmt.Sprintf("stories: %d", len(sessions))),
	}

	if len(sessions) == 0 {
		lines = append(lines, s.empty.Render("No stories yet. Create one with `taleweaver story new`."))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	for _, session := range sessions {
		lines = append(lines, s.section.Render(renderEntry(session, opts, s)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderEntry(session domain.Session, opts RenderOptions, s styles) string {
	titleStyle := s.story.Foreground(recencyColor(session.LastPlayedAt, opts))
	parts := []string{
		lipgloss.JoinHorizontal(lipgloss.Top, titleStyle.Render(storyTitle(session.Title)), " ", s.id.Render(string(session.ID))),
	}

	if description := strings.TrimSpace(session.Description); description != "" {
		parts = append(parts, s.detail.Render(description))
	}

	meta := fmt.Sprintf("model: %s · turns: %d · %s", modelLabel(session.ModelName), len(session.Dialogue), formatPlayedRelative(session.LastPlayedAt, opts.Now))
	parts = append(parts, s.header.Render(meta))

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func renderTranscript(session domain.Session, opts RenderOptions, s styles) string {
	lines := []string{
		s.title.Render(storyTitle(session.Title)),
		s.header.Render(fmt.Sprintf("id: %s · model: %s · created %s", session.ID, modelLabel(session.ModelName), formatTimestamp(session.CreatedAt))),
	}
	if description := strings.TrimSpace(session.Description); description != "" {
		lines = append(lines, s.detail.Render(description))
	}

	if len(session.Dialogue) == 0 {
		lines = append(lines, s.section.Render(s.empty.Render("No turns played yet.")))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	for _, turn := range session.Dialogue {
		lines = append(lines, s.section.Render(renderTurn(turn, s)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderTurn(turn domain.Turn, s styles) string {
	speaker := s.narrator
	if turn.Speaker == domain.SpeakerPlayer {
		speaker = s.player
	}

	head := lipgloss.JoinHorizontal(lipgloss.Top, speaker.Render(turn.Speaker.Label()), " ", s.timestamp.Render(formatTimestamp(turn.Timestamp)))

	return lipgloss.JoinVertical(lipgloss.Left, head, s.message.Render(strings.TrimSpace(turn.Message)))
}

func storyTitle(title string) string {
	if trimmed := strings.TrimSpace(title); trimmed != "" {
		return trimmed
	}

	return domain.DefaultTitle
}

func modelLabel(name string) string {
	if name == "" {
		return "default"
	}

	return name
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return "unknown"
	}

	return t.Local().Format("02 Jan 2006 15:04")
}

func formatPlayedRelative(playedAt, now time.Time) string {
	if playedAt.IsZero() {
		return "never played"
	}
	if now.IsZero() || playedAt.After(now) {
		return "played " + formatTimestamp(playedAt)
	}

	elapsed := now.Sub(playedAt)
	switch {
	case elapsed < time.Minute:
		return "played just now"
	case elapsed < time.Hour:
		return "played " + plural(int(elapsed/time.Minute), "minute") + " ago"
	case elapsed < 24*time.Hour:
		return "played " + plural(int(elapsed/time.Hour), "hour") + " ago"
	default:
		return "played " + plural(int(elapsed/(24*time.Hour)), "day") + " ago"
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}

	return fmt.Sprintf("%d %ss", n, unit)
}

// recencyColor fades from bright blue for a story played just now to grey at FadeAfter.
func recencyColor(playedAt time.Time, opts RenderOptions) lipgloss.Color {
	if opts.Now.IsZero() || opts.FadeAfter <= 0 || playedAt.IsZero() {
		return lipgloss.Color("39")
	}

	ratio := opts.Now.Sub(playedAt).Seconds() / opts.FadeAfter.Seconds()
	switch {
	case ratio < 0.25:
		return lipgloss.Color("39")
	case ratio < 0.5:
		return lipgloss.Color("74")
	case ratio < 1:
		return lipgloss.Color("109")
	default:
		return lipgloss.Color("245")
	}
}
