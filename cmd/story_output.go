package cmd

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/bnema/taleweaver/internal/adapters/render/library"
	"github.com/bnema/taleweaver/internal/domain"
	"github.com/spf13/cobra"
)

const libraryFadeAfter = 7 * 24 * time.Hour

type storySummaryJSON struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	ModelName    string    `json:"modelName"`
	CreatedAt    time.Time `json:"createdAt"`
	LastPlayedAt time.Time `json:"lastPlayedAt"`
	Turns        int       `json:"turns"`
}

type storyJSON struct {
	storySummaryJSON
	InitialPrompt string     `json:"initialPrompt"`
	Dialogue      []turnJSON `json:"dialogue"`
}

type turnJSON struct {
	Speaker   string    `json:"speaker"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

func toStorySummaryJSON(session domain.Session) storySummaryJSON {
	return storySummaryJSON{
		ID:           string(session.ID),
		Title:        session.Title,
		Description:  session.Description,
		ModelName:    session.ModelName,
		CreatedAt:    session.CreatedAt,
		LastPlayedAt: session.LastPlayedAt,
		Turns:        len(session.Dialogue),
	}
}

func toStoryJSON(session domain.Session) storyJSON {
	dialogue := make([]turnJSON, 0, len(session.Dialogue))
	for _, turn := range session.Dialogue {
		dialogue = append(dialogue, turnJSON{Speaker: string(turn.Speaker), Message: turn.Message, Timestamp: turn.Timestamp})
	}

	return storyJSON{
		storySummaryJSON: toStorySummaryJSON(session),
		InitialPrompt:    session.InitialPrompt,
		Dialogue:         dialogue,
	}
}

func writeJSON(cmd *cobra.Command, value any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(value)
}

func writeLibraryOutput(cmd *cobra.Command, app *app, sessions []domain.Session, asJSON bool) error {
	if asJSON {
		summaries := make([]storySummaryJSON, 0, len(sessions))
		for _, session := range sessions {
			summaries = append(summaries, toStorySummaryJSON(session))
		}
		return writeJSON(cmd, summaries)
	}

	rendered, err := app.renderLibrary(sessions, library.RenderOptions{Now: app.now(), FadeAfter: libraryFadeAfter})
	if err != nil {
		return fmt.Errorf("render library: %w", err)
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
	return err
}

func writeTranscriptOutput(cmd *cobra.Command, app *app, session domain.Session, asJSON bool) error {
	if asJSON {
		return writeJSON(cmd, toStoryJSON(session))
	}

	rendered, err := app.renderTranscript(session, library.RenderOptions{Now: app.now()})
	if err != nil {
		return fmt.Errorf("render transcript: %w", err)
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
	return err
}
