package cmd

import (
	"fmt"
	"strings"

	"github.com/bnema/taleweaver/internal/domain"
	"github.com/spf13/cobra"
)

const (
	sortPlayed  = "played"
	sortCreated = "created"
)

func newStoryCmd(app *app) *cobra.Command {
	storyCmd := &cobra.Command{
		Use:   "story",
		Short: "Manage saved stories",
	}

	storyCmd.AddCommand(
		newStoryNewCmd(app),
		newStoryListCmd(app),
		newStoryShowCmd(app),
		newStoryEditCmd(app),
		newStoryDeleteCmd(app),
	)

	return storyCmd
}

func newStoryNewCmd(app *app) *cobra.Command {
	var (
		title       string
		description string
		model       string
		prompt      string
	)

	cmd := &cobra.Command{
		Use:   "new",
		Short: "Create a new story",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(model) == "" {
				model = app.cfg.Ollama.Model
			}

			session, err := app.store.Create(cmd.Context(), strings.TrimSpace(title), strings.TrimSpace(description), strings.TrimSpace(model))
			if err != nil {
				return fmt.Errorf("create story: %w", err)
			}

			if prompt = strings.TrimSpace(prompt); prompt != "" {
				session.InitialPrompt = prompt
				if err := app.store.Update(cmd.Context(), session); err != nil {
					return fmt.Errorf("set opening line: %w", err)
				}
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Created story %q (%s)\n", session.Title, session.ID)
			return err
		},
	}

	cmd.Flags().StringVar(&title, "title", domain.DefaultTitle, "Story title")
	cmd.Flags().StringVar(&description, "description", "", "Short description shown in the library")
	cmd.Flags().StringVar(&model, "model", "", "Model used to narrate this story (defaults to ollama.model)")
	cmd.Flags().StringVar(&prompt, "prompt", domain.DefaultInitialPrompt, "Opening line shown when the story starts")

	return cmd
}

func newStoryListCmd(app *app) *cobra.Command {
	var (
		sortBy string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List saved stories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sessions := app.store.List()
			switch sortBy {
			case sortPlayed:
				domain.SortByLastPlayedDesc(sessions)
			case sortCreated:
				domain.SortByCreatedDesc(sessions)
			default:
				return fmt.Errorf("unknown sort %q (use %s or %s)", sortBy, sortPlayed, sortCreated)
			}

			return writeLibraryOutput(cmd, app, sessions, asJSON)
		},
	}

	cmd.Flags().StringVar(&sortBy, "sort", sortPlayed, "Order stories by last played (played) or creation time (created)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print stories as JSON")

	return cmd
}

func newStoryShowCmd(app *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a story and its transcript",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := lookupSession(app, args[0])
			if err != nil {
				return err
			}

			return writeTranscriptOutput(cmd, app, session, asJSON)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the story as JSON")

	return cmd
}

func newStoryEditCmd(app *app) *cobra.Command {
	var (
		title       string
		description string
		model       string
		prompt      string
	)

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change a story's title, description, model or opening line",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := lookupSession(app, args[0])
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			if !flags.Changed("title") && !flags.Changed("description") && !flags.Changed("model") && !flags.Changed("prompt") {
				return fmt.Errorf("nothing to change: pass at least one of --title, --description, --model, --prompt")
			}
			if flags.Changed("title") {
				session.Title = strings.TrimSpace(title)
			}
			if flags.Changed("description") {
				session.Description = strings.TrimSpace(description)
			}
			if flags.Changed("model") {
				session.ModelName = strings.TrimSpace(model)
			}
			if flags.Changed("prompt") {
				session.InitialPrompt = strings.TrimSpace(prompt)
			}

			if err := app.store.Update(cmd.Context(), session); err != nil {
				return fmt.Errorf("update story: %w", err)
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Updated story %s\n", session.ID)
			return err
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "New title")
	cmd.Flags().StringVar(&description, "description", "", "New description")
	cmd.Flags().StringVar(&model, "model", "", "New narrating model")
	cmd.Flags().StringVar(&prompt, "prompt", "", "New opening line")

	return cmd
}

func newStoryDeleteCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a story and its save file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := lookupSession(app, args[0])
			if err != nil {
				return err
			}

			if err := app.store.Delete(cmd.Context(), session.ID); err != nil {
				return fmt.Errorf("delete story: %w", err)
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Deleted story %s\n", session.ID)
			return err
		},
	}
}

func lookupSession(app *app, raw string) (domain.Session, error) {
	id := domain.SessionID(strings.TrimSpace(raw))
	session, ok := app.store.Get(id)
	if !ok {
		return domain.Session{}, fmt.Errorf("story %s: %w", id, domain.ErrSessionNotFound)
	}

	return session, nil
}
