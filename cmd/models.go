package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newModelsCmd(app *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "models",
		Short: "List the models available on the Ollama server",
		Long:  "List the models installed on the configured Ollama server. When the server cannot be reached the configured model is listed on its own.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if asJSON {
				return writeJSON(cmd, app.llm.ListAvailableModels(cmd.Context()))
			}

			models, err := loadModelsWithSpinner(cmd.Context(), cmd.ErrOrStderr(), "Fetching models...", app.llm.ListAvailableModels)
			if err != nil {
				return err
			}

			current := app.llm.Model()
			for _, name := range models {
				marker := " "
				if name == current {
					marker = "*"
				}
				if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", marker, name); err != nil {
					return err
				}
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print model names as a JSON array")

	return cmd
}
