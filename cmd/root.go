package cmd

import "github.com/spf13/cobra"

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "taleweaver",
		Short:         "Interactive fiction narrated by a local Ollama model",
		Long:          "taleweaver keeps a library of story sessions on disk and plays them turn by turn, streaming each continuation from a locally hosted Ollama model.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	app, err := wireApp()
	if err != nil {
		rootCmd.RunE = func(_ *cobra.Command, _ []string) error {
			return err
		}
		return rootCmd
	}

	rootCmd.PersistentPostRun = func(_ *cobra.Command, _ []string) {
		_ = app.logger.Sync()
	}

	rootCmd.AddCommand(
		newVersionCmd(),
		newStoryCmd(app),
		newPlayCmd(app),
		newModelsCmd(app),
		newConfigCmd(app),
	)

	return rootCmd
}
