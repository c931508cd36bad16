package cmd

import (
	"github.com/spf13/cobra"

	"github.com/abhisek/drillz/internal/app"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play drills in the terminal",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPlay(cmd)
	},
}

// runPlay opens the store and launches the TUI for the local learner.
func runPlay(cmd *cobra.Command) error {
	userID, err := resolveUser(cmd)
	if err != nil {
		return err
	}
	e, err := setup(cmd, false)
	if err != nil {
		return err
	}
	defer e.Close()

	return app.Run(cmd.Context(), app.Options{Engine: e.engine(nil), UserID: userID})
}
