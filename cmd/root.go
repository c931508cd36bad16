package cmd

import (
	"fmt"
	"os"
	"os/user"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/drillz/internal/config"
	"github.com/abhisek/drillz/internal/store"
)

var rootCmd = &cobra.Command{
	Use:          "drillz",
	Short:        "Gamified course drills",
	Long:         "drillz serves course drills with gems, points and streaks, over HTTP or in the terminal.",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPlay(cmd)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides DRILLZ_DB env var)")
	rootCmd.PersistentFlags().String("user", "", "Learner id for local commands (default $DRILLZ_USER or the OS user)")

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(courseCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(studioCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(tokenCmd)
	rootCmd.AddCommand(subscriptionCmd)
	rootCmd.AddCommand(versionCmd)
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then DRILLZ_DB env var, then the default XDG path.
func resolveDBPath(cmd *cobra.Command, cfg *config.Config) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	if cfg != nil && cfg.DBPath != "" {
		return cfg.DBPath, store.EnsureDir(cfg.DBPath)
	}
	return store.DefaultDBPath()
}

// resolveUser returns the learner id for local commands.
func resolveUser(cmd *cobra.Command) (string, error) {
	if u, _ := cmd.Flags().GetString("user"); strings.TrimSpace(u) != "" {
		return strings.TrimSpace(u), nil
	}
	if u := strings.TrimSpace(os.Getenv("DRILLZ_USER")); u != "" {
		return u, nil
	}
	u, err := user.Current()
	if err != nil || u.Username == "" {
		return "", fmt.Errorf("no learner id: pass --user or set DRILLZ_USER")
	}
	return u.Username, nil
}
