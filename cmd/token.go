package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/drillz/internal/config"
	"github.com/abhisek/drillz/internal/httpapi"
)

var tokenCmd = &cobra.Command{
	Use:   "token <user>",
	Short: "Mint a bearer token for the HTTP API",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if cfg.JWTSecret == "" {
			return fmt.Errorf("DRILLZ_JWT_SECRET is not set")
		}
		ttl, _ := cmd.Flags().GetDuration("ttl")
		name, _ := cmd.Flags().GetString("name")

		tokens, err := httpapi.NewTokens(cfg.JWTSecret, ttl)
		if err != nil {
			return err
		}
		tok, err := tokens.Mint(args[0], name)
		if err != nil {
			return err
		}
		fmt.Println(tok)
		return nil
	},
}

func init() {
	tokenCmd.Flags().Duration("ttl", 24*time.Hour, "Token lifetime")
	tokenCmd.Flags().String("name", "", "Display name carried in the token")
}
