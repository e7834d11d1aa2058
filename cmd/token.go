package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/jambcoach/internal/httpapi"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint a bearer token for a user (development)",
	RunE: func(cmd *cobra.Command, args []string) error {
		user, err := requiredString(cmd, "user")
		if err != nil {
			return err
		}
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if err := cfg.ValidateAuth(); err != nil {
			return err
		}
		ttl := cfg.Auth.TokenTTL
		if d, _ := cmd.Flags().GetDuration("ttl"); d > 0 {
			ttl = d
		}
		tok, err := httpapi.NewTokens(cfg.Auth.JWTSecret, cfg.Auth.Issuer, ttl).Issue(user)
		if err != nil {
			return fmt.Errorf("issue token: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), tok)
		return nil
	},
}

func init() {
	tokenCmd.Flags().String("user", "", "User id to put in the sub claim")
	tokenCmd.Flags().Duration("ttl", 0, "Token lifetime (overrides JAMBCOACH_TOKEN_TTL)")
}
