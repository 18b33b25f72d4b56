package cli

import (
	"fmt"
	"time"

	"knowledge-check-service/internal/config"
	transport "knowledge-check-service/internal/transport/http"
	"github.com/spf13/cobra"
)

// NewTokenCmd prints a signed bearer token for a user, for local testing.
func NewTokenCmd(configPath *string) *cobra.Command {
	var (
		userID int64
		ttl    time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token for a user id",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if cfg.Auth.JWTSecret == "" {
				return fmt.Errorf("auth.jwt_secret not configured")
			}
			if userID <= 0 {
				return fmt.Errorf("--user must be positive")
			}
			token, err := transport.NewJWTAuth(cfg.Auth.JWTSecret).IssueToken(userID, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().Int64Var(&userID, "user", 0, "user id to put in the user_id claim")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	return cmd
}
