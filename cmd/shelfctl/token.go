package main

import (
	"errors"
	"time"

	"github.com/spf13/cobra"

	"studyshelf/internal/config"
	"studyshelf/internal/pkg/jwtutil"
)

var tokenFlags struct {
	userID   uint
	username string
	ttl      time.Duration
}

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint a development JWT",
	Long: `Signs a token with the configured auth secret. The token is accepted by
routes that require authentication, such as resource deletion.`,
	RunE: runToken,
}

func init() {
	tokenCmd.Flags().UintVar(&tokenFlags.userID, "user-id", 0, "user id placed in the token")
	tokenCmd.Flags().StringVar(&tokenFlags.username, "username", "", "username placed in the token")
	tokenCmd.Flags().DurationVar(&tokenFlags.ttl, "ttl", 0, "token lifetime (defaults to auth.jwt_expire_minute)")
	rootCmd.AddCommand(tokenCmd)
}

func runToken(cmd *cobra.Command, _ []string) error {
	if tokenFlags.userID == 0 {
		return errors.New("--user-id is required")
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	ttl := tokenFlags.ttl
	if ttl <= 0 {
		ttl = time.Duration(cfg.Auth.JWTExpireMinute) * time.Minute
	}
	token, err := jwtutil.GenerateToken(cfg.Auth.JWTSecret, ttl, tokenFlags.userID, tokenFlags.username)
	if err != nil {
		return err
	}
	cmd.Println(token)
	return nil
}
