package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/uilacceb/splitter/internal/auth"
)

func tokenCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "token <person-id>",
		Short: "Mint a bearer token for a person",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := opts.load()
			if err != nil {
				return err
			}
			if cfg.Auth.JWTSecret == "" {
				return errors.New("auth.jwt_secret (JWT_SECRET) is required to mint tokens")
			}

			token, err := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.TokenDuration).Generate(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
}
