package main

import (
	"fmt"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/spf13/cobra"

	"github.com/osnetwork/go-auth"
)

func (a *app) newTokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue or inspect signed tokens",
	}

	cmd.AddCommand(a.newTokenIssueCmd())
	cmd.AddCommand(a.newTokenVerifyCmd())

	return cmd
}

func (a *app) newTokenIssueCmd() *cobra.Command {
	var (
		id    int64
		name  string
		email string
		role  string
	)

	cmd := &cobra.Command{
		Use:   "issue",
		Short: "Sign a token for an identity without touching the store",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := a.load()
			if err != nil {
				return err
			}

			r, ok := auth.ParseRole(role)
			if !ok {
				return errors.New("invalid role "+role, errors.CategoryBadInput)
			}
			if id <= 0 {
				return errors.New("id must be positive", errors.CategoryBadInput)
			}

			token, err := auth.NewTokenService(cfg.Auth).Generate(auth.IdentityFromUser(&auth.User{
				ID:    id,
				Name:  name,
				Email: email,
				Role:  r,
			}))
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().Int64Var(&id, "id", 0, "identity id")
	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&role, "role", string(auth.RoleUser), "role (user, player, coach, admin)")
	_ = cmd.MarkFlagRequired("id")

	return cmd
}

func (a *app) newTokenVerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify <token>",
		Short: "Validate a token and print its claims",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.load()
			if err != nil {
				return err
			}

			claims, err := auth.NewTokenService(cfg.Auth).Validate(args[0])
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), print.MaybePrettyJSON(claims))
			return nil
		},
	}
}
