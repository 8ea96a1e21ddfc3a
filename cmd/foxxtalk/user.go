package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/slyyfoxx/foxxtalk/internal/auth"
	"github.com/slyyfoxx/foxxtalk/internal/config"
	"github.com/slyyfoxx/foxxtalk/internal/db"
	"github.com/slyyfoxx/foxxtalk/internal/store"
)

func newUserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage author accounts",
	}
	cmd.AddCommand(newUserCreateCmd())
	return cmd
}

func newUserCreateCmd() *cobra.Command {
	var email, name, password string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an author who signs in with a password",
		Long:  "Create an author account. The password may be passed with --password or the FOXX_NEW_USER_PASSWORD environment variable.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				password = os.Getenv("FOXX_NEW_USER_PASSWORD")
			}
			if email == "" || password == "" {
				return errors.New("--email and a password are required")
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger := newLogger(cfg)

			database, err := db.New(cfg.DB.Driver, cfg.DB.DSN)
			if err != nil {
				return err
			}
			defer func() { _ = database.Close() }()
			if err := db.Migrate(database, cfg.DB.Driver); err != nil {
				return err
			}

			tokens := auth.NewSQLTokenStore(database)
			issuer := auth.NewIssuer([]byte(cfg.Auth.JWTSecret), cfg.Auth.TokenTTL, tokens)
			svc := auth.NewService(store.NewUserStore(database), issuer, tokens, nil, logger)

			u, err := svc.CreateUser(cmd.Context(), email, name, password)
			if err != nil {
				return fmt.Errorf("create user: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created user %s (%s)\n", u.Email, u.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "login email")
	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&password, "password", "", "initial password")
	return cmd
}
