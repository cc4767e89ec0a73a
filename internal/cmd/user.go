package cmd

import (
	"github.com/spf13/cobra"

	"github.com/zancompute/zanconfig/internal/auth"
	"github.com/zancompute/zanconfig/internal/datastore/repository"
)

func newUserCommand() *cobra.Command {
	userCmd := &cobra.Command{
		Use:   "user",
		Short: "Manage dashboard login accounts",
	}

	var username, email, password string
	add := &cobra.Command{
		Use:   "add",
		Short: "Create an account with a hashed password",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(cmd)
			if err != nil {
				return err
			}
			db, report, err := a.openEvolvedStore(cmd.Context())
			if err != nil {
				return err
			}
			defer closeStore(db, a.log)
			if err := report.Err(); err != nil {
				return err
			}

			user, err := auth.NewAuthenticator(repository.NewUserRepository(db), a.log).
				Register(cmd.Context(), username, email, password)
			if err != nil {
				return err
			}
			printf(cmd, "created user %s (id %d)\n", user.Username, user.ID)
			return nil
		},
	}
	add.Flags().StringVar(&username, "username", "", "login name")
	add.Flags().StringVar(&email, "email", "", "email address")
	add.Flags().StringVar(&password, "password", "", "password")
	for _, name := range []string{"username", "email", "password"} {
		_ = add.MarkFlagRequired(name)
	}

	userCmd.AddCommand(add)
	return userCmd
}
