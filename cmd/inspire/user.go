package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newUserCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage project owners",
	}

	var asJSON bool
	create := &cobra.Command{
		Use:   "create <username>",
		Short: "Register a project owner",
		Long: `Register a project owner.

Usernames are 1-64 characters of letters, digits, hyphen and underscore.

Examples:
  inspire user create alice`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := a.projects.CreateUser(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("failed to create user: %w", err)
			}
			if asJSON {
				return outputJSON(cmd.OutOrStdout(), u)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "User created\nID: %d\nUsername: %s\n", u.ID, u.Username)
			return nil
		},
	}
	create.Flags().BoolVar(&asJSON, "json", false, "Output results as JSON")

	cmd.AddCommand(create)
	return cmd
}
