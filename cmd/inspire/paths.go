package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/inspire/internal/paths"
)

func newURLBaseCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "urlbase <owner> <name>",
		Short: "Print a project's URL prefix",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.repository(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), r.URLBase())
			return nil
		},
	}
}

func newImagePathCmd(a *app) *cobra.Command {
	var public bool
	names := make([]string, 0, len(paths.Categories()))
	for _, c := range paths.Categories() {
		names = append(names, string(c))
	}

	cmd := &cobra.Command{
		Use:   "image-path <owner> <name> <category> <key>",
		Short: "Print where a derived image of a project is stored",
		Long: fmt.Sprintf(`Print where a derived image of a project is stored.

Categories: %s

Examples:
  inspire image-path alice demo thumbnails 1a2b3c4d.png
  inspire image-path alice demo desktop_inspire happypanda.png --public`,
			strings.Join(names, ", ")),
		Args: cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := paths.ParseCategory(args[2])
			if err != nil {
				return err
			}
			if err := paths.ValidateKey(args[3]); err != nil {
				return err
			}
			r, err := a.repository(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), r.ImageFor(args[3], c, public))
			return nil
		},
	}
	cmd.Flags().BoolVar(&public, "public", false, "Print the publicly servable location")
	return cmd
}
