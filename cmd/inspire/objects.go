package main

import (
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// errNotFound is returned when an object lookup yields nothing. Malformed
// and absent hashes look the same to the caller.
var errNotFound = errors.New("not found")

func newTreeCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "tree <owner> <name> [hash]",
		Short: "List a tree of the project's bare repository",
		Long: `List a tree of the project's bare repository.

Without a hash, HEAD's tree is listed. Hashes may be abbreviated down to
objects.min_abbrev_len hex digits.

Examples:
  inspire tree alice demo
  inspire tree alice demo 1a2b3c4d`,
		Args: cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.repository(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			hash := optionalArg(args, 2)
			tree, err := r.Tree(cmd.Context(), hash)
			if err != nil {
				return err
			}
			if tree == nil {
				return fmt.Errorf("tree %q: %w", hash, errNotFound)
			}
			if asJSON {
				return outputJSON(cmd.OutOrStdout(), tree)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 1, ' ', 0)
			for _, e := range tree.Entries {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", e.Mode, e.Kind, e.Hash, e.Name)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output results as JSON")
	return cmd
}

func newCommitCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "commit <owner> <name> [hash]",
		Short: "Show a commit of the project's bare repository",
		Long: `Show a commit of the project's bare repository. Without a hash, HEAD
is shown.

Examples:
  inspire commit alice demo
  inspire commit alice demo 1a2b3c4d --json`,
		Args: cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.repository(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			hash := optionalArg(args, 2)
			c, err := r.Commit(cmd.Context(), hash)
			if err != nil {
				return err
			}
			if c == nil {
				return fmt.Errorf("commit %q: %w", hash, errNotFound)
			}
			if asJSON {
				return outputJSON(cmd.OutOrStdout(), c)
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "commit %s\n", c.Hash)
			fmt.Fprintf(w, "tree %s\n", c.TreeHash)
			for _, p := range c.ParentHashes {
				fmt.Fprintf(w, "parent %s\n", p)
			}
			fmt.Fprintf(w, "Author: %s <%s>\n", c.Author.Name, c.Author.Email)
			fmt.Fprintf(w, "Date:   %s\n\n", c.Author.When.Format("Mon Jan 2 15:04:05 2006 -0700"))
			for _, line := range strings.Split(strings.TrimRight(c.Message, "\n"), "\n") {
				fmt.Fprintf(w, "    %s\n", line)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output results as JSON")
	return cmd
}

func newBlobCmd(a *app) *cobra.Command {
	var commit string
	cmd := &cobra.Command{
		Use:   "blob <owner> <name> <path>",
		Short: "Write a file's content at a commit to stdout",
		Long: `Write a file's content at a commit to stdout. The path is slash
separated from the repository root. Without --commit, HEAD is read.

Examples:
  inspire blob alice demo images/1.png > 1.png
  inspire blob alice demo 1.png --commit 1a2b3c4d > 1.png`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.repository(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			b, err := r.Blob(cmd.Context(), commit, args[2])
			if err != nil {
				return err
			}
			if b == nil {
				return fmt.Errorf("blob %q: %w", args[2], errNotFound)
			}
			_, err = cmd.OutOrStdout().Write(b.Content)
			return err
		},
	}
	cmd.Flags().StringVar(&commit, "commit", "", "Commit hash (defaults to HEAD)")
	return cmd
}

func newFindCmd(a *app) *cobra.Command {
	var (
		commit string
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "find <owner> <name> <filename>",
		Short: "Find a top-level file in a commit",
		Long: `Find a file by name among the top-level entries of a commit's tree and
print its blob hash with the commit it was found in.

Examples:
  inspire find alice demo happypanda.png
  inspire find alice demo happypanda.png --commit 1a2b3c4d`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.repository(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			entry, c, err := r.FindBlobData(cmd.Context(), commit, args[2])
			if err != nil {
				return err
			}
			if entry == nil {
				return fmt.Errorf("file %q: %w", args[2], errNotFound)
			}
			if asJSON {
				return outputJSON(cmd.OutOrStdout(), struct {
					Entry  interface{} `json:"entry"`
					Commit string      `json:"commit"`
				}{entry, c.Hash})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s\n", entry.Hash, c.Hash, entry.Name)
			return nil
		},
	}
	cmd.Flags().StringVar(&commit, "commit", "", "Commit hash (defaults to HEAD)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output results as JSON")
	return cmd
}

func optionalArg(args []string, i int) string {
	if len(args) > i {
		return args[i]
	}
	return ""
}
