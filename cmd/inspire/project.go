package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/inspire/internal/project"
)

func newProjectCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Manage projects",
		Long: `Manage projects.

Creating a project creates its bare repository and satellite working copy.
Deleting a project hides it; its repositories stay on disk and its name
becomes available again.

Examples:
  # Create a private project
  inspire project create alice "My Project" --private

  # List alice's projects
  inspire project list alice

  # Public projects by other users
  inspire project inspiring alice --json`,
	}
	cmd.PersistentFlags().BoolVar(&asJSON, "json", false, "Output results as JSON")

	var private bool
	create := &cobra.Command{
		Use:   "create <owner> <name>",
		Short: "Create a project and its repositories",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := a.projects.GetUserByName(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			p, err := a.projects.Create(cmd.Context(), u.ID, args[1], private)
			if err != nil {
				return fmt.Errorf("failed to create project: %w", err)
			}
			return printProject(cmd.OutOrStdout(), a, p, asJSON)
		},
	}
	create.Flags().BoolVar(&private, "private", false, "Hide the project from other users")

	show := &cobra.Command{
		Use:   "show <owner> <name>",
		Short: "Show a project",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.repository(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			return printProject(cmd.OutOrStdout(), a, r.Project(), asJSON)
		},
	}

	list := &cobra.Command{
		Use:   "list <owner>",
		Short: "List an owner's projects",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := a.projects.GetUserByName(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			projects, err := a.projects.List(cmd.Context(), u.ID)
			if err != nil {
				return err
			}
			return printProjects(cmd.OutOrStdout(), a, projects, asJSON)
		},
	}

	inspiring := &cobra.Command{
		Use:   "inspiring <username>",
		Short: "List public projects owned by other users",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := a.projects.GetUserByName(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			projects, err := a.projects.InspiringProjectsFor(cmd.Context(), u.ID)
			if err != nil {
				return err
			}
			return printProjects(cmd.OutOrStdout(), a, projects, asJSON)
		},
	}

	setPrivate := func(private bool) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			r, err := a.repository(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			return a.projects.SetPrivate(cmd.Context(), r.Project().ID, private)
		}
	}
	hide := &cobra.Command{
		Use:   "hide <owner> <name>",
		Short: "Make a project private",
		Args:  cobra.ExactArgs(2),
		RunE:  setPrivate(true),
	}
	publish := &cobra.Command{
		Use:   "publish <owner> <name>",
		Short: "Make a project public",
		Args:  cobra.ExactArgs(2),
		RunE:  setPrivate(false),
	}

	del := &cobra.Command{
		Use:   "delete <owner> <name>",
		Short: "Soft-delete a project",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.repository(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			if err := a.projects.Delete(cmd.Context(), r.Project().ID); err != nil {
				return fmt.Errorf("failed to delete project: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Project deleted: %s/%s\n", args[0], args[1])
			return nil
		},
	}

	cmd.AddCommand(create, show, list, inspiring, hide, publish, del)
	return cmd
}

// projectView is the JSON form of a project.
type projectView struct {
	*project.Project
	URLBase string `json:"url_base"`
}

func printProject(w io.Writer, a *app, p *project.Project, asJSON bool) error {
	if asJSON {
		return outputJSON(w, projectView{Project: p, URLBase: a.paths.URLBase(p.OwnerUsername, p.Name)})
	}
	fmt.Fprintf(w, "ID: %s\n", p.ID)
	fmt.Fprintf(w, "Owner: %s\n", p.OwnerUsername)
	fmt.Fprintf(w, "Name: %s\n", p.Name)
	fmt.Fprintf(w, "Private: %t\n", p.Private)
	fmt.Fprintf(w, "URL: %s\n", a.paths.URLBase(p.OwnerUsername, p.Name))
	fmt.Fprintf(w, "Data path: %s\n", p.DataPath)
	fmt.Fprintf(w, "Created: %s\n", p.CreatedAt.Format("2006-01-02 15:04:05"))
	return nil
}

func printProjects(w io.Writer, a *app, projects []*project.Project, asJSON bool) error {
	if asJSON {
		views := make([]projectView, 0, len(projects))
		for _, p := range projects {
			views = append(views, projectView{Project: p, URLBase: a.paths.URLBase(p.OwnerUsername, p.Name)})
		}
		return outputJSON(w, views)
	}
	if len(projects) == 0 {
		fmt.Fprintln(w, "No projects found")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "OWNER\tNAME\tPRIVATE\tURL\tCREATED")
	for _, p := range projects {
		fmt.Fprintf(tw, "%s\t%s\t%t\t%s\t%s\n",
			p.OwnerUsername, p.Name, p.Private,
			a.paths.URLBase(p.OwnerUsername, p.Name),
			p.CreatedAt.Format("2006-01-02 15:04"))
	}
	return tw.Flush()
}
