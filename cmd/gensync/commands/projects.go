package commands

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/stratalab/gensync/errors"
)

// NewProjectsCommand lists the caller's projects.
func NewProjectsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "projects",
		Short: "List your projects",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, client, err := setup()
			if err != nil {
				return err
			}

			projects, err := client.Projects(cmd.Context())
			if err != nil {
				return err
			}
			if len(projects) == 0 {
				pterm.Info.Println("No projects yet")
				return nil
			}

			rows := pterm.TableData{{"ID", "Company", "Status", "Progress"}}
			for _, p := range projects {
				rows = append(rows, []string{
					p.ID,
					p.CompanyName,
					p.Status,
					pterm.Sprintf("%d%%", p.Progress),
				})
			}
			return pterm.DefaultTable.WithHasHeader().WithData(rows).Render()
		},
	}
}

// NewProjectCommand shows one project in detail.
func NewProjectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "project <project-id>",
		Short: "Show one project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, client, err := setup()
			if err != nil {
				return err
			}

			p, err := client.Project(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			rows := pterm.TableData{
				{"ID", p.ID},
				{"Company", p.CompanyName},
				{"Industry", p.Industry},
				{"Type", p.WebsiteType},
				{"Status", p.Status},
				{"Progress", pterm.Sprintf("%d%%", p.Progress)},
			}
			if p.ErrorMessage != "" {
				rows = append(rows, []string{"Error", p.ErrorMessage})
			}
			if len(p.Files) > 0 {
				rows = append(rows, []string{"Files", pterm.Sprintf("%d", len(p.Files))})
			}
			return pterm.DefaultTable.WithData(rows).Render()
		},
	}
}

// NewDeleteCommand removes a project.
func NewDeleteCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "delete <project-id>",
		Short: "Delete a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, client, err := setup()
			if err != nil {
				return err
			}
			id := args[0]

			if !force {
				ok, err := pterm.DefaultInteractiveConfirm.
					Show(pterm.Sprintf("Delete project %s?", id))
				if err != nil {
					return errors.Wrap(err, "confirmation failed")
				}
				if !ok {
					pterm.Info.Println("Aborted")
					return nil
				}
			}

			if err := client.DeleteProject(cmd.Context(), id); err != nil {
				return err
			}
			pterm.Success.Printf("Deleted project %s\n", id)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "skip confirmation")
	return cmd
}
