package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"videoflow/internal/app"
	"videoflow/internal/importer"
	"videoflow/internal/model"
	"videoflow/internal/repository"

	"github.com/spf13/cobra"
)

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Manage projects",
}

var projectCreateCmd = &cobra.Command{
	Use:   "create [NAME]",
	Short: "Create a project (named after today's date when NAME is omitted)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := strings.Join(args, "")
		return withApp(cmd, func(ctx context.Context, a *app.VideoFlowApp) error {
			id, name, err := a.CreateProject(ctx, name)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created project %d: %s\n", id, name)
			return nil
		})
	},
}

var projectListCmd = &cobra.Command{
	Use:   "list",
	Short: "List projects",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.VideoFlowApp) error {
			projects, err := a.Repos().Projects.GetAll(ctx)
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(projects))
			for _, p := range projects {
				rows = append(rows, []string{fmt.Sprint(p.ID), p.Name, formatTime(p.CreatedAt), formatTime(p.UpdatedAt)})
			}
			printTable(cmd.OutOrStdout(), []string{"ID", "Name", "Created", "Updated"}, rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft})
			return nil
		})
	},
}

var projectShowCmd = &cobra.Command{
	Use:   "show PROJECT",
	Short: "Show a project with its contents and default models",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID("project", args[0])
		if err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, a *app.VideoFlowApp) error {
			return showProject(ctx, cmd, a.Repos(), id)
		})
	},
}

func showProject(ctx context.Context, cmd *cobra.Command, repos *repository.Repositories, id int64) error {
	p, err := repos.Projects.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if p == nil {
		return &repository.NotFoundError{Entity: "project", ID: id}
	}

	boards, err := repos.Storyboards.GetByProjectID(ctx, id)
	if err != nil {
		return err
	}
	scenes, err := repos.Scenes.GetByProjectID(ctx, id)
	if err != nil {
		return err
	}
	cast, err := repos.Characters.GetByProjectID(ctx, id)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Project %d: %s\n", p.ID, p.Name)
	fmt.Fprintf(out, "Created:     %s\n", formatTime(p.CreatedAt))
	fmt.Fprintf(out, "Updated:     %s\n", formatTime(p.UpdatedAt))
	fmt.Fprintf(out, "Storyboards: %d\n", len(boards))
	fmt.Fprintf(out, "Scenes:      %d\n", len(scenes))
	fmt.Fprintf(out, "Characters:  %d\n", len(cast))
	fmt.Fprintln(out)

	var rows [][]string
	for _, kind := range model.ModelKinds {
		models, err := repos.Models(kind).GetByProjectID(ctx, id)
		if err != nil {
			return err
		}
		def := "-"
		for _, m := range models {
			if m.IsDefault {
				def = fmt.Sprintf("%s (%d)", m.Name, m.ID)
			}
		}
		rows = append(rows, []string{string(kind), fmt.Sprint(len(models)), def})
	}
	printTable(out, []string{"Kind", "Models", "Default"}, rows, []columnAlignment{alignLeft, alignRight, alignLeft})
	return nil
}

var projectRenameCmd = &cobra.Command{
	Use:   "rename PROJECT NAME",
	Short: "Rename a project",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID("project", args[0])
		if err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, a *app.VideoFlowApp) error {
			if err := a.Repos().Projects.Update(ctx, id, model.ProjectPatch{Name: model.Set(args[1])}); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Renamed project %d to %s\n", id, args[1])
			return nil
		})
	},
}

var projectDeleteCmd = &cobra.Command{
	Use:   "delete PROJECT",
	Short: "Delete a project and everything it owns",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID("project", args[0])
		if err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, a *app.VideoFlowApp) error {
			if err := a.Repos().Projects.Delete(ctx, id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted project %d\n", id)
			return nil
		})
	},
}

var importCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Create a project from a YAML document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := importer.LoadFile(args[0])
		if err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, a *app.VideoFlowApp) error {
			res, err := a.Importer().Import(ctx, doc)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(),
				"Imported project %d: %d storyboards, %d dialogue lines, %d scenes, %d characters, %d models\n",
				res.ProjectID, res.Storyboards, res.Dialogues, res.Scenes, res.Characters, res.Models)
			return nil
		})
	},
}

var exportCmd = &cobra.Command{
	Use:   "export PROJECT",
	Short: "Write a project as a YAML document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID("project", args[0])
		if err != nil {
			return err
		}
		output, _ := cmd.Flags().GetString("output")

		return withApp(cmd, func(ctx context.Context, a *app.VideoFlowApp) error {
			doc, err := a.Importer().Export(ctx, id)
			if err != nil {
				return err
			}
			if output == "" || output == "-" {
				return doc.Encode(cmd.OutOrStdout())
			}

			f, err := os.OpenFile(output, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
			if err != nil {
				return fmt.Errorf("creating %s: %w", output, err)
			}
			if err := doc.Encode(f); err != nil {
				f.Close()
				return fmt.Errorf("writing %s: %w", output, err)
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("writing %s: %w", output, err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Exported project %d to %s\n", id, output)
			return nil
		})
	},
}

func init() {
	exportCmd.Flags().StringP("output", "o", "", "Write to file instead of stdout (must not exist)")

	projectCmd.AddCommand(projectCreateCmd)
	projectCmd.AddCommand(projectListCmd)
	projectCmd.AddCommand(projectShowCmd)
	projectCmd.AddCommand(projectRenameCmd)
	projectCmd.AddCommand(projectDeleteCmd)
}
