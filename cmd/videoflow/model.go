package main

import (
	"context"
	"fmt"

	"videoflow/internal/app"
	"videoflow/internal/database"
	"videoflow/internal/model"
	"videoflow/internal/repository"

	"github.com/spf13/cobra"
)

var modelCmd = &cobra.Command{
	Use:   "model",
	Short: "Manage image, video and lip_sync generation models",
}

// modelRepo resolves the KIND argument.
func modelRepo(a *app.VideoFlowApp, kind string) (*repository.ModelRepository, error) {
	k, err := model.ParseModelKind(kind)
	if err != nil {
		return nil, err
	}
	return a.Repos().Models(k), nil
}

var modelAddCmd = &cobra.Command{
	Use:   "add KIND PROJECT NAME",
	Short: "Register a model on a project",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		pid, err := parseID("project", args[1])
		if err != nil {
			return err
		}
		path, _ := cmd.Flags().GetString("path")
		apiKey, _ := cmd.Flags().GetString("api-key")
		makeDefault, _ := cmd.Flags().GetBool("default")

		return withApp(cmd, func(ctx context.Context, a *app.VideoFlowApp) error {
			kind, err := model.ParseModelKind(args[0])
			if err != nil {
				return err
			}

			var id int64
			if err := a.DB().WithTx(ctx, func(tx *database.DB) error {
				repo := repository.New(tx, a.Logger()).Models(kind)
				created, err := repo.Create(ctx, model.NewModel{ProjectID: pid, Name: args[2], Path: path, APIKey: apiKey})
				if err != nil {
					return err
				}
				id = created
				if makeDefault {
					return repo.SetDefault(ctx, pid, created)
				}
				return nil
			}); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s model %d: %s\n", kind, id, args[2])
			return nil
		})
	},
}

var modelListCmd = &cobra.Command{
	Use:   "list KIND PROJECT",
	Short: "List models of one kind, default first",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		pid, err := parseID("project", args[1])
		if err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, a *app.VideoFlowApp) error {
			repo, err := modelRepo(a, args[0])
			if err != nil {
				return err
			}
			models, err := repo.GetByProjectID(ctx, pid)
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(models))
			for _, m := range models {
				def := ""
				if m.IsDefault {
					def = "*"
				}
				rows = append(rows, []string{fmt.Sprint(m.ID), def, m.Name, orDash(m.Path), maskKey(m.APIKey)})
			}
			printTable(cmd.OutOrStdout(), []string{"ID", "Default", "Name", "Path", "API Key"}, rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft})
			return nil
		})
	},
}

var modelDefaultCmd = &cobra.Command{
	Use:   "default KIND PROJECT MODEL",
	Short: "Make MODEL the project's default for KIND",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		pid, err := parseID("project", args[1])
		if err != nil {
			return err
		}
		mid, err := parseID("model", args[2])
		if err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, a *app.VideoFlowApp) error {
			repo, err := modelRepo(a, args[0])
			if err != nil {
				return err
			}
			if err := repo.SetDefault(ctx, pid, mid); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Default %s model for project %d is now %d\n", repo.Kind(), pid, mid)
			return nil
		})
	},
}

var modelUpdateCmd = &cobra.Command{
	Use:   "update KIND MODEL",
	Short: "Change model fields (an empty value clears path or api key)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID("model", args[1])
		if err != nil {
			return err
		}
		patch := model.ModelPatch{
			Name:   stringFlag(cmd, "name"),
			Path:   textFlag(cmd, "path"),
			APIKey: textFlag(cmd, "api-key"),
		}
		if patch.IsEmpty() {
			return fmt.Errorf("nothing to update: pass --name, --path or --api-key")
		}
		return withApp(cmd, func(ctx context.Context, a *app.VideoFlowApp) error {
			repo, err := modelRepo(a, args[0])
			if err != nil {
				return err
			}
			if err := repo.Update(ctx, id, patch); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated %s model %d\n", repo.Kind(), id)
			return nil
		})
	},
}

var modelDeleteCmd = &cobra.Command{
	Use:   "delete KIND MODEL",
	Short: "Delete a model",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID("model", args[1])
		if err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, a *app.VideoFlowApp) error {
			repo, err := modelRepo(a, args[0])
			if err != nil {
				return err
			}
			if err := repo.Delete(ctx, id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s model %d\n", repo.Kind(), id)
			return nil
		})
	},
}

func init() {
	modelAddCmd.Flags().String("path", "", "Model path or endpoint")
	modelAddCmd.Flags().String("api-key", "", "API key")
	modelAddCmd.Flags().Bool("default", false, "Make this the project's default model")

	modelUpdateCmd.Flags().String("name", "", "Model name")
	modelUpdateCmd.Flags().String("path", "", "Model path or endpoint")
	modelUpdateCmd.Flags().String("api-key", "", "API key")

	modelCmd.AddCommand(modelAddCmd)
	modelCmd.AddCommand(modelListCmd)
	modelCmd.AddCommand(modelDefaultCmd)
	modelCmd.AddCommand(modelUpdateCmd)
	modelCmd.AddCommand(modelDeleteCmd)
}
