package main

import (
	"context"
	"fmt"

	"videoflow/internal/app"
	"videoflow/internal/model"

	"github.com/spf13/cobra"
)

var sceneCmd = &cobra.Command{
	Use:   "scene",
	Short: "Manage project scenes",
}

var sceneAddCmd = &cobra.Command{
	Use:   "add PROJECT NAME",
	Short: "Add a scene",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		pid, err := parseID("project", args[0])
		if err != nil {
			return err
		}
		description, _ := cmd.Flags().GetString("description")
		return withApp(cmd, func(ctx context.Context, a *app.VideoFlowApp) error {
			id, err := a.Repos().Scenes.Create(ctx, model.NewScene{ProjectID: pid, Name: args[1], Description: description})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created scene %d: %s\n", id, args[1])
			return nil
		})
	},
}

var sceneListCmd = &cobra.Command{
	Use:   "list PROJECT",
	Short: "List scenes, newest first",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pid, err := parseID("project", args[0])
		if err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, a *app.VideoFlowApp) error {
			scenes, err := a.Repos().Scenes.GetByProjectID(ctx, pid)
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(scenes))
			for _, s := range scenes {
				rows = append(rows, []string{fmt.Sprint(s.ID), s.Name, truncate(orDash(s.Description), 60)})
			}
			printTable(cmd.OutOrStdout(), []string{"ID", "Name", "Description"}, rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft})
			return nil
		})
	},
}

var sceneUpdateCmd = &cobra.Command{
	Use:   "update SCENE",
	Short: "Change scene fields",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID("scene", args[0])
		if err != nil {
			return err
		}
		patch := model.ScenePatch{Name: stringFlag(cmd, "name"), Description: textFlag(cmd, "description")}
		if patch.IsEmpty() {
			return fmt.Errorf("nothing to update: pass --name or --description")
		}
		return withApp(cmd, func(ctx context.Context, a *app.VideoFlowApp) error {
			if err := a.Repos().Scenes.Update(ctx, id, patch); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated scene %d\n", id)
			return nil
		})
	},
}

var sceneDeleteCmd = &cobra.Command{
	Use:   "delete SCENE",
	Short: "Delete a scene",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID("scene", args[0])
		if err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, a *app.VideoFlowApp) error {
			if err := a.Repos().Scenes.Delete(ctx, id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted scene %d\n", id)
			return nil
		})
	},
}

var characterCmd = &cobra.Command{
	Use:   "character",
	Short: "Manage the project cast",
}

var characterAddCmd = &cobra.Command{
	Use:   "add PROJECT NAME",
	Short: "Add a character",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		pid, err := parseID("project", args[0])
		if err != nil {
			return err
		}
		description, _ := cmd.Flags().GetString("description")
		voice, _ := cmd.Flags().GetString("voice")
		return withApp(cmd, func(ctx context.Context, a *app.VideoFlowApp) error {
			id, err := a.Repos().Characters.Create(ctx, model.NewCharacter{
				ProjectID:   pid,
				Name:        args[1],
				Description: description,
				Voice:       voice,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created character %d: %s\n", id, args[1])
			return nil
		})
	},
}

var characterListCmd = &cobra.Command{
	Use:   "list PROJECT",
	Short: "List characters, newest first",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pid, err := parseID("project", args[0])
		if err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, a *app.VideoFlowApp) error {
			cast, err := a.Repos().Characters.GetByProjectID(ctx, pid)
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(cast))
			for _, c := range cast {
				rows = append(rows, []string{fmt.Sprint(c.ID), c.Name, orDash(c.Voice), truncate(orDash(c.Description), 48)})
			}
			printTable(cmd.OutOrStdout(), []string{"ID", "Name", "Voice", "Description"}, rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft})
			return nil
		})
	},
}

var characterUpdateCmd = &cobra.Command{
	Use:   "update CHARACTER",
	Short: "Change character fields",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID("character", args[0])
		if err != nil {
			return err
		}
		patch := model.CharacterPatch{
			Name:        stringFlag(cmd, "name"),
			Description: textFlag(cmd, "description"),
			Voice:       textFlag(cmd, "voice"),
		}
		if patch.IsEmpty() {
			return fmt.Errorf("nothing to update: pass --name, --description or --voice")
		}
		return withApp(cmd, func(ctx context.Context, a *app.VideoFlowApp) error {
			if err := a.Repos().Characters.Update(ctx, id, patch); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated character %d\n", id)
			return nil
		})
	},
}

var characterDeleteCmd = &cobra.Command{
	Use:   "delete CHARACTER",
	Short: "Delete a character",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID("character", args[0])
		if err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, a *app.VideoFlowApp) error {
			if err := a.Repos().Characters.Delete(ctx, id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted character %d\n", id)
			return nil
		})
	},
}

func init() {
	sceneAddCmd.Flags().StringP("description", "d", "", "Scene description")
	sceneUpdateCmd.Flags().String("name", "", "Scene name")
	sceneUpdateCmd.Flags().StringP("description", "d", "", "Scene description")

	sceneCmd.AddCommand(sceneAddCmd)
	sceneCmd.AddCommand(sceneListCmd)
	sceneCmd.AddCommand(sceneUpdateCmd)
	sceneCmd.AddCommand(sceneDeleteCmd)

	characterAddCmd.Flags().StringP("description", "d", "", "Character description")
	characterAddCmd.Flags().String("voice", "", "Voice identifier")
	characterUpdateCmd.Flags().String("name", "", "Character name")
	characterUpdateCmd.Flags().StringP("description", "d", "", "Character description")
	characterUpdateCmd.Flags().String("voice", "", "Voice identifier")

	characterCmd.AddCommand(characterAddCmd)
	characterCmd.AddCommand(characterListCmd)
	characterCmd.AddCommand(characterUpdateCmd)
	characterCmd.AddCommand(characterDeleteCmd)
}
