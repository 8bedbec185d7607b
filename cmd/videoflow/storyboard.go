package main

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"videoflow/internal/app"
	"videoflow/internal/model"
	"videoflow/internal/ordering"

	"github.com/spf13/cobra"
)

var storyboardCmd = &cobra.Command{
	Use:     "storyboard",
	Aliases: []string{"sb"},
	Short:   "Manage the ordered storyboards of a project",
}

var storyboardAddCmd = &cobra.Command{
	Use:   "add PROJECT",
	Short: "Add a storyboard (appended unless --seq is given)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pid, err := parseID("project", args[0])
		if err != nil {
			return err
		}
		description, _ := cmd.Flags().GetString("description")
		prompt, _ := cmd.Flags().GetString("prompt")

		return withApp(cmd, func(ctx context.Context, a *app.VideoFlowApp) error {
			id, err := a.Repos().Storyboards.Create(ctx, model.NewStoryboard{
				ProjectID:      pid,
				SequenceNumber: seqFlag(cmd, "seq"),
				Description:    description,
				ImagePrompt:    prompt,
			})
			if err != nil {
				return err
			}
			sb, err := a.Repos().Storyboards.GetByID(ctx, id)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created storyboard %d at position %d\n", id, sb.SequenceNumber)
			return nil
		})
	},
}

var storyboardListCmd = &cobra.Command{
	Use:   "list PROJECT",
	Short: "List storyboards in sequence order",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pid, err := parseID("project", args[0])
		if err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, a *app.VideoFlowApp) error {
			boards, err := a.Repos().Storyboards.GetByProjectID(ctx, pid)
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(boards))
			for _, sb := range boards {
				rows = append(rows, []string{
					fmt.Sprint(sb.SequenceNumber),
					fmt.Sprint(sb.ID),
					truncate(orDash(sb.Description), 48),
					truncate(orDash(sb.ImagePrompt), 48),
				})
			}
			printTable(cmd.OutOrStdout(), []string{"Seq", "ID", "Description", "Image Prompt"}, rows,
				[]columnAlignment{alignRight, alignRight, alignLeft, alignLeft})
			return nil
		})
	},
}

var storyboardUpdateCmd = &cobra.Command{
	Use:   "update STORYBOARD",
	Short: "Change storyboard fields (an empty value clears a field)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID("storyboard", args[0])
		if err != nil {
			return err
		}
		patch := model.StoryboardPatch{
			SequenceNumber: int64Flag(cmd, "seq"),
			Description:    textFlag(cmd, "description"),
			ImagePrompt:    textFlag(cmd, "prompt"),
		}
		if patch.IsEmpty() {
			return fmt.Errorf("nothing to update: pass --seq, --description or --prompt")
		}
		return withApp(cmd, func(ctx context.Context, a *app.VideoFlowApp) error {
			if err := a.Repos().Storyboards.Update(ctx, id, patch); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated storyboard %d\n", id)
			return nil
		})
	},
}

var storyboardMoveCmd = &cobra.Command{
	Use:   "move STORYBOARD POSITION",
	Short: "Move a storyboard to a 1-based position and renumber the project",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID("storyboard", args[0])
		if err != nil {
			return err
		}
		pos, err := parsePosition(args[1])
		if err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, a *app.VideoFlowApp) error {
			batch, err := a.Repos().Storyboards.Move(ctx, id, pos)
			if err != nil {
				return err
			}
			printRenumbered(cmd.OutOrStdout(), "storyboard", batch)
			return nil
		})
	},
}

var storyboardCompactCmd = &cobra.Command{
	Use:   "compact PROJECT",
	Short: "Renumber storyboards to 1..n keeping their order",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pid, err := parseID("project", args[0])
		if err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, a *app.VideoFlowApp) error {
			batch, err := a.Repos().Storyboards.Compact(ctx, pid)
			if err != nil {
				return err
			}
			printRenumbered(cmd.OutOrStdout(), "storyboard", batch)
			return nil
		})
	},
}

var storyboardDeleteCmd = &cobra.Command{
	Use:   "delete STORYBOARD",
	Short: "Delete a storyboard and its dialogue",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID("storyboard", args[0])
		if err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, a *app.VideoFlowApp) error {
			if err := a.Repos().Storyboards.Delete(ctx, id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted storyboard %d\n", id)
			return nil
		})
	},
}

func parsePosition(s string) (int, error) {
	pos, err := strconv.Atoi(s)
	if err != nil || pos < 1 {
		return 0, fmt.Errorf("invalid position %q: must be 1 or greater", s)
	}
	return pos, nil
}

func printRenumbered(w io.Writer, entity string, batch []ordering.Assignment) {
	if len(batch) == 0 {
		fmt.Fprintf(w, "No %s renumbered\n", entity)
		return
	}
	for _, as := range batch {
		fmt.Fprintf(w, "%s %d -> %d\n", entity, as.ID, as.SequenceNumber)
	}
}

func init() {
	storyboardAddCmd.Flags().Int64("seq", 0, "Sequence number (default: after the last storyboard)")
	storyboardAddCmd.Flags().StringP("description", "d", "", "Shot description")
	storyboardAddCmd.Flags().StringP("prompt", "p", "", "Image generation prompt")

	storyboardUpdateCmd.Flags().Int64("seq", 0, "Sequence number")
	storyboardUpdateCmd.Flags().StringP("description", "d", "", "Shot description")
	storyboardUpdateCmd.Flags().StringP("prompt", "p", "", "Image generation prompt")

	storyboardCmd.AddCommand(storyboardAddCmd)
	storyboardCmd.AddCommand(storyboardListCmd)
	storyboardCmd.AddCommand(storyboardUpdateCmd)
	storyboardCmd.AddCommand(storyboardMoveCmd)
	storyboardCmd.AddCommand(storyboardCompactCmd)
	storyboardCmd.AddCommand(storyboardDeleteCmd)
}
