package main

import (
	"context"
	"fmt"

	"videoflow/internal/app"
	"videoflow/internal/model"

	"github.com/spf13/cobra"
)

var dialogueCmd = &cobra.Command{
	Use:   "dialogue",
	Short: "Manage the dialogue lines of a storyboard",
}

var dialogueAddCmd = &cobra.Command{
	Use:   "add STORYBOARD CONTENT",
	Short: "Add a dialogue line (appended unless --seq is given)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		sid, err := parseID("storyboard", args[0])
		if err != nil {
			return err
		}
		character, _ := cmd.Flags().GetString("character")
		tone, _ := cmd.Flags().GetString("tone")

		return withApp(cmd, func(ctx context.Context, a *app.VideoFlowApp) error {
			id, err := a.Repos().Dialogues.Create(ctx, model.NewDialogue{
				StoryboardID:   sid,
				Content:        args[1],
				Character:      character,
				Tone:           tone,
				SequenceNumber: seqFlag(cmd, "seq"),
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created dialogue %d\n", id)
			return nil
		})
	},
}

var dialogueListCmd = &cobra.Command{
	Use:   "list STORYBOARD",
	Short: "List dialogue lines in sequence order",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sid, err := parseID("storyboard", args[0])
		if err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, a *app.VideoFlowApp) error {
			lines, err := a.Repos().Dialogues.GetByStoryboardID(ctx, sid)
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(lines))
			for _, dl := range lines {
				rows = append(rows, []string{
					fmt.Sprint(dl.SequenceNumber),
					fmt.Sprint(dl.ID),
					orDash(dl.Character),
					orDash(dl.Tone),
					truncate(dl.Content, 60),
				})
			}
			printTable(cmd.OutOrStdout(), []string{"Seq", "ID", "Character", "Tone", "Content"}, rows,
				[]columnAlignment{alignRight, alignRight, alignLeft, alignLeft, alignLeft})
			return nil
		})
	},
}

var dialogueUpdateCmd = &cobra.Command{
	Use:   "update DIALOGUE",
	Short: "Change dialogue fields (an empty value clears character or tone)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID("dialogue", args[0])
		if err != nil {
			return err
		}
		patch := model.DialoguePatch{
			Content:        stringFlag(cmd, "content"),
			Character:      textFlag(cmd, "character"),
			Tone:           textFlag(cmd, "tone"),
			SequenceNumber: int64Flag(cmd, "seq"),
		}
		if patch.IsEmpty() {
			return fmt.Errorf("nothing to update: pass --content, --character, --tone or --seq")
		}
		return withApp(cmd, func(ctx context.Context, a *app.VideoFlowApp) error {
			if err := a.Repos().Dialogues.Update(ctx, id, patch); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated dialogue %d\n", id)
			return nil
		})
	},
}

var dialogueMoveCmd = &cobra.Command{
	Use:   "move DIALOGUE POSITION",
	Short: "Move a line to a 1-based position and renumber the storyboard",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID("dialogue", args[0])
		if err != nil {
			return err
		}
		pos, err := parsePosition(args[1])
		if err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, a *app.VideoFlowApp) error {
			batch, err := a.Repos().Dialogues.Move(ctx, id, pos)
			if err != nil {
				return err
			}
			printRenumbered(cmd.OutOrStdout(), "dialogue", batch)
			return nil
		})
	},
}

var dialogueCompactCmd = &cobra.Command{
	Use:   "compact STORYBOARD",
	Short: "Renumber dialogue lines to 1..n keeping their order",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sid, err := parseID("storyboard", args[0])
		if err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, a *app.VideoFlowApp) error {
			batch, err := a.Repos().Dialogues.Compact(ctx, sid)
			if err != nil {
				return err
			}
			printRenumbered(cmd.OutOrStdout(), "dialogue", batch)
			return nil
		})
	},
}

var dialogueDeleteCmd = &cobra.Command{
	Use:   "delete DIALOGUE",
	Short: "Delete a dialogue line",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID("dialogue", args[0])
		if err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, a *app.VideoFlowApp) error {
			if err := a.Repos().Dialogues.Delete(ctx, id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted dialogue %d\n", id)
			return nil
		})
	},
}

func init() {
	dialogueAddCmd.Flags().Int64("seq", 0, "Sequence number (default: after the last line)")
	dialogueAddCmd.Flags().StringP("character", "c", "", "Speaking character")
	dialogueAddCmd.Flags().StringP("tone", "t", "", "Delivery tone")

	dialogueUpdateCmd.Flags().String("content", "", "Spoken content")
	dialogueUpdateCmd.Flags().StringP("character", "c", "", "Speaking character")
	dialogueUpdateCmd.Flags().StringP("tone", "t", "", "Delivery tone")
	dialogueUpdateCmd.Flags().Int64("seq", 0, "Sequence number")

	dialogueCmd.AddCommand(dialogueAddCmd)
	dialogueCmd.AddCommand(dialogueListCmd)
	dialogueCmd.AddCommand(dialogueUpdateCmd)
	dialogueCmd.AddCommand(dialogueMoveCmd)
	dialogueCmd.AddCommand(dialogueCompactCmd)
	dialogueCmd.AddCommand(dialogueDeleteCmd)
}
