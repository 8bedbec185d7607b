package main

import (
	"context"
	"fmt"
	"strings"

	"videoflow/internal/app"
	"videoflow/internal/model"
	"videoflow/internal/repository"

	"github.com/spf13/cobra"
)

var videoCmd = &cobra.Command{
	Use:   "video",
	Short: "Manage rendered video files",
}

var videoAddCmd = &cobra.Command{
	Use:   "add TITLE PATH",
	Short: "Register a video file",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		in := model.NewVideo{Title: args[0], Path: args[1]}
		if cmd.Flags().Changed("duration") {
			d, _ := cmd.Flags().GetInt64("duration")
			in.Duration = &d
		}
		tags, _ := cmd.Flags().GetStringSlice("tag")

		return withApp(cmd, func(ctx context.Context, a *app.VideoFlowApp) error {
			id, err := a.Repos().Videos.Create(ctx, in)
			if err != nil {
				return err
			}
			for _, name := range tags {
				if err := attachTag(ctx, a.Repos(), id, name); err != nil {
					return err
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created video %d: %s\n", id, in.Title)
			return nil
		})
	},
}

var videoListCmd = &cobra.Command{
	Use:   "list",
	Short: "List videos with their tags",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.VideoFlowApp) error {
			videos, err := a.Repos().Videos.GetAll(ctx)
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(videos))
			for _, v := range videos {
				tags, err := a.Repos().Tags.GetByVideoID(ctx, v.ID)
				if err != nil {
					return err
				}
				names := make([]string, 0, len(tags))
				for _, t := range tags {
					names = append(names, t.Name)
				}
				rows = append(rows, []string{
					fmt.Sprint(v.ID), v.Title, v.Path, formatDuration(v.Duration), strings.Join(names, ", "),
				})
			}
			printTable(cmd.OutOrStdout(), []string{"ID", "Title", "Path", "Duration", "Tags"}, rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignLeft})
			return nil
		})
	},
}

var videoUpdateCmd = &cobra.Command{
	Use:   "update VIDEO",
	Short: "Change video fields",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID("video", args[0])
		if err != nil {
			return err
		}
		patch := model.VideoPatch{Title: stringFlag(cmd, "title"), Path: stringFlag(cmd, "path")}
		if cmd.Flags().Changed("duration") {
			d, _ := cmd.Flags().GetInt64("duration")
			if d < 0 {
				patch.Duration = model.Null[int64]()
			} else {
				patch.Duration = model.Set(&d)
			}
		}
		if patch.IsEmpty() {
			return fmt.Errorf("nothing to update: pass --title, --path or --duration")
		}
		return withApp(cmd, func(ctx context.Context, a *app.VideoFlowApp) error {
			if err := a.Repos().Videos.Update(ctx, id, patch); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated video %d\n", id)
			return nil
		})
	},
}

var videoDeleteCmd = &cobra.Command{
	Use:   "delete VIDEO",
	Short: "Delete a video record (the file is left alone)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID("video", args[0])
		if err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, a *app.VideoFlowApp) error {
			if err := a.Repos().Videos.Delete(ctx, id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted video %d\n", id)
			return nil
		})
	},
}

var tagCmd = &cobra.Command{
	Use:   "tag",
	Short: "Manage video tags",
}

var tagAddCmd = &cobra.Command{
	Use:   "add NAME",
	Short: "Create a tag (returns the existing one if the name is taken)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.VideoFlowApp) error {
			id, err := a.Repos().Tags.Create(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Tag %d: %s\n", id, strings.TrimSpace(args[0]))
			return nil
		})
	},
}

var tagListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tags (all, or those on --video)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.VideoFlowApp) error {
			var (
				tags []*model.Tag
				err  error
			)
			if cmd.Flags().Changed("video") {
				vid, _ := cmd.Flags().GetInt64("video")
				tags, err = a.Repos().Tags.GetByVideoID(ctx, vid)
			} else {
				tags, err = a.Repos().Tags.GetAll(ctx)
			}
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(tags))
			for _, t := range tags {
				rows = append(rows, []string{fmt.Sprint(t.ID), t.Name})
			}
			printTable(cmd.OutOrStdout(), []string{"ID", "Name"}, rows, []columnAlignment{alignRight, alignLeft})
			return nil
		})
	},
}

var tagAttachCmd = &cobra.Command{
	Use:   "attach VIDEO TAG",
	Short: "Tag a video, creating the tag if needed",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		vid, err := parseID("video", args[0])
		if err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, a *app.VideoFlowApp) error {
			if err := attachTag(ctx, a.Repos(), vid, args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Tagged video %d with %s\n", vid, strings.TrimSpace(args[1]))
			return nil
		})
	},
}

var tagDetachCmd = &cobra.Command{
	Use:   "detach VIDEO TAG",
	Short: "Remove a tag from a video",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		vid, err := parseID("video", args[0])
		if err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, a *app.VideoFlowApp) error {
			t, err := a.Repos().Tags.GetByName(ctx, args[1])
			if err != nil {
				return err
			}
			if t == nil {
				return fmt.Errorf("tag %q: %w", args[1], repository.ErrNotFound)
			}
			if err := a.Repos().Tags.RemoveFromVideo(ctx, vid, t.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s from video %d\n", t.Name, vid)
			return nil
		})
	},
}

var tagDeleteCmd = &cobra.Command{
	Use:   "delete TAG",
	Short: "Delete a tag and remove it from every video",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.VideoFlowApp) error {
			t, err := a.Repos().Tags.GetByName(ctx, args[0])
			if err != nil {
				return err
			}
			if t == nil {
				return fmt.Errorf("tag %q: %w", args[0], repository.ErrNotFound)
			}
			if err := a.Repos().Tags.Delete(ctx, t.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted tag %s\n", t.Name)
			return nil
		})
	},
}

func attachTag(ctx context.Context, repos *repository.Repositories, videoID int64, name string) error {
	tid, err := repos.Tags.Create(ctx, name)
	if err != nil {
		return err
	}
	return repos.Tags.AddToVideo(ctx, videoID, tid)
}

func init() {
	videoAddCmd.Flags().Int64("duration", 0, "Duration in seconds")
	videoAddCmd.Flags().StringSlice("tag", nil, "Tag to attach (repeatable)")
	videoUpdateCmd.Flags().String("title", "", "Video title")
	videoUpdateCmd.Flags().String("path", "", "File path")
	videoUpdateCmd.Flags().Int64("duration", 0, "Duration in seconds (negative clears it)")

	videoCmd.AddCommand(videoAddCmd)
	videoCmd.AddCommand(videoListCmd)
	videoCmd.AddCommand(videoUpdateCmd)
	videoCmd.AddCommand(videoDeleteCmd)

	tagListCmd.Flags().Int64("video", 0, "Only tags on this video")

	tagCmd.AddCommand(tagAddCmd)
	tagCmd.AddCommand(tagListCmd)
	tagCmd.AddCommand(tagAttachCmd)
	tagCmd.AddCommand(tagDetachCmd)
	tagCmd.AddCommand(tagDeleteCmd)
}
