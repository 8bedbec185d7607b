package main

import (
	"context"
	"fmt"
	"sort"

	"videoflow/internal/app"
	"videoflow/internal/repository"

	"github.com/spf13/cobra"
)

var sqlCmd = &cobra.Command{
	Use:   "sql",
	Short: "Run raw SQL against the project database",
}

var sqlQueryCmd = &cobra.Command{
	Use:   "query SQL [ARG...]",
	Short: "Run a statement that returns rows; ARGs bind to ? placeholders",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.VideoFlowApp) error {
			rows, err := a.Repos().Query.ExecuteSQL(ctx, args[0], bindArgs(args[1:])...)
			if err != nil {
				return err
			}
			headers := rowColumns(rows)
			cells := make([][]string, 0, len(rows))
			for _, r := range rows {
				line := make([]string, len(headers))
				for i, h := range headers {
					if v := r[h]; v != nil {
						line[i] = fmt.Sprint(v)
					} else {
						line[i] = "NULL"
					}
				}
				cells = append(cells, line)
			}
			printTable(cmd.OutOrStdout(), headers, cells, nil)
			return nil
		})
	},
}

var sqlExecCmd = &cobra.Command{
	Use:   "exec SQL [ARG...]",
	Short: "Run a statement that returns no rows; ARGs bind to ? placeholders",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.VideoFlowApp) error {
			res, err := a.Repos().Query.ExecuteCommand(ctx, args[0], bindArgs(args[1:])...)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Rows affected: %d, last insert id: %d\n", res.RowsAffected, res.LastInsertID)
			return nil
		})
	},
}

func bindArgs(args []string) []any {
	out := make([]any, len(args))
	for i, a := range args {
		out[i] = a
	}
	return out
}

// rowColumns returns the column names shared by the rows, sorted. Rows are
// maps, so the statement's column order is not available.
func rowColumns(rows []repository.Row) []string {
	seen := map[string]bool{}
	var cols []string
	for _, r := range rows {
		for k := range r {
			if !seen[k] {
				seen[k] = true
				cols = append(cols, k)
			}
		}
	}
	sort.Strings(cols)
	return cols
}

func init() {
	sqlCmd.AddCommand(sqlQueryCmd)
	sqlCmd.AddCommand(sqlExecCmd)
}
