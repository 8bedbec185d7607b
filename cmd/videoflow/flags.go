package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"videoflow/internal/model"

	"github.com/spf13/cobra"
)

func parseID(name, s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s id %q", name, s)
	}
	return id, nil
}

// textFlag turns a string flag into a patch field. An unchanged flag is
// unset and an empty value clears the column.
func textFlag(cmd *cobra.Command, name string) model.Optional[*string] {
	if !cmd.Flags().Changed(name) {
		return model.Optional[*string]{}
	}
	v, _ := cmd.Flags().GetString(name)
	if v == "" {
		return model.Null[string]()
	}
	return model.Text(v)
}

// stringFlag is textFlag for required columns.
func stringFlag(cmd *cobra.Command, name string) model.Optional[string] {
	if !cmd.Flags().Changed(name) {
		return model.Optional[string]{}
	}
	v, _ := cmd.Flags().GetString(name)
	return model.Set(v)
}

func int64Flag(cmd *cobra.Command, name string) model.Optional[int64] {
	if !cmd.Flags().Changed(name) {
		return model.Optional[int64]{}
	}
	v, _ := cmd.Flags().GetInt64(name)
	return model.Set(v)
}

// seqFlag returns the flag value, or nil to append.
func seqFlag(cmd *cobra.Command, name string) *int64 {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, _ := cmd.Flags().GetInt64(name)
	return &v
}

func orDash(s *string) string {
	if s == nil || *s == "" {
		return "-"
	}
	return *s
}

// truncate shortens s to n runes for table cells.
func truncate(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

// maskKey hides all but the last four characters of an API key.
func maskKey(s *string) string {
	if s == nil || *s == "" {
		return "-"
	}
	r := []rune(*s)
	if len(r) <= 4 {
		return "****"
	}
	return "****" + string(r[len(r)-4:])
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}

func formatDuration(seconds *int64) string {
	if seconds == nil {
		return "-"
	}
	return (time.Duration(*seconds) * time.Second).String()
}
