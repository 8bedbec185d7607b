// Package vault stores database snapshots away from the working database.
// Snapshots are opaque named blobs; callers encrypt them first when the
// vault is not trusted.
package vault

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"
)

// ErrNotFound is returned by Get for a snapshot the vault does not hold.
var ErrNotFound = errors.New("snapshot not found")

// Snapshot describes one stored snapshot.
type Snapshot struct {
	Name    string
	Size    int64
	ModTime time.Time
}

// Vault is a named snapshot store.
type Vault interface {
	// Name returns the configured vault name.
	Name() string

	// Put stores a snapshot. size is the number of bytes that will be read
	// from r. Existing snapshots are never overwritten.
	Put(ctx context.Context, name string, r io.Reader, size int64) error

	// Get writes the snapshot to w.
	Get(ctx context.Context, name string, w io.Writer) error

	// List returns every snapshot, newest first.
	List(ctx context.Context) ([]Snapshot, error)

	// ValidateSetup verifies that the vault is reachable.
	ValidateSetup(ctx context.Context) error
}

func validName(name string) error {
	if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." || strings.HasPrefix(name, ".") {
		return fmt.Errorf("invalid snapshot name %q", name)
	}
	return nil
}

func sortNewestFirst(s []Snapshot) {
	sort.Slice(s, func(i, j int) bool {
		if !s[i].ModTime.Equal(s[j].ModTime) {
			return s[i].ModTime.After(s[j].ModTime)
		}
		return s[i].Name > s[j].Name
	})
}
