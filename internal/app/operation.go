package app

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Clock abstracts time for testability.
type Clock interface {
	Now() time.Time
}

// RealClock uses the system clock.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

// Operation identifies one CLI invocation. Its ID tags every log line the
// invocation writes.
type Operation struct {
	ID        string
	Name      string
	StartedAt time.Time
}

// NewOperation starts an operation named after the CLI command.
func NewOperation(name string, clock Clock) *Operation {
	return &Operation{
		ID:        uuid.NewString(),
		Name:      name,
		StartedAt: clock.Now(),
	}
}

// Elapsed returns the time since the operation started.
func (op *Operation) Elapsed(clock Clock) time.Duration {
	return clock.Now().Sub(op.StartedAt)
}

// DefaultProjectName is the name given to a project created without one:
// the local month and day, written M月D日.
func DefaultProjectName(t time.Time) string {
	return fmt.Sprintf("%d月%d日", int(t.Month()), t.Day())
}
