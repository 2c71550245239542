// Package ledger tracks which targets have already been scanned to
// completion, backed by an append-only file.
package ledger

import (
	"errors"
	"fmt"
	"os"

	"github.com/secsweep/secsweep/pkg/shared/files"
)

// Ledger holds the completed-target set. The set only grows: a target marked
// completed is never rescanned for the lifetime of the process.
type Ledger struct {
	path      string
	completed map[string]struct{}
}

// Load reads the ledger file into memory. A missing file means nothing has
// been completed yet.
func Load(path string) (*Ledger, error) {
	l := &Ledger{
		path:      path,
		completed: make(map[string]struct{}),
	}

	targets, err := files.ReadLines(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return l, nil
		}
		return nil, fmt.Errorf("failed to load completed ledger: %w", err)
	}

	for _, target := range targets {
		l.completed[target] = struct{}{}
	}
	return l, nil
}

// Contains reports whether the target has already been completed.
func (l *Ledger) Contains(target string) bool {
	_, ok := l.completed[target]
	return ok
}

// MarkCompleted durably appends the target to the ledger file and adds it to
// the in-memory set. The append failure propagates: losing completion state
// would cause endless rescans.
func (l *Ledger) MarkCompleted(target string) error {
	if err := files.AppendLine(l.path, target); err != nil {
		return fmt.Errorf("failed to record completed target %q: %w", target, err)
	}
	l.completed[target] = struct{}{}
	return nil
}

// Size returns the number of completed targets.
func (l *Ledger) Size() int {
	return len(l.completed)
}
