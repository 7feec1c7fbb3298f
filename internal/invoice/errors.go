package invoice

import (
	"errors"
	"fmt"
)

// Sentinel errors shared across the lifecycle packages. Callers match
// them with errors.Is through any number of wrapping layers.
var (
	// ErrNotFound indicates the requested invoice record does not exist.
	ErrNotFound = errors.New("invoice not found")

	// ErrIllegalTransition indicates a (status, event) pair outside the
	// legality table.
	ErrIllegalTransition = errors.New("illegal status transition")

	// ErrUnknownStatus indicates a status string outside the enum.
	ErrUnknownStatus = errors.New("unknown invoice status")

	// ErrVersionConflict indicates an optimistic-concurrency update lost
	// the race: the persisted version no longer matches the one read.
	ErrVersionConflict = errors.New("invoice version conflict")

	// ErrArtifactIntegrity indicates a record exists but its artifact is
	// missing from the blob store. Distinct from ErrNotFound so callers
	// can tell data corruption from a bad id.
	ErrArtifactIntegrity = errors.New("invoice artifact missing")
)

// ValidationError reports a rejected creation request. It never reaches
// storage: validation runs before any render or write.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// GenerationError is the aggregate failure of the create pipeline. It
// wraps whichever stage failed (render, artifact store, record persist).
type GenerationError struct {
	Client string
	Err    error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generate invoice for %q: %v", e.Client, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}
