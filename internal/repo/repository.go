package repo

import (
	"context"

	"github.com/hamed0406/sitecheck/internal/checker"
)

// CheckStore tracks handles in memory so front ends can look them up by ID.
// Nothing is persisted.
type CheckStore interface {
	Put(ctx context.Context, h *checker.Handle) error
	// Get returns nil, nil if the ID is unknown.
	Get(ctx context.Context, id string) (*checker.Handle, error)
	// List returns handles oldest first.
	List(ctx context.Context) ([]*checker.Handle, error)
	// Delete forgets id; unknown IDs are not an error.
	Delete(ctx context.Context, id string) error
}
