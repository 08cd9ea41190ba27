package fsops

import "context"

// Remover abstracts filesystem remove operations.
// Enables mocking in tests to prove dry-run never deletes.
type Remover interface {
	// Remove deletes a single file or empty directory. A path that is
	// already gone counts as success.
	Remove(ctx context.Context, path string) error

	// RemoveAll deletes path and everything beneath it, stopping at the
	// first error like os.RemoveAll.
	RemoveAll(ctx context.Context, path string) error

	// RemoveTree deletes path and everything beneath it child-first. A
	// failure on one entry does not abort the rest of the tree; all
	// errors encountered are joined into the returned error.
	RemoveTree(ctx context.Context, path string) error
}
