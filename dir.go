package tempkeeper

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sync/atomic"

	"tempkeeper/internal/fsops"
	"tempkeeper/internal/metrics"
	"tempkeeper/internal/namegen"
)

// Dir is a handle to a temporary directory. Deletion applies to the whole
// tree rooted at the path; content underneath is not individually tracked.
type Dir struct {
	path      string
	ownership Ownership
	consumed  atomic.Bool
}

// NewDir creates a temporary directory with a generated name in the default
// temporary directory and returns an Owned handle for it.
func NewDir(ctx context.Context) (*Dir, error) {
	return NewDirIn(ctx, os.TempDir())
}

// NewDirIn creates a temporary directory with a generated name under dir.
func NewDirIn(ctx context.Context, dir string) (*Dir, error) {
	return createDir(ctx, dir, namegen.Dir, namegen.MaxAttempts)
}

// NewDirWithUUID creates a temporary directory named with a UUID-v4 suffix
// in the default temporary directory.
func NewDirWithUUID(ctx context.Context) (*Dir, error) {
	return NewDirWithUUIDIn(ctx, os.TempDir())
}

// NewDirWithUUIDIn creates a temporary directory named with a UUID-v4
// suffix under dir.
func NewDirWithUUIDIn(ctx context.Context, dir string) (*Dir, error) {
	return createDir(ctx, dir, namegen.DirUUID, 1)
}

// NewDirNamed creates a temporary directory with the exact name given. An
// empty dir means the default temporary directory. Fails with an error
// wrapping fs.ErrExist if the target already exists.
func NewDirNamed(ctx context.Context, dir, name string) (*Dir, error) {
	if dir == "" {
		dir = os.TempDir()
	}
	if err := validateName(name); err != nil {
		return nil, err
	}
	return createDir(ctx, dir, func() string { return name }, 1)
}

// DirFromExisting wraps a directory that already exists on disk; it never
// creates one. Fails with ErrNotFound if the path is absent or not a
// directory.
func DirFromExisting(ctx context.Context, path string, ownership Ownership) (*Dir, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, ErrNotFound)
	}
	info, err := os.Stat(abs)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%s: %w", path, ErrNotFound)
	}
	return newDir(abs, ownership), nil
}

func createDir(ctx context.Context, dir string, next func() string, attempts int) (*Dir, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	dir, err := checkDir(dir)
	if err != nil {
		return nil, err
	}
	for i := 0; i < attempts; i++ {
		path := filepath.Join(dir, next())
		if err := os.Mkdir(path, 0o700); err != nil {
			if errors.Is(err, fs.ErrExist) && attempts > 1 {
				metrics.NameCollisionsTotal.Inc()
				continue
			}
			return nil, fmt.Errorf("create %s: %w", path, err)
		}
		if err := ctx.Err(); err != nil {
			os.Remove(path)
			return nil, err
		}
		metrics.DirsCreatedTotal.Inc()
		return newDir(path, Owned), nil
	}
	return nil, fmt.Errorf("%d attempts in %s: %w", attempts, dir, ErrNameExhausted)
}

func newDir(path string, ownership Ownership) *Dir {
	d := &Dir{path: path, ownership: ownership}
	runtime.SetFinalizer(d, (*Dir).finalize)
	return d
}

// Path returns the absolute path of the directory.
func (d *Dir) Path() string { return d.path }

// Ownership reports whether this handle deletes the tree on close.
func (d *Dir) Ownership() Ownership { return d.ownership }

// Open returns an additional Borrowed handle to the same directory. There
// is no descriptor to duplicate, so no filesystem access takes place.
func (d *Dir) Open() (*Dir, error) {
	if d.consumed.Load() {
		return nil, ErrHandleConsumed
	}
	return newDir(d.path, Borrowed), nil
}

// Close releases the handle. For an Owned handle this removes the whole
// tree best-effort; failures are swallowed into the diagnostics channel.
// Closing an already consumed handle is a no-op.
func (d *Dir) Close() error {
	if !d.consumed.CompareAndSwap(false, true) {
		return nil
	}
	runtime.SetFinalizer(d, nil)
	if d.ownership == Owned {
		removeTreeBestEffort(d.path)
	}
	return nil
}

// Delete removes the directory tree and consumes the handle. Descendants
// are removed child-first; a failure on one entry does not stop the rest of
// the tree, and all errors encountered are joined into the returned error.
// A second Delete is rejected with ErrHandleConsumed.
func (d *Dir) Delete(ctx context.Context) error {
	if !d.consumed.CompareAndSwap(false, true) {
		return ErrHandleConsumed
	}
	runtime.SetFinalizer(d, nil)
	if err := (fsops.OS{}).RemoveTree(ctx, d.path); err != nil {
		metrics.DeleteErrorsTotal.Inc()
		return fmt.Errorf("delete %s: %w", d.path, err)
	}
	metrics.DeletesTotal.Inc()
	return nil
}

func (d *Dir) finalize() {
	if !d.consumed.CompareAndSwap(false, true) {
		return
	}
	path, owned := d.path, d.ownership == Owned
	if !owned {
		return
	}
	go func() {
		metrics.FinalizerFallbacksTotal.Inc()
		removeTreeBestEffort(path)
	}()
}

func removeTreeBestEffort(path string) {
	if err := os.RemoveAll(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		metrics.ImplicitDeleteErrorsTotal.Inc()
		diagf("tempkeeper: remove tree %s: %v", path, err)
		return
	}
	metrics.ImplicitDeletesTotal.Inc()
}
