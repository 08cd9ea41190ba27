package tempkeeper

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync/atomic"

	"tempkeeper/internal/fsops"
	"tempkeeper/internal/metrics"
	"tempkeeper/internal/namegen"
)

// File is a handle to a temporary file. The path is fixed at construction;
// the deletion responsibility is carried by the handle itself, so no global
// registry of tracked paths exists.
//
// A handle must not be used from multiple goroutines without external
// synchronization.
type File struct {
	f         *os.File
	path      string
	ownership Ownership
	mode      AccessMode
	consumed  atomic.Bool
}

// New creates a temporary file with a generated name in the default
// temporary directory and returns an Owned handle for it.
func New(ctx context.Context) (*File, error) {
	return NewIn(ctx, os.TempDir())
}

// NewIn creates a temporary file with a generated name in dir. The
// directory must already exist.
func NewIn(ctx context.Context, dir string) (*File, error) {
	return createFile(ctx, dir, namegen.File, namegen.MaxAttempts)
}

// NewWithUUID creates a temporary file named with a UUID-v4 suffix in the
// default temporary directory.
func NewWithUUID(ctx context.Context) (*File, error) {
	return NewWithUUIDIn(ctx, os.TempDir())
}

// NewWithUUIDIn creates a temporary file named with a UUID-v4 suffix in dir.
func NewWithUUIDIn(ctx context.Context, dir string) (*File, error) {
	return createFile(ctx, dir, namegen.FileUUID, 1)
}

// NewNamed creates a temporary file with the exact name given. An empty dir
// means the default temporary directory. The name must be a bare file name
// without path separators. If the target already exists the call fails with
// an error wrapping fs.ErrExist; use FromExisting to adopt an existing
// path instead.
func NewNamed(ctx context.Context, dir, name string) (*File, error) {
	if dir == "" {
		dir = os.TempDir()
	}
	if err := validateName(name); err != nil {
		return nil, err
	}
	return createFile(ctx, dir, func() string { return name }, 1)
}

// FromExisting wraps a file that already exists on disk; it never creates
// one. The caller chooses whether the returned handle takes over deletion
// responsibility. Fails with ErrNotFound if the path is absent or not a
// regular file.
func FromExisting(ctx context.Context, path string, ownership Ownership) (*File, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, ErrNotFound)
	}
	info, err := os.Stat(abs)
	if err != nil || !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%s: %w", path, ErrNotFound)
	}
	f, err := os.OpenFile(abs, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", abs, err)
	}
	return newFile(f, abs, ownership, ReadWrite), nil
}

func createFile(ctx context.Context, dir string, next func() string, attempts int) (*File, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	dir, err := checkDir(dir)
	if err != nil {
		return nil, err
	}
	for i := 0; i < attempts; i++ {
		path := filepath.Join(dir, next())
		f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o600)
		if err != nil {
			if errors.Is(err, fs.ErrExist) && attempts > 1 {
				metrics.NameCollisionsTotal.Inc()
				continue
			}
			return nil, fmt.Errorf("create %s: %w", path, err)
		}
		if err := ctx.Err(); err != nil {
			// The caller gave up before the handle was handed over, so
			// no owner exists; remove the file rather than orphan it.
			f.Close()
			os.Remove(path)
			return nil, err
		}
		metrics.FilesCreatedTotal.Inc()
		return newFile(f, path, Owned, ReadWrite), nil
	}
	return nil, fmt.Errorf("%d attempts in %s: %w", attempts, dir, ErrNameExhausted)
}

func newFile(f *os.File, path string, ownership Ownership, mode AccessMode) *File {
	h := &File{f: f, path: path, ownership: ownership, mode: mode}
	runtime.SetFinalizer(h, (*File).finalize)
	return h
}

func checkDir(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("%s: %w", dir, ErrInvalidDirectory)
	}
	info, err := os.Stat(abs)
	if err != nil || !info.IsDir() {
		return "", fmt.Errorf("%s: %w", dir, ErrInvalidDirectory)
	}
	return abs, nil
}

func validateName(name string) error {
	if name == "" || name == "." || name == ".." || name != filepath.Base(name) ||
		strings.ContainsRune(name, '/') || strings.ContainsRune(name, os.PathSeparator) {
		return fmt.Errorf("%q: %w", name, ErrInvalidName)
	}
	return nil
}

// Path returns the absolute path of the underlying file.
func (h *File) Path() string { return h.path }

// Ownership reports whether this handle deletes the file on close.
func (h *File) Ownership() Ownership { return h.ownership }

// AccessMode reports how the underlying descriptor was opened.
func (h *File) AccessMode() AccessMode { return h.mode }

// OpenReadWrite opens an additional read-write handle to the same path.
// The returned handle is always Borrowed; closing it leaves the file in
// place and does not affect this handle.
func (h *File) OpenReadWrite(ctx context.Context) (*File, error) {
	return h.reopen(ctx, ReadWrite)
}

// OpenReadOnly opens an additional read-only handle to the same path. The
// file is reopened rather than the descriptor duplicated, so a read-only
// view works even when this handle was opened for writing.
func (h *File) OpenReadOnly(ctx context.Context) (*File, error) {
	return h.reopen(ctx, ReadOnly)
}

func (h *File) reopen(ctx context.Context, mode AccessMode) (*File, error) {
	if h.consumed.Load() {
		return nil, ErrHandleConsumed
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	flag := os.O_RDWR
	if mode == ReadOnly {
		flag = os.O_RDONLY
	}
	f, err := os.OpenFile(h.path, flag, 0)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", h.path, err)
	}
	return newFile(f, h.path, Borrowed, mode), nil
}

func (h *File) Read(p []byte) (int, error) {
	if h.consumed.Load() {
		return 0, ErrHandleConsumed
	}
	return h.f.Read(p)
}

func (h *File) Write(p []byte) (int, error) {
	if h.consumed.Load() {
		return 0, ErrHandleConsumed
	}
	return h.f.Write(p)
}

func (h *File) Seek(offset int64, whence int) (int64, error) {
	if h.consumed.Load() {
		return 0, ErrHandleConsumed
	}
	return h.f.Seek(offset, whence)
}

func (h *File) Sync() error {
	if h.consumed.Load() {
		return ErrHandleConsumed
	}
	return h.f.Sync()
}

// Close releases the handle. For an Owned handle this also removes the file
// from disk. Close cannot report removal failures to anyone, so they are
// swallowed: counted, forwarded to the diagnostics logger, and otherwise
// ignored. Closing an already consumed handle is a no-op.
func (h *File) Close() error {
	if !h.consumed.CompareAndSwap(false, true) {
		return nil
	}
	runtime.SetFinalizer(h, nil)
	if err := h.f.Close(); err != nil {
		diagf("tempkeeper: close %s: %v", h.path, err)
	}
	if h.ownership == Owned {
		removeFileBestEffort(h.path)
	}
	return nil
}

// Delete removes the file and consumes the handle, reporting the outcome.
// A path that is already gone counts as success. After Delete returns nil
// the file is guaranteed to be absent from disk; a later Close performs no
// further filesystem work. A second Delete is rejected with
// ErrHandleConsumed.
func (h *File) Delete(ctx context.Context) error {
	if !h.consumed.CompareAndSwap(false, true) {
		return ErrHandleConsumed
	}
	runtime.SetFinalizer(h, nil)
	if err := h.f.Close(); err != nil {
		diagf("tempkeeper: close %s: %v", h.path, err)
	}
	if err := (fsops.OS{}).Remove(ctx, h.path); err != nil {
		metrics.DeleteErrorsTotal.Inc()
		return fmt.Errorf("delete %s: %w", h.path, err)
	}
	metrics.DeletesTotal.Inc()
	return nil
}

// finalize is the GC fallback for handles that were never closed. A
// finalizer must not block, so the removal is handed to a goroutine and the
// outcome is dropped.
func (h *File) finalize() {
	if !h.consumed.CompareAndSwap(false, true) {
		return
	}
	f, path, owned := h.f, h.path, h.ownership == Owned
	go func() {
		f.Close()
		if owned {
			metrics.FinalizerFallbacksTotal.Inc()
			removeFileBestEffort(path)
		}
	}()
}

func removeFileBestEffort(path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		metrics.ImplicitDeleteErrorsTotal.Inc()
		diagf("tempkeeper: remove %s: %v", path, err)
		return
	}
	metrics.ImplicitDeletesTotal.Inc()
}
