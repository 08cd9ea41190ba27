package tempkeeper_test

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tempkeeper"
)

func TestNewDirCreatesAndCloseRemoves(t *testing.T) {
	ctx := context.Background()

	d, err := tempkeeper.NewDirIn(ctx, t.TempDir())
	require.NoError(t, err)

	info, err := os.Stat(d.Path())
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	name := filepath.Base(d.Path())
	assert.True(t, strings.HasPrefix(name, "atmp_"))
	assert.False(t, strings.HasSuffix(name, ".tmp"), "directory names carry no extension")

	require.NoError(t, d.Close())
	_, err = os.Stat(d.Path())
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestDirDeleteIsRecursive(t *testing.T) {
	ctx := context.Background()

	d, err := tempkeeper.NewDirIn(ctx, t.TempDir())
	require.NoError(t, err)

	// Build a small tree underneath the handle's root.
	nested := filepath.Join(d.Path(), "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(d.Path(), "top.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(nested, "deep.txt"), []byte("y"), 0o644))

	require.NoError(t, d.Delete(ctx))

	_, err = os.Stat(d.Path())
	assert.True(t, errors.Is(err, fs.ErrNotExist), "whole tree must be gone after Delete")

	assert.ErrorIs(t, d.Delete(ctx), tempkeeper.ErrHandleConsumed)
}

func TestDirDeleteContinuesPastFailures(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission checks do not apply to root")
	}
	ctx := context.Background()

	d, err := tempkeeper.NewDirIn(ctx, t.TempDir())
	require.NoError(t, err)

	// A read-only subdirectory blocks unlinking its contents; the sibling
	// next to it must still be removed and the failure reported.
	locked := filepath.Join(d.Path(), "locked")
	require.NoError(t, os.Mkdir(locked, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(locked, "blocked.txt"), []byte("x"), 0o644))
	sibling := filepath.Join(d.Path(), "sibling.txt")
	require.NoError(t, os.WriteFile(sibling, []byte("y"), 0o644))

	require.NoError(t, os.Chmod(locked, 0o555))
	t.Cleanup(func() { os.Chmod(locked, 0o755) })

	err = d.Delete(ctx)
	require.Error(t, err, "blocked entries must surface through the explicit protocol")

	_, statErr := os.Stat(sibling)
	assert.True(t, errors.Is(statErr, fs.ErrNotExist), "sibling must be removed despite the failure")
	_, statErr = os.Stat(locked)
	assert.NoError(t, statErr, "the blocked directory remains in place")
}

func TestDirBorrowerDoesNotRemove(t *testing.T) {
	ctx := context.Background()

	owner, err := tempkeeper.NewDirIn(ctx, t.TempDir())
	require.NoError(t, err)

	borrower, err := owner.Open()
	require.NoError(t, err)
	assert.Equal(t, owner.Path(), borrower.Path())
	assert.Equal(t, tempkeeper.Borrowed, borrower.Ownership())

	require.NoError(t, borrower.Close())
	_, err = os.Stat(owner.Path())
	require.NoError(t, err)

	require.NoError(t, owner.Close())
	_, err = os.Stat(owner.Path())
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestDirFromExisting(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	borrowed, err := tempkeeper.DirFromExisting(ctx, dir, tempkeeper.Borrowed)
	require.NoError(t, err)
	require.NoError(t, borrowed.Close())
	_, err = os.Stat(dir)
	require.NoError(t, err, "borrowed directory must survive close")

	_, err = tempkeeper.DirFromExisting(ctx, filepath.Join(dir, "missing"), tempkeeper.Borrowed)
	assert.ErrorIs(t, err, tempkeeper.ErrNotFound)

	// A regular file is not a valid directory target.
	path := filepath.Join(dir, "plain")
	require.NoError(t, os.WriteFile(path, nil, 0o600))
	_, err = tempkeeper.DirFromExisting(ctx, path, tempkeeper.Borrowed)
	assert.ErrorIs(t, err, tempkeeper.ErrNotFound)
}

func TestNewDirNamedCollision(t *testing.T) {
	ctx := context.Background()
	parent := t.TempDir()

	d, err := tempkeeper.NewDirNamed(ctx, parent, "fixed")
	require.NoError(t, err)
	defer d.Close()

	_, err = tempkeeper.NewDirNamed(ctx, parent, "fixed")
	assert.ErrorIs(t, err, fs.ErrExist)
}

func TestDirUUIDNaming(t *testing.T) {
	ctx := context.Background()

	d, err := tempkeeper.NewDirWithUUIDIn(ctx, t.TempDir())
	require.NoError(t, err)
	defer d.Close()

	assert.True(t, strings.HasPrefix(filepath.Base(d.Path()), "atmp_"))
}

func TestDirOpenAfterConsumed(t *testing.T) {
	ctx := context.Background()

	d, err := tempkeeper.NewDirIn(ctx, t.TempDir())
	require.NoError(t, err)
	require.NoError(t, d.Close())

	_, err = d.Open()
	assert.ErrorIs(t, err, tempkeeper.ErrHandleConsumed)
}
