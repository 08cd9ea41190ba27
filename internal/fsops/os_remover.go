package fsops

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// OS implements Remover using real os package calls.
type OS struct{}

func (OS) Remove(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func (OS) RemoveAll(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return os.RemoveAll(path)
}

func (o OS) RemoveTree(ctx context.Context, path string) error {
	var errs []error
	o.removeTree(ctx, path, &errs)
	return errors.Join(errs...)
}

// removeTree deletes children before their parent and keeps going past
// per-entry failures so one unreadable file cannot strand its siblings.
func (o OS) removeTree(ctx context.Context, path string, errs *[]error) {
	if err := ctx.Err(); err != nil {
		*errs = append(*errs, err)
		return
	}

	info, err := os.Lstat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return
	}
	if err != nil {
		*errs = append(*errs, fmt.Errorf("lstat %s: %w", path, err))
		return
	}

	if info.IsDir() {
		entries, err := os.ReadDir(path)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			*errs = append(*errs, fmt.Errorf("read dir %s: %w", path, err))
		}
		for _, entry := range entries {
			o.removeTree(ctx, filepath.Join(path, entry.Name()), errs)
		}
	}

	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		*errs = append(*errs, fmt.Errorf("remove %s: %w", path, err))
	}
}
