package tempkeeper

import "errors"

var (
	// ErrInvalidDirectory is returned when the target directory is missing
	// or not a directory. Missing parent directories are never created.
	ErrInvalidDirectory = errors.New("invalid or missing directory")

	// ErrInvalidName is returned when a caller-supplied name is empty or
	// contains path separators. Names must be bare file names.
	ErrInvalidName = errors.New("invalid name")

	// ErrNotFound is returned by FromExisting and DirFromExisting when the
	// path is absent from disk or is not the expected kind of object.
	ErrNotFound = errors.New("path does not exist")

	// ErrNameExhausted is returned when generated names kept colliding with
	// existing entries and the retry bound was reached.
	ErrNameExhausted = errors.New("name generation attempts exhausted")

	// ErrHandleConsumed is returned when an operation is attempted on a
	// handle that was already closed or explicitly deleted.
	ErrHandleConsumed = errors.New("handle already consumed")
)
