// Package tempkeeper provides temporary files and directories that are
// removed from disk automatically when the handle responsible for them is
// closed, without the caller having to remember the path.
//
// Every handle carries a deletion responsibility. An Owned handle removes
// the underlying path when it is closed or explicitly deleted; a Borrowed
// handle never touches the filesystem on close. Constructors that create a
// new object always return an Owned handle; opening an additional view of
// an existing handle always returns a Borrowed one:
//
//	f, err := tempkeeper.New(ctx)
//	if err != nil {
//		return err
//	}
//	defer f.Close() // removes the file
//
//	ro, err := f.OpenReadOnly(ctx)
//	if err != nil {
//		return err
//	}
//	defer ro.Close() // leaves the file in place
//
// Close is the primary cleanup path and cannot report removal failures;
// those are counted and forwarded to the diagnostics logger instead. Delete
// is the explicit, error-reporting alternative. A GC finalizer acts as a
// last-resort fallback for leaked Owned handles, but like any finalizer it
// is not guaranteed to run before process exit.
package tempkeeper

import (
	"log"
	"sync"
)

// Ownership determines whether a handle is responsible for deleting the
// path it refers to. It is a typed enum rather than a bool so further
// responsibility kinds can be added without changing call sites.
type Ownership int

const (
	// Owned handles remove the underlying path when closed or deleted.
	Owned Ownership = iota
	// Borrowed handles leave the underlying path untouched when closed.
	Borrowed
)

func (o Ownership) String() string {
	switch o {
	case Owned:
		return "owned"
	case Borrowed:
		return "borrowed"
	default:
		return "unknown"
	}
}

// AccessMode describes how a file handle's descriptor was opened. It has no
// influence on deletion behavior.
type AccessMode int

const (
	ReadWrite AccessMode = iota
	ReadOnly
)

func (m AccessMode) String() string {
	if m == ReadOnly {
		return "ro"
	}
	return "rw"
}

var (
	diagMu  sync.RWMutex
	diagLog *log.Logger
)

// SetDiagnosticsLogger installs a logger for failures on cleanup paths that
// cannot report to a caller (Close and finalizers). Passing nil silences
// them again, which is the default.
func SetDiagnosticsLogger(l *log.Logger) {
	diagMu.Lock()
	diagLog = l
	diagMu.Unlock()
}

func diagf(format string, args ...interface{}) {
	diagMu.RLock()
	l := diagLog
	diagMu.RUnlock()
	if l != nil {
		l.Printf(format, args...)
	}
}
