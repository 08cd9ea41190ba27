// Package namegen produces collision-resistant base names for anonymous
// temporary files and directories.
package namegen

import (
	"math/rand"

	"github.com/google/uuid"
)

const (
	// Prefix is prepended to every generated name so stray temporary
	// objects can be recognized and swept up later.
	Prefix = "atmp_"

	// FileExt is appended to generated file names. Directory names carry
	// no extension.
	FileExt = ".tmp"

	// MaxAttempts bounds how often creation retries with a fresh random
	// name when the generated path already exists. The UUID scheme does
	// not need retries; the shorter random suffix does.
	MaxAttempts = 10

	suffixLen = 12
	chars     = "abcdefghijklmnopqrstuvwxyz0123456789"
)

// File returns a random file name, e.g. "atmp_x7k2mq09fvz1.tmp".
func File() string {
	return Prefix + randomSuffix() + FileExt
}

// Dir returns a random directory name, e.g. "atmp_x7k2mq09fvz1".
func Dir() string {
	return Prefix + randomSuffix()
}

// FileUUID returns a file name with a UUID-v4 suffix. Collisions are
// astronomically unlikely, so callers need no retry loop.
func FileUUID() string {
	return Prefix + uuid.NewString() + FileExt
}

// DirUUID returns a directory name with a UUID-v4 suffix.
func DirUUID() string {
	return Prefix + uuid.NewString()
}

func randomSuffix() string {
	out := make([]byte, suffixLen)
	for i := range out {
		out[i] = chars[rand.Intn(len(chars))]
	}
	return string(out)
}
