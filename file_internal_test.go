package tempkeeper

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tempkeeper/internal/metrics"
	"tempkeeper/internal/namegen"
)

func TestCreateFileExhaustsBoundedRetries(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	taken := filepath.Join(dir, "taken")
	require.NoError(t, os.WriteFile(taken, []byte("occupied"), 0o600))

	before := testutil.ToFloat64(metrics.NameCollisionsTotal)

	calls := 0
	_, err := createFile(ctx, dir, func() string {
		calls++
		return "taken"
	}, namegen.MaxAttempts)

	require.ErrorIs(t, err, ErrNameExhausted)
	assert.Equal(t, namegen.MaxAttempts, calls, "every bounded attempt must consult the generator")
	assert.Equal(t, float64(namegen.MaxAttempts),
		testutil.ToFloat64(metrics.NameCollisionsTotal)-before,
		"each collision must be counted")

	// The occupant is never touched.
	data, readErr := os.ReadFile(taken)
	require.NoError(t, readErr)
	assert.Equal(t, "occupied", string(data))
}

func TestCreateDirExhaustsBoundedRetries(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	require.NoError(t, os.Mkdir(filepath.Join(dir, "taken"), 0o700))

	calls := 0
	_, err := createDir(ctx, dir, func() string {
		calls++
		return "taken"
	}, namegen.MaxAttempts)

	require.ErrorIs(t, err, ErrNameExhausted)
	assert.Equal(t, namegen.MaxAttempts, calls)
}
