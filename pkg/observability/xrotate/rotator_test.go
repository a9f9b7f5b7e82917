package xrotate

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLumberjack_Validation(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "app.log")

	tests := []struct {
		name string
		file string
		opts []Option
		want error
	}{
		{"empty filename", "", nil, ErrEmptyFilename},
		{"zero size", file, []Option{WithMaxSize(0)}, ErrInvalidMaxSize},
		{"size too large", file, []Option{WithMaxSize(maxSizeMB + 1)}, ErrInvalidMaxSize},
		{"negative backups", file, []Option{WithMaxBackups(-1)}, ErrInvalidMaxBackups},
		{"negative age", file, []Option{WithMaxAge(-1)}, ErrInvalidMaxAge},
		{"no cleanup policy", file, []Option{WithMaxBackups(0), WithMaxAge(0)}, ErrNoCleanupPolicy},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewLumberjack(tt.file, tt.opts...)
			assert.True(t, errors.Is(err, tt.want), "got %v, want %v", err, tt.want)
		})
	}
}

func TestLumberjack_WriteRotateClose(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "logs")
	file := filepath.Join(dir, "app.log")

	r, err := NewLumberjack(file, WithMaxSize(1), WithCompress(false), WithLocalTime(true), nil)
	require.NoError(t, err)

	n, err := r.Write([]byte("hello\n"))
	require.NoError(t, err)
	assert.Equal(t, 6, n)

	require.NoError(t, r.Rotate())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(entries), 2, "rotate should leave a backup file")

	require.NoError(t, r.Close())
	assert.ErrorIs(t, r.Close(), ErrClosed)

	_, err = r.Write([]byte("late"))
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, r.Rotate(), ErrClosed)
}
