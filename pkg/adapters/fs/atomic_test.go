package fs

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteFileAtomic(t *testing.T) {
	t.Run("Creates New File", func(t *testing.T) {
		dir := t.TempDir()
		filename := filepath.Join(dir, "everest.TTNexus.temp")

		require.NoError(t, writeFileAtomic(filename, []byte(`{"Name": "Example"}`), 0644))

		got, err := os.ReadFile(filename)
		require.NoError(t, err)
		assert.Equal(t, `{"Name": "Example"}`, string(got))
	})

	t.Run("Overwrites Existing File", func(t *testing.T) {
		dir := t.TempDir()
		filename := filepath.Join(dir, "everest.yaml")
		require.NoError(t, os.WriteFile(filename, []byte("Name: Old\n"), 0644))

		require.NoError(t, writeFileAtomic(filename, []byte("Name: New\n"), 0644))

		got, err := os.ReadFile(filename)
		require.NoError(t, err)
		assert.Equal(t, "Name: New\n", string(got))
	})

	t.Run("Leaves No Temp Files", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, writeFileAtomic(filepath.Join(dir, "everest.yaml"), []byte("a: 1\n"), 0644))

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		for _, e := range entries {
			assert.False(t, strings.HasPrefix(e.Name(), TempFilePrefix), "leftover %s", e.Name())
		}
		assert.Len(t, entries, 1)
	})

	t.Run("Fails if Directory Missing", func(t *testing.T) {
		filename := filepath.Join(t.TempDir(), "missing_folder", "everest.yaml")
		assert.Error(t, writeFileAtomic(filename, []byte("fail"), 0644))
	})
}

func TestModeOf(t *testing.T) {
	dir := t.TempDir()
	assert.Equal(t, defaultFileMode, modeOf(filepath.Join(dir, "absent")))

	if runtime.GOOS == "windows" {
		t.Skip("permission bits are not preserved on windows")
	}
	filename := filepath.Join(dir, "everest.yaml")
	require.NoError(t, os.WriteFile(filename, []byte("a: 1\n"), 0600))
	require.NoError(t, os.Chmod(filename, 0600))
	assert.Equal(t, os.FileMode(0600), modeOf(filename))
}
