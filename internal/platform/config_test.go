package platform

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daxaroodles/ttnexus/pkg/deps"
	"github.com/daxaroodles/ttnexus/pkg/report"
)

func TestLoadConfig_Defaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	t.Chdir(t.TempDir())

	v, err := NewViper("")
	require.NoError(t, err)

	cfg, err := LoadConfig(v)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, report.DefaultLogDir, report.DefaultLogFile), cfg.LogPath)
	assert.True(t, cfg.Color)
	assert.True(t, cfg.WriteMetadata)
	assert.Equal(t, MetadataFileName, filepath.Base(cfg.MetadataPath))
	assert.False(t, cfg.SortKeys)
	assert.False(t, cfg.SymmetricChecks)
	assert.Equal(t, deps.DefaultRepoURL, cfg.Deps.RepoURL)
	assert.Equal(t, deps.DefaultBranch, cfg.Deps.Branch)
	assert.Equal(t, deps.DefaultDest, cfg.Deps.Dest)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	logDir := t.TempDir()
	t.Chdir(t.TempDir())
	t.Setenv("TTNEXUS_LOG_DIR", logDir)
	t.Setenv("TTNEXUS_COLOR", "false")
	t.Setenv("TTNEXUS_WRITE_METADATA", "false")
	t.Setenv("TTNEXUS_DEPS_BRANCH", "dev")

	v, err := NewViper("")
	require.NoError(t, err)
	cfg, err := LoadConfig(v)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(logDir, report.DefaultLogFile), cfg.LogPath)
	assert.False(t, cfg.Color)
	assert.False(t, cfg.WriteMetadata)
	assert.Empty(t, cfg.MetadataPath)
	assert.Equal(t, "dev", cfg.Deps.Branch)
}

func TestLoadConfig_File(t *testing.T) {
	dir := t.TempDir()
	cfgFile := filepath.Join(dir, "ttnexus.yaml")
	content := `log_dir: ` + filepath.ToSlash(dir) + `
sort_keys: true
symmetric_checks: true
write_metadata: false
deps:
  repo_url: https://example.com/deps
`
	require.NoError(t, os.WriteFile(cfgFile, []byte(content), 0644))

	v, err := NewViper(cfgFile)
	require.NoError(t, err)
	cfg, err := LoadConfig(v)
	require.NoError(t, err)

	assert.True(t, cfg.SortKeys)
	assert.True(t, cfg.SymmetricChecks)
	assert.Equal(t, "https://example.com/deps", cfg.Deps.RepoURL)
	assert.Equal(t, deps.DefaultBranch, cfg.Deps.Branch)
	assert.Equal(t, filepath.Join(dir, report.DefaultLogFile), cfg.LogPath)
}

func TestNewViper_MissingExplicitFile(t *testing.T) {
	_, err := NewViper(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestWriteMetadata(t *testing.T) {
	path := filepath.Join(t.TempDir(), MetadataFileName)

	require.NoError(t, WriteMetadata(path, Metadata{Version: "0.0.1", Branch: "main"}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{\n    \"version\": \"0.0.1\",\n    \"branch\": \"main\"\n}", string(data))
}
