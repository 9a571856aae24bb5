package platform

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	fsadapter "github.com/daxaroodles/ttnexus/pkg/adapters/fs"
	"github.com/daxaroodles/ttnexus/pkg/core"
	"github.com/daxaroodles/ttnexus/pkg/deps"
)

func newTestApp(t *testing.T, opts ...Option) (*App, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	cfg := Config{
		LogPath: filepath.Join(t.TempDir(), "ttnexuslogs", "error_log.txt"),
		Deps:    deps.Options{Dest: t.TempDir()},
	}
	return New(cfg, append([]Option{WithOutput(&out)}, opts...)...), &out
}

func makeMod(t *testing.T, base, name string, withSource bool) {
	t.Helper()
	dir := filepath.Join(base, core.ModsDirName, name)
	require.NoError(t, os.MkdirAll(dir, 0755))
	if withSource {
		require.NoError(t, os.WriteFile(filepath.Join(dir, core.SourceFileName), []byte("Name: "+name+"\n"), 0644))
	}
}

func TestApp_ForwardMissingBaseLogsOnce(t *testing.T) {
	app, out := newTestApp(t)
	parent := t.TempDir()

	err := app.Forward(context.Background(), core.ModRef{BaseDir: filepath.Join(parent, "nope"), Name: "ExampleMod"})
	assert.Equal(t, core.MissingDirectory, core.KindOf(err))
	assert.Contains(t, out.String(), "Celeste directory does not exist.")

	data, err := os.ReadFile(app.Config.LogPath)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(data), "\n"))
	assert.Contains(t, string(data), "NexusFatality: Celeste directory does not exist.")

	entries, err := os.ReadDir(parent)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestApp_ForwardThenReverse(t *testing.T) {
	app, out := newTestApp(t)
	base := t.TempDir()
	makeMod(t, base, "ExampleMod", true)
	ref := core.ModRef{BaseDir: base, Name: "ExampleMod"}

	require.NoError(t, app.Forward(context.Background(), ref))
	assert.FileExists(t, ref.ArtifactPath())

	require.NoError(t, app.Reverse(context.Background(), ref))
	assert.NoFileExists(t, ref.ArtifactPath())
	assert.NotContains(t, out.String(), "NexusFatality")
	assert.NoFileExists(t, app.Config.LogPath)
}

func TestApp_ListMods(t *testing.T) {
	app, _ := newTestApp(t)
	base := t.TempDir()
	makeMod(t, base, "Zeta", true)
	makeMod(t, base, "Alpha", true)
	makeMod(t, base, "NoSource", false)

	names, err := app.ListMods(base)
	require.NoError(t, err)
	assert.Equal(t, []string{"Alpha", "Zeta"}, names)

	_, err = app.ListMods(t.TempDir())
	assert.Equal(t, core.MissingDirectory, core.KindOf(err))
}

func TestApp_Status(t *testing.T) {
	app, _ := newTestApp(t)
	base := t.TempDir()
	makeMod(t, base, "ExampleMod", true)

	st := app.Status(core.ModRef{BaseDir: base, Name: "ExampleMod"})
	assert.True(t, st.Mod.Source)
	assert.False(t, st.Mod.Artifact)
	assert.Equal(t, app.Config.LogPath, st.LogTo)
	_, ok := st.Bridge.(fsadapter.BridgeState)
	assert.True(t, ok)
}

func TestApp_PublishMetadata(t *testing.T) {
	t.Run("Disabled", func(t *testing.T) {
		app, out := newTestApp(t)
		app.Config.MetadataPath = filepath.Join(t.TempDir(), MetadataFileName)

		require.NoError(t, app.PublishMetadata(Metadata{Version: "0.0.1", Branch: "main"}))
		assert.NoFileExists(t, app.Config.MetadataPath)
		assert.Empty(t, out.String())
	})

	t.Run("Enabled", func(t *testing.T) {
		app, out := newTestApp(t)
		app.Config.WriteMetadata = true
		app.Config.MetadataPath = filepath.Join(t.TempDir(), MetadataFileName)

		require.NoError(t, app.PublishMetadata(Metadata{Version: "0.0.1", Branch: "main"}))
		assert.FileExists(t, app.Config.MetadataPath)
		assert.Contains(t, out.String(), "[CONFIG] TTNexus version written to "+app.Config.MetadataPath)
	})
}

func TestApp_FetchDepsFailure(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer ts.Close()

	app, out := newTestApp(t, WithHTTPClient(ts.Client()))

	_, err := app.FetchDeps(context.Background(), deps.Options{RepoURL: ts.URL + "/owner/TTDependencies"})
	require.Error(t, err)
	assert.Contains(t, out.String(), "HTTP Status: 404")
	assert.FileExists(t, app.Config.LogPath)
}
