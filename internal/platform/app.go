package platform

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path"
	"sort"

	"github.com/bmatcuk/doublestar/v4"

	fsadapter "github.com/daxaroodles/ttnexus/pkg/adapters/fs"
	"github.com/daxaroodles/ttnexus/pkg/core"
	"github.com/daxaroodles/ttnexus/pkg/deps"
	"github.com/daxaroodles/ttnexus/pkg/report"
)

// modsPattern matches every mod that ships a source document.
var modsPattern = path.Join(core.ModsDirName, "*", core.SourceFileName)

// App wires the bridge, the reporter and the fetcher from a Config.
type App struct {
	Config   Config
	Bridge   *fsadapter.Bridge
	Reporter *report.Reporter
	Fetcher  *deps.Fetcher
	logger   *slog.Logger
}

// New builds an App.
func New(cfg Config, opts ...Option) *App {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	logger := o.logger
	if logger == nil {
		logger = slog.Default()
	}

	reporterOpts := []report.Option{
		report.WithColor(cfg.Color),
		report.WithLogPath(cfg.LogPath),
		report.WithLogger(logger),
	}
	if o.output != nil {
		reporterOpts = append(reporterOpts, report.WithOutput(o.output))
	}

	return &App{
		Config: cfg,
		Bridge: fsadapter.NewBridge(
			fsadapter.WithLogger(logger),
			fsadapter.WithSortKeys(cfg.SortKeys),
			fsadapter.WithSymmetricChecks(cfg.SymmetricChecks),
		),
		Reporter: report.New(reporterOpts...),
		Fetcher:  deps.NewFetcher(o.httpClient, logger),
		logger:   logger,
	}
}

// Forward runs translate-to-intermediate and presents the outcome.
func (a *App) Forward(ctx context.Context, ref core.ModRef) error {
	rep, err := a.Bridge.Forward(ctx, ref)
	a.Reporter.Present(rep, err)
	return err
}

// Reverse runs translate-to-source and presents the outcome.
func (a *App) Reverse(ctx context.Context, ref core.ModRef) error {
	rep, err := a.Bridge.Reverse(ctx, ref)
	a.Reporter.Present(rep, err)
	return err
}

// Edit runs a full edit session, presenting each step as it completes.
func (a *App) Edit(ctx context.Context, ref core.ModRef) error {
	session := fsadapter.NewSession(a.Bridge, a.Reporter.Present)
	session.Ready = func() {
		a.Reporter.Config(fmt.Sprintf("Waiting for the editor to save '%s' (Ctrl+C to stop)", ref.ArtifactPath()))
	}
	return session.Run(ctx, ref)
}

// Status is the snapshot printed by the status command.
type Status struct {
	Mod    fsadapter.ModState `json:"mod"`
	Bridge any                `json:"bridge"`
	LogTo  string             `json:"log_path"`
}

// Status inspects ref without touching the filesystem.
func (a *App) Status(ref core.ModRef) Status {
	return Status{
		Mod:    fsadapter.Inspect(ref),
		Bridge: a.Bridge.State(),
		LogTo:  a.Reporter.LogPath(),
	}
}

// ListMods returns the names of mods under baseDir/Mods that have a source
// document, sorted.
func (a *App) ListMods(baseDir string) ([]string, error) {
	ref := core.ModRef{BaseDir: baseDir}
	if info, err := os.Stat(ref.ModsDir()); err != nil || !info.IsDir() {
		return nil, core.NewFailure(core.MissingDirectory, ref.ModsDir(), core.ModsDirName+" directory does not exist.", err)
	}

	matches, err := doublestar.Glob(os.DirFS(baseDir), modsPattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("listing mods: %w", err)
	}

	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, path.Base(path.Dir(m)))
	}
	sort.Strings(names)
	a.logger.Debug("mods listed", "base", baseDir, "count", len(names))
	return names, nil
}

// FetchDeps downloads the dependency bundle configured in Config.Deps.
func (a *App) FetchDeps(ctx context.Context, override deps.Options) (*deps.Result, error) {
	opts := a.Config.Deps
	if override.RepoURL != "" {
		opts.RepoURL = override.RepoURL
	}
	if override.Branch != "" {
		opts.Branch = override.Branch
	}
	if override.Dest != "" {
		opts.Dest = override.Dest
	}
	opts.Include = override.Include

	res, err := a.Fetcher.Fetch(ctx, opts)
	if err != nil {
		a.Reporter.Fatal(err.Error())
		return nil, err
	}
	a.Reporter.Success(fmt.Sprintf("Repository downloaded successfully from %s", res.URL))
	a.Reporter.Success(fmt.Sprintf("Extracted %d files to '%s'", res.Extracted, res.Dest))
	return res, nil
}

// PublishMetadata rewrites the metadata file when enabled in Config.
func (a *App) PublishMetadata(m Metadata) error {
	if !a.Config.WriteMetadata {
		return nil
	}
	if err := WriteMetadata(a.Config.MetadataPath, m); err != nil {
		a.logger.Warn("metadata not written", "error", err)
		return err
	}
	a.Reporter.Config(fmt.Sprintf("TTNexus version written to %s", a.Config.MetadataPath))
	return nil
}
