package fs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/daxaroodles/ttnexus/pkg/core"
)

// Bridge translates a mod's everest.yaml into the JSON intermediate artifact
// and back. Operations never panic or exit; every problem comes back as a
// *core.Failure next to the notices gathered so far.
type Bridge struct {
	yaml   Serializer
	json   Serializer
	logger *slog.Logger
	config Config
}

// Config holds the behaviour switches of the bridge.
type Config struct {
	// SortKeys writes everest.yaml with sorted mapping keys.
	SortKeys bool
	// SymmetricChecks makes Reverse verify the game directory like Forward does.
	SymmetricChecks bool
	Logger          *slog.Logger
}

// Option configures a Bridge.
type Option func(*Config)

// WithLogger sets the debug logger of the bridge.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// WithSortKeys enables sorted keys when writing everest.yaml.
func WithSortKeys(sortKeys bool) Option {
	return func(c *Config) {
		c.SortKeys = sortKeys
	}
}

// WithSymmetricChecks adds the game directory guard to Reverse.
func WithSymmetricChecks(enabled bool) Option {
	return func(c *Config) {
		c.SymmetricChecks = enabled
	}
}

// NewBridge creates a Bridge.
func NewBridge(opts ...Option) *Bridge {
	var cfg Config
	for _, opt := range opts {
		opt(&cfg)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	serializers := DefaultSerializers(cfg.SortKeys)
	return &Bridge{
		yaml:   serializers[".yaml"],
		json:   serializers[".json"],
		logger: logger,
		config: cfg,
	}
}

// Forward converts everest.yaml into everest.TTNexus.temp, replacing any
// artifact left over from a previous run.
func (b *Bridge) Forward(ctx context.Context, ref core.ModRef) (*core.Report, error) {
	report := &core.Report{}
	if err := ctx.Err(); err != nil {
		return report, err
	}

	if !pathExists(ref.BaseDir) {
		return report, core.NewFailure(core.MissingDirectory, ref.BaseDir, "Celeste directory does not exist.", nil)
	}
	if err := checkModDirs(ref); err != nil {
		return report, err
	}

	source := ref.SourcePath()
	if !isFile(source) {
		return report, core.NewFailure(core.MissingSourceFile, source, core.SourceFileName+" does not exist.", nil)
	}
	report.SuccessDetail(fmt.Sprintf("Yaml found for mod '%s':", ref.Name), "- "+source)

	artifact := ref.ArtifactPath()
	outcome, err := DeleteFile(artifact)
	if outcome == core.DeleteFailed {
		return report, core.NewFailure(core.DeleteFailure, artifact, fmt.Sprintf("Could not delete '%s'.", artifact), err)
	}
	if outcome == core.Deleted {
		report.Success(fmt.Sprintf("File '%s' has been deleted.", artifact))
	} else {
		b.logger.Debug("no previous artifact", "path", artifact)
	}

	value, err := b.read(source, b.yaml)
	if err != nil {
		return report, core.NewFailure(core.ParseFailure, source, "Error reading YAML file.", err)
	}

	data, err := b.json.Serialize(value)
	if err != nil {
		return report, core.NewFailure(core.WriteFailure, artifact, "Error saving "+core.ArtifactFileName+".", err)
	}
	if err := writeFileAtomic(artifact, data, defaultFileMode); err != nil {
		return report, core.NewFailure(core.WriteFailure, artifact, "Error saving "+core.ArtifactFileName+".", err)
	}
	b.logger.Debug("artifact written", "path", artifact, "bytes", len(data))

	report.Success(fmt.Sprintf("%s saved to '%s'", core.ArtifactFileName, artifact))
	return report, nil
}

// Reverse merges everest.TTNexus.temp back into everest.yaml, overwriting the
// source document, and then removes the artifact.
//
// Unless SymmetricChecks is set the game directory itself is not checked;
// a missing game directory surfaces as a missing Mods directory.
func (b *Bridge) Reverse(ctx context.Context, ref core.ModRef) (*core.Report, error) {
	report := &core.Report{}
	if err := ctx.Err(); err != nil {
		return report, err
	}

	if b.config.SymmetricChecks && !pathExists(ref.BaseDir) {
		return report, core.NewFailure(core.MissingDirectory, ref.BaseDir, "Celeste directory does not exist.", nil)
	}
	if err := checkModDirs(ref); err != nil {
		return report, err
	}

	artifact := ref.ArtifactPath()
	if !isFile(artifact) {
		return report, core.NewFailure(core.MissingIntermediateFile, artifact, core.ArtifactFileName+" does not exist.", nil)
	}
	report.SuccessDetail(fmt.Sprintf("JSON found for mod '%s':", ref.Name), "- "+artifact)

	value, err := b.read(artifact, b.json)
	if err != nil {
		return report, core.NewFailure(core.ParseFailure, artifact, "Error reading JSON file.", err)
	}

	source := ref.SourcePath()
	data, err := b.yaml.Serialize(value)
	if err != nil {
		return report, core.NewFailure(core.WriteFailure, source, "Error saving YAML.", err)
	}
	if err := writeFileAtomic(source, data, modeOf(source)); err != nil {
		return report, core.NewFailure(core.WriteFailure, source, "Error saving YAML.", err)
	}
	b.logger.Debug("source written", "path", source, "bytes", len(data))
	report.Success(fmt.Sprintf("%s saved to '%s'", core.SourceFileName, source))

	return report, removeArtifact(report, artifact)
}

// removeArtifact is the last step of Reverse. An artifact that vanished
// after the merge is reported but does not fail the merge.
func removeArtifact(report *core.Report, artifact string) error {
	outcome, err := DeleteFile(artifact)
	switch outcome {
	case core.DeleteFailed:
		return core.NewFailure(core.DeleteFailure, artifact, fmt.Sprintf("Could not delete '%s'.", artifact), err)
	case core.NotFound:
		report.Fatality(fmt.Sprintf("The file %s does not exist.", artifact))
	default:
		report.Success(fmt.Sprintf("%s has been deleted successfully.", artifact))
	}
	return nil
}

func (b *Bridge) read(path string, s Serializer) (core.Value, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return s.Parse(f)
}

func checkModDirs(ref core.ModRef) error {
	if !isDir(ref.ModsDir()) {
		return core.NewFailure(core.MissingDirectory, ref.ModsDir(), core.ModsDirName+" directory does not exist.", nil)
	}
	if !isDir(ref.Dir()) {
		return core.NewFailure(core.MissingModFolder, ref.Dir(), fmt.Sprintf("Mod folder '%s' does not exist.", ref.Name), nil)
	}
	return nil
}

// DeleteFile removes path. A missing file is reported as core.NotFound,
// not as an error. The error is non-nil exactly when the outcome is
// core.DeleteFailed.
func DeleteFile(path string) (core.DeleteOutcome, error) {
	err := os.Remove(path)
	switch {
	case err == nil:
		return core.Deleted, nil
	case errors.Is(err, os.ErrNotExist):
		return core.NotFound, nil
	case errors.Is(err, os.ErrPermission):
		return core.DeleteFailed, fmt.Errorf("permission denied to delete '%s': %w", path, err)
	default:
		return core.DeleteFailed, err
	}
}

// ModState describes which parts of a mod layout are present on disk.
type ModState struct {
	Mod          string `json:"mod"`
	BaseDir      bool   `json:"base_dir"`
	ModsDir      bool   `json:"mods_dir"`
	ModDir       bool   `json:"mod_dir"`
	Source       bool   `json:"source"`
	Artifact     bool   `json:"artifact"`
	SourcePath   string `json:"source_path"`
	ArtifactPath string `json:"artifact_path"`
}

// Inspect reports the presence of every path the bridge touches for ref.
func Inspect(ref core.ModRef) ModState {
	return ModState{
		Mod:          ref.Name,
		BaseDir:      pathExists(ref.BaseDir),
		ModsDir:      isDir(ref.ModsDir()),
		ModDir:       isDir(ref.Dir()),
		Source:       isFile(ref.SourcePath()),
		Artifact:     isFile(ref.ArtifactPath()),
		SourcePath:   ref.SourcePath(),
		ArtifactPath: ref.ArtifactPath(),
	}
}

func pathExists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
