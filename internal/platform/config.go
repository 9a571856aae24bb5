package platform

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/daxaroodles/ttnexus/pkg/deps"
	"github.com/daxaroodles/ttnexus/pkg/report"
)

// EnvPrefix is the prefix of environment overrides (e.g. TTNEXUS_COLOR=false).
const EnvPrefix = "TTNEXUS"

// Config keys.
const (
	KeyLogDir          = "log_dir"
	KeyLogFile         = "log_file"
	KeyColor           = "color"
	KeyWriteMetadata   = "write_metadata"
	KeyMetadataPath    = "metadata_path"
	KeySortKeys        = "sort_keys"
	KeySymmetricChecks = "symmetric_checks"
	KeyDepsRepoURL     = "deps.repo_url"
	KeyDepsBranch      = "deps.branch"
	KeyDepsDest        = "deps.dest"
)

// Config is the resolved runtime configuration. It is built once at startup
// and passed down explicitly.
type Config struct {
	// LogPath is the append-only error log.
	LogPath string
	Color   bool
	// WriteMetadata rewrites the version file next to the binary on startup.
	WriteMetadata bool
	MetadataPath  string
	// SortKeys writes everest.yaml with sorted keys instead of insertion order.
	SortKeys bool
	// SymmetricChecks makes translate-to-source verify the game directory.
	SymmetricChecks bool
	Deps            deps.Options
}

// NewViper builds a viper instance that reads cfgFile, or ttnexus.yaml from
// the working directory or ~/.config/ttnexus, plus TTNEXUS_* variables
// (nested keys use underscores: TTNEXUS_DEPS_BRANCH).
// A missing config file is not an error.
func NewViper(cfgFile string) (*viper.Viper, error) {
	v := viper.New()
	SetDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("ttnexus")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "ttnexus"))
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}
	return v, nil
}

// SetDefaults registers the default value of every key.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyLogDir, "")
	v.SetDefault(KeyLogFile, report.DefaultLogFile)
	v.SetDefault(KeyColor, true)
	v.SetDefault(KeyWriteMetadata, true)
	v.SetDefault(KeyMetadataPath, "")
	v.SetDefault(KeySortKeys, false)
	v.SetDefault(KeySymmetricChecks, false)
	v.SetDefault(KeyDepsRepoURL, deps.DefaultRepoURL)
	v.SetDefault(KeyDepsBranch, deps.DefaultBranch)
	v.SetDefault(KeyDepsDest, deps.DefaultDest)
}

// LoadConfig resolves a Config from v, filling in home-relative defaults.
func LoadConfig(v *viper.Viper) (Config, error) {
	cfg := Config{
		Color:           v.GetBool(KeyColor),
		WriteMetadata:   v.GetBool(KeyWriteMetadata),
		MetadataPath:    v.GetString(KeyMetadataPath),
		SortKeys:        v.GetBool(KeySortKeys),
		SymmetricChecks: v.GetBool(KeySymmetricChecks),
		Deps: deps.Options{
			RepoURL: v.GetString(KeyDepsRepoURL),
			Branch:  v.GetString(KeyDepsBranch),
			Dest:    v.GetString(KeyDepsDest),
		},
	}

	logDir := v.GetString(KeyLogDir)
	if logDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return Config{}, fmt.Errorf("resolving log directory: %w", err)
		}
		logDir = filepath.Join(home, report.DefaultLogDir)
	}
	logFile := v.GetString(KeyLogFile)
	if logFile == "" {
		logFile = report.DefaultLogFile
	}
	cfg.LogPath = filepath.Join(logDir, logFile)

	if cfg.WriteMetadata && cfg.MetadataPath == "" {
		p, err := DefaultMetadataPath()
		if err != nil {
			return Config{}, err
		}
		cfg.MetadataPath = p
	}
	return cfg, nil
}
