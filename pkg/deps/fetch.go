// Package deps downloads the shared dependency bundle published as a GitHub
// branch archive and unpacks it next to the tool.
package deps

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
)

const (
	DefaultRepoURL = "https://github.com/Daxaroodles/TTDependencies"
	DefaultBranch  = "main"
	DefaultDest    = "../UpdateHelperPackage"
)

// ErrUnsafePath is returned for archive entries that would land outside Dest.
var ErrUnsafePath = errors.New("archive entry escapes destination")

// StatusError reports a download answered with something other than 200.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("failed to download the repository. HTTP Status: %d", e.Code)
}

// Options selects what to download and where to unpack it.
type Options struct {
	RepoURL string
	Branch  string
	Dest    string
	// Include restricts extraction to entries matching any of these
	// doublestar patterns (e.g. "**/*.dll"). Empty means everything.
	Include []string
}

func (o Options) withDefaults() Options {
	if o.RepoURL == "" {
		o.RepoURL = DefaultRepoURL
	}
	if o.Branch == "" {
		o.Branch = DefaultBranch
	}
	if o.Dest == "" {
		o.Dest = DefaultDest
	}
	return o
}

// Result summarizes a completed fetch.
type Result struct {
	URL       string
	Dest      string
	Extracted int
	Skipped   int
}

// Fetcher downloads and extracts branch archives.
type Fetcher struct {
	client     *http.Client
	logger     *slog.Logger
	maxRetries int
}

// NewFetcher creates a Fetcher. A nil client gets a default with a timeout.
func NewFetcher(client *http.Client, logger *slog.Logger) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Minute}
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Fetcher{client: client, logger: logger, maxRetries: defaultMaxRetries}
}

// ArchiveURL returns the zip URL of a branch head.
func ArchiveURL(repoURL, branch string) string {
	return fmt.Sprintf("%s/archive/refs/heads/%s.zip", strings.TrimSuffix(repoURL, "/"), branch)
}

// Fetch downloads the archive to a temporary file, extracts it under
// opts.Dest and removes the archive.
func (f *Fetcher) Fetch(ctx context.Context, opts Options) (*Result, error) {
	opts = opts.withDefaults()
	for _, p := range opts.Include {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid include pattern %q", p)
		}
	}

	url := ArchiveURL(opts.RepoURL, opts.Branch)
	archive, err := f.download(ctx, url)
	if err != nil {
		return nil, err
	}
	defer os.Remove(archive)

	res := &Result{URL: url, Dest: opts.Dest}
	if err := extract(archive, opts.Dest, opts.Include, res); err != nil {
		return nil, err
	}
	f.logger.Debug("archive extracted", "dest", opts.Dest, "files", res.Extracted, "skipped", res.Skipped)
	return res, nil
}

func (f *Fetcher) download(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("building request: %w", err)
	}

	resp, err := doWithRetry(ctx, f.client, req, f.maxRetries, f.logger)
	if err != nil {
		return "", fmt.Errorf("downloading %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &StatusError{URL: url, Code: resp.StatusCode}
	}

	tmp, err := os.CreateTemp("", "ttnexus-deps-*.zip")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("saving archive: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("saving archive: %w", err)
	}
	return tmp.Name(), nil
}

func extract(archive, dest string, include []string, res *Result) error {
	r, err := zip.OpenReader(archive)
	if errors.Is(err, zip.ErrInsecurePath) {
		r.Close()
		return fmt.Errorf("%w: %v", ErrUnsafePath, err)
	}
	if err != nil {
		return fmt.Errorf("opening archive: %w", err)
	}
	defer r.Close()

	root, err := filepath.Abs(dest)
	if err != nil {
		return err
	}

	for _, entry := range r.File {
		target, err := safeJoin(root, entry.Name)
		if err != nil {
			return err
		}

		if entry.FileInfo().IsDir() {
			if len(include) == 0 {
				if err := os.MkdirAll(target, 0755); err != nil {
					return err
				}
			}
			continue
		}

		if !matchesAny(include, entry.Name) {
			res.Skipped++
			continue
		}

		if err := extractFile(entry, target); err != nil {
			return fmt.Errorf("extracting %s: %w", entry.Name, err)
		}
		res.Extracted++
	}
	return nil
}

func extractFile(entry *zip.File, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return err
	}

	src, err := entry.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	mode := entry.Mode().Perm()
	if mode == 0 {
		mode = 0644
	}
	dst, err := os.OpenFile(target, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, mode)
	if err != nil {
		return err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return err
	}
	return dst.Close()
}

func safeJoin(root, name string) (string, error) {
	target := filepath.Join(root, filepath.FromSlash(name))
	if target != root && !strings.HasPrefix(target, root+string(os.PathSeparator)) {
		return "", fmt.Errorf("%w: %s", ErrUnsafePath, name)
	}
	return target, nil
}

func matchesAny(patterns []string, name string) bool {
	if len(patterns) == 0 {
		return true
	}
	for _, p := range patterns {
		if ok, _ := doublestar.Match(p, name); ok {
			return true
		}
	}
	return false
}
