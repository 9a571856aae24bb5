// Package report presents bridge results to the user: tagged, optionally
// colored console lines and an append-only error log under the home directory.
package report

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/daxaroodles/ttnexus/pkg/core"
)

const (
	// DefaultLogDir is the log directory name under the user's home.
	DefaultLogDir = "ttnexuslogs"
	// DefaultLogFile is the name of the error log.
	DefaultLogFile = "error_log.txt"

	timestampLayout = "2006-01-02 15:04:05"
)

// Palette holds the escape sequences used around console tags.
type Palette struct {
	Success  string
	Fatality string
	Config   string
	Reset    string
}

// ANSI is the default terminal palette.
var ANSI = Palette{
	Success:  "\033[32m",
	Fatality: "\033[31m",
	Config:   "\033[33m",
	Reset:    "\033[0m",
}

// Plain disables coloring.
var Plain = Palette{}

func (p Palette) color(level core.Level) string {
	switch level {
	case core.LevelSuccess:
		return p.Success
	case core.LevelFatality:
		return p.Fatality
	case core.LevelConfig:
		return p.Config
	}
	return ""
}

// Reporter writes notices to the console and failures to the error log.
type Reporter struct {
	mu      sync.Mutex
	out     io.Writer
	palette Palette
	logPath string
	now     func() time.Time
	logger  *slog.Logger
}

// Option configures a Reporter.
type Option func(*Reporter)

// WithOutput sets the console writer. Defaults to os.Stdout.
func WithOutput(w io.Writer) Option {
	return func(r *Reporter) {
		r.out = w
	}
}

// WithColor switches between the ANSI and the plain palette.
func WithColor(enabled bool) Option {
	return func(r *Reporter) {
		if enabled {
			r.palette = ANSI
		} else {
			r.palette = Plain
		}
	}
}

// WithLogPath sets the error log file.
func WithLogPath(path string) Option {
	return func(r *Reporter) {
		r.logPath = path
	}
}

// WithClock overrides the timestamp source (useful for testing).
func WithClock(now func() time.Time) Option {
	return func(r *Reporter) {
		r.now = now
	}
}

// WithLogger sets the diagnostic logger used when the error log itself fails.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Reporter) {
		r.logger = logger
	}
}

// New creates a Reporter. Without WithLogPath the log goes to
// ~/ttnexuslogs/error_log.txt.
func New(opts ...Option) *Reporter {
	r := &Reporter{
		out:     os.Stdout,
		palette: ANSI,
		now:     time.Now,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logPath == "" {
		if p, err := DefaultLogPath(); err == nil {
			r.logPath = p
		}
	}
	return r
}

// DefaultLogPath returns ~/ttnexuslogs/error_log.txt.
func DefaultLogPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, DefaultLogDir, DefaultLogFile), nil
}

// LogPath returns the error log location.
func (r *Reporter) LogPath() string {
	return r.logPath
}

// Present prints every notice of report and then err, if any. Fatality
// notices and the failure are also appended to the error log.
func (r *Reporter) Present(report *core.Report, err error) {
	if report != nil {
		for _, n := range report.Notices {
			r.print(n.Level, n.Message)
			if n.Detail != "" {
				fmt.Fprintln(r.out, n.Detail)
			}
			if n.Level == core.LevelFatality {
				r.Log(n.Message)
			}
		}
	}
	if err == nil {
		return
	}

	var f *core.Failure
	if !errors.As(err, &f) {
		r.print(core.LevelFatality, err.Error())
		r.Log(err.Error())
		return
	}

	console := exceptionPrefix(f.Kind) + f.Message
	if f.Err != nil {
		console = fmt.Sprintf("%s: %v", strings.TrimSuffix(f.Message, "."), f.Err)
	}
	r.print(core.LevelFatality, console)
	r.Log(f.Message)
}

// Config prints a configuration notice.
func (r *Reporter) Config(msg string) {
	r.print(core.LevelConfig, msg)
}

// Success prints a success notice.
func (r *Reporter) Success(msg string) {
	r.print(core.LevelSuccess, msg)
}

// Fatal prints a failure notice and records it in the error log.
func (r *Reporter) Fatal(msg string) {
	r.print(core.LevelFatality, msg)
	r.Log(msg)
}

func (r *Reporter) print(level core.Level, msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(r.out, "%s[%s]%s %s\n", r.palette.color(level), level, r.palette.Reset, msg)
}

// Log appends one timestamped line to the error log, creating its directory
// when needed.
func (r *Reporter) Log(message string) error {
	if r.logPath == "" {
		return errors.New("no error log path configured")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(r.logPath), 0755); err != nil {
		r.logger.Warn("failed to create log directory", "path", r.logPath, "error", err)
		return err
	}

	f, err := os.OpenFile(r.logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		r.logger.Warn("failed to open error log", "path", r.logPath, "error", err)
		return err
	}
	defer f.Close()

	line := fmt.Sprintf("[%s] %s: %s\n", r.now().Format(timestampLayout), core.LevelFatality, message)
	if _, err := f.WriteString(line); err != nil {
		r.logger.Warn("failed to write error log", "path", r.logPath, "error", err)
		return err
	}

	fmt.Fprintf(r.out, "[Error Log] Message logged to %s\n", r.logPath)
	return nil
}

func exceptionPrefix(kind core.FailureKind) string {
	switch kind {
	case core.MissingDirectory, core.MissingModFolder:
		return "invalidModException: "
	case core.MissingSourceFile:
		return "invalidYamlException: "
	case core.MissingIntermediateFile:
		return "invalidJsonException: "
	}
	return ""
}
