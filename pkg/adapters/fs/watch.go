package fs

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/aretw0/lifecycle"
	"github.com/fsnotify/fsnotify"

	"github.com/daxaroodles/ttnexus/pkg/core"
)

// DefaultSettleDelay is how long the artifact must stay quiet after the
// editor's last write before it is merged back.
const DefaultSettleDelay = 200 * time.Millisecond

// Session runs one edit round trip for a single mod: Forward, wait for the
// external editor to save the artifact, then Reverse.
type Session struct {
	bridge *Bridge
	logger *slog.Logger

	// Settle is the debounce window for editor writes.
	Settle time.Duration
	// Notify receives the outcome of each bridge operation as it completes.
	Notify func(*core.Report, error)
	// Ready is called once the watcher is armed.
	Ready func()
}

// NewSession creates an edit session on top of b.
func NewSession(b *Bridge, notify func(*core.Report, error)) *Session {
	return &Session{
		bridge: b,
		logger: b.logger,
		Settle: DefaultSettleDelay,
		Notify: notify,
	}
}

// Run blocks until the editor has saved the artifact and it was merged, or
// until ctx is cancelled. On cancellation the artifact is left in place so
// it can still be merged with translate-to-source.
func (s *Session) Run(ctx context.Context, ref core.ModRef) error {
	if err := s.step(s.bridge.Forward(ctx, ref)); err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := watcher.Add(ref.Dir()); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", ref.Dir(), err)
	}

	done := make(chan error, 1)
	finish := func(err error) {
		select {
		case done <- err:
		default:
		}
	}

	lifecycle.Go(ctx, func(ctx context.Context) error {
		defer watcher.Close()
		err := s.waitForSave(ctx, watcher, ref.ArtifactPath())
		finish(err)
		return err
	}, lifecycle.WithErrorHandler(func(err error) {
		s.logger.Error("watcher stopped", "error", err)
		finish(err)
	}))

	s.logger.Info("waiting for editor", "artifact", ref.ArtifactPath())
	if s.Ready != nil {
		s.Ready()
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		if err != nil {
			return err
		}
	}

	return s.step(s.bridge.Reverse(ctx, ref))
}

func (s *Session) step(report *core.Report, err error) error {
	if s.Notify != nil {
		s.Notify(report, err)
	}
	return err
}

// waitForSave returns nil once the artifact was written and then stayed
// untouched for the settle window.
func (s *Session) waitForSave(ctx context.Context, watcher *fsnotify.Watcher, artifact string) error {
	var settled <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-settled:
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if filepath.Base(event.Name) != filepath.Base(artifact) {
				continue
			}
			s.logger.Debug("artifact event", "op", event.Op.String())
			switch {
			case event.Has(fsnotify.Write) || event.Has(fsnotify.Create):
				settled = time.After(s.Settle)
			case event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename):
				// Editors that save via rename emit Create right after; wait for it.
				if !isFile(artifact) {
					settled = nil
				}
			}

		case wErr, ok := <-watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			s.logger.Error("fsnotify error", "error", wErr)
		}
	}
}
