package ml

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// ArtifactWatcher reports changes to the artifact file on disk. It never
// reloads the model; a restart is required to pick up a new artifact.
type ArtifactWatcher struct {
	path     string
	logger   *zap.Logger
	watcher  *fsnotify.Watcher
	onChange func(fsnotify.Event)
}

// NewArtifactWatcher watches the directory holding path so that
// editors replacing the file via rename are still observed.
func NewArtifactWatcher(path string, logger *zap.Logger, onChange func(fsnotify.Event)) (*ArtifactWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		w.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}
	return &ArtifactWatcher{
		path:     abs,
		logger:   logger,
		watcher:  w,
		onChange: onChange,
	}, nil
}

// Run blocks until ctx is cancelled or the watcher is closed.
func (aw *ArtifactWatcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-aw.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != aw.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
				!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			aw.logger.Warn("model artifact changed on disk; restart to load it",
				zap.String("path", aw.path),
				zap.String("op", event.Op.String()))
			if aw.onChange != nil {
				aw.onChange(event)
			}
		case err, ok := <-aw.watcher.Errors:
			if !ok {
				return
			}
			aw.logger.Error("artifact watcher error", zap.Error(err))
		}
	}
}

func (aw *ArtifactWatcher) Close() error {
	return aw.watcher.Close()
}
