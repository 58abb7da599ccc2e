package config

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watch delivers a freshly loaded Config on the returned channel whenever the
// file at path is written or created. The directory is watched so editors
// that replace the file atomically are handled; the file moving away or
// being deleted keeps the current config. Invalid documents are logged and
// skipped. The channel closes when ctx ends.
func Watch(ctx context.Context, path string, logger *zap.Logger) (<-chan *Config, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, err
	}

	target := filepath.Clean(path)
	out := make(chan *Config, 1)

	go func() {
		defer close(out)
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != target {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
					logger.Debug("config file missing, keeping current config", zap.String("path", path))
					continue
				}
				cfg, err := Load(path)
				if err != nil {
					logger.Warn("config reload rejected", zap.String("path", path), zap.Error(err))
					continue
				}
				select {
				case out <- cfg:
				case <-ctx.Done():
					return
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("config watcher error", zap.Error(err))
			}
		}
	}()

	return out, nil
}
