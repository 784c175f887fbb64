package site

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce is how long Watch waits after the last change before rebuilding.
const DefaultDebounce = 200 * time.Millisecond

// WatchOptions configures Watch
type WatchOptions struct {
	Debounce time.Duration
	// OnBuild receives the outcome of the initial build and every rebuild.
	OnBuild func(*Report, error)
}

// Watch builds once, then rebuilds whenever a JSON file under DataDir or the
// template changes, until ctx is cancelled. Bursts of events closer together
// than the debounce interval trigger a single rebuild.
func (b *Builder) Watch(ctx context.Context, opts WatchOptions) error {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	if err := addRecursive(watcher, b.opts.DataDir); err != nil {
		return err
	}
	templatePath, _ := filepath.Abs(b.opts.TemplatePath)
	if err := watcher.Add(filepath.Dir(templatePath)); err != nil {
		return fmt.Errorf("failed to watch template directory: %w", err)
	}

	b.rebuild(ctx, opts)

	timer := time.NewTimer(opts.Debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := addRecursive(watcher, event.Name); err != nil {
						b.logger.Warn("failed to watch new directory", zap.String("path", event.Name), zap.Error(err))
					}
				}
			}
			if !b.relevant(event, templatePath) {
				continue
			}
			b.logger.Debug("change detected", zap.String("path", event.Name), zap.String("op", event.Op.String()))
			timer.Reset(opts.Debounce)

		case <-timer.C:
			b.rebuild(ctx, opts)

		case werr, ok := <-watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			b.logger.Error("fsnotify error", zap.Error(werr))
		}
	}
}

func (b *Builder) rebuild(ctx context.Context, opts WatchOptions) {
	report, err := b.Build(ctx)
	if err != nil && ctx.Err() == nil {
		b.logger.Error("build failed", zap.Error(err))
	}
	if opts.OnBuild != nil && ctx.Err() == nil {
		opts.OnBuild(report, err)
	}
}

func (b *Builder) relevant(event fsnotify.Event, templatePath string) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}
	if abs, err := filepath.Abs(event.Name); err == nil && abs == templatePath {
		return true
	}
	name := filepath.Base(event.Name)
	return strings.HasSuffix(name, ".json") && !strings.HasPrefix(name, tempFilePrefix)
}

func addRecursive(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if err := watcher.Add(path); err != nil {
			return fmt.Errorf("failed to watch %s: %w", path, err)
		}
		return nil
	})
}
