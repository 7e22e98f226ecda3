package tuning

import (
	"context"
	"log"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch reloads the tuning file on write and hands the parsed value to onChange.
// The parent directory is watched so editor rename-and-replace saves are seen.
// Parse failures are logged and the previous tuning stays in effect.
func Watch(ctx context.Context, path string, logger *log.Logger, onChange func(Tuning)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		_ = watcher.Close()
		return err
	}
	name := filepath.Base(path)

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				if filepath.Base(event.Name) != name {
					continue
				}
				t, err := Load(path)
				if err != nil {
					if logger != nil {
						logger.Printf("tuning reload: %v", err)
					}
					continue
				}
				if logger != nil {
					logger.Printf("tuning reloaded: %s digest=%s", name, t.Digest()[:12])
				}
				onChange(t)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				if logger != nil {
					logger.Printf("tuning watcher error: %v", err)
				}
			}
		}
	}()
	return nil
}
