package store

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/matzehuels/pinboard/pkg/errors"
)

// Watch delivers the names of boards written to the store directory by any
// process until ctx is done. Temporary files and foreign files are ignored.
// A save may be reported more than once.
func (s *FileStore) Watch(ctx context.Context) (<-chan string, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "create watcher")
	}
	if err := w.Add(s.dir); err != nil {
		w.Close()
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "watch %s", s.dir)
	}
	out := make(chan string)
	go func() {
		defer close(out)
		defer w.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
					continue
				}
				name, ok := boardName(ev.Name)
				if !ok {
					continue
				}
				select {
				case out <- name:
				case <-ctx.Done():
					return
				}
			case _, ok := <-w.Errors:
				if !ok {
					return
				}
			}
		}
	}()
	return out, nil
}

// boardName maps a store file path back to its board name.
func boardName(path string) (string, bool) {
	name, ok := strings.CutSuffix(filepath.Base(path), fileExt)
	if !ok || strings.HasPrefix(name, ".") || errors.ValidateBoardName(name) != nil {
		return "", false
	}
	return name, true
}
