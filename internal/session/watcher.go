package session

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// WatchStorage observes the storage file for external mutation, so a
// disconnect performed by another process using the same storage is
// noticed here without polling. It returns once the watcher is installed;
// event handling runs until ctx is canceled.
//
// The parent directory is watched rather than the file itself because the
// atomic write replaces the file by rename.
func (s *Store) WatchStorage(ctx context.Context, path string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		_ = watcher.Close()
		return err
	}

	target := filepath.Clean(path)

	go func() {
		defer func() { _ = watcher.Close() }()
		for {
			select {
			case <-ctx.Done():
				return

			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != target {
					continue
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
					continue
				}
				s.onStorageChanged(ctx)

			case watchErr, ok := <-watcher.Errors:
				if !ok {
					return
				}
				s.log.Warn().Err(watchErr).Msg("storage watcher error")
			}
		}
	}()

	return nil
}

// onStorageChanged reconciles local state against the externally-mutated
// markers. The markers stay advisory: appearance of a connected marker
// only triggers a provider probe, while disappearance while we believe we
// are connected means another process tore the session down, so the same
// teardown runs here.
func (s *Store) onStorageChanged(ctx context.Context) {
	_, hasMarker := s.primary.Get(KeyConnected)

	s.mu.Lock()
	connected := s.state.IsConnected
	s.mu.Unlock()

	switch {
	case connected && !hasMarker:
		s.log.Info().Msg("session markers cleared externally")
		s.Disconnect(ctx)
	case !connected && hasMarker:
		s.CheckConnection(ctx)
	}
}
