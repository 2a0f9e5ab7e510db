package oauth

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"teamleader-mcp/pkg/logging"

	"github.com/fsnotify/fsnotify"
)

// watchDebounce coalesces the burst of filesystem events a single
// credential save produces into one reload.
const watchDebounce = 500 * time.Millisecond

// CredentialWatcher watches the credential record on disk and feeds
// externally written credentials into a live TokenManager. This lets a
// running MCP server pick up the result of an `auth login` executed
// next to it, without a restart.
//
// Removal events are deliberately ignored: the in-memory credential
// stays authoritative until an explicit logout.
type CredentialWatcher struct {
	store   *CredentialStore
	manager *TokenManager
	watcher *fsnotify.Watcher
}

// NewCredentialWatcher creates a watcher for the store's backing file.
// The file itself may not exist yet; the containing directory is
// watched so a first login is also picked up.
func NewCredentialWatcher(store *CredentialStore, manager *TokenManager) (*CredentialWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create filesystem watcher: %w", err)
	}

	dir := filepath.Dir(store.Path())
	if err := w.Add(dir); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	return &CredentialWatcher{
		store:   store,
		manager: manager,
		watcher: w,
	}, nil
}

// Start runs the watch loop until the context is cancelled.
func (cw *CredentialWatcher) Start(ctx context.Context) {
	go cw.loop(ctx)
}

// Close releases the underlying filesystem watcher.
func (cw *CredentialWatcher) Close() error {
	return cw.watcher.Close()
}

func (cw *CredentialWatcher) loop(ctx context.Context) {
	target := filepath.Clean(cw.store.Path())

	var timer *time.Timer
	var timerCh <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-cw.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			// Debounce: a save is often seen as create+write.
			if timer == nil {
				timer = time.NewTimer(watchDebounce)
				timerCh = timer.C
			} else {
				timer.Reset(watchDebounce)
			}

		case <-timerCh:
			timer = nil
			timerCh = nil
			cw.reload()

		case err, ok := <-cw.watcher.Errors:
			if !ok {
				return
			}
			logging.Warn("CredentialWatcher", "Filesystem watch error: %v", err)
		}
	}
}

func (cw *CredentialWatcher) reload() {
	tok := cw.store.Load()
	if tok == nil {
		logging.Debug("CredentialWatcher", "Credential record changed but is absent or unreadable, keeping in-memory credential")
		return
	}
	cw.manager.adoptExternal(tok)
}
