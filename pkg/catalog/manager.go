package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// ErrNotLoaded indicates no snapshot has been loaded yet.
var ErrNotLoaded = errors.New("catalog not loaded")

// ReloadObserver receives reload outcomes. The metrics collector
// implements it.
type ReloadObserver interface {
	ObserveReload(success bool, version string)
}

// Manager owns the current catalog snapshot and swaps it atomically on
// reload. A failed reload keeps the previous snapshot.
type Manager struct {
	loader   *Loader
	logger   *slog.Logger
	observer ReloadObserver

	current atomic.Pointer[Snapshot]

	// reloadMu serialises reloads.
	reloadMu  sync.Mutex
	lastError error

	watchMu sync.Mutex
	watcher *FileWatcher
}

// NewManager creates a manager backed by loader. Call Reload to load the
// first snapshot.
func NewManager(loader *Loader, logger *slog.Logger) (*Manager, error) {
	if loader == nil {
		return nil, fmt.Errorf("loader cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		loader: loader,
		logger: logger.With("component", "catalog.manager"),
	}, nil
}

// SetObserver sets the reload observer.
func (m *Manager) SetObserver(o ReloadObserver) {
	m.observer = o
}

// Current returns the active snapshot, or nil before the first load.
func (m *Manager) Current() *Snapshot {
	return m.current.Load()
}

// Snapshot returns the active snapshot or ErrNotLoaded.
func (m *Manager) Snapshot() (*Snapshot, error) {
	s := m.current.Load()
	if s == nil {
		return nil, ErrNotLoaded
	}
	return s, nil
}

// LastError returns the error of the most recent reload, if it failed.
func (m *Manager) LastError() error {
	m.reloadMu.Lock()
	defer m.reloadMu.Unlock()
	return m.lastError
}

// Reload loads both catalogs and swaps in the new snapshot. On failure the
// previous snapshot stays active.
func (m *Manager) Reload() error {
	m.reloadMu.Lock()
	defer m.reloadMu.Unlock()

	start := time.Now()
	snap, err := m.loader.Load()
	if err != nil {
		m.lastError = err
		m.logger.Error("catalog reload failed", "error", err)
		if m.observer != nil {
			m.observer.ObserveReload(false, "")
		}
		return fmt.Errorf("reload catalog: %w", err)
	}

	prev := m.current.Swap(snap)
	m.lastError = nil

	attrs := []any{
		"version", snap.Version,
		"rules", len(snap.Rules),
		"fields", snap.Fields.Len(),
		"duration", time.Since(start),
	}
	if prev != nil {
		attrs = append(attrs, "previous_version", prev.Version)
	}
	m.logger.Info("catalog loaded", attrs...)

	if m.observer != nil {
		m.observer.ObserveReload(true, snap.Version)
	}
	return nil
}

// Watch reloads the catalogs whenever either file changes, waiting for
// changes to settle for debounce. It blocks until ctx is cancelled or Close
// is called.
func (m *Manager) Watch(ctx context.Context, debounce time.Duration) error {
	fw, err := NewFileWatcher(m.loader.Paths(), debounce, m.logger)
	if err != nil {
		return err
	}

	m.watchMu.Lock()
	if m.watcher != nil {
		m.watchMu.Unlock()
		fw.Stop()
		return fmt.Errorf("catalog watch already running")
	}
	m.watcher = fw
	m.watchMu.Unlock()

	defer func() {
		m.watchMu.Lock()
		owned := m.watcher == fw
		if owned {
			m.watcher = nil
		}
		m.watchMu.Unlock()

		// Close already stopped fw when it took the watcher.
		if owned {
			if err := fw.Stop(); err != nil {
				m.logger.Warn("failed to stop catalog watcher", "error", err)
			}
		}
	}()

	m.logger.Info("watching catalog files", "paths", m.loader.Paths(), "debounce", debounce)

	return fw.Watch(ctx, func() {
		// Reload logs and counts failures itself.
		_ = m.Reload()
	})
}

// Close stops watching.
func (m *Manager) Close() error {
	m.watchMu.Lock()
	fw := m.watcher
	m.watcher = nil
	m.watchMu.Unlock()

	if fw == nil {
		return nil
	}
	return fw.Stop()
}
