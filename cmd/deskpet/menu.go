package main

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/1broseidon/deskpet/internal/palette"
)

// contextMenu opens the right-click menu off the pet loop, one at a time.
type contextMenu struct {
	ctx    context.Context
	logger *slog.Logger

	mu      sync.Mutex
	backend palette.Backend
	target  palette.Target
	reload  func() error

	open atomic.Bool
}

// use switches the launcher; "off" or a missing launcher disables the menu.
func (m *contextMenu) use(name string) {
	b, err := palette.NewBackend(name)
	if err != nil && !errors.Is(err, palette.ErrDisabled) {
		m.logger.Warn("context menu unavailable", "launcher", name, "error", err)
	}
	m.mu.Lock()
	m.backend = b
	m.mu.Unlock()
}

func (m *contextMenu) show(x, y int) {
	m.mu.Lock()
	b, target, reload := m.backend, m.target, m.reload
	m.mu.Unlock()
	if b == nil || target == nil || !m.open.CompareAndSwap(false, true) {
		return
	}
	go func() {
		defer m.open.Store(false)
		m.logger.Debug("opening context menu", "launcher", b.Name(), "x", x, "y", y)
		if err := palette.Open(m.ctx, b, target, reload); err != nil {
			m.logger.Warn("context menu action failed", "error", err)
		}
	}()
}
